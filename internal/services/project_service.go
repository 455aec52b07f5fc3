package services

import (
	"context"

	"go.uber.org/zap"

	"insightpm/internal/domain"
	"insightpm/internal/errors"
	"insightpm/internal/remote"
	"insightpm/internal/store"
	"insightpm/internal/validation"
)

type projectServiceImpl struct {
	data      remote.DataService
	store     *store.EntityStore
	writes    *Writes
	logger    *zap.Logger
	mapper    *domain.ProjectMapper
	validator *validation.ProjectValidator
}

// NewProjectService creates a new ProjectService instance
func NewProjectService(deps Dependencies) ProjectService {
	deps = deps.withDefaults()
	return &projectServiceImpl{
		data:      deps.Data,
		store:     deps.Store,
		writes:    deps.Writes,
		logger:    deps.Logger.Named("projects"),
		mapper:    domain.NewProjectMapper(),
		validator: validation.NewProjectValidator(),
	}
}

// Create adds a project optimistically under a temporary id.
func (s *projectServiceImpl) Create(ctx context.Context, in domain.ProjectInput) (domain.Project, error) {
	project := in.ToProject()
	if err := s.validator.ValidateProject(project); err != nil {
		return domain.Project{}, validationFailed(err)
	}

	tempID := domain.NewTempID()
	project.ID = tempID
	s.store.Projects.Append(project)

	row := s.mapper.ToRow(project)
	s.writes.Go(ctx, "insert project", func(ctx context.Context) {
		rows, err := s.data.Insert(ctx, remote.TableProjects, []remote.Row{row})
		if err == nil && len(rows) == 0 {
			err = errors.NewRemoteError("insert projects", 0, nil)
		}
		if err != nil {
			s.store.Projects.Remove(tempID)
			s.logger.Error("create project failed, removed optimistic entry",
				zap.String("temp_id", tempID), zap.String("name", project.Name), zap.Error(err))
			return
		}
		s.store.Projects.Swap(tempID, s.mapper.FromRow(rows[0]))
	})
	return project, nil
}

// Delete removes a project locally and re-appends it when the remote delete
// fails. Tasks referencing it keep their project_id.
func (s *projectServiceImpl) Delete(ctx context.Context, id string) error {
	if domain.IsTempID(id) {
		return errors.NewInvalidInputError("id", id, "project is still being created")
	}
	removed, ok := s.store.Projects.Remove(id)
	if !ok {
		return errors.NewNotFoundError("project", id)
	}

	s.writes.Go(ctx, "delete project", func(ctx context.Context) {
		if _, err := s.data.Delete(ctx, remote.TableProjects, remote.Eq(domain.ColumnID, id)); err != nil {
			s.store.Projects.Append(removed)
			s.logger.Error("delete project failed, restored local copy", zap.String("id", id), zap.Error(err))
		}
	})
	return nil
}

func (s *projectServiceImpl) ListProjects() []domain.Project {
	return s.store.Projects.All()
}
