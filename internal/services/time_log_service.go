package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"insightpm/internal/domain"
	"insightpm/internal/errors"
	"insightpm/internal/remote"
	"insightpm/internal/store"
	"insightpm/internal/validation"
)

type timeLogServiceImpl struct {
	data      remote.DataService
	store     *store.EntityStore
	writes    *Writes
	logger    *zap.Logger
	now       func() time.Time
	mapper    *domain.TimeEntryMapper
	validator *validation.TimeEntryValidator
}

// NewTimeLogService creates a new TimeLogService instance
func NewTimeLogService(deps Dependencies) TimeLogService {
	deps = deps.withDefaults()
	return &timeLogServiceImpl{
		data:      deps.Data,
		store:     deps.Store,
		writes:    deps.Writes,
		logger:    deps.Logger.Named("time_entries"),
		now:       deps.Now,
		mapper:    domain.NewTimeEntryMapper(),
		validator: validation.NewTimeEntryValidatorWithConfig(deps.Config),
	}
}

// LogTime records hours against a task with a temporary id until the remote
// insert settles.
func (s *timeLogServiceImpl) LogTime(ctx context.Context, in domain.TimeEntryInput) (domain.TimeEntry, error) {
	entry := in.ToTimeEntry(s.now())
	if err := s.validator.ValidateTimeEntry(entry); err != nil {
		return domain.TimeEntry{}, validationFailed(err)
	}

	tempID := domain.NewTempID()
	entry.ID = tempID
	s.store.TimeEntries.Append(entry)

	row := s.mapper.ToRow(entry)
	s.writes.Go(ctx, "insert time entry", func(ctx context.Context) {
		rows, err := s.data.Insert(ctx, remote.TableTimeEntries, []remote.Row{row})
		if err == nil && len(rows) == 0 {
			err = errors.NewRemoteError("insert time_entries", 0, nil)
		}
		if err != nil {
			s.store.TimeEntries.Remove(tempID)
			s.logger.Error("log time failed, removed optimistic entry",
				zap.String("temp_id", tempID), zap.String("task_id", entry.TaskID), zap.Error(err))
			return
		}
		s.store.TimeEntries.Swap(tempID, s.mapper.FromRow(rows[0]))
	})
	return entry, nil
}

// DeleteEntry removes an entry locally and re-appends it when the remote
// delete fails.
func (s *timeLogServiceImpl) DeleteEntry(ctx context.Context, id string) error {
	if domain.IsTempID(id) {
		return errors.NewInvalidInputError("id", id, "entry is still being saved")
	}
	removed, ok := s.store.TimeEntries.Remove(id)
	if !ok {
		return errors.NewNotFoundError("time entry", id)
	}

	s.writes.Go(ctx, "delete time entry", func(ctx context.Context) {
		if _, err := s.data.Delete(ctx, remote.TableTimeEntries, remote.Eq(domain.ColumnID, id)); err != nil {
			s.store.TimeEntries.Append(removed)
			s.logger.Error("delete time entry failed, restored local copy", zap.String("id", id), zap.Error(err))
		}
	})
	return nil
}

func (s *timeLogServiceImpl) ListEntries() []domain.TimeEntry {
	return s.store.TimeEntries.All()
}
