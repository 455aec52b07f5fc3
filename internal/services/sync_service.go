package services

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"insightpm/internal/domain"
	"insightpm/internal/remote"
	"insightpm/internal/store"
)

type syncServiceImpl struct {
	data   remote.DataService
	store  *store.EntityStore
	logger *zap.Logger
	mapper *domain.Mapper
}

// NewSyncService creates a new SyncService instance
func NewSyncService(deps Dependencies) SyncService {
	deps = deps.withDefaults()
	return &syncServiceImpl{
		data:   deps.Data,
		store:  deps.Store,
		logger: deps.Logger.Named("sync"),
		mapper: domain.NewMapper(),
	}
}

// FetchAll drops every mirrored row, including pending temp rows, then
// reloads all tables.
func (s *syncServiceImpl) FetchAll(ctx context.Context) error {
	s.store.Clear()
	return s.fetch(ctx)
}

func (s *syncServiceImpl) Refetch(ctx context.Context) error {
	return s.fetch(ctx)
}

// fetch selects every table concurrently. Each table is applied on its own
// so one failure leaves the others loaded.
func (s *syncServiceImpl) fetch(ctx context.Context) error {
	tables := remote.Tables()
	errs := make([]error, len(tables))

	var g errgroup.Group
	for i, table := range tables {
		g.Go(func() error {
			rows, err := s.data.Select(ctx, table)
			if err != nil {
				s.logger.Error("fetch failed", zap.String("table", string(table)), zap.Error(err))
				errs[i] = fmt.Errorf("fetch %s: %w", table, err)
				return nil
			}
			s.apply(table, rows)
			s.logger.Debug("fetched", zap.String("table", string(table)), zap.Int("rows", len(rows)))
			return nil
		})
	}
	_ = g.Wait()

	return stderrors.Join(errs...)
}

func (s *syncServiceImpl) apply(table remote.Table, rows []remote.Row) {
	switch table {
	case remote.TableTasks:
		s.store.Tasks.Replace(s.mapper.Task.FromRows(rows))
	case remote.TableProjects:
		s.store.Projects.Replace(s.mapper.Project.FromRows(rows))
	case remote.TableUsers:
		s.store.Users.Replace(s.mapper.User.FromRows(rows))
	case remote.TableTimeEntries:
		s.store.TimeEntries.Replace(s.mapper.TimeEntry.FromRows(rows))
	}
}
