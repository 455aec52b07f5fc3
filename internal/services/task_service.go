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

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	data          remote.DataService
	store         *store.EntityStore
	writes        *Writes
	logger        *zap.Logger
	now           func() time.Time
	mapper        *domain.Mapper
	taskValidator *validation.TaskValidator
}

// NewTaskService creates a new TaskService instance
func NewTaskService(deps Dependencies) TaskService {
	deps = deps.withDefaults()
	return &taskServiceImpl{
		data:          deps.Data,
		store:         deps.Store,
		writes:        deps.Writes,
		logger:        deps.Logger.Named("tasks"),
		now:           deps.Now,
		mapper:        domain.NewMapper(),
		taskValidator: validation.NewTaskValidatorWithConfig(deps.Config),
	}
}

// CreateOrUpdate validates the form, patches the store and sends the write.
func (t *taskServiceImpl) CreateOrUpdate(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	now := t.now()

	if !in.IsEdit() {
		in = in.WithDefaults(now)
	}
	if err := t.taskValidator.ValidateTaskInput(in); err != nil {
		return domain.Task{}, validationFailed(err)
	}

	if !in.IsEdit() {
		return t.create(ctx, in.ToTask(now)), nil
	}

	existing, ok := t.store.Tasks.Get(in.ID)
	if !ok {
		return domain.Task{}, errors.NewNotFoundError("task", in.ID)
	}
	task := in.ToTask(now)
	if task.IsDone() && existing.IsDone() {
		task.CompletedAt = existing.CompletedAt
	}
	return t.update(ctx, task), nil
}

// MoveTask changes the board column of a task through the edit path.
func (t *taskServiceImpl) MoveTask(ctx context.Context, id string, status domain.TaskStatus) (domain.Task, error) {
	if err := t.taskValidator.ValidateStatus(status); err != nil {
		return domain.Task{}, validationFailed(err)
	}
	existing, ok := t.store.Tasks.Get(id)
	if !ok {
		return domain.Task{}, errors.NewNotFoundError("task", id)
	}
	if existing.IsPending() {
		return domain.Task{}, errors.NewInvalidInputError("id", id, "task is still being created")
	}

	task := existing.Clone()
	task.Status = status
	task.ApplyCompletion(t.now())
	return t.update(ctx, task), nil
}

func (t *taskServiceImpl) create(ctx context.Context, task domain.Task) domain.Task {
	tempID := domain.NewTempID()
	task.ID = tempID
	t.store.Tasks.Append(task)

	row := t.mapper.Task.ToRow(task)
	t.writes.Go(ctx, "insert task", func(ctx context.Context) {
		rows, err := t.data.Insert(ctx, remote.TableTasks, []remote.Row{row})
		if err == nil && len(rows) == 0 {
			err = errors.NewRemoteError("insert tasks", 0, nil)
		}
		if err != nil {
			t.store.Tasks.Remove(tempID)
			t.logger.Error("create task failed, removed optimistic entry",
				zap.String("temp_id", tempID), zap.String("title", task.Title), zap.Error(err))
			return
		}

		saved := t.mapper.Task.FromRow(rows[0])
		if !t.store.Tasks.Swap(tempID, saved) {
			t.logger.Warn("created task no longer in store", zap.String("temp_id", tempID), zap.String("id", saved.ID))
			return
		}
		t.logger.Debug("task created", zap.String("temp_id", tempID), zap.String("id", saved.ID))
	})
	return task
}

func (t *taskServiceImpl) update(ctx context.Context, task domain.Task) domain.Task {
	t.store.Tasks.Put(task)

	row := t.mapper.Task.ToRow(task)
	t.writes.Go(ctx, "update task", func(ctx context.Context) {
		rows, err := t.data.Update(ctx, remote.TableTasks, row, remote.Eq(domain.ColumnID, task.ID))
		if err != nil {
			t.logger.Error("update task failed, keeping local edit",
				zap.String("id", task.ID), zap.Error(err))
			return
		}
		if len(rows) == 0 {
			t.logger.Warn("update matched no remote task", zap.String("id", task.ID))
			return
		}
		t.store.Tasks.Put(t.mapper.Task.FromRow(rows[0]))
	})
	return task
}

// Delete removes the task locally and restores it at the end of the list
// when the remote delete fails.
func (t *taskServiceImpl) Delete(ctx context.Context, id string) error {
	if domain.IsTempID(id) {
		return errors.NewInvalidInputError("id", id, "task is still being created")
	}
	removed, ok := t.store.Tasks.Remove(id)
	if !ok {
		return errors.NewNotFoundError("task", id)
	}

	t.writes.Go(ctx, "delete task", func(ctx context.Context) {
		if _, err := t.data.Delete(ctx, remote.TableTasks, remote.Eq(domain.ColumnID, id)); err != nil {
			t.store.Tasks.Append(removed)
			t.logger.Error("delete task failed, restored local copy", zap.String("id", id), zap.Error(err))
		}
	})
	return nil
}

// GetTask returns the mirrored task with id.
func (t *taskServiceImpl) GetTask(id string) (domain.Task, error) {
	task, ok := t.store.Tasks.Get(id)
	if !ok {
		return domain.Task{}, errors.NewNotFoundError("task", id)
	}
	return task, nil
}

// ListTasks returns the mirrored tasks in store order.
func (t *taskServiceImpl) ListTasks() []domain.Task {
	return t.store.Tasks.All()
}
