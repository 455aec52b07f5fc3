package services

import (
	"context"
	stderrors "errors"
	"sync"

	"go.uber.org/zap"

	"insightpm/internal/errors"
	"insightpm/internal/validation"
)

// Writes runs remote writes in the background. A write is detached from the
// caller's cancellation and is never retried.
type Writes struct {
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewWrites creates an empty tracker.
func NewWrites(logger *zap.Logger) *Writes {
	return &Writes{logger: logger}
}

// Go starts fn with a context that keeps ctx's values but not its deadline
// or cancellation.
func (w *Writes) Go(ctx context.Context, op string, fn func(ctx context.Context)) {
	detached := context.WithoutCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.logger.Debug("remote write started", zap.String("op", op))
		fn(detached)
	}()
}

// Wait blocks until every started write has returned.
func (w *Writes) Wait() {
	w.wg.Wait()
}

// validationFailed wraps a field validation error so its user message lists
// the failing fields.
func validationFailed(err error) *errors.AppError {
	msg := err.Error()
	var ve *validation.ValidationError
	if stderrors.As(err, &ve) {
		msg = ve.GetUserFriendlyMessage()
	}
	return errors.NewValidationError(msg, err)
}
