package async

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/janus/pkg/utils/errutil"
	"github.com/secmon-lab/janus/pkg/utils/logging"
)

// DefaultTimeout bounds a single dispatched handler
const DefaultTimeout = 30 * time.Second

var inflight sync.WaitGroup

// Dispatch executes a handler function asynchronously in a new goroutine.
// The handler gets a fresh background context that keeps the caller's logger, tagged with a
// trace ID, and is cancelled after timeout. Errors and panics are logged, never propagated.
func Dispatch(ctx context.Context, timeout time.Duration, handler func(ctx context.Context) error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger := logging.From(ctx).With("trace_id", uuid.Must(uuid.NewV7()).String())
	bgCtx := logging.With(context.Background(), logger)

	inflight.Add(1)
	go func() {
		defer inflight.Done()

		ctx, cancel := context.WithTimeout(bgCtx, timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(ctx, goerr.New("panic in async handler", goerr.V("panic", r)), "async handler panicked")
			}
		}()

		if err := handler(ctx); err != nil {
			_ = errutil.Handle(ctx, err, "async handler failed")
		}
	}()
}

// Wait blocks until every dispatched handler has returned or ctx is done.
func Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "dispatched handlers are still running")
	}
}
