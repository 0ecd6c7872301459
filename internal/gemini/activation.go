package gemini

import (
	"context"
	"time"

	"sherlock/internal/logging"
)

// DefaultPollInterval is how often the waiter re-checks remote state.
const DefaultPollInterval = 3 * time.Second

// DefaultActivationBudget bounds the wait for server-side processing.
const DefaultActivationBudget = 180 * time.Second

// FileGetter is the one remote operation the waiter needs.
type FileGetter interface {
	GetFile(ctx context.Context, name string) (*File, error)
}

// Waiter polls a remote file's processing state until it becomes ACTIVE.
// Each check is a cheap point-in-time query; the loop observes context
// cancellation at every poll boundary.
type Waiter struct {
	client   FileGetter
	interval time.Duration

	// Injected for tests with a fake clock.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewWaiter creates a waiter with the default poll interval.
func NewWaiter(client FileGetter) *Waiter {
	return &Waiter{
		client:   client,
		interval: DefaultPollInterval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// SetInterval overrides the poll interval. Non-positive values are ignored.
func (w *Waiter) SetInterval(d time.Duration) {
	if d > 0 {
		w.interval = d
	}
}

// WaitActive blocks until the named file is ACTIVE, its processing fails, the
// budget elapses, or ctx is cancelled. A file that is already ACTIVE returns
// after a single status check.
func (w *Waiter) WaitActive(ctx context.Context, name string, maxWait time.Duration) (*File, error) {
	if maxWait <= 0 {
		maxWait = DefaultActivationBudget
	}

	logging.FilesDebug("WaitActive: name=%s budget=%v", name, maxWait)
	start := w.now()

	for {
		file, err := w.client.GetFile(ctx, name)
		if err != nil {
			return nil, err
		}

		switch file.State {
		case FileStateActive:
			logging.Files("WaitActive: %s active after %v", name, w.now().Sub(start))
			return file, nil
		case FileStateFailed:
			logging.Files("WaitActive: %s failed", name)
			return nil, &ProcessingFailedError{ResourceName: name}
		}

		if w.now().Sub(start) >= maxWait {
			return nil, &TimeoutError{ResourceName: name, Budget: maxWait}
		}

		if err := w.sleep(ctx, w.interval); err != nil {
			return nil, err
		}
	}
}

// sleepContext sleeps for d or until ctx is cancelled, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
