package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeFiles scripts GetFile responses and counts checks.
type fakeFiles struct {
	states []FileState
	checks int
}

func (f *fakeFiles) GetFile(ctx context.Context, name string) (*File, error) {
	state := f.states[len(f.states)-1]
	if f.checks < len(f.states) {
		state = f.states[f.checks]
	}
	f.checks++
	return &File{Name: name, URI: "https://svc/" + name, MimeType: "video/mp4", State: state}, nil
}

// fakeClock advances a synthetic time on every sleep, no real waiting.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	return ctx.Err()
}

func newFakeWaiter(client FileGetter) (*Waiter, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	w := NewWaiter(client)
	w.now = clock.Now
	w.sleep = clock.Sleep
	return w, clock
}

func TestWaiter_AlreadyActive(t *testing.T) {
	files := &fakeFiles{states: []FileState{FileStateActive}}
	w, _ := newFakeWaiter(files)

	file, err := w.WaitActive(context.Background(), "files/ev-1", 120*time.Second)
	if err != nil {
		t.Fatalf("WaitActive failed: %v", err)
	}
	if file.State != FileStateActive {
		t.Errorf("Expected ACTIVE, got %s", file.State)
	}
	if files.checks != 1 {
		t.Errorf("Expected exactly 1 status check, got %d", files.checks)
	}
}

func TestWaiter_BecomesActive(t *testing.T) {
	files := &fakeFiles{states: []FileState{FileStateProcessing, FileStateProcessing, FileStateActive}}
	w, _ := newFakeWaiter(files)

	file, err := w.WaitActive(context.Background(), "files/ev-1", 120*time.Second)
	if err != nil {
		t.Fatalf("WaitActive failed: %v", err)
	}
	if file.State != FileStateActive {
		t.Errorf("Expected ACTIVE, got %s", file.State)
	}
	if files.checks != 3 {
		t.Errorf("Expected 3 status checks, got %d", files.checks)
	}
}

func TestWaiter_ProcessingFailed(t *testing.T) {
	files := &fakeFiles{states: []FileState{FileStateProcessing, FileStateFailed}}
	w, _ := newFakeWaiter(files)

	_, err := w.WaitActive(context.Background(), "files/ev-1", 120*time.Second)
	var pfe *ProcessingFailedError
	if !errors.As(err, &pfe) {
		t.Fatalf("Expected ProcessingFailedError, got %v", err)
	}
	if pfe.ResourceName != "files/ev-1" {
		t.Errorf("Unexpected resource name: %s", pfe.ResourceName)
	}
}

func TestWaiter_Timeout(t *testing.T) {
	files := &fakeFiles{states: []FileState{FileStateProcessing}}
	w, _ := newFakeWaiter(files)

	budget := 10 * time.Second
	_, err := w.WaitActive(context.Background(), "files/ev-1", budget)
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TimeoutError, got %v", err)
	}
	if te.Budget != budget {
		t.Errorf("Unexpected budget: %v", te.Budget)
	}

	// At a 3s interval and a 10s budget, checks are bounded by
	// ceil(budget/interval)+1 = 5.
	if files.checks > 5 {
		t.Errorf("Too many status checks: %d", files.checks)
	}
	if files.checks < 2 {
		t.Errorf("Too few status checks: %d", files.checks)
	}
}

func TestWaiter_Cancellation(t *testing.T) {
	files := &fakeFiles{states: []FileState{FileStateProcessing}}
	w, clock := newFakeWaiter(files)

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel after the first sleep so the loop must notice at the poll boundary.
	baseSleep := w.sleep
	w.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return baseSleep(ctx, d)
	}

	_, err := w.WaitActive(ctx, "files/ev-1", time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if files.checks != 1 {
		t.Errorf("Expected 1 check before cancellation, got %d", files.checks)
	}
	_ = clock
}
