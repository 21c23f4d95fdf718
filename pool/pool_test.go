package pool

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Task execution
// ---------------------------------------------------------------------------

func TestSubmit_RunsTask(t *testing.T) {
	p := New(2)
	defer p.Stop()

	done := make(chan struct{})
	if err := p.Submit(func() { close(done) }); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not executed")
	}
}

func TestSubmit_NilTask(t *testing.T) {
	p := New(1)
	defer p.Stop()

	if err := p.Submit(nil); err != nil {
		t.Fatalf("nil task should be a no-op, got %v", err)
	}
}

func TestSubmit_ManyTasks(t *testing.T) {
	p := New(4)

	var executed atomic.Int64
	var wg sync.WaitGroup

	for range 100 {
		wg.Add(1)
		if err := p.Submit(func() {
			defer wg.Done()
			executed.Add(1)
		}); err != nil {
			wg.Done()
			t.Fatalf("Submit failed: %v", err)
		}
	}

	wg.Wait()
	p.StopWait()

	if executed.Load() != 100 {
		t.Fatalf("expected 100 executions, got %d", executed.Load())
	}
}

// ---------------------------------------------------------------------------
// Panic containment
// ---------------------------------------------------------------------------

func TestPanickingTask_DoesNotKillWorker(t *testing.T) {
	p := New(1)
	defer p.Stop()

	p.Submit(func() { panic("boom") })

	// The single worker must survive and run the next task.
	done := make(chan struct{})
	deadline := time.After(2 * time.Second)
	for {
		err := p.Submit(func() { close(done) })
		if err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("Submit kept failing: %v", err)
		case <-time.After(time.Millisecond):
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panicking task")
	}
}

// ---------------------------------------------------------------------------
// Shutdown
// ---------------------------------------------------------------------------

func TestStop_DiscardsBacklog(t *testing.T) {
	p := New(1)

	// Block the only worker so the backlog accumulates.
	release := make(chan struct{})
	started := make(chan struct{})
	p.Submit(func() {
		close(started)
		<-release
	})
	<-started

	var executed atomic.Int64
	for range 10 {
		p.Submit(func() { executed.Add(1) })
	}

	// Free the worker only after Stop has discarded the backlog.
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()
	p.Stop()

	if n := executed.Load(); n != 0 {
		t.Fatalf("expected backlog discarded, but %d tasks ran", n)
	}
}

func TestStopWait_DrainsBacklog(t *testing.T) {
	p := New(1)

	var executed atomic.Int64
	for range 10 {
		if err := p.Submit(func() { executed.Add(1) }); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	p.StopWait()

	if executed.Load() != 10 {
		t.Fatalf("expected all 10 tasks to run before stop, got %d", executed.Load())
	}
}

func TestSubmit_AfterStop(t *testing.T) {
	p := New(1)
	p.Stop()

	if err := p.Submit(func() {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestStop_Idempotent(t *testing.T) {
	p := New(2)
	p.Stop()
	p.Stop()
	p.StopWait()
}

// ---------------------------------------------------------------------------
// Backpressure
// ---------------------------------------------------------------------------

func TestSubmit_BacklogFull(t *testing.T) {
	p := New(1, WithBacklog(1))
	defer p.Stop()

	// Block the worker, fill the one-slot backlog.
	release := make(chan struct{})
	started := make(chan struct{})
	p.Submit(func() {
		close(started)
		<-release
	})
	<-started
	if err := p.Submit(func() {}); err != nil {
		t.Fatalf("backlog slot should be free: %v", err)
	}

	if err := p.Submit(func() {}); !errors.Is(err, ErrBacklogFull) {
		t.Fatalf("expected ErrBacklogFull, got %v", err)
	}
	close(release)
}
