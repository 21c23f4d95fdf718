package ext_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/packetq/ext"
)

// ──────────────────────────────────────────────────
// Test extensions
// ──────────────────────────────────────────────────

// allHooksExt implements every lifecycle hook for testing.
type allHooksExt struct {
	calls []string
}

func (e *allHooksExt) Name() string { return "all-hooks" }

func (e *allHooksExt) OnPacketEnqueued(_ string, _ int) error {
	e.calls = append(e.calls, "OnPacketEnqueued")
	return nil
}

func (e *allHooksExt) OnPacketDropped(_ string) error {
	e.calls = append(e.calls, "OnPacketDropped")
	return nil
}

func (e *allHooksExt) OnPacketHandled(_ string, _ time.Duration, _ error) error {
	e.calls = append(e.calls, "OnPacketHandled")
	return nil
}

func (e *allHooksExt) OnHandlingFailed(_ string, _ error) error {
	e.calls = append(e.calls, "OnHandlingFailed")
	return nil
}

func (e *allHooksExt) OnQueueClosed(_ string, _ int) error {
	e.calls = append(e.calls, "OnQueueClosed")
	return nil
}

// droppedOnlyExt implements a single hook.
type droppedOnlyExt struct {
	dropped int
}

func (e *droppedOnlyExt) Name() string { return "dropped-only" }

func (e *droppedOnlyExt) OnPacketDropped(_ string) error {
	e.dropped++
	return nil
}

// failingExt returns an error from every hook it implements.
type failingExt struct{}

func (failingExt) Name() string { return "failing" }

func (failingExt) OnPacketEnqueued(_ string, _ int) error {
	return errors.New("hook exploded")
}

// ──────────────────────────────────────────────────
// Registry behaviour
// ──────────────────────────────────────────────────

func TestRegistry_EmitsAllHooks(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	e := &allHooksExt{}
	r.Register(e)

	r.EmitPacketEnqueued("q", 1)
	r.EmitPacketDropped("q")
	r.EmitPacketHandled("q", time.Millisecond, nil)
	r.EmitHandlingFailed("q", errors.New("boom"))
	r.EmitQueueClosed("q", 0)

	want := []string{
		"OnPacketEnqueued",
		"OnPacketDropped",
		"OnPacketHandled",
		"OnHandlingFailed",
		"OnQueueClosed",
	}
	if len(e.calls) != len(want) {
		t.Fatalf("expected %d calls, got %d (%v)", len(want), len(e.calls), e.calls)
	}
	for i, name := range want {
		if e.calls[i] != name {
			t.Fatalf("call %d: expected %s, got %s", i, name, e.calls[i])
		}
	}
}

func TestRegistry_PartialExtension(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	e := &droppedOnlyExt{}
	r.Register(e)

	// Events the extension does not implement are skipped silently.
	r.EmitPacketEnqueued("q", 1)
	r.EmitPacketHandled("q", time.Millisecond, nil)
	r.EmitQueueClosed("q", 3)

	r.EmitPacketDropped("q")
	r.EmitPacketDropped("q")

	if e.dropped != 2 {
		t.Fatalf("expected 2 dropped notifications, got %d", e.dropped)
	}
}

func TestRegistry_HookErrorDoesNotStopOthers(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	all := &allHooksExt{}
	r.Register(failingExt{})
	r.Register(all)

	// The failing hook's error must be contained; the next extension
	// still gets the event.
	r.EmitPacketEnqueued("q", 1)

	if len(all.calls) != 1 || all.calls[0] != "OnPacketEnqueued" {
		t.Fatalf("second extension not notified: %v", all.calls)
	}
}

func TestRegistry_Extensions(t *testing.T) {
	r := ext.NewRegistry(nil)
	r.Register(&allHooksExt{})
	r.Register(&droppedOnlyExt{})

	if len(r.Extensions()) != 2 {
		t.Fatalf("expected 2 registered extensions, got %d", len(r.Extensions()))
	}
}

func TestRegistry_Empty(t *testing.T) {
	r := ext.NewRegistry(slog.Default())

	// Emitting with no registered extensions must be a no-op.
	r.EmitPacketEnqueued("q", 1)
	r.EmitPacketDropped("q")
	r.EmitQueueClosed("q", 0)
}
