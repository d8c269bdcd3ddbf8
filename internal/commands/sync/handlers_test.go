package synccmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evolv3ai/basic-memory/internal/logging"
	"github.com/evolv3ai/basic-memory/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
)

type stubEngine struct {
	syncReport interfaces.SyncReport
	syncErr    error
	syncCalls  int
	syncDelay  time.Duration

	rebuildErr   error
	rebuildCalls int
}

func (s *stubEngine) Sync(ctx context.Context) (interfaces.SyncReport, error) {
	s.syncCalls++
	if s.syncDelay > 0 {
		select {
		case <-ctx.Done():
			return interfaces.SyncReport{}, ctx.Err()
		case <-time.After(s.syncDelay):
		}
	}
	return s.syncReport, s.syncErr
}

func (s *stubEngine) Rebuild(ctx context.Context) error {
	s.rebuildCalls++
	return s.rebuildErr
}

func TestSyncHandlerInvokesEngine(t *testing.T) {
	engine := &stubEngine{syncReport: interfaces.SyncReport{
		New:      []string{"a.md"},
		Modified: []string{"b.md"},
	}}
	h := NewSyncHandler(engine, logging.NoOp())

	if err := h.Execute(context.Background(), SyncCommand{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if engine.syncCalls != 1 {
		t.Fatalf("expected 1 sync call, got %d", engine.syncCalls)
	}
}

func TestSyncHandlerWrapsEngineError(t *testing.T) {
	engine := &stubEngine{syncErr: errors.New("boom")}
	h := NewSyncHandler(engine, logging.NoOp())

	err := h.Execute(context.Background(), SyncCommand{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestSyncHandlerContextCancellation(t *testing.T) {
	engine := &stubEngine{}
	h := NewSyncHandler(engine, logging.NoOp())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.Execute(ctx, SyncCommand{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if engine.syncCalls != 0 {
		t.Fatalf("expected no sync calls, got %d", engine.syncCalls)
	}
}

func TestSyncHandlerHonoursTimeout(t *testing.T) {
	engine := &stubEngine{syncDelay: 20 * time.Millisecond}
	h := NewSyncHandler(engine, logging.NoOp(), SyncWithTimeout(5*time.Millisecond))

	err := h.Execute(context.Background(), SyncCommand{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestRebuildIndexHandlerInvokesEngine(t *testing.T) {
	engine := &stubEngine{}
	h := NewRebuildIndexHandler(engine, logging.NoOp())

	if err := h.Execute(context.Background(), RebuildIndexCommand{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if engine.rebuildCalls != 1 {
		t.Fatalf("expected 1 rebuild call, got %d", engine.rebuildCalls)
	}
}

func TestRebuildIndexHandlerWrapsEngineError(t *testing.T) {
	engine := &stubEngine{rebuildErr: errors.New("boom")}
	h := NewRebuildIndexHandler(engine, logging.NoOp())

	err := h.Execute(context.Background(), RebuildIndexCommand{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}
