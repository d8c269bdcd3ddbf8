package synccmd

import (
	"testing"

	command "github.com/goliatone/go-command"
)

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

type cronRegistration struct {
	config  command.HandlerConfig
	handler func() error
}

type cronRecorder struct {
	registrations []cronRegistration
}

func (c *cronRecorder) registrar() CronRegistrar {
	return func(cfg command.HandlerConfig, fn any) error {
		handler, _ := fn.(func() error)
		c.registrations = append(c.registrations, cronRegistration{config: cfg, handler: handler})
		return nil
	}
}

func TestRegisterCommandsHandlerOptionsApplied(t *testing.T) {
	engine := &stubEngine{}
	syncApplied := false
	rebuildApplied := false

	_, err := RegisterCommands(nil, engine, nil,
		WithSyncOptions(func(h *SyncHandler) { syncApplied = true }),
		WithRebuildOptions(func(h *RebuildIndexHandler) { rebuildApplied = true }),
	)
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if !syncApplied || !rebuildApplied {
		t.Fatalf("expected both option sets applied: sync=%v rebuild=%v", syncApplied, rebuildApplied)
	}
}

func TestRegisterCommandsRegistersHandlers(t *testing.T) {
	reg := &recordingRegistry{}
	engine := &stubEngine{}

	set, err := RegisterCommands(reg, engine, nil)
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if set == nil || set.Sync == nil || set.Rebuild == nil {
		t.Fatalf("expected handler set populated, got %#v", set)
	}
	if len(reg.handlers) != 2 {
		t.Fatalf("expected 2 handlers registered, got %d", len(reg.handlers))
	}
}

func TestRegisterCommandsNilEngineErrors(t *testing.T) {
	if _, err := RegisterCommands(nil, nil, nil); err == nil {
		t.Fatal("expected error when engine nil")
	}
}

func TestRegisterSyncCronRegistersHandler(t *testing.T) {
	engine := &stubEngine{}
	handler := NewSyncHandler(engine, nil)
	recorder := &cronRecorder{}

	cfg := command.HandlerConfig{Expression: "@daily"}
	if err := RegisterSyncCron(recorder.registrar(), handler, cfg); err != nil {
		t.Fatalf("register cron: %v", err)
	}
	if len(recorder.registrations) != 1 {
		t.Fatalf("expected 1 cron registration, got %d", len(recorder.registrations))
	}
	if err := recorder.registrations[0].handler(); err != nil {
		t.Fatalf("executing cron handler: %v", err)
	}
	if engine.syncCalls != 1 {
		t.Fatalf("expected sync call executed via cron, got %d", engine.syncCalls)
	}
}

func TestRegisterSyncCronNoOpWhenRegistrarNil(t *testing.T) {
	engine := &stubEngine{}
	handler := NewSyncHandler(engine, nil)
	if err := RegisterSyncCron(nil, handler, command.HandlerConfig{}); err != nil {
		t.Fatalf("expected nil error when registrar nil, got %v", err)
	}
	if engine.syncCalls != 0 {
		t.Fatalf("expected no sync calls, got %d", engine.syncCalls)
	}
}

func TestRegisterSyncCronNoOpWhenHandlerNil(t *testing.T) {
	recorder := &cronRecorder{}
	if err := RegisterSyncCron(recorder.registrar(), nil, command.HandlerConfig{}); err != nil {
		t.Fatalf("expected nil error when handler nil, got %v", err)
	}
	if len(recorder.registrations) != 0 {
		t.Fatalf("expected no registrations, got %d", len(recorder.registrations))
	}
}
