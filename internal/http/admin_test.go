package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/evolv3ai/basic-memory/internal/contextbuilder"
	"github.com/evolv3ai/basic-memory/internal/graph"
	"github.com/evolv3ai/basic-memory/internal/markdown"
	"github.com/evolv3ai/basic-memory/internal/resolver"
	"github.com/evolv3ai/basic-memory/internal/search"
	syncpkg "github.com/evolv3ai/basic-memory/internal/sync"
	"github.com/evolv3ai/basic-memory/pkg/testsupport"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func setupAdminAPI(t *testing.T) (*http.ServeMux, string) {
	t.Helper()

	root := t.TempDir()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)

	if err := graph.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate graph: %v", err)
	}
	if err := search.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate search: %v", err)
	}

	store := graph.NewStore(db)
	index := search.NewIndex(db)
	res := resolver.New(store, index)

	scanner, err := syncpkg.NewScanner(os.DirFS(root), markdown.LoaderConfig{})
	if err != nil {
		t.Fatalf("new scanner: %v", err)
	}
	parser := markdown.NewParser("note")
	engine := syncpkg.New(scanner, store, index, parser, res, nil, syncpkg.Config{DefaultEntityType: "note"})
	builder := contextbuilder.New(db, store, index)

	api := New(
		WithRepoRoot(root),
		WithGraphStore(store),
		WithSearchIndex(index),
		WithSyncEngine(engine),
		WithContextBuilder(builder),
	)

	mux := http.NewServeMux()
	if err := api.Register(mux); err != nil {
		t.Fatalf("register: %v", err)
	}
	return mux, root
}

func doJSONRequest(t *testing.T, mux *http.ServeMux, method, path string, body any, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s: expected status %d got %d (%s)", method, path, wantStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestAdminAPIEntityLifecycle(t *testing.T) {
	mux, root := setupAdminAPI(t)

	createBody := map[string]any{
		"title":   "Auth Service",
		"type":    "project",
		"content": "- fact Handles login #security\n",
	}
	createResp := doJSONRequest(t, mux, http.MethodPost, "/knowledge/entities", createBody, http.StatusCreated)
	var created entityResponse
	decodeJSONBody(t, createResp, &created)
	if created.Entity.Permalink != "auth-service" {
		t.Fatalf("expected permalink auth-service, got %q", created.Entity.Permalink)
	}
	if len(created.Observations) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(created.Observations))
	}
	if _, err := os.Stat(filepath.Join(root, "auth-service.md")); err != nil {
		t.Fatalf("expected file written: %v", err)
	}

	getResp := doJSONRequest(t, mux, http.MethodGet, "/knowledge/entities/auth-service", nil, http.StatusOK)
	var fetched entityResponse
	decodeJSONBody(t, getResp, &fetched)
	if fetched.Entity.ID != created.Entity.ID {
		t.Fatalf("expected same entity id")
	}

	searchResp := doJSONRequest(t, mux, http.MethodGet, "/search?q=login", nil, http.StatusOK)
	var searchPayload struct {
		Results []map[string]any `json:"results"`
	}
	decodeJSONBody(t, searchResp, &searchPayload)
	if len(searchPayload.Results) == 0 {
		t.Fatalf("expected at least one search result")
	}

	doJSONRequest(t, mux, http.MethodDelete, "/knowledge/entities/auth-service", nil, http.StatusNoContent)
	doJSONRequest(t, mux, http.MethodGet, "/knowledge/entities/auth-service", nil, http.StatusNotFound)
	if _, err := os.Stat(filepath.Join(root, "auth-service.md")); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
}

func TestAdminAPISyncEndpoint(t *testing.T) {
	mux, root := setupAdminAPI(t)

	if err := os.WriteFile(filepath.Join(root, "note.md"), []byte("---\ntitle: Note\ntype: note\n---\n\nbody\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	resp := doJSONRequest(t, mux, http.MethodPost, "/sync", nil, http.StatusOK)
	var payload syncReportPayload
	decodeJSONBody(t, resp, &payload)
	if len(payload.New) != 1 {
		t.Fatalf("expected 1 new file, got %+v", payload)
	}
}

func TestAdminAPIMemoryContext(t *testing.T) {
	mux, root := setupAdminAPI(t)

	if err := os.WriteFile(filepath.Join(root, "a.md"), []byte("---\ntitle: A\ntype: note\n---\n\n- relates_to [[B]]\n"), 0o644); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "b.md"), []byte("---\ntitle: B\ntype: note\n---\n\nbody\n"), 0o644); err != nil {
		t.Fatalf("write b: %v", err)
	}
	doJSONRequest(t, mux, http.MethodPost, "/sync", nil, http.StatusOK)

	resp := doJSONRequest(t, mux, http.MethodGet, "/memory/a?depth=1", nil, http.StatusOK)
	var result struct {
		PrimaryEntities []map[string]any `json:"PrimaryEntities"`
		RelatedEntities []map[string]any `json:"RelatedEntities"`
	}
	decodeJSONBody(t, resp, &result)
	if len(result.PrimaryEntities) != 1 {
		t.Fatalf("expected 1 primary entity, got %+v", result)
	}
	if len(result.RelatedEntities) != 1 {
		t.Fatalf("expected 1 related entity, got %+v", result)
	}
}
