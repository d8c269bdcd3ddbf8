package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/evolv3ai/basic-memory/internal/markdown"
	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

type entityCreatePayload struct {
	Title     string   `json:"title"`
	Type      string   `json:"type,omitempty"`
	Content   string   `json:"content"`
	Permalink string   `json:"permalink,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Validate checks the fields the renderer and sync pass depend on before any
// file is written.
func (p entityCreatePayload) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(p.Title) == "" {
		errs["title"] = validation.NewError("memory.entity.title_required", "title is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type entityResponse struct {
	Entity       interfaces.Entity        `json:"entity"`
	Observations []interfaces.Observation `json:"observations"`
	Outgoing     []interfaces.Relation    `json:"outgoing_relations"`
	Incoming     []interfaces.Relation    `json:"incoming_relations"`
}

func (api *AdminAPI) registerEntityRoutes(mux *http.ServeMux, base string) {
	if mux == nil {
		return
	}
	root := joinPath(base, "knowledge/entities")
	mux.HandleFunc("GET "+root+"/{permalink...}", api.handleEntityGet)
	mux.HandleFunc("POST "+root, api.handleEntityCreate)
	mux.HandleFunc("DELETE "+root+"/{permalink...}", api.handleEntityDelete)
}

func (api *AdminAPI) handleEntityGet(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	permalink := markdown.NormalizePermalink(r.PathValue("permalink"))
	if permalink == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "permalink required"})
		return
	}

	entity, err := api.store.GetEntityByPermalink(r.Context(), permalink)
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := api.buildEntityResponse(r.Context(), entity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (api *AdminAPI) buildEntityResponse(ctx context.Context, entity interfaces.Entity) (entityResponse, error) {
	observations, err := api.store.ListObservations(ctx, entity.ID)
	if err != nil {
		return entityResponse{}, err
	}
	outgoing, err := api.store.ListOutgoingRelations(ctx, entity.ID)
	if err != nil {
		return entityResponse{}, err
	}
	incoming, err := api.store.ListIncomingRelations(ctx, entity.ID)
	if err != nil {
		return entityResponse{}, err
	}
	return entityResponse{
		Entity:       entity,
		Observations: observations,
		Outgoing:     outgoing,
		Incoming:     incoming,
	}, nil
}

func (api *AdminAPI) handleEntityCreate(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.store == nil || api.sync == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	var payload entityCreatePayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	if err := payload.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	title := strings.TrimSpace(payload.Title)
	entityType := strings.TrimSpace(payload.Type)
	if entityType == "" {
		entityType = api.entityType
	}
	permalink := strings.TrimSpace(payload.Permalink)
	if permalink == "" {
		permalink = markdown.NormalizePermalink(title)
	} else {
		permalink = markdown.NormalizePermalink(permalink)
	}

	now := api.now()
	doc := &interfaces.Document{
		Title:     title,
		Type:      entityType,
		Permalink: permalink,
		Created:   now,
		Modified:  now,
		Tags:      payload.Tags,
		Body:      payload.Content,
	}

	rendered, err := api.renderer.Render(doc)
	if err != nil {
		writeError(w, err)
		return
	}

	relPath := permalink + ".md"
	fullPath := filepath.Join(api.repoRoot, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		writeError(w, err)
		return
	}
	if err := os.WriteFile(fullPath, rendered, 0o644); err != nil {
		writeError(w, err)
		return
	}

	if _, err := api.sync.Sync(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	entity, err := api.store.GetEntityByPermalink(r.Context(), permalink)
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := api.buildEntityResponse(r.Context(), entity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (api *AdminAPI) handleEntityDelete(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	permalink := markdown.NormalizePermalink(r.PathValue("permalink"))
	if permalink == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "permalink required"})
		return
	}

	entity, err := api.store.GetEntityByPermalink(r.Context(), permalink)
	if err != nil {
		writeError(w, err)
		return
	}

	if api.repoRoot != "" && entity.FilePath != "" {
		fullPath := filepath.Join(api.repoRoot, filepath.FromSlash(entity.FilePath))
		if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
			api.logWarn("memory.http.entity_delete.file_remove_failed", "path", fullPath, "error", err)
		}
	}

	if err := api.store.DeleteEntity(r.Context(), entity.ID); err != nil {
		writeError(w, err)
		return
	}
	if api.index != nil {
		if err := api.index.DeleteByEntityID(r.Context(), entity.ID); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusNoContent, nil)
}
