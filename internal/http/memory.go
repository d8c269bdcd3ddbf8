package http

import (
	"net/http"
	"time"

	"github.com/evolv3ai/basic-memory/internal/contextbuilder"
)

func (api *AdminAPI) registerMemoryRoutes(mux *http.ServeMux, base string) {
	if mux == nil {
		return
	}
	root := joinPath(base, "memory")
	mux.HandleFunc("GET "+root+"/recent", api.handleMemoryContext)
	mux.HandleFunc("GET "+root+"/{uri...}", api.handleMemoryContext)
}

func (api *AdminAPI) handleMemoryContext(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.context == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	path := r.PathValue("uri")
	if path == "" {
		path = "recent"
	}
	raw := "memory://" + path
	if r.URL.RawQuery != "" {
		raw += "?" + r.URL.RawQuery
	}

	req, err := contextbuilder.ParseURI(raw, time.Now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}

	result, err := api.context.Build(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
