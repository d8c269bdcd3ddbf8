package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/evolv3ai/basic-memory/internal/markdown"
	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

func (api *AdminAPI) registerSearchRoutes(mux *http.ServeMux, base string) {
	if mux == nil {
		return
	}
	root := joinPath(base, "search")
	mux.HandleFunc("GET "+root, api.handleSearch)
}

func (api *AdminAPI) handleSearch(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.index == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	q := r.URL.Query()
	query := interfaces.SearchQuery{
		Text:          q.Get("q"),
		PermalinkGlob: q.Get("permalink"),
		Limit:         boundedLimit(queryInt(q, "limit", api.pageSize), api.maxPage),
		Offset:        queryInt(q, "offset", 0),
	}

	if rawTypes := strings.TrimSpace(q.Get("type")); rawTypes != "" {
		for _, part := range strings.Split(rawTypes, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				query.Types = append(query.Types, interfaces.SearchResultKind(part))
			}
		}
	}

	if rawAfter := strings.TrimSpace(q.Get("after")); rawAfter != "" {
		after, err := markdown.ParseFlexibleDate(rawAfter, time.Now())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid after: " + err.Error()})
			return
		}
		query.After = after
	}

	results, err := api.index.Search(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func boundedLimit(requested, max int) int {
	if max <= 0 {
		return requested
	}
	if requested <= 0 || requested > max {
		return max
	}
	return requested
}
