package http

import (
	"net/http"

	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

func (api *AdminAPI) registerSyncRoutes(mux *http.ServeMux, base string) {
	if mux == nil {
		return
	}
	root := joinPath(base, "sync")
	mux.HandleFunc("POST "+root, api.handleSync)
}

func (api *AdminAPI) handleSync(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.sync == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	report, err := api.sync.Sync(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, syncReportResponse(report))
}

type fileFailureResponse struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type syncReportPayload struct {
	New        []string              `json:"new"`
	Modified   []string              `json:"modified"`
	Deleted    []string              `json:"deleted"`
	Moved      map[string]string     `json:"moved"`
	Unchanged  int                   `json:"unchanged"`
	Failed     []fileFailureResponse `json:"failed"`
	DurationMS int64                 `json:"duration_ms"`
}

func syncReportResponse(report interfaces.SyncReport) syncReportPayload {
	failed := make([]fileFailureResponse, 0, len(report.Failed))
	for _, f := range report.Failed {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		failed = append(failed, fileFailureResponse{Path: f.Path, Error: msg})
	}
	return syncReportPayload{
		New:        report.New,
		Modified:   report.Modified,
		Deleted:    report.Deleted,
		Moved:      report.Moved,
		Unchanged:  report.Unchanged,
		Failed:     failed,
		DurationMS: report.Duration.Milliseconds(),
	}
}
