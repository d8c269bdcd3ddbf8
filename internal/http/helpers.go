package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	var notFound *interfaces.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: notFound.Error()}
	}

	var conflict *interfaces.ConflictError
	if errors.As(err, &conflict) {
		return http.StatusConflict, errorResponse{Error: "conflict", Message: conflict.Error()}
	}

	var validation *interfaces.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, errorResponse{Error: "bad_request", Message: validation.Error()}
	}

	var parse *interfaces.ParseError
	if errors.As(err, &parse) {
		return http.StatusBadRequest, errorResponse{Error: "bad_request", Message: parse.Error()}
	}

	return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()}
}

func queryInt(q url.Values, key string, fallback int) int {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
