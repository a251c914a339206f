package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/uptimekeeper/internal/server/dispatch"
	"github.com/julienschmidt/httprouter"
)

const maxBodyBytes = 1 << 20

func (s *Server) handle(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := dispatch.Request{
		Method:   strings.ToUpper(r.Method),
		Resource: strings.Trim(r.URL.Path, "/"),
		Query:    parseQuery(r),
		Headers:  parseHeaders(r),
		Body:     parseBody(w, r),
	}

	resp := s.dispatcher.Dispatch(r.Context(), req)
	writeJSON(w, resp.Status, resp.Payload)
}

func parseQuery(r *http.Request) map[string]string {
	out := map[string]string{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			out[k] = strings.TrimSpace(v[0])
		}
	}
	return out
}

func parseHeaders(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		if len(v) > 0 {
			out[strings.ToLower(k)] = v[0]
		}
	}
	return out
}

// parseBody decodes a JSON object. Anything else, including an empty or
// oversized body, yields an empty map and validation reports the gaps.
func parseBody(w http.ResponseWriter, r *http.Request) map[string]any {
	out := map[string]any{}
	if r.Body == nil {
		return out
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil || len(data) == 0 {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if payload == nil {
		payload = struct{}{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"Error":"An unexpected error occurred"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
