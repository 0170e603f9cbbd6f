package server

import (
	"encoding/json"
	"net/http"
	"unicode/utf8"
)

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// writeError writes an error response. line is omitted when zero.
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string, line int) {
	s.logger.Warn("Request failed", "status", statusCode, "error", message)

	s.writeJSON(w, statusCode, map[string]errorBody{
		"error": {Code: statusCode, Message: message, Line: line},
	})
}

// writeJSON writes v as a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"Formatting error"}}`)) // #nosec G104 - nothing left to report to
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(data) // #nosec G104 - error writing response is logged elsewhere if needed
}

func isUTF8(data []byte) bool {
	return utf8.Valid(data)
}
