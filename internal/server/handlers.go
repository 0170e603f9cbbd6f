package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aleksaelezovic/n3logic/pkg/n3"
)

// handleParse parses the posted document and returns the result as JSON
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	// Enable CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Use POST", 0)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if _, err := n3.NewParser(contentType, s.config.Options); err != nil {
		s.writeError(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Unsupported content type: %s. Supported types: %v", contentType, n3.GetSupportedContentTypes()), 0)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), 0)
			return
		}
		s.writeError(w, http.StatusBadRequest, "Failed to read request body", 0)
		return
	}

	startTime := time.Now()
	result, hit, err := s.parse(body)
	if err != nil {
		var parseErr *n3.ParseError
		if errors.As(err, &parseErr) {
			s.writeError(w, http.StatusUnprocessableEntity, parseErr.Err.Error(), parseErr.Line)
			return
		}
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Parse error: %v", err), 0)
		return
	}

	s.logger.Debug("Parsed document",
		"bytes", len(body),
		"triples", len(result.Triples),
		"rules", len(result.Rules),
		"cached", hit,
		"duration", time.Since(startTime))

	if s.config.Cache != nil {
		if hit {
			w.Header().Set("X-Cache", "hit")
		} else {
			w.Header().Set("X-Cache", "miss")
		}
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) parse(body []byte) (*n3.ParseResult, bool, error) {
	if s.config.Cache == nil {
		result, err := n3.ParseBytes(body, s.config.Options)
		return result, false, err
	}
	if !isUTF8(body) {
		// Let the parser report the encoding error without touching the cache
		result, err := n3.ParseBytes(body, s.config.Options)
		return result, false, err
	}
	return s.config.Cache.Parse(string(body), s.config.Options)
}

// handleBuiltins lists the built-in catalog, optionally filtered by namespace
func (s *Server) handleBuiltins(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Use GET", 0)
		return
	}

	namespace := r.URL.Query().Get("namespace")
	if namespace != "" {
		if _, ok := n3.BuiltinNamespaces[namespace]; !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown namespace: %s", namespace), 0)
			return
		}
	}

	builtins := []n3.Builtin{}
	for _, b := range s.catalog {
		if namespace == "" || b.Namespace == namespace {
			builtins = append(builtins, b)
		}
	}
	s.writeJSON(w, http.StatusOK, builtins)
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
