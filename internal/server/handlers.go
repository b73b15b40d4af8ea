package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"chessgif/internal/bridge"
	"chessgif/internal/colors"
	"chessgif/internal/ingest"
	"chessgif/internal/logging"
	"chessgif/internal/services"
)

var errSessionNotFound = fmt.Errorf("session %w", services.ErrNotFound)

const (
	maxJSONBody         = 64 << 10
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sf := s.createSurface()
	sf.logger.Info("session created", logging.String(logging.FieldEventType, "session_created"))
	s.writeJSON(w, http.StatusCreated, sf.view())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sf, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sf.view())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sf, ok := s.removeSurface(r.PathValue("id"))
	if !ok {
		s.writeFailure(w, errSessionNotFound)
		return
	}
	sf.bridge.Close()
	sf.logger.Info("session closed", logging.String(logging.FieldEventType, "session_closed"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNotation(w http.ResponseWriter, r *http.Request) {
	sf, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req NotationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	sf.mirror.ReplaceNotation(req.Notation)
	s.writeJSON(w, http.StatusOK, sf.view())
}

func (s *Server) handleColors(w http.ResponseWriter, r *http.Request) {
	sf, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req ColorsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	switch {
	case strings.TrimSpace(req.Theme) != "":
		if err := sf.mirror.ApplyTheme(req.Theme); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %s", err, req.Theme))
			return
		}
	case req.DarkColor != "" || req.LightColor != "":
		// Each picker updates its own side; the worker validates them on convert.
		if req.DarkColor != "" {
			sf.mirror.DarkColor.Set(req.DarkColor)
		}
		if req.LightColor != "" {
			sf.mirror.LightColor.Set(req.LightColor)
		}
	default:
		s.writeError(w, http.StatusBadRequest, "theme, dark_color or light_color required")
		return
	}
	s.writeJSON(w, http.StatusOK, sf.view())
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sf, ok := s.lookup(w, r)
	if !ok {
		return
	}

	limit := s.cfg.Ingest.MaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	var file ingest.File
	part, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer part.Close()
		data, readErr := io.ReadAll(io.LimitReader(part, limit+1))
		if readErr != nil {
			s.writeError(w, http.StatusBadRequest, readErr.Error())
			return
		}
		file = ingest.BytesFile(header.Filename, data)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		file = nil
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, ingest.ErrTooLarge.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome := sf.ingestor.Select(s.ingestContext(), file)
	if file != nil && r.URL.Query().Get("wait") != "true" {
		s.writeJSON(w, http.StatusAccepted, sf.view())
		return
	}
	select {
	case res := <-outcome:
		if res.Err != nil {
			s.writeError(w, http.StatusBadRequest, res.Err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, sf.view())
	case <-r.Context().Done():
	}
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	sf, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(sf.mirror.Notation.Get()) == "" {
		s.writeError(w, http.StatusBadRequest, "notation is empty")
		return
	}
	if err := sf.bridge.SendCurrent(); err != nil {
		if errors.Is(err, bridge.ErrBusy) {
			s.writeError(w, http.StatusConflict, "busy")
			return
		}
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, sf.view())
}

func (s *Server) handleThemes(w http.ResponseWriter, _ *http.Request) {
	themes := colors.Themes()
	out := make([]ThemeView, 0, len(themes))
	for _, theme := range themes {
		out = append(out, ThemeView{
			Name:  theme.Name,
			Label: theme.Label(),
			Dark:  theme.Dark,
			Light: theme.Light,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status := s.session.Status()
	s.mu.Lock()
	sessions := len(s.surfaces)
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, StatusView{
		WorkerRunning: status.Running,
		WorkerState:   status.State.String(),
		QueueDepth:    status.QueueDepth,
		Processed:     status.Processed,
		Failed:        status.Failed,
		Sessions:      sessions,
		LockFilePath:  s.cfg.LockPath(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeJSON(w, http.StatusOK, HistoryResponse{Entries: []HistoryView{}})
		return
	}
	limit := defaultHistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(parsed, maxHistoryLimit)
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := s.history.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := HistoryResponse{
		Entries:   make([]HistoryView, 0, len(entries)),
		Total:     stats.Total,
		Successes: stats.Successes,
		Failures:  stats.Failures,
	}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, historyView(entry))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*surface, bool) {
	sf, ok := s.surface(r.PathValue("id"))
	if !ok {
		s.writeFailure(w, errSessionNotFound)
	}
	return sf, ok
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

// writeFailure picks the status from the error's classification.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if services.Kind(err) == "not_found" {
		status = http.StatusNotFound
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
