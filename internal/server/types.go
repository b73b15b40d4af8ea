package server

import (
	"time"

	"chessgif/internal/history"
)

// SessionView is the JSON shape of one surface.
type SessionView struct {
	ID         string `json:"id"`
	Notation   string `json:"notation"`
	DarkColor  string `json:"dark_color"`
	LightColor string `json:"light_color"`
	Error      string `json:"error,omitempty"`
	Image      string `json:"image,omitempty"`
	ImageAlt   string `json:"image_alt,omitempty"`
	Pending    bool   `json:"pending"`
	Ready      bool   `json:"ready"`
}

// NotationRequest replaces the notation text.
type NotationRequest struct {
	Notation string `json:"notation"`
}

// ColorsRequest sets explicit colors or a named theme.
type ColorsRequest struct {
	DarkColor  string `json:"dark_color"`
	LightColor string `json:"light_color"`
	Theme      string `json:"theme"`
}

// ThemeView describes one board theme.
type ThemeView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Dark  string `json:"dark_color"`
	Light string `json:"light_color"`
}

// StatusView reports worker and server state.
type StatusView struct {
	WorkerRunning bool   `json:"worker_running"`
	WorkerState   string `json:"worker_state"`
	QueueDepth    int    `json:"queue_depth"`
	Processed     int64  `json:"processed"`
	Failed        int64  `json:"failed"`
	Sessions      int    `json:"sessions"`
	LockFilePath  string `json:"lock_file_path,omitempty"`
}

// HistoryView is one recorded conversion.
type HistoryView struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"request_id"`
	Outcome    string    `json:"outcome"`
	Message    string    `json:"message,omitempty"`
	Notation   string    `json:"notation_preview"`
	DarkColor  string    `json:"dark_color"`
	LightColor string    `json:"light_color"`
	Bytes      int       `json:"bytes"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryResponse lists recent conversions with totals.
type HistoryResponse struct {
	Entries   []HistoryView `json:"entries"`
	Total     int           `json:"total"`
	Successes int           `json:"successes"`
	Failures  int           `json:"failures"`
}

func historyView(e history.Entry) HistoryView {
	return HistoryView{
		ID:         e.ID,
		RequestID:  e.RequestID,
		Outcome:    string(e.Outcome),
		Message:    e.Message,
		Notation:   e.NotationPreview,
		DarkColor:  e.DarkColor,
		LightColor: e.LightColor,
		Bytes:      e.Bytes,
		DurationMS: e.Duration.Milliseconds(),
		CreatedAt:  e.CreatedAt,
	}
}
