package history

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"
)

// Outcome is the terminal result of a conversion.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

const previewRunes = 80

// Entry is one finished conversion.
type Entry struct {
	ID              int64
	RequestID       string
	HandlerID       string
	NotationSHA256  string
	NotationPreview string
	DarkColor       string
	LightColor      string
	Outcome         Outcome
	Message         string
	Bytes           int
	Duration        time.Duration
	CreatedAt       time.Time
}

// Stats aggregates outcomes across retained rows.
type Stats struct {
	Total     int
	Successes int
	Failures  int
}

// DescribeNotation fills the hash and preview fields from raw notation.
func (e *Entry) DescribeNotation(notation string) {
	sum := sha256.Sum256([]byte(notation))
	e.NotationSHA256 = hex.EncodeToString(sum[:])
	e.NotationPreview = preview(notation)
}

func preview(notation string) string {
	flat := strings.Join(strings.Fields(notation), " ")
	if utf8.RuneCountInString(flat) <= previewRunes {
		return flat
	}
	runes := []rune(flat)
	return string(runes[:previewRunes-1]) + "…"
}
