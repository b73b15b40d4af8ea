package uistate

import (
	"bytes"
	"sync"

	"chessgif/internal/colors"
	"chessgif/internal/protocol"
)

// Image is the last successfully rendered GIF.
type Image struct {
	Data    []byte
	DataURL string
	Alt     string
}

func imagesEqual(a, b Image) bool {
	return a.Alt == b.Alt && a.DataURL == b.DataURL && bytes.Equal(a.Data, b.Data)
}

// TextControl is the visible text-entry widget bound to the notation cell.
type TextControl interface {
	SetText(text string)
	Text() string
}

// TextBuffer is an in-memory TextControl.
type TextBuffer struct {
	mu   sync.Mutex
	text string
}

// SetText replaces the buffer contents.
func (b *TextBuffer) SetText(text string) {
	b.mu.Lock()
	b.text = text
	b.mu.Unlock()
}

// Text returns the buffer contents.
func (b *TextBuffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Snapshot is a consistent copy of every cell.
type Snapshot struct {
	Notation   string `json:"notation"`
	DarkColor  string `json:"dark_color"`
	LightColor string `json:"light_color"`
	Error      string `json:"error,omitempty"`
	Image      Image  `json:"-"`
	Pending    bool   `json:"pending"`
}

// Request builds the conversion request for this state.
func (s Snapshot) Request() protocol.Request {
	return protocol.Request{
		Notation:   s.Notation,
		DarkColor:  s.DarkColor,
		LightColor: s.LightColor,
	}
}

// Mirror is the state of one interactive surface instance.
type Mirror struct {
	Notation   *Cell[string]
	DarkColor  *Cell[string]
	LightColor *Cell[string]
	Error      *Cell[string]
	Image      *Cell[Image]
	Pending    *Cell[bool]

	mu      sync.Mutex
	control TextControl
}

// NewMirror starts with empty notation and the given colors.
func NewMirror(pair colors.Pair) *Mirror {
	return &Mirror{
		Notation:   NewCell(""),
		DarkColor:  NewCell(pair.Dark.String()),
		LightColor: NewCell(pair.Light.String()),
		Error:      NewCell(""),
		Image:      NewCellFunc(Image{}, imagesEqual),
		Pending:    NewCell(false),
	}
}

// Bind attaches the visible text control and syncs it to the notation cell.
func (m *Mirror) Bind(control TextControl) {
	m.mu.Lock()
	m.control = control
	m.mu.Unlock()
	if control != nil {
		control.SetText(m.Notation.Get())
	}
}

// ReplaceNotation sets the notation and rewrites the bound control so the two
// never diverge.
func (m *Mirror) ReplaceNotation(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notation.Set(text)
	if m.control != nil {
		m.control.SetText(text)
	}
}

// EditNotation records text typed into the bound control.
func (m *Mirror) EditNotation(text string) {
	m.Notation.Set(text)
}

// SetColors publishes a new color pair as entered. Validation happens in the
// worker.
func (m *Mirror) SetColors(dark, light string) {
	m.DarkColor.Set(dark)
	m.LightColor.Set(light)
}

// ApplyTheme publishes the colors of the named board theme.
func (m *Mirror) ApplyTheme(name string) error {
	theme, err := colors.LookupTheme(name)
	if err != nil {
		return err
	}
	m.SetColors(theme.Dark, theme.Light)
	return nil
}

// Snapshot copies every cell.
func (m *Mirror) Snapshot() Snapshot {
	return Snapshot{
		Notation:   m.Notation.Get(),
		DarkColor:  m.DarkColor.Get(),
		LightColor: m.LightColor.Get(),
		Error:      m.Error.Get(),
		Image:      m.Image.Get(),
		Pending:    m.Pending.Get(),
	}
}
