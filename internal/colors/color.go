package colors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"chessgif/internal/services"
)

// Which names the side of the board a color belongs to.
type Which string

const (
	Dark  Which = "dark"
	Light Which = "light"
)

var errSyntax = errors.New("expected #rgb or #rrggbb")

// Color is a parsed board color in normalized #rrggbb form.
type Color struct {
	hex string
}

// Pair is a validated dark/light color combination.
type Pair struct {
	Dark  Color
	Light Color
}

// InvalidColorError reports a color string that failed to parse.
type InvalidColorError struct {
	Which Which
	Raw   string
}

func (e *InvalidColorError) Error() string {
	return "invalid color: " + e.Raw
}

// Unwrap classifies the failure as a validation error.
func (e *InvalidColorError) Unwrap() error {
	return services.ErrValidation
}

// Validate parses both colors and returns the normalized pair. The dark color
// is checked first.
func Validate(dark, light string) (Pair, error) {
	d, err := Parse(dark)
	if err != nil {
		return Pair{}, &InvalidColorError{Which: Dark, Raw: dark}
	}
	l, err := Parse(light)
	if err != nil {
		return Pair{}, &InvalidColorError{Which: Light, Raw: light}
	}
	return Pair{Dark: d, Light: l}, nil
}

// Parse parses a single #rgb or #rrggbb color.
func Parse(raw string) (Color, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if !hexSyntax(value) {
		return Color{}, fmt.Errorf("parse color %q: %w", raw, errSyntax)
	}
	parsed, err := colorful.Hex(value)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", raw, err)
	}
	return Color{hex: parsed.Hex()}, nil
}

// MustParse is a helper for pre-validated constants.
func MustParse(raw string) Color {
	c, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the normalized #rrggbb form.
func (c Color) String() string {
	return c.hex
}

// IsZero reports whether c was never parsed.
func (c Color) IsZero() bool {
	return c.hex == ""
}

// hexSyntax guards colorful.Hex, whose Sscanf parsing tolerates short and
// trailing input.
func hexSyntax(value string) bool {
	if len(value) != 4 && len(value) != 7 {
		return false
	}
	if value[0] != '#' {
		return false
	}
	for _, r := range value[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
