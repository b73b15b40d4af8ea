package ingest

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode turns raw file bytes into text. A byte order mark selects UTF-8 or
// UTF-16 and is dropped; input that is not valid UTF-8 is read as
// Windows-1252.
func Decode(data []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err == nil && utf8.Valid(decoded) {
		return string(decoded), nil
	}
	fallback, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decode windows-1252: %w", err)
	}
	return string(fallback), nil
}
