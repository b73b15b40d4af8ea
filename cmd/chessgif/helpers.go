package main

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
