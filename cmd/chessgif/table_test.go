package main

import (
	"strings"
	"testing"
)

func TestRenderTableTruncatesWideCells(t *testing.T) {
	long := strings.Repeat("x", 60)
	out := renderTable([]column{
		{title: "ID", right: true},
		{title: "Result", maxWidth: 10},
	}, [][]string{{"7", long}, {"12"}})

	if strings.Contains(out, long) {
		t.Fatalf("expected result column to be truncated:\n%s", out)
	}
	requireContains(t, out, strings.Repeat("x", 9)+"…")
	requireContains(t, out, "Result")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, " 7 ") && !strings.Contains(line, "│  7 │") {
			t.Fatalf("expected ID right aligned, got %q", line)
		}
	}
}

func TestRenderTableWithoutColumns(t *testing.T) {
	if out := renderTable(nil, [][]string{{"a"}}); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
