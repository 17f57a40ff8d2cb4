package tui

import (
	"strings"
	"testing"
)

func TestFlowCardsWrapsRows(t *testing.T) {
	cards := []string{"aaaa\naaaa", "bbbb\nbbbb", "cccc\ncccc"}

	out := flowCards(cards, 9)

	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "aaaabbbb" {
		t.Fatalf("unexpected first row: %q", lines[0])
	}
	if strings.TrimRight(lines[2], " ") != "cccc" {
		t.Fatalf("unexpected second row: %q", lines[2])
	}
}

func TestFlowCardsUnboundedWidth(t *testing.T) {
	out := flowCards([]string{"a", "b", "c"}, 0)
	if out != "abc" {
		t.Fatalf("expected single row, got %q", out)
	}
	if flowCards(nil, 10) != "" {
		t.Fatalf("expected empty output for no cards")
	}
}

func TestTruncateAndPad(t *testing.T) {
	if got := truncate("Rodada de Negócios", 8); got != "Rodada …" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncate("Compras", 0); got != "Compras" {
		t.Fatalf("expected untouched value, got %q", got)
	}
	if got := padRight("Câmaras", 9); got != "Câmaras  " {
		t.Fatalf("unexpected padding: %q", got)
	}
}

func TestFormatClock(t *testing.T) {
	tests := map[int]string{
		300: "05:00",
		59:  "00:59",
		0:   "00:00",
		-4:  "00:00",
	}
	for in, want := range tests {
		if got := formatClock(in); got != want {
			t.Fatalf("formatClock(%d) = %q, want %q", in, got, want)
		}
	}
}
