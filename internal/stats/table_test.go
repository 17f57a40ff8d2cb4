package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Department", "Net", "Errors"}
	rows := [][]string{
		{"Compras", "12", "1"},
		{"Câmaras Setoriais", "8", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := FormatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Department        Net Errors" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Compras            12      1" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Câmaras Setoriais   8      3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Rodada de Negócios", 8); got != "Rodada …" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := Truncate("Compras", 20); got != "Compras" {
		t.Fatalf("expected short value untouched, got %q", got)
	}
	if got := Truncate("Compras", 0); got != "" {
		t.Fatalf("expected empty result for zero width, got %q", got)
	}
}
