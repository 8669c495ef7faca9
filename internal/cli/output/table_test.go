package output

import (
	"bytes"
	"strings"
	"testing"
)

type row struct{ a, b string }

type rows []row

func (r rows) Table(wide bool) *Table {
	t := &Table{Headers: []string{"A"}}
	if wide {
		t.Headers = append(t.Headers, "B")
	}
	for _, x := range r {
		cells := []string{x.a}
		if wide {
			cells = append(cells, x.b)
		}
		t.AddRow(cells...)
	}
	return t
}

func TestTable_Render(t *testing.T) {
	table := &Table{Headers: []string{"ID", "FILES"}}
	table.AddRow("backup_1", "2")
	table.AddRow("backup_1700000000000", "10")

	var buf bytes.Buffer
	if err := table.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[0], "FILES") {
		t.Errorf("header = %q", lines[0])
	}
	// Columns are aligned
	if strings.Index(lines[1], "2") != strings.Index(lines[2], "10") {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

func TestTable_NoHeaders(t *testing.T) {
	table := &Table{Headers: []string{"ID"}}
	table.AddRow("backup_1")

	var buf bytes.Buffer
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, table); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.String() != "backup_1\n" {
		t.Errorf("Format() = %q, want only the row", buf.String())
	}
}

func TestTableFormatter_Tabular(t *testing.T) {
	data := rows{{"x", "y"}}

	var narrow, wide bytes.Buffer
	if err := (&TableFormatter{}).Format(&narrow, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if err := (&TableFormatter{Wide: true}).Format(&wide, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if strings.Contains(narrow.String(), "B") {
		t.Errorf("narrow output = %q, want no B column", narrow.String())
	}
	if !strings.Contains(wide.String(), "B") || !strings.Contains(wide.String(), "y") {
		t.Errorf("wide output = %q, want B column", wide.String())
	}
}

func TestTableFormatter_Map(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"status": "ready", "snapshots": float64(3), "note": ""}

	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4: %q", len(lines), buf.String())
	}
	// Keys are sorted
	if !strings.HasPrefix(lines[1], "note") || !strings.HasPrefix(lines[2], "snapshots") || !strings.HasPrefix(lines[3], "status") {
		t.Errorf("rows not sorted:\n%s", buf.String())
	}
	if !strings.Contains(lines[1], "-") || !strings.Contains(lines[2], "3") {
		t.Errorf("values not formatted:\n%s", buf.String())
	}
}

func TestTableFormatter_FallbackJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, []int{1, 2}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "[\n  1,\n  2\n]") {
		t.Errorf("Format() = %q, want JSON fallback", buf.String())
	}
}

func TestCell(t *testing.T) {
	s := "value"
	empty := ""
	var nilPtr *string

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "-"},
		{"string", "x", "x"},
		{"empty string", "", "-"},
		{"string pointer", &s, "value"},
		{"empty pointer", &empty, "-"},
		{"nil pointer", nilPtr, "-"},
		{"whole float", float64(42), "42"},
		{"fraction", 1.5, "1.50"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cell(tt.in); got != tt.want {
				t.Errorf("Cell(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMillis(t *testing.T) {
	if got := FormatMillis(0); got != "-" {
		t.Errorf("FormatMillis(0) = %q, want -", got)
	}
	if got := FormatMillis(1700000000000); len(got) != len("2006-01-02 15:04:05") {
		t.Errorf("FormatMillis() = %q, unexpected layout", got)
	}
}
