package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewSnapshotID(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	id := NewSnapshotID(ts)
	if id != "backup_1700000000123" {
		t.Errorf("NewSnapshotID() = %q, want %q", id, "backup_1700000000123")
	}
	if !IsValidSnapshotID(id) {
		t.Errorf("IsValidSnapshotID(%q) = false", id)
	}
}

func TestIsValidSnapshotID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"backup_1", true},
		{"backup_", false},
		{"backup_abc", false},
		{"snapshot-1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidSnapshotID(tt.id); got != tt.want {
			t.Errorf("IsValidSnapshotID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestSnapshot_Clone(t *testing.T) {
	s := &Snapshot{
		ID:        "backup_1",
		Label:     StringPtr("before refactor"),
		Kind:      KindManual,
		FileCount: 1,
		TotalSize: 5,
		Files:     []FileRecord{{Path: "/p/a.txt", Content: "hello", Digest: "x"}},
	}

	clone := s.Clone()
	clone.Files[0].Content = "changed"
	*clone.Label = "changed"

	if s.Files[0].Content != "hello" {
		t.Error("Clone should deep copy Files")
	}
	if *s.Label != "before refactor" {
		t.Error("Clone should deep copy Label")
	}

	var nilSnap *Snapshot
	if nilSnap.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestSnapshot_Consistent(t *testing.T) {
	s := &Snapshot{
		FileCount: 2,
		TotalSize: 7,
		Files: []FileRecord{
			{Path: "a", Content: "hello"},
			{Path: "b", Content: "hi"},
		},
	}
	if !s.Consistent() {
		t.Error("expected consistent snapshot")
	}

	s.TotalSize = 8
	if s.Consistent() {
		t.Error("expected inconsistent total size")
	}
}

func TestSnapshot_JSONFieldNames(t *testing.T) {
	s := &Snapshot{
		ID:        "backup_42",
		CreatedAt: 42,
		Kind:      KindAuto,
		FileCount: 1,
		TotalSize: 2,
		Files:     []FileRecord{{Path: "/p/a", Content: "v1", Digest: "d"}},
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := string(data)

	for _, want := range []string{
		`"id":"backup_42"`,
		`"name":null`,
		`"description":null`,
		`"timestamp":42`,
		`"type":"auto"`,
		`"file_count":1`,
		`"size":2`,
		`"hash":"d"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("marshaled record missing %s: %s", want, got)
		}
	}
}

func TestSnapshot_Summary(t *testing.T) {
	s := &Snapshot{ID: "backup_7", Kind: "custom", FileCount: 3, TotalSize: 10}
	sum := s.Summary()
	if sum.ID != s.ID || sum.Kind != "custom" || sum.FileCount != 3 || sum.TotalSize != 10 {
		t.Errorf("Summary() = %+v", sum)
	}
}

func TestStringPtr(t *testing.T) {
	if StringPtr("") != nil {
		t.Error("StringPtr(\"\") should be nil")
	}
	if p := StringPtr("x"); p == nil || *p != "x" {
		t.Error("StringPtr(\"x\") should point to x")
	}
}
