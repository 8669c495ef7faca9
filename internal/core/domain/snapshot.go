package domain

import (
	"strconv"
	"strings"
	"time"
)

// SnapshotIDPrefix is the prefix for snapshot IDs.
const SnapshotIDPrefix = "backup_"

// Well-known snapshot kinds. Kind is free-form; these are the values the
// service itself produces.
const (
	KindManual = "manual"
	KindAuto   = "auto"
)

// FileRecord is one text file captured by a snapshot.
type FileRecord struct {
	// Path is the file location as discovered under the snapshot root.
	Path string `json:"path"`

	// Content is the full UTF-8 text at capture time.
	Content string `json:"content"`

	// Digest is the SHA-256 hex of Content, fixed at capture time.
	Digest string `json:"hash"`
}

// Snapshot is an immutable, timestamped capture of a directory tree's text files.
//
// The JSON tags define the persisted record format.
type Snapshot struct {
	// ID has the form backup_{epoch_millis}.
	ID string `json:"id"`

	// Label is the optional user supplied name.
	Label *string `json:"name"`

	// Note is the optional user supplied description.
	Note *string `json:"description"`

	// CreatedAt is the capture timestamp (Unix milliseconds).
	CreatedAt int64 `json:"timestamp"`

	// Kind classifies the snapshot (manual, auto, ...). Not validated.
	Kind string `json:"type"`

	FileCount int `json:"file_count"`

	// TotalSize is the sum of len(Content) over Files, in bytes.
	TotalSize int `json:"size"`

	Files []FileRecord `json:"files"`
}

// NewSnapshotID derives a snapshot ID from a capture time.
func NewSnapshotID(t time.Time) string {
	return SnapshotIDPrefix + strconv.FormatInt(t.UnixMilli(), 10)
}

// IsValidSnapshotID reports whether id has the backup_{millis} form.
func IsValidSnapshotID(id string) bool {
	if !strings.HasPrefix(id, SnapshotIDPrefix) {
		return false
	}
	ms := id[len(SnapshotIDPrefix):]
	if ms == "" {
		return false
	}
	_, err := strconv.ParseInt(ms, 10, 64)
	return err == nil
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Label != nil {
		label := *s.Label
		clone.Label = &label
	}
	if s.Note != nil {
		note := *s.Note
		clone.Note = &note
	}
	if s.Files != nil {
		clone.Files = make([]FileRecord, len(s.Files))
		copy(clone.Files, s.Files)
	}
	return &clone
}

// Consistent reports whether the derived aggregates match Files.
func (s *Snapshot) Consistent() bool {
	if s.FileCount != len(s.Files) {
		return false
	}
	total := 0
	for _, f := range s.Files {
		total += len(f.Content)
	}
	return total == s.TotalSize
}

// SnapshotSummary is a Snapshot without file contents.
type SnapshotSummary struct {
	ID        string  `json:"id"`
	Label     *string `json:"name"`
	Note      *string `json:"description"`
	CreatedAt int64   `json:"timestamp"`
	Kind      string  `json:"type"`
	FileCount int     `json:"file_count"`
	TotalSize int     `json:"size"`
}

// Summary returns the metadata of s.
func (s *Snapshot) Summary() SnapshotSummary {
	return SnapshotSummary{
		ID:        s.ID,
		Label:     s.Label,
		Note:      s.Note,
		CreatedAt: s.CreatedAt,
		Kind:      s.Kind,
		FileCount: s.FileCount,
		TotalSize: s.TotalSize,
	}
}

// StringPtr returns a pointer to v, or nil when v is empty.
func StringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
