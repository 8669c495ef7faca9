package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yndnr/projsnap/internal/core/domain"
)

const (
	recordExtension = ".json"
	recordFileMode  = 0640
	tempPattern     = "*.tmp"
)

var errMissingID = errors.New("record has no id")

func recordPath(dir, id string) string {
	return filepath.Join(dir, id+recordExtension)
}

func isRecordFile(name string) bool {
	return strings.HasSuffix(name, recordExtension)
}

// encodeRecord renders s as indented JSON without HTML escaping, so source
// text stays readable in the record.
func encodeRecord(s *domain.Snapshot) ([]byte, error) {
	rec := *s
	if rec.Files == nil {
		rec.Files = []domain.FileRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*domain.Snapshot, error) {
	var s domain.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.ID == "" {
		return nil, errMissingID
	}
	return &s, nil
}

func readRecord(path string) (*domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeRecord(data)
}

// writeRecord persists s under dir. An existing record with the same id is
// replaced.
func writeRecord(dir string, s *domain.Snapshot) error {
	data, err := encodeRecord(s)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	file, err := os.CreateTemp(dir, s.ID+"-"+tempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := file.Name()
	defer os.Remove(tempPath)

	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("write record: %w", err)
	}
	if err := file.Chmod(recordFileMode); err != nil {
		file.Close()
		return fmt.Errorf("chmod record: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync record: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close record: %w", err)
	}

	if err := os.Rename(tempPath, recordPath(dir, s.ID)); err != nil {
		return fmt.Errorf("rename record: %w", err)
	}
	return nil
}
