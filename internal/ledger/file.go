package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FileLedger persists the posted set as a JSON array snapshot on disk.
type FileLedger struct {
	memberSet
	path string
}

// NewFileLedger builds a FileLedger writing to path.
func NewFileLedger(path string) *FileLedger {
	return &FileLedger{memberSet: newMemberSet(), path: path}
}

// Load replaces the in-memory set with the file contents.
func (l *FileLedger) Load(_ context.Context) error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.clear()
			return nil
		}
		return fmt.Errorf("read ledger file: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("decode ledger file: %w", err)
	}
	l.replace(ids)
	return nil
}

// Persist writes the full current set, replacing prior contents. The write
// goes through a temp file and rename so a failed write never truncates the
// previous snapshot.
func (l *FileLedger) Persist(_ context.Context) error {
	ids := l.snapshot()
	sort.Strings(ids)

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

// Reset clears the set and persists the empty state.
func (l *FileLedger) Reset(ctx context.Context) error {
	l.clear()
	return l.Persist(ctx)
}
