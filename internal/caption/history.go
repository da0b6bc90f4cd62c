package caption

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// History counts caption patterns across runs so templates and AI
// prompts can steer away from phrasing that has been used before. It is
// persisted as a flat JSON object of pattern -> count.
type History struct {
	mu     sync.Mutex
	path   string
	counts map[string]int
}

func NewHistory(path string) *History {
	return &History{path: path, counts: make(map[string]int)}
}

// Load reads the persisted counts. A missing file is an empty history.
func (h *History) Load() error {
	data, err := os.ReadFile(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read caption history: %w", err)
	}
	counts := make(map[string]int)
	if err := json.Unmarshal(data, &counts); err != nil {
		return fmt.Errorf("parse caption history: %w", err)
	}
	h.mu.Lock()
	h.counts = counts
	h.mu.Unlock()
	return nil
}

// Persist writes the counts through a temp-file rename so an interrupted
// write never truncates the previous snapshot.
func (h *History) Persist() error {
	h.mu.Lock()
	data, err := json.MarshalIndent(h.counts, "", "  ")
	h.mu.Unlock()
	if err != nil {
		return err
	}
	tmp := h.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write caption history: %w", err)
	}
	return os.Rename(tmp, h.path)
}

func (h *History) Bump(pattern string) {
	if pattern == "" {
		return
	}
	h.mu.Lock()
	h.counts[pattern]++
	h.mu.Unlock()
}

func (h *History) Count(pattern string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[pattern]
}

func (h *History) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.counts)
}

// Top returns the n most-used patterns, most used first.
func (h *History) Top(n int) []string {
	h.mu.Lock()
	type entry struct {
		pattern string
		count   int
	}
	entries := make([]entry, 0, len(h.counts))
	for p, c := range h.counts {
		entries = append(entries, entry{p, c})
	}
	h.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].pattern < entries[j].pattern
	})
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = entries[i].pattern
	}
	return out
}

// Reset clears the counts and removes the persisted file.
func (h *History) Reset() error {
	h.mu.Lock()
	h.counts = make(map[string]int)
	h.mu.Unlock()
	err := os.Remove(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

var (
	nonWordPattern  = regexp.MustCompile(`[^\w\s]`)
	stopWordPattern = regexp.MustCompile(`\b(this|that|the|a|an|and|or|but|in|on|at|to|for|of|with|by)\b`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// Pattern reduces a caption to a short fingerprint: the first three
// substantive words after punctuation and stop words are removed.
func Pattern(caption string) string {
	cleaned := strings.ToLower(caption)
	cleaned = nonWordPattern.ReplaceAllString(cleaned, " ")
	cleaned = stopWordPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(spacePattern.ReplaceAllString(cleaned, " "))

	var words []string
	for _, w := range strings.Split(cleaned, " ") {
		if len(w) > 2 {
			words = append(words, w)
		}
		if len(words) == 3 {
			break
		}
	}
	return strings.Join(words, " ")
}
