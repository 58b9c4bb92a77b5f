// Package runlog manages per-run working directories and the step
// journal persisted alongside every capture and analysis.
package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/pagelens/pagelens/internal/platform/jsonutil"
)

// Step status values recorded in the journal.
const (
	StatusStarted = "started"
	StatusSuccess = "success"
	StatusError   = "error"
)

const logFileName = "run_log.json"

var slugPattern = regexp.MustCompile(`[^a-zA-Z0-9-]+`)

// Slugify folds a URL or title into a short directory-safe token.
func Slugify(s string) string {
	slug := slugPattern.ReplaceAllString(s, "-")
	if len(slug) > 50 {
		slug = slug[:50]
	}
	return strings.ToLower(strings.Trim(slug, "-"))
}

// NewRunDir creates a timestamped working directory for one run under
// baseDir, named <timestamp>_<slug>.
func NewRunDir(baseDir, url string) (string, error) {
	ts := time.Now().Format("20060102-150405")
	dir := filepath.Join(baseDir, fmt.Sprintf("%s_%s", ts, Slugify(url)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	return dir, nil
}

// Logger accumulates run metadata and persists the whole record as JSON
// after every change, so a crash at any step leaves a readable journal.
type Logger struct {
	dir  string
	path string

	mu   sync.Mutex
	data map[string]any
}

// New opens the journal for runDir. An existing well-formed journal is
// merged and extended; a corrupted one is replaced rather than crashing
// the run.
func New(runDir, url string) (*Logger, error) {
	l := &Logger{
		dir:  runDir,
		path: filepath.Join(runDir, logFileName),
		data: map[string]any{
			"url":        url,
			"created_at": now(),
			"steps":      []any{},
		},
	}
	if raw, err := os.ReadFile(l.path); err == nil {
		var existing map[string]any
		if err := json.Unmarshal(raw, &existing); err == nil {
			for k, v := range existing {
				l.data[k] = v
			}
			if _, ok := l.data["steps"]; !ok {
				l.data["steps"] = []any{}
			}
		}
	}
	if err := l.persist(); err != nil {
		return nil, err
	}
	return l, nil
}

// Path returns the journal file location.
func (l *Logger) Path() string { return l.path }

// Dir returns the run directory.
func (l *Logger) Dir() string { return l.dir }

// SetContext attaches fields to the top-level record.
func (l *Logger) SetContext(fields map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range fields {
		l.data[k] = jsonutil.Safe(v)
	}
	return l.persist()
}

// AddStep appends a journal entry. The detail payload is folded to
// JSON-safe values so arbitrary diagnostics never break persistence.
func (l *Logger) AddStep(name, status, message string, detail any) error {
	entry := map[string]any{
		"timestamp": now(),
		"step":      name,
		"status":    status,
	}
	if message != "" {
		entry["message"] = message
	}
	if detail != nil {
		entry["detail"] = jsonutil.Safe(detail)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	steps, _ := l.data["steps"].([]any)
	l.data["steps"] = append(steps, entry)
	return l.persist()
}

func (l *Logger) persist() error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("creating run dir: %w", err)
	}
	raw, err := json.MarshalIndent(l.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run log: %w", err)
	}
	if err := os.WriteFile(l.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing run log: %w", err)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
