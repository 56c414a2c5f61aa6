// Package journal keeps a history of patch runs as append-only JSON lines in
// a local file, one line per run.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/MrWong99/tablepatch/internal/patch"
)

// Entry is a single run written to the journal.
type Entry struct {
	Timestamp    time.Time      `json:"timestamp"`
	Catalog      string         `json:"catalog"`
	ItemsChanged int            `json:"items_changed"`
	Rules        map[string]int `json:"rules,omitempty"`
	DirectEdits  int            `json:"direct_edits"`
	Stages       int            `json:"hideout_stages"`
	Error        string         `json:"error,omitempty"`
}

// NewEntry builds an entry from a run's report and error. The timestamp is
// the current time in UTC.
func NewEntry(catalog string, r patch.Report, runErr error) Entry {
	e := Entry{
		Timestamp:    time.Now().UTC(),
		Catalog:      catalog,
		ItemsChanged: r.ItemsChanged(),
		Rules:        r.Rules,
		DirectEdits:  r.DirectEdits,
		Stages:       r.Stages,
	}
	if runErr != nil {
		e.Error = runErr.Error()
	}
	return e
}

// File appends entries to a JSON-lines file. It is safe for concurrent use.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a File writing to path. The file is created on first
// append.
func NewFile(path string) *File {
	return &File{path: path}
}

// Append writes e as one line.
func (f *File) Append(e Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("journal: marshal: %w", err)
	}
	data = append(data, '\n')

	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("journal: open file: %w", err)
	}
	defer fh.Close()

	if _, err := fh.Write(data); err != nil {
		return fmt.Errorf("journal: write: %w", err)
	}
	return nil
}

// Entries reads every entry, oldest first. A missing file yields no entries.
func (f *File) Entries() ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fh, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("journal: open file: %w", err)
	}
	defer fh.Close()

	var out []Entry
	sc := bufio.NewScanner(fh)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("journal: line %d: %w", line, err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("journal: read: %w", err)
	}
	return out, nil
}
