package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// EventArchive journals structured log events to disk so API consumers can
// replay history after the in-memory stream buffer rolls over. One archive
// exists per daemon run; the file is truncated at startup.
type EventArchive struct {
	path string

	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewEventArchive opens a fresh journal at path, truncating any previous run's
// contents. An empty path disables archiving and returns a nil archive, which
// every method tolerates.
func NewEventArchive(path string) (*EventArchive, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	if err := ensureLogDir(path); err != nil {
		return nil, fmt.Errorf("ensure archive dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("initialize archive %s: %w", path, err)
	}
	return &EventArchive{path: path, file: file, enc: json.NewEncoder(file)}, nil
}

// Append journals one event. Failures are swallowed: losing archive lines must
// never take down logging itself.
func (a *EventArchive) Append(evt LogEvent) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enc == nil {
		if !a.reopenLocked() {
			return
		}
	}
	_ = a.enc.Encode(evt)
}

func (a *EventArchive) reopenLocked() bool {
	file, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return false
	}
	a.file = file
	a.enc = json.NewEncoder(file)
	return true
}

// ReadSince returns events with sequence greater than since, along with the
// highest sequence present in the archive. A limit of 0 means unlimited.
func (a *EventArchive) ReadSince(since uint64, limit int) ([]LogEvent, uint64, error) {
	if a == nil || a.path == "" {
		return nil, since, nil
	}
	file, err := os.Open(a.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, since, nil
		}
		return nil, since, fmt.Errorf("open archive %s: %w", a.path, err)
	}
	defer file.Close()

	capHint := limit
	if capHint <= 0 || capHint > 512 {
		capHint = 512
	}
	events := make([]LogEvent, 0, capHint)
	highest := since

	dec := json.NewDecoder(file)
	for {
		var evt LogEvent
		if err := dec.Decode(&evt); err != nil {
			if errors.Is(err, io.EOF) {
				return events, highest, nil
			}
			return events, highest, fmt.Errorf("decode archive %s: %w", a.path, err)
		}
		if evt.Sequence > highest {
			highest = evt.Sequence
		}
		if evt.Sequence <= since {
			continue
		}
		events = append(events, evt)
		if limit > 0 && len(events) >= limit {
			return events, highest, nil
		}
	}
}

// Path returns the on-disk location backing the archive.
func (a *EventArchive) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}

// Close releases the archive file handle.
func (a *EventArchive) Close() error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	var err error
	if a.file != nil {
		err = a.file.Close()
	}
	a.file = nil
	a.enc = nil
	return err
}
