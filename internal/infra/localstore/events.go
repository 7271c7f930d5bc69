package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"deadline_notifier/internal/domain/event"
)

// EventsFile serves events from a JSON array on disk, the materialized list kept by the
// event editor. The file is re-read on every call so external edits are picked up.
type EventsFile struct {
	path string
	mu   sync.Mutex
}

func NewEventsFile(path string) *EventsFile {
	return &EventsFile{path: path}
}

// ListByUser returns events owned by userID and events without an owner. A missing file
// means there are no events.
func (f *EventsFile) ListByUser(_ context.Context, userID uuid.UUID) ([]*event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.load()
	if err != nil {
		return nil, err
	}
	var out []*event.Event
	for _, ev := range all {
		if ev == nil || (ev.UserID != uuid.Nil && ev.UserID != userID) {
			continue
		}
		sort.SliceStable(ev.Stages, func(i, j int) bool {
			a, b := ev.Stages[i], ev.Stages[j]
			return a != nil && (b == nil || a.SortOrder < b.SortOrder)
		})
		out = append(out, ev)
	}
	return out, nil
}

func (f *EventsFile) SetStageCompleted(_ context.Context, stageID uuid.UUID, completed bool, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.load()
	if err != nil {
		return err
	}
	found := false
	for _, ev := range all {
		if ev == nil {
			continue
		}
		for _, st := range ev.Stages {
			if st != nil && st.ID == stageID {
				st.SetCompleted(completed, at)
				found = true
			}
		}
	}
	if !found {
		return event.ErrStageNotFound
	}
	return f.save(all)
}

func (f *EventsFile) load() ([]*event.Event, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading events file: %w", err)
	}
	var events []*event.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("error decoding events file %s: %w", f.path, err)
	}
	return events, nil
}

// save replaces the file through a rename so readers never see a partial write.
func (f *EventsFile) save(events []*event.Event) error {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".events-*.json")
	if err != nil {
		return fmt.Errorf("error creating temp events file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing events file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing events file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("error replacing events file: %w", err)
	}
	return nil
}
