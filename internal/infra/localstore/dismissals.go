package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"

	"deadline_notifier/internal/domain/notification"
)

type dismissalRecord struct {
	Key            string     `json:"key"`
	DismissedUntil *time.Time `json:"dismissed_until"`
	CreatedAt      time.Time  `json:"created_at"`
}

// DismissalStore implements notification.DismissalRepository on diskv. Each (user, key)
// pair is one file, so a write replaces the previous record.
type DismissalStore struct {
	d   *diskv.Diskv
	now func() time.Time
}

func (s *DismissalStore) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *DismissalStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Dismissal, error) {
	var out []*notification.Dismissal
	for key := range s.d.KeysPrefix(dismissalPrefix(userID), ctx.Done()) {
		val, err := s.d.Read(key)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("error reading dismissal %s: %w", key, err)
		}
		var rec dismissalRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return nil, fmt.Errorf("error decoding dismissal %s: %w", key, err)
		}
		out = append(out, &notification.Dismissal{
			UserID:         userID,
			Key:            rec.Key,
			DismissedUntil: rec.DismissedUntil,
			CreatedAt:      rec.CreatedAt,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *DismissalStore) Upsert(_ context.Context, userID uuid.UUID, key string, until *time.Time) error {
	data, err := json.Marshal(dismissalRecord{Key: key, DismissedUntil: until, CreatedAt: s.clock()})
	if err != nil {
		return err
	}
	if err := s.d.Write(dismissalKey(userID, key), data); err != nil {
		return fmt.Errorf("error writing dismissal: %w", err)
	}
	return nil
}

// Delete removes the record. A missing record is not an error.
func (s *DismissalStore) Delete(_ context.Context, userID uuid.UUID, key string) error {
	if err := s.d.Erase(dismissalKey(userID, key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error erasing dismissal: %w", err)
	}
	return nil
}
