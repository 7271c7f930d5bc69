package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"

	"deadline_notifier/internal/domain/notification"
)

type prefsRecord struct {
	NotifyOnDay       bool      `json:"notify_on_day"`
	Notify1DayBefore  bool      `json:"notify_1_day_before"`
	Notify7DaysBefore bool      `json:"notify_7_days_before"`
	SoundEnabled      bool      `json:"sound_enabled"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PreferenceStore implements notification.PreferenceRepository on diskv.
type PreferenceStore struct {
	d   *diskv.Diskv
	now func() time.Time
}

func (s *PreferenceStore) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *PreferenceStore) Get(_ context.Context, userID uuid.UUID) (*notification.Preferences, error) {
	key := prefsKey(userID)
	if !s.d.Has(key) {
		return nil, notification.ErrPreferencesNotFound
	}
	val, err := s.d.Read(key)
	if err != nil {
		return nil, fmt.Errorf("error reading preferences: %w", err)
	}
	var rec prefsRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("error decoding preferences: %w", err)
	}
	return &notification.Preferences{
		UserID:            userID,
		NotifyOnDay:       rec.NotifyOnDay,
		Notify1DayBefore:  rec.Notify1DayBefore,
		Notify7DaysBefore: rec.Notify7DaysBefore,
		SoundEnabled:      rec.SoundEnabled,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}, nil
}

func (s *PreferenceStore) EnsureDefaults(ctx context.Context, userID uuid.UUID) error {
	if s.d.Has(prefsKey(userID)) {
		return nil
	}
	prefs := notification.DefaultPreferences(userID)
	prefs.CreatedAt = s.clock()
	prefs.UpdatedAt = prefs.CreatedAt
	return s.write(prefs)
}

func (s *PreferenceStore) Update(ctx context.Context, userID uuid.UUID, patch notification.PreferencesPatch) error {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	prefs.Apply(patch)
	prefs.UpdatedAt = s.clock()
	return s.write(prefs)
}

func (s *PreferenceStore) write(p *notification.Preferences) error {
	data, err := json.Marshal(prefsRecord{
		NotifyOnDay:       p.NotifyOnDay,
		Notify1DayBefore:  p.Notify1DayBefore,
		Notify7DaysBefore: p.Notify7DaysBefore,
		SoundEnabled:      p.SoundEnabled,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if err := s.d.Write(prefsKey(p.UserID), data); err != nil {
		return fmt.Errorf("error writing preferences: %w", err)
	}
	return nil
}
