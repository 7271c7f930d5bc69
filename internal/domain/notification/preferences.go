package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Preferences are the per-user reminder switches. They are created once per user with
// every flag on and are read-only to the scanner.
type Preferences struct {
	UserID            uuid.UUID
	NotifyOnDay       bool
	Notify1DayBefore  bool
	Notify7DaysBefore bool
	SoundEnabled      bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func DefaultPreferences(userID uuid.UUID) *Preferences {
	return &Preferences{
		UserID:            userID,
		NotifyOnDay:       true,
		Notify1DayBefore:  true,
		Notify7DaysBefore: true,
		SoundEnabled:      true,
	}
}

// Allows reports whether reminders for window w are switched on. Missed reminders have
// no switch.
func (p *Preferences) Allows(w Window) bool {
	switch w {
	case WindowOnDay:
		return p.NotifyOnDay
	case WindowTomorrow:
		return p.Notify1DayBefore
	case WindowSevenDays:
		return p.Notify7DaysBefore
	case WindowMissed:
		return true
	}
	return false
}

// PreferencesPatch carries a partial update; nil fields are left untouched.
type PreferencesPatch struct {
	NotifyOnDay       *bool
	Notify1DayBefore  *bool
	Notify7DaysBefore *bool
	SoundEnabled      *bool
}

func (p PreferencesPatch) IsEmpty() bool {
	return p.NotifyOnDay == nil && p.Notify1DayBefore == nil && p.Notify7DaysBefore == nil && p.SoundEnabled == nil
}

// Apply copies the non-nil fields of patch onto p.
func (p *Preferences) Apply(patch PreferencesPatch) {
	if patch.NotifyOnDay != nil {
		p.NotifyOnDay = *patch.NotifyOnDay
	}
	if patch.Notify1DayBefore != nil {
		p.Notify1DayBefore = *patch.Notify1DayBefore
	}
	if patch.Notify7DaysBefore != nil {
		p.Notify7DaysBefore = *patch.Notify7DaysBefore
	}
	if patch.SoundEnabled != nil {
		p.SoundEnabled = *patch.SoundEnabled
	}
}

// PreferenceFlag names a single switch, matching the storage column names.
type PreferenceFlag string

const (
	FlagNotifyOnDay       PreferenceFlag = "notify_on_day"
	FlagNotify1DayBefore  PreferenceFlag = "notify_1_day_before"
	FlagNotify7DaysBefore PreferenceFlag = "notify_7_days_before"
	FlagSoundEnabled      PreferenceFlag = "sound_enabled"
)

// AllFlags lists the switches in display order.
func AllFlags() []PreferenceFlag {
	return []PreferenceFlag{FlagNotifyOnDay, FlagNotify1DayBefore, FlagNotify7DaysBefore, FlagSoundEnabled}
}

// Value returns the current state of flag f.
func (p *Preferences) Value(f PreferenceFlag) (bool, error) {
	switch f {
	case FlagNotifyOnDay:
		return p.NotifyOnDay, nil
	case FlagNotify1DayBefore:
		return p.Notify1DayBefore, nil
	case FlagNotify7DaysBefore:
		return p.Notify7DaysBefore, nil
	case FlagSoundEnabled:
		return p.SoundEnabled, nil
	}
	return false, fmt.Errorf("unknown preference flag %q", f)
}

// PatchFor builds a patch setting only flag f to v.
func PatchFor(f PreferenceFlag, v bool) (PreferencesPatch, error) {
	var patch PreferencesPatch
	switch f {
	case FlagNotifyOnDay:
		patch.NotifyOnDay = &v
	case FlagNotify1DayBefore:
		patch.Notify1DayBefore = &v
	case FlagNotify7DaysBefore:
		patch.Notify7DaysBefore = &v
	case FlagSoundEnabled:
		patch.SoundEnabled = &v
	default:
		return patch, fmt.Errorf("unknown preference flag %q", f)
	}
	return patch, nil
}
