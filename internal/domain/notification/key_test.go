package notification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stageID = uuid.MustParse("6f1c1f5e-2a4b-4c1d-9a77-3d2b8f0e51aa")

func TestKey_String(t *testing.T) {
	day := Date{Year: 2026, Month: time.October, Day: 18}

	tests := []struct {
		name string
		key  Key
		want string
	}{
		{"on day end", NewOnDayKey(stageID, BoundaryEnd, day), "end-6f1c1f5e-2a4b-4c1d-9a77-3d2b8f0e51aa-2026-10-18"},
		{"on day start", NewOnDayKey(stageID, BoundaryStart, day), "start-6f1c1f5e-2a4b-4c1d-9a77-3d2b8f0e51aa-2026-10-18"},
		{"tomorrow end", NewTomorrowKey(stageID, BoundaryEnd), "tomorrow-6f1c1f5e-2a4b-4c1d-9a77-3d2b8f0e51aa"},
		{"tomorrow start", NewTomorrowKey(stageID, BoundaryStart), "tomorrow-start-6f1c1f5e-2a4b-4c1d-9a77-3d2b8f0e51aa"},
		{"seven days end", NewSevenDaysKey(stageID, BoundaryEnd), "7days-6f1c1f5e-2a4b-4c1d-9a77-3d2b8f0e51aa"},
		{"seven days start", NewSevenDaysKey(stageID, BoundaryStart), "7days-start-6f1c1f5e-2a4b-4c1d-9a77-3d2b8f0e51aa"},
		{"missed", NewMissedKey(stageID), "missed-end-6f1c1f5e-2a4b-4c1d-9a77-3d2b8f0e51aa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())

			parsed, err := ParseKey(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.key, parsed)
			assert.Equal(t, stageID, parsed.Stage())
		})
	}
}

func TestParseKey_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"missed-start-6f1c1f5e-2a4b-4c1d-9a77-3d2b8f0e51aa",
		"tomorrow-not-a-uuid",
		"end-6f1c1f5e-2a4b-4c1d-9a77-3d2b8f0e51aa",
		"end-6f1c1f5e-2a4b-4c1d-9a77-3d2b8f0e51aa-2026-13-40",
		"7days-6F1C1F5E-2A4B-4C1D-9A77-3D2B8F0E51AA",
		"later-6f1c1f5e-2a4b-4c1d-9a77-3d2b8f0e51aa",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := ParseKey(in)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestKey_WindowCategory(t *testing.T) {
	assert.Equal(t, CategoryMissed, NewMissedKey(stageID).Window().Category())
	assert.Equal(t, CategoryUpcoming, NewTomorrowKey(stageID, BoundaryStart).Window().Category())
	assert.Equal(t, CategoryUpcoming, NewOnDayKey(stageID, BoundaryEnd, Date{}).Window().Category())
}

func TestDate(t *testing.T) {
	d := Date{Year: 2026, Month: time.December, Day: 28}
	assert.Equal(t, "2027-01-04", d.AddDays(7).String())
	assert.Equal(t, "2026-12-27", d.AddDays(-1).String())

	parsed, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, parsed)

	_, err = ParseDate("2025-02-29")
	assert.Error(t, err)
}

func TestDateOf_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	utc := time.Date(2026, time.October, 18, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-18", DateOf(utc).String())
	assert.Equal(t, "2026-10-19", DateOf(utc.In(tokyo)).String())
}
