package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWarrantyEndDate(t *testing.T) {
	require.Equal(t, date(2034, time.January, 1), WarrantyEndDate(date(2024, time.January, 1), 120))
	require.Equal(t, date(2025, time.July, 15), WarrantyEndDate(date(2024, time.July, 15), 12))
	// AddDate normalizes month-end overflow.
	require.Equal(t, date(2024, time.March, 2), WarrantyEndDate(date(2024, time.January, 31), 1))
}

func TestEffectiveWarrantyStatus(t *testing.T) {
	now := date(2026, time.June, 1)
	active := Warranty{Status: WarrantyActive, EndDate: date(2027, time.January, 1)}
	require.Equal(t, WarrantyActive, EffectiveWarrantyStatus(active, now))

	// An overdue ACTIVE warranty reads EXPIRED before the sweep runs.
	overdue := Warranty{Status: WarrantyActive, EndDate: date(2026, time.January, 1)}
	require.Equal(t, WarrantyExpired, EffectiveWarrantyStatus(overdue, now))

	// Other stored states pass through untouched.
	for _, s := range []string{WarrantyPending, WarrantyVoided, WarrantyExpired} {
		w := Warranty{Status: s, EndDate: date(2020, time.January, 1)}
		require.Equal(t, s, EffectiveWarrantyStatus(w, now))
	}
}

func TestWarrantyDaysRemaining(t *testing.T) {
	now := date(2026, time.June, 1)

	w := Warranty{Status: WarrantyActive, EndDate: date(2026, time.June, 11)}
	require.Equal(t, 10, WarrantyDaysRemaining(w, now))

	// Partial days round up.
	w.EndDate = now.Add(36 * time.Hour)
	require.Equal(t, 2, WarrantyDaysRemaining(w, now))

	// Overdue warranties floor at zero.
	w.EndDate = date(2026, time.January, 1)
	require.Equal(t, 0, WarrantyDaysRemaining(w, now))

	// Non-active warranties always report zero.
	pending := Warranty{Status: WarrantyPending, EndDate: date(2030, time.January, 1)}
	require.Equal(t, 0, WarrantyDaysRemaining(pending, now))
}
