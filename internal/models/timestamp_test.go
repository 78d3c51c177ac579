package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

	for _, raw := range []string{
		"2026-05-04T09:30:00Z",
		"2026-05-04T11:30:00+02:00",
		"2026-05-04 09:30:00+00",
		"2026-05-04 11:30:00+02:00",
		" 2026-05-04 09:30:00 ",
	} {
		got, ok := ParseTimestamp(raw)
		assert.True(t, ok, raw)
		assert.True(t, want.Equal(got), raw)
		assert.Equal(t, time.UTC, got.Location(), raw)
	}

	got, ok := ParseTimestamp("2026-05-04T09:30:00.123456")
	assert.True(t, ok)
	assert.Equal(t, 123456000, got.Nanosecond())

	got, ok = ParseTimestamp("2026-05-04")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), got)

	for _, raw := range []string{"", "not a date", "2026-13-45", "04/05/2026"} {
		_, ok := ParseTimestamp(raw)
		assert.False(t, ok, raw)
	}
}
