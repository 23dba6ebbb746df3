package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRelative(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"seconds ago", now.Add(-30 * time.Second), "방금 전"},
		{"just under a minute", now.Add(-59 * time.Second), "방금 전"},
		{"ninety seconds ago", now.Add(-90 * time.Second), "1분 전"},
		{"minutes ago", now.Add(-5 * time.Minute), "5분 전"},
		{"just under an hour", now.Add(-59 * time.Minute), "59분 전"},
		{"hours ago", now.Add(-3 * time.Hour), "3시간 전"},
		{"just under a day", now.Add(-23 * time.Hour), "23시간 전"},
		{"days ago shows the date", now.Add(-5 * 24 * time.Hour), "2026.03.10"},
		{"future timestamps read as now", now.Add(2 * time.Minute), "방금 전"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatRelative(NewEventTime(tt.at), now))
		})
	}
}

func TestFormatRelative_Unparseable(t *testing.T) {
	t.Parallel()

	now := time.Now()
	assert.Equal(t, "방금 전", FormatRelative(EventTimeFromRaw("not-a-date"), now))
	assert.Equal(t, "방금 전", FormatRelative(EventTime{}, now))
}

func TestEventTime_EpochResolutions(t *testing.T) {
	t.Parallel()

	seconds := EventTimeFromRaw("1725000000")
	millis := EventTimeFromRaw("1725000000000")

	st, ok := seconds.Time()
	require.True(t, ok)
	mt, ok := millis.Time()
	require.True(t, ok)

	assert.True(t, st.Equal(mt), "10-digit and 13-digit epochs must resolve to the same instant")
}

func TestEventTime_StringLayouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"rfc3339", "2026-03-15T12:00:00Z"},
		{"rfc3339 with offset", "2026-03-15T12:00:00+09:00"},
		{"no zone", "2026-03-15T12:00:00"},
		{"space separated", "2026-03-15 12:00:00"},
		{"date only", "2026-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			et := EventTimeFromRaw(tt.raw)
			_, ok := et.Time()
			assert.True(t, ok, "raw %q should parse", tt.raw)
		})
	}
}

func TestEventTime_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("numeric raw stays numeric", func(t *testing.T) {
		t.Parallel()
		var et EventTime
		require.NoError(t, et.UnmarshalJSON([]byte("1725000000000")))

		out, err := et.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, "1725000000000", string(out))
	})

	t.Run("string raw stays quoted", func(t *testing.T) {
		t.Parallel()
		var et EventTime
		require.NoError(t, et.UnmarshalJSON([]byte(`"2026-03-15T12:00:00Z"`)))

		out, err := et.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, `"2026-03-15T12:00:00Z"`, string(out))
	})

	t.Run("null is preserved", func(t *testing.T) {
		t.Parallel()
		var et EventTime
		require.NoError(t, et.UnmarshalJSON([]byte("null")))

		_, ok := et.Time()
		assert.False(t, ok)

		out, err := et.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, "null", string(out))
	})
}
