package height

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClockCurrentHeight(t *testing.T) {
	genesis := time.Unix(1700000000, 0)

	tests := []struct {
		name     string
		now      time.Time
		expected int64
	}{
		{
			name:     "before_genesis",
			now:      genesis.Add(-time.Hour),
			expected: 0,
		},
		{
			name:     "at_genesis",
			now:      genesis,
			expected: 0,
		},
		{
			name:     "within_first_interval",
			now:      genesis.Add(13 * time.Second),
			expected: 0,
		},
		{
			name:     "after_one_day",
			now:      genesis.Add(24 * time.Hour),
			expected: 6171,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := newClock(genesis, DefaultInterval, func() time.Time {
				return tt.now
			})
			require.NoError(t, err)

			h, err := c.CurrentHeight(context.Background())
			require.NoError(t, err)
			require.Equal(t, tt.expected, h)
		})
	}
}

func TestFailingNewClock(t *testing.T) {
	_, err := NewClock(time.Time{}, DefaultInterval)
	require.Error(t, err)

	_, err = NewClock(time.Now(), 0)
	require.Error(t, err)
}

func TestManual(t *testing.T) {
	m := NewManual(10)

	h, err := m.CurrentHeight(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(10), h)

	require.Equal(t, int64(15), m.Advance(5))

	m.Set(3)
	h, _ = m.CurrentHeight(context.Background())
	require.Equal(t, int64(3), h)
}
