package height

import (
	"context"
	"fmt"
	"time"

	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

// DefaultInterval is the average block interval heights are counted in.
const DefaultInterval = 14 * time.Second

type clock struct {
	genesis  time.Time
	interval time.Duration
	now      func() time.Time
}

// NewClock returns a HeightProvider counting the number of intervals elapsed
// since genesis. Heights before genesis are 0.
func NewClock(genesis time.Time, interval time.Duration) (ports.HeightProvider, error) {
	return newClock(genesis, interval, time.Now)
}

func newClock(
	genesis time.Time, interval time.Duration, now func() time.Time,
) (*clock, error) {
	if genesis.IsZero() {
		return nil, fmt.Errorf("missing genesis time")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be greater than zero")
	}
	return &clock{genesis, interval, now}, nil
}

func (c *clock) CurrentHeight(_ context.Context) (int64, error) {
	elapsed := c.now().Sub(c.genesis)
	if elapsed < 0 {
		return 0, nil
	}
	return int64(elapsed / c.interval), nil
}
