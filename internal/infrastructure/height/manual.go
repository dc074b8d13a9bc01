package height

import (
	"context"
	"sync/atomic"
)

// Manual is a HeightProvider whose height only changes when told so.
type Manual struct {
	height int64
}

// NewManual returns a Manual provider starting at the given height.
func NewManual(start int64) *Manual {
	return &Manual{height: start}
}

func (m *Manual) CurrentHeight(_ context.Context) (int64, error) {
	return atomic.LoadInt64(&m.height), nil
}

// Set moves the height to the given value.
func (m *Manual) Set(height int64) {
	atomic.StoreInt64(&m.height, height)
}

// Advance moves the height forward by delta and returns the new one.
func (m *Manual) Advance(delta int64) int64 {
	return atomic.AddInt64(&m.height, delta)
}
