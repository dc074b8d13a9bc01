package ports

import "context"

// HeightProvider returns the current value of the monotonic counter trades
// expiration is expressed in, ie. a block height.
type HeightProvider interface {
	CurrentHeight(ctx context.Context) (int64, error)
}
