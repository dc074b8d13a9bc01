package inmemory

import "errors"

var (
	// ErrTradeAlreadyExists ...
	ErrTradeAlreadyExists = errors.New("trade already exists")
	// ErrConcurrentCommit is returned when committing a transaction begun
	// before another change was committed to the store.
	ErrConcurrentCommit = errors.New("store changed since the transaction began")
)
