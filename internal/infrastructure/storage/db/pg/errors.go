package postgresdb

import "errors"

var (
	// ErrTradeAlreadyExists ...
	ErrTradeAlreadyExists = errors.New("trade already exists")
	// ErrInvalidRecord is returned when a stored row cannot be converted back
	// to its domain representation.
	ErrInvalidRecord = errors.New("invalid stored record")
)
