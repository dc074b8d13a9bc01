package dbbadger

import "errors"

var (
	// ErrTradeAlreadyExists ...
	ErrTradeAlreadyExists = errors.New("trade already exists")
	// ErrInvalidRecord is returned when a stored record cannot be converted
	// back to its domain representation.
	ErrInvalidRecord = errors.New("invalid stored record")
)
