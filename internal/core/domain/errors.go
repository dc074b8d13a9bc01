package domain

import "errors"

var (
	// ErrUnauthorized is returned when the caller does not hold the role
	// required by the operation (buyer, seller or admin).
	ErrUnauthorized = errors.New("caller is not authorized to perform this operation")
	// ErrInsufficientFee is returned when the value paid with a proposal is
	// lower than the protocol fee.
	ErrInsufficientFee = errors.New("paid value does not cover the protocol fee")
	// ErrPaymentAlreadyUsed is returned when a proposal references a payment
	// that already funded another trade.
	ErrPaymentAlreadyUsed = errors.New("payment already used by another trade")
	// ErrTradeExpired is returned when executing a trade past its expiration
	// height.
	ErrTradeExpired = errors.New("trade is expired")
	// ErrTradeAlreadyExecuted is returned when executing or cancelling an
	// already executed trade.
	ErrTradeAlreadyExecuted = errors.New("trade is already executed")
	// ErrTransferVerificationFailed is returned when, after the two transfers,
	// the owners of the swapped tokens do not match the expected ones.
	ErrTransferVerificationFailed = errors.New("ownership verification failed after transfer")
	// ErrTransferFailed is returned when an asset registry refuses to transfer
	// one of the swapped tokens.
	ErrTransferFailed = errors.New("asset transfer failed")
	// ErrSettlementFailed is returned when a fee payment does not succeed.
	ErrSettlementFailed = errors.New("settlement failed")
	// ErrTradeNotFound ...
	ErrTradeNotFound = errors.New("trade not found")
	// ErrInvalidTrade is returned for proposals with missing collections or
	// token ids, or offering the very same token on both sides.
	ErrInvalidTrade = errors.New("invalid trade")
	// ErrInvalidAdmin ...
	ErrInvalidAdmin = errors.New("admin must not be the zero address")
	// ErrBatchTooLarge is returned when reclaiming fees for more trades than
	// allowed in a single call.
	ErrBatchTooLarge = errors.New("too many trades in batch")
	// ErrRegistryNotInitialized ...
	ErrRegistryNotInitialized = errors.New("registry state is not initialized")
)
