package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// SettlementChannel moves value in and out of the escrow. A non-nil error
// means that the movement did not succeed and must not be considered done.
type SettlementChannel interface {
	// Collect takes amount from the given account into the escrow. ref
	// identifies the payment on channels where the payer funds the escrow
	// on its own, ie. the hash of an on-chain transfer.
	Collect(ctx context.Context, from common.Address, amount decimal.Decimal, ref string) error
	// Pay moves amount from the escrow to recipient.
	Pay(ctx context.Context, recipient common.Address, amount decimal.Decimal) error
}
