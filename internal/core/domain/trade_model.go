package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// TradeStatus is derived from a trade record and the current height, it is
// never stored.
type TradeStatus int

const (
	TradeStatusUndefined TradeStatus = iota
	TradeStatusPending
	TradeStatusExpired
	TradeStatusExecuted
	TradeStatusFeeReclaimed
)

var tradeStatusNames = map[TradeStatus]string{
	TradeStatusUndefined:    "UNDEFINED",
	TradeStatusPending:      "PENDING",
	TradeStatusExpired:      "EXPIRED",
	TradeStatusExecuted:     "EXECUTED",
	TradeStatusFeeReclaimed: "FEE_RECLAIMED",
}

func (s TradeStatus) String() string {
	if name, ok := tradeStatusNames[s]; ok {
		return name
	}
	return tradeStatusNames[TradeStatusUndefined]
}

// ParseTradeStatus returns the status matching the given name, or
// TradeStatusUndefined.
func ParseTradeStatus(name string) TradeStatus {
	for s, n := range tradeStatusNames {
		if n == name {
			return s
		}
	}
	return TradeStatusUndefined
}

// IsFinal returns whether no transition can leave the status.
func (s TradeStatus) IsFinal() bool {
	return s == TradeStatusExecuted || s == TradeStatusFeeReclaimed
}

// Trade is the record of a bilateral swap of two non-fungible tokens.
// Records are never deleted.
type Trade struct {
	ID               uint64
	Buyer            common.Address
	Seller           common.Address
	BuyerCollection  common.Address
	SellerCollection common.Address
	BuyerTokenID     *big.Int
	SellerTokenID    *big.Int
	Executed         bool
	FeeReclaimed     bool
	ProposalHeight   int64
	ExpirationHeight int64
	// Fee is the protocol fee charged when the trade was proposed.
	Fee decimal.Decimal
	// PaymentRef identifies the payment that funded the proposal, if the
	// settlement channel needs one.
	PaymentRef string
}

// Proposal holds the terms of a trade as submitted by the buyer.
type Proposal struct {
	Buyer            common.Address
	Seller           common.Address
	BuyerCollection  common.Address
	SellerCollection common.Address
	BuyerTokenID     *big.Int
	SellerTokenID    *big.Int
}

// TradeFilter narrows a trade listing. Zero values match everything.
type TradeFilter struct {
	Buyer      common.Address
	Seller     common.Address
	Status     TradeStatus
	PaymentRef string
}
