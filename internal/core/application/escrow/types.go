package escrow

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

// ProposeArgs are the terms of a trade proposal along with the value paid by
// the buyer for the protocol fee. PaymentRef identifies the payment on
// settlement channels that need one.
type ProposeArgs struct {
	Buyer            common.Address
	Seller           common.Address
	BuyerCollection  common.Address
	SellerCollection common.Address
	BuyerTokenID     *big.Int
	SellerTokenID    *big.Int
	PaidValue        decimal.Decimal
	PaymentRef       string
}

func (a ProposeArgs) proposal() domain.Proposal {
	return domain.Proposal{
		Buyer:            a.Buyer,
		Seller:           a.Seller,
		BuyerCollection:  a.BuyerCollection,
		SellerCollection: a.SellerCollection,
		BuyerTokenID:     a.BuyerTokenID,
		SellerTokenID:    a.SellerTokenID,
	}
}

func (a ProposeArgs) paymentRef() string {
	return strings.ToLower(strings.TrimSpace(a.PaymentRef))
}

// TradeInfo is a trade along with its status at the height it was read.
type TradeInfo struct {
	domain.Trade
	Status domain.TradeStatus
}

// RegistryInfo describes the registry state at the given height.
type RegistryInfo struct {
	NextID           uint64
	ExpirationWindow int64
	Fee              decimal.Decimal
	Admin            common.Address
	Balance          decimal.Decimal
	CurrentHeight    int64
}
