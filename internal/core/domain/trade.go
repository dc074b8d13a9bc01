package domain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// NewTrade returns a pending trade for the given proposal. The trade expires
// once currentHeight + window is passed.
func NewTrade(
	id uint64, proposal Proposal, fee decimal.Decimal,
	currentHeight, window int64,
) (*Trade, error) {
	if err := proposal.validate(); err != nil {
		return nil, err
	}

	return &Trade{
		ID:               id,
		Buyer:            proposal.Buyer,
		Seller:           proposal.Seller,
		BuyerCollection:  proposal.BuyerCollection,
		SellerCollection: proposal.SellerCollection,
		BuyerTokenID:     new(big.Int).Set(proposal.BuyerTokenID),
		SellerTokenID:    new(big.Int).Set(proposal.SellerTokenID),
		ProposalHeight:   currentHeight,
		ExpirationHeight: currentHeight + window,
		Fee:              fee,
	}, nil
}

// CanExecute runs the execution preconditions in order: the caller must be
// the seller, the trade must not be expired and must not be executed yet.
func (t *Trade) CanExecute(caller common.Address, currentHeight int64) error {
	if caller != t.Seller {
		return ErrUnauthorized
	}
	if currentHeight > t.ExpirationHeight {
		return ErrTradeExpired
	}
	if t.Executed {
		return ErrTradeAlreadyExecuted
	}
	return nil
}

// Execute marks the trade as executed after checking the preconditions.
// Asset transfers are up to the caller and must happen before.
func (t *Trade) Execute(caller common.Address, currentHeight int64) error {
	if err := t.CanExecute(caller, currentHeight); err != nil {
		return err
	}
	t.Executed = true
	return nil
}

// Cancel forces the trade into an already expired state. The fee is not
// refunded, that's up to a later ReclaimFee. Cancelling an expired trade is
// allowed and pushes the expiration further into the past.
func (t *Trade) Cancel(caller common.Address, currentHeight int64) error {
	if t.Executed {
		return ErrTradeAlreadyExecuted
	}
	if caller != t.Buyer {
		return ErrUnauthorized
	}
	t.ExpirationHeight = currentHeight - 1
	return nil
}

// IsExpired returns whether the trade can no longer be executed at the given
// height.
func (t *Trade) IsExpired(currentHeight int64) bool {
	return currentHeight > t.ExpirationHeight
}

// IsFeeReclaimable returns whether the fee of the trade can be refunded to
// the buyer at the given height.
func (t *Trade) IsFeeReclaimable(currentHeight int64) bool {
	return t.IsExpired(currentHeight) && !t.Executed && !t.FeeReclaimed
}

// ReclaimFee marks the fee as reclaimed if allowed and returns whether it
// did so.
func (t *Trade) ReclaimFee(currentHeight int64) bool {
	if !t.IsFeeReclaimable(currentHeight) {
		return false
	}
	t.FeeReclaimed = true
	return true
}

// HoldsFee returns whether the fee of the trade is still retained by the
// registry, ie. it was neither forwarded to the admin nor refunded.
func (t *Trade) HoldsFee() bool {
	return !t.Executed && !t.FeeReclaimed
}

// HeldFees returns the sum of the fees still retained for the given trades.
func HeldFees(trades []Trade) decimal.Decimal {
	total := decimal.Zero
	for i := range trades {
		if trades[i].HoldsFee() {
			total = total.Add(trades[i].Fee)
		}
	}
	return total
}

// Status returns the lifecycle status of the trade at the given height.
func (t *Trade) Status(currentHeight int64) TradeStatus {
	switch {
	case t.Executed:
		return TradeStatusExecuted
	case t.FeeReclaimed:
		return TradeStatusFeeReclaimed
	case t.IsExpired(currentHeight):
		return TradeStatusExpired
	default:
		return TradeStatusPending
	}
}

// Match returns whether the trade satisfies the given filter at the given
// height.
func (t *Trade) Match(filter TradeFilter, currentHeight int64) bool {
	if filter.Buyer != (common.Address{}) && filter.Buyer != t.Buyer {
		return false
	}
	if filter.Seller != (common.Address{}) && filter.Seller != t.Seller {
		return false
	}
	if filter.Status != TradeStatusUndefined &&
		filter.Status != t.Status(currentHeight) {
		return false
	}
	if filter.PaymentRef != "" && filter.PaymentRef != t.PaymentRef {
		return false
	}
	return true
}

func (p Proposal) validate() error {
	if p.Buyer == (common.Address{}) || p.Seller == (common.Address{}) {
		return fmt.Errorf("%w: missing counterparty", ErrInvalidTrade)
	}
	if p.BuyerCollection == (common.Address{}) ||
		p.SellerCollection == (common.Address{}) {
		return fmt.Errorf("%w: missing collection", ErrInvalidTrade)
	}
	if p.BuyerTokenID == nil || p.SellerTokenID == nil {
		return fmt.Errorf("%w: missing token id", ErrInvalidTrade)
	}
	if p.BuyerTokenID.Sign() < 0 || p.SellerTokenID.Sign() < 0 {
		return fmt.Errorf("%w: negative token id", ErrInvalidTrade)
	}
	if p.BuyerCollection == p.SellerCollection &&
		p.BuyerTokenID.Cmp(p.SellerTokenID) == 0 {
		return fmt.Errorf("%w: same token offered on both sides", ErrInvalidTrade)
	}
	return nil
}
