package dbbadger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

const registryStateKey = "registry_state"

type tradeRecord struct {
	ID               uint64
	Buyer            string
	Seller           string
	BuyerCollection  string
	SellerCollection string
	BuyerTokenID     string
	SellerTokenID    string
	Executed         bool
	FeeReclaimed     bool
	ProposalHeight   int64
	ExpirationHeight int64
	Fee              string
	PaymentRef       string
}

type registryStateRecord struct {
	NextID           uint64
	ExpirationWindow int64
	Fee              string
	Admin            string
	Balance          string
}

func toTradeRecord(t domain.Trade) tradeRecord {
	return tradeRecord{
		ID:               t.ID,
		Buyer:            t.Buyer.Hex(),
		Seller:           t.Seller.Hex(),
		BuyerCollection:  t.BuyerCollection.Hex(),
		SellerCollection: t.SellerCollection.Hex(),
		BuyerTokenID:     t.BuyerTokenID.String(),
		SellerTokenID:    t.SellerTokenID.String(),
		Executed:         t.Executed,
		FeeReclaimed:     t.FeeReclaimed,
		ProposalHeight:   t.ProposalHeight,
		ExpirationHeight: t.ExpirationHeight,
		Fee:              t.Fee.String(),
		PaymentRef:       t.PaymentRef,
	}
}

func (r tradeRecord) toDomain() (*domain.Trade, error) {
	buyerTokenID, ok := new(big.Int).SetString(r.BuyerTokenID, 10)
	if !ok {
		return nil, fmt.Errorf("%w: trade %d buyer token id", ErrInvalidRecord, r.ID)
	}
	sellerTokenID, ok := new(big.Int).SetString(r.SellerTokenID, 10)
	if !ok {
		return nil, fmt.Errorf("%w: trade %d seller token id", ErrInvalidRecord, r.ID)
	}
	fee, err := decimal.NewFromString(r.Fee)
	if err != nil {
		return nil, fmt.Errorf("%w: trade %d fee: %s", ErrInvalidRecord, r.ID, err)
	}

	return &domain.Trade{
		ID:               r.ID,
		Buyer:            common.HexToAddress(r.Buyer),
		Seller:           common.HexToAddress(r.Seller),
		BuyerCollection:  common.HexToAddress(r.BuyerCollection),
		SellerCollection: common.HexToAddress(r.SellerCollection),
		BuyerTokenID:     buyerTokenID,
		SellerTokenID:    sellerTokenID,
		Executed:         r.Executed,
		FeeReclaimed:     r.FeeReclaimed,
		ProposalHeight:   r.ProposalHeight,
		ExpirationHeight: r.ExpirationHeight,
		Fee:              fee,
		PaymentRef:       r.PaymentRef,
	}, nil
}

func toRegistryStateRecord(s domain.RegistryState) registryStateRecord {
	return registryStateRecord{
		NextID:           s.NextID,
		ExpirationWindow: s.ExpirationWindow,
		Fee:              s.Fee.String(),
		Admin:            s.Admin.Hex(),
		Balance:          s.Balance.String(),
	}
}

func (r registryStateRecord) toDomain() (*domain.RegistryState, error) {
	fee, err := decimal.NewFromString(r.Fee)
	if err != nil {
		return nil, fmt.Errorf("%w: registry fee: %s", ErrInvalidRecord, err)
	}
	balance, err := decimal.NewFromString(r.Balance)
	if err != nil {
		return nil, fmt.Errorf("%w: registry balance: %s", ErrInvalidRecord, err)
	}

	return &domain.RegistryState{
		NextID:           r.NextID,
		ExpirationWindow: r.ExpirationWindow,
		Fee:              fee,
		Admin:            common.HexToAddress(r.Admin),
		Balance:          balance,
	}, nil
}
