package postgresdb

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

const tradeColumns = `id, buyer, seller, buyer_collection, seller_collection,
	buyer_token_id, seller_token_id, executed, fee_reclaimed,
	proposal_height, expiration_height, fee, payment_ref`

type tradeRow struct {
	id               int64
	buyer            string
	seller           string
	buyerCollection  string
	sellerCollection string
	buyerTokenID     string
	sellerTokenID    string
	executed         bool
	feeReclaimed     bool
	proposalHeight   int64
	expirationHeight int64
	fee              string
	paymentRef       string
}

func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var r tradeRow
	if err := row.Scan(
		&r.id, &r.buyer, &r.seller, &r.buyerCollection, &r.sellerCollection,
		&r.buyerTokenID, &r.sellerTokenID, &r.executed, &r.feeReclaimed,
		&r.proposalHeight, &r.expirationHeight, &r.fee, &r.paymentRef,
	); err != nil {
		return nil, err
	}
	return r.toDomain()
}

func tradeArgs(t domain.Trade) []any {
	return []any{
		int64(t.ID),
		t.Buyer.Hex(),
		t.Seller.Hex(),
		t.BuyerCollection.Hex(),
		t.SellerCollection.Hex(),
		t.BuyerTokenID.String(),
		t.SellerTokenID.String(),
		t.Executed,
		t.FeeReclaimed,
		t.ProposalHeight,
		t.ExpirationHeight,
		t.Fee.String(),
		t.PaymentRef,
	}
}

func (r tradeRow) toDomain() (*domain.Trade, error) {
	buyerTokenID, ok := new(big.Int).SetString(r.buyerTokenID, 10)
	if !ok {
		return nil, fmt.Errorf("%w: trade %d buyer token id", ErrInvalidRecord, r.id)
	}
	sellerTokenID, ok := new(big.Int).SetString(r.sellerTokenID, 10)
	if !ok {
		return nil, fmt.Errorf("%w: trade %d seller token id", ErrInvalidRecord, r.id)
	}
	fee, err := decimal.NewFromString(r.fee)
	if err != nil {
		return nil, fmt.Errorf("%w: trade %d fee: %s", ErrInvalidRecord, r.id, err)
	}

	return &domain.Trade{
		ID:               uint64(r.id),
		Buyer:            common.HexToAddress(r.buyer),
		Seller:           common.HexToAddress(r.seller),
		BuyerCollection:  common.HexToAddress(r.buyerCollection),
		SellerCollection: common.HexToAddress(r.sellerCollection),
		BuyerTokenID:     buyerTokenID,
		SellerTokenID:    sellerTokenID,
		Executed:         r.executed,
		FeeReclaimed:     r.feeReclaimed,
		ProposalHeight:   r.proposalHeight,
		ExpirationHeight: r.expirationHeight,
		Fee:              fee,
		PaymentRef:       r.paymentRef,
	}, nil
}

func scanRegistryState(row pgx.Row) (*domain.RegistryState, error) {
	var (
		nextID          int64
		window          int64
		fee, admin, bal string
	)
	if err := row.Scan(&nextID, &window, &fee, &admin, &bal); err != nil {
		return nil, err
	}

	feeAmount, err := decimal.NewFromString(fee)
	if err != nil {
		return nil, fmt.Errorf("%w: registry fee: %s", ErrInvalidRecord, err)
	}
	balance, err := decimal.NewFromString(bal)
	if err != nil {
		return nil, fmt.Errorf("%w: registry balance: %s", ErrInvalidRecord, err)
	}

	return &domain.RegistryState{
		NextID:           uint64(nextID),
		ExpirationWindow: window,
		Fee:              feeAmount,
		Admin:            common.HexToAddress(admin),
		Balance:          balance,
	}, nil
}
