package httpinterface

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-escrow/internal/core/application/escrow"
)

type errorResponse struct {
	Error string `json:"error"`
}

type ProposeTradeRequest struct {
	Buyer            string `json:"buyer" binding:"required"`
	Seller           string `json:"seller" binding:"required"`
	BuyerCollection  string `json:"buyer_collection" binding:"required"`
	SellerCollection string `json:"seller_collection" binding:"required"`
	BuyerTokenID     string `json:"buyer_token_id" binding:"required"`
	SellerTokenID    string `json:"seller_token_id" binding:"required"`
	PaidValue        string `json:"paid_value" binding:"required"`
	// PaymentRef is the hash of the transaction funding the escrow with the
	// paid value, when settling on chain.
	PaymentRef string `json:"payment_ref"`
}

func (r ProposeTradeRequest) toArgs() (escrow.ProposeArgs, error) {
	addrs := make([]common.Address, 0, 4)
	for _, a := range []string{
		r.Buyer, r.Seller, r.BuyerCollection, r.SellerCollection,
	} {
		if !common.IsHexAddress(a) {
			return escrow.ProposeArgs{}, fmt.Errorf("invalid address %q", a)
		}
		addrs = append(addrs, common.HexToAddress(a))
	}

	buyerTokenID, err := parseTokenID(r.BuyerTokenID)
	if err != nil {
		return escrow.ProposeArgs{}, err
	}
	sellerTokenID, err := parseTokenID(r.SellerTokenID)
	if err != nil {
		return escrow.ProposeArgs{}, err
	}
	paidValue, err := decimal.NewFromString(r.PaidValue)
	if err != nil {
		return escrow.ProposeArgs{}, fmt.Errorf("invalid paid value: %s", err)
	}

	return escrow.ProposeArgs{
		Buyer:            addrs[0],
		Seller:           addrs[1],
		BuyerCollection:  addrs[2],
		SellerCollection: addrs[3],
		BuyerTokenID:     buyerTokenID,
		SellerTokenID:    sellerTokenID,
		PaidValue:        paidValue,
		PaymentRef:       r.PaymentRef,
	}, nil
}

type ProposeTradeResponse struct {
	TradeID uint64 `json:"trade_id"`
}

type ReclaimFeesRequest struct {
	TradeIDs []uint64 `json:"trade_ids"`
}

type ReclaimFeesResponse struct {
	Reclaimed []uint64 `json:"reclaimed"`
}

type TransferOutResponse struct {
	Amount string `json:"amount"`
}

type SetAdminRequest struct {
	Admin string `json:"admin" binding:"required"`
}

type Trade struct {
	ID               uint64 `json:"id"`
	Buyer            string `json:"buyer"`
	Seller           string `json:"seller"`
	BuyerCollection  string `json:"buyer_collection"`
	SellerCollection string `json:"seller_collection"`
	BuyerTokenID     string `json:"buyer_token_id"`
	SellerTokenID    string `json:"seller_token_id"`
	Executed         bool   `json:"executed"`
	FeeReclaimed     bool   `json:"fee_reclaimed"`
	ProposalHeight   int64  `json:"proposal_height"`
	ExpirationHeight int64  `json:"expiration_height"`
	Fee              string `json:"fee"`
	PaymentRef       string `json:"payment_ref,omitempty"`
	Status           string `json:"status"`
}

func newTrade(info escrow.TradeInfo) Trade {
	return Trade{
		ID:               info.ID,
		Buyer:            info.Buyer.Hex(),
		Seller:           info.Seller.Hex(),
		BuyerCollection:  info.BuyerCollection.Hex(),
		SellerCollection: info.SellerCollection.Hex(),
		BuyerTokenID:     info.BuyerTokenID.String(),
		SellerTokenID:    info.SellerTokenID.String(),
		Executed:         info.Executed,
		FeeReclaimed:     info.FeeReclaimed,
		ProposalHeight:   info.ProposalHeight,
		ExpirationHeight: info.ExpirationHeight,
		Fee:              info.Fee.String(),
		PaymentRef:       info.PaymentRef,
		Status:           info.Status.String(),
	}
}

type ListTradesResponse struct {
	Trades []Trade `json:"trades"`
}

type RegistryInfo struct {
	NextID           uint64 `json:"next_id"`
	ExpirationWindow int64  `json:"expiration_window"`
	Fee              string `json:"fee"`
	Admin            string `json:"admin"`
	Balance          string `json:"balance"`
	CurrentHeight    int64  `json:"current_height"`
}

func parseTokenID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid token id %q", s)
	}
	return id, nil
}
