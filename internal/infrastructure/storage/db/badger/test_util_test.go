package dbbadger_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	dbbadger "github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/badger"
)

var (
	ctx = context.Background()

	admin  = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	buyer  = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	seller = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	other  = common.HexToAddress("0x00000000000000000000000000000000000000b3")
	fee    = decimal.RequireFromString("0.005")

	paymentRef = "0x0000000000000000000000000000000000000000000000000000000000000abc"
)

func newRepoManager(t *testing.T, datadir string) ports.RepoManager {
	repoManager, err := dbbadger.NewRepoManager(datadir, nil)
	require.NoError(t, err)
	t.Cleanup(repoManager.Close)
	return repoManager
}

func newTrade(t *testing.T, id uint64, buyer, seller common.Address) *domain.Trade {
	trade, err := domain.NewTrade(id, domain.Proposal{
		Buyer:            buyer,
		Seller:           seller,
		BuyerCollection:  common.HexToAddress("0x00000000000000000000000000000000000000c1"),
		SellerCollection: common.HexToAddress("0x00000000000000000000000000000000000000c2"),
		BuyerTokenID:     big.NewInt(int64(id)),
		SellerTokenID:    new(big.Int).Lsh(big.NewInt(1), 200),
	}, fee, 10, 100)
	require.NoError(t, err)
	return trade
}

func addTrades(t *testing.T, repo domain.TradeRepository) {
	paid := newTrade(t, 2, other, seller)
	paid.PaymentRef = paymentRef
	for _, tr := range []*domain.Trade{
		newTrade(t, 0, buyer, seller),
		newTrade(t, 1, buyer, other),
		paid,
		newTrade(t, 3, buyer, seller),
	} {
		require.NoError(t, repo.AddTrade(ctx, tr))
	}
}
