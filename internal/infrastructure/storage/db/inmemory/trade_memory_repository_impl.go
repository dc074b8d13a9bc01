package inmemory

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

type tradeRepositoryImpl struct {
	store *store
}

// NewTradeRepositoryImpl returns a new inmemory TradeRepository implementation.
func NewTradeRepositoryImpl(store *store) domain.TradeRepository {
	return &tradeRepositoryImpl{store}
}

func (r tradeRepositoryImpl) AddTrade(ctx context.Context, trade *domain.Trade) error {
	s := storeFor(ctx, r.store)
	s.locker.Lock()
	defer s.locker.Unlock()

	if _, ok := s.trades[trade.ID]; ok {
		return fmt.Errorf("%w: %d", ErrTradeAlreadyExists, trade.ID)
	}

	s.trades[trade.ID] = cloneTrade(*trade)
	s.tradesByBuyer[trade.Buyer] = append(s.tradesByBuyer[trade.Buyer], trade.ID)
	s.tradesBySeller[trade.Seller] = append(s.tradesBySeller[trade.Seller], trade.ID)
	s.version++
	return nil
}

func (r tradeRepositoryImpl) GetTrade(ctx context.Context, id uint64) (*domain.Trade, error) {
	s := storeFor(ctx, r.store)
	s.locker.RLock()
	defer s.locker.RUnlock()

	return getTrade(s, id)
}

func (r tradeRepositoryImpl) GetAllTrades(
	ctx context.Context, filter domain.TradeFilter,
) ([]domain.Trade, error) {
	s := storeFor(ctx, r.store)
	s.locker.RLock()
	defer s.locker.RUnlock()

	var ids []uint64
	switch {
	case filter.Buyer != (common.Address{}):
		ids = s.tradesByBuyer[filter.Buyer]
	case filter.Seller != (common.Address{}):
		ids = s.tradesBySeller[filter.Seller]
	default:
		ids = make([]uint64, 0, len(s.trades))
		for id := range s.trades {
			ids = append(ids, id)
		}
	}

	trades := make([]domain.Trade, 0, len(ids))
	for _, id := range ids {
		t := s.trades[id]
		if filter.Seller != (common.Address{}) && t.Seller != filter.Seller {
			continue
		}
		if filter.PaymentRef != "" && t.PaymentRef != filter.PaymentRef {
			continue
		}
		trades = append(trades, cloneTrade(t))
	}
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].ID < trades[j].ID
	})
	return trades, nil
}

func (r tradeRepositoryImpl) UpdateTrade(
	ctx context.Context,
	id uint64, updateFn func(t *domain.Trade) (*domain.Trade, error),
) error {
	s := storeFor(ctx, r.store)
	s.locker.Lock()
	defer s.locker.Unlock()

	currentTrade, err := getTrade(s, id)
	if err != nil {
		return err
	}

	updatedTrade, err := updateFn(currentTrade)
	if err != nil {
		return err
	}

	s.trades[id] = cloneTrade(*updatedTrade)
	s.version++
	return nil
}

func getTrade(s *store, id uint64) (*domain.Trade, error) {
	t, ok := s.trades[id]
	if !ok {
		return nil, domain.ErrTradeNotFound
	}
	trade := cloneTrade(t)
	return &trade, nil
}

func cloneTrade(t domain.Trade) domain.Trade {
	if t.BuyerTokenID != nil {
		t.BuyerTokenID = new(big.Int).Set(t.BuyerTokenID)
	}
	if t.SellerTokenID != nil {
		t.SellerTokenID = new(big.Int).Set(t.SellerTokenID)
	}
	return t
}
