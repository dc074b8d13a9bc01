package dbbadger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type tradeRepositoryImpl struct {
	store *badgerhold.Store
}

// NewTradeRepositoryImpl returns a badgerhold implementation of
// domain.TradeRepository.
func NewTradeRepositoryImpl(store *badgerhold.Store) domain.TradeRepository {
	return &tradeRepositoryImpl{store}
}

func (t *tradeRepositoryImpl) AddTrade(
	ctx context.Context, trade *domain.Trade,
) error {
	if err := t.insertTrade(ctx, toTradeRecord(*trade)); err != nil {
		if err == badgerhold.ErrKeyExists {
			return fmt.Errorf("%w: %d", ErrTradeAlreadyExists, trade.ID)
		}
		return err
	}
	return nil
}

func (t *tradeRepositoryImpl) GetTrade(
	ctx context.Context, id uint64,
) (*domain.Trade, error) {
	return t.getTrade(ctx, id)
}

func (t *tradeRepositoryImpl) GetAllTrades(
	ctx context.Context, filter domain.TradeFilter,
) ([]domain.Trade, error) {
	var query *badgerhold.Query
	where := func(field, value string) {
		if query == nil {
			query = badgerhold.Where(field).Eq(value)
			return
		}
		query = query.And(field).Eq(value)
	}
	if filter.Buyer != (common.Address{}) {
		where("Buyer", filter.Buyer.Hex())
	}
	if filter.Seller != (common.Address{}) {
		where("Seller", filter.Seller.Hex())
	}
	if filter.PaymentRef != "" {
		where("PaymentRef", filter.PaymentRef)
	}
	if query == nil {
		query = &badgerhold.Query{}
	}

	records, err := t.findTrades(ctx, query.SortBy("ID"))
	if err != nil {
		return nil, err
	}

	trades := make([]domain.Trade, 0, len(records))
	for _, r := range records {
		trade, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		trades = append(trades, *trade)
	}
	return trades, nil
}

func (t *tradeRepositoryImpl) UpdateTrade(
	ctx context.Context,
	id uint64, updateFn func(t *domain.Trade) (*domain.Trade, error),
) error {
	currentTrade, err := t.getTrade(ctx, id)
	if err != nil {
		return err
	}

	updatedTrade, err := updateFn(currentTrade)
	if err != nil {
		return err
	}

	return t.updateTrade(ctx, id, toTradeRecord(*updatedTrade))
}

func (t *tradeRepositoryImpl) getTrade(
	ctx context.Context, id uint64,
) (*domain.Trade, error) {
	var record tradeRecord
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = t.store.TxGet(tx, id, &record)
	} else {
		err = t.store.Get(id, &record)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrTradeNotFound
		}
		return nil, err
	}

	return record.toDomain()
}

func (t *tradeRepositoryImpl) findTrades(
	ctx context.Context, query *badgerhold.Query,
) ([]tradeRecord, error) {
	var records []tradeRecord
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = t.store.TxFind(tx, &records, query)
	} else {
		err = t.store.Find(&records, query)
	}
	return records, err
}

func (t *tradeRepositoryImpl) insertTrade(
	ctx context.Context, record tradeRecord,
) error {
	if tx := txFromContext(ctx); tx != nil {
		return t.store.TxInsert(tx, record.ID, record)
	}
	return t.store.Insert(record.ID, record)
}

func (t *tradeRepositoryImpl) updateTrade(
	ctx context.Context, id uint64, record tradeRecord,
) error {
	if tx := txFromContext(ctx); tx != nil {
		return t.store.TxUpdate(tx, id, record)
	}
	return t.store.Update(id, record)
}
