package postgresdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

type tradeRepositoryImpl struct {
	rm *repoManager
}

func (t *tradeRepositoryImpl) AddTrade(
	ctx context.Context, trade *domain.Trade,
) error {
	query := fmt.Sprintf(
		"INSERT INTO trade (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)",
		tradeColumns,
	)
	if _, err := t.rm.querier(ctx).Exec(ctx, query, tradeArgs(*trade)...); err != nil {
		if isUniqueViolation(err, paymentRefIndex) {
			return fmt.Errorf("%w: %s", domain.ErrPaymentAlreadyUsed, trade.PaymentRef)
		}
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: %d", ErrTradeAlreadyExists, trade.ID)
		}
		return err
	}
	return nil
}

func (t *tradeRepositoryImpl) GetTrade(
	ctx context.Context, id uint64,
) (*domain.Trade, error) {
	return t.getTrade(ctx, id, false)
}

func (t *tradeRepositoryImpl) GetAllTrades(
	ctx context.Context, filter domain.TradeFilter,
) ([]domain.Trade, error) {
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if filter.Buyer != (common.Address{}) {
		args = append(args, filter.Buyer.Hex())
		conditions = append(conditions, fmt.Sprintf("buyer = $%d", len(args)))
	}
	if filter.Seller != (common.Address{}) {
		args = append(args, filter.Seller.Hex())
		conditions = append(conditions, fmt.Sprintf("seller = $%d", len(args)))
	}
	if filter.PaymentRef != "" {
		args = append(args, filter.PaymentRef)
		conditions = append(conditions, fmt.Sprintf("payment_ref = $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM trade", tradeColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := t.rm.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *trade)
	}
	return trades, rows.Err()
}

func (t *tradeRepositoryImpl) UpdateTrade(
	ctx context.Context,
	id uint64, updateFn func(t *domain.Trade) (*domain.Trade, error),
) error {
	currentTrade, err := t.getTrade(ctx, id, true)
	if err != nil {
		return err
	}

	updatedTrade, err := updateFn(currentTrade)
	if err != nil {
		return err
	}

	_, err = t.rm.querier(ctx).Exec(
		ctx,
		"UPDATE trade SET executed = $2, fee_reclaimed = $3 WHERE id = $1",
		int64(id), updatedTrade.Executed, updatedTrade.FeeReclaimed,
	)
	return err
}

func (t *tradeRepositoryImpl) getTrade(
	ctx context.Context, id uint64, forUpdate bool,
) (*domain.Trade, error) {
	query := fmt.Sprintf("SELECT %s FROM trade WHERE id = $1", tradeColumns)
	if forUpdate {
		query += " FOR UPDATE"
	}

	trade, err := scanTrade(t.rm.querier(ctx).QueryRow(ctx, query, int64(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTradeNotFound
		}
		return nil, err
	}
	return trade, nil
}
