package escrow

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

// GetProposedTrade returns the trade with the given id, or ErrTradeNotFound.
func (s *Service) GetProposedTrade(
	ctx context.Context, tradeID uint64,
) (*TradeInfo, error) {
	height, err := s.currentHeight(ctx)
	if err != nil {
		return nil, err
	}

	trade, err := s.repoManager.TradeRepository().GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	return &TradeInfo{*trade, trade.Status(height)}, nil
}

// ListTrades returns the page of trades matching the filter, ordered by id.
func (s *Service) ListTrades(
	ctx context.Context, filter domain.TradeFilter, page domain.Page,
) ([]TradeInfo, error) {
	height, err := s.currentHeight(ctx)
	if err != nil {
		return nil, err
	}

	trades, err := s.repoManager.TradeRepository().GetAllTrades(ctx, filter)
	if err != nil {
		return nil, err
	}

	matching := make([]TradeInfo, 0, len(trades))
	for _, t := range trades {
		if !t.Match(filter, height) {
			continue
		}
		matching = append(matching, TradeInfo{t, t.Status(height)})
	}

	start, end := page.Bounds(len(matching))
	return matching[start:end], nil
}

// GetRegistryInfo returns the registry state at the current height.
func (s *Service) GetRegistryInfo(ctx context.Context) (*RegistryInfo, error) {
	height, err := s.currentHeight(ctx)
	if err != nil {
		return nil, err
	}

	state, err := s.repoManager.RegistryRepository().GetState(ctx)
	if err != nil {
		return nil, err
	}

	return &RegistryInfo{
		NextID:           state.NextID,
		ExpirationWindow: state.ExpirationWindow,
		Fee:              state.Fee,
		Admin:            state.Admin,
		Balance:          state.Balance,
		CurrentHeight:    height,
	}, nil
}
