package domain

import "context"

// TradeRepository is the abstraction for any kind of database intended to
// persist Trades. Trades are never deleted.
type TradeRepository interface {
	// AddTrade stores a new trade. It fails if a trade with the same id
	// already exists.
	AddTrade(ctx context.Context, trade *Trade) error
	// GetTrade returns the trade with the given id or ErrTradeNotFound.
	GetTrade(ctx context.Context, id uint64) (*Trade, error)
	// GetAllTrades returns all trades ordered by id, optionally restricted
	// to the given buyer and/or seller.
	GetAllTrades(ctx context.Context, filter TradeFilter) ([]Trade, error)
	// UpdateTrade allows to commit multiple changes to the same trade in a
	// transactional way.
	UpdateTrade(
		ctx context.Context,
		id uint64, updateFn func(t *Trade) (*Trade, error),
	) error
}

// RegistryRepository persists the registry state.
type RegistryRepository interface {
	// InitState stores the given state if none exists yet and returns the
	// stored one.
	InitState(ctx context.Context, state *RegistryState) (*RegistryState, error)
	// GetState returns the stored state or ErrRegistryNotInitialized.
	GetState(ctx context.Context) (*RegistryState, error)
	// UpdateState commits changes to the registry state.
	UpdateState(
		ctx context.Context,
		updateFn func(s *RegistryState) (*RegistryState, error),
	) error
}
