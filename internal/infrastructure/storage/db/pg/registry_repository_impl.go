package postgresdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

const registryStateColumns = "next_id, expiration_window, fee, admin, balance"

type registryRepositoryImpl struct {
	rm *repoManager
}

func (r *registryRepositoryImpl) InitState(
	ctx context.Context, state *domain.RegistryState,
) (*domain.RegistryState, error) {
	if _, err := r.rm.querier(ctx).Exec(
		ctx,
		"INSERT INTO registry_state (id, "+registryStateColumns+") "+
			"VALUES (1, $1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING",
		int64(state.NextID), state.ExpirationWindow, state.Fee.String(),
		state.Admin.Hex(), state.Balance.String(),
	); err != nil {
		return nil, err
	}
	return r.getState(ctx, false)
}

func (r *registryRepositoryImpl) GetState(
	ctx context.Context,
) (*domain.RegistryState, error) {
	return r.getState(ctx, false)
}

func (r *registryRepositoryImpl) UpdateState(
	ctx context.Context,
	updateFn func(s *domain.RegistryState) (*domain.RegistryState, error),
) error {
	current, err := r.getState(ctx, true)
	if err != nil {
		return err
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	_, err = r.rm.querier(ctx).Exec(
		ctx,
		"UPDATE registry_state SET next_id = $1, expiration_window = $2, "+
			"fee = $3, admin = $4, balance = $5 WHERE id = 1",
		int64(updated.NextID), updated.ExpirationWindow, updated.Fee.String(),
		updated.Admin.Hex(), updated.Balance.String(),
	)
	return err
}

func (r *registryRepositoryImpl) getState(
	ctx context.Context, forUpdate bool,
) (*domain.RegistryState, error) {
	query := "SELECT " + registryStateColumns + " FROM registry_state WHERE id = 1"
	if forUpdate {
		query += " FOR UPDATE"
	}

	state, err := scanRegistryState(r.rm.querier(ctx).QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRegistryNotInitialized
		}
		return nil, err
	}
	return state, nil
}
