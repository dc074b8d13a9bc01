package dbbadger

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type registryRepositoryImpl struct {
	store *badgerhold.Store
}

// NewRegistryRepositoryImpl returns a badgerhold implementation of
// domain.RegistryRepository.
func NewRegistryRepositoryImpl(store *badgerhold.Store) domain.RegistryRepository {
	return &registryRepositoryImpl{store}
}

func (r *registryRepositoryImpl) InitState(
	ctx context.Context, state *domain.RegistryState,
) (*domain.RegistryState, error) {
	record := toRegistryStateRecord(*state)

	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxInsert(tx, registryStateKey, record)
	} else {
		err = r.store.Insert(registryStateKey, record)
	}
	if err != nil && err != badgerhold.ErrKeyExists {
		return nil, err
	}

	return r.getState(ctx)
}

func (r *registryRepositoryImpl) GetState(
	ctx context.Context,
) (*domain.RegistryState, error) {
	return r.getState(ctx)
}

func (r *registryRepositoryImpl) UpdateState(
	ctx context.Context,
	updateFn func(s *domain.RegistryState) (*domain.RegistryState, error),
) error {
	current, err := r.getState(ctx)
	if err != nil {
		return err
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	record := toRegistryStateRecord(*updated)
	if tx := txFromContext(ctx); tx != nil {
		return r.store.TxUpdate(tx, registryStateKey, record)
	}
	return r.store.Update(registryStateKey, record)
}

func (r *registryRepositoryImpl) getState(
	ctx context.Context,
) (*domain.RegistryState, error) {
	var record registryStateRecord
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, registryStateKey, &record)
	} else {
		err = r.store.Get(registryStateKey, &record)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrRegistryNotInitialized
		}
		return nil, err
	}

	return record.toDomain()
}
