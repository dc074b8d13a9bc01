package inmemory

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

type registryRepositoryImpl struct {
	store *store
}

// NewRegistryRepositoryImpl returns a new inmemory RegistryRepository
// implementation.
func NewRegistryRepositoryImpl(store *store) domain.RegistryRepository {
	return &registryRepositoryImpl{store}
}

func (r registryRepositoryImpl) InitState(
	ctx context.Context, state *domain.RegistryState,
) (*domain.RegistryState, error) {
	s := storeFor(ctx, r.store)
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.state == nil {
		st := *state
		s.state = &st
		s.version++
	}
	st := *s.state
	return &st, nil
}

func (r registryRepositoryImpl) GetState(
	ctx context.Context,
) (*domain.RegistryState, error) {
	s := storeFor(ctx, r.store)
	s.locker.RLock()
	defer s.locker.RUnlock()

	if s.state == nil {
		return nil, domain.ErrRegistryNotInitialized
	}
	st := *s.state
	return &st, nil
}

func (r registryRepositoryImpl) UpdateState(
	ctx context.Context,
	updateFn func(s *domain.RegistryState) (*domain.RegistryState, error),
) error {
	s := storeFor(ctx, r.store)
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.state == nil {
		return domain.ErrRegistryNotInitialized
	}
	current := *s.state
	updated, err := updateFn(&current)
	if err != nil {
		return err
	}
	st := *updated
	s.state = &st
	s.version++
	return nil
}
