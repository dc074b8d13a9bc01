package inmemory

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/internal/storageutil/uow"
)

type store struct {
	locker         *sync.RWMutex
	trades         map[uint64]domain.Trade
	tradesByBuyer  map[common.Address][]uint64
	tradesBySeller map[common.Address][]uint64
	state          *domain.RegistryState
	// version is bumped by every change.
	version uint64
}

func newStore() *store {
	return &store{
		locker:         &sync.RWMutex{},
		trades:         make(map[uint64]domain.Trade),
		tradesByBuyer:  make(map[common.Address][]uint64),
		tradesBySeller: make(map[common.Address][]uint64),
	}
}

// snapshot returns a deep copy of the store content guarded by its own
// lock. It must be called with the lock held.
func (s *store) snapshot() *store {
	cp := newStore()
	for id, t := range s.trades {
		cp.trades[id] = cloneTrade(t)
	}
	for k, v := range s.tradesByBuyer {
		cp.tradesByBuyer[k] = append([]uint64{}, v...)
	}
	for k, v := range s.tradesBySeller {
		cp.tradesBySeller[k] = append([]uint64{}, v...)
	}
	if s.state != nil {
		st := *s.state
		cp.state = &st
	}
	cp.version = s.version
	return cp
}

func (s *store) restore(from *store) {
	s.trades = from.trades
	s.tradesByBuyer = from.tradesByBuyer
	s.tradesBySeller = from.tradesBySeller
	s.state = from.state
}

// RepoManager is an in-memory implementation of ports.RepoManager. A
// transaction works on a private copy of the store, made visible to others
// only on Commit.
type RepoManager struct {
	store              *store
	tradeRepository    domain.TradeRepository
	registryRepository domain.RegistryRepository
}

// NewRepoManager returns a new, empty, in-memory RepoManager.
func NewRepoManager() ports.RepoManager {
	s := newStore()
	return &RepoManager{
		store:              s,
		tradeRepository:    NewTradeRepositoryImpl(s),
		registryRepository: NewRegistryRepositoryImpl(s),
	}
}

func (d *RepoManager) TradeRepository() domain.TradeRepository {
	return d.tradeRepository
}

func (d *RepoManager) RegistryRepository() domain.RegistryRepository {
	return d.registryRepository
}

func (d *RepoManager) Begin() (uow.Tx, error) {
	d.store.locker.RLock()
	defer d.store.locker.RUnlock()

	return &transaction{d.store, d.store.snapshot(), d.store.version}, nil
}

// ContextKey implements uow.ContextProvider. Repositories look for the
// transaction under this key to work on its copy of the store.
func (d *RepoManager) ContextKey() interface{} {
	return d.store
}

func (d *RepoManager) Close() {}

type transaction struct {
	store   *store
	working *store
	base    uint64
}

func (t *transaction) Commit() error {
	if t.working == nil {
		return nil
	}
	t.store.locker.Lock()
	defer t.store.locker.Unlock()

	t.working.locker.Lock()
	defer t.working.locker.Unlock()

	working := t.working
	t.working = nil
	if working.version == t.base {
		return nil
	}
	if t.store.version != t.base {
		return ErrConcurrentCommit
	}
	t.store.restore(working)
	t.store.version++
	return nil
}

func (t *transaction) Rollback() error {
	t.working = nil
	return nil
}

// storeFor returns the working copy of the transaction carried by ctx, if
// any, or the committed store.
func storeFor(ctx context.Context, committed *store) *store {
	if tx, ok := ctx.Value(committed).(*transaction); ok && tx.working != nil {
		return tx.working
	}
	return committed
}
