package dbbadger

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/internal/storageutil/uow"
	"github.com/timshannon/badgerhold/v4"
)

type contextKey string

// txContextKey is the key under which the badger transaction of a unit of
// work is found in the context.
const txContextKey contextKey = "tx"

// RepoManager holds the badgerhold store in which trades and registry state
// are persisted, so that they can be updated within the same transaction.
type RepoManager struct {
	store              *badgerhold.Store
	tradeRepository    domain.TradeRepository
	registryRepository domain.RegistryRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger. An empty dir opens an
// in-memory badger instance.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, "escrow")
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening escrow db: %w", err)
	}

	return &RepoManager{
		store:              store,
		tradeRepository:    NewTradeRepositoryImpl(store),
		registryRepository: NewRegistryRepositoryImpl(store),
	}, nil
}

func (d *RepoManager) TradeRepository() domain.TradeRepository {
	return d.tradeRepository
}

func (d *RepoManager) RegistryRepository() domain.RegistryRepository {
	return d.registryRepository
}

// Begin implements uow.Transactional.
func (d *RepoManager) Begin() (uow.Tx, error) {
	return &transaction{d.store.Badger().NewTransaction(true)}, nil
}

// ContextKey implements uow.ContextProvider.
func (d *RepoManager) ContextKey() interface{} {
	return txContextKey
}

func (d *RepoManager) Close() {
	d.store.Close()
}

type transaction struct {
	txn *badger.Txn
}

func (t *transaction) Commit() error {
	return t.txn.Commit()
}

func (t *transaction) Rollback() error {
	t.txn.Discard()
	return nil
}

func txFromContext(ctx context.Context) *badger.Txn {
	if tx, ok := ctx.Value(txContextKey).(*transaction); ok {
		return tx.txn
	}
	return nil
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
