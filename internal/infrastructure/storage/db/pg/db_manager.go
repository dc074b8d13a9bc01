package postgresdb

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/internal/storageutil/uow"
)

const (
	insecureDataSourceTemplate = "%s://%s:%s@%s:%d/%s?sslmode=disable"

	uniqueViolation = "23505"
	paymentRefIndex = "trade_payment_ref_idx"
)

//go:embed migration/*.sql
var migrations embed.FS

type contextKey string

const txContextKey contextKey = "pgtx"

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type DbConfig struct {
	DbUser     string
	DbPassword string
	DbHost     string
	DbPort     int
	DbName     string
}

func (c DbConfig) dataSource(scheme string) string {
	return fmt.Sprintf(
		insecureDataSourceTemplate,
		scheme, c.DbUser, c.DbPassword, c.DbHost, c.DbPort, c.DbName,
	)
}

type repoManager struct {
	pool               *pgxpool.Pool
	tradeRepository    domain.TradeRepository
	registryRepository domain.RegistryRepository
}

// NewRepoManager connects to the postgres instance and brings its schema up to
// date.
func NewRepoManager(ctx context.Context, cfg DbConfig) (ports.RepoManager, error) {
	if err := migrateDb(cfg.dataSource("pgx5")); err != nil {
		return nil, fmt.Errorf("migrating db: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.dataSource("postgresql"))
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	rm := &repoManager{pool: pool}
	rm.tradeRepository = &tradeRepositoryImpl{rm}
	rm.registryRepository = &registryRepositoryImpl{rm}
	return rm, nil
}

func (r *repoManager) TradeRepository() domain.TradeRepository {
	return r.tradeRepository
}

func (r *repoManager) RegistryRepository() domain.RegistryRepository {
	return r.registryRepository
}

func (r *repoManager) Begin() (uow.Tx, error) {
	tx, err := r.pool.Begin(context.Background())
	if err != nil {
		return nil, err
	}
	return &transaction{tx}, nil
}

func (r *repoManager) ContextKey() interface{} {
	return txContextKey
}

func (r *repoManager) Close() {
	r.pool.Close()
}

// querier returns the transaction of the ongoing unit of work, if any.
func (r *repoManager) querier(ctx context.Context) querier {
	if tx, ok := ctx.Value(txContextKey).(*transaction); ok {
		return tx.tx
	}
	return r.pool
}

type transaction struct {
	tx pgx.Tx
}

func (t *transaction) Commit() error {
	return t.tx.Commit(context.Background())
}

func (t *transaction) Rollback() error {
	err := t.tx.Rollback(context.Background())
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	if err != nil {
		log.Errorf("unable to rollback db tx: %v", err)
	}
	return err
}

func migrateDb(dataSource string) error {
	src, err := iofs.New(migrations, "migration")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dataSource)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// isUniqueViolation returns whether err violates the given unique
// constraint, or any if constraint is empty.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
