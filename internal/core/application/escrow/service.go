package escrow

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/internal/storageutil/uow"
)

// Config holds the collaborators and the initial configuration of the
// registry. Fee, ExpirationWindow and Admin are used only the first time the
// registry state is created, later runs load the stored state.
type Config struct {
	RepoManager ports.RepoManager
	Assets      ports.AssetRegistryResolver
	Settlement  ports.SettlementChannel
	Heights     ports.HeightProvider
	// Publisher is optional.
	Publisher ports.EventPublisher

	Admin               common.Address
	Fee                 decimal.Decimal
	ExpirationWindow    int64
	MaxReclaimBatchSize int
}

func (c Config) validate() error {
	if c.RepoManager == nil {
		return fmt.Errorf("missing repo manager")
	}
	if c.Assets == nil {
		return fmt.Errorf("missing asset registry resolver")
	}
	if c.Settlement == nil {
		return fmt.Errorf("missing settlement channel")
	}
	if c.Heights == nil {
		return fmt.Errorf("missing height provider")
	}
	if c.MaxReclaimBatchSize <= 0 {
		return fmt.Errorf("max reclaim batch size must be greater than zero")
	}
	return nil
}

// Service is the trade registry: it owns the lifecycle of trades and the
// registry state. Mutating operations are serialized and each of them runs
// in a unit of work, so that either all its effects are committed or none.
type Service struct {
	repoManager ports.RepoManager
	assets      ports.AssetRegistryResolver
	settlement  ports.SettlementChannel
	heights     ports.HeightProvider
	events      *eventQueue

	maxReclaimBatchSize int
	participants        []uow.Transactional

	// lock makes every mutating operation the single committer of the
	// registry state and of the trades it touches.
	lock *sync.Mutex
}

// NewService returns a registry service, initializing the registry state if
// not yet stored.
func NewService(ctx context.Context, cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	initialState, err := domain.NewRegistryState(
		cfg.Admin, cfg.Fee, cfg.ExpirationWindow,
	)
	if err != nil {
		return nil, err
	}

	state, err := cfg.RepoManager.RegistryRepository().InitState(ctx, initialState)
	if err != nil {
		return nil, fmt.Errorf("failed to init registry state: %w", err)
	}
	if !state.Fee.Equal(cfg.Fee) ||
		state.ExpirationWindow != cfg.ExpirationWindow {
		log.Warnf(
			"registry state already initialized with fee %s and expiration "+
				"window %d, ignoring configured values",
			state.Fee, state.ExpirationWindow,
		)
	}

	participants := []uow.Transactional{cfg.RepoManager}
	if tx, ok := cfg.Assets.(uow.Transactional); ok {
		participants = append(participants, tx)
	}
	if tx, ok := cfg.Settlement.(uow.Transactional); ok {
		participants = append(participants, tx)
	}

	var events *eventQueue
	if cfg.Publisher != nil {
		events = newEventQueue(cfg.Publisher)
	}

	return &Service{
		repoManager:         cfg.RepoManager,
		assets:              cfg.Assets,
		settlement:          cfg.Settlement,
		heights:             cfg.Heights,
		events:              events,
		maxReclaimBatchSize: cfg.MaxReclaimBatchSize,
		participants:        participants,
		lock:                &sync.Mutex{},
	}, nil
}

// Close waits for the pending events to be published. Events of operations
// completing after Close are dropped.
func (s *Service) Close() {
	if s.events != nil {
		s.events.close()
	}
}

// runTransaction serializes fn with any other mutating operation and runs it
// in a unit of work. Events returned by fn are queued for publishing only if
// the unit of work is committed.
func (s *Service) runTransaction(
	ctx context.Context, fn func(ctx context.Context) ([]domain.Event, error),
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	var events []domain.Event
	if err := uow.NewUnitOfWork(s.participants...).Run(
		ctx, func(ctx context.Context) error {
			var err error
			events, err = fn(ctx)
			return err
		},
	); err != nil {
		return err
	}

	if s.events != nil {
		s.events.push(events...)
	}
	return nil
}

func (s *Service) currentHeight(ctx context.Context) (int64, error) {
	height, err := s.heights.CurrentHeight(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current height: %w", err)
	}
	return height, nil
}

// pay withdraws amount from the registry balance and sends it to recipient.
// Zero amounts are not sent.
func (s *Service) pay(
	ctx context.Context, recipient common.Address, amount decimal.Decimal,
) error {
	if amount.IsZero() {
		return nil
	}

	if err := s.repoManager.RegistryRepository().UpdateState(
		ctx, func(st *domain.RegistryState) (*domain.RegistryState, error) {
			if err := st.Withdraw(amount); err != nil {
				return nil, err
			}
			return st, nil
		},
	); err != nil {
		return err
	}

	if err := s.settlement.Pay(ctx, recipient, amount); err != nil {
		return fmt.Errorf("%w: paying %s to %s: %s",
			domain.ErrSettlementFailed, amount, recipient, err)
	}
	return nil
}
