package escrow_test

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

/*
 * SettlementChannel
 */
type mockSettlement struct {
	mock.Mock
}

// newMockSettlement returns a settlement mock accepting any payment from the
// buyer.
func newMockSettlement() *mockSettlement {
	m := &mockSettlement{}
	m.On("Collect", mock.Anything, buyer, mock.Anything, mock.Anything).Return(nil)
	return m
}

func (m *mockSettlement) Collect(
	ctx context.Context, from common.Address, amount decimal.Decimal, ref string,
) error {
	args := m.Called(ctx, from, amount, ref)
	return args.Error(0)
}

func (m *mockSettlement) Pay(
	ctx context.Context, recipient common.Address, amount decimal.Decimal,
) error {
	args := m.Called(ctx, recipient, amount)
	return args.Error(0)
}

/*
 * AssetRegistry
 */
type mockAssetRegistry struct {
	mock.Mock
}

func (m *mockAssetRegistry) OwnerOf(
	ctx context.Context, tokenID *big.Int,
) (common.Address, error) {
	args := m.Called(ctx, tokenID)

	var res common.Address
	if a := args.Get(0); a != nil {
		res = a.(common.Address)
	}
	return res, args.Error(1)
}

func (m *mockAssetRegistry) Transfer(
	ctx context.Context, from, to common.Address, tokenID *big.Int,
) error {
	args := m.Called(ctx, from, to, tokenID)
	return args.Error(0)
}

func (m *mockAssetRegistry) Approve(
	ctx context.Context, operator common.Address, tokenID *big.Int,
) error {
	args := m.Called(ctx, operator, tokenID)
	return args.Error(0)
}

/*
 * AssetRegistryResolver
 */
type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Registry(collection common.Address) (ports.AssetRegistry, error) {
	args := m.Called(collection)

	var res ports.AssetRegistry
	if a := args.Get(0); a != nil {
		res = a.(ports.AssetRegistry)
	}
	return res, args.Error(1)
}

/*
 * EventPublisher
 */
type recordingPublisher struct {
	lock sync.Mutex
	list []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.Event) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.list = append(p.list, e)
	return nil
}

func (p *recordingPublisher) events() []domain.Event {
	p.lock.Lock()
	defer p.lock.Unlock()

	return append([]domain.Event{}, p.list...)
}

func (p *recordingPublisher) types() []domain.EventType {
	events := p.events()
	types := make([]domain.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

// blockingPublisher holds every Publish call until released.
type blockingPublisher struct {
	started chan struct{}
	release chan struct{}

	lock    sync.Mutex
	list    []domain.Event
	ctxErrs []error
}

func newBlockingPublisher() *blockingPublisher {
	return &blockingPublisher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (p *blockingPublisher) Publish(ctx context.Context, e domain.Event) error {
	select {
	case p.started <- struct{}{}:
	default:
	}
	<-p.release

	p.lock.Lock()
	defer p.lock.Unlock()

	p.list = append(p.list, e)
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	return nil
}

func (p *blockingPublisher) events() ([]domain.Event, []error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	return append([]domain.Event{}, p.list...), append([]error{}, p.ctxErrs...)
}
