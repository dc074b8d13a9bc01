// Package ledger provides a local, transactional bookkeeping of token
// ownership and account balances. It serves both as AssetRegistry for any
// number of collections and as SettlementChannel, and is used to run the
// registry without a chain.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/internal/storageutil/uow"
)

var (
	// ErrUnknownCollection ...
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrTokenNotFound ...
	ErrTokenNotFound = errors.New("token does not exist")
	// ErrTokenAlreadyExists ...
	ErrTokenAlreadyExists = errors.New("token already exists")
	// ErrNotOwner is returned when transferring a token from an account that
	// does not own it.
	ErrNotOwner = errors.New("account is not the owner of the token")
	// ErrNotApproved is returned when the operator is not authorized to
	// transfer or approve the token.
	ErrNotApproved = errors.New("operator is not approved for the token")
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds is returned when an account can't cover the
	// amount moved out of it.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Ledger keeps track of tokens and balances. Every call is made on behalf
// of the operator, ie. the escrow, the way a contract would call a token
// contract.
type Ledger struct {
	locker   *sync.Mutex
	operator common.Address
	state    *state
}

type state struct {
	collections map[common.Address]*collection
	balances    map[common.Address]decimal.Decimal
}

type collection struct {
	// Noop makes transfers succeed without moving anything, like a
	// non-conforming token contract would do.
	noop      bool
	owners    map[string]common.Address
	approvals map[string]common.Address
	operators map[common.Address]map[common.Address]bool
}

// NewLedger returns an empty ledger whose calls are made on behalf of the
// given operator.
func NewLedger(operator common.Address) *Ledger {
	return &Ledger{
		locker:   &sync.Mutex{},
		operator: operator,
		state: &state{
			collections: make(map[common.Address]*collection),
			balances:    make(map[common.Address]decimal.Decimal),
		},
	}
}

// Operator returns the account on behalf of which calls are made.
func (l *Ledger) Operator() common.Address {
	return l.operator
}

// AddCollection registers a collection. If noop is true, transfers of its
// tokens succeed without changing ownership.
func (l *Ledger) AddCollection(addr common.Address, noop bool) {
	l.locker.Lock()
	defer l.locker.Unlock()

	if _, ok := l.state.collections[addr]; ok {
		return
	}
	l.state.collections[addr] = newCollection(noop)
}

// Mint creates a token owned by the given account.
func (l *Ledger) Mint(
	collectionAddr, owner common.Address, tokenID *big.Int,
) error {
	l.locker.Lock()
	defer l.locker.Unlock()

	c, err := l.getCollection(collectionAddr)
	if err != nil {
		return err
	}
	key := tokenID.String()
	if _, ok := c.owners[key]; ok {
		return ErrTokenAlreadyExists
	}
	c.owners[key] = owner
	return nil
}

// ApproveAsOwner is the owner of a token authorizing operator to transfer it.
func (l *Ledger) ApproveAsOwner(
	collectionAddr, owner, operator common.Address, tokenID *big.Int,
) error {
	l.locker.Lock()
	defer l.locker.Unlock()

	c, err := l.getCollection(collectionAddr)
	if err != nil {
		return err
	}
	key := tokenID.String()
	currentOwner, ok := c.owners[key]
	if !ok {
		return ErrTokenNotFound
	}
	if currentOwner != owner {
		return ErrNotOwner
	}
	c.approvals[key] = operator
	return nil
}

// SetApprovalForAll makes operator able to transfer and approve any token of
// owner in the collection.
func (l *Ledger) SetApprovalForAll(
	collectionAddr, owner, operator common.Address, approved bool,
) error {
	l.locker.Lock()
	defer l.locker.Unlock()

	c, err := l.getCollection(collectionAddr)
	if err != nil {
		return err
	}
	if _, ok := c.operators[owner]; !ok {
		c.operators[owner] = make(map[common.Address]bool)
	}
	c.operators[owner][operator] = approved
	return nil
}

// GetApproved returns the account approved for the token, if any.
func (l *Ledger) GetApproved(
	collectionAddr common.Address, tokenID *big.Int,
) (common.Address, error) {
	l.locker.Lock()
	defer l.locker.Unlock()

	c, err := l.getCollection(collectionAddr)
	if err != nil {
		return common.Address{}, err
	}
	if _, ok := c.owners[tokenID.String()]; !ok {
		return common.Address{}, ErrTokenNotFound
	}
	return c.approvals[tokenID.String()], nil
}

// Balance returns the funds held by the given account.
func (l *Ledger) Balance(account common.Address) decimal.Decimal {
	l.locker.Lock()
	defer l.locker.Unlock()

	return l.state.balances[account]
}

// Deposit credits the account with the given amount.
func (l *Ledger) Deposit(account common.Address, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	l.locker.Lock()
	defer l.locker.Unlock()

	l.state.balances[account] = l.state.balances[account].Add(amount)
	return nil
}

// Registry implements ports.AssetRegistryResolver.
func (l *Ledger) Registry(collectionAddr common.Address) (ports.AssetRegistry, error) {
	l.locker.Lock()
	defer l.locker.Unlock()

	if _, err := l.getCollection(collectionAddr); err != nil {
		return nil, err
	}
	return &registry{l, collectionAddr}, nil
}

// Collect implements ports.SettlementChannel by moving amount from the
// given account to the operator. The ref is not used, the ledger itself is
// the proof of payment.
func (l *Ledger) Collect(
	_ context.Context, from common.Address, amount decimal.Decimal, _ string,
) error {
	if amount.IsZero() {
		return nil
	}
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	l.locker.Lock()
	defer l.locker.Unlock()

	return l.move(from, l.operator, amount)
}

// Pay implements ports.SettlementChannel by moving amount from the operator
// to recipient.
func (l *Ledger) Pay(
	_ context.Context, recipient common.Address, amount decimal.Decimal,
) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	l.locker.Lock()
	defer l.locker.Unlock()

	return l.move(l.operator, recipient, amount)
}

// Begin implements uow.Transactional. The ledger is snapshotted and restored
// on rollback.
func (l *Ledger) Begin() (uow.Tx, error) {
	l.locker.Lock()
	defer l.locker.Unlock()

	return &transaction{l, l.state.clone()}, nil
}

func (l *Ledger) move(from, to common.Address, amount decimal.Decimal) error {
	balance := l.state.balances[from]
	if balance.LessThan(amount) {
		return fmt.Errorf(
			"%w: %s holds %s, %s required", ErrInsufficientFunds, from, balance, amount,
		)
	}
	l.state.balances[from] = balance.Sub(amount)
	l.state.balances[to] = l.state.balances[to].Add(amount)
	return nil
}

func (l *Ledger) getCollection(addr common.Address) (*collection, error) {
	c, ok := l.state.collections[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, addr)
	}
	return c, nil
}

type transaction struct {
	ledger   *Ledger
	snapshot *state
}

func (t *transaction) Commit() error {
	t.snapshot = nil
	return nil
}

func (t *transaction) Rollback() error {
	if t.snapshot == nil {
		return nil
	}
	t.ledger.locker.Lock()
	defer t.ledger.locker.Unlock()

	t.ledger.state = t.snapshot
	t.snapshot = nil
	return nil
}

func newCollection(noop bool) *collection {
	return &collection{
		noop:      noop,
		owners:    make(map[string]common.Address),
		approvals: make(map[string]common.Address),
		operators: make(map[common.Address]map[common.Address]bool),
	}
}

func (c *collection) isApproved(
	operator, owner common.Address, key string,
) bool {
	return c.approvals[key] == operator || c.operators[owner][operator]
}

func (s *state) clone() *state {
	cp := &state{
		collections: make(map[common.Address]*collection, len(s.collections)),
		balances:    make(map[common.Address]decimal.Decimal, len(s.balances)),
	}
	for addr, c := range s.collections {
		cc := newCollection(c.noop)
		for k, v := range c.owners {
			cc.owners[k] = v
		}
		for k, v := range c.approvals {
			cc.approvals[k] = v
		}
		for owner, ops := range c.operators {
			cc.operators[owner] = make(map[common.Address]bool, len(ops))
			for op, ok := range ops {
				cc.operators[owner][op] = ok
			}
		}
		cp.collections[addr] = cc
	}
	for k, v := range s.balances {
		cp.balances[k] = v
	}
	return cp
}
