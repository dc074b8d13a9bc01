package uow

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Transactional is implemented by any participant of a unit of work, ie. a
// repository manager or a collaborator able to roll back its own changes.
type Transactional interface {
	Begin() (Tx, error)
}

// Tx represents an all-or-nothing transaction, by committing or rolling back
// a set of read/write operations
type Tx interface {
	Commit() error
	Rollback() error
}

// ContextProvider returns the key under which the transaction of a
// participant is made available in the context passed to the unit of work
// function. Participants not implementing it are keyed by themselves.
type ContextProvider interface {
	ContextKey() interface{}
}

// UnitOfWork allows to run multiple transactions as one
type UnitOfWork struct {
	participants []Transactional
}

// NewUnitOfWork returns a new UnitOfWork with the given participants. Nil
// participants are ignored.
func NewUnitOfWork(participants ...Transactional) *UnitOfWork {
	list := make([]Transactional, 0, len(participants))
	for _, p := range participants {
		if p != nil {
			list = append(list, p)
		}
	}
	return &UnitOfWork{list}
}

// Run executes the given function over the current UnitOfWork. The function
// receives a context carrying the transaction of every participant. Run makes
// sure that all the transactions are either all committed or all rolled back
// if any error occur, or if the function panics.
func (u *UnitOfWork) Run(
	ctx context.Context, fn func(ctx context.Context) error,
) (err error) {
	txs := make([]Tx, 0, len(u.participants))

	defer func() {
		if err == nil {
			return
		}
		for _, tx := range txs {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.WithError(rbErr).Warn("unit of work: failed to rollback transaction")
			}
		}
	}()

	defer func() {
		if err != nil {
			return
		}
		for _, tx := range txs {
			if cErr := tx.Commit(); cErr != nil {
				err = cErr
				return
			}
		}
	}()

	defer func() {
		// panicking returns an error that causes txs rollback
		if rec := recover(); rec != nil {
			err = fmt.Errorf("recovered: %v", rec)
		}
	}()

	seen := make(map[interface{}]struct{})
	for _, p := range u.participants {
		var key interface{} = p
		if cp, ok := p.(ContextProvider); ok {
			key = cp.ContextKey()
		}
		// make sure that the same context providers share the same context
		if _, ok := seen[key]; ok {
			continue
		}

		tx, err := p.Begin()
		if err != nil {
			return err
		}
		seen[key] = struct{}{}
		txs = append(txs, tx)
		ctx = context.WithValue(ctx, key, tx)
	}

	return fn(ctx)
}
