package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// registry is the ports.AssetRegistry view of a single ledger collection.
type registry struct {
	ledger     *Ledger
	collection common.Address
}

func (r *registry) OwnerOf(
	_ context.Context, tokenID *big.Int,
) (common.Address, error) {
	r.ledger.locker.Lock()
	defer r.ledger.locker.Unlock()

	c, err := r.ledger.getCollection(r.collection)
	if err != nil {
		return common.Address{}, err
	}
	owner, ok := c.owners[tokenID.String()]
	if !ok {
		return common.Address{}, ErrTokenNotFound
	}
	return owner, nil
}

func (r *registry) Transfer(
	_ context.Context, from, to common.Address, tokenID *big.Int,
) error {
	r.ledger.locker.Lock()
	defer r.ledger.locker.Unlock()

	c, err := r.ledger.getCollection(r.collection)
	if err != nil {
		return err
	}
	key := tokenID.String()
	owner, ok := c.owners[key]
	if !ok {
		return ErrTokenNotFound
	}
	if owner != from {
		return ErrNotOwner
	}
	if !c.isApproved(r.ledger.operator, owner, key) {
		return ErrNotApproved
	}
	if c.noop {
		return nil
	}

	c.owners[key] = to
	delete(c.approvals, key)
	return nil
}

func (r *registry) Approve(
	_ context.Context, operator common.Address, tokenID *big.Int,
) error {
	r.ledger.locker.Lock()
	defer r.ledger.locker.Unlock()

	c, err := r.ledger.getCollection(r.collection)
	if err != nil {
		return err
	}
	key := tokenID.String()
	owner, ok := c.owners[key]
	if !ok {
		return ErrTokenNotFound
	}
	// Revoking when nothing is approved is a no-op.
	if _, approved := c.approvals[key]; !approved && operator == (common.Address{}) {
		return nil
	}
	if !c.isApproved(r.ledger.operator, owner, key) {
		return ErrNotApproved
	}

	if operator == (common.Address{}) {
		delete(c.approvals, key)
		return nil
	}
	c.approvals[key] = operator
	return nil
}
