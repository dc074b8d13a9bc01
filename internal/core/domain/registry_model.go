package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// RegistryState holds the process-wide state of a trade registry. Fee and
// expiration window are fixed once the state is created, the admin can be
// rotated by the current admin only.
type RegistryState struct {
	NextID           uint64
	ExpirationWindow int64
	Fee              decimal.Decimal
	Admin            common.Address
	// Balance is the value retained by the registry: fees collected at
	// proposal time and not yet forwarded or refunded.
	Balance decimal.Decimal
}

// NewRegistryState returns the initial state of a registry.
func NewRegistryState(
	admin common.Address, fee decimal.Decimal, window int64,
) (*RegistryState, error) {
	if admin == (common.Address{}) {
		return nil, ErrInvalidAdmin
	}
	if fee.IsNegative() {
		return nil, fmt.Errorf("fee must not be negative")
	}
	if window <= 0 {
		return nil, fmt.Errorf("expiration window must be greater than zero")
	}
	return &RegistryState{
		ExpirationWindow: window,
		Fee:              fee,
		Admin:            admin,
		Balance:          decimal.Zero,
	}, nil
}

// AuthorizeAdmin returns ErrUnauthorized if caller is not the current admin.
func (s *RegistryState) AuthorizeAdmin(caller common.Address) error {
	if caller != s.Admin {
		return ErrUnauthorized
	}
	return nil
}

// ChargeFee checks that the paid value covers the fee and retains it.
func (s *RegistryState) ChargeFee(paidValue decimal.Decimal) error {
	if paidValue.LessThan(s.Fee) {
		return ErrInsufficientFee
	}
	s.Balance = s.Balance.Add(paidValue)
	return nil
}

// AllocateID returns the current counter value and increments it.
func (s *RegistryState) AllocateID() uint64 {
	id := s.NextID
	s.NextID++
	return id
}

// Withdraw takes the given amount out of the retained balance.
func (s *RegistryState) Withdraw(amount decimal.Decimal) error {
	if amount.GreaterThan(s.Balance) {
		return fmt.Errorf(
			"%w: balance %s is lower than %s", ErrSettlementFailed, s.Balance, amount,
		)
	}
	s.Balance = s.Balance.Sub(amount)
	return nil
}

// SetAdmin replaces the admin identity if caller is the current one.
func (s *RegistryState) SetAdmin(caller, newAdmin common.Address) error {
	if err := s.AuthorizeAdmin(caller); err != nil {
		return err
	}
	if newAdmin == (common.Address{}) {
		return ErrInvalidAdmin
	}
	s.Admin = newAdmin
	return nil
}
