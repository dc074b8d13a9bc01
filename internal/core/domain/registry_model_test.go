package domain_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

var admin = common.HexToAddress("0x00000000000000000000000000000000000000ad")

func TestNewRegistryState(t *testing.T) {
	st, err := domain.NewRegistryState(admin, fee, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(0), st.NextID)
	require.Equal(t, admin, st.Admin)
	require.True(t, st.Balance.IsZero())

	tests := []struct {
		name   string
		admin  common.Address
		fee    decimal.Decimal
		window int64
	}{
		{"zero_admin", common.Address{}, fee, 100},
		{"negative_fee", admin, decimal.NewFromInt(-1), 100},
		{"zero_window", admin, fee, 0},
	}
	for _, tt := range tests {
		st, err := domain.NewRegistryState(tt.admin, tt.fee, tt.window)
		require.Error(t, err, tt.name)
		require.Nil(t, st, tt.name)
	}
}

func TestRegistryStateChargeFee(t *testing.T) {
	st := newRegistryState(t)

	require.ErrorIs(t, st.ChargeFee(decimal.RequireFromString("0.004")), domain.ErrInsufficientFee)
	require.True(t, st.Balance.IsZero())

	require.NoError(t, st.ChargeFee(fee))
	require.NoError(t, st.ChargeFee(decimal.RequireFromString("0.01")))
	require.True(t, decimal.RequireFromString("0.015").Equal(st.Balance))
}

func TestRegistryStateAllocateID(t *testing.T) {
	st := newRegistryState(t)
	for i := uint64(0); i < 3; i++ {
		require.Equal(t, i, st.AllocateID())
	}
	require.Equal(t, uint64(3), st.NextID)
}

func TestRegistryStateWithdraw(t *testing.T) {
	st := newRegistryState(t)
	require.NoError(t, st.ChargeFee(fee))

	require.ErrorIs(t, st.Withdraw(fee.Add(fee)), domain.ErrSettlementFailed)
	require.NoError(t, st.Withdraw(fee))
	require.True(t, st.Balance.IsZero())
}

func TestRegistryStateSetAdmin(t *testing.T) {
	st := newRegistryState(t)

	require.ErrorIs(t, st.SetAdmin(buyer, buyer), domain.ErrUnauthorized)
	require.ErrorIs(t, st.SetAdmin(admin, common.Address{}), domain.ErrInvalidAdmin)
	require.NoError(t, st.SetAdmin(admin, seller))
	require.Equal(t, seller, st.Admin)
	require.ErrorIs(t, st.AuthorizeAdmin(admin), domain.ErrUnauthorized)
	require.NoError(t, st.AuthorizeAdmin(seller))
}

func newRegistryState(t *testing.T) *domain.RegistryState {
	st, err := domain.NewRegistryState(admin, fee, 100)
	require.NoError(t, err)
	return st
}
