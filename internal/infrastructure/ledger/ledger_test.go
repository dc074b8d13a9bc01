package ledger_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger"
)

var (
	ctx        = context.Background()
	operator   = common.HexToAddress("0x00000000000000000000000000000000000000e5")
	alice      = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob        = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	collection = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	noop       = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	tokenID    = big.NewInt(7)
)

func newTestLedger(t *testing.T) *ledger.Ledger {
	l := ledger.NewLedger(operator)
	l.AddCollection(collection, false)
	l.AddCollection(noop, true)
	require.NoError(t, l.Mint(collection, alice, tokenID))
	require.NoError(t, l.Mint(noop, alice, tokenID))
	return l
}

func TestMint(t *testing.T) {
	l := newTestLedger(t)

	require.ErrorIs(t, l.Mint(collection, bob, tokenID), ledger.ErrTokenAlreadyExists)
	require.ErrorIs(
		t, l.Mint(common.HexToAddress("0xdead"), bob, tokenID), ledger.ErrUnknownCollection,
	)
	require.Equal(t, operator, l.Operator())

	_, err := l.Registry(common.HexToAddress("0xdead"))
	require.ErrorIs(t, err, ledger.ErrUnknownCollection)
}

func TestTransfer(t *testing.T) {
	tests := []struct {
		name        string
		approve     func(l *ledger.Ledger) error
		from        common.Address
		expectedErr error
	}{
		{
			name:        "not_approved",
			approve:     func(*ledger.Ledger) error { return nil },
			from:        alice,
			expectedErr: ledger.ErrNotApproved,
		},
		{
			name: "approved_to_other_account",
			approve: func(l *ledger.Ledger) error {
				return l.ApproveAsOwner(collection, alice, bob, tokenID)
			},
			from:        alice,
			expectedErr: ledger.ErrNotApproved,
		},
		{
			name: "not_owner",
			approve: func(l *ledger.Ledger) error {
				return l.ApproveAsOwner(collection, alice, operator, tokenID)
			},
			from:        bob,
			expectedErr: ledger.ErrNotOwner,
		},
		{
			name: "token_approval",
			approve: func(l *ledger.Ledger) error {
				return l.ApproveAsOwner(collection, alice, operator, tokenID)
			},
			from: alice,
		},
		{
			name: "operator_approval",
			approve: func(l *ledger.Ledger) error {
				return l.SetApprovalForAll(collection, alice, operator, true)
			},
			from: alice,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t)
			require.NoError(t, tt.approve(l))

			reg, err := l.Registry(collection)
			require.NoError(t, err)

			err = reg.Transfer(ctx, tt.from, bob, tokenID)
			owner, oErr := reg.OwnerOf(ctx, tokenID)
			require.NoError(t, oErr)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				require.Equal(t, alice, owner)
				return
			}
			require.NoError(t, err)
			require.Equal(t, bob, owner)

			approved, err := l.GetApproved(collection, tokenID)
			require.NoError(t, err)
			require.Equal(t, common.Address{}, approved)
		})
	}

	t.Run("unknown_token", func(t *testing.T) {
		l := newTestLedger(t)
		reg, err := l.Registry(collection)
		require.NoError(t, err)

		err = reg.Transfer(ctx, alice, bob, big.NewInt(99))
		require.ErrorIs(t, err, ledger.ErrTokenNotFound)
		_, err = reg.OwnerOf(ctx, big.NewInt(99))
		require.ErrorIs(t, err, ledger.ErrTokenNotFound)
	})
}

func TestNoopCollection(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.ApproveAsOwner(noop, alice, operator, tokenID))

	reg, err := l.Registry(noop)
	require.NoError(t, err)

	require.NoError(t, reg.Transfer(ctx, alice, bob, tokenID))
	owner, err := reg.OwnerOf(ctx, tokenID)
	require.NoError(t, err)
	require.Equal(t, alice, owner)
}

func TestApprove(t *testing.T) {
	l := newTestLedger(t)
	reg, err := l.Registry(collection)
	require.NoError(t, err)

	// Revoking with nothing approved is allowed.
	require.NoError(t, reg.Approve(ctx, common.Address{}, tokenID))
	require.ErrorIs(t, reg.Approve(ctx, bob, tokenID), ledger.ErrNotApproved)

	require.NoError(t, l.ApproveAsOwner(collection, alice, operator, tokenID))
	require.NoError(t, reg.Approve(ctx, common.Address{}, tokenID))

	approved, err := l.GetApproved(collection, tokenID)
	require.NoError(t, err)
	require.Equal(t, common.Address{}, approved)
}

func TestPay(t *testing.T) {
	l := newTestLedger(t)

	require.ErrorIs(t, l.Pay(ctx, bob, decimal.RequireFromString("0.5")), ledger.ErrInsufficientFunds)
	require.NoError(t, l.Deposit(operator, decimal.NewFromInt(1)))

	require.ErrorIs(t, l.Pay(ctx, bob, decimal.Zero), ledger.ErrInvalidAmount)
	require.NoError(t, l.Pay(ctx, bob, decimal.RequireFromString("0.5")))
	require.NoError(t, l.Pay(ctx, bob, decimal.RequireFromString("0.25")))
	require.True(t, decimal.RequireFromString("0.75").Equal(l.Balance(bob)))
	require.True(t, decimal.RequireFromString("0.25").Equal(l.Balance(operator)))
	require.True(t, l.Balance(alice).IsZero())
}

func TestCollect(t *testing.T) {
	tests := []struct {
		name           string
		funds          string
		amount         string
		expectedErr    error
		expectedPayer  string
		expectedEscrow string
	}{
		{"collected", "1", "0.25", nil, "0.75", "0.25"},
		{"whole_balance", "0.25", "0.25", nil, "0", "0.25"},
		{"zero_amount", "1", "0", nil, "1", "0"},
		{"insufficient_funds", "0.1", "0.25", ledger.ErrInsufficientFunds, "0.1", "0"},
		{"negative_amount", "1", "-1", ledger.ErrInvalidAmount, "1", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t)
			require.NoError(t, l.Deposit(alice, decimal.RequireFromString(tt.funds)))

			err := l.Collect(ctx, alice, decimal.RequireFromString(tt.amount), "")
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.expectedPayer, l.Balance(alice).String())
			require.Equal(t, tt.expectedEscrow, l.Balance(operator).String())
		})
	}

	require.ErrorIs(t, newTestLedger(t).Deposit(alice, decimal.Zero), ledger.ErrInvalidAmount)
}

func TestTransaction(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.SetApprovalForAll(collection, alice, operator, true))
	reg, err := l.Registry(collection)
	require.NoError(t, err)

	require.NoError(t, l.Deposit(operator, decimal.NewFromInt(1)))

	tx, err := l.Begin()
	require.NoError(t, err)
	require.NoError(t, reg.Transfer(ctx, alice, bob, tokenID))
	require.NoError(t, l.Pay(ctx, bob, decimal.NewFromInt(1)))
	require.NoError(t, tx.Rollback())

	owner, err := reg.OwnerOf(ctx, tokenID)
	require.NoError(t, err)
	require.Equal(t, alice, owner)
	require.True(t, l.Balance(bob).IsZero())
	require.Equal(t, "1", l.Balance(operator).String())

	tx, err = l.Begin()
	require.NoError(t, err)
	require.NoError(t, reg.Transfer(ctx, alice, bob, tokenID))
	require.NoError(t, tx.Commit())
	// Rolling back a committed transaction has no effect.
	require.NoError(t, tx.Rollback())

	owner, err = reg.OwnerOf(ctx, tokenID)
	require.NoError(t, err)
	require.Equal(t, bob, owner)
}
