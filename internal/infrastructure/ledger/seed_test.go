package ledger_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger"
)

const seedJSON = `{
  "operator": "0x00000000000000000000000000000000000000e5",
  "balances": {"0x00000000000000000000000000000000000000a1": "2.5"},
  "collections": [
    {
      "address": "0x00000000000000000000000000000000000000c1",
      "tokens": [
        {"id": "7", "owner": "0x00000000000000000000000000000000000000a1", "approved": true},
        {"id": "0x10", "owner": "0x00000000000000000000000000000000000000b0"}
      ],
      "operators": ["0x00000000000000000000000000000000000000b0"]
    },
    {"address": "0x00000000000000000000000000000000000000c2", "noop": true}
  ]
}`

func TestLoadSeedFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(filename, []byte(seedJSON), 0600))

	l, err := ledger.LoadSeedFile(filename)
	require.NoError(t, err)
	require.Equal(t, operator, l.Operator())
	require.Equal(t, "2.5", l.Balance(alice).String())

	approved, err := l.GetApproved(collection, tokenID)
	require.NoError(t, err)
	require.Equal(t, operator, approved)

	registry, err := l.Registry(collection)
	require.NoError(t, err)

	owner, err := registry.OwnerOf(ctx, big.NewInt(16))
	require.NoError(t, err)
	require.Equal(t, bob, owner)

	// bob approved the operator for all of his tokens
	require.NoError(t, registry.Transfer(ctx, bob, alice, big.NewInt(16)))

	_, err = l.Registry(noop)
	require.NoError(t, err)
}

func TestLoadEmptySeed(t *testing.T) {
	l, err := ledger.LoadSeedFile("")
	require.NoError(t, err)
	require.Equal(t, ledger.DefaultOperator, l.Operator())
}

func TestFailingFromSeed(t *testing.T) {
	addr := "0x00000000000000000000000000000000000000c1"
	tests := []struct {
		name string
		seed ledger.Seed
	}{
		{"invalid_operator", ledger.Seed{Operator: "operator"}},
		{"invalid_balance", ledger.Seed{Balances: map[string]string{addr: "abc"}}},
		{"negative_balance", ledger.Seed{Balances: map[string]string{addr: "-1"}}},
		{"invalid_collection", ledger.Seed{Collections: []ledger.SeedCollection{{Address: "c1"}}}},
		{"invalid_token_id", ledger.Seed{Collections: []ledger.SeedCollection{{
			Address: addr, Tokens: []ledger.SeedToken{{ID: "one", Owner: addr}},
		}}}},
		{"duplicated_token", ledger.Seed{Collections: []ledger.SeedCollection{{
			Address: addr, Tokens: []ledger.SeedToken{{ID: "1", Owner: addr}, {ID: "1", Owner: addr}},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.FromSeed(tt.seed)
			require.Error(t, err)
		})
	}
}
