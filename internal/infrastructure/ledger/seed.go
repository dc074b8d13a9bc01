package ledger

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// DefaultOperator is the account on behalf of which a ledger loaded without
// an explicit operator makes its calls.
var DefaultOperator = common.HexToAddress("0x000000000000000000000000000000000000e5c0")

// Seed is the initial content of a ledger.
//
//	{
//	  "operator": "0x...",
//	  "balances": {"0x...": "1.5"},
//	  "collections": [{
//	    "address": "0x...",
//	    "tokens": [{"id": "1", "owner": "0x...", "approved": true}],
//	    "operators": ["0x..."]
//	  }]
//	}
//
// Approved tokens are approved for the operator of the ledger, as are all
// tokens of the owners listed in operators.
type Seed struct {
	Operator    string            `json:"operator"`
	Balances    map[string]string `json:"balances"`
	Collections []SeedCollection  `json:"collections"`
}

type SeedCollection struct {
	Address   string      `json:"address"`
	Noop      bool        `json:"noop"`
	Tokens    []SeedToken `json:"tokens"`
	Operators []string    `json:"operators"`
}

type SeedToken struct {
	ID       string `json:"id"`
	Owner    string `json:"owner"`
	Approved bool   `json:"approved"`
}

// LoadSeedFile reads the seed at the given path and returns the resulting
// ledger. An empty path returns an empty ledger for DefaultOperator.
func LoadSeedFile(filename string) (*Ledger, error) {
	if filename == "" {
		return NewLedger(DefaultOperator), nil
	}

	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var seed Seed
	if err := json.Unmarshal(buf, &seed); err != nil {
		return nil, fmt.Errorf("invalid ledger seed: %w", err)
	}
	return FromSeed(seed)
}

// FromSeed returns a ledger initialized with the given seed.
func FromSeed(seed Seed) (*Ledger, error) {
	operator := DefaultOperator
	if seed.Operator != "" {
		addr, err := parseAddress(seed.Operator)
		if err != nil {
			return nil, fmt.Errorf("operator: %w", err)
		}
		operator = addr
	}
	l := NewLedger(operator)

	for account, amount := range seed.Balances {
		addr, err := parseAddress(account)
		if err != nil {
			return nil, fmt.Errorf("balances: %w", err)
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("balance of %s: %w", account, err)
		}
		if value.IsNegative() {
			return nil, fmt.Errorf("balance of %s: %w", account, ErrInvalidAmount)
		}
		l.state.balances[addr] = value
	}

	for _, sc := range seed.Collections {
		collectionAddr, err := parseAddress(sc.Address)
		if err != nil {
			return nil, fmt.Errorf("collection: %w", err)
		}
		l.AddCollection(collectionAddr, sc.Noop)

		for _, st := range sc.Tokens {
			tokenID, ok := new(big.Int).SetString(st.ID, 0)
			if !ok || tokenID.Sign() < 0 {
				return nil, fmt.Errorf("collection %s: invalid token id %q", sc.Address, st.ID)
			}
			owner, err := parseAddress(st.Owner)
			if err != nil {
				return nil, fmt.Errorf("owner of token %s: %w", st.ID, err)
			}
			if err := l.Mint(collectionAddr, owner, tokenID); err != nil {
				return nil, fmt.Errorf("token %s: %w", st.ID, err)
			}
			if st.Approved {
				if err := l.ApproveAsOwner(collectionAddr, owner, operator, tokenID); err != nil {
					return nil, fmt.Errorf("token %s: %w", st.ID, err)
				}
			}
		}

		for _, o := range sc.Operators {
			owner, err := parseAddress(o)
			if err != nil {
				return nil, fmt.Errorf("collection %s operators: %w", sc.Address, err)
			}
			if err := l.SetApprovalForAll(collectionAddr, owner, operator, true); err != nil {
				return nil, err
			}
		}
	}

	return l, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}
