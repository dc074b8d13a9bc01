package ports

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AssetRegistry is the authority over ownership of the tokens of a single
// collection. The escrow never holds tokens, it only triggers transfers it
// has been authorized for.
type AssetRegistry interface {
	// OwnerOf returns the current owner of the token.
	OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error)
	// Transfer moves the token from one account to another. It fails if from
	// is not the current owner or if the escrow is not authorized.
	Transfer(ctx context.Context, from, to common.Address, tokenID *big.Int) error
	// Approve grants operator the right to transfer the token. The zero
	// address revokes any approval.
	Approve(ctx context.Context, operator common.Address, tokenID *big.Int) error
}

// AssetRegistryResolver returns the AssetRegistry of a collection.
type AssetRegistryResolver interface {
	Registry(collection common.Address) (AssetRegistry, error)
}
