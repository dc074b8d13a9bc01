package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

const erc721ABI = `[
	{"type":"function","name":"ownerOf","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable",
	 "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],
	 "outputs":[]},
	{"type":"function","name":"approve","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],
	 "outputs":[]}
]`

// Assets resolves ERC-721 collections deployed on chain. Transfers and
// approvals are sent by the operator account, which must be approved by
// the token owners.
type Assets struct {
	sender *Sender
	abi    abi.ABI
}

func NewAssets(sender *Sender) (*Assets, error) {
	if sender == nil {
		return nil, fmt.Errorf("missing sender")
	}
	parsed, err := abi.JSON(strings.NewReader(erc721ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc721 abi: %w", err)
	}
	return &Assets{sender, parsed}, nil
}

func (a *Assets) Registry(collection common.Address) (ports.AssetRegistry, error) {
	if collection == (common.Address{}) {
		return nil, fmt.Errorf("invalid collection address")
	}
	return &erc721{a, collection}, nil
}

type erc721 struct {
	assets     *Assets
	collection common.Address
}

func (e *erc721) OwnerOf(
	ctx context.Context, tokenID *big.Int,
) (common.Address, error) {
	data, err := e.assets.abi.Pack("ownerOf", tokenID)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to pack ownerOf: %w", err)
	}

	result, err := e.assets.sender.call(ctx, e.collection, data)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to call ownerOf: %w", err)
	}

	var owner common.Address
	if err := e.assets.abi.UnpackIntoInterface(&owner, "ownerOf", result); err != nil {
		return common.Address{}, fmt.Errorf("failed to unpack ownerOf: %w", err)
	}
	return owner, nil
}

func (e *erc721) Transfer(
	ctx context.Context, from, to common.Address, tokenID *big.Int,
) error {
	data, err := e.assets.abi.Pack("transferFrom", from, to, tokenID)
	if err != nil {
		return fmt.Errorf("failed to pack transferFrom: %w", err)
	}
	_, err = e.assets.sender.send(ctx, e.collection, nil, data)
	return err
}

func (e *erc721) Approve(
	ctx context.Context, operator common.Address, tokenID *big.Int,
) error {
	data, err := e.assets.abi.Pack("approve", operator, tokenID)
	if err != nil {
		return fmt.Errorf("failed to pack approve: %w", err)
	}
	_, err = e.assets.sender.send(ctx, e.collection, nil, data)
	return err
}
