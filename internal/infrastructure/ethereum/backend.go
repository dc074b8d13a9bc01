package ethereum

import (
	"context"
	"errors"
	"math/big"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	// ErrTxReverted is returned when a sent transaction is mined with a
	// failure status.
	ErrTxReverted = errors.New("transaction reverted")
	// ErrMissingKey is returned when an operation requires the operator key.
	ErrMissingKey = errors.New("missing operator key")
)

// Backend is the subset of the node RPC used by the adapters. It is
// satisfied by *ethclient.Client.
type Backend interface {
	CallContract(ctx context.Context, msg geth.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg geth.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Dial connects to the node at the given RPC address.
func Dial(ctx context.Context, rpcAddr string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcAddr)
	if err != nil {
		return nil, err
	}
	return client, nil
}
