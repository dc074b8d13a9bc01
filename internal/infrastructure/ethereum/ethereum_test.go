package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	ctx        = context.Background()
	chainID    = big.NewInt(1337)
	collection = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	buyer      = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	seller     = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

type fakeBackend struct {
	lock sync.Mutex

	owner        common.Address
	nonce        uint64
	blockNumber  uint64
	receiptPolls int
	failStatus   bool

	calls []geth.CallMsg
	sent  []*types.Transaction
	polls map[common.Hash]int

	// Transactions sent to the node by third parties.
	external map[common.Hash]*types.Transaction
	pending  map[common.Hash]bool
	reverted map[common.Hash]bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nonce:    7,
		polls:    make(map[common.Hash]int),
		external: make(map[common.Hash]*types.Transaction),
		pending:  make(map[common.Hash]bool),
		reverted: make(map[common.Hash]bool),
	}
}

func (f *fakeBackend) CallContract(
	_ context.Context, msg geth.CallMsg, _ *big.Int,
) ([]byte, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.calls = append(f.calls, msg)
	parsed, _ := abi.JSON(strings.NewReader(erc721ABI))
	return parsed.Methods["ownerOf"].Outputs.Pack(f.owner)
}

func (f *fakeBackend) EstimateGas(context.Context, geth.CallMsg) (uint64, error) {
	return 60000, nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1000000000), nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.sent = append(f.sent, tx)
	f.nonce++
	return nil
}

func (f *fakeBackend) TransactionReceipt(
	_ context.Context, hash common.Hash,
) (*types.Receipt, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.polls[hash] < f.receiptPolls {
		f.polls[hash]++
		return nil, geth.NotFound
	}
	status := types.ReceiptStatusSuccessful
	if f.failStatus || f.reverted[hash] {
		status = types.ReceiptStatusFailed
	}
	return &types.Receipt{TxHash: hash, Status: status}, nil
}

func (f *fakeBackend) TransactionByHash(
	_ context.Context, hash common.Hash,
) (*types.Transaction, bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	tx, ok := f.external[hash]
	if !ok {
		return nil, false, geth.NotFound
	}
	return tx, f.pending[hash], nil
}

// addExternal signs a value transfer with key and makes it known to the
// node.
func (f *fakeBackend) addExternal(
	t *testing.T, key *ecdsa.PrivateKey, to common.Address, wei int64,
) common.Hash {
	f.lock.Lock()
	defer f.lock.Unlock()

	tx, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    uint64(len(f.external)),
		GasPrice: big.NewInt(1000000000),
		Gas:      21000,
		To:       &to,
		Value:    big.NewInt(wei),
	}), types.LatestSignerForChainID(chainID), key)
	require.NoError(t, err)
	f.external[tx.Hash()] = tx
	return tx.Hash()
}

func (f *fakeBackend) BlockNumber(context.Context) (uint64, error) {
	return f.blockNumber, nil
}

func (f *fakeBackend) lastSent() *types.Transaction {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.sent[len(f.sent)-1]
}

func newTestSender(t *testing.T, backend Backend) *Sender {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	sender, err := NewSender(backend, key, chainID)
	require.NoError(t, err)
	sender.SetPollInterval(time.Millisecond)
	return sender
}

func TestNewSender(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	tests := []struct {
		name    string
		backend Backend
		key     *ecdsa.PrivateKey
		chainID *big.Int
	}{
		{"missing_backend", nil, key, chainID},
		{"missing_key", newFakeBackend(), nil, chainID},
		{"missing_chain_id", newFakeBackend(), key, nil},
		{"zero_chain_id", newFakeBackend(), key, big.NewInt(0)},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			sender, err := NewSender(tt.backend, tt.key, tt.chainID)
			require.Error(t, err)
			require.Nil(t, sender)
		})
	}
}

func TestERC721(t *testing.T) {
	backend := newFakeBackend()
	backend.owner = seller
	backend.receiptPolls = 2
	sender := newTestSender(t, backend)

	assets, err := NewAssets(sender)
	require.NoError(t, err)
	registry, err := assets.Registry(collection)
	require.NoError(t, err)

	_, err = assets.Registry(common.Address{})
	require.Error(t, err)

	tokenID := big.NewInt(42)

	owner, err := registry.OwnerOf(ctx, tokenID)
	require.NoError(t, err)
	require.Equal(t, seller, owner)
	require.Len(t, backend.calls, 1)
	require.Equal(t, collection, *backend.calls[0].To)

	method, args := decodeCall(t, backend.calls[0].Data)
	require.Equal(t, "ownerOf", method)
	require.Equal(t, 0, tokenID.Cmp(args[0].(*big.Int)))

	err = registry.Transfer(ctx, seller, buyer, tokenID)
	require.NoError(t, err)

	tx := backend.lastSent()
	require.Equal(t, collection, *tx.To())
	require.Equal(t, uint64(7), tx.Nonce())
	require.Equal(t, 0, tx.Value().Sign())
	from, err := types.Sender(types.LatestSignerForChainID(chainID), tx)
	require.NoError(t, err)
	require.Equal(t, sender.From(), from)

	method, args = decodeCall(t, tx.Data())
	require.Equal(t, "transferFrom", method)
	require.Equal(t, seller, args[0].(common.Address))
	require.Equal(t, buyer, args[1].(common.Address))
	require.Equal(t, 0, tokenID.Cmp(args[2].(*big.Int)))

	err = registry.Approve(ctx, common.Address{}, tokenID)
	require.NoError(t, err)

	tx = backend.lastSent()
	require.Equal(t, uint64(8), tx.Nonce())
	method, args = decodeCall(t, tx.Data())
	require.Equal(t, "approve", method)
	require.Equal(t, common.Address{}, args[0].(common.Address))
}

func TestERC721Reverted(t *testing.T) {
	backend := newFakeBackend()
	backend.failStatus = true
	sender := newTestSender(t, backend)

	assets, err := NewAssets(sender)
	require.NoError(t, err)
	registry, err := assets.Registry(collection)
	require.NoError(t, err)

	err = registry.Transfer(ctx, seller, buyer, big.NewInt(1))
	require.ErrorIs(t, err, ErrTxReverted)
}

func TestSettlement(t *testing.T) {
	backend := newFakeBackend()
	sender := newTestSender(t, backend)
	settlement, err := NewSettlement(sender)
	require.NoError(t, err)

	err = settlement.Pay(ctx, buyer, decimal.RequireFromString("0.005"))
	require.NoError(t, err)

	tx := backend.lastSent()
	require.Equal(t, buyer, *tx.To())
	require.Equal(t, "5000000000000000", tx.Value().String())
	require.Empty(t, tx.Data())

	tests := []struct {
		name   string
		amount decimal.Decimal
	}{
		{"zero", decimal.Zero},
		{"negative", decimal.NewFromInt(-1)},
		{"too_many_decimals", decimal.RequireFromString("0.0000000000000000001")},
	}
	for _, tt := range tests {
		err := settlement.Pay(ctx, buyer, tt.amount)
		require.Error(t, err, tt.name)
	}
}

func TestSettlementCollect(t *testing.T) {
	backend := newFakeBackend()
	sender := newTestSender(t, backend)
	settlement, err := NewSettlement(sender)
	require.NoError(t, err)

	payerKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	payer := crypto.PubkeyToAddress(payerKey.PublicKey)
	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	amount := decimal.RequireFromString("0.005")
	const wei = 5000000000000000

	valid := backend.addExternal(t, payerKey, sender.From(), wei)
	pending := backend.addExternal(t, payerKey, sender.From(), wei+1)
	backend.pending[pending] = true
	reverted := backend.addExternal(t, payerKey, sender.From(), wei+2)
	backend.reverted[reverted] = true
	wrongRecipient := backend.addExternal(t, payerKey, seller, wei)
	wrongPayer := backend.addExternal(t, otherKey, sender.From(), wei)
	wrongValue := backend.addExternal(t, payerKey, sender.From(), wei-1)

	require.NoError(t, settlement.Collect(ctx, payer, amount, valid.Hex()))
	require.NoError(t, settlement.Collect(ctx, payer, decimal.Zero, ""))
	require.Empty(t, backend.sent)

	tests := []struct {
		name        string
		amount      decimal.Decimal
		ref         string
		expectedErr error
	}{
		{"missing_ref", amount, "", ErrInvalidPayment},
		{"malformed_ref", amount, "0x1234", ErrInvalidPayment},
		{"unknown_tx", amount, common.HexToHash("0xdead").Hex(), ErrPaymentNotFound},
		{"pending_tx", amount, pending.Hex(), ErrPaymentNotFound},
		{"reverted_tx", amount, reverted.Hex(), ErrTxReverted},
		{"wrong_recipient", amount, wrongRecipient.Hex(), ErrInvalidPayment},
		{"wrong_payer", amount, wrongPayer.Hex(), ErrInvalidPayment},
		{"wrong_value", amount, wrongValue.Hex(), ErrInvalidPayment},
		{"value_above_paid_amount", decimal.RequireFromString("0.004"), valid.Hex(), ErrInvalidPayment},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			err := settlement.Collect(ctx, payer, tt.amount, tt.ref)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}

	err = settlement.Collect(ctx, payer, decimal.RequireFromString("0.0000000000000000001"), valid.Hex())
	require.Error(t, err)
}

func TestHeights(t *testing.T) {
	backend := newFakeBackend()
	backend.blockNumber = 19000000

	heights, err := NewHeights(backend)
	require.NoError(t, err)

	height, err := heights.CurrentHeight(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(19000000), height)
}

func TestWaitReceiptCancelled(t *testing.T) {
	backend := newFakeBackend()
	backend.receiptPolls = 1 << 30
	sender := newTestSender(t, backend)

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	_, err := sender.send(ctx, buyer, big.NewInt(1), nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func decodeCall(t *testing.T, data []byte) (string, []interface{}) {
	parsed, err := abi.JSON(strings.NewReader(erc721ABI))
	require.NoError(t, err)

	method, err := parsed.MethodById(data[:4])
	require.NoError(t, err)
	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(t, err, fmt.Sprintf("unpacking %s", method.Name))
	return method.Name, args
}
