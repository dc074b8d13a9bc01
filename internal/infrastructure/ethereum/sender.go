package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	log "github.com/sirupsen/logrus"
)

const defaultReceiptPollInterval = 2 * time.Second

// Sender signs transactions with the operator key and waits for them to be
// mined. Sends are serialized to keep nonces consistent.
type Sender struct {
	backend      Backend
	key          *ecdsa.PrivateKey
	from         common.Address
	signer       types.Signer
	pollInterval time.Duration

	lock *sync.Mutex
}

func NewSender(
	backend Backend, key *ecdsa.PrivateKey, chainID *big.Int,
) (*Sender, error) {
	if backend == nil {
		return nil, fmt.Errorf("missing backend")
	}
	if key == nil {
		return nil, ErrMissingKey
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, fmt.Errorf("invalid chain id")
	}

	return &Sender{
		backend:      backend,
		key:          key,
		from:         crypto.PubkeyToAddress(key.PublicKey),
		signer:       types.LatestSignerForChainID(chainID),
		pollInterval: defaultReceiptPollInterval,
		lock:         &sync.Mutex{},
	}, nil
}

// LoadKey reads a hex encoded secp256k1 private key from file.
func LoadKey(filename string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.LoadECDSA(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load operator key: %w", err)
	}
	return key, nil
}

// From returns the operator address, ie. the identity the escrow acts as.
func (s *Sender) From() common.Address {
	return s.from
}

// SetPollInterval changes how often receipts are polled.
func (s *Sender) SetPollInterval(interval time.Duration) {
	s.pollInterval = interval
}

func (s *Sender) call(
	ctx context.Context, to common.Address, data []byte,
) ([]byte, error) {
	return s.backend.CallContract(ctx, geth.CallMsg{
		From: s.from,
		To:   &to,
		Data: data,
	}, nil)
}

// send signs and broadcasts a transaction and returns its receipt once
// mined.
func (s *Sender) send(
	ctx context.Context, to common.Address, value *big.Int, data []byte,
) (*types.Receipt, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if value == nil {
		value = big.NewInt(0)
	}

	nonce, err := s.backend.PendingNonceAt(ctx, s.from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	gas, err := s.backend.EstimateGas(ctx, geth.CallMsg{
		From:  s.from,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    value,
		Data:     data,
	})
	signedTx, err := types.SignTx(tx, s.signer, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := s.backend.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	log.Debugf("sent transaction %s to %s", signedTx.Hash().Hex(), to.Hex())

	receipt, err := s.waitReceipt(ctx, signedTx.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", ErrTxReverted, signedTx.Hash().Hex())
	}
	return receipt, nil
}

func (s *Sender) waitReceipt(
	ctx context.Context, hash common.Hash,
) (*types.Receipt, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, geth.NotFound) {
			return nil, fmt.Errorf("failed to get receipt of %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
