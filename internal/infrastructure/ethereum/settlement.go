package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

// etherDecimals is the number of wei decimals of one ether.
const etherDecimals = 18

var (
	// ErrPaymentNotFound is returned when the transaction referenced by a
	// payment is unknown to the node or not mined yet.
	ErrPaymentNotFound = errors.New("payment transaction not found")
	// ErrInvalidPayment is returned when the referenced transaction doesn't
	// move the expected value from the payer to the operator.
	ErrInvalidPayment = errors.New("invalid payment transaction")
)

// Settlement moves native currency in and out of the operator account.
// Amounts are expressed in ether.
type Settlement struct {
	sender *Sender
}

func NewSettlement(sender *Sender) (*Settlement, error) {
	if sender == nil {
		return nil, fmt.Errorf("missing sender")
	}
	return &Settlement{sender}, nil
}

// Collect verifies that ref is the hash of a mined, successful transaction
// sending exactly amount from the payer to the operator account. Payers
// fund the escrow on their own, the operator can't pull value from them.
func (s *Settlement) Collect(
	ctx context.Context, from common.Address, amount decimal.Decimal, ref string,
) error {
	if amount.IsZero() {
		return nil
	}
	wei, err := toWei(amount)
	if err != nil {
		return err
	}

	buf, err := hexutil.Decode(ref)
	if err != nil || len(buf) != common.HashLength {
		return fmt.Errorf("%w: malformed reference %q", ErrInvalidPayment, ref)
	}
	hash := common.BytesToHash(buf)
	backend := s.sender.backend

	tx, pending, err := backend.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, geth.NotFound) {
			return fmt.Errorf("%w: %s", ErrPaymentNotFound, hash.Hex())
		}
		return fmt.Errorf("failed to get transaction %s: %w", hash.Hex(), err)
	}
	if pending {
		return fmt.Errorf("%w: %s is pending", ErrPaymentNotFound, hash.Hex())
	}

	receipt, err := backend.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, geth.NotFound) {
			return fmt.Errorf("%w: %s", ErrPaymentNotFound, hash.Hex())
		}
		return fmt.Errorf("failed to get receipt of %s: %w", hash.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: %s", ErrTxReverted, hash.Hex())
	}

	if tx.To() == nil || *tx.To() != s.sender.From() {
		return fmt.Errorf("%w: %s is not sent to the escrow", ErrInvalidPayment, hash.Hex())
	}
	payer, err := types.Sender(s.sender.signer, tx)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayment, err)
	}
	if payer != from {
		return fmt.Errorf(
			"%w: %s is sent by %s, not %s", ErrInvalidPayment, hash.Hex(), payer.Hex(), from.Hex(),
		)
	}
	if tx.Value().Cmp(wei) != 0 {
		return fmt.Errorf(
			"%w: %s moves %s wei, %s expected", ErrInvalidPayment, hash.Hex(), tx.Value(), wei,
		)
	}
	return nil
}

func (s *Settlement) Pay(
	ctx context.Context, recipient common.Address, amount decimal.Decimal,
) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	wei, err := toWei(amount)
	if err != nil {
		return err
	}
	_, err = s.sender.send(ctx, recipient, wei, nil)
	return err
}

func toWei(amount decimal.Decimal) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative")
	}
	wei := amount.Shift(etherDecimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("amount %s has more than %d decimals", amount, etherDecimals)
	}
	return wei.BigInt(), nil
}
