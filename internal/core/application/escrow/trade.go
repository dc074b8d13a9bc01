package escrow

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

// ProposeTrade stores a new pending trade and collects the paid value from
// the buyer into the escrow. Only the buyer can propose and the paid value
// must cover the fee. No token is moved at this stage.
func (s *Service) ProposeTrade(
	ctx context.Context, caller common.Address, args ProposeArgs,
) (uint64, error) {
	var tradeID uint64
	paymentRef := args.paymentRef()

	err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		if caller != args.Buyer {
			return nil, domain.ErrUnauthorized
		}

		height, err := s.currentHeight(ctx)
		if err != nil {
			return nil, err
		}

		if paymentRef != "" {
			funded, err := s.repoManager.TradeRepository().GetAllTrades(
				ctx, domain.TradeFilter{PaymentRef: paymentRef},
			)
			if err != nil {
				return nil, err
			}
			if len(funded) > 0 {
				return nil, fmt.Errorf(
					"%w: %s funded trade %d", domain.ErrPaymentAlreadyUsed, paymentRef, funded[0].ID,
				)
			}
		}

		var trade *domain.Trade
		if err := s.repoManager.RegistryRepository().UpdateState(
			ctx, func(st *domain.RegistryState) (*domain.RegistryState, error) {
				if err := st.ChargeFee(args.PaidValue); err != nil {
					return nil, err
				}
				t, err := domain.NewTrade(
					st.NextID, args.proposal(), st.Fee, height, st.ExpirationWindow,
				)
				if err != nil {
					return nil, err
				}
				st.AllocateID()
				trade = t
				return st, nil
			},
		); err != nil {
			return nil, err
		}
		trade.PaymentRef = paymentRef

		if err := s.settlement.Collect(
			ctx, args.Buyer, args.PaidValue, paymentRef,
		); err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientFee, err)
		}

		if err := s.repoManager.TradeRepository().AddTrade(ctx, trade); err != nil {
			return nil, err
		}

		tradeID = trade.ID
		log.Debugf("proposed trade %d expiring at height %d", trade.ID, trade.ExpirationHeight)

		event := domain.TradeEvent(domain.EventTradeProposed, trade.ID, height)
		event.Account = trade.Buyer
		event.Amount = args.PaidValue
		return []domain.Event{event}, nil
	})
	if err != nil {
		return 0, err
	}
	return tradeID, nil
}

// ExecuteTrade swaps the two tokens of a pending trade and forwards its fee
// to the admin. Only the seller can execute, before the trade expires.
func (s *Service) ExecuteTrade(
	ctx context.Context, caller common.Address, tradeID uint64,
) error {
	return s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		tradeRepo := s.repoManager.TradeRepository()

		height, err := s.currentHeight(ctx)
		if err != nil {
			return nil, err
		}

		trade, err := tradeRepo.GetTrade(ctx, tradeID)
		if err != nil {
			return nil, err
		}
		if err := trade.CanExecute(caller, height); err != nil {
			return nil, err
		}

		buyerRegistry, err := s.assets.Registry(trade.BuyerCollection)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
		}
		sellerRegistry, err := s.assets.Registry(trade.SellerCollection)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
		}

		if err := buyerRegistry.Transfer(
			ctx, trade.Buyer, trade.Seller, trade.BuyerTokenID,
		); err != nil {
			return nil, fmt.Errorf(
				"%w: buyer token %s: %s", domain.ErrTransferFailed, trade.BuyerTokenID, err,
			)
		}
		if err := sellerRegistry.Transfer(
			ctx, trade.Seller, trade.Buyer, trade.SellerTokenID,
		); err != nil {
			return nil, fmt.Errorf(
				"%w: seller token %s: %s", domain.ErrTransferFailed, trade.SellerTokenID, err,
			)
		}

		if err := verifyOwner(
			ctx, buyerRegistry, trade.BuyerTokenID, trade.Seller,
		); err != nil {
			return nil, err
		}
		if err := verifyOwner(
			ctx, sellerRegistry, trade.SellerTokenID, trade.Buyer,
		); err != nil {
			return nil, err
		}

		if err := tradeRepo.UpdateTrade(
			ctx, tradeID, func(t *domain.Trade) (*domain.Trade, error) {
				if err := t.Execute(caller, height); err != nil {
					return nil, err
				}
				return t, nil
			},
		); err != nil {
			return nil, err
		}

		state, err := s.repoManager.RegistryRepository().GetState(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.pay(ctx, state.Admin, trade.Fee); err != nil {
			return nil, err
		}

		// Tokens already changed hands, a failure here leaves at most a stale
		// approval behind.
		revokeApproval(ctx, buyerRegistry, trade.BuyerTokenID)
		revokeApproval(ctx, sellerRegistry, trade.SellerTokenID)

		log.Debugf("executed trade %d at height %d", tradeID, height)

		event := domain.TradeEvent(domain.EventTradeExecuted, tradeID, height)
		event.Account = state.Admin
		event.Amount = trade.Fee
		return []domain.Event{event}, nil
	})
}

// CancelProposedTrade makes a non executed trade immediately expired. Only
// the buyer can cancel. The fee is not refunded, see ReclaimFees.
func (s *Service) CancelProposedTrade(
	ctx context.Context, caller common.Address, tradeID uint64,
) error {
	return s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		height, err := s.currentHeight(ctx)
		if err != nil {
			return nil, err
		}

		if err := s.repoManager.TradeRepository().UpdateTrade(
			ctx, tradeID, func(t *domain.Trade) (*domain.Trade, error) {
				if err := t.Cancel(caller, height); err != nil {
					return nil, err
				}
				return t, nil
			},
		); err != nil {
			return nil, err
		}

		log.Debugf("cancelled trade %d at height %d", tradeID, height)

		event := domain.TradeEvent(domain.EventTradeCancelled, tradeID, height)
		event.Account = caller
		return []domain.Event{event}, nil
	})
}

// ReclaimFees refunds the fee to the buyer of every expired, non executed
// trade of the list whose fee was not already reclaimed. Other ids, unknown
// ones included, are skipped. It returns the ids of the refunded trades.
func (s *Service) ReclaimFees(
	ctx context.Context, caller common.Address, tradeIDs []uint64,
) ([]uint64, error) {
	if len(tradeIDs) > s.maxReclaimBatchSize {
		return nil, fmt.Errorf(
			"%w: got %d, max %d",
			domain.ErrBatchTooLarge, len(tradeIDs), s.maxReclaimBatchSize,
		)
	}

	reclaimed := make([]uint64, 0, len(tradeIDs))
	err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		tradeRepo := s.repoManager.TradeRepository()
		reclaimed = reclaimed[:0]

		height, err := s.currentHeight(ctx)
		if err != nil {
			return nil, err
		}

		events := make([]domain.Event, 0, len(tradeIDs))
		for _, id := range tradeIDs {
			var refunded *domain.Trade
			if err := tradeRepo.UpdateTrade(
				ctx, id, func(t *domain.Trade) (*domain.Trade, error) {
					if !t.ReclaimFee(height) {
						return t, nil
					}
					refunded = t
					return t, nil
				},
			); err != nil {
				if errors.Is(err, domain.ErrTradeNotFound) {
					continue
				}
				return nil, err
			}
			if refunded == nil {
				continue
			}

			if err := s.pay(ctx, refunded.Buyer, refunded.Fee); err != nil {
				return nil, err
			}

			reclaimed = append(reclaimed, id)
			event := domain.TradeEvent(domain.EventFeeReclaimed, id, height)
			event.Account = refunded.Buyer
			event.Amount = refunded.Fee
			events = append(events, event)
		}

		log.Debugf(
			"reclaimed fees for %d out of %d trades on behalf of %s",
			len(reclaimed), len(tradeIDs), caller,
		)
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return reclaimed, nil
}

func verifyOwner(
	ctx context.Context, registry ports.AssetRegistry,
	tokenID *big.Int, expected common.Address,
) error {
	owner, err := registry.OwnerOf(ctx, tokenID)
	if err != nil {
		return fmt.Errorf(
			"%w: owner of token %s: %s", domain.ErrTransferVerificationFailed, tokenID, err,
		)
	}
	if owner != expected {
		return fmt.Errorf(
			"%w: token %s is owned by %s, expected %s",
			domain.ErrTransferVerificationFailed, tokenID, owner, expected,
		)
	}
	return nil
}

func revokeApproval(
	ctx context.Context, registry ports.AssetRegistry, tokenID *big.Int,
) {
	if err := registry.Approve(ctx, common.Address{}, tokenID); err != nil {
		log.WithError(err).Warnf("failed to revoke approval for token %s", tokenID)
	}
}
