package escrow

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

// TransferOut sends the balance retained by the registry to the admin and
// returns the amount sent. Fees of trades not yet executed nor reclaimed
// stay in the registry, so that they can still be forwarded or refunded.
// Only the admin can call it.
func (s *Service) TransferOut(
	ctx context.Context, caller common.Address,
) (decimal.Decimal, error) {
	amount := decimal.Zero

	err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		state, err := s.repoManager.RegistryRepository().GetState(ctx)
		if err != nil {
			return nil, err
		}
		if err := state.AuthorizeAdmin(caller); err != nil {
			return nil, err
		}

		trades, err := s.repoManager.TradeRepository().GetAllTrades(
			ctx, domain.TradeFilter{},
		)
		if err != nil {
			return nil, err
		}
		held := domain.HeldFees(trades)
		available := state.Balance.Sub(held)
		if !available.IsPositive() {
			available = decimal.Zero
		}

		if err := s.pay(ctx, state.Admin, available); err != nil {
			return nil, err
		}
		amount = available

		height, err := s.currentHeight(ctx)
		if err != nil {
			return nil, err
		}

		log.Debugf(
			"transferred out %s to admin %s, %s held for open trades",
			amount, state.Admin, held,
		)
		return []domain.Event{{
			Type:    domain.EventFundsTransferredOut,
			Height:  height,
			Account: state.Admin,
			Amount:  amount,
		}}, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// SetAdmin replaces the admin of the registry. Only the current admin can
// call it.
func (s *Service) SetAdmin(
	ctx context.Context, caller, newAdmin common.Address,
) error {
	return s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		if err := s.repoManager.RegistryRepository().UpdateState(
			ctx, func(st *domain.RegistryState) (*domain.RegistryState, error) {
				if err := st.SetAdmin(caller, newAdmin); err != nil {
					return nil, err
				}
				return st, nil
			},
		); err != nil {
			return nil, err
		}

		height, err := s.currentHeight(ctx)
		if err != nil {
			return nil, err
		}

		log.Infof("admin changed from %s to %s", caller, newAdmin)
		return []domain.Event{{
			Type:    domain.EventAdminChanged,
			Height:  height,
			Account: newAdmin,
		}}, nil
	})
}
