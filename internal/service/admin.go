package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/ledger"
	"telegram-economy-bot/internal/model"
	"telegram-economy-bot/internal/pkg/lock"
)

// AdminService applies admin grants.
type AdminService struct {
	store ledger.Store
	locks *lock.UserLock
}

// NewAdminService creates a new AdminService instance.
func NewAdminService(store ledger.Store, locks *lock.UserLock) *AdminService {
	return &AdminService{store: store, locks: locks}
}

// AddCoins credits coins to a user.
func (s *AdminService) AddCoins(ctx context.Context, adminID, targetID, amount int64) (*model.User, error) {
	return s.grant(ctx, adminID, targetID, amount, 0)
}

// AddXP credits XP to every aggregate of a user.
func (s *AdminService) AddXP(ctx context.Context, adminID, targetID, amount int64) (*model.User, error) {
	return s.grant(ctx, adminID, targetID, 0, amount)
}

func (s *AdminService) grant(ctx context.Context, adminID, targetID, coins, xp int64) (*model.User, error) {
	if coins < 0 || xp < 0 || coins+xp == 0 {
		return nil, fmt.Errorf("grant must be positive: %w", game.ErrInvalidArgument)
	}

	var user *model.User
	err := s.locks.WithLock(ctx, targetID, func() error {
		u, err := s.store.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		ledger.CreditCoins(u, coins)
		ledger.CreditXP(u, xp)
		user = u

		desc := fmt.Sprintf("admin %d", adminID)
		return s.store.Commit(ctx, []model.Transaction{ledger.Entry(targetID, coins, xp, model.TxTypeAdminAdd, desc)}, u)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("admin_id", adminID).
		Int64("target_id", targetID).
		Int64("coins", coins).
		Int64("xp", xp).
		Msg("Admin grant")
	return user, nil
}
