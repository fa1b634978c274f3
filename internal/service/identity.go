package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/ledger"
	"telegram-economy-bot/internal/model"
)

// IdentityService turns command arguments into users.
type IdentityService struct {
	store ledger.Store
}

// NewIdentityService creates a new IdentityService instance.
func NewIdentityService(store ledger.Store) *IdentityService {
	return &IdentityService{store: store}
}

// Resolve accepts a numeric Telegram ID or a username with or without the
// leading @.
func (s *IdentityService) Resolve(ctx context.Context, arg string) (*model.User, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" || arg == "@" {
		return nil, fmt.Errorf("empty user reference: %w", game.ErrInvalidArgument)
	}

	if !strings.HasPrefix(arg, "@") {
		if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
			return s.lookup(s.store.GetByID(ctx, id))
		}
	}
	return s.lookup(s.store.GetByUsername(ctx, strings.TrimPrefix(arg, "@")))
}

func (s *IdentityService) lookup(u *model.User, err error) (*model.User, error) {
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return u, nil
}
