// Package ledger provides the balance and XP mutation primitives used by
// every game. Losses are clamped so no counter ever goes below zero.
//
// The functions only mutate the in-memory user; callers persist the result
// through Store.Commit together with the audit entries describing it.
package ledger

import (
	"context"
	"errors"
	"time"

	"telegram-economy-bot/internal/model"
	"telegram-economy-bot/internal/pkg/idgen"
)

// ErrUserNotFound is returned by stores for unknown identities.
var ErrUserNotFound = errors.New("user not found")

// Store is the identity and balance store the games run against.
type Store interface {
	// GetByID returns the user or ErrUserNotFound.
	GetByID(ctx context.Context, telegramID int64) (*model.User, error)

	// GetByUsername returns the user or ErrUserNotFound. The leading @ is optional.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// GetOrCreate returns the user, creating it with default balances if needed.
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*model.User, bool, error)

	// Commit persists every user and entry atomically.
	Commit(ctx context.Context, entries []model.Transaction, users ...*model.User) error
}

// CanAfford reports whether the user holds at least amount coins.
func CanAfford(u *model.User, amount int64) bool {
	return u.TopCoin >= amount
}

// CreditCoins adds amount coins and returns the amount added.
func CreditCoins(u *model.User, amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	u.TopCoin += amount
	return amount
}

// DebitCoins removes min(amount, coins) and returns the amount removed.
func DebitCoins(u *model.User, amount int64) int64 {
	removed := clampLoss(u.TopCoin, amount)
	u.TopCoin -= removed
	return removed
}

// Transfer moves up to amount coins from one user to another and returns
// the amount moved.
func Transfer(from, to *model.User, amount int64) int64 {
	moved := DebitCoins(from, amount)
	CreditCoins(to, moved)
	return moved
}

// CreditXP adds amount to every XP aggregate.
func CreditXP(u *model.User, amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	u.TotalXP += amount
	u.DayXP += amount
	u.WeekXP += amount
	u.MonthXP += amount
	return amount
}

// DebitXP removes min(amount, totalXP) from every XP aggregate, each clamped
// at zero on its own, and returns the amount removed from the total.
func DebitXP(u *model.User, amount int64) int64 {
	removed := clampLoss(u.TotalXP, amount)
	if removed == 0 {
		return 0
	}
	u.TotalXP -= removed
	u.DayXP -= clampLoss(u.DayXP, removed)
	u.WeekXP -= clampLoss(u.WeekXP, removed)
	u.MonthXP -= clampLoss(u.MonthXP, removed)
	return removed
}

func clampLoss(current, amount int64) int64 {
	if amount <= 0 || current <= 0 {
		return 0
	}
	if amount > current {
		return current
	}
	return amount
}

// Entry builds an audit entry for a balance change.
func Entry(userID int64, coins, xp int64, txType, description string) model.Transaction {
	now := time.Now()
	var desc *string
	if description != "" {
		desc = &description
	}
	return model.Transaction{
		ID:          idgen.NewIDAt(now),
		UserID:      userID,
		Coins:       coins,
		XP:          xp,
		Type:        txType,
		Description: desc,
		CreatedAt:   now,
	}
}
