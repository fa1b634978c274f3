package service

import (
	"context"

	"telegram-economy-bot/internal/model"
	"telegram-economy-bot/internal/repository"
)

// DefaultTopLimit is the leaderboard length of /top and /topcoin.
const DefaultTopLimit = 10

// RankingStore serves leaderboards.
type RankingStore interface {
	GetTop(ctx context.Context, by repository.RankBy, limit int) ([]*model.User, error)
}

// RankingService handles ranking and leaderboard operations.
type RankingService struct {
	store RankingStore
}

// NewRankingService creates a new RankingService instance.
func NewRankingService(store RankingStore) *RankingService {
	return &RankingService{store: store}
}

// TopByXP returns the users with the most total XP.
func (s *RankingService) TopByXP(ctx context.Context, limit int) ([]*model.User, error) {
	return s.store.GetTop(ctx, repository.RankByXP, clampLimit(limit))
}

// TopByCoins returns the richest users.
func (s *RankingService) TopByCoins(ctx context.Context, limit int) ([]*model.User, error) {
	return s.store.GetTop(ctx, repository.RankByCoins, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 50 {
		return DefaultTopLimit
	}
	return limit
}
