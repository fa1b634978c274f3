package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-economy-bot/internal/model"
)

// RewardRepository stores shop purchases awaiting fulfilment.
type RewardRepository struct {
	pool *pgxpool.Pool
}

// NewRewardRepository creates a new RewardRepository instance.
func NewRewardRepository(pool *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{pool: pool}
}

// CreateReward records a reward.
func (r *RewardRepository) CreateReward(ctx context.Context, reward model.Reward) error {
	const query = `INSERT INTO rewards (id, user_id, type, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.pool.Exec(ctx, query, reward.ID, reward.UserID, reward.Type, reward.CreatedAt); err != nil {
		return fmt.Errorf("failed to create reward: %w", err)
	}
	return nil
}

// ListRewards returns a user's rewards, newest first.
func (r *RewardRepository) ListRewards(ctx context.Context, userID int64, limit int) ([]model.Reward, error) {
	const query = `SELECT id, user_id, type, created_at FROM rewards WHERE user_id = $1 ORDER BY id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		var rw model.Reward
		if err := rows.Scan(&rw.ID, &rw.UserID, &rw.Type, &rw.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, rw)
	}
	return rewards, rows.Err()
}
