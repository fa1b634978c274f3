package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"telegram-economy-bot/internal/ledger"
	"telegram-economy-bot/internal/model"
)

// MemoryStore keeps users in process memory. It backs local runs with
// database.driver=memory and the game tests.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[int64]*model.User
	entries      []model.Transaction
	rewards      []model.Reward
	periods      PeriodFunc
	initialCoins int64

	// FailCommit, when set, is returned by the next Commit instead of writing.
	FailCommit error
}

var _ ledger.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store. New users start with initialCoins.
func NewMemoryStore(initialCoins int64) *MemoryStore {
	return &MemoryStore{
		users:        make(map[int64]*model.User),
		initialCoins: initialCoins,
	}
}

// WithPeriods makes every read roll the user's XP aggregates against fn.
func (s *MemoryStore) WithPeriods(fn PeriodFunc) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods = fn
	return s
}

// Put inserts or replaces a user.
func (s *MemoryStore) Put(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.TelegramID] = u.Clone()
}

// GetByID implements ledger.Store.
func (s *MemoryStore) GetByID(_ context.Context, telegramID int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[telegramID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return s.periods.roll(u.Clone()), nil
}

// GetByUsername implements ledger.Store.
func (s *MemoryStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if username != "" && strings.EqualFold(u.Username, username) {
			return s.periods.roll(u.Clone()), nil
		}
	}
	return nil, ErrUserNotFound
}

// GetOrCreate implements ledger.Store.
func (s *MemoryStore) GetOrCreate(_ context.Context, telegramID int64, username string) (*model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[telegramID]; ok {
		return s.periods.roll(u.Clone()), false, nil
	}
	now := time.Now()
	u := &model.User{
		TelegramID: telegramID,
		Username:   username,
		TopCoin:    s.initialCoins,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.periods.roll(u)
	s.users[telegramID] = u
	return u.Clone(), true, nil
}

// UpdateUsername records a changed username.
func (s *MemoryStore) UpdateUsername(_ context.Context, telegramID int64, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[telegramID]
	if !ok {
		return ErrUserNotFound
	}
	u.Username = username
	return nil
}

// Commit implements ledger.Store.
func (s *MemoryStore) Commit(_ context.Context, entries []model.Transaction, users ...*model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailCommit; err != nil {
		s.FailCommit = nil
		return err
	}
	for _, u := range users {
		if _, ok := s.users[u.TelegramID]; !ok {
			return fmt.Errorf("failed to save user %d: %w", u.TelegramID, ErrUserNotFound)
		}
	}
	now := time.Now()
	for _, u := range users {
		u.UpdatedAt = now
		saveBalance(s.users[u.TelegramID], u)
	}
	s.entries = append(s.entries, entries...)
	return nil
}

// Entries returns a copy of every committed audit entry.
func (s *MemoryStore) Entries() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Transaction, len(s.entries))
	copy(out, s.entries)
	return out
}

// GetTop returns the top users ordered by the given ranking.
func (s *MemoryStore) GetTop(_ context.Context, by RankBy, limit int) ([]*model.User, error) {
	s.mu.RLock()
	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, s.periods.roll(u.Clone()))
	}
	s.mu.RUnlock()

	score := func(u *model.User) int64 {
		if by == RankByCoins {
			return u.TopCoin
		}
		return u.TotalXP
	}
	sort.Slice(users, func(i, j int) bool {
		if score(users[i]) != score(users[j]) {
			return score(users[i]) > score(users[j])
		}
		return users[i].TelegramID < users[j].TelegramID
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// CreateReward records a reward.
func (s *MemoryStore) CreateReward(_ context.Context, reward model.Reward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewards = append(s.rewards, reward)
	return nil
}

// ListRewards returns a user's rewards, newest first.
func (s *MemoryStore) ListRewards(_ context.Context, userID int64, limit int) ([]model.Reward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Reward
	for i := len(s.rewards) - 1; i >= 0 && len(out) < limit; i-- {
		if s.rewards[i].UserID == userID {
			out = append(out, s.rewards[i])
		}
	}
	return out, nil
}

// saveBalance copies the columns Store.Commit writes. The username is
// owned by UpdateUsername and is left alone.
func saveBalance(dst, src *model.User) {
	dst.TopCoin = src.TopCoin
	dst.TotalXP = src.TotalXP
	dst.DayXP = src.DayXP
	dst.WeekXP = src.WeekXP
	dst.MonthXP = src.MonthXP
	dst.Periods = src.Periods
	dst.QuizDay = src.QuizDay
	dst.LastDailyAt = src.LastDailyAt
	dst.DailyStreak = src.DailyStreak
	dst.LastQuestAt = src.LastQuestAt
	dst.UpdatedAt = src.UpdatedAt
}
