package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/model"
	"telegram-economy-bot/internal/pkg/lock"
	"telegram-economy-bot/internal/repository"
)

func TestIdentityResolve(t *testing.T) {
	store := repository.NewMemoryStore(0)
	store.Put(&model.User{TelegramID: 11, Username: "alice"})
	store.Put(&model.User{TelegramID: 12, Username: "1234"})
	svc := NewIdentityService(store)

	tests := []struct {
		arg    string
		wantID int64
		err    error
	}{
		{"11", 11, nil},
		{"@alice", 11, nil},
		{"ALICE", 11, nil},
		{" @alice ", 11, nil},
		{"@1234", 12, nil},
		{"99", 0, game.ErrNotFound},
		{"@bob", 0, game.ErrNotFound},
		{"", 0, game.ErrInvalidArgument},
		{"@", 0, game.ErrInvalidArgument},
	}
	for _, tt := range tests {
		u, err := svc.Resolve(context.Background(), tt.arg)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, "arg %q", tt.arg)
			continue
		}
		require.NoError(t, err, "arg %q", tt.arg)
		assert.Equal(t, tt.wantID, u.TelegramID, "arg %q", tt.arg)
	}
}

func TestRankingOrders(t *testing.T) {
	store := repository.NewMemoryStore(0)
	store.Put(&model.User{TelegramID: 1, TopCoin: 10, TotalXP: 300})
	store.Put(&model.User{TelegramID: 2, TopCoin: 900, TotalXP: 5})
	store.Put(&model.User{TelegramID: 3, TopCoin: 50, TotalXP: 300})
	svc := NewRankingService(store)

	byXP, err := svc.TopByXP(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 2}, ids(byXP))

	byCoins, err := svc.TopByCoins(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(byCoins))
}

func ids(users []*model.User) []int64 {
	out := make([]int64, len(users))
	for i, u := range users {
		out[i] = u.TelegramID
	}
	return out
}

func TestAdminGrants(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore(0)
	store.Put(&model.User{TelegramID: 2, TopCoin: 5})
	svc := NewAdminService(store, lock.NewUserLock())

	u, err := svc.AddCoins(ctx, 1, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(105), u.TopCoin)

	u, err = svc.AddXP(ctx, 1, 2, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(40), u.TotalXP)
	assert.Equal(t, int64(40), u.DayXP)

	_, err = svc.AddCoins(ctx, 1, 2, -3)
	assert.ErrorIs(t, err, game.ErrInvalidArgument)
	_, err = svc.AddXP(ctx, 1, 3, 10)
	assert.ErrorIs(t, err, game.ErrNotFound)

	entries := store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, model.TxTypeAdminAdd, entries[1].Type)
}
