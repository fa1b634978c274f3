package duel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/game/outcome"
	"telegram-economy-bot/internal/model"
	"telegram-economy-bot/internal/pkg/lock"
	"telegram-economy-bot/internal/repository"
	"telegram-economy-bot/internal/session"
	"telegram-economy-bot/internal/session/sessiontest"
)

type notice struct {
	chatID int64
	text   string
}

type recorder struct {
	mu      sync.Mutex
	notices []notice
}

func (r *recorder) Notify(chatID int64, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{chatID, text})
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

const chatID = -1001

func setup(coinsA, coinsB int64) (*Resolver, *repository.MemoryStore, *recorder, *sessiontest.Scheduler) {
	store := repository.NewMemoryStore(0)
	store.Put(&model.User{TelegramID: 1, Username: "alice", TopCoin: coinsA})
	store.Put(&model.User{TelegramID: 2, Username: "bob", TopCoin: coinsB})
	rec := &recorder{}
	sched := sessiontest.NewScheduler()
	r := New(store, lock.NewUserLock(), rec, Config{Timeout: time.Minute}, session.WithScheduler(sched))
	return r, store, rec, sched
}

func coins(t require.TestingT, store *repository.MemoryStore, id int64) int64 {
	u, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u.TopCoin
}

func TestDuelChallengerWins(t *testing.T) {
	ctx := context.Background()
	r, store, _, _ := setup(100, 100)

	_, err := r.Propose(ctx, chatID, 1, 2, 50)
	require.NoError(t, err)

	res, err := r.SubmitMove(ctx, 1, outcome.Attack)
	require.NoError(t, err)
	assert.Nil(t, res.Result)

	res, err = r.SubmitMove(ctx, 2, outcome.Dodge)
	require.NoError(t, err)
	require.NotNil(t, res.Result)
	assert.Equal(t, outcome.FirstWins, res.Result.Verdict)
	assert.Equal(t, int64(50), res.Result.Amount)

	assert.Equal(t, int64(150), coins(t, store, 1))
	assert.Equal(t, int64(50), coins(t, store, 2))
	assert.Zero(t, r.Live())
	assert.Len(t, store.Entries(), 2)

	_, err = r.SubmitMove(ctx, 1, outcome.Shield)
	assert.ErrorIs(t, err, game.ErrNoActiveSession)
}

func TestDuelDrawChangesNothing(t *testing.T) {
	ctx := context.Background()
	r, store, _, _ := setup(100, 100)

	_, err := r.Propose(ctx, chatID, 1, 2, 30)
	require.NoError(t, err)
	_, err = r.SubmitMove(ctx, 2, outcome.Shield)
	require.NoError(t, err)
	res, err := r.SubmitMove(ctx, 1, outcome.Shield)
	require.NoError(t, err)

	require.NotNil(t, res.Result)
	assert.Equal(t, outcome.Draw, res.Result.Verdict)
	assert.Nil(t, res.Result.Winner)
	assert.Equal(t, int64(100), coins(t, store, 1))
	assert.Equal(t, int64(100), coins(t, store, 2))
	assert.Empty(t, store.Entries())
}

func TestProposeValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		from    int64
		to      int64
		wager   int64
		coinsB  int64
		wantErr error
	}{
		{"zero wager", 1, 2, 0, 100, game.ErrInvalidArgument},
		{"negative wager", 1, 2, -5, 100, game.ErrInvalidArgument},
		{"self duel", 1, 1, 10, 100, game.ErrInvalidArgument},
		{"unknown target", 1, 99, 10, 100, game.ErrNotFound},
		{"challenger too poor", 1, 2, 500, 1000, game.ErrInsufficientFunds},
		{"target too poor", 1, 2, 50, 10, game.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _, _ := setup(100, tt.coinsB)
			_, err := r.Propose(ctx, chatID, tt.from, tt.to, tt.wager)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, r.Live())
		})
	}
}

func TestProposeFundsErrorNamesUser(t *testing.T) {
	r, _, _, _ := setup(100, 10)
	_, err := r.Propose(context.Background(), chatID, 1, 2, 50)

	var fe *FundsError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, int64(2), fe.User.TelegramID)
}

func TestProposeOnePerPair(t *testing.T) {
	ctx := context.Background()
	r, _, _, _ := setup(100, 100)

	first, err := r.Propose(ctx, chatID, 1, 2, 10)
	require.NoError(t, err)

	_, err = r.Propose(ctx, chatID, 2, 1, 20)
	assert.ErrorIs(t, err, game.ErrAlreadyActive)

	_, err = r.SubmitMove(ctx, 1, outcome.Attack)
	require.NoError(t, err)
	_, err = r.SubmitMove(ctx, 1, outcome.Dodge)
	assert.ErrorIs(t, err, game.ErrAlreadyMoved)

	e, ok := r.sessions.Get(PairKey(1, 2))
	require.True(t, ok)
	assert.Equal(t, first.ID, e.ID)
	assert.Equal(t, int64(10), e.Session.Wager)
	assert.Equal(t, outcome.Attack, e.Session.ChallengerMove)
}

func TestSubmitMoveWithoutDuel(t *testing.T) {
	r, _, _, _ := setup(100, 100)
	_, err := r.SubmitMove(context.Background(), 1, outcome.Attack)
	assert.ErrorIs(t, err, game.ErrNoActiveSession)

	_, err = r.SubmitMove(context.Background(), 1, outcome.Move("kick"))
	assert.ErrorIs(t, err, game.ErrInvalidArgument)
}

func TestStaleDuelSettlesNothing(t *testing.T) {
	ctx := context.Background()
	r, store, _, _ := setup(100, 100)

	_, err := r.Propose(ctx, chatID, 1, 2, 80)
	require.NoError(t, err)

	// Bob spends coins elsewhere before the duel finishes.
	store.Put(&model.User{TelegramID: 2, Username: "bob", TopCoin: 20})

	_, err = r.SubmitMove(ctx, 1, outcome.Attack)
	require.NoError(t, err)
	_, err = r.SubmitMove(ctx, 2, outcome.Dodge)
	assert.ErrorIs(t, err, game.ErrStaleSession)

	assert.Equal(t, int64(100), coins(t, store, 1))
	assert.Equal(t, int64(20), coins(t, store, 2))
	assert.Zero(t, r.Live())
}

func TestDuelExpiry(t *testing.T) {
	ctx := context.Background()
	r, store, rec, sched := setup(100, 100)

	_, err := r.Propose(ctx, chatID, 1, 2, 10)
	require.NoError(t, err)
	_, err = r.SubmitMove(ctx, 1, outcome.Attack)
	require.NoError(t, err)

	assert.Equal(t, 1, sched.FireAll(false))
	require.Equal(t, 1, rec.count())
	assert.Equal(t, int64(chatID), rec.notices[0].chatID)
	assert.Zero(t, r.Live())

	_, err = r.SubmitMove(ctx, 2, outcome.Dodge)
	assert.ErrorIs(t, err, game.ErrNoActiveSession)
	assert.Equal(t, int64(100), coins(t, store, 1))
	assert.Equal(t, int64(100), coins(t, store, 2))
}

func TestExpiryAfterSettlementIsNoop(t *testing.T) {
	ctx := context.Background()
	r, _, rec, sched := setup(100, 100)

	_, err := r.Propose(ctx, chatID, 1, 2, 10)
	require.NoError(t, err)
	_, err = r.SubmitMove(ctx, 1, outcome.Attack)
	require.NoError(t, err)
	_, err = r.SubmitMove(ctx, 2, outcome.Shield)
	require.NoError(t, err)

	sched.FireAll(true)
	assert.Zero(t, rec.count())
}

func TestZeroTimeoutSchedulesNothing(t *testing.T) {
	store := repository.NewMemoryStore(0)
	store.Put(&model.User{TelegramID: 1, TopCoin: 10})
	store.Put(&model.User{TelegramID: 2, TopCoin: 10})
	sched := sessiontest.NewScheduler()
	r := New(store, lock.NewUserLock(), nil, Config{}, session.WithScheduler(sched))

	_, err := r.Propose(context.Background(), chatID, 1, 2, 5)
	require.NoError(t, err)
	assert.Zero(t, sched.Pending())
}

func TestConcurrentMovesSettleOnce(t *testing.T) {
	ctx := context.Background()
	r, store, _, _ := setup(100, 100)

	_, err := r.Propose(ctx, chatID, 1, 2, 40)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		settled int
	)
	for id, m := range map[int64]outcome.Move{1: outcome.Shield, 2: outcome.Attack} {
		wg.Add(1)
		go func(id int64, m outcome.Move) {
			defer wg.Done()
			res, err := r.SubmitMove(ctx, id, m)
			assert.NoError(t, err)
			if res.Result != nil {
				mu.Lock()
				settled++
				mu.Unlock()
			}
		}(id, m)
	}
	wg.Wait()

	assert.Equal(t, 1, settled)
	assert.Equal(t, int64(140), coins(t, store, 1))
	assert.Equal(t, int64(60), coins(t, store, 2))
}

func TestDuelConservesCoins(t *testing.T) {
	moves := []outcome.Move{outcome.Attack, outcome.Shield, outcome.Dodge}

	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		wager := rapid.Int64Range(1, 1000).Draw(t, "wager")
		a := rapid.Int64Range(wager, 5000).Draw(t, "coinsA")
		b := rapid.Int64Range(wager, 5000).Draw(t, "coinsB")
		ma := rapid.SampledFrom(moves).Draw(t, "moveA")
		mb := rapid.SampledFrom(moves).Draw(t, "moveB")

		r, store, _, _ := setup(a, b)
		_, err := r.Propose(ctx, chatID, 1, 2, wager)
		require.NoError(t, err)
		_, err = r.SubmitMove(ctx, 1, ma)
		require.NoError(t, err)
		res, err := r.SubmitMove(ctx, 2, mb)
		require.NoError(t, err)
		require.NotNil(t, res.Result)

		gotA, gotB := coins(t, store, 1), coins(t, store, 2)
		if gotA+gotB != a+b {
			t.Fatalf("coins not conserved: %d+%d != %d+%d", gotA, gotB, a, b)
		}
		switch outcome.Fight(ma, mb) {
		case outcome.Draw:
			if gotA != a || gotB != b {
				t.Fatalf("draw moved coins")
			}
		case outcome.FirstWins:
			if gotA != a+wager {
				t.Fatalf("challenger got %d, want %d", gotA, a+wager)
			}
		case outcome.SecondWins:
			if gotB != b+wager {
				t.Fatalf("target got %d, want %d", gotB, b+wager)
			}
		}
	})
}
