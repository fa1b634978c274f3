package wager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"telegram-economy-bot/internal/cooldown"
	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/game/outcome"
	"telegram-economy-bot/internal/game/outcome/outcometest"
	"telegram-economy-bot/internal/model"
	"telegram-economy-bot/internal/pkg/lock"
	"telegram-economy-bot/internal/repository"
	"telegram-economy-bot/internal/session"
	"telegram-economy-bot/internal/session/sessiontest"
)

var start = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	runner *Runner
	store  *repository.MemoryStore
	script *outcometest.Script
	sched  *sessiontest.Scheduler
	now    time.Time
}

func newFixture(users ...*model.User) *fixture {
	f := &fixture{
		store:  repository.NewMemoryStore(0),
		script: &outcometest.Script{},
		sched:  sessiontest.NewScheduler(),
		now:    start,
	}
	for _, u := range users {
		f.store.Put(u)
	}
	cfg := DefaultConfig()
	cfg.Clock = func() time.Time { return f.now }
	f.runner = New(f.store, lock.NewUserLock(), f.script, cooldown.NewMemoryGuard(time.Hour), cfg,
		session.WithScheduler(f.sched))
	return f
}

func (f *fixture) user(t require.TestingT, id int64) *model.User {
	u, err := f.store.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func TestRoll(t *testing.T) {
	tests := []struct {
		name      string
		ints      []int
		wantCoins int64
		wantDelta int64
		wantDraw  bool
	}{
		{"player higher", []int{79, 19}, 130, 30, false},
		{"house higher", []int{4, 90}, 70, -30, false},
		{"tie", []int{41, 41}, 100, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(&model.User{TelegramID: 1, TopCoin: 100})
			f.script.Ints = tt.ints

			o, err := f.runner.Roll(context.Background(), 1, 30)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDelta, o.CoinDelta)
			assert.Equal(t, tt.wantDraw, o.Draw)
			assert.Equal(t, tt.wantCoins, f.user(t, 1).TopCoin)

			if tt.wantDraw {
				assert.Empty(t, f.store.Entries())
			} else {
				require.Len(t, f.store.Entries(), 1)
				assert.Equal(t, model.TxTypeRoll, f.store.Entries()[0].Type)
			}
		})
	}
}

func TestRejectsBadWagers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&model.User{TelegramID: 1, TopCoin: 20})

	_, err := f.runner.Roll(ctx, 1, 0)
	assert.ErrorIs(t, err, game.ErrInvalidArgument)

	_, err = f.runner.Race(ctx, 1, 21)
	assert.ErrorIs(t, err, game.ErrInsufficientFunds)

	_, err = f.runner.Hunt(ctx, 99, 5)
	assert.ErrorIs(t, err, game.ErrNotFound)

	assert.Equal(t, int64(20), f.user(t, 1).TopCoin)
	assert.Empty(t, f.store.Entries())
}

func TestRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&model.User{TelegramID: 1, TopCoin: 100})

	f.script.Ints = []int{4}
	f.script.Floats = []float64{0.2}
	o, err := f.runner.Race(ctx, 1, 40)
	require.NoError(t, err)
	assert.True(t, o.Won)
	assert.Equal(t, "🐌 Ốc sên", o.Label)
	assert.Equal(t, int64(140), f.user(t, 1).TopCoin)

	f.script.Ints = []int{0}
	f.script.Floats = []float64{0.5}
	o, err = f.runner.Race(ctx, 1, 140)
	require.NoError(t, err)
	assert.False(t, o.Won)
	assert.Zero(t, f.user(t, 1).TopCoin)
}

func TestHuntMovesXPOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&model.User{TelegramID: 1, TopCoin: 50, TotalXP: 3, DayXP: 3, WeekXP: 3, MonthXP: 3})

	f.script.Ints = []int{1}
	f.script.Floats = []float64{0.9}
	o, err := f.runner.Hunt(ctx, 1, 11)
	require.NoError(t, err)
	assert.False(t, o.Won)
	// floor(11 × 0.5) = 5, clamped to the 3 XP held.
	assert.Equal(t, int64(-3), o.XPDelta)
	u := f.user(t, 1)
	assert.Zero(t, u.TotalXP)
	assert.Zero(t, u.DayXP)
	assert.Equal(t, int64(50), u.TopCoin)

	f.script.Ints = []int{2}
	f.script.Floats = []float64{0.1}
	o, err = f.runner.Hunt(ctx, 1, 11)
	require.NoError(t, err)
	assert.True(t, o.Won)
	assert.Equal(t, int64(16), o.XPDelta)
	u = f.user(t, 1)
	assert.Equal(t, int64(16), u.TotalXP)
	assert.Equal(t, int64(16), u.MonthXP)
	assert.Equal(t, int64(50), u.TopCoin)
}

func TestStealSuccessCapsAtTargetBalance(t *testing.T) {
	f := newFixture(
		&model.User{TelegramID: 1, Username: "thief", TopCoin: 10},
		&model.User{TelegramID: 2, Username: "victim", TopCoin: 25},
	)
	f.script.Floats = []float64{0.1}

	o, err := f.runner.Steal(context.Background(), 1, 2, 40)
	require.NoError(t, err)
	assert.True(t, o.Success)
	assert.Equal(t, int64(25), o.Amount)
	assert.Equal(t, int64(35), f.user(t, 1).TopCoin)
	assert.Zero(t, f.user(t, 2).TopCoin)

	entries := f.store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, model.TxTypeSteal, entries[0].Type)
	assert.Equal(t, model.TxTypeStolen, entries[1].Type)
	assert.Zero(t, entries[0].Coins+entries[1].Coins)
}

func TestStealFailurePenalizesThief(t *testing.T) {
	f := newFixture(
		&model.User{TelegramID: 1, TopCoin: 7},
		&model.User{TelegramID: 2, TopCoin: 100},
	)
	f.script.Floats = []float64{0.95}

	o, err := f.runner.Steal(context.Background(), 1, 2, 30)
	require.NoError(t, err)
	assert.False(t, o.Success)
	assert.Equal(t, int64(7), o.Amount)
	assert.Zero(t, f.user(t, 1).TopCoin)
	assert.Equal(t, int64(100), f.user(t, 2).TopCoin)
}

func TestStealCooldown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(
		&model.User{TelegramID: 1, TopCoin: 100},
		&model.User{TelegramID: 2, TopCoin: 100},
	)
	f.script.Floats = []float64{0.1}

	wait, err := f.runner.StealCooldown(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, wait)

	_, err = f.runner.Steal(ctx, 1, 2, 10)
	require.NoError(t, err)
	thief, target := f.user(t, 1).TopCoin, f.user(t, 2).TopCoin

	f.now = start.Add(20 * time.Minute)
	wait, err = f.runner.StealCooldown(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 40*time.Minute, wait)
	_, err = f.runner.Steal(ctx, 1, 2, 10)
	require.ErrorIs(t, err, game.ErrRateLimited)

	var rl *game.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 40*time.Minute, rl.Remaining)
	assert.Equal(t, int64(40), rl.RemainingMinutes())

	assert.Equal(t, thief, f.user(t, 1).TopCoin)
	assert.Equal(t, target, f.user(t, 2).TopCoin)
	assert.Len(t, f.store.Entries(), 2)

	f.now = start.Add(time.Hour)
	f.script.Floats = []float64{0.1}
	_, err = f.runner.Steal(ctx, 1, 2, 10)
	assert.NoError(t, err)
}

func TestStealValidation(t *testing.T) {
	tests := []struct {
		name   string
		thief  int64
		target int64
		amount int64
		want   error
	}{
		{"self", 1, 1, 10, game.ErrInvalidArgument},
		{"zero amount", 1, 2, 0, game.ErrInvalidArgument},
		{"unknown target", 1, 9, 10, game.ErrNotFound},
		{"broke thief", 3, 2, 10, ErrThiefBroke},
		{"broke target", 1, 3, 10, ErrTargetBroke},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(
				&model.User{TelegramID: 1, TopCoin: 50},
				&model.User{TelegramID: 2, TopCoin: 50},
				&model.User{TelegramID: 3},
			)
			_, err := f.runner.Steal(context.Background(), tt.thief, tt.target, tt.amount)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.store.Entries())
		})
	}
}

func TestBrokeErrorsAreInsufficientFunds(t *testing.T) {
	assert.ErrorIs(t, ErrThiefBroke, game.ErrInsufficientFunds)
	assert.ErrorIs(t, ErrTargetBroke, game.ErrInsufficientFunds)
}

func TestTaiXiuLowWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&model.User{TelegramID: 1, TopCoin: 100})

	entry, err := f.runner.ProposeTaiXiu(ctx, -1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Minute}, f.sched.Delays())
	// Nothing moves until the side is picked.
	assert.Equal(t, int64(100), f.user(t, 1).TopCoin)

	f.script.Ints = outcometest.Dice(3, 4, 2)
	o, err := f.runner.ChooseTaiXiu(ctx, 1, entry.ID, "xiu")
	require.NoError(t, err)
	assert.True(t, o.Won)
	assert.Equal(t, 9, o.Dice.Sum)
	assert.Equal(t, int64(18), o.CoinDelta)
	assert.Equal(t, int64(118), f.user(t, 1).TopCoin)
	assert.Zero(t, f.runner.Live())
	assert.Zero(t, f.sched.Pending())

	require.Len(t, f.store.Entries(), 1)
	assert.Equal(t, int64(18), f.store.Entries()[0].Coins)
}

func TestTaiXiuLossDebitsWager(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&model.User{TelegramID: 1, TopCoin: 100})

	entry, err := f.runner.ProposeTaiXiu(ctx, -1, 1, 30)
	require.NoError(t, err)

	f.script.Ints = outcometest.Dice(6, 6, 1)
	o, err := f.runner.ChooseTaiXiu(ctx, 1, entry.ID, "chan")
	require.NoError(t, err)
	assert.False(t, o.Won)
	assert.Equal(t, outcome.Le, o.Dice.ParityCategory())
	assert.Equal(t, int64(70), f.user(t, 1).TopCoin)
}

func TestTaiXiuChoiceErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&model.User{TelegramID: 1, TopCoin: 100})

	entry, err := f.runner.ProposeTaiXiu(ctx, -1, 1, 30)
	require.NoError(t, err)

	_, err = f.runner.ProposeTaiXiu(ctx, -1, 1, 10)
	assert.ErrorIs(t, err, game.ErrAlreadyActive)

	_, err = f.runner.ChooseTaiXiu(ctx, 1, entry.ID, "triple")
	assert.ErrorIs(t, err, game.ErrInvalidArgument)
	assert.Equal(t, 1, f.runner.Live())

	_, err = f.runner.ChooseTaiXiu(ctx, 1, "other-id", "tai")
	assert.ErrorIs(t, err, game.ErrNoActiveSession)

	_, err = f.runner.ChooseTaiXiu(ctx, 2, entry.ID, "tai")
	assert.ErrorIs(t, err, game.ErrNoActiveSession)
	assert.Equal(t, 1, f.runner.Live())
}

func TestTaiXiuRecheckDiscardsUnaffordableBet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&model.User{TelegramID: 1, TopCoin: 100})

	entry, err := f.runner.ProposeTaiXiu(ctx, -1, 1, 60)
	require.NoError(t, err)
	f.store.Put(&model.User{TelegramID: 1, TopCoin: 20})

	_, err = f.runner.ChooseTaiXiu(ctx, 1, entry.ID, "tai")
	assert.ErrorIs(t, err, game.ErrInsufficientFunds)
	assert.Zero(t, f.runner.Live())
	assert.Equal(t, int64(20), f.user(t, 1).TopCoin)
}

func TestTaiXiuExpires(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&model.User{TelegramID: 1, TopCoin: 100})

	entry, err := f.runner.ProposeTaiXiu(ctx, -1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, f.sched.FireAll(false))
	assert.Zero(t, f.runner.Live())

	_, err = f.runner.ChooseTaiXiu(ctx, 1, entry.ID, "tai")
	assert.ErrorIs(t, err, game.ErrNoActiveSession)
	assert.Equal(t, int64(100), f.user(t, 1).TopCoin)
}

func TestCommitFailureLeavesBalance(t *testing.T) {
	f := newFixture(&model.User{TelegramID: 1, TopCoin: 100})
	f.store.FailCommit = errors.New("connection reset")
	f.script.Ints = []int{99, 0}

	_, err := f.runner.Roll(context.Background(), 1, 50)
	require.Error(t, err)
	assert.False(t, game.IsUserError(err))
	assert.Equal(t, int64(100), f.user(t, 1).TopCoin)
}

func TestCallbackRoundTrip(t *testing.T) {
	for _, c := range outcome.Categories() {
		id, choice, ok := DecodeCallback(EncodeCallback("01HXYZ", c))
		require.True(t, ok)
		assert.Equal(t, "01HXYZ", id)
		assert.Equal(t, string(c), choice)
	}

	for _, data := range []string{"", "taixiu_", "taixiu_abc", "shop_refresh", "taixiu__tai"} {
		_, _, ok := DecodeCallback(data)
		assert.False(t, ok, data)
	}
}

func TestBuildKeyboard(t *testing.T) {
	kb := BuildKeyboard("01HXYZ")
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "Tài (11–17)", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "Xỉu (4–10)", kb.InlineKeyboard[0][1].Text)
	assert.Equal(t, "taixiu_01HXYZ_le", kb.InlineKeyboard[1][1].Data)
}

func TestBalancesNeverGoNegativeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		store := repository.NewMemoryStore(0)
		store.Put(&model.User{TelegramID: 1, TopCoin: rapid.Int64Range(0, 500).Draw(t, "coins1")})
		store.Put(&model.User{TelegramID: 2, TopCoin: rapid.Int64Range(0, 500).Draw(t, "coins2"),
			TotalXP: rapid.Int64Range(0, 50).Draw(t, "xp2")})

		now := start
		cfg := DefaultConfig()
		cfg.Clock = func() time.Time { return now }
		r := New(store, lock.NewUserLock(), outcome.NewSource(rapid.Int64().Draw(t, "seed")),
			cooldown.NewMemoryGuard(time.Hour), cfg, session.WithScheduler(sessiontest.NewScheduler()))

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			user := rapid.Int64Range(1, 2).Draw(t, "user")
			amount := rapid.Int64Range(1, 200).Draw(t, "amount")
			var err error
			switch rapid.IntRange(0, 4).Draw(t, "game") {
			case 0:
				_, err = r.Roll(ctx, user, amount)
			case 1:
				_, err = r.Race(ctx, user, amount)
			case 2:
				_, err = r.Hunt(ctx, user, amount)
			case 3:
				now = now.Add(time.Hour)
				_, err = r.Steal(ctx, user, 3-user, amount)
			default:
				var e session.Entry[TaiXiu]
				e, err = r.ProposeTaiXiu(ctx, -1, user, amount)
				if err == nil {
					_, err = r.ChooseTaiXiu(ctx, user, e.ID, string(rapid.SampledFrom(outcome.Categories()).Draw(t, "choice")))
				}
			}
			if err != nil && !game.IsUserError(err) {
				t.Fatalf("unexpected error: %v", err)
			}

			for id := int64(1); id <= 2; id++ {
				u, err := store.GetByID(ctx, id)
				require.NoError(t, err)
				if u.TopCoin < 0 || u.TotalXP < 0 || u.DayXP < 0 {
					t.Fatalf("user %d went negative: %+v", id, u)
				}
			}
		}
	})
}
