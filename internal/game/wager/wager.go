// Package wager implements the betting games: the instant roll, race, hunt
// and steal, and the two-step tai-xiu where the bet is placed first and the
// side is picked from an inline keyboard.
package wager

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"telegram-economy-bot/internal/cooldown"
	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/game/outcome"
	"telegram-economy-bot/internal/ledger"
	"telegram-economy-bot/internal/metrics"
	"telegram-economy-bot/internal/model"
	"telegram-economy-bot/internal/pkg/lock"
	"telegram-economy-bot/internal/session"
)

// Game catalog entries.
var (
	RollInfo = game.Info{
		GameName:    "Tung số",
		GameCommand: "roll",
		GameUsage:   "<coin>",
		GameDesc:    "Bạn và bot tung số 1–100, số lớn hơn thắng",
	}
	RaceInfo = game.Info{
		GameName:    "Đua xe",
		GameCommand: "race",
		GameUsage:   "<coin>",
		GameDesc:    "Đua xe ăn cược, thắng thì nhận gấp đôi",
	}
	HuntInfo = game.Info{
		GameName:    "Săn quái",
		GameCommand: "hunt",
		GameUsage:   "<coin>",
		GameDesc:    "Săn quái để nhận XP, thua thì mất XP",
	}
	StealInfo = game.Info{
		GameName:    "Trộm coin",
		GameCommand: "steal",
		GameUsage:   "<@username|id> <coin>",
		GameDesc:    "Trộm coin của người khác, mỗi giờ một lần",
	}
	TaiXiuInfo = game.Info{
		GameName:    "Tài xỉu",
		GameCommand: "taixiu",
		GameUsage:   "<coin>",
		GameDesc:    "Đặt cược rồi chọn Tài, Xỉu, Chẵn hoặc Lẻ",
	}
)

var (
	vehicles = []string{"🚗 Xe đỏ", "🏎️ Siêu xe", "🚓 Cảnh sát", "🛵 Xe máy", "🐌 Ốc sên"}
	monsters = []string{"🐺 Sói hoang", "🐉 Rồng mini", "🧟 Thây ma lang thang", "🦇 Dơi đêm", "👹 Quỷ lùn"}
)

// Steal failures that callers tell apart. Both match game.ErrInsufficientFunds.
var (
	ErrThiefBroke  = fmt.Errorf("thief has no coins: %w", game.ErrInsufficientFunds)
	ErrTargetBroke = fmt.Errorf("target has no coins: %w", game.ErrInsufficientFunds)
)

// Config holds the odds and payouts of the betting games.
type Config struct {
	RaceWinChance      float64
	HuntWinChance      float64
	HuntWinMultiplier  decimal.Decimal
	HuntLossMultiplier decimal.Decimal
	StealSuccessChance float64
	TaiXiuMultiplier   decimal.Decimal
	// TaiXiuTimeout drops a bet whose side was never picked. Zero keeps it.
	TaiXiuTimeout time.Duration
	Clock         func() time.Time
}

// DefaultConfig returns the stock odds.
func DefaultConfig() Config {
	return Config{
		RaceWinChance:      0.5,
		HuntWinChance:      0.6,
		HuntWinMultiplier:  decimal.RequireFromString("1.5"),
		HuntLossMultiplier: decimal.RequireFromString("0.5"),
		StealSuccessChance: 0.3,
		TaiXiuMultiplier:   decimal.RequireFromString("1.8"),
		TaiXiuTimeout:      2 * time.Minute,
	}
}

// Outcome is the result of one bet.
type Outcome struct {
	Game  string
	Wager int64
	Won   bool
	Draw  bool
	// CoinDelta and XPDelta are the signed balance changes actually applied.
	CoinDelta int64
	XPDelta   int64

	UserRoll  int
	HouseRoll int
	Label     string
	Dice      outcome.DiceRoll
	Choice    outcome.Category

	User *model.User
}

// StealOutcome is the result of a steal attempt.
type StealOutcome struct {
	Success bool
	Amount  int64
	Thief   *model.User
	Target  *model.User
}

// TaiXiu is a bet waiting for its side.
type TaiXiu struct {
	OwnerID int64
	Wager   int64
	ChatID  int64
}

// Runner plays the betting games.
type Runner struct {
	store  ledger.Store
	locks  *lock.UserLock
	src    outcome.Source
	steal  cooldown.Guard
	taixiu *session.Store[int64, TaiXiu]
	cfg    Config
}

// New creates a Runner. stealGuard rate limits Steal. opts configure the
// tai-xiu session store.
func New(store ledger.Store, locks *lock.UserLock, src outcome.Source, stealGuard cooldown.Guard, cfg Config, opts ...session.Option) *Runner {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Runner{
		store:  store,
		locks:  locks,
		src:    src,
		steal:  stealGuard,
		taixiu: session.NewStore[int64, TaiXiu]("taixiu", opts...),
		cfg:    cfg,
	}
}

// StealCooldown returns how long userID must wait before the next steal.
func (r *Runner) StealCooldown(ctx context.Context, userID int64) (time.Duration, error) {
	return r.steal.Remaining(ctx, userID, r.cfg.Clock())
}

// Live returns the number of pending tai-xiu bets.
func (r *Runner) Live() int {
	return r.taixiu.Len()
}

// Close drops every pending tai-xiu bet.
func (r *Runner) Close() {
	r.taixiu.Close()
}

// play runs the shared shape of an instant game: validate, draw, apply and
// commit, all under the player's lock.
func (r *Runner) play(ctx context.Context, userID, wager int64, gameName, txType string, draw func(u *model.User, o *Outcome)) (*Outcome, error) {
	if wager <= 0 {
		return nil, fmt.Errorf("wager must be positive: %w", game.ErrInvalidArgument)
	}

	o := &Outcome{Game: gameName, Wager: wager}
	err := r.locks.WithLock(ctx, userID, func() error {
		user, err := r.store.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !ledger.CanAfford(user, wager) {
			return fmt.Errorf("%s: %w", gameName, game.ErrInsufficientFunds)
		}

		draw(user, o)
		o.User = user
		if o.CoinDelta == 0 && o.XPDelta == 0 {
			return nil
		}
		entry := ledger.Entry(userID, o.CoinDelta, o.XPDelta, txType, gameName)
		return r.store.Commit(ctx, []model.Transaction{entry}, user)
	})
	if err != nil {
		return nil, r.failed(gameName, userID, err)
	}

	metrics.Settled(gameName)
	log.Info().
		Str("game", gameName).
		Int64("user_id", userID).
		Int64("wager", wager).
		Bool("won", o.Won).
		Int64("coin_delta", o.CoinDelta).
		Int64("xp_delta", o.XPDelta).
		Msg("Bet settled")
	return o, nil
}

// failed logs store failures; rule violations go back to the caller quietly.
func (r *Runner) failed(gameName string, userID int64, err error) error {
	if game.IsUserError(err) {
		return err
	}
	metrics.SettleFailed(gameName)
	log.Error().Err(err).Str("game", gameName).Int64("user_id", userID).Msg("Failed to settle bet")
	return err
}

// Roll pits a 1..100 draw against the house. Ties change nothing.
func (r *Runner) Roll(ctx context.Context, userID, wager int64) (*Outcome, error) {
	return r.play(ctx, userID, wager, "roll", model.TxTypeRoll, func(u *model.User, o *Outcome) {
		o.UserRoll = outcome.RollDie(r.src, 100)
		o.HouseRoll = outcome.RollDie(r.src, 100)
		switch {
		case o.UserRoll > o.HouseRoll:
			o.Won = true
			o.CoinDelta = ledger.CreditCoins(u, wager)
		case o.UserRoll < o.HouseRoll:
			o.CoinDelta = -ledger.DebitCoins(u, wager)
		default:
			o.Draw = true
		}
	})
}

// Race wins or loses the wager on a fair coin.
func (r *Runner) Race(ctx context.Context, userID, wager int64) (*Outcome, error) {
	return r.play(ctx, userID, wager, "race", model.TxTypeRace, func(u *model.User, o *Outcome) {
		o.Label = outcome.Pick(r.src, vehicles)
		o.Won = outcome.Bernoulli(r.src, r.cfg.RaceWinChance)
		if o.Won {
			o.CoinDelta = ledger.CreditCoins(u, wager)
		} else {
			o.CoinDelta = -ledger.DebitCoins(u, wager)
		}
	})
}

// Hunt bets coins for XP. Coins never change.
func (r *Runner) Hunt(ctx context.Context, userID, wager int64) (*Outcome, error) {
	return r.play(ctx, userID, wager, "hunt", model.TxTypeHunt, func(u *model.User, o *Outcome) {
		o.Label = outcome.Pick(r.src, monsters)
		o.Won = outcome.Bernoulli(r.src, r.cfg.HuntWinChance)
		if o.Won {
			o.XPDelta = ledger.CreditXP(u, scale(wager, r.cfg.HuntWinMultiplier))
		} else {
			o.XPDelta = -ledger.DebitXP(u, scale(wager, r.cfg.HuntLossMultiplier))
		}
	})
}

// Steal tries to take amount coins from targetID. The cooldown is stamped
// before balances are looked at, so any attempt that reaches the balance
// checks uses up the window.
func (r *Runner) Steal(ctx context.Context, thiefID, targetID, amount int64) (*StealOutcome, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", game.ErrInvalidArgument)
	}
	if thiefID == targetID {
		return nil, fmt.Errorf("cannot steal from yourself: %w", game.ErrInvalidArgument)
	}
	if _, err := r.store.GetByID(ctx, targetID); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	cd, err := r.steal.CheckAndStamp(ctx, thiefID, r.cfg.Clock())
	if err != nil {
		return nil, r.failed("steal", thiefID, err)
	}
	if !cd.Allowed {
		metrics.CooldownRejections.Add(1)
		return nil, &game.RateLimitError{Remaining: cd.Remaining}
	}

	res := &StealOutcome{}
	err = r.locks.WithPairLock(ctx, thiefID, targetID, func() error {
		thief, err := r.store.GetByID(ctx, thiefID)
		if err != nil {
			return err
		}
		target, err := r.store.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if thief.TopCoin <= 0 {
			return ErrThiefBroke
		}
		if target.TopCoin <= 0 {
			return ErrTargetBroke
		}
		res.Thief, res.Target = thief, target

		var entries []model.Transaction
		if outcome.Bernoulli(r.src, r.cfg.StealSuccessChance) {
			res.Success = true
			res.Amount = ledger.Transfer(target, thief, amount)
			entries = []model.Transaction{
				ledger.Entry(thiefID, res.Amount, 0, model.TxTypeSteal, "trộm từ "+target.DisplayName()),
				ledger.Entry(targetID, -res.Amount, 0, model.TxTypeStolen, "bị "+thief.DisplayName()+" trộm"),
			}
			return r.store.Commit(ctx, entries, thief, target)
		}

		res.Amount = ledger.DebitCoins(thief, amount/2)
		if res.Amount == 0 {
			return nil
		}
		entries = []model.Transaction{
			ledger.Entry(thiefID, -res.Amount, 0, model.TxTypeSteal, "bị bắt khi trộm "+target.DisplayName()),
		}
		return r.store.Commit(ctx, entries, thief)
	})
	if err != nil {
		return nil, r.failed("steal", thiefID, err)
	}

	metrics.Settled("steal")
	log.Info().
		Int64("thief_id", thiefID).
		Int64("target_id", targetID).
		Bool("success", res.Success).
		Int64("amount", res.Amount).
		Msg("Steal settled")
	return res, nil
}

// ProposeTaiXiu places a bet and waits for the side to be picked.
func (r *Runner) ProposeTaiXiu(ctx context.Context, chatID, userID, wager int64) (session.Entry[TaiXiu], error) {
	if wager <= 0 {
		return session.Entry[TaiXiu]{}, fmt.Errorf("wager must be positive: %w", game.ErrInvalidArgument)
	}
	user, err := r.store.GetByID(ctx, userID)
	if err != nil {
		return session.Entry[TaiXiu]{}, err
	}
	if !ledger.CanAfford(user, wager) {
		return session.Entry[TaiXiu]{}, fmt.Errorf("taixiu: %w", game.ErrInsufficientFunds)
	}

	entry, err := r.taixiu.Create(userID, TaiXiu{OwnerID: userID, Wager: wager, ChatID: chatID})
	if err != nil {
		return session.Entry[TaiXiu]{}, err
	}
	if r.cfg.TaiXiuTimeout > 0 {
		r.taixiu.ScheduleExpiry(userID, entry.ID, r.cfg.TaiXiuTimeout, func(_ int64, e session.Entry[TaiXiu]) {
			metrics.Expired("taixiu")
			log.Debug().Str("session_id", e.ID).Int64("user_id", userID).Msg("Tai-xiu bet expired")
		})
	}
	return entry, nil
}

// ChooseTaiXiu settles the bet sessionID of userID on choice.
func (r *Runner) ChooseTaiXiu(ctx context.Context, userID int64, sessionID, choice string) (*Outcome, error) {
	cat, ok := outcome.ParseCategory(choice)
	if !ok {
		return nil, fmt.Errorf("unknown choice %q: %w", choice, game.ErrInvalidArgument)
	}
	entry, ok := r.taixiu.TakeID(userID, sessionID)
	if !ok {
		return nil, fmt.Errorf("taixiu: %w", game.ErrNoActiveSession)
	}

	wager := entry.Session.Wager
	return r.play(ctx, userID, wager, "taixiu", model.TxTypeTaiXiu, func(u *model.User, o *Outcome) {
		o.Choice = cat
		o.Dice = outcome.RollTaiXiu(r.src)
		o.Won = o.Dice.Matches(cat)
		if o.Won {
			o.CoinDelta = ledger.CreditCoins(u, scale(wager, r.cfg.TaiXiuMultiplier))
		} else {
			o.CoinDelta = -ledger.DebitCoins(u, wager)
		}
	})
}

// scale returns floor(amount × m).
func scale(amount int64, m decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(m).Floor().IntPart()
}
