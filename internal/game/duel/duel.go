// Package duel implements the two-player attack/shield/dodge challenge.
//
// A duel is proposed with a fixed wager, then each side commits one move.
// The player whose move completes the pair takes the duel out of the
// session store and settles it; an expiry timer that fires first takes it
// instead and settles nothing.
package duel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/game/outcome"
	"telegram-economy-bot/internal/ledger"
	"telegram-economy-bot/internal/metrics"
	"telegram-economy-bot/internal/model"
	"telegram-economy-bot/internal/pkg/lock"
	"telegram-economy-bot/internal/session"
)

// Info describes the /duel command.
var Info = game.Info{
	GameName:    "Đấu tay đôi",
	GameCommand: "duel",
	GameUsage:   "@user <coin>",
	GameDesc:    "Thách đấu, mỗi bên chọn /attack, /shield hoặc /dodge",
}

// Duel is the state of one live challenge.
type Duel struct {
	ChallengerID   int64
	ChallengerName string
	TargetID       int64
	TargetName     string
	Wager          int64
	ChallengerMove outcome.Move
	TargetMove     outcome.Move
	ChatID         int64
}

// Has reports whether userID takes part in the duel.
func (d Duel) Has(userID int64) bool {
	return d.ChallengerID == userID || d.TargetID == userID
}

// Ready reports whether both moves are in.
func (d Duel) Ready() bool {
	return d.ChallengerMove != "" && d.TargetMove != ""
}

// Key identifies the unordered pair of participants.
type Key struct {
	Low, High int64
}

// PairKey returns the key of the pair {a, b}.
func PairKey(a, b int64) Key {
	if a > b {
		a, b = b, a
	}
	return Key{Low: a, High: b}
}

// Result is a settled duel.
type Result struct {
	Duel    Duel
	Verdict outcome.Verdict
	// Winner and Loser are nil on a draw.
	Winner *model.User
	Loser  *model.User
	Amount int64
}

// MoveResult is returned by SubmitMove. Result is set only when the move
// completed the duel.
type MoveResult struct {
	Duel   Duel
	Result *Result
}

// Config holds duel settings.
type Config struct {
	// Timeout removes an unfinished duel. Zero keeps duels until settled.
	Timeout time.Duration
}

// Resolver runs duels.
type Resolver struct {
	store    ledger.Store
	locks    *lock.UserLock
	notifier game.Notifier
	sessions *session.Store[Key, Duel]
	cfg      Config
}

// New creates a Resolver. opts configure the underlying session store.
func New(store ledger.Store, locks *lock.UserLock, notifier game.Notifier, cfg Config, opts ...session.Option) *Resolver {
	return &Resolver{
		store:    store,
		locks:    locks,
		notifier: notifier,
		sessions: session.NewStore[Key, Duel]("duel", opts...),
		cfg:      cfg,
	}
}

// Live returns the number of unfinished duels.
func (r *Resolver) Live() int {
	return r.sessions.Len()
}

// Close drops every live duel and its timer.
func (r *Resolver) Close() {
	r.sessions.Close()
}

// Propose opens a duel between challenger and target.
func (r *Resolver) Propose(ctx context.Context, chatID, challengerID, targetID, wager int64) (session.Entry[Duel], error) {
	if wager <= 0 {
		return session.Entry[Duel]{}, fmt.Errorf("wager must be positive: %w", game.ErrInvalidArgument)
	}
	if challengerID == targetID {
		return session.Entry[Duel]{}, fmt.Errorf("cannot duel yourself: %w", game.ErrInvalidArgument)
	}

	challenger, err := r.store.GetByID(ctx, challengerID)
	if err != nil {
		return session.Entry[Duel]{}, fmt.Errorf("challenger: %w", err)
	}
	target, err := r.store.GetByID(ctx, targetID)
	if err != nil {
		return session.Entry[Duel]{}, fmt.Errorf("target: %w", err)
	}
	if !ledger.CanAfford(challenger, wager) {
		return session.Entry[Duel]{}, &FundsError{User: challenger, Wager: wager}
	}
	if !ledger.CanAfford(target, wager) {
		return session.Entry[Duel]{}, &FundsError{User: target, Wager: wager}
	}

	key := PairKey(challengerID, targetID)
	entry, err := r.sessions.Create(key, Duel{
		ChallengerID:   challengerID,
		ChallengerName: challenger.DisplayName(),
		TargetID:       targetID,
		TargetName:     target.DisplayName(),
		Wager:          wager,
		ChatID:         chatID,
	})
	if err != nil {
		return session.Entry[Duel]{}, err
	}
	if r.cfg.Timeout > 0 {
		r.sessions.ScheduleExpiry(key, entry.ID, r.cfg.Timeout, r.expire)
	}

	log.Info().
		Str("duel_id", entry.ID).
		Int64("challenger_id", challengerID).
		Int64("target_id", targetID).
		Int64("wager", wager).
		Msg("Duel proposed")
	return entry, nil
}

// SubmitMove records userID's move in the oldest duel they take part in.
// The move that completes the duel settles it.
func (r *Resolver) SubmitMove(ctx context.Context, userID int64, move outcome.Move) (MoveResult, error) {
	if _, ok := outcome.ParseMove(string(move)); !ok {
		return MoveResult{}, fmt.Errorf("unknown move %q: %w", move, game.ErrInvalidArgument)
	}

	key, _, ok := r.sessions.Find(func(_ Key, d Duel) bool { return d.Has(userID) })
	if !ok {
		return MoveResult{}, fmt.Errorf("duel: %w", game.ErrNoActiveSession)
	}

	entry, err := r.sessions.Update(key, func(d *Duel) error {
		switch userID {
		case d.ChallengerID:
			if d.ChallengerMove != "" {
				return game.ErrAlreadyMoved
			}
			d.ChallengerMove = move
		case d.TargetID:
			if d.TargetMove != "" {
				return game.ErrAlreadyMoved
			}
			d.TargetMove = move
		default:
			return game.ErrNoActiveSession
		}
		return nil
	})
	if err != nil {
		return MoveResult{}, err
	}
	if !entry.Session.Ready() {
		return MoveResult{Duel: entry.Session}, nil
	}

	// Only the update that completed the pair gets here. The timer may still
	// have won the race, in which case the duel is already gone.
	entry, ok = r.sessions.TakeID(key, entry.ID)
	if !ok {
		return MoveResult{}, fmt.Errorf("duel: %w", game.ErrNoActiveSession)
	}

	res, err := r.resolve(ctx, entry)
	if err != nil {
		return MoveResult{Duel: entry.Session}, err
	}
	return MoveResult{Duel: entry.Session, Result: res}, nil
}

func (r *Resolver) resolve(ctx context.Context, entry session.Entry[Duel]) (*Result, error) {
	d := entry.Session
	res := &Result{Duel: d, Verdict: outcome.Fight(d.ChallengerMove, d.TargetMove)}

	err := r.locks.WithPairLock(ctx, d.ChallengerID, d.TargetID, func() error {
		challenger, err := r.store.GetByID(ctx, d.ChallengerID)
		if err != nil {
			return err
		}
		target, err := r.store.GetByID(ctx, d.TargetID)
		if err != nil {
			return err
		}
		if !ledger.CanAfford(challenger, d.Wager) || !ledger.CanAfford(target, d.Wager) {
			return fmt.Errorf("duel %s: %w", entry.ID, game.ErrStaleSession)
		}

		switch res.Verdict {
		case outcome.FirstWins:
			res.Winner, res.Loser = challenger, target
		case outcome.SecondWins:
			res.Winner, res.Loser = target, challenger
		default:
			return nil
		}

		res.Amount = ledger.Transfer(res.Loser, res.Winner, d.Wager)
		entries := []model.Transaction{
			ledger.Entry(res.Loser.TelegramID, -res.Amount, 0, model.TxTypeDuel, "thua duel với "+res.Winner.DisplayName()),
			ledger.Entry(res.Winner.TelegramID, res.Amount, 0, model.TxTypeDuel, "thắng duel với "+res.Loser.DisplayName()),
		}
		return r.store.Commit(ctx, entries, res.Loser, res.Winner)
	})
	if err != nil {
		if !errors.Is(err, game.ErrStaleSession) {
			metrics.SettleFailed("duel")
			log.Error().Err(err).Str("duel_id", entry.ID).Msg("Failed to settle duel")
		}
		return nil, err
	}

	metrics.Settled("duel")
	log.Info().
		Str("duel_id", entry.ID).
		Int("verdict", int(res.Verdict)).
		Int64("amount", res.Amount).
		Msg("Duel settled")
	return res, nil
}

func (r *Resolver) expire(_ Key, entry session.Entry[Duel]) {
	metrics.Expired("duel")
	log.Info().Str("duel_id", entry.ID).Msg("Duel expired")
	if r.notifier != nil {
		r.notifier.Notify(entry.Session.ChatID, FormatExpired(entry.Session))
	}
}

// FundsError reports which participant cannot cover the wager.
type FundsError struct {
	User  *model.User
	Wager int64
}

func (e *FundsError) Error() string {
	return fmt.Sprintf("%s cannot cover wager %d", e.User.DisplayName(), e.Wager)
}

// Is makes errors.Is(err, game.ErrInsufficientFunds) match.
func (e *FundsError) Is(target error) bool {
	return target == game.ErrInsufficientFunds
}
