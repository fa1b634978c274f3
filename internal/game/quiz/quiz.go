// Package quiz implements the timed arithmetic quiz.
//
// A quiz is live from Issue until it is answered or swept by its timer.
// Both paths take the session out of the store first, so a quiz earns
// either its reward or its penalty, never both.
package quiz

import (
	"context"
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

// Info describes the /quiz command.
var Info = game.Info{
	GameName:    "Quiz",
	GameCommand: "quiz",
	GameUsage:   "",
	GameDesc:    "Giải phép tính trong thời gian giới hạn để nhận XP",
}

// Config holds quiz settings.
type Config struct {
	DailyCap     int64
	GainXP       int64
	PenaltyXP    int64
	PenaltyCoins int64
	Timeout      time.Duration
	// Grace delays the sweep past the deadline so that an answer sent right
	// at the deadline is judged by Answer.
	Grace    time.Duration
	Location *time.Location
	Clock    func() time.Time
}

// Quiz is the state of one live quiz.
type Quiz struct {
	OwnerID    int64
	Level      int
	Expression string
	Answer     int64
	ExpiresAt  time.Time
	ChatID     int64
}

// Verdict is how a quiz ended.
type Verdict int

const (
	Correct Verdict = iota
	Wrong
	Late
	TimedOut
)

func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case Wrong:
		return "wrong"
	case Late:
		return "late"
	case TimedOut:
		return "timed_out"
	}
	return "unknown"
}

// Result is a settled quiz.
type Result struct {
	Verdict   Verdict
	Quiz      Quiz
	GainedXP  int64
	LostXP    int64
	LostCoins int64
	// Capped is set when a correct answer earned nothing because the daily
	// cap had been reached meanwhile.
	Capped      bool
	EarnedToday int64
	DailyCap    int64
	User        *model.User
}

// Engine runs quizzes.
type Engine struct {
	store    ledger.Store
	locks    *lock.UserLock
	notifier game.Notifier
	src      outcome.Source
	sessions *session.Store[int64, Quiz]
	cfg      Config
}

// New creates an Engine. opts configure the underlying session store.
func New(store ledger.Store, locks *lock.UserLock, notifier game.Notifier, src outcome.Source, cfg Config, opts ...session.Option) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Engine{
		store:    store,
		locks:    locks,
		notifier: notifier,
		src:      src,
		sessions: session.NewStore[int64, Quiz]("quiz", opts...),
		cfg:      cfg,
	}
}

// Live returns the number of unanswered quizzes.
func (e *Engine) Live() int {
	return e.sessions.Len()
}

// Close drops every live quiz and its timer.
func (e *Engine) Close() {
	e.sessions.Close()
}

// Pending reports whether userID has a live quiz.
func (e *Engine) Pending(userID int64) bool {
	_, ok := e.sessions.Get(userID)
	return ok
}

// Issue starts a quiz for userID.
func (e *Engine) Issue(ctx context.Context, chatID, userID int64) (session.Entry[Quiz], error) {
	if e.Pending(userID) {
		return session.Entry[Quiz]{}, fmt.Errorf("quiz: %w", game.ErrAlreadyActive)
	}

	user, err := e.store.GetByID(ctx, userID)
	if err != nil {
		return session.Entry[Quiz]{}, err
	}

	now := e.cfg.Clock()
	e.rollQuizDay(user, now)
	if user.QuizDay.EarnedXP >= e.cfg.DailyCap {
		return session.Entry[Quiz]{}, fmt.Errorf("quiz: %w", game.ErrDailyCapReached)
	}

	level := user.Level()
	p := Generate(e.src, level)
	entry, err := e.sessions.Create(userID, Quiz{
		OwnerID:    userID,
		Level:      level,
		Expression: p.Expression,
		Answer:     p.Answer,
		ExpiresAt:  now.Add(e.cfg.Timeout),
		ChatID:     chatID,
	})
	if err != nil {
		return session.Entry[Quiz]{}, err
	}
	e.sessions.ScheduleExpiry(userID, entry.ID, e.cfg.Timeout+e.cfg.Grace, e.sweep)

	log.Debug().
		Str("quiz_id", entry.ID).
		Int64("user_id", userID).
		Int("level", level).
		Msg("Quiz issued")
	return entry, nil
}

// Answer judges value against userID's live quiz.
func (e *Engine) Answer(ctx context.Context, userID, value int64) (*Result, error) {
	entry, ok := e.sessions.Take(userID)
	if !ok {
		return nil, fmt.Errorf("quiz: %w", game.ErrNoActiveSession)
	}

	q := entry.Session
	res := &Result{Quiz: q, DailyCap: e.cfg.DailyCap}
	err := e.locks.WithLock(ctx, userID, func() error {
		user, err := e.store.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		now := e.cfg.Clock()
		e.rollQuizDay(user, now)
		res.User = user

		var entries []model.Transaction
		switch {
		case now.After(q.ExpiresAt):
			res.Verdict = Late
			entries = e.penalize(user, res)
		case value == q.Answer:
			res.Verdict = Correct
			gain := min(e.cfg.GainXP, e.cfg.DailyCap-user.QuizDay.EarnedXP)
			if gain <= 0 {
				res.Capped = true
				break
			}
			ledger.CreditXP(user, gain)
			user.QuizDay.EarnedXP += gain
			res.GainedXP = gain
			entries = append(entries, ledger.Entry(userID, 0, gain, model.TxTypeQuiz, "quiz: "+q.Expression))
		default:
			res.Verdict = Wrong
			entries = e.penalize(user, res)
		}
		res.EarnedToday = user.QuizDay.EarnedXP
		return e.store.Commit(ctx, entries, user)
	})
	if err != nil {
		metrics.SettleFailed("quiz")
		log.Error().Err(err).Str("quiz_id", entry.ID).Int64("user_id", userID).Msg("Failed to settle quiz")
		return nil, err
	}

	metrics.Settled("quiz")
	log.Info().
		Str("quiz_id", entry.ID).
		Int64("user_id", userID).
		Str("verdict", res.Verdict.String()).
		Int64("gained_xp", res.GainedXP).
		Msg("Quiz answered")
	return res, nil
}

// sweep penalizes a quiz nobody answered.
func (e *Engine) sweep(userID int64, entry session.Entry[Quiz]) {
	metrics.Expired("quiz")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res := &Result{Verdict: TimedOut, Quiz: entry.Session, DailyCap: e.cfg.DailyCap}
	err := e.locks.WithLock(ctx, userID, func() error {
		user, err := e.store.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		e.rollQuizDay(user, e.cfg.Clock())
		res.User = user
		entries := e.penalize(user, res)
		res.EarnedToday = user.QuizDay.EarnedXP
		return e.store.Commit(ctx, entries, user)
	})
	if err != nil {
		metrics.SettleFailed("quiz")
		log.Error().Err(err).Str("quiz_id", entry.ID).Int64("user_id", userID).Msg("Failed to penalize timed out quiz")
		return
	}

	log.Info().
		Str("quiz_id", entry.ID).
		Int64("user_id", userID).
		Int64("lost_xp", res.LostXP).
		Int64("lost_coins", res.LostCoins).
		Msg("Quiz timed out")
	if e.notifier != nil {
		e.notifier.Notify(entry.Session.ChatID, FormatResult(res))
	}
}

func (e *Engine) penalize(user *model.User, res *Result) []model.Transaction {
	res.LostXP = ledger.DebitXP(user, e.cfg.PenaltyXP)
	res.LostCoins = ledger.DebitCoins(user, e.cfg.PenaltyCoins)
	if res.LostXP == 0 && res.LostCoins == 0 {
		return nil
	}
	return []model.Transaction{
		ledger.Entry(user.TelegramID, -res.LostCoins, -res.LostXP, model.TxTypeQuiz, "quiz penalty: "+res.Verdict.String()),
	}
}

// rollQuizDay resets the daily counter when it belongs to another day.
func (e *Engine) rollQuizDay(user *model.User, now time.Time) {
	today := model.DayKey(now, e.cfg.Location)
	if user.QuizDay.Date != today {
		user.QuizDay = model.QuizDay{Date: today}
	}
}
