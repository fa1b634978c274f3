// Package model defines the data models for the economy game bot.
package model

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// DayKeyLayout is the layout of day keys stored on users (ISO date).
const DayKeyLayout = "2006-01-02"

// QuizDay is the per-user daily counter capping quiz XP rewards.
type QuizDay struct {
	Date     string `db:"quiz_xp_date"`
	EarnedXP int64  `db:"quiz_xp_earned"`
}

// User is the balance entity mutated by the games.
// Coins and every XP counter are never negative.
type User struct {
	TelegramID  int64      `db:"telegram_id"`
	Username    string     `db:"username"`
	TopCoin     int64      `db:"top_coin"`
	TotalXP     int64      `db:"total_xp"`
	DayXP       int64      `db:"day_xp"`
	WeekXP      int64      `db:"week_xp"`
	MonthXP     int64      `db:"month_xp"`
	QuizDay     QuizDay    `db:"-"`
	Periods     PeriodKeys `db:"-"`
	LastDailyAt string     `db:"last_daily_at"`
	DailyStreak int        `db:"daily_streak"`
	LastQuestAt string     `db:"last_quest_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Level returns the user's level derived from total XP.
func (u *User) Level() int {
	return Level(u.TotalXP)
}

// DisplayName returns "@username" or a fallback built from the ID.
func (u *User) DisplayName() string {
	if u.Username == "" {
		return "user" + strconv.FormatInt(u.TelegramID, 10)
	}
	return "@" + u.Username
}

// Clone returns a copy of the user that can be mutated independently.
func (u *User) Clone() *User {
	c := *u
	return &c
}

// Level maps total XP to a level: 1 + isqrt(totalXP / 50).
func Level(totalXP int64) int {
	if totalXP <= 0 {
		return 1
	}
	return 1 + int(math.Sqrt(float64(totalXP/50)))
}

// DayKey returns the day key of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayKeyLayout)
}

// Transaction is an audit entry written together with the balance change it describes.
type Transaction struct {
	ID          string    `db:"id"`
	UserID      int64     `db:"user_id"`
	Coins       int64     `db:"coins"`
	XP          int64     `db:"xp"`
	Type        string    `db:"type"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// Reward is a shop purchase awaiting fulfilment by an admin.
type Reward struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	Type      string    `db:"type"`
	CreatedAt time.Time `db:"created_at"`
}

// Transaction types for categorizing balance changes.
const (
	TxTypeInitial  = "initial"   // Account creation
	TxTypeDaily    = "daily"     // Daily check-in
	TxTypeQuest    = "quest"     // Daily XP quest bonus
	TxTypeRoll     = "roll"      // Roll result
	TxTypeRace     = "race"      // Race result
	TxTypeHunt     = "hunt"      // Hunt result (XP only)
	TxTypeSteal    = "steal"     // Thief side of a steal
	TxTypeStolen   = "stolen"    // Victim side of a steal
	TxTypeDuel     = "duel"      // Duel transfer
	TxTypeQuiz     = "quiz"      // Quiz reward or penalty
	TxTypeTaiXiu   = "taixiu"    // Tai-xiu result
	TxTypeShop     = "shop"      // Shop purchase
	TxTypeAdminAdd = "admin_add" // Admin grant
)

// GameTransactionTypes returns the transaction types produced by games.
func GameTransactionTypes() []string {
	return []string{TxTypeRoll, TxTypeRace, TxTypeHunt, TxTypeSteal, TxTypeStolen, TxTypeDuel, TxTypeQuiz, TxTypeTaiXiu}
}

// PeriodKeys identifies the day, ISO week and month an instant falls in.
// Each key sorts after the keys of earlier periods.
type PeriodKeys struct {
	Day   string
	Week  string
	Month string
}

// PeriodKeysAt returns the period keys of t in loc.
func PeriodKeysAt(t time.Time, loc *time.Location) PeriodKeys {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	year, week := t.ISOWeek()
	return PeriodKeys{
		Day:   t.Format(DayKeyLayout),
		Week:  fmt.Sprintf("%d-W%02d", year, week),
		Month: t.Format("2006-01"),
	}
}

// Rolled reports which XP aggregates were reset.
type Rolled struct {
	Day, Week, Month bool
}

// RollPeriods zeroes the XP aggregates whose recorded period is older than
// current and records current on the user. Keys never move backwards. A user
// with no recorded periods adopts current without resetting anything.
func (u *User) RollPeriods(current PeriodKeys) Rolled {
	if u.Periods == (PeriodKeys{}) {
		u.Periods = current
		return Rolled{}
	}
	var rolled Rolled
	if current.Day > u.Periods.Day {
		u.DayXP = 0
		u.Periods.Day = current.Day
		rolled.Day = true
	}
	if current.Week > u.Periods.Week {
		u.WeekXP = 0
		u.Periods.Week = current.Week
		rolled.Week = true
	}
	if current.Month > u.Periods.Month {
		u.MonthXP = 0
		u.Periods.Month = current.Month
		rolled.Month = true
	}
	return rolled
}

// Any reports whether anything rolled.
func (r Rolled) Any() bool {
	return r.Day || r.Week || r.Month
}
