package game

import (
	"errors"
	"fmt"
	"time"

	"telegram-economy-bot/internal/ledger"
)

// Errors shared by every game. Handlers match them with errors.Is.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = ledger.ErrUserNotFound
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyActive     = errors.New("session already active")
	ErrNoActiveSession   = errors.New("no active session")
	ErrAlreadyMoved      = errors.New("move already submitted")
	ErrRateLimited       = errors.New("rate limited")
	ErrStaleSession      = errors.New("session is stale")
	ErrDailyCapReached   = errors.New("daily cap reached")
)

// RateLimitError reports how long the caller has to wait.
type RateLimitError struct {
	Remaining time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry in %s", e.Remaining.Round(time.Second))
}

// Is makes errors.Is(err, ErrRateLimited) match.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// RemainingMinutes rounds the wait up to whole minutes.
func (e *RateLimitError) RemainingMinutes() int64 {
	m := int64(e.Remaining / time.Minute)
	if e.Remaining%time.Minute > 0 {
		m++
	}
	return m
}

// IsUserError reports whether err is a rule violation the player caused, as
// opposed to a storage or transport failure.
func IsUserError(err error) bool {
	for _, target := range []error{
		ErrInvalidArgument,
		ErrNotFound,
		ErrInsufficientFunds,
		ErrAlreadyActive,
		ErrNoActiveSession,
		ErrAlreadyMoved,
		ErrRateLimited,
		ErrStaleSession,
		ErrDailyCapReached,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
