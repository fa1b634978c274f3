// Package metrics exposes process counters through expvar.
package metrics

import "expvar"

var (
	SettlementsTotal   = expvar.NewMap("game_settlements_total")
	SettlementErrors   = expvar.NewMap("game_settlement_errors_total")
	SessionsExpired    = expvar.NewMap("game_sessions_expired_total")
	CooldownRejections = expvar.NewInt("cooldown_rejections_total")
	CommandsTotal      = expvar.NewMap("bot_commands_total")
	NotifyFailures     = expvar.NewInt("bot_notify_failures_total")
	LiveSessions       = expvar.NewMap("game_live_sessions")
)

// Settled counts one committed settlement of game.
func Settled(game string) {
	SettlementsTotal.Add(game, 1)
}

// SettleFailed counts one settlement whose commit failed.
func SettleFailed(game string) {
	SettlementErrors.Add(game, 1)
}

// Expired counts one session removed by its timer.
func Expired(game string) {
	SessionsExpired.Add(game, 1)
}

// RegisterGauge publishes a live value under game_live_sessions.
func RegisterGauge(name string, f func() int) {
	LiveSessions.Set(name, expvar.Func(func() any { return f() }))
}
