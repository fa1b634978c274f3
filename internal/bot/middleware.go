package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-economy-bot/internal/config"
	"telegram-economy-bot/internal/metrics"
	"telegram-economy-bot/internal/service"
)

// accessCache tracks users who have used the bot in whitelisted groups.
// This allows them to use the bot in private chat.
type accessCache struct {
	mu    sync.RWMutex
	users map[int64]bool
}

func newAccessCache() *accessCache {
	return &accessCache{users: make(map[int64]bool)}
}

// allow marks a user as allowed to use private chat.
func (a *accessCache) allow(userID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.users[userID] = true
}

// allowed checks if a user is allowed to use private chat.
func (a *accessCache) allowed(userID int64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.users[userID]
}

// WhitelistMiddleware creates a middleware that checks if the chat is whitelisted.
func WhitelistMiddleware(cfg *config.Config, access *accessCache) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			sender := c.Sender()

			if chat == nil || sender == nil {
				return nil
			}

			if chat.Type == tele.ChatPrivate {
				// Allow if user has previously used bot in whitelisted group
				if access.allowed(sender.ID) || len(cfg.Whitelist.Chats) == 0 {
					return next(c)
				}
				log.Debug().
					Int64("user_id", sender.ID).
					Msg("Ignoring private chat from user not in whitelist cache")
				return nil
			}

			if !cfg.IsChatAllowed(chat.ID) {
				log.Debug().
					Int64("chat_id", chat.ID).
					Msg("Ignoring command from non-whitelisted chat")
				return nil
			}

			access.allow(sender.ID)
			return next(c)
		}
	}
}

// AdminMiddleware creates a middleware that checks if the user is an admin.
func AdminMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			if !cfg.IsAdmin(sender.ID) {
				log.Warn().
					Int64("user_id", sender.ID).
					Str("command", c.Text()).
					Msg("Non-admin attempted admin command")
				return c.Reply("❌ Bạn không có quyền dùng lệnh này.")
			}

			return next(c)
		}
	}
}

// EnsureUserMiddleware creates the sender's account on their first command
// and keeps the stored username current. Plain text passes through.
func EnsureUserMiddleware(accounts *service.AccountService) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || sender.IsBot {
				return nil
			}
			if c.Callback() == nil && CommandName(c.Text()) == "" {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, created, err := accounts.EnsureUser(ctx, sender.ID, sender.Username); err != nil {
				log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to ensure user")
				return c.Reply("❌ Có lỗi xảy ra, vui lòng thử lại sau.")
			} else if created {
				log.Info().Int64("user_id", sender.ID).Str("username", sender.Username).Msg("User registered")
			}

			return next(c)
		}
	}
}

// MetricsMiddleware counts updates per command.
func MetricsMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Callback() != nil {
				metrics.CommandsTotal.Add("callback", 1)
			} else if cmd := CommandName(c.Text()); cmd != "" {
				metrics.CommandsTotal.Add(cmd, 1)
			}
			return next(c)
		}
	}
}

// CommandName returns the command of a message without the slash and the
// "@botname" suffix, or "" when text is not a command.
func CommandName(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.TrimPrefix(strings.Fields(text)[0], "/")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd)
}

// LoggingMiddleware creates a middleware that logs all incoming messages.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			chat := c.Chat()

			logEvent := log.Debug()
			if sender != nil {
				logEvent = logEvent.
					Int64("user_id", sender.ID).
					Str("username", sender.Username)
			}
			if chat != nil {
				logEvent = logEvent.
					Int64("chat_id", chat.ID).
					Str("chat_type", string(chat.Type))
			}
			logEvent.
				Str("text", c.Text()).
				Msg("Received message")

			return next(c)
		}
	}
}

// RecoveryMiddleware creates a middleware that recovers from panics.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Msg("Recovered from panic in handler")
					err = c.Reply("❌ Có lỗi xảy ra, vui lòng thử lại sau.")
				}
			}()
			return next(c)
		}
	}
}
