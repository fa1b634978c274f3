package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
	"pgregory.net/rapid"

	"telegram-economy-bot/internal/config"
	"telegram-economy-bot/internal/metrics"
)

// TestAdminPermissionCheckProperty checks that a user is an admin if and
// only if their ID is configured.
func TestAdminPermissionCheckProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		adminIDs := rapid.SliceOfN(rapid.Int64Range(1, 1000000000), 1, 10).Draw(t, "adminIDs")
		cfg := &config.Config{Admin: config.AdminConfig{IDs: adminIDs}}

		userID := rapid.OneOf(
			rapid.SampledFrom(adminIDs),
			rapid.Int64Range(1, 1000000000),
		).Draw(t, "userID")

		expected := false
		for _, id := range adminIDs {
			if id == userID {
				expected = true
				break
			}
		}
		if got := cfg.IsAdmin(userID); got != expected {
			t.Fatalf("IsAdmin(%d) = %v with admins %v", userID, got, adminIDs)
		}
	})
}

// TestWhitelistEnforcementProperty checks that a group chat is allowed if
// and only if it is whitelisted, or the whitelist is empty.
func TestWhitelistEnforcementProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chats := rapid.SliceOfN(rapid.Int64Range(-1000000000, -1), 0, 10).Draw(t, "chats")
		cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: chats}}

		gen := rapid.Int64Range(-1000000000, -1)
		if len(chats) > 0 {
			gen = rapid.OneOf(rapid.SampledFrom(chats), gen)
		}
		chatID := gen.Draw(t, "chatID")

		expected := len(chats) == 0
		for _, id := range chats {
			if id == chatID {
				expected = true
				break
			}
		}
		if got := cfg.IsChatAllowed(chatID); got != expected {
			t.Fatalf("IsChatAllowed(%d) = %v with whitelist %v", chatID, got, chats)
		}
	})
}

func TestAccessCache(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		access := newAccessCache()
		userID := rapid.Int64Range(1, 1000000000).Draw(t, "userID")

		if access.allowed(userID) {
			t.Fatalf("user %d allowed before first group message", userID)
		}
		access.allow(userID)
		if !access.allowed(userID) {
			t.Fatalf("user %d not allowed after group message", userID)
		}
	})
}

func TestCommandName(t *testing.T) {
	tests := map[string]string{
		"/roll 10":          "roll",
		"/TaiXiu@my_bot 50": "taixiu",
		"/me":               "me",
		"42":                "",
		"":                  "",
		"hello /roll":       "",
	}
	for text, want := range tests {
		assert.Equal(t, want, CommandName(text), "text %q", text)
	}
}

func TestCallbackData(t *testing.T) {
	assert.Equal(t, "shop_buy:vip", CallbackData("\fshop_buy:vip"))
	assert.Equal(t, "taixiu_01J_tai", CallbackData("taixiu_01J_tai"))
}

type fakeSender struct {
	to   []tele.Recipient
	text []string
	err  error
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	f.to = append(f.to, to)
	f.text = append(f.text, what.(string))
	return &tele.Message{}, f.err
}

func TestNotifierSendsAndCountsFailures(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender)

	n.Notify(-100123, "⌛ hết hạn")
	require.Len(t, sender.to, 1)
	assert.Equal(t, "-100123", sender.to[0].Recipient())
	assert.Equal(t, "⌛ hết hạn", sender.text[0])

	before := metrics.NotifyFailures.Value()
	sender.err = errors.New("chat not found")
	n.Notify(-100123, "again")
	assert.Equal(t, before+1, metrics.NotifyFailures.Value())
}
