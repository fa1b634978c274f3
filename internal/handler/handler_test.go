package handler

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/game/duel"
	"telegram-economy-bot/internal/game/quiz"
	"telegram-economy-bot/internal/game/wager"
	"telegram-economy-bot/internal/model"
	"telegram-economy-bot/internal/service"
	"telegram-economy-bot/internal/shop"
)

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limit", &game.RateLimitError{Remaining: 90 * time.Second}, "khoảng 2 phút"},
		{"duel funds", &duel.FundsError{User: &model.User{Username: "bob"}, Wager: 30}, "@bob không đủ 30 coin"},
		{"quest progress", &service.QuestProgressError{DayXP: 12, Required: 40}, "Bạn mới có 12 XP"},
		{"thief broke", wager.ErrThiefBroke, "không thể đi trộm"},
		{"target broke", wager.ErrTargetBroke, "không có coin để trộm"},
		{"funds", fmt.Errorf("roll: %w", game.ErrInsufficientFunds), "không đủ coin để cược"},
		{"not found", fmt.Errorf("resolve user: %w", game.ErrNotFound), "Không tìm thấy người dùng"},
		{"already moved", game.ErrAlreadyMoved, "Bạn đã chọn rồi"},
		{"stale", game.ErrStaleSession, "trận đấu bị hủy"},
		{"daily", service.ErrDailyAlreadyClaimed, "đã điểm danh"},
		{"item", service.ErrItemNotFound, "vật phẩm"},
		{"unexpected", errors.New("connection reset"), "Có lỗi xảy ra"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, errorText(tt.err), tt.want)
		})
	}
}

func TestParseAmount(t *testing.T) {
	n, ok := parseAmount(" 25 ")
	assert.True(t, ok)
	assert.Equal(t, int64(25), n)

	for _, s := range []string{"0", "-5", "abc", "", "1.5"} {
		_, ok := parseAmount(s)
		assert.False(t, ok, "input %q", s)
	}
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{" -7 ", -7, true},
		{"0", 0, true},
		{"42 nhé", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAnswer(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestFormatTop(t *testing.T) {
	users := []*model.User{
		{TelegramID: 1, Username: "a", TopCoin: 900},
		{TelegramID: 2, Username: "b", TopCoin: 50},
		{TelegramID: 3, TopCoin: 10},
		{TelegramID: 4, Username: "d", TopCoin: 1},
	}
	text := FormatTop("💰 BXH Coin", users, func(u *model.User) string {
		return fmt.Sprintf("%d coin", u.TopCoin)
	})

	lines := strings.Split(text, "\n")
	assert.Len(t, lines, 6)
	assert.Equal(t, "🥇 @a – 900 coin", lines[2])
	assert.Equal(t, "🥉 user3 – 10 coin", lines[4])
	assert.Equal(t, "4. @d – 1 coin", lines[5])

	assert.Contains(t, FormatTop("🏆 BXH XP", nil, nil), "Chưa có dữ liệu")
}

func TestFormatPurchase(t *testing.T) {
	user := &model.User{TopCoin: 70}
	box := shop.Item{ID: "box", Name: "Random box", Price: 50, Type: shop.ItemBox}

	assert.Contains(t, FormatPurchase(&service.Purchase{Item: box, Reward: "xp_bonus", User: user}), "Bạn mở Box và nhận: xp_bonus")
	assert.Contains(t, FormatPurchase(&service.Purchase{Item: box, Reward: shop.NoReward, User: user}), "Hụt 😢")

	vip := shop.Item{ID: "vip", Name: "VIP", Price: 500, Type: "vip"}
	text := FormatPurchase(&service.Purchase{Item: vip, Reward: "vip", User: user})
	assert.Contains(t, text, "Quà sẽ do admin xử lý")
	assert.Contains(t, text, "Coin còn lại: 70")
}

func TestFormatHelpListsGamesInOrder(t *testing.T) {
	registry := game.NewRegistry()
	registry.MustRegister(wager.RollInfo, quiz.Info, duel.Info)

	text := FormatHelp(registry)
	roll := strings.Index(text, "/roll")
	q := strings.Index(text, "/quiz")
	d := strings.Index(text, "/duel @user <coin>")
	assert.True(t, roll >= 0 && roll < q && q < d, text)
}

func TestFormatStealStatus(t *testing.T) {
	assert.Equal(t, "🕵️ /steal: sẵn sàng", FormatStealStatus(0))
	assert.Equal(t, "🕵️ /steal: còn khoảng 41 phút", FormatStealStatus(40*time.Minute+time.Second))
	assert.Contains(t, FormatStealStatus(time.Minute), "1 phút")
}
