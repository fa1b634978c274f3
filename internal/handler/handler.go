// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/game/duel"
	"telegram-economy-bot/internal/game/wager"
	"telegram-economy-bot/internal/service"
)

// requestTimeout bounds the store work of one update.
const requestTimeout = 10 * time.Second

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// parseAmount parses a positive coin amount.
func parseAmount(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// senderName returns the username Telegram knows the sender by.
func senderName(u *tele.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

// errorText maps a game or service error to the reply shown to the player.
// Unexpected errors are logged and answered generically.
func errorText(err error) string {
	var (
		rl    *game.RateLimitError
		funds *duel.FundsError
		quest *service.QuestProgressError
	)
	switch {
	case errors.As(err, &rl):
		return fmt.Sprintf("⏳ Bạn phải đợi khoảng %d phút nữa.", rl.RemainingMinutes())
	case errors.As(err, &funds):
		return fmt.Sprintf("%s không đủ %d coin cho trận này.", funds.User.DisplayName(), funds.Wager)
	case errors.As(err, &quest):
		return fmt.Sprintf("Bạn mới có %d XP hôm nay.\nCần %d XP trong ngày để nhận thưởng.", quest.DayXP, quest.Required)
	case errors.Is(err, wager.ErrThiefBroke):
		return "Bạn không có coin, không thể đi trộm."
	case errors.Is(err, wager.ErrTargetBroke):
		return "Người này không có coin để trộm."
	case errors.Is(err, game.ErrInsufficientFunds):
		return "Bạn không đủ coin để cược."
	case errors.Is(err, game.ErrNotFound):
		return "Không tìm thấy người dùng này."
	case errors.Is(err, game.ErrInvalidArgument):
		return "Tham số không hợp lệ."
	case errors.Is(err, game.ErrAlreadyActive):
		return "Bạn đang có một ván chưa kết thúc."
	case errors.Is(err, game.ErrNoActiveSession):
		return "Không có ván nào đang chờ bạn."
	case errors.Is(err, game.ErrAlreadyMoved):
		return "Bạn đã chọn rồi, chờ đối thủ."
	case errors.Is(err, game.ErrStaleSession):
		return "Một bên không còn đủ coin, trận đấu bị hủy."
	case errors.Is(err, service.ErrDailyAlreadyClaimed):
		return "📅 Hôm nay bạn đã điểm danh rồi, quay lại ngày mai nhé!"
	case errors.Is(err, service.ErrQuestAlreadyClaimed):
		return "🎯 Bạn đã nhận thưởng nhiệm vụ ngày hôm nay rồi."
	case errors.Is(err, service.ErrItemNotFound):
		return "Không tìm thấy vật phẩm này."
	}
	log.Error().Err(err).Msg("Handler failed")
	return "❌ Có lỗi xảy ra, vui lòng thử lại sau."
}

func replyError(c tele.Context, err error) error {
	return c.Reply(errorText(err))
}
