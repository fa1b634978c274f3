package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/service"
)

// StealCooldowns reports how long a user must wait before stealing again.
type StealCooldowns interface {
	StealCooldown(ctx context.Context, userID int64) (time.Duration, error)
}

// AccountHandler handles account-related commands.
type AccountHandler struct {
	accountService *service.AccountService
	registry       *game.Registry
	cooldowns      StealCooldowns
	quizDailyCap   int64
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *service.AccountService, registry *game.Registry, cooldowns StealCooldowns, quizDailyCap int64) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		registry:       registry,
		cooldowns:      cooldowns,
		quizDailyCap:   quizDailyCap,
	}
}

// HandleStart handles /start and /help.
func (h *AccountHandler) HandleStart(c tele.Context) error {
	return c.Reply(FormatHelp(h.registry))
}

// FormatHelp lists the games and the economy commands.
func FormatHelp(registry *game.Registry) string {
	var b strings.Builder
	b.WriteString("Xin chào! Đây là bot game 🎮\n\nLệnh chính:\n")
	for _, g := range registry.List() {
		usage := "/" + g.Command()
		if g.Usage() != "" {
			usage += " " + g.Usage()
		}
		fmt.Fprintf(&b, "• %s – %s\n", usage, g.Description())
	}
	b.WriteString("\nKinh tế:\n")
	b.WriteString("• /me – xem coin, XP và level\n")
	b.WriteString("• /daily, /claimdaily – thưởng mỗi ngày\n")
	b.WriteString("• /shop, /buy <id> – shop vật phẩm\n")
	b.WriteString("• /top, /topcoin – bảng xếp hạng")
	return b.String()
}

// HandleMe handles the /me command.
func (h *AccountHandler) HandleMe(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	user, err := h.accountService.Profile(ctx, c.Sender().ID)
	if err != nil {
		return replyError(c, err)
	}

	wait, err := h.cooldowns.StealCooldown(ctx, user.TelegramID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", user.TelegramID).Msg("Failed to read steal cooldown")
	}

	return c.Reply(fmt.Sprintf(
		"📊 Thông tin của %s\n"+
			"━━━━━━━━━━━━━━━\n"+
			"⭐ Level: %d (XP: %d)\n"+
			"📅 XP hôm nay: %d • tuần: %d • tháng: %d\n"+
			"💰 Coin: %d\n"+
			"🧠 XP quiz hôm nay: %d/%d\n"+
			"🔥 Streak điểm danh: %d ngày\n"+
			"%s\n"+
			"━━━━━━━━━━━━━━━",
		user.DisplayName(), user.Level(), user.TotalXP,
		user.DayXP, user.WeekXP, user.MonthXP,
		user.TopCoin,
		user.QuizDay.EarnedXP, h.quizDailyCap,
		user.DailyStreak,
		FormatStealStatus(wait),
	))
}

// FormatStealStatus is the /me line for the steal cooldown.
func FormatStealStatus(wait time.Duration) string {
	if wait <= 0 {
		return "🕵️ /steal: sẵn sàng"
	}
	minutes := (&game.RateLimitError{Remaining: wait}).RemainingMinutes()
	return fmt.Sprintf("🕵️ /steal: còn khoảng %d phút", minutes)
}

// HandleDaily handles the /daily check-in.
func (h *AccountHandler) HandleDaily(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	res, err := h.accountService.Daily(ctx, c.Sender().ID)
	if err != nil {
		return replyError(c, err)
	}

	return c.Reply(fmt.Sprintf(
		"✅ Điểm danh thành công!\n"+
			"• +%d XP\n"+
			"• +%d coin\n"+
			"• Streak: %d ngày\n"+
			"• Level hiện tại: %d (XP: %d)",
		res.XP, res.Coins, res.Streak, res.User.Level(), res.User.TotalXP,
	))
}

// HandleClaimDaily handles the /claimdaily quest.
func (h *AccountHandler) HandleClaimDaily(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	res, err := h.accountService.ClaimQuest(ctx, c.Sender().ID)
	if err != nil {
		return replyError(c, err)
	}

	return c.Reply(fmt.Sprintf(
		"🎉 Nhiệm vụ ngày hoàn thành!\n"+
			"• +%d XP\n"+
			"• +%d coin\n"+
			"• Level hiện tại: %d (XP: %d)",
		res.XP, res.Coins, res.User.Level(), res.User.TotalXP,
	))
}
