package handler

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"telegram-economy-bot/internal/model"
	"telegram-economy-bot/internal/service"
)

// RankingHandler handles ranking-related commands.
type RankingHandler struct {
	rankingService *service.RankingService
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(rankingService *service.RankingService) *RankingHandler {
	return &RankingHandler{
		rankingService: rankingService,
	}
}

// HandleTop handles the /top command.
func (h *RankingHandler) HandleTop(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	users, err := h.rankingService.TopByXP(ctx, service.DefaultTopLimit)
	if err != nil {
		return replyError(c, err)
	}
	return c.Reply(FormatTop("🏆 BXH XP", users, func(u *model.User) string {
		return fmt.Sprintf("Level %d • %d XP", u.Level(), u.TotalXP)
	}))
}

// HandleTopCoin handles the /topcoin command.
func (h *RankingHandler) HandleTopCoin(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	users, err := h.rankingService.TopByCoins(ctx, service.DefaultTopLimit)
	if err != nil {
		return replyError(c, err)
	}
	return c.Reply(FormatTop("💰 BXH Coin", users, func(u *model.User) string {
		return fmt.Sprintf("%d coin", u.TopCoin)
	}))
}

// FormatTop renders a leaderboard. The first three places get medals.
func FormatTop(title string, users []*model.User, score func(*model.User) string) string {
	var b strings.Builder
	b.WriteString(title + "\n━━━━━━━━━━━━━━━\n")
	if len(users) == 0 {
		b.WriteString("Chưa có dữ liệu.")
		return b.String()
	}

	medals := []string{"🥇", "🥈", "🥉"}
	for i, u := range users {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		fmt.Fprintf(&b, "%s %s – %s\n", rank, u.DisplayName(), score(u))
	}
	return strings.TrimRight(b.String(), "\n")
}
