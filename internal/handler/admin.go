package handler

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"telegram-economy-bot/internal/model"
	"telegram-economy-bot/internal/service"
)

// AdminHandler handles admin-related commands.
// Access is checked by the admin middleware before these run.
type AdminHandler struct {
	adminService    *service.AdminService
	identityService *service.IdentityService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService, identityService *service.IdentityService) *AdminHandler {
	return &AdminHandler{
		adminService:    adminService,
		identityService: identityService,
	}
}

type grantFunc func(ctx context.Context, adminID, targetID, amount int64) (*model.User, error)

// HandleAddCoin handles the /addcoin command.
// Format: /addcoin <@user|id> <amount>
func (h *AdminHandler) HandleAddCoin(c tele.Context) error {
	return h.handleGrant(c, "addcoin", h.adminService.AddCoins, func(u *model.User, amount int64) string {
		return fmt.Sprintf("✅ Đã cộng %d coin cho %s.\n💰 Coin hiện tại: %d", amount, u.DisplayName(), u.TopCoin)
	})
}

// HandleAddXP handles the /addxp command.
// Format: /addxp <@user|id> <amount>
func (h *AdminHandler) HandleAddXP(c tele.Context) error {
	return h.handleGrant(c, "addxp", h.adminService.AddXP, func(u *model.User, amount int64) string {
		return fmt.Sprintf("✅ Đã cộng %d XP cho %s.\n⭐ Level %d (XP: %d)", amount, u.DisplayName(), u.Level(), u.TotalXP)
	})
}

func (h *AdminHandler) handleGrant(c tele.Context, command string, grant grantFunc, format func(*model.User, int64) string) error {
	args := c.Args()
	if len(args) < 2 {
		return c.Reply(fmt.Sprintf("Cách dùng: /%s <@user|id> <số lượng>", command))
	}
	amount, ok := parseAmount(args[1])
	if !ok {
		return c.Reply("Số lượng phải là số nguyên dương.")
	}

	ctx, cancel := requestContext()
	defer cancel()

	target, err := h.identityService.Resolve(ctx, args[0])
	if err != nil {
		return replyError(c, err)
	}
	user, err := grant(ctx, c.Sender().ID, target.TelegramID, amount)
	if err != nil {
		return replyError(c, err)
	}
	return c.Reply(format(user, amount))
}
