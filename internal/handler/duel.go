package handler

import (
	"fmt"

	tele "gopkg.in/telebot.v3"

	"telegram-economy-bot/internal/game/duel"
	"telegram-economy-bot/internal/game/outcome"
	"telegram-economy-bot/internal/service"
)

// DuelHandler handles /duel and the three move commands.
type DuelHandler struct {
	resolver        *duel.Resolver
	identityService *service.IdentityService
}

// NewDuelHandler creates a new DuelHandler.
func NewDuelHandler(resolver *duel.Resolver, identityService *service.IdentityService) *DuelHandler {
	return &DuelHandler{
		resolver:        resolver,
		identityService: identityService,
	}
}

// HandleDuel handles the /duel command.
// Format: /duel <@user|id> <amount>, or /duel <amount> as a reply to the target.
func (h *DuelHandler) HandleDuel(c tele.Context) error {
	args := c.Args()
	msg := c.Message()

	var targetArg, amountArg string
	switch {
	case len(args) >= 2:
		targetArg, amountArg = args[0], args[1]
	case len(args) == 1 && msg != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil:
		targetArg, amountArg = fmt.Sprint(msg.ReplyTo.Sender.ID), args[0]
	default:
		return c.Reply("Cách dùng: /duel @user <coin>")
	}
	amount, ok := parseAmount(amountArg)
	if !ok {
		return c.Reply("Số coin phải là số nguyên dương.")
	}

	ctx, cancel := requestContext()
	defer cancel()

	target, err := h.identityService.Resolve(ctx, targetArg)
	if err != nil {
		return replyError(c, err)
	}
	entry, err := h.resolver.Propose(ctx, c.Chat().ID, c.Sender().ID, target.TelegramID, amount)
	if err != nil {
		return replyError(c, err)
	}
	return c.Reply(duel.FormatProposed(entry.Session))
}

// HandleAttack handles /attack.
func (h *DuelHandler) HandleAttack(c tele.Context) error {
	return h.handleMove(c, outcome.Attack)
}

// HandleShield handles /shield.
func (h *DuelHandler) HandleShield(c tele.Context) error {
	return h.handleMove(c, outcome.Shield)
}

// HandleDodge handles /dodge.
func (h *DuelHandler) HandleDodge(c tele.Context) error {
	return h.handleMove(c, outcome.Dodge)
}

func (h *DuelHandler) handleMove(c tele.Context, move outcome.Move) error {
	ctx, cancel := requestContext()
	defer cancel()

	res, err := h.resolver.SubmitMove(ctx, c.Sender().ID, move)
	if err != nil {
		return replyError(c, err)
	}
	if res.Result == nil {
		return c.Reply(duel.FormatMoved(move))
	}
	return c.Send(duel.FormatResult(res.Result))
}
