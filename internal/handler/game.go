package handler

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/game/wager"
	"telegram-economy-bot/internal/service"
)

// GameHandler handles the single-player wager games.
type GameHandler struct {
	runner          *wager.Runner
	identityService *service.IdentityService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(runner *wager.Runner, identityService *service.IdentityService) *GameHandler {
	return &GameHandler{
		runner:          runner,
		identityService: identityService,
	}
}

// HandleRoll handles the /roll command.
// Format: /roll <amount>
func (h *GameHandler) HandleRoll(c tele.Context) error {
	amount, ok := h.wagerArg(c, "roll")
	if !ok {
		return nil
	}
	ctx, cancel := requestContext()
	defer cancel()

	o, err := h.runner.Roll(ctx, c.Sender().ID, amount)
	if err != nil {
		return replyError(c, err)
	}
	return c.Reply(wager.FormatRoll(o))
}

// HandleRace handles the /race command.
// Format: /race <amount>
func (h *GameHandler) HandleRace(c tele.Context) error {
	amount, ok := h.wagerArg(c, "race")
	if !ok {
		return nil
	}
	ctx, cancel := requestContext()
	defer cancel()

	o, err := h.runner.Race(ctx, c.Sender().ID, amount)
	if err != nil {
		return replyError(c, err)
	}
	return c.Reply(wager.FormatRace(o))
}

// HandleHunt handles the /hunt command.
// Format: /hunt <xp>
func (h *GameHandler) HandleHunt(c tele.Context) error {
	amount, ok := h.wagerArg(c, "hunt")
	if !ok {
		return nil
	}
	ctx, cancel := requestContext()
	defer cancel()

	o, err := h.runner.Hunt(ctx, c.Sender().ID, amount)
	if err != nil {
		return replyError(c, err)
	}
	return c.Reply(wager.FormatHunt(o))
}

// HandleSteal handles the /steal command.
// Format: /steal <@user|id> <amount>, or /steal <amount> as a reply to the target.
func (h *GameHandler) HandleSteal(c tele.Context) error {
	args := c.Args()
	msg := c.Message()

	var targetArg, amountArg string
	switch {
	case len(args) >= 2:
		targetArg, amountArg = args[0], args[1]
	case len(args) == 1 && msg != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil:
		targetArg, amountArg = fmt.Sprint(msg.ReplyTo.Sender.ID), args[0]
	default:
		return c.Reply("Cách dùng: /steal @user <coin>")
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
	o, err := h.runner.Steal(ctx, c.Sender().ID, target.TelegramID, amount)
	if err != nil {
		var rl *game.RateLimitError
		if errors.As(err, &rl) {
			return c.Reply(wager.FormatStealCooldown(rl.RemainingMinutes()))
		}
		return replyError(c, err)
	}
	return c.Reply(wager.FormatSteal(o))
}

// HandleTaiXiu handles the /taixiu command and shows the choice panel.
// Format: /taixiu <amount>
func (h *GameHandler) HandleTaiXiu(c tele.Context) error {
	amount, ok := h.wagerArg(c, "taixiu")
	if !ok {
		return nil
	}
	ctx, cancel := requestContext()
	defer cancel()

	entry, err := h.runner.ProposeTaiXiu(ctx, c.Chat().ID, c.Sender().ID, amount)
	if err != nil {
		return replyError(c, err)
	}
	prompt := wager.FormatTaiXiuPrompt("@"+senderName(c.Sender()), entry.Session.Wager)
	return c.Reply(prompt, wager.BuildKeyboard(entry.ID))
}

// HandleTaiXiuCallback settles a bet from its choice button.
// Only the player who opened the bet can settle it.
func (h *GameHandler) HandleTaiXiuCallback(c tele.Context, data string) error {
	sessionID, choice, ok := wager.DecodeCallback(data)
	if !ok {
		return c.Respond()
	}

	ctx, cancel := requestContext()
	defer cancel()

	o, err := h.runner.ChooseTaiXiu(ctx, c.Sender().ID, sessionID, choice)
	switch {
	case errors.Is(err, game.ErrNoActiveSession):
		return c.Respond(&tele.CallbackResponse{Text: "Ván này không phải của bạn hoặc đã kết thúc."})
	case errors.Is(err, game.ErrInsufficientFunds):
		_ = c.Respond()
		return c.Edit("Bạn không đủ coin để hoàn tất ván này, cược bị hủy.")
	case err != nil:
		return c.Respond(&tele.CallbackResponse{Text: errorText(err), ShowAlert: true})
	}

	_ = c.Respond(&tele.CallbackResponse{Text: o.Choice.Label()})
	if err := c.Edit(wager.FormatTaiXiu(o)); err != nil {
		log.Warn().Err(err).Int64("user_id", c.Sender().ID).Msg("Failed to edit tai xiu message")
		return c.Send(wager.FormatTaiXiu(o))
	}
	return nil
}

// wagerArg parses the single amount argument of a wager command and
// replies with the usage when it is missing or malformed.
func (h *GameHandler) wagerArg(c tele.Context, command string) (int64, bool) {
	args := c.Args()
	if len(args) < 1 {
		_ = c.Reply(fmt.Sprintf("Cách dùng: /%s <số lượng>", command))
		return 0, false
	}
	amount, ok := parseAmount(args[0])
	if !ok {
		_ = c.Reply("Số lượng phải là số nguyên dương.")
		return 0, false
	}
	return amount, true
}
