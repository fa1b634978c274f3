package wager

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"telegram-economy-bot/internal/game/outcome"
)

// CallbackPrefix marks tai-xiu button data.
const CallbackPrefix = "taixiu_"

// EncodeCallback packs a bet and a choice into button data.
func EncodeCallback(sessionID string, choice outcome.Category) string {
	return fmt.Sprintf("%s%s_%s", CallbackPrefix, sessionID, choice)
}

// DecodeCallback unpacks button data. ok is false for data of other games
// and for malformed data.
func DecodeCallback(data string) (sessionID, choice string, ok bool) {
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(data, CallbackPrefix), "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// BuildKeyboard returns the choice panel of one bet.
// Layout:
//   - Row 1: [Tài (11–17)] [Xỉu (4–10)]
//   - Row 2: [Chẵn] [Lẻ]
func BuildKeyboard(sessionID string) *tele.ReplyMarkup {
	button := func(c outcome.Category) tele.InlineButton {
		return tele.InlineButton{Text: c.Label(), Data: EncodeCallback(sessionID, c)}
	}
	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{
			{button(outcome.Tai), button(outcome.Xiu)},
			{button(outcome.Chan), button(outcome.Le)},
		},
	}
}
