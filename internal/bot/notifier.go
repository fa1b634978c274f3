package bot

import (
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-economy-bot/internal/metrics"
)

// Sender is the part of *tele.Bot the notifier needs.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier sends game messages that are not replies to an update, such as
// an expired duel or a timed out quiz. It implements game.Notifier.
type Notifier struct {
	sender Sender
}

// NewNotifier creates a Notifier sending through sender.
func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

// Notify sends text to chatID. Failures are logged and counted, never returned.
func (n *Notifier) Notify(chatID int64, text string) {
	if _, err := n.sender.Send(tele.ChatID(chatID), text); err != nil {
		metrics.NotifyFailures.Add(1)
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send notification")
	}
}
