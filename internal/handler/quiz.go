package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/game/quiz"
)

// QuizHandler handles /quiz and the numeric answers that follow it.
type QuizHandler struct {
	engine   *quiz.Engine
	timeout  time.Duration
	dailyCap int64
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(engine *quiz.Engine, timeout time.Duration, dailyCap int64) *QuizHandler {
	return &QuizHandler{
		engine:   engine,
		timeout:  timeout,
		dailyCap: dailyCap,
	}
}

// HandleQuiz handles the /quiz command.
func (h *QuizHandler) HandleQuiz(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	entry, err := h.engine.Issue(ctx, c.Chat().ID, c.Sender().ID)
	switch {
	case errors.Is(err, game.ErrDailyCapReached):
		return c.Reply(quiz.FormatCapReached(h.dailyCap))
	case errors.Is(err, game.ErrAlreadyActive):
		return c.Reply("Bạn đang có một câu hỏi chưa trả lời.")
	case err != nil:
		return replyError(c, err)
	}
	return c.Reply(quiz.FormatIssued(entry.Session, h.timeout))
}

// HandleText treats a bare integer from a player with a live quiz as the
// answer. Any other text is ignored.
func (h *QuizHandler) HandleText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil || !h.engine.Pending(sender.ID) {
		return nil
	}
	value, ok := ParseAnswer(c.Text())
	if !ok {
		return nil
	}

	ctx, cancel := requestContext()
	defer cancel()

	res, err := h.engine.Answer(ctx, sender.ID, value)
	if errors.Is(err, game.ErrNoActiveSession) {
		return nil
	}
	if err != nil {
		return replyError(c, err)
	}
	return c.Reply(quiz.FormatResult(res))
}

// ParseAnswer accepts an optionally signed integer and nothing else.
func ParseAnswer(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
