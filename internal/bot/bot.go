// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-economy-bot/internal/config"
	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/game/duel"
	"telegram-economy-bot/internal/game/quiz"
	"telegram-economy-bot/internal/game/wager"
	"telegram-economy-bot/internal/handler"
	"telegram-economy-bot/internal/service"
	"telegram-economy-bot/internal/shop"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot      *tele.Bot
	cfg      *config.Config
	accounts *service.AccountService
	access   *accessCache

	// Handlers
	accountHandler *handler.AccountHandler
	adminHandler   *handler.AdminHandler
	rankingHandler *handler.RankingHandler
	gameHandler    *handler.GameHandler
	duelHandler    *handler.DuelHandler
	quizHandler    *handler.QuizHandler
	shopHandler    *handler.ShopHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config          *config.Config
	AccountService  *service.AccountService
	AdminService    *service.AdminService
	IdentityService *service.IdentityService
	RankingService  *service.RankingService
	ShopService     *service.ShopService
	GameRegistry    *game.Registry
	Wager           *wager.Runner
	Duel            *duel.Resolver
	Quiz            *quiz.Engine
}

// NewTelegram creates the telebot client. It is created before the games
// so that their notifier can send through it.
func NewTelegram(cfg config.BotConfig) (*tele.Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	teleBot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Telegram handler error")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return teleBot, nil
}

// New registers middleware and handlers on teleBot.
func New(teleBot *tele.Bot, deps *Dependencies) *Bot {
	cfg := deps.Config
	b := &Bot{
		bot:      teleBot,
		cfg:      cfg,
		accounts: deps.AccountService,
		access:   newAccessCache(),
	}

	// Initialize handlers
	b.accountHandler = handler.NewAccountHandler(deps.AccountService, deps.GameRegistry, deps.Wager, cfg.Games.Quiz.DailyCap)
	b.adminHandler = handler.NewAdminHandler(deps.AdminService, deps.IdentityService)
	b.rankingHandler = handler.NewRankingHandler(deps.RankingService)
	b.gameHandler = handler.NewGameHandler(deps.Wager, deps.IdentityService)
	b.duelHandler = handler.NewDuelHandler(deps.Duel, deps.IdentityService)
	b.quizHandler = handler.NewQuizHandler(deps.Quiz, cfg.Games.Quiz.Timeout, cfg.Games.Quiz.DailyCap)
	b.shopHandler = handler.NewShopHandler(deps.ShopService)

	b.registerMiddleware()
	b.registerHandlers()
	return b
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg, b.access))
	b.bot.Use(LoggingMiddleware())
	b.bot.Use(MetricsMiddleware())
	b.bot.Use(EnsureUserMiddleware(b.accounts))
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	// Account handlers
	b.bot.Handle("/start", b.accountHandler.HandleStart)
	b.bot.Handle("/help", b.accountHandler.HandleStart)
	b.bot.Handle("/me", b.accountHandler.HandleMe)
	b.bot.Handle("/daily", b.accountHandler.HandleDaily)
	b.bot.Handle("/claimdaily", b.accountHandler.HandleClaimDaily)

	// Ranking handlers
	b.bot.Handle("/top", b.rankingHandler.HandleTop)
	b.bot.Handle("/topcoin", b.rankingHandler.HandleTopCoin)

	// Admin handlers (with admin middleware)
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/addcoin", b.adminHandler.HandleAddCoin)
	adminGroup.Handle("/addxp", b.adminHandler.HandleAddXP)

	// Wager games
	b.bot.Handle("/roll", b.gameHandler.HandleRoll)
	b.bot.Handle("/race", b.gameHandler.HandleRace)
	b.bot.Handle("/hunt", b.gameHandler.HandleHunt)
	b.bot.Handle("/steal", b.gameHandler.HandleSteal)
	b.bot.Handle("/taixiu", b.gameHandler.HandleTaiXiu)

	// Duel
	b.bot.Handle("/duel", b.duelHandler.HandleDuel)
	b.bot.Handle("/attack", b.duelHandler.HandleAttack)
	b.bot.Handle("/shield", b.duelHandler.HandleShield)
	b.bot.Handle("/dodge", b.duelHandler.HandleDodge)

	// Quiz
	b.bot.Handle("/quiz", b.quizHandler.HandleQuiz)
	b.bot.Handle(tele.OnText, b.quizHandler.HandleText)

	// Shop
	b.bot.Handle("/shop", b.shopHandler.HandleShop)
	b.bot.Handle("/buy", b.shopHandler.HandleBuy)
	b.bot.Handle("/rewards", b.shopHandler.HandleRewards)

	// Generic callback handler for tai xiu and shop buttons
	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes callbacks to appropriate handlers.
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	data := CallbackData(callback.Data)
	log.Debug().Str("data", data).Msg("Callback received")

	switch {
	case strings.HasPrefix(data, shop.CallbackShopBuy):
		return b.shopHandler.HandleShopCallback(c, data)
	case strings.HasPrefix(data, wager.CallbackPrefix):
		return b.gameHandler.HandleTaiXiuCallback(c, data)
	}
	return c.Respond()
}

// CallbackData strips the "\f" marker telebot puts in front of data built
// with ReplyMarkup.Data.
func CallbackData(raw string) string {
	return strings.TrimPrefix(raw, "\f")
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("bot", b.bot.Me.Username).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
