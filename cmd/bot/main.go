// Package main is the entry point for the Telegram economy bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"telegram-economy-bot/internal/bot"
	"telegram-economy-bot/internal/config"
	"telegram-economy-bot/internal/cooldown"
	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/game/duel"
	"telegram-economy-bot/internal/game/outcome"
	"telegram-economy-bot/internal/game/quiz"
	"telegram-economy-bot/internal/game/wager"
	"telegram-economy-bot/internal/httpapi"
	"telegram-economy-bot/internal/logging"
	"telegram-economy-bot/internal/metrics"
	"telegram-economy-bot/internal/pkg/db"
	"telegram-economy-bot/internal/pkg/lock"
	"telegram-economy-bot/internal/repository"
	"telegram-economy-bot/internal/service"
	"telegram-economy-bot/internal/shop"
)

// store is what the services need from either backend.
type store interface {
	service.UserStore
	service.RewardStore
	service.RankingStore
}

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read log configuration")
	}
	logging.Init(logCfg)

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]httpapi.Pinger{}
	loc := cfg.Location()
	periods := repository.PeriodsIn(loc)

	// Balance store
	var st store
	switch cfg.Database.Driver {
	case "memory":
		log.Warn().Msg("Using in-memory store, balances are lost on restart")
		st = repository.NewMemoryStore(cfg.Economy.InitialCoins).WithPeriods(periods)
	default:
		dbPool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer dbPool.Close()
		checks["postgres"] = dbPool
		st = repository.NewStore(dbPool.Pool, cfg.Economy.InitialCoins).WithPeriods(periods)
	}

	// Steal cooldown
	var stealGuard cooldown.Guard
	switch cfg.Cooldown.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		checks["redis"] = httpapi.PingerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		stealGuard = cooldown.NewRedisGuard(rdb, "steal", cfg.Games.Steal.Cooldown)
	default:
		stealGuard = cooldown.NewMemoryGuard(cfg.Games.Steal.Cooldown)
	}

	userLock := lock.NewUserLock()
	src := outcome.NewSource(outcome.NewSeed())

	teleBot, err := bot.NewTelegram(cfg.Bot)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}
	notifier := bot.NewNotifier(teleBot)

	// Games
	wagerCfg := wager.Config{
		RaceWinChance:      cfg.Games.Race.WinChance,
		HuntWinChance:      cfg.Games.Hunt.WinChance,
		HuntWinMultiplier:  mustDecimal("games.hunt.win_multiplier", cfg.Games.Hunt.WinMultiplier),
		HuntLossMultiplier: mustDecimal("games.hunt.loss_multiplier", cfg.Games.Hunt.LossMultiplier),
		StealSuccessChance: cfg.Games.Steal.SuccessChance,
		TaiXiuMultiplier:   mustDecimal("games.taixiu.multiplier", cfg.Games.TaiXiu.Multiplier),
		TaiXiuTimeout:      cfg.Games.TaiXiu.Timeout,
	}
	wagerRunner := wager.New(st, userLock, src, stealGuard, wagerCfg)
	defer wagerRunner.Close()

	duelResolver := duel.New(st, userLock, notifier, duel.Config{Timeout: cfg.Games.Duel.Timeout})
	defer duelResolver.Close()

	q := cfg.Games.Quiz
	quizEngine := quiz.New(st, userLock, notifier, src, quiz.Config{
		DailyCap:     q.DailyCap,
		GainXP:       q.GainXP,
		PenaltyXP:    q.PenaltyXP,
		PenaltyCoins: q.PenaltyCoins,
		Timeout:      q.Timeout,
		Grace:        q.Grace,
		Location:     loc,
	})
	defer quizEngine.Close()

	gameRegistry := game.NewRegistry()
	gameRegistry.MustRegister(
		wager.RollInfo, wager.RaceInfo, wager.HuntInfo, wager.StealInfo, wager.TaiXiuInfo,
		duel.Info, quiz.Info,
	)
	log.Info().
		Int("game_count", gameRegistry.Count()).
		Strs("games", gameRegistry.Commands()).
		Msg("Games registered")

	metrics.RegisterGauge("wager", wagerRunner.Live)
	metrics.RegisterGauge("duel", duelResolver.Live)
	metrics.RegisterGauge("quiz", quizEngine.Live)

	// Services
	accountService := service.NewAccountService(st, userLock, service.AccountConfig{
		DailyXP:            cfg.Daily.XP,
		DailyCoins:         cfg.Daily.Coins,
		QuestRequiredDayXP: cfg.Quest.RequiredDayXP,
		QuestBonusXP:       cfg.Quest.BonusXP,
		QuestBonusCoins:    cfg.Quest.BonusCoins,
		Location:           loc,
	})
	catalog := shop.NewCatalog(cfg.Shop.Items, cfg.Shop.RandomRewards)

	telegramBot := bot.New(teleBot, &bot.Dependencies{
		Config:          cfg,
		AccountService:  accountService,
		AdminService:    service.NewAdminService(st, userLock),
		IdentityService: service.NewIdentityService(st),
		RankingService:  service.NewRankingService(st),
		ShopService:     service.NewShopService(st, st, userLock, catalog, src),
		GameRegistry:    gameRegistry,
		Wager:           wagerRunner,
		Duel:            duelResolver,
		Quiz:            quizEngine,
	})

	if cfg.HTTP.Addr != "" {
		server := httpapi.NewServer(cfg.HTTP.Addr, httpapi.NewRouter(checks))
		go func() {
			if err := server.Run(ctx); err != nil {
				log.Error().Err(err).Msg("Ops HTTP server failed")
			}
		}()
	}

	go telegramBot.Start()

	<-ctx.Done()
	log.Info().Msg("Received shutdown signal")
	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

func mustDecimal(key, value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		log.Fatal().Err(err).Str("key", key).Msg("Invalid decimal in configuration")
	}
	return d
}
