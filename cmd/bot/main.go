// Package main is the entry point for the matchday bot.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"matchday-bot/internal/bot"
	"matchday-bot/internal/config"
	"matchday-bot/internal/events"
	"matchday-bot/internal/game/verify"
	"matchday-bot/internal/metrics"
	"matchday-bot/internal/model"
	"matchday-bot/internal/outcome"
	"matchday-bot/internal/pkg/db"
	"matchday-bot/internal/pkg/lock"
	"matchday-bot/internal/repository"
	"matchday-bot/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rules, err := cfg.Rules.GameRules()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid game rules")
	}

	// Storage
	var (
		store   repository.StateStore
		journal service.Journal
		health  metrics.HealthFunc
	)
	switch cfg.Store.Kind {
	case config.StorePostgres:
		if err := repository.Migrate(cfg.Database.DSN()); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
		dbPool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer dbPool.Close()

		store = repository.NewPostgresStore(dbPool.Pool, cfg.Store.Key)
		journal = repository.NewJournalRepository(dbPool.Pool)
		health = dbPool.HealthCheck
	default:
		store = repository.NewFileStore(cfg.Store.Path)
	}
	log.Info().Str("kind", cfg.Store.Kind).Msg("State store ready")

	provider, err := newProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create outcome provider")
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create event publisher")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close event publisher")
		}
	}()

	gameMetrics := metrics.New()
	var metricsServer *http.Server
	if cfg.Metrics.Port != "" {
		metricsServer = gameMetrics.StartServer(cfg.Metrics.Port, health)
	}

	players := make([]service.Player, len(cfg.Players))
	for i, p := range cfg.Players {
		players[i] = service.Player{Handle: p.Handle, Name: p.Name}
	}

	matchdayService := service.NewMatchdayService(service.Dependencies{
		Store:            store,
		Schedule:         repository.NewFileSchedule(cfg.Schedule.Path),
		Provider:         provider,
		Evaluator:        verify.NewEvaluator(verify.WithAbsentPlayer(model.Resolution(cfg.Rules.AbsentPlayer))),
		Rules:            rules,
		MissingWagerLoss: cfg.Rules.MissingWagerLoss,
		Players:          players,
		Publisher:        publisher,
		Metrics:          gameMetrics,
		Journal:          journal,
		Locks:            lock.NewKeyLock(),
		LockKey:          cfg.Store.Key,
		LockTimeout:      cfg.Bot.LockTimeout,
	})
	if err := matchdayService.Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed participants")
	}
	standingsService := service.NewStandingsService(store, journal, rules)

	log.Info().
		Int("players", len(players)).
		Str("min_odds", rules.MinOdds.String()).
		Msg("Game ready")

	telegramBot, err := bot.New(&bot.Dependencies{
		Config:           cfg,
		MatchdayService:  matchdayService,
		StandingsService: standingsService,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go telegramBot.Start()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to stop metrics server")
		}
	}
	log.Info().Msg("Bot stopped gracefully")
}

// newProvider builds the outcome source: the statistics API when a base URL
// is set, otherwise a static outcomes file, optionally fronted by Redis.
func newProvider(cfg *config.Config) (outcome.Provider, error) {
	var provider outcome.Provider
	switch {
	case cfg.Provider.BaseURL != "":
		provider = outcome.NewHTTPProvider(cfg.Provider.BaseURL,
			outcome.WithAPIKey(cfg.Provider.APIKey),
			outcome.WithTimeout(cfg.Provider.Timeout),
			outcome.WithRateLimit(cfg.Provider.RatePerSecond, cfg.Provider.Burst),
		)
	case cfg.Provider.StaticPath != "":
		static, err := outcome.LoadStaticProvider(cfg.Provider.StaticPath)
		if err != nil {
			return nil, err
		}
		provider = static
	default:
		log.Warn().Msg("No outcome provider configured, only manual outcomes are available")
		return nil, nil
	}

	if cfg.Cache.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		provider = outcome.NewCachedProvider(provider, client, cfg.Cache.TTL)
	}
	return provider, nil
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	switch cfg.Events.Kind {
	case config.EventsNATS:
		return events.NewNATSPublisher(cfg.Events.URL, cfg.Events.Subject)
	case config.EventsKafka:
		return events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic), nil
	case config.EventsNone, "":
		return events.NoopPublisher{}, nil
	}
	return nil, fmt.Errorf("unknown events kind %q", cfg.Events.Kind)
}
