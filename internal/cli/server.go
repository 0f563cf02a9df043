package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"knowball-service/internal/app"
	"knowball-service/internal/config"
	"knowball-service/internal/domain"
	"knowball-service/internal/game"
	"knowball-service/internal/infra/memory"
	pginfra "knowball-service/internal/infra/postgres"
	redisinfra "knowball-service/internal/infra/redis"
	transport "knowball-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the game server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the trivia game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	// Question pool: postgres when configured, otherwise the built-in
	// fallback set; cached in redis when available, in-process otherwise.
	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(memory.FallbackQuestions())
	if pool != nil {
		loader = pginfra.NewQuestionLoader(pool)
	}

	questionTTL := config.DurationOr(cfg.Questions.TTL, 10*time.Minute)
	var source game.QuestionSource
	if redisClient != nil {
		source = redisinfra.NewQuestionSource(redisClient, loader, questionTTL)
	} else {
		source = memory.NewQuestionSource(loader, questionTTL)
	}

	var seen game.SeenStore
	if redisClient != nil {
		seenTTL := config.DurationOr(cfg.Redis.SeenTTL, 0)
		seen = redisinfra.NewSeenStore(redisClient, seenTTL)
	} else {
		seen = memory.NewSeenStore()
	}

	var sink app.ScoreSink = memory.NewScoreSink()
	if pool != nil {
		sink = pginfra.NewScoreSink(pool)
	}

	settings := gameSettings(cfg)
	assembler := game.NewAssembler(source, seen, settings.Quotas)
	service := app.NewGameService(memory.NewSessionStore(), assembler, sink, memory.FallbackQuestions(), settings)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting knowball service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func gameSettings(cfg config.Config) app.Settings {
	settings := app.DefaultSettings()
	quotas := domain.Quotas{
		Easy:   cfg.Game.EasyQuota,
		Medium: cfg.Game.MediumQuota,
		Hard:   cfg.Game.HardQuota,
	}
	if quotas.Total() > 0 {
		settings.Quotas = quotas
	}
	settings.TimeLimit = config.DurationOr(cfg.Game.TimeLimit, settings.TimeLimit)
	settings.RevealDelay = config.DurationOr(cfg.Game.RevealDelay, settings.RevealDelay)
	return settings
}
