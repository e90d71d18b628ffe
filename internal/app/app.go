// Package app assembles the hosting bot: storage, sessions, services,
// event publishing and the Telegram runtime.
package app

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	"github.com/hostline/hostbot/core/bootstrap"
	"github.com/hostline/hostbot/core/logger"
	coretelegram "github.com/hostline/hostbot/core/telegram"
	"github.com/hostline/hostbot/internal/bot"
	"github.com/hostline/hostbot/internal/bot/session"
	"github.com/hostline/hostbot/internal/events"
	"github.com/hostline/hostbot/internal/payments"
	"github.com/hostline/hostbot/internal/service/accounts"
	"github.com/hostline/hostbot/internal/service/catalog"
	"github.com/hostline/hostbot/internal/service/orders"
	"github.com/hostline/hostbot/internal/storage"
)

// App carries the assembled application.
type App struct {
	cfg       *Config
	db        *sqlx.DB
	sessions  session.Manager
	publisher events.Publisher
	redis     *redis.Client
	bot       *bot.Bot
}

// txStore adapts the concrete storage transactions to the order workflow.
type txStore struct {
	s *storage.Store
}

func (a txStore) WithinTx(ctx context.Context, fn func(orders.Tx) error) error {
	return a.s.WithinTx(ctx, func(tx *storage.Tx) error {
		return fn(tx)
	})
}

// Bootstrap initializes infrastructure and wires the services.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := storage.New(res.DB)

	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	var (
		sessions    session.Manager
		redisClient *redis.Client
	)
	if cfg.Session.Backend == SessionBackendRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = res.DB.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		sessions = session.NewRedisManager(redisClient, ttl)
	} else {
		sessions = session.NewMemoryManager(ttl, cfg.Session.Max)
	}
	logger.SVCSessions.Info("session store ready",
		slog.String("event", "init"),
		slog.String("mode", cfg.Session.Backend),
	)

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			_ = res.DB.Close()
			return nil, err
		}
		publisher = kafkaPub
	}

	if cfg.Bot.SeedDemoData {
		seeder := bootstrap.SeederFunc(func(ctx context.Context, st bootstrap.Storage) error {
			db, ok := st.(*sqlx.DB)
			if !ok {
				return fmt.Errorf("seed: unexpected storage type %T", st)
			}
			return SeedDemoData(ctx, db)
		})
		if err := seeder.Seed(context.Background(), res.DB); err != nil {
			logger.SEED.Warn("demo seed failed",
				slog.String("event", "seed"),
				slog.String("err", err.Error()),
			)
		}
	}

	b := bot.New(
		sessions,
		accounts.New(store),
		catalog.New(store),
		orders.New(txStore{s: store}, publisher),
		payments.ReferenceGenerator{},
		cfg.Bot.SupportURL,
	)

	return &App{
		cfg:       cfg,
		db:        res.DB,
		sessions:  sessions,
		publisher: publisher,
		redis:     redisClient,
		bot:       b,
	}, nil
}

// TelegramRunOptions builds the runtime wiring for the chassis runner.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.bot.Register(reg)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      a.bot.Routes(reg, a.cfg.Telegram.AdminID),
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.Close()
			return nil
		},
	}, nil
}

// Close releases infrastructure owned by the app.
func (a *App) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			logger.EVT.Warn("publisher close failed",
				slog.String("event", "shutdown"),
				slog.String("err", err.Error()),
			)
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
