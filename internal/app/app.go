package app

import (
	"fmt"
	"reviewpromax/internal/cache"
	"reviewpromax/internal/client"
	"reviewpromax/internal/config"
	"reviewpromax/internal/repository"
	"reviewpromax/internal/server"
	"reviewpromax/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LoadConfig reads an optional .env file, then the process environment.
func LoadConfig() (*config.Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// App holds the wired dependency graph shared by the API and the CLI.
type App struct {
	DB       *gorm.DB
	Services server.Services
	redis    *redis.Client
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := client.InitDBClient(&cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &App{DB: db}

	tokens, locker := cache.NewMemoryTokenCache(), cache.NewMemoryLocker()
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = rdb
		tokens, locker = cache.NewRedisTokenCache(rdb), cache.NewRedisLocker(rdb)
	} else {
		log.Warn("REDIS_URL not set, using in-process token cache and sweep lock")
	}

	paypalClient := client.NewPaypalClient(&cfg.Paypal, tokens)
	chatClient := client.NewChatClient(&cfg.Chat)
	authAdminClient := client.NewAuthAdminClient(&cfg.Supabase)

	var braintreeClient client.BraintreeClient
	if cfg.BrainTree.Enabled() {
		braintreeClient = client.NewBraintreeClient(&cfg.BrainTree)
	} else {
		log.Info("braintree not configured, card checkout disabled")
	}

	paymentRepo := repository.NewPaymentRepository(db)
	planRepo := repository.NewPlanRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	userRepo := repository.NewUserRepository(db)
	creditor := repository.NewPlanCreditor(db, cfg.Credit.Mode)

	a.Services = server.Services{
		Paypal: service.NewPaypalService(
			paypalClient,
			paymentRepo,
			creditor,
			webhookEventRepo,
			locker,
			cfg.Redis.SweepLockTTL,
			log.Named("paypal"),
		),
		Checkout: service.NewCardCheckoutService(braintreeClient, paymentRepo, creditor, log.Named("braintree")),
		Chat:     service.NewChatService(chatClient, cfg.Chat.SystemPrompt, log.Named("chat")),
		User:     service.NewUserService(userRepo, authAdminClient, log.Named("user")),
		Account:  service.NewAccountService(paymentRepo, planRepo),
	}

	return a, nil
}

func (a *App) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
