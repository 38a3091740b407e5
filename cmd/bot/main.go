package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fishmarket-bot/internal/alarm"
	"fishmarket-bot/internal/config"
	"fishmarket-bot/internal/handler"
	"fishmarket-bot/internal/moltin"
	redisrepo "fishmarket-bot/internal/repository/redis"
	"fishmarket-bot/internal/service"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Fish Market Bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully")

	// Connect to session store with retries
	sessions, err := connectRedis(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to session store", zap.Error(err))
	}
	defer sessions.Close()

	logger.Info("Session store connection established")

	// Operator alarm channel: errors logged anywhere below are also
	// delivered to the operator chat.
	sink, err := alarm.NewTelegramSink(cfg.AlarmBotToken, cfg.AlarmChatID)
	if err != nil {
		logger.Fatal("Failed to create alarm sink", zap.Error(err))
	}
	logger = logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, alarm.NewCore(sink, zapcore.ErrorLevel))
	}))

	logger.Info("Operator alarm channel ready")

	// Commerce backend client
	client := moltin.NewClient(cfg.APIBaseURL, cfg.ClientID, cfg.ClientSecret)
	shopService := service.NewShopService(client)
	sessionRepo := redisrepo.NewSessionRepo(sessions)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	// Initialize handler
	h := handler.NewHandler(bot, shopService, sessionRepo, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	bot.Stop()

	logger.Info("Bot stopped gracefully")
}

// connectRedis connects to the session store with retries
func connectRedis(cfg *config.Config, logger *zap.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	maxRetries := 5
	retryDelay := 2 * time.Second

	var err error
	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = client.Ping(ctx).Err()
		cancel()

		if err == nil {
			return client, nil
		}

		logger.Warn("Failed to ping session store",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}

	client.Close()
	return nil, fmt.Errorf("failed to connect to session store after %d attempts: %w", maxRetries, err)
}
