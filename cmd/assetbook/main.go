package main

import (
	"context"
	"time"

	assethandler "assetbook/internal/assets/handler"
	assetrepository "assetbook/internal/assets/repository"
	assetservice "assetbook/internal/assets/service"
	assetvalidator "assetbook/internal/assets/validator"
	authhandler "assetbook/internal/auth/handler"
	authservice "assetbook/internal/auth/service"
	"assetbook/internal/realtime"
	usagehandler "assetbook/internal/usages/handler"
	usagerepository "assetbook/internal/usages/repository"
	usageservice "assetbook/internal/usages/service"
	usagevalidator "assetbook/internal/usages/validator"
	userhandler "assetbook/internal/users/handler"
	userrepository "assetbook/internal/users/repository"
	userservice "assetbook/internal/users/service"
	uservalidator "assetbook/internal/users/validator"
	"assetbook/pkg/app"
	"assetbook/pkg/config"
)

const ServiceName = "assetbook"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Assetbook service")

	// Repositories
	usageRepo := usagerepository.NewMongoUsageRepository(cfg)
	lockRepo := usagerepository.NewUsageLockRepository(cfg)
	assetRepo := assetrepository.NewMongoAssetRepository(cfg)
	userRepo := userrepository.NewMongoUserRepository(cfg)

	ensureIndexes(cfg, lockRepo, userRepo)

	// Realtime fan-out
	hub := realtime.NewHub(cfg.Log)
	feed := initChangeFeed(cfg)
	notifier := realtime.NewNotifier(hub, feed, cfg.NotifyBuffer, cfg.Log)

	// Services
	assetService := assetservice.NewAssetService(assetRepo, assetvalidator.NewAssetValidator(cfg.Log), cfg)
	userService := userservice.NewUserService(userRepo, uservalidator.NewUserValidator(cfg.Log), cfg)
	usageService := usageservice.NewUsageService(
		usageRepo,
		lockRepo,
		assetService,
		userService,
		usagevalidator.NewUsageValidator(cfg.Log),
		notifier,
		cfg,
	)
	authService := authservice.NewAuthService(userRepo, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication(cfg)
	serverApp.SetRealtime(notifier, feed)
	serverApp.SetApp(
		authhandler.NewAuthHandler(authService, cfg.Log),
		realtime.NewWSHandler(hub, cfg, cfg.Log),
		usagehandler.NewUsageHandler(usageService, cfg.Log),
		assethandler.NewAssetHandler(assetService, cfg.Log),
		userhandler.NewUserHandler(userService, cfg.Log),
	)
	serverApp.Run()
}

func ensureIndexes(cfg *config.Config, lockRepo usagerepository.UsageLockRepository, userRepo userrepository.UserRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := lockRepo.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to create usage lock indexes", "error", err)
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to create user indexes", "error", err)
	}
}

func initChangeFeed(cfg *config.Config) *realtime.ChangeFeed {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Change feed disabled, no Kafka brokers configured")
		return nil
	}

	feed, err := realtime.NewChangeFeed(cfg.KafkaBrokers, cfg.UsageChangeTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize change feed", "error", err)
	}

	cfg.Log.Info("Change feed enabled", "topic", cfg.UsageChangeTopic, "brokers", cfg.KafkaBrokers)
	return feed
}
