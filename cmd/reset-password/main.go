package main

import (
	"context"
	"log"

	"shopmall-api/internal/repository"
	"shopmall-api/pkg/config"
	"shopmall-api/pkg/database"
	"shopmall-api/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// resetTarget names the password account to reset
type resetTarget struct {
	Email    string `envconfig:"RESET_EMAIL" required:"true"`
	Password string `envconfig:"RESET_PASSWORD" required:"true"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	var target resetTarget
	if err := envconfig.Process("", &target); err != nil {
		log.Fatalf("usage: RESET_EMAIL=<email> RESET_PASSWORD=<password> reset-password: %v", err)
	}
	if len(target.Password) < 6 {
		log.Fatal("RESET_PASSWORD must be at least 6 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	store, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("invalid database configuration", zap.Error(err))
	}
	defer store.Close()
	if err := store.HealthCheck(context.Background()); err != nil {
		zlog.Fatal("database unavailable", zap.Error(err))
	}

	users := repository.NewUserRepo(store.DB)
	user, err := users.FindByEmail(target.Email)
	if err != nil {
		zlog.Fatal("user not found", zap.String("email", target.Email), zap.Error(err))
	}
	if user.IsSocial() {
		zlog.Fatal("social account has no password", zap.String("provider", string(*user.SocialProvider)))
	}

	if err := user.SetPassword(target.Password); err != nil {
		zlog.Fatal("failed to hash password", zap.Error(err))
	}
	if err := users.Update(user); err != nil {
		zlog.Fatal("failed to update password", zap.Error(err))
	}

	zlog.Info("password reset", zap.String("email", user.Email))
}
