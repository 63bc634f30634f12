package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"gorm.io/gorm"

	"gamehub/internal/auth"
	"gamehub/internal/db"
	"gamehub/internal/logger"
	"gamehub/internal/model"
	"gamehub/internal/repository"
)

type seedConfig struct {
	MySQLDSN      string `env:"MYSQL_DSN,required"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL,required"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD,required"`
	AdminName     string `env:"SEED_ADMIN_NAME,default=Administrator"`
	LogLevel      string `env:"LOG_LEVEL,default=info"`
}

func main() {
	ctx := context.Background()

	var cfg seedConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)
	log.Info("starting seed")

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, db.PoolConfig{MaxOpenConns: 2})
	if err != nil {
		log.Error("connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Error("run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	created, err := seedAdmin(ctx, repository.NewUserRepository(gormDB), cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
	if err != nil {
		log.Error("seed admin", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("seed completed",
		slog.String("email", strings.ToLower(strings.TrimSpace(cfg.AdminEmail))),
		slog.Bool("created", created),
	)
}

// seedAdmin creates an active admin account, or promotes and reactivates an
// existing account with the same email. An existing password is kept.
func seedAdmin(ctx context.Context, repo repository.UserRepository, email, password, name string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 6 {
		return false, errors.New("admin email and a password of at least 6 characters are required")
	}

	existing, err := repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("check admin existence: %w", err)
	}

	if existing != nil {
		if err := repo.UpdateRole(ctx, existing.ID, model.RoleAdmin); err != nil {
			return false, fmt.Errorf("promote %s: %w", email, err)
		}
		if err := repo.UpdateStatus(ctx, existing.ID, model.StatusActive); err != nil {
			return false, fmt.Errorf("activate %s: %w", email, err)
		}
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	admin := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create %s: %w", email, err)
	}
	return true, nil
}
