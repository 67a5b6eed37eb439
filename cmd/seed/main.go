package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/alexhdezf18/finanzas-pro-check/internal/cli"
	"github.com/alexhdezf18/finanzas-pro-check/internal/config"
	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
	"github.com/alexhdezf18/finanzas-pro-check/internal/identity"
)

const (
	seedUserName  = "Admin"
	seedUserEmail = "admin@finanzas.com"
)

// Default starter categories for a fresh install.
var seedCategories = []core.Category{
	{Name: "Sueldo", Icon: "💰"},
	{Name: "Comida", Icon: "🍔"},
	{Name: "Carro", Icon: "🚗"},
	{Name: "Gastos Fijos", Icon: "🏠"},
	{Name: "Regalos", Icon: "🎁"},
	{Name: "Rifas", Icon: "🎟️"},
	{Name: "Salud/Personal", Icon: "💊"},
	{Name: "Otros Ingresos", Icon: "🪙"},
}

// Seeds the default user and categories. Safe to run repeatedly: existing
// rows are left alone.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := config.Load()
	if cfg.SQLiteDBPath == "" {
		logger.Error("SQLITE_DB_PATH must be set")
		os.Exit(1)
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "admin123"
		logger.Warn("SEED_PASSWORD not set, using the default password")
	}

	repo := cli.InitStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	auth := identity.NewService(repo, "seed-only", time.Hour)

	user, err := auth.Register(ctx, seedUserName, seedUserEmail, password)
	switch {
	case err == nil:
		logger.Info("Seed user created", "id", user.ID, "email", user.Email)
	case errors.Is(err, core.ErrDuplicateEmail):
		user, err = repo.GetUserByEmail(ctx, seedUserEmail)
		if err != nil {
			logger.Error("Failed to load existing seed user", "error", err)
			os.Exit(1)
		}
		logger.Info("Seed user already exists", "id", user.ID, "email", user.Email)
	default:
		logger.Error("Failed to create seed user", "error", err)
		os.Exit(1)
	}

	created := 0
	for _, c := range seedCategories {
		if _, err := repo.CreateCategory(ctx, user.ID, c); err != nil {
			if errors.Is(err, core.ErrDuplicateName) {
				continue
			}
			logger.Error("Failed to create category", "name", c.Name, "error", err)
			os.Exit(1)
		}
		created++
	}

	logger.Info("Seed completed", "categories_created", created, "categories_existing", len(seedCategories)-created)
}
