package main

import (
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"

	"chat-presence/internal/config"
	"chat-presence/internal/database"
	"chat-presence/internal/directory"
)

type seedUser struct {
	name     string
	email    string
	password string
	role     string
}

// Seeds the user directory with an admin and a handful of test users.
// Intended for local development only.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresConnection(cfg.Database.URI)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	repo := directory.NewUserRepository(db)

	seeds := []seedUser{
		{name: "Admin", email: "admin@example.com", password: "admin123", role: "Admin"},
		{name: "Alice", email: "alice@example.com", password: "password1", role: "User"},
		{name: "Bob", email: "bob@example.com", password: "password1", role: "User"},
		{name: "Carol", email: "carol@example.com", password: "password1", role: "User"},
	}

	for _, seed := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("failed to hash password", "email", seed.email, "error", err)
			os.Exit(1)
		}

		user := &directory.User{
			Name:         seed.name,
			Email:        seed.email,
			PasswordHash: string(hash),
			Role:         seed.role,
		}
		if err := repo.Create(user); err != nil {
			logger.Warn("skipping user", "email", seed.email, "error", err)
			continue
		}
		logger.Info("created user", "email", seed.email, "role", seed.role)
	}

	logger.Info("seeding complete")
}
