// createuser adds an account from the command line.
//
// Usage:
//
//	go run ./cmd/createuser <role> <email> <password> [name]
//
// Roles: admin, supervisor, asesor, backoffice.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"winsales/internal/access"
	"winsales/internal/actions"
	"winsales/internal/config"
	"winsales/internal/db"
	"winsales/internal/forms"
	"winsales/internal/models"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "usage: createuser <role> <email> <password> [name]")
		os.Exit(2)
	}
	role, email, password := os.Args[1], strings.ToLower(strings.TrimSpace(os.Args[2])), os.Args[3]
	name := email
	if len(os.Args) > 4 {
		name = strings.Join(os.Args[4:], " ")
	}

	if !access.ValidRole(role) {
		fmt.Fprintf(os.Stderr, "invalid role %q\n", role)
		os.Exit(2)
	}
	if len([]rune(password)) < forms.MinPasswordLength {
		fmt.Fprintln(os.Stderr, "password must be at least 8 characters")
		os.Exit(2)
	}

	cfg := config.Load()
	logger, err := cfg.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()
	conn, err := db.Connect(ctx, cfg.DatabaseURL, db.Options{MaxOpenConns: 1})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	users := models.NewUserRepository(conn)
	if _, err := users.GetByEmail(ctx, email); err == nil {
		logger.Fatal("user already exists", zap.String("email", email))
	} else if !errors.Is(err, models.ErrNotFound) {
		logger.Fatal("failed to look up user", zap.Error(err))
	}

	hash, err := actions.HashPassword(password)
	if err != nil {
		logger.Fatal("failed to hash password", zap.Error(err))
	}
	id, err := users.Create(ctx, name, email, role, hash)
	if err != nil {
		logger.Fatal("failed to create user", zap.Error(err))
	}
	logger.Info("user created", zap.String("id", id), zap.String("email", email), zap.String("role", role))
}
