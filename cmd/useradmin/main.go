// Command useradmin creates an API account from the environment. It reads
// TASKDECK_ADMIN_USERNAME and TASKDECK_ADMIN_PASSWORD, hashes the password
// with bcrypt and inserts the account, skipping creation when the username
// already exists.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/taskdeck/taskdeck-api/internal/config"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/platform/logger"
	"github.com/taskdeck/taskdeck-api/internal/platform/postgres"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

func main() {
	email := flag.String("email", "", "optional email for the new account")
	flag.Parse()

	if err := run(*email); err != nil {
		fmt.Fprintf(os.Stderr, "useradmin: %v\n", err)
		os.Exit(1)
	}
}

func run(email string) error {
	username := os.Getenv("TASKDECK_ADMIN_USERNAME")
	password := os.Getenv("TASKDECK_ADMIN_PASSWORD")
	if username == "" || password == "" {
		return errors.New("TASKDECK_ADMIN_USERNAME and TASKDECK_ADMIN_PASSWORD must be set")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Error closing database connection", "error", closeErr)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	accounts := postgres.NewPostgresAccountStore(db, log)

	if _, err := accounts.GetByUsername(ctx, username); err == nil {
		fmt.Printf("Account %q already exists.\n", username)
		return nil
	} else if !errors.Is(err, store.ErrAccountNotFound) {
		return fmt.Errorf("failed to look up account: %w", err)
	}

	hash, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	account, err := domain.NewAccount(username, hash, email)
	if err != nil {
		return fmt.Errorf("invalid account data: %w", err)
	}

	if err := accounts.Create(ctx, account); err != nil {
		// A concurrent run may have won the race; treat that as created.
		if errors.Is(err, store.ErrUsernameExists) {
			fmt.Printf("Account %q already exists.\n", username)
			return nil
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	fmt.Printf("Created account: %s\n", username)
	return nil
}
