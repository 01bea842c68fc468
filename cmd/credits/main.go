package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-writing-api/internal/database"
	"github.com/noah-isme/gema-writing-api/internal/repository"
)

func main() {
	fs := flag.NewFlagSet("writing-credits", flag.ExitOnError)
	var (
		_           = fs.String("config", "", "config file (optional), json format")
		databaseURL = fs.String("database-url", "", "postgres dsn of the writing store")
		userID      = fs.Uint("user", 0, "user whose ledger is inspected or topped up")
		amount      = fs.Int("amount", 0, "credits to grant; leave at 0 to print the balance")
		timeout     = fs.Duration("timeout", 10*time.Second, "deadline for the ledger operation")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.JSONParser),
		ff.WithEnvVarPrefix("WRITING"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "invalid arguments: %s\n", err)
		os.Exit(2)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *userID == 0 {
		logger.Fatal().Msg("-user is required")
	}
	if *amount < 0 {
		logger.Fatal().Int("amount", *amount).Msg("-amount must not be negative")
	}

	db, err := database.ConnectPostgres(*databaseURL, false)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	credits := repository.NewCreditRepository(db)
	user := uint(*userID)

	if *amount == 0 {
		balance, err := credits.GetByUser(ctx, user)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Fatal().Uint("user_id", user).Msg("user has no credit ledger")
		}
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to read balance")
		}
		fmt.Printf("user %d: %d credits\n", balance.UserID, balance.AvailableCredits)
		return
	}

	balance, err := credits.Grant(ctx, user, *amount)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to grant credits")
	}
	logger.Info().
		Uint("user_id", balance.UserID).
		Int("granted", *amount).
		Int("available_credits", balance.AvailableCredits).
		Msg("credits granted")
}
