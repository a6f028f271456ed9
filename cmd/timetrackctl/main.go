package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/monocle-dev/timetrack/db"
	"github.com/monocle-dev/timetrack/internal/auth"
	"github.com/monocle-dev/timetrack/internal/config"
	"github.com/monocle-dev/timetrack/internal/logger"
	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/monocle-dev/timetrack/internal/serializers"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "migrate":
		err = migrate()
	case "createstaff":
		err = createStaff(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: timetrackctl <command> [flags]

Commands:
  migrate                                        apply database migrations
  createstaff -username U -email E -password P   create a staff account
  help                                           show this message`)
}

func connect() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Keep command output readable; only problems are logged.
	slog.SetDefault(logger.New(os.Stderr, "warn"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.ConnectDatabase(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func migrate() error {
	cfg, err := connect()
	if err != nil {
		return err
	}

	if err := db.MigrateDatabase(db.DB, cfg.DatabaseDriver); err != nil {
		return err
	}

	fmt.Println("migrations applied")
	return nil
}

func createStaff(args []string) error {
	fs := flag.NewFlagSet("createstaff", flag.ExitOnError)
	username := fs.String("username", "", "login name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := connect(); err != nil {
		return err
	}

	fields, err := serializers.ValidateRegistration(db.DB, serializers.RegisterInput{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		var fieldErrs serializers.FieldErrors
		if errors.As(err, &fieldErrs) {
			printFieldErrors(fieldErrs)
			return errors.New("invalid staff account")
		}
		return err
	}

	hash, err := auth.HashPassword(fields.Password)
	if err != nil {
		return err
	}

	user := models.User{
		Username:     fields.Username,
		Email:        fields.Email,
		PasswordHash: hash,
		IsStaff:      true,
		DateJoined:   time.Now().UTC(),
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("staff user %q created with id %d\n", user.Username, user.ID)
	return nil
}

func printFieldErrors(errs serializers.FieldErrors) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, msg := range errs[k] {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", k, msg)
		}
	}
}
