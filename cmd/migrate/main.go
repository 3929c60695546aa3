package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"splitpay/config"
	logs "splitpay/internal/infra/log"
	"splitpay/internal/infra/persistence/migrations"
	"splitpay/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
)

// Supported subcommands:
// - up:     Apply all pending migrations
// - down:   Roll back the most recent migration
// - status: Print the applied state of every migration

func main() {
	upCmd := flag.NewFlagSet("up", flag.ExitOnError)
	downCmd := flag.NewFlagSet("down", flag.ExitOnError)
	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1], os.Args[2:], upCmd, downCmd, statusCmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, name string, args []string, cmds ...*flag.FlagSet) error {
	var selected *flag.FlagSet
	for _, cmd := range cmds {
		if cmd.Name() == name {
			selected = cmd
		}
	}
	if selected == nil {
		printUsage()

		return errors.Errorf("unknown subcommand %q", name)
	}
	if err := selected.Parse(args); err != nil {
		return errors.WithStack(err)
	}

	runner, closeDB, err := newRunner()
	if err != nil {
		return err
	}
	defer closeDB()

	switch name {
	case "up":
		return runner.Up(ctx)
	case "down":
		return runner.Down(ctx)
	default:
		return runner.Status(ctx)
	}
}

func newRunner() (*migrations.Runner, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return nil, nil, errors.Wrap(err, "create logger")
	}

	db, err := postgres.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, errors.Wrap(err, "get sql.DB from gorm")
	}

	runner, err := migrations.NewRunner(sqlDB, logger)
	if err != nil {
		_ = sqlDB.Close()

		return nil, nil, err
	}

	return runner, func() { _ = sqlDB.Close() }, nil
}

func printUsage() {
	fmt.Println("Usage: migrate <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up       Apply all pending migrations")
	fmt.Println("  down     Roll back the most recent migration")
	fmt.Println("  status   Show migration status")
}
