// Package main applies the embedded schema migrations.
//
// Usage:
//
//	migrate up
//	migrate down
//	migrate steps N
//	migrate version
//	migrate force V
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"slice/internal/infrastructure/config"
	"slice/internal/infrastructure/storage/postgres"
	"slice/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	ctx := logger.WithLogger(context.Background(), log)

	m, err := postgres.NewMigrator(cfg.Database.DSN)
	if err != nil {
		log.Fatalw("open migrator", "error", err)
	}
	defer func() { _ = m.Close() }()

	if err := run(ctx, m, os.Args[1], os.Args[2:]); err != nil {
		log.Errorw("migration failed", "command", os.Args[1], "error", err)
		_ = m.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, m *postgres.Migrator, command string, args []string) error {
	switch command {
	case "up":
		return m.Up(ctx)
	case "down":
		return m.Down(ctx)
	case "steps":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Steps(ctx, n)
	case "force":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(ctx, v)
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func intArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing numeric argument")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", args[0], err)
	}
	return n, nil
}

func printUsage() {
	fmt.Println("Usage: migrate <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up          apply all pending migrations")
	fmt.Println("  down        roll back all migrations")
	fmt.Println("  steps N     apply N migrations (negative rolls back)")
	fmt.Println("  version     print the applied version")
	fmt.Println("  force V     set the version without running migrations")
}
