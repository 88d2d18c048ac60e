package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/budgetkeeper/internal/client/api"
	"github.com/iudanet/budgetkeeper/internal/client/auth"
	"github.com/iudanet/budgetkeeper/internal/client/cli"
	"github.com/iudanet/budgetkeeper/internal/client/iocli"
	"github.com/iudanet/budgetkeeper/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", envOr("BUDGET_SERVER", "http://localhost:8080"), "Server URL")
	dbPath := flag.String("db", envOr("BUDGET_CLIENT_DB", "budgetkeeper-client.db"), "Path to local session database")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Usage = func() { cli.PrintUsage(os.Stderr) }
	flag.Parse()

	if *showVersion {
		printVersion()
		return 0
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(os.Stderr)
		return 1
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	client := api.NewClient(*serverURL)
	app := cli.New(iocli.NewStdio(), auth.NewService(client, store, logger), client)

	if err := app.Run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUnknownCommand) {
			cli.PrintUsage(os.Stderr)
		}
		return 1
	}

	return 0
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func printVersion() {
	fmt.Printf("BudgetKeeper Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
