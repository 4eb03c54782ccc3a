package main

import (
	"context"
	"fmt"
	"os"

	"notes-sync-server/internal/app"
	"notes-sync-server/internal/cli"
	"notes-sync-server/internal/config"
	"notes-sync-server/internal/logger"
)

func main() {
	cmd := cli.NewRootCommand(connect)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}

func connect(ctx context.Context) (cli.Backend, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	// Logs go to stderr so structured output on stdout stays parseable.
	log := logger.NewWithOutput(os.Stderr, "notesctl", cfg.Logging.Level, "text")

	a, err := app.New(ctx, cfg, log, nil)
	if err != nil {
		return nil, nil, err
	}
	return a, a.Close, nil
}
