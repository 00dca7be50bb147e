/*
main.go - Application entry point

PURPOSE:
  Runs the period engine HTTP server, or answers period questions from the
  command line.

COMMANDS:
  serve     Start the HTTP API
  periods   Print the block periods of a span

STARTUP SEQUENCE (serve):
  1. Load config (defaults, then --config TOML file, then flags)
  2. Initialize logger and SQLite store
  3. Create API handler with dependencies
  4. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (shutdown_seconds, default 30s)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server serve --db ./data/periods.db

  # Run with in-memory database on another port
  ./server serve --db :memory: --port 3000

  # Chunk 2023 into quarters with a UK fiscal year
  ./server periods --start 2023-01-01 --end 2023-12-31 --code 3M

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration file format
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.OutOrStderr(), err)
		cancel()
		os.Exit(1)
	}
	cancel()
}
