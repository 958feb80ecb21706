package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cld-events/bidsim-api/internal/client"
	"github.com/cld-events/bidsim-api/internal/client/cli"
)

const defaultServerURL = "http://localhost:5000"

func main() {
	serverURL := os.Getenv("BIDSIM_SERVER_URL")
	if serverURL == "" {
		serverURL = defaultServerURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(client.NewAPI(serverURL))
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
