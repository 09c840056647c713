// Command relayd runs the rendezvous relay server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"rendezvous/internal/server"
)

func main() {
	var addr string
	pflag.StringVarP(&addr, "addr", "a", ":8080", "address to listen on")
	pflag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(addr, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("relay exited", "err", err)
		os.Exit(1)
	}
}
