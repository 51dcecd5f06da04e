package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"awareness-game/internal/userclient"
)

func main() {
	defaultServer := os.Getenv("AWARENESS_SERVER")
	if defaultServer == "" {
		defaultServer = "http://127.0.0.1:8000"
	}

	server := flag.String("server", defaultServer, "awareness service base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP timeout")
	limit := flag.Int("limit", 500, "maximum questions fetched per category")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := userclient.Run(ctx, os.Stdin, os.Stdout, userclient.Config{
		ServerURL:     *server,
		QuestionLimit: *limit,
		HTTPTimeout:   *timeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
