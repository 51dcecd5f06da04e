// Command awareness-import pulls questions from the Open Trivia Database into
// the question bank.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"awareness-game/internal/config"
	"awareness-game/internal/content"
	"awareness-game/internal/opentdb"
	"awareness-game/internal/store"
)

func main() {
	amount := flag.Int("amount", 10, "number of questions to fetch (max 50)")
	category := flag.String("category", "computers", "category name to store the questions under")
	sourceCategory := flag.Int("source-category", opentdb.CategoryComputers, "Open Trivia DB category id (0 for any)")
	difficulty := flag.String("difficulty", "", "easy, medium or hard (empty for any)")
	timeout := flag.Duration("timeout", 15*time.Second, "overall timeout")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gateway, err := store.Open(cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer gateway.Close()

	client := opentdb.NewClient(&http.Client{Timeout: *timeout})
	result, err := opentdb.Import(ctx, client, content.NewService(gateway), opentdb.Query{
		Amount:     *amount,
		Category:   *sourceCategory,
		Difficulty: *difficulty,
	}, *category, nil)
	if err != nil {
		log.Fatalf("import: %v", err)
	}

	log.Printf("imported %d questions into %q (%d skipped)", result.Created, *category, result.Skipped)
}
