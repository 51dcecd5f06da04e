package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"awareness-game/internal/attempt"
	"awareness-game/internal/config"
	"awareness-game/internal/content"
	"awareness-game/internal/httpapi"
	"awareness-game/internal/identity"
	"awareness-game/internal/jobs"
	"awareness-game/internal/progress"
	"awareness-game/internal/store"
)

const shutdownGrace = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	flag.Parse()

	// An unconfigured or unreachable store leaves gateway nil; persistence
	// routes then answer 500 and /test reports the state.
	var (
		gateway *store.Gateway
		openErr error
	)
	if cfg.DatabaseConfigured() {
		gateway, openErr = store.Open(cfg.DatabaseURL, cfg.DatabaseName)
		if openErr != nil {
			log.Printf("database unavailable: %v", openErr)
			gateway = nil
		} else {
			log.Printf("connected to %s database %q", gateway.Dialect(), cfg.DatabaseName)
		}
	} else {
		log.Println("DATABASE_URL or DATABASE_NAME not set; running without persistence")
	}
	defer gateway.Close()

	users := identity.NewService(gateway, cfg.SessionTTL)
	questions := content.NewService(gateway)
	aggregates := progress.NewService(gateway, users)
	attempts := attempt.NewService(gateway, questions, users, aggregates)

	if gateway != nil {
		scheduler := jobs.NewScheduler(time.UTC)
		err := jobs.Register(scheduler, jobs.Intervals{
			SessionPurge: cfg.SessionPurgeInterval,
			Reconcile:    cfg.ReconcileInterval,
		}, users, aggregates)
		if err != nil {
			log.Fatalf("schedule jobs: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	router := httpapi.NewRouter(httpapi.Services{
		Identity: users,
		Content:  questions,
		Attempts: attempts,
		Progress: aggregates,
		Database: gateway,
	}, httpapi.Diagnostics{
		DatabaseURLSet:  cfg.DatabaseURL != "",
		DatabaseNameSet: cfg.DatabaseName != "",
		OpenError:       openErr,
	}, httpapi.Options{
		RequestTimeout: cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Printf("listen: %v", err)
		return
	}

	log.Printf("awareness-service listening on %s", listener.Addr())
	if err := serve(ctx, server, listener, shutdownGrace); err != nil {
		log.Printf("server: %v", err)
	}
	log.Println("Shutdown complete.")
}

// serve handles requests until ctx is cancelled and returns only after
// Shutdown has drained in-flight requests, so deferred closes run last.
func serve(ctx context.Context, server *http.Server, listener net.Listener, grace time.Duration) error {
	drained := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		drained <- server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-drained
}
