// Command server hosts a single grid duel over plain websockets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gridduel/internal/app"
	"gridduel/internal/config"
	"gridduel/internal/domain"
	"gridduel/internal/logging"
	"gridduel/internal/ports/wsserver"
)

const tokenIssuer = "gridduel"

func main() {
	addr := flag.String("addr", getenv("GRIDDUEL_ADDR", ":8765"), "listen address")
	configPath := flag.String("config", getenv("GRIDDUEL_CONFIG", "data/game_config.json"), "path to the game config JSON")
	seatSecret := flag.String("seat-secret", getenv("GRIDDUEL_SEAT_SECRET", ""), "HS256 secret; when set, seats require ?token=")
	allowRedeploy := flag.Bool("allow-redeploy", getenb("GRIDDUEL_ALLOW_REDEPLOY", false), "let a player deploy again, resetting their pieces")
	debug := flag.Bool("debug", getenb("GRIDDUEL_DEBUG", false), "development logging")
	mintToken := flag.String("mint-token", "", "print a seat token for A or B, valid for any duel, and exit")
	flag.Parse()

	logger, err := logging.New(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := config.LoadGameConfig(*configPath); err != nil {
		logger.Error("Failed to load game config: %v", err)
		os.Exit(1)
	}
	cfg := config.GetGameConfig()
	if *allowRedeploy {
		cfg.AllowRedeploy = true
	}

	tokens := app.NewSeatTokens(*seatSecret, tokenIssuer, time.Duration(cfg.SeatTokenTTLSeconds)*time.Second)

	if *mintToken != "" {
		if err := printToken(tokens, *mintToken); err != nil {
			logger.Error("mint-token: %v", err)
			os.Exit(1)
		}
		return
	}

	svc := app.NewService(domain.Options{AllowRedeploy: cfg.AllowRedeploy})
	router := wsserver.New(svc, tokens, logger.WithField("component", "router"))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Shutdown: %v", err)
		}
	}()

	logger.Info("Listening on %s (redeploy=%t, tokens=%t, duel=%s)", *addr, cfg.AllowRedeploy, tokens != nil, router.MatchID())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func printToken(tokens *app.SeatTokens, seat string) error {
	if tokens == nil {
		return errors.New("a seat secret is required")
	}
	owner, err := domain.ParseOwner(seat)
	if err != nil {
		return err
	}
	// No match id: the duel id is only known once the server runs.
	token, err := tokens.Issue("", owner)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}
