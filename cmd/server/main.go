package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-learning-portal/internal/config"
	"github.com/jrsteele09/go-learning-portal/server"
	"github.com/jrsteele09/go-learning-portal/uistate"
)

const pruneInterval = time.Minute

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	if err := config.LoadDotEnv(config.GetEnv("ENV", "DEV")); err != nil {
		return err
	}
	c := config.New()
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	options, closePrefs, err := preferenceOptions(ctx, c)
	if err != nil {
		return err
	}
	defer closePrefs()

	portal, err := server.New(c, options...)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	go portal.RunPruner(ctx, pruneInterval)

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           portal,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(httpServer) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// preferenceOptions stores theme preferences in Redis when REDIS_ADDR is set.
func preferenceOptions(ctx context.Context, c config.Config) ([]server.Option, func(), error) {
	addr := c.GetRedisAddr()
	if addr == "" {
		log.Info().Msg("REDIS_ADDR not set; theme preferences kept in memory")
		return nil, func() {}, nil
	}
	client, err := uistate.DialRedis(ctx, addr, c.GetRedisPassword())
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("addr", addr).Msg("theme preferences stored in redis")
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("closing redis client")
		}
	}
	return []server.Option{server.WithPreferenceStore(uistate.NewRedisPreferenceStore(client))}, closeFn, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
