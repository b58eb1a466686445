package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/resume-matcher-client/internal/config"
	"github.com/jrsteele09/resume-matcher-client/internal/logging"
	"github.com/jrsteele09/resume-matcher-client/internal/utils"
	"github.com/jrsteele09/resume-matcher-client/server"
	"github.com/jrsteele09/resume-matcher-client/token"
	"github.com/jrsteele09/resume-matcher-client/token/refresh"
	refreshrepofake "github.com/jrsteele09/resume-matcher-client/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/resume-matcher-client/users/repofake"
	"github.com/rs/zerolog/log"
)

var (
	configPath   = flag.String("config", "", "path to a YAML config file")
	seedEmail    = flag.String("seed-email", "", "account to create at startup (env SEED_EMAIL, default demo@<base url host>)")
	seedPassword = flag.String("seed-password", "", "password for the seeded account (env SEED_PASSWORD, generated when empty)")
	seedName     = flag.String("seed-name", "", "first name of the seeded account (env SEED_NAME)")
)

func main() {
	flag.Parse()
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "loading .env: %v\n", err)
	}

	for attempt := 1; ; attempt++ {
		err := run()
		if err == nil {
			break
		}
		log.Error().Err(err).Int("attempt", attempt).Msg("auth stub stopped with an error")
		if attempt >= 3 {
			os.Exit(1)
		}
		time.Sleep(1 * time.Second)
	}
	log.Info().Msg("auth stub stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger := logging.Setup(c.GetEnv(), os.Stdout)
	displayAppname(c.GetAppName() + " auth")

	userRepo := fakeuserrepo.NewFakeUserRepo()
	refreshManager := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), c)
	tokens := token.New(c, userRepo, refreshManager, token.NewHMACSigner(c.GetJWTSecret()), token.WithIssuer(c.GetBaseURL()))

	email := utils.FirstNonEmpty(*seedEmail, config.GetEnv("SEED_EMAIL", ""), server.EmailFromBaseURL("demo", c.GetBaseURL()))
	password := utils.FirstNonEmpty(*seedPassword, config.GetEnv("SEED_PASSWORD", ""))
	name := utils.FirstNonEmpty(*seedName, config.GetEnv("SEED_NAME", "Demo"))
	generated, err := server.SeedUser(userRepo, logger, email, password, name, time.Now())
	if err != nil {
		return err
	}
	if generated != "" {
		logger.Warn().Str("email", email).Str("password", generated).Msg("generated seed password; it will not be shown again")
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           server.New(c, userRepo, tokens, server.WithLogger(logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- listenAndServe(srv)
	}()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func listenAndServe(srv *http.Server) error {
	log.Info().Str("addr", srv.Addr).Msg("auth stub listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
