package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-share-portal/auth"
	"github.com/jrsteele09/go-share-portal/carrier"
	"github.com/jrsteele09/go-share-portal/crm"
	"github.com/jrsteele09/go-share-portal/internal/config"
	"github.com/jrsteele09/go-share-portal/pdf"
	"github.com/jrsteele09/go-share-portal/proxy"
	"github.com/jrsteele09/go-share-portal/server"
	"github.com/jrsteele09/go-share-portal/shipment"
	"github.com/jrsteele09/go-share-portal/signedlink"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const restartDelay = 1 * time.Second

func main() {
	runUntilStopped(run, restartDelay)
	log.Info().Msg("Server stopped")
}

// runUntilStopped restarts run after a failure until it returns cleanly.
func runUntilStopped(run func() error, delay time.Duration) {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server, restarting")
			time.Sleep(delay)
		} else {
			break
		}
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := openRefreshStore(ctx, c)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close token store")
		}
	}()

	handler, err := newHandler(c, store)
	if err != nil {
		return err
	}

	server := &http.Server{Addr: c.GetPort(), Handler: handler}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(server) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

// newHandler wires the portal's clients into the HTTP server.
func newHandler(c config.Config, store refreshStore) (http.Handler, error) {
	httpClient := &http.Client{Timeout: c.GetHTTPTimeout()}

	linkSecret := c.GetLinkSecret()
	if linkSecret == "" {
		return nil, fmt.Errorf("PUBLIC_LINK_SECRET is required")
	}
	state, err := auth.NewStateSigner(linkSecret, auth.DefaultStateTTL)
	if err != nil {
		return nil, err
	}
	links, err := signedlink.New(linkSecret, signedlink.WithTTL(c.GetLinkTTL()))
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenManager(c, store, httpClient)
	crmClient := crm.NewClient(c, httpClient)
	carrierClient := carrier.NewClient(c.GetCarrierBaseURL(), carrier.NewTokenManager(c, httpClient), httpClient)
	shipments := shipment.NewService(crmClient, carrierClient, proxy.RefreshFor(tokens, c.GetPortalUserID()), c)

	return server.New(c, server.Dependencies{
		Tokens:    tokens,
		State:     state,
		Links:     links,
		CRM:       crmClient,
		Shipments: shipments,
		PDF:       pdf.NewProductListRenderer(pdf.DefaultTitle),
	})
}

// setupLogging writes human readable logs in DEV and JSON everywhere else.
func setupLogging(c config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	var out io.Writer = os.Stderr
	level := zerolog.InfoLevel
	if c.GetEnv() == "DEV" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("app", c.GetAppName()).Logger()
	zerolog.SetGlobalLevel(level)
	zerolog.DefaultContextLogger = &log.Logger
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
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
