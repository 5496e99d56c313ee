package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-analytics-embed/authflow"
	"github.com/jrsteele09/go-analytics-embed/embed"
	"github.com/jrsteele09/go-analytics-embed/industry"
	"github.com/jrsteele09/go-analytics-embed/internal/config"
	"github.com/jrsteele09/go-analytics-embed/salesforce"
	"github.com/jrsteele09/go-analytics-embed/server"
	"github.com/jrsteele09/go-analytics-embed/sessions"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if err := godotenv.Load(); err != nil {
		log.Printf(".env file not found, using process environment\n")
	}

	c := config.New()
	if err := config.Validate(c); err != nil {
		return err
	}
	if c.GetEnv() == "DEV" {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	displayAppname(c.GetAppName())

	resolver := industry.NewResolver(os.DirFS(c.GetTemplateFolder()))
	warmTemplates(resolver)

	authRequests := authflow.NewInMemoryRepo(c.GetAuthRequestExpiry())
	defer authRequests.Close()

	sessionRepo := sessions.NewInMemoryRepo(c.GetMaxSessionAge(), c.GetSessionIdleTimeout())
	upstream := salesforce.NewClient(c)
	sessionManager := sessions.NewManager(sessionRepo, upstream, c)
	gateway := embed.NewGateway(embed.NewTokenSigner(c), sessionManager, resolver, server.DeploymentOverrides(c))

	srv := &http.Server{
		Addr:    c.GetPort(),
		Handler: server.New(c, resolver, authRequests, sessionManager, gateway, upstream),
	}
	go listenAndServe(srv)
	waitForStopSignal()
	returnError = shutdown(srv)
	return returnError
}

// warmTemplates loads every configured industry up front so broken
// templates surface at startup. A bad template disables only its own
// industry; the rest of the service keeps running.
func warmTemplates(resolver *industry.Resolver) {
	industries, err := resolver.List()
	if err != nil {
		zlog.Warn().Err(err).Msg("Could not enumerate industry templates")
		return
	}
	for _, id := range industries {
		if _, err := resolver.Load(id); err != nil {
			zlog.Error().Str("industry", id).Err(err).Msg("Industry template failed to load; industry disabled")
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
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
