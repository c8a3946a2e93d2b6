// Command gateway serves the course catalog and enrollments over the REST API the
// data layer talks to in live mode. Its dataset is the demo catalog, kept in the
// configured local store.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	echoapi "github.com/trezcool/coursepath/apps/gateway/echo"
	"github.com/trezcool/coursepath/core"
	"github.com/trezcool/coursepath/services/auth"
	logsvc "github.com/trezcool/coursepath/services/logger"
	"github.com/trezcool/coursepath/storage/localstore"
	"github.com/trezcool/coursepath/storage/mock"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "GATEWAY : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	store, err := localstore.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening %s store: %v", conf.Demo.Store, err), err)
	}
	defer func() {
		if err = store.Close(); err != nil {
			logger.Error("Failed to close store", err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()

	server := echoapi.NewServer(&echoapi.Options{
		Address:    conf.Server.Host,
		Debug:      conf.Debug,
		Backend:    mock.NewBackend(store, mock.WithIDPrefix("")),
		Issuer:     auth.NewIssuer(conf),
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
	})

	// =========================================================================
	// Start API Service

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("API listening on %s", conf.Server.Host))
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		if err != nil {
			logger.Error(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
