// Command coursepath browses the course catalog and manages enrollments from the terminal.
// It talks to the course gateway and falls back to the demo dataset when the gateway
// cannot be reached.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/coursepath/core"
	"github.com/trezcool/coursepath/core/course"
	"github.com/trezcool/coursepath/services/auth"
	logsvc "github.com/trezcool/coursepath/services/logger"
	"github.com/trezcool/coursepath/storage/localstore"
	"github.com/trezcool/coursepath/storage/mock"
	"github.com/trezcool/coursepath/storage/remote"
)

func main() {
	os.Exit(start())
}

func start() int {
	ctx := context.Background()
	conf := core.NewConfig()

	logger, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Printf("setting up logger: %v", err)
		return 1
	}
	defer logger.Sync()

	store, err := localstore.Open(ctx, conf)
	if err != nil {
		logger.Error(fmt.Sprintf("opening %s store", conf.Demo.Store), err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close store", err)
		}
	}()

	// without a configured token, act as the requested student with a locally minted one
	issuer := auth.NewIssuer(conf)
	gateway := remote.NewBackendFromConfig(conf)
	if conf.Gateway.Token == "" {
		gateway = remote.NewBackend(remote.Options{
			BaseURL: conf.Gateway.BaseURL,
			Timeout: conf.Gateway.Timeout,
			Token:   issuer.Token,
		})
	}

	validate, translator := core.NewValidator()
	cli := commandLine{
		data: course.NewFacade(course.FacadeDeps{
			Gateway:      gateway,
			Demo:         mock.NewBackend(store),
			ProbeTimeout: conf.Gateway.ProbeTimeout,
			Validate:     validate,
			Translator:   translator,
			Logger:       logger,
		}),
		issuer:   issuer,
		out:      os.Stdout,
		readFile: os.ReadFile,
	}
	if err := cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", describe(err))
		}
		return 1
	}
	return 0
}

// describe renders err for the terminal.
func describe(err error) string {
	switch core.KindOf(err) {
	case core.KindConnectivity:
		return "the course service is unreachable, please try again later (" + err.Error() + ")"
	case core.KindValidation:
		return "invalid data: " + err.Error()
	default:
		return err.Error()
	}
}
