// Command omgupl-server hosts encrypted pastes. It stores only ciphertext
// blobs; decryption keys live in URL fragments that never reach it.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/omgupl/omgupl/server"
	"github.com/omgupl/omgupl/storage"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	flags := pflag.NewFlagSet("omgupl-server", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "path to a YAML config file")
	verbose := flags.BoolP("verbose", "v", false, "enable debug logging")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	store, err := storage.Open(storage.Config{Path: cfg.DataDir, Logger: log})
	if err != nil {
		log.WithError(err).Fatal("Failed to open paste database")
	}
	defer store.Close()

	srv := server.New(store, cfg, log)
	if err := srv.SweepExpirations(); err != nil {
		log.WithError(err).Fatal("Failed to sweep expirations")
	}

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// SIGUSR1 dumps the active paste count, SIGINT/SIGTERM shut down.
	usr1 := make(chan os.Signal, 1)
	signal.Notify(usr1, syscall.SIGUSR1)
	go func() {
		for range usr1 {
			srv.LogActivePasteCount()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Info("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("Graceful shutdown failed")
		}
	}()

	log.WithField("addr", cfg.Listen).Info("Now serving")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("Server failed")
	}
}
