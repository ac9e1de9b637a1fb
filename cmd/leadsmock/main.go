// Command leadsmock serves a JSON fixture as the employee leads endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/leads/internal/logging"
	"github.com/Makepad-fr/leads/internal/mockserver"
	"github.com/Makepad-fr/leads/internal/store/jsonstore"
)

func main() {
	addr := flag.String("addr", ":3000", "listen address")
	fixture := flag.String("fixture", "", "JSON file with the lead array (default ./leads.json)")
	fail := flag.Int("fail", 0, "answer the leads endpoint with this HTTP status")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	logging.Setup(os.Stderr, *debug)
	logger := log.WithField("component", "leadsmock")

	path, err := jsonstore.Resolve(*fixture)
	if err != nil {
		logger.WithError(err).Fatal("resolve fixture")
	}
	srv, err := mockserver.New(mockserver.Options{
		Fixture:    path,
		FailStatus: *fail,
		Logger:     logger,
		Registry:   prometheus.NewRegistry(),
	})
	if err != nil {
		logger.WithError(err).Fatal("load fixture")
	}

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, os.Interrupt, syscall.SIGTERM)
	go func() {
		for s := range sig {
			if s == syscall.SIGHUP {
				if err := srv.Reload(); err != nil {
					logger.WithError(err).Error("reload fixture")
				} else {
					logger.Info("fixture reloaded")
				}
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := httpSrv.Shutdown(ctx); err != nil {
				logger.WithError(err).Error("shutdown")
			}
			cancel()
			return
		}
	}()

	logger.WithFields(log.Fields{"addr": *addr, "path": mockserver.LeadsPath}).Info("serving leads")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("listen")
	}
}
