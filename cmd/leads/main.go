package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/leads/internal/auth"
	"github.com/Makepad-fr/leads/internal/cli"
	"github.com/Makepad-fr/leads/internal/client"
	"github.com/Makepad-fr/leads/internal/config"
	"github.com/Makepad-fr/leads/internal/logging"
	"github.com/Makepad-fr/leads/internal/metrics"
	"github.com/Makepad-fr/leads/internal/store/leadstore"
	"github.com/Makepad-fr/leads/internal/tui"
	"github.com/Makepad-fr/leads/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	group := flag.Bool("group", false, "group output by status")
	theme := flag.String("theme", "", "classic, neon or mono (overrides LEADS_THEME)")
	noColor := flag.Bool("no-color", false, "disable ANSI colors")
	debug := flag.Bool("debug", false, "debug logging (overrides LEADS_DEBUG)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		ui.Fail(err.Error())
		os.Exit(2)
	}
	if *debug {
		cfg.Debug = true
		if cfg.LogFile == "" {
			cfg.LogFile = config.DefaultLogFile
		}
	}
	if *theme != "" {
		cfg.Theme = *theme
	}

	logging.Setup(os.Stderr, cfg.Debug)
	ui.SetTheme(cfg.Theme)
	if *noColor {
		ui.SetColorForcing(false, true)
	}

	creds, err := auth.Default()
	if err != nil {
		ui.Fail(err.Error())
		os.Exit(1)
	}
	token := ""
	if ti, err := creds.Get(cfg.Token); err != nil {
		log.WithError(err).Warn("could not read saved credentials")
	} else if ti != nil {
		token = ti.Token
	}

	reg := prometheus.NewRegistry()
	c := client.New(client.Options{
		BaseURL:  cfg.BaseURL,
		Endpoint: cfg.Endpoint,
		Token:    token,
		Timeout:  cfg.Timeout,
		Logger:   log.WithField("component", "client"),
		Metrics:  metrics.NewFetch(reg),
	})
	store := leadstore.New(c, leadstore.WithLogger(log.WithField("component", "leadstore")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := cli.Run(ctx, args, cli.Options{
		Group:  *group,
		Config: cfg,
		Store:  store,
		Creds:  creds,
		RunTUI: func(ctx context.Context, s *leadstore.Store) error {
			// stderr belongs to the alt screen while the TUI runs
			closeLog, err := logging.SetupFile(cfg.LogFile, cfg.Debug)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeLog()
				logging.Setup(os.Stderr, cfg.Debug)
			}()
			return tui.Run(ctx, s)
		},
	})
	if cfg.Debug {
		if err := metrics.Write(os.Stderr, reg); err != nil {
			log.WithError(err).Debug("write fetch metrics")
		}
	}
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	stop()
	os.Exit(code)
}
