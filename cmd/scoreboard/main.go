package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KaueAmbrosio/WebSiteEsporte/config"
	"github.com/KaueAmbrosio/WebSiteEsporte/server"
	"github.com/KaueAmbrosio/WebSiteEsporte/storage"
	"github.com/KaueAmbrosio/WebSiteEsporte/upstream"
)

var (
	// CLI flags
	configFilenameFlag string
	portFlag           int
	storageFlag        string
	staticDirFlag      string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set at build time
	version string
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "Path to config file")
	flag.IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	flag.StringVar(&storageFlag, "storage", "", "Cache storage: memory, sqlite:<file> or postgres:<dsn> (overrides config)")
	flag.StringVar(&staticDirFlag, "static", "", "Directory of the static site (overrides config)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	cfg, err := config.Load(configFilenameFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load config")
	}
	if portFlag > 0 {
		cfg.Port = portFlag
	}
	if storageFlag != "" {
		cfg.Storage = storageFlag
	}
	if staticDirFlag != "" {
		cfg.StaticDir = staticDirFlag
	}

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not open cache storage")
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	source := upstream.NewClient(upstream.Config{
		BaseURL:  cfg.BaseURL,
		APIKey:   cfg.APIKey,
		LeagueID: cfg.LeagueID,
		Season:   cfg.Season,
		Timeout:  cfg.Timeout,
	})
	srv := server.New(server.Config{
		Source:    source,
		Storage:   store,
		TTL:       cfg.CacheTTL,
		StaticDir: cfg.StaticDir,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().
		Str("league", cfg.LeagueID).
		Str("season", cfg.Season).
		Str("storage", cfg.Storage).
		Dur("ttl", cfg.CacheTTL).
		Msgf("Serving scoreboard on port %d", cfg.Port)
	if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
