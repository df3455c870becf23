package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KaueAmbrosio/WebSiteEsporte/client"
	"github.com/KaueAmbrosio/WebSiteEsporte/config"
	"github.com/KaueAmbrosio/WebSiteEsporte/fallback"
	"github.com/KaueAmbrosio/WebSiteEsporte/storage"
	"github.com/KaueAmbrosio/WebSiteEsporte/upstream"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	configFilenameFlag string
	dbFilenameFlag     string
	resetFlag          bool
	verbosityTraceFlag bool
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "Path to config file")
	flag.StringVar(&dbFilenameFlag, "db", "scoreboard-local.db", "Local storage file")
	flag.BoolVar(&resetFlag, "reset", false, "Discard the local match snapshot and edits first")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [flags] <page> [args]

Pages:
  home
  matches
  match <id>
  standings
  teams
  admin-score <id> <home> <away> <status>
  admin-event <id> <text>

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	// log to stderr so that stdout carries only page data
	logLevel := zerolog.InfoLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}
	log.Logger = log.Level(logLevel).Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(configFilenameFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load config")
	}
	store, err := storage.NewSQLiteStorage(dbFilenameFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not open local storage")
	}
	defer store.Close()

	if resetFlag {
		if err := fallback.New(store, nil).Clear(); err != nil {
			log.Fatal().Err(err).Msg("Could not reset local data")
		}
	}

	source := upstream.NewClient(upstream.Config{
		BaseURL:  cfg.BaseURL,
		APIKey:   cfg.APIKey,
		LeagueID: cfg.LeagueID,
		Season:   cfg.Season,
		Timeout:  cfg.Timeout,
	})
	app := client.New(source, store, client.Config{TTL: cfg.CacheTTL})
	defer app.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page, err := render(ctx, app, flag.Arg(0), flag.Args()[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, client.ErrorPanel(err))
		app.Wait()
		store.Close()
		os.Exit(1)
	}
	out, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Could not encode page")
	}
	fmt.Println(string(out))
}

func render(ctx context.Context, app *client.App, page string, args []string) (interface{}, error) {
	switch page {
	case "home":
		return app.Home(ctx)
	case "matches":
		return app.MatchList(ctx)
	case "match":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: match <id>")
		}
		return app.MatchDetail(ctx, args[0])
	case "standings":
		return app.StandingsTable(ctx)
	case "teams":
		return app.Teams(ctx)
	case "admin-score":
		if len(args) != 4 {
			return nil, fmt.Errorf("usage: admin-score <id> <home> <away> <status>")
		}
		home, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("home score: %w", err)
		}
		away, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("away score: %w", err)
		}
		if err := app.AdminUpdateScore(ctx, args[0], home, away, args[3]); err != nil {
			return nil, err
		}
		return app.MatchDetail(ctx, args[0])
	case "admin-event":
		if len(args) != 2 {
			return nil, fmt.Errorf("usage: admin-event <id> <text>")
		}
		if err := app.AdminAddEvent(ctx, args[0], args[1]); err != nil {
			return nil, err
		}
		return app.MatchDetail(ctx, args[0])
	default:
		return nil, fmt.Errorf("unknown page %q", page)
	}
}
