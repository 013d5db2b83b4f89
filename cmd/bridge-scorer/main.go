// Command bridge-scorer scores duplicate bridge sessions and competitions.
//
// Usage:
//
//	bridge-scorer [global flags] <command> [command flags]
//
// Commands: migrate, score, totals, export, chart, watch, serve, archive.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ramonehamilton/bridge-scorer/internal/config"
	"github.com/ramonehamilton/bridge-scorer/internal/events"
	"github.com/ramonehamilton/bridge-scorer/internal/metrics"
	"github.com/ramonehamilton/bridge-scorer/internal/recompute"
	"github.com/ramonehamilton/bridge-scorer/internal/storage"
	"github.com/ramonehamilton/bridge-scorer/internal/version"
)

var (
	configPath = flag.String("config", "", "Path to config.toml (default: $BRIDGE_CONFIG or ~/.bridge-scorer/config.toml)")
	dbPath     = flag.String("db-path", "", "Database path (overrides the config file)")
	verbose    = flag.Bool("v", false, "Log event payloads")
)

// app holds the services shared by the commands.
type app struct {
	cfgPath    string
	cfg        *config.Config
	store      *storage.Service
	dispatcher *events.EventDispatcher
	recomputer *recompute.Recomputer
}

func main() {
	flag.Usage = usage
	flag.Parse()

	// A missing .env file is fine; variables may come from the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	if cmd == "version" {
		fmt.Printf("%s %s\n", version.Service, version.GetVersion())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "migrate":
		err = runMigrate(args)
	case "score":
		err = withApp(func(a *app) error { return a.runScore(ctx, args) })
	case "totals":
		err = withApp(func(a *app) error { return a.runTotals(ctx, args) })
	case "export":
		err = withApp(func(a *app) error { return a.runExport(ctx, args) })
	case "chart":
		err = withApp(func(a *app) error { return a.runChart(ctx, args) })
	case "watch":
		err = withApp(func(a *app) error { return a.runWatch(ctx, args) })
	case "serve":
		err = withApp(func(a *app) error { return a.runServe(ctx, args) })
	case "archive":
		err = runArchive(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "%s %s\n\n", version.Service, version.GetVersion())
	fmt.Fprintf(os.Stderr, "Usage: bridge-scorer [flags] <command> [command flags]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  migrate   Apply database migrations\n")
	fmt.Fprintf(os.Stderr, "  score     Score sessions (all, or -session N)\n")
	fmt.Fprintf(os.Stderr, "  totals    Print the competition ranking\n")
	fmt.Fprintf(os.Stderr, "  export    Write standings, totals, clubs or frequencies to CSV/JSON\n")
	fmt.Fprintf(os.Stderr, "  chart     Render standings or progress charts as HTML\n")
	fmt.Fprintf(os.Stderr, "  watch     Rescore when the config file changes\n")
	fmt.Fprintf(os.Stderr, "  serve     Run the REST API\n")
	fmt.Fprintf(os.Stderr, "  archive   Snapshot, list or restore competition archives\n")
	fmt.Fprintf(os.Stderr, "  version   Print the version\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}

// loadConfig resolves, loads and validates the configuration.
func loadConfig() (string, *config.Config, error) {
	path := *configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return "", nil, err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return "", nil, err
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}
	return path, cfg, nil
}

func runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	down := fs.Bool("down", false, "Roll back every migration")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dirOf(cfg.Storage.Path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}

	mgr, err := storage.NewMigrationManager(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()

	if *down {
		err = mgr.Down()
	} else {
		err = mgr.Up()
	}
	if err != nil {
		return err
	}

	v, dirty, err := mgr.Version()
	if err != nil {
		return err
	}
	fmt.Printf("Database %s at version %d (dirty: %t)\n", cfg.Storage.Path, v, dirty)
	return nil
}

// withApp opens the database, wires the recomputer and runs fn.
func withApp(fn func(a *app) error) error {
	path, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engineCfg, err := cfg.Engine()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dirOf(cfg.Storage.Path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	dbConfig := storage.DefaultConfig(cfg.Storage.Path)
	dbConfig.AutoMigrate = cfg.Storage.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	store := storage.NewService(db)
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing storage service: %v", err)
		}
	}()

	dispatcher := events.NewEventDispatcher()
	dispatcher.Register(events.NewLoggingObserver(*verbose))

	a := &app{
		cfgPath:    path,
		cfg:        cfg,
		store:      store,
		dispatcher: dispatcher,
		recomputer: recompute.New(store, engineCfg,
			recompute.WithDispatcher(dispatcher),
			recompute.WithMetrics(metrics.NewEngineMetrics()),
		),
	}
	return fn(a)
}
