package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"secmaster/src/catalog"
	"secmaster/src/config"
	"secmaster/src/data_source/nasdaq"
	"secmaster/src/data_source/yahoo"
	"secmaster/src/logger"
	"secmaster/src/server"
	"secmaster/src/utils"
)

const usage = `usage: secmaster <command> [flags]

commands:
  init      write a default config file and create the database
  symbols   import new symbols from the NASDAQ listings files
  enrich    fill sector, industry and quote type of new symbols
  bars      append the missing end-of-day bars
  serve     serve the REST API and the progress websocket
`

// -----------------------------------------------------------------------------

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received %s, stopping\n", sig)
		cancel()
	}()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "init":
		err = runInit(ctx, args)
	case "symbols":
		err = runSymbols(ctx, args)
	case "enrich":
		err = runEnrich(ctx, args)
	case "bars":
		err = runBars(ctx, args)
	case "serve":
		err = runServe(ctx, args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "secmaster %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

// -----------------------------------------------------------------------------

func newFlagSet(name string) (*flag.FlagSet, *string) {
	fset := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fset.String("config", "config/secmaster.yaml", "path to config file")
	return fset, configPath
}

// -----------------------------------------------------------------------------

// runInit writes the default config when the file is missing, then creates
// the tables and the provider and interval reference rows.
func runInit(ctx context.Context, args []string) error {
	fset, configPath := newFlagSet("init")
	fset.Parse(args)

	if _, err := os.Stat(*configPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(*configPath), 0o755); err != nil {
			return err
		}
		if err := config.Default().Save(*configPath); err != nil {
			return err
		}
		fmt.Printf("Default config written to %s\n", *configPath)
	}

	a, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.DB.Close()

	providers := []string{utils.ProviderTDA, utils.ProviderNASDAQ}
	if p := a.Config.Updater.Provider; p != utils.ProviderTDA {
		providers = append(providers, p)
	}
	if err := a.DB.EnsureReferenceData(ctx, providers, []string{a.Config.Updater.Interval}); err != nil {
		return err
	}

	a.Logger.Info("Database ready (%s)", a.Config.Storage.DBType)
	return nil
}

// -----------------------------------------------------------------------------

func runSymbols(ctx context.Context, args []string) error {
	fset, configPath := newFlagSet("symbols")
	skipDownload := fset.Bool("skip-download", false, "import the files already in destination_dir")
	fset.Parse(args)

	a, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.DB.Close()

	cfg := a.Config
	fetcher := nasdaq.NewFTPFetcher(cfg.Listings, logger.NewLogger(cfg.LogLevel, "FTPFetcher"))
	importer := catalog.NewListingsImporter(cfg.Listings, a.DB, fetcher, logger.NewLogger(cfg.LogLevel, "Listings"))
	importer.Reporter = consoleProgress(cfg, "Importing")

	results, err := importer.Run(ctx, !*skipDownload)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%-20s new=%d excluded=%d already_in_db=%d\n", r.Filename, r.NewSymbols, r.Excluded, r.AlreadyInDB)
	}
	return nil
}

// -----------------------------------------------------------------------------

func runEnrich(ctx context.Context, args []string) error {
	fset, configPath := newFlagSet("enrich")
	fset.Parse(args)

	a, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.DB.Close()

	cfg := a.Config
	source := yahoo.NewYahooProfileSource(cfg.Enrichment, setupNetwork(cfg), logger.NewLogger(cfg.LogLevel, "YahooProfile"))
	enricher := catalog.NewEnricher(a.DB, source, logger.NewLogger(cfg.LogLevel, "Enricher"))
	enricher.Reporter = consoleProgress(cfg, "Enriching")

	n, err := enricher.Run(ctx)
	fmt.Printf("%d symbols enriched\n", n)
	return err
}

// -----------------------------------------------------------------------------

func runBars(ctx context.Context, args []string) error {
	fset, configPath := newFlagSet("bars")
	symbols := fset.String("symbols", "", "comma separated symbols to update instead of the whole catalog")
	fset.Parse(args)

	a, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.DB.Close()

	driver, err := setupDriver(a, consoleProgress(a.Config, "Updating"))
	if err != nil {
		return err
	}

	summary, err := driver.Run(ctx, splitSymbols(*symbols))
	fmt.Printf("run %s: %d symbols, %d updated, %d current, %d without data, %d failed, %d bars\n",
		summary.RunID, summary.Total, summary.Updated, summary.Skipped, summary.NoData, summary.Failed, summary.Inserted)
	for _, f := range summary.Failures {
		fmt.Printf("  %-8s %-16s %s\n", f.Symbol, f.Kind, f.Reason)
	}
	return err
}

// -----------------------------------------------------------------------------

// runServe serves the API until interrupted. With -update it also runs one
// bar update in the background and streams its progress.
func runServe(ctx context.Context, args []string) error {
	fset, configPath := newFlagSet("serve")
	update := fset.Bool("update", false, "run a bar update while serving")
	fset.Parse(args)

	a, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.DB.Close()

	cfg := a.Config
	srv := server.NewAPIServer(cfg.Server, cfg.LogLevel, a.DB, logger.NewLogger(cfg.LogLevel, "APIServer"))

	if *update {
		driver, err := setupDriver(a, utils.MultiReporter{srv, consoleProgress(cfg, "Updating")})
		if err != nil {
			return err
		}
		go func() {
			summary, err := driver.Run(ctx, nil)
			if err != nil {
				a.Logger.Warning("Bar update stopped: %v", err)
			}
			srv.SetRunSummary(summary)
		}()
	}

	return srv.Start(ctx)
}

// -----------------------------------------------------------------------------

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
