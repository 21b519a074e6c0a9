package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gcbaptista/go-tfidf-search/api"
	"github.com/gcbaptista/go-tfidf-search/config"
	"github.com/gcbaptista/go-tfidf-search/internal/engine"
	"github.com/gcbaptista/go-tfidf-search/internal/logger"
	"github.com/gcbaptista/go-tfidf-search/internal/metrics"
	"github.com/gcbaptista/go-tfidf-search/services"
)

const version = "1.0.0"

func usage(w io.Writer) {
	fmt.Fprintf(w, "TF-IDF Search - incremental full-text index over a directory tree\n\n")
	fmt.Fprintf(w, "Usage: %s <command> [options] [arguments]\n\n", os.Args[0])
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  index [dir]        Index dir (or the configured root) and write the snapshot\n")
	fmt.Fprintf(w, "  search <query...>  Rank indexed documents against a query\n")
	fmt.Fprintf(w, "  serve [dir]        Serve the HTTP API, reindexing dir in the background\n")
	fmt.Fprintf(w, "  version            Show version information\n")
	fmt.Fprintf(w, "\nRun '%s <command> -h' for command options.\n", os.Args[0])
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "index":
		err = runIndex(args)
	case "search":
		err = runSearch(args)
	case "serve":
		err = runServe(args)
	case "version", "-version", "--version":
		fmt.Printf("TF-IDF Search v%s\n", version)
	case "help", "-h", "-help", "--help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// commonFlags are accepted by every command and override the config file.
type commonFlags struct {
	configPath string
	snapshot   string
	root       string
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&f.snapshot, "snapshot", "", "Path of the index snapshot")
	fs.StringVar(&f.root, "root", "", "Corpus directory to index")
}

// load reads the config file and applies flag and positional overrides.
func (f *commonFlags) load(dir string) (*config.Settings, error) {
	settings, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.root != "" {
		settings.Index.Root = f.root
	}
	if dir != "" {
		settings.Index.Root = dir
	}
	if f.snapshot != "" {
		settings.Index.SnapshotPath = f.snapshot
	}
	return settings, nil
}

func runIndex(args []string) error {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := common.load(fs.Arg(0))
	if err != nil {
		return err
	}
	logger.SetupWriter(os.Stderr, settings.Logging.Level, settings.Logging.Format)

	eng, err := engine.New(settings, nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := eng.Reindex(ctx)
	if err != nil {
		return err
	}

	stats := eng.Stats()
	fmt.Printf("indexed %d, skipped %d, removed %d, failed %d in %dms\n",
		summary.Indexed, summary.Skipped, summary.Removed, summary.Failed, summary.DurationMs)
	fmt.Printf("%d documents, %d terms -> %s\n", stats.Documents, stats.Terms, stats.SnapshotPath)
	return nil
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	page := fs.Int("page", 1, "Result page")
	pageSize := fs.Int("page-size", 0, "Results per page (0 uses the configured default)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("search needs a query")
	}

	settings, err := common.load("")
	if err != nil {
		return err
	}
	logger.SetupWriter(os.Stderr, settings.Logging.Level, settings.Logging.Format)

	eng, err := engine.New(settings, nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	result, err := eng.Search(services.SearchQuery{
		QueryString: strings.Join(fs.Args(), " "),
		Page:        *page,
		PageSize:    *pageSize,
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, hit := range result.Hits {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", hit.Rank, strconv.FormatFloat(hit.Score, 'f', 6, 64), hit.DocumentID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("page %d, %d of %d documents, %dms\n", result.Page, len(result.Hits), result.Total, result.Took)
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	port := fs.Int("port", 0, "Port to run the server on (0 uses the configured port)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := common.load(fs.Arg(0))
	if err != nil {
		return err
	}
	if *port != 0 {
		settings.Server.Port = *port
	}
	logger.Setup(settings.Logging.Level, settings.Logging.Format)
	log := logger.WithComponent("main")

	if logger.ParseLevel(settings.Logging.Level) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	eng, err := engine.New(settings, m)
	if err != nil {
		return err
	}
	defer eng.Close()

	jobID, err := eng.ReindexAsync()
	if err != nil {
		return err
	}
	log.Info("background reindex started", "job_id", jobID, "root", settings.Index.Root)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", settings.Server.Port),
		Handler:      api.NewRouter(eng, m, eng.Settings()),
		ReadTimeout:  settings.Server.ReadTimeout,
		WriteTimeout: settings.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
