// Geode Planner: blueprint evaluation CLI and MCP server
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/rsned/geode-planner/internal/planner/config"
	"github.com/rsned/geode-planner/internal/planner/db"
	"github.com/rsned/geode-planner/internal/planner/engine"
	"github.com/rsned/geode-planner/internal/planner/mcp"
	"github.com/rsned/geode-planner/internal/planner/sync"
	"github.com/rsned/geode-planner/pkg/planner"
)

func main() {
	defaults := config.Default()

	// Parse flags
	dbPath := flag.String("db", "data/planner/planner.db", "Path to SQLite database")
	importFile := flag.String("import", "", "Import blueprints from a text or JSON file")
	replace := flag.Bool("replace", false, "Drop stored blueprints and runs before importing")
	mode := flag.String("mode", "serve", "Run mode: serve, quality, product, evaluate or score")
	runID := flag.String("run", "", "Run ID whose score is printed in score mode")
	horizon := flag.Int("horizon", 0, "Horizon in minutes (0 uses the mode default)")
	count := flag.Int("count", defaults.ProductCount, "Blueprints multiplied in product mode")
	ids := flag.String("ids", "", "Comma-separated blueprint IDs for evaluate mode (default all)")
	workers := flag.Int("workers", defaults.Workers, "Blueprints searched concurrently")
	maxHorizon := flag.Int("max-horizon", defaults.MaxHorizon, "Largest accepted horizon")
	asJSON := flag.Bool("json", false, "Print results as JSON")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Create context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down...")
		cancel()
	}()

	if err := run(ctx, logger, options{
		dbPath:     *dbPath,
		importFile: *importFile,
		replace:    *replace,
		mode:       *mode,
		runID:      *runID,
		horizon:    *horizon,
		count:      *count,
		ids:        *ids,
		workers:    *workers,
		maxHorizon: *maxHorizon,
		asJSON:     *asJSON,
	}); err != nil {
		logger.Error("geode-planner failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	dbPath     string
	importFile string
	replace    bool
	mode       string
	runID      string
	horizon    int
	count      int
	ids        string
	workers    int
	maxHorizon int
	asJSON     bool
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	// Open database
	database, err := db.OpenAndInit(ctx, opts.dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = database.Close() }()

	syncer := sync.NewSyncer(database)

	// Handle import
	if opts.importFile != "" {
		logger.Info("importing blueprints", "file", opts.importFile)
		imported, err := syncer.ImportBlueprintsFromFile(ctx, opts.importFile, opts.replace)
		if err != nil {
			return fmt.Errorf("importing blueprints: %w", err)
		}
		logger.Info("blueprints imported successfully", "count", len(imported))
	}

	cfg := config.Default()
	cfg.Workers = opts.workers
	cfg.MaxHorizon = opts.maxHorizon
	eng := engine.New(database, logger, cfg)

	switch opts.mode {
	case "serve":
		server := mcp.NewServer(eng, syncer, logger)
		logger.Info("starting MCP server", "db", opts.dbPath)
		if err := server.Run(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("serving: %w", err)
		}
		fmt.Fprintln(os.Stderr, "server stopped")
		return nil

	case "quality":
		resp, err := eng.QualityLevel(ctx, planner.QualityLevelRequest{Horizon: opts.horizon})
		if err != nil {
			return err
		}
		return report(os.Stdout, opts.asJSON, resp, resp.Results, "quality level", resp.Total)

	case "product":
		resp, err := eng.TopProduct(ctx, planner.TopProductRequest{Horizon: opts.horizon, Count: opts.count})
		if err != nil {
			return err
		}
		return report(os.Stdout, opts.asJSON, resp, resp.Results, "product", resp.Product)

	case "evaluate":
		blueprintIDs, err := parseIDs(opts.ids)
		if err != nil {
			return err
		}
		h := opts.horizon
		if h == 0 {
			h = cfg.QualityHorizon
		}
		resp, err := eng.Evaluate(ctx, planner.EvaluateRequest{BlueprintIDs: blueprintIDs, Horizon: h})
		if err != nil {
			return err
		}
		return report(os.Stdout, opts.asJSON, resp, resp.Results, "", 0)

	case "score":
		resp, err := eng.RunScore(ctx, planner.RunScoreRequest{RunID: opts.runID})
		if err != nil {
			return err
		}
		return report(os.Stdout, opts.asJSON, resp, nil, "run "+resp.RunID+" score", resp.Score)

	default:
		return fmt.Errorf("unknown mode %q", opts.mode)
	}
}

// parseIDs splits a comma-separated id list.
func parseIDs(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int
	for _, field := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("parsing blueprint id %q: %w", field, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// report prints resp as JSON, or a per-blueprint table followed by the
// aggregate when label is set.
func report(w io.Writer, asJSON bool, resp any, results []planner.BlueprintYield, label string, total int64) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if len(results) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "BLUEPRINT\tHORIZON\tYIELD\tBUILDS\tNODES\tPRUNED\t")
		for _, r := range results {
			nodes := humanize.Comma(r.Nodes)
			if r.Cached {
				nodes = "cached"
			}
			fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\t%s\t\n",
				r.BlueprintID, r.Horizon, humanize.Comma(r.Yield), len(r.Plan), nodes, humanize.Comma(r.Pruned))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if label != "" {
		fmt.Fprintf(w, "%s: %s\n", label, humanize.Comma(total))
	}
	return nil
}
