package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/analysis"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/cache"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/config"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/logging"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/metrics"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/observability"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/output"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/scanner"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func main() {
	if err := scanCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func scanCmd() *cobra.Command {
	var (
		configPath  string
		excludes    []string
		maxSize     int64
		concurrency int
		batchSize   int
		async       bool
		noProgress  bool
		verbose     bool
		outputPath  string
		format      string
		cacheType   string
		cacheTTL    time.Duration
		cacheSize   int
		cacheHome   string
		redisAddr   string
		warmupFile  string
		logLevel    string
		logFormat   string
		auditLog    string
	)

	cmd := &cobra.Command{
		Use:   "repo-scanner <path>",
		Short: "Scan a repository and classify every file",
		Long:  "Walk a repository tree, classify each file by type and language, and cache results by content hash across runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// Flags win over file and environment settings.
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = logFormat
			}
			if cmd.Flags().Changed("audit-log") {
				cfg.Log.AuditFile = auditLog
			}
			if cmd.Flags().Changed("cache-home") {
				cfg.Cache.Home = cacheHome
			}
			if cmd.Flags().Changed("cache-ttl") {
				cfg.Cache.TTLSeconds = int(cacheTTL / time.Second)
			}
			if cmd.Flags().Changed("cache-size") {
				for i := range cfg.Cache.Tiers {
					if cfg.Cache.Tiers[i].Type == cache.TypeMemory {
						cfg.Cache.Tiers[i].MaxSize = cacheSize
					}
				}
			}
			if cmd.Flags().Changed("redis-addr") {
				cfg.Redis.Addr = redisAddr
			}
			if cmd.Flags().Changed("warmup-file") {
				cfg.Cache.WarmupFile = warmupFile
			}
			if len(excludes) > 0 {
				cfg.Scanner.Exclusions = append(cfg.Scanner.Exclusions, excludes...)
			}
			if cmd.Flags().Changed("max-size") {
				cfg.Scanner.MaxFileSize = maxSize
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.Scanner.Concurrency = concurrency
			}
			if cmd.Flags().Changed("batch-size") {
				cfg.Scanner.BatchSize = batchSize
			}

			logging.InitStructured(cfg.Log.Format, cfg.Log.Level)
			if cfg.Log.AuditFile != "" {
				if err := logging.Default().SetOutput(cfg.Log.AuditFile); err != nil {
					return fmt.Errorf("open audit log: %w", err)
				}
			}
			defer logging.Default().Close()
			if verbose {
				logging.Default().SetConsole(true)
				noProgress = true
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.Tracing.Enabled {
				if err := observability.Init(ctx, observability.Config{
					Exporter:    cfg.Tracing.Exporter,
					Endpoint:    cfg.Tracing.Endpoint,
					ServiceName: cfg.Tracing.ServiceName,
					SampleRate:  cfg.Tracing.SampleRate,
				}); err != nil {
					logging.Op().Warn("telemetry init failed", "error", err)
				} else {
					defer observability.Shutdown(context.Background())
				}
			}

			if cfg.Metrics.Enabled {
				metrics.InitPrometheus(cfg.Metrics.Namespace, nil)
				if cfg.Metrics.Addr != "" {
					go serveMetrics(cfg.Metrics.Addr)
				}
			}

			var store analysis.Store
			var mgr *cache.Manager
			tiers := cfg.TiersFor(cacheType)
			if len(tiers) > 0 {
				mgr, err = cache.NewStack(tiers)
				if err != nil {
					return fmt.Errorf("build cache: %w", err)
				}
				defer mgr.Close()
				store = mgr
			}

			// Other instances may invalidate entries mid-scan. With a
			// shared Redis tier in the stack, listen for their signals and
			// drop the announced keys from the local tiers.
			if mgr != nil && mgr.Tiers() > 1 && cache.HasTier(tiers, cache.TypeRedis) {
				client := cache.NewRedisClient(cache.RedisConfig{
					Addr:     cfg.Redis.Addr,
					Password: cfg.Redis.Password,
					DB:       cfg.Redis.DB,
				})
				defer client.Close()
				iv := cache.NewInvalidator(mgr, client)
				go iv.Listen(ctx)
				defer iv.Close()
			}

			if mgr != nil && cfg.Cache.WarmupFile != "" {
				entries, err := cache.LoadWarmupFile(cfg.Cache.WarmupFile)
				if err != nil {
					return err
				}
				if err := mgr.PreWarm(ctx, entries); err != nil {
					logging.Op().Warn("cache warmup failed", "error", err)
				}
			}

			analyzer := analysis.NewTypeAnalyzer(nil, store)
			scanCfg := cfg.Scanner.Build()

			var bar *progressbar.ProgressBar
			if !noProgress {
				scanCfg.Progress = func(processed, total int) {
					if bar == nil {
						bar = newScanBar(total)
					}
					bar.Set(processed)
				}
			}

			s := scanner.New(analyzer, scanCfg)

			var res *scanner.Result
			if async {
				res, err = s.ScanConcurrent(ctx, args[0])
			} else {
				res, err = s.Scan(ctx, args[0])
			}
			if bar != nil {
				bar.Finish()
			}
			if res == nil {
				return err
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "scan interrupted: %v\n", err)
			}

			if renderErr := renderResults(res, outputPath, output.ParseFormat(format)); renderErr != nil {
				return renderErr
			}
			printSummary(res, analyzer)

			if mgr != nil && cfg.Metrics.Enabled {
				publishCacheStats(mgr)
			}

			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file (JSON)")
	cmd.Flags().StringArrayVarP(&excludes, "exclude", "e", nil, "Additional exclusion patterns (repeatable)")
	cmd.Flags().Int64Var(&maxSize, "max-size", scanner.DefaultMaxFileSize, "Max file size in bytes")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", scanner.DefaultConcurrency, "Concurrent analyses in async mode")
	cmd.Flags().IntVar(&batchSize, "batch-size", scanner.DefaultBatchSize, "Files per batch in async mode")
	cmd.Flags().BoolVar(&async, "async", false, "Analyze batches concurrently")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Echo every analyzed file to stderr")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write results to a file instead of stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml, table, wide)")
	cmd.Flags().StringVar(&cacheType, "cache-type", "", "Cache backend (memory, durable, filesystem, redis, tiered, none)")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", cache.DefaultTTL, "Cache entry TTL")
	cmd.Flags().IntVar(&cacheSize, "cache-size", cache.DefaultMaxSize, "Memory tier capacity")
	cmd.Flags().StringVar(&cacheHome, "cache-home", "", "Cache directory")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address")
	cmd.Flags().StringVar(&warmupFile, "warmup-file", "", "Warmup entries JSON file")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	cmd.Flags().StringVar(&auditLog, "audit-log", "", "Per-file audit log path (JSON lines)")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		config.LoadFromEnv(cfg)
		return cfg, nil
	}
	cfg := config.DefaultConfig()
	config.LoadFromEnv(cfg)
	return cfg, nil
}

func newScanBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("analyzing"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.PrometheusHandler())
	mux.Handle("/metrics.json", metrics.Global().JSONHandler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logging.Op().Warn("metrics endpoint failed", "addr", addr, "error", err)
	}
}

func renderResults(res *scanner.Result, outputPath string, format output.Format) error {
	printer := output.NewPrinter(format)

	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		printer.SetWriter(f)
	}

	switch format {
	case output.FormatJSON, output.FormatYAML:
		return printer.Print(res)
	default:
		return printer.PrintFiles(fileRows(res))
	}
}

func fileRows(res *scanner.Result) []output.FileRow {
	paths := make([]string, 0, len(res.Results))
	for path := range res.Results {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	rows := make([]output.FileRow, 0, len(paths))
	for _, path := range paths {
		rec := res.Results[path]
		rows = append(rows, output.FileRow{
			Path:            path,
			FileType:        string(rec.FileType),
			Language:        rec.Language,
			Purpose:         rec.Purpose,
			Confidence:      rec.Confidence,
			Characteristics: rec.Characteristics,
			Error:           rec.Error,
		})
	}
	return rows
}

func printSummary(res *scanner.Result, analyzer *analysis.TypeAnalyzer) {
	sum := output.ScanSummary{
		ScanID:        res.ScanID,
		Repository:    res.Repository,
		TotalFiles:    res.Stats.TotalFiles,
		AnalyzedFiles: res.Stats.AnalyzedFiles,
		ExcludedFiles: res.Stats.ExcludedFiles,
		ErrorFiles:    res.Stats.ErrorFiles,
		DurationMs:    res.Stats.ProcessingTime.Milliseconds(),
		FileTypes:     res.Stats.FileTypes,
		Languages:     res.Stats.Languages,
	}
	if cs := analyzer.CacheStats(); cs.Enabled {
		sum.Cache = &output.CacheSession{Hits: cs.Hits, Misses: cs.Misses, Stores: cs.Stores}
	}

	printer := output.NewPrinter(output.FormatTable)
	printer.SetWriter(os.Stderr)
	printer.PrintScanSummary(sum)
}

func publishCacheStats(mgr *cache.Manager) {
	stats, err := mgr.Stats(context.Background())
	if err != nil {
		logging.Op().Warn("cache stats unavailable", "error", err)
		return
	}
	for tier, st := range stats {
		metrics.PublishCacheStats(tier, metrics.CacheTierStats{
			Hits:        st.Hits,
			Misses:      st.Misses,
			Sets:        st.Sets,
			Evictions:   st.Evictions,
			Expirations: st.Expirations,
			Size:        st.Size,
			HitRate:     st.HitRate,
		})
	}
}
