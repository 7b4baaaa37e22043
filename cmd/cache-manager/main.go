package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/cache"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/config"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/logging"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/output"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cacheType  string
	cacheHome  string
	cacheTTL   time.Duration
	redisAddr  string
	formatFlag string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cache-manager",
		Short: "Inspect and maintain the analysis cache",
		Long:  "Manage the analysis cache tiers: statistics, clearing, warmup, invalidation and export",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (JSON)")
	rootCmd.PersistentFlags().StringVar(&cacheType, "cache-type", "", "Cache backend (memory, durable, filesystem, redis, tiered)")
	rootCmd.PersistentFlags().StringVar(&cacheHome, "cache-home", "", "Cache directory")
	rootCmd.PersistentFlags().DurationVar(&cacheTTL, "cache-ttl", 0, "Cache entry TTL")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "Redis address")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "table", "Output format (table, wide, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level")

	rootCmd.AddCommand(
		statsCmd(),
		clearCmd(),
		warmCmd(),
		invalidateCmd(),
		exportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// prepare loads the configuration, applies the shared flag overrides and
// initializes logging.
func prepare() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}
	config.LoadFromEnv(cfg)

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logging.InitStructured(cfg.Log.Format, cfg.Log.Level)

	if cacheHome != "" {
		cfg.Cache.Home = cacheHome
	}
	if cacheTTL > 0 {
		cfg.Cache.TTLSeconds = int(cacheTTL / time.Second)
	}
	if redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	return cfg, nil
}

func openStack() (*cache.Manager, *config.Config, error) {
	cfg, err := prepare()
	if err != nil {
		return nil, nil, err
	}

	tiers := cfg.TiersFor(cacheType)
	if len(tiers) == 0 {
		return nil, nil, fmt.Errorf("no cache tiers selected")
	}
	mgr, err := cache.NewStack(tiers)
	if err != nil {
		return nil, nil, err
	}
	return mgr, cfg, nil
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-tier cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := openStack()
			if err != nil {
				return err
			}
			defer mgr.Close()

			stats, err := mgr.Stats(context.Background())
			if err != nil {
				return err
			}

			printer := output.NewPrinter(output.ParseFormat(formatFlag))
			return printer.PrintTierStats(tierRows(stats))
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry from every tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := openStack()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := mgr.Clear(context.Background()); err != nil {
				return err
			}

			printer := output.NewPrinter(output.ParseFormat(formatFlag))
			printer.Success("cleared %d cache tiers", mgr.Tiers())
			return nil
		},
	}
}

func warmCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Seed the cache with common file classifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := openStack()
			if err != nil {
				return err
			}
			defer mgr.Close()

			entries := cache.DefaultWarmup()
			if file != "" {
				entries, err = cache.LoadWarmupFile(file)
				if err != nil {
					return err
				}
			}

			if err := mgr.PreWarm(context.Background(), entries); err != nil {
				return err
			}

			printer := output.NewPrinter(output.ParseFormat(formatFlag))
			printer.Success("warmed %d entries across %d tiers", len(entries), mgr.Tiers())
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSON file with extra warmup entries")
	return cmd
}

func invalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <key>...",
		Short: "Remove entries by key from every tier",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, cfg, err := openStack()
			if err != nil {
				return err
			}
			defer mgr.Close()
			ctx := context.Background()

			removed, err := mgr.Invalidate(ctx, args)
			if err != nil {
				return err
			}

			total := 0
			for _, n := range removed {
				total += n
			}

			printer := output.NewPrinter(output.ParseFormat(formatFlag))
			printer.Success("removed %d entries across %d tiers", total, len(removed))

			// With a shared Redis tier, announce the removals so running
			// scanner instances drop the keys from their local tiers too.
			if cache.HasTier(cfg.TiersFor(cacheType), cache.TypeRedis) {
				client := cache.NewRedisClient(cache.RedisConfig{
					Addr:     cfg.Redis.Addr,
					Password: cfg.Redis.Password,
					DB:       cfg.Redis.DB,
				})
				defer client.Close()
				if err := cache.PublishInvalidation(ctx, client, args...); err != nil {
					printer.Warning("could not announce invalidation: %v", err)
				} else {
					printer.Info("announced %d invalidations", len(args))
				}
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export durable tier entries to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := prepare()
			if err != nil {
				return err
			}

			tiers := cfg.TiersFor(cache.TypeDurable)
			durable, err := cache.NewDurableCache(tiers[0].Path, tiers[0].TTL)
			if err != nil {
				return err
			}
			defer durable.Close()

			entries, err := durable.Export(context.Background())
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return err
			}

			printer := output.NewPrinter(output.ParseFormat(formatFlag))
			printer.Success("exported %d entries to %s", len(entries), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file")
	cmd.MarkFlagRequired("out")
	return cmd
}

func tierRows(stats map[string]cache.Stats) []output.TierRow {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]output.TierRow, 0, len(names))
	for _, name := range names {
		st := stats[name]
		row := output.TierRow{
			Tier:        name,
			Size:        st.Size,
			MaxSize:     st.MaxSize,
			Hits:        st.Hits,
			Misses:      st.Misses,
			HitRate:     st.HitRate,
			Sets:        st.Sets,
			Evictions:   st.Evictions,
			Expirations: st.Expirations,
			Location:    st.Location,
		}
		if st.TTL > 0 {
			row.TTL = st.TTL.String()
		}
		rows = append(rows, row)
	}
	return rows
}
