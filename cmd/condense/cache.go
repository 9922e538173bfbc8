package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/condense-ai/condense/pkg/optimizer"
	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the optimization cache",
	}

	withEngine := func(fn func(*optimizer.Engine) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if !cfg.Cache.Enabled {
				return fmt.Errorf("cache is disabled in config")
			}
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = engine.Close() }()
			return fn(engine)
		}
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: withEngine(func(engine *optimizer.Engine) error {
			stats := engine.CacheStats()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Entries:\t%d\n", stats.TotalEntries)
			fmt.Fprintf(w, "Size:\t%d bytes\n", stats.TotalSizeBytes)
			fmt.Fprintf(w, "Hits:\t%d\n", stats.HitCount)
			fmt.Fprintf(w, "Misses:\t%d\n", stats.MissCount)
			fmt.Fprintf(w, "Evictions:\t%d\n", stats.EvictionCount)
			fmt.Fprintf(w, "Hit rate:\t%.1f%%\n", stats.HitRate)
			fmt.Fprintf(w, "Compression saved:\t%d bytes\n", stats.CompressionSavingsBytes)
			return w.Flush()
		}),
	}

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show top cache entries and utilization",
		RunE: withEngine(func(engine *optimizer.Engine) error {
			info := engine.CacheInfo()
			fmt.Printf("Utilization: %.1f%%\n", info.UtilizationPercent)
			fmt.Printf("Avg entry:   %d bytes\n\n", info.AverageEntrySize)

			if len(info.TopEntries) == 0 {
				fmt.Println("Cache is empty.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FINGERPRINT\tSIZE\tACCESSES\tCREATED")
			for _, e := range info.TopEntries {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n",
					e.Key, e.SizeBytes, e.AccessCount, e.CreatedAt.Format("2006-01-02T15:04:05"))
			}
			return w.Flush()
		}),
	}

	var expiredOnly bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cache entries",
		RunE: withEngine(func(engine *optimizer.Engine) error {
			if expiredOnly {
				n := engine.CleanupExpiredCache()
				fmt.Printf("%d expired cache entries cleared.\n", n)
				return nil
			}
			engine.ClearCache()
			fmt.Println("All cache entries cleared.")
			return nil
		}),
	}
	clearCmd.Flags().BoolVar(&expiredOnly, "expired", false, "only clear expired entries")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.AddCommand(statsCmd, infoCmd, clearCmd)
	return cmd
}
