package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/condense-ai/condense/pkg/models"
	"github.com/condense-ai/condense/pkg/optimizer"
	"github.com/spf13/cobra"
)

func newOptimizeCmd() *cobra.Command {
	var (
		configPath   string
		role         string
		task         string
		targetTokens int
		strategy     string
		outputPath   string
		showStats    bool
	)

	cmd := &cobra.Command{
		Use:   "optimize [files...]",
		Short: "Reduce content to fit a token budget",
		Long: `Optimize reads content from file arguments or stdin, prunes it toward
the target token budget for the given agent role and task, and writes the
optimized content to stdout or --output. With multiple files --output names
a directory that receives one optimized file per input. With --stats a
summary of the optimization goes to stderr.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if strategy != "" {
				if err := cfg.ApplyPreset(strategy); err != nil {
					return err
				}
			}

			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = engine.Close() }()

			if len(args) > 1 {
				return runBatch(engine, args, outputPath, role, task, targetTokens, showStats)
			}

			var res models.OptimizationResult
			if len(args) > 0 {
				res, err = engine.OptimizeFile(args[0], role, task, targetTokens)
				if err != nil {
					return err
				}
			} else {
				content, _, err := readInput(args)
				if err != nil {
					return err
				}
				res = engine.Optimize(content, role, task, targetTokens, "")
			}

			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(res.OptimizedContent), 0644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			} else {
				fmt.Print(res.OptimizedContent)
			}

			if !showStats {
				return nil
			}
			w := tabwriter.NewWriter(os.Stderr, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Tokens:\t%d -> %d (%.1f%% reduction)\n",
				res.OriginalTokens, res.OptimizedTokens, res.ReductionPercentage)
			fmt.Fprintf(w, "Quality:\t%.2f\n", res.QualityScore)
			fmt.Fprintf(w, "Cache:\t%v\n", res.CacheUsed)
			fmt.Fprintf(w, "Time:\t%.1fms\n", res.ProcessingTimeMs)
			if len(res.OperationsApplied) > 0 {
				fmt.Fprintf(w, "Operations:\t%s\n", strings.Join(res.OperationsApplied, ", "))
			}
			for _, warn := range res.Warnings {
				fmt.Fprintf(w, "Warning:\t%s\n", warn)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&role, "role", "", "agent role (architect, coder, tester, security, documenter, performance)")
	cmd.Flags().StringVar(&task, "task", "", "task description used for relevance ranking")
	cmd.Flags().IntVar(&targetTokens, "target-tokens", 0, "token budget (0 uses the configured default)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "strategy preset overriding the config file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file, or output directory for multiple inputs")
	cmd.Flags().BoolVar(&showStats, "stats", false, "print an optimization summary to stderr")
	return cmd
}

// runBatch optimizes each input file and writes the results into the output
// directory under the input's base name.
func runBatch(engine *optimizer.Engine, paths []string, outDir, role, task string, targetTokens int, showStats bool) error {
	if outDir == "" {
		return fmt.Errorf("--output directory is required when optimizing multiple files")
	}
	if info, err := os.Stat(outDir); err == nil && !info.IsDir() {
		return fmt.Errorf("--output %s is not a directory", outDir)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	w := tabwriter.NewWriter(os.Stderr, 0, 0, 2, ' ', 0)
	for _, path := range paths {
		res, err := engine.OptimizeFile(path, role, task, targetTokens)
		if err != nil {
			return err
		}
		dest := filepath.Join(outDir, filepath.Base(path))
		if err := os.WriteFile(dest, []byte(res.OptimizedContent), 0644); err != nil {
			return fmt.Errorf("write %s: %w", dest, err)
		}
		if showStats {
			fmt.Fprintf(w, "%s:\t%d -> %d tokens\t(%.1f%%)\tquality %.2f\n",
				filepath.Base(path), res.OriginalTokens, res.OptimizedTokens,
				res.ReductionPercentage, res.QualityScore)
		}
	}
	return w.Flush()
}

