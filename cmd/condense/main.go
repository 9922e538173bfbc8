package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/condense-ai/condense/pkg/cache"
	"github.com/condense-ai/condense/pkg/config"
	"github.com/condense-ai/condense/pkg/optimizer"
	"github.com/condense-ai/condense/pkg/token"
	"github.com/spf13/cobra"
)

var version = "dev"

const defaultConfigPath = "condense.yaml"

func main() {
	root := &cobra.Command{
		Use:     "condense",
		Short:   "Condense — context optimization for token-budgeted agents",
		Version: version,
	}

	root.AddCommand(
		newOptimizeCmd(),
		newAnalyzeCmd(),
		newCacheCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file. A missing file at the default path is
// not an error; built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil && path == defaultConfigPath && errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// newEngine builds an optimizer engine from config, wiring the cache only
// when enabled.
func newEngine(cfg *config.Config) (*optimizer.Engine, error) {
	var store *cache.Store
	if cfg.Cache.Enabled {
		var err error
		store, err = cache.New(cache.Options{
			MaxBytes:    int64(cfg.Cache.MaxSizeMB) << 20,
			TTL:         cfg.Cache.TTL,
			Compression: cfg.Cache.Compression,
			Path:        cfg.Cache.Path,
		})
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
	}
	return optimizer.New(cfg, token.NewEstimator(), store), nil
}

// readInput returns the content of the file argument, or stdin when no
// argument was given.
func readInput(args []string) (content string, pathHint string, err error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("read input: %w", err)
		}
		return string(data), args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), "", nil
}
