package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Inspect content without optimizing it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg.Cache.Enabled = false

			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}

			content, pathHint, err := readInput(args)
			if err != nil {
				return err
			}

			analysis := engine.Analyze(content, pathHint)
			potential := engine.EstimatePotential(content, pathHint)

			fmt.Printf("Content type: %s\n", analysis.ContentType)
			if analysis.Metadata.Language != "" {
				fmt.Printf("Language:     %s\n", analysis.Metadata.Language)
			}
			fmt.Printf("Lines:        %d\n", analysis.Metadata.LineCount)
			fmt.Printf("Characters:   %d\n", analysis.Metadata.CharCount)
			fmt.Printf("Est. savings: %.1f%%\n\n", potential*100)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SECTION\tLINES\tTOKENS\tIMPORTANCE")
			for _, s := range analysis.Sections {
				fmt.Fprintf(w, "%s\t%d-%d\t%d\t%.2f\n",
					s.Name, s.StartLine+1, s.EndLine+1, s.TokenCount, s.ImportanceScore)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
