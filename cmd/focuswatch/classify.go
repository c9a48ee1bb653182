package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/focuswatch/focuswatch/internal/classify"
	"github.com/focuswatch/focuswatch/internal/config"
)

var classifyCmd = &cobra.Command{
	Use:   "classify APP",
	Short: "Resolve an application name against the configured category table",
	Long:  `Show which category the configured classification table assigns to an application identifier.`,
	Example: `  focuswatch classify Chrome
  focuswatch -c /etc/focuswatch/config.yaml classify "Visual Studio Code"`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Classify.TableFile == "" {
		return fmt.Errorf("no classification.table_file configured")
	}

	classifier, err := classify.NewFromFile(cfg.Classify.TableFile, zerolog.Nop())
	if err != nil {
		return err
	}

	app := args[0]
	category := classifier.Classify(app)

	if category == classify.Uncategorized {
		color.New(color.FgYellow).Fprintf(os.Stdout, "%s -> %s (no table entry)\n", app, category)
	} else {
		color.New(color.FgGreen).Fprintf(os.Stdout, "%s -> %s\n", app, category)
	}

	return nil
}
