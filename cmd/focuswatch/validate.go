package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/focuswatch/focuswatch/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the focuswatch configuration file for syntax and semantic errors.`,
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Configuration validation failed: %v\n", err)
		return err
	}

	green := color.New(color.FgGreen)
	green.Fprintf(os.Stdout, "Configuration is valid: %s\n", configPath)

	fmt.Fprintf(os.Stdout, "  sampler interval:  %s\n", cfg.Sampler.Interval)
	fmt.Fprintf(os.Stdout, "  analyzer interval: %s\n", cfg.Analyzer.Interval)
	fmt.Fprintf(os.Stdout, "  daily log dir:     %s\n", cfg.Daylog.Dir)
	if cfg.Classify.TableFile != "" {
		fmt.Fprintf(os.Stdout, "  category table:    %s (watch: %v)\n", cfg.Classify.TableFile, cfg.Classify.Watch)
	} else {
		color.New(color.FgYellow).Fprintln(os.Stdout, "  warning: no classification table; all apps will be Uncategorized")
	}
	if cfg.Sampler.ProviderCommand == "" {
		color.New(color.FgYellow).Fprintln(os.Stdout, "  warning: no provider command configured; samples will be Unknown")
	}

	return nil
}
