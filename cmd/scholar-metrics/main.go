// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar-metrics CLI. It reads a
// sheet of ORCID iDs, collects works, Crossref citation metadata, and Event
// Data mention tallies for each, and writes one consolidated table.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-metrics/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the scholar-metrics CLI.
var rootCmd = &cobra.Command{
	Use:   "scholar-metrics",
	Short: "Collect citation and mention metrics for a list of ORCID iDs",
	Long: `scholar-metrics reads a spreadsheet of ORCID iDs and, for each researcher,
lists their works on ORCID, resolves a DOI per work, fetches citation metadata
from Crossref and tallies mentions from Crossref Event Data. The result is one
table with a row per work, written as a timestamped xlsx or csv file.

Requests are sequential with a fixed courtesy delay. Failed calls are never
retried: a failed works listing skips the researcher, and a failed metadata or
mention lookup leaves that row's columns empty or zero.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir, newLogger())
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholar-metrics.yaml or ~/.config/scholar-metrics/scholar-metrics.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (default info)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json (default console)")

	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	// Load .env if present (for SCHOLAR_METRICS_* overrides).
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholar-metrics")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholar-metrics"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("SCHOLAR_METRICS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
