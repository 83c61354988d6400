// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-metrics/internal/cache"
	"github.com/pdiddy/scholar-metrics/internal/collect"
	"github.com/pdiddy/scholar-metrics/internal/export"
	"github.com/pdiddy/scholar-metrics/internal/httputil"
	"github.com/pdiddy/scholar-metrics/internal/input"
	"github.com/pdiddy/scholar-metrics/internal/observability"
	"github.com/pdiddy/scholar-metrics/pkg/types"
)

const metricsNamespace = "scholar_metrics"

var collectCmd = &cobra.Command{
	Use:   "collect <identifiers.xlsx|identifiers.csv>",
	Short: "Collect works, citations, and mentions for a sheet of ORCID iDs",
	Long: `Collect reads ORCID iDs from the given sheet (column "orcid" or
"identifier", otherwise the first column), then for each researcher lists their
works, resolves DOIs, and fetches Crossref metadata and Event Data mention
tallies. The consolidated table is written to
orcid_crossref_eventdata_YYYYMMDD_HHMMSS.xlsx (or .csv) with a run manifest
next to it.`,
	Args: cobra.ExactArgs(1),
	RunE: runCollect,
}

func init() {
	f := collectCmd.Flags()
	f.String("email", "", "contact email sent as mailto to Crossref and Event Data (recommended)")
	f.Duration("delay", types.DefaultDelay, "courtesy delay before each request stage, e.g. 250ms (config and env also accept seconds, e.g. 0.25)")
	f.Int("page-size", types.DefaultPageSize, "Event Data events per page")
	f.Int("max-pages", types.DefaultMaxPages, "maximum Event Data pages per DOI")
	f.StringSlice("sources", types.DefaultFixedSources, "mention sources always present as columns, in order")
	f.Bool("annotate", false, "add per-row stage status columns")
	f.Duration("timeout", types.DefaultTimeout, "per-request HTTP timeout")
	f.Float64("max-rps", 0, "overall request rate ceiling (0 disables)")
	f.StringP("output-dir", "o", ".", "directory for the output file and manifest")
	f.String("format", string(types.OutputXLSX), "output format: xlsx or csv")
	f.Int("preview", 20, "rows to preview on the terminal (0 disables)")
	f.String("metrics-file", "", "write Prometheus metrics to this file after the run")
	f.Bool("cache", false, "reuse cached Crossref and Event Data responses")
	f.String("cache-path", "", "cache database path (default: XDG cache dir)")
	f.Duration("cache-ttl", defaultCacheTTL, "maximum age of reused cache entries")

	bind := map[string]string{
		"contact_email":       "email",
		"delay":               "delay",
		"page_size":           "page-size",
		"max_pages":           "max-pages",
		"fixed_sources":       "sources",
		"annotate":            "annotate",
		"timeout":             "timeout",
		"max_rps":             "max-rps",
		"output.dir":          "output-dir",
		"output.format":       "format",
		"output.preview":      "preview",
		"output.metrics_file": "metrics-file",
		"cache.enabled":       "cache",
		"cache.path":          "cache-path",
		"cache.ttl":           "cache-ttl",
	}
	for key, flag := range bind {
		viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runID := export.NewRunID()
	log := observability.WithRun(observability.NewLogger(cfg.Logging, os.Stderr), runID)

	ids, err := input.ReadFile(args[0])
	if err != nil {
		return err
	}
	log.Info().Str("column", ids.Column).Int("valid", len(ids.Valid)).Int("invalid", len(ids.Invalid)).
		Msgf("read %s", args[0])
	if len(ids.Invalid) > 0 {
		log.Warn().Strs("invalid", ids.Invalid).Msgf("%d invalid ORCID iD(s) will be ignored", len(ids.Invalid))
	}
	if len(ids.Valid) == 0 {
		return &types.FatalError{Op: "collect", Err: errors.New("no valid ORCID iDs found in " + args[0])}
	}
	if cfg.ContactEmail == "" {
		log.Warn().Msg("no contact email set; Crossref and Event Data requests will omit mailto (use --email)")
	}

	metrics := observability.NewMetrics(metricsNamespace)
	pipeline := collect.New(cfg.CollectionConfig, httputil.NewClient(cfg.HTTPConfig, metrics), log, metrics)
	pipeline.Progress = func(f float64) {
		log.Info().Float64("progress", f).Msgf("progress %.0f%%", f*100)
	}

	if cfg.Cache.Enabled {
		store, err := cache.Open(cfg.Cache)
		if err != nil {
			return err
		}
		defer store.Close()
		pipeline.Citations = &cache.Citations{Source: pipeline.Citations, Store: store, Logger: log, Metrics: metrics}
		pipeline.Mentions = &cache.Mentions{Source: pipeline.Mentions, Store: store, Logger: log, Metrics: metrics}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	manifest := &export.Manifest{
		RunID:              runID,
		StartedAt:          start,
		Input:              args[0],
		Config:             cfg.CollectionConfig,
		InvalidIdentifiers: ids.Invalid,
	}
	log.Info().Msgf("start: %s", start.Format(time.DateTime))
	log.Info().Msgf("valid ORCID iDs: %d | fixed sources: %d", len(ids.Valid), len(cfg.FixedSources))

	result, err := pipeline.Run(ctx, ids.Valid, cfg.CollectionConfig)
	if err != nil {
		writeMetrics(log, metrics, cfg.Output.MetricsFile)
		return err
	}
	log.Info().Msgf("collection finished; rows: %d", len(result.Rows))

	out, err := writeOutput(cfg.Output, result.Table, start)
	if err != nil {
		return err
	}
	export.Preview(cmd.OutOrStdout(), result.Table, cfg.Output.Preview)

	manifest.Output = out
	manifest.Counts = export.Counts{
		Identifiers:      len(ids.Valid) + len(ids.Invalid),
		Invalid:          len(ids.Invalid),
		Processed:        result.Processed(),
		Skipped:          len(result.Skipped),
		Works:            result.Works,
		DOIs:             result.DOIs,
		Rows:             len(result.Rows),
		MetadataFailures: result.MetadataFailures,
		MentionFailures:  result.MentionFailures,
	}
	manifest.SkippedIdentifiers = result.Skipped
	manifest.Finish(time.Now())
	if err := export.WriteManifest(export.ManifestPath(out), manifest); err != nil {
		log.Warn().Err(err).Msg("could not write run manifest")
	}
	writeMetrics(log, metrics, cfg.Output.MetricsFile)

	log.Info().Msgf("end: %s (%s)", manifest.FinishedAt.Format(time.DateTime), manifest.Duration)
	log.Info().Msg(result.Summary())
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d row(s) to %s\n", len(result.Rows), out)
	return nil
}

func writeOutput(cfg types.OutputConfig, table *types.Table, now time.Time) (string, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(cfg.Dir, export.FileName(now, cfg.Format))
	if err := export.Write(path, table, cfg.Format); err != nil {
		return "", &types.FatalError{Op: "writing output", Err: err}
	}
	return path, nil
}

func writeMetrics(log zerolog.Logger, m *observability.Metrics, path string) {
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not write metrics file")
	}
}
