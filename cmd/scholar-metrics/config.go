// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-metrics/internal/observability"
	"github.com/pdiddy/scholar-metrics/internal/secrets"
	"github.com/pdiddy/scholar-metrics/pkg/types"
)

// defaultCacheTTL bounds how long cached DOI responses are reused.
const defaultCacheTTL = 24 * time.Hour

// appConfig is the full configuration surface: collection settings at the
// top level, plus logging, cache, and output sections.
type appConfig struct {
	types.CollectionConfig `mapstructure:",squash"`

	Logging types.LoggingConfig `mapstructure:"logging"`
	Cache   types.CacheConfig   `mapstructure:"cache"`
	Output  types.OutputConfig  `mapstructure:"output"`
}

// setDefaults registers every key so config files, SCHOLAR_METRICS_* env
// vars, and bound flags all resolve through viper.
func setDefaults() {
	d := types.DefaultCollectionConfig()
	viper.SetDefault("timeout", d.Timeout)
	viper.SetDefault("user_agent", d.UserAgent)
	viper.SetDefault("max_rps", d.MaxRPS)
	viper.SetDefault("contact_email", d.ContactEmail)
	viper.SetDefault("delay", d.Delay)
	viper.SetDefault("page_size", d.PageSize)
	viper.SetDefault("max_pages", d.MaxPages)
	viper.SetDefault("fixed_sources", d.FixedSources)
	viper.SetDefault("annotate", false)
	viper.SetDefault("endpoints.orcid", "")
	viper.SetDefault("endpoints.crossref", "")
	viper.SetDefault("endpoints.eventdata", "")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")

	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.path", "")
	viper.SetDefault("cache.ttl", defaultCacheTTL)

	viper.SetDefault("output.dir", ".")
	viper.SetDefault("output.format", string(types.OutputXLSX))
	viper.SetDefault("output.preview", 20)
	viper.SetDefault("output.metrics_file", "")
}

// loadConfig resolves and validates the configuration. A contact email
// from .secrets/ fills in when none is configured.
func loadConfig() (appConfig, error) {
	var cfg appConfig
	if err := viper.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return cfg, &types.ValidationError{Field: "config", Reason: err.Error()}
	}
	cfg.ContactEmail = secrets.ContactEmail(cfg.ContactEmail, loadedSecrets)
	switch cfg.Output.Format {
	case types.OutputXLSX, types.OutputCSV:
	default:
		return cfg, &types.ValidationError{Field: "output.format", Value: string(cfg.Output.Format), Reason: "must be xlsx or csv"}
	}
	if err := cfg.CollectionConfig.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// decodeHooks extends viper's default hooks so durations may be given as a
// bare number of seconds ("0.25", 0.25) as well as with a unit ("250ms").
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		secondsHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

var durationType = reflect.TypeOf(time.Duration(0))

func secondsHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType || from == durationType {
		return data, nil
	}
	var secs float64
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return data, nil
		}
		secs = f
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		secs = float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		secs = float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		secs = v.Float()
	default:
		return data, nil
	}
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return data, nil
	}
	return time.Duration(math.Round(secs * float64(time.Second))), nil
}

// newLogger builds the process logger from the logging keys.
func newLogger() zerolog.Logger {
	return observability.NewLogger(types.LoggingConfig{
		Level:  viper.GetString("logging.level"),
		Format: viper.GetString("logging.format"),
	}, os.Stderr)
}
