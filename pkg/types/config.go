// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultFixedSources lists the mention-source columns that are always
// present in the output, in column order. "unknown" catches events whose
// source label is missing or blank.
var DefaultFixedSources = []string{
	"twitter", "news", "blogs", "reddit", "wikipedia", "facebook",
	"policy", "patent", "stackexchange", "youtube", "linkedin", "unknown",
}

const (
	DefaultDelay     = 250 * time.Millisecond
	DefaultPageSize  = 1000
	DefaultMaxPages  = 50
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "scholar-metrics/0.1"
)

// HTTPConfig holds shared HTTP settings used by every upstream client.
type HTTPConfig struct {
	// Timeout is the fixed per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRPS caps the overall request rate across all upstreams.
	// Zero disables the cap; the courtesy delay still applies.
	MaxRPS float64 `json:"max_rps" yaml:"max_rps" mapstructure:"max_rps" validate:"gte=0"`
}

// Endpoints holds the upstream base URLs. Empty values select the public
// production endpoints.
type Endpoints struct {
	ORCID     string `json:"orcid,omitempty" yaml:"orcid,omitempty" mapstructure:"orcid" validate:"omitempty,url"`
	Crossref  string `json:"crossref,omitempty" yaml:"crossref,omitempty" mapstructure:"crossref" validate:"omitempty,url"`
	EventData string `json:"eventdata,omitempty" yaml:"eventdata,omitempty" mapstructure:"eventdata" validate:"omitempty,url"`
}

// CollectionConfig holds every setting the collection pipeline reads.
// It is passed explicitly through the pipeline; nothing is process-global.
type CollectionConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// ContactEmail is sent as the mailto parameter to Crossref and Event
	// Data. Optional but recommended; omitted from requests when blank.
	ContactEmail string `json:"contact_email,omitempty" yaml:"contact_email,omitempty" mapstructure:"contact_email" validate:"omitempty,email"`

	// Delay is the courtesy pause applied before each outbound request
	// stage and between Event Data pages. Zero disables it.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay" validate:"gte=0"`

	// PageSize is the Event Data rows parameter.
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size" validate:"gte=1,lte=10000"`

	// MaxPages bounds the number of Event Data pages fetched per DOI.
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages" validate:"gte=1"`

	// FixedSources are the mention-source columns always present in the output.
	FixedSources []string `json:"fixed_sources" yaml:"fixed_sources" mapstructure:"fixed_sources" validate:"min=1,dive,required"`

	// Annotate adds per-row stage status columns to the output.
	Annotate bool `json:"annotate,omitempty" yaml:"annotate,omitempty" mapstructure:"annotate"`

	Endpoints Endpoints `json:"endpoints" yaml:"endpoints" mapstructure:"endpoints"`
}

// DefaultCollectionConfig returns the documented defaults.
func DefaultCollectionConfig() CollectionConfig {
	return CollectionConfig{
		HTTPConfig: HTTPConfig{
			Timeout:   DefaultTimeout,
			UserAgent: DefaultUserAgent,
		},
		Delay:        DefaultDelay,
		PageSize:     DefaultPageSize,
		MaxPages:     DefaultMaxPages,
		FixedSources: append([]string(nil), DefaultFixedSources...),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration and returns a *ValidationError naming
// the first offending field.
func (c CollectionConfig) Validate() error {
	for _, s := range c.FixedSources {
		if strings.TrimSpace(s) == "" {
			return &ValidationError{Field: "fixed_sources", Value: s, Reason: "blank source name"}
		}
	}
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Field:  fe.Namespace(),
			Value:  fmt.Sprint(fe.Value()),
			Reason: fmt.Sprintf("failed %q constraint", fe.Tag()),
		}
	}
	return fmt.Errorf("validating config: %w", err)
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console (human-readable) or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// CacheConfig controls the optional per-DOI response cache.
type CacheConfig struct {
	Enabled bool          `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string        `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
	TTL     time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// OutputFormat selects the table serialization.
type OutputFormat string

const (
	OutputXLSX OutputFormat = "xlsx"
	OutputCSV  OutputFormat = "csv"
)

// OutputConfig holds settings for writing the reconciled table.
type OutputConfig struct {
	// Dir is the directory the timestamped output file is written to.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format"`

	// Preview is the number of rows echoed to the terminal (0 disables).
	Preview int `json:"preview" yaml:"preview" mapstructure:"preview"`

	// MetricsFile, when set, receives Prometheus text-format metrics at the end of a run.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`
}
