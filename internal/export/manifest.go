// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-metrics/pkg/types"
)

// Counts summarizes a run.
type Counts struct {
	Identifiers      int `yaml:"identifiers"`
	Invalid          int `yaml:"invalid"`
	Processed        int `yaml:"processed"`
	Skipped          int `yaml:"skipped"`
	Works            int `yaml:"works"`
	DOIs             int `yaml:"dois"`
	Rows             int `yaml:"rows"`
	MetadataFailures int `yaml:"metadata_failures"`
	MentionFailures  int `yaml:"mention_failures"`
}

// Manifest records what a run read, how it was configured, and what it
// produced.
type Manifest struct {
	RunID      string                 `yaml:"run_id"`
	StartedAt  time.Time              `yaml:"started_at"`
	FinishedAt time.Time              `yaml:"finished_at"`
	Duration   string                 `yaml:"duration"`
	Input      string                 `yaml:"input"`
	Output     string                 `yaml:"output"`
	Config     types.CollectionConfig `yaml:"config"`
	Counts     Counts                 `yaml:"counts"`

	InvalidIdentifiers []string `yaml:"invalid_identifiers,omitempty"`
	SkippedIdentifiers []string `yaml:"skipped_identifiers,omitempty"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// ManifestPath returns the manifest path for an output file:
// the output path with its extension replaced by ".manifest.yaml".
func ManifestPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".manifest.yaml"
}

// Finish stamps the end time and duration.
func (m *Manifest) Finish(now time.Time) {
	m.FinishedAt = now
	m.Duration = now.Sub(m.StartedAt).Round(time.Millisecond).String()
}

// WriteManifest stores m as YAML at path.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}
