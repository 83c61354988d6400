// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-metrics/internal/observability"
	"github.com/pdiddy/scholar-metrics/pkg/types"
)

type citationSource interface {
	FetchMetadata(ctx context.Context, doi string) (*types.CitationMetadata, error)
}

type mentionSource interface {
	AggregateMentions(ctx context.Context, doi string) (types.MentionTally, error)
}

// Citations serves citation metadata from the store, falling through to
// Source on a miss and storing successful results.
type Citations struct {
	Source  citationSource
	Store   *Store
	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// FetchMetadata implements the pipeline's citation source.
func (c *Citations) FetchMetadata(ctx context.Context, doi string) (*types.CitationMetadata, error) {
	var md types.CitationMetadata
	if lookup(ctx, c.Store, c.Logger, c.Metrics, KindCitation, doi, &md) {
		return &md, nil
	}

	fetched, err := c.Source.FetchMetadata(ctx, doi)
	if err != nil {
		return nil, err
	}
	if err := c.Store.Put(ctx, KindCitation, doi, fetched); err != nil {
		c.Logger.Warn().Err(err).Str("doi", doi).Msg("cache write failed")
	}
	return fetched, nil
}

// Mentions serves mention tallies from the store, falling through to
// Source on a miss and storing successful results.
type Mentions struct {
	Source  mentionSource
	Store   *Store
	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// AggregateMentions implements the pipeline's mention source.
func (m *Mentions) AggregateMentions(ctx context.Context, doi string) (types.MentionTally, error) {
	var tally types.MentionTally
	if lookup(ctx, m.Store, m.Logger, m.Metrics, KindMentions, doi, &tally) {
		if tally.Counts == nil {
			tally.Counts = map[string]int{}
		}
		// No pages were requested for a cached tally.
		tally.Pages = 0
		return tally, nil
	}

	fetched, err := m.Source.AggregateMentions(ctx, doi)
	if err != nil {
		return types.MentionTally{}, err
	}
	if err := m.Store.Put(ctx, KindMentions, doi, fetched); err != nil {
		m.Logger.Warn().Err(err).Str("doi", doi).Msg("cache write failed")
	}
	return fetched, nil
}

// lookup treats read errors as misses.
func lookup(ctx context.Context, s *Store, log zerolog.Logger, metrics *observability.Metrics, kind, doi string, out any) bool {
	hit, err := s.Get(ctx, kind, doi, out)
	if err != nil {
		log.Warn().Err(err).Str("doi", doi).Msg("cache read failed")
		hit = false
	}
	metrics.RecordCacheLookup(kind, hit)
	if hit {
		log.Debug().Str("doi", doi).Str("kind", kind).Msg("cache hit")
	}
	return hit
}
