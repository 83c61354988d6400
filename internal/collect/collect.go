// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect runs the collection pipeline: for each ORCID it lists
// works, resolves DOIs, enriches each DOI with Crossref metadata and Event
// Data mention tallies, and reconciles the rows into one table.
//
// Failures degrade at the finest granularity: a listing failure skips the
// identifier, a detail failure leaves the row without a DOI, and metadata or
// mention failures null or zero their own columns without touching the row.
package collect

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-metrics/internal/crossref"
	"github.com/pdiddy/scholar-metrics/internal/eventdata"
	"github.com/pdiddy/scholar-metrics/internal/httputil"
	"github.com/pdiddy/scholar-metrics/internal/identifier"
	"github.com/pdiddy/scholar-metrics/internal/observability"
	"github.com/pdiddy/scholar-metrics/internal/orcid"
	"github.com/pdiddy/scholar-metrics/internal/schema"
	"github.com/pdiddy/scholar-metrics/pkg/types"
)

// Registry lists a researcher's works and fetches single work records.
type Registry interface {
	ListWorks(ctx context.Context, orcid string) ([]types.WorkSummary, error)
	FetchWork(ctx context.Context, orcid string, putCode int64) (*types.WorkDetail, error)
}

// CitationSource fetches citation metadata for a DOI.
type CitationSource interface {
	FetchMetadata(ctx context.Context, doi string) (*types.CitationMetadata, error)
}

// MentionSource tallies mentions of a DOI by source.
type MentionSource interface {
	AggregateMentions(ctx context.Context, doi string) (types.MentionTally, error)
}

// Stage status values written to annotation columns.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Annotation column names, added when CollectionConfig.Annotate is set.
const (
	ColCrossrefStatus  = "crossref_status"
	ColEventDataStatus = "eventdata_status"
	ColEventDataPages  = "eventdata_pages"
)

// Pipeline wires the three upstream sources together. Calls are strictly
// sequential: one identifier, one work, one page at a time.
type Pipeline struct {
	Registry  Registry
	Citations CitationSource
	Mentions  MentionSource

	// Pacer applies the courtesy delay before each request stage.
	Pacer *httputil.Pacer

	Logger  zerolog.Logger
	Metrics *observability.Metrics

	// Progress, when set, receives identifiers completed / total after
	// each identifier.
	Progress func(float64)
}

// New builds a Pipeline backed by the ORCID, Crossref, and Event Data
// clients configured from cfg.
func New(cfg types.CollectionConfig, hc *httputil.Client, logger zerolog.Logger, metrics *observability.Metrics) *Pipeline {
	pacer := &httputil.Pacer{Delay: cfg.Delay}
	return &Pipeline{
		Registry: &orcid.Client{HTTP: hc, BaseURL: cfg.Endpoints.ORCID},
		Citations: &crossref.Client{
			HTTP:    hc,
			Email:   cfg.ContactEmail,
			BaseURL: cfg.Endpoints.Crossref,
		},
		Mentions: &eventdata.Client{
			HTTP:     hc,
			Email:    cfg.ContactEmail,
			PageSize: cfg.PageSize,
			MaxPages: cfg.MaxPages,
			Pacer:    pacer,
			BaseURL:  cfg.Endpoints.EventData,
			Metrics:  metrics,
		},
		Pacer:   pacer,
		Logger:  logger,
		Metrics: metrics,
	}
}

// BatchResult holds the rows, the reconciled table, and run counters.
type BatchResult struct {
	Rows  []types.Row
	Table *types.Table

	Identifiers int
	// Skipped lists identifiers whose works listing failed.
	Skipped []string

	Works            int
	DOIs             int
	MetadataFailures int
	MentionFailures  int
}

// Processed returns the number of identifiers whose works were listed.
func (r BatchResult) Processed() int {
	return r.Identifiers - len(r.Skipped)
}

// ErrNoRows is wrapped in the FatalError returned when a run yields no rows.
var ErrNoRows = errors.New("no rows collected")

// Run processes identifiers in input order and returns the reconciled
// table. Only cancellation of ctx or an empty result aborts the run; both
// surface as *types.FatalError.
func (p *Pipeline) Run(ctx context.Context, identifiers []string, cfg types.CollectionConfig) (BatchResult, error) {
	result := BatchResult{Identifiers: len(identifiers)}
	total := len(identifiers)

	for i, raw := range identifiers {
		id := identifier.Normalize(raw)
		log := observability.WithORCID(p.Logger, id)
		log.Info().Msgf("[ORCID %d/%d] %s", i+1, total, id)

		rows, err := p.collectIdentifier(ctx, log, id, cfg, &result)
		if err != nil {
			if ctx.Err() != nil {
				return result, &types.FatalError{Op: "collect", Err: ctx.Err()}
			}
			log.Warn().Err(err).Msgf("skipping %s: could not list works", id)
			p.Metrics.RecordIdentifier(true)
			result.Skipped = append(result.Skipped, id)
		} else {
			p.Metrics.RecordIdentifier(false)
			result.Rows = append(result.Rows, rows...)
		}

		if p.Progress != nil {
			p.Progress(float64(i+1) / float64(total))
		}
	}

	result.Table = schema.Reconcile(result.Rows, cfg.FixedSources)
	if len(result.Rows) == 0 {
		return result, &types.FatalError{Op: "collect", Err: ErrNoRows}
	}
	return result, nil
}

// collectIdentifier lists one identifier's works and builds a row per work.
// The returned error is the listing failure; later stages never fail the
// identifier.
func (p *Pipeline) collectIdentifier(ctx context.Context, log zerolog.Logger, id string, cfg types.CollectionConfig, result *BatchResult) ([]types.Row, error) {
	if err := p.Pacer.Wait(ctx); err != nil {
		return nil, err
	}
	works, err := p.Registry.ListWorks(ctx, id)
	if err != nil {
		p.Metrics.RecordStageFailure("listing")
		return nil, err
	}
	log.Info().Int("works", len(works)).Msgf("  works in ORCID: %d", len(works))

	rows := make([]types.Row, 0, len(works))
	for j, w := range works {
		log.Info().Msgf("    [%d/%d] put-code=%d | %s", j+1, len(works), w.PutCode, w.Title)

		row, err := p.collectWork(ctx, log, id, w, cfg, result)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
		p.Metrics.RecordRow()
		result.Works++
	}
	return rows, nil
}

// collectWork assembles one row. It only returns an error when ctx is done.
func (p *Pipeline) collectWork(ctx context.Context, log zerolog.Logger, id string, w types.WorkSummary, cfg types.CollectionConfig, result *BatchResult) (types.Row, error) {
	row := types.Row{ORCID: id, Work: w}

	if err := p.Pacer.Wait(ctx); err != nil {
		return row, err
	}
	detail := Attempt(func() (*types.WorkDetail, error) {
		return p.Registry.FetchWork(ctx, id, w.PutCode)
	})
	if !detail.OK() {
		if ctx.Err() != nil {
			return row, ctx.Err()
		}
		p.Metrics.RecordStageFailure("detail")
		log.Debug().Err(detail.Err).Int64("put_code", w.PutCode).Msg("work detail unavailable; no DOI")
	}
	row.DOI = orcid.ResolveDOI(detail.Or(nil))

	if row.DOI == "" {
		row.Mentions = mentionColumns(cfg.FixedSources, nil)
		if cfg.Annotate {
			annotate(&row, StatusSkipped, StatusSkipped, 0)
		}
		return row, nil
	}
	result.DOIs++
	dlog := observability.WithDOI(log, row.DOI)

	if err := p.Pacer.Wait(ctx); err != nil {
		return row, err
	}
	metadata := Attempt(func() (*types.CitationMetadata, error) {
		return p.Citations.FetchMetadata(ctx, row.DOI)
	})
	if !metadata.OK() {
		if ctx.Err() != nil {
			return row, ctx.Err()
		}
		result.MetadataFailures++
		p.Metrics.RecordStageFailure("metadata")
		dlog.Debug().Err(metadata.Err).Msg("citation metadata unavailable")
	}
	row.Citation = metadata.Or(nil)

	if err := p.Pacer.Wait(ctx); err != nil {
		return row, err
	}
	mentions := Attempt(func() (types.MentionTally, error) {
		return p.Mentions.AggregateMentions(ctx, row.DOI)
	})
	if !mentions.OK() {
		if ctx.Err() != nil {
			return row, ctx.Err()
		}
		result.MentionFailures++
		p.Metrics.RecordStageFailure("mentions")
		dlog.Debug().Err(mentions.Err).Msg("mention tally unavailable")
	}
	tally := mentions.Or(types.MentionTally{})
	row.Mentions = mentionColumns(cfg.FixedSources, tally.Counts)

	if cfg.Annotate {
		annotate(&row, status(metadata.OK()), status(mentions.OK()), tally.Pages)
	}
	return row, nil
}

// mentionColumns returns counts with every fixed source present, zero when
// the source never appeared.
func mentionColumns(fixed []string, counts map[string]int) map[string]int {
	out := make(map[string]int, len(fixed)+len(counts))
	for _, s := range fixed {
		out[s] = 0
	}
	for s, n := range counts {
		out[s] = n
	}
	return out
}

func annotate(row *types.Row, crossrefStatus, eventDataStatus string, pages int) {
	if row.Extra == nil {
		row.Extra = make(map[string]any)
	}
	row.Extra[ColCrossrefStatus] = crossrefStatus
	row.Extra[ColEventDataStatus] = eventDataStatus
	row.Extra[ColEventDataPages] = pages
}

func status(ok bool) string {
	if ok {
		return StatusOK
	}
	return StatusFailed
}

// Summary renders the counters as a single human-readable line.
func (r BatchResult) Summary() string {
	return fmt.Sprintf("%d identifier(s): %d processed, %d skipped; %d work(s), %d with DOI; %d metadata and %d mention failure(s); %d row(s)",
		r.Identifiers, r.Processed(), len(r.Skipped), r.Works, r.DOIs,
		r.MetadataFailures, r.MentionFailures, len(r.Rows))
}
