// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema reconciles collected rows into a single table with a
// deterministic column order: base columns, then configured mention
// sources, then any other mention sources sorted, then everything else
// sorted.
package schema

import (
	"sort"
	"strings"

	"github.com/pdiddy/scholar-metrics/pkg/types"
)

// MentionPrefix precedes every mention-source column name.
const MentionPrefix = "eventdata_source_"

// Base column names, in output order.
const (
	ColORCID               = "orcid"
	ColPutCode             = "put_code"
	ColTitle               = "title"
	ColType                = "type"
	ColPublicationYear     = "publication_year_orcid"
	ColSourceName          = "source_orcid"
	ColDOI                 = "doi"
	ColIsReferencedByCount = "crossref_is_referenced_by_count"
	ColReferencesCount     = "crossref_references_count"
	ColContainerTitle      = "crossref_container_title"
	ColPublisher           = "crossref_publisher"
	ColIssuedYear          = "crossref_issued_year"
)

// BaseColumns lists the base columns in their fixed order.
var BaseColumns = []string{
	ColORCID,
	ColPutCode,
	ColTitle,
	ColType,
	ColPublicationYear,
	ColSourceName,
	ColDOI,
	ColIsReferencedByCount,
	ColReferencesCount,
	ColContainerTitle,
	ColPublisher,
	ColIssuedYear,
}

// MentionColumn returns the column name for a mention source label.
func MentionColumn(label string) string {
	return MentionPrefix + label
}

// ColumnOrder computes the reconciled column list for rows. The result
// depends only on fixed and the union of keys across rows, never on cell
// values or row order.
func ColumnOrder(rows []types.Row, fixed []string) []string {
	fixedSet := make(map[string]bool, len(fixed))
	for _, s := range fixed {
		fixedSet[s] = true
	}

	dynamic := map[string]bool{}
	extra := map[string]bool{}
	for _, r := range rows {
		for s := range r.Mentions {
			if !fixedSet[s] {
				dynamic[s] = true
			}
		}
		for k := range r.Extra {
			extra[k] = true
		}
	}

	cols := make([]string, 0, len(BaseColumns)+len(fixed)+len(dynamic)+len(extra))
	cols = append(cols, BaseColumns...)
	seen := make(map[string]bool, cap(cols))
	for _, c := range cols {
		seen[c] = true
	}
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}

	for _, s := range fixed {
		add(MentionColumn(s))
	}
	for _, s := range sortedKeys(dynamic) {
		add(MentionColumn(s))
	}
	for _, k := range sortedKeys(extra) {
		add(k)
	}
	return cols
}

// Reconcile builds the output table. Mention columns missing from a row are
// 0; any other missing cell is nil.
func Reconcile(rows []types.Row, fixed []string) *types.Table {
	cols := ColumnOrder(rows, fixed)
	t := &types.Table{Columns: cols, Rows: make([][]any, 0, len(rows))}
	for _, r := range rows {
		base := baseCells(r)
		cells := make([]any, len(cols))
		for i, c := range cols {
			if v, ok := base[c]; ok {
				cells[i] = v
				continue
			}
			if v, ok := r.Extra[c]; ok {
				cells[i] = v
				continue
			}
			if label, ok := strings.CutPrefix(c, MentionPrefix); ok {
				cells[i] = r.Mentions[label]
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func baseCells(r types.Row) map[string]any {
	cells := map[string]any{
		ColORCID:           r.ORCID,
		ColPutCode:         r.Work.PutCode,
		ColTitle:           nullable(r.Work.Title),
		ColType:            nullable(r.Work.Type),
		ColPublicationYear: nullable(r.Work.PublicationYear),
		ColSourceName:      nullable(r.Work.SourceName),
		ColDOI:             nullable(r.DOI),
	}
	md := r.Citation
	if md == nil {
		md = &types.CitationMetadata{}
	}
	cells[ColIsReferencedByCount] = deref(md.IsReferencedByCount)
	cells[ColReferencesCount] = deref(md.ReferencesCount)
	cells[ColContainerTitle] = deref(md.ContainerTitle)
	cells[ColPublisher] = deref(md.Publisher)
	cells[ColIssuedYear] = deref(md.IssuedYear)
	return cells
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsMentionColumn reports whether c names a mention-source column.
func IsMentionColumn(c string) bool {
	return strings.HasPrefix(c, MentionPrefix)
}
