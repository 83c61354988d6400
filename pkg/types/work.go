// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scholar-metrics
// collection pipeline: registry works, citation metadata, mention tallies,
// output rows and the reconciled table, plus configuration and the error
// taxonomy shared across stages.
package types

// WorkSummary is one research output as listed by the identifier registry.
type WorkSummary struct {
	// PutCode is the registry's opaque per-work key.
	PutCode int64 `json:"put_code" yaml:"put_code"`

	Title string `json:"title" yaml:"title"`

	// Type is the registry work type (e.g. "journal-article").
	Type string `json:"type" yaml:"type"`

	// PublicationYear is the year as reported by the registry, verbatim.
	PublicationYear string `json:"publication_year" yaml:"publication_year"`

	// SourceName names the registry source that supplied the record.
	SourceName string `json:"source_name" yaml:"source_name"`
}

// ExternalID is one (type, value) pair from a work detail record.
type ExternalID struct {
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

// WorkDetail is the full registry record for a work, reduced to the parts
// used for DOI resolution.
type WorkDetail struct {
	PutCode     int64        `json:"put_code" yaml:"put_code"`
	ExternalIDs []ExternalID `json:"external_ids" yaml:"external_ids"`
}

// CitationMetadata holds scalar Crossref fields. Every field is nullable on
// its own; a nil *CitationMetadata means the whole record is unavailable.
type CitationMetadata struct {
	IsReferencedByCount *int    `json:"is_referenced_by_count" yaml:"is_referenced_by_count"`
	ReferencesCount     *int    `json:"references_count" yaml:"references_count"`
	ContainerTitle      *string `json:"container_title" yaml:"container_title"`
	Publisher           *string `json:"publisher" yaml:"publisher"`
	IssuedYear          *int    `json:"issued_year" yaml:"issued_year"`
}

// MentionTally counts Event Data events per source label for one DOI,
// accumulated across every page fetched.
type MentionTally struct {
	Counts map[string]int `json:"counts" yaml:"counts"`

	// Pages is the number of pages requested.
	Pages int `json:"pages" yaml:"pages"`

	// Capped reports that the page cap stopped the feed before it was exhausted.
	Capped bool `json:"capped,omitempty" yaml:"capped,omitempty"`
}

// Add increments the count for label.
func (t *MentionTally) Add(label string, n int) {
	if t.Counts == nil {
		t.Counts = make(map[string]int)
	}
	t.Counts[label] += n
}

// Total returns the number of events tallied.
func (t MentionTally) Total() int {
	total := 0
	for _, n := range t.Counts {
		total += n
	}
	return total
}

// Row is one output record: a work summary in its identifier context, the
// resolved DOI, optional citation metadata, and mention counts.
type Row struct {
	ORCID string
	Work  WorkSummary

	// DOI is empty when no DOI could be resolved.
	DOI string

	// Citation is nil when the DOI was absent or the metadata fetch failed.
	Citation *CitationMetadata

	// Mentions maps source label to count. Every fixed source is present.
	Mentions map[string]int

	// Extra holds any additional columns (e.g. stage annotations).
	Extra map[string]any
}

// Table is the reconciled output: a fixed column list and one cell slice
// per row, aligned with Columns. Nil cells are empty values.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row i for column name, or nil.
func (t *Table) Cell(i int, name string) any {
	j := t.Index(name)
	if j < 0 || i < 0 || i >= len(t.Rows) {
		return nil
	}
	return t.Rows[i][j]
}
