// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identifier canonicalizes ORCID identifiers and extracts DOIs
// from free text.
package identifier

import (
	"regexp"
	"strings"
)

// orcidPattern matches the canonical form "0000-0002-1825-0097"; the last
// character may be the checksum letter X in either case.
var orcidPattern = regexp.MustCompile(`(?i)^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

// doiPattern matches "10." followed by a 4-9 digit registrant, a slash, and
// a suffix running until whitespace, a quote, or an angle bracket.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s"<>]+`)

// doiTrailing is sentence punctuation trimmed from the end of a DOI match.
const doiTrailing = ").,;]"

const doiResolverBase = "https://doi.org/"

// Normalize trims the input and drops inner spaces. When the remaining
// characters, ignoring hyphens, number exactly 16, they are regrouped as
// four hyphen-separated groups of four. Any other input is returned trimmed
// and otherwise unchanged.
func Normalize(raw string) string {
	o := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	compact := strings.ReplaceAll(o, "-", "")
	if len(compact) != 16 {
		return o
	}
	return compact[0:4] + "-" + compact[4:8] + "-" + compact[8:12] + "-" + compact[12:16]
}

// Valid reports whether the normalized form of id is a canonical ORCID.
func Valid(id string) bool {
	return orcidPattern.MatchString(Normalize(id))
}

// ExtractDOI returns the first DOI found in text with trailing sentence
// punctuation removed, or "" when there is none.
func ExtractDOI(text string) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return ""
	}
	m := doiPattern.FindString(t)
	if m == "" {
		return ""
	}
	return strings.TrimRight(m, doiTrailing)
}

// DOIURL returns the canonical resolver URL for doi.
func DOIURL(doi string) string {
	return doiResolverBase + doi
}
