// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crossref fetches citation and publisher metadata for a DOI from
// the Crossref REST API.
package crossref

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/scholar-metrics/internal/httputil"
	"github.com/pdiddy/scholar-metrics/pkg/types"
)

// worksAPIBase is the Crossref works endpoint. Declared as a var so tests
// can substitute an httptest server.
var worksAPIBase = "https://api.crossref.org/works"

const upstream = "crossref"

// Client queries the Crossref REST API.
type Client struct {
	HTTP *httputil.Client

	// Email is sent as the mailto parameter for the polite pool. It is
	// omitted entirely when blank.
	Email string

	// BaseURL overrides the works endpoint when set.
	BaseURL string
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return worksAPIBase
}

// FetchMetadata returns the citation metadata for doi. Every field is
// optional in the response; missing ones stay nil.
func (c *Client) FetchMetadata(ctx context.Context, doi string) (*types.CitationMetadata, error) {
	params := url.Values{}
	if email := strings.TrimSpace(c.Email); email != "" {
		params.Set("mailto", email)
	}

	var resp worksResponse
	if err := c.HTTP.GetJSON(ctx, upstream, c.base()+"/"+url.PathEscape(doi), params, &resp); err != nil {
		return nil, fmt.Errorf("fetching Crossref metadata for %s: %w", doi, err)
	}
	return resp.Message.metadata(), nil
}

// Crossref API JSON structures.
type worksResponse struct {
	Message work `json:"message"`
}

type work struct {
	IsReferencedByCount *int       `json:"is-referenced-by-count"`
	ReferencesCount     *int       `json:"references-count"`
	ContainerTitle      []*string  `json:"container-title"`
	Publisher           *string    `json:"publisher"`
	Issued              *dateParts `json:"issued"`
}

// dateParts holds [[year, month, day]]; any element may be null.
type dateParts struct {
	DateParts [][]*int `json:"date-parts"`
}

func (w work) metadata() *types.CitationMetadata {
	md := &types.CitationMetadata{
		IsReferencedByCount: w.IsReferencedByCount,
		ReferencesCount:     w.ReferencesCount,
		Publisher:           w.Publisher,
	}
	if len(w.ContainerTitle) > 0 {
		md.ContainerTitle = w.ContainerTitle[0]
	}
	if w.Issued != nil && len(w.Issued.DateParts) > 0 && len(w.Issued.DateParts[0]) > 0 {
		md.IssuedYear = w.Issued.DateParts[0][0]
	}
	return md
}
