// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orcid lists a researcher's works from the ORCID public API and
// recovers a DOI from each work's external identifiers.
package orcid

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/scholar-metrics/internal/httputil"
	"github.com/pdiddy/scholar-metrics/internal/identifier"
	"github.com/pdiddy/scholar-metrics/pkg/types"
)

// apiBase is the ORCID public API root. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://pub.orcid.org/v3.0"

const upstream = "orcid"

// Client queries the ORCID public API.
type Client struct {
	HTTP *httputil.Client

	// BaseURL overrides the public API root when set.
	BaseURL string
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return apiBase
}

// ListWorks returns every work summary in every group of the identifier's
// works listing, in listing order. Non-2xx responses surface as
// *types.UpstreamError.
func (c *Client) ListWorks(ctx context.Context, orcid string) ([]types.WorkSummary, error) {
	var resp worksResponse
	if err := c.HTTP.GetJSON(ctx, upstream, c.base()+"/"+orcid+"/works", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing works for %s: %w", orcid, err)
	}

	var works []types.WorkSummary
	for _, g := range resp.Group {
		for _, ws := range g.WorkSummary {
			works = append(works, types.WorkSummary{
				PutCode:         ws.PutCode,
				Title:           ws.Title.title(),
				Type:            ws.Type,
				PublicationYear: ws.PublicationDate.year(),
				SourceName:      ws.Source.name(),
			})
		}
	}
	return works, nil
}

// FetchWork returns the full record for one work.
func (c *Client) FetchWork(ctx context.Context, orcid string, putCode int64) (*types.WorkDetail, error) {
	var resp workDetail
	reqURL := fmt.Sprintf("%s/%s/work/%d", c.base(), orcid, putCode)
	if err := c.HTTP.GetJSON(ctx, upstream, reqURL, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching work %d for %s: %w", putCode, orcid, err)
	}

	detail := &types.WorkDetail{PutCode: putCode}
	if resp.ExternalIDs != nil {
		for _, eid := range resp.ExternalIDs.ExternalID {
			detail.ExternalIDs = append(detail.ExternalIDs, types.ExternalID{
				Type:  eid.Type,
				Value: eid.Value,
			})
		}
	}
	return detail, nil
}

// ResolveDOI picks a DOI from a work's external identifiers. An identifier
// typed "doi" wins: its value is passed through the text extractor, falling
// back to the raw trimmed value. Otherwise the first value of any type that
// contains a DOI is used. It returns "" when no DOI is present.
func ResolveDOI(detail *types.WorkDetail) string {
	if detail == nil {
		return ""
	}

	for _, eid := range detail.ExternalIDs {
		if strings.EqualFold(strings.TrimSpace(eid.Type), "doi") {
			value := strings.TrimSpace(eid.Value)
			if doi := identifier.ExtractDOI(value); doi != "" {
				return doi
			}
			return value
		}
	}

	for _, eid := range detail.ExternalIDs {
		if doi := identifier.ExtractDOI(eid.Value); doi != "" {
			return doi
		}
	}
	return ""
}

// ORCID v3.0 JSON structures. Nested objects are pointers because any of
// them may be null.
type worksResponse struct {
	Group []workGroup `json:"group"`
}

type workGroup struct {
	WorkSummary []workSummary `json:"work-summary"`
}

type workSummary struct {
	PutCode         int64       `json:"put-code"`
	Title           *workTitle  `json:"title"`
	Type            string      `json:"type"`
	PublicationDate *fuzzyDate  `json:"publication-date"`
	Source          *workSource `json:"source"`
}

type stringValue struct {
	Value string `json:"value"`
}

type workTitle struct {
	Title *stringValue `json:"title"`
}

func (t *workTitle) title() string {
	if t == nil || t.Title == nil {
		return ""
	}
	return t.Title.Value
}

type fuzzyDate struct {
	Year *stringValue `json:"year"`
}

func (d *fuzzyDate) year() string {
	if d == nil || d.Year == nil {
		return ""
	}
	return d.Year.Value
}

type workSource struct {
	SourceName *stringValue `json:"source-name"`
}

func (s *workSource) name() string {
	if s == nil || s.SourceName == nil {
		return ""
	}
	return s.SourceName.Value
}

type workDetail struct {
	ExternalIDs *externalIDs `json:"external-ids"`
}

type externalIDs struct {
	ExternalID []externalID `json:"external-id"`
}

type externalID struct {
	Type  string `json:"external-id-type"`
	Value string `json:"external-id-value"`
}
