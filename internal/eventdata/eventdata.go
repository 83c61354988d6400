// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eventdata tallies Crossref Event Data mentions of a DOI by
// source, following the feed's cursor pagination.
package eventdata

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/scholar-metrics/internal/httputil"
	"github.com/pdiddy/scholar-metrics/internal/identifier"
	"github.com/pdiddy/scholar-metrics/internal/observability"
	"github.com/pdiddy/scholar-metrics/pkg/types"
)

// eventsAPIBase is the Event Data events endpoint. Declared as a var so
// tests can substitute an httptest server.
var eventsAPIBase = "https://api.eventdata.crossref.org/v1/events"

const (
	upstream = "eventdata"

	// UnknownSource labels events with a missing or blank source.
	UnknownSource = "unknown"
)

// Client queries the Event Data events feed.
type Client struct {
	HTTP *httputil.Client

	// Email is sent as the mailto parameter; omitted when blank.
	Email string

	// PageSize is the rows parameter per request.
	PageSize int

	// MaxPages is the absolute cap on requests per DOI.
	MaxPages int

	// Pacer applies the courtesy delay between successive pages.
	Pacer *httputil.Pacer

	// BaseURL overrides the events endpoint when set.
	BaseURL string

	// Metrics may be nil.
	Metrics *observability.Metrics
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return eventsAPIBase
}

// AggregateMentions walks the event feed for doi and counts events per
// source label. The loop stops when a page has no events, when the next
// cursor is absent or equal to the current one, or after MaxPages requests,
// whichever comes first. The pacer delay runs between pages, never after
// the last one. Any failed page fails the whole aggregation; partial
// tallies are never returned.
func (c *Client) AggregateMentions(ctx context.Context, doi string) (types.MentionTally, error) {
	tally := types.MentionTally{Counts: map[string]int{}}

	maxPages := c.MaxPages
	if maxPages <= 0 {
		maxPages = types.DefaultMaxPages
	}
	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = types.DefaultPageSize
	}

	cursor := ""
	for {
		if tally.Pages >= maxPages {
			tally.Capped = true
			return tally, nil
		}

		params := url.Values{
			"obj-id": {identifier.DOIURL(doi)},
			"rows":   {strconv.Itoa(pageSize)},
		}
		if email := strings.TrimSpace(c.Email); email != "" {
			params.Set("mailto", email)
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp eventsResponse
		err := c.HTTP.GetJSON(ctx, upstream, c.base(), params, &resp)
		tally.Pages++
		if err != nil {
			return types.MentionTally{}, fmt.Errorf("fetching Event Data page %d for %s: %w", tally.Pages, doi, err)
		}
		c.Metrics.RecordMentionPage()

		msg := resp.Message
		if msg == nil || len(msg.Events) == 0 {
			return tally, nil
		}

		for _, ev := range msg.Events {
			tally.Add(ev.label(), 1)
		}

		next := ""
		if msg.NextCursor != nil {
			next = *msg.NextCursor
		}
		if next == "" || next == cursor {
			return tally, nil
		}
		cursor = next

		if tally.Pages < maxPages {
			if err := c.Pacer.Wait(ctx); err != nil {
				return types.MentionTally{}, err
			}
		}
	}
}

// Event Data JSON structures.
type eventsResponse struct {
	Status  string         `json:"status"`
	Message *eventsMessage `json:"message"`
}

type eventsMessage struct {
	NextCursor   *string `json:"next-cursor"`
	TotalResults int     `json:"total-results"`
	Events       []event `json:"events"`
}

// event carries the platform label as "source" (legacy feeds) or
// "source_id". The first non-blank of the two is used.
type event struct {
	Source   *string `json:"source"`
	SourceID *string `json:"source_id"`
}

func (e event) label() string {
	for _, s := range []*string{e.Source, e.SourceID} {
		if s == nil {
			continue
		}
		if v := strings.TrimSpace(*s); v != "" {
			return v
		}
	}
	return UnknownSource
}
