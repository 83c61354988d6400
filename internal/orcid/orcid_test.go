// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orcid

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-metrics/internal/httputil"
	"github.com/pdiddy/scholar-metrics/pkg/types"
)

const sampleWorksJSON = `{
  "group": [
    {
      "work-summary": [
        {
          "put-code": 101,
          "title": {"title": {"value": "Deep Learning for Cells"}},
          "type": "journal-article",
          "publication-date": {"year": {"value": "2021"}, "month": null},
          "source": {"source-name": {"value": "Crossref"}}
        },
        {
          "put-code": 102,
          "title": {"title": {"value": "Deep Learning for Cells (preprint)"}},
          "type": "preprint",
          "publication-date": null,
          "source": {"source-name": {"value": "bioRxiv"}}
        }
      ]
    },
    {
      "work-summary": [
        {
          "put-code": 203,
          "title": null,
          "type": "dataset",
          "publication-date": {"year": null},
          "source": null
        }
      ]
    }
  ]
}`

const sampleWorkDetailJSON = `{
  "put-code": 101,
  "external-ids": {
    "external-id": [
      {"external-id-type": "pmid", "external-id-value": "12345"},
      {"external-id-type": "doi", "external-id-value": "10.1038/s41586-021-00001-x"}
    ]
  }
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		switch r.URL.Path {
		case "/0000-0002-1825-0097/works":
			fmt.Fprint(w, sampleWorksJSON)
		case "/0000-0002-1825-0097/work/101":
			fmt.Fprint(w, sampleWorkDetailJSON)
		case "/0000-0002-1825-0097/work/203":
			fmt.Fprint(w, `{"put-code": 203, "external-ids": null}`)
		case "/0000-0001-0000-0000/works":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
}

func testClient(ts *httptest.Server) *Client {
	return &Client{
		HTTP:    &httputil.Client{HTTP: ts.Client(), UserAgent: "scholar-metrics-test/0.1"},
		BaseURL: ts.URL,
	}
}

func TestListWorks(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	works, err := testClient(ts).ListWorks(context.Background(), "0000-0002-1825-0097")
	require.NoError(t, err)
	require.Len(t, works, 3)

	assert.Equal(t, types.WorkSummary{
		PutCode:         101,
		Title:           "Deep Learning for Cells",
		Type:            "journal-article",
		PublicationYear: "2021",
		SourceName:      "Crossref",
	}, works[0])
	assert.Equal(t, int64(102), works[1].PutCode)
	assert.Empty(t, works[1].PublicationYear)

	// Null nested objects yield empty fields, never a crash.
	assert.Equal(t, types.WorkSummary{PutCode: 203, Type: "dataset"}, works[2])
}

func TestListWorksEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"group": []}`)
	}))
	defer ts.Close()

	works, err := testClient(ts).ListWorks(context.Background(), "0000-0002-1825-0097")
	require.NoError(t, err)
	assert.Empty(t, works)
}

func TestListWorksUpstreamError(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	_, err := testClient(ts).ListWorks(context.Background(), "0000-0001-0000-0000")
	var ue *types.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
}

func TestFetchWork(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()
	c := testClient(ts)

	detail, err := c.FetchWork(context.Background(), "0000-0002-1825-0097", 101)
	require.NoError(t, err)
	assert.Equal(t, int64(101), detail.PutCode)
	assert.Equal(t, []types.ExternalID{
		{Type: "pmid", Value: "12345"},
		{Type: "doi", Value: "10.1038/s41586-021-00001-x"},
	}, detail.ExternalIDs)
	assert.Equal(t, "10.1038/s41586-021-00001-x", ResolveDOI(detail))

	detail, err = c.FetchWork(context.Background(), "0000-0002-1825-0097", 203)
	require.NoError(t, err)
	assert.Empty(t, detail.ExternalIDs)
	assert.Empty(t, ResolveDOI(detail))

	_, err = c.FetchWork(context.Background(), "0000-0002-1825-0097", 999)
	assert.True(t, types.IsUpstream(err))
}

func TestDefaultBase(t *testing.T) {
	assert.Equal(t, apiBase, (&Client{}).base())
	assert.Equal(t, "http://mirror", (&Client{BaseURL: "http://mirror/"}).base())
}

func TestResolveDOI(t *testing.T) {
	tests := []struct {
		name string
		ids  []types.ExternalID
		want string
	}{
		{
			name: "typed doi",
			ids:  []types.ExternalID{{Type: "doi", Value: "10.1234/abc"}},
			want: "10.1234/abc",
		},
		{
			name: "typed doi case-insensitive with url value",
			ids:  []types.ExternalID{{Type: "DOI", Value: " https://doi.org/10.1234/abc "}},
			want: "10.1234/abc",
		},
		{
			name: "typed doi unparseable falls back to raw trimmed value",
			ids:  []types.ExternalID{{Type: "doi", Value: "  not-a-doi  "}},
			want: "not-a-doi",
		},
		{
			name: "typed doi wins over earlier untyped doi",
			ids: []types.ExternalID{
				{Type: "uri", Value: "https://doi.org/10.9999/first"},
				{Type: "doi", Value: "10.1234/typed"},
			},
			want: "10.1234/typed",
		},
		{
			name: "first typed doi only",
			ids: []types.ExternalID{
				{Type: "doi", Value: "10.1111/one"},
				{Type: "doi", Value: "10.2222/two"},
			},
			want: "10.1111/one",
		},
		{
			name: "no typed doi scans other values",
			ids: []types.ExternalID{
				{Type: "pmid", Value: "12345"},
				{Type: "uri", Value: "https://doi.org/10.5555/found)."},
			},
			want: "10.5555/found",
		},
		{
			name: "typed doi blank value yields nothing",
			ids:  []types.ExternalID{{Type: "doi", Value: "   "}},
			want: "",
		},
		{
			name: "nothing",
			ids:  []types.ExternalID{{Type: "isbn", Value: "978-3-16-148410-0"}},
			want: "",
		},
		{
			name: "no ids",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDOI(&types.WorkDetail{ExternalIDs: tt.ids})
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Empty(t, ResolveDOI(nil))
}
