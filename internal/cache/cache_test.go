// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-metrics/internal/observability"
	"github.com/pdiddy/scholar-metrics/pkg/types"
)

func openStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := Open(types.CacheConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "nested", "cache.db"), TTL: ttl})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func intp(v int) *int { return &v }

func TestStoreGetPut(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, time.Hour)

	var md types.CitationMetadata
	hit, err := s.Get(ctx, KindCitation, "10.1/a", &md)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, s.Put(ctx, KindCitation, "10.1/A", types.CitationMetadata{IsReferencedByCount: intp(9)}))

	hit, err = s.Get(ctx, KindCitation, " 10.1/a ", &md)
	require.NoError(t, err)
	require.True(t, hit, "DOI keys are case-insensitive")
	require.NotNil(t, md.IsReferencedByCount)
	assert.Equal(t, 9, *md.IsReferencedByCount)
	assert.Nil(t, md.Publisher)

	hit, err = s.Get(ctx, KindMentions, "10.1/a", &types.MentionTally{})
	require.NoError(t, err)
	assert.False(t, hit, "kinds are separate")
}

func TestStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, time.Hour)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Put(ctx, KindMentions, "10.1/a", types.MentionTally{Counts: map[string]int{"news": 1}}))

	now = now.Add(59 * time.Minute)
	hit, err := s.Get(ctx, KindMentions, "10.1/a", &types.MentionTally{})
	require.NoError(t, err)
	assert.True(t, hit)

	now = now.Add(2 * time.Minute)
	hit, err = s.Get(ctx, KindMentions, "10.1/a", &types.MentionTally{})
	require.NoError(t, err)
	assert.False(t, hit, "expired")
}

func TestStoreZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, 0)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	require.NoError(t, s.Put(ctx, KindMentions, "10.1/a", types.MentionTally{}))

	now = now.AddDate(5, 0, 0)
	hit, err := s.Get(ctx, KindMentions, "10.1/a", &types.MentionTally{})
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, time.Hour)
	require.NoError(t, s.Put(ctx, KindMentions, "10.1/a", types.MentionTally{}))
	require.NoError(t, s.Put(ctx, KindCitation, "10.1/a", types.CitationMetadata{}))
	require.NoError(t, s.Put(ctx, KindCitation, "10.1/a", types.CitationMetadata{}))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "put replaces")

	removed, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	n, err = s.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

type countingCitations struct {
	calls int
	err   error
}

func (c *countingCitations) FetchMetadata(_ context.Context, _ string) (*types.CitationMetadata, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &types.CitationMetadata{ReferencesCount: intp(c.calls)}, nil
}

type countingMentions struct {
	calls int
	err   error
}

func (c *countingMentions) AggregateMentions(_ context.Context, _ string) (types.MentionTally, error) {
	c.calls++
	if c.err != nil {
		return types.MentionTally{}, c.err
	}
	return types.MentionTally{Counts: map[string]int{"twitter": 2}, Pages: 1}, nil
}

func TestCitationsDecorator(t *testing.T) {
	ctx := context.Background()
	src := &countingCitations{}
	m := observability.NewMetrics("test")
	c := &Citations{Source: src, Store: openStore(t, time.Hour), Logger: zerolog.Nop(), Metrics: m}

	first, err := c.FetchMetadata(ctx, "10.1/a")
	require.NoError(t, err)
	second, err := c.FetchMetadata(ctx, "10.1/a")
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 1, *first.ReferencesCount)
	assert.Equal(t, 1, *second.ReferencesCount)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(KindCitation, "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(KindCitation, "miss")))
}

func TestDecoratorsDoNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, time.Hour)
	boom := errors.New("upstream down")

	cit := &Citations{Source: &countingCitations{err: boom}, Store: store, Logger: zerolog.Nop()}
	_, err := cit.FetchMetadata(ctx, "10.1/a")
	assert.ErrorIs(t, err, boom)

	menSrc := &countingMentions{err: boom}
	men := &Mentions{Source: menSrc, Store: store, Logger: zerolog.Nop()}
	_, err = men.AggregateMentions(ctx, "10.1/a")
	assert.ErrorIs(t, err, boom)
	_, err = men.AggregateMentions(ctx, "10.1/a")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, menSrc.calls)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMentionsDecorator(t *testing.T) {
	ctx := context.Background()
	src := &countingMentions{}
	men := &Mentions{Source: src, Store: openStore(t, time.Hour), Logger: zerolog.Nop()}

	fetched, err := men.AggregateMentions(ctx, "10.1/a")
	require.NoError(t, err)
	tally, err := men.AggregateMentions(ctx, "10.1/A")
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 1, fetched.Pages)
	assert.Equal(t, map[string]int{"twitter": 2}, tally.Counts)
	assert.Zero(t, tally.Pages, "a cache hit requests no pages")
}
