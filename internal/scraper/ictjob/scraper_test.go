package ictjob

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-ictjob-scraper/internal/browser/browsertest"
	"go-ictjob-scraper/internal/config"
	"go-ictjob-scraper/internal/dedup"
	"go-ictjob-scraper/internal/metrics"
	"go-ictjob-scraper/internal/scraper"
	"go-ictjob-scraper/internal/sink"
	"go-ictjob-scraper/utils"
)

type harness struct {
	cfg     *config.Config
	site    *browsertest.Site
	session *browsertest.Session
	store   *dedup.Store
	metrics *metrics.Recorder
	scraper *ICTJobScraper
}

func newHarness(t *testing.T, site *browsertest.Site, out sink.Sink, recorded ...string) *harness {
	t.Helper()
	cfg := testConfig(t)

	for _, u := range recorded {
		f, err := os.OpenFile(cfg.ResumePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		require.NoError(t, err)
		_, err = f.WriteString(u + "\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	store, err := dedup.Load(cfg.ResumePath)
	require.NoError(t, err)

	if out == nil {
		csvSink, err := sink.NewCSV(cfg.OutputPath, cfg.ListEncoding)
		require.NoError(t, err)
		out = csvSink
	}

	session := site.Session()
	rec := metrics.New()
	s := NewICTJobScraper(cfg, session, store, out, rec).
		WithScreenshots(utils.NewScreenShotDebugger(cfg.ScreenshotDir))

	return &harness{cfg: cfg, site: site, session: session, store: store, metrics: rec, scraper: s}
}

// rows reads the output table without its header.
func (h *harness) rows(t *testing.T) [][]string {
	t.Helper()
	data, err := os.ReadFile(h.cfg.OutputPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	require.Equal(t, sink.Header, records[0])
	return records[1:]
}

type funcSink func(ctx context.Context, l *scraper.Listing) error

func (f funcSink) Write(ctx context.Context, l *scraper.Listing) error {
	return f(ctx, l)
}

func TestRun_SkipsRecordedListings(t *testing.T) {
	site := browsertest.NewSite()
	site.Add(baseURL+"/search", searchPage(3, "/job/1"))
	chain(site, 3)

	h := newHarness(t, site, nil, jobURL(1), jobURL(3))
	require.Equal(t, 2, h.store.Len())

	stats, err := h.scraper.Run(context.Background())
	require.NoError(t, err)

	rows := h.rows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "Job 2", rows[0][0])
	assert.Equal(t, jobURL(2), rows[0][1])

	assert.Equal(t, 3, h.store.Len())
	assert.True(t, h.store.Contains(jobURL(2)))

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.Visited)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 2, stats.Skipped)
	assert.Zero(t, stats.Failed)

	// skipped listings still advance
	assert.Equal(t, []string{baseURL + "/search", jobURL(1), jobURL(2), jobURL(3)}, h.session.Primary().History())

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ListingsProcessed))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.ListingsSkipped))
}

func TestRun_ResumesAcrossRuns(t *testing.T) {
	site := browsertest.NewSite()
	site.Add(baseURL+"/search", searchPage(2, "/job/1"))
	chain(site, 2)

	h := newHarness(t, site, nil)
	_, err := h.scraper.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, h.rows(t), 2)

	store, err := dedup.Load(h.cfg.ResumePath)
	require.NoError(t, err)
	out, err := sink.NewCSV(h.cfg.OutputPath, h.cfg.ListEncoding)
	require.NoError(t, err)
	second := NewICTJobScraper(h.cfg, site.Session(), store, out, nil)

	stats, err := second.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Skipped)
	assert.Zero(t, stats.Processed)
	assert.Len(t, h.rows(t), 2, "no row is written twice")
}

func TestRun_StopsWhenAdvanceFails(t *testing.T) {
	site := browsertest.NewSite()
	site.Add(baseURL+"/search", searchPage(3, "/job/1"))
	chain(site, 1)

	h := newHarness(t, site, nil)
	stats, err := h.scraper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Visited)
	assert.Len(t, h.rows(t), 1)
	assert.Equal(t, 1, h.store.Len())
}

func TestRun_StopsAtTotal(t *testing.T) {
	site := browsertest.NewSite()
	site.Add(baseURL+"/search", searchPage(2, "/job/1"))
	chain(site, 4)

	h := newHarness(t, site, nil)
	stats, err := h.scraper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Visited)
	assert.Len(t, h.rows(t), 2)
	assert.False(t, h.store.Contains(jobURL(3)))
}

func TestRun_NoListings(t *testing.T) {
	site := browsertest.NewSite()
	site.Add(baseURL+"/search", searchPage(0, "/job/1"))
	chain(site, 1)

	h := newHarness(t, site, nil)
	stats, err := h.scraper.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.Total)
	assert.Nil(t, h.rows(t))
	assert.Equal(t, []string{baseURL + "/search"}, h.session.Primary().History())
}

func TestRun_SearchPageUnavailable(t *testing.T) {
	h := newHarness(t, browsertest.NewSite(), nil)

	_, err := h.scraper.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open search page")
}

func TestRun_FirstListingUnavailable(t *testing.T) {
	site := browsertest.NewSite()
	site.Add(baseURL+"/search", searchPage(3, "/job/404"))

	h := newHarness(t, site, nil)
	_, err := h.scraper.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open first listing")
}

func TestRun_ListingFailureIsIsolated(t *testing.T) {
	site := browsertest.NewSite()
	site.Add(baseURL+"/search", searchPage(2, "/job/1"))
	site.Add(jobURL(1), listingFixture{Title: "Broken", CompanyHref: "/company/gone", NextHref: "/job/2"}.html())
	site.Add(jobURL(2), listingFixture{Title: "Fine"}.html())

	h := newHarness(t, site, nil)
	stats, err := h.scraper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Processed)
	assert.False(t, h.store.Contains(jobURL(1)), "failed listings are retried next run")

	rows := h.rows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "Fine", rows[0][0])

	shots, err := os.ReadDir(h.cfg.ScreenshotDir)
	require.NoError(t, err)
	assert.Len(t, shots, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ListingsFailed))
}

func TestRun_PanicInListingIsRecovered(t *testing.T) {
	site := browsertest.NewSite()
	site.Add(baseURL+"/search", searchPage(2, "/job/1"))
	chain(site, 2)

	calls := 0
	out := funcSink(func(_ context.Context, l *scraper.Listing) error {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return nil
	})

	h := newHarness(t, site, out)
	stats, err := h.scraper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Processed)
	assert.False(t, h.store.Contains(jobURL(1)))
	assert.True(t, h.store.Contains(jobURL(2)))
}

func TestRun_WriteFailureIsNotRecorded(t *testing.T) {
	site := browsertest.NewSite()
	site.Add(baseURL+"/search", searchPage(1, "/job/1"))
	chain(site, 1)

	out := funcSink(func(context.Context, *scraper.Listing) error {
		return errors.New("disk full")
	})

	h := newHarness(t, site, out)
	stats, err := h.scraper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, h.store.Len())
}

func TestRun_CancelledContext(t *testing.T) {
	site := browsertest.NewSite()
	site.Add(baseURL+"/search", searchPage(2, "/job/1"))
	chain(site, 2)

	h := newHarness(t, site, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := h.scraper.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Visited)
	assert.Nil(t, h.rows(t))
}

func TestRun_RowContent(t *testing.T) {
	site := browsertest.NewSite()
	site.Add(baseURL+"/search", searchPage(1, "/job/1"))
	site.Add(jobURL(1), listingFixture{
		Title:       "Data Engineer",
		Languages:   []string{"Dutch", "English"},
		RenderTwice: true,
		Offers:      []string{"/job/5", "/job/6"},
	}.html())

	h := newHarness(t, site, nil)
	_, err := h.scraper.Run(context.Background())
	require.NoError(t, err)

	rows := h.rows(t)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "Data Engineer", row[0])
	assert.Equal(t, "", row[3], "company name")
	assert.Equal(t, "", row[4], "company address")
	assert.Equal(t, "", row[5], "company website")
	assert.Equal(t, "", row[6], "company description")
	assert.Equal(t, "Brussels", row[7])
	assert.Equal(t, "Dutch, English", row[12])
	assert.Equal(t, baseURL+"/company/acme/jobs", row[13])
	assert.Equal(t, baseURL+"/job/5, "+baseURL+"/job/6", row[14])
	assert.Zero(t, h.site.NewPageCalls())
}

func TestRun_CountsCompletedPages(t *testing.T) {
	site := browsertest.NewSite()
	site.Add(baseURL+"/search", searchPage(5, "/job/1"))
	chain(site, 5)

	h := newHarness(t, site, nil)
	h.cfg.JobsPerPage = 2
	h.scraper = NewICTJobScraper(h.cfg, h.session, h.store, funcSink(func(context.Context, *scraper.Listing) error { return nil }), h.metrics)

	stats, err := h.scraper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Visited)
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.PagesCompleted))
}

func TestName(t *testing.T) {
	h := newHarness(t, browsertest.NewSite(), nil)
	assert.Equal(t, "ICTJob", h.scraper.Name())
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"1234", 1234},
		{"  87 jobs found", 87},
		{"Showing 12 of 300", 12},
		{"no results", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCount(tt.text))
		})
	}
}
