package ictjob

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"time"

	"go-ictjob-scraper/internal/browser"
	"go-ictjob-scraper/internal/config"
	"go-ictjob-scraper/internal/dedup"
	"go-ictjob-scraper/internal/metrics"
	"go-ictjob-scraper/internal/scraper"
	"go-ictjob-scraper/internal/sink"
	"go-ictjob-scraper/utils"
)

// ICTJobScraper walks the ictjob.be search results one listing at a time,
// following the "next" control on each detail page.
type ICTJobScraper struct {
	cfg       *config.Config
	session   browser.Session
	store     *dedup.Store
	out       sink.Sink
	metrics   *metrics.Recorder
	accessor  *scraper.Accessor
	extractor *Extractor
	shots     *utils.ScreenShotDebugger
}

func NewICTJobScraper(cfg *config.Config, session browser.Session, store *dedup.Store, out sink.Sink, rec *metrics.Recorder) *ICTJobScraper {
	accessor := scraper.NewAccessor(cfg.ElementTimeout, cfg.StaleAttempts, cfg.StaleBackoff)
	if rec == nil {
		rec = metrics.New()
	}
	return &ICTJobScraper{
		cfg:       cfg,
		session:   session,
		store:     store,
		out:       out,
		metrics:   rec,
		accessor:  accessor,
		extractor: NewExtractor(session, accessor, cfg.Selectors),
	}
}

// WithScreenshots captures the page of every failed listing into d.
func (s *ICTJobScraper) WithScreenshots(d *utils.ScreenShotDebugger) *ICTJobScraper {
	s.shots = d
	return s
}

func (s *ICTJobScraper) Name() string {
	return "ICTJob"
}

// Run opens the search page, reads the total, then visits listings until the
// total is reached or the next listing cannot be reached. Per-listing errors
// are logged and counted, never returned.
func (s *ICTJobScraper) Run(ctx context.Context) (stats scraper.RunStats, err error) {
	stats.Started = time.Now()
	defer func() {
		stats.Duration = time.Since(stats.Started)
	}()

	sel := s.cfg.Selectors
	page := s.session.Page()

	log.Printf("📋 Searching %s...", s.cfg.SearchURL)
	if err := page.Goto(s.cfg.SearchURL); err != nil {
		return stats, fmt.Errorf("open search page: %w", err)
	}
	browser.DismissConsent(page, sel.CookieAccept, s.cfg.ConsentTimeout)

	stats.Total = parseCount(s.accessor.Text(page, sel.TotalJobs).Value)
	if stats.Total == 0 {
		log.Println("ℹ️ No listings found.")
		return stats, nil
	}
	log.Printf("📦 Found %d listings", stats.Total)

	if err := s.openFirstListing(page); err != nil {
		return stats, err
	}

	paginator := NewPaginator(page, sel.NextListing, s.cfg.NavigationTimeout, s.cfg.JobsPerPage)
	paginator.OnPageDone(func(int) { s.metrics.PagesCompleted.Inc() })
	defer func() {
		stats.Pages = paginator.PagesCompleted()
	}()

	for stats.Visited < stats.Total {
		if err := ctx.Err(); err != nil {
			log.Printf("⏹️ Stopping after %d listings: %v", stats.Visited, err)
			return stats, err
		}

		listingURL := page.URL()
		if s.store.Contains(listingURL) {
			stats.Skipped++
			s.metrics.ListingsSkipped.Inc()
			log.Printf("⏭️ Already processed: %s", listingURL)
		} else if err := s.processListing(ctx, page, listingURL); err != nil {
			stats.Failed++
			s.metrics.ListingsFailed.Inc()
			log.Printf("❌ Error processing job %s: %v", listingURL, err)
			s.capture(page, listingURL)
		} else {
			stats.Processed++
			s.metrics.ListingsProcessed.Inc()
		}
		stats.Visited++

		if !paginator.Advance() {
			log.Println("🏁 No more pages to process.")
			break
		}
	}

	return stats, nil
}

func (s *ICTJobScraper) openFirstListing(page browser.Page) error {
	from := page.URL()
	if err := page.Click(s.cfg.Selectors.FirstListing, s.cfg.ClickTimeout); err != nil {
		return fmt.Errorf("open first listing: %w", err)
	}
	if err := page.WaitForURLChange(from, s.cfg.NavigationTimeout); err != nil {
		return fmt.Errorf("open first listing: %w", err)
	}
	return nil
}

// processListing extracts, writes and records one listing. A panic anywhere
// below is turned into an error so the walk can go on.
func (s *ICTJobScraper) processListing(ctx context.Context, page browser.Page, listingURL string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	listing, err := s.extractor.Extract(page, listingURL)
	if err != nil {
		return err
	}
	for _, field := range listing.MissingFields() {
		s.metrics.FieldsMissing.WithLabelValues(field).Inc()
	}

	if err := s.out.Write(ctx, listing); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	if err := s.store.Record(listingURL); err != nil {
		return fmt.Errorf("record listing: %w", err)
	}

	log.Printf("✅ Saved: %s", utils.Truncate(listing.Title.Value, 80))
	return nil
}

func (s *ICTJobScraper) capture(page browser.Page, listingURL string) {
	if s.shots == nil {
		return
	}
	_, _ = s.shots.CaptureAndLog(page, "ictjob-listing-failed", "🚨 ICTJob: listing failed "+listingURL)
}

var countRegex = regexp.MustCompile(`\d+`)

// parseCount returns the first run of digits in text, or 0.
func parseCount(text string) int {
	match := countRegex.FindString(text)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}
