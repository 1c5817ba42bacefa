package ictjob

import (
	"log"
	"time"

	"go-ictjob-scraper/internal/browser"
)

// State of the pagination cursor.
type State int

const (
	AtListing State = iota
	Advancing
	Done
)

func (s State) String() string {
	switch s {
	case AtListing:
		return "at_listing"
	case Advancing:
		return "advancing"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Paginator moves the browser from one listing to the next via the "next"
// control. Its counters are for progress reporting only.
type Paginator struct {
	page       browser.Page
	selector   string
	timeout    time.Duration
	perPage    int
	onPageDone func(page int)
	state      State
	onPage     int
	pages      int
	advanced   int
}

func NewPaginator(page browser.Page, selector string, timeout time.Duration, perPage int) *Paginator {
	return &Paginator{
		page:     page,
		selector: selector,
		timeout:  timeout,
		perPage:  perPage,
		state:    AtListing,
	}
}

// OnPageDone registers a callback run each time a full page of listings is walked.
func (p *Paginator) OnPageDone(fn func(page int)) {
	p.onPageDone = fn
}

// Advance clicks next and waits for the location to change. Any failure ends
// the walk: the paginator moves to Done and stays there.
func (p *Paginator) Advance() bool {
	if p.state == Done {
		return false
	}
	p.state = Advancing

	from := p.page.URL()
	if err := p.page.Click(p.selector, p.timeout); err != nil {
		log.Printf("   ⏹️ Next control unavailable: %v", err)
		p.state = Done
		return false
	}
	if err := p.page.WaitForURLChange(from, p.timeout); err != nil {
		log.Printf("   ⏹️ Next listing did not load: %v", err)
		p.state = Done
		return false
	}

	p.state = AtListing
	p.advanced++
	p.onPage++
	if p.onPage == p.perPage {
		p.pages++
		p.onPage = 0
		log.Printf("📄 Page %d processed successfully.", p.pages)
		if p.onPageDone != nil {
			p.onPageDone(p.pages)
		}
	}
	return true
}

func (p *Paginator) State() State {
	return p.state
}

// Advanced is the number of successful advances.
func (p *Paginator) Advanced() int {
	return p.advanced
}

// PagesCompleted is the number of times the per-page counter wrapped.
func (p *Paginator) PagesCompleted() int {
	return p.pages
}
