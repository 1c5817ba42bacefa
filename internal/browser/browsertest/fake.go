// Package browsertest provides an in-memory browser.Session backed by HTML
// fixtures, for tests of code that drives a browser.Page.
package browsertest

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"go-ictjob-scraper/internal/browser"
)

// Site is a set of HTML pages keyed by absolute URL.
type Site struct {
	mu          sync.Mutex
	pages       map[string]string
	stale       map[string]int
	newPageErr  error
	newPages    int
	secondaries []*Page
}

func NewSite() *Site {
	return &Site{
		pages: make(map[string]string),
		stale: make(map[string]int),
	}
}

// Add registers html under rawURL.
func (s *Site) Add(rawURL, html string) *Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[rawURL] = html
	return s
}

// Stale makes the next n reads of selector fail with browser.ErrStale.
func (s *Site) Stale(selector string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale[selector] = n
}

// FailNewPage makes every Session.NewPage call return err.
func (s *Site) FailNewPage(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newPageErr = err
}

// NewPageCalls is how many extra tabs were requested.
func (s *Site) NewPageCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newPages
}

// SecondaryNavigations lists every URL visited from an extra tab.
func (s *Site) SecondaryNavigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var urls []string
	for _, p := range s.secondaries {
		urls = append(urls, p.history...)
	}
	return urls
}

// Secondaries returns the extra tabs opened so far.
func (s *Site) Secondaries() []*Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Page(nil), s.secondaries...)
}

// Session returns a session whose primary tab starts blank.
func (s *Site) Session() *Session {
	return &Session{site: s, primary: &Page{site: s}}
}

func (s *Site) takeStale(selector string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale[selector] > 0 {
		s.stale[selector]--
		return true
	}
	return false
}

func (s *Site) lookup(rawURL string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	html, ok := s.pages[rawURL]
	return html, ok
}

// Session implements browser.Session.
type Session struct {
	site    *Site
	primary *Page
	closed  bool
}

func (s *Session) Page() browser.Page {
	return s.primary
}

// Primary is the concrete primary tab.
func (s *Session) Primary() *Page {
	return s.primary
}

func (s *Session) NewPage() (browser.Page, error) {
	s.site.mu.Lock()
	defer s.site.mu.Unlock()
	s.site.newPages++
	if s.site.newPageErr != nil {
		return nil, s.site.newPageErr
	}
	p := &Page{site: s.site}
	s.site.secondaries = append(s.site.secondaries, p)
	return p, nil
}

func (s *Session) Close() error {
	s.closed = true
	return nil
}

func (s *Session) Closed() bool {
	return s.closed
}

// Page implements browser.Page over a parsed fixture.
type Page struct {
	site    *Site
	url     string
	html    string
	doc     *goquery.Document
	history []string
	closed  bool
	fronted int
}

func (p *Page) Goto(rawURL string) error {
	html, ok := p.site.lookup(rawURL)
	if !ok {
		return fmt.Errorf("browsertest: no page for %s", rawURL)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("browsertest: parse %s: %w", rawURL, err)
	}
	p.url, p.html, p.doc = rawURL, html, doc
	p.history = append(p.history, rawURL)
	return nil
}

func (p *Page) URL() string {
	return p.url
}

// History lists the URLs this tab navigated to, in order.
func (p *Page) History() []string {
	return append([]string(nil), p.history...)
}

func (p *Page) Closed() bool {
	return p.closed
}

// FrontCalls counts BringToFront calls.
func (p *Page) FrontCalls() int {
	return p.fronted
}

func (p *Page) visible(selector string) *goquery.Selection {
	if p.doc == nil {
		return &goquery.Selection{}
	}
	return p.doc.Find(selector).Not("[hidden]")
}

func (p *Page) WaitVisible(selector string, _ time.Duration) error {
	if p.visible(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
	}
	return nil
}

func (p *Page) InnerText(selector string) (string, error) {
	if p.site.takeStale(selector) {
		return "", fmt.Errorf("%w: %s", browser.ErrStale, selector)
	}
	sel := p.visible(selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
	}
	return sel.Text(), nil
}

func (p *Page) Attribute(selector, name string) (string, error) {
	if p.site.takeStale(selector) {
		return "", fmt.Errorf("%w: %s", browser.ErrStale, selector)
	}
	sel := p.visible(selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
	}
	return p.attr(sel, name), nil
}

func (p *Page) InnerTexts(selector string) ([]string, error) {
	if p.site.takeStale(selector) {
		return nil, fmt.Errorf("%w: %s", browser.ErrStale, selector)
	}
	var texts []string
	p.visible(selector).Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, s.Text())
	})
	return texts, nil
}

func (p *Page) Attributes(selector, name string) ([]string, error) {
	if p.site.takeStale(selector) {
		return nil, fmt.Errorf("%w: %s", browser.ErrStale, selector)
	}
	var values []string
	p.visible(selector).Each(func(_ int, s *goquery.Selection) {
		values = append(values, p.attr(s, name))
	})
	return values, nil
}

// Click follows the href of the first match. Elements without href are a no-op.
func (p *Page) Click(selector string, _ time.Duration) error {
	sel := p.visible(selector).First()
	if sel.Length() == 0 {
		return fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
	}
	href := p.attr(sel, "href")
	if href == "" {
		return nil
	}
	return p.Goto(href)
}

func (p *Page) WaitForURLChange(from string, timeout time.Duration) error {
	if p.url == from {
		return fmt.Errorf("%w: still at %s after %v", browser.ErrNavigationTimeout, from, timeout)
	}
	return nil
}

func (p *Page) BringToFront() error {
	p.fronted++
	return nil
}

// Screenshot writes the current HTML to path.
func (p *Page) Screenshot(path string) error {
	return os.WriteFile(path, []byte(p.html), 0644)
}

func (p *Page) Close() error {
	p.closed = true
	return nil
}

func (p *Page) attr(sel *goquery.Selection, name string) string {
	value, ok := sel.Attr(name)
	if !ok {
		return ""
	}
	value = strings.TrimSpace(value)
	if name != "href" || value == "" {
		return value
	}
	base, err := url.Parse(p.url)
	if err != nil {
		return value
	}
	ref, err := url.Parse(value)
	if err != nil {
		return value
	}
	return base.ResolveReference(ref).String()
}
