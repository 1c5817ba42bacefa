package browser

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// LaunchOptions configures the persistent Chromium profile.
type LaunchOptions struct {
	ProfileDir  string
	CookiesPath string
	Headless    bool
	Retries     int
	Backoff     time.Duration
}

// PlaywrightSession is a persistent Chromium context driven by playwright.
type PlaywrightSession struct {
	pw      *playwright.Playwright
	context playwright.BrowserContext
	primary *playwrightPage
}

// Launch starts Chromium on opts.ProfileDir, retrying up to opts.Retries
// times. When every attempt fails it returns nil and ErrSessionUnavailable.
func Launch(opts LaunchOptions) (*PlaywrightSession, error) {
	var session *PlaywrightSession
	err := withRetries(opts.Retries, opts.Backoff, func(attempt int) error {
		s, err := launchPersistent(opts)
		if err != nil {
			log.Printf("⚠️ Browser launch attempt %d failed: %v", attempt, err)
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		log.Println("❌ Max retries exceeded. Could not create the browser session.")
		return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	return session, nil
}

func launchPersistent(opts LaunchOptions) (*PlaywrightSession, error) {
	if err := os.MkdirAll(opts.ProfileDir, 0755); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	args := []string{"--no-sandbox", "--disable-blink-features=AutomationControlled"}
	if opts.Headless {
		args = append(args, "--disable-gpu")
	} else {
		args = append(args, "--start-maximized")
	}

	bctx, err := pw.Chromium.LaunchPersistentContext(opts.ProfileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:          playwright.Bool(opts.Headless),
		Args:              args,
		IgnoreDefaultArgs: []string{"--enable-automation"},
		NoViewport:        playwright.Bool(!opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	if err := applyStealth(bctx); err != nil {
		_ = bctx.Close()
		_ = pw.Stop()
		return nil, err
	}

	if opts.CookiesPath != "" {
		cookies, err := LoadCookies(opts.CookiesPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			log.Printf("⚠️ Could not load cookies from %s: %v. Continuing.", opts.CookiesPath, err)
		default:
			if err := bctx.AddCookies(cookies); err != nil {
				log.Printf("⚠️ Could not add cookies: %v. Continuing.", err)
			} else {
				log.Printf("🍪 Loaded %d cookies", len(cookies))
			}
		}
	}

	//a persistent context opens with one tab already
	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else if page, err = bctx.NewPage(); err != nil {
		_ = bctx.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("could not create page: %w", err)
	}

	return &PlaywrightSession{
		pw:      pw,
		context: bctx,
		primary: &playwrightPage{page: page},
	}, nil
}

func (s *PlaywrightSession) Page() Page {
	return s.primary
}

// NewPage opens a new tab in the same profile.
func (s *PlaywrightSession) NewPage() (Page, error) {
	page, err := s.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	return &playwrightPage{page: page}, nil
}

func (s *PlaywrightSession) Close() error {
	var errs []error
	if err := s.context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// WrapPage adapts an existing playwright page.
func WrapPage(page playwright.Page) Page {
	return &playwrightPage{page: page}
}

type playwrightPage struct {
	page playwright.Page
}

// readTimeout bounds reads that follow a successful WaitVisible.
const readTimeout = 1000

func (p *playwrightPage) Goto(rawURL string) error {
	_, err := p.page.Goto(rawURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	})
	return classify(err)
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) WaitVisible(selector string, timeout time.Duration) error {
	err := p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(millis(timeout)),
	})
	return classify(err)
}

func (p *playwrightPage) InnerText(selector string) (string, error) {
	text, err := p.page.Locator(selector).First().InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(readTimeout),
	})
	return text, classify(err)
}

func (p *playwrightPage) Attribute(selector, name string) (string, error) {
	value, err := p.page.Locator(selector).First().GetAttribute(name, playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(readTimeout),
	})
	if err != nil {
		return "", classify(err)
	}
	if name == "href" {
		value = resolveHref(p.page.URL(), value)
	}
	return value, nil
}

func (p *playwrightPage) InnerTexts(selector string) ([]string, error) {
	texts, err := p.page.Locator(selector).AllInnerTexts()
	return texts, classify(err)
}

func (p *playwrightPage) Attributes(selector, name string) ([]string, error) {
	items, err := p.page.Locator(selector).All()
	if err != nil {
		return nil, classify(err)
	}
	base := p.page.URL()
	values := make([]string, 0, len(items))
	for _, item := range items {
		value, err := item.GetAttribute(name, playwright.LocatorGetAttributeOptions{
			Timeout: playwright.Float(readTimeout),
		})
		if err != nil {
			return nil, classify(err)
		}
		if name == "href" {
			value = resolveHref(base, value)
		}
		values = append(values, value)
	}
	return values, nil
}

func (p *playwrightPage) Click(selector string, timeout time.Duration) error {
	err := p.page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(millis(timeout)),
	})
	return classify(err)
}

func (p *playwrightPage) WaitForURLChange(from string, timeout time.Duration) error {
	return pollURLChange(p.page.URL, from, timeout, 100*time.Millisecond)
}

func (p *playwrightPage) BringToFront() error {
	return classify(p.page.BringToFront())
}

func (p *playwrightPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}

// pollURLChange waits until current() differs from from.
func pollURLChange(current func() string, from string, timeout, every time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if current() != from {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: still at %s after %v", ErrNavigationTimeout, from, timeout)
		}
		time.Sleep(every)
	}
}

// staleMarkers are playwright messages for nodes that went away mid-read.
var staleMarkers = []string{
	"not attached to the DOM",
	"Element is detached",
	"Execution context was destroyed",
	"Cannot find context with specified id",
}

// classify maps playwright errors onto the package sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	for _, marker := range staleMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrStale, err)
		}
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func resolveHref(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

func millis(d time.Duration) float64 {
	return float64(d / time.Millisecond)
}
