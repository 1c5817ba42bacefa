package scraper

import (
	"errors"
	"time"

	"go-ictjob-scraper/internal/browser"
	"go-ictjob-scraper/utils"
)

// Accessor reads elements without ever failing the caller. A stale element is
// re-read up to Attempts times; anything else resolves to a missing value.
type Accessor struct {
	Timeout  time.Duration
	Attempts int
	Backoff  time.Duration
}

func NewAccessor(timeout time.Duration, attempts int, backoff time.Duration) *Accessor {
	if attempts < 1 {
		attempts = 1
	}
	return &Accessor{Timeout: timeout, Attempts: attempts, Backoff: backoff}
}

// Text waits for selector to be visible and returns its trimmed text.
func (a *Accessor) Text(page browser.Page, selector string) Field {
	return a.read(page, selector, func() (string, error) {
		return page.InnerText(selector)
	})
}

// Href waits for selector to be visible and returns its link target.
// A visible element without href is Found with an empty value.
func (a *Accessor) Href(page browser.Page, selector string) Field {
	return a.read(page, selector, func() (string, error) {
		return page.Attribute(selector, "href")
	})
}

// Texts returns the trimmed text of every match, in document order.
// ok is false when the batch could not be read.
func (a *Accessor) Texts(page browser.Page, selector string) ([]string, bool) {
	return a.readAll(func() ([]string, error) {
		return page.InnerTexts(selector)
	})
}

// Hrefs returns the link target of every match, in document order.
func (a *Accessor) Hrefs(page browser.Page, selector string) ([]string, bool) {
	return a.readAll(func() ([]string, error) {
		return page.Attributes(selector, "href")
	})
}

func (a *Accessor) read(page browser.Page, selector string, get func() (string, error)) Field {
	for attempt := 1; attempt <= a.Attempts; attempt++ {
		if err := page.WaitVisible(selector, a.Timeout); err != nil {
			if errors.Is(err, browser.ErrStale) && attempt < a.Attempts {
				time.Sleep(a.Backoff)
				continue
			}
			return Missing
		}
		value, err := get()
		if err == nil {
			return Found(utils.CleanText(value))
		}
		if !errors.Is(err, browser.ErrStale) || attempt == a.Attempts {
			return Missing
		}
		time.Sleep(a.Backoff)
	}
	return Missing
}

func (a *Accessor) readAll(get func() ([]string, error)) ([]string, bool) {
	for attempt := 1; attempt <= a.Attempts; attempt++ {
		values, err := get()
		if err == nil {
			cleaned := make([]string, len(values))
			for i, v := range values {
				cleaned[i] = utils.CleanText(v)
			}
			return cleaned, true
		}
		if !errors.Is(err, browser.ErrStale) {
			return nil, false
		}
		if attempt < a.Attempts {
			time.Sleep(a.Backoff)
		}
	}
	return nil, false
}
