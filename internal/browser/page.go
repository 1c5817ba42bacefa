package browser

import (
	"errors"
	"time"
)

var (
	// ErrStale means the element was found but detached or re-rendered before it could be read.
	ErrStale = errors.New("element is stale")
	// ErrNotFound means no visible element matched before the timeout.
	ErrNotFound = errors.New("element not found")
	// ErrNavigationTimeout means the page location did not change in time.
	ErrNavigationTimeout = errors.New("navigation timeout")
	// ErrSessionUnavailable is returned once every launch attempt has failed.
	ErrSessionUnavailable = errors.New("browser session unavailable")
)

// Page is the subset of a browser tab the scrapers need. Single-element reads
// act on the first match of the selector.
type Page interface {
	Goto(url string) error
	URL() string

	WaitVisible(selector string, timeout time.Duration) error
	InnerText(selector string) (string, error)
	// Attribute returns "" when the attribute is absent. href values are
	// resolved against the page URL.
	Attribute(selector, name string) (string, error)
	InnerTexts(selector string) ([]string, error)
	Attributes(selector, name string) ([]string, error)

	// Click waits up to timeout for the element to become clickable.
	Click(selector string, timeout time.Duration) error
	WaitForURLChange(from string, timeout time.Duration) error

	BringToFront() error
	Screenshot(path string) error
	Close() error
}

// Session is one browser profile: a primary tab plus on-demand extra tabs.
type Session interface {
	Page() Page
	NewPage() (Page, error)
	Close() error
}
