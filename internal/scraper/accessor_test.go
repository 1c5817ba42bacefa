package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-ictjob-scraper/internal/browser/browsertest"
)

const listingHTML = `<html><body>
<h1 id="job-title">  Go Developer  </h1>
<a id="apply" href="/apply/1">Apply</a>
<a id="nolink">No link</a>
<p id="hidden-note" hidden>secret</p>
<span class="lang">Dutch</span><span class="lang">English</span>
<span class="offer"><a href="/job/2">Two</a></span>
<span class="offer"><a href="https://other.test/job/3">Three</a></span>
</body></html>`

func newPage(t *testing.T) (*browsertest.Site, *browsertest.Page) {
	t.Helper()
	site := browsertest.NewSite().Add("https://jobs.test/job/1", listingHTML)
	page := site.Session().Primary()
	require.NoError(t, page.Goto("https://jobs.test/job/1"))
	return site, page
}

func newAccessor() *Accessor {
	return NewAccessor(10*time.Millisecond, 3, time.Millisecond)
}

func TestAccessor_Text(t *testing.T) {
	_, page := newPage(t)
	assert.Equal(t, Found("Go Developer"), newAccessor().Text(page, "#job-title"))
}

func TestAccessor_TextMissing(t *testing.T) {
	_, page := newPage(t)
	acc := newAccessor()

	assert.Equal(t, Missing, acc.Text(page, "#nothing-here"))
	assert.Equal(t, Missing, acc.Text(page, "#hidden-note"), "hidden elements are not visible")
}

func TestAccessor_Href(t *testing.T) {
	_, page := newPage(t)
	acc := newAccessor()

	assert.Equal(t, Found("https://jobs.test/apply/1"), acc.Href(page, "#apply"))

	// visible but without href: found, empty value
	f := acc.Href(page, "#nolink")
	assert.True(t, f.Found)
	assert.Equal(t, "", f.Value)
}

func TestAccessor_StaleRetriedThenSucceeds(t *testing.T) {
	site, page := newPage(t)
	site.Stale("#job-title", 2)

	assert.Equal(t, Found("Go Developer"), newAccessor().Text(page, "#job-title"))
}

func TestAccessor_StaleExhaustsAttempts(t *testing.T) {
	site, page := newPage(t)
	site.Stale("#job-title", 3)

	assert.Equal(t, Missing, newAccessor().Text(page, "#job-title"))
}

func TestAccessor_Texts(t *testing.T) {
	site, page := newPage(t)
	acc := newAccessor()

	langs, ok := acc.Texts(page, "span.lang")
	require.True(t, ok)
	assert.Equal(t, []string{"Dutch", "English"}, langs)

	site.Stale("span.lang", 1)
	langs, ok = acc.Texts(page, "span.lang")
	require.True(t, ok)
	assert.Equal(t, []string{"Dutch", "English"}, langs)

	site.Stale("span.lang", 5)
	_, ok = acc.Texts(page, "span.lang")
	assert.False(t, ok)
}

func TestAccessor_Hrefs(t *testing.T) {
	_, page := newPage(t)

	hrefs, ok := newAccessor().Hrefs(page, "span.offer > a")
	require.True(t, ok)
	assert.Equal(t, []string{"https://jobs.test/job/2", "https://other.test/job/3"}, hrefs)

	none, ok := newAccessor().Hrefs(page, "span.none > a")
	assert.True(t, ok)
	assert.Empty(t, none)
}
