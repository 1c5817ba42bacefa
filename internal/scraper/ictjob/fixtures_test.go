package ictjob

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-ictjob-scraper/internal/browser/browsertest"
	"go-ictjob-scraper/internal/config"
)

const baseURL = "https://jobs.test"

// testConfig keeps the default CSS selectors and swaps the xpath ones for
// CSS the fixtures use.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Defaults()
	cfg.SearchURL = baseURL + "/search"
	cfg.OutputPath = filepath.Join(dir, "ictjob_data.csv")
	cfg.ResumePath = filepath.Join(dir, "done.txt")
	cfg.ScreenshotDir = filepath.Join(dir, "shots")
	cfg.ElementTimeout = 10 * time.Millisecond
	cfg.ClickTimeout = 10 * time.Millisecond
	cfg.NavigationTimeout = 10 * time.Millisecond
	cfg.ConsentTimeout = 10 * time.Millisecond
	cfg.StaleBackoff = time.Millisecond

	cfg.Selectors.CookieAccept = "#accept-all"
	cfg.Selectors.TotalJobs = "span.nb-jobs-found.total"
	cfg.Selectors.FirstListing = "a.job-link"
	cfg.Selectors.OtherJobs = "#company-logo-container > a"
	cfg.Selectors.CompanyLink = "a.company-description"
	return cfg
}

func jobURL(n int) string {
	return fmt.Sprintf("%s/job/%d", baseURL, n)
}

func searchPage(total int, firstHref string) string {
	return fmt.Sprintf(`<html><body>
<button id="accept-all">Accept All</button>
<span class="nb-jobs-found">%d</span>
<span class="nb-jobs-found total">%d jobs found</span>
<a class="job-link" href="%s"><h2 class="job-title">First job</h2></a>
</body></html>`, total, total, firstHref)
}

type listingFixture struct {
	Title       string
	NoSalary    bool
	Languages   []string
	RenderTwice bool
	Offers      []string
	CompanyHref string
	NextHref    string
}

func (f listingFixture) html() string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	fmt.Fprintf(&b, "<h1 id=\"job-title\">\n  %s\n</h1>\n", f.Title)
	fmt.Fprintf(&b, "<div class=\"job-offer-edited-content\"><p>About %s</p></div>\n", f.Title)
	b.WriteString(`<span id="job-location">Brussels</span>` + "\n")
	b.WriteString(`<span id="work-arrangement">Hybrid</span>` + "\n")
	if !f.NoSalary {
		b.WriteString(`<span id="job-salary-freelance">Freelance</span>` + "\n")
	}
	b.WriteString(`<span id="job-requirements">3 years</span>` + "\n")
	b.WriteString(`<span id="job-study-level">Bachelor</span>` + "\n")

	blocks := 1
	if f.RenderTwice {
		blocks = 2
	}
	for i := 0; i < blocks; i++ {
		b.WriteString("<div class=\"languages\">")
		for _, lang := range f.Languages {
			fmt.Fprintf(&b, `<span class="job-language-name job-language-name--proficient">%s</span>`, lang)
		}
		b.WriteString("</div>\n")
	}

	for _, offer := range f.Offers {
		fmt.Fprintf(&b, "<span class=\"job-info\"><a href=\"%s\">Similar</a></span>\n", offer)
	}
	b.WriteString(`<div id="company-logo-container"><a href="/company/acme/jobs">logo</a></div>` + "\n")
	if f.CompanyHref != "" {
		fmt.Fprintf(&b, "<a class=\"company-description\" href=\"%s\">Company description</a>\n", f.CompanyHref)
	}
	if f.NextHref != "" {
		fmt.Fprintf(&b, "<a class=\"next-link\" href=\"%s\">Next</a>\n", f.NextHref)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func companyPage(name, address, website, description string) string {
	return fmt.Sprintf(`<html><body>
<h1 id="office-name-title">%s</h1>
<p id="office-contact">%s <a href="%s">%s</a></p>
<div id="company-description">%s</div>
</body></html>`, name, address, website, website, description)
}

// chain registers n simple listings, each linking to the next; the last has
// no next control.
func chain(site *browsertest.Site, n int) {
	for i := 1; i <= n; i++ {
		f := listingFixture{Title: fmt.Sprintf("Job %d", i), Languages: []string{"English"}}
		if i < n {
			f.NextHref = fmt.Sprintf("/job/%d", i+1)
		}
		site.Add(jobURL(i), f.html())
	}
}
