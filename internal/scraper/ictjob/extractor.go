package ictjob

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"go-ictjob-scraper/internal/browser"
	"go-ictjob-scraper/internal/config"
	"go-ictjob-scraper/internal/scraper"
)

// brokenScheme is what is left in an address once the website host is cut out.
const brokenScheme = "http:///"

// Extractor reads one listing detail page.
type Extractor struct {
	session  browser.Session
	accessor *scraper.Accessor
	sel      config.Selectors
}

func NewExtractor(session browser.Session, accessor *scraper.Accessor, sel config.Selectors) *Extractor {
	return &Extractor{session: session, accessor: accessor, sel: sel}
}

// Extract reads every field of the listing page is positioned on. Fields fail
// independently; the only error is a company page that could not be opened.
func (e *Extractor) Extract(page browser.Page, listingURL string) (*scraper.Listing, error) {
	acc := e.accessor
	listing := &scraper.Listing{
		URL:                listingURL,
		Title:              acc.Text(page, e.sel.Title),
		Description:        acc.Text(page, e.sel.Description),
		Location:           acc.Text(page, e.sel.Location),
		WorkArrangement:    acc.Text(page, e.sel.WorkArrangement),
		SalaryType:         acc.Text(page, e.sel.SalaryType),
		ExperienceRequired: acc.Text(page, e.sel.ExperienceRequired),
		StudyRequired:      acc.Text(page, e.sel.StudyRequired),
		OtherJobsByCompany: acc.Href(page, e.sel.OtherJobs),
	}

	if languages, ok := acc.Texts(page, e.sel.Languages); ok {
		listing.RequiredLanguages = collapseRepeatedBlock(languages)
	}
	if offers, ok := acc.Hrefs(page, e.sel.SimilarOffers); ok {
		listing.SimilarOffers = offers
	}

	companyLink := acc.Href(page, e.sel.CompanyLink)
	if companyLink.Value == "" {
		return listing, nil
	}

	company, err := e.company(page, companyLink.Value)
	if err != nil {
		return nil, err
	}
	listing.Company = company
	return listing, nil
}

// company reads the company description in a separate tab, then closes it
// and hands focus back to the listing tab.
func (e *Extractor) company(listingPage browser.Page, link string) (scraper.CompanyProfile, error) {
	tab, err := e.session.NewPage()
	if err != nil {
		return scraper.CompanyProfile{}, fmt.Errorf("open company tab: %w", err)
	}
	defer func() {
		_ = tab.Close()
		_ = listingPage.BringToFront()
	}()

	if err := tab.Goto(link); err != nil {
		return scraper.CompanyProfile{}, fmt.Errorf("open company page %s: %w", link, err)
	}

	acc := e.accessor
	profile := scraper.CompanyProfile{
		Name:        acc.Text(tab, e.sel.CompanyName),
		Address:     acc.Text(tab, e.sel.CompanyAddress),
		Website:     acc.Href(tab, e.sel.CompanyWebsite),
		Description: acc.Text(tab, e.sel.CompanyDescription),
	}
	profile.Address.Value = cleanAddress(profile.Address.Value, profile.Website.Value)
	return profile, nil
}

// cleanAddress drops the website host the contact block repeats after the
// address, and the scheme fragment that removal leaves behind.
func cleanAddress(address, website string) string {
	if address != "" && website != "" {
		if u, err := url.Parse(website); err == nil && u.Host != "" {
			address = strings.TrimSpace(strings.ReplaceAll(address, u.Host, ""))
		}
	}
	if strings.Contains(address, brokenScheme) {
		address = strings.TrimSpace(strings.ReplaceAll(address, brokenScheme, ""))
	}
	return address
}

// collapseRepeatedBlock undoes the page rendering the language badges twice.
// Two identical halves keep the first; otherwise repeats are dropped keeping
// first occurrences in order.
func collapseRepeatedBlock(values []string) []string {
	if n := len(values); n > 0 && n%2 == 0 && slices.Equal(values[:n/2], values[n/2:]) {
		return values[:n/2]
	}

	seen := make(map[string]bool, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	return unique
}
