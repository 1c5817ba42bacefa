package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"go-ictjob-scraper/internal/browser"
	"go-ictjob-scraper/internal/config"
	"go-ictjob-scraper/internal/scraper"
	"go-ictjob-scraper/internal/scraper/ictjob"
)

// Extracts a single listing and prints it, for checking selectors against
// the live site without touching the output or resume files.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: listing <listing-url>")
	}
	listingURL := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("🌐 Launching browser...")
	session, err := browser.Launch(browser.LaunchOptions{
		ProfileDir:  cfg.ProfileDir,
		CookiesPath: cfg.CookiesPath,
		Headless:    cfg.Headless,
		Retries:     cfg.LaunchRetries,
		Backoff:     cfg.LaunchBackoff,
	})
	if err != nil {
		log.Fatalf("Failed to launch browser: %v", err)
	}
	defer session.Close()

	page := session.Page()
	if err := page.Goto(listingURL); err != nil {
		log.Fatalf("Failed to navigate: %v", err)
	}
	browser.DismissConsent(page, cfg.Selectors.CookieAccept, cfg.ConsentTimeout)

	accessor := scraper.NewAccessor(cfg.ElementTimeout, cfg.StaleAttempts, cfg.StaleBackoff)
	listing, err := ictjob.NewExtractor(session, accessor, cfg.Selectors).Extract(page, page.URL())
	if err != nil {
		log.Fatalf("Failed to extract: %v", err)
	}

	fields := []struct {
		name  string
		field scraper.Field
	}{
		{"Title", listing.Title},
		{"Location", listing.Location},
		{"Work arrangement", listing.WorkArrangement},
		{"Salary type", listing.SalaryType},
		{"Experience", listing.ExperienceRequired},
		{"Study", listing.StudyRequired},
		{"Other jobs", listing.OtherJobsByCompany},
		{"Company", listing.Company.Name},
		{"Address", listing.Company.Address},
		{"Website", listing.Company.Website},
	}
	for _, f := range fields {
		mark := "✅"
		if !f.field.Found {
			mark = "❌"
		}
		fmt.Printf("%s %-17s %s\n", mark, f.name+":", f.field.Value)
	}
	fmt.Printf("🗣️ Languages:  %s\n", strings.Join(listing.RequiredLanguages, ", "))
	fmt.Printf("🔗 Similar:    %d offers\n", len(listing.SimilarOffers))
	if missing := listing.MissingFields(); len(missing) > 0 {
		fmt.Printf("⚠️ Missing: %s\n", strings.Join(missing, ", "))
	}
	fmt.Println("✨ Test complete!")
}
