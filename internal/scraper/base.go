// Record types shared by site scrapers

package scraper

import (
	"context"
	"time"
)

// Field is a best-effort extracted value. Found is false when the element was
// absent or could not be read; Value is then "".
type Field struct {
	Value string
	Found bool
}

// Found wraps a value that was read from the page.
func Found(value string) Field {
	return Field{Value: value, Found: true}
}

// Missing is the zero Field.
var Missing = Field{}

func (f Field) String() string {
	return f.Value
}

// CompanyProfile is resolved from the company description page, if linked.
type CompanyProfile struct {
	Name        Field
	Address     Field
	Website     Field
	Description Field
}

// Listing is one job posting. URL is its identity.
type Listing struct {
	URL                string
	Title              Field
	Description        Field
	Location           Field
	WorkArrangement    Field
	SalaryType         Field
	ExperienceRequired Field
	StudyRequired      Field
	RequiredLanguages  []string
	SimilarOffers      []string
	OtherJobsByCompany Field
	Company            CompanyProfile
}

type namedField struct {
	name  string
	field Field
}

// MissingFields names the scalar job fields that could not be read. Company
// fields are only counted when a company page was visited.
func (l *Listing) MissingFields() []string {
	fields := []namedField{
		{"title", l.Title},
		{"description", l.Description},
		{"location", l.Location},
		{"work_arrangement", l.WorkArrangement},
		{"salary_type", l.SalaryType},
		{"experience_required", l.ExperienceRequired},
		{"study_required", l.StudyRequired},
		{"other_jobs_by_company", l.OtherJobsByCompany},
	}
	if l.Company.Name.Found || l.Company.Description.Found {
		fields = append(fields,
			namedField{"company_address", l.Company.Address},
			namedField{"company_website", l.Company.Website},
		)
	}

	var missing []string
	for _, f := range fields {
		if !f.field.Found {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// RunStats summarises one pass over a job board.
type RunStats struct {
	Total     int
	Visited   int
	Processed int
	Skipped   int
	Failed    int
	Pages     int
	Started   time.Time
	Duration  time.Duration
}

// Scraper is implemented by each job board.
type Scraper interface {
	//Run walks the board once, writing unseen listings
	Run(ctx context.Context) (RunStats, error)

	//Name is the board name
	Name() string
}
