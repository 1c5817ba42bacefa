package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-ictjob-scraper/internal/scraper"
)

// ErrNotFound is returned by GetListing for an unknown URL.
var ErrNotFound = errors.New("listing not found")

// Repository mirrors written listings into Postgres, keyed by URL.
type Repository struct {
	db    *pgxpool.Pool
	runID string
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Transaction-mode poolers do not keep prepared statements across queries.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

// WithRunID tags every row written from now on.
func (r *Repository) WithRunID(id string) *Repository {
	r.runID = id
	return r
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS ictjob_listings (
	url                   TEXT PRIMARY KEY,
	title                 TEXT,
	description           TEXT,
	location              TEXT,
	work_arrangement      TEXT,
	salary_type           TEXT,
	experience_required   TEXT,
	study_required        TEXT,
	required_languages    TEXT[] NOT NULL DEFAULT '{}',
	similar_offers        TEXT[] NOT NULL DEFAULT '{}',
	other_jobs_by_company TEXT,
	company_name          TEXT,
	company_address       TEXT,
	company_website       TEXT,
	company_description   TEXT,
	run_id                TEXT,
	scraped_at            TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the listings table if it is missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Write inserts a listing or refreshes the stored copy. Fields that were not
// found are stored as NULL.
func (r *Repository) Write(ctx context.Context, l *scraper.Listing) error {
	query := `
		INSERT INTO ictjob_listings (
			url, title, description, location, work_arrangement, salary_type,
			experience_required, study_required, required_languages, similar_offers,
			other_jobs_by_company, company_name, company_address, company_website,
			company_description, run_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (url)
		DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			location = EXCLUDED.location,
			work_arrangement = EXCLUDED.work_arrangement,
			salary_type = EXCLUDED.salary_type,
			experience_required = EXCLUDED.experience_required,
			study_required = EXCLUDED.study_required,
			required_languages = EXCLUDED.required_languages,
			similar_offers = EXCLUDED.similar_offers,
			other_jobs_by_company = EXCLUDED.other_jobs_by_company,
			company_name = EXCLUDED.company_name,
			company_address = EXCLUDED.company_address,
			company_website = EXCLUDED.company_website,
			company_description = EXCLUDED.company_description,
			run_id = EXCLUDED.run_id,
			scraped_at = now()`

	_, err := r.db.Exec(ctx, query,
		l.URL,
		nullable(l.Title),
		nullable(l.Description),
		nullable(l.Location),
		nullable(l.WorkArrangement),
		nullable(l.SalaryType),
		nullable(l.ExperienceRequired),
		nullable(l.StudyRequired),
		nonNil(l.RequiredLanguages),
		nonNil(l.SimilarOffers),
		nullable(l.OtherJobsByCompany),
		nullable(l.Company.Name),
		nullable(l.Company.Address),
		nullable(l.Company.Website),
		nullable(l.Company.Description),
		r.runID,
	)
	if err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

// GetListing reads back one stored listing.
func (r *Repository) GetListing(ctx context.Context, url string) (*scraper.Listing, error) {
	var (
		l      scraper.Listing
		fields [12]*string
	)
	query := `
		SELECT url, title, description, location, work_arrangement, salary_type,
			experience_required, study_required, required_languages, similar_offers,
			other_jobs_by_company, company_name, company_address, company_website,
			company_description
		FROM ictjob_listings WHERE url = $1`

	err := r.db.QueryRow(ctx, query, url).Scan(
		&l.URL, &fields[0], &fields[1], &fields[2], &fields[3], &fields[4], &fields[5], &fields[6],
		&l.RequiredLanguages, &l.SimilarOffers,
		&fields[7], &fields[8], &fields[9], &fields[10], &fields[11],
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	targets := []*scraper.Field{
		&l.Title, &l.Description, &l.Location, &l.WorkArrangement, &l.SalaryType,
		&l.ExperienceRequired, &l.StudyRequired, &l.OtherJobsByCompany,
		&l.Company.Name, &l.Company.Address, &l.Company.Website, &l.Company.Description,
	}
	for i, target := range targets {
		if fields[i] != nil {
			*target = scraper.Found(*fields[i])
		}
	}
	return &l, nil
}

func nullable(f scraper.Field) *string {
	if !f.Found {
		return nil
	}
	v := f.Value
	return &v
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// Count is the number of stored listings.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM ictjob_listings").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return n, nil
}
