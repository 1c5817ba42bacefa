package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go-ictjob-scraper/internal/scraper"
)

// Header is the column order of the output table.
var Header = []string{
	"Job Title",
	"Job URL",
	"Job Description",
	"Company Name",
	"Company Address",
	"Company Website",
	"Company Description",
	"Job Location",
	"Work Arrangement",
	"Salary Type",
	"Experience Required",
	"Study Required",
	"Required Languages",
	"Other Jobs by Company",
	"Similar Offers",
}

// utf8BOM lets spreadsheet tools detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV appends one row per listing. The BOM and header are written only when
// the file does not exist yet.
type CSV struct {
	path     string
	encoding string
}

func NewCSV(path, listEncoding string) (*CSV, error) {
	if _, err := EncodeList(listEncoding, nil); err != nil {
		return nil, err
	}
	return &CSV{path: path, encoding: listEncoding}, nil
}

func (c *CSV) Path() string {
	return c.path
}

func (c *CSV) Write(_ context.Context, listing *scraper.Listing) error {
	row, err := c.Row(listing)
	if err != nil {
		return err
	}

	_, statErr := os.Stat(c.path)
	isNew := errors.Is(statErr, os.ErrNotExist)
	if isNew {
		if dir := filepath.Dir(c.path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
	}

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := f.Write(utf8BOM); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	return f.Close()
}

// Row flattens a listing in Header order.
func (c *CSV) Row(l *scraper.Listing) ([]string, error) {
	languages, err := EncodeList(c.encoding, l.RequiredLanguages)
	if err != nil {
		return nil, err
	}
	offers, err := EncodeList(c.encoding, l.SimilarOffers)
	if err != nil {
		return nil, err
	}

	return []string{
		l.Title.Value,
		l.URL,
		l.Description.Value,
		l.Company.Name.Value,
		l.Company.Address.Value,
		l.Company.Website.Value,
		l.Company.Description.Value,
		l.Location.Value,
		l.WorkArrangement.Value,
		l.SalaryType.Value,
		l.ExperienceRequired.Value,
		l.StudyRequired.Value,
		languages,
		l.OtherJobsByCompany.Value,
		offers,
	}, nil
}
