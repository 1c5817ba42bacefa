// Compiled-in defaults
// Optional YAML overrides + .env secrets
// Validate config

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks for optional overrides.
const DefaultPath = "configs/config.yaml"

// Selectors are playwright selectors for every element the scraper touches.
// CSS is used where it is enough, xpath= where text or index matching is needed.
type Selectors struct {
	CookieAccept string `yaml:"cookie_accept" validate:"required"`
	TotalJobs    string `yaml:"total_jobs" validate:"required"`
	FirstListing string `yaml:"first_listing" validate:"required"`
	NextListing  string `yaml:"next_listing" validate:"required"`

	Title              string `yaml:"title" validate:"required"`
	Description        string `yaml:"description" validate:"required"`
	Location           string `yaml:"location" validate:"required"`
	WorkArrangement    string `yaml:"work_arrangement" validate:"required"`
	SalaryType         string `yaml:"salary_type" validate:"required"`
	ExperienceRequired string `yaml:"experience_required" validate:"required"`
	StudyRequired      string `yaml:"study_required" validate:"required"`
	Languages          string `yaml:"languages" validate:"required"`
	SimilarOffers      string `yaml:"similar_offers" validate:"required"`
	OtherJobs          string `yaml:"other_jobs" validate:"required"`
	CompanyLink        string `yaml:"company_link" validate:"required"`

	CompanyName        string `yaml:"company_name" validate:"required"`
	CompanyAddress     string `yaml:"company_address" validate:"required"`
	CompanyWebsite     string `yaml:"company_website" validate:"required"`
	CompanyDescription string `yaml:"company_description" validate:"required"`
}

type Config struct {
	SearchURL string `yaml:"search_url" validate:"required,url"`

	//Paths
	OutputPath    string `yaml:"output_path" validate:"required"`
	ResumePath    string `yaml:"resume_path" validate:"required"`
	ProfileDir    string `yaml:"profile_dir" validate:"required"`
	CookiesPath   string `yaml:"cookies_path"`
	ScreenshotDir string `yaml:"screenshot_dir"`
	MetricsPath   string `yaml:"metrics_path"`
	LogPath       string `yaml:"log_path"`

	//Browser
	Headless      bool          `yaml:"headless"`
	LaunchRetries int           `yaml:"launch_retries" validate:"min=0"`
	LaunchBackoff time.Duration `yaml:"launch_backoff" validate:"min=0"`

	//Waits and retries
	ElementTimeout    time.Duration `yaml:"element_timeout" validate:"gt=0"`
	ClickTimeout      time.Duration `yaml:"click_timeout" validate:"gt=0"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" validate:"gt=0"`
	ConsentTimeout    time.Duration `yaml:"consent_timeout" validate:"gt=0"`
	StaleAttempts     int           `yaml:"stale_attempts" validate:"min=1"`
	StaleBackoff      time.Duration `yaml:"stale_backoff" validate:"min=0"`

	JobsPerPage  int    `yaml:"jobs_per_page" validate:"min=1"`
	ListEncoding string `yaml:"list_encoding" validate:"oneof=joined json"`

	Selectors Selectors `yaml:"selectors"`

	//Secrets, env only
	DatabaseURL    string `yaml:"-"`
	TelegramToken  string `yaml:"-"`
	TelegramChatID int64  `yaml:"-" validate:"required_with=TelegramToken"`
}

// Defaults returns the compiled-in configuration for ictjob.be.
func Defaults() *Config {
	return &Config{
		SearchURL:     "https://www.ictjob.be/en/search-it-jobs",
		OutputPath:    "ictjob_data.csv",
		ResumePath:    "done.txt",
		ProfileDir:    filepath.Join(executableDir(), "chrome-dir"),
		ScreenshotDir: filepath.Join("logs", "screenshots"),
		MetricsPath:   filepath.Join("logs", "scraper.prom"),
		LogPath:       filepath.Join("logs", "scraper.log"),

		Headless:      false,
		LaunchRetries: 3,
		LaunchBackoff: 2 * time.Second,

		ElementTimeout:    5 * time.Second,
		ClickTimeout:      3 * time.Second,
		NavigationTimeout: 10 * time.Second,
		ConsentTimeout:    5 * time.Second,
		StaleAttempts:     3,
		StaleBackoff:      200 * time.Millisecond,

		JobsPerPage:  20,
		ListEncoding: "joined",

		Selectors: Selectors{
			CookieAccept: "xpath=//div[text()='Accept All']/ancestor::button",
			TotalJobs:    "xpath=(//span[@class='nb-jobs-found'])[2]",
			FirstListing: "xpath=(//h2[@class='job-title']/parent::a)[1]",
			NextListing:  ".next-link",

			Title:              "#job-title",
			Description:        ".job-offer-edited-content",
			Location:           "span#job-location",
			WorkArrangement:    "span#work-arrangement",
			SalaryType:         "span#job-salary-freelance",
			ExperienceRequired: "span#job-requirements",
			StudyRequired:      "span#job-study-level",
			Languages:          `span[class="job-language-name job-language-name--proficient"]`,
			SimilarOffers:      `span[class="job-info"] > a`,
			OtherJobs:          "xpath=//div[@id='company-logo-container']/a | //a[text()='See more offers']",
			CompanyLink:        "xpath=//a[text()='Company description']",

			CompanyName:        "#office-name-title",
			CompanyAddress:     "#office-contact",
			CompanyWebsite:     "p#office-contact > a",
			CompanyDescription: "#company-description",
		},
	}
}

// Load reads DefaultPath on top of Defaults and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(DefaultPath)
}

// LoadFrom is Load with an explicit YAML path. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("ℹ️ No %s found, using compiled-in defaults", path)
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	//Override with env vars
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags on Config and its selectors.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// executableDir is the directory of the running binary, falling back to the
// working directory when it cannot be resolved.
func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
