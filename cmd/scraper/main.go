package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"go-ictjob-scraper/internal/browser"
	"go-ictjob-scraper/internal/config"
	"go-ictjob-scraper/internal/database"
	"go-ictjob-scraper/internal/dedup"
	"go-ictjob-scraper/internal/logging"
	"go-ictjob-scraper/internal/metrics"
	"go-ictjob-scraper/internal/scraper"
	"go-ictjob-scraper/internal/scraper/ictjob"
	"go-ictjob-scraper/internal/sink"
	"go-ictjob-scraper/internal/telegram"
	"go-ictjob-scraper/utils"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
	log.Println("🏁 Execution finished.")
}

func run() error {
	//load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runID := uuid.NewString()
	logFile := logging.Setup(cfg.LogPath, runID)
	defer logFile.Close()
	log.Printf("🔧 Config loaded. Search: %s", cfg.SearchURL)

	//stop cleanly on Ctrl+C, keeping everything written so far
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//telegram is optional
	var bot *telegram.Bot
	if cfg.TelegramToken != "" {
		bot, err = telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("⚠️ Failed to init Telegram Bot: %v. Continuing without it.", err)
			bot = nil
		} else {
			log.Println("🤖 Telegram Bot initialized.")
		}
	}

	rec := metrics.New()

	store, err := dedup.Load(cfg.ResumePath)
	if err != nil {
		return fmt.Errorf("load resume file: %w", err)
	}
	log.Printf("💾 %d listings already processed", store.Len())

	out, closeSinks, err := openSinks(ctx, cfg, runID)
	if err != nil {
		return err
	}
	defer closeSinks()

	log.Println("🚀 Starting ICTJob scraper...")
	session, err := browser.Launch(browser.LaunchOptions{
		ProfileDir:  cfg.ProfileDir,
		CookiesPath: cfg.CookiesPath,
		Headless:    cfg.Headless,
		Retries:     cfg.LaunchRetries,
		Backoff:     cfg.LaunchBackoff,
	})
	if err != nil {
		notifyError(bot, err)
		return err
	}
	defer session.Close()
	log.Println("✅ Browser initialized successfully!")

	s := ictjob.NewICTJobScraper(cfg, session, store, out, rec)
	if cfg.ScreenshotDir != "" {
		s.WithScreenshots(utils.NewScreenShotDebugger(cfg.ScreenshotDir))
	}

	log.Printf("\n▶️ Starting scraper: %s", s.Name())
	stats, runErr := s.Run(ctx)
	report(cfg, rec, s, stats, runID, bot)

	if runErr != nil {
		notifyError(bot, runErr)
		return fmt.Errorf("scraper %s: %w", s.Name(), runErr)
	}
	return nil
}

// openSinks always writes the CSV file and mirrors into Postgres when
// DATABASE_URL is set.
func openSinks(ctx context.Context, cfg *config.Config, runID string) (sink.Sink, func(), error) {
	csvSink, err := sink.NewCSV(cfg.OutputPath, cfg.ListEncoding)
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return csvSink, func() {}, nil
	}

	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, nil, err
	}
	log.Println("🗄️ Database connected.")
	return sink.Multi(csvSink, repo.WithRunID(runID)), repo.Close, nil
}

func report(cfg *config.Config, rec *metrics.Recorder, s scraper.Scraper, stats scraper.RunStats, runID string, bot *telegram.Bot) {
	log.Printf("✅ Scraper %s finished. Visited %d/%d, saved %d, skipped %d, failed %d in %s.",
		s.Name(), stats.Visited, stats.Total, stats.Processed, stats.Skipped, stats.Failed, stats.Duration.Round(time.Second))

	rec.Finish(stats.Duration, time.Now())
	if cfg.MetricsPath != "" {
		if err := rec.WriteTextfile(cfg.MetricsPath); err != nil {
			log.Printf("⚠️ Failed to write metrics: %v", err)
		} else {
			log.Printf("📁 Metrics saved to %s", cfg.MetricsPath)
		}
	}

	if bot != nil {
		if err := bot.SendSummary(s.Name(), stats, runID); err != nil {
			log.Printf("⚠️ Failed to send summary to Telegram: %v", err)
		}
	}
}

func notifyError(bot *telegram.Bot, err error) {
	if bot == nil {
		return
	}
	if sendErr := bot.SendError(err); sendErr != nil {
		log.Printf("⚠️ Failed to send error to Telegram: %v", sendErr)
	}
}
