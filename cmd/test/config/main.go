package main

import (
	"fmt"
	"log"

	"go-ictjob-scraper/internal/config"
)

func main() {
	fmt.Println("🔧 Testing config loading...")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	fmt.Printf("✅ Config loaded successfully!\n")
	fmt.Printf("   Search URL: %s\n", cfg.SearchURL)
	fmt.Printf("   Output: %s (lists: %s)\n", cfg.OutputPath, cfg.ListEncoding)
	fmt.Printf("   Resume file: %s\n", cfg.ResumePath)
	fmt.Printf("   Profile dir: %s\n", cfg.ProfileDir)
	fmt.Printf("   Headless: %t\n", cfg.Headless)
	fmt.Printf("   Element timeout: %s, stale attempts: %d\n", cfg.ElementTimeout, cfg.StaleAttempts)
	fmt.Printf("   Database: %t\n", cfg.DatabaseURL != "")
	if len(cfg.TelegramToken) > 10 {
		fmt.Printf("   Telegram Token: %s...\n", cfg.TelegramToken[:10])
		fmt.Printf("   Telegram Chat ID: %d\n", cfg.TelegramChatID)
	}
}
