package main

import (
	"fmt"
	"log"
	"os"

	"go-ictjob-scraper/internal/browser"
	"go-ictjob-scraper/internal/config"
)

func main() {
	fmt.Println("🍪 Testing cookie loading...")

	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	} else if cfg, err := config.Load(); err == nil {
		path = cfg.CookiesPath
	}
	if path == "" {
		log.Fatal("Usage: cookies <cookies.json> (or set cookies_path in config)")
	}

	cookies, err := browser.LoadCookies(path)
	if err != nil {
		log.Fatalf("Failed to load cookies: %v", err)
	}

	fmt.Printf("✅ Loaded %d cookies\n", len(cookies))

	//Print first cookie as example
	if len(cookies) > 0 {
		c := cookies[0]
		fmt.Printf("\nExample cookie:\n")
		fmt.Printf("Name: %s\n", c.Name)
		if c.Domain != nil {
			fmt.Printf("Domain: %s\n", *c.Domain)
		}
		fmt.Printf("Secure: %t\n", c.Secure != nil && *c.Secure)
	}
}
