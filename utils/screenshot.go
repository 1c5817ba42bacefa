package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// Screenshotter is anything that can save a screenshot to a path.
type Screenshotter interface {
	Screenshot(path string) error
}

// ScreenShotDebugger handles debug screenshots
type ScreenShotDebugger struct {
	outputDir string
}

func NewScreenShotDebugger(dir string) *ScreenShotDebugger {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("⚠️ Failed to create screenshot directory: %v", err)
	}
	return &ScreenShotDebugger{
		outputDir: dir,
	}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// CaptureAndLog saves a full-page screenshot named after name and returns its path.
func (s *ScreenShotDebugger) CaptureAndLog(page Screenshotter, name, message string) (string, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s.png", unsafeName.ReplaceAllString(name, "-"), timestamp)
	path := filepath.Join(s.outputDir, filename)
	log.Printf("📸 %s", message)

	if err := page.Screenshot(path); err != nil {
		log.Printf("⚠️ Failed to capture screenshot: %v", err)
		return "", err
	}

	log.Printf("   Screenshot saved: %s", path)
	return path, nil
}
