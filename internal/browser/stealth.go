package browser

import (
	"fmt"
	"log"
	"time"

	"github.com/playwright-community/playwright-go"
)

// hideWebdriver removes the navigator.webdriver flag automation sets.
const hideWebdriver = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// applyStealth installs the init script on every page of the context.
func applyStealth(bctx playwright.BrowserContext) error {
	if err := bctx.AddInitScript(playwright.Script{
		Content: playwright.String(hideWebdriver),
	}); err != nil {
		return fmt.Errorf("could not add stealth script: %w", err)
	}
	return nil
}

// DismissConsent clicks the cookie banner button if it shows up within
// timeout. A missing banner is normal and only reported through the result.
func DismissConsent(page Page, selector string, timeout time.Duration) bool {
	if err := page.Click(selector, timeout); err != nil {
		return false
	}
	log.Println("🍪 Cookie banner dismissed")
	return true
}
