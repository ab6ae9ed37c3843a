package browser

import (
	"context"
	"fmt"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"jobscout/internal/config"
	"jobscout/internal/logging"
	"jobscout/internal/logging/types"
)

// RodSurface is the production Surface, one persistent Chromium page driven
// through Rod. The page lives for the whole process; the orchestrator
// navigates it back and forth between feed and detail URLs.
type RodSurface struct {
	config  *config.Config
	browser *rod.Browser
	page    *rod.Page
	logger  types.Logger
}

// NewRodSurface launches the browser and prepares a single stealth page.
func NewRodSurface(cfg *config.Config) (*RodSurface, error) {
	logger := logging.GetGlobalLogger().WithField("component", "browser")

	l := launcher.New().
		Headless(cfg.Scraper.HeadlessMode).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-web-security").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		// Required for Chromium inside containers
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	if chromePath := getSystemChromePath(); chromePath != "" {
		l = l.Bin(chromePath)
		logger.Info("Using system Chrome browser", map[string]interface{}{
			"chrome_path": chromePath,
		})
	} else {
		logger.Warn("System Chrome not found, Rod will download browser")
	}

	if cfg.Scraper.UserAgent != "" {
		l = l.Set("user-agent", cfg.Scraper.UserAgent)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	s := &RodSurface{config: cfg, browser: b, logger: logger}
	if s.page, err = s.createPage(); err != nil {
		b.Close()
		return nil, err
	}

	logger.Info("Rendering surface ready", map[string]interface{}{
		"headless": cfg.Scraper.HeadlessMode,
		"stealth":  cfg.Scraper.StealthMode,
	})
	return s, nil
}

func (s *RodSurface) createPage() (*rod.Page, error) {
	var page *rod.Page
	var err error

	if s.config.Scraper.StealthMode {
		page, err = stealth.Page(s.browser)
	} else {
		page, err = s.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}); err != nil {
		s.logger.Warn("Failed to set viewport", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if s.config.Scraper.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: s.config.Scraper.UserAgent,
		}); err != nil {
			s.logger.Warn("Failed to set user agent", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// Mask the most common automation tells on top of what stealth covers.
	err = rod.Try(func() {
		page.MustEval(`() => {
			Object.defineProperty(navigator, 'webdriver', {
				get: () => undefined,
			});
			Object.defineProperty(navigator, 'languages', {
				get: () => ['en-US', 'en'],
			});
			window.chrome = window.chrome || { runtime: {} };
		}`)
	})
	if err != nil {
		s.logger.Warn("Failed to inject stealth JavaScript", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return page, nil
}

// Navigate loads the URL and waits for the load event, bounded by the
// configured navigation timeout.
func (s *RodSurface) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.config.Scraper.NavigationTimeout)
	defer cancel()

	err := rod.Try(func() {
		s.page.Context(navCtx).MustNavigate(url).MustWaitLoad()
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	s.logger.Debug("Navigated", map[string]interface{}{"url": url})
	return nil
}

// HTML returns the full markup of the current document.
func (s *RodSurface) HTML() (string, error) {
	html, err := s.page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get page HTML: %w", err)
	}
	return html, nil
}

// Eval runs a JS function expression against the loaded document.
func (s *RodSurface) Eval(js string) error {
	return rod.Try(func() {
		s.page.MustEval(js)
	})
}

// CurrentURL reports the document URL the surface ended up on.
func (s *RodSurface) CurrentURL() string {
	info, err := s.page.Info()
	if err != nil {
		s.logger.Warn("Failed to read current URL", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	return info.URL
}

// Focus brings the page to the foreground so an external click lands on it.
func (s *RodSurface) Focus() {
	if _, err := s.page.Activate(); err != nil {
		s.logger.Warn("Failed to focus page", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Close tears down the page and browser.
func (s *RodSurface) Close() error {
	if s.page != nil {
		_ = rod.Try(func() { s.page.MustClose() })
	}
	return s.browser.Close()
}

// getSystemChromePath finds a system-installed Chrome/Chromium binary
func getSystemChromePath() string {
	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
