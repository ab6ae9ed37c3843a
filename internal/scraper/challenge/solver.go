package challenge

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	api2captcha "github.com/2captcha/2captcha-go"

	"jobscout/internal/browser"
	"jobscout/internal/logging"
	"jobscout/internal/logging/types"
)

// Solver performs the opaque external action that clears the interactive
// challenge. Implementations must stop promptly when the context is
// cancelled: the orchestrator races resolution against a settle timer and
// abandons the loser.
type Solver interface {
	Solve(ctx context.Context, surface browser.Surface) error
	Name() string
}

// CommandSolver shells out to a configured clicker command, the equivalent of
// the desktop macro the bot historically used. The surface must already be
// focused when the command runs.
type CommandSolver struct {
	command string
	logger  types.Logger
}

// NewCommandSolver creates a solver around the given shell command line.
func NewCommandSolver(command string) *CommandSolver {
	return &CommandSolver{
		command: command,
		logger:  logging.GetGlobalLogger().WithField("component", "solver_command"),
	}
}

func (s *CommandSolver) Name() string { return "command" }

// Solve runs the click command under the context, so an abandoned race leg
// kills the process instead of clicking into a page the cycle left behind.
func (s *CommandSolver) Solve(ctx context.Context, _ browser.Surface) error {
	if s.command == "" {
		return fmt.Errorf("no click command configured")
	}

	parts := strings.Fields(s.command)
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("click command failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	s.logger.Debug("Click command completed")
	return nil
}

// TwoCaptchaSolver solves Turnstile challenges through the 2CAPTCHA service
// and injects the token into the challenge form.
type TwoCaptchaSolver struct {
	client *api2captcha.Client
	logger types.Logger
}

// NewTwoCaptchaSolver creates a 2CAPTCHA-backed solver.
func NewTwoCaptchaSolver(apiKey string, timeout time.Duration) *TwoCaptchaSolver {
	client := api2captcha.NewClient(apiKey)
	client.DefaultTimeout = int(timeout.Seconds())
	client.PollingInterval = 5

	return &TwoCaptchaSolver{
		client: client,
		logger: logging.GetGlobalLogger().WithField("component", "solver_2captcha"),
	}
}

func (s *TwoCaptchaSolver) Name() string { return "2captcha" }

// Solve extracts the Turnstile site key from the loaded document, asks the
// service for a token, and writes it into the response inputs.
func (s *TwoCaptchaSolver) Solve(ctx context.Context, surface browser.Surface) error {
	rawHTML, err := surface.HTML()
	if err != nil {
		return fmt.Errorf("failed to read page for site key: %w", err)
	}

	siteKey := extractTurnstileSiteKey(rawHTML)
	if siteKey == "" {
		return fmt.Errorf("no turnstile site key found on page")
	}

	pageURL := surface.CurrentURL()
	s.logger.Info("Solving Turnstile via 2CAPTCHA", map[string]interface{}{
		"site_key": siteKey,
		"page_url": pageURL,
	})

	startTime := time.Now()
	captcha := api2captcha.CloudflareTurnstile{
		SiteKey: siteKey,
		Url:     pageURL,
	}

	// The 2captcha client polls synchronously; run it on the side so the
	// race context can abandon the wait.
	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		code, err := s.client.Solve(captcha.ToRequest())
		done <- result{code, err}
	}()

	var code string
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-done:
		if res.err != nil {
			return fmt.Errorf("failed to solve turnstile: %w", res.err)
		}
		code = res.code
	}

	s.logger.Info("Turnstile solved", map[string]interface{}{
		"solving_time": time.Since(startTime).String(),
	})

	js := fmt.Sprintf(`() => {
		for (const el of document.querySelectorAll('[name="cf-turnstile-response"], [name="g-recaptcha-response"]')) {
			el.value = %q;
		}
		const form = document.querySelector('form[action*="cdn-cgi/challenge-platform"]');
		if (form) form.submit();
	}`, code)
	if err := surface.Eval(js); err != nil {
		return fmt.Errorf("failed to inject turnstile token: %w", err)
	}
	return nil
}

// Site-key patterns, from the markup variants the challenge pages have shipped.
var turnstileSiteKeyRes = []*regexp.Regexp{
	regexp.MustCompile(`cf-turnstile[^>]*data-sitekey=['"]([^'"]+)['"]`),
	regexp.MustCompile(`data-sitekey="([^"]+)"[^>]*(?:turnstile|cf-turnstile)`),
	regexp.MustCompile(`"sitekey"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`challenges\.cloudflare\.com[^"]*/(0x[0-9a-zA-Z_-]{20,})/`),
}

func extractTurnstileSiteKey(rawHTML string) string {
	for _, re := range turnstileSiteKeyRes {
		if m := re.FindStringSubmatch(rawHTML); m != nil {
			siteKey := strings.TrimSpace(m[1])
			if len(siteKey) > 10 {
				return siteKey
			}
		}
	}
	return ""
}
