package browser

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
)

// Renderer fetches fully rendered documents with a headless Chromium. Every
// Render call owns an exclusive short-lived browser session: a dedicated
// scratch profile directory, a user agent sampled from the configured pool,
// and unconditional teardown on every exit path.
type Renderer struct {
	userAgents []string
	headless   bool
	settle     time.Duration
	logger     *slog.Logger
}

type Options struct {
	Headless   bool
	Settle     time.Duration
	UserAgents []string
}

func DefaultOptions() *Options {
	return &Options{
		Headless: true,
		Settle:   5 * time.Second,
		UserAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.82 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/88.0.4324.150 Safari/537.36",
		},
	}
}

func NewRenderer(opts *Options, logger *slog.Logger) *Renderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(opts.UserAgents) == 0 {
		opts.UserAgents = DefaultOptions().UserAgents
	}
	if logger == nil {
		logger = slog.Default().With("component", "browser")
	}
	return &Renderer{
		userAgents: opts.UserAgents,
		headless:   opts.Headless,
		settle:     opts.Settle,
		logger:     logger,
	}
}

// Render navigates to url in a fresh browser session, waits a fixed settle
// time for client-side rendering, and returns the rendered document.
func (r *Renderer) Render(ctx context.Context, url string) (_ string, err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}

	pw, err := playwright.Run()
	if err != nil {
		return "", fmt.Errorf("failed to start playwright: %w", err)
	}
	defer func() {
		if stopErr := pw.Stop(); stopErr != nil && err == nil {
			err = fmt.Errorf("failed to stop playwright: %w", stopErr)
		}
	}()

	profileDir := filepath.Join(os.TempDir(), "authenticity-profile-"+uuid.NewString())
	defer os.RemoveAll(profileDir)

	userAgent := r.userAgents[rand.Intn(len(r.userAgents))]
	r.logger.Info("rendered fetch", "url", url, "user_agent", userAgent)

	browserCtx, err := pw.Chromium.LaunchPersistentContext(profileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:  playwright.Bool(r.headless),
		UserAgent: playwright.String(userAgent),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	}); err != nil {
		return "", fmt.Errorf("failed to navigate: %w", err)
	}

	time.Sleep(r.settle)

	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}

	return html, nil
}
