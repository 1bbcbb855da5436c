package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

var (
	ErrNotFound         = errors.New("product not found")
	ErrBlocked          = errors.New("blocked by Amazon anti-bot")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrNetworkFailure   = errors.New("network failure")
)

// StatusError reports a non-200 response that is neither a 404 nor a block
// signal. It unwraps to ErrUnexpectedStatus.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status %d", e.Code)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

type Tier string

const (
	TierDirect   Tier = "direct"
	TierRendered Tier = "rendered"
)

// Result is the normalized outcome of a tiered fetch: the page markup and
// the tier that produced it.
type Result struct {
	HTML string
	Tier Tier
}

// Renderer retrieves a fully rendered document after client-side scripts
// have settled. It is the tier-2 fallback when the direct fetch is blocked.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Fetcher performs the two-tier page retrieval: a direct HTTP GET with a
// browser-like header set, escalating to a rendered fetch exactly once when
// the origin answers with a block signal (503 or 500).
type Fetcher struct {
	client   *http.Client
	renderer Renderer
	logger   *slog.Logger
}

type Options struct {
	Timeout time.Duration
}

func DefaultOptions() *Options {
	return &Options{
		Timeout: 10 * time.Second,
	}
}

func New(renderer Renderer, opts *Options, logger *slog.Logger) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = slog.Default().With("component", "fetcher")
	}
	return &Fetcher{
		client:   &http.Client{Timeout: opts.Timeout},
		renderer: renderer,
		logger:   logger,
	}
}

// Fetch retrieves the document at url. The decision table on the direct
// response status:
//
//	404            -> ErrNotFound, no fallback
//	503 or 500     -> one rendered-fetch attempt
//	other non-200  -> StatusError carrying the code
//	network error  -> ErrNetworkFailure, no fallback
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusServiceUnavailable, http.StatusInternalServerError:
		f.logger.Info("blocked, retrying with rendered fetch", "status", resp.StatusCode, "url", url)
		html, err := f.renderer.Render(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("%w: rendered fetch failed: %v", ErrBlocked, err)
		}
		return &Result{HTML: html, Tier: TierRendered}, nil
	case http.StatusOK:
	default:
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}

	return &Result{HTML: string(body), Tier: TierDirect}, nil
}

// setBrowserHeaders applies the fixed browser-like header set for the direct
// tier. Accept-Encoding is owned by the transport so gzip responses get
// decoded transparently.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("DNT", "1")
	req.Header.Set("Connection", "keep-alive")
}
