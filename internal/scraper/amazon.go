package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/maltedev/amazon-authenticity-checker/internal/cache"
	"github.com/maltedev/amazon-authenticity-checker/internal/fetcher"
	"github.com/maltedev/amazon-authenticity-checker/internal/models"
	"github.com/maltedev/amazon-authenticity-checker/internal/parser"
	"github.com/maltedev/amazon-authenticity-checker/internal/scoring"
	"github.com/maltedev/amazon-authenticity-checker/internal/sentiment"
)

const defaultBaseURL = "https://www.amazon.in"

// AmazonScraper sequences the whole pipeline: validate the URL, consult the
// cache, run the tiered fetch, extract fields, sub-fetch the seller page,
// score sentiment, compute the authenticity score, and write the result
// back through the cache.
//
// A nil cache store means cache-disabled mode; the pipeline never fails a
// request over cache trouble.
type AmazonScraper struct {
	fetcher   *fetcher.Fetcher
	parser    *parser.AmazonParser
	sentiment *sentiment.Analyzer
	cache     cache.Store
	baseURL   string
	cacheTTL  time.Duration
	logger    *slog.Logger
}

type Options struct {
	BaseURL  string
	CacheTTL time.Duration
}

func NewAmazonScraper(f *fetcher.Fetcher, p *parser.AmazonParser, a *sentiment.Analyzer, store cache.Store, opts *Options, logger *slog.Logger) *AmazonScraper {
	if opts == nil {
		opts = &Options{}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.DefaultTTL
	}
	if logger == nil {
		logger = slog.Default().With("component", "scraper")
	}
	return &AmazonScraper{
		fetcher:   f,
		parser:    p,
		sentiment: a,
		cache:     store,
		baseURL:   opts.BaseURL,
		cacheTTL:  opts.CacheTTL,
		logger:    logger,
	}
}

// FetchProductData is the single public entry point. Terminal errors are
// invalid URL, 404, unexpected status, and network failure on the primary
// fetch; every field-level and seller-level failure is absorbed into
// defaults so a partial page still yields a usable score.
func (s *AmazonScraper) FetchProductData(ctx context.Context, rawURL string) (*models.ProductResult, error) {
	asin, err := ExtractASIN(rawURL)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cachedResult(ctx, asin); ok {
		s.logger.Info("cache hit", "asin", asin)
		return cached, nil
	}

	productURL := fmt.Sprintf("%s/dp/%s", s.baseURL, asin)
	s.logger.Info("checking product", "asin", asin, "url", productURL)

	res, err := s.fetcher.Fetch(ctx, productURL)
	if err != nil {
		return nil, err
	}

	page, err := s.parser.ParseProductPage(res.HTML)
	if err != nil {
		return nil, err
	}

	seller := s.sellerInfo(ctx, page.SellerURL)
	senti := s.sentiment.Analyze(page.CustomersSay)
	score := scoring.Authenticity(page.Rating, page.TotalReviews, senti.Score, seller.Rating, seller.ReviewCount)

	result := &models.ProductResult{
		ProductID:         asin,
		Title:             page.Title,
		Price:             page.Price,
		Rating:            page.Rating,
		TotalReviews:      page.TotalReviews,
		CustomersSay:      page.CustomersSay,
		SellerName:        page.SellerName,
		Sentiment:         senti.Label,
		SentimentScore:    senti.Score,
		AuthenticityScore: score,
		SellerRating:      seller.Rating,
		SellerReviewCount: seller.ReviewCount,
		CheckedAt:         time.Now().UTC(),
	}

	s.storeResult(ctx, asin, result)

	return result, nil
}

// sellerInfo runs the best-effort seller sub-fetch. Any failure, terminal
// fetch errors included, collapses to zeroed defaults and never aborts the
// parent product check.
func (s *AmazonScraper) sellerInfo(ctx context.Context, sellerURL string) models.SellerInfo {
	if sellerURL == "" {
		return models.SellerInfo{}
	}

	res, err := s.fetcher.Fetch(ctx, sellerURL)
	if err != nil {
		s.logger.Warn("seller fetch failed, using defaults", "url", sellerURL, "error", err)
		return models.SellerInfo{}
	}

	info, err := s.parser.ParseSellerPage(res.HTML)
	if err != nil {
		s.logger.Warn("seller parse failed, using defaults", "url", sellerURL, "error", err)
		return models.SellerInfo{}
	}

	return *info
}

func (s *AmazonScraper) cachedResult(ctx context.Context, asin string) (*models.ProductResult, bool) {
	if s.cache == nil {
		return nil, false
	}

	ok, err := s.cache.Exists(ctx, asin)
	if err != nil {
		s.logger.Warn("cache lookup failed", "asin", asin, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, asin)
	if err != nil {
		s.logger.Warn("cache read failed", "asin", asin, "error", err)
		return nil, false
	}

	var result models.ProductResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.logger.Warn("cache entry corrupt, refetching", "asin", asin, "error", err)
		return nil, false
	}

	return &result, true
}

func (s *AmazonScraper) storeResult(ctx context.Context, asin string, result *models.ProductResult) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("failed to serialize result for cache", "asin", asin, "error", err)
		return
	}

	if err := s.cache.Set(ctx, asin, string(raw), s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", "asin", asin, "error", err)
	}
}
