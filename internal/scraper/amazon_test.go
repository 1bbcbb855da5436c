package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/amazon-authenticity-checker/internal/cache"
	"github.com/maltedev/amazon-authenticity-checker/internal/fetcher"
	"github.com/maltedev/amazon-authenticity-checker/internal/models"
	"github.com/maltedev/amazon-authenticity-checker/internal/parser"
	"github.com/maltedev/amazon-authenticity-checker/internal/sentiment"
)

const testASIN = "B0CG88K9DY"

type polarityStub struct {
	score float64
}

func (s polarityStub) Polarity(string) float64 {
	return s.score
}

type stubRenderer struct {
	calls int32
	html  string
}

func (r *stubRenderer) Render(_ context.Context, _ string) (string, error) {
	atomic.AddInt32(&r.calls, 1)
	return r.html, nil
}

func productPageHTML(sellerURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html><html><body>
		<span id="productTitle">Acme Wireless Earbuds</span>
		<span class="a-price"><span class="a-offscreen">₹2,499</span></span>
		<div id="averageCustomerReviews"><span class="reviewCountTextLinkedHistogram">
			<span class="a-size-base a-color-base">4.6 out of 5</span>
		</span></div>
		<span id="acrCustomerReviewText">6,200 ratings</span>
		<div data-hook="cr-insights-widget-summary">
			<p class="a-spacing-small"><span>Customers love the battery life.</span></p>
		</div>
		<a id="sellerProfileTriggerId" href="%s">Acme Retail</a>
	</body></html>`, sellerURL)
}

const sellerPageHTML = `<html><body>
	<span id="effective-timeperiod-rating-lifetime-description">4.7 out of 5 stars</span>
	<div id="rating-lifetime-num"><span class="ratings-reviews-count">1,500 ratings</span></div>
</body></html>`

func newTestScraper(t *testing.T, serverURL string, renderer fetcher.Renderer, polarity float64, store cache.Store) *AmazonScraper {
	t.Helper()
	if renderer == nil {
		renderer = &stubRenderer{}
	}
	return NewAmazonScraper(
		fetcher.New(renderer, nil, nil),
		parser.NewAmazonParser(nil),
		sentiment.NewAnalyzer(polarityStub{score: polarity}),
		store,
		&Options{BaseURL: serverURL},
		nil,
	)
}

func TestFetchProductDataFullPage(t *testing.T) {
	var requests int32
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/dp/"+testASIN, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte(productPageHTML(server.URL + "/seller")))
	})
	mux.HandleFunc("/seller", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte(sellerPageHTML))
	})

	store := cache.NewMemoryStore()
	s := newTestScraper(t, server.URL, nil, 0.6, store)

	result, err := s.FetchProductData(context.Background(), "https://www.amazon.in/dp/"+testASIN)
	require.NoError(t, err)

	assert.Equal(t, testASIN, result.ProductID)
	assert.Equal(t, "Acme Wireless Earbuds", result.Title)
	assert.Equal(t, "₹2,499", result.Price)
	assert.Equal(t, 4.6, result.Rating)
	assert.Equal(t, 6200, result.TotalReviews)
	assert.Equal(t, "Customers love the battery life.", result.CustomersSay)
	assert.Equal(t, "Acme Retail", result.SellerName)
	assert.Equal(t, sentiment.LabelPositive, result.Sentiment)
	assert.Equal(t, 0.6, result.SentimentScore)
	assert.Equal(t, 4.7, result.SellerRating)
	assert.Equal(t, 1500, result.SellerReviewCount)
	assert.Equal(t, 100, result.AuthenticityScore)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))

	// Write-through: the cached record round-trips to the same result.
	raw, err := store.Get(context.Background(), testASIN)
	require.NoError(t, err)
	resultJSON, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, string(resultJSON), raw)
}

func TestFetchProductDataInvalidURLMakesNoRequests(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer server.Close()

	s := newTestScraper(t, server.URL, nil, 0, nil)

	_, err := s.FetchProductData(context.Background(), "https://example.com/dp/"+testASIN)
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))
}

func TestFetchProductDataNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := newTestScraper(t, server.URL, nil, 0, nil)

	_, err := s.FetchProductData(context.Background(), "https://www.amazon.in/dp/"+testASIN)
	assert.ErrorIs(t, err, fetcher.ErrNotFound)
}

func TestFetchProductDataBlockedFallsBackToRenderedPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	// Rendered page carries none of the rating or review elements; every
	// signal defaults and the score still computes without error.
	renderer := &stubRenderer{html: `<html><body><span id="productTitle">Sparse Listing</span></body></html>`}
	s := newTestScraper(t, server.URL, renderer, 0.9, nil)

	result, err := s.FetchProductData(context.Background(), "https://www.amazon.in/dp/"+testASIN)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&renderer.calls))
	assert.Equal(t, "Sparse Listing", result.Title)
	assert.Equal(t, 0.0, result.Rating)
	assert.Equal(t, 0, result.TotalReviews)
	assert.Equal(t, "N/A", result.CustomersSay)
	assert.Equal(t, sentiment.LabelNeutral, result.Sentiment)
	assert.Equal(t, 0.0, result.SellerRating)
	assert.Equal(t, 0, result.SellerReviewCount)
	assert.Equal(t, 0, result.AuthenticityScore)
}

func TestFetchProductDataMissingSellerDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<span id="productTitle">No Seller Listing</span>
			<div id="averageCustomerReviews"><span class="reviewCountTextLinkedHistogram">
				<span class="a-size-base a-color-base">4.6 out of 5</span>
			</span></div>
			<span id="acrCustomerReviewText">6,200 ratings</span>
		</body></html>`))
	}))
	defer server.Close()

	s := newTestScraper(t, server.URL, nil, 0, nil)

	result, err := s.FetchProductData(context.Background(), "https://www.amazon.in/dp/"+testASIN)
	require.NoError(t, err)

	assert.Equal(t, "N/A", result.SellerName)
	assert.Equal(t, 0.0, result.SellerRating)
	assert.Equal(t, 0, result.SellerReviewCount)
	assert.Equal(t, 35+20, result.AuthenticityScore)
}

func TestFetchProductDataSellerFailureNeverAbortsParent(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/dp/"+testASIN, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPageHTML(server.URL + "/seller")))
	})
	mux.HandleFunc("/seller", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	s := newTestScraper(t, server.URL, nil, 0.6, nil)

	result, err := s.FetchProductData(context.Background(), "https://www.amazon.in/dp/"+testASIN)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.SellerRating)
	assert.Equal(t, 0, result.SellerReviewCount)
	assert.Equal(t, 35+20+20, result.AuthenticityScore)
}

func TestFetchProductDataCacheHitSkipsNetwork(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer server.Close()

	store := cache.NewMemoryStore()
	cached := models.ProductResult{
		ProductID:         testASIN,
		Title:             "Cached Earbuds",
		AuthenticityScore: 85,
	}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), testASIN, string(raw), cache.DefaultTTL))

	s := newTestScraper(t, server.URL, nil, 0, store)

	result, err := s.FetchProductData(context.Background(), "https://www.amazon.in/dp/"+testASIN)
	require.NoError(t, err)

	assert.Equal(t, cached, *result)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))
}
