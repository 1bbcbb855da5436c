package scraper

import (
	"context"
	"errors"

	"github.com/maltedev/amazon-authenticity-checker/internal/models"
)

// ErrInvalidURL means the input never matched the canonical product-URL
// shape; it short-circuits the pipeline before any network call.
var ErrInvalidURL = errors.New("invalid Amazon product URL")

type Scraper interface {
	FetchProductData(ctx context.Context, url string) (*models.ProductResult, error)
}
