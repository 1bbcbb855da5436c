package models

import (
	"time"
)

// ProductResult is the full output record for a checked product. It is the
// unit that gets cached, persisted to history, and returned to API callers.
type ProductResult struct {
	ProductID         string    `json:"product_id"`
	Title             string    `json:"title"`
	Price             string    `json:"price"`
	Rating            float64   `json:"rating"`
	TotalReviews      int       `json:"total_reviews"`
	CustomersSay      string    `json:"customers_say"`
	SellerName        string    `json:"seller_name"`
	Sentiment         string    `json:"sentiment"`
	SentimentScore    float64   `json:"sentiment_score"`
	AuthenticityScore int       `json:"authenticity_score"`
	SellerRating      float64   `json:"seller_rating"`
	SellerReviewCount int       `json:"seller_review_count"`
	CheckedAt         time.Time `json:"checked_at"`
}

// ProductPage holds the raw fields extracted from a product page before any
// derived signals are computed. Text fields default to "N/A" when the page
// does not carry them, numeric fields to zero.
type ProductPage struct {
	Title        string
	Price        string
	Rating       float64
	TotalReviews int
	CustomersSay string
	SellerName   string
	SellerURL    string
}

// SellerInfo carries the two reputation signals read from a seller profile
// page. Every recovered seller failure collapses to the zero value.
type SellerInfo struct {
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}
