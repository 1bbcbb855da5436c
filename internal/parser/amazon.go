package parser

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/amazon-authenticity-checker/internal/models"
)

const baseURL = "https://www.amazon.in"

// Selector chains per field: primary first, evaluated in order until one
// yields a non-empty text match.
var (
	ratingSelectors = []string{
		"div#averageCustomerReviews span.reviewCountTextLinkedHistogram span.a-size-base.a-color-base",
		"span[data-asin-rating]",
	}
	titleSelectors = []string{"#productTitle"}
	priceSelectors = []string{".a-price .a-offscreen"}

	reviewCountSelector  = "#acrCustomerReviewText"
	customersSaySelector = "div[data-hook='cr-insights-widget-summary'] p.a-spacing-small span"
	sellerAnchorSelector = "a#sellerProfileTriggerId"

	sellerRatingSelector  = "span#effective-timeperiod-rating-lifetime-description"
	sellerReviewsSelector = "div#rating-lifetime-num span.ratings-reviews-count"
)

// AmazonParser extracts the authenticity signals from amazon.in product and
// seller pages. Missing fields are never fatal: each field independently
// defaults when its selectors find nothing or its text fails coercion.
type AmazonParser struct {
	logger *slog.Logger
}

func NewAmazonParser(logger *slog.Logger) *AmazonParser {
	if logger == nil {
		logger = slog.Default().With("component", "parser")
	}
	return &AmazonParser{logger: logger}
}

func (p *AmazonParser) ParseProductPage(html string) (*models.ProductPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := &models.ProductPage{
		Title:        textOrNA(doc, titleSelectors),
		Price:        textOrNA(doc, priceSelectors),
		Rating:       p.extractRating(doc),
		TotalReviews: p.extractReviewCount(doc),
		CustomersSay: p.extractCustomersSay(doc),
	}
	page.SellerName, page.SellerURL = p.extractSeller(doc)

	return page, nil
}

// ParseSellerPage reads the two seller reputation fields. Both default to
// zero on absence or parse failure.
func (p *AmazonParser) ParseSellerPage(html string) (*models.SellerInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	info := &models.SellerInfo{}

	if text := selectText(doc, sellerRatingSelector); text != "" {
		val, err := strconv.ParseFloat(firstToken(text), 64)
		if err != nil {
			p.logger.Warn("failed to parse seller rating", "text", text, "error", err)
		} else {
			info.Rating = val
		}
	}

	if text := selectText(doc, sellerReviewsSelector); text != "" {
		raw := strings.ReplaceAll(firstToken(text), ",", "")
		count, err := strconv.Atoi(raw)
		if err != nil {
			p.logger.Warn("failed to parse seller review count", "text", text, "error", err)
		} else {
			info.ReviewCount = count
		}
	}

	return info, nil
}

func (p *AmazonParser) extractRating(doc *goquery.Document) float64 {
	text := firstMatch(doc, ratingSelectors)
	if text == "" {
		return 0
	}
	val, err := strconv.ParseFloat(firstToken(text), 64)
	if err != nil {
		p.logger.Warn("failed to parse rating", "text", text, "error", err)
		return 0
	}
	return val
}

func (p *AmazonParser) extractReviewCount(doc *goquery.Document) int {
	text := selectText(doc, reviewCountSelector)
	if text == "" {
		return 0
	}
	raw := strings.ReplaceAll(firstToken(text), ",", "")
	count, err := strconv.Atoi(raw)
	if err != nil {
		p.logger.Warn("failed to parse review count", "text", text, "error", err)
		return 0
	}
	return count
}

func (p *AmazonParser) extractCustomersSay(doc *goquery.Document) string {
	var found string
	doc.Find(customersSaySelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := strings.TrimSpace(s.Text()); text != "" {
			found = text
			return false
		}
		return true
	})
	if found == "" {
		return "N/A"
	}
	return found
}

// extractSeller reads the seller anchor. An absent anchor means no seller
// sub-fetch gets attempted: the name defaults to "N/A" and the URL stays
// empty.
func (p *AmazonParser) extractSeller(doc *goquery.Document) (name, sellerURL string) {
	anchor := doc.Find(sellerAnchorSelector).First()

	name = strings.TrimSpace(anchor.Text())
	if name == "" {
		name = "N/A"
	}

	if href, ok := anchor.Attr("href"); ok && strings.TrimSpace(href) != "" {
		sellerURL = resolveURL(strings.TrimSpace(href))
	}

	return name, sellerURL
}

func resolveURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return baseURL + href
}

func firstMatch(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if text := selectText(doc, selector); text != "" {
			return text
		}
	}
	return ""
}

func selectText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func textOrNA(doc *goquery.Document, selectors []string) string {
	if text := firstMatch(doc, selectors); text != "" {
		return text
	}
	return "N/A"
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
