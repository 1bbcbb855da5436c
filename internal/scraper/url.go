package scraper

import (
	"regexp"
)

// Canonical amazon.in product URL: optional path segments before /dp/,
// followed by the 10-character uppercase-alphanumeric ASIN.
const productURLPattern = `^https?://(www\.)?amazon\.in/(?:[^/]+/)*dp/([A-Z0-9]{10})`

var productURLRe = regexp.MustCompile(productURLPattern)

// ExtractASIN validates url against the canonical product-URL shape and
// returns the product identifier. No network I/O, no side effects.
func ExtractASIN(url string) (string, error) {
	matches := productURLRe.FindStringSubmatch(url)
	if len(matches) < 3 {
		return "", ErrInvalidURL
	}
	return matches[2], nil
}
