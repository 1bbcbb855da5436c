package scoring

// Authenticity combines product and seller reputation signals into a trust
// score in [0, 100]. Each signal contributes an independently capped band;
// the band ceilings sum to exactly 100 (35+20+20+25), so the clamp only
// matters if a band is ever widened. Re-derive the ceiling before touching
// any band.
//
// Absent inputs carry their zero defaults and simply fall into the lowest
// band; missing data is never special-cased.
func Authenticity(rating float64, totalReviews int, sentimentScore float64, sellerRating float64, sellerReviews int) int {
	score := 0

	switch {
	case rating >= 4.5:
		score += 35
	case rating >= 4.0:
		score += 25
	case rating >= 3.5:
		score += 15
	case rating > 3.0:
		score += 5
	}

	switch {
	case totalReviews > 5000:
		score += 20
	case totalReviews > 1000:
		score += 15
	case totalReviews > 500:
		score += 10
	case totalReviews > 100:
		score += 5
	}

	switch {
	case sentimentScore > 0.5:
		score += 20
	case sentimentScore > 0.2:
		score += 10
	}

	switch {
	case sellerRating >= 4.5 && sellerReviews > 1000:
		score += 25
	case sellerRating >= 4.0 && sellerReviews > 500:
		score += 15
	case sellerRating >= 3.5 && sellerReviews > 200:
		score += 10
	}

	if score > 100 {
		score = 100
	}

	return score
}
