package compare

import "math"

// Picks are the three highlighted entries of a comparison. A nil pick means
// no entry qualifies (the set is empty).
type Picks struct {
	BestValue  *Entry `json:"best_value"`
	BestReview *Entry `json:"best_review"`
	Nearest    *Entry `json:"nearest"`
}

// Recommend scans the set once per pick. Ties go to the earlier entry;
// unknown prices and distances rank last.
func Recommend(entries []Entry) Picks {
	if len(entries) == 0 {
		return Picks{}
	}
	var p Picks
	bestPrice, bestDist := math.Inf(1), math.Inf(1)
	bestRating := math.Inf(-1)
	for i := range entries {
		e := &entries[i]

		price := math.Inf(1)
		if lo, ok := e.Price().Lower(); ok {
			price = float64(lo)
		}
		if p.BestValue == nil || price < bestPrice {
			p.BestValue, bestPrice = e, price
		}

		if p.BestReview == nil || e.Rating > bestRating {
			p.BestReview, bestRating = e, e.Rating
		}

		dist := math.Inf(1)
		if e.DistanceM != nil {
			dist = *e.DistanceM
		}
		if p.Nearest == nil || dist < bestDist {
			p.Nearest, bestDist = e, dist
		}
	}
	return p
}
