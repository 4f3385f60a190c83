package resolve

import (
	"math"

	"github.com/iliyamo/dorm-finder/internal/model"
)

// Paths probed for each derived field, in priority order.
var (
	PriceMinPaths  = []string{"price_min", "min_price", "priceMin", "price.min", "price_range.min"}
	PriceMaxPaths  = []string{"price_max", "max_price", "priceMax", "price.max", "price_range.max"}
	RoomTypePaths  = []string{"room_types", "roomTypes", "rooms"}
	RoomPricePaths = []string{"price", "monthly_price", "price_per_month", "rent"}

	RatingPaths      = []string{"rating_avg", "avg_rating", "average_rating", "rating", "review_summary.average"}
	ReviewCountPaths = []string{"review_count", "reviews_count", "rating_count", "review_summary.total"}
	ReviewListPaths  = []string{"reviews", "review_list"}
)

// PriceRange resolves the monthly price bounds. An explicit min/max stored on
// the record wins; otherwise the bounds are taken over the room type prices.
// The result always satisfies Min <= Max when both are present.
func PriceRange(rec model.RawRecord) model.PriceRange {
	lo := IntPtr(rec, PriceMinPaths...)
	hi := IntPtr(rec, PriceMaxPaths...)
	if lo == nil && hi == nil {
		lo, hi = roomTypeBounds(rec)
	}
	if lo != nil && hi != nil && *lo > *hi {
		lo, hi = hi, lo
	}
	return model.PriceRange{Min: lo, Max: hi}
}

func roomTypeBounds(rec model.RawRecord) (*int, *int) {
	var lo, hi *int
	for _, item := range List(rec, RoomTypePaths...) {
		room, ok := AsRecord(item)
		if !ok {
			continue
		}
		p, ok := Float(room, RoomPricePaths...)
		if !ok {
			continue
		}
		n := int(math.Round(p))
		if lo == nil || n < *lo {
			v := n
			lo = &v
		}
		if hi == nil || n > *hi {
			v := n
			hi = &v
		}
	}
	return lo, hi
}

// Rating resolves the average rating and review count. A stored average wins;
// otherwise the plain mean of the review list is used; otherwise 0 with a
// count of 0. The average is clamped to [0, 5].
func Rating(rec model.RawRecord) (float64, int) {
	reviews := List(rec, ReviewListPaths...)
	count, hasCount := Int(rec, ReviewCountPaths...)
	if !hasCount || count < 0 {
		count = len(reviews)
	}

	if avg, ok := Float(rec, RatingPaths...); ok {
		return clampRating(avg), count
	}

	var sum float64
	var n int
	for _, item := range reviews {
		r, ok := AsRecord(item)
		if !ok {
			continue
		}
		if v, ok := Float(r, "rating", "score", "stars"); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, count
	}
	if !hasCount {
		count = n
	}
	return clampRating(sum / float64(n)), count
}

func clampRating(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 5:
		return 5
	}
	return v
}
