package search

import (
	"sort"

	"github.com/iliyamo/dorm-finder/internal/model"
)

// Sort keys accepted by SortListings.
const (
	SortPriceAsc     = "price_asc"
	SortPriceDesc    = "price_desc"
	SortDistanceAsc  = "distance_asc"
	SortDistanceDesc = "distance_desc"
	SortRatingAsc    = "rating_asc"
	SortRatingDesc   = "rating_desc"
)

// SortListings returns a stably sorted copy. Price ascending orders by the
// effective lower bound and descending by the effective upper bound; unknown
// prices and distances always sort last. Unknown keys leave the order as is.
func SortListings(ls []model.Listing, key string) []model.Listing {
	out := append([]model.Listing(nil), ls...)
	var val func(model.Listing) (float64, bool)
	desc := false
	switch key {
	case SortPriceAsc:
		val = func(l model.Listing) (float64, bool) { v, ok := l.Price.Lower(); return float64(v), ok }
	case SortPriceDesc:
		val = func(l model.Listing) (float64, bool) { v, ok := l.Price.Upper(); return float64(v), ok }
		desc = true
	case SortDistanceAsc, SortDistanceDesc:
		val = func(l model.Listing) (float64, bool) {
			if l.DistanceM == nil {
				return 0, false
			}
			return *l.DistanceM, true
		}
		desc = key == SortDistanceDesc
	case SortRatingAsc, SortRatingDesc:
		val = func(l model.Listing) (float64, bool) { return l.Rating, true }
		desc = key == SortRatingDesc
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, okA := val(out[i])
		b, okB := val(out[j])
		if okA != okB {
			return okA
		}
		if !okA {
			return false
		}
		if desc {
			return a > b
		}
		return a < b
	})
	return out
}

// SortResult sorts every group of r in place.
func SortResult(r Result, key string) Result {
	for i := range r.Groups {
		r.Groups[i].Listings = SortListings(r.Groups[i].Listings, key)
	}
	return r
}

