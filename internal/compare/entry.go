// Package compare keeps the bounded, persisted set of listings a visitor is
// comparing side by side, and picks recommendations from it.
package compare

import "github.com/iliyamo/dorm-finder/internal/model"

// Entry is the lightweight snapshot stored in a comparison set. Raw carries
// the source record and grows when detail enrichment lands.
type Entry struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Verified     bool            `json:"verified"`
	DistanceText string          `json:"distance_text"`
	DistanceM    *float64        `json:"distance_m,omitempty"`
	PriceMin     *int            `json:"price_min,omitempty"`
	PriceMax     *int            `json:"price_max,omitempty"`
	PriceText    string          `json:"price_text"`
	Amenities    []string        `json:"amenities"`
	Rating       float64         `json:"rating"`
	ReviewCount  int             `json:"review_count"`
	Enriched     bool            `json:"enriched"`
	Raw          model.RawRecord `json:"raw,omitempty"`
}

// NewEntry snapshots a normalized listing.
func NewEntry(l model.Listing) Entry {
	amenities := make([]string, len(l.Amenities))
	copy(amenities, l.Amenities)
	return Entry{
		ID:           l.ID,
		Name:         l.Name,
		Image:        l.CoverImage,
		Verified:     l.Verified,
		DistanceText: l.DistanceText,
		DistanceM:    l.DistanceM,
		PriceMin:     l.Price.Min,
		PriceMax:     l.Price.Max,
		PriceText:    l.PriceText,
		Amenities:    amenities,
		Rating:       l.Rating,
		ReviewCount:  l.ReviewCount,
		Raw:          l.Raw.Clone(),
	}
}

// Price returns the entry's price bounds.
func (e Entry) Price() model.PriceRange {
	return model.PriceRange{Min: e.PriceMin, Max: e.PriceMax}
}
