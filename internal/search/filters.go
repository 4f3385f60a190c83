// Package search filters, groups and sorts normalized listings.
package search

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/iliyamo/dorm-finder/internal/config"
)

// Gender filter values.
const (
	GenderAny    = "any"
	GenderMale   = "male"
	GenderFemale = "female"
	GenderMix    = "mix"
)

// Filters holds the structured criteria. Every field is optional; nil or
// zero means "not applied". All applied criteria are combined with AND.
type Filters struct {
	Zone          string
	VerifiedOnly  bool
	DistanceMaxKm *float64
	PriceMin      *int
	PriceMax      *int
	HasAir        bool
	HasFan        bool
	Amenities     []string
	GenderPolicy  string
	PetFriendly   bool
}

// ParseFilters reads filters from query parameters. Unparseable or negative
// numbers are treated as absent rather than excluding everything.
func ParseFilters(q url.Values) Filters {
	f := Filters{
		Zone:          strings.TrimSpace(q.Get("zone")),
		VerifiedOnly:  parseBool(q.Get("verified")),
		DistanceMaxKm: parseFloat(first(q, "distance_km", "distanceMaxKm")),
		PriceMin:      parseInt(first(q, "price_min", "priceMin", "min_price")),
		PriceMax:      parseInt(first(q, "price_max", "priceMax", "max_price")),
		HasAir:        parseBool(first(q, "air", "hasAir")),
		HasFan:        parseBool(first(q, "fan", "hasFan")),
		GenderPolicy:  strings.ToLower(strings.TrimSpace(first(q, "gender", "genderPolicy"))),
		PetFriendly:   parseBool(first(q, "pets", "petFriendly")),
	}
	for _, raw := range q["amenities"] {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				f.Amenities = append(f.Amenities, a)
			}
		}
	}
	if f.Zone == "" {
		f.Zone = config.ZoneAll
	}
	switch f.GenderPolicy {
	case GenderMale, GenderFemale, GenderMix:
	case "mixed":
		f.GenderPolicy = GenderMix
	default:
		f.GenderPolicy = GenderAny
	}
	return f
}

func first(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}
	return &f
}

func parseInt(s string) *int {
	f := parseFloat(strings.ReplaceAll(s, ",", ""))
	if f == nil {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}
