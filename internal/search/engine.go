package search

import (
	"strings"

	"github.com/iliyamo/dorm-finder/internal/config"
	"github.com/iliyamo/dorm-finder/internal/listing"
	"github.com/iliyamo/dorm-finder/internal/model"
	"github.com/iliyamo/dorm-finder/internal/resolve"
)

// Price match rules.
//
// PriceWithin requires the listing's effective lower bound to be at least
// PriceMin and its effective upper bound to be at most PriceMax.
// PriceOverlap keeps a listing whose range intersects [PriceMin, PriceMax].
const (
	PriceWithin  = "within"
	PriceOverlap = "overlap"
)

// Cooling match rules for HasAir/HasFan.
//
// CoolingLoose keeps a listing when a room type name matches OR the price
// signal is positive (price max for air, price min for fan). This is a known
// approximation: a dorm with fan rooms only still matches HasAir when it has
// a price max. CoolingFallback uses the price signal only when the listing has
// no named room types. CoolingStrict uses room type names only.
const (
	CoolingLoose    = "loose"
	CoolingFallback = "fallback"
	CoolingStrict   = "strict"
)

// Options configures rules that are deliberately swappable.
type Options struct {
	Zones        config.ZoneTable
	PriceMatch   string
	CoolingMatch string
}

// Group is the listings of one zone, in fetch order.
type Group struct {
	Zone     string          `json:"zone"`
	Listings []model.Listing `json:"listings"`
}

// Result is the filtered set partitioned by zone in canonical zone order.
type Result struct {
	Groups []Group `json:"groups"`
	Total  int     `json:"total"`
}

// Flatten returns every listing of the result in group order.
func (r Result) Flatten() []model.Listing {
	out := make([]model.Listing, 0, r.Total)
	for _, g := range r.Groups {
		out = append(out, g.Listings...)
	}
	return out
}

// Search applies the free-text query, the zone bucket and the structured
// filters, then groups the survivors by zone. It is deterministic and never
// reorders listings within a zone.
func Search(listings []model.Listing, query string, f Filters, opts Options) Result {
	tokens := strings.Fields(strings.ToLower(query))
	zone, single := requestedZone(f.Zone, opts.Zones)

	kept := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if !MatchText(l, tokens) {
			continue
		}
		if single && l.Zone != zone {
			continue
		}
		if !Match(l, f, opts) {
			continue
		}
		kept = append(kept, l)
	}
	return group(kept, zone, single, opts.Zones)
}

// MatchText requires every token to occur in at least one searchable field.
// Display placeholders ("-", the unnamed-dorm label) are not searchable.
func MatchText(l model.Listing, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	name := l.Name
	if name == listing.UnnamedDorm {
		name = ""
	}
	var fields []string
	for _, f := range []string{name, l.NameTH, l.NameEN, l.Address, l.District, l.Province} {
		f = strings.TrimSpace(f)
		if f == "" || f == resolve.Placeholder {
			continue
		}
		fields = append(fields, strings.ToLower(f))
	}
	for _, tok := range tokens {
		found := false
		for _, fld := range fields {
			if strings.Contains(fld, tok) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Match applies the structured filters (not the zone or text) to one listing.
func Match(l model.Listing, f Filters, opts Options) bool {
	if f.VerifiedOnly && !l.Verified {
		return false
	}
	if f.DistanceMaxKm != nil {
		if l.DistanceM == nil || *l.DistanceM > *f.DistanceMaxKm*1000 {
			return false
		}
	}
	if !matchPrice(l.Price, f.PriceMin, f.PriceMax, opts.PriceMatch) {
		return false
	}
	if f.HasAir && !matchCooling(l, model.CoolingAir, opts.CoolingMatch) {
		return false
	}
	if f.HasFan && !matchCooling(l, model.CoolingFan, opts.CoolingMatch) {
		return false
	}
	if len(f.Amenities) > 0 && !hasAllAmenities(l.Amenities, f.Amenities) {
		return false
	}
	if !matchGender(l.Policy.Gender, f.GenderPolicy) {
		return false
	}
	if f.PetFriendly && !l.Policy.PetFriendly {
		return false
	}
	return true
}

func matchPrice(p model.PriceRange, min, max *int, rule string) bool {
	if min == nil && max == nil {
		return true
	}
	lo, ok := p.Lower()
	if !ok {
		return false
	}
	hi, _ := p.Upper()
	if rule == PriceOverlap {
		if min != nil && hi < *min {
			return false
		}
		if max != nil && lo > *max {
			return false
		}
		return true
	}
	if min != nil && lo < *min {
		return false
	}
	if max != nil && hi > *max {
		return false
	}
	return true
}

func matchCooling(l model.Listing, mode, rule string) bool {
	named := false
	for _, rt := range l.RoomTypes {
		if rt.Name != "" {
			named = true
		}
		if rt.Cooling == mode {
			return true
		}
	}
	var signal bool
	if mode == model.CoolingAir {
		signal = l.Price.Max != nil && *l.Price.Max > 0
	} else {
		signal = l.Price.Min != nil && *l.Price.Min > 0
	}
	switch rule {
	case CoolingStrict:
		return false
	case CoolingFallback:
		return !named && signal
	default:
		return signal
	}
}

func hasAllAmenities(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, a := range have {
		set[listing.LabelKey(a)] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[listing.LabelKey(w)]; !ok {
			return false
		}
	}
	return true
}

func matchGender(policy, want string) bool {
	switch want {
	case "", GenderAny:
		return true
	case GenderMix:
		return policy == model.GenderMixed
	case GenderMale:
		return policy == model.GenderMale
	case GenderFemale:
		return policy == model.GenderFemale
	}
	return true
}

// requestedZone resolves the zone filter. It reports single=false for the All
// sentinel or an empty value.
func requestedZone(z string, zones config.ZoneTable) (string, bool) {
	z = strings.TrimSpace(z)
	if z == "" || strings.EqualFold(z, config.ZoneAll) {
		return "", false
	}
	if name, ok := zones.Lookup(z); ok {
		return name, true
	}
	return z, true
}

func group(kept []model.Listing, zone string, single bool, zones config.ZoneTable) Result {
	if single {
		return Result{Groups: []Group{{Zone: zone, Listings: kept}}, Total: len(kept)}
	}
	byZone := make(map[string][]model.Listing)
	for _, l := range kept {
		byZone[l.Zone] = append(byZone[l.Zone], l)
	}
	res := Result{Total: len(kept)}
	seen := make(map[string]bool)
	for _, name := range zones.Names() {
		seen[name] = true
		if ls := byZone[name]; len(ls) > 0 {
			res.Groups = append(res.Groups, Group{Zone: name, Listings: ls})
		}
	}
	// Listings tagged with a zone outside the table go to Other, keeping
	// the fixed order.
	var stray []model.Listing
	for _, l := range kept {
		if !seen[l.Zone] {
			stray = append(stray, l)
		}
	}
	if len(stray) > 0 {
		if n := len(res.Groups); n > 0 && res.Groups[n-1].Zone == config.ZoneOther {
			res.Groups[n-1].Listings = append(res.Groups[n-1].Listings, stray...)
		} else {
			res.Groups = append(res.Groups, Group{Zone: config.ZoneOther, Listings: stray})
		}
	}
	return res
}
