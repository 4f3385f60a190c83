// Package listing turns raw dorm records into canonical Listings. Every
// consumer downstream (search, comparison, detail pages) works on the
// Listing only.
package listing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/dorm-finder/internal/config"
	"github.com/iliyamo/dorm-finder/internal/geo"
	"github.com/iliyamo/dorm-finder/internal/model"
	"github.com/iliyamo/dorm-finder/internal/resolve"
)

// ErrMissingID is returned when a record has no usable identifier. The
// identifier keys every set and map downstream, so such records are rejected.
var ErrMissingID = errors.New("listing: record has no identifier")

// Supported display languages.
const (
	LangTH = "th"
	LangEN = "en"
)

// UnnamedDorm is the display name when neither localized name is present.
const UnnamedDorm = "Unnamed dorm"

// DefaultPlaceholderImage is used when a record exposes no image at all.
const DefaultPlaceholderImage = "/static/img/dorm-placeholder.png"

var (
	idPaths       = []string{"id", "_id", "dorm_id", "uuid"}
	addressPaths  = []string{"address", "location.address", "address_text", "full_address"}
	districtPaths = []string{"district", "location.district", "amphoe"}
	provincePaths = []string{"province", "location.province", "changwat"}
	latPaths      = []string{"latitude", "lat", "location.lat", "location.latitude", "geo.lat"}
	lonPaths      = []string{"longitude", "lng", "lon", "location.lng", "location.lon", "location.longitude", "geo.lng"}
	distancePaths = []string{"distance_m", "distance_meters", "distance"}
	verifiedPaths = []string{"verified", "is_verified", "verification_status"}
	totalPaths    = []string{"total_rooms", "room_count", "rooms_total"}
	freePaths     = []string{"available_rooms", "rooms_available", "vacant_rooms"}
	coverPaths    = []string{"cover_image", "cover_image_url", "image_url", "thumbnail"}
	imageListPath = []string{"images", "image_urls", "photos", "dorm_images"}
	zoneTagPaths  = []string{"zone", "zone_name", "area_group", "group"}

	waterPaths    = []string{"water_rate", "fees.water", "fees.water_rate", "water_price"}
	electricPaths = []string{"electric_rate", "fees.electric", "fees.electric_rate", "electricity_rate"}
	advancePaths  = []string{"advance_months", "advance_rent", "fees.advance_months", "deposit_terms.advance"}
	depositPaths  = []string{"deposit_months", "security_deposit", "fees.deposit_months", "deposit_terms.deposit"}

	genderPaths  = []string{"gender_policy", "policy.gender", "gender", "dorm_type"}
	petPaths     = []string{"pet_policy", "policy.pets", "pets_allowed", "pet_friendly"}
	smokingPaths = []string{"smoking_policy", "policy.smoking", "smoking"}

	phonePaths = []string{"phone", "tel", "contact.phone", "owner.phone", "owner_phone"}
	emailPaths = []string{"email", "contact.email", "owner.email", "owner_email"}
	linePaths  = []string{"line_id", "contact.line", "owner.line_id"}
)

// Normalizer maps raw records to Listings. The zero value is not usable;
// build one with New.
type Normalizer struct {
	Lang             string
	Reference        *geo.Point
	Zones            config.ZoneTable
	DisplayURL       func(string) string
	PlaceholderImage string
}

// New returns a Normalizer for the given display language, reference point and
// zone table. The display URL rewrite defaults to the identity.
func New(lang string, ref *geo.Point, zones config.ZoneTable) *Normalizer {
	if lang != LangEN {
		lang = LangTH
	}
	return &Normalizer{
		Lang:             lang,
		Reference:        ref,
		Zones:            zones,
		DisplayURL:       func(u string) string { return u },
		PlaceholderImage: DefaultPlaceholderImage,
	}
}

// WithLang returns a copy of n that resolves display names in lang.
func (n *Normalizer) WithLang(lang string) *Normalizer {
	cp := *n
	if lang == LangEN || lang == LangTH {
		cp.Lang = lang
	}
	return &cp
}

// Normalize builds the canonical Listing for one raw record. Missing fields
// resolve to placeholders; only a missing identifier is an error.
func (n *Normalizer) Normalize(rec model.RawRecord) (model.Listing, error) {
	idVal, ok := resolve.First(rec, idPaths...)
	if !ok {
		return model.Listing{}, ErrMissingID
	}
	id := strings.TrimSpace(resolve.AsString(idVal))
	if id == "" {
		return model.Listing{}, ErrMissingID
	}

	l := model.Listing{
		ID:       id,
		NameTH:   resolve.OptionalString(rec, "name_th", "nameTh", "name.th"),
		NameEN:   resolve.OptionalString(rec, "name_en", "nameEn", "name.en"),
		Address:  resolve.String(rec, "", addressPaths...),
		District: resolve.OptionalString(rec, districtPaths...),
		Province: resolve.OptionalString(rec, provincePaths...),
		Lat:      resolve.FloatPtr(rec, latPaths...),
		Lon:      resolve.FloatPtr(rec, lonPaths...),
		Verified: n.verified(rec),

		TotalRooms:     resolve.NonNegInt(rec, totalPaths...),
		AvailableRooms: resolve.NonNegInt(rec, freePaths...),

		Fees: model.Fees{
			WaterRate:     resolve.FloatPtr(rec, waterPaths...),
			ElectricRate:  resolve.FloatPtr(rec, electricPaths...),
			AdvanceMonths: resolve.IntPtr(rec, advancePaths...),
			DepositMonths: resolve.IntPtr(rec, depositPaths...),
		},
		Contact: model.Contact{
			Phone:  resolve.String(rec, "", phonePaths...),
			Email:  resolve.String(rec, "", emailPaths...),
			LineID: resolve.String(rec, "", linePaths...),
		},
		Raw: rec,
	}
	l.Name = n.displayName(rec, l.NameTH, l.NameEN)

	l.DistanceM = n.distance(rec, l.Lat, l.Lon)
	l.DistanceText = geo.FormatDistance(l.DistanceM)

	l.Price = resolve.PriceRange(rec)
	l.PriceText = PriceText(l.Price)
	l.Rating, l.ReviewCount = resolve.Rating(rec)

	l.Amenities = n.extractAmenities(rec)
	l.Images = n.images(rec)
	l.CoverImage = n.cover(rec, l.Images)
	l.Zone = n.zone(rec, l.Address, l.District)
	l.Policy = policyOf(rec)
	l.RoomTypes = roomTypes(rec)
	return l, nil
}

// NormalizeAll normalizes a batch, skipping records that cannot be
// identified. The skipped count is returned so callers can log it.
func (n *Normalizer) NormalizeAll(recs []model.RawRecord) ([]model.Listing, int) {
	out := make([]model.Listing, 0, len(recs))
	skipped := 0
	for _, r := range recs {
		l, err := n.Normalize(r)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, l)
	}
	return out, skipped
}

func (n *Normalizer) displayName(rec model.RawRecord, th, en string) string {
	first, second := th, en
	if n.Lang == LangEN {
		first, second = en, th
	}
	switch {
	case first != "":
		return first
	case second != "":
		return second
	}
	return resolve.String(rec, UnnamedDorm, "name", "title")
}

// localized reads field_<lang> with a fallback to the other language and
// finally to the bare field.
func (n *Normalizer) localized(rec model.RawRecord, field string) string {
	other := LangEN
	if n.Lang == LangEN {
		other = LangTH
	}
	return resolve.OptionalString(rec,
		fmt.Sprintf("%s_%s", field, n.Lang),
		fmt.Sprintf("%s_%s", field, other),
		field)
}

func (n *Normalizer) verified(rec model.RawRecord) bool {
	v, ok := resolve.First(rec, verifiedPaths...)
	return ok && resolve.Truthy(v)
}

// distance prefers a precomputed value and only falls back to haversine from
// the reference point when the record has none.
func (n *Normalizer) distance(rec model.RawRecord, lat, lon *float64) *float64 {
	if d, ok := resolve.Float(rec, distancePaths...); ok && d >= 0 {
		return &d
	}
	if n.Reference == nil || lat == nil || lon == nil {
		return nil
	}
	d := n.Reference.From(*lat, *lon)
	return &d
}

func (n *Normalizer) images(rec model.RawRecord) []string {
	var out []string
	for _, item := range resolve.List(rec, imageListPath...) {
		var u string
		switch t := item.(type) {
		case string:
			u = t
		default:
			if r, ok := resolve.AsRecord(item); ok {
				u = resolve.OptionalString(r, "url", "image_url", "src", "path")
			}
		}
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, n.DisplayURL(u))
		}
	}
	return out
}

func (n *Normalizer) cover(rec model.RawRecord, images []string) string {
	if u := resolve.OptionalString(rec, coverPaths...); u != "" {
		return n.DisplayURL(u)
	}
	if len(images) > 0 {
		return images[0]
	}
	return n.PlaceholderImage
}

// zone honours an explicit tag naming a configured zone; anything else is
// classified by keyword over the tag, address and district text.
func (n *Normalizer) zone(rec model.RawRecord, address, district string) string {
	tag := resolve.OptionalString(rec, zoneTagPaths...)
	if name, ok := n.Zones.Lookup(tag); ok {
		return name
	}
	if address == resolve.Placeholder {
		address = ""
	}
	return n.Zones.Classify(tag, address, district)
}

func policyOf(rec model.RawRecord) model.Policy {
	p := model.Policy{
		Gender:  CanonicalGender(resolve.OptionalString(rec, genderPaths...)),
		Smoking: resolve.OptionalString(rec, smokingPaths...),
	}
	if v, ok := resolve.First(rec, petPaths...); ok {
		p.PetPolicy = resolve.AsString(v)
		p.PetFriendly = PetAffirmative(v)
	}
	return p
}

func roomTypes(rec model.RawRecord) []model.RoomType {
	items := resolve.List(rec, resolve.RoomTypePaths...)
	if len(items) == 0 {
		return nil
	}
	out := make([]model.RoomType, 0, len(items))
	for _, item := range items {
		r, ok := resolve.AsRecord(item)
		if !ok {
			continue
		}
		rt := model.RoomType{
			Name:  resolve.OptionalString(r, "name", "name_en", "name_th", "type", "room_type"),
			Price: resolve.IntPtr(r, resolve.RoomPricePaths...),
		}
		if c := strings.ToLower(resolve.OptionalString(r, "cooling", "cooling_type")); c == model.CoolingAir || c == model.CoolingFan {
			rt.Cooling = c
		} else {
			rt.Cooling = CoolingOf(rt.Name)
		}
		out = append(out, rt)
	}
	return out
}
