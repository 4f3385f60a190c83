package model

// PriceRange holds the monthly price bounds of a dorm in baht. A nil bound is
// unknown, which is not the same as zero: an unknown price renders as a
// placeholder.
type PriceRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// Known reports whether at least one bound is present.
func (p PriceRange) Known() bool { return p.Min != nil || p.Max != nil }

// Lower returns the effective lower bound. When only Max is present it stands
// in for both bounds.
func (p PriceRange) Lower() (int, bool) {
	if p.Min != nil {
		return *p.Min, true
	}
	if p.Max != nil {
		return *p.Max, true
	}
	return 0, false
}

// Upper returns the effective upper bound, falling back to Min.
func (p PriceRange) Upper() (int, bool) {
	if p.Max != nil {
		return *p.Max, true
	}
	if p.Min != nil {
		return *p.Min, true
	}
	return 0, false
}

// Cooling modes detected from room type names.
const (
	CoolingUnknown = ""
	CoolingAir     = "air"
	CoolingFan     = "fan"
)

// RoomType is one rentable room category of a dorm.
type RoomType struct {
	Name    string `json:"name"`
	Price   *int   `json:"price,omitempty"`
	Cooling string `json:"cooling,omitempty"`
}

// Fees lists the recurring and upfront costs. Every field is independently
// optional.
type Fees struct {
	WaterRate     *float64 `json:"water_rate,omitempty"`
	ElectricRate  *float64 `json:"electric_rate,omitempty"`
	AdvanceMonths *int     `json:"advance_months,omitempty"`
	DepositMonths *int     `json:"deposit_months,omitempty"`
}

// Gender policies after canonicalisation.
const (
	GenderUnknown = ""
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderMixed   = "mixed"
)

// Policy holds house rules.
type Policy struct {
	Gender      string `json:"gender,omitempty"`
	PetPolicy   string `json:"pet_policy,omitempty"`
	PetFriendly bool   `json:"pet_friendly"`
	Smoking     string `json:"smoking,omitempty"`
}

// Contact groups the ways to reach the dorm owner. Missing values hold "-".
type Contact struct {
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	LineID string `json:"line_id"`
}

// Listing is the canonical view of a dorm. It is rebuilt from a RawRecord on
// every fetch and never mutated afterwards.
type Listing struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	NameTH         string     `json:"name_th,omitempty"`
	NameEN         string     `json:"name_en,omitempty"`
	Address        string     `json:"address"`
	District       string     `json:"district,omitempty"`
	Province       string     `json:"province,omitempty"`
	Lat            *float64   `json:"lat,omitempty"`
	Lon            *float64   `json:"lon,omitempty"`
	DistanceM      *float64   `json:"distance_m,omitempty"`
	DistanceText   string     `json:"distance_text"`
	Price          PriceRange `json:"price"`
	PriceText      string     `json:"price_text"`
	Rating         float64    `json:"rating"`
	ReviewCount    int        `json:"review_count"`
	Verified       bool       `json:"verified"`
	TotalRooms     int        `json:"total_rooms"`
	AvailableRooms int        `json:"available_rooms"`
	Amenities      []string   `json:"amenities"`
	CoverImage     string     `json:"cover_image"`
	Images         []string   `json:"images,omitempty"`
	Zone           string     `json:"zone"`
	Fees           Fees       `json:"fees"`
	Policy         Policy     `json:"policy"`
	Contact        Contact    `json:"contact"`
	RoomTypes      []RoomType `json:"room_types,omitempty"`

	// Raw is kept for deferred lookups by the comparison set only.
	Raw RawRecord `json:"-"`
}
