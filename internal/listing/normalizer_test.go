package listing

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/iliyamo/dorm-finder/internal/config"
	"github.com/iliyamo/dorm-finder/internal/geo"
	"github.com/iliyamo/dorm-finder/internal/model"
)

func newTestNormalizer() *Normalizer {
	ref := geo.Point{Lat: 16.2469, Lon: 103.2522}
	return New(LangTH, &ref, config.DefaultZones())
}

func fullRecord() model.RawRecord {
	return model.RawRecord{
		"id":              int64(42),
		"name_th":         "หอพักสุขใจ",
		"name_en":         "Sukjai Dorm",
		"address":         "99 ซอยหน้ามอ ตำบลขามเรียง",
		"latitude":        "16.2500",
		"longitude":       103.2550,
		"price_min":       5000,
		"price_max":       3000,
		"verified":        "Yes",
		"total_rooms":     40,
		"available_rooms": "3",
		"amenities_text":  "WiFi, wifi ;  Parking\nLaundry  Room",
		"images":          []any{"https://img/1.jpg", map[string]any{"url": "https://img/2.jpg"}},
		"gender_policy":   "หอพักหญิง",
		"pet_policy":      "Pets allowed",
		"fees":            map[string]any{"water": 18, "electric": "7.5"},
		"deposit_months":  2,
		"reviews":         []any{map[string]any{"rating": 4}, map[string]any{"rating": 5}},
		"room_types": []any{
			map[string]any{"name": "Fan room", "price": 3000},
			map[string]any{"name": "ห้องแอร์", "price": 5000},
		},
	}
}

func TestNormalizeFullRecord(t *testing.T) {
	l, err := newTestNormalizer().Normalize(fullRecord())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if l.ID != "42" {
		t.Errorf("ID: got %q", l.ID)
	}
	if l.Name != "หอพักสุขใจ" {
		t.Errorf("Name: got %q", l.Name)
	}
	if l.PriceText != "฿3,000 - 5,000 / Month" {
		t.Errorf("PriceText: got %q", l.PriceText)
	}
	if !l.Verified {
		t.Error("Verified: want true")
	}
	if l.AvailableRooms != 3 || l.TotalRooms != 40 {
		t.Errorf("capacity: %d/%d", l.AvailableRooms, l.TotalRooms)
	}
	if want := []string{"WiFi", "Parking", "Laundry Room"}; !reflect.DeepEqual(l.Amenities, want) {
		t.Errorf("Amenities: got %v, want %v", l.Amenities, want)
	}
	if l.CoverImage != "https://img/1.jpg" || len(l.Images) != 2 {
		t.Errorf("images: cover %q, %v", l.CoverImage, l.Images)
	}
	if l.Zone != "Front Gate" {
		t.Errorf("Zone: got %q", l.Zone)
	}
	if l.Policy.Gender != model.GenderFemale || !l.Policy.PetFriendly {
		t.Errorf("Policy: %+v", l.Policy)
	}
	if l.Fees.WaterRate == nil || *l.Fees.WaterRate != 18 || l.Fees.ElectricRate == nil || *l.Fees.ElectricRate != 7.5 {
		t.Errorf("Fees: %+v", l.Fees)
	}
	if l.Fees.AdvanceMonths != nil {
		t.Errorf("AdvanceMonths should be absent, got %v", *l.Fees.AdvanceMonths)
	}
	if l.Rating != 4.5 || l.ReviewCount != 2 {
		t.Errorf("Rating: %v (%d)", l.Rating, l.ReviewCount)
	}
	if l.DistanceM == nil || *l.DistanceM < 400 || *l.DistanceM > 500 {
		t.Errorf("DistanceM: %v", l.DistanceM)
	}
	if l.Contact.Phone != "-" {
		t.Errorf("Phone placeholder: got %q", l.Contact.Phone)
	}
	if len(l.RoomTypes) != 2 || l.RoomTypes[0].Cooling != model.CoolingFan || l.RoomTypes[1].Cooling != model.CoolingAir {
		t.Errorf("RoomTypes: %+v", l.RoomTypes)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := newTestNormalizer()
	rec := fullRecord()
	a, err := n.Normalize(rec)
	if err != nil {
		t.Fatal(err)
	}
	b, err := n.Normalize(rec)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("normalizing the same record twice gave different listings")
	}
}

func TestNormalizeMissingID(t *testing.T) {
	_, err := newTestNormalizer().Normalize(model.RawRecord{"name_en": "Ghost", "id": "  "})
	if !errors.Is(err, ErrMissingID) {
		t.Fatalf("got %v, want ErrMissingID", err)
	}
}

func TestNormalizeSparseRecordUsesPlaceholders(t *testing.T) {
	l, err := newTestNormalizer().Normalize(model.RawRecord{"_id": "abc"})
	if err != nil {
		t.Fatal(err)
	}
	if l.Name != UnnamedDorm || l.PriceText != PricePlaceholder || l.DistanceText != "-" {
		t.Errorf("placeholders: %q %q %q", l.Name, l.PriceText, l.DistanceText)
	}
	if l.Rating != 0 || l.ReviewCount != 0 {
		t.Errorf("rating should be 0/0, got %v/%d", l.Rating, l.ReviewCount)
	}
	if l.CoverImage != DefaultPlaceholderImage {
		t.Errorf("cover: %q", l.CoverImage)
	}
	if l.Zone != config.ZoneOther {
		t.Errorf("zone: %q", l.Zone)
	}
	if len(l.Amenities) != 0 {
		t.Errorf("amenities: %v", l.Amenities)
	}
}

func TestDisplayNameLanguageFallback(t *testing.T) {
	n := newTestNormalizer().WithLang(LangEN)
	l, _ := n.Normalize(model.RawRecord{"id": 1, "name_th": "หอใน"})
	if l.Name != "หอใน" {
		t.Errorf("fallback to th: got %q", l.Name)
	}
	l, _ = n.Normalize(model.RawRecord{"id": 1, "name_th": "หอใน", "name_en": "Inner Dorm"})
	if l.Name != "Inner Dorm" {
		t.Errorf("en: got %q", l.Name)
	}
}

func TestPrecomputedDistanceWins(t *testing.T) {
	l, _ := newTestNormalizer().Normalize(model.RawRecord{
		"id": 1, "distance_m": 1500, "latitude": 0.0, "longitude": 0.0,
	})
	if l.DistanceM == nil || *l.DistanceM != 1500 || l.DistanceText != "1.5 km" {
		t.Errorf("got %v %q", l.DistanceM, l.DistanceText)
	}
}

func TestExplicitZoneTag(t *testing.T) {
	l, _ := newTestNormalizer().Normalize(model.RawRecord{"id": 1, "zone": "back gate", "address": "หน้ามอ"})
	if l.Zone != "Back Gate" {
		t.Errorf("got %q", l.Zone)
	}
}

func TestAmenityPrecedence(t *testing.T) {
	n := newTestNormalizer()
	l, _ := n.Normalize(model.RawRecord{
		"id":             1,
		"amenities":      []any{"  Air   Conditioner ", "air conditioner", "Fridge"},
		"amenities_text": "Pool",
	})
	if want := []string{"Air Conditioner", "Fridge"}; !reflect.DeepEqual(l.Amenities, want) {
		t.Errorf("explicit list: got %v", l.Amenities)
	}

	l, _ = n.Normalize(model.RawRecord{
		"id": 2,
		"dorm_amenities": []any{
			map[string]any{"amenity": map[string]any{"name_th": "ที่จอดรถ", "name_en": "Parking"}},
			map[string]any{"amenity": map[string]any{"name_en": "Gym"}},
			map[string]any{"name_th": "ที่จอดรถ"},
		},
	})
	if want := []string{"ที่จอดรถ", "Gym"}; !reflect.DeepEqual(l.Amenities, want) {
		t.Errorf("join table: got %v", l.Amenities)
	}
}

func TestAmenitiesNeverDuplicate(t *testing.T) {
	inputs := []string{"a,A, a ,b", "Wi Fi;wi  fi;WI FI", "x\nX\ny"}
	for _, in := range inputs {
		l, _ := newTestNormalizer().Normalize(model.RawRecord{"id": 1, "amenities_text": in})
		seen := map[string]bool{}
		for _, a := range l.Amenities {
			k := strings.ToLower(NormalizeLabel(a))
			if seen[k] {
				t.Errorf("%q: duplicate %q in %v", in, a, l.Amenities)
			}
			seen[k] = true
		}
	}
}

func TestVerifiedEncodings(t *testing.T) {
	n := newTestNormalizer()
	for _, v := range []any{true, 1, "1", "TRUE", "verified"} {
		l, _ := n.Normalize(model.RawRecord{"id": 1, "verified": v})
		if !l.Verified {
			t.Errorf("%#v should be verified", v)
		}
	}
	for _, v := range []any{false, 0, "no", "pending"} {
		l, _ := n.Normalize(model.RawRecord{"id": 1, "verified": v})
		if l.Verified {
			t.Errorf("%#v should not be verified", v)
		}
	}
}

func TestDisplayURLRewrite(t *testing.T) {
	n := newTestNormalizer()
	n.DisplayURL = func(u string) string { return "https://cdn.example/" + u }
	l, _ := n.Normalize(model.RawRecord{"id": 1, "cover_image": "a.jpg"})
	if l.CoverImage != "https://cdn.example/a.jpg" {
		t.Errorf("got %q", l.CoverImage)
	}
}

func TestNormalizeAllSkipsUnidentified(t *testing.T) {
	out, skipped := newTestNormalizer().NormalizeAll([]model.RawRecord{{"id": 1}, {"name": "x"}, {"id": "b"}})
	if len(out) != 2 || skipped != 1 {
		t.Errorf("got %d listings, %d skipped", len(out), skipped)
	}
}

func TestPriceText(t *testing.T) {
	lo, hi := 3500, 3500
	if got := PriceText(model.PriceRange{Min: &lo, Max: &hi}); got != "฿3,500 / Month" {
		t.Errorf("equal bounds: %q", got)
	}
	big := 12500
	if got := PriceText(model.PriceRange{Max: &big}); got != "฿12,500 / Month" {
		t.Errorf("max only: %q", got)
	}
	if got := PriceText(model.PriceRange{}); got != PricePlaceholder {
		t.Errorf("unknown: %q", got)
	}
}

func TestCanonicalGender(t *testing.T) {
	cases := map[string]string{
		"Female only": model.GenderFemale,
		"MALE":        model.GenderMale,
		"หอชาย":       model.GenderMale,
		"Mixed":       model.GenderMixed,
		"หอรวม":       model.GenderMixed,
		"":            model.GenderUnknown,
	}
	for in, want := range cases {
		if got := CanonicalGender(in); got != want {
			t.Errorf("CanonicalGender(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPetAffirmative(t *testing.T) {
	for _, v := range []any{true, "true", "1", 1, "Yes, small pets", "allowed"} {
		if !PetAffirmative(v) {
			t.Errorf("%#v should allow pets", v)
		}
	}
	for _, v := range []any{false, "no", "Not allowed", "disallowed", "", nil, 0} {
		if PetAffirmative(v) {
			t.Errorf("%#v should not allow pets", v)
		}
	}
}
