package resolve

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/iliyamo/dorm-finder/internal/model"
)

func TestFirstSkipsBlankAndNil(t *testing.T) {
	rec := model.RawRecord{
		"phone":   "   ",
		"contact": map[string]any{"phone": nil, "mobile": "081-234-5678"},
	}
	got := String(rec, "", "phone", "contact.phone", "contact.mobile")
	if got != "081-234-5678" {
		t.Errorf("got %q", got)
	}
}

func TestStringFallback(t *testing.T) {
	rec := model.RawRecord{}
	if got := String(rec, "", "email"); got != Placeholder {
		t.Errorf("default fallback: got %q", got)
	}
	if got := String(rec, "n/a", "email"); got != "n/a" {
		t.Errorf("custom fallback: got %q", got)
	}
}

func TestLookupIndexesLists(t *testing.T) {
	rec := model.RawRecord{
		"room_types": []any{
			map[string]any{"name": "Fan", "price": 2500},
			map[string]any{"name": "Air", "price": "4,000"},
		},
	}
	v, ok := Lookup(rec, "room_types.1.price")
	if !ok || v != "4,000" {
		t.Fatalf("got %v, %v", v, ok)
	}
	if _, ok := Lookup(rec, "room_types.5.price"); ok {
		t.Error("out of range index should not resolve")
	}
}

func TestAsFloat(t *testing.T) {
	cases := map[any]float64{
		int32(7):           7,
		int64(8):           8,
		"4,500":            4500,
		" 12.5 ":           12.5,
		json.Number("3.5"): 3.5,
	}
	for in, want := range cases {
		got, ok := AsFloat(in)
		if !ok || got != want {
			t.Errorf("AsFloat(%v) = %v, %v; want %v", in, got, ok, want)
		}
	}
	for _, in := range []any{"abc", math.NaN(), math.Inf(1), nil, true} {
		if _, ok := AsFloat(in); ok {
			t.Errorf("AsFloat(%v) should fail", in)
		}
	}
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{true, 1, int64(1), 1.0, "1", "TRUE", " yes ", "Verified"} {
		if !Truthy(v) {
			t.Errorf("Truthy(%#v) = false", v)
		}
	}
	for _, v := range []any{false, 0, 2, "0", "no", "pending", "", nil} {
		if Truthy(v) {
			t.Errorf("Truthy(%#v) = true", v)
		}
	}
}

func TestPriceRangeExplicitReversed(t *testing.T) {
	pr := PriceRange(model.RawRecord{"price_min": 5000, "price_max": 3000})
	if pr.Min == nil || pr.Max == nil || *pr.Min != 3000 || *pr.Max != 5000 {
		t.Fatalf("got %+v", pr)
	}
}

func TestPriceRangeFromRoomTypes(t *testing.T) {
	rec := model.RawRecord{
		"room_types": []any{
			map[string]any{"name": "Fan", "price": 2500},
			map[string]any{"name": "Air", "price": 4000},
			map[string]any{"name": "Suite", "price": "call us"},
		},
	}
	pr := PriceRange(rec)
	if pr.Min == nil || *pr.Min != 2500 || pr.Max == nil || *pr.Max != 4000 {
		t.Fatalf("got %+v", pr)
	}
}

func TestPriceRangeUnknown(t *testing.T) {
	pr := PriceRange(model.RawRecord{"name_en": "No price"})
	if pr.Known() {
		t.Fatalf("expected unknown, got %+v", pr)
	}
}

func TestPriceRangeExplicitWinsOverRooms(t *testing.T) {
	rec := model.RawRecord{
		"price_max":  6000,
		"room_types": []any{map[string]any{"price": 1000}},
	}
	pr := PriceRange(rec)
	if pr.Min != nil || pr.Max == nil || *pr.Max != 6000 {
		t.Fatalf("got %+v", pr)
	}
	if lo, _ := pr.Lower(); lo != 6000 {
		t.Errorf("effective lower: got %d", lo)
	}
}

func TestRatingStoredWins(t *testing.T) {
	avg, n := Rating(model.RawRecord{
		"rating_avg":   4.2,
		"review_count": 10,
		"reviews":      []any{map[string]any{"rating": 1}},
	})
	if avg != 4.2 || n != 10 {
		t.Errorf("got %v, %d", avg, n)
	}
}

func TestRatingFromReviews(t *testing.T) {
	avg, n := Rating(model.RawRecord{
		"reviews": []any{
			map[string]any{"rating": 5},
			map[string]any{"rating": 3},
			map[string]any{"rating": "4"},
		},
	})
	if avg != 4 || n != 3 {
		t.Errorf("got %v, %d", avg, n)
	}
}

func TestRatingAbsentIsZero(t *testing.T) {
	avg, n := Rating(model.RawRecord{})
	if avg != 0 || n != 0 {
		t.Errorf("got %v, %d", avg, n)
	}
}

func TestRatingClamped(t *testing.T) {
	if avg, _ := Rating(model.RawRecord{"rating_avg": 9}); avg != 5 {
		t.Errorf("got %v", avg)
	}
}
