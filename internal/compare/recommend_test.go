package compare

import "testing"

func ip(n int) *int         { return &n }
func fp(f float64) *float64 { return &f }

func TestRecommendEmpty(t *testing.T) {
	p := Recommend(nil)
	if p.BestValue != nil || p.BestReview != nil || p.Nearest != nil {
		t.Errorf("got %+v", p)
	}
}

func TestRecommendPicks(t *testing.T) {
	entries := []Entry{
		{ID: "a", PriceMin: ip(3000), PriceMax: ip(4000), Rating: 4.2},
		{ID: "b", PriceMax: ip(2500), Rating: 4.8, DistanceM: fp(900)},
		{ID: "c", Rating: 4.8, DistanceM: fp(300)},
		{ID: "d", PriceMin: ip(2500), DistanceM: fp(300)},
	}
	p := Recommend(entries)
	if p.BestValue.ID != "b" {
		t.Errorf("best value: %s", p.BestValue.ID)
	}
	if p.BestReview.ID != "b" {
		t.Errorf("best review: %s", p.BestReview.ID)
	}
	if p.Nearest.ID != "c" {
		t.Errorf("nearest: %s", p.Nearest.ID)
	}
}

func TestRecommendUnknownsRankLast(t *testing.T) {
	entries := []Entry{
		{ID: "a"},
		{ID: "b", PriceMin: ip(9000), DistanceM: fp(5000)},
	}
	p := Recommend(entries)
	if p.BestValue.ID != "b" || p.Nearest.ID != "b" {
		t.Errorf("got value=%s nearest=%s", p.BestValue.ID, p.Nearest.ID)
	}

	only := Recommend([]Entry{{ID: "z"}})
	if only.BestValue == nil || only.BestValue.ID != "z" || only.Nearest.ID != "z" {
		t.Error("a lone entry with unknowns is still picked")
	}
}
