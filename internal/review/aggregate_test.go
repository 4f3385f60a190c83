package review

import (
	"errors"
	"testing"
)

func TestSummarizeScenario(t *testing.T) {
	s := Summarize([]float64{5, 3, 4})
	if s.Average != 4.0 || s.Total != 3 {
		t.Fatalf("got %+v", s)
	}
	want := map[int]int{1: 0, 2: 0, 3: 1, 4: 1, 5: 1}
	for star, n := range want {
		if s.PerStar[star] != n {
			t.Errorf("star %d: got %d want %d", star, s.PerStar[star], n)
		}
	}
}

func TestSummarizeRoundsIntoBuckets(t *testing.T) {
	s := Summarize([]float64{4.6, 4.4, 1.2})
	if s.PerStar[5] != 1 || s.PerStar[4] != 1 || s.PerStar[1] != 1 {
		t.Errorf("buckets: %v", s.PerStar)
	}
	if s.Average != 3.4 {
		t.Errorf("average: got %v", s.Average)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Average != 0 || s.Total != 0 {
		t.Errorf("got %+v", s)
	}
}

func TestSummarizeAverageStaysInRange(t *testing.T) {
	sets := [][]float64{{1}, {5}, {1, 5}, {1, 1, 1, 2}, {5, 5, 4.9}}
	for _, rs := range sets {
		s := Summarize(rs)
		if s.Average < 1 || s.Average > 5 {
			t.Errorf("%v: average %v out of range", rs, s.Average)
		}
	}
}

func TestPaginateWindow(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6}
	p := Paginate(items, 2, 2)
	if len(p.Items) != 2 || p.Items[0] != 2 || p.Items[1] != 3 {
		t.Fatalf("got %v", p.Items)
	}
	if p.Pages != 4 || p.Total != 7 {
		t.Errorf("pages %d total %d", p.Pages, p.Total)
	}
}

func TestPaginateClamps(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6}
	if p := Paginate(items, 99, 2); p.Page != 4 || len(p.Items) != 1 || p.Items[0] != 6 {
		t.Errorf("high page: %+v", p)
	}
	if p := Paginate(items, -3, 2); p.Page != 1 || p.Items[0] != 0 {
		t.Errorf("low page: %+v", p)
	}
	if p := Paginate([]int{}, 3, 5); p.Page != 1 || len(p.Items) != 0 {
		t.Errorf("empty: %+v", p)
	}
}

func TestValidateInput(t *testing.T) {
	var ve *ValidationError
	if err := ValidateInput(0, "great place"); !errors.As(err, &ve) || ve.Field != "rating" {
		t.Errorf("rating 0: %v", err)
	}
	if err := ValidateInput(6, "great place"); err == nil {
		t.Error("rating 6 accepted")
	}
	if err := ValidateInput(4, "  ok "); !errors.As(err, &ve) || ve.Field != "comment" {
		t.Errorf("short comment: %v", err)
	}
	if err := ValidateInput(4, "ดีมาก"); err != nil {
		t.Errorf("thai comment rejected: %v", err)
	}
}
