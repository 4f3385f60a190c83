package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/dorm-finder/internal/compare"
	"github.com/iliyamo/dorm-finder/internal/config"
	"github.com/iliyamo/dorm-finder/internal/datasource"
	"github.com/iliyamo/dorm-finder/internal/geo"
	"github.com/iliyamo/dorm-finder/internal/listing"
	"github.com/iliyamo/dorm-finder/internal/model"
	q "github.com/iliyamo/dorm-finder/internal/queue"
	"github.com/iliyamo/dorm-finder/internal/review"
	"github.com/iliyamo/dorm-finder/internal/search"
	"github.com/iliyamo/dorm-finder/internal/utils"
)

func seed() *datasource.Memory {
	return datasource.NewMemory(
		model.RawRecord{"id": "1", "name_en": "Sukjai", "address": "หน้ามอ", "price_min": 2000, "price_max": 3500, "verified": true},
		model.RawRecord{"id": "2", "name_en": "Baan Rak", "address": "หลังมอ", "price_min": 4000, "price_max": 5000},
		model.RawRecord{"id": "3", "name_en": "Green Place", "address": "downtown", "price_max": 2800, "distance_m": 800},
		model.RawRecord{"id": "4", "name_en": "Four Seasons", "address": "ขามเรียง"},
		model.RawRecord{"id": "5", "name_en": "Fifth Dorm", "address": "ท่าขอนยาง"},
	)
}

func newCatalog(src *datasource.Memory) *Catalog {
	ref := geo.Point{Lat: 16.2469, Lon: 103.2522}
	norm := listing.New(listing.LangEN, &ref, config.DefaultZones())
	opts := search.Options{Zones: config.DefaultZones(), PriceMatch: search.PriceWithin, CoolingMatch: search.CoolingLoose}
	return NewCatalog(src, src, norm, opts, utils.Discard())
}

func TestCatalogSearch(t *testing.T) {
	c := newCatalog(seed())
	res, err := c.Search(context.Background(), SearchRequest{Filters: search.Filters{VerifiedOnly: true}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 || res.Groups[0].Zone != "Front Gate" {
		t.Errorf("got %+v", res)
	}
	res, _ = c.Search(context.Background(), SearchRequest{Sort: search.SortPriceAsc})
	if res.Total != 5 {
		t.Errorf("total %d", res.Total)
	}
}

func TestCatalogSearchMatchesProvince(t *testing.T) {
	src := datasource.NewMemory(
		model.RawRecord{"id": "1", "name_en": "Sukjai", "address": "123 Mittraphap Rd", "province": "Khon Kaen"},
		model.RawRecord{"id": "2", "name_en": "Baan Rak", "location": map[string]any{"province": "Maha Sarakham"}},
		model.RawRecord{"id": "3", "name": map[string]any{"th": "หอใน", "en": "Inner Dorm"}},
	)
	c := newCatalog(src)
	cases := map[string]string{"khon kaen": "1", "sarakham": "2", "inner": "3"}
	for query, want := range cases {
		res, err := c.Search(context.Background(), SearchRequest{Query: query})
		if err != nil {
			t.Fatal(err)
		}
		got := res.Flatten()
		if len(got) != 1 || got[0].ID != want {
			t.Errorf("%q: got %+v", query, got)
		}
	}
}

func TestCatalogSourceFailure(t *testing.T) {
	src := seed()
	src.Err = errors.New("connection refused")
	res, err := newCatalog(src).Search(context.Background(), SearchRequest{})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("got %v", err)
	}
	if res.Error == "" || res.Total != 0 || len(res.Groups) != 0 {
		t.Errorf("got %+v", res)
	}
}

// blockingSource holds the first FetchListings call until released.
type blockingSource struct {
	*datasource.Memory
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (b *blockingSource) FetchListings(ctx context.Context, qry datasource.Query) ([]model.RawRecord, error) {
	first := false
	b.once.Do(func() { first = true })
	if first {
		close(b.started)
		select {
		case <-b.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return b.Memory.FetchListings(ctx, qry)
}

func TestCatalogLastRequestWins(t *testing.T) {
	src := &blockingSource{Memory: seed(), started: make(chan struct{}), release: make(chan struct{})}
	ref := geo.Point{Lat: 16.2469, Lon: 103.2522}
	norm := listing.New(listing.LangEN, &ref, config.DefaultZones())
	c := NewCatalog(src, nil, norm, search.Options{Zones: config.DefaultZones()}, utils.Discard())

	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Search(context.Background(), SearchRequest{Session: "s", Query: "sukjai"})
		firstErr <- err
	}()
	<-src.started

	res, err := c.Search(context.Background(), SearchRequest{Session: "s", Query: "baan"})
	if err != nil || res.Total != 1 {
		t.Fatalf("second search: %+v %v", res, err)
	}
	select {
	case err := <-firstErr:
		if !errors.Is(err, ErrSuperseded) {
			t.Errorf("first search: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first search was not cancelled")
	}
}

func TestCatalogDetail(t *testing.T) {
	c := newCatalog(seed())
	l, err := c.Detail(context.Background(), "3", "")
	if err != nil || l.Name != "Green Place" || l.DistanceText != "800 m" {
		t.Fatalf("got %+v %v", l, err)
	}
	if _, err := c.Detail(context.Background(), "99", ""); !errors.Is(err, datasource.ErrNotFound) {
		t.Errorf("missing: %v", err)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []q.ReviewSubmittedEvent
	err    error
}

func (p *recordingPublisher) PublishReviewSubmitted(_ context.Context, ev q.ReviewSubmittedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func TestReviewsSubmitAndList(t *testing.T) {
	src := seed()
	pub := &recordingPublisher{err: errors.New("broker down")}
	s := NewReviews(src, pub, utils.Discard())
	ctx := context.Background()

	if _, err := s.Submit(ctx, "1", 0, model.ReviewInput{Rating: 5, Comment: "great"}); !errors.Is(err, datasource.ErrNotAuthenticated) {
		t.Errorf("anonymous: %v", err)
	}
	var ve *review.ValidationError
	if _, err := s.Submit(ctx, "1", 1, model.ReviewInput{Rating: 9, Comment: "great"}); !errors.As(err, &ve) {
		t.Errorf("bad rating: %v", err)
	}
	for uid, rating := range map[uint64]int{1: 5, 2: 3, 3: 4} {
		if _, err := s.Submit(ctx, "1", uid, model.ReviewInput{Rating: rating, Comment: "fine place"}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if _, err := s.Submit(ctx, "1", 1, model.ReviewInput{Rating: 4, Comment: "again"}); !errors.As(err, &ve) {
		t.Errorf("duplicate: %v", err)
	}
	if len(pub.events) != 3 {
		t.Errorf("events: %d", len(pub.events))
	}

	page, err := s.List(ctx, "1", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.Summary.Average != 4.0 || page.Summary.Total != 3 {
		t.Errorf("summary: %+v", page.Summary)
	}
	if len(page.Page.Items) != 1 || page.Page.Pages != 2 {
		t.Errorf("page: %+v", page.Page)
	}
}

func TestRatingRefresher(t *testing.T) {
	src := seed()
	ctx := context.Background()
	s := NewReviews(src, nil, utils.Discard())
	_, _ = s.Submit(ctx, "2", 1, model.ReviewInput{Rating: 5, Comment: "lovely"})
	_, _ = s.Submit(ctx, "2", 2, model.ReviewInput{Rating: 4, Comment: "good value"})

	r := &RatingRefresher{Source: src, Admin: src, Logger: utils.Discard()}
	if err := r.Handle(ctx, q.ReviewSubmittedEvent{DormID: "2"}); err != nil {
		t.Fatal(err)
	}
	l, _ := newCatalog(src).Detail(ctx, "2", "")
	if l.Rating != 4.5 || l.ReviewCount != 2 {
		t.Errorf("rating %v count %d", l.Rating, l.ReviewCount)
	}
}

func TestComparisonFlow(t *testing.T) {
	src := seed()
	cat := newCatalog(src)
	ctx := context.Background()
	if _, err := cat.Search(ctx, SearchRequest{}); err != nil {
		t.Fatal(err)
	}

	reg := compare.NewRegistry(compare.NewMemoryStore())
	enr := compare.NewEnricher(src, 2, utils.Retry{MaxAttempts: 1}, datasource.ErrNotFound, utils.Discard())
	defer enr.Close()
	ref := geo.Point{Lat: 16.2469, Lon: 103.2522}
	svc := NewComparison(reg, cat, enr, listing.New(listing.LangEN, &ref, config.DefaultZones()))
	key := compare.KeyForAnon("abc")

	for _, id := range []string{"1", "2", "3", "4"} {
		if out, err := svc.Toggle(ctx, key, id); err != nil || out != compare.Added {
			t.Fatalf("toggle %s: %v %v", id, out, err)
		}
	}
	if out, _ := svc.Toggle(ctx, key, "5"); out != compare.Full {
		t.Errorf("fifth: %v", out)
	}
	enr.Wait()

	view, err := svc.View(ctx, key, "")
	if err != nil {
		t.Fatal(err)
	}
	if view.Count != 4 || len(view.Details) != 4 || view.Capacity != compare.Capacity {
		t.Fatalf("view: %+v", view)
	}
	for _, e := range view.Entries {
		if !e.Enriched {
			t.Errorf("%s not enriched", e.ID)
		}
	}
	if view.Picks.BestValue == nil || view.Picks.BestValue.ID != "1" {
		t.Errorf("best value: %+v", view.Picks.BestValue)
	}
	if view.Picks.Nearest == nil || view.Picks.Nearest.ID != "3" {
		t.Errorf("nearest: %+v", view.Picks.Nearest)
	}

	if out, _ := svc.Toggle(ctx, key, "2"); out != compare.Removed {
		t.Errorf("re-toggle: %v", out)
	}
	if err := svc.Remove(ctx, key, "ghost"); err != nil {
		t.Errorf("remove non-member: %v", err)
	}
	if err := svc.Clear(ctx, key); err != nil {
		t.Fatal(err)
	}
	picks, _ := svc.Recommendations(ctx, key)
	if picks.BestValue != nil || picks.BestReview != nil || picks.Nearest != nil {
		t.Errorf("picks of empty set: %+v", picks)
	}
}

func TestComparisonToggleUnknownDorm(t *testing.T) {
	src := seed()
	enr := compare.NewEnricher(src, 1, utils.Retry{MaxAttempts: 1}, nil, utils.Discard())
	defer enr.Close()
	ref := geo.Point{}
	svc := NewComparison(compare.NewRegistry(compare.NewMemoryStore()), newCatalog(src), enr,
		listing.New(listing.LangTH, &ref, config.DefaultZones()))
	if _, err := svc.Toggle(context.Background(), compare.KeyForUser(1), "404"); !errors.Is(err, datasource.ErrNotFound) {
		t.Errorf("got %v", err)
	}
}
