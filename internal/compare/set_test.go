package compare

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/dorm-finder/internal/model"
)

func listing(id string) model.Listing {
	return model.Listing{ID: id, Name: "Dorm " + id, Amenities: []string{"WiFi"},
		Raw: model.RawRecord{"id": id, "name": "Dorm " + id}}
}

func entryIDs(t *testing.T, m *Manager) []string {
	t.Helper()
	es, err := m.Entries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func TestToggleAddThenRemove(t *testing.T) {
	ctx := context.Background()
	m := NewRegistry(NewMemoryStore()).Manager(KeyForAnon("s1"))

	out, err := m.Toggle(ctx, listing("A"))
	if err != nil || out != Added {
		t.Fatalf("first toggle: %v %v", out, err)
	}
	if got := entryIDs(t, m); len(got) != 1 || got[0] != "A" {
		t.Fatalf("set: %v", got)
	}
	out, err = m.Toggle(ctx, listing("A"))
	if err != nil || out != Removed {
		t.Fatalf("second toggle: %v %v", out, err)
	}
	if n, _ := m.Count(ctx); n != 0 {
		t.Errorf("count: %d", n)
	}
}

func TestFifthToggleIsFull(t *testing.T) {
	ctx := context.Background()
	m := NewRegistry(NewMemoryStore()).Manager(KeyForUser(7))
	for _, id := range []string{"A", "B", "C", "D"} {
		if out, _ := m.Toggle(ctx, listing(id)); out != Added {
			t.Fatalf("%s: %v", id, out)
		}
	}
	out, err := m.Toggle(ctx, listing("E"))
	if err != nil || out != Full {
		t.Fatalf("fifth: %v %v", out, err)
	}
	got := entryIDs(t, m)
	want := []string{"A", "B", "C", "D"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestCapacityNeverExceeded(t *testing.T) {
	ctx := context.Background()
	m := NewRegistry(NewMemoryStore()).Manager(KeyForAnon("cap"))
	for i := 0; i < 20; i++ {
		_, _ = m.Toggle(ctx, listing(fmt.Sprintf("L%d", i%6)))
		if n, _ := m.Count(ctx); n > Capacity {
			t.Fatalf("size %d after %d toggles", n, i+1)
		}
	}
}

func TestRemoveNonMemberIsNoop(t *testing.T) {
	ctx := context.Background()
	m := NewRegistry(NewMemoryStore()).Manager(KeyForAnon("x"))
	_, _ = m.Toggle(ctx, listing("A"))
	removed, err := m.Remove(ctx, "ghost")
	if err != nil || removed {
		t.Fatalf("got %v %v", removed, err)
	}
	if got := entryIDs(t, m); len(got) != 1 {
		t.Errorf("set changed: %v", got)
	}
	if err := m.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if n, _ := m.Count(ctx); n != 0 {
		t.Errorf("count after clear: %d", n)
	}
}

func TestCorruptDataReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := KeyForAnon("bad")
	_ = store.Set(ctx, key, "{not json")
	m := NewRegistry(store).Manager(key)
	es, err := m.Entries(ctx)
	if err != nil || len(es) != 0 {
		t.Fatalf("got %v %v", es, err)
	}
	if out, err := m.Toggle(ctx, listing("A")); err != nil || out != Added {
		t.Fatalf("toggle over corrupt data: %v %v", out, err)
	}
}

func TestScopesDoNotCross(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(NewMemoryStore())
	user := reg.Manager(KeyForUser(1))
	anon := reg.Manager(KeyForAnon("1"))
	_, _ = user.Toggle(ctx, listing("A"))
	if has, _ := anon.Has(ctx, "A"); has {
		t.Error("anonymous set sees the user's entry")
	}
	if has, _ := user.Has(ctx, "A"); !has {
		t.Error("user set lost its entry")
	}
}

func TestManyVisitorsShareFixedLocks(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(NewMemoryStore())
	seen := make(map[*sync.Mutex]bool)
	for i := 0; i < 10000; i++ {
		m := reg.Manager(KeyForAnon(fmt.Sprintf("visitor-%d", i)))
		if _, err := m.Count(ctx); err != nil {
			t.Fatal(err)
		}
		seen[m.mu] = true
	}
	if len(seen) > lockStripes {
		t.Errorf("%d distinct locks for 10000 visitors, want at most %d", len(seen), lockStripes)
	}
	a, b := reg.Manager(KeyForUser(7)), reg.Manager(KeyForUser(7))
	if a.mu != b.mu {
		t.Error("managers for one key must share a lock")
	}
}

func TestConcurrentTogglesKeepEveryAdd(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(NewMemoryStore())
	var wg sync.WaitGroup
	for i := 0; i < Capacity; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := reg.Manager(KeyForUser(3)).Toggle(ctx, listing(id)); err != nil {
				t.Error(err)
			}
		}(fmt.Sprintf("L%d", i))
	}
	wg.Wait()
	if n, _ := reg.Manager(KeyForUser(3)).Count(ctx); n != Capacity {
		t.Errorf("count %d, want %d", n, Capacity)
	}
}

func TestEnrichMergesInPlace(t *testing.T) {
	ctx := context.Background()
	m := NewRegistry(NewMemoryStore()).Manager(KeyForAnon("e"))
	_, _ = m.Toggle(ctx, listing("A"))
	_, _ = m.Toggle(ctx, listing("B"))

	ok, err := m.Enrich(ctx, "A", model.RawRecord{"water_rate": 18, "name": nil})
	if err != nil || !ok {
		t.Fatalf("enrich: %v %v", ok, err)
	}
	es, _ := m.Entries(ctx)
	if es[0].ID != "A" || !es[0].Enriched || es[0].Raw["water_rate"] == nil {
		t.Errorf("entry A: %+v", es[0])
	}
	if es[0].Raw["name"] != "Dorm A" {
		t.Errorf("nil detail field overwrote name: %v", es[0].Raw["name"])
	}
	if es[1].Enriched {
		t.Error("B should be untouched")
	}

	ok, err = m.Enrich(ctx, "gone", model.RawRecord{"x": 1})
	if err != nil || ok {
		t.Errorf("enrich of missing entry: %v %v", ok, err)
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	store := NewRedisStore(rdb, 0)
	if _, ok, err := store.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("missing key: %v %v", ok, err)
	}

	m := NewRegistry(store).Manager(KeyForUser(9))
	_, _ = m.Toggle(ctx, listing("A"))
	_, _ = m.Toggle(ctx, listing("B"))

	// A second registry over the same Redis sees the same set.
	other := NewRegistry(NewRedisStore(rdb, 0)).Manager(KeyForUser(9))
	if got := entryIDs(t, other); fmt.Sprint(got) != "[A B]" {
		t.Errorf("got %v", got)
	}
	if ttl := mr.TTL(KeyForUser(9)); ttl != DefaultRedisTTL {
		t.Errorf("ttl: %v", ttl)
	}
}
