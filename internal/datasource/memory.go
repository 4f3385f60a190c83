package datasource

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/dorm-finder/internal/model"
	"github.com/iliyamo/dorm-finder/internal/resolve"
)

// Memory is a Store over records held in process. It backs tests and the
// "memory" data source.
type Memory struct {
	mu      sync.RWMutex
	records []model.RawRecord
	reviews map[string][]model.Review
	nextID  uint64
	// Err, when set, is returned by every read.
	Err error
}

// NewMemory returns a Memory seeded with recs.
func NewMemory(recs ...model.RawRecord) *Memory {
	m := &Memory{reviews: make(map[string][]model.Review)}
	for _, r := range recs {
		m.records = append(m.records, r.Clone())
	}
	return m
}

func recordID(r model.RawRecord) string {
	v, ok := resolve.First(r, "id", "_id")
	if !ok {
		return ""
	}
	return resolve.AsString(v)
}

func (m *Memory) find(id string) (model.RawRecord, bool) {
	for _, r := range m.records {
		if recordID(r) == id {
			return r, true
		}
	}
	return nil, false
}

func (m *Memory) FetchListings(_ context.Context, q Query) ([]model.RawRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	tokens := strings.Fields(strings.ToLower(q.Text))
	out := make([]model.RawRecord, 0, len(m.records))
	for _, r := range m.records {
		if !containsAll(r, tokens) {
			continue
		}
		out = append(out, r.Clone())
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// textPaths are the record fields the token filter searches: the names in
// both languages, address, district and province.
var textPaths = []string{
	"name", "title", "name_th", "nameTh", "name.th", "name_en", "nameEn", "name.en",
	"address", "location.address", "address_text", "full_address",
	"district", "location.district", "amphoe",
	"province", "location.province", "changwat",
}

func containsAll(r model.RawRecord, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	parts := make([]string, 0, len(textPaths))
	for _, path := range textPaths {
		if v := resolve.OptionalString(r, path); v != "" {
			parts = append(parts, v)
		}
	}
	hay := strings.ToLower(strings.Join(parts, "\n"))
	for _, t := range tokens {
		if !strings.Contains(hay, t) {
			return false
		}
	}
	return true
}

func (m *Memory) FetchListingDetail(_ context.Context, id string) (model.RawRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	r, ok := m.find(id)
	if !ok {
		return nil, ErrNotFound
	}
	out := r.Clone()
	if rs := m.reviews[id]; len(rs) > 0 {
		list := make([]any, len(rs))
		for i, rv := range rs {
			list[i] = map[string]any{"rating": rv.Rating, "comment": rv.Comment, "author": rv.Author}
		}
		out["reviews"] = list
	}
	return out, nil
}

func (m *Memory) FetchReviews(_ context.Context, dormID string) ([]model.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if _, ok := m.find(dormID); !ok {
		return nil, ErrNotFound
	}
	rs := m.reviews[dormID]
	out := make([]model.Review, len(rs))
	for i := range rs {
		out[len(rs)-1-i] = rs[i]
	}
	return out, nil
}

func (m *Memory) SubmitReview(_ context.Context, dormID string, userID uint64, in model.ReviewInput) (model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if userID == 0 {
		return model.Review{}, ErrNotAuthenticated
	}
	if _, ok := m.find(dormID); !ok {
		return model.Review{}, ErrNotFound
	}
	for _, r := range m.reviews[dormID] {
		if r.UserID == userID {
			return model.Review{}, &ValidationError{Message: "you have already reviewed this dorm"}
		}
	}
	m.nextID++
	rv := model.Review{
		ID:        strconv.FormatUint(m.nextID, 10),
		DormID:    dormID,
		UserID:    userID,
		Author:    "user " + strconv.FormatUint(userID, 10),
		Rating:    float64(in.Rating),
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: time.Now().UTC(),
	}
	m.reviews[dormID] = append(m.reviews[dormID], rv)
	return rv, nil
}

func (m *Memory) UpdateRatingSummary(_ context.Context, dormID string, avg float64, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.find(dormID)
	if !ok {
		return ErrNotFound
	}
	r["rating_avg"] = avg
	r["review_count"] = count
	return nil
}

func (m *Memory) SetVerified(_ context.Context, dormID string, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.find(dormID)
	if !ok {
		return ErrNotFound
	}
	r["verified"] = verified
	return nil
}
