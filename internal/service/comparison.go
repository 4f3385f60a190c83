package service

import (
	"context"

	"github.com/iliyamo/dorm-finder/internal/compare"
	"github.com/iliyamo/dorm-finder/internal/listing"
	"github.com/iliyamo/dorm-finder/internal/model"
)

// Comparison runs comparison sets and their background enrichment.
type Comparison struct {
	reg      *compare.Registry
	catalog  *Catalog
	enricher *compare.Enricher
	norm     *listing.Normalizer
}

func NewComparison(reg *compare.Registry, catalog *Catalog, enricher *compare.Enricher, norm *listing.Normalizer) *Comparison {
	return &Comparison{reg: reg, catalog: catalog, enricher: enricher, norm: norm}
}

// ComparisonView is what the comparison page renders. Details are the
// entries re-normalized from their (possibly enriched) raw records, so fees
// and policies show up once enrichment lands.
type ComparisonView struct {
	Entries  []compare.Entry `json:"entries"`
	Details  []model.Listing `json:"details"`
	Picks    compare.Picks   `json:"picks"`
	Count    int             `json:"count"`
	Capacity int             `json:"capacity"`
}

// Toggle adds or removes listing id in the set under key. A newly added
// entry is enriched in the background unless its snapshot already came from
// a detail fetch.
func (s *Comparison) Toggle(ctx context.Context, key, id string) (compare.Outcome, error) {
	m := s.reg.Manager(key)
	if has, err := m.Has(ctx, id); err != nil {
		return "", err
	} else if has {
		if _, err := m.Remove(ctx, id); err != nil {
			return "", err
		}
		s.enricher.Cancel(key, id)
		return compare.Removed, nil
	}

	l, detailed, err := s.catalog.Lookup(ctx, id)
	if err != nil {
		return "", err
	}
	out, err := m.Toggle(ctx, l)
	if err != nil {
		return "", err
	}
	switch out {
	case compare.Added:
		if detailed {
			_, err = m.Enrich(ctx, id, l.Raw)
		} else {
			s.enricher.Schedule(m, id)
		}
	case compare.Removed:
		s.enricher.Cancel(key, id)
	}
	return out, err
}

// Remove drops id from the set and cancels its enrichment.
func (s *Comparison) Remove(ctx context.Context, key, id string) error {
	s.enricher.Cancel(key, id)
	_, err := s.reg.Manager(key).Remove(ctx, id)
	return err
}

// Clear empties the set and cancels all of its enrichment.
func (s *Comparison) Clear(ctx context.Context, key string) error {
	s.enricher.CancelSet(key)
	return s.reg.Manager(key).Clear(ctx)
}

// View returns the set with details and picks.
func (s *Comparison) View(ctx context.Context, key, lang string) (ComparisonView, error) {
	entries, err := s.reg.Manager(key).Entries(ctx)
	if err != nil {
		return ComparisonView{}, err
	}
	norm := s.norm
	if lang != "" {
		norm = norm.WithLang(lang)
	}
	details := make([]model.Listing, 0, len(entries))
	for _, e := range entries {
		if l, err := norm.Normalize(e.Raw); err == nil {
			details = append(details, l)
		}
	}
	if entries == nil {
		entries = []compare.Entry{}
	}
	return ComparisonView{
		Entries:  entries,
		Details:  details,
		Picks:    compare.Recommend(entries),
		Count:    len(entries),
		Capacity: compare.Capacity,
	}, nil
}

// Recommendations returns only the picks.
func (s *Comparison) Recommendations(ctx context.Context, key string) (compare.Picks, error) {
	entries, err := s.reg.Manager(key).Entries(ctx)
	if err != nil {
		return compare.Picks{}, err
	}
	return compare.Recommend(entries), nil
}
