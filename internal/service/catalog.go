// Package service orchestrates the catalog, reviews and comparison sets on
// top of the data source and the pure listing packages.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/dorm-finder/internal/datasource"
	"github.com/iliyamo/dorm-finder/internal/listing"
	"github.com/iliyamo/dorm-finder/internal/model"
	"github.com/iliyamo/dorm-finder/internal/search"
	"github.com/iliyamo/dorm-finder/internal/utils"
)

var (
	// ErrSuperseded is returned when a newer search from the same session
	// started before this one finished.
	ErrSuperseded = errors.New("search superseded by a newer request")
	// ErrSourceUnavailable wraps data source failures during a search.
	ErrSourceUnavailable = errors.New("listing source unavailable")
)

// listingCacheSize caps the id -> listing cache used by comparison toggles.
const listingCacheSize = 2000

// Catalog serves searches and dorm details.
type Catalog struct {
	src    datasource.Source
	admin  datasource.Admin
	norm   *listing.Normalizer
	opts   search.Options
	latest *utils.Latest
	logger *log.Logger

	mu    sync.RWMutex
	cache map[string]model.Listing
}

func NewCatalog(src datasource.Source, admin datasource.Admin, norm *listing.Normalizer, opts search.Options, logger *log.Logger) *Catalog {
	return &Catalog{
		src:    src,
		admin:  admin,
		norm:   norm,
		opts:   opts,
		latest: utils.NewLatest(),
		logger: logger,
		cache:  make(map[string]model.Listing),
	}
}

// SearchRequest is one search. Session keys last-request-wins; an empty
// session opts out.
type SearchRequest struct {
	Session string
	Query   string
	Filters search.Filters
	Sort    string
	Lang    string
}

// SearchResult is the grouped result. Error is set, and the groups are empty,
// when the source could not be read.
type SearchResult struct {
	search.Result
	Skipped int    `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Search fetches, normalizes, filters, groups and sorts. A source failure
// returns an empty result with Error set together with an error wrapping
// ErrSourceUnavailable.
func (c *Catalog) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	if req.Session != "" {
		var t *utils.Ticket
		ctx, t = c.latest.Begin(ctx, req.Session)
		defer t.Done()
		res, err := c.search(ctx, req)
		if !t.Current() {
			return SearchResult{}, ErrSuperseded
		}
		return res, err
	}
	return c.search(ctx, req)
}

func (c *Catalog) search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	recs, err := c.src.FetchListings(ctx, datasource.Query{Text: req.Query})
	if err != nil {
		if ctx.Err() != nil {
			return SearchResult{}, ctx.Err()
		}
		c.logger.Errorf("[catalog] fetch listings: %v", err)
		return SearchResult{Error: "listings are unavailable right now"},
			fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	norm := c.norm
	if req.Lang != "" {
		norm = norm.WithLang(req.Lang)
	}
	listings, skipped := norm.NormalizeAll(recs)
	if skipped > 0 {
		c.logger.Warnf("[catalog] skipped %d records without an id", skipped)
	}
	c.remember(listings)

	res := search.Search(listings, req.Query, req.Filters, c.opts)
	if req.Sort != "" {
		res = search.SortResult(res, req.Sort)
	}
	return SearchResult{Result: res, Skipped: skipped}, nil
}

// Detail returns the full listing, or datasource.ErrNotFound.
func (c *Catalog) Detail(ctx context.Context, id, lang string) (model.Listing, error) {
	rec, err := c.src.FetchListingDetail(ctx, id)
	if err != nil {
		return model.Listing{}, err
	}
	norm := c.norm
	if lang != "" {
		norm = norm.WithLang(lang)
	}
	l, err := norm.Normalize(rec)
	if err != nil {
		return model.Listing{}, fmt.Errorf("normalize %s: %w", id, err)
	}
	c.remember([]model.Listing{l})
	return l, nil
}

// Lookup returns a listing by id, preferring the copy seen by a recent
// search and falling back to a detail fetch. detailed reports the latter.
func (c *Catalog) Lookup(ctx context.Context, id string) (l model.Listing, detailed bool, err error) {
	c.mu.RLock()
	l, ok := c.cache[id]
	c.mu.RUnlock()
	if ok {
		return l, false, nil
	}
	l, err = c.Detail(ctx, id, "")
	return l, err == nil, err
}

// SetVerified updates the verification flag and drops the cached copy.
func (c *Catalog) SetVerified(ctx context.Context, id string, verified bool) error {
	if c.admin == nil {
		return errors.New("data source is read-only")
	}
	if err := c.admin.SetVerified(ctx, id, verified); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.cache, id)
	c.mu.Unlock()
	return nil
}

func (c *Catalog) remember(ls []model.Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cache)+len(ls) > listingCacheSize {
		c.cache = make(map[string]model.Listing, len(ls))
	}
	for _, l := range ls {
		c.cache[l.ID] = l
	}
}
