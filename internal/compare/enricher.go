package compare

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/dorm-finder/internal/model"
	"github.com/iliyamo/dorm-finder/internal/utils"
)

// DetailFetcher loads the full record of one listing.
type DetailFetcher interface {
	FetchListingDetail(ctx context.Context, id string) (model.RawRecord, error)
}

// Enricher fetches full details for comparison entries in the background.
// Each entry is fetched on its own: completions land in any order, a failure
// only affects its own entry, and a pending fetch is cancelled when its entry
// leaves the set or the enricher shuts down.
type Enricher struct {
	fetch  DetailFetcher
	retry  utils.Retry
	sem    chan struct{}
	logger *log.Logger

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]*job
}

type job struct {
	cancel context.CancelFunc
}

// NewEnricher returns an Enricher running at most concurrency fetches at a
// time. Fetches that return a permanent error are not retried.
func NewEnricher(fetch DetailFetcher, concurrency int, retry utils.Retry, permanent error, logger *log.Logger) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	if permanent != nil {
		retry.Retryable = func(err error) bool { return !errors.Is(err, permanent) }
	}
	if retry.Logger == nil {
		retry.Logger = logger
	}
	base, stop := context.WithCancel(context.Background())
	return &Enricher{
		fetch:    fetch,
		retry:    retry,
		sem:      make(chan struct{}, concurrency),
		logger:   logger,
		base:     base,
		stop:     stop,
		inflight: make(map[string]*job),
	}
}

func jobKey(setKey, id string) string { return setKey + "|" + id }

// Schedule starts enrichment of entry id in m's set. A fetch already pending
// for the same entry is replaced.
func (e *Enricher) Schedule(m *Manager, id string) {
	key := jobKey(m.Key(), id)
	ctx, cancel := context.WithCancel(e.base)
	j := &job{cancel: cancel}

	e.mu.Lock()
	if prev, ok := e.inflight[key]; ok {
		prev.cancel()
	}
	e.inflight[key] = j
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.release(key, j)
		e.run(ctx, m, id)
	}()
}

func (e *Enricher) run(ctx context.Context, m *Manager, id string) {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-e.sem }()

	var detail model.RawRecord
	err := e.retry.Do(ctx, "enrich "+id, func(ctx context.Context) error {
		d, err := e.fetch.FetchListingDetail(ctx, id)
		if err != nil {
			return err
		}
		detail = d
		return nil
	})
	if err != nil {
		if ctx.Err() == nil && e.logger != nil {
			e.logger.Warnf("[enrich] %s in %s: %v", id, m.Key(), err)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	// The merge uses a short detached context so a cancel arriving mid-write
	// cannot leave the stored set half written.
	wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := m.Enrich(wctx, id, detail); err != nil && e.logger != nil {
		e.logger.Errorf("[enrich] store %s in %s: %v", id, m.Key(), err)
	}
}

func (e *Enricher) release(key string, j *job) {
	j.cancel()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight[key] == j {
		delete(e.inflight, key)
	}
}

// Cancel aborts a pending fetch for one entry.
func (e *Enricher) Cancel(setKey, id string) {
	key := jobKey(setKey, id)
	e.mu.Lock()
	defer e.mu.Unlock()
	if j, ok := e.inflight[key]; ok {
		j.cancel()
		delete(e.inflight, key)
	}
}

// CancelSet aborts every pending fetch for one set.
func (e *Enricher) CancelSet(setKey string) {
	prefix := setKey + "|"
	e.mu.Lock()
	defer e.mu.Unlock()
	for k, j := range e.inflight {
		if strings.HasPrefix(k, prefix) {
			j.cancel()
			delete(e.inflight, k)
		}
	}
}

// Pending returns the number of fetches not yet finished or cancelled.
func (e *Enricher) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inflight)
}

// Wait blocks until every scheduled fetch has returned.
func (e *Enricher) Wait() { e.wg.Wait() }

// Close cancels every pending fetch and waits for them to return.
func (e *Enricher) Close() {
	e.stop()
	e.wg.Wait()
	e.mu.Lock()
	e.inflight = make(map[string]*job)
	e.mu.Unlock()
}
