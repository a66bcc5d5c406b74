// Package loader implements incremental batch loading for large backend
// lists. A Loader presents one logically-growing, deduplicated slice backed
// by repeated bounded fetches, the way the dashboard list views page data
// in as the selection approaches the end of the table.
package loader

import (
	"context"
	"sync"
	"time"

	"github.com/abarbosa/atendo/internal/bus"
	"go.uber.org/zap"
)

// DefaultBatchSize is used when Config.BatchSize is unset.
const DefaultBatchSize = 100

// DefaultDebounce is the delay applied to search-term changes before the
// accumulated state is reset and refetched.
const DefaultDebounce = 300 * time.Millisecond

// nearEndThreshold is how close to the end of the accumulated list the
// selection must be before a scroll signal triggers another batch.
const nearEndThreshold = 10

// Batch is one bounded page of items plus the backend's pagination verdict.
type Batch[T any] struct {
	Items   []T
	Total   int
	HasMore bool
}

// FetchFunc requests one batch at the given offset. The search term is the
// loader's current (debounced) free-text query.
type FetchFunc[T any] func(ctx context.Context, search string, offset, limit int) (Batch[T], error)

// Config configures a Loader.
type Config[T any] struct {
	Fetch     FetchFunc[T]
	Key       func(T) string
	BatchSize int
	Debounce  time.Duration
	Bus       *bus.Bus // optional; merged batches are published here
	BatchKind string   // bus event kind for merged batches
	Logger    *zap.Logger
}

// Loader accumulates a deduplicated list of T across batch fetches.
// Safe for concurrent use; fetches run on the calling goroutine.
type Loader[T any] struct {
	mu sync.Mutex

	fetch     FetchFunc[T]
	key       func(T) string
	batchSize int
	debounce  time.Duration
	bus       *bus.Bus
	batchKind string
	logger    *zap.Logger

	items []T
	seen  map[string]struct{}

	offset        int // next offset to request
	lastProcessed int // highest offset already merged; -1 before first batch
	epoch         uint64

	initialLoading bool
	loadingMore    bool
	hasMore        bool
	total          int
	err            error

	search       string
	searchTimer  *time.Timer
	onChange     func()
}

// New creates a loader. Fetch and Key are required.
func New[T any](cfg Config[T]) *Loader[T] {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Loader[T]{
		fetch:         cfg.Fetch,
		key:           cfg.Key,
		batchSize:     cfg.BatchSize,
		debounce:      cfg.Debounce,
		bus:           cfg.Bus,
		batchKind:     cfg.BatchKind,
		logger:        cfg.Logger,
		seen:          make(map[string]struct{}),
		lastProcessed: -1,
		hasMore:       true,
	}
}

// SetOnChange registers a callback invoked after every state change,
// outside the loader's lock. The TUI uses it to queue a redraw.
func (l *Loader[T]) SetOnChange(fn func()) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// LoadInitial clears accumulated state and fetches the first batch.
// Any in-flight fetch from a previous epoch is discarded when it resolves.
func (l *Loader[T]) LoadInitial(ctx context.Context) error {
	l.mu.Lock()
	l.epoch++
	epoch := l.epoch
	l.items = nil
	l.seen = make(map[string]struct{})
	l.offset = 0
	l.lastProcessed = -1
	l.total = 0
	l.hasMore = true
	l.err = nil
	l.initialLoading = true
	l.loadingMore = false
	search := l.search
	limit := l.batchSize
	l.mu.Unlock()

	if l.bus != nil {
		l.bus.Emit(bus.KindLoaderReset, l.batchKind)
	}

	batch, err := l.fetch(ctx, search, 0, limit)
	return l.apply(epoch, 0, batch, err)
}

// Seed fills an empty loader with items read from the offline cache when
// the initial fetch failed. The fetch error is kept so the retry banner
// stays up, and bookkeeping is left untouched: a later Retry or
// LoadInitial refetches from offset 0 and replaces the seeded data with
// the backend's. A no-op once any batch has merged. Returns the number
// of rows actually seeded.
func (l *Loader[T]) Seed(items []T) int {
	l.mu.Lock()
	if l.lastProcessed >= 0 || len(l.items) > 0 || len(items) == 0 {
		l.mu.Unlock()
		return 0
	}
	for _, item := range items {
		k := l.key(item)
		if _, dup := l.seen[k]; dup {
			continue
		}
		l.seen[k] = struct{}{}
		l.items = append(l.items, item)
	}
	seeded := len(l.items)
	l.total = seeded
	l.hasMore = false
	l.initialLoading = false
	l.mu.Unlock()

	l.logger.Info("seeded from offline cache", zap.String("list", l.batchKind), zap.Int("items", seeded))
	l.notifyChange()
	return seeded
}

// LoadMore fetches the next batch. It is a no-op while a fetch is in
// flight, before the initial load completes, or once the end of the list
// has been reached, so rapid repeated scroll signals are harmless.
// Returns true if a fetch was issued.
func (l *Loader[T]) LoadMore(ctx context.Context) bool {
	l.mu.Lock()
	if l.loadingMore || l.initialLoading || !l.hasMore {
		l.mu.Unlock()
		return false
	}
	if l.lastProcessed < 0 {
		// Initial load has not happened yet.
		l.mu.Unlock()
		return false
	}
	l.loadingMore = true
	epoch := l.epoch
	offset := l.offset
	search := l.search
	limit := l.batchSize
	l.mu.Unlock()

	batch, err := l.fetch(ctx, search, offset, limit)
	_ = l.apply(epoch, offset, batch, err)
	return true
}

// MaybeLoadMore is the viewport-proximity trigger: it calls LoadMore only
// when index is within a few rows of the end of the accumulated list.
func (l *Loader[T]) MaybeLoadMore(ctx context.Context, index int) bool {
	l.mu.Lock()
	near := index >= len(l.items)-nearEndThreshold
	l.mu.Unlock()
	if !near {
		return false
	}
	return l.LoadMore(ctx)
}

// Retry re-issues the fetch that last failed, at the same offset.
// Accumulated items were never discarded.
func (l *Loader[T]) Retry(ctx context.Context) error {
	l.mu.Lock()
	if l.loadingMore {
		l.mu.Unlock()
		return nil
	}
	if l.lastProcessed < 0 {
		l.mu.Unlock()
		return l.LoadInitial(ctx)
	}
	l.err = nil
	l.loadingMore = true
	epoch := l.epoch
	offset := l.offset
	search := l.search
	limit := l.batchSize
	l.mu.Unlock()

	batch, err := l.fetch(ctx, search, offset, limit)
	return l.apply(epoch, offset, batch, err)
}

// apply merges a fetched batch into the accumulated state. Responses from
// a stale epoch or an already-processed offset are discarded: in-flight
// fetches are never cancelled, so a reset or a faster retry can race an
// older response.
func (l *Loader[T]) apply(epoch uint64, offset int, batch Batch[T], fetchErr error) error {
	l.mu.Lock()
	if epoch != l.epoch {
		l.mu.Unlock()
		return nil
	}
	l.initialLoading = false
	l.loadingMore = false

	if fetchErr != nil {
		l.err = fetchErr
		l.mu.Unlock()
		l.logger.Warn("batch fetch failed", zap.String("list", l.batchKind), zap.Int("offset", offset), zap.Error(fetchErr))
		if l.bus != nil {
			l.bus.Emit(bus.KindLoaderError, fetchErr)
		}
		l.notifyChange()
		return fetchErr
	}

	if offset <= l.lastProcessed {
		// Duplicate or out-of-order response for a range already merged.
		l.mu.Unlock()
		return nil
	}

	l.err = nil
	if len(batch.Items) == 0 {
		if batch.HasMore {
			// Empty batch with hasMore=true is a transient anomaly: keep
			// the offset so the next trigger retries the same range.
			l.mu.Unlock()
			l.logger.Warn("empty batch with hasMore=true", zap.String("list", l.batchKind), zap.Int("offset", offset))
			l.notifyChange()
			return nil
		}
		// Authoritative end of list.
		l.hasMore = false
		l.total = len(l.items)
		l.lastProcessed = offset
		l.mu.Unlock()
		l.notifyChange()
		return nil
	}

	merged := 0
	for _, item := range batch.Items {
		k := l.key(item)
		if _, dup := l.seen[k]; dup {
			continue
		}
		l.seen[k] = struct{}{}
		l.items = append(l.items, item)
		merged++
	}
	l.lastProcessed = offset
	l.offset = offset + len(batch.Items)
	l.hasMore = batch.HasMore
	l.total = batch.Total
	items := batch.Items
	l.mu.Unlock()

	l.logger.Info("batch merged",
		zap.String("list", l.batchKind),
		zap.Int("offset", offset),
		zap.Int("received", len(items)),
		zap.Int("merged", merged),
	)
	if l.bus != nil && l.batchKind != "" {
		l.bus.Emit(l.batchKind, items)
	}
	l.notifyChange()
	return nil
}

func (l *Loader[T]) notifyChange() {
	l.mu.Lock()
	fn := l.onChange
	l.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetSearch updates the free-text search term. The reset and refetch are
// debounced so keystrokes do not cause a request storm; the accumulated
// list and offset are cleared before the next fetch fires.
func (l *Loader[T]) SetSearch(ctx context.Context, term string) {
	l.mu.Lock()
	if term == l.search {
		l.mu.Unlock()
		return
	}
	l.search = term
	// Invalidate in-flight fetches for the old term immediately.
	l.epoch++
	if l.searchTimer != nil {
		l.searchTimer.Stop()
	}
	l.searchTimer = time.AfterFunc(l.debounce, func() {
		_ = l.LoadInitial(ctx)
	})
	l.mu.Unlock()
}

// SetSearchNow sets the term without the debounce or the scheduled
// refetch. The caller runs LoadInitial itself; used by the CLI, which has
// no keystrokes to coalesce.
func (l *Loader[T]) SetSearchNow(term string) {
	l.mu.Lock()
	l.search = term
	l.mu.Unlock()
}

// Search returns the current search term.
func (l *Loader[T]) Search() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.search
}

// Snapshot returns a copy of the accumulated, deduplicated list.
func (l *Loader[T]) Snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// State is a point-in-time view of loader progress for rendering.
type State struct {
	Count          int
	Total          int
	HasMore        bool
	InitialLoading bool
	LoadingMore    bool
	Err            error
}

// State returns the loader's current progress.
func (l *Loader[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State{
		Count:          len(l.items),
		Total:          l.total,
		HasMore:        l.hasMore,
		InitialLoading: l.initialLoading,
		LoadingMore:    l.loadingMore,
		Err:            l.err,
	}
}
