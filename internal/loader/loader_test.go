package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Name string
}

// fakeBackend pages a fixed dataset by offset/limit, recording each call.
type fakeBackend struct {
	mu    sync.Mutex
	data  []item
	calls []int // offsets requested
	fail  bool
}

func (f *fakeBackend) fetch(_ context.Context, _ string, offset, limit int) (Batch[item], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, offset)
	if f.fail {
		return Batch[item]{}, errors.New("backend down")
	}
	end := offset + limit
	if end > len(f.data) {
		end = len(f.data)
	}
	var items []item
	if offset < len(f.data) {
		items = f.data[offset:end]
	}
	return Batch[item]{
		Items:   items,
		Total:   len(f.data),
		HasMore: end < len(f.data),
	}, nil
}

func dataset(n int) []item {
	out := make([]item, n)
	for i := range out {
		out[i] = item{ID: fmt.Sprintf("id-%03d", i), Name: fmt.Sprintf("Contact %d", i)}
	}
	return out
}

func newLoader(b *fakeBackend, batchSize int) *Loader[item] {
	return New(Config[item]{
		Fetch:     b.fetch,
		Key:       func(i item) string { return i.ID },
		BatchSize: batchSize,
		Debounce:  10 * time.Millisecond,
	})
}

func TestThreeBatchesOf250(t *testing.T) {
	b := &fakeBackend{data: dataset(250)}
	l := newLoader(b, 100)
	ctx := context.Background()

	require.NoError(t, l.LoadInitial(ctx))
	assert.True(t, l.LoadMore(ctx))
	assert.True(t, l.LoadMore(ctx))

	st := l.State()
	assert.Equal(t, 250, st.Count)
	assert.Equal(t, 250, st.Total)
	assert.False(t, st.HasMore)
	assert.Equal(t, []int{0, 100, 200}, b.calls)

	// Fourth call is a no-op once hasMore is false.
	assert.False(t, l.LoadMore(ctx))
	assert.Equal(t, []int{0, 100, 200}, b.calls)
}

func TestDedupAcrossOverlappingBatches(t *testing.T) {
	// Backend returns an overlapping window: ids 0..9 then 5..14.
	data := dataset(15)
	calls := 0
	fetch := func(_ context.Context, _ string, offset, limit int) (Batch[item], error) {
		calls++
		if calls == 1 {
			return Batch[item]{Items: data[0:10], Total: 15, HasMore: true}, nil
		}
		return Batch[item]{Items: data[5:15], Total: 15, HasMore: false}, nil
	}
	l := New(Config[item]{Fetch: fetch, Key: func(i item) string { return i.ID }, BatchSize: 10})
	ctx := context.Background()

	require.NoError(t, l.LoadInitial(ctx))
	l.LoadMore(ctx)

	items := l.Snapshot()
	assert.Len(t, items, 15)
	seen := map[string]bool{}
	for _, it := range items {
		assert.False(t, seen[it.ID], "duplicate id %s", it.ID)
		seen[it.ID] = true
	}
}

func TestLoadMoreBeforeInitialIsNoop(t *testing.T) {
	b := &fakeBackend{data: dataset(10)}
	l := newLoader(b, 5)
	assert.False(t, l.LoadMore(context.Background()))
	assert.Empty(t, b.calls)
}

func TestFailedBatchKeepsAccumulatedItems(t *testing.T) {
	b := &fakeBackend{data: dataset(20)}
	l := newLoader(b, 10)
	ctx := context.Background()

	require.NoError(t, l.LoadInitial(ctx))
	b.fail = true
	l.LoadMore(ctx)

	st := l.State()
	assert.Error(t, st.Err)
	assert.Equal(t, 10, st.Count, "accumulated items must survive a failed batch")

	// Retry re-issues the same offset.
	b.fail = false
	require.NoError(t, l.Retry(ctx))
	st = l.State()
	assert.NoError(t, st.Err)
	assert.Equal(t, 20, st.Count)
	assert.Equal(t, []int{0, 10, 10}, b.calls)
}

func TestSeedFillsEmptyLoaderAfterFailedInitial(t *testing.T) {
	b := &fakeBackend{data: dataset(20), fail: true}
	l := newLoader(b, 10)
	ctx := context.Background()

	require.Error(t, l.LoadInitial(ctx))
	seeded := l.Seed([]item{{ID: "c-1", Name: "Cached 1"}, {ID: "c-2", Name: "Cached 2"}})
	assert.Equal(t, 2, seeded)

	st := l.State()
	assert.Equal(t, 2, st.Count)
	assert.False(t, st.HasMore)
	assert.False(t, st.InitialLoading)
	assert.Error(t, st.Err, "fetch error must survive seeding so the retry banner stays up")

	// Once the backend is back, a fresh initial load replaces the cached rows.
	b.fail = false
	require.NoError(t, l.LoadInitial(ctx))
	st = l.State()
	assert.NoError(t, st.Err)
	assert.Equal(t, 10, st.Count)
	assert.Equal(t, 20, st.Total)
}

func TestSeedIsNoopOnceBatchesMerged(t *testing.T) {
	b := &fakeBackend{data: dataset(5)}
	l := newLoader(b, 10)
	ctx := context.Background()

	require.NoError(t, l.LoadInitial(ctx))
	assert.Zero(t, l.Seed([]item{{ID: "stale", Name: "Stale"}}))
	assert.Equal(t, 5, l.State().Count, "seeding must not touch live data")
}

func TestSearchChangeResetsAccumulation(t *testing.T) {
	b := &fakeBackend{data: dataset(30)}
	l := newLoader(b, 10)
	ctx := context.Background()

	require.NoError(t, l.LoadInitial(ctx))
	l.LoadMore(ctx)
	assert.Equal(t, 20, l.State().Count)

	l.SetSearch(ctx, "ana")
	// Before the debounce fires nothing has been fetched for the new term.
	time.Sleep(50 * time.Millisecond)

	st := l.State()
	assert.Equal(t, 10, st.Count, "accumulation resets to the first batch of the new term")
	b.mu.Lock()
	lastOffset := b.calls[len(b.calls)-1]
	b.mu.Unlock()
	assert.Equal(t, 0, lastOffset, "new term starts at offset 0")
}

func TestSearchDebounceCoalescesKeystrokes(t *testing.T) {
	b := &fakeBackend{data: dataset(10)}
	l := newLoader(b, 10)
	ctx := context.Background()

	l.SetSearch(ctx, "a")
	l.SetSearch(ctx, "an")
	l.SetSearch(ctx, "ana")
	time.Sleep(60 * time.Millisecond)

	b.mu.Lock()
	calls := len(b.calls)
	b.mu.Unlock()
	assert.Equal(t, 1, calls, "rapid keystrokes must coalesce into one fetch")
	assert.Equal(t, "ana", l.Search())
}

func TestStaleEpochResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	first := true
	data := dataset(10)
	fetch := func(_ context.Context, search string, offset, limit int) (Batch[item], error) {
		if first {
			first = false
			<-release // slow first request
			return Batch[item]{Items: data[5:10], Total: 5, HasMore: false}, nil
		}
		return Batch[item]{Items: data[0:5], Total: 5, HasMore: false}, nil
	}
	l := New(Config[item]{Fetch: fetch, Key: func(i item) string { return i.ID }, BatchSize: 5, Debounce: time.Millisecond})
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		_ = l.LoadInitial(ctx) // epoch 1, blocked
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, l.LoadInitial(ctx)) // epoch 2 resolves first
	close(release)
	<-done

	items := l.Snapshot()
	require.Len(t, items, 5)
	assert.Equal(t, "id-000", items[0].ID, "stale epoch response must not overwrite newer data")
}

func TestEmptyBatchWithHasMoreRetriesSameOffset(t *testing.T) {
	calls := []int{}
	fetch := func(_ context.Context, _ string, offset, limit int) (Batch[item], error) {
		calls = append(calls, offset)
		switch len(calls) {
		case 1:
			return Batch[item]{Items: dataset(5), Total: 10, HasMore: true}, nil
		case 2:
			// Transient anomaly: empty but claims more data.
			return Batch[item]{Total: 10, HasMore: true}, nil
		default:
			return Batch[item]{Items: dataset(10)[5:], Total: 10, HasMore: false}, nil
		}
	}
	l := New(Config[item]{Fetch: fetch, Key: func(i item) string { return i.ID }, BatchSize: 5})
	ctx := context.Background()

	require.NoError(t, l.LoadInitial(ctx))
	l.LoadMore(ctx)
	st := l.State()
	assert.Equal(t, 5, st.Count)
	assert.True(t, st.HasMore, "anomalous empty batch must not end the list")

	l.LoadMore(ctx)
	st = l.State()
	assert.Equal(t, 10, st.Count)
	assert.False(t, st.HasMore)
	assert.Equal(t, []int{0, 5, 5}, calls, "anomaly retries the same offset")
}

func TestEmptyBatchWithoutHasMoreEndsList(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, _ string, offset, limit int) (Batch[item], error) {
		calls++
		if calls == 1 {
			return Batch[item]{Items: dataset(5), Total: 5, HasMore: true}, nil
		}
		return Batch[item]{Total: 5, HasMore: false}, nil
	}
	l := New(Config[item]{Fetch: fetch, Key: func(i item) string { return i.ID }, BatchSize: 5})
	ctx := context.Background()

	require.NoError(t, l.LoadInitial(ctx))
	l.LoadMore(ctx)

	st := l.State()
	assert.False(t, st.HasMore)
	assert.Equal(t, 5, st.Total)
	assert.False(t, l.LoadMore(ctx))
}

func TestMaybeLoadMoreOnlyNearEnd(t *testing.T) {
	b := &fakeBackend{data: dataset(200)}
	l := newLoader(b, 100)
	ctx := context.Background()
	require.NoError(t, l.LoadInitial(ctx))

	assert.False(t, l.MaybeLoadMore(ctx, 10), "far from the end")
	assert.True(t, l.MaybeLoadMore(ctx, 95), "near the end")
	assert.Equal(t, 200, l.State().Count)
}
