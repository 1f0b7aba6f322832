// Package gallery implements the client-side feed loop for browsing
// crosshairs: debounced filter inputs, page accumulation and infinite-scroll
// style loading against the listing API.
package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"reticle/internal/models"
	"reticle/internal/repository"
)

// DebounceDelay is how long text input is allowed to settle before a
// filter change triggers a reload.
const DebounceDelay = 400 * time.Millisecond

// Filters are the user-controlled gallery inputs.
type Filters struct {
	Search string
	Author string
	Hero   string
	Sort   string
}

// Feed accumulates gallery pages for one set of filters. Changing any filter
// discards the accumulated pages and reloads from page one; text filters are
// debounced, select filters apply immediately.
type Feed struct {
	client  *http.Client
	baseURL string
	token   string

	mu         sync.Mutex
	filters    Filters
	items      []*models.Crosshair
	nextPage   int
	hasNext    bool
	inFlight   bool
	generation uint64
	debounce   *time.Timer
	delay      time.Duration

	// onUpdate, when set, is invoked (outside the lock) after every state
	// change that alters the visible item list.
	onUpdate func()

	err error
}

// NewFeed builds a Feed against the given API base URL ("http://host:port").
// token may be empty for anonymous browsing.
func NewFeed(baseURL, token string) *Feed {
	return &Feed{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  baseURL,
		token:    token,
		filters:  Filters{Sort: "latest"},
		nextPage: 1,
		hasNext:  true,
		delay:    DebounceDelay,
	}
}

// OnUpdate registers a callback fired after the item list changes.
func (f *Feed) OnUpdate(fn func()) {
	f.mu.Lock()
	f.onUpdate = fn
	f.mu.Unlock()
}

// SetSearch updates the search filter. The reload is debounced so each
// keystroke does not trigger a request.
func (f *Feed) SetSearch(ctx context.Context, search string) {
	f.setTextFilter(ctx, func(fl *Filters) { fl.Search = search })
}

// SetAuthor updates the author filter, debounced like SetSearch.
func (f *Feed) SetAuthor(ctx context.Context, author string) {
	f.setTextFilter(ctx, func(fl *Filters) { fl.Author = author })
}

// SetHero updates the hero filter and reloads immediately.
func (f *Feed) SetHero(ctx context.Context, hero string) {
	f.mu.Lock()
	f.filters.Hero = hero
	f.resetLocked()
	f.mu.Unlock()
	f.LoadMore(ctx)
}

// SetSort updates the sort mode and reloads immediately.
func (f *Feed) SetSort(ctx context.Context, sort string) {
	f.mu.Lock()
	f.filters.Sort = sort
	f.resetLocked()
	f.mu.Unlock()
	f.LoadMore(ctx)
}

func (f *Feed) setTextFilter(ctx context.Context, apply func(*Filters)) {
	f.mu.Lock()
	apply(&f.filters)
	f.resetLocked()
	if f.debounce != nil {
		f.debounce.Stop()
	}
	f.debounce = time.AfterFunc(f.delay, func() {
		f.LoadMore(ctx)
	})
	f.mu.Unlock()
}

// resetLocked discards accumulated pages. Bumping the generation makes any
// response still in flight stale, so it is dropped on arrival instead of
// being appended to the new filter's results.
func (f *Feed) resetLocked() {
	f.generation++
	f.items = nil
	f.nextPage = 1
	f.hasNext = true
	f.err = nil
}

// LoadMore fetches the next page if one exists and no fetch is already
// running. It is safe to call from a scroll handler at any frequency.
func (f *Feed) LoadMore(ctx context.Context) {
	f.mu.Lock()
	if !f.hasNext || f.inFlight {
		f.mu.Unlock()
		return
	}
	f.inFlight = true
	gen := f.generation
	page := f.nextPage
	filters := f.filters
	f.mu.Unlock()

	result, err := f.fetchPage(ctx, filters, page)

	f.mu.Lock()
	f.inFlight = false
	if gen != f.generation {
		// Filters changed while the request was out; the result belongs to
		// a feed that no longer exists.
		f.mu.Unlock()
		return
	}
	if err != nil {
		f.err = err
		f.mu.Unlock()
		return
	}

	f.items = append(f.items, result.Items...)
	f.hasNext = result.HasMore
	if result.NextPage != nil {
		f.nextPage = *result.NextPage
	}
	cb := f.onUpdate
	f.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (f *Feed) fetchPage(ctx context.Context, filters Filters, page int) (*repository.CrosshairPage, error) {
	q := url.Values{}
	if filters.Search != "" {
		q.Set("search", filters.Search)
	}
	if filters.Author != "" {
		q.Set("author", filters.Author)
	}
	if filters.Hero != "" {
		q.Set("hero", filters.Hero)
	}
	if filters.Sort != "" {
		q.Set("sort", filters.Sort)
	}
	q.Set("page", fmt.Sprintf("%d", page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		f.baseURL+"/api/crosshairs/?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gallery request failed with status %d", resp.StatusCode)
	}

	var result repository.CrosshairPage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Items returns a snapshot of the accumulated crosshairs.
func (f *Feed) Items() []*models.Crosshair {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Crosshair, len(f.items))
	copy(out, f.items)
	return out
}

// HasNextPage reports whether another page is known to exist.
func (f *Feed) HasNextPage() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasNext
}

// Fetching reports whether a page request is currently in flight.
func (f *Feed) Fetching() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Err returns the last fetch error for the current filter generation.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
