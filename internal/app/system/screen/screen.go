// Package screen is the controller shared by the four resource screens
// (apartments, societies, users, visitors).
//
// A Controller owns a screen's page number and search term, and drives one
// appstate.Collection through the gateway:
//
//   - Mount fetches page 1 with no search.
//   - Search is debounced; the fetch fires once typing pauses and always
//     uses the latest term at page 1. Clearing the term fetches at once.
//   - Create and Update re-fetch the current page on success.
//   - Delete steps back a page when it removed the only row on a page
//     past the first, then re-fetches.
//
// Failures leave the collection's data untouched.
package screen

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/debounce"
	"github.com/dalemusser/visitdesk/internal/app/system/metrics"
	"github.com/dalemusser/visitdesk/internal/app/system/paging"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"go.uber.org/zap"
)

// Fetcher loads one page from the backend.
type Fetcher[T appstate.Entity] func(ctx context.Context, p gateway.ListParams) (gateway.Page[T], error)

// Config tunes a Controller.
type Config struct {
	Resource     string        // used in logs and metrics
	PageSize     int           // rows per page
	Debounce     time.Duration // quiet period before a search fetch
	FetchTimeout time.Duration // for fetches that outlive their request
	Logger       *zap.Logger
}

// DefaultDebounce is the search quiet period.
const DefaultDebounce = 500 * time.Millisecond

// Controller drives one resource screen for one session.
type Controller[T appstate.Entity] struct {
	cfg   Config
	coll  *appstate.Collection[T]
	fetch Fetcher[T]
	deb   *debounce.Debouncer

	mu     sync.Mutex
	page   int
	search string
}

// New returns a Controller over coll.
func New[T appstate.Entity](coll *appstate.Collection[T], fetch Fetcher[T], cfg Config) *Controller[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = paging.PageSize
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Controller[T]{
		cfg:   cfg,
		coll:  coll,
		fetch: fetch,
		deb:   debounce.New(cfg.Debounce),
		page:  1,
	}
}

// View is a consistent read of the screen state.
type View[T appstate.Entity] struct {
	Page     int
	Search   string
	PageSize int
	appstate.Snapshot[T]
}

// View returns the current page, search term and collection snapshot.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	page, search := c.page, c.search
	c.mu.Unlock()
	return View[T]{Page: page, Search: search, PageSize: c.cfg.PageSize, Snapshot: c.coll.Snapshot()}
}

// Page returns the current page number.
func (c *Controller[T]) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// SearchTerm returns the current search term.
func (c *Controller[T]) SearchTerm() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// Mount resets to page 1 with no search and fetches.
func (c *Controller[T]) Mount(ctx context.Context) error {
	c.deb.Cancel()
	c.mu.Lock()
	c.page, c.search = 1, ""
	c.mu.Unlock()
	return c.load(ctx)
}

// Show moves to page with search term and fetches. It backs bookmarkable
// URLs such as /visitor?page=3&q=asha.
func (c *Controller[T]) Show(ctx context.Context, page int, search string) error {
	c.deb.Cancel()
	c.mu.Lock()
	c.page, c.search = max(page, 1), strings.TrimSpace(search)
	c.mu.Unlock()
	return c.load(ctx)
}

// Search records term and schedules a page-1 fetch once typing pauses.
// The returned channel closes when the fetch serving this burst of
// keystrokes has finished, so a handler can wait on it and then render.
// An empty term cancels any pending fetch and fetches immediately.
func (c *Controller[T]) Search(ctx context.Context, term string) <-chan struct{} {
	term = strings.TrimSpace(term)

	c.mu.Lock()
	c.search = term
	c.page = 1
	c.mu.Unlock()

	if term == "" {
		c.deb.Cancel()
		done := make(chan struct{})
		if err := c.load(ctx); err != nil {
			c.cfg.Logger.Warn("fetch after clearing search failed",
				zap.String("resource", c.cfg.Resource), zap.Error(err))
		}
		close(done)
		return done
	}

	return c.deb.Trigger(func() {
		metrics.DebouncedFetches.WithLabelValues(c.cfg.Resource).Inc()
		// Detached from the request that armed the timer; that request
		// may already be gone.
		fctx, cancel := context.WithTimeout(context.Background(), c.cfg.FetchTimeout)
		defer cancel()
		if err := c.load(fctx); err != nil {
			c.cfg.Logger.Warn("debounced search fetch failed",
				zap.String("resource", c.cfg.Resource), zap.Error(err))
		}
	})
}

// Create runs create through the collection and re-fetches the current
// page on success.
func (c *Controller[T]) Create(ctx context.Context, create func(context.Context) (T, error)) (T, error) {
	v, err := c.coll.Create(ctx, create)
	if err != nil {
		return v, err
	}
	c.refreshAfterMutation(ctx, "create")
	return v, nil
}

// Update runs update through the collection and re-fetches the current
// page on success.
func (c *Controller[T]) Update(ctx context.Context, update func(context.Context) (T, error)) (T, error) {
	v, err := c.coll.Update(ctx, update)
	if err != nil {
		return v, err
	}
	c.refreshAfterMutation(ctx, "update")
	return v, nil
}

// Delete runs del for id. On success it steps back one page if id was
// the only row of the cached page and that page is past the first, then
// re-fetches. An id not on the cached page never moves the page.
func (c *Controller[T]) Delete(ctx context.Context, id models.ID, del func(context.Context) error) error {
	_, onPage := c.coll.Find(id)
	rows := c.coll.Len()
	if err := c.coll.Delete(ctx, id, del); err != nil {
		return err
	}
	if onPage {
		c.mu.Lock()
		c.page = paging.AfterDelete(c.page, rows)
		c.mu.Unlock()
	}
	c.refreshAfterMutation(ctx, "delete")
	return nil
}

// refreshAfterMutation re-fetches after a successful write. A failed
// refresh is recorded on the collection and logged; the write itself
// still succeeded.
func (c *Controller[T]) refreshAfterMutation(ctx context.Context, op string) {
	if err := c.load(ctx); err != nil {
		c.cfg.Logger.Warn("refresh after mutation failed",
			zap.String("resource", c.cfg.Resource),
			zap.String("op", op),
			zap.Error(err))
	}
}

func (c *Controller[T]) load(ctx context.Context) error {
	c.mu.Lock()
	p := gateway.ListParams{Page: c.page, Limit: c.cfg.PageSize, Search: c.search}
	c.mu.Unlock()

	return c.coll.Fetch(ctx, func(ctx context.Context) ([]T, models.Pagination, error) {
		pg, err := c.fetch(ctx, p)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		return pg.Items, pg.Pagination, nil
	})
}

// Attach returns the session's controller for cfg.Resource, building it
// over coll the first time the screen is opened.
func Attach[T appstate.Entity](st *appstate.State, coll *appstate.Collection[T], fetch Fetcher[T], cfg Config) *Controller[T] {
	return appstate.Attach(st, "screen:"+cfg.Resource, func() *Controller[T] {
		return New(coll, fetch, cfg)
	})
}
