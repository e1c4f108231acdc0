// internal/app/system/appstate/collection.go
package appstate

import (
	"context"
	"sync"

	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// Status is the load state of a collection.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Entity is anything with a backend id.
type Entity interface {
	GetID() models.ID
}

// Snapshot is an immutable copy of a collection's state.
type Snapshot[T Entity] struct {
	Data       []T
	Status     Status
	Error      string
	Pagination models.Pagination
}

// Loading reports whether a fetch is in flight.
func (s Snapshot[T]) Loading() bool { return s.Status == StatusLoading }

// Collection caches one page of a backend resource.
//
// Fetches are numbered as they are issued. A result is applied only if no
// newer fetch has been issued since, so a slow response can never
// overwrite a fresher one.
type Collection[T Entity] struct {
	mu         sync.RWMutex
	data       []T
	status     Status
	err        string
	pagination models.Pagination
	seq        uint64
}

// NewCollection returns an idle, empty collection.
func NewCollection[T Entity]() *Collection[T] {
	return &Collection[T]{status: StatusIdle, data: []T{}}
}

// Snapshot returns a copy of the current state.
func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data := make([]T, len(c.data))
	copy(data, c.data)
	return Snapshot[T]{Data: data, Status: c.status, Error: c.err, Pagination: c.pagination}
}

// Len returns the number of cached records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Find returns the cached record with id.
func (c *Collection[T]) Find(id models.ID) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, v := range c.data {
		if v.GetID() == id {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// BeginFetch marks the collection as loading and returns the fetch number.
func (c *Collection[T]) BeginFetch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.status = StatusLoading
	c.err = ""
	return c.seq
}

// ResolveFetch replaces data and pagination together. It reports false
// and changes nothing when seq has been superseded.
func (c *Collection[T]) ResolveFetch(seq uint64, items []T, p models.Pagination) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return false
	}
	if items == nil {
		items = []T{}
	}
	c.data = items
	c.pagination = p
	c.status = StatusSucceeded
	c.err = ""
	return true
}

// FailFetch records err for fetch seq. Cached data is kept.
func (c *Collection[T]) FailFetch(seq uint64, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return false
	}
	c.status = StatusFailed
	if err != nil {
		c.err = err.Error()
	}
	return true
}

// Fetch runs one page load through the collection's status machine.
func (c *Collection[T]) Fetch(ctx context.Context, load func(context.Context) ([]T, models.Pagination, error)) error {
	seq := c.BeginFetch()
	items, p, err := load(ctx)
	if err != nil {
		c.FailFetch(seq, err)
		return err
	}
	c.ResolveFetch(seq, items, p)
	return nil
}

// Create runs create and appends its result on success.
func (c *Collection[T]) Create(ctx context.Context, create func(context.Context) (T, error)) (T, error) {
	v, err := create(ctx)
	if err != nil {
		return v, err
	}
	c.mu.Lock()
	c.data = append(c.data, v)
	c.mu.Unlock()
	return v, nil
}

// Update runs update and replaces the element with the same id on success.
// A result whose id is not cached is ignored.
func (c *Collection[T]) Update(ctx context.Context, update func(context.Context) (T, error)) (T, error) {
	v, err := update(ctx)
	if err != nil {
		return v, err
	}
	c.replace(v)
	return v, nil
}

// Delete runs del and removes id on success.
func (c *Collection[T]) Delete(ctx context.Context, id models.ID, del func(context.Context) error) error {
	if err := del(ctx); err != nil {
		return err
	}
	c.remove(id)
	return nil
}

func (c *Collection[T]) replace(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := v.GetID()
	for i := range c.data {
		if c.data[i].GetID() == id {
			next := make([]T, len(c.data))
			copy(next, c.data)
			next[i] = v
			c.data = next
			return true
		}
	}
	return false
}

func (c *Collection[T]) remove(id models.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.data {
		if c.data[i].GetID() == id {
			next := make([]T, 0, len(c.data)-1)
			next = append(next, c.data[:i]...)
			next = append(next, c.data[i+1:]...)
			c.data = next
			return true
		}
	}
	return false
}
