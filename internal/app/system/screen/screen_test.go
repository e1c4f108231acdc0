package screen

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves pages of societies and records every request.
type fakeBackend struct {
	mu    sync.Mutex
	calls []gateway.ListParams
	rows  map[int][]models.Society // by page
	total int
}

func (f *fakeBackend) fetch(_ context.Context, p gateway.ListParams) (gateway.Page[models.Society], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	items := f.rows[p.Page]
	return gateway.Page[models.Society]{
		Items:      items,
		Pagination: models.Pagination{Total: f.total, Page: p.Page, Limit: p.Limit, TotalPages: (f.total + p.Limit - 1) / p.Limit},
	}, nil
}

func (f *fakeBackend) Calls() []gateway.ListParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.ListParams(nil), f.calls...)
}

func (f *fakeBackend) Last() gateway.ListParams {
	calls := f.Calls()
	if len(calls) == 0 {
		return gateway.ListParams{}
	}
	return calls[len(calls)-1]
}

func newController(t *testing.T, be *fakeBackend) (*Controller[models.Society], *appstate.Collection[models.Society]) {
	t.Helper()
	coll := appstate.NewCollection[models.Society]()
	c := New(coll, be.fetch, Config{Resource: "societies", Debounce: 30 * time.Millisecond})
	return c, coll
}

func TestMount_FetchesFirstPage(t *testing.T) {
	be := &fakeBackend{rows: map[int][]models.Society{1: {{ID: "1", Name: "Green Park"}}}, total: 1}
	c, _ := newController(t, be)

	require.NoError(t, c.Mount(context.Background()))

	assert.Equal(t, gateway.ListParams{Page: 1, Limit: 10}, be.Last())
	v := c.View()
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, appstate.StatusSucceeded, v.Status)
	require.Len(t, v.Data, 1)
	assert.Equal(t, "Green Park", v.Data[0].Name)
}

func TestSearch_DebouncesBurstIntoOneFetch(t *testing.T) {
	be := &fakeBackend{rows: map[int][]models.Society{}}
	c, _ := newController(t, be)
	require.NoError(t, c.Show(context.Background(), 3, ""))
	before := len(be.Calls())

	var done <-chan struct{}
	for _, term := range []string{"g", "gr", "gre", "gree", "green"} {
		done = c.Search(context.Background(), term)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced fetch never ran")
	}

	calls := be.Calls()
	require.Len(t, calls, before+1, "a burst must produce exactly one fetch")
	assert.Equal(t, gateway.ListParams{Page: 1, Limit: 10, Search: "green"}, calls[len(calls)-1])
	assert.Equal(t, 1, c.Page())
	assert.Equal(t, "green", c.SearchTerm())
}

func TestSearch_ClearingFetchesImmediately(t *testing.T) {
	be := &fakeBackend{rows: map[int][]models.Society{}}
	c, _ := newController(t, be)

	c.Search(context.Background(), "green")
	done := c.Search(context.Background(), "  ")

	select {
	case <-done:
	default:
		t.Fatal("clearing the search should fetch synchronously")
	}
	assert.Equal(t, gateway.ListParams{Page: 1, Limit: 10}, be.Last())

	// The pending "green" fetch was cancelled.
	time.Sleep(80 * time.Millisecond)
	assert.Len(t, be.Calls(), 1)
}

func TestDelete_LastRowOnPageStepsBack(t *testing.T) {
	be := &fakeBackend{
		rows:  map[int][]models.Society{2: {{ID: "11", Name: "Lone"}}},
		total: 11,
	}
	c, coll := newController(t, be)
	require.NoError(t, c.Show(context.Background(), 2, ""))
	require.Equal(t, 1, coll.Len())

	be.mu.Lock()
	be.rows[2] = nil
	be.rows[1] = make([]models.Society, 10)
	be.total = 10
	be.mu.Unlock()

	err := c.Delete(context.Background(), "11", func(context.Context) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, 1, c.Page())
	assert.Equal(t, 1, be.Last().Page)
	assert.Equal(t, 10, coll.Len())
}

func TestDelete_StaysWhenOtherRowsRemain(t *testing.T) {
	be := &fakeBackend{
		rows:  map[int][]models.Society{2: {{ID: "11"}, {ID: "12"}}},
		total: 12,
	}
	c, _ := newController(t, be)
	require.NoError(t, c.Show(context.Background(), 2, ""))

	require.NoError(t, c.Delete(context.Background(), "11", func(context.Context) error { return nil }))
	assert.Equal(t, 2, c.Page())
	assert.Equal(t, 2, be.Last().Page)
}

func TestDelete_IDOffPageKeepsPage(t *testing.T) {
	be := &fakeBackend{
		rows:  map[int][]models.Society{2: {{ID: "11"}}},
		total: 11,
	}
	c, _ := newController(t, be)
	require.NoError(t, c.Show(context.Background(), 2, ""))

	require.NoError(t, c.Delete(context.Background(), "99", func(context.Context) error { return nil }))
	assert.Equal(t, 2, c.Page(), "an id not on the page must not step back")
	assert.Equal(t, 2, be.Last().Page)
}

func TestDelete_FailureLeavesCollection(t *testing.T) {
	be := &fakeBackend{rows: map[int][]models.Society{1: {{ID: "1"}, {ID: "2"}}}, total: 2}
	c, coll := newController(t, be)
	require.NoError(t, c.Mount(context.Background()))
	calls := len(be.Calls())

	boom := errors.New("society has apartments")
	err := c.Delete(context.Background(), "1", func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, coll.Len())
	assert.Len(t, be.Calls(), calls, "a failed delete must not re-fetch")
}

func TestCreateAndUpdate_RefetchCurrentPage(t *testing.T) {
	be := &fakeBackend{rows: map[int][]models.Society{2: {{ID: "11", Name: "Old"}}}, total: 11}
	c, _ := newController(t, be)
	require.NoError(t, c.Show(context.Background(), 2, ""))
	calls := len(be.Calls())

	_, err := c.Create(context.Background(), func(context.Context) (models.Society, error) {
		return models.Society{ID: "12", Name: "New"}, nil
	})
	require.NoError(t, err)
	assert.Len(t, be.Calls(), calls+1)
	assert.Equal(t, 2, be.Last().Page)

	_, err = c.Update(context.Background(), func(context.Context) (models.Society, error) {
		return models.Society{ID: "11", Name: "Renamed"}, nil
	})
	require.NoError(t, err)
	assert.Len(t, be.Calls(), calls+2)
	assert.Equal(t, 2, be.Last().Page)
}

func TestCreate_FailureSkipsRefetch(t *testing.T) {
	be := &fakeBackend{rows: map[int][]models.Society{}}
	c, coll := newController(t, be)
	require.NoError(t, c.Mount(context.Background()))
	calls := len(be.Calls())

	_, err := c.Create(context.Background(), func(context.Context) (models.Society, error) {
		return models.Society{}, errors.New("duplicate name")
	})
	require.Error(t, err)
	assert.Len(t, be.Calls(), calls)
	assert.Zero(t, coll.Len())
}
