// internal/app/gateway/list.go
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// ListParams are the query parameters accepted by every list endpoint.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// Values encodes p as page, limit and searchTerm. Zero fields are omitted.
func (p ListParams) Values() map[string][]string {
	q := make(map[string][]string, 3)
	if p.Page > 0 {
		q["page"] = []string{strconv.Itoa(p.Page)}
	}
	if p.Limit > 0 {
		q["limit"] = []string{strconv.Itoa(p.Limit)}
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		q["searchTerm"] = []string{s}
	}
	return q
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items      []T
	Pagination models.Pagination
}

type listEnvelope[T any] struct {
	Success    *bool             `json:"success"`
	Message    string            `json:"message"`
	Data       []T               `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

// list GETs a paginated collection.
func list[T any](ctx context.Context, c *Client, op, path string, p ListParams) (Page[T], error) {
	raw, err := c.do(ctx, call{op: op, method: http.MethodGet, path: path, query: p.Values()})
	if err != nil {
		return Page[T]{}, err
	}
	return decodeList[T](op, raw, p)
}

func decodeList[T any](op string, raw []byte, p ListParams) (Page[T], error) {
	var env listEnvelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		// Some option endpoints return a bare array.
		var items []T
		if err2 := json.Unmarshal(raw, &items); err2 != nil {
			return Page[T]{}, &Error{Kind: KindDecode, Op: op, Err: err}
		}
		env.Data = items
	}

	pg := env.Pagination
	if pg.Page <= 0 {
		pg.Page = max(p.Page, 1)
	}
	if pg.Limit <= 0 {
		pg.Limit = p.Limit
	}
	if pg.Total == 0 && len(env.Data) > 0 && pg.TotalPages == 0 {
		pg.Total = len(env.Data)
	}
	if pg.TotalPages <= 0 {
		pg.TotalPages = 1
		if pg.Limit > 0 && pg.Total > 0 {
			pg.TotalPages = (pg.Total + pg.Limit - 1) / pg.Limit
		}
	}
	if env.Data == nil {
		env.Data = []T{}
	}
	return Page[T]{Items: env.Data, Pagination: pg}, nil
}
