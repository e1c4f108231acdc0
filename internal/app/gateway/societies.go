// internal/app/gateway/societies.go
package gateway

import (
	"context"
	"net/http"

	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// ListSocieties returns one page of societies.
func (c *Client) ListSocieties(ctx context.Context, p ListParams) (Page[models.Society], error) {
	return list[models.Society](ctx, c, "societies.list", "societies", p)
}

// AllSocieties returns every society without pagination; used for option lists.
func (c *Client) AllSocieties(ctx context.Context) ([]models.Society, error) {
	page, err := list[models.Society](ctx, c, "societies.all", "societies/all-society", ListParams{})
	return page.Items, err
}

// GetSociety returns society id with its nested apartments, visitors and users.
func (c *Client) GetSociety(ctx context.Context, id models.ID) (models.Society, error) {
	return getEntity[models.Society](ctx, c, "societies.get", "societies/"+id.String())
}

// CreateSociety creates a society.
func (c *Client) CreateSociety(ctx context.Context, in models.SocietyInput) (models.Society, error) {
	return sendJSON[models.Society](ctx, c, "societies.create", http.MethodPost, "societies/create-society", in)
}

// UpdateSociety applies a partial update to society id.
func (c *Client) UpdateSociety(ctx context.Context, id models.ID, in models.SocietyInput) (models.Society, error) {
	return sendJSON[models.Society](ctx, c, "societies.update", http.MethodPut, "societies/"+id.String(), in)
}

// DeleteSociety removes society id.
func (c *Client) DeleteSociety(ctx context.Context, id models.ID) error {
	return remove(ctx, c, "societies.delete", "societies/"+id.String())
}
