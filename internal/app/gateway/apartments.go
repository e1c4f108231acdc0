// internal/app/gateway/apartments.go
package gateway

import (
	"context"
	"net/http"

	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// ListApartments returns one page of apartments.
func (c *Client) ListApartments(ctx context.Context, p ListParams) (Page[models.Apartment], error) {
	return list[models.Apartment](ctx, c, "apartments.list", "apartments", p)
}

// CreateApartment creates an apartment.
func (c *Client) CreateApartment(ctx context.Context, in models.ApartmentInput) (models.Apartment, error) {
	return sendJSON[models.Apartment](ctx, c, "apartments.create", http.MethodPost, "apartments/create-apartment", in)
}

// UpdateApartment applies a partial update to apartment id.
func (c *Client) UpdateApartment(ctx context.Context, id models.ID, in models.ApartmentInput) (models.Apartment, error) {
	return sendJSON[models.Apartment](ctx, c, "apartments.update", http.MethodPut, "apartments/"+id.String(), in)
}

// DeleteApartment removes apartment id.
func (c *Client) DeleteApartment(ctx context.Context, id models.ID) error {
	return remove(ctx, c, "apartments.delete", "apartments/"+id.String())
}
