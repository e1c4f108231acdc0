// internal/app/gateway/users.go
package gateway

import (
	"context"
	"net/http"

	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// ListUsers returns one page of users.
func (c *Client) ListUsers(ctx context.Context, p ListParams) (Page[models.User], error) {
	return list[models.User](ctx, c, "users.list", "users", p)
}

// FilterUsers returns users matching f without pagination; used for option lists.
func (c *Client) FilterUsers(ctx context.Context, f models.UserFilter) ([]models.User, error) {
	const op = "users.filter"
	raw, err := sendRaw(ctx, c, op, http.MethodPost, "users/filter", f)
	if err != nil {
		return nil, err
	}
	page, err := decodeList[models.User](op, raw, ListParams{})
	return page.Items, err
}

// CreateUser creates a user.
func (c *Client) CreateUser(ctx context.Context, in models.UserInput) (models.User, error) {
	return sendJSON[models.User](ctx, c, "users.create", http.MethodPost, "users/create-user", in)
}

// UpdateUser applies a partial update to user id.
func (c *Client) UpdateUser(ctx context.Context, id models.ID, in models.UserInput) (models.User, error) {
	return sendJSON[models.User](ctx, c, "users.update", http.MethodPut, "users/"+id.String(), in)
}

// DeleteUser removes user id.
func (c *Client) DeleteUser(ctx context.Context, id models.ID) error {
	return remove(ctx, c, "users.delete", "users/"+id.String())
}
