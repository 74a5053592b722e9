package client

import (
	"context"
	"net/http"
	"net/url"

	"civicdesk.org/internal/auth"
)

// UserInput creates a user with an explicit role. Admin only.
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	AgencyID string `json:"agencyId,omitempty"`
}

// UserPatch carries optional field changes; nil fields are left as is.
type UserPatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
	AgencyID *string `json:"agencyId,omitempty"`
}

// ListUsers returns all accounts. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]auth.User, error) {
	var items []auth.User
	err := c.doJSON(ctx, http.MethodGet, "/api/users", nil, &items, "failed to load users")
	return items, err
}

// CreateUser provisions an account. Admin only.
func (c *Client) CreateUser(ctx context.Context, in UserInput) (auth.User, error) {
	var item auth.User
	err := c.doJSON(ctx, http.MethodPost, "/api/users", in, &item, "failed to create user")
	return item, err
}

// UpdateUser applies a partial update to an account. Admin only.
func (c *Client) UpdateUser(ctx context.Context, id string, patch UserPatch) (auth.User, error) {
	var item auth.User
	err := c.doJSON(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id), patch, &item, "failed to update user")
	return item, err
}

// DeleteUser removes an account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil, "failed to delete user")
}
