package client

import (
	"context"
	"net/http"
	"net/url"

	"civicdesk.org/internal/auth"
)

// AgencyInput is the payload for creating or replacing an agency.
type AgencyInput struct {
	Name         string   `json:"name"`
	Categories   []string `json:"categories"`
	ContactEmail string   `json:"contactEmail"`
}

// ListAgencies returns all agencies.
func (c *Client) ListAgencies(ctx context.Context) ([]auth.Agency, error) {
	var items []auth.Agency
	err := c.doJSON(ctx, http.MethodGet, "/api/agencies", nil, &items, "failed to load agencies")
	return items, err
}

// GetAgency fetches one agency by id.
func (c *Client) GetAgency(ctx context.Context, id string) (auth.Agency, error) {
	var item auth.Agency
	err := c.doJSON(ctx, http.MethodGet, "/api/agencies/"+url.PathEscape(id), nil, &item, "failed to load agency")
	return item, err
}

// CreateAgency registers a new agency. Admin only.
func (c *Client) CreateAgency(ctx context.Context, in AgencyInput) (auth.Agency, error) {
	var item auth.Agency
	err := c.doJSON(ctx, http.MethodPost, "/api/agencies", in, &item, "failed to create agency")
	return item, err
}

// UpdateAgency replaces an agency's mutable fields. Admin only.
func (c *Client) UpdateAgency(ctx context.Context, id string, in AgencyInput) (auth.Agency, error) {
	var item auth.Agency
	err := c.doJSON(ctx, http.MethodPut, "/api/agencies/"+url.PathEscape(id), in, &item, "failed to update agency")
	return item, err
}

// DeleteAgency removes an agency. Admin only.
func (c *Client) DeleteAgency(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/agencies/"+url.PathEscape(id), nil, nil, "failed to delete agency")
}
