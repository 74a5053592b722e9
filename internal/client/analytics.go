package client

import (
	"context"
	"net/http"

	"civicdesk.org/internal/complaint"
)

// OverallStats returns platform-wide totals and the resolution rate.
func (c *Client) OverallStats(ctx context.Context) (complaint.OverallStats, error) {
	var stats complaint.OverallStats
	err := c.doJSON(ctx, http.MethodGet, "/api/analytics/overall", nil, &stats, "failed to load analytics")
	return stats, err
}

// StatusDistribution returns complaint counts per status.
func (c *Client) StatusDistribution(ctx context.Context) ([]complaint.StatusCount, error) {
	var counts []complaint.StatusCount
	err := c.doJSON(ctx, http.MethodGet, "/api/analytics/status", nil, &counts, "failed to load analytics")
	return counts, err
}

// CategoryDistribution returns complaint counts per category.
func (c *Client) CategoryDistribution(ctx context.Context) ([]complaint.CategoryCount, error) {
	var counts []complaint.CategoryCount
	err := c.doJSON(ctx, http.MethodGet, "/api/analytics/category", nil, &counts, "failed to load analytics")
	return counts, err
}

// Trend returns monthly submission and resolution counts.
func (c *Client) Trend(ctx context.Context) ([]complaint.TrendPoint, error) {
	var points []complaint.TrendPoint
	err := c.doJSON(ctx, http.MethodGet, "/api/analytics/trend", nil, &points, "failed to load analytics")
	return points, err
}

// AgencyPerformance returns per-agency resolution figures. Admin only.
func (c *Client) AgencyPerformance(ctx context.Context) ([]complaint.AgencyPerformance, error) {
	var report []complaint.AgencyPerformance
	err := c.doJSON(ctx, http.MethodGet, "/api/analytics/agency-performance", nil, &report, "failed to load analytics")
	return report, err
}
