package complaint

import (
	"context"
	"errors"
	"testing"
	"time"
)

func submit(t *testing.T, s *InMemory, title, category, userID, agencyID string, status string) Complaint {
	t.Helper()
	c, err := s.Submit(context.Background(), NewComplaint{
		Title:       title,
		Description: "details for " + title,
		Category:    category,
		UserID:      userID,
	})
	if err != nil {
		t.Fatalf("Submit %s: %v", title, err)
	}
	if agencyID != "" {
		if c, err = s.AssignAgency(context.Background(), c.ID, agencyID); err != nil {
			t.Fatalf("AssignAgency %s: %v", title, err)
		}
	}
	if status != "" && status != c.Status {
		if c, err = s.Respond(context.Background(), c.ID, status, ""); err != nil {
			t.Fatalf("Respond %s: %v", title, err)
		}
	}
	return c
}

func TestSubmitStartsPending(t *testing.T) {
	s := NewInMemory()

	c, err := s.Submit(context.Background(), NewComplaint{
		Title:       "  Pothole ",
		Description: "Deep pothole on Main St.",
		Category:    "roads",
		UserID:      "user-1",
		Attachments: []Attachment{{ID: "att-1", FileName: "photo.jpg", Size: 12}},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if c.Status != StatusPending {
		t.Fatalf("status = %s, want pending", c.Status)
	}
	if c.Title != "Pothole" {
		t.Fatalf("title not trimmed: %q", c.Title)
	}
	if c.ID == "" {
		t.Fatal("missing id")
	}
	if len(c.Attachments) != 1 {
		t.Fatalf("attachments = %d", len(c.Attachments))
	}
}

func TestSubmitValidation(t *testing.T) {
	s := NewInMemory()
	cases := []struct {
		name string
		nc   NewComplaint
	}{
		{"missing title", NewComplaint{Description: "d", Category: "c", UserID: "u"}},
		{"missing description", NewComplaint{Title: "t", Category: "c", UserID: "u"}},
		{"missing category", NewComplaint{Title: "t", Description: "d", UserID: "u"}},
		{"missing user", NewComplaint{Title: "t", Description: "d", Category: "c"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Submit(context.Background(), tc.nc); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestListScoping(t *testing.T) {
	s := NewInMemory()
	first := submit(t, s, "Pothole", "roads", "user-1", "agency-1", "")
	submit(t, s, "Graffiti", "environment", "user-2", "", "")
	third := submit(t, s, "Noise", "environment", "user-1", "agency-2", "")

	all, err := s.List(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unscoped list = %d, want 3", len(all))
	}

	mine, err := s.List(context.Background(), Scope{UserID: "user-1"})
	if err != nil {
		t.Fatalf("List by user: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != first.ID || mine[1].ID != third.ID {
		t.Fatalf("user scope = %v", mine)
	}

	agency, err := s.List(context.Background(), Scope{AgencyID: "agency-1"})
	if err != nil {
		t.Fatalf("List by agency: %v", err)
	}
	if len(agency) != 1 || agency[0].ID != first.ID {
		t.Fatalf("agency scope = %v", agency)
	}
}

func TestRespondSetsStatusAndResponse(t *testing.T) {
	s := NewInMemory()
	c := submit(t, s, "Pothole", "roads", "user-1", "", "")

	updated, err := s.Respond(context.Background(), c.ID, StatusResolved, "Filled on Tuesday.")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if updated.Status != StatusResolved {
		t.Fatalf("status = %s", updated.Status)
	}
	if updated.Response != "Filled on Tuesday." {
		t.Fatalf("response = %q", updated.Response)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) && !updated.UpdatedAt.Equal(updated.CreatedAt) {
		t.Fatalf("updatedAt went backwards: %v < %v", updated.UpdatedAt, updated.CreatedAt)
	}
}

func TestRespondAllowsAnyOrder(t *testing.T) {
	// Status ordering is deliberately not enforced; resolved can move
	// back to pending.
	s := NewInMemory()
	c := submit(t, s, "Pothole", "roads", "user-1", "", StatusResolved)

	updated, err := s.Respond(context.Background(), c.ID, StatusPending, "Reopened.")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if updated.Status != StatusPending {
		t.Fatalf("status = %s, want pending", updated.Status)
	}
}

func TestRespondRejectsUnknownStatus(t *testing.T) {
	s := NewInMemory()
	c := submit(t, s, "Pothole", "roads", "user-1", "", "")

	if _, err := s.Respond(context.Background(), c.ID, "escalated", ""); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestAssignAgencySetsAssigned(t *testing.T) {
	s := NewInMemory()
	c := submit(t, s, "Pothole", "roads", "user-1", "", "")

	assigned, err := s.AssignAgency(context.Background(), c.ID, "agency-1")
	if err != nil {
		t.Fatalf("AssignAgency: %v", err)
	}
	if assigned.Status != StatusAssigned {
		t.Fatalf("status = %s, want assigned", assigned.Status)
	}
	if assigned.AgencyID != "agency-1" {
		t.Fatalf("agency = %s", assigned.AgencyID)
	}

	if _, err := s.AssignAgency(context.Background(), "missing", "agency-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewInMemory()
	c := submit(t, s, "Pothole", "roads", "user-1", "", "")

	got, err := s.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got.Status = "mutated"

	again, err := s.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Get again: %v", err)
	}
	if again.Status != StatusPending {
		t.Fatalf("store mutated through returned copy: %s", again.Status)
	}
}

func TestOverallStats(t *testing.T) {
	s := NewInMemory()
	submit(t, s, "A", "roads", "user-1", "", "")
	submit(t, s, "B", "roads", "user-1", "agency-1", StatusResolved)
	submit(t, s, "C", "environment", "user-2", "agency-1", StatusInProgress)
	submit(t, s, "D", "environment", "user-2", "agency-2", "")

	stats, err := s.Overall(context.Background())
	if err != nil {
		t.Fatalf("Overall: %v", err)
	}
	if stats.Total != 4 {
		t.Fatalf("total = %d", stats.Total)
	}
	if stats.Pending != 1 || stats.Assigned != 1 || stats.InProgress != 1 || stats.Resolved != 1 {
		t.Fatalf("breakdown = %+v", stats)
	}
	if stats.ResolutionRate != 0.25 {
		t.Fatalf("resolution rate = %v, want 0.25", stats.ResolutionRate)
	}
}

func TestDistributionsAndTrend(t *testing.T) {
	s := NewInMemory()
	base := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return base })
	submit(t, s, "A", "roads", "user-1", "", "")
	submit(t, s, "B", "roads", "user-1", "", "")
	s.SetClock(func() time.Time { return base.AddDate(0, 1, 0) })
	submit(t, s, "C", "environment", "user-2", "", "")

	statuses, err := s.StatusDistribution(context.Background())
	if err != nil {
		t.Fatalf("StatusDistribution: %v", err)
	}
	if len(statuses) != 1 || statuses[0].Status != StatusPending || statuses[0].Count != 3 {
		t.Fatalf("status distribution = %v", statuses)
	}

	categories, err := s.CategoryDistribution(context.Background())
	if err != nil {
		t.Fatalf("CategoryDistribution: %v", err)
	}
	if len(categories) != 2 || categories[0].Category != "environment" || categories[1].Count != 2 {
		t.Fatalf("category distribution = %v", categories)
	}

	trend, err := s.Trend(context.Background())
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if len(trend) != 2 || trend[0].Month != "2026-03" || trend[0].Count != 2 || trend[1].Month != "2026-04" {
		t.Fatalf("trend = %v", trend)
	}
}

func TestAgencyPerformanceReport(t *testing.T) {
	s := NewInMemory()
	submit(t, s, "A", "roads", "user-1", "agency-1", StatusResolved)
	submit(t, s, "B", "roads", "user-1", "agency-1", "")
	submit(t, s, "C", "roads", "user-2", "agency-2", StatusResolved)
	submit(t, s, "D", "roads", "user-2", "", "")

	report, err := s.AgencyPerformanceReport(context.Background())
	if err != nil {
		t.Fatalf("AgencyPerformanceReport: %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("report size = %d, want 2", len(report))
	}
	first := report[0]
	if first.AgencyID != "agency-1" || first.Total != 2 || first.Resolved != 1 || first.ResolutionRate != 0.5 {
		t.Fatalf("agency-1 row = %+v", first)
	}
	second := report[1]
	if second.AgencyID != "agency-2" || second.ResolutionRate != 1 {
		t.Fatalf("agency-2 row = %+v", second)
	}
}
