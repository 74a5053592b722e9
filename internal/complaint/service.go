package complaint

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"civicdesk.org/internal/ids"
)

// Service defines complaint operations. Implemented by InMemory for
// tests/dev and by the PostgreSQL store for production.
type Service interface {
	Submit(ctx context.Context, nc NewComplaint) (Complaint, error)
	Get(ctx context.Context, id string) (Complaint, error)
	List(ctx context.Context, scope Scope) ([]Complaint, error)
	Respond(ctx context.Context, id, status, response string) (Complaint, error)
	AssignAgency(ctx context.Context, id, agencyID string) (Complaint, error)

	Overall(ctx context.Context) (OverallStats, error)
	StatusDistribution(ctx context.Context) ([]StatusCount, error)
	CategoryDistribution(ctx context.Context) ([]CategoryCount, error)
	Trend(ctx context.Context) ([]TrendPoint, error)
	AgencyPerformanceReport(ctx context.Context) ([]AgencyPerformance, error)
}

// InMemory implements Service with in-process concurrency safety.
type InMemory struct {
	mu    sync.RWMutex
	items map[string]*Complaint
	order []string
	now   func() time.Time
}

// NewInMemory creates an empty complaint store.
func NewInMemory() *InMemory {
	return &InMemory{
		items: make(map[string]*Complaint),
		now:   time.Now,
	}
}

// SetClock overrides the time source. Only intended for test use.
func (s *InMemory) SetClock(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

func validateNew(nc NewComplaint) error {
	if strings.TrimSpace(nc.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(nc.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if strings.TrimSpace(nc.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if strings.TrimSpace(nc.UserID) == "" {
		return fmt.Errorf("%w: submitter is required", ErrInvalidInput)
	}
	return nil
}

func (s *InMemory) Submit(ctx context.Context, nc NewComplaint) (Complaint, error) {
	if err := validateNew(nc); err != nil {
		return Complaint{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	c := &Complaint{
		ID:          ids.New(),
		Title:       strings.TrimSpace(nc.Title),
		Description: strings.TrimSpace(nc.Description),
		Category:    strings.TrimSpace(nc.Category),
		Status:      StatusPending,
		UserID:      nc.UserID,
		Attachments: append([]Attachment(nil), nc.Attachments...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.items[c.ID] = c
	s.order = append(s.order, c.ID)
	return clone(c), nil
}

func (s *InMemory) Get(ctx context.Context, id string) (Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	if !ok {
		return Complaint{}, ErrNotFound
	}
	return clone(c), nil
}

func (s *InMemory) List(ctx context.Context, scope Scope) ([]Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Complaint, 0, len(s.order))
	for _, id := range s.order {
		c := s.items[id]
		if scope.UserID != "" && c.UserID != scope.UserID {
			continue
		}
		if scope.AgencyID != "" && c.AgencyID != scope.AgencyID {
			continue
		}
		out = append(out, clone(c))
	}
	return out, nil
}

func (s *InMemory) Respond(ctx context.Context, id, status, response string) (Complaint, error) {
	if !ValidStatus(status) {
		return Complaint{}, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return Complaint{}, ErrNotFound
	}
	c.Status = status
	c.Response = response
	c.UpdatedAt = s.now().UTC()
	return clone(c), nil
}

func (s *InMemory) AssignAgency(ctx context.Context, id, agencyID string) (Complaint, error) {
	agencyID = strings.TrimSpace(agencyID)
	if agencyID == "" {
		return Complaint{}, fmt.Errorf("%w: agencyId is required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return Complaint{}, ErrNotFound
	}
	c.AgencyID = agencyID
	c.Status = StatusAssigned
	c.UpdatedAt = s.now().UTC()
	return clone(c), nil
}

func (s *InMemory) Overall(ctx context.Context) (OverallStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats OverallStats
	for _, c := range s.items {
		stats.Total++
		switch c.Status {
		case StatusPending:
			stats.Pending++
		case StatusAssigned:
			stats.Assigned++
		case StatusInProgress:
			stats.InProgress++
		case StatusResolved:
			stats.Resolved++
		}
	}
	stats.ResolutionRate = resolutionRate(stats.Resolved, stats.Total)
	return stats, nil
}

func (s *InMemory) StatusDistribution(ctx context.Context) ([]StatusCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int{}
	for _, c := range s.items {
		counts[c.Status]++
	}
	out := make([]StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, StatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (s *InMemory) CategoryDistribution(ctx context.Context) ([]CategoryCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int{}
	for _, c := range s.items {
		counts[c.Category]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for cat, n := range counts {
		out = append(out, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *InMemory) Trend(ctx context.Context) ([]TrendPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int{}
	for _, c := range s.items {
		counts[c.CreatedAt.UTC().Format("2006-01")]++
	}
	out := make([]TrendPoint, 0, len(counts))
	for month, n := range counts {
		out = append(out, TrendPoint{Month: month, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (s *InMemory) AgencyPerformanceReport(ctx context.Context) ([]AgencyPerformance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type tally struct{ total, resolved int }
	counts := map[string]*tally{}
	for _, c := range s.items {
		if c.AgencyID == "" {
			continue
		}
		t, ok := counts[c.AgencyID]
		if !ok {
			t = &tally{}
			counts[c.AgencyID] = t
		}
		t.total++
		if c.Status == StatusResolved {
			t.resolved++
		}
	}
	out := make([]AgencyPerformance, 0, len(counts))
	for id, t := range counts {
		out = append(out, AgencyPerformance{
			AgencyID:       id,
			Total:          t.total,
			Resolved:       t.resolved,
			ResolutionRate: resolutionRate(t.resolved, t.total),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgencyID < out[j].AgencyID })
	return out, nil
}

func clone(c *Complaint) Complaint {
	out := *c
	out.Attachments = append([]Attachment(nil), c.Attachments...)
	return out
}
