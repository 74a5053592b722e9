package client

import (
	"sort"
	"strings"

	"civicdesk.org/internal/auth"
	"civicdesk.org/internal/complaint"
)

// Query is one declarative filter/search/sort pass over a collection.
// The same shape serves complaints, agencies, and users so list views
// share a single code path.
type Query struct {
	// Search is a case-insensitive substring matched against SearchKeys.
	Search     string
	SearchKeys []string
	// Filters require exact (case-insensitive) field matches. An empty
	// value or "all" disables that filter.
	Filters map[string]string
	// SortKey names the field to order by; empty keeps input order.
	SortKey string
	// SortDir is "asc" (default) or "desc".
	SortDir string
}

// FieldFunc extracts a named field from an item as a comparable string.
// Unknown keys return "".
type FieldFunc[T any] func(item T, key string) string

// QueryCollection applies q to items and returns a new slice; the input
// is never mutated. It is the single filter/sort/search path for every
// list view.
func QueryCollection[T any](items []T, q Query, field FieldFunc[T]) []T {
	out := make([]T, 0, len(items))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	for _, item := range items {
		if !matchesFilters(item, q.Filters, field) {
			continue
		}
		if search != "" && !matchesSearch(item, search, q.SearchKeys, field) {
			continue
		}
		out = append(out, item)
	}

	if q.SortKey != "" {
		desc := strings.EqualFold(q.SortDir, "desc")
		sort.SliceStable(out, func(i, j int) bool {
			a, b := field(out[i], q.SortKey), field(out[j], q.SortKey)
			if desc {
				return a > b
			}
			return a < b
		})
	}
	return out
}

func matchesFilters[T any](item T, filters map[string]string, field FieldFunc[T]) bool {
	for key, want := range filters {
		if want == "" || strings.EqualFold(want, "all") {
			continue
		}
		if !strings.EqualFold(field(item, key), want) {
			return false
		}
	}
	return true
}

func matchesSearch[T any](item T, search string, keys []string, field FieldFunc[T]) bool {
	for _, key := range keys {
		if strings.Contains(strings.ToLower(field(item, key)), search) {
			return true
		}
	}
	return false
}

// ComplaintField adapts complaints to QueryCollection.
func ComplaintField(c complaint.Complaint, key string) string {
	switch key {
	case "id":
		return c.ID
	case "title":
		return c.Title
	case "description":
		return c.Description
	case "category":
		return c.Category
	case "status":
		return c.Status
	case "agencyId":
		return c.AgencyID
	case "userId":
		return c.UserID
	case "createdAt":
		return c.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000")
	case "updatedAt":
		return c.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000000000")
	default:
		return ""
	}
}

// AgencyField adapts agencies to QueryCollection.
func AgencyField(a auth.Agency, key string) string {
	switch key {
	case "id":
		return a.ID
	case "name":
		return a.Name
	case "contactEmail":
		return a.ContactEmail
	case "categories":
		return strings.Join(a.Categories, ",")
	case "createdAt":
		return a.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000")
	default:
		return ""
	}
}

// UserField adapts users to QueryCollection.
func UserField(u auth.User, key string) string {
	switch key {
	case "id":
		return u.ID
	case "name":
		return u.Name
	case "email":
		return u.Email
	case "role":
		return u.Role
	case "agencyId":
		return u.AgencyID
	case "createdAt":
		return u.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000")
	default:
		return ""
	}
}
