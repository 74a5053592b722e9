package client_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"civicdesk.org/internal/auth"
	"civicdesk.org/internal/client"
	"civicdesk.org/internal/complaint"
)

var queryFixture = []complaint.Complaint{
	{ID: "c-1", Title: "Pothole on Main St", Category: "roads", Status: "pending"},
	{ID: "c-2", Title: "Broken streetlight", Category: "infrastructure", Status: "resolved"},
	{ID: "c-3", Title: "Pothole near school", Category: "roads", Status: "resolved"},
	{ID: "c-4", Title: "Overflowing bins", Category: "waste", Status: "in_progress"},
}

func TestQueryCollectionSearch(t *testing.T) {
	got := client.QueryCollection(queryFixture, client.Query{
		Search:     "pothole",
		SearchKeys: []string{"title", "description"},
	}, client.ComplaintField)

	require.Len(t, got, 2)
	require.Equal(t, "c-1", got[0].ID)
	require.Equal(t, "c-3", got[1].ID)
}

func TestQueryCollectionFilters(t *testing.T) {
	got := client.QueryCollection(queryFixture, client.Query{
		Filters: map[string]string{"category": "roads", "status": "resolved"},
	}, client.ComplaintField)

	require.Len(t, got, 1)
	require.Equal(t, "c-3", got[0].ID)
}

func TestQueryCollectionAllFilterIsDisabled(t *testing.T) {
	got := client.QueryCollection(queryFixture, client.Query{
		Filters: map[string]string{"status": "all", "category": ""},
	}, client.ComplaintField)

	require.Len(t, got, len(queryFixture))
}

func TestQueryCollectionSort(t *testing.T) {
	got := client.QueryCollection(queryFixture, client.Query{
		SortKey: "title",
	}, client.ComplaintField)
	require.Equal(t, "c-2", got[0].ID) // "Broken streetlight" sorts first

	got = client.QueryCollection(queryFixture, client.Query{
		SortKey: "title",
		SortDir: "desc",
	}, client.ComplaintField)
	require.Equal(t, "c-1", got[0].ID) // "Pothole on Main St" sorts last ascending
}

func TestQueryCollectionCombined(t *testing.T) {
	got := client.QueryCollection(queryFixture, client.Query{
		Search:     "o",
		SearchKeys: []string{"title"},
		Filters:    map[string]string{"status": "resolved"},
		SortKey:    "category",
		SortDir:    "desc",
	}, client.ComplaintField)

	require.Len(t, got, 2)
	require.Equal(t, "roads", got[0].Category)
	require.Equal(t, "infrastructure", got[1].Category)
}

func TestQueryCollectionDoesNotMutateInput(t *testing.T) {
	before := make([]complaint.Complaint, len(queryFixture))
	copy(before, queryFixture)

	_ = client.QueryCollection(queryFixture, client.Query{SortKey: "title", SortDir: "desc"}, client.ComplaintField)

	require.Equal(t, before, queryFixture)
}

func TestQueryCollectionOverUsers(t *testing.T) {
	users := []auth.User{
		{ID: "u-1", Name: "Ayan Serik", Email: "ayan.s@example.com", Role: auth.RoleCitizen},
		{ID: "u-2", Name: "Dana Alikhan", Email: "dana@example.com", Role: auth.RoleAdmin},
		{ID: "u-3", Name: "Ayan Aibek", Email: "ayan.a@example.com", Role: auth.RoleCitizen},
	}

	got := client.QueryCollection(users, client.Query{
		Search:     "ayan",
		SearchKeys: []string{"name", "email"},
		SortKey:    "email",
	}, client.UserField)

	require.Len(t, got, 2)
	require.Equal(t, "ayan.a@example.com", got[0].Email)
	require.Equal(t, "ayan.s@example.com", got[1].Email)
}
