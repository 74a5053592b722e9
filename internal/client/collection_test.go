package client_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"civicdesk.org/internal/client"
	"civicdesk.org/internal/complaint"
)

func TestCollectionReplaceAll(t *testing.T) {
	coll := client.NewCollection()
	coll.Append(complaint.Complaint{ID: "old", Status: "pending"})

	coll.ReplaceAll([]complaint.Complaint{
		{ID: "c-1", Status: "pending"},
		{ID: "c-2", Status: "assigned"},
	})

	require.Equal(t, 2, coll.Len())
	_, ok := coll.Get("old")
	require.False(t, ok, "old item survived ReplaceAll")

	snap := coll.Snapshot()
	require.Equal(t, "c-1", snap[0].ID)
	require.Equal(t, "c-2", snap[1].ID)
}

func TestCollectionApplyStatusPatch(t *testing.T) {
	coll := client.NewCollection()
	coll.ReplaceAll([]complaint.Complaint{
		{ID: "c-1", Title: "Pothole", Status: "pending", Response: "queued"},
	})

	require.True(t, coll.ApplyStatusPatch("c-1", "resolved"))

	got, ok := coll.Get("c-1")
	require.True(t, ok)
	require.Equal(t, "resolved", got.Status)
	// Only the status changes; the rest of the record is untouched.
	require.Equal(t, "Pothole", got.Title)
	require.Equal(t, "queued", got.Response)
}

func TestCollectionAppendExistingIDReplacesInPlace(t *testing.T) {
	coll := client.NewCollection()
	coll.Append(complaint.Complaint{ID: "c-1", Title: "Pothole", Status: "pending"})
	coll.Append(complaint.Complaint{ID: "c-1", Title: "Pothole on Main St", Status: "pending"})

	require.Equal(t, 1, coll.Len())
	snap := coll.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, "Pothole on Main St", snap[0].Title)

	// The surviving element is the one patches reach.
	require.True(t, coll.ApplyStatusPatch("c-1", "resolved"))
	snap = coll.Snapshot()
	require.Equal(t, "resolved", snap[0].Status)
}

func TestCollectionPatchUnknownIDIsNoOp(t *testing.T) {
	coll := client.NewCollection()
	coll.ReplaceAll([]complaint.Complaint{{ID: "c-1", Status: "pending"}})

	notified := 0
	unsubscribe := coll.Subscribe(func() { notified++ })
	defer unsubscribe()

	require.False(t, coll.ApplyStatusPatch("ghost", "resolved"))
	require.Equal(t, 1, coll.Len(), "patch must never insert")
	require.Equal(t, 0, notified, "no-op patch must not notify")
}

func TestCollectionSubscribe(t *testing.T) {
	coll := client.NewCollection()
	notified := 0
	unsubscribe := coll.Subscribe(func() { notified++ })

	coll.Append(complaint.Complaint{ID: "c-1", Status: "pending"})
	coll.ApplyStatusPatch("c-1", "resolved")
	require.Equal(t, 2, notified)

	unsubscribe()
	coll.ApplyStatusPatch("c-1", "pending")
	require.Equal(t, 2, notified, "unsubscribed listener still notified")
}

func TestCollectionSnapshotIsACopy(t *testing.T) {
	coll := client.NewCollection()
	coll.Append(complaint.Complaint{ID: "c-1", Status: "pending"})

	snap := coll.Snapshot()
	snap[0].Status = "mutated"

	got, _ := coll.Get("c-1")
	require.Equal(t, "pending", got.Status)
}

func TestCollectionReplace(t *testing.T) {
	coll := client.NewCollection()
	coll.Append(complaint.Complaint{ID: "c-1", Status: "pending"})

	require.True(t, coll.Replace(complaint.Complaint{ID: "c-1", Status: "resolved", Response: "Done."}))
	got, _ := coll.Get("c-1")
	require.Equal(t, "Done.", got.Response)

	require.False(t, coll.Replace(complaint.Complaint{ID: "ghost"}))
	require.Equal(t, 1, coll.Len())
}
