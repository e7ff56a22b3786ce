package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/marksync/internal/model"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func jiraBookmark(itemID, title string) model.SyncedBookmark {
	return model.SyncedBookmark{
		ProviderID: "jira-main",
		ItemID:     itemID,
		Title:      title,
		URL:        "https://jira.example.com/browse/" + itemID,
		Status:     model.StatusOpen,
	}
}

func TestUpsertAndListBookmarks(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertBookmark(ctx, jiraBookmark("PROJ-1", "one")))
	require.NoError(t, s.UpsertBookmark(ctx, jiraBookmark("PROJ-2", "two")))

	list, err := s.ListBookmarks(ctx, "jira-main")
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Positions are assigned in insertion order.
	assert.Equal(t, "PROJ-1", list[0].ItemID)
	assert.Equal(t, 1, list[0].Position)
	assert.Equal(t, "PROJ-2", list[1].ItemID)
	assert.Equal(t, 2, list[1].Position)
	assert.False(t, list[0].CreatedAt.IsZero())
}

func TestUpsertExistingRowRefreshesInPlace(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertBookmark(ctx, jiraBookmark("PROJ-1", "one")))
	require.NoError(t, s.UpsertBookmark(ctx, jiraBookmark("PROJ-2", "two")))

	before, err := s.ListBookmarks(ctx, "jira-main")
	require.NoError(t, err)

	// Re-upserting an existing identifier must not fail and must not move
	// the row or reset its creation time.
	bm := jiraBookmark("PROJ-1", "one retitled")
	bm.Status = model.StatusDone
	require.NoError(t, s.UpsertBookmark(ctx, bm))

	after, err := s.ListBookmarks(ctx, "jira-main")
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, "PROJ-1", after[0].ItemID)
	assert.Equal(t, "one retitled", after[0].Title)
	assert.Equal(t, model.StatusDone, after[0].Status)
	assert.Equal(t, before[0].Position, after[0].Position)
	assert.Equal(t, before[0].CreatedAt, after[0].CreatedAt)
}

func TestBookmarksAreInstanceScoped(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	corp := jiraBookmark("CORP-1", "corp item")
	corp.ProviderID = "jira-corp"
	team := jiraBookmark("TEAM-1", "team item")
	team.ProviderID = "jira-team"

	require.NoError(t, s.UpsertBookmark(ctx, corp))
	require.NoError(t, s.UpsertBookmark(ctx, team))

	// Two instances of the same provider type hold disjoint rows.
	corpList, err := s.ListBookmarks(ctx, "jira-corp")
	require.NoError(t, err)
	require.Len(t, corpList, 1)
	assert.Equal(t, "CORP-1", corpList[0].ItemID)

	teamList, err := s.ListBookmarks(ctx, "jira-team")
	require.NoError(t, err)
	require.Len(t, teamList, 1)
	assert.Equal(t, "TEAM-1", teamList[0].ItemID)
}

func TestDeleteBookmark(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertBookmark(ctx, jiraBookmark("PROJ-1", "one")))
	require.NoError(t, s.DeleteBookmark(ctx, "jira-main", "PROJ-1"))

	list, err := s.ListBookmarks(ctx, "jira-main")
	require.NoError(t, err)
	assert.Empty(t, list)

	err = s.DeleteBookmark(ctx, "jira-main", "PROJ-1")
	assert.True(t, IsNotFound(err))
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first := []model.SyncedBookmark{
		jiraBookmark("PROJ-1", "one"),
		jiraBookmark("PROJ-2", "two"),
	}
	for i := range first {
		first[i].Position = i + 1
		first[i].CreatedAt = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		first[i].UpdatedAt = first[i].CreatedAt
	}

	require.NoError(t, s.ReplaceSnapshot(ctx, "jira-main", first))

	got, err := s.LoadSnapshot(ctx, "jira-main")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "PROJ-1", got[0].ItemID)
	assert.Equal(t, "PROJ-2", got[1].ItemID)

	// A replacement fully supersedes the previous snapshot.
	second := []model.SyncedBookmark{jiraBookmark("PROJ-3", "three")}
	second[0].Position = 1
	require.NoError(t, s.ReplaceSnapshot(ctx, "jira-main", second))

	got, err = s.LoadSnapshot(ctx, "jira-main")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "PROJ-3", got[0].ItemID)
}

func TestReplaceSnapshotWithEmptySet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceSnapshot(ctx, "jira-main",
		[]model.SyncedBookmark{jiraBookmark("PROJ-1", "one")}))
	require.NoError(t, s.ReplaceSnapshot(ctx, "jira-main", nil))

	got, err := s.LoadSnapshot(ctx, "jira-main")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSnapshotIsInstanceScoped(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	corp := jiraBookmark("CORP-1", "corp item")
	corp.ProviderID = "jira-corp"
	corp.Position = 1
	require.NoError(t, s.ReplaceSnapshot(ctx, "jira-corp",
		[]model.SyncedBookmark{corp}))

	team := jiraBookmark("TEAM-1", "team item")
	team.ProviderID = "jira-team"
	team.Position = 1
	require.NoError(t, s.ReplaceSnapshot(ctx, "jira-team",
		[]model.SyncedBookmark{team}))

	// Replacing one instance's snapshot leaves the other intact.
	require.NoError(t, s.ReplaceSnapshot(ctx, "jira-corp", nil))

	got, err := s.LoadSnapshot(ctx, "jira-team")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "TEAM-1", got[0].ItemID)
}

func TestNotificationHistory(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordNotification(ctx, model.NotificationRecord{
			ProviderID: "jira-main",
			Kind:       "success",
			Title:      "Sync complete",
			Message:    "No changes",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := s.ListNotifications(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	// Newest first.
	assert.True(t, all[0].CreatedAt.After(all[2].CreatedAt))
	assert.NotEmpty(t, all[0].ID)
	assert.Equal(t, "jira-main", all[0].ProviderID)

	limited, err := s.ListNotifications(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
