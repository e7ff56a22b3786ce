package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/marksync/internal/model"
)

// renderID is a minimal renderer: the title is the item ID plus summary,
// so title changes track summary changes.
func renderID(item model.RemoteItem) string {
	return item.ID + " " + item.Summary
}

func item(id, summary string) model.RemoteItem {
	return model.RemoteItem{
		ID:       id,
		Provider: model.ProviderTypeJira,
		Summary:  summary,
		Status:   model.StatusOpen,
	}
}

func bookmark(id, title string) model.SyncedBookmark {
	return model.SyncedBookmark{
		ProviderID: "jira-main",
		ItemID:     id,
		Title:      title,
		Status:     model.StatusOpen,
	}
}

func TestComputeDisjointSets(t *testing.T) {
	previous := []model.SyncedBookmark{
		bookmark("A-1", "A-1 old"),
		bookmark("A-2", "A-2 old"),
	}
	current := []model.RemoteItem{
		item("B-1", "one"),
		item("B-2", "two"),
		item("B-3", "three"),
	}

	plan := Compute(previous, current, renderID)

	assert.Len(t, plan.Adds, len(current))
	assert.Len(t, plan.Deletes, len(previous))
	assert.Empty(t, plan.Updates)
}

func TestComputeIdenticalSetsIsEmpty(t *testing.T) {
	current := []model.RemoteItem{
		item("A-1", "one"),
		item("A-2", "two"),
	}
	previous := []model.SyncedBookmark{
		bookmark("A-1", renderID(current[0])),
		bookmark("A-2", renderID(current[1])),
	}

	plan := Compute(previous, current, renderID)

	assert.True(t, plan.Empty())
	assert.Equal(t, "No changes", plan.Summary())
}

func TestComputeDetectsTitleChange(t *testing.T) {
	previous := []model.SyncedBookmark{
		bookmark("A-1", "A-1 old summary"),
	}
	current := []model.RemoteItem{
		item("A-1", "new summary"),
	}

	plan := Compute(previous, current, renderID)

	require.Len(t, plan.Updates, 1)
	assert.Equal(t, "A-1 new summary", plan.Updates[0].Title)
	assert.Empty(t, plan.Adds)
	assert.Empty(t, plan.Deletes)
}

func TestComputeDetectsStatusChangeWithStableTitle(t *testing.T) {
	current := []model.RemoteItem{item("A-1", "one")}
	current[0].Status = model.StatusDone

	previous := []model.SyncedBookmark{
		bookmark("A-1", renderID(current[0])),
	}

	plan := Compute(previous, current, renderID)

	require.Len(t, plan.Updates, 1)
	assert.Equal(t, model.StatusDone, plan.Updates[0].Item.Status)
}

func TestComputeOrderFollowsInputs(t *testing.T) {
	previous := []model.SyncedBookmark{
		bookmark("D-2", "D-2 two"),
		bookmark("D-1", "D-1 one"),
	}
	current := []model.RemoteItem{
		item("C-3", "three"),
		item("C-1", "one"),
		item("C-2", "two"),
	}

	plan := Compute(previous, current, renderID)

	addIDs := make([]string, len(plan.Adds))
	for i, a := range plan.Adds {
		addIDs[i] = a.Item.ID
	}
	assert.Equal(t, []string{"C-3", "C-1", "C-2"}, addIDs)

	deleteIDs := make([]string, len(plan.Deletes))
	for i, d := range plan.Deletes {
		deleteIDs[i] = d.ItemID
	}
	assert.Equal(t, []string{"D-2", "D-1"}, deleteIDs)
}

func TestComputeEmptyCurrentDeletesEverything(t *testing.T) {
	previous := []model.SyncedBookmark{
		bookmark("A-1", "A-1 one"),
		bookmark("A-2", "A-2 two"),
	}

	plan := Compute(previous, nil, renderID)

	assert.Empty(t, plan.Adds)
	assert.Empty(t, plan.Updates)
	assert.Len(t, plan.Deletes, 2)
}

func TestComputeDuplicateIdentifiersLastWriteWins(t *testing.T) {
	current := []model.RemoteItem{
		item("A-1", "first occurrence"),
		item("A-2", "other"),
		item("A-1", "second occurrence"),
	}

	plan := Compute(nil, current, renderID)

	require.Len(t, plan.Adds, 2)
	assert.Equal(t, "A-2", plan.Adds[0].Item.ID)
	assert.Equal(t, "A-1", plan.Adds[1].Item.ID)
	assert.Equal(t, "A-1 second occurrence", plan.Adds[1].Title)
}

func TestSummaryCounts(t *testing.T) {
	previous := []model.SyncedBookmark{
		bookmark("A-1", "A-1 old"),
		bookmark("A-9", "A-9 gone"),
	}
	current := []model.RemoteItem{
		item("A-1", "changed"),
		item("A-2", "added"),
	}

	plan := Compute(previous, current, renderID)

	assert.Equal(t, "1 added, 1 updated, 1 removed", plan.Summary())
}
