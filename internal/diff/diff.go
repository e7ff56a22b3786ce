// Package diff computes the add/update/delete reconciliation plan between
// the previously-synced bookmark set and a freshly fetched item list.
package diff

import (
	"fmt"

	"github.com/nhle/marksync/internal/model"
)

// Addition is a remote item with no existing bookmark, plus its rendered
// title.
type Addition struct {
	Item  model.RemoteItem
	Title string
}

// Update pairs an existing bookmark with the remote item that changed
// underneath it and the newly rendered title.
type Update struct {
	Bookmark model.SyncedBookmark
	Item     model.RemoteItem
	Title    string
}

// Plan is the reconciliation result for one sync cycle. It is transient:
// produced and consumed within a single cycle, never persisted.
type Plan struct {
	Adds    []Addition
	Updates []Update
	Deletes []model.SyncedBookmark
}

// Empty reports whether the plan contains no work.
func (p Plan) Empty() bool {
	return len(p.Adds) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Summary renders the plan's counts for notifications and logs.
func (p Plan) Summary() string {
	if p.Empty() {
		return "No changes"
	}
	return fmt.Sprintf("%d added, %d updated, %d removed",
		len(p.Adds), len(p.Updates), len(p.Deletes))
}

// Compute reconciles previous against current. Items present only in
// current become adds; items present in both become updates when the
// rendered title, status, or URL changed; bookmarks present only in
// previous become deletes.
//
// Adds and updates follow the input order of current; deletes follow the
// stored order of previous. No sorting is applied. Duplicate identifiers in
// current are a provider contract violation and resolve last-write-wins:
// only the final occurrence is reconciled.
//
// An empty current with a non-empty previous yields a delete-everything
// plan; guarding against provider outages is the sync engine's concern,
// not this layer's.
func Compute(
	previous []model.SyncedBookmark,
	current []model.RemoteItem,
	render func(model.RemoteItem) string,
) Plan {
	prevByID := make(map[string]model.SyncedBookmark, len(previous))
	for _, bm := range previous {
		prevByID[bm.ItemID] = bm
	}

	// Index of the last occurrence of each identifier in current, so a
	// duplicated identifier is reconciled exactly once, using the later
	// occurrence.
	lastIndex := make(map[string]int, len(current))
	for i, item := range current {
		lastIndex[item.ID] = i
	}

	var plan Plan
	seen := make(map[string]bool, len(current))

	for i, item := range current {
		if lastIndex[item.ID] != i {
			continue
		}
		seen[item.ID] = true

		title := render(item)

		bm, exists := prevByID[item.ID]
		if !exists {
			plan.Adds = append(plan.Adds, Addition{Item: item, Title: title})
			continue
		}

		if bm.Title != title || bm.Status != item.Status || bm.URL != item.URL {
			plan.Updates = append(plan.Updates, Update{
				Bookmark: bm,
				Item:     item,
				Title:    title,
			})
		}
	}

	for _, bm := range previous {
		if !seen[bm.ItemID] {
			plan.Deletes = append(plan.Deletes, bm)
		}
	}

	return plan
}
