package model

import "time"

// ProviderType identifies the origin system of a remote item.
type ProviderType string

const (
	ProviderTypeGitHub ProviderType = "github"
	ProviderTypeJira   ProviderType = "jira"
)

// Normalized status constants used across all provider types.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusMerged     = "merged"
	StatusDone       = "done"
)

// Normalized priority constants (lower number = higher priority).
const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
	PriorityLowest   = 5
)

// Normalized item type constants.
const (
	TypeBug         = "bug"
	TypeStory       = "story"
	TypeTask        = "task"
	TypePullRequest = "pull_request"
)

// RemoteItem is the unified representation of one fetched unit (a pull
// request or an issue) from a provider for one sync cycle. It is an
// immutable snapshot owned by the sync engine for the duration of the cycle.
type RemoteItem struct {
	// ID is the provider-qualified identifier, unique within the
	// provider's namespace (e.g., "github:nhle/marksync#42", "PROJ-123").
	ID string `json:"id"`

	// Provider identifies which integration produced this item.
	Provider ProviderType `json:"provider"`

	// ProviderID is the identifier of the configured provider instance.
	ProviderID string `json:"provider_id"`

	// Summary is the human-readable title of the item.
	Summary string `json:"summary"`

	// URL is the direct link back to the item in its source system.
	URL string `json:"url"`

	// Status is the normalized status (use Status* constants).
	Status string `json:"status"`

	// Priority is the normalized priority level (use Priority* constants).
	// Zero means the provider reported no priority.
	Priority int `json:"priority"`

	// Type is the normalized item type (use Type* constants).
	Type string `json:"type"`

	// Assignee is the display name or username of the assigned person.
	Assignee string `json:"assignee"`

	// Creator is the display name or username of the item's author.
	Creator string `json:"creator"`

	// CreatedAt is when the item was created in the source system.
	CreatedAt time.Time `json:"created_at"`

	// FetchedAt is when this item was retrieved from the provider.
	FetchedAt time.Time `json:"fetched_at"`
}

// AgeDays returns the whole number of days since the item was created,
// measured against now. Items with an unknown creation time report zero.
func (r RemoteItem) AgeDays(now time.Time) int {
	if r.CreatedAt.IsZero() {
		return 0
	}
	days := int(now.Sub(r.CreatedAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// SyncedBookmark is a local bookmark entry tracking a previously-synced
// RemoteItem. Rows are keyed by (ProviderID, ItemID); between sync cycles
// the mapping from item IDs to bookmarks is a bijection for each configured
// provider instance, so two instances of the same provider type never touch
// each other's rows.
type SyncedBookmark struct {
	// ProviderID identifies the configured provider instance that owns
	// this bookmark.
	ProviderID string `json:"provider_id" db:"provider_id"`

	// ItemID is the provider-qualified identifier of the tracked item.
	ItemID string `json:"item_id" db:"item_id"`

	// Title is the last rendered bookmark title.
	Title string `json:"title" db:"title"`

	// URL is the bookmark target.
	URL string `json:"url" db:"url"`

	// Status is the item status as of the last sync, tracked so status
	// changes are detected even when the title format omits status.
	Status string `json:"status" db:"status"`

	// Priority is the item priority as of the last sync.
	Priority int `json:"priority" db:"priority"`

	// Position is the bookmark's stable ordering within its provider
	// folder, following the provider's fetch order at creation time.
	Position int `json:"position" db:"position"`

	// CreatedAt is when the bookmark was first created locally.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is updated on any local mutation.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NotificationRecord is one delivered sync-outcome notification, kept as
// local history.
type NotificationRecord struct {
	// ID is the unique identifier for this record.
	ID string `json:"id" db:"id"`

	// ProviderID identifies the provider instance whose sync produced the
	// event.
	ProviderID string `json:"provider_id" db:"provider_id"`

	// Kind is "success" or "error".
	Kind string `json:"kind" db:"kind"`

	// Title is the notification headline.
	Title string `json:"title" db:"title"`

	// Message is the notification body.
	Message string `json:"message" db:"message"`

	// CreatedAt is when the notification was delivered.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
