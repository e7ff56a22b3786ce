// Package format renders bookmark titles for remote items. Rendering is a
// pure function of the item and the enabled options, so two syncs of an
// unchanged item always produce the same title.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/nhle/marksync/internal/model"
)

// minAgeDays is the threshold below which the age decoration is omitted.
const minAgeDays = 7

var priorityEmoji = map[int]string{
	model.PriorityCritical: "🚨",
	model.PriorityHigh:     "🔴",
	model.PriorityMedium:   "🟡",
	model.PriorityLow:      "🟢",
	model.PriorityLowest:   "⚪",
}

var priorityLabel = map[int]string{
	model.PriorityCritical: "critical",
	model.PriorityHigh:     "high",
	model.PriorityMedium:   "medium",
	model.PriorityLow:      "low",
	model.PriorityLowest:   "lowest",
}

var typeEmoji = map[string]string{
	model.TypeBug:         "🐛",
	model.TypeStory:       "✨",
	model.TypeTask:        "📋",
	model.TypePullRequest: "🔀",
}

var statusEmoji = map[string]string{
	model.StatusOpen:       "🔵",
	model.StatusInProgress: "🚧",
	model.StatusReview:     "👀",
	model.StatusMerged:     "🟣",
	model.StatusDone:       "✅",
}

// Render produces the bookmark title for item under the given options.
//
// Decorations appear in a fixed order: identifier, priority, type, status,
// assignee (arrow-prefixed), creator (colon-suffixed), age (only when the
// item is at least a week old), then the summary. A decoration whose
// underlying field is absent is omitted entirely. With no decoration flags
// enabled the title is the bare summary followed by a trailing identifier
// marker.
func Render(item model.RemoteItem, opts model.TitleFormatOptions) string {
	if !anyDecoration(opts) {
		return fmt.Sprintf("%s [%s]", item.Summary, item.ID)
	}

	segments := []string{"[" + item.ID + "]"}

	if opts.ShowPriority {
		if seg := prioritySegment(item.Priority, opts.UseEmoji); seg != "" {
			segments = append(segments, seg)
		}
	}
	if opts.ShowType && item.Type != "" {
		segments = append(segments, typeSegment(item.Type, opts.UseEmoji))
	}
	if opts.ShowStatus && item.Status != "" {
		segments = append(segments, statusSegment(item.Status, opts.UseEmoji))
	}
	if opts.ShowAssignee && item.Assignee != "" {
		segments = append(segments, "→@"+item.Assignee)
	}
	if opts.ShowCreator && item.Creator != "" {
		segments = append(segments, item.Creator+":")
	}
	if opts.ShowAge {
		if seg := ageSegment(item, opts.UseEmoji); seg != "" {
			segments = append(segments, seg)
		}
	}

	segments = append(segments, item.Summary)
	return strings.Join(segments, " ")
}

// anyDecoration reports whether at least one decoration flag is enabled.
// UseEmoji is a rendering mode, not a decoration.
func anyDecoration(opts model.TitleFormatOptions) bool {
	return opts.ShowStatus || opts.ShowPriority || opts.ShowType ||
		opts.ShowAssignee || opts.ShowCreator || opts.ShowAge
}

func prioritySegment(priority int, emoji bool) string {
	if emoji {
		return priorityEmoji[priority]
	}
	label, ok := priorityLabel[priority]
	if !ok {
		return ""
	}
	return "(" + label + ")"
}

func typeSegment(itemType string, emoji bool) string {
	if emoji {
		if e, ok := typeEmoji[itemType]; ok {
			return e
		}
	}
	return "(" + itemType + ")"
}

func statusSegment(status string, emoji bool) string {
	if emoji {
		if e, ok := statusEmoji[status]; ok {
			return e
		}
	}
	return "(" + status + ")"
}

// ageSegment renders the item age in days. The reference time is the item's
// own FetchedAt, keeping the result deterministic for a given fetch.
func ageSegment(item model.RemoteItem, emoji bool) string {
	ref := item.FetchedAt
	if ref.IsZero() {
		ref = time.Now()
	}

	days := item.AgeDays(ref)
	if days < minAgeDays {
		return ""
	}

	if emoji {
		return fmt.Sprintf("⏳%dd", days)
	}
	return fmt.Sprintf("(%dd)", days)
}
