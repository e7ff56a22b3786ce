package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAgeDays(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	item := RemoteItem{CreatedAt: now.AddDate(0, 0, -10)}
	assert.Equal(t, 10, item.AgeDays(now))

	// Partial days round down.
	item.CreatedAt = now.Add(-36 * time.Hour)
	assert.Equal(t, 1, item.AgeDays(now))

	item.CreatedAt = time.Time{}
	assert.Equal(t, 0, item.AgeDays(now))

	// Clock skew never yields a negative age.
	item.CreatedAt = now.Add(time.Hour)
	assert.Equal(t, 0, item.AgeDays(now))
}
