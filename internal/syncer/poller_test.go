package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/marksync/internal/logger"
	"github.com/nhle/marksync/internal/model"
)

func waitForResult(t *testing.T, p *Poller) SyncResult {
	t.Helper()

	select {
	case result := <-p.Results():
		return result
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for sync result")
		return SyncResult{}
	}
}

func TestPollerSyncsImmediatelyOnStart(t *testing.T) {
	p := &fakeProvider{
		id:    "jira-main",
		typ:   model.ProviderTypeJira,
		items: []model.RemoteItem{jiraItem("PROJ-1", "one")},
	}
	eng, _ := newTestEngine(t, p)

	poller := NewPoller(eng, logger.Nop())
	poller.Add(model.ProviderConfig{ID: "jira-main", PollIntervalSec: 3600})

	poller.Start(context.Background())
	defer poller.Stop()

	result := waitForResult(t, poller)
	assert.True(t, result.Success)
	assert.Equal(t, "jira-main", result.ProviderID)
	assert.Equal(t, 1, result.Added)
}

func TestPollerTriggerRunsExtraCycle(t *testing.T) {
	p := &fakeProvider{
		id:    "jira-main",
		typ:   model.ProviderTypeJira,
		items: []model.RemoteItem{jiraItem("PROJ-1", "one")},
	}
	eng, _ := newTestEngine(t, p)

	poller := NewPoller(eng, logger.Nop())
	poller.Add(model.ProviderConfig{ID: "jira-main", PollIntervalSec: 3600})

	poller.Start(context.Background())
	defer poller.Stop()

	first := waitForResult(t, poller)
	require.True(t, first.Success)

	poller.Trigger("jira-main")
	second := waitForResult(t, poller)
	assert.True(t, second.Success)
	assert.Equal(t, "No changes", second.Message)
}

func TestPollerTriggerReachesNamedProvider(t *testing.T) {
	jira := &fakeProvider{
		id:    "jira-main",
		typ:   model.ProviderTypeJira,
		items: []model.RemoteItem{jiraItem("PROJ-1", "one")},
	}
	gh := &fakeProvider{
		id:  "github-main",
		typ: model.ProviderTypeGitHub,
	}
	eng, _ := newTestEngine(t, jira, gh)

	poller := NewPoller(eng, logger.Nop())
	poller.Add(model.ProviderConfig{ID: "jira-main", PollIntervalSec: 3600})
	poller.Add(model.ProviderConfig{ID: "github-main", PollIntervalSec: 3600})

	poller.Start(context.Background())
	defer poller.Stop()

	// Drain the two startup cycles.
	waitForResult(t, poller)
	waitForResult(t, poller)

	// With several loops running, every trigger must reach the loop for
	// the named provider, not whichever loop happens to wake first.
	for i := 0; i < 5; i++ {
		poller.Trigger("jira-main")
		result := waitForResult(t, poller)
		assert.Equal(t, "jira-main", result.ProviderID)
	}
}

func TestPollerStatusReflectsFailure(t *testing.T) {
	p := &fakeProvider{
		id:  "jira-main",
		typ: model.ProviderTypeJira,
		err: errors.New("jira unreachable"),
	}
	eng, _ := newTestEngine(t, p)

	poller := NewPoller(eng, logger.Nop())
	poller.Add(model.ProviderConfig{ID: "jira-main", PollIntervalSec: 3600})

	poller.Start(context.Background())
	defer poller.Stop()

	result := waitForResult(t, poller)
	require.Error(t, result.Err)

	statuses := poller.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, PollError, statuses[0].State)
	assert.Error(t, statuses[0].Error)
	assert.True(t, statuses[0].LastSync.IsZero())
}

func TestPollerStopHaltsLoops(t *testing.T) {
	p := &fakeProvider{
		id:    "jira-main",
		typ:   model.ProviderTypeJira,
		items: []model.RemoteItem{jiraItem("PROJ-1", "one")},
	}
	eng, _ := newTestEngine(t, p)

	poller := NewPoller(eng, logger.Nop())
	poller.Add(model.ProviderConfig{ID: "jira-main", PollIntervalSec: 3600})

	poller.Start(context.Background())
	waitForResult(t, poller)

	done := make(chan struct{})
	go func() {
		poller.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}
