package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/marksync/internal/logger"
	"github.com/nhle/marksync/internal/model"
	"github.com/nhle/marksync/internal/settings"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	fail error
}

func (f *fakeSender) Send(_ context.Context, title, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, title)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeRecorder struct {
	records []model.NotificationRecord
}

func (f *fakeRecorder) RecordNotification(_ context.Context, n model.NotificationRecord) error {
	f.records = append(f.records, n)
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func allOn() model.AppConfig {
	return model.AppConfig{
		Notifications: model.NotificationSettings{
			Enabled:         true,
			NotifyOnSuccess: true,
			NotifyOnError:   true,
		},
	}
}

func newTestService(
	reader settings.Reader,
	sender Sender,
	recorder Recorder,
) (*Service, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)}
	svc := NewService(sender, reader, recorder, logger.Nop())
	svc.now = clock.Now
	return svc, clock
}

func successEvent(providerID string) Event {
	return Event{
		Type:       EventSuccess,
		ProviderID: providerID,
		Title:      "Sync complete",
		Message:    "2 added, 1 updated, 0 removed",
	}
}

func TestNotifyDelivers(t *testing.T) {
	sender := &fakeSender{}
	recorder := &fakeRecorder{}
	svc, _ := newTestService(settings.NewStatic(allOn()), sender, recorder)

	svc.Notify(context.Background(), successEvent("jira-main"))

	assert.Equal(t, 1, sender.count())
	require.Len(t, recorder.records, 1)
	assert.Equal(t, "jira-main", recorder.records[0].ProviderID)
	assert.Equal(t, string(EventSuccess), recorder.records[0].Kind)
}

func TestNotifyRateLimitDropsSecondCall(t *testing.T) {
	sender := &fakeSender{}
	svc, clock := newTestService(settings.NewStatic(allOn()), sender, nil)

	svc.Notify(context.Background(), successEvent("jira-main"))
	clock.Advance(2 * time.Second)
	svc.Notify(context.Background(), successEvent("jira-main"))

	assert.Equal(t, 1, sender.count())
}

func TestNotifyAllowedAfterIntervalElapses(t *testing.T) {
	sender := &fakeSender{}
	svc, clock := newTestService(settings.NewStatic(allOn()), sender, nil)

	svc.Notify(context.Background(), successEvent("jira-main"))
	clock.Advance(5 * time.Second)
	svc.Notify(context.Background(), successEvent("jira-main"))

	assert.Equal(t, 2, sender.count())
}

func TestNotifyRateLimitIsPerProviderInstance(t *testing.T) {
	sender := &fakeSender{}
	svc, _ := newTestService(settings.NewStatic(allOn()), sender, nil)

	svc.Notify(context.Background(), successEvent("jira-main"))
	svc.Notify(context.Background(), successEvent("github-main"))

	// Two instances of the same provider type rate-limit independently.
	svc.Notify(context.Background(), successEvent("jira-team"))

	assert.Equal(t, 3, sender.count())
}

func TestNotifySettingsGating(t *testing.T) {
	tests := []struct {
		name     string
		settings model.NotificationSettings
		event    EventType
		want     int
	}{
		{
			name:     "globally disabled drops success",
			settings: model.NotificationSettings{NotifyOnSuccess: true},
			event:    EventSuccess,
			want:     0,
		},
		{
			name:     "globally disabled drops error",
			settings: model.NotificationSettings{NotifyOnError: true},
			event:    EventError,
			want:     0,
		},
		{
			name:     "success flag off drops success",
			settings: model.NotificationSettings{Enabled: true, NotifyOnError: true},
			event:    EventSuccess,
			want:     0,
		},
		{
			name:     "error flag on delivers error",
			settings: model.NotificationSettings{Enabled: true, NotifyOnError: true},
			event:    EventError,
			want:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			reader := settings.NewStatic(model.AppConfig{Notifications: tt.settings})
			svc, _ := newTestService(reader, sender, nil)

			svc.Notify(context.Background(), Event{
				Type:       tt.event,
				ProviderID: "jira-main",
				Title:      "t",
			})

			assert.Equal(t, tt.want, sender.count())
		})
	}
}

func TestNotifyReReadsSettingsEachCall(t *testing.T) {
	sender := &fakeSender{}
	reader := settings.NewStatic(model.AppConfig{})
	svc, clock := newTestService(reader, sender, nil)

	svc.Notify(context.Background(), successEvent("jira-main"))
	assert.Equal(t, 0, sender.count())

	// User enables notifications between calls.
	reader.Update(allOn())
	clock.Advance(10 * time.Second)

	svc.Notify(context.Background(), successEvent("jira-main"))
	assert.Equal(t, 1, sender.count())
}

func TestNotifySenderFailureIsSwallowed(t *testing.T) {
	sender := &fakeSender{fail: errors.New("dbus unreachable")}
	recorder := &fakeRecorder{}
	svc, _ := newTestService(settings.NewStatic(allOn()), sender, recorder)

	svc.Notify(context.Background(), successEvent("jira-main"))

	// Failed deliveries leave no history behind.
	assert.Empty(t, recorder.records)
}

func TestNotifyNilRecorder(t *testing.T) {
	sender := &fakeSender{}
	svc, _ := newTestService(settings.NewStatic(allOn()), sender, nil)

	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), successEvent("github-main"))
	})
	assert.Equal(t, 1, sender.count())
}
