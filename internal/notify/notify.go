// Package notify turns sync outcomes into platform notifications. Delivery
// is gated by the user's notification settings (re-read at call time) and
// rate-limited per provider.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/nhle/marksync/internal/logger"
	"github.com/nhle/marksync/internal/model"
	"github.com/nhle/marksync/internal/settings"
)

// minInterval is the per-provider minimum gap between notifications.
// Events arriving earlier are dropped, not queued.
const minInterval = 5 * time.Second

// EventType distinguishes success and error outcomes.
type EventType string

const (
	EventSuccess EventType = "success"
	EventError   EventType = "error"
)

// Event is one sync outcome to surface to the user.
type Event struct {
	Type       EventType
	ProviderID string
	Title      string
	Message    string
}

// Sender delivers a notification to the platform.
type Sender interface {
	Send(ctx context.Context, title, message string) error
}

// Recorder persists delivered notifications as local history. The bookmark
// store implements it; a nil recorder skips history.
type Recorder interface {
	RecordNotification(ctx context.Context, n model.NotificationRecord) error
}

// Service is the rate-limited, settings-gated notification dispatcher.
// The per-provider last-sent map is owned by the service instance.
type Service struct {
	sender   Sender
	settings settings.Reader
	recorder Recorder
	log      *logger.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
	interval time.Duration
	now      func() time.Time
}

// NewService creates a notification service. recorder may be nil.
func NewService(
	sender Sender,
	reader settings.Reader,
	recorder Recorder,
	log *logger.Logger,
) *Service {
	return &Service{
		sender:   sender,
		settings: reader,
		recorder: recorder,
		log:      log.Child("Notify"),
		lastSent: make(map[string]time.Time),
		interval: minInterval,
		now:      time.Now,
	}
}

// Notify delivers the event if settings allow it and the provider's rate
// limit has elapsed. Delivery failures are logged and swallowed; they never
// affect the sync outcome.
func (s *Service) Notify(ctx context.Context, ev Event) {
	cfg, err := s.settings.Current()
	if err != nil {
		s.log.Warn("reading notification settings failed", logger.Error(err))
		return
	}

	if !allowed(cfg.Notifications, ev.Type) {
		s.log.Debug("notification disabled by settings",
			logger.String("provider", ev.ProviderID),
			logger.String("type", string(ev.Type)))
		return
	}

	if !s.acquire(ev.ProviderID) {
		s.log.Debug("notification suppressed by rate limit",
			logger.String("provider", ev.ProviderID))
		return
	}

	if err := s.sender.Send(ctx, ev.Title, ev.Message); err != nil {
		s.log.Warn("notification delivery failed",
			logger.String("provider", ev.ProviderID),
			logger.Error(err))
		return
	}

	if s.recorder != nil {
		record := model.NotificationRecord{
			ProviderID: ev.ProviderID,
			Kind:       string(ev.Type),
			Title:      ev.Title,
			Message:    ev.Message,
			CreatedAt:  s.now(),
		}
		if err := s.recorder.RecordNotification(ctx, record); err != nil {
			s.log.Warn("recording notification failed", logger.Error(err))
		}
	}
}

// allowed checks the global enable flag plus the type-specific flag.
func allowed(ns model.NotificationSettings, t EventType) bool {
	if !ns.Enabled {
		return false
	}
	switch t {
	case EventSuccess:
		return ns.NotifyOnSuccess
	case EventError:
		return ns.NotifyOnError
	default:
		return false
	}
}

// acquire reports whether the provider instance's minimum interval has
// elapsed and, if so, records the send time.
func (s *Service) acquire(providerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if last, ok := s.lastSent[providerID]; ok && now.Sub(last) < s.interval {
		return false
	}

	s.lastSent[providerID] = now
	return true
}
