package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/nhle/marksync/internal/logger"
	"github.com/nhle/marksync/internal/model"
)

// PollState represents the current state of a provider's polling loop.
type PollState int

const (
	PollIdle PollState = iota
	PollRunning
	PollError
)

// PollStatus holds the polling state for a single provider.
type PollStatus struct {
	ProviderID string
	State      PollState
	LastSync   time.Time
	Error      error
}

// pollEntry pairs a provider instance ID with its poll interval and its
// own trigger channel, so a manual trigger always reaches the loop that
// owns the provider.
type pollEntry struct {
	providerID string
	interval   time.Duration
	triggerCh  chan struct{}
}

// defaultInterval is used when a provider has no configured interval.
const defaultInterval = 5 * time.Minute

// Poller runs periodic sync cycles, one goroutine per provider. Because
// each provider has exactly one loop, cycles for the same provider never
// overlap; cycles for different providers run concurrently.
type Poller struct {
	engine  *Engine
	log     *logger.Logger
	entries []pollEntry

	mu       sync.Mutex
	statuses map[string]*PollStatus
	running  bool

	resultCh chan SyncResult
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewPoller creates a poller for the given engine.
func NewPoller(engine *Engine, log *logger.Logger) *Poller {
	return &Poller{
		engine:   engine,
		log:      log.Child("Poller"),
		statuses: make(map[string]*PollStatus),
		resultCh: make(chan SyncResult, 16),
		stopCh:   make(chan struct{}),
	}
}

// Add registers a provider polling loop with the given configuration.
func (p *Poller) Add(cfg model.ProviderConfig) {
	interval := time.Duration(cfg.PollIntervalSec) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, pollEntry{
		providerID: cfg.ID,
		interval:   interval,
		triggerCh:  make(chan struct{}, 1),
	})
	p.statuses[cfg.ID] = &PollStatus{ProviderID: cfg.ID, State: PollIdle}
}

// Start launches one polling goroutine per registered provider. Each loop
// syncs immediately, then on every tick or manual trigger, until Stop is
// called or the context is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	entries := make([]pollEntry, len(p.entries))
	copy(entries, p.entries)
	p.mu.Unlock()

	for _, entry := range entries {
		p.wg.Add(1)
		go p.pollLoop(ctx, entry)
	}
}

// Stop halts all polling goroutines and waits for in-flight cycles.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
}

// Trigger requests an immediate sync of the named provider. A trigger for
// an unknown provider is ignored; one already pending for the same provider
// absorbs the request.
func (p *Poller) Trigger(providerID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, entry := range p.entries {
		if entry.providerID != providerID {
			continue
		}
		select {
		case entry.triggerCh <- struct{}{}:
		default:
		}
		return
	}
}

// Results exposes completed sync results. The channel is never closed;
// consumers should select against their own done signal.
func (p *Poller) Results() <-chan SyncResult {
	return p.resultCh
}

// Statuses returns the current polling status of all providers.
func (p *Poller) Statuses() []PollStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]PollStatus, 0, len(p.statuses))
	for _, s := range p.statuses {
		statuses = append(statuses, *s)
	}
	return statuses
}

// pollLoop runs the polling loop for a single provider.
func (p *Poller) pollLoop(ctx context.Context, entry pollEntry) {
	defer p.wg.Done()

	ticker := time.NewTicker(entry.interval)
	defer ticker.Stop()

	p.runOnce(ctx, entry.providerID)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx, entry.providerID)
		case <-entry.triggerCh:
			p.log.Info("manual sync triggered",
				logger.String("provider", entry.providerID))
			p.runOnce(ctx, entry.providerID)
		}
	}
}

// runOnce executes a sync cycle and publishes the result.
func (p *Poller) runOnce(ctx context.Context, providerID string) {
	p.setStatus(providerID, PollRunning, nil)

	result := p.engine.RunSync(ctx, providerID)

	if result.Err != nil {
		p.setStatus(providerID, PollError, result.Err)
	} else {
		p.setStatus(providerID, PollIdle, nil)
	}

	// Drop the result if nobody is draining the channel; the poller must
	// never block on a slow consumer.
	select {
	case p.resultCh <- result:
	default:
	}
}

// setStatus updates the polling status for a provider.
func (p *Poller) setStatus(providerID string, state PollState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[providerID]
	if !ok {
		return
	}

	status.State = state
	status.Error = err
	if state == PollIdle && err == nil {
		status.LastSync = time.Now()
	}
}
