package coord

import (
	"context"
	"time"

	"github.com/splitmind/a2amcp/internal/domain"
	"github.com/splitmind/a2amcp/internal/keys"
)

// defaultReaperInterval is how often the reaper sweeps for dead agents.
const defaultReaperInterval = 30 * time.Second

// Reaper removes agents whose heartbeat key has expired: their locks, todos,
// and inbox are cleaned up and the survivors are notified. It runs as a
// background loop beside the server.
type Reaper struct {
	svc      *Service
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// ReaperOption configures the reaper.
type ReaperOption func(*Reaper)

// WithReaperInterval sets the sweep interval.
func WithReaperInterval(d time.Duration) ReaperOption {
	return func(r *Reaper) { r.interval = d }
}

// NewReaper creates a reaper for the given service.
func NewReaper(svc *Service, opts ...ReaperOption) *Reaper {
	r := &Reaper{
		svc:      svc,
		interval: defaultReaperInterval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Start begins the sweep loop. Returns when ctx is cancelled or Stop is
// called.
func (r *Reaper) Start(ctx context.Context) {
	defer close(r.doneCh)
	r.svc.logger.Printf("Reaper: started (interval=%s)", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.svc.logger.Println("Reaper: stopped (context cancelled)")
			return
		case <-r.stopCh:
			r.svc.logger.Println("Reaper: stopped")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// Stop signals the reaper to stop and waits for the loop to exit.
func (r *Reaper) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// CheckOnce runs a single sweep cycle (for tests or a manual trigger).
func (r *Reaper) CheckOnce(ctx context.Context) {
	r.sweep(ctx)
}

// sweep scans every project for registered agents without a live heartbeat
// key, cleans them up, and broadcasts the timeout. Errors are logged and the
// sweep moves on; the next cycle retries.
func (r *Reaper) sweep(ctx context.Context) {
	agentKeys, err := r.svc.store.Keys(ctx, keys.AgentsPattern)
	if err != nil {
		r.svc.logger.Printf("Reaper: list projects: %v", err)
		return
	}
	for _, agentsKey := range agentKeys {
		projectID := keys.ProjectFromAgentsKey(agentsKey)
		if projectID == "" {
			continue
		}
		sessions, err := r.svc.store.HKeys(ctx, agentsKey)
		if err != nil {
			r.svc.logger.Printf("Reaper: list agents for %s: %v", projectID, err)
			continue
		}
		for _, sessionName := range sessions {
			alive, err := r.svc.store.Exists(ctx, keys.Heartbeat(projectID, sessionName))
			if err != nil {
				r.svc.logger.Printf("Reaper: heartbeat check %s/%s: %v", projectID, sessionName, err)
				continue
			}
			if alive {
				continue
			}
			if err := r.svc.cleanupAgent(ctx, projectID, sessionName); err != nil {
				r.svc.logger.Printf("Reaper: cleanup %s/%s: %v", projectID, sessionName, err)
				continue
			}
			if _, err := r.svc.broadcastEvent(ctx, projectID, domain.Message{
				Type:        domain.EventAgentTimeout,
				SessionName: sessionName,
			}, ""); err != nil {
				r.svc.logger.Printf("Reaper: notify timeout of %s/%s: %v", projectID, sessionName, err)
			}
			r.svc.logger.Printf("Reaper: removed dead agent %s in project %s", sessionName, projectID)
		}
	}
}
