// Package coord implements the coordination core for multiple AI agents
// working on the same codebase: agent registration and liveness, inter-agent
// messaging with request/response correlation, advisory file locks, shared
// interface definitions, per-agent todo lists, and completion signals.
//
// All state lives in a Redis-compatible key-value store (internal/store) so
// that agents connecting through separate MCP sessions observe the same
// project picture and state survives server restarts.
package coord

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/splitmind/a2amcp/internal/config"
	"github.com/splitmind/a2amcp/internal/domain"
	"github.com/splitmind/a2amcp/internal/keys"
	"github.com/splitmind/a2amcp/internal/store"
)

// defaultPollInterval is how often a waiting query re-reads its inbox.
const defaultPollInterval = 500 * time.Millisecond

// Service exposes the coordination operations. Methods are safe for
// concurrent use: every store operation is individually atomic and the
// service keeps no mutable state of its own.
type Service struct {
	store  store.Store
	cfg    *config.Config
	logger *log.Logger
	poll   time.Duration
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithPollInterval sets how often a waiting query re-checks its inbox for a
// response.
func WithPollInterval(d time.Duration) ServiceOption {
	return func(s *Service) { s.poll = d }
}

// NewService creates the coordination service on top of the given store.
func NewService(st store.Store, cfg *config.Config, logger *log.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:  st,
		cfg:    cfg,
		logger: logger,
		poll:   defaultPollInterval,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Touch refreshes the session's heartbeat key. Any tool call carrying a
// session name counts as a sign of life.
func (s *Service) Touch(ctx context.Context, projectID, sessionName string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	return s.store.SetEx(ctx, keys.Heartbeat(projectID, sessionName), now, s.cfg.HeartbeatTTL())
}

// broadcastEvent pushes msg to every registered agent's inbox except exclude
// (empty excludes nobody) and returns the recipient count. The message
// timestamp is set here.
func (s *Service) broadcastEvent(ctx context.Context, projectID string, msg domain.Message, exclude string) (int, error) {
	msg.Timestamp = time.Now().UTC()
	raw, err := json.Marshal(msg)
	if err != nil {
		return 0, err
	}
	sessions, err := s.store.HKeys(ctx, keys.Agents(projectID))
	if err != nil {
		return 0, err
	}
	count := 0
	for _, name := range sessions {
		if name == exclude {
			continue
		}
		if err := s.store.RPush(ctx, keys.Messages(projectID, name), string(raw)); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
