package coord

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/splitmind/a2amcp/internal/domain"
	"github.com/splitmind/a2amcp/internal/keys"
	"github.com/splitmind/a2amcp/internal/store"
)

// RegisterResult reports a successful registration.
type RegisterResult struct {
	// OtherAgents lists the other sessions registered in the project, sorted.
	OtherAgents []string
}

// Register adds an agent to a project, arms its heartbeat, clears any state
// left behind by a previous run of the same session name, and announces the
// arrival to the other agents.
func (s *Service) Register(ctx context.Context, projectID, sessionName, taskID, branch, description string) (*RegisterResult, error) {
	agent := domain.Agent{
		TaskID:      taskID,
		Branch:      branch,
		Description: description,
		Status:      domain.StatusActive,
		StartedAt:   time.Now().UTC(),
		ProjectID:   projectID,
	}
	raw, err := json.Marshal(agent)
	if err != nil {
		return nil, err
	}
	if err := s.store.HSet(ctx, keys.Agents(projectID), sessionName, string(raw)); err != nil {
		return nil, err
	}
	if err := s.Touch(ctx, projectID, sessionName); err != nil {
		return nil, err
	}
	// Session names get reused after crashes; stale todos or queued messages
	// from the previous life would only mislead the new agent.
	if err := s.store.Del(ctx, keys.Todos(projectID, sessionName), keys.Messages(projectID, sessionName)); err != nil {
		return nil, err
	}
	if _, err := s.broadcastEvent(ctx, projectID, domain.Message{
		Type:        domain.EventAgentJoined,
		SessionName: sessionName,
		Description: description,
	}, sessionName); err != nil {
		return nil, err
	}
	sessions, err := s.store.HKeys(ctx, keys.Agents(projectID))
	if err != nil {
		return nil, err
	}
	others := make([]string, 0, len(sessions))
	for _, name := range sessions {
		if name != sessionName {
			others = append(others, name)
		}
	}
	sort.Strings(others)
	s.logger.Printf("Agent %s registered for project %s", sessionName, projectID)
	return &RegisterResult{OtherAgents: others}, nil
}

// Projects returns the ids of every project with at least one registered
// agent, sorted.
func (s *Service) Projects(ctx context.Context) ([]string, error) {
	agentKeys, err := s.store.Keys(ctx, keys.AgentsPattern)
	if err != nil {
		return nil, err
	}
	projects := make([]string, 0, len(agentKeys))
	for _, key := range agentKeys {
		if id := keys.ProjectFromAgentsKey(key); id != "" {
			projects = append(projects, id)
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// ListAgents returns every registered agent in the project keyed by session
// name.
func (s *Service) ListAgents(ctx context.Context, projectID string) (map[string]domain.Agent, error) {
	data, err := s.store.HGetAll(ctx, keys.Agents(projectID))
	if err != nil {
		return nil, err
	}
	agents := make(map[string]domain.Agent, len(data))
	for name, raw := range data {
		var a domain.Agent
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			s.logger.Printf("Skipping corrupt agent record %s/%s: %v", projectID, name, err)
			continue
		}
		agents[name] = a
	}
	return agents, nil
}

// Unregister removes an agent and everything it holds, then announces the
// departure with a final todo summary. Returns ErrAgentNotFound when the
// session is not registered.
func (s *Service) Unregister(ctx context.Context, projectID, sessionName string) (*domain.TodoSummary, string, error) {
	agentsKey := keys.Agents(projectID)
	ok, err := s.store.HExists(ctx, agentsKey, sessionName)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrAgentNotFound
	}

	var taskID string
	if raw, err := s.store.HGet(ctx, agentsKey, sessionName); err == nil {
		var a domain.Agent
		if json.Unmarshal([]byte(raw), &a) == nil {
			taskID = a.TaskID
		}
	}

	todos, err := s.ListTodos(ctx, projectID, sessionName)
	if err != nil {
		return nil, "", err
	}
	summary := domain.Summarize(todos)

	if err := s.cleanupAgent(ctx, projectID, sessionName); err != nil {
		return nil, "", err
	}

	// No exclusion: the departing agent is already gone from the roster.
	if _, err := s.broadcastEvent(ctx, projectID, domain.Message{
		Type:        domain.EventAgentLeft,
		Session:     sessionName,
		TaskID:      taskID,
		TodoSummary: &summary,
	}, ""); err != nil {
		return nil, "", err
	}

	s.logger.Printf("Agent %s unregistered from project %s", sessionName, projectID)
	return &summary, taskID, nil
}

// cleanupAgent removes everything a session holds. Lock cleanup runs first:
// readers treat an orphan lock as held, so locks must be gone before the
// agent record is.
func (s *Service) cleanupAgent(ctx context.Context, projectID, sessionName string) error {
	lockKeys, err := s.store.Keys(ctx, keys.FileLockPattern(projectID))
	if err != nil {
		return err
	}
	for _, key := range lockKeys {
		raw, err := s.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue // expired between scan and read
			}
			return err
		}
		var lock domain.FileLock
		if err := json.Unmarshal([]byte(raw), &lock); err != nil {
			continue
		}
		if lock.Session == sessionName {
			if err := s.store.Del(ctx, key); err != nil {
				return err
			}
		}
	}
	if err := s.store.Del(ctx, keys.Todos(projectID, sessionName), keys.Messages(projectID, sessionName)); err != nil {
		return err
	}
	if err := s.store.HDel(ctx, keys.Agents(projectID), sessionName); err != nil {
		return err
	}
	return s.store.Del(ctx, keys.Heartbeat(projectID, sessionName))
}
