package coord

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/splitmind/a2amcp/internal/domain"
	"github.com/splitmind/a2amcp/internal/keys"
)

// MarkTaskCompleted records the completion, flips the agent record to
// completed, and drops a status file for orchestrators that watch the
// filesystem instead of the store. The file write is best-effort: failures
// are logged, never surfaced.
func (s *Service) MarkTaskCompleted(ctx context.Context, projectID, sessionName, taskID string) error {
	completion := domain.Completion{
		TaskID:      taskID,
		SessionName: sessionName,
		CompletedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(completion)
	if err != nil {
		return err
	}
	if err := s.store.HSet(ctx, keys.CompletedTasks(projectID), taskID, string(raw)); err != nil {
		return err
	}

	agentsKey := keys.Agents(projectID)
	if rawAgent, err := s.store.HGet(ctx, agentsKey, sessionName); err == nil {
		var agent domain.Agent
		if json.Unmarshal([]byte(rawAgent), &agent) == nil {
			agent.Status = domain.StatusCompleted
			if out, err := json.Marshal(agent); err == nil {
				if err := s.store.HSet(ctx, agentsKey, sessionName, string(out)); err != nil {
					return err
				}
			}
		}
	}

	s.writeStatusFile(sessionName)
	s.logger.Printf("Task %s marked as completed by %s", taskID, sessionName)
	return nil
}

// writeStatusFile drops the completion marker at {status_dir}/{session}.status.
func (s *Service) writeStatusFile(sessionName string) {
	dir := s.cfg.StatusDir
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Printf("Failed to create status dir %s: %v", dir, err)
		return
	}
	path := filepath.Join(dir, sessionName+".status")
	if err := os.WriteFile(path, []byte("COMPLETED\n"), 0o644); err != nil {
		s.logger.Printf("Failed to write status file %s: %v", path, err)
	}
}

// CompletedTasks returns recorded completions keyed by task id.
func (s *Service) CompletedTasks(ctx context.Context, projectID string) (map[string]domain.Completion, error) {
	data, err := s.store.HGetAll(ctx, keys.CompletedTasks(projectID))
	if err != nil {
		return nil, err
	}
	completions := make(map[string]domain.Completion, len(data))
	for taskID, raw := range data {
		var c domain.Completion
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			continue
		}
		completions[taskID] = c
	}
	return completions, nil
}
