package coord

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/splitmind/a2amcp/internal/domain"
	"github.com/splitmind/a2amcp/internal/keys"
)

// newTodoID returns a time-ordered unique todo id.
func newTodoID() string {
	return "todo-" + uuid.Must(uuid.NewV7()).String()
}

// AddTodo appends a pending todo to the session's list and returns it.
func (s *Service) AddTodo(ctx context.Context, projectID, sessionName, text string, priority int) (*domain.Todo, error) {
	todo := domain.Todo{
		ID:        newTodoID(),
		Text:      text,
		Status:    domain.TodoPending,
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(todo)
	if err != nil {
		return nil, err
	}
	if err := s.store.RPush(ctx, keys.Todos(projectID, sessionName), string(raw)); err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo changes the status of one todo, stamping completed_at when it
// completes. Completion is broadcast to the whole project. Returns
// ErrTodoNotFound when no todo with the given id exists.
func (s *Service) UpdateTodo(ctx context.Context, projectID, sessionName, todoID, status string) error {
	todosKey := keys.Todos(projectID, sessionName)
	raws, err := s.store.LRange(ctx, todosKey, 0, -1)
	if err != nil {
		return err
	}

	updated := false
	rewritten := make([]string, 0, len(raws))
	for _, raw := range raws {
		var todo domain.Todo
		if err := json.Unmarshal([]byte(raw), &todo); err != nil {
			rewritten = append(rewritten, raw)
			continue
		}
		if todo.ID == todoID {
			todo.Status = status
			if status == domain.TodoCompleted {
				now := time.Now().UTC()
				todo.CompletedAt = &now
			}
			updated = true
		}
		out, err := json.Marshal(todo)
		if err != nil {
			return err
		}
		rewritten = append(rewritten, string(out))
	}
	if !updated {
		return ErrTodoNotFound
	}

	// Rewrite the whole list so order is preserved.
	if err := s.store.Del(ctx, todosKey); err != nil {
		return err
	}
	if len(rewritten) > 0 {
		if err := s.store.RPush(ctx, todosKey, rewritten...); err != nil {
			return err
		}
	}

	if status == domain.TodoCompleted {
		if _, err := s.broadcastEvent(ctx, projectID, domain.Message{
			Type:        domain.EventTodoCompleted,
			SessionName: sessionName,
			TodoID:      todoID,
		}, ""); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceTodos swaps the session's entire todo list for fresh pending items
// and broadcasts the new plan to the other agents.
func (s *Service) ReplaceTodos(ctx context.Context, projectID, sessionName string, items []string) ([]domain.Todo, error) {
	now := time.Now().UTC()
	todos := make([]domain.Todo, 0, len(items))
	raws := make([]string, 0, len(items))
	for _, text := range items {
		todo := domain.Todo{
			ID:        newTodoID(),
			Text:      text,
			Status:    domain.TodoPending,
			Priority:  1,
			CreatedAt: now,
		}
		raw, err := json.Marshal(todo)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
		raws = append(raws, string(raw))
	}

	todosKey := keys.Todos(projectID, sessionName)
	if err := s.store.Del(ctx, todosKey); err != nil {
		return nil, err
	}
	if len(raws) > 0 {
		if err := s.store.RPush(ctx, todosKey, raws...); err != nil {
			return nil, err
		}
	}

	summary := domain.Summarize(todos)
	if _, err := s.broadcastEvent(ctx, projectID, domain.Message{
		Type:        domain.EventTodoUpdate,
		SessionName: sessionName,
		TodoSummary: &summary,
	}, sessionName); err != nil {
		return nil, err
	}
	return todos, nil
}

// ListTodos returns the session's todos in insertion order.
func (s *Service) ListTodos(ctx context.Context, projectID, sessionName string) ([]domain.Todo, error) {
	raws, err := s.store.LRange(ctx, keys.Todos(projectID, sessionName), 0, -1)
	if err != nil {
		return nil, err
	}
	todos := make([]domain.Todo, 0, len(raws))
	for _, raw := range raws {
		var t domain.Todo
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			s.logger.Printf("Skipping corrupt todo for %s/%s: %v", projectID, sessionName, err)
			continue
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// AllTodos returns every agent's todos keyed by session name, each bundled
// with the agent's task and completion counts.
func (s *Service) AllTodos(ctx context.Context, projectID string) (map[string]domain.AgentTodos, error) {
	agentsKey := keys.Agents(projectID)
	sessions, err := s.store.HKeys(ctx, agentsKey)
	if err != nil {
		return nil, err
	}

	all := make(map[string]domain.AgentTodos, len(sessions))
	for _, sessionName := range sessions {
		todos, err := s.ListTodos(ctx, projectID, sessionName)
		if err != nil {
			return nil, err
		}
		var agent domain.Agent
		if raw, err := s.store.HGet(ctx, agentsKey, sessionName); err == nil {
			_ = json.Unmarshal([]byte(raw), &agent)
		}
		completed := 0
		for _, t := range todos {
			if t.Status == domain.TodoCompleted {
				completed++
			}
		}
		all[sessionName] = domain.AgentTodos{
			TaskID:      agent.TaskID,
			Description: agent.Description,
			TotalTodos:  len(todos),
			Completed:   completed,
			Todos:       todos,
		}
	}
	return all, nil
}
