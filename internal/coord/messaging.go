package coord

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/splitmind/a2amcp/internal/domain"
	"github.com/splitmind/a2amcp/internal/keys"
)

// SendQuery drops a query in the recipient's inbox and returns the message
// id used for response correlation. Returns an UnknownRecipientError when
// the target session is not registered.
func (s *Service) SendQuery(ctx context.Context, projectID, from, to, queryType, query string, requiresResponse bool) (string, error) {
	ok, err := s.store.HExists(ctx, keys.Agents(projectID), to)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &UnknownRecipientError{Session: to, ProjectID: projectID}
	}
	msg := domain.Message{
		ID:               fmt.Sprintf("%s-%d", from, time.Now().UnixNano()),
		From:             from,
		Type:             domain.TypeQuery,
		QueryType:        queryType,
		Content:          query,
		RequiresResponse: requiresResponse,
		Timestamp:        time.Now().UTC(),
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	if err := s.store.RPush(ctx, keys.Messages(projectID, to), string(raw)); err != nil {
		return "", err
	}
	return msg.ID, nil
}

// AwaitResponse polls the sender's own inbox for a response to messageID
// coming from the queried session, removes just that message, and returns
// its content. Unrelated messages stay queued for a later check. Returns
// ErrTimeout once the deadline passes without a match.
func (s *Service) AwaitResponse(ctx context.Context, projectID, from, to, messageID string, timeout time.Duration) (string, error) {
	inbox := keys.Messages(projectID, from)
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		raws, err := s.store.LRange(ctx, inbox, 0, -1)
		if err != nil {
			return "", err
		}
		for _, raw := range raws {
			var msg domain.Message
			if err := json.Unmarshal([]byte(raw), &msg); err != nil {
				continue
			}
			if msg.Type == domain.TypeResponse && msg.ResponseTo == messageID && msg.From == to {
				if _, err := s.store.LRem(ctx, inbox, 1, raw); err != nil {
					return "", err
				}
				return msg.Content, nil
			}
		}
		if !time.Now().Before(deadline) {
			return "", ErrTimeout
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// Respond delivers the answer to a previously received query. The response
// lands in the asker's inbox where its waiting AwaitResponse picks it up.
func (s *Service) Respond(ctx context.Context, projectID, from, to, messageID, response string) error {
	msg := domain.Message{
		ID:         "response-" + messageID,
		From:       from,
		Type:       domain.TypeResponse,
		ResponseTo: messageID,
		Content:    response,
		Timestamp:  time.Now().UTC(),
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.store.RPush(ctx, keys.Messages(projectID, to), string(raw))
}

// CheckMessages drains the session's inbox and returns it oldest first.
func (s *Service) CheckMessages(ctx context.Context, projectID, sessionName string) ([]domain.Message, error) {
	inbox := keys.Messages(projectID, sessionName)
	raws, err := s.store.LRange(ctx, inbox, 0, -1)
	if err != nil {
		return nil, err
	}
	if err := s.store.Del(ctx, inbox); err != nil {
		return nil, err
	}
	msgs := make([]domain.Message, 0, len(raws))
	for _, raw := range raws {
		var m domain.Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			s.logger.Printf("Skipping corrupt message for %s/%s: %v", projectID, sessionName, err)
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// Broadcast sends a free-form message to every other agent in the project
// and returns the recipient count.
func (s *Service) Broadcast(ctx context.Context, projectID, sessionName, messageType, content string) (int, error) {
	return s.broadcastEvent(ctx, projectID, domain.Message{
		From:        sessionName,
		Type:        domain.TypeBroadcast,
		MessageType: messageType,
		Content:     content,
	}, sessionName)
}
