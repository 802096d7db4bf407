package coord

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/splitmind/a2amcp/internal/domain"
	"github.com/splitmind/a2amcp/internal/keys"
	"github.com/splitmind/a2amcp/internal/store"
)

// RegisterInterface publishes a shared type definition under a name and
// announces it to the other agents. Re-registering a name overwrites the
// previous definition.
func (s *Service) RegisterInterface(ctx context.Context, projectID, sessionName, name, definition, filePath string) error {
	def := domain.InterfaceDef{
		Definition:   definition,
		RegisteredBy: sessionName,
		FilePath:     filePath,
		Timestamp:    time.Now().UTC(),
	}
	raw, err := json.Marshal(def)
	if err != nil {
		return err
	}
	if err := s.store.HSet(ctx, keys.Interfaces(projectID), name, string(raw)); err != nil {
		return err
	}
	if _, err := s.broadcastEvent(ctx, projectID, domain.Message{
		Type:          domain.EventInterfaceRegistered,
		Session:       sessionName,
		InterfaceName: name,
		Definition:    definition,
	}, sessionName); err != nil {
		return err
	}
	s.logger.Printf("Agent %s registered interface %s", sessionName, name)
	return nil
}

// QueryInterface looks up a definition by exact name. When the name is
// missing it returns ErrInterfaceNotFound together with registered names
// that contain the query, case-insensitively, so callers can correct typos.
func (s *Service) QueryInterface(ctx context.Context, projectID, name string) (*domain.InterfaceDef, []string, error) {
	interfacesKey := keys.Interfaces(projectID)
	raw, err := s.store.HGet(ctx, interfacesKey, name)
	if errors.Is(err, store.ErrNotFound) {
		names, err := s.store.HKeys(ctx, interfacesKey)
		if err != nil {
			return nil, nil, err
		}
		needle := strings.ToLower(name)
		similar := make([]string, 0, len(names))
		for _, candidate := range names {
			if strings.Contains(strings.ToLower(candidate), needle) {
				similar = append(similar, candidate)
			}
		}
		sort.Strings(similar)
		return nil, similar, ErrInterfaceNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	var def domain.InterfaceDef
	if err := json.Unmarshal([]byte(raw), &def); err != nil {
		return nil, nil, err
	}
	return &def, nil, nil
}

// ListInterfaces returns every registered definition keyed by name.
func (s *Service) ListInterfaces(ctx context.Context, projectID string) (map[string]domain.InterfaceDef, error) {
	data, err := s.store.HGetAll(ctx, keys.Interfaces(projectID))
	if err != nil {
		return nil, err
	}
	defs := make(map[string]domain.InterfaceDef, len(data))
	for name, raw := range data {
		var def domain.InterfaceDef
		if err := json.Unmarshal([]byte(raw), &def); err != nil {
			s.logger.Printf("Skipping corrupt interface %s/%s: %v", projectID, name, err)
			continue
		}
		defs[name] = def
	}
	return defs, nil
}
