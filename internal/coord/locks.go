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

const (
	// recentChangesMax caps the per-project change history.
	recentChangesMax = 100

	// defaultRecentChangesLimit is returned when the caller asks for no
	// particular amount.
	defaultRecentChangesLimit = 20
)

// AnnounceFileChange takes the advisory lock on a file and records the
// change. A lock held by another session is a ConflictError; announcing a
// file the session already holds refreshes the lock with a new locked_at
// and a fresh TTL.
func (s *Service) AnnounceFileChange(ctx context.Context, projectID, sessionName, filePath, changeType, description string) error {
	lockKey := keys.FileLock(projectID, filePath)

	if raw, err := s.store.Get(ctx, lockKey); err == nil {
		var lock domain.FileLock
		if json.Unmarshal([]byte(raw), &lock) == nil && lock.Session != sessionName {
			return &ConflictError{FilePath: filePath, Lock: lock}
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	lock := domain.FileLock{
		Session:     sessionName,
		LockedAt:    time.Now().UTC(),
		ChangeType:  changeType,
		Description: description,
	}
	raw, err := json.Marshal(lock)
	if err != nil {
		return err
	}
	if err := s.store.SetEx(ctx, lockKey, string(raw), s.cfg.LockTTL()); err != nil {
		return err
	}

	change := domain.ChangeRecord{
		Session:     sessionName,
		FilePath:    filePath,
		ChangeType:  changeType,
		Description: description,
		Timestamp:   time.Now().UTC(),
	}
	rawChange, err := json.Marshal(change)
	if err != nil {
		return err
	}
	changesKey := keys.RecentChanges(projectID)
	if err := s.store.LPush(ctx, changesKey, string(rawChange)); err != nil {
		return err
	}
	if err := s.store.LTrim(ctx, changesKey, 0, recentChangesMax-1); err != nil {
		return err
	}

	if _, err := s.broadcastEvent(ctx, projectID, domain.Message{
		Type:        domain.EventFileChangeAnnounced,
		Session:     sessionName,
		FilePath:    filePath,
		ChangeType:  changeType,
		Description: description,
	}, sessionName); err != nil {
		return err
	}

	s.logger.Printf("Agent %s locked %s (%s)", sessionName, filePath, changeType)
	return nil
}

// ReleaseFileLock drops the caller's lock on a file and notifies the other
// agents. Returns ErrNotLocked when no lock exists and a NotOwnerError when
// another session holds it.
func (s *Service) ReleaseFileLock(ctx context.Context, projectID, sessionName, filePath string) error {
	lockKey := keys.FileLock(projectID, filePath)
	raw, err := s.store.Get(ctx, lockKey)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotLocked
	}
	if err != nil {
		return err
	}
	var lock domain.FileLock
	if err := json.Unmarshal([]byte(raw), &lock); err != nil {
		return err
	}
	if lock.Session != sessionName {
		return &NotOwnerError{FilePath: filePath, Holder: lock.Session}
	}
	if err := s.store.Del(ctx, lockKey); err != nil {
		return err
	}
	if _, err := s.broadcastEvent(ctx, projectID, domain.Message{
		Type:     domain.EventFileLockReleased,
		Session:  sessionName,
		FilePath: filePath,
	}, sessionName); err != nil {
		return err
	}
	s.logger.Printf("Agent %s released lock on %s", sessionName, filePath)
	return nil
}

// RecentChanges returns up to limit change records, most recent first.
// A limit of zero or less falls back to the default.
func (s *Service) RecentChanges(ctx context.Context, projectID string, limit int) ([]domain.ChangeRecord, error) {
	if limit <= 0 {
		limit = defaultRecentChangesLimit
	}
	raws, err := s.store.LRange(ctx, keys.RecentChanges(projectID), 0, int64(limit)-1)
	if err != nil {
		return nil, err
	}
	changes := make([]domain.ChangeRecord, 0, len(raws))
	for _, raw := range raws {
		var c domain.ChangeRecord
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			continue
		}
		changes = append(changes, c)
	}
	return changes, nil
}

// LockedFiles returns every live lock in the project, sorted by file path.
func (s *Service) LockedFiles(ctx context.Context, projectID string) ([]domain.LockedFile, error) {
	prefix := keys.FileLockPrefix(projectID)
	lockKeys, err := s.store.Keys(ctx, keys.FileLockPattern(projectID))
	if err != nil {
		return nil, err
	}
	locked := make([]domain.LockedFile, 0, len(lockKeys))
	for _, key := range lockKeys {
		raw, err := s.store.Get(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue // expired between scan and read
		}
		if err != nil {
			return nil, err
		}
		var lock domain.FileLock
		if err := json.Unmarshal([]byte(raw), &lock); err != nil {
			continue
		}
		locked = append(locked, domain.LockedFile{
			FilePath: strings.TrimPrefix(key, prefix),
			FileLock: lock,
		})
	}
	sort.Slice(locked, func(i, j int) bool { return locked[i].FilePath < locked[j].FilePath })
	return locked, nil
}

// CheckFileConflicts reports which of the given files are locked by a
// session other than the caller, along with how many files were examined.
// An empty file list checks every live lock in the project.
func (s *Service) CheckFileConflicts(ctx context.Context, projectID, sessionName string, files []string) ([]domain.LockedFile, int, error) {
	if len(files) == 0 {
		all, err := s.LockedFiles(ctx, projectID)
		if err != nil {
			return nil, 0, err
		}
		conflicts := make([]domain.LockedFile, 0, len(all))
		for _, lf := range all {
			if lf.Session != sessionName {
				conflicts = append(conflicts, lf)
			}
		}
		return conflicts, len(all), nil
	}

	conflicts := make([]domain.LockedFile, 0, len(files))
	for _, f := range files {
		raw, err := s.store.Get(ctx, keys.FileLock(projectID, f))
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		var lock domain.FileLock
		if err := json.Unmarshal([]byte(raw), &lock); err != nil {
			continue
		}
		if lock.Session != sessionName {
			conflicts = append(conflicts, domain.LockedFile{FilePath: f, FileLock: lock})
		}
	}
	return conflicts, len(files), nil
}
