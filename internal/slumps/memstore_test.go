package slumps_test

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"goalkeeper/backend/internal/models"
	"goalkeeper/backend/internal/storage"
)

// memStore is an in-memory storage.Storage with the same filtering rules as the
// database gateway.
type memStore struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
	contacts map[string][]models.EmergencyContact
	matches  []models.PeerMatch
	events   []models.EscalationEvent
	lastRun  *models.RunSummary
}

func newMemStore(profiles ...models.Profile) *memStore {
	s := &memStore{
		profiles: make(map[string]*models.Profile),
		contacts: make(map[string][]models.EmergencyContact),
	}
	for i := range profiles {
		p := profiles[i]
		s.profiles[p.UserID] = &p
	}
	return s
}

func (s *memStore) FindStaleProfiles(_ context.Context, status models.Status, cutoff time.Time) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Profile
	for _, p := range s.profiles {
		if p.Status == status && p.StaleSince(cutoff) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *memStore) GetProfileByID(_ context.Context, userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, storage.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) UpdateProfileStatus(_ context.Context, userID string, status models.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return storage.ErrProfileNotFound
	}
	p.Status = status
	p.UpdatedAt = at
	return nil
}

func (s *memStore) RecordCheckIn(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return storage.ErrProfileNotFound
	}
	p.Status = models.StatusActive
	p.LastCheckinAt = &at
	p.UpdatedAt = at
	return nil
}

func (s *memStore) GetEmergencyContacts(_ context.Context, userID string) ([]models.EmergencyContact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contacts[userID], nil
}

func (s *memStore) FindPeerCandidateIDs(_ context.Context, goal models.GoalCategory, statuses []models.Status, excludeUserID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, p := range s.profiles {
		if p.UserID == excludeUserID || p.GoalCategory != goal || !slices.Contains(statuses, p.Status) {
			continue
		}
		ids = append(ids, p.UserID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *memStore) PeerMatchExists(_ context.Context, userA, userB string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.Covers(userA, userB) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) SavePeerMatch(_ context.Context, match *models.PeerMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if match.ID == "" {
		match.ID = "match-" + match.UserID1 + "-" + match.UserID2
	}
	s.matches = append(s.matches, *match)
	return nil
}

func (s *memStore) PublishEscalation(_ context.Context, event models.EscalationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *memStore) SaveRunSummary(_ context.Context, summary models.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = &summary
	return nil
}

func (s *memStore) GetLastRunSummary(context.Context) (*models.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, nil
}

func (s *memStore) status(userID string) models.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[userID].Status
}
