package slumps

import (
	"context"
	"time"

	"goalkeeper/backend/internal/models"
	"goalkeeper/backend/internal/storage"
)

// Scanner selects active users who have not checked in within Threshold.
type Scanner struct {
	Storage   storage.Storage
	Threshold time.Duration
}

func NewScanner(s storage.Storage, threshold time.Duration) *Scanner {
	return &Scanner{Storage: s, Threshold: threshold}
}

// Scan returns the candidates for this run. It has no side effects; a read
// error is returned as is and aborts the run.
func (s *Scanner) Scan(ctx context.Context, now time.Time) ([]models.Profile, error) {
	cutoff := now.Add(-s.Threshold)

	profiles, err := s.Storage.FindStaleProfiles(ctx, models.StatusActive, cutoff)
	if err != nil {
		return nil, err
	}

	// Users already slumping or in SOS are never re-escalated.
	candidates := profiles[:0]
	for _, p := range profiles {
		if p.Status != models.StatusActive || !p.StaleSince(cutoff) {
			continue
		}
		candidates = append(candidates, p)
	}
	return candidates, nil
}
