package slumps

import (
	"context"
	"fmt"
	"time"

	"goalkeeper/backend/internal/models"
	"goalkeeper/backend/internal/storage"
)

// Escalator moves a candidate to SOS. Writing SOS over SOS leaves the user in SOS.
type Escalator struct {
	Storage storage.Storage
}

func NewEscalator(s storage.Storage) *Escalator {
	return &Escalator{Storage: s}
}

func (e *Escalator) Escalate(ctx context.Context, userID string, at time.Time) error {
	if err := e.Storage.UpdateProfileStatus(ctx, userID, models.StatusSOS, at); err != nil {
		return fmt.Errorf("escalate %s: %w", userID, err)
	}
	return nil
}
