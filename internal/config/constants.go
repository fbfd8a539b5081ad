package config

import (
	"time"

	"goalkeeper/backend/internal/models"
)

const (
	// Escalation
	StaleThreshold = 72 * time.Hour

	// Email
	SenderName = "GoalKeeper"

	// Redis
	EscalationChannel = "goalkeeper:escalations"
	LastRunKey        = "goalkeeper:last_run"

	// Trigger
	TriggerTokenIssuer = "goalkeeper-scheduler"
	TriggerTokenTTL    = 24 * time.Hour
)

// PeerEligibleStatuses returns the statuses a user may have to be offered as a peer.
// Each call returns a new slice.
func PeerEligibleStatuses() []models.Status {
	return []models.Status{models.StatusActive, models.StatusSOS}
}
