package models

import "time"

// RunSummary aggregates one batch run of the escalation engine.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	// Examined is the number of candidates returned by the scan.
	Examined int `json:"examined"`
	// Escalated is the number of candidates whose status write succeeded.
	Escalated int `json:"escalated"`
	// Notified counts delivered alerts across all contacts.
	Notified int `json:"notified"`
	// MatchesCreated counts new peer match rows.
	MatchesCreated int `json:"matches_created"`
}

// EscalationEvent is published after a user has been moved to SOS.
type EscalationEvent struct {
	RunID        string       `json:"run_id"`
	UserID       string       `json:"user_id"`
	DisplayName  string       `json:"display_name"`
	GoalCategory GoalCategory `json:"goal_category"`
	EscalatedAt  time.Time    `json:"escalated_at"`
}
