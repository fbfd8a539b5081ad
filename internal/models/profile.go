package models

import "time"

// Status is the accountability state of a user.
type Status string

const (
	StatusActive   Status = "active"
	StatusSlumping Status = "slumping"
	StatusSOS      Status = "SOS"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSlumping, StatusSOS:
		return true
	}
	return false
}

// GoalCategory groups users that can hold each other accountable.
type GoalCategory string

const (
	GoalHealth       GoalCategory = "health"
	GoalAcademic     GoalCategory = "academic"
	GoalCareerSwitch GoalCategory = "career_switch"
)

func (g GoalCategory) Valid() bool {
	switch g {
	case GoalHealth, GoalAcademic, GoalCareerSwitch:
		return true
	}
	return false
}

// Profile represents a user pursuing a goal.
// Check-ins are written by the front end; the engine only moves Status to SOS.
type Profile struct {
	// UserID is the externally assigned identity of the user.
	UserID string `gorm:"column:user_id;primaryKey;type:text" json:"user_id"`
	// DisplayName is shown to emergency contacts in alerts.
	DisplayName string `gorm:"type:text;not null;default:''" json:"display_name"`
	// GoalCategory is the enumerated goal the user is pursuing.
	GoalCategory GoalCategory `gorm:"type:text;index:idx_profiles_goal_status" json:"goal_category"`
	// LastCheckinAt is nil when the user never checked in.
	LastCheckinAt *time.Time `gorm:"index" json:"last_checkin_at"`
	// Status is one of active, slumping, SOS.
	Status Status `gorm:"type:text;not null;default:'active';index:idx_profiles_goal_status" json:"status"`
	// UpdatedAt is stamped on every status change.
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// StaleSince reports whether the profile has not checked in since cutoff.
// A profile that never checked in is always stale.
func (p Profile) StaleSince(cutoff time.Time) bool {
	if p.LastCheckinAt == nil {
		return true
	}
	return p.LastCheckinAt.Before(cutoff)
}
