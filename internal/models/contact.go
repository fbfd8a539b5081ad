package models

// EmergencyContact is a person alerted when its owner goes silent.
// Rows are replaced wholesale by onboarding; the engine only reads them.
type EmergencyContact struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       string `gorm:"type:text;not null;index" json:"user_id"`
	ContactName  string `gorm:"type:text" json:"contact_name"`
	ContactEmail string `gorm:"type:text;not null" json:"contact_email"`
}

func (EmergencyContact) TableName() string { return "emergency_contacts" }
