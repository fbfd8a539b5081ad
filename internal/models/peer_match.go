package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PeerMatch pairs two users pursuing the same goal category.
// The pair is unordered: (A,B) and (B,A) are the same match.
type PeerMatch struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID1   string    `gorm:"column:user_id_1;type:text;not null;index" json:"user_id_1"`
	UserID2   string    `gorm:"column:user_id_2;type:text;not null;index" json:"user_id_2"`
	CreatedAt time.Time `json:"created_at"`
}

func (PeerMatch) TableName() string { return "peer_matches" }

// BeforeCreate generates an ID when one is not set yet.
func (m *PeerMatch) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// Covers reports whether the match is for the unordered pair {a, b}.
func (m PeerMatch) Covers(a, b string) bool {
	return (m.UserID1 == a && m.UserID2 == b) || (m.UserID1 == b && m.UserID2 == a)
}
