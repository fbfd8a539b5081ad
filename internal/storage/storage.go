package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"goalkeeper/backend/internal/models"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrProfileNotFound is returned when a write targets a user that has no profile row.
var ErrProfileNotFound = errors.New("profile not found")

// Storage is the record store gateway used by the escalation engine and the admin CLI.
type Storage interface {
	FindStaleProfiles(ctx context.Context, status models.Status, cutoff time.Time) ([]models.Profile, error)
	GetProfileByID(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfileStatus(ctx context.Context, userID string, status models.Status, at time.Time) error
	RecordCheckIn(ctx context.Context, userID string, at time.Time) error

	GetEmergencyContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error)

	FindPeerCandidateIDs(ctx context.Context, goal models.GoalCategory, statuses []models.Status, excludeUserID string) ([]string, error)
	PeerMatchExists(ctx context.Context, userA, userB string) (bool, error)
	SavePeerMatch(ctx context.Context, match *models.PeerMatch) error

	PublishEscalation(ctx context.Context, event models.EscalationEvent) error
	SaveRunSummary(ctx context.Context, summary models.RunSummary) error
	GetLastRunSummary(ctx context.Context) (*models.RunSummary, error)
}

// Service implements Storage on PostgreSQL (gorm) with an optional Redis client.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor. rdb may be nil, in which case the Redis-backed
// operations become no-ops.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// FindStaleProfiles returns profiles in the given status that never checked in
// or whose last check-in is strictly before cutoff.
func (s *Service) FindStaleProfiles(ctx context.Context, status models.Status, cutoff time.Time) ([]models.Profile, error) {
	var profiles []models.Profile
	err := s.DB.WithContext(ctx).
		Where("status = ?", status).
		Where("last_checkin_at IS NULL OR last_checkin_at < ?", cutoff).
		Order("user_id").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("find stale profiles: %w", err)
	}
	return profiles, nil
}

func (s *Service) GetProfileByID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return &profile, nil
}

// UpdateProfileStatus sets status and updated_at for one user.
func (s *Service) UpdateProfileStatus(ctx context.Context, userID string, status models.Status, at time.Time) error {
	res := s.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": at,
		})
	if res.Error != nil {
		return fmt.Errorf("update status of %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// RecordCheckIn does what the front end does on a daily check-in:
// the user becomes active again and the check-in timestamp moves to at.
func (s *Service) RecordCheckIn(ctx context.Context, userID string, at time.Time) error {
	res := s.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"status":          models.StatusActive,
			"last_checkin_at": at,
			"updated_at":      at,
		})
	if res.Error != nil {
		return fmt.Errorf("record check-in of %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (s *Service) GetEmergencyContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error) {
	var contacts []models.EmergencyContact
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("get contacts of %s: %w", userID, err)
	}
	return contacts, nil
}

// FindPeerCandidateIDs returns the ids of users in the goal category whose status is
// one of statuses, excluding excludeUserID. Ids are ordered so that a seeded random
// source picks the same peer for the same data.
func (s *Service) FindPeerCandidateIDs(ctx context.Context, goal models.GoalCategory, statuses []models.Status, excludeUserID string) ([]string, error) {
	values := make([]string, len(statuses))
	for i, st := range statuses {
		values[i] = string(st)
	}

	var ids []string
	err := s.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("goal_category = ?", goal).
		Where("status = ANY(?)", pq.Array(values)).
		Where("user_id <> ?", excludeUserID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("find peer candidates for %s: %w", excludeUserID, err)
	}
	return ids, nil
}

// PeerMatchExists reports whether a match exists for the unordered pair {userA, userB}.
func (s *Service) PeerMatchExists(ctx context.Context, userA, userB string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.PeerMatch{}).
		Where("(user_id_1 = ? AND user_id_2 = ?) OR (user_id_1 = ? AND user_id_2 = ?)", userA, userB, userB, userA).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("look up match %s/%s: %w", userA, userB, err)
	}
	return count > 0, nil
}

// SavePeerMatch inserts a new match. There is no uniqueness constraint on the pair;
// callers check PeerMatchExists first.
func (s *Service) SavePeerMatch(ctx context.Context, match *models.PeerMatch) error {
	if err := s.DB.WithContext(ctx).Create(match).Error; err != nil {
		return fmt.Errorf("insert match %s/%s: %w", match.UserID1, match.UserID2, err)
	}
	return nil
}
