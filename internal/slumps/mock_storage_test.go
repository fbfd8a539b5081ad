package slumps_test

import (
	"context"
	"time"

	"goalkeeper/backend/internal/models"
	"goalkeeper/backend/internal/notify"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify/mock implementation of storage.Storage.
type MockStorage struct {
	mock.Mock
}

// Profile operations
func (m *MockStorage) FindStaleProfiles(ctx context.Context, status models.Status, cutoff time.Time) ([]models.Profile, error) {
	args := m.Called(ctx, status, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockStorage) GetProfileByID(ctx context.Context, userID string) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockStorage) UpdateProfileStatus(ctx context.Context, userID string, status models.Status, at time.Time) error {
	args := m.Called(ctx, userID, status, at)
	return args.Error(0)
}

func (m *MockStorage) RecordCheckIn(ctx context.Context, userID string, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

// Contact operations
func (m *MockStorage) GetEmergencyContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EmergencyContact), args.Error(1)
}

// Peer match operations
func (m *MockStorage) FindPeerCandidateIDs(ctx context.Context, goal models.GoalCategory, statuses []models.Status, excludeUserID string) ([]string, error) {
	args := m.Called(ctx, goal, statuses, excludeUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) PeerMatchExists(ctx context.Context, userA, userB string) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) SavePeerMatch(ctx context.Context, match *models.PeerMatch) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

// Redis operations
func (m *MockStorage) PublishEscalation(ctx context.Context, event models.EscalationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockStorage) SaveRunSummary(ctx context.Context, summary models.RunSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockStorage) GetLastRunSummary(ctx context.Context) (*models.RunSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RunSummary), args.Error(1)
}

// MockNotifier records SOS requests.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendSOS(ctx context.Context, displayName string, contacts []models.EmergencyContact) notify.DeliveryReport {
	args := m.Called(ctx, displayName, contacts)
	return args.Get(0).(notify.DeliveryReport)
}

// MockReporter records run reports.
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) ReportRun(ctx context.Context, summary models.RunSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

// fixedRand always picks index n, clamped to the pool.
type fixedRand int

func (f fixedRand) Intn(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}
