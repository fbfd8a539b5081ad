package slumps

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"goalkeeper/backend/internal/config"
	"goalkeeper/backend/internal/logging"
	"goalkeeper/backend/internal/models"
	"goalkeeper/backend/internal/storage"
)

// MatchOutcome describes what a matching attempt did.
type MatchOutcome string

const (
	MatchCreated      MatchOutcome = "created"
	MatchDuplicate    MatchOutcome = "duplicate"
	MatchNoCandidates MatchOutcome = "no_candidates"
	MatchFailed       MatchOutcome = "failed"
)

// RandomSource picks an index in [0, n). *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// lockedRand makes a *rand.Rand safe for overlapping runs.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// NewRandomSource returns a time-seeded source safe for concurrent use.
func NewRandomSource() RandomSource {
	return &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// MatcherService pairs an escalated user with a random peer from the same goal category.
type MatcherService struct {
	Storage storage.Storage
	Rand    RandomSource
	Now     func() time.Time
	Log     *slog.Logger
}

// NewMatcherService creates a new Matcher. A nil rnd gets a time-seeded source.
func NewMatcherService(s storage.Storage, rnd RandomSource, log *slog.Logger) *MatcherService {
	if rnd == nil {
		rnd = NewRandomSource()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &MatcherService{
		Storage: s,
		Rand:    rnd,
		Now:     time.Now,
		Log:     log,
	}
}

// Match tries to record one new peer match for user. Failures are logged and
// reported as MatchFailed; they never abort the caller.
//
// The existence check and the insert are not atomic: two overlapping attempts for
// the same pair can both insert.
func (m *MatcherService) Match(ctx context.Context, user models.Profile) (MatchOutcome, *models.PeerMatch) {
	log := m.Log.With("user_id", user.UserID)

	// 1. Candidate pool: same goal, active or SOS, not the user itself.
	pool, err := m.Storage.FindPeerCandidateIDs(ctx, user.GoalCategory, config.PeerEligibleStatuses(), user.UserID)
	if err != nil {
		log.Error("peer candidate lookup failed", "error", err)
		return MatchFailed, nil
	}
	pool = withoutUser(pool, user.UserID)
	if len(pool) == 0 {
		log.Info("no peer available", "goal_category", user.GoalCategory)
		return MatchNoCandidates, nil
	}

	// 2. Uniform pick.
	peerID := pool[m.Rand.Intn(len(pool))]

	// 3. One match per unordered pair. No retry with another candidate.
	exists, err := m.Storage.PeerMatchExists(ctx, user.UserID, peerID)
	if err != nil {
		log.Error("peer match lookup failed", "peer_id", peerID, "error", err)
		return MatchFailed, nil
	}
	if exists {
		log.Info("peer match already exists", "peer_id", peerID)
		return MatchDuplicate, nil
	}

	// 4. Insert.
	match := &models.PeerMatch{
		UserID1:   user.UserID,
		UserID2:   peerID,
		CreatedAt: m.Now(),
	}
	if err := m.Storage.SavePeerMatch(ctx, match); err != nil {
		log.Error("peer match insert failed", "peer_id", peerID, "error", err)
		return MatchFailed, nil
	}

	log.Info("peer match created", "peer_id", peerID, "match_id", match.ID)
	return MatchCreated, match
}

func withoutUser(ids []string, userID string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}
