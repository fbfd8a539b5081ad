package slumps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"goalkeeper/backend/internal/logging"
	"goalkeeper/backend/internal/models"
	"goalkeeper/backend/internal/notify"
	"goalkeeper/backend/internal/storage"

	"github.com/google/uuid"
)

// ErrScanFailed marks a run that aborted before touching any candidate.
var ErrScanFailed = errors.New("stale user scan failed")

// Reporter receives the summary of every completed run.
type Reporter interface {
	ReportRun(ctx context.Context, summary models.RunSummary) error
}

// Engine runs one slump-detection pass: scan, then escalate, notify and match
// each candidate in turn.
type Engine struct {
	Storage   storage.Storage
	Notifier  notify.Notifier
	Scanner   *Scanner
	Escalator *Escalator
	Matcher   *MatcherService
	Reporter  Reporter // optional
	Metrics   *Metrics // optional
	Log       *slog.Logger
	Now       func() time.Time
	NewRunID  func() string
}

// NewEngine wires the default scanner, escalator and matcher around s.
func NewEngine(s storage.Storage, n notify.Notifier, threshold time.Duration, log *slog.Logger) *Engine {
	if n == nil {
		n = notify.Noop{}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Engine{
		Storage:   s,
		Notifier:  n,
		Scanner:   NewScanner(s, threshold),
		Escalator: NewEscalator(s),
		Matcher:   NewMatcherService(s, nil, log),
		Log:       log,
		Now:       time.Now,
		NewRunID:  func() string { return uuid.New().String() },
	}
}

// candidateResult is what processing one candidate contributed to the run.
type candidateResult struct {
	escalated    bool
	notified     int
	matchCreated bool
}

func accumulate(s models.RunSummary, r candidateResult) models.RunSummary {
	if r.escalated {
		s.Escalated++
	}
	s.Notified += r.notified
	if r.matchCreated {
		s.MatchesCreated++
	}
	return s
}

// Run performs one pass. Only a failed scan makes it return an error; every
// per-candidate failure is logged and the run continues.
func (e *Engine) Run(ctx context.Context) (models.RunSummary, error) {
	summary := models.RunSummary{
		RunID:     e.NewRunID(),
		StartedAt: e.Now(),
	}
	log := e.Log.With("run_id", summary.RunID)

	candidates, err := e.Scanner.Scan(ctx, summary.StartedAt)
	if err != nil {
		e.Metrics.run("failed")
		log.Error("stale user scan failed, aborting run", "error", err)
		return summary, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}
	summary.Examined = len(candidates)
	log.Info("stale users found", "count", summary.Examined)

	for _, candidate := range candidates {
		summary = accumulate(summary, e.process(ctx, log, summary.RunID, candidate))
	}
	summary.FinishedAt = e.Now()
	e.Metrics.run("ok")

	if err := e.Storage.SaveRunSummary(ctx, summary); err != nil {
		log.Warn("saving run summary failed", "error", err)
	}
	if e.Reporter != nil {
		if err := e.Reporter.ReportRun(ctx, summary); err != nil {
			log.Warn("reporting run failed", "error", err)
		}
	}

	log.Info("run finished",
		"examined", summary.Examined,
		"escalated", summary.Escalated,
		"notified", summary.Notified,
		"matches_created", summary.MatchesCreated,
	)
	return summary, nil
}

func (e *Engine) process(ctx context.Context, log *slog.Logger, runID string, user models.Profile) candidateResult {
	log = log.With("user_id", user.UserID)

	escalatedAt := e.Now()
	if err := e.Escalator.Escalate(ctx, user.UserID, escalatedAt); err != nil {
		e.Metrics.escalation("failed")
		log.Error("escalation failed, skipping user", "error", err)
		return candidateResult{}
	}
	e.Metrics.escalation("escalated")
	result := candidateResult{escalated: true}

	contacts, err := e.Storage.GetEmergencyContacts(ctx, user.UserID)
	if err != nil {
		log.Error("emergency contact lookup failed, no alert sent", "error", err)
	} else {
		report := e.Notifier.SendSOS(ctx, user.DisplayName, contacts)
		e.Metrics.delivery(report)
		result.notified = report.Sent
		if report.Failed > 0 {
			log.Warn("some SOS alerts were not delivered", "failed", report.Failed, "attempted", report.Attempted)
		}
	}

	event := models.EscalationEvent{
		RunID:        runID,
		UserID:       user.UserID,
		DisplayName:  user.DisplayName,
		GoalCategory: user.GoalCategory,
		EscalatedAt:  escalatedAt,
	}
	if err := e.Storage.PublishEscalation(ctx, event); err != nil {
		log.Warn("publishing escalation event failed", "error", err)
	}

	outcome, _ := e.Matcher.Match(ctx, user)
	e.Metrics.match(outcome)
	result.matchCreated = outcome == MatchCreated

	return result
}
