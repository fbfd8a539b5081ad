package handler

import (
	"context"
	"log/slog"
	"net/http"

	"goalkeeper/backend/internal/logging"
	"goalkeeper/backend/internal/models"
	"goalkeeper/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Runner executes one escalation run. *slumps.Engine satisfies it.
type Runner interface {
	Run(ctx context.Context) (models.RunSummary, error)
}

// Handler serves the trigger and the read-only run endpoints.
type Handler struct {
	Engine        Runner
	Storage       storage.Storage
	TriggerSecret string
	Log           *slog.Logger
}

func NewHandler(engine Runner, s storage.Storage, triggerSecret string, log *slog.Logger) *Handler {
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{
		Engine:        engine,
		Storage:       s,
		TriggerSecret: triggerSecret,
		Log:           log,
	}
}

// CheckSlumps runs the engine once and reports how many users were examined and escalated.
func (h *Handler) CheckSlumps(c *gin.Context) {
	// A run is not aborted midway when the caller goes away.
	ctx := context.WithoutCancel(c.Request.Context())

	summary, err := h.Engine.Run(ctx)
	if err != nil {
		h.Log.Error("check-slumps run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"checked":   summary.Examined,
		"updated":   summary.Escalated,
		"examined":  summary.Examined,
		"escalated": summary.Escalated,
	})
}

// LastRun returns the summary of the most recent completed run.
func (h *Handler) LastRun(c *gin.Context) {
	summary, err := h.Storage.GetLastRunSummary(c.Request.Context())
	if err != nil {
		h.Log.Error("loading last run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load last run"})
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run recorded yet"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
