package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dejargonator/dejargonator/internal/apperrors"
	"github.com/dejargonator/dejargonator/internal/dtos"
	"github.com/dejargonator/dejargonator/internal/models"
	"github.com/dejargonator/dejargonator/internal/pipeline"
)

// DashboardHandler exposes the pipeline operations over HTTP. Each response
// carries the full post-operation snapshot so the client can re-render the
// affected sections.
type DashboardHandler struct {
	Registry *pipeline.Registry
}

func NewDashboardHandler(reg *pipeline.Registry) *DashboardHandler {
	return &DashboardHandler{Registry: reg}
}

// parseStage rejects unknown stage names instead of defaulting them: the
// analyzed fallback is for persisted rows only, a mistyped request should
// fail loudly.
func parseStage(s string) (models.Stage, error) {
	st := models.Stage(s)
	if !st.Valid() {
		return "", apperrors.InvalidInput("unknown stage: "+s, nil)
	}
	return st, nil
}

// Get is GET /dashboard: a full load from the remote gateway.
func (h *DashboardHandler) Get(c *gin.Context) {
	mgr := h.Registry.GetOrCreate(currentUser(c))
	snap, err := mgr.Load(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": snap})
}

// GetCached is GET /dashboard/cached: the mirrored snapshot for instant
// display while a full load is in flight. 204 when no mirror entry exists.
func (h *DashboardHandler) GetCached(c *gin.Context) {
	mgr := h.Registry.GetOrCreate(currentUser(c))
	snap, ok := mgr.CachedSnapshot(c.Request.Context())
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": snap, "stale": true})
}

// Move is POST /dashboard/move.
func (h *DashboardHandler) Move(c *gin.Context) {
	var req dtos.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.InvalidInput("invalid JSON: "+err.Error(), nil))
		return
	}
	from, err := parseStage(req.From)
	if err != nil {
		writeError(c, err)
		return
	}
	to, err := parseStage(req.To)
	if err != nil {
		writeError(c, err)
		return
	}

	mgr := h.Registry.GetOrCreate(currentUser(c))
	snap, err := mgr.MoveTo(c.Request.Context(), req.ID, from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": snap})
}

// Duplicate is POST /dashboard/duplicate.
func (h *DashboardHandler) Duplicate(c *gin.Context) {
	var req dtos.DuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.InvalidInput("invalid JSON: "+err.Error(), nil))
		return
	}
	stage, err := parseStage(req.Stage)
	if err != nil {
		writeError(c, err)
		return
	}

	mgr := h.Registry.GetOrCreate(currentUser(c))
	snap, err := mgr.Duplicate(c.Request.Context(), req.ID, stage)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"snapshot": snap})
}

// Delete is POST /dashboard/delete. Deletion is permanent, so the request
// must carry an explicit confirmation.
func (h *DashboardHandler) Delete(c *gin.Context) {
	var req dtos.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.InvalidInput("invalid JSON: "+err.Error(), nil))
		return
	}
	if !req.Confirm {
		writeError(c, apperrors.InvalidInput("deletion is permanent; set confirm to proceed", nil))
		return
	}
	stage, err := parseStage(req.Stage)
	if err != nil {
		writeError(c, err)
		return
	}

	mgr := h.Registry.GetOrCreate(currentUser(c))
	snap, err := mgr.Delete(c.Request.Context(), req.ID, stage)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": snap})
}
