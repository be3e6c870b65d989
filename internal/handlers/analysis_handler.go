package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dejargonator/dejargonator/internal/apperrors"
	"github.com/dejargonator/dejargonator/internal/cache"
	"github.com/dejargonator/dejargonator/internal/dtos"
	"github.com/dejargonator/dejargonator/internal/pipeline"
	"github.com/dejargonator/dejargonator/internal/services"
)

// AnalysisHandler runs the analyze flow: quota gate, cache lookup, LLM
// critique, quota consumption, then persistence through the pipeline.
type AnalysisHandler struct {
	LLM      *services.LLMService
	Credits  *services.CreditService
	Cache    *cache.AnalysisCache
	Registry *pipeline.Registry
	logger   *zap.Logger
}

func NewAnalysisHandler(llm *services.LLMService, credits *services.CreditService, ac *cache.AnalysisCache, reg *pipeline.Registry, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		LLM:      llm,
		Credits:  credits,
		Cache:    ac,
		Registry: reg,
		logger:   logger,
	}
}

// Analyze is the POST /analyze endpoint.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req dtos.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.InvalidInput("invalid JSON: "+err.Error(), nil))
		return
	}
	if len(req.JobDescription) < 50 {
		writeError(c, apperrors.InvalidInput("job description seems too short; paste the full posting", nil))
		return
	}
	if req.Tone == "" {
		req.Tone = services.DefaultTone
	}
	if req.Persona == "" {
		req.Persona = services.DefaultPersona
	}

	userID := currentUser(c)
	ctx := c.Request.Context()

	profile, err := h.Credits.Profile(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.Credits.RequirePersona(profile, req.Persona); err != nil {
		writeError(c, err)
		return
	}

	decision, err := h.Credits.CanAnalyze(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	analysis, cached := "", false
	if h.Cache != nil {
		analysis, cached = h.Cache.Get(ctx, req.JobDescription, req.Tone, req.Persona)
	}
	if !cached {
		analysis, err = h.LLM.AnalyzeJob(ctx, req.JobDescription, req.Tone, req.Persona)
		if err != nil {
			writeError(c, err)
			return
		}
		if h.Cache != nil {
			if cerr := h.Cache.Set(ctx, req.JobDescription, req.Tone, req.Persona, analysis); cerr != nil {
				h.logger.Warn("analysis cache write failed", zap.Error(cerr))
			}
		}
		// Cache hits skip the model, so only live calls consume quota.
		if err := h.Credits.Consume(ctx, userID, decision); err != nil {
			writeError(c, err)
			return
		}
	}

	record, err := h.Registry.GetOrCreate(userID).CreateFromAnalysis(ctx, pipeline.AnalysisInput{
		JobDescription: req.JobDescription,
		Analysis:       analysis,
		Tone:           req.Tone,
		Persona:        req.Persona,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"analysis": analysis,
		"cached":   cached,
		"record":   record,
	})
}

// GenerateDocument is the POST /documents endpoint, Pro-gated.
func (h *AnalysisHandler) GenerateDocument(c *gin.Context) {
	var req dtos.DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.InvalidInput("invalid JSON: "+err.Error(), nil))
		return
	}

	ctx := c.Request.Context()
	profile, err := h.Credits.Profile(ctx, currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.Credits.RequirePro(profile); err != nil {
		writeError(c, err)
		return
	}

	content, err := h.LLM.GenerateDocument(ctx, req.Type, req.JobDescription, req.UserInput, req.JobAnalysis)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"content": content,
		"type":    req.Type,
	})
}

// AddCredits is the POST /credits endpoint (top-up after purchase).
func (h *AnalysisHandler) AddCredits(c *gin.Context) {
	var req dtos.AddCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.InvalidInput("invalid JSON: "+err.Error(), nil))
		return
	}

	profile, err := h.Credits.AddCredits(c.Request.Context(), currentUser(c), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
