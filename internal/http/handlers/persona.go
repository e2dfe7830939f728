package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/timlawrenz/fluffy-train-sub000/internal/data/repos"
	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/http/response"
	"github.com/timlawrenz/fluffy-train-sub000/internal/pkg/dbctx"
	pkgerrors "github.com/timlawrenz/fluffy-train-sub000/internal/pkg/errors"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
	"github.com/timlawrenz/fluffy-train-sub000/internal/services"
)

type PersonaHandler struct {
	log *logger.Logger

	personas  repos.PersonaRepo
	selection services.SelectionService
	gaps      services.GapAnalyzer
	state     services.StateService
}

func NewPersonaHandler(
	log *logger.Logger,
	personas repos.PersonaRepo,
	selection services.SelectionService,
	gaps services.GapAnalyzer,
	state services.StateService,
) *PersonaHandler {
	return &PersonaHandler{
		log:       log.With("handler", "PersonaHandler"),
		personas:  personas,
		selection: selection,
		gaps:      gaps,
		state:     state,
	}
}

// GET /api/personas?name=
//
// With a name filter the response carries at most the one matching
// persona.
func (h *PersonaHandler) List(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}

	if name := c.Query("name"); name != "" {
		persona, err := h.personas.GetByName(dbc, name)
		if err != nil {
			h.log.Error("Load persona by name failed", "name", name, "error", err)
			response.RespondError(c, http.StatusInternalServerError, "load_persona_failed", err)
			return
		}
		if persona == nil {
			response.RespondError(c, http.StatusNotFound, "persona_not_found", pkgerrors.ErrNotFound)
			return
		}
		response.RespondOK(c, gin.H{"personas": []*domain.Persona{persona}})
		return
	}

	personas, err := h.personas.List(dbc)
	if err != nil {
		h.log.Error("List personas failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "list_personas_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"personas": personas})
}

// POST /api/personas/:id/selection/preview
//
// Runs the selection pipeline without after-post recording, so operators
// can see what the strategy would pick next.
func (h *PersonaHandler) PreviewSelection(c *gin.Context) {
	persona, ok := h.loadPersona(c)
	if !ok {
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	result, err := h.selection.SelectNextPost(dbc, persona, c.Query("strategy"))
	if err != nil {
		if errors.Is(err, pkgerrors.ErrUnknownStrategy) {
			response.RespondError(c, http.StatusBadRequest, "unknown_strategy", err)
			return
		}
		h.log.Error("Selection preview failed", "persona", persona.Name, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "selection_failed", err)
		return
	}

	if result.Declined() {
		response.RespondOK(c, gin.H{
			"selected": false,
			"kind":     result.Decline.Kind,
			"reason":   result.Decline.Reason,
			"strategy": result.StrategyName,
		})
		return
	}
	response.RespondOK(c, gin.H{
		"selected":     true,
		"strategy":     result.StrategyName,
		"pillar":       result.Pillar,
		"photo":        result.Selection.Photo,
		"cluster":      result.Selection.Cluster,
		"optimal_time": result.Selection.OptimalTime,
		"hashtags":     result.Selection.Hashtags,
		"format":       result.Selection.Format,
	})
}

// GET /api/personas/:id/gaps?days=30
func (h *PersonaHandler) GapReport(c *gin.Context) {
	persona, ok := h.loadPersona(c)
	if !ok {
		return
	}

	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_days", err)
			return
		}
		days = parsed
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	report, err := h.gaps.Report(dbc, persona, days)
	if err != nil {
		h.log.Error("Gap report failed", "persona", persona.Name, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "gap_report_failed", err)
		return
	}
	available, err := h.gaps.TotalPhotosAvailable(dbc, persona.ID)
	if err != nil {
		h.log.Error("Gap report failed", "persona", persona.Name, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "gap_report_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"days_ahead":      days,
		"total_needed":    h.gaps.TotalPostsNeeded(days),
		"total_available": available,
		"pillars":         report,
	})
}

// GET /api/personas/:id/state
func (h *PersonaHandler) GetState(c *gin.Context) {
	persona, ok := h.loadPersona(c)
	if !ok {
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	state, err := h.state.Load(dbc, persona.ID)
	if err != nil {
		h.log.Error("Load state failed", "persona", persona.Name, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "load_state_failed", err)
		return
	}
	response.RespondOK(c, state)
}

// DELETE /api/personas/:id/state
func (h *PersonaHandler) ResetState(c *gin.Context) {
	persona, ok := h.loadPersona(c)
	if !ok {
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if err := h.state.Reset(dbc, persona.ID); err != nil {
		h.log.Error("Reset state failed", "persona", persona.Name, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "reset_state_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"reset": true})
}

func (h *PersonaHandler) loadPersona(c *gin.Context) (*domain.Persona, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_persona_id", err)
		return nil, false
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	row, err := h.personas.GetByID(dbc, id)
	if err != nil {
		h.log.Error("Load persona failed", "persona_id", id, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "load_persona_failed", err)
		return nil, false
	}
	if row == nil {
		response.RespondError(c, http.StatusNotFound, "persona_not_found", pkgerrors.ErrNotFound)
		return nil, false
	}
	return row, true
}
