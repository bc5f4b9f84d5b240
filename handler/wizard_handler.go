package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finqube/claimflow/dto"
	"github.com/finqube/claimflow/service"
)

// WizardHandler drives submission wizard sessions over HTTP.
type WizardHandler struct {
	wizard *service.WizardService
}

func NewWizardHandler(wizard *service.WizardService) *WizardHandler {
	return &WizardHandler{wizard: wizard}
}

// Start handles POST /api/v1/wizard.
func (h *WizardHandler) Start(c *gin.Context) {
	var request dto.StartWizardRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		sendError(c, http.StatusBadRequest, "WIZARD_START_FAILED", "Invalid request body", err)
		return
	}

	session, err := h.wizard.Start(request)
	if err != nil {
		sendError(c, http.StatusBadRequest, "WIZARD_START_FAILED", err.Error(), err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Get handles GET /api/v1/wizard/:id.
func (h *WizardHandler) Get(c *gin.Context) {
	session, err := h.wizard.Get(c.Param("id"))
	if err != nil {
		sendError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Wizard session not found", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Advance handles POST /api/v1/wizard/:id/advance. A rejected transition
// returns 422 with the reason and the unchanged session.
func (h *WizardHandler) Advance(c *gin.Context) {
	session, err := h.wizard.Advance(c.Param("id"))
	h.respondTransition(c, session, err)
}

// Back handles POST /api/v1/wizard/:id/back.
func (h *WizardHandler) Back(c *gin.Context) {
	session, err := h.wizard.Back(c.Param("id"))
	h.respondTransition(c, session, err)
}

// EditField handles PATCH /api/v1/wizard/:id/fields.
func (h *WizardHandler) EditField(c *gin.Context) {
	var request dto.EditFieldRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		sendError(c, http.StatusBadRequest, "FIELD_EDIT_FAILED", "Invalid request body", err)
		return
	}

	session, err := h.wizard.EditField(c.Param("id"), request)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrClaimNotFound) {
			sendError(c, http.StatusNotFound, "FIELD_EDIT_FAILED", err.Error(), err)
			return
		}
		sendError(c, http.StatusInternalServerError, "FIELD_EDIT_FAILED", "Failed to apply edit", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SelectClaim handles POST /api/v1/wizard/:id/select.
func (h *WizardHandler) SelectClaim(c *gin.Context) {
	var request struct {
		ClaimID  string `json:"claim_id" binding:"required"`
		Selected bool   `json:"selected"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		sendError(c, http.StatusBadRequest, "FIELD_EDIT_FAILED", "Invalid request body", err)
		return
	}

	session, err := h.wizard.SelectClaim(c.Param("id"), request.ClaimID, request.Selected)
	if err != nil {
		sendError(c, http.StatusNotFound, "FIELD_EDIT_FAILED", err.Error(), err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Submit handles POST /api/v1/wizard/:id/submit.
func (h *WizardHandler) Submit(c *gin.Context) {
	response, err := h.wizard.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		var blocked *service.StepBlockedError
		switch {
		case errors.As(err, &blocked):
			sendError(c, http.StatusUnprocessableEntity, "WIZARD_STEP_BLOCKED", blocked.Reason, nil)
		case errors.Is(err, service.ErrSessionNotFound):
			sendError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Wizard session not found", err)
		default:
			sendError(c, http.StatusInternalServerError, "CLAIM_SUBMISSION_FAILED", "Failed to submit claims", err)
		}
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (h *WizardHandler) respondTransition(c *gin.Context, session *service.WizardSession, err error) {
	if err != nil {
		var blocked *service.StepBlockedError
		if errors.As(err, &blocked) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"message": blocked.Reason,
				"session": session,
			})
			return
		}
		sendError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Wizard session not found", err)
		return
	}
	c.JSON(http.StatusOK, session)
}
