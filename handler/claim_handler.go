package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/finqube/claimflow/dto"
	"github.com/finqube/claimflow/service"
	"github.com/finqube/claimflow/storage"
)

// ClaimHandler serves the claims CRUD and duplicate-check endpoints.
type ClaimHandler struct {
	claims *service.ClaimService
	dup    *service.DuplicateService
}

func NewClaimHandler(claims *service.ClaimService, dup *service.DuplicateService) *ClaimHandler {
	return &ClaimHandler{
		claims: claims,
		dup:    dup,
	}
}

// SubmitBatch handles POST /api/v1/claims/batch.
func (h *ClaimHandler) SubmitBatch(c *gin.Context) {
	var request dto.BatchClaimRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		sendError(c, http.StatusBadRequest, "CLAIM_SUBMISSION_FAILED", "Invalid request body", err)
		return
	}

	response, err := h.claims.SubmitBatch(c.Request.Context(), request)
	if err != nil {
		if errors.Is(err, dto.ErrEmptyBatch) || errors.Is(err, dto.ErrUnknownClaimType) {
			sendError(c, http.StatusBadRequest, "CLAIM_SUBMISSION_FAILED", err.Error(), err)
			return
		}
		sendError(c, http.StatusInternalServerError, "CLAIM_SUBMISSION_FAILED", "Failed to submit claims", err)
		return
	}

	log.Info().Strs("claim_numbers", response.ClaimNumbers).Msg("claim batch submitted")
	c.JSON(http.StatusCreated, response)
}

// List handles GET /api/v1/claims.
func (h *ClaimHandler) List(c *gin.Context) {
	claims, err := h.claims.List()
	if err != nil {
		sendError(c, http.StatusInternalServerError, "CLAIM_LOOKUP_FAILED", "Failed to list claims", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

// Get handles GET /api/v1/claims/:number.
func (h *ClaimHandler) Get(c *gin.Context) {
	claim, err := h.claims.Get(c.Param("number"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			sendError(c, http.StatusNotFound, "CLAIM_NOT_FOUND", "Claim not found", err)
			return
		}
		sendError(c, http.StatusInternalServerError, "CLAIM_LOOKUP_FAILED", "Failed to load claim", err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

// DuplicateCheck handles POST /api/v1/claims/duplicate-check.
func (h *ClaimHandler) DuplicateCheck(c *gin.Context) {
	var request dto.DuplicateCheckRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		sendError(c, http.StatusBadRequest, "DUPLICATE_CHECK_FAILED", "Invalid request body", err)
		return
	}

	response, err := h.dup.Check(c.Request.Context(), request)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "DUPLICATE_CHECK_FAILED", "Failed to run duplicate check", err)
		return
	}
	c.JSON(http.StatusOK, response)
}
