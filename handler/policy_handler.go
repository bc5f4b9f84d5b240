package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finqube/claimflow/config"
	"github.com/finqube/claimflow/dto"
	"github.com/finqube/claimflow/policy"
)

// PolicyHandler serves category listings and synchronous policy checks.
type PolicyHandler struct {
	cfg *config.MasterConfig
}

func NewPolicyHandler(cfg *config.MasterConfig) *PolicyHandler {
	return &PolicyHandler{cfg: cfg}
}

// Categories handles GET /api/v1/categories. The "Other" sentinel is always
// last in the list.
func (h *PolicyHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.cfg.CategoryOptions()})
}

// Check handles POST /api/v1/claims/policy-check.
func (h *PolicyHandler) Check(c *gin.Context) {
	var request dto.PolicyCheckRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		sendError(c, http.StatusBadRequest, "POLICY_CHECK_FAILED", "Invalid request body", err)
		return
	}

	checks := policy.Evaluate(request.Category, request.Amount, request.Date, h.cfg.Option(request.Category), time.Now())
	c.JSON(http.StatusOK, gin.H{"checks": checks})
}
