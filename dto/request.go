package dto

import "mime/multipart"

// ExtractRequest is the multipart document-extraction request.
type ExtractRequest struct {
	Files      []*multipart.FileHeader `form:"files[]" binding:"required"`
	EmployeeID string                  `form:"employee_id"`
}

// Validate performs basic validation on the request
func (r *ExtractRequest) Validate() error {
	if len(r.Files) == 0 {
		return ErrNoFiles
	}
	return nil
}

// DuplicateCheckRequest keys a duplicate probe. TransactionRef is optional.
type DuplicateCheckRequest struct {
	EmployeeID     string `json:"employee_id" binding:"required"`
	Amount         string `json:"amount" binding:"required"`
	Date           string `json:"date" binding:"required"`
	TransactionRef string `json:"transaction_ref,omitempty"`
}

// BatchClaimRequest submits a batch of extracted claims, or a single manually
// entered claim, as one atomic operation.
type BatchClaimRequest struct {
	EmployeeID string           `json:"employee_id" binding:"required"`
	ClaimType  ClaimType        `json:"claim_type" binding:"required"`
	Claims     []ExtractedClaim `json:"claims,omitempty"`
	Manual     *ClaimFormData   `json:"manual,omitempty"`
}

func (r *BatchClaimRequest) Validate() error {
	if r.ClaimType != ClaimTypeReimbursement && r.ClaimType != ClaimTypeAllowance {
		return ErrUnknownClaimType
	}
	if len(r.Claims) == 0 && r.Manual == nil {
		return ErrEmptyBatch
	}
	return nil
}

// PolicyCheckRequest asks for pass/fail/warning verdicts for a draft claim.
type PolicyCheckRequest struct {
	Category string `json:"category" binding:"required"`
	Amount   string `json:"amount,omitempty"`
	Date     string `json:"date,omitempty"`
}

// StartWizardRequest opens a submission wizard session.
type StartWizardRequest struct {
	EmployeeID string    `json:"employee_id" binding:"required"`
	ClaimType  ClaimType `json:"claim_type" binding:"required"`
}

// EditFieldRequest applies one user edit to a claim row in a wizard session.
type EditFieldRequest struct {
	ClaimID string `json:"claim_id" binding:"required"`
	Field   string `json:"field" binding:"required"`
	Value   string `json:"value"`
}
