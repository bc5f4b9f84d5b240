package dto

import "errors"

// Custom errors
var (
	ErrNoFiles          = errors.New("at least one document file is required")
	ErrUnknownClaimType = errors.New("claim_type must be reimbursement or allowance")
	ErrEmptyBatch       = errors.New("batch must contain at least one claim")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ExtractResponse is the document-extraction result. DocumentID identifies
// the processed file content so repeated uploads can be recognized.
type ExtractResponse struct {
	DocumentID  string           `json:"document_id"`
	Claims      []ExtractedClaim `json:"claims"`
	OCR         OCRResult        `json:"ocr"`
	Quality     DocumentQuality  `json:"quality"`
	ProcessedAt string           `json:"processed_at"`
}

// DuplicateCheckResponse reports whether a matching claim already exists.
// MatchType is "exact", "fuzzy" or "".
type DuplicateCheckResponse struct {
	IsDuplicate     bool     `json:"is_duplicate"`
	MatchType       string   `json:"match_type,omitempty"`
	DuplicateClaims []string `json:"duplicate_claims,omitempty"`
}

// BatchClaimResponse lists the claim numbers assigned to an accepted batch.
type BatchClaimResponse struct {
	ClaimNumbers []string `json:"claim_numbers"`
	SubmittedAt  string   `json:"submitted_at"`
}
