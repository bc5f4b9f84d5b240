package dto

import "time"

type ClaimType string

const (
	ClaimTypeReimbursement ClaimType = "reimbursement"
	ClaimTypeAllowance     ClaimType = "allowance"
)

// FieldSource records the provenance of a single claim field.
type FieldSource string

const (
	SourceAuto   FieldSource = "auto"   // machine-extracted
	SourceManual FieldSource = "manual" // user-edited
	SourceNone   FieldSource = "none"
)

// Field names used as FieldSources keys.
const (
	FieldCategory       = "category"
	FieldTitle          = "title"
	FieldAmount         = "amount"
	FieldDate           = "date"
	FieldVendor         = "vendor"
	FieldDescription    = "description"
	FieldTransactionRef = "transaction_ref"
	FieldProjectCode    = "project_code"
)

// ExtractedClaim is one claim candidate produced from a processed document.
// Amount is a decimal string; Date is "2006-01-02" or empty.
type ExtractedClaim struct {
	ID             string                 `json:"id"`
	Selected       bool                   `json:"selected"`
	Category       string                 `json:"category"`
	Title          string                 `json:"title"`
	Amount         string                 `json:"amount"`
	Date           string                 `json:"date,omitempty"`
	Vendor         string                 `json:"vendor,omitempty"`
	Description    string                 `json:"description,omitempty"`
	RawText        string                 `json:"raw_text,omitempty"`
	TransactionRef string                 `json:"transaction_ref,omitempty"`
	ProjectCode    string                 `json:"project_code,omitempty"`
	FieldSources   map[string]FieldSource `json:"field_sources"`
}

// SetField applies a user edit. Every edit marks the field manual; a manual
// field is never flipped back to auto except by a fresh extraction that
// rebuilds the record.
func (c *ExtractedClaim) SetField(field, value string) {
	switch field {
	case FieldCategory:
		c.Category = value
	case FieldTitle:
		c.Title = value
	case FieldAmount:
		c.Amount = value
	case FieldDate:
		c.Date = value
	case FieldVendor:
		c.Vendor = value
	case FieldDescription:
		c.Description = value
	case FieldTransactionRef:
		c.TransactionRef = value
	case FieldProjectCode:
		c.ProjectCode = value
	default:
		return
	}
	if c.FieldSources == nil {
		c.FieldSources = make(map[string]FieldSource)
	}
	c.FieldSources[field] = SourceManual
}

// ClaimFormData is the manually entered single-claim draft.
type ClaimFormData struct {
	Category       string `json:"category"`
	Title          string `json:"title"`
	Amount         string `json:"amount"`
	Date           string `json:"date"`
	Vendor         string `json:"vendor,omitempty"`
	TransactionRef string `json:"transaction_ref,omitempty"`
	Description    string `json:"description,omitempty"`
	ProjectCode    string `json:"project_code,omitempty"`
	CostCenter     string `json:"cost_center,omitempty"`
}

// Claim is a persisted claim record. The claim number is assigned by the
// store at creation time.
type Claim struct {
	ClaimNumber    string                 `json:"claim_number"`
	EmployeeID     string                 `json:"employee_id"`
	ClaimType      ClaimType              `json:"claim_type"`
	Category       string                 `json:"category"`
	Title          string                 `json:"title"`
	Amount         string                 `json:"amount"`
	Date           string                 `json:"date,omitempty"`
	Vendor         string                 `json:"vendor,omitempty"`
	Description    string                 `json:"description,omitempty"`
	TransactionRef string                 `json:"transaction_ref,omitempty"`
	ProjectCode    string                 `json:"project_code,omitempty"`
	CostCenter     string                 `json:"cost_center,omitempty"`
	Status         string                 `json:"status"`
	FieldSources   map[string]FieldSource `json:"field_sources,omitempty"`
	SubmittedAt    time.Time              `json:"submitted_at"`
}
