package dto

// CheckStatus is the verdict of a single policy check.
type CheckStatus string

const (
	CheckPass     CheckStatus = "pass"
	CheckFail     CheckStatus = "fail"
	CheckWarning  CheckStatus = "warning"
	CheckChecking CheckStatus = "checking"
)

// PolicyCheck is one evaluated rule, recomputed from current form state and
// never persisted.
type PolicyCheck struct {
	ID      string      `json:"id"`
	Label   string      `json:"label"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message,omitempty"`
}

// CategoryOption is a selectable expense category with its policy limits.
type CategoryOption struct {
	Code                 string `json:"code"`
	APICode              string `json:"api_code,omitempty"`
	Label                string `json:"label"`
	MaxAmount            string `json:"max_amount,omitempty"`
	SubmissionWindowDays int    `json:"submission_window_days,omitempty"`
	Description          string `json:"description,omitempty"`
}

// CategoryOther is the sentinel option appended after all configured
// categories. Claims in it have no policy limits.
const CategoryOther = "other"
