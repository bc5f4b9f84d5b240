// Package policy evaluates draft claims against tenant-configured category
// limits. Evaluators are pure functions; they are recomputed on every field
// change and never persisted.
package policy

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finqube/claimflow/dto"
)

// EvaluateAmount checks the claim amount against the category's maximum.
func EvaluateAmount(category, amount string, option *dto.CategoryOption) dto.PolicyCheck {
	check := dto.PolicyCheck{ID: "amount_limit", Label: "Amount within policy limit"}

	if category == dto.CategoryOther || option == nil || option.MaxAmount == "" {
		check.Status = dto.CheckWarning
		check.Message = "No policy limits configured for this category"
		return check
	}
	if amount == "" {
		check.Status = dto.CheckChecking
		return check
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		check.Status = dto.CheckChecking
		return check
	}
	limit, err := decimal.NewFromString(option.MaxAmount)
	if err != nil {
		check.Status = dto.CheckWarning
		check.Message = "No policy limits configured for this category"
		return check
	}

	if value.GreaterThan(limit) {
		check.Status = dto.CheckFail
		check.Message = fmt.Sprintf("Amount %s exceeds the %s limit of %s", amount, option.Label, option.MaxAmount)
		return check
	}
	check.Status = dto.CheckPass
	return check
}

// EvaluateDate checks the claim date against the category's submission
// window. now is injected so the check stays deterministic under test.
func EvaluateDate(category, date string, option *dto.CategoryOption, now time.Time) dto.PolicyCheck {
	check := dto.PolicyCheck{ID: "submission_window", Label: "Within submission window"}

	if category == dto.CategoryOther || option == nil || option.SubmissionWindowDays <= 0 {
		check.Status = dto.CheckWarning
		check.Message = "No policy limits configured for this category"
		return check
	}
	if date == "" {
		check.Status = dto.CheckChecking
		return check
	}

	claimDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		check.Status = dto.CheckChecking
		return check
	}

	age := int(now.Sub(claimDate).Hours() / 24)
	if age > option.SubmissionWindowDays {
		check.Status = dto.CheckFail
		check.Message = fmt.Sprintf("Claim is %d days old, window is %d days", age, option.SubmissionWindowDays)
		return check
	}
	check.Status = dto.CheckPass
	return check
}

// Evaluate runs all local checks for a draft claim. The duplicate check is
// asynchronous and reported separately by the duplicate service.
func Evaluate(category, amount, date string, option *dto.CategoryOption, now time.Time) []dto.PolicyCheck {
	return []dto.PolicyCheck{
		EvaluateAmount(category, amount, option),
		EvaluateDate(category, date, option, now),
	}
}
