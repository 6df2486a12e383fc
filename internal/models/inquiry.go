// internal/models/inquiry.go
package models

import (
	"strings"

	"devstudio-site/internal/common/validation"
)

// Field names as they appear on the wire and in form posts.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldCompany      = "company"
	FieldBudgetRange  = "budgetRange"
	FieldProjectBrief = "projectBrief"
)

// InquiryFields lists the fields in form order.
var InquiryFields = []string{FieldName, FieldEmail, FieldCompany, FieldBudgetRange, FieldProjectBrief}

// BudgetOptions are the accepted budgetRange values, in display order.
var BudgetOptions = []string{
	"Below $10k",
	"$10k - $25k",
	"$25k - $50k",
	"$50k - $100k",
	"$100k+",
}

// Inquiry is one contact form submission. It only lives for the duration of
// a request.
type Inquiry struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Company      string `json:"company"`
	BudgetRange  string `json:"budgetRange"`
	ProjectBrief string `json:"projectBrief"`
}

// Normalize returns a copy with every field trimmed.
func (i Inquiry) Normalize() Inquiry {
	return Inquiry{
		Name:         strings.TrimSpace(i.Name),
		Email:        strings.TrimSpace(i.Email),
		Company:      strings.TrimSpace(i.Company),
		BudgetRange:  strings.TrimSpace(i.BudgetRange),
		ProjectBrief: strings.TrimSpace(i.ProjectBrief),
	}
}

// MissingFields lists the fields that are blank after trimming, in form order.
func (i Inquiry) MissingFields() []string {
	var missing []string
	for _, f := range InquiryFields {
		if strings.TrimSpace(i.Get(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Get returns the value of a field by wire name.
func (i Inquiry) Get(field string) string {
	switch field {
	case FieldName:
		return i.Name
	case FieldEmail:
		return i.Email
	case FieldCompany:
		return i.Company
	case FieldBudgetRange:
		return i.BudgetRange
	case FieldProjectBrief:
		return i.ProjectBrief
	}
	return ""
}

// Set assigns a field by wire name. Unknown names are ignored and reported.
func (i *Inquiry) Set(field, value string) bool {
	switch field {
	case FieldName:
		i.Name = value
	case FieldEmail:
		i.Email = value
	case FieldCompany:
		i.Company = value
	case FieldBudgetRange:
		i.BudgetRange = value
	case FieldProjectBrief:
		i.ProjectBrief = value
	default:
		return false
	}
	return true
}

// ToMap returns the fields keyed by wire name.
func (i Inquiry) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(InquiryFields))
	for _, f := range InquiryFields {
		out[f] = i.Get(f)
	}
	return out
}

// ValidEmail reports whether email looks like local@domain.tld.
func ValidEmail(email string) bool {
	return validation.ValidateEmail(email)
}

// ValidBudgetRange reports whether v is one of BudgetOptions.
func ValidBudgetRange(v string) bool {
	for _, opt := range BudgetOptions {
		if opt == v {
			return true
		}
	}
	return false
}

// SubmissionResult is the relay's response body. Duplicate is set by callers
// that learn the relay already accepted the same idempotency key.
type SubmissionResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Duplicate bool   `json:"-"`
}
