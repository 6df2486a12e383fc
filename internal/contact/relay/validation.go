package relay

import (
	"devstudio-site/internal/common/errors"
	"devstudio-site/internal/common/validation"
	"devstudio-site/internal/models"
)

// payloadSchema only checks shape: a JSON object whose known properties, when
// present, are strings or null. Presence and content are checked on the
// normalized inquiry so that the error messages stay specific; null counts
// as blank.
const payloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "name":         {"type": ["string", "null"]},
    "email":        {"type": ["string", "null"]},
    "company":      {"type": ["string", "null"]},
    "budgetRange":  {"type": ["string", "null"]},
    "projectBrief": {"type": ["string", "null"]}
  }
}`

var payloadValidator = validation.MustDocumentValidator(payloadSchema)

func GetInputSchema() validation.JSONSchema {
	emailPattern := validation.EmailPattern
	return validation.JSONSchema{
		Type:     "object",
		Required: models.InquiryFields,
		Properties: map[string]validation.Property{
			models.FieldName: {
				Type:        "string",
				Description: "Submitter's full name",
				MinLength:   intPtr(1),
			},
			models.FieldEmail: {
				Type:        "string",
				Description: "Submitter's email address",
				MinLength:   intPtr(1),
				Pattern:     &emailPattern,
			},
			models.FieldCompany: {
				Type:        "string",
				Description: "Submitter's company",
				MinLength:   intPtr(1),
			},
			models.FieldBudgetRange: {
				Type:        "string",
				Description: "One of the published budget ranges",
				MinLength:   intPtr(1),
				Enum:        models.BudgetOptions,
			},
			models.FieldProjectBrief: {
				Type:        "string",
				Description: "Free-text description of the project",
				MinLength:   intPtr(1),
			},
		},
		AdditionalProperties: false,
	}
}

var inputSchema = GetInputSchema()

// validateInquiry applies the field rules in order: presence of every field,
// then the email format, then the budget range.
func validateInquiry(inq models.Inquiry) error {
	result := validation.ValidateInput(inq.ToMap(), inputSchema)
	if result.Valid {
		return nil
	}

	if result.HasCode(validation.CodeRequiredFieldMissing) || result.HasCode(validation.CodeMinLengthViolation) {
		missing := inq.MissingFields()
		field := ""
		if len(missing) > 0 {
			field = missing[0]
		}
		return errors.NewValidationError(errors.MsgAllFieldsRequired, field).
			WithMetadata("missingFields", missing)
	}
	if fieldErrs := result.GetErrorsForField(models.FieldEmail); len(fieldErrs) > 0 {
		return errors.NewValidationError(errors.MsgInvalidEmail, models.FieldEmail).
			WithMetadata("rule", fieldErrs[0].Code)
	}
	if fieldErrs := result.GetErrorsForField(models.FieldBudgetRange); len(fieldErrs) > 0 {
		return errors.NewValidationError(errors.MsgInvalidBudgetRange, models.FieldBudgetRange).
			WithMetadata("rule", fieldErrs[0].Code)
	}
	return errors.NewInvalidPayloadError(nil).WithMetadata("errors", result.GetErrorMessages())
}

func intPtr(i int) *int {
	return &i
}
