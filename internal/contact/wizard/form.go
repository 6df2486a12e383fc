package wizard

import (
	"net/url"

	"github.com/google/uuid"

	"devstudio-site/internal/models"
)

// Form keys besides the field names.
const (
	FormKeyState           = "state"
	FormKeyAction          = "action"
	FormKeySubmitError     = "submitError"
	FormKeySubmissionToken = "submissionToken"
)

// EncodeForm returns the hidden state the rendered form posts back.
func (w *Wizard) EncodeForm() url.Values {
	w.mu.Lock()
	defer w.mu.Unlock()

	values := url.Values{}
	values.Set(FormKeyState, string(w.state))
	for _, f := range models.InquiryFields {
		values.Set(f, w.fields.Get(f))
	}
	if w.submitError != "" {
		values.Set(FormKeySubmitError, w.submitError)
	}
	if w.token != "" {
		values.Set(FormKeySubmissionToken, w.token)
	}
	return values
}

// DecodeForm rebuilds a wizard from a posted form. Unknown states start
// over at step one; a posted Submitting state is treated as step three
// since no request can be in flight across posts. A state past a step whose
// fields fail validation is demoted to that step with its errors shown.
// Tokens that are not UUIDs are dropped.
func DecodeForm(form url.Values, opts ...Option) *Wizard {
	w := New(opts...)

	switch s := State(form.Get(FormKeyState)); s {
	case StateStep1, StateStep2, StateStep3, StateSubmitted, StateError:
		w.state = s
	case StateSubmitting:
		w.state = StateStep3
	}
	if w.state != StateSubmitted {
		w.submitError = form.Get(FormKeySubmitError)
	}

	for _, f := range models.InquiryFields {
		w.fields.Set(f, form.Get(f))
	}
	if token, err := uuid.Parse(form.Get(FormKeySubmissionToken)); err == nil {
		w.token = token.String()
	}

	w.demote()
	return w
}

// demote moves a posted step two, step three or error state back to the
// first earlier step that does not validate.
func (w *Wizard) demote() {
	switch w.state {
	case StateStep2, StateStep3, StateError:
	default:
		return
	}
	for step := 1; step < stepOf(w.state); step++ {
		if w.validateStep(step) {
			continue
		}
		w.submitError = ""
		w.token = ""
		w.state = stepStates[step]
		w.focus = firstField[step]
		return
	}
	w.errors = map[string]string{}
}
