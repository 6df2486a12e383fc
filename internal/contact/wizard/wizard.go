// Package wizard is the three-step contact form as an explicit state
// machine. It holds no server-side session: the whole state round-trips
// through the rendered form (see EncodeForm and DecodeForm).
package wizard

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	commonvalidation "devstudio-site/internal/common/validation"
	"devstudio-site/internal/models"
)

type State string

const (
	StateStep1      State = "step1"
	StateStep2      State = "step2"
	StateStep3      State = "step3"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
	StateError      State = "error"
)

// ContactAnchor is the fragment that returns the wizard to its first step.
const ContactAnchor = "contact"

// Inline field messages.
const (
	MsgNameRequired   = "Please enter your name."
	MsgEmailInvalid   = "Please enter a valid email."
	MsgCompanyMissing = "Please enter your company."
	MsgBudgetMissing  = "Please select a budget range."
	MsgBriefMissing   = "Please add a short project brief."
)

// Banner messages for a failed submission.
const (
	MsgNetworkError = "Network error. Please try again."
	MsgSubmitFailed = "Something went wrong. Please try again."
)

var (
	ErrInvalidFields        = errors.New("wizard: step has invalid fields")
	ErrSubmitInFlight       = errors.New("wizard: submission already in flight")
	ErrTransitionNotAllowed = errors.New("wizard: transition not allowed in current state")
	ErrUnknownField         = errors.New("wizard: unknown field")
)

var emailRegex = regexp.MustCompile(commonvalidation.EmailPattern)

// stepRules are the ozzo rules checked before leaving each step.
var stepRules = map[int]map[string][]validation.Rule{
	1: {
		models.FieldName: {validation.Required.Error(MsgNameRequired)},
		models.FieldEmail: {
			validation.Required.Error(MsgEmailInvalid),
			validation.Match(emailRegex).Error(MsgEmailInvalid),
		},
	},
	2: {
		models.FieldCompany: {validation.Required.Error(MsgCompanyMissing)},
		models.FieldBudgetRange: {
			validation.Required.Error(MsgBudgetMissing),
			validation.In(budgetValues()...).Error(MsgBudgetMissing),
		},
	},
	3: {
		models.FieldProjectBrief: {validation.Required.Error(MsgBriefMissing)},
	},
}

// firstField is the input focused when a step is entered.
var firstField = map[int]string{
	1: models.FieldName,
	2: models.FieldCompany,
	3: models.FieldProjectBrief,
}

// stepStates is the state that shows each step.
var stepStates = map[int]State{
	1: StateStep1,
	2: StateStep2,
	3: StateStep3,
}

func budgetValues() []interface{} {
	out := make([]interface{}, len(models.BudgetOptions))
	for i, v := range models.BudgetOptions {
		out[i] = v
	}
	return out
}

// Wizard is safe for concurrent use. The submitter is called without the
// lock held so the Submitting state is observable while it runs.
type Wizard struct {
	mu          sync.Mutex
	state       State
	fields      models.Inquiry
	errors      map[string]string
	submitError string
	focus       string
	token       string
	submitter   Submitter
}

// Option customizes a Wizard.
type Option func(*Wizard)

// WithSubmitter sets where Submit sends the inquiry.
func WithSubmitter(s Submitter) Option {
	return func(w *Wizard) { w.submitter = s }
}

func New(opts ...Option) *Wizard {
	w := &Wizard{state: StateStep1, errors: map[string]string{}}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// stepOf maps a state onto the form step it renders.
func stepOf(s State) int {
	switch s {
	case StateStep1:
		return 1
	case StateStep2:
		return 2
	default:
		return 3
	}
}

// enter moves to next and records the focus target when the visible step
// changes. Reaching step three mints the submission token. Callers hold mu.
func (w *Wizard) enter(next State) {
	if stepOf(next) != stepOf(w.state) {
		w.focus = firstField[stepOf(next)]
	}
	w.state = next
	if next == StateStep3 && w.token == "" {
		w.token = uuid.NewString()
	}
}

// validateStep replaces the error set with the failures of step.
func (w *Wizard) validateStep(step int) bool {
	next := map[string]string{}
	for field, rules := range stepRules[step] {
		value := strings.TrimSpace(w.fields.Get(field))
		if err := validation.Validate(value, rules...); err != nil {
			next[field] = err.Error()
		}
	}
	w.errors = next
	return len(next) == 0
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Step is the form step currently shown, 1 to 3.
func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return stepOf(w.state)
}

func (w *Wizard) Fields() models.Inquiry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fields
}

// Errors returns a copy of the inline field errors.
func (w *Wizard) Errors() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.errors))
	for k, v := range w.errors {
		out[k] = v
	}
	return out
}

func (w *Wizard) SubmitError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitError
}

// FocusField names the input to focus after the last transition, or "" when
// the step did not change.
func (w *Wizard) FocusField() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focus
}

// SubmissionToken is the idempotency key sent with Submit. It is minted on
// step three and kept across retries until the inquiry is delivered.
func (w *Wizard) SubmissionToken() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.token
}

// SetField updates one field and clears only that field's error.
func (w *Wizard) SetField(field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.fields.Set(field, value) {
		return ErrUnknownField
	}
	delete(w.errors, field)
	return nil
}

// Next advances one step when the current step's fields are valid. On step
// three it only validates.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.focus = ""

	switch w.state {
	case StateSubmitting:
		return ErrSubmitInFlight
	case StateSubmitted:
		return ErrTransitionNotAllowed
	}

	step := stepOf(w.state)
	if !w.validateStep(step) {
		return ErrInvalidFields
	}
	switch step {
	case 1:
		w.enter(StateStep2)
	case 2:
		w.enter(StateStep3)
	}
	return nil
}

// Back returns one step without validating. It is a no-op on step one.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.focus = ""

	switch w.state {
	case StateSubmitting:
		return ErrSubmitInFlight
	case StateSubmitted:
		return ErrTransitionNotAllowed
	case StateStep2:
		w.enter(StateStep1)
	case StateStep3, StateError:
		w.enter(StateStep2)
	}
	return nil
}

// Submit validates the brief and hands the inquiry to the submitter once,
// keyed by the submission token. A relay failure or transport error leaves
// the wizard in StateError with a banner message; the fields are kept. A
// relay that already holds the token counts as delivered.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	w.focus = ""
	switch w.state {
	case StateSubmitting:
		w.mu.Unlock()
		return ErrSubmitInFlight
	case StateStep3, StateError:
	default:
		w.mu.Unlock()
		return ErrTransitionNotAllowed
	}
	if !w.validateStep(3) {
		w.mu.Unlock()
		return ErrInvalidFields
	}
	if w.submitter == nil {
		w.state = StateError
		w.submitError = MsgSubmitFailed
		w.mu.Unlock()
		return nil
	}
	if w.token == "" {
		w.token = uuid.NewString()
	}
	w.state = StateSubmitting
	w.submitError = ""
	inq := w.fields
	token := w.token
	submitter := w.submitter
	w.mu.Unlock()

	result, err := submitter.Submit(ctx, inq, token)

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case err != nil:
		w.state = StateError
		w.submitError = MsgNetworkError
	case result != nil && result.Duplicate:
		w.state = StateSubmitted
		w.token = ""
	case result == nil || !result.Success:
		w.state = StateError
		w.submitError = MsgSubmitFailed
		if result != nil && result.Message != "" {
			w.submitError = result.Message
		}
	default:
		w.state = StateSubmitted
		w.token = ""
	}
	return nil
}

// Reset clears every field and message and returns to step one.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.focus = ""
	w.fields = models.Inquiry{}
	w.errors = map[string]string{}
	w.submitError = ""
	w.token = ""
	w.enter(StateStep1)
}

// Navigate handles the host page moving to anchor. Arriving at the contact
// anchor shows step one again; fields are kept and a fresh token is minted
// on the way back to step three.
func (w *Wizard) Navigate(anchor string) {
	if strings.TrimPrefix(anchor, "#") != ContactAnchor {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.focus = ""
	w.token = ""
	w.enter(StateStep1)
}

// Actions accepted by Dispatch.
const (
	ActionNext     = "next"
	ActionBack     = "back"
	ActionSubmit   = "submit"
	ActionReset    = "reset"
	ActionNavigate = "navigate"
)

// Dispatch applies a named action as posted by the rendered form.
func (w *Wizard) Dispatch(ctx context.Context, action string) error {
	switch action {
	case ActionNext:
		return w.Next()
	case ActionBack:
		return w.Back()
	case ActionSubmit:
		return w.Submit(ctx)
	case ActionReset:
		w.Reset()
		return nil
	case ActionNavigate:
		w.Navigate(ContactAnchor)
		return nil
	}
	return ErrTransitionNotAllowed
}
