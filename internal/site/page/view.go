package page

import (
	"devstudio-site/internal/contact/wizard"
	"devstudio-site/internal/models"
)

// HiddenField carries wizard state that is not editable on the current step.
type HiddenField struct {
	Name  string
	Value string
}

// WizardView is the template-facing snapshot of a wizard.
type WizardView struct {
	State       string
	Step        int
	Steps       []int
	Fields      models.Inquiry
	Errors      map[string]string
	SubmitError string
	Focus       string
	Submitting  bool
	Submitted   bool
	Hidden      []HiddenField
}

// fields editable on each step; everything else rides along hidden.
var stepFields = map[int][]string{
	1: {models.FieldName, models.FieldEmail},
	2: {models.FieldCompany, models.FieldBudgetRange},
	3: {models.FieldProjectBrief},
}

var hiddenOrder = []string{
	models.FieldName,
	models.FieldEmail,
	models.FieldCompany,
	models.FieldBudgetRange,
	models.FieldProjectBrief,
	wizard.FormKeySubmitError,
	wizard.FormKeySubmissionToken,
}

func newWizardView(w *wizard.Wizard) WizardView {
	state := w.State()
	step := w.Step()

	view := WizardView{
		State:       string(state),
		Step:        step,
		Steps:       []int{1, 2, 3},
		Fields:      w.Fields(),
		Errors:      w.Errors(),
		SubmitError: w.SubmitError(),
		Focus:       w.FocusField(),
		Submitting:  state == wizard.StateSubmitting,
		Submitted:   state == wizard.StateSubmitted,
	}

	// The submitted view has no inputs; its fields ride along so a
	// navigate back to the form keeps them.
	visible := make(map[string]bool)
	if !view.Submitted {
		for _, f := range stepFields[step] {
			visible[f] = true
		}
	}

	form := w.EncodeForm()
	for _, key := range hiddenOrder {
		if visible[key] {
			continue
		}
		if v := form.Get(key); v != "" {
			view.Hidden = append(view.Hidden, HiddenField{Name: key, Value: v})
		}
	}
	return view
}
