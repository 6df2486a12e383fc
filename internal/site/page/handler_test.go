package page

import (
	"context"
	"errors"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devstudio-site/internal/common/logger"
	"devstudio-site/internal/contact/wizard"
	"devstudio-site/internal/models"
	"devstudio-site/pkg/content"
)

// ==========================
// Test Helpers
// ==========================

type recordingSubmitter struct {
	calls  []models.Inquiry
	keys   []string
	result *models.SubmissionResult
	err    error
}

func (s *recordingSubmitter) Submit(_ context.Context, inq models.Inquiry, key string) (*models.SubmissionResult, error) {
	s.calls = append(s.calls, inq)
	s.keys = append(s.keys, key)
	return s.result, s.err
}

func createTestHandler(t *testing.T, sub wizard.Submitter) *Handler {
	t.Helper()
	site, err := content.Default()
	require.NoError(t, err)
	renderer, err := NewRenderer()
	require.NoError(t, err)
	return NewHandler(site, renderer, sub, logger.NewTestLogger(t))
}

func completeForm(state, action string) url.Values {
	return url.Values{
		wizard.FormKeyState:      {state},
		wizard.FormKeyAction:     {action},
		models.FieldName:         {"Ada Lovelace"},
		models.FieldEmail:        {"ada@example.com"},
		models.FieldCompany:      {"Analytical Engines"},
		models.FieldBudgetRange:  {"$10k - $25k"},
		models.FieldProjectBrief: {"Rebuild our marketing site."},
	}
}

func postWizard(t *testing.T, h *Handler, form url.Values) (*httptest.ResponseRecorder, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, WizardRoute, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeWizard(rec, req)
	return rec, rec.Body.String()
}

// ==========================
// Tests
// ==========================

func TestServePage_RendersEverySection(t *testing.T) {
	h := createTestHandler(t, nil)
	rec := httptest.NewRecorder()
	h.ServePage(rec, httptest.NewRequest(http.MethodGet, Route, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<title>"+h.site.Meta.Title+"</title>")
	assert.Contains(t, body, `property="og:title"`)
	for _, anchor := range h.site.Anchors() {
		assert.Contains(t, body, `id="`+anchor+`"`, "anchor %s", anchor)
	}
	for _, cs := range h.site.Work.CaseStudies {
		assert.Contains(t, body, html.EscapeString(cs.Title))
	}
	assert.Contains(t, body, "Step 1 of 3")
	assert.Contains(t, body, `action="/contact/wizard#contact"`)
	assert.Contains(t, body, `id="wizard-form"`)
	assert.NotContains(t, body, "autofocus")
}

func TestServePage_ContactLinksPostNavigate(t *testing.T) {
	h := createTestHandler(t, nil)
	rec := httptest.NewRecorder()
	h.ServePage(rec, httptest.NewRequest(http.MethodGet, Route, nil))

	body := rec.Body.String()
	// header nav, footer nav and the hero call to action
	assert.Equal(t, 3, strings.Count(body, `form="wizard-form" name="action" value="navigate"`))
	assert.NotContains(t, body, `href="#contact"`)
	assert.Contains(t, body, `href="#work"`)
}

func TestServePage_BackDisabledOnFirstStep(t *testing.T) {
	h := createTestHandler(t, nil)
	rec := httptest.NewRecorder()
	h.ServePage(rec, httptest.NewRequest(http.MethodGet, Route, nil))

	assert.Contains(t, rec.Body.String(), `value="back" disabled`)
}

func TestServeWizard_NextWithInvalidFieldsStays(t *testing.T) {
	h := createTestHandler(t, nil)
	form := url.Values{
		wizard.FormKeyState:  {string(wizard.StateStep1)},
		wizard.FormKeyAction: {wizard.ActionNext},
		models.FieldName:     {"  "},
		models.FieldEmail:    {"not-an-email"},
	}

	rec, body := postWizard(t, h, form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "Step 1 of 3")
	assert.Contains(t, body, wizard.MsgNameRequired)
	assert.Contains(t, body, wizard.MsgEmailInvalid)
	assert.Contains(t, body, `value="not-an-email"`)
}

func TestServeWizard_EditedFieldDropsItsError(t *testing.T) {
	h := createTestHandler(t, nil)
	form := url.Values{
		wizard.FormKeyState:  {string(wizard.StateStep1)},
		wizard.FormKeyAction: {wizard.ActionNext},
		models.FieldName:     {""},
		models.FieldEmail:    {"not-an-email"},
	}
	_, body := postWizard(t, h, form)
	require.Contains(t, body, wizard.MsgNameRequired)

	// the name is fixed, the email is still wrong
	form.Set(models.FieldName, "Ada Lovelace")
	_, body = postWizard(t, h, form)
	assert.Contains(t, body, "Step 1 of 3")
	assert.NotContains(t, body, wizard.MsgNameRequired)
	assert.Contains(t, body, wizard.MsgEmailInvalid)
}

func TestServeWizard_NextAdvancesAndCarriesFields(t *testing.T) {
	h := createTestHandler(t, nil)
	form := completeForm(string(wizard.StateStep1), wizard.ActionNext)

	_, body := postWizard(t, h, form)
	assert.Contains(t, body, "Step 2 of 3")
	assert.Contains(t, body, `id="company" name="company" value="Analytical Engines" placeholder="Company name" autofocus`)
	assert.Contains(t, body, `<input type="hidden" name="name" value="Ada Lovelace">`)
	assert.Contains(t, body, `<input type="hidden" name="email" value="ada@example.com">`)
	assert.Contains(t, body, `<option value="$10k - $25k" selected>`)
	assert.NotContains(t, body, `type="hidden" name="company"`)
}

func TestServeWizard_BackKeepsValuesWithoutValidating(t *testing.T) {
	h := createTestHandler(t, nil)
	form := completeForm(string(wizard.StateStep2), wizard.ActionBack)
	form.Set(models.FieldCompany, "")

	_, body := postWizard(t, h, form)
	assert.Contains(t, body, "Step 1 of 3")
	assert.NotContains(t, body, wizard.MsgCompanyMissing)
	assert.Contains(t, body, `value="Ada Lovelace"`)
	assert.Contains(t, body, "autofocus")
}

func TestServeWizard_SubmitSuccess(t *testing.T) {
	sub := &recordingSubmitter{result: &models.SubmissionResult{Success: true}}
	h := createTestHandler(t, sub)

	_, body := postWizard(t, h, completeForm(string(wizard.StateStep3), wizard.ActionSubmit))
	require.Len(t, sub.calls, 1)
	assert.Equal(t, "Ada Lovelace", sub.calls[0].Name)
	assert.Contains(t, body, "Thank you")
	assert.Contains(t, body, `value="reset"`)
	assert.NotContains(t, body, "Step 3 of 3")
}

func TestServeWizard_SubmitCarriesTokenAsKey(t *testing.T) {
	sub := &recordingSubmitter{result: &models.SubmissionResult{Success: false, Message: "Unable to send inquiry right now."}}
	h := createTestHandler(t, sub)

	// entering step three mints the token
	_, body := postWizard(t, h, completeForm(string(wizard.StateStep2), wizard.ActionNext))
	require.Contains(t, body, "Step 3 of 3")
	token := hiddenValue(t, body, wizard.FormKeySubmissionToken)

	form := completeForm(string(wizard.StateStep3), wizard.ActionSubmit)
	form.Set(wizard.FormKeySubmissionToken, token)
	_, body = postWizard(t, h, form)
	require.Len(t, sub.keys, 1)
	assert.Equal(t, token, sub.keys[0])
	// a failed delivery keeps the token for the retry
	assert.Equal(t, token, hiddenValue(t, body, wizard.FormKeySubmissionToken))
}

func TestServeWizard_SubmitShowsRelayMessage(t *testing.T) {
	sub := &recordingSubmitter{result: &models.SubmissionResult{Success: false, Message: "Invalid budget range."}}
	h := createTestHandler(t, sub)

	_, body := postWizard(t, h, completeForm(string(wizard.StateStep3), wizard.ActionSubmit))
	assert.Contains(t, body, "Step 3 of 3")
	assert.Contains(t, body, `<p class="submit-error">Invalid budget range.</p>`)
	assert.Contains(t, body, `<input type="hidden" name="submitError" value="Invalid budget range.">`)
}

func TestServeWizard_SubmitNetworkError(t *testing.T) {
	sub := &recordingSubmitter{err: errors.New("dial tcp: refused")}
	h := createTestHandler(t, sub)

	_, body := postWizard(t, h, completeForm(string(wizard.StateStep3), wizard.ActionSubmit))
	assert.Contains(t, body, wizard.MsgNetworkError)
	assert.Contains(t, body, `>Rebuild our marketing site.</textarea>`)
}

func TestServeWizard_SubmitWithEmptyBriefNeverCallsSubmitter(t *testing.T) {
	sub := &recordingSubmitter{result: &models.SubmissionResult{Success: true}}
	h := createTestHandler(t, sub)
	form := completeForm(string(wizard.StateStep3), wizard.ActionSubmit)
	form.Set(models.FieldProjectBrief, "   ")

	_, body := postWizard(t, h, form)
	assert.Empty(t, sub.calls)
	assert.Contains(t, body, wizard.MsgBriefMissing)
}

func TestServeWizard_ResetClearsFields(t *testing.T) {
	h := createTestHandler(t, nil)

	_, body := postWizard(t, h, completeForm(string(wizard.StateSubmitted), wizard.ActionReset))
	assert.Contains(t, body, "Step 1 of 3")
	assert.NotContains(t, body, "Ada Lovelace")
}

func TestServeWizard_NavigateReturnsToStep1(t *testing.T) {
	h := createTestHandler(t, nil)

	_, body := postWizard(t, h, completeForm(string(wizard.StateStep3), wizard.ActionNavigate))
	assert.Contains(t, body, "Step 1 of 3")
	assert.Contains(t, body, `id="name" name="name" value="Ada Lovelace" placeholder="Your full name" autofocus`)
	assert.Contains(t, body, `<input type="hidden" name="projectBrief" value="Rebuild our marketing site.">`)
}

func TestServeWizard_NavigateFromSubmittedKeepsFields(t *testing.T) {
	sub := &recordingSubmitter{result: &models.SubmissionResult{Success: true}}
	h := createTestHandler(t, sub)

	_, body := postWizard(t, h, completeForm(string(wizard.StateStep3), wizard.ActionSubmit))
	require.Contains(t, body, "Thank you")
	assert.Contains(t, body, `<input type="hidden" name="projectBrief" value="Rebuild our marketing site.">`)
	assert.NotContains(t, body, `name="`+wizard.FormKeySubmissionToken+`"`)

	_, body = postWizard(t, h, completeForm(string(wizard.StateSubmitted), wizard.ActionNavigate))
	assert.Contains(t, body, "Step 1 of 3")
	assert.Contains(t, body, `value="Ada Lovelace"`)
}

func TestServeWizard_ForgedStateIsDemoted(t *testing.T) {
	sub := &recordingSubmitter{result: &models.SubmissionResult{Success: true}}
	h := createTestHandler(t, sub)
	form := completeForm(string(wizard.StateStep3), wizard.ActionSubmit)
	form.Set(models.FieldName, "")
	form.Set(models.FieldEmail, "")
	form.Set(wizard.FormKeySubmitError, "Network error. Please try again.")

	_, body := postWizard(t, h, form)
	assert.Empty(t, sub.calls)
	assert.Contains(t, body, "Step 1 of 3")
	assert.Contains(t, body, wizard.MsgNameRequired)
	assert.Contains(t, body, wizard.MsgEmailInvalid)
	assert.NotContains(t, body, `class="submit-error"`)
}

func TestServeWizard_EscapesUserInput(t *testing.T) {
	h := createTestHandler(t, nil)
	form := completeForm(string(wizard.StateStep1), wizard.ActionNext)
	form.Set(models.FieldName, `<script>alert(1)</script>`)

	_, body := postWizard(t, h, form)
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestServeWizard_OversizedForm(t *testing.T) {
	h := createTestHandler(t, nil)
	form := completeForm(string(wizard.StateStep3), wizard.ActionSubmit)
	form.Set(models.FieldProjectBrief, strings.Repeat("x", maxFormBytes+1))

	rec, _ := postWizard(t, h, form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// hiddenValue returns the value of the hidden input called name.
func hiddenValue(t *testing.T, body, name string) string {
	t.Helper()
	marker := `<input type="hidden" name="` + name + `" value="`
	i := strings.Index(body, marker)
	require.GreaterOrEqual(t, i, 0, "hidden input %s", name)
	rest := body[i+len(marker):]
	return rest[:strings.Index(rest, `"`)]
}

func TestStaticHandler_ServesStylesheet(t *testing.T) {
	rec := httptest.NewRecorder()
	StaticHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/site.css", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".wizard")
}
