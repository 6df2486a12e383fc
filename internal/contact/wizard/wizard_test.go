package wizard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonhttp "devstudio-site/internal/common/http"
	"devstudio-site/internal/contact/idempotency"
	"devstudio-site/internal/models"
)

// ==========================
// Test Helpers
// ==========================

func fill(t *testing.T, w *Wizard, inq models.Inquiry) {
	t.Helper()
	for _, f := range models.InquiryFields {
		require.NoError(t, w.SetField(f, inq.Get(f)))
	}
}

func createTestInquiryForm() url.Values {
	form := url.Values{}
	inq := createTestInquiry()
	for _, f := range models.InquiryFields {
		form.Set(f, inq.Get(f))
	}
	return form
}

func createTestInquiry() models.Inquiry {
	return models.Inquiry{
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		Company:      "Analytical Engines",
		BudgetRange:  "Below $10k",
		ProjectBrief: "A new landing page.",
	}
}

func succeed() Submitter {
	return SubmitterFunc(func(ctx context.Context, inq models.Inquiry, key string) (*models.SubmissionResult, error) {
		return &models.SubmissionResult{Success: true}, nil
	})
}

// atStep3 returns a filled wizard on the last step.
func atStep3(t *testing.T, s Submitter) *Wizard {
	t.Helper()
	w := New(WithSubmitter(s))
	fill(t, w, createTestInquiry())
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	require.Equal(t, StateStep3, w.State())
	return w
}

// ==========================
// Tests
// ==========================

func TestWizard_StartsAtStep1(t *testing.T) {
	w := New()
	assert.Equal(t, StateStep1, w.State())
	assert.Equal(t, 1, w.Step())
	assert.Empty(t, w.FocusField())
	assert.Empty(t, w.Errors())
}

func TestWizard_Step1Gate(t *testing.T) {
	tests := []struct {
		name       string
		fullName   string
		email      string
		wantErrors map[string]string
	}{
		{"empty", "", "", map[string]string{"name": MsgNameRequired, "email": MsgEmailInvalid}},
		{"blank name", "   ", "ada@example.com", map[string]string{"name": MsgNameRequired}},
		{"bad email", "Ada", "ada@example", map[string]string{"email": MsgEmailInvalid}},
		{"email with space", "Ada", "ada @example.com", map[string]string{"email": MsgEmailInvalid}},
		{"valid", "Ada", "  ada@example.com ", map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New()
			require.NoError(t, w.SetField("name", tt.fullName))
			require.NoError(t, w.SetField("email", tt.email))

			err := w.Next()
			assert.Equal(t, tt.wantErrors, w.Errors())
			if len(tt.wantErrors) > 0 {
				assert.ErrorIs(t, err, ErrInvalidFields)
				assert.Equal(t, StateStep1, w.State())
				assert.Empty(t, w.FocusField())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, StateStep2, w.State())
				assert.Equal(t, "company", w.FocusField())
			}
		})
	}
}

func TestWizard_Step2Gate(t *testing.T) {
	w := New()
	fill(t, w, models.Inquiry{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, w.Next())

	assert.ErrorIs(t, w.Next(), ErrInvalidFields)
	assert.Equal(t, map[string]string{"company": MsgCompanyMissing, "budgetRange": MsgBudgetMissing}, w.Errors())

	require.NoError(t, w.SetField("company", "Engines"))
	require.NoError(t, w.SetField("budgetRange", "$5"))
	assert.ErrorIs(t, w.Next(), ErrInvalidFields)
	assert.Equal(t, map[string]string{"budgetRange": MsgBudgetMissing}, w.Errors())

	require.NoError(t, w.SetField("budgetRange", "$100k+"))
	require.NoError(t, w.Next())
	assert.Equal(t, StateStep3, w.State())
	assert.Equal(t, "projectBrief", w.FocusField())
}

func TestWizard_SetFieldClearsOnlyThatError(t *testing.T) {
	w := New()
	require.ErrorIs(t, w.Next(), ErrInvalidFields)
	require.Len(t, w.Errors(), 2)

	require.NoError(t, w.SetField("name", "A"))
	assert.Equal(t, map[string]string{"email": MsgEmailInvalid}, w.Errors())

	assert.ErrorIs(t, w.SetField("phone", "1"), ErrUnknownField)
}

func TestWizard_BackNeverValidates(t *testing.T) {
	w := atStep3(t, succeed())
	require.NoError(t, w.SetField("name", ""))

	require.NoError(t, w.Back())
	assert.Equal(t, StateStep2, w.State())
	assert.Equal(t, "company", w.FocusField())

	require.NoError(t, w.Back())
	assert.Equal(t, StateStep1, w.State())
	assert.Equal(t, "name", w.FocusField())
	assert.Empty(t, w.Errors())

	require.NoError(t, w.Back())
	assert.Equal(t, StateStep1, w.State())
	assert.Empty(t, w.FocusField())
}

func TestWizard_SubmitSuccessAndReset(t *testing.T) {
	var got models.Inquiry
	w := atStep3(t, SubmitterFunc(func(ctx context.Context, inq models.Inquiry, key string) (*models.SubmissionResult, error) {
		got = inq
		return &models.SubmissionResult{Success: true}, nil
	}))

	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, StateSubmitted, w.State())
	assert.Equal(t, createTestInquiry(), got)

	w.Reset()
	assert.Equal(t, StateStep1, w.State())
	assert.Equal(t, models.Inquiry{}, w.Fields())
	assert.Empty(t, w.Errors())
	assert.Empty(t, w.SubmitError())
	assert.Equal(t, "name", w.FocusField())
}

func TestWizard_SubmitRequiresBrief(t *testing.T) {
	var calls int32
	w := atStep3(t, SubmitterFunc(func(ctx context.Context, inq models.Inquiry, key string) (*models.SubmissionResult, error) {
		atomic.AddInt32(&calls, 1)
		return &models.SubmissionResult{Success: true}, nil
	}))
	require.NoError(t, w.SetField("projectBrief", "  "))

	assert.ErrorIs(t, w.Submit(context.Background()), ErrInvalidFields)
	assert.Equal(t, map[string]string{"projectBrief": MsgBriefMissing}, w.Errors())
	assert.Equal(t, StateStep3, w.State())
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestWizard_SubmitOnlyFromLastStep(t *testing.T) {
	w := New(WithSubmitter(succeed()))
	assert.ErrorIs(t, w.Submit(context.Background()), ErrTransitionNotAllowed)
	assert.Equal(t, StateStep1, w.State())
}

func TestWizard_SubmitFailures(t *testing.T) {
	tests := []struct {
		name    string
		result  *models.SubmissionResult
		err     error
		wantMsg string
	}{
		{"network", nil, errors.New("dial tcp: refused"), MsgNetworkError},
		{"relay message", &models.SubmissionResult{Success: false, Message: "Unable to send inquiry right now."}, nil, "Unable to send inquiry right now."},
		{"relay without message", &models.SubmissionResult{Success: false}, nil, MsgSubmitFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := atStep3(t, SubmitterFunc(func(ctx context.Context, inq models.Inquiry, key string) (*models.SubmissionResult, error) {
				return tt.result, tt.err
			}))

			require.NoError(t, w.Submit(context.Background()))
			assert.Equal(t, StateError, w.State())
			assert.Equal(t, 3, w.Step())
			assert.Equal(t, tt.wantMsg, w.SubmitError())
			assert.Equal(t, createTestInquiry(), w.Fields())
		})
	}
}

func TestWizard_ErrorBehavesAsStep3(t *testing.T) {
	attempts := 0
	var keys []string
	w := atStep3(t, SubmitterFunc(func(ctx context.Context, inq models.Inquiry, key string) (*models.SubmissionResult, error) {
		attempts++
		keys = append(keys, key)
		if attempts == 1 {
			return nil, errors.New("offline")
		}
		return &models.SubmissionResult{Success: true}, nil
	}))

	require.NoError(t, w.Submit(context.Background()))
	require.Equal(t, StateError, w.State())

	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, StateSubmitted, w.State())
	assert.Empty(t, w.SubmitError())
	assert.Equal(t, 2, attempts)
	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.Equal(t, keys[0], keys[1])
}

func TestWizard_SubmissionTokenLifecycle(t *testing.T) {
	w := New(WithSubmitter(succeed()))
	fill(t, w, createTestInquiry())
	assert.Empty(t, w.SubmissionToken())

	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	token := w.SubmissionToken()
	_, err := uuid.Parse(token)
	require.NoError(t, err)

	// back and forth keeps the token
	require.NoError(t, w.Back())
	require.NoError(t, w.Next())
	assert.Equal(t, token, w.SubmissionToken())

	w.Navigate("#contact")
	assert.Empty(t, w.SubmissionToken())
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	assert.NotEqual(t, token, w.SubmissionToken())

	require.NoError(t, w.Submit(context.Background()))
	assert.Empty(t, w.SubmissionToken())
}

func TestWizard_DuplicateCountsAsDelivered(t *testing.T) {
	w := atStep3(t, SubmitterFunc(func(ctx context.Context, inq models.Inquiry, key string) (*models.SubmissionResult, error) {
		return &models.SubmissionResult{Success: false, Message: "This inquiry was already submitted.", Duplicate: true}, nil
	}))

	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, StateSubmitted, w.State())
	assert.Empty(t, w.SubmitError())
}

func TestWizard_DoubleSubmitIsRejected(t *testing.T) {
	var calls int32
	var w *Wizard
	var inner error
	w = atStep3(t, SubmitterFunc(func(ctx context.Context, inq models.Inquiry, key string) (*models.SubmissionResult, error) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, StateSubmitting, w.State())
		inner = w.Submit(ctx)
		assert.ErrorIs(t, w.Back(), ErrSubmitInFlight)
		assert.ErrorIs(t, w.Next(), ErrSubmitInFlight)
		return &models.SubmissionResult{Success: true}, nil
	}))

	require.NoError(t, w.Submit(context.Background()))
	assert.ErrorIs(t, inner, ErrSubmitInFlight)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, StateSubmitted, w.State())
}

func TestWizard_SubmittedRefusesNavigationActions(t *testing.T) {
	w := atStep3(t, succeed())
	require.NoError(t, w.Submit(context.Background()))

	assert.ErrorIs(t, w.Next(), ErrTransitionNotAllowed)
	assert.ErrorIs(t, w.Back(), ErrTransitionNotAllowed)
	assert.ErrorIs(t, w.Submit(context.Background()), ErrTransitionNotAllowed)
}

func TestWizard_NavigateToContact(t *testing.T) {
	w := atStep3(t, succeed())
	require.NoError(t, w.Submit(context.Background()))

	w.Navigate("#services")
	assert.Equal(t, StateSubmitted, w.State())

	w.Navigate("#contact")
	assert.Equal(t, StateStep1, w.State())
	assert.Equal(t, "name", w.FocusField())
	assert.Equal(t, createTestInquiry(), w.Fields())
}

func TestWizard_Dispatch(t *testing.T) {
	w := New(WithSubmitter(succeed()))
	fill(t, w, createTestInquiry())

	for _, action := range []string{ActionNext, ActionNext, ActionSubmit} {
		require.NoError(t, w.Dispatch(context.Background(), action))
	}
	assert.Equal(t, StateSubmitted, w.State())

	require.NoError(t, w.Dispatch(context.Background(), ActionReset))
	assert.Equal(t, StateStep1, w.State())
	assert.ErrorIs(t, w.Dispatch(context.Background(), "jump"), ErrTransitionNotAllowed)
}

func TestWizard_FormRoundTrip(t *testing.T) {
	w := atStep3(t, nil)
	require.NoError(t, w.Submit(context.Background()))
	require.Equal(t, StateError, w.State())

	decoded := DecodeForm(w.EncodeForm())
	assert.Equal(t, StateError, decoded.State())
	assert.Equal(t, createTestInquiry(), decoded.Fields())
	assert.Equal(t, MsgSubmitFailed, decoded.SubmitError())
	assert.Empty(t, decoded.FocusField())
}

func TestDecodeForm_StateHandling(t *testing.T) {
	tests := []struct {
		state string
		want  State
	}{
		{"", StateStep1},
		{"bogus", StateStep1},
		{"step2", StateStep2},
		{"submitting", StateStep3},
		{"submitted", StateSubmitted},
	}
	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			form := createTestInquiryForm()
			form.Set(FormKeyState, tt.state)
			assert.Equal(t, tt.want, DecodeForm(form).State())
		})
	}
}

func TestDecodeForm_DemotesToFirstInvalidStep(t *testing.T) {
	tests := []struct {
		name       string
		state      State
		clear      []string
		wantState  State
		wantErrors map[string]string
	}{
		{"step3 missing step1", StateStep3, []string{models.FieldName, models.FieldEmail}, StateStep1,
			map[string]string{models.FieldName: MsgNameRequired, models.FieldEmail: MsgEmailInvalid}},
		{"step3 missing step2", StateStep3, []string{models.FieldBudgetRange}, StateStep2,
			map[string]string{models.FieldBudgetRange: MsgBudgetMissing}},
		{"error missing step1", StateError, []string{models.FieldEmail}, StateStep1,
			map[string]string{models.FieldEmail: MsgEmailInvalid}},
		{"step2 missing step1", StateStep2, []string{models.FieldName}, StateStep1,
			map[string]string{models.FieldName: MsgNameRequired}},
		{"step2 missing own field", StateStep2, []string{models.FieldCompany}, StateStep2, map[string]string{}},
		{"step3 valid", StateStep3, nil, StateStep3, map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := createTestInquiryForm()
			form.Set(FormKeyState, string(tt.state))
			form.Set(FormKeySubmitError, MsgNetworkError)
			form.Set(FormKeySubmissionToken, uuid.NewString())
			for _, f := range tt.clear {
				form.Set(f, "")
			}

			w := DecodeForm(form)
			assert.Equal(t, tt.wantState, w.State())
			assert.Equal(t, tt.wantErrors, w.Errors())
			if tt.wantState == tt.state {
				assert.Equal(t, MsgNetworkError, w.SubmitError())
				assert.NotEmpty(t, w.SubmissionToken())
				return
			}
			assert.Empty(t, w.SubmitError())
			assert.Empty(t, w.SubmissionToken())
			assert.Equal(t, firstField[w.Step()], w.FocusField())
		})
	}
}

func TestDecodeForm_SubmissionToken(t *testing.T) {
	token := uuid.NewString()
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"uuid", token, token},
		{"garbage", "not-a-token", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := createTestInquiryForm()
			form.Set(FormKeyState, string(StateStep3))
			form.Set(FormKeySubmissionToken, tt.value)
			assert.Equal(t, tt.want, DecodeForm(form).SubmissionToken())
		})
	}
}

func TestHTTPSubmitter(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    *models.SubmissionResult
		wantErr bool
	}{
		{"success", http.StatusOK, `{"success":true}`, &models.SubmissionResult{Success: true}, false},
		{"rejected", http.StatusBadGateway, `{"success":false,"message":"Unable to send inquiry right now."}`, &models.SubmissionResult{Message: "Unable to send inquiry right now."}, false},
		{"status wins", http.StatusInternalServerError, `{"success":true}`, &models.SubmissionResult{}, false},
		{"duplicate", http.StatusConflict, `{"success":false,"message":"This inquiry was already submitted."}`, &models.SubmissionResult{Message: "This inquiry was already submitted.", Duplicate: true}, false},
		{"not json", http.StatusOK, `<html>`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "key-1", r.Header.Get(idempotency.HeaderName))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s := NewHTTPSubmitter(srv.URL, commonhttp.NewClient(time.Second))
			got, err := s.Submit(context.Background(), createTestInquiry(), "key-1")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPSubmitter_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	w := atStep3(t, NewHTTPSubmitter(url, commonhttp.NewClient(time.Second)))
	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, MsgNetworkError, w.SubmitError())
}
