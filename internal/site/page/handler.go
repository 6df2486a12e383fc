package page

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/flosch/pongo2/v6"

	"devstudio-site/internal/common/logger"
	"devstudio-site/internal/common/metrics"
	"devstudio-site/internal/contact/wizard"
	"devstudio-site/internal/models"
	"devstudio-site/pkg/content"
)

const (
	Route       = "/"
	WizardRoute = "/contact/wizard"
	StaticRoute = "/static/*"
)

// maxFormBytes bounds a wizard post; the brief is the only long field.
const maxFormBytes = 64 << 10

// Handler serves the page and the wizard's form posts.
type Handler struct {
	site      *content.Site
	renderer  *Renderer
	submitter wizard.Submitter
	baseURL   string
	logger    logger.Logger
	now       func() time.Time
}

// Option customizes a Handler.
type Option func(*Handler)

// WithBaseURL sets the canonical URL written into the page head.
func WithBaseURL(u string) Option {
	return func(h *Handler) { h.baseURL = u }
}

func NewHandler(site *content.Site, renderer *Renderer, submitter wizard.Submitter, log logger.Logger, opts ...Option) *Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	h := &Handler{
		site:      site,
		renderer:  renderer,
		submitter: submitter,
		baseURL:   site.Meta.BaseURL,
		logger:    log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServePage renders the page with a fresh wizard on step one.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, wizard.New())
}

// ServeWizard applies one posted wizard action and renders the result. The
// form action carries the #contact fragment, so the browser lands on the
// wizard again.
func (h *Handler) ServeWizard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("Invalid wizard form", map[string]interface{}{"error": err.Error()})
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	wz := wizard.DecodeForm(r.PostForm, wizard.WithSubmitter(h.submitter))
	action := r.PostForm.Get(wizard.FormKeyAction)
	if action == "" {
		action = wizard.ActionNext
	}

	err := wz.Dispatch(r.Context(), action)
	switch {
	case err == nil, errors.Is(err, wizard.ErrInvalidFields):
	default:
		h.logger.Debug("Wizard action rejected", map[string]interface{}{
			"action": action,
			"state":  string(wz.State()),
			"error":  err.Error(),
		})
	}
	metrics.WizardTransitions.WithLabelValues(action, string(wz.State())).Inc()

	if wz.State() == wizard.StateError {
		h.logger.Warn("Wizard submission failed", map[string]interface{}{
			"message": wz.SubmitError(),
		})
	}

	h.render(w, r, http.StatusOK, wz)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, wz *wizard.Wizard) {
	data := pongo2.Context{
		"site":          h.site,
		"wizard":        newWizardView(wz),
		"wizardAction":  WizardRoute + "#" + wizard.ContactAnchor,
		"contactAnchor": wizard.ContactAnchor,
		"contactHref":   "#" + wizard.ContactAnchor,
		"budgetOptions": models.BudgetOptions,
		"baseURL":       h.baseURL,
		"year":          h.now().Year(),
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, data); err != nil {
		h.logger.Error("Failed to render page", map[string]interface{}{
			"error": err.Error(),
			"path":  r.URL.Path,
		})
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
