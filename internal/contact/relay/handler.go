// internal/contact/relay/handler.go
package relay

import (
	"io"
	"net/http"

	"devstudio-site/internal/common/errors"
	"devstudio-site/internal/common/logger"
	"devstudio-site/internal/contact/idempotency"
)

type Handler struct {
	service    *Service
	config     *Config
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, service *Service, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"component": "contact-relay"})
	return &Handler{
		service:    service,
		config:     config,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
	}
}

// ServeHTTP answers {success:true} with 200 or {success:false, message}
// with the status of the failure.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		errors.WriteJSON(w, http.StatusMethodNotAllowed, errors.Response{Success: false, Message: "Method not allowed."})
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes))
	if err != nil {
		h.fail(w, r, errors.NewInvalidPayloadError(err))
		return
	}

	result, err := h.service.Execute(r.Context(), raw, r.Header.Get(idempotency.HeaderName))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.service.record(r.Context(), OutcomeSuccess)
	h.logger.Info("Inquiry accepted", map[string]interface{}{
		"channel": h.service.Channel(),
		"path":    r.URL.Path,
	})
	errors.WriteJSON(w, http.StatusOK, errors.Response{Success: result.Success})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.errHandler.Handle(w, r, err)
	h.service.record(r.Context(), string(stdErr.Code))
}

