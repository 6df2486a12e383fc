// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
)

// Response is the normalized body returned by the relay endpoints.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorHandler writes StandardErrors as HTTP responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err and renders it as {success:false, message}. It returns the
// normalized error so callers can record metrics against its code.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) *StandardError {
	stdErr := Normalize(err)
	if stdErr == nil {
		return nil
	}
	h.logError(r, stdErr)
	WriteError(w, stdErr)
	return stdErr
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError) {
	if h.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"status":        HTTPStatus(stdErr.Code),
	}
	if r != nil {
		fields["path"] = r.URL.Path
		fields["method"] = r.Method
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	// Client mistakes are routine; anything else needs attention.
	if IsUserFixable(stdErr.Code) {
		h.logger.Warn("Request rejected", fields)
		return
	}
	h.logger.Error("Request failed", fields)
}

// WriteError renders err with the status of its code.
func WriteError(w http.ResponseWriter, err error) {
	stdErr := Normalize(err)
	WriteJSON(w, HTTPStatus(stdErr.Code), Response{Success: false, Message: stdErr.Message})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
