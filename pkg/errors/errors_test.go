package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"expoadmin/domain/shared"
)

func TestFromDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   ErrorCode
		wantStatus int
	}{
		{"not found", shared.NewNotFoundError("city"), CodeNotFound, http.StatusNotFound},
		{"validation", shared.NewValidationError("city", "name", "name is required"), CodeValidation, http.StatusBadRequest},
		{"conflict", shared.NewConflictError("city", "duplicate"), CodeConflict, http.StatusConflict},
		{"unauthorized", shared.NewUnauthorizedError("no token"), CodeUnauthorized, http.StatusUnauthorized},
		{"transport", shared.NewTransportError("city", "down", nil), CodeTransport, http.StatusBadGateway},
		{"upload", shared.NewUploadError("put failed", nil), CodeUpload, http.StatusBadGateway},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), CodeTransport, http.StatusBadGateway},
		{"wrapped", fmt.Errorf("service: %w", shared.NewNotFoundError("country")), CodeNotFound, http.StatusNotFound},
		{"plain", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomainError(tt.err)
			if appErr.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", appErr.Code, tt.wantCode)
			}
			if appErr.HTTPStatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", appErr.HTTPStatusCode(), tt.wantStatus)
			}
		})
	}

	if FromDomainError(nil) != nil {
		t.Error("nil error should map to nil")
	}
}

func TestFromDomainErrorKeepsField(t *testing.T) {
	appErr := FromDomainError(shared.NewValidationError("trade_show", "end_date", "end_date must not be before start_date"))
	if appErr.Field != "end_date" {
		t.Errorf("field = %q", appErr.Field)
	}
	if appErr.Message != "end_date must not be before start_date" {
		t.Errorf("message = %q", appErr.Message)
	}
}

type emptyErr struct{}

func (emptyErr) Error() string { return "" }

func TestDescribe(t *testing.T) {
	if Describe(nil) != "" {
		t.Error("nil should describe as empty string")
	}
	if got := Describe(shared.NewNotFoundError("city")); got != "city not found" {
		t.Errorf("got %q", got)
	}
	if got := Describe(fmt.Errorf("wrap: %w", Validation("bad field"))); got != "bad field" {
		t.Errorf("got %q", got)
	}
	if got := Describe(emptyErr{}); got != UnknownMessage {
		t.Errorf("got %q, want %q", got, UnknownMessage)
	}
}
