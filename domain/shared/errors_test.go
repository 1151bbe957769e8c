package shared

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDomainErrorSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", NewNotFoundError("city"), ErrNotFound},
		{"conflict", NewConflictError("country", "slug taken"), ErrConflict},
		{"validation", NewValidationError("city", "name", "name is required"), ErrInvalidInput},
		{"unauthorized", NewUnauthorizedError("bad token"), ErrUnauthorized},
		{"transport", NewTransportError("city", "backend unreachable", io.EOF), ErrTransport},
		{"upload", NewUploadError("put object failed", io.ErrUnexpectedEOF), ErrUpload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			var de *DomainError
			if !errors.As(tt.err, &de) {
				t.Fatal("expected *DomainError")
			}
			if len(de.Stack()) == 0 {
				t.Error("stack should be captured at construction")
			}
		})
	}
}

func TestDomainErrorCause(t *testing.T) {
	err := NewTransportError("blog_post", "request failed", io.EOF)
	if !errors.Is(err, io.EOF) {
		t.Error("cause should be reachable through errors.Is")
	}
	if err.Error() != "request failed" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNotFoundMessage(t *testing.T) {
	if got := NewNotFoundError("testimonial").Error(); got != "testimonial not found" {
		t.Errorf("got %q", got)
	}
}

type sample struct {
	Name  string `json:"name" validate:"required,max=5"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestValidateStruct(t *testing.T) {
	if err := ValidateStruct("sample", &sample{Name: "ok"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := ValidateStruct("sample", &sample{})
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if de.Field != "name" || !errors.Is(err, ErrInvalidInput) {
		t.Errorf("field = %q, err = %v", de.Field, err)
	}

	err = ValidateStruct("sample", &sample{Name: "ok", Email: "nope"})
	if err == nil || !strings.Contains(err.Error(), "email") {
		t.Errorf("expected email error, got %v", err)
	}
}
