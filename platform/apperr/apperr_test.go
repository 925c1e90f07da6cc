package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Validation("x"), http.StatusBadRequest},
		{BadRequest("x"), http.StatusBadRequest},
		{Conflict("x"), http.StatusConflict},
		{Forbidden("x"), http.StatusForbidden},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Internal("x"), http.StatusInternalServerError},
		{Unprocessable("x"), http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Errorf("kind %d: HTTPStatus() = %d, want %d", tc.err.Kind, got, tc.want)
		}
	}
}

func TestGetKindUnwrapsChain(t *testing.T) {
	base := Unprocessable("rejected")
	wrapped := fmt.Errorf("change status: %w", base)

	if GetKind(wrapped) != KindUnprocessable {
		t.Fatalf("expected KindUnprocessable through wrapping, got %d", GetKind(wrapped))
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatal("expected KindUnknown for plain errors")
	}
}

func TestRetryableConflict(t *testing.T) {
	err := fmt.Errorf("write: %w", RetryableConflict("stale version"))
	if !IsRetryable(err) {
		t.Fatal("expected retryable conflict")
	}
	if !Is(err, KindConflict) {
		t.Fatal("expected conflict kind")
	}
	if IsRetryable(Conflict("duplicate")) {
		t.Fatal("plain conflict must not be retryable")
	}
}

func TestErrorIncludesOp(t *testing.T) {
	err := NotFound("lead not found").WithOp("leads.GetByID")
	if err.Error() != "leads.GetByID: lead not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
