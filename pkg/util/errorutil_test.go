package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestConstructorCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"validation", NewValidationError("bad", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"not found", NewNotFound("user", nil), "NOT_FOUND", http.StatusNotFound},
		{"unauthorized", NewUnauthorized("nope"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"conflict", NewConflict("taken", nil), "CONFLICT", http.StatusConflict},
		{"invalid state", NewInvalidState("done", nil), "INVALID_STATE", http.StatusConflict},
		{"unavailable", NewUnavailable("off", nil), "DOCTOR_UNAVAILABLE", http.StatusConflict},
		{"internal", NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsCode(tt.err, tt.wantCode) {
				t.Fatalf("code mismatch: %v, want %s", tt.err, tt.wantCode)
			}
			if de := ToDomainError(tt.err); de.HTTPStatus != tt.wantStatus {
				t.Fatalf("status = %d, want %d", de.HTTPStatus, tt.wantStatus)
			}
		})
	}
}

func TestToDomainErrorDriverMapping(t *testing.T) {
	if de := ToDomainError(pgx.ErrNoRows); de.Code != "NOT_FOUND" {
		t.Fatalf("pgx.ErrNoRows mapped to %s, want NOT_FOUND", de.Code)
	}

	uniqueViolation := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	if de := ToDomainError(uniqueViolation); de.Code != "CONFLICT" {
		t.Fatalf("unique violation mapped to %s, want CONFLICT", de.Code)
	}

	// wrapped driver errors still map
	wrapped := fmt.Errorf("insert user: %w", pgx.ErrNoRows)
	if de := ToDomainError(wrapped); de.Code != "NOT_FOUND" {
		t.Fatalf("wrapped ErrNoRows mapped to %s, want NOT_FOUND", de.Code)
	}

	if de := ToDomainError(errors.New("unknown")); de.Code != "INTERNAL_ERROR" {
		t.Fatalf("unknown error mapped to %s, want INTERNAL_ERROR", de.Code)
	}
	if ToDomainError(nil) != nil {
		t.Fatal("nil must map to nil")
	}
}

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewConflict("taken", map[string]any{"email": "a@b.c"})
	mapped := ToDomainError(original)
	if mapped.Code != "CONFLICT" || mapped.Details["email"] != "a@b.c" {
		t.Fatalf("passthrough lost data: %+v", mapped)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError(cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause not reachable via errors.Is")
	}
}
