package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeMissingProvider, "no provider")
	if err.Code != ErrCodeMissingProvider {
		t.Errorf("expected code %s, got %s", ErrCodeMissingProvider, err.Code)
	}
	if err.Message != "no provider" {
		t.Errorf("expected message 'no provider', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
}

func TestAppError_MissingProvider(t *testing.T) {
	err := MissingProvider("database")
	if err.Code != ErrCodeMissingProvider {
		t.Errorf("expected MISSING_PROVIDER, got %s", err.Code)
	}
	if err.Details["key"] != "database" {
		t.Errorf("expected key=database, got %v", err.Details["key"])
	}
	if !strings.Contains(err.Error(), `"database"`) {
		t.Errorf("expected key in message, got %q", err.Error())
	}
}

func TestAppError_CyclicDependency(t *testing.T) {
	err := CyclicDependency([]string{"a", "b", "a"})
	if err.Code != ErrCodeCyclicDependency {
		t.Errorf("expected CYCLIC_DEPENDENCY, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "a -> b -> a") {
		t.Errorf("expected path in message, got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected 409, got %d", err.HTTPStatus)
	}
}

func TestAppError_TypeMismatch(t *testing.T) {
	err := TypeMismatch("port", "int", "string")
	if err.Details["expected"] != "int" || err.Details["actual"] != "string" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestAppError_ConstructionFailed(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := ConstructionFailed("database", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if !strings.Contains(err.Error(), "refused") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestAppError_InvalidInjection(t *testing.T) {
	err := InvalidInjection("first parameter must be a pointer receiver")
	if err.Code != ErrCodeInvalidInjection {
		t.Errorf("expected INVALID_INJECTION, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.HTTPStatus)
	}
}

func TestAppError_InvalidInput_Success(t *testing.T) {
	err := InvalidInput("bindings[0].key", "is required")
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", err.Code)
	}
	if err.Details["field"] != "bindings[0].key" {
		t.Errorf("expected field detail, got %v", err.Details["field"])
	}

	noField := InvalidInput("", "bad")
	if _, ok := noField.Details["field"]; ok {
		t.Error("expected no field detail when field is empty")
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := MissingProvider("svc").WithDetails(map[string]any{
		"scope": "abc",
	})
	if err.Details["scope"] != "abc" {
		t.Errorf("expected scope=abc in details")
	}
	if err.Details["key"] != "svc" {
		t.Error("expected original details to be preserved")
	}
}

func TestAppError_WithDetails_Nil(t *testing.T) {
	err := Internal(nil).WithDetails(nil)
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized even with nil input")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}

	err.WithDetail("key", "other")
	if err.Details["key"] != "other" {
		t.Errorf("expected key=other after overwrite")
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := MissingProvider("item").WithCause(cause)
	if err.Unwrap() != cause {
		t.Error("expected cause to be set via WithCause")
	}
}

func TestIsCode(t *testing.T) {
	inner := MissingProvider("db")
	outer := ConstructionFailed("service", inner)
	wrapped := fmt.Errorf("bootstrap: %w", outer)

	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"direct match", inner, ErrCodeMissingProvider, true},
		{"outer code", wrapped, ErrCodeConstructionFailed, true},
		{"nested cause", wrapped, ErrCodeMissingProvider, true},
		{"absent code", wrapped, ErrCodeCyclicDependency, false},
		{"plain error", fmt.Errorf("plain"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCode(tc.err, tc.code); got != tc.want {
				t.Errorf("IsCode() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStatusForCodeUnknown(t *testing.T) {
	if s := StatusForCode("SOMETHING_ELSE"); s != http.StatusInternalServerError {
		t.Errorf("expected 500 for unknown code, got %d", s)
	}
}

func TestToResponse(t *testing.T) {
	resp := MissingProvider("cache").ToResponse()
	if resp.Error.Code != ErrCodeMissingProvider {
		t.Errorf("expected MISSING_PROVIDER, got %s", resp.Error.Code)
	}
	if resp.Error.Details["key"] != "cache" {
		t.Errorf("expected key detail in response, got %v", resp.Error.Details)
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", InvalidInjection("bad"))
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to find the AppError")
	}
	if appErr.Code != ErrCodeInvalidInjection {
		t.Errorf("expected INVALID_INJECTION, got %s", appErr.Code)
	}

	if IsAppError(fmt.Errorf("plain")) {
		t.Error("expected plain error not to be an AppError")
	}
}
