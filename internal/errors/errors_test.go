package errors

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")

	err := Wrap(ProviderError, "semrush call failed", cause)

	if err.Code != ProviderError {
		t.Errorf("Code = %v, want %v", err.Code, ProviderError)
	}
	if err.Message != "semrush call failed" {
		t.Errorf("Message = %q, want %q", err.Message, "semrush call failed")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestFacetError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      CacheError,
			message:   "cache read failed",
			cause:     errors.New("database is locked"),
			wantParts: []string{"CACHE_ERROR", "cache read failed", "database is locked"},
		},
		{
			name:      "without cause",
			code:      ValidationError,
			message:   "unknown gender 'enfant'",
			cause:     nil,
			wantParts: []string{"VALIDATION_ERROR", "unknown gender 'enfant'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err *FacetError
			if tt.cause != nil {
				err = Wrap(tt.code, tt.message, tt.cause)
			} else {
				err = New(tt.code, tt.message)
			}
			got := err.Error()

			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, should contain %q", got, part)
				}
			}
		})
	}
}

func TestCode(t *testing.T) {
	base := New(NotFound, "unknown segment")
	wrapped := fmt.Errorf("resolve: %w", base)

	if got := Code(wrapped); got != NotFound {
		t.Errorf("Code(wrapped) = %q, want %q", got, NotFound)
	}
	if got := Code(errors.New("plain")); got != "" {
		t.Errorf("Code(plain) = %q, want empty", got)
	}
	if !IsCode(wrapped, NotFound) {
		t.Error("IsCode should match through wrapping")
	}
	if IsCode(nil, NotFound) {
		t.Error("IsCode(nil) should be false")
	}
}

func TestAsFacetError(t *testing.T) {
	base := New(CacheError, "cache unreadable")
	if got := AsFacetError(fmt.Errorf("purge: %w", base)); got != base {
		t.Errorf("AsFacetError(wrapped) = %v, want the original FacetError", got)
	}

	plain := errors.New("unexpected EOF")
	got := AsFacetError(plain)
	if got.Code != InternalError {
		t.Errorf("Code = %q, want %q", got.Code, InternalError)
	}
	if !errors.Is(got, plain) {
		t.Error("plain error should stay in the chain")
	}
	if len(got.SuggestedFixes) != 0 {
		t.Errorf("SuggestedFixes = %v, want none", got.SuggestedFixes)
	}
}

func TestFacetError_WithDetails(t *testing.T) {
	err := New(ValidationError, "unknown gender").WithDetails([]string{"femme", "homme"})
	if !reflect.DeepEqual(err.Details, []string{"femme", "homme"}) {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	fixes := GetSuggestedFixes(ConfigurationError)
	if len(fixes) == 0 {
		t.Fatal("expected fixes for CONFIGURATION_ERROR")
	}
	if fixes[0].Variable != "SEMRUSH_API_KEY" {
		t.Errorf("first fix variable = %q, want SEMRUSH_API_KEY", fixes[0].Variable)
	}

	if fixes := GetSuggestedFixes(InternalError); fixes != nil {
		t.Errorf("expected no fixes for INTERNAL_ERROR, got %v", fixes)
	}
}

func TestNewCarriesFixes(t *testing.T) {
	err := Newf(ValidationError, "unknown category %q", "chaussures")
	if len(err.SuggestedFixes) == 0 {
		t.Error("validation errors should suggest listing the catalog")
	}
	if !strings.Contains(err.Error(), `"chaussures"`) {
		t.Errorf("Error() = %q, want formatted category", err.Error())
	}
}
