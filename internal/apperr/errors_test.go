package apperr

import (
	"errors"
	"fmt"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func TestInvalid_MatchesSentinel(t *testing.T) {
	err := Invalid(validation.Errors{"name": errors.New("cannot be blank")})
	wrapped := fmt.Errorf("collection: add: %w", err)

	if !errors.Is(wrapped, ErrValidation) {
		t.Fatal("expected ErrValidation")
	}
	var ve *ValidationError
	if !errors.As(wrapped, &ve) {
		t.Fatal("expected *ValidationError")
	}
	var fields validation.Errors
	if !errors.As(wrapped, &fields) {
		t.Fatal("field errors should stay reachable")
	}
	if _, ok := fields["name"]; !ok {
		t.Errorf("fields = %v", fields)
	}
}

func TestInvalid_Nil(t *testing.T) {
	if Invalid(nil) != nil {
		t.Error("Invalid(nil) should be nil")
	}
}

func TestInvalidf(t *testing.T) {
	err := Invalidf("at least one counter is required")
	if !errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		t.Errorf("unexpected matching for %v", err)
	}
	if err.Error() != "at least one counter is required" {
		t.Errorf("message = %q", err.Error())
	}
}
