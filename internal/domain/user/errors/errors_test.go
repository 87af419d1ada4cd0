package errors

import (
	"fmt"
	"testing"
)

func TestPredicatesMatchWrappedErrors(t *testing.T) {
	if !IsValidation(NewValidation("email is empty")) {
		t.Error("NewValidation should satisfy IsValidation")
	}
	if !IsInternal(WrapInternal(fmt.Errorf("boom"), "CreateUser")) {
		t.Error("WrapInternal should satisfy IsInternal")
	}
	if !IsInvalidToken(NewInvalidToken("refresh token is expired or used")) {
		t.Error("NewInvalidToken should satisfy IsInvalidToken")
	}
	if IsNotFound(NewValidation("x")) {
		t.Error("validation error must not satisfy IsNotFound")
	}
}
