package setcode

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorUnwrapping(t *testing.T) {
	cause := errors.New("connection refused")

	transport := &TransportError{Op: "eth_estimateGas", Err: cause}
	if !errors.Is(transport, cause) {
		t.Error("TransportError does not unwrap to its cause")
	}

	signing := &SigningError{Op: "authorization", Err: cause}
	if !errors.Is(signing, cause) {
		t.Error("SigningError does not unwrap to its cause")
	}

	wrapped := fmt.Errorf("probe failed: %w", transport)
	var target *TransportError
	if !errors.As(wrapped, &target) {
		t.Error("wrapped TransportError not found by errors.As")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "gasLimit", Reason: "below intrinsic cost"}
	if !strings.Contains(err.Error(), "gasLimit") {
		t.Errorf("Error() = %q, want the field name included", err.Error())
	}
}

func TestProtocolRejectionPreValidation(t *testing.T) {
	testCases := []struct {
		code int
		want bool
	}{
		{-32700, true},
		{-32601, true},
		{-32600, true},
		{-32602, false},
		{-32000, false},
		{3, false},
	}

	for _, tc := range testCases {
		rejection := &ProtocolRejection{Code: tc.code, Message: "x"}
		if got := rejection.PreValidation(); got != tc.want {
			t.Errorf("PreValidation() for code %d = %v, want %v", tc.code, got, tc.want)
		}
	}
}
