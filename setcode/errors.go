package setcode

import "fmt"

// ValidationError reports a malformed field caught locally, before any
// cryptographic work or network traffic.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SigningError reports malformed key material or a failed signing operation.
type SigningError struct {
	Op  string
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing failed (%s): %v", e.Op, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// TransportError reports a network-level failure: the request never produced
// a well-formed JSON-RPC response. For capability probing it means
// "indeterminate", not "unsupported"; callers may retry.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolRejection reports a well-formed JSON-RPC error object: the node was
// reached and rejected the request's semantics. For capability probing it is
// a confirmed negative; for submission it is a hard failure.
type ProtocolRejection struct {
	Code    int
	Message string
	Data    string
}

func (e *ProtocolRejection) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("RPC error %d: %s (%s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// PreValidation indicates the node rejected the request before reaching
// semantic validation of its content. A pre-validation rejection of the
// capability probe says nothing about SetCode support.
func (e *ProtocolRejection) PreValidation() bool {
	switch e.Code {
	case -32700, -32600, -32601:
		return true
	}
	return false
}
