package helpers

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// -----------------------------------------------------------------------------

func TestErrorTypesMatchWithErrorsAs(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")

	var setupErr *ConnectionSetupError
	if !errors.As(error(NewConnectionSetupError("bad endpoint", cause)), &setupErr) {
		t.Error("ConnectionSetupError does not match errors.As")
	}

	var notConn *NotConnectedError
	if !errors.As(error(NewNotConnectedError("history request")), &notConn) {
		t.Error("NotConnectedError does not match errors.As")
	}

	var apiErr *RemoteApiError
	if !errors.As(error(NewRemoteApiError("InvalidSymbol", "bad symbol")), &apiErr) {
		t.Fatal("RemoteApiError does not match errors.As")
	}
	if apiErr.Code != "InvalidSymbol" {
		t.Errorf("code = %q, want InvalidSymbol", apiErr.Code)
	}

	var malformed *MalformedPayloadError
	if !errors.As(error(NewMalformedPayloadError(cause)), &malformed) {
		t.Error("MalformedPayloadError does not match errors.As")
	}

	var transport *TransportError
	if !errors.As(error(NewTransportError("read failed", cause)), &transport) {
		t.Error("TransportError does not match errors.As")
	}
}

// -----------------------------------------------------------------------------

func TestErrorUnwrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := NewTransportError("write failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is does not reach the wrapped cause")
	}
	if !strings.Contains(err.Error(), "underlying") {
		t.Errorf("Error() = %q, want it to include the cause", err.Error())
	}

	// Without a cause the message stands alone
	bare := NewNotConnectedError("write")
	if bare.Unwrap() != nil {
		t.Error("Unwrap should be nil without a cause")
	}
	if !strings.Contains(bare.Error(), "open session") {
		t.Errorf("Error() = %q, want the operation context", bare.Error())
	}
}

// -----------------------------------------------------------------------------

func TestErrorHandlerToleratesNil(t *testing.T) {
	h := NewErrorHandler()

	// Must be a no-op, not a panic
	h.Handle(nil, "anything")
	h.Handle(fmt.Errorf("boom"), "tick persistence")
}
