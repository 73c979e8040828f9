package helpers

import (
	"fmt"

	"digit-observer/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type FeedError struct {
	Message string
	Cause   error
}

func (e *FeedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *FeedError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// ConnectionSetupError: the transport could not be constructed at all.
// Fatal to the Open() call; the caller must retry with new parameters.
type ConnectionSetupError struct{ FeedError }

// NotConnectedError: an operation requiring an open session was invoked
// while the session was not open. Caller error, never retried internally.
type NotConnectedError struct{ FeedError }

// RemoteApiError: the feed returned a structured error payload.
// The session remains open unless the error implies disconnection.
type RemoteApiError struct {
	FeedError
	Code string
}

// MalformedPayloadError: an inbound frame did not parse as the expected
// structured format. Surfaced through the error callback; one bad frame
// must not take down the session.
type MalformedPayloadError struct{ FeedError }

// TransportError: underlying connection-level failure. Triggers the
// OnError/OnClose path; no automatic reconnect in the session itself.
type TransportError struct{ FeedError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewConnectionSetupError(message string, cause error) *ConnectionSetupError {
	return &ConnectionSetupError{FeedError{Message: message, Cause: cause}}
}

func NewNotConnectedError(operation string) *NotConnectedError {
	return &NotConnectedError{FeedError{Message: fmt.Sprintf("%s requires an open session", operation)}}
}

func NewRemoteApiError(code, message string) *RemoteApiError {
	return &RemoteApiError{FeedError: FeedError{Message: message}, Code: code}
}

func NewMalformedPayloadError(cause error) *MalformedPayloadError {
	return &MalformedPayloadError{FeedError{Message: "malformed inbound frame", Cause: cause}}
}

func NewTransportError(message string, cause error) *TransportError {
	return &TransportError{FeedError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger *logger.Logger
}

func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{
		Logger: logger.NewLogger(nil, "ErrorHandler"),
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
