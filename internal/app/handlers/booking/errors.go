package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"staybook/internal/app/policies"
	domainbooking "staybook/internal/domain/booking"
)

// Kind classifies a failed submission.
type Kind string

const (
	// KindValidation is a local input problem; nothing was sent.
	KindValidation Kind = "validation"
	// KindAuthRequired means no user is logged in, or the backend rejected the session.
	KindAuthRequired Kind = "auth_required"
	// KindBackend covers transport failures and non-2xx answers.
	KindBackend Kind = "backend"
	// KindNotFound means the requested booking does not exist for this user.
	KindNotFound Kind = "not_found"
)

const (
	MsgAuthRequired   = "Please log in to make a booking"
	MsgBookingFailed  = "Booking failed"
	MsgTransportError = "Failed to create booking"
	MsgConfirmed      = "Booking confirmed! Check your email for confirmation."
)

var (
	ErrSubmissionInProgress = errors.New("booking: submission already in progress")
	ErrFormClosed           = errors.New("booking: form closed")
	ErrPropertyRequired     = errors.New("booking: property required")
	ErrGatewayRequired      = errors.New("booking: gateway required")
)

// BookingError is the only error type Submit returns. Message is safe to show to users.
type BookingError struct {
	Kind       Kind
	Message    string
	Reason     domainbooking.Reason
	StatusCode int
	Err        error
}

func (e *BookingError) Error() string {
	return e.Message
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func validationError(res domainbooking.ValidationResult) *BookingError {
	return &BookingError{
		Kind:    KindValidation,
		Message: res.Message,
		Reason:  res.Reason,
		Err:     res.Err(),
	}
}

func authRequired(err error) *BookingError {
	return &BookingError{Kind: KindAuthRequired, Message: MsgAuthRequired, Err: err}
}

// MapGatewayError turns a gateway failure into a BookingError. Non-2xx bodies are
// searched for an "error" then a "message" string before falling back to a generic text.
func MapGatewayError(err error) *BookingError {
	if err == nil {
		return nil
	}
	var bErr *BookingError
	if errors.As(err, &bErr) {
		return bErr
	}
	var statusErr *policies.StatusError
	if errors.As(err, &statusErr) {
		msg := serverMessage(statusErr.Body)
		kind := KindBackend
		if statusErr.StatusCode == http.StatusUnauthorized {
			kind = KindAuthRequired
			if msg == "" {
				msg = MsgAuthRequired
			}
		}
		if msg == "" {
			msg = MsgBookingFailed
		}
		return &BookingError{Kind: kind, Message: msg, StatusCode: statusErr.StatusCode, Err: err}
	}
	return &BookingError{Kind: KindBackend, Message: MsgTransportError, Err: err}
}

func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, raw := range []json.RawMessage{payload.Error, payload.Message} {
		var s string
		if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
