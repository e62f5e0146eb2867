package booking

import (
	"fmt"
	"time"
)

// Reason identifies which rule rejected a reservation.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonCheckInRequired       Reason = "check_in_required"
	ReasonCheckOutRequired      Reason = "check_out_required"
	ReasonCheckOutBeforeCheckIn Reason = "check_out_before_check_in"
	ReasonGuestsOutOfRange      Reason = "guests_out_of_range"
	ReasonCheckInInPast         Reason = "check_in_in_past"
)

// ValidationResult is either valid or carries exactly one failure.
type ValidationResult struct {
	Reason  Reason
	Message string
}

func (r ValidationResult) Valid() bool {
	return r.Reason == ReasonNone
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Reason: r.Reason, Message: r.Message}
}

type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(reason Reason, msg string) ValidationResult {
	return ValidationResult{Reason: reason, Message: msg}
}

// Validate checks a prospective reservation. Rules run in a fixed order and
// the first failing one is reported: date completeness, date ordering,
// guest capacity, then past check-in.
func Validate(checkIn, checkOut time.Time, guests, maxGuests int, now time.Time) ValidationResult {
	if checkIn.IsZero() {
		return invalid(ReasonCheckInRequired, "Please select check-in date")
	}
	if checkOut.IsZero() {
		return invalid(ReasonCheckOutRequired, "Please select check-out date")
	}
	if !checkIn.Before(checkOut) {
		return invalid(ReasonCheckOutBeforeCheckIn, "Check-out date must be after check-in date")
	}
	if guests < 1 || guests > maxGuests {
		return invalid(ReasonGuestsOutOfRange, fmt.Sprintf("Guests must be between 1 and %d", maxGuests))
	}
	if checkIn.Before(now) {
		return invalid(ReasonCheckInInPast, "Check-in date cannot be in the past")
	}
	return ValidationResult{}
}
