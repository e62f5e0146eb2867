package daterange

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
	ErrInvalidDate  = errors.New("daterange: invalid date")
)

// Day is the length used for night counting.
const Day = 24 * time.Hour

// DateLayout is the calendar-date form accepted from clients.
const DateLayout = "2006-01-02"

// DateRange represents a half-open interval [checkIn, checkOut).
// A zero CheckIn or CheckOut means the date has not been picked yet.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Complete reports whether both ends are set.
func (dr DateRange) Complete() bool {
	return !dr.CheckIn.IsZero() && !dr.CheckOut.IsZero()
}

// Nights rounds the stay length up to whole days. Incomplete or reversed ranges have no nights.
func (dr DateRange) Nights() int {
	if !dr.Complete() {
		return 0
	}
	diff := dr.CheckOut.Sub(dr.CheckIn)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(float64(diff) / float64(Day)))
}

// ParseDate accepts either a calendar date (YYYY-MM-DD, midnight UTC) or an RFC 3339 timestamp.
// An empty string yields the zero time.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return t.UTC(), nil
}
