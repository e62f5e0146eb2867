package booking

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"staybook/internal/app/policies"
	"staybook/internal/app/schedule"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	domainrange "staybook/internal/domain/shared/daterange"
)

// Submitter is satisfied by *RequestBookingHandler.
type Submitter interface {
	Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error)
}

type FormConfig struct {
	Property  domainlistings.Property
	Submitter Submitter
	Pricing   policies.PricingPort
	Scheduler schedule.Scheduler
	Navigator policies.Navigator
	Clock     func() time.Time
	Logger    *slog.Logger
}

// Form is one booking form instance bound to a property. Its dates and guest
// count are transient and reset after a successful submission. At most one
// submission is in flight at a time.
type Form struct {
	property  domainlistings.Property
	submitter Submitter
	pricing   policies.PricingPort
	scheduler schedule.Scheduler
	navigator policies.Navigator
	clock     func() time.Time
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	checkIn  time.Time
	checkOut time.Time
	guests   int
	errMsg   string
	success  string
	busy     bool
	closed   bool
	nav      schedule.Task
}

// NewForm binds a form to ctx; cancelling ctx has the same effect as Close.
func NewForm(ctx context.Context, cfg FormConfig) *Form {
	fctx, cancel := context.WithCancel(ctx)
	f := &Form{
		property:  cfg.Property,
		submitter: cfg.Submitter,
		pricing:   cfg.Pricing,
		scheduler: cfg.Scheduler,
		navigator: cfg.Navigator,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		ctx:       fctx,
		cancel:    cancel,
		guests:    1,
	}
	if f.pricing == nil {
		f.pricing = pricing.DefaultFees
	}
	if f.scheduler == nil {
		f.scheduler = schedule.NewTimerScheduler()
	}
	if f.clock == nil {
		f.clock = time.Now
	}
	if f.logger == nil {
		f.logger = slog.New(slog.DiscardHandler)
	}
	context.AfterFunc(fctx, f.Close)
	return f
}

// FormState is a snapshot for rendering.
type FormState struct {
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	Error    string
	Success  string
	Busy     bool
	Closed   bool
}

func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FormState{
		CheckIn:  f.checkIn,
		CheckOut: f.checkOut,
		Guests:   f.guests,
		Error:    f.errMsg,
		Success:  f.success,
		Busy:     f.busy,
		Closed:   f.closedLocked(),
	}
}

// SetDates replaces the selected range and clears any error message.
func (f *Form) SetDates(checkIn, checkOut time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closedLocked() {
		return
	}
	f.checkIn = checkIn
	f.checkOut = checkOut
	f.errMsg = ""
}

// SetGuests is ignored while a submission is running.
func (f *Form) SetGuests(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closedLocked() || f.busy {
		return
	}
	f.guests = n
}

// Quote recomputes the breakdown for the current selection. ok is false until
// both dates are picked.
func (f *Form) Quote() (pricing.PriceBreakdown, bool, error) {
	f.mu.Lock()
	dr := domainrange.DateRange{CheckIn: f.checkIn, CheckOut: f.checkOut}
	f.mu.Unlock()
	if !dr.Complete() {
		return pricing.PriceBreakdown{}, false, nil
	}
	b, err := f.pricing.Quote(f.property, dr)
	if err != nil {
		return pricing.PriceBreakdown{}, false, err
	}
	return b, true, nil
}

// Validate runs the reservation rules against the current selection.
func (f *Form) Validate() domainbooking.ValidationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domainbooking.Validate(f.checkIn, f.checkOut, f.guests, f.property.MaxGuests, f.clock())
}

// Submit sends the current selection. It returns ErrSubmissionInProgress when
// another submission is outstanding and ErrFormClosed after Close; in both
// cases nothing is sent.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.closedLocked() {
		f.mu.Unlock()
		return ErrFormClosed
	}
	if f.busy {
		f.mu.Unlock()
		return ErrSubmissionInProgress
	}
	if f.submitter == nil {
		f.errMsg = MsgTransportError
		f.mu.Unlock()
		return &BookingError{Kind: KindBackend, Message: MsgTransportError, Err: ErrGatewayRequired}
	}
	f.busy = true
	f.errMsg = ""
	f.success = ""
	cmd := RequestBookingCommand{
		Property: f.property,
		CheckIn:  f.checkIn,
		CheckOut: f.checkOut,
		Guests:   f.guests,
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.busy = false
		f.mu.Unlock()
	}()

	result, err := f.submitter.Handle(ctx, cmd)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closedLocked() {
		f.logger.Debug("dropping late booking response", "property_id", f.property.ID)
		return ErrFormClosed
	}
	if err != nil {
		f.errMsg = userMessage(err)
		return err
	}

	f.success = result.Message
	f.checkIn = time.Time{}
	f.checkOut = time.Time{}
	f.guests = 1
	if f.nav != nil {
		f.nav.Cancel()
	}
	target := result.RedirectTo
	f.nav = f.scheduler.After(f.ctx, "navigate "+target, result.RedirectAfter, func() {
		if f.navigator != nil {
			f.navigator.Navigate(target)
		}
	})
	return nil
}

// Navigation returns the pending post-success navigation task, if any.
func (f *Form) Navigation() schedule.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nav
}

// Close tears the form down: the pending navigation is cancelled and responses
// that arrive afterwards leave the state untouched.
func (f *Form) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	nav := f.nav
	f.mu.Unlock()
	if nav != nil {
		nav.Cancel()
	}
	f.cancel()
}

// closedLocked reports whether the form is torn down, either by Close or by
// its context. Callers hold f.mu.
func (f *Form) closedLocked() bool {
	return f.closed || f.ctx.Err() != nil
}

func userMessage(err error) string {
	var bErr *BookingError
	if errors.As(err, &bErr) {
		return bErr.Message
	}
	return MsgTransportError
}
