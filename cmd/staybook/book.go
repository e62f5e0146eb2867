package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	bookingapp "staybook/internal/app/handlers/booking"
	meapp "staybook/internal/app/handlers/me"
	"staybook/internal/app/policies"
	"staybook/internal/app/schedule"
	"staybook/internal/domain/auth"
	domainlistings "staybook/internal/domain/listings"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/infra/config"
)

type bookFlags struct {
	property string
	checkIn  string
	checkOut string
	guests   int
	user     string
	token    string
}

func parseBookFlags(args []string, out io.Writer) (bookFlags, error) {
	var f bookFlags
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&f.property, "property", "", "property id")
	fs.StringVar(&f.checkIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	fs.StringVar(&f.checkOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	fs.IntVar(&f.guests, "guests", 1, "number of guests")
	fs.StringVar(&f.user, "user", "", "logged-in user id; empty means logged out")
	fs.StringVar(&f.token, "token", "", "bearer token forwarded to the backend")
	if err := fs.Parse(args); err != nil {
		return bookFlags{}, err
	}
	if strings.TrimSpace(f.property) == "" {
		return bookFlags{}, errors.New("book: -property is required")
	}
	return f, nil
}

// runBook drives one booking form: quote, submit, then follow the timed
// navigation to the bookings list.
func runBook(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string, out io.Writer) error {
	flags, err := parseBookFlags(args, out)
	if err != nil {
		return err
	}
	checkIn, err := domainrange.ParseDate(flags.checkIn)
	if err != nil {
		return err
	}
	checkOut, err := domainrange.ParseDate(flags.checkOut)
	if err != nil {
		return err
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if flags.user != "" {
		ctx = auth.ContextWithPrincipal(ctx, auth.Principal{UserID: flags.user, Token: auth.Token(flags.token)})
	}
	property, err := app.backend.Property(ctx, domainlistings.PropertyID(flags.property))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (max %d guests, %.2f per night)\n", property.Title, property.MaxGuests, property.Price)

	sessions := auth.StaticAccessor(flags.user)
	list := &meapp.ListGuestBookingsHandler{Gateway: app.backend, Sessions: sessions, Logger: logger}
	navigated := make(chan struct{})
	navigator := policies.NavigatorFunc(func(path string) {
		defer close(navigated)
		fmt.Fprintf(out, "-> %s\n", path)
		items, err := list.Handle(ctx, meapp.ListGuestBookingsQuery{})
		if err != nil {
			fmt.Fprintln(out, err)
			return
		}
		for _, b := range items {
			fmt.Fprintf(out, "  %s  %s  %s..%s  %.2f\n", b.ID, b.Status, b.CheckInDate, b.CheckOutDate, b.TotalPrice)
		}
	})

	form := bookingapp.NewForm(ctx, bookingapp.FormConfig{
		Property:  *property,
		Submitter: app.submitter(sessions, cfg, logger),
		Pricing:   app.fees,
		Scheduler: schedule.NewTimerScheduler(),
		Navigator: navigator,
		Logger:    logger,
	})
	defer form.Close()

	form.SetDates(checkIn, checkOut)
	form.SetGuests(flags.guests)
	b, ok, err := form.Quote()
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(out, "%d nights x %s = %s\n", b.Nights, b.Nightly, b.Subtotal)
		fmt.Fprintf(out, "cleaning fee %s, service fee %s\n", b.CleaningFee, b.ServiceFee)
		fmt.Fprintf(out, "total %s\n", b.Total)
	}

	if err := form.Submit(ctx); err != nil {
		fmt.Fprintln(out, form.State().Error)
		return err
	}
	fmt.Fprintln(out, form.State().Success)

	select {
	case <-navigated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cfg.RedirectDelay + cfg.BackendTimeout + time.Second):
		return errors.New("book: navigation timed out")
	}
}
