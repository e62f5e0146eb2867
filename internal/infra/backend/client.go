package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/karlseguin/ccache/v3"

	"staybook/internal/app/policies"
	"staybook/internal/domain/auth"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/infra/obs"
)

const maxErrorBody = 64 << 10

// Property collections are tried in this order, short stays first.
var propertyCollections = []string{"normal-stays", "long-term-stays"}

type Config struct {
	BaseURL          string
	Timeout          time.Duration
	PropertyCacheTTL time.Duration
	HTTPClient       *http.Client
}

// Client talks to the rental REST backend. Properties are cached in memory
// for PropertyCacheTTL; bookings never are.
type Client struct {
	http     *http.Client
	baseURL  string
	logger   *slog.Logger
	cacheTTL time.Duration
	cache    *ccache.Cache[*domainlistings.Property]
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend: base url required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("backend: invalid base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Client{http: httpClient, baseURL: base, logger: logger, cacheTTL: cfg.PropertyCacheTTL}
	if c.cacheTTL > 0 {
		c.cache = ccache.New(ccache.Configure[*domainlistings.Property]().MaxSize(1000))
	}
	return c, nil
}

// Close stops the cache janitor.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Stop()
	}
}

func (c *Client) CreateBooking(ctx context.Context, req domainbooking.Request) (*domainbooking.Booking, error) {
	var out domainbooking.Booking
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	if err := c.do(ctx, http.MethodPost, "/bookings", req, headers, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GuestBookings(ctx context.Context, userID string) ([]domainbooking.Booking, error) {
	var out []domainbooking.Booking
	if err := c.do(ctx, http.MethodGet, "/bookings/guest/"+url.PathEscape(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Booking(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var out domainbooking.Booking
	if err := c.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(string(id)), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelBooking(ctx context.Context, id domainbooking.BookingID, req domainbooking.CancelRequest) (*domainbooking.Booking, error) {
	var out domainbooking.Booking
	if err := c.do(ctx, http.MethodPost, "/bookings/"+url.PathEscape(string(id))+"/cancel", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Property looks the listing up in each property collection in turn.
func (c *Client) Property(ctx context.Context, id domainlistings.PropertyID) (*domainlistings.Property, error) {
	key := strings.TrimSpace(string(id))
	if key == "" {
		return nil, domainlistings.ErrPropertyIDMissing
	}
	if c.cache == nil {
		return c.fetchProperty(ctx, key)
	}
	item, err := c.cache.Fetch(key, c.cacheTTL, func() (*domainlistings.Property, error) {
		return c.fetchProperty(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	p := *item.Value()
	return &p, nil
}

func (c *Client) fetchProperty(ctx context.Context, id string) (*domainlistings.Property, error) {
	var lastErr error
	for _, collection := range propertyCollections {
		var p domainlistings.Property
		err := c.do(ctx, http.MethodGet, "/"+collection+"/"+url.PathEscape(id), nil, nil, &p)
		if err == nil {
			if p.ID == "" {
				p.ID = domainlistings.PropertyID(id)
			}
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("backend: property %s: %w", id, err)
			}
			return &p, nil
		}
		var statusErr *policies.StatusError
		if !errors.As(err, &statusErr) {
			return nil, err
		}
		lastErr = err
	}
	c.logger.Debug("property lookup failed", "property_id", id, "error", lastErr)
	return nil, fmt.Errorf("%w: %s", domainlistings.ErrPropertyNotFound, id)
}

// Ping checks that the backend answers at all; any HTTP status counts as alive.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p, ok := auth.PrincipalFromContext(ctx); ok && p.Token != "" {
		req.Header.Set("Authorization", "Bearer "+string(p.Token))
	}
	if id := obs.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(obs.RequestIDHeader, id)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "method", method, "path", path, "error", err)
		return err
	}
	defer resp.Body.Close()
	c.logger.Debug("backend request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &policies.StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}
	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := decodeEnvelope(raw, out); err != nil {
		return fmt.Errorf("backend: decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeEnvelope accepts both a bare payload and one wrapped as {"data": ...}.
func decodeEnvelope(raw []byte, out any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &envelope); err == nil && len(envelope.Data) > 0 && !bytes.Equal(envelope.Data, []byte("null")) {
			return json.Unmarshal(envelope.Data, out)
		}
	}
	return json.Unmarshal(trimmed, out)
}

var (
	_ policies.BookingGateway = (*Client)(nil)
	_ domainlistings.Lookup   = (*Client)(nil)
)
