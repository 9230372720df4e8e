package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"slotscout/internal/logger"
	"slotscout/internal/platform/browser"
)

// Slot is one bookable opening as a venue presents it. Time, price and
// status are venue-native strings and are stored without conversion.
type Slot struct {
	VenueName  string
	Date       string
	Time       string
	Price      string
	Status     string
	BookingURL string
	Extra      map[string]any
}

// Request carries the caller-supplied query for one adapter invocation.
type Request struct {
	PartySize int
	Date      string // YYYY-MM-DD; empty only for venues that surface a multi-date calendar
	Options   map[string]string
}

// Env holds the shared infrastructure an adapter may draw on. API adapters
// use HTTP; browser adapters lease a session from Pool.
type Env struct {
	Pool            *browser.Pool
	HTTP            *http.Client
	Log             *logger.Logger
	PageLoadTimeout time.Duration
	SelectorTimeout time.Duration
	// FlareSolverrURL points at a FlareSolverr instance for venues behind
	// Cloudflare. Empty disables the bypass.
	FlareSolverrURL string
}

// Func is the uniform adapter contract. An empty slice with a nil error
// means the venue has no availability for the query.
type Func func(ctx context.Context, env *Env, req Request) ([]Slot, error)

var (
	// ErrInvalidInput marks caller mistakes: unsupported option values or
	// missing required parameters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTransient marks failures worth retrying: timeouts, browser
	// crashes, selector misses on an otherwise intact page.
	ErrTransient = errors.New("transient failure")
	// ErrPermanent marks a page whose structure no longer matches the
	// extraction script.
	ErrPermanent = errors.New("page structure changed")
)

func Invalid(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, a...))
}

func Transient(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrTransient, fmt.Sprintf(format, a...))
}

func Permanent(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrPermanent, fmt.Sprintf(format, a...))
}

func validateRequest(req Request) error {
	if req.PartySize < 1 {
		return Invalid("party size must be >= 1, got %d", req.PartySize)
	}
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			return Invalid("bad date %q, expected YYYY-MM-DD", req.Date)
		}
	}
	return nil
}

// getJSON issues a GET and decodes the JSON body into dest. Network and
// server-side errors classify as transient; an undecodable body means the
// endpoint changed shape.
func getJSON(ctx context.Context, env *Env, url string, headers map[string]string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := env.HTTP.Do(req)
	if err != nil {
		return Transient("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &HTTPStatusError{Code: resp.StatusCode, URL: url}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: %w", ErrTransient, statusErr)
		}
		return fmt.Errorf("%w: %w", ErrPermanent, statusErr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return Transient("read body: %v", err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return Permanent("decode %s: %v", url, err)
	}
	return nil
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// HTTPStatusError reports a non-200 response from a venue endpoint.
type HTTPStatusError struct {
	Code int
	URL  string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

func isStatus(err error, code int) bool {
	var se *HTTPStatusError
	return errors.As(err, &se) && se.Code == code
}

// withSession leases a browser, runs fn, and guarantees the lease is
// returned on every path including panics inside the driver.
func withSession(ctx context.Context, env *Env, fn func(s browser.Session) ([]Slot, error)) ([]Slot, error) {
	sess, err := env.Pool.Acquire(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer sess.Close()
	return fn(sess)
}
