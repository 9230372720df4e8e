package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"slotscout/internal/platform/browser"

	"github.com/playwright-community/playwright-go"
)

// Puttery books through Exploretock, which sits behind Cloudflare. When a
// FlareSolverr endpoint is configured the adapter fetches clearance cookies
// there first and injects them into the browser context before driving the
// reservation modal.

const (
	putteryPageURL    = "https://www.exploretock.com/puttery-new-york/"
	putteryOfferingID = `[data-testid="offering-link_Play1CourseReservationWeekday"]`

	// A challenge solve can take up to the 60s maxTimeout we ask of
	// FlareSolverr, so the solve call gets its own 90s client instead of
	// the shared 30s adapter client.
	flareSolverrSolveTimeout = 90 * time.Second
	flareSolverrMaxTimeoutMS = 60000
)

var flareSolverrClient = &http.Client{Timeout: flareSolverrSolveTimeout}

var putteryGuestCountRe = regexp.MustCompile(`(\d+)\s+guests`)

// Puttery builds the Exploretock mini-golf adapter for the NYC venue.
func Puttery() Func {
	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if err := validateRequest(req); err != nil {
			return nil, err
		}
		if req.Date == "" {
			return nil, Invalid("Puttery requires a target date")
		}

		var cookies []playwright.OptionalCookie
		if env.FlareSolverrURL != "" {
			var err error
			cookies, err = flareSolverrCookies(ctx, env, putteryPageURL)
			if err != nil {
				return nil, err
			}
		}

		return withSession(ctx, env, func(sess browser.Session) ([]Slot, error) {
			return scrapePuttery(sess, env, req, cookies)
		})
	}
}

type flareSolverrResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Solution struct {
		UserAgent string `json:"userAgent"`
		Cookies   []struct {
			Name     string  `json:"name"`
			Value    string  `json:"value"`
			Domain   string  `json:"domain"`
			Path     string  `json:"path"`
			Expiry   float64 `json:"expiry"`
			Secure   bool    `json:"secure"`
			HTTPOnly bool    `json:"httpOnly"`
		} `json:"cookies"`
	} `json:"solution"`
}

// flareSolverrCookies asks FlareSolverr to solve the Cloudflare challenge
// for url and returns the resulting cookies in playwright form.
func flareSolverrCookies(ctx context.Context, env *Env, url string) ([]playwright.OptionalCookie, error) {
	payload, err := json.Marshal(map[string]any{
		"cmd":        "request.get",
		"url":        url,
		"maxTimeout": flareSolverrMaxTimeoutMS,
	})
	if err != nil {
		return nil, Permanent("encode flaresolverr request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, env.FlareSolverrURL, bytes.NewReader(payload))
	if err != nil {
		return nil, Permanent("build flaresolverr request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := flareSolverrClient.Do(req)
	if err != nil {
		return nil, Transient("flaresolverr unreachable: %v", err)
	}
	defer resp.Body.Close()

	var out flareSolverrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, Transient("decode flaresolverr response: %v", err)
	}
	if out.Status != "ok" {
		return nil, Transient("flaresolverr bypass failed: %s", out.Message)
	}

	cookies := make([]playwright.OptionalCookie, 0, len(out.Solution.Cookies))
	for _, c := range out.Solution.Cookies {
		oc := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   playwright.String(c.Domain),
			Path:     playwright.String(c.Path),
			Secure:   playwright.Bool(c.Secure),
			HttpOnly: playwright.Bool(c.HTTPOnly),
		}
		if c.Expiry > 0 {
			oc.Expires = playwright.Float(c.Expiry)
		}
		cookies = append(cookies, oc)
	}
	env.Log.LogInfof("Puttery: flaresolverr returned %d cookies", len(cookies))
	return cookies, nil
}

func scrapePuttery(sess browser.Session, env *Env, req Request, cookies []playwright.OptionalCookie) ([]Slot, error) {
	page := sess.Page()
	dt, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, Invalid("bad date %q", req.Date)
	}

	if _, err := page.Goto(putteryPageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(env.PageLoadTimeout.Milliseconds())),
	}); err != nil {
		return nil, Transient("goto exploretock: %v", err)
	}
	page.WaitForTimeout(2000)

	if len(cookies) > 0 {
		if err := page.Context().AddCookies(cookies); err != nil {
			env.Log.LogWarnf("Puttery: cookie injection failed: %v", err)
		}
		if _, err := page.Reload(playwright.PageReloadOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		}); err != nil {
			return nil, Transient("reload with cookies: %v", err)
		}
		page.WaitForTimeout(3000)
	}
	page.WaitForTimeout(5000)

	// Open the reservation modal.
	offering := page.Locator(putteryOfferingID).First()
	if err := offering.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(env.SelectorTimeout.Milliseconds())),
	}); err != nil {
		env.Log.LogInfof("Puttery: reservation offering not rendered")
		return nil, nil
	}
	_ = offering.ScrollIntoViewIfNeeded()
	if _, err := offering.Evaluate("el => el.click()", nil); err != nil {
		return nil, Transient("open reservation modal: %v", err)
	}
	putteryWaitForModal(page)

	if err := putterySetGuests(page, req.PartySize); err != nil {
		return nil, err
	}
	page.WaitForTimeout(1500)

	if err := putteryPickDate(page, dt); err != nil {
		return nil, err
	}
	page.WaitForTimeout(2000)

	return putteryCollectTimes(page, env, req, dt)
}

func putteryWaitForModal(page playwright.Page) {
	for _, sel := range []string{`[id*="experience-dialog"]`, `[role="dialog"]`, ".MuiDialog-root"} {
		if err := page.Locator(sel).First().WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: playwright.Float(10000),
		}); err == nil {
			page.WaitForTimeout(3000)
			_ = page.Locator(`[data-testid="guest-selector-text"]`).First().WaitFor(playwright.LocatorWaitForOptions{
				Timeout: playwright.Float(10000),
			})
			page.WaitForTimeout(2000)
			return
		}
	}
	page.WaitForTimeout(5000)
}

func putteryGuestCount(page playwright.Page) (int, bool) {
	text, err := page.Locator(`[data-testid="guest-selector-text"]`).First().InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(3000),
	})
	if err != nil {
		return 0, false
	}
	m := putteryGuestCountRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func putterySetGuests(page playwright.Page, target int) error {
	if err := page.Locator(`[data-testid="guest-selector-text"]`).First().WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(25000),
	}); err != nil {
		return Transient("guest selector missing: %v", err)
	}
	page.WaitForTimeout(1500)

	plus := page.Locator(`[data-testid="guest-selector_plus"]`).First()
	minus := page.Locator(`[data-testid="guest-selector_minus"]`).First()

	for i := 0; i < 20; i++ {
		current, ok := putteryGuestCount(page)
		if !ok {
			return Transient("guest count unreadable")
		}
		if current == target {
			return nil
		}
		if current < target {
			if disabled, _ := plus.IsDisabled(); disabled {
				return Invalid("party size %d exceeds venue capacity", target)
			}
			_ = plus.ScrollIntoViewIfNeeded()
			if _, err := plus.Evaluate("el => el.click()", nil); err != nil {
				return Transient("guest increment: %v", err)
			}
		} else {
			_ = minus.ScrollIntoViewIfNeeded()
			if _, err := minus.Evaluate("el => el.click()", nil); err != nil {
				return Transient("guest decrement: %v", err)
			}
		}
		page.WaitForTimeout(700)
	}
	if current, ok := putteryGuestCount(page); !ok || current != target {
		return Transient("guest count stuck short of %d", target)
	}
	return nil
}

// putteryPickDate clicks the in-month, enabled day button matching the
// target day number inside the first calendar panel.
func putteryPickDate(page playwright.Page, dt time.Time) error {
	if err := page.Locator(".ConsumerCalendar").First().WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(25000),
	}); err != nil {
		return Transient("calendar missing: %v", err)
	}
	page.WaitForTimeout(1500)

	day := strconv.Itoa(dt.Day())
	for attempt := 0; attempt < 4; attempt++ {
		buttons := page.Locator(`[data-testid="calendar-first"]`).Locator("button.ConsumerCalendar-day")
		count, err := buttons.Count()
		if err != nil {
			page.WaitForTimeout(800)
			continue
		}
		for i := 0; i < count; i++ {
			btn := buttons.Nth(i)
			span := btn.Locator("span").First()
			text, err := span.InnerText(playwright.LocatorInnerTextOptions{Timeout: playwright.Float(1000)})
			if err != nil || strings.TrimSpace(text) != day {
				continue
			}
			classes, _ := btn.GetAttribute("class")
			if strings.Contains(classes, "is-disabled") || !strings.Contains(classes, "is-in-month") {
				continue
			}
			if disabled, _ := btn.IsDisabled(); disabled {
				continue
			}
			_ = btn.ScrollIntoViewIfNeeded()
			page.WaitForTimeout(500)
			if _, err := btn.Evaluate("el => el.click()", nil); err != nil {
				continue
			}
			page.WaitForTimeout(4000)
			return nil
		}
		page.WaitForTimeout(800)
	}
	return Transient("day %s not selectable in calendar", day)
}

func putteryCollectTimes(page playwright.Page, env *Env, req Request, dt time.Time) ([]Slot, error) {
	page.WaitForTimeout(3000)
	if err := page.Locator(`[data-testid="search-result"]`).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(25000),
	}); err != nil {
		env.Log.LogInfof("Puttery: no time slots rendered")
		return nil, nil
	}
	page.WaitForTimeout(2000)

	bookingURL := fmt.Sprintf(
		"https://www.exploretock.com/puttery-new-york/experience/556314/play-1-course-reservation-weekday?date=%s&size=%d",
		dt.Format("2006-01-02"), req.PartySize,
	)

	results := page.Locator(`[data-testid="search-result"]`)
	count, err := results.Count()
	if err != nil {
		return nil, Transient("count time slots: %v", err)
	}

	var slots []Slot
	for i := 0; i < count; i++ {
		el := results.Nth(i)
		timeText, err := el.Locator(`[data-testid="search-result-time"]`).First().InnerText(playwright.LocatorInnerTextOptions{
			Timeout: playwright.Float(2000),
		})
		if err != nil {
			continue
		}
		timeText = strings.TrimSpace(timeText)
		if timeText == "" || timeText == "-" {
			continue
		}
		availability := "Available"
		if text, err := el.Locator(`[data-testid="communal-count-text"]`).First().InnerText(playwright.LocatorInnerTextOptions{
			Timeout: playwright.Float(1000),
		}); err == nil && strings.TrimSpace(text) != "" {
			availability = strings.TrimSpace(text)
		}
		slots = append(slots, Slot{
			VenueName:  "Puttery (NYC)",
			Date:       req.Date,
			Time:       timeText,
			Price:      availability,
			Status:     "Available",
			BookingURL: bookingURL,
		})
	}
	return slots, nil
}
