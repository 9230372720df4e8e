package adapters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slotscout/internal/platform/browser"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

// T-Squared Social books through the OpenTable restref widget. The widget
// wants a party size pick, a month-by-month date pick, then a submit before
// it renders slot buttons for the searched day.

const tsquaredAvailabilityURL = "https://www.opentable.com/booking/restref/availability?lang=en-US&restRef=1331374&otSource=Restaurant%20website"

// TSquaredSocial builds the OpenTable-backed reservation adapter.
func TSquaredSocial() Func {
	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if err := validateRequest(req); err != nil {
			return nil, err
		}
		if req.Date == "" {
			return nil, Invalid("T-Squared Social requires a target date")
		}

		return withSession(ctx, env, func(sess browser.Session) ([]Slot, error) {
			return scrapeTSquared(sess, env, req)
		})
	}
}

func scrapeTSquared(sess browser.Session, env *Env, req Request) ([]Slot, error) {
	page := sess.Page()
	dt, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, Invalid("bad date %q", req.Date)
	}

	if _, err := page.Goto(tsquaredAvailabilityURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(env.PageLoadTimeout.Milliseconds())),
	}); err != nil {
		return nil, Transient("goto opentable widget: %v", err)
	}
	page.WaitForTimeout(4000)

	// Party size.
	pp := page.Locator(`select[data-test="party-size-picker"]`)
	if err := pp.WaitFor(playwright.LocatorWaitForOptions{Timeout: playwright.Float(5000)}); err == nil {
		if _, err := pp.SelectOption(playwright.SelectOptionValues{Values: &[]string{fmt.Sprintf("%d", req.PartySize)}}); err != nil {
			env.Log.LogWarnf("T-Squared Social: party size selection failed: %v", err)
		}
		page.WaitForTimeout(600)
	} else {
		env.Log.LogWarnf("T-Squared Social: party size picker missing")
	}

	if err := tsquaredPickDate(page, dt); err != nil {
		return nil, err
	}

	if err := page.Locator(`button[data-test="dtpPicker-submit"]`).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(8000)}); err != nil {
		return nil, Transient("find a table button: %v", err)
	}

	slotsArea := page.Locator(`div[data-test="searched-day-slots"]`).First()
	if err := slotsArea.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(env.SelectorTimeout.Milliseconds())),
	}); err != nil {
		env.Log.LogInfof("T-Squared Social: no slots container rendered")
		return nil, nil
	}
	page.WaitForTimeout(2000)

	html, err := page.Content()
	if err != nil {
		return nil, Transient("read page: %v", err)
	}
	return parseTSquaredSlots(html, req.Date)
}

// tsquaredPickDate walks the widget's month picker forward until the visible
// label matches the target month, then clicks the exact day.
func tsquaredPickDate(page playwright.Page, dt time.Time) error {
	if err := page.Locator(`div[data-test="day-picker"]`).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)}); err != nil {
		return Transient("open day picker: %v", err)
	}
	page.WaitForTimeout(600)

	wantMonth := dt.Format("Jan")
	wantYear := dt.Format("2006")
	reached := false
	for i := 0; i < 12; i++ {
		label, err := page.Locator("#dtp-picker-day-picker-label").First().InnerText()
		if err != nil {
			return Transient("read day picker label: %v", err)
		}
		parts := strings.Fields(strings.ReplaceAll(label, ",", ""))
		if len(parts) >= 3 && parts[0] == wantMonth && parts[2] == wantYear {
			reached = true
			break
		}
		if err := page.Locator(`button[name="next-month"]`).First().Click(); err != nil {
			return Transient("advance month: %v", err)
		}
		page.WaitForTimeout(500)
	}
	if !reached {
		return Permanent("target month %s %s not reachable", wantMonth, wantYear)
	}

	// aria-label like "Friday, December 19" with no leading zero.
	aria := fmt.Sprintf("%s, %s %d", dt.Format("Monday"), dt.Format("January"), dt.Day())
	if err := page.Locator(fmt.Sprintf(`button[name="day"][aria-label="%s"]`, aria)).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)}); err != nil {
		return Transient("pick day %s: %v", aria, err)
	}
	page.WaitForTimeout(600)
	return nil
}

func parseTSquaredSlots(html, date string) ([]Slot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Permanent("parse page: %v", err)
	}

	var slots []Slot
	doc.Find(`button[data-test="slot-button"]`).Each(func(_ int, btn *goquery.Selection) {
		timeLabel := strings.TrimSpace(btn.Text())
		aria, _ := btn.Attr("aria-label")
		slots = append(slots, Slot{
			VenueName:  "T-Squared Social",
			Date:       date,
			Time:       timeLabel,
			Price:      strings.TrimSpace(aria),
			Status:     "Available",
			BookingURL: tsquaredAvailabilityURL,
		})
	})
	return slots, nil
}
