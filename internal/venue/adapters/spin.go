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

// SPIN embeds a SevenRooms reservation widget on its location pages. The
// widget is driven directly: date stepper, guest stepper, optional time
// picker, then search.

type spinSite struct {
	displayName string
	widgetSlug  string
}

var spinSites = map[string]spinSite{
	"flatiron": {"SPIN (NYC - Flatiron)", "spinyc"},
	"midtown":  {"SPIN (NYC - Midtown)", "spinmidtown"},
}

// Spin builds the table-reservation adapter for one SPIN location.
func Spin(location string) Func {
	site, known := spinSites[location]
	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if !known {
			return nil, Invalid("unknown SPIN location %q", location)
		}
		if err := validateRequest(req); err != nil {
			return nil, err
		}
		if req.Date == "" {
			return nil, Invalid("%s requires a target date", site.displayName)
		}
		if t := req.Options["selected_time"]; t != "" {
			if !containsNormalized(LawnClubTimeGrid(), t, NormalizeLawnClubTime) {
				return nil, Invalid("unsupported SPIN time %q", t)
			}
		}

		widgetURL := fmt.Sprintf("https://www.sevenrooms.com/reservations/%s?duration-picker=false&defaultDuration=60", site.widgetSlug)

		return withSession(ctx, env, func(sess browser.Session) ([]Slot, error) {
			return scrapeSpinWidget(sess, env, req, site, widgetURL)
		})
	}
}

func scrapeSpinWidget(sess browser.Session, env *Env, req Request, site spinSite, widgetURL string) ([]Slot, error) {
	page := sess.Page()
	selTimeout := playwright.Float(float64(env.SelectorTimeout.Milliseconds()))

	if _, err := page.Goto(widgetURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(env.PageLoadTimeout.Milliseconds())),
	}); err != nil {
		env.Log.LogDebugf("SPIN: goto %s: %v (continuing)", widgetURL, err)
	}

	dateButton := page.Locator(`button[data-test="sr-calendar-date-button"]`).First()
	if err := dateButton.WaitFor(playwright.LocatorWaitForOptions{Timeout: selTimeout}); err != nil {
		env.Log.LogInfof("%s: reservation widget never loaded", site.displayName)
		return nil, nil
	}

	dt, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, Invalid("bad date %q", req.Date)
	}
	wantDate := dt.Format("Mon, Jan ") + fmt.Sprintf("%d", dt.Day())
	for i := 0; i < 370; i++ {
		current := pickerValue(page, `button[data-test="sr-calendar-date-button"]`)
		if current == "" || current == wantDate {
			break
		}
		if err := page.Locator(`button[aria-label="increment Date"]`).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(2000)}); err != nil {
			break
		}
		page.WaitForTimeout(100)
	}

	lawnClubSetGuests(page, req.PartySize)

	if t := req.Options["selected_time"]; t != "" {
		if !adjustPicker(page,
			`button[data-test="sr-time-button"]`,
			`button[aria-label="increment Time"]`,
			`button[aria-label="decrement Time"]`,
			LawnClubTimeGrid(), t, NormalizeLawnClubTime) {
			env.Log.LogWarnf("%s: could not set time to %s", site.displayName, t)
		}
		page.WaitForTimeout(200)
	}

	if err := page.Locator(`button[data-test="sr-search-button"]`).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)}); err != nil {
		env.Log.LogWarnf("%s: search click failed: %v", site.displayName, err)
		return nil, nil
	}
	page.WaitForTimeout(3500)

	html, err := page.Content()
	if err != nil {
		return nil, Transient("read page content: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Permanent("parse page: %v", err)
	}

	var slots []Slot
	doc.Find(`button[data-test="sr-timeslot-button"]`).Each(func(_ int, btn *goquery.Selection) {
		divs := btn.ChildrenFiltered("div")
		timeLabel := strings.TrimSpace(divs.Eq(0).Text())
		if timeLabel == "" {
			timeLabel = "None"
		}
		desc := strings.TrimSpace(divs.Eq(1).Text())
		if desc == "" {
			desc = "None"
		}
		slots = append(slots, Slot{
			VenueName:  site.displayName,
			Date:       req.Date,
			Time:       timeLabel,
			Price:      desc,
			Status:     "Available",
			BookingURL: widgetURL,
		})
	})
	return slots, nil
}
