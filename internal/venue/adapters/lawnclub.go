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

// The Lawn Club books through a SevenRooms landing page with one link per
// experience. The widget has no URL parameters for date or party size, so
// the adapter drives the steppers and pickers before searching.

const lawnClubLandingURL = "https://www.sevenrooms.com/landing/lawnclubnyc"

var lawnClubOptionLinks = map[string]string{
	"indoor_gaming": "Indoor Gaming Lawns",
	"curling_lawns": "Curling Lawns & Cabins",
	"croquet_lawns": "Croquet Lawns",
}

// LawnClubDurations are the widget's selectable session lengths.
var LawnClubDurations = []string{"1 hr", "1 hr 30 min", "2 hr", "2 hr 30 min", "3 hr"}

// LawnClubTimeGrid returns the widget's 96 time labels, 6:00 AM through
// 5:45 AM the next day in 15-minute steps.
func LawnClubTimeGrid() []string {
	labels := make([]string, 0, 96)
	t := time.Date(2000, 1, 1, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 96; i++ {
		labels = append(labels, strings.TrimPrefix(t.Format("03:04 PM"), "0"))
		t = t.Add(15 * time.Minute)
	}
	return labels
}

// NormalizeLawnClubTime converts user-supplied times to the widget's label
// form: single spaces, upper case, no leading zero.
func NormalizeLawnClubTime(raw string) string {
	cleaned := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	return strings.TrimPrefix(cleaned, "0")
}

// NormalizeLawnClubDuration lower-cases and collapses whitespace so "2 HR"
// and "2 hr" compare equal.
func NormalizeLawnClubDuration(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// LawnClub builds the adapter for one Lawn Club experience.
func LawnClub(option string) Func {
	linkText, known := lawnClubOptionLinks[option]
	displayName := fmt.Sprintf("Lawn Club NYC (%s)", option)
	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if !known {
			return nil, Invalid("unknown Lawn Club option %q", option)
		}
		if err := validateRequest(req); err != nil {
			return nil, err
		}
		if req.Date == "" {
			return nil, Invalid("%s requires a target date", displayName)
		}
		if t := req.Options["selected_time"]; t != "" {
			if !containsNormalized(LawnClubTimeGrid(), t, NormalizeLawnClubTime) {
				return nil, Invalid("unsupported Lawn Club time %q", t)
			}
		}
		if d := req.Options["selected_duration"]; d != "" {
			if !containsNormalized(LawnClubDurations, d, NormalizeLawnClubDuration) {
				return nil, Invalid("unsupported Lawn Club duration %q", d)
			}
		}

		return withSession(ctx, env, func(sess browser.Session) ([]Slot, error) {
			return scrapeLawnClub(sess, env, req, linkText, displayName)
		})
	}
}

func scrapeLawnClub(sess browser.Session, env *Env, req Request, linkText, displayName string) ([]Slot, error) {
	page := sess.Page()
	selTimeout := playwright.Float(float64(env.SelectorTimeout.Milliseconds()))

	if _, err := page.Goto(lawnClubLandingURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(env.PageLoadTimeout.Milliseconds())),
	}); err != nil {
		return nil, Transient("goto landing: %v", err)
	}

	optionLink := page.Locator(fmt.Sprintf(`xpath=//a[contains(text(), "%s")]`, linkText)).First()
	if err := optionLink.WaitFor(playwright.LocatorWaitForOptions{Timeout: selTimeout}); err != nil {
		env.Log.LogWarnf("%s: option link never appeared", displayName)
		return nil, nil
	}
	if err := optionLink.Click(); err != nil {
		return nil, Transient("click option link: %v", err)
	}
	page.WaitForTimeout(5000)

	dateButton := page.Locator(`button[data-test="sr-calendar-date-button"]`).First()
	if err := dateButton.WaitFor(playwright.LocatorWaitForOptions{Timeout: selTimeout}); err != nil {
		env.Log.LogInfof("%s: booking widget never loaded", displayName)
		return nil, nil
	}

	if err := lawnClubSetDate(page, req.Date); err != nil {
		return nil, err
	}
	lawnClubSetGuests(page, req.PartySize)

	if t := req.Options["selected_time"]; t != "" {
		if !adjustPicker(page,
			`button[data-test="sr-time-button"]`,
			`button[aria-label="increment Time"]`,
			`button[aria-label="decrement Time"]`,
			LawnClubTimeGrid(), t, NormalizeLawnClubTime) {
			env.Log.LogWarnf("%s: could not set time to %s", displayName, t)
		}
		page.WaitForTimeout(1000)
	}
	if d := req.Options["selected_duration"]; d != "" {
		if !adjustPicker(page,
			`button[data-test="sr-duration-picker"]`,
			`button[aria-label="increment duration"]`,
			`button[aria-label="decrement duration"]`,
			LawnClubDurations, d, NormalizeLawnClubDuration) {
			env.Log.LogWarnf("%s: could not set duration to %s", displayName, d)
		}
		page.WaitForTimeout(1000)
	}

	// The widget encodes selections in the URL once they settle.
	page.WaitForTimeout(2000)
	bookingURL := page.URL()

	searchButton := page.Locator(`button[data-test="sr-search-button"]`).First()
	if err := searchButton.WaitFor(playwright.LocatorWaitForOptions{Timeout: selTimeout}); err != nil {
		env.Log.LogInfof("%s: search button never appeared", displayName)
		return nil, nil
	}
	if err := searchButton.Click(); err != nil {
		return nil, Transient("click search: %v", err)
	}

	slotButton := page.Locator(`button[data-test="sr-timeslot-button"]`).First()
	if err := slotButton.WaitFor(playwright.LocatorWaitForOptions{Timeout: selTimeout}); err != nil {
		env.Log.LogInfof("%s: no slots returned", displayName)
		return nil, nil
	}
	page.WaitForTimeout(2000)

	html, err := page.Content()
	if err != nil {
		return nil, Transient("read page content: %v", err)
	}
	return parseLawnClubSlots(html, displayName, req.Date, bookingURL)
}

// lawnClubSetDate walks the single-date stepper forward until the button
// label matches the target, e.g. "Sat, Dec 20".
func lawnClubSetDate(page playwright.Page, date string) error {
	dt, err := time.Parse("2006-01-02", date)
	if err != nil {
		return Invalid("bad date %q", date)
	}
	want := dt.Format("Mon, Jan ") + fmt.Sprintf("%d", dt.Day())

	for i := 0; i < 370; i++ {
		current := pickerValue(page, `button[data-test="sr-calendar-date-button"]`)
		if current == "" || current == want {
			return nil
		}
		if err := page.Locator(`button[aria-label="increment Date"]`).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(2000)}); err != nil {
			return nil
		}
	}
	return nil
}

func lawnClubSetGuests(page playwright.Page, guests int) {
	want := fmt.Sprintf("%d", guests)
	for i := 0; i < 40; i++ {
		current := pickerValue(page, `button[data-test="sr-guest-count-button"]`)
		if current == "" || current == want {
			return
		}
		label := `button[aria-label="increment Guests"]`
		if cur, err := parseInt(current); err == nil && cur > guests {
			label = `button[aria-label="decrement Guests"]`
		}
		if err := page.Locator(label).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(2000)}); err != nil {
			return
		}
		page.WaitForTimeout(250)
	}
}

// adjustPicker steps a value picker toward the target using its arrows,
// comparing under the supplied normalizer. Returns false if the target was
// never reached.
func adjustPicker(page playwright.Page, valueSelector, incSelector, decSelector string, validValues []string, target string, normalize func(string) string) bool {
	normalizedTarget := normalize(target)
	normalizedValues := make([]string, len(validValues))
	for i, v := range validValues {
		normalizedValues[i] = normalize(v)
	}
	targetIdx := indexOf(normalizedValues, normalizedTarget)
	if targetIdx < 0 {
		return false
	}

	for i := 0; i < len(validValues)*2; i++ {
		current := normalize(pickerValue(page, valueSelector))
		if current == normalizedTarget {
			return true
		}
		selector := incSelector
		if idx := indexOf(normalizedValues, current); idx >= 0 && targetIdx < idx {
			selector = decSelector
		}
		if err := page.Locator(selector).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(2000)}); err != nil {
			return false
		}
		page.WaitForTimeout(250)
	}
	return false
}

// pickerValue reads the display text of a stepper button's first div.
func pickerValue(page playwright.Page, selector string) string {
	html, err := page.Content()
	if err != nil {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find(selector).First().Find("div").First().Text())
}

func parseLawnClubSlots(html, displayName, date, bookingURL string) ([]Slot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Permanent("parse page: %v", err)
	}

	var slots []Slot
	doc.Find(`button[data-test="sr-timeslot-button"]`).Each(func(_ int, btn *goquery.Selection) {
		divs := btn.Find("div")
		timeLabel := strings.TrimSpace(divs.Eq(0).Text())
		if timeLabel == "" {
			timeLabel = "None"
		}
		desc := strings.TrimSpace(divs.Eq(1).Text())
		if desc == "" {
			desc = "None"
		}
		slots = append(slots, Slot{
			VenueName:  displayName,
			Date:       date,
			Time:       timeLabel,
			Price:      desc,
			Status:     "Available",
			BookingURL: bookingURL,
		})
	})
	return slots, nil
}

func containsNormalized(values []string, target string, normalize func(string) string) bool {
	want := normalize(target)
	for _, v := range values {
		if normalize(v) == want {
			return true
		}
	}
	return false
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}

func parseInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}
