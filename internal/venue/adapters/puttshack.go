package adapters

import (
	"context"
	"fmt"
	"strings"

	"slotscout/internal/platform/browser"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

// Puttshack books through a Svelte widget: country, venue, calendar date,
// player count, then "Find a time". Disabled timeslot buttons are sold out.

var puttshackLocations = map[string]bool{
	"Bank":       true,
	"Lakeside":   true,
	"White City": true,
	"Watford":    true,
}

// Puttshack builds the mini-golf adapter. The location arrives as a
// per-request option.
func Puttshack() Func {
	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if err := validateRequest(req); err != nil {
			return nil, err
		}
		if req.Date == "" {
			return nil, Invalid("Puttshack requires a target date")
		}
		location := req.Options["location"]
		if location == "" {
			location = "Bank"
		}
		if !puttshackLocations[location] {
			return nil, Invalid("unsupported Puttshack location %q", location)
		}
		displayName := fmt.Sprintf("Puttshack (%s)", location)

		return withSession(ctx, env, func(sess browser.Session) ([]Slot, error) {
			return scrapePuttshack(sess, env, req, location, displayName)
		})
	}
}

func scrapePuttshack(sess browser.Session, env *Env, req Request, location, displayName string) ([]Slot, error) {
	page := sess.Page()
	click := func(selector string) error {
		return page.Locator(selector).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)})
	}

	if _, err := page.Goto("https://www.puttshack.com/book-golf", playwright.PageGotoOptions{
		Timeout: playwright.Float(float64(env.PageLoadTimeout.Milliseconds())),
	}); err != nil {
		return nil, Transient("goto book-golf: %v", err)
	}
	page.WaitForTimeout(4000)

	// GetSiteControl overlays intercept clicks.
	_, _ = page.Evaluate(`() => {
		const widget = document.getElementById('getsitecontrol-518774');
		if (widget) widget.remove();
		document.querySelectorAll('getsitecontrol-widget').forEach(w => w.remove());
	}`)
	page.WaitForTimeout(500)

	if err := click(`button.input-button`); err != nil {
		return nil, Transient("open country selector: %v", err)
	}
	if err := click(`div[data-label="United Kingdom"]`); err != nil {
		return nil, Transient("select country: %v", err)
	}
	page.WaitForTimeout(1000)

	if err := click(`button[aria-label="Venue Selector"]`); err != nil {
		return nil, Transient("open venue selector: %v", err)
	}
	if err := page.Locator(fmt.Sprintf(`xpath=//div[contains(text(),'%s')]`, location)).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)}); err != nil {
		return nil, Transient("select venue %s: %v", location, err)
	}
	page.WaitForTimeout(1000)

	if err := click(`button[aria-label="Date Selector"]`); err != nil {
		return nil, Transient("open date selector: %v", err)
	}
	page.WaitForTimeout(1500)
	// Rewind so the forward walk always starts before the target month.
	_ = click(`button[aria-label="Previous"]`)
	_ = click(`button[aria-label="Previous"]`)

	dateSelected := false
	for i := 0; i < 15; i++ {
		if err := page.Locator(fmt.Sprintf(`button[data-value="%s"]`, req.Date)).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(2000)}); err == nil {
			dateSelected = true
			break
		}
		if err := click(`button[aria-label="Next"]`); err != nil {
			break
		}
	}
	if !dateSelected {
		env.Log.LogInfof("%s: date %s not selectable", displayName, req.Date)
		return nil, nil
	}
	page.WaitForTimeout(1500)

	if err := click(`button[aria-label="Player Selector"]`); err != nil {
		return nil, Transient("open player selector: %v", err)
	}
	page.WaitForTimeout(1000)
	for i := 0; i < 30; i++ {
		current, _ := page.Evaluate(`() => {
			const t = document.querySelector('.count');
			return t ? parseInt(t.textContent.trim()) : null;
		}`)
		if n, ok := current.(int); ok && n == req.PartySize {
			break
		}
		if f, ok := current.(float64); ok && int(f) == req.PartySize {
			break
		}
		if err := click(`button[aria-label='Increase player count']`); err != nil {
			break
		}
		page.WaitForTimeout(300)
	}
	page.WaitForTimeout(800)

	if err := click(`button[aria-label="Find a time"]`); err != nil {
		return nil, Transient("click find a time: %v", err)
	}
	page.WaitForTimeout(5000)

	// A session-type interstitial sometimes appears first.
	chooseBtn := page.Locator(`xpath=//button[contains(@data-ps-event,'click|handleRoute')]`).First()
	if visible, _ := chooseBtn.IsVisible(); visible {
		_ = chooseBtn.Click()
		page.WaitForTimeout(5000)
	}

	html, err := page.Content()
	if err != nil {
		return nil, Transient("read page content: %v", err)
	}
	return parsePuttshackSlots(html, displayName, req.Date)
}

func parsePuttshackSlots(html, displayName, date string) ([]Slot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Permanent("parse page: %v", err)
	}

	var slots []Slot
	doc.Find("button.timeslot").Each(func(_ int, btn *goquery.Selection) {
		if btn.HasClass("disabled") {
			return
		}
		timeLabel := strings.TrimSpace(btn.Text())
		desc := strings.TrimSpace(btn.Find("span.adults").First().Text())
		if desc == "" {
			desc = "None"
		}
		slots = append(slots, Slot{
			VenueName: displayName,
			Date:      date,
			Time:      timeLabel,
			Price:     desc,
			Status:    "Available",
		})
	})
	return slots, nil
}
