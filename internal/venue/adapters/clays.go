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

// Clays runs a React search bar: location, date (react-calendar), guests,
// occasion, then search. Results render grouped by day; only the target
// day's block is extracted.

var claysLocations = map[string]bool{
	"Canary Wharf": true,
	"The City":     true,
	"Birmingham":   true,
	"Soho":         true,
}

// ClaysBar builds the virtual-clay-shooting adapter. The location arrives
// as a per-request option.
func ClaysBar() Func {
	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if err := validateRequest(req); err != nil {
			return nil, err
		}
		if req.Date == "" {
			return nil, Invalid("Clays Bar requires a target date")
		}
		location := req.Options["location"]
		if location == "" {
			location = "Canary Wharf"
		}
		if !claysLocations[location] {
			return nil, Invalid("unsupported Clays Bar location %q", location)
		}
		displayName := fmt.Sprintf("Clays Bar (%s)", location)

		return withSession(ctx, env, func(sess browser.Session) ([]Slot, error) {
			return scrapeClays(sess, env, req, location, displayName)
		})
	}
}

func scrapeClays(sess browser.Session, env *Env, req Request, location, displayName string) ([]Slot, error) {
	page := sess.Page()
	dt, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, Invalid("bad date %q", req.Date)
	}

	if _, err := page.Goto("https://clays.bar/", playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(env.PageLoadTimeout.Milliseconds())),
	}); err != nil {
		return nil, Transient("goto clays.bar: %v", err)
	}
	page.WaitForTimeout(3000)

	// Cookie banner, when present.
	_ = page.Locator(`button[aria-label="Accept All"]`).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(3000)})
	page.WaitForTimeout(1500)

	sections := page.Locator(`xpath=//button[contains(@class,'SearchBarDesktop__Section')]`)
	count, err := sections.Count()
	if err != nil || count < 4 {
		return nil, Permanent("search bar sections missing (found %d)", count)
	}

	clickNth := func(n int) {
		_, _ = sections.Nth(n).Evaluate("el => el.click()", nil)
	}

	// Location.
	clickNth(0)
	page.WaitForTimeout(2000)
	locBtn := page.Locator(fmt.Sprintf(`xpath=//span[contains(text(),'%s')]`, location)).Last()
	if _, err := locBtn.Evaluate("el => el.click()", nil); err != nil {
		return nil, Transient("select location: %v", err)
	}
	page.WaitForTimeout(1500)

	// Date via react-calendar.
	clickNth(1)
	page.WaitForTimeout(800)
	if err := claysOpenCalendar(page, func() { clickNth(1) }); err != nil {
		return nil, err
	}
	if err := claysPickDate(page, dt); err != nil {
		return nil, err
	}

	// First selectable time in the dropdown.
	_, _ = page.Locator(`select[class*="TimeSelect"]`).First().Evaluate(
		`el => { el.selectedIndex = 1; el.dispatchEvent(new Event('change', { bubbles: true })); }`, nil)
	page.WaitForTimeout(1500)

	// Guests: reset to 1 then step up.
	clickNth(2)
	page.WaitForTimeout(800)
	guestScript := fmt.Sprintf(`() => {
		const input = document.querySelector('input[class*="CountInput"]');
		if (!input) return false;
		const dec = document.querySelector('button.decrement');
		const inc = document.querySelector('button.increment');
		let current = parseInt(input.value) || 1;
		while (current > 1 && dec) { dec.click(); current--; }
		for (let i = 1; i < %d; i++) { if (inc) inc.click(); }
		return true;
	}`, req.PartySize)
	if ok, _ := page.Evaluate(guestScript); ok != true {
		env.Log.LogWarnf("%s: guest stepper not found", displayName)
	}
	page.WaitForTimeout(1000)

	// Occasion: first radio satisfies the form.
	clickNth(3)
	page.WaitForTimeout(600)
	_, _ = page.Evaluate(`() => {
		const radios = document.querySelectorAll('label[class*="RadioButtonContainer"]');
		if (radios.length) radios[0].dispatchEvent(new MouseEvent('click', { bubbles: true, cancelable: true }));
	}`)
	page.WaitForTimeout(500)

	_, _ = page.Evaluate(`() => {
		const b = document.querySelector('button[class*="SearchButton"]');
		if (b) b.click();
	}`)
	page.WaitForTimeout(7000)

	html, err := page.Content()
	if err != nil {
		return nil, Transient("read page content: %v", err)
	}
	return parseClaysResults(html, displayName, req.Date, dt)
}

func claysOpenCalendar(page playwright.Page, reopen func()) error {
	for i := 0; i < 10; i++ {
		opened, _ := page.Evaluate(`() => document.querySelector('.react-calendar') !== null`)
		if opened == true {
			return nil
		}
		reopen()
		page.WaitForTimeout(300)
	}
	return Transient("clays calendar did not open")
}

func claysPickDate(page playwright.Page, dt time.Time) error {
	targetHeader := dt.Format("January 2006")
	for i := 0; i < 24; i++ {
		header, _ := page.Evaluate(`() => {
			const h = document.querySelector('.react-calendar__navigation__label span span');
			return h ? h.textContent.trim() : null;
		}`)
		if header == targetHeader {
			break
		}
		_, _ = page.Evaluate(`() => {
			const n = document.querySelector('.react-calendar__navigation__next-button');
			if (n) n.click();
		}`)
		page.WaitForTimeout(500)
	}

	clicked, _ := page.Evaluate(fmt.Sprintf(`() => {
		const tiles = Array.from(document.querySelectorAll('button.react-calendar__tile'));
		for (const tile of tiles) {
			const ab = tile.querySelector('abbr');
			if (ab && ab.textContent.trim() === "%d") {
				tile.dispatchEvent(new MouseEvent('click', { bubbles: true, cancelable: true }));
				return true;
			}
		}
		return false;
	}`, dt.Day()))
	if clicked != true {
		return Transient("clays calendar tile for day %d not clickable", dt.Day())
	}
	page.WaitForTimeout(800)
	return nil
}

func parseClaysResults(html, displayName, date string, dt time.Time) ([]Slot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Permanent("parse page: %v", err)
	}

	dayLabel := fmt.Sprintf("%s %d", dt.Format("Mon, Jan"), dt.Day())
	var dayBlock *goquery.Selection
	doc.Find(`div[class*="TimeStep__Day-"]`).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		label := strings.TrimSpace(block.Find(`span[class*="TimeStep__DayLabel"]`).First().Text())
		if label == dayLabel {
			dayBlock = block
			return false
		}
		return true
	})
	if dayBlock == nil {
		return nil, nil
	}

	var slots []Slot
	dayBlock.Find(`div[class*="TimeSlots__TimeStepWrapper"]`).Each(func(_ int, wrapper *goquery.Selection) {
		timeLabel := strings.TrimSpace(wrapper.Find(`span[class*="TimeSelect__Time"]`).First().Text())
		if timeLabel == "" {
			timeLabel = "None"
		}
		price := strings.TrimSpace(wrapper.Find(`span[class*="TimeSelect__Price"]`).First().Text())
		if price == "" {
			price = "None"
		}
		slots = append(slots, Slot{
			VenueName: displayName,
			Date:      date,
			Time:      timeLabel,
			Price:     price,
			Status:    "Available",
		})
	})
	return slots, nil
}
