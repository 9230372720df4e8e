package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"slotscout/internal/platform/browser"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

// SevenRooms hosts the booking flows for several venues. The explore page
// renders a grid of timeslot buttons once its JS settles; absence of the
// grid within the wait window means no availability for the query.
const (
	sevenroomsGridSelector = `div[data-test="reservation-availability-grid-primary"]`
	sevenroomsTimeSelector = `span[data-test="reservation-timeslot-button-time"]`
	sevenroomsDescSelector = `span[data-test="reservation-timeslot-button-description"]`
)

func sevenroomsSearchURL(slug, date string, partySize int) string {
	q := url.Values{}
	q.Set("date", date)
	q.Set("halo", "120")
	q.Set("party_size", fmt.Sprintf("%d", partySize))
	q.Set("start_time", "ALL")
	return fmt.Sprintf("https://www.sevenrooms.com/explore/%s/reservations/create/search?%s", slug, q.Encode())
}

// SevenRooms builds an adapter for one SevenRooms-hosted venue.
func SevenRooms(slug, displayName string) Func {
	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if err := validateRequest(req); err != nil {
			return nil, err
		}
		if req.Date == "" {
			return nil, Invalid("%s requires a target date", displayName)
		}
		searchURL := sevenroomsSearchURL(slug, req.Date, req.PartySize)

		return withSession(ctx, env, func(s browser.Session) ([]Slot, error) {
			html, ok, err := gotoAndSnapshot(s, env, searchURL, sevenroomsGridSelector)
			if err != nil {
				return nil, err
			}
			if !ok {
				env.Log.LogInfof("%s: availability grid never appeared, treating as empty", displayName)
				return nil, nil
			}
			return parseSevenroomsGrid(html, displayName, req.Date, searchURL)
		})
	}
}

func parseSevenroomsGrid(html, displayName, date, bookingURL string) ([]Slot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Permanent("parse page: %v", err)
	}
	grid := doc.Find(sevenroomsGridSelector)
	if grid.Length() == 0 {
		return nil, nil
	}

	var slots []Slot
	grid.Find(`button[data-test^="reservation-timeslot-button"]`).Each(func(_ int, btn *goquery.Selection) {
		timeLabel := strings.TrimSpace(btn.Find(sevenroomsTimeSelector).Text())
		if timeLabel == "" {
			return
		}
		desc := strings.TrimSpace(btn.Find(sevenroomsDescSelector).Text())
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

// gotoAndSnapshot navigates, waits for readySelector, and returns the page
// HTML. The page keeps loading in the background after domcontentloaded so
// navigation timeouts are tolerated; only the selector wait decides. A
// missing selector returns ok=false with no error so callers can decide
// whether that means "empty" or "broken".
func gotoAndSnapshot(s browser.Session, env *Env, pageURL, readySelector string) (html string, ok bool, err error) {
	page := s.Page()
	_, navErr := page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(env.PageLoadTimeout.Milliseconds())),
	})
	if navErr != nil {
		env.Log.LogDebugf("goto %s: %v (continuing, selector wait decides)", pageURL, navErr)
	}

	waitErr := page.Locator(readySelector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(env.SelectorTimeout.Milliseconds())),
	})
	if waitErr != nil {
		return "", false, nil
	}

	// Allow in-flight JS to finish populating the container.
	page.WaitForTimeout(2000)

	content, err := page.Content()
	if err != nil {
		return "", false, Transient("read page content: %v", err)
	}
	return content, true, nil
}
