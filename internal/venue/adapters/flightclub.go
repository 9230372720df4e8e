package adapters

import (
	"context"
	"fmt"
	"strings"

	"slotscout/internal/platform/browser"

	"github.com/PuerkitoBio/goquery"
)

// Flight Club lists all four London sites on a single booking page. One
// page load yields availability sections per site; each section's cells
// are emitted under that site's venue name.

var flightClubSections = map[string]string{
	"Bloomsbury, London": "Flight Club Darts (Bloomsbury)",
	"Angel, London":      "Flight Club Darts (Angel)",
	"Shoreditch, London": "Flight Club Darts (Shoreditch)",
	"Victoria, London":   "Flight Club Darts (Victoria)",
}

// FlightClubDarts builds the all-sites darts availability adapter.
func FlightClubDarts() Func {
	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if err := validateRequest(req); err != nil {
			return nil, err
		}
		if req.Date == "" {
			return nil, Invalid("Flight Club Darts requires a target date")
		}

		bookURL := fmt.Sprintf(
			"https://flightclubdarts.com/book?date=%s&group_size=%d&preferedtime=11%%3A30",
			req.Date, req.PartySize,
		)

		return withSession(ctx, env, func(sess browser.Session) ([]Slot, error) {
			html, ok, err := gotoAndSnapshot(sess, env, bookURL, "div.fc_dmnbook-availability")
			if err != nil {
				return nil, err
			}
			if !ok {
				env.Log.LogInfof("Flight Club Darts: no availability sections rendered")
				return nil, nil
			}
			return parseFlightClubSections(html, req.Date, bookURL)
		})
	}
}

func parseFlightClubSections(html, date, bookURL string) ([]Slot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Permanent("parse page: %v", err)
	}

	var slots []Slot
	doc.Find("div.fc_dmnbook-availability").Each(func(_ int, section *goquery.Selection) {
		title := strings.TrimSpace(section.Find(`span#fc_dmnbook-availability__name`).First().Text())
		venueName, allowed := flightClubSections[title]
		if !allowed {
			return
		}

		section.Find("div.fc_dmnbook-availability-tablecell").Each(func(_ int, cell *goquery.Selection) {
			timeLabel := strings.TrimSpace(cell.Find("div.fc_dmnbook-availibility__time").First().Text())
			if timeLabel == "" {
				timeLabel = "None"
			}
			desc := strings.TrimSpace(cell.Find("div.fc_dmnbook-time_wrapper").First().Text())
			if desc == "" {
				desc = "None"
			} else {
				desc = strings.Join(strings.Fields(desc), " ")
			}
			slots = append(slots, Slot{
				VenueName:  venueName,
				Date:       date,
				Time:       timeLabel,
				Price:      desc,
				Status:     "Available",
				BookingURL: bookURL,
				Extra:      map[string]any{"section": title},
			})
		})
	})
	return slots, nil
}
