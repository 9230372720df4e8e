package adapters

import (
	"context"
	"fmt"
	"strings"

	"slotscout/internal/platform/browser"

	"github.com/PuerkitoBio/goquery"
)

// Electric Shuffle London renders one availability form per site on a single
// booking page. Each time cell carries several duration variants as radio
// inputs; disabled inputs mean that variant is sold out.

// ElectricShuffleLondon builds the shuffleboard adapter covering every
// London site listed on the booking page.
func ElectricShuffleLondon() Func {
	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if err := validateRequest(req); err != nil {
			return nil, err
		}
		if req.Date == "" {
			return nil, Invalid("Electric Shuffle London requires a target date")
		}

		bookURL := fmt.Sprintf(
			"https://electricshuffle.com/uk/london/book/shuffleboard?preferedvenue=7&preferedtime=23%%3A00&guestQuantity=%d&date=%s",
			req.PartySize, req.Date,
		)

		return withSession(ctx, env, func(sess browser.Session) ([]Slot, error) {
			html, ok, err := gotoAndSnapshot(sess, env, bookURL, "form.es_booking__availability__form")
			if err != nil {
				return nil, err
			}
			if !ok {
				env.Log.LogInfof("Electric Shuffle (London): no availability sections rendered")
				return nil, nil
			}
			return parseElectricShuffleForms(html, req.Date, bookURL)
		})
	}
}

func parseElectricShuffleForms(html, date, bookURL string) ([]Slot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Permanent("parse page: %v", err)
	}

	var slots []Slot
	doc.Find("form.es_booking__availability__form").Each(func(_ int, holder *goquery.Selection) {
		site := strings.TrimSpace(holder.Find("div.es_booking__availability-header.es_font-body--semi-bold").First().Text())
		if site == "" {
			site = "Unknown Venue"
		}

		holder.Find("div.es_booking__availability__table-cell__wrapper").Each(func(_ int, cell *goquery.Selection) {
			timeLabel, ok := cell.Find("div.es_booking__availability__table-cell").First().Attr("name")
			if !ok {
				timeLabel = "None"
			}
			details := electricShuffleCellDetails(cell)
			slots = append(slots, Slot{
				VenueName:  "Electric Shuffle (London)",
				Date:       date,
				Time:       timeLabel,
				Price:      details,
				Status:     "Available",
				BookingURL: bookURL,
				Extra:      map[string]any{"site": site},
			})
		})
	})
	return slots, nil
}

// electricShuffleCellDetails joins the duration and price of each booking
// variant in a time cell, marking disabled variants unavailable.
func electricShuffleCellDetails(cell *goquery.Selection) string {
	var parts []string
	wrap := cell.Find("div.es_booking__time_wrapper").First()
	wrap.Find("input.es_booking__availability__time-slot").Each(func(_ int, inp *goquery.Selection) {
		label := inp.NextFiltered("label")
		if label.Length() == 0 {
			label = inp.NextAllFiltered("label").First()
		}

		duration := strings.TrimSpace(label.Find(".es_booking__availability__duration").First().Text())
		duration = strings.ReplaceAll(duration, "mins", "min")
		price := strings.TrimSpace(label.Find(".es_booking__availability__price-per-person").First().Text())

		if _, disabled := inp.Attr("disabled"); disabled {
			parts = append(parts, "unavailable")
			return
		}
		switch {
		case duration != "" && price != "":
			parts = append(parts, duration+" "+price)
		case duration != "":
			parts = append(parts, duration)
		default:
			parts = append(parts, "available")
		}
	})
	if len(parts) == 0 {
		return "unavailable"
	}
	return strings.Join(parts, ", ")
}
