package adapters

import (
	"context"
	"fmt"
	"strings"

	"slotscout/internal/platform/browser"

	"github.com/PuerkitoBio/goquery"
)

const luckyStrikeSlotSelector = "button.TimeSlotSelection_timeSlot__hxKpB"

var luckyStrikeLocations = map[string]struct {
	slug        string
	displayName string
}{
	"chelsea_piers": {"lucky-strike-chelsea-piers", "Lucky Strike (Chelsea Piers)"},
	"times_square":  {"lucky-strike-times-square", "Lucky Strike (Times Square)"},
}

// LuckyStrike builds a lane reservation adapter for one NYC location.
func LuckyStrike(location string) Func {
	loc, ok := luckyStrikeLocations[location]
	if !ok {
		panic(fmt.Sprintf("adapters: unknown lucky strike location %q", location))
	}

	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if err := validateRequest(req); err != nil {
			return nil, err
		}
		if req.Date == "" {
			return nil, Invalid("Lucky Strike requires a target date")
		}

		bookURL := fmt.Sprintf(
			"https://www.luckystrikeent.com/location/%s/booking/lane-reservation?date=%sT23:00:00.000Z&guestsCount=%d",
			loc.slug, req.Date, req.PartySize,
		)

		return withSession(ctx, env, func(sess browser.Session) ([]Slot, error) {
			html, ok, err := gotoAndSnapshot(sess, env, bookURL, luckyStrikeSlotSelector)
			if err != nil {
				return nil, err
			}
			if !ok {
				env.Log.LogInfof("%s: no time slots rendered", loc.displayName)
				return nil, nil
			}
			return parseLuckyStrikeSlots(html, loc.displayName, req.Date, bookURL)
		})
	}
}

func parseLuckyStrikeSlots(html, venueName, date, bookURL string) ([]Slot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Permanent("parse page: %v", err)
	}

	var slots []Slot
	doc.Find(luckyStrikeSlotSelector).Each(func(_ int, btn *goquery.Selection) {
		spans := btn.Find("span")
		timeLabel := "None"
		price := "None"
		if spans.Length() > 0 {
			timeLabel = strings.TrimSpace(spans.Eq(0).Text())
		}
		if spans.Length() > 1 {
			price = strings.TrimSpace(spans.Eq(1).Text())
		}
		slots = append(slots, Slot{
			VenueName:  venueName,
			Date:       date,
			Time:       timeLabel,
			Price:      price,
			Status:     "Available",
			BookingURL: bookURL,
		})
	})
	return slots, nil
}
