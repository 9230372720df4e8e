package adapters

import (
	"context"
	"fmt"
	"strings"

	"slotscout/internal/platform/browser"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

// Hijingo's booking page lists slots in one flat list with date-header
// items between them. Only the items between the target date's header and
// the next header belong to the query; sold-out cards are skipped.

// Hijingo builds the bingo-show adapter.
func Hijingo() Func {
	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if err := validateRequest(req); err != nil {
			return nil, err
		}
		if req.Date == "" {
			return nil, Invalid("Hijingo requires a target date")
		}
		bookURL := fmt.Sprintf("https://www.hijingo.com/book?depart=%s&guests=%d", req.Date, req.PartySize)

		return withSession(ctx, env, func(sess browser.Session) ([]Slot, error) {
			page := sess.Page()
			if _, err := page.Goto(bookURL, playwright.PageGotoOptions{
				WaitUntil: playwright.WaitUntilStateDomcontentloaded,
				Timeout:   playwright.Float(float64(env.PageLoadTimeout.Milliseconds())),
			}); err != nil {
				return nil, Transient("goto book page: %v", err)
			}
			page.WaitForTimeout(4000)

			// Cookiebot banner blocks the list when present.
			_ = page.Locator(`#CybotCookiebotDialogBodyLevelButtonLevelOptinAllowAll`).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)})
			page.WaitForTimeout(2000)

			header := page.Locator(fmt.Sprintf(`li.slot-search__item--date[data-date="%s"]`, req.Date)).First()
			if err := header.WaitFor(playwright.LocatorWaitForOptions{
				State:   playwright.WaitForSelectorStateVisible,
				Timeout: playwright.Float(float64(env.SelectorTimeout.Milliseconds())),
			}); err != nil {
				env.Log.LogInfof("Hijingo: date %s not offered", req.Date)
				return nil, nil
			}

			html, err := page.Content()
			if err != nil {
				return nil, Transient("read page content: %v", err)
			}
			return parseHijingoSlots(html, req.Date, bookURL)
		})
	}
}

func parseHijingoSlots(html, date, bookURL string) ([]Slot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Permanent("parse page: %v", err)
	}

	var slots []Slot
	collecting := false
	doc.Find(".slot-search__list > li").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if item.HasClass("slot-search__item--date") {
			itemDate, _ := item.Attr("data-date")
			if itemDate == date {
				collecting = true
				return true
			}
			if collecting {
				return false
			}
			return true
		}
		if !collecting {
			return true
		}

		card := item.Find(".date-card").First()
		if card.Length() == 0 || card.HasClass("date-card--sold-out") {
			return true
		}

		timeLabel := strings.TrimSpace(item.Find(".item-dates").First().Text())
		if timeLabel == "" {
			return true
		}
		price := strings.TrimSpace(item.Find(".js-price-string-price").First().Text())
		if price == "" {
			price = "Price not available"
		}
		event := strings.TrimSpace(item.Find(".p--xsmall.weight-bold").First().Text())
		if event == "" {
			event = "Standard"
		}
		status := "Available"
		if badge := strings.TrimSpace(item.Find(".date-card__badge.low-stock").First().Text()); badge != "" {
			status = badge
		}

		extra := map[string]any{"event": event}
		if offer := strings.TrimSpace(item.Find(".date-card__badge.override-badge").First().Text()); offer != "" {
			extra["special_offer"] = offer
		}

		slots = append(slots, Slot{
			VenueName:  "Hijingo",
			Date:       date,
			Time:       timeLabel,
			Price:      price,
			Status:     status,
			BookingURL: bookURL,
			Extra:      extra,
		})
		return true
	})
	return slots, nil
}
