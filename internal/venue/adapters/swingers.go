package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"slotscout/internal/platform/browser"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

// Swingers renders a month calendar of bookable dates, each linking to a
// per-date slot page. With a target date only that page is visited; without
// one every available date in the current month is swept.

type swingersSite struct {
	displayName string
	bookURL     string
}

var swingersSites = map[string]swingersSite{
	"nyc":    {"Swingers (NYC)", "https://www.swingers.club/us/locations/nyc/book-now"},
	"london": {"Swingers (London)", "https://www.swingers.club/uk/book-now"},
}

// Swingers builds the crazy-golf calendar adapter for one site.
func Swingers(site string) Func {
	s, known := swingersSites[site]
	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if !known {
			return nil, Invalid("unknown Swingers site %q", site)
		}
		if err := validateRequest(req); err != nil {
			return nil, err
		}

		q := url.Values{}
		q.Set("guests", fmt.Sprintf("%d", req.PartySize))
		if req.Date != "" {
			dt, _ := time.Parse("2006-01-02", req.Date)
			q.Set("search[month]", fmt.Sprintf("%d", int(dt.Month())))
			q.Set("search[year]", fmt.Sprintf("%d", dt.Year()))
			q.Set("depart", req.Date)
		}
		calendarURL := s.bookURL + "?" + q.Encode()

		return withSession(ctx, env, func(sess browser.Session) ([]Slot, error) {
			html, ok, err := gotoAndSnapshot(sess, env, calendarURL, "li.slot-calendar__dates-item")
			if err != nil {
				return nil, err
			}
			if !ok {
				env.Log.LogInfof("%s: calendar never rendered, treating as empty", s.displayName)
				return nil, nil
			}

			dates, err := swingersAvailableDates(html, req.Date)
			if err != nil {
				return nil, err
			}

			var slots []Slot
			for _, d := range dates {
				dateSlots, err := swingersDateSlots(sess, env, s, d.date, d.href, calendarURL)
				if err != nil {
					return nil, err
				}
				slots = append(slots, dateSlots...)
			}
			return slots, nil
		})
	}
}

type swingersDate struct {
	date string
	href string
}

func swingersAvailableDates(html, targetDate string) ([]swingersDate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Permanent("parse calendar: %v", err)
	}

	var dates []swingersDate
	doc.Find(`li.slot-calendar__dates-item[data-available="true"]`).Each(func(_ int, li *goquery.Selection) {
		date, _ := li.Attr("data-date")
		href, hrefOK := li.Find("a").Attr("href")
		if date == "" || !hrefOK {
			return
		}
		if targetDate != "" && date != targetDate {
			return
		}
		dates = append(dates, swingersDate{date: date, href: href})
	})
	return dates, nil
}

func swingersDateSlots(sess browser.Session, env *Env, s swingersSite, date, href, bookingURL string) ([]Slot, error) {
	dt, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, Permanent("calendar carried bad date %q", date)
	}
	day := dt.Format("02")
	monthAbbr := dt.Format("Jan")

	page := sess.Page()
	slotURL := "https://www.swingers.club" + href
	if _, err := page.Goto(slotURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(env.PageLoadTimeout.Milliseconds())),
	}); err != nil {
		env.Log.LogDebugf("Swingers: goto %s: %v (continuing)", slotURL, err)
	}
	page.WaitForTimeout(4000)

	if err := page.Locator("button[data-day]").First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(env.SelectorTimeout.Milliseconds())),
	}); err != nil {
		env.Log.LogInfof("%s: no slot buttons for %s", s.displayName, date)
		return nil, nil
	}

	html, err := page.Content()
	if err != nil {
		return nil, Transient("read slot page: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Permanent("parse slot page: %v", err)
	}

	var slots []Slot
	sel := fmt.Sprintf(`button[data-day="%s"][data-month="%s"]`, day, monthAbbr)
	doc.Find(sel).Each(func(_ int, btn *goquery.Selection) {
		status := strings.TrimSpace(btn.Find("div.slot-search-result__low-stock").Text())
		if status == "" {
			status = "Available"
		}
		timeLabel := strings.TrimSpace(btn.Find("span.slot-search-result__time").First().Text())
		if timeLabel == "" {
			timeLabel = "None"
		}
		price := strings.TrimSpace(btn.Find("span.slot-search-result__price-label").First().Text())
		if price == "" {
			price = "None"
		}
		slots = append(slots, Slot{
			VenueName:  s.displayName,
			Date:       date,
			Time:       timeLabel,
			Price:      price,
			Status:     status,
			BookingURL: bookingURL,
		})
	})
	return slots, nil
}
