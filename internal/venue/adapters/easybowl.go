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

// Frames Bowling Lounge runs an Easybowl booking portal: a calendar of
// date cells, a guest dropdown, and product groups that may nest one level
// before reaching bookable products.

// Easybowl builds the Frames Bowling Lounge adapter.
func Easybowl() Func {
	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if err := validateRequest(req); err != nil {
			return nil, err
		}
		if req.Date == "" {
			return nil, Invalid("Frames Bowling Lounge requires a target date")
		}
		return withSession(ctx, env, func(sess browser.Session) ([]Slot, error) {
			return scrapeEasybowl(sess, env, req)
		})
	}
}

func scrapeEasybowl(sess browser.Session, env *Env, req Request) ([]Slot, error) {
	page := sess.Page()
	dt, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, Invalid("bad date %q", req.Date)
	}
	// Calendar cells carry ids like d-20-12-2025.
	cellID := dt.Format("d-02-01-2006")

	if _, err := page.Goto("https://www.easybowl.com/bc/LET/booking", playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(env.PageLoadTimeout.Milliseconds())),
	}); err != nil {
		env.Log.LogDebugf("Easybowl: goto: %v (continuing)", err)
	}
	page.WaitForTimeout(1200)

	dateFound := false
	for i := 0; i < 30; i++ {
		if err := page.Locator("td#"+cellID).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(1500)}); err == nil {
			dateFound = true
			break
		}
		if err := page.Locator(`xpath=//a[normalize-space()='>>']`).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(1500)}); err != nil {
			break
		}
		page.WaitForTimeout(400)
	}
	if !dateFound {
		env.Log.LogInfof("Frames Bowling Lounge: date %s not on calendar", req.Date)
		return nil, nil
	}

	if _, err := page.Locator(`select#adults`).First().SelectOption(playwright.SelectOptionValues{
		Values: &[]string{fmt.Sprintf("%d", req.PartySize)},
	}); err != nil {
		return nil, Transient("select guests: %v", err)
	}
	if err := page.Locator(`xpath=//div[normalize-space()='Search']`).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)}); err != nil {
		return nil, Transient("click search: %v", err)
	}
	page.WaitForTimeout(2500)

	groupCount, err := page.Locator(`xpath=//div[@class='button prodGroupButton']`).Count()
	if err != nil || groupCount == 0 {
		return nil, nil
	}

	var slots []Slot
	for j := 0; j < groupCount; j++ {
		groups := page.Locator(`xpath=//div[@class='button prodGroupButton']`)
		if n, _ := groups.Count(); j >= n {
			break
		}
		if err := groups.Nth(j).Click(playwright.LocatorClickOptions{Timeout: playwright.Float(3000)}); err != nil {
			continue
		}
		page.WaitForTimeout(900)

		html, err := page.Content()
		if err != nil {
			return nil, Transient("read page content: %v", err)
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return nil, Permanent("parse page: %v", err)
		}

		if doc.Find("div.prodBox.prodGroup").Length() > 0 {
			// One nested level of groups before the products.
			nestedCount, _ := page.Locator(`xpath=//div[@class='button prodGroupButton']`).Count()
			for k := 0; k < nestedCount; k++ {
				nested := page.Locator(`xpath=//div[@class='button prodGroupButton']`)
				if n, _ := nested.Count(); k >= n {
					break
				}
				if err := nested.Nth(k).Click(playwright.LocatorClickOptions{Timeout: playwright.Float(3000)}); err != nil {
					continue
				}
				page.WaitForTimeout(900)

				nestedHTML, err := page.Content()
				if err == nil {
					slots = append(slots, parseEasybowlProducts(nestedHTML, req.Date)...)
				}
				_, _ = page.GoBack()
				page.WaitForTimeout(700)
			}
		} else {
			slots = append(slots, parseEasybowlProducts(html, req.Date)...)
		}

		_, _ = page.GoBack()
		page.WaitForTimeout(700)
	}
	return slots, nil
}

func parseEasybowlProducts(html, date string) []Slot {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var slots []Slot
	doc.Find("div.prodBox").Each(func(_ int, box *goquery.Selection) {
		if box.HasClass("prodGroup") {
			return
		}
		name := strings.TrimSpace(box.Find("div.prodHeadline").First().Text())
		if name == "" {
			name = "Unknown"
		}
		slots = append(slots, Slot{
			VenueName: "Frames Bowling Lounge (Midtown)",
			Date:      date,
			Time:      easybowlEventTimes(box),
			Price:     easybowlPrices(box),
			Status:    name,
		})
	})
	return slots
}

func easybowlEventTimes(box *goquery.Selection) string {
	table := box.Find("table.tableEventDetails").First()
	if table.Length() == 0 {
		return "None"
	}
	var parts []string
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		name := strings.TrimSpace(cells.Eq(1).Text())
		start := strings.TrimSpace(cells.Eq(2).Text())
		end := strings.TrimSpace(cells.Eq(3).Text())
		if start != "" && end != "" {
			parts = append(parts, fmt.Sprintf("%s: %s - %s", name, start, end))
		}
	})
	if len(parts) == 0 {
		return strings.TrimSpace(table.Text())
	}
	return strings.Join(parts, " | ")
}

func easybowlPrices(box *goquery.Selection) string {
	table := box.Find("table.tablePriceBox").First()
	if table.Length() == 0 {
		return "None"
	}
	var parts []string
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		label := strings.TrimSpace(cells.Eq(0).Text())
		value := strings.TrimSpace(cells.Eq(2).Text())
		if label != "" && value != "" {
			parts = append(parts, label+": "+value)
		}
	})
	if len(parts) == 0 {
		return strings.TrimSpace(table.Text())
	}
	return strings.Join(parts, " | ")
}
