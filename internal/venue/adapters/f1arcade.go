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

// F1 Arcade's London booking flow: guest count, experience card, continue,
// calendar, then a colour-coded time grid. Slot colours map to the price
// tiers shown in the grid header.

var f1Experiences = map[string]bool{
	"Team Racing":      true,
	"Christmas Racing": true,
	"Head to Head":     true,
}

var f1ColourTiers = map[string]string{
	"bg-light-grey":            "Offpeak",
	"bg-electric-violet-light": "Standard",
	"bg-brand-primary":         "Peak",
}

// F1Arcade builds the racing-simulator adapter. The experience arrives as
// a per-request option.
func F1Arcade() Func {
	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if err := validateRequest(req); err != nil {
			return nil, err
		}
		if req.Date == "" {
			return nil, Invalid("F1 Arcade requires a target date")
		}
		experience := req.Options["experience"]
		if experience == "" {
			experience = "Team Racing"
		}
		if !f1Experiences[experience] {
			return nil, Invalid("unsupported F1 Arcade experience %q", experience)
		}

		return withSession(ctx, env, func(sess browser.Session) ([]Slot, error) {
			return scrapeF1Arcade(sess, env, req, experience)
		})
	}
}

func scrapeF1Arcade(sess browser.Session, env *Env, req Request, experience string) ([]Slot, error) {
	page := sess.Page()
	dt, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, Invalid("bad date %q", req.Date)
	}

	if _, err := page.Goto("https://f1arcade.com/uk/booking/venue/london", playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(env.PageLoadTimeout.Milliseconds())),
	}); err != nil {
		return nil, Transient("goto booking page: %v", err)
	}
	page.WaitForTimeout(4000)

	_, _ = page.Evaluate(fmt.Sprintf(`() => {
		const el = document.getElementById("adults-group-size");
		if (el) {
			el.value = "%d";
			el.dispatchEvent(new Event('input', { bubbles: true }));
		}
	}`, req.PartySize))
	page.WaitForTimeout(800)

	xpCard := page.Locator(fmt.Sprintf(`xpath=//h2[contains(text(),'%s')]`, experience)).First()
	if n, _ := page.Locator(fmt.Sprintf(`xpath=//h2[contains(text(),'%s')]`, experience)).Count(); n > 0 {
		_, _ = xpCard.Evaluate("el => el.scrollIntoView()", nil)
		page.WaitForTimeout(600)
		_, _ = xpCard.Evaluate("el => el.click()", nil)
	} else {
		env.Log.LogWarnf("F1 Arcade: experience card %q not found", experience)
	}
	page.WaitForTimeout(1500)

	clicked, _ := page.Evaluate(`() => {
		const btn = document.querySelector('#game-continue');
		if (btn) { btn.click(); return true; }
		return false;
	}`)
	if clicked != true {
		env.Log.LogInfof("F1 Arcade: continue button missing")
		return nil, nil
	}
	page.WaitForTimeout(6000)

	// Rewind the calendar, then step forward to the target month.
	for i := 0; i < 6; i++ {
		_, _ = page.Evaluate(`() => {
			const b = document.getElementById("prev-month-btn");
			if (b) b.click();
		}`)
		page.WaitForTimeout(180)
	}
	targetMonth := dt.Format("Jan 2006")
	for i := 0; i < 24; i++ {
		header, _ := page.Evaluate(`() => {
			const h = document.querySelector('#date-picker h2');
			return h ? h.textContent.trim() : "";
		}`)
		if header == targetMonth {
			break
		}
		_, _ = page.Evaluate(`() => {
			const b = document.getElementById("next-month-btn");
			if (b) b.click();
		}`)
		page.WaitForTimeout(250)
	}

	dayClicked, _ := page.Evaluate(fmt.Sprintf(`() => {
		const btns = document.querySelectorAll('button[data-target="date-picker-day"]');
		for (const b of btns) {
			const t = b.querySelector("time");
			if (t && t.textContent.trim() === "%d" && !b.disabled) {
				b.click();
				return true;
			}
		}
		return false;
	}`, dt.Day()))
	if dayClicked != true {
		env.Log.LogInfof("F1 Arcade: day %d unavailable", dt.Day())
		return nil, nil
	}
	page.WaitForTimeout(8000)

	html, err := page.Content()
	if err != nil {
		return nil, Transient("read page content: %v", err)
	}
	return parseF1Slots(html, req.Date, experience)
}

func parseF1Slots(html, date, experience string) ([]Slot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Permanent("parse page: %v", err)
	}

	// Tier label to "from £x" price, read from the grid header.
	priceByTier := map[string]string{}
	doc.Find(".flex.grow.justify-center").Each(func(_ int, block *goquery.Selection) {
		labelDiv := block.Find("div.-mt-1").First()
		if labelDiv.Length() == 0 {
			return
		}
		label := strings.TrimSpace(labelDiv.Find("div").First().Text())
		price := strings.TrimSpace(labelDiv.Find("div.text-xxs").First().Text())
		if price != "" {
			priceByTier[label] = strings.TrimPrefix(price, "from £")
		}
	})

	var slots []Slot
	doc.Find(`div[data-target="time-picker-option"]`).Each(func(_ int, slot *goquery.Selection) {
		timeLabel := strings.TrimSpace(slot.Text())
		box := slot.Find("div.animate").First().Find("div").First()
		if box.Length() == 0 {
			return
		}
		tier := "Unknown"
		if classAttr, ok := box.Attr("class"); ok {
			for _, c := range strings.Fields(classAttr) {
				if t, found := f1ColourTiers[c]; found {
					tier = t
					break
				}
			}
		}
		price := priceByTier[tier]
		if price == "" {
			price = "N/A"
		}
		slots = append(slots, Slot{
			VenueName: "F1 Arcade",
			Date:      date,
			Time:      timeLabel,
			Price:     fmt.Sprintf("%s from £%s", tier, price),
			Status:    "Available",
			Extra:     map[string]any{"experience": experience},
		})
	})
	return slots, nil
}
