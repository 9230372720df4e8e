package adapters

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Chelsea Piers Golf publishes its open-play sessions through DaySmart's
// JSON:API. Leagues for the date are discovered first, then each league's
// teams become slots; pricing lives on the team-level product.

const daysmartAPIBase = "https://apps.daysmartrecreation.com/dash/jsonapi/api/v1"

const (
	daysmartCompany   = "chelsea"
	daysmartProgramID = "37"
)

var daysmartHeaders = map[string]string{
	"Accept":           "application/vnd.api+json",
	"X-Requested-With": "XMLHttpRequest",
}

type jsonapiPage struct {
	Meta struct {
		Page struct {
			CurrentPage int `json:"current-page"`
			LastPage    int `json:"last-page"`
		} `json:"page"`
	} `json:"meta"`
}

type daysmartLeagues struct {
	jsonapiPage
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			StartDate string `json:"start_date"`
		} `json:"attributes"`
	} `json:"data"`
}

type daysmartTeams struct {
	jsonapiPage
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Name               string `json:"name"`
			StartDate          string `json:"start_date"`
			EventLength        int    `json:"event_length"`
			ProductID          string `json:"product_id"`
			IsRegistrationOpen bool   `json:"is_registration_open"`
		} `json:"attributes"`
	} `json:"data"`
	Included []struct {
		Type       string `json:"type"`
		ID         string `json:"id"`
		Attributes struct {
			MaxRegisteredCustomers int    `json:"max_registered_customers"`
			RegisteredCustomers    int    `json:"registered_customers"`
			RegistrationStatus     string `json:"registration_status"`
		} `json:"attributes"`
	} `json:"included"`
}

type daysmartProduct struct {
	Data struct {
		Attributes struct {
			LocalPrice       *float64 `json:"local_price"`
			ActualPrice      *float64 `json:"actual_price"`
			Price            *float64 `json:"price"`
			NonResidentPrice *float64 `json:"non_resident_price"`
		} `json:"attributes"`
	} `json:"data"`
}

// DaySmartChelsea builds the Chelsea Piers Golf session adapter.
func DaySmartChelsea() Func {
	return func(ctx context.Context, env *Env, req Request) ([]Slot, error) {
		if err := validateRequest(req); err != nil {
			return nil, err
		}
		if req.Date == "" {
			return nil, Invalid("Chelsea Piers Golf requires a target date")
		}

		leagueIDs, err := daysmartLeagueIDs(ctx, env, req.Date)
		if err != nil {
			return nil, err
		}
		if len(leagueIDs) == 0 {
			return nil, nil
		}

		priceCache := map[string]string{}
		var slots []Slot
		for _, leagueID := range leagueIDs {
			leagueSlots, err := daysmartLeagueSlots(ctx, env, leagueID, req.Date, priceCache)
			if err != nil {
				return nil, err
			}
			slots = append(slots, leagueSlots...)
		}
		return slots, nil
	}
}

func daysmartLeagueIDs(ctx context.Context, env *Env, date string) ([]string, error) {
	var ids []string
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("company", daysmartCompany)
		q.Set("filter[program_id]", daysmartProgramID)
		q.Set("filter[visible_online]", "true")
		q.Set("sort", "start_date")
		q.Set("page[size]", "10")
		q.Set("page[number]", fmt.Sprintf("%d", page))

		var payload daysmartLeagues
		if err := getJSON(ctx, env, daysmartAPIBase+"/leagues?"+q.Encode(), daysmartHeaders, &payload); err != nil {
			return nil, err
		}
		for _, league := range payload.Data {
			if len(league.Attributes.StartDate) >= len(date) && league.Attributes.StartDate[:len(date)] == date {
				ids = append(ids, league.ID)
			}
		}
		if payload.Meta.Page.CurrentPage >= payload.Meta.Page.LastPage {
			break
		}
	}
	return ids, nil
}

func daysmartLeagueSlots(ctx context.Context, env *Env, leagueID, date string, priceCache map[string]string) ([]Slot, error) {
	endFilter, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, Invalid("bad date %q", date)
	}
	end := endFilter.AddDate(0, 0, 1).Format("2006-01-02 15:04:05")

	var slots []Slot
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("cache[save]", "false")
		q.Set("page[size]", "100")
		q.Set("page[number]", fmt.Sprintf("%d", page))
		q.Set("sort", "start_date")
		q.Set("include", "allEvents,registrationInfo,facility,skillLevel,programType,sport,product.locations,registrableEvents")
		q.Set("filter[league_id]", leagueID)
		q.Set("filter[visible_online]", "true")
		q.Set("filterRelations[registrableEvents][publish]", "true")
		q.Set("filterRelations[registrableEvents][end__gte]", end)
		q.Set("company", daysmartCompany)

		var payload daysmartTeams
		if err := getJSON(ctx, env, daysmartAPIBase+"/teams?"+q.Encode(), daysmartHeaders, &payload); err != nil {
			return nil, err
		}

		type regInfo struct {
			max, registered int
			status          string
		}
		regByTeam := map[string]regInfo{}
		for _, inc := range payload.Included {
			if inc.Type != "team-registration-infos" {
				continue
			}
			regByTeam[inc.ID] = regInfo{
				max:        inc.Attributes.MaxRegisteredCustomers,
				registered: inc.Attributes.RegisteredCustomers,
				status:     inc.Attributes.RegistrationStatus,
			}
		}

		for _, team := range payload.Data {
			attrs := team.Attributes
			if len(attrs.StartDate) < len(date) || attrs.StartDate[:len(date)] != date {
				continue
			}
			reg := regByTeam[team.ID]
			status := "Closed"
			if attrs.IsRegistrationOpen && reg.status == "open" && reg.registered < reg.max {
				status = "Available"
			}

			timeLabel := attrs.StartDate
			if t, err := time.Parse("2006-01-02T15:04:05", attrs.StartDate); err == nil {
				timeLabel = clockLabel(t)
			}

			price, err := daysmartPrice(ctx, env, attrs.ProductID, priceCache)
			if err != nil {
				env.Log.LogWarnf("Chelsea Piers Golf: price for product %s: %v", attrs.ProductID, err)
			}

			slots = append(slots, Slot{
				VenueName: "Chelsea Piers Golf",
				Date:      date,
				Time:      timeLabel,
				Price:     price,
				Status:    status,
				Extra: map[string]any{
					"title":      attrs.Name,
					"duration":   fmt.Sprintf("%d minutes", attrs.EventLength),
					"league_id":  leagueID,
					"team_id":    team.ID,
					"product_id": attrs.ProductID,
				},
			})
		}

		if payload.Meta.Page.CurrentPage >= payload.Meta.Page.LastPage {
			break
		}
	}
	return slots, nil
}

func daysmartPrice(ctx context.Context, env *Env, productID string, cache map[string]string) (string, error) {
	if productID == "" {
		return "", nil
	}
	if price, ok := cache[productID]; ok {
		return price, nil
	}

	var payload daysmartProduct
	reqURL := fmt.Sprintf("%s/products/%s?company=%s", daysmartAPIBase, productID, daysmartCompany)
	if err := getJSON(ctx, env, reqURL, daysmartHeaders, &payload); err != nil {
		return "", err
	}

	attrs := payload.Data.Attributes
	var price *float64
	for _, candidate := range []*float64{attrs.LocalPrice, attrs.ActualPrice, attrs.Price, attrs.NonResidentPrice} {
		if candidate != nil {
			price = candidate
			break
		}
	}
	formatted := ""
	if price != nil {
		formatted = fmt.Sprintf("$%.2f", *price)
	}
	cache[productID] = formatted
	return formatted, nil
}
