package adapters

import (
	"testing"
)

const sevenroomsFixture = `
<html><body>
<div data-test="reservation-availability-grid-primary">
  <button data-test="reservation-timeslot-button-0">
    <span data-test="reservation-timeslot-button-time">7:00 PM</span>
    <span data-test="reservation-timeslot-button-description">Shuffleboard Social</span>
  </button>
  <button data-test="reservation-timeslot-button-1">
    <span data-test="reservation-timeslot-button-time">7:30 PM</span>
  </button>
  <button data-test="reservation-timeslot-button-2">
    <span data-test="reservation-timeslot-button-description">missing time, skipped</span>
  </button>
</div>
</body></html>`

func TestParseSevenroomsGrid(t *testing.T) {
	slots, err := parseSevenroomsGrid(sevenroomsFixture, "Electric Shuffle (NYC)", "2025-12-20", "https://example.test/search")
	if err != nil {
		t.Fatalf("parseSevenroomsGrid: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if slots[0].Time != "7:00 PM" || slots[0].Price != "Shuffleboard Social" {
		t.Errorf("slot[0] = %+v", slots[0])
	}
	if slots[1].Time != "7:30 PM" || slots[1].Price != "" {
		t.Errorf("slot[1] = %+v", slots[1])
	}
	for _, s := range slots {
		if s.VenueName != "Electric Shuffle (NYC)" || s.Date != "2025-12-20" || s.Status != "Available" {
			t.Errorf("slot fields = %+v", s)
		}
	}
}

func TestParseSevenroomsGridAbsent(t *testing.T) {
	slots, err := parseSevenroomsGrid("<html><body><p>nothing here</p></body></html>", "X", "2025-12-20", "u")
	if err != nil || slots != nil {
		t.Fatalf("got %v, %v; want nil, nil", slots, err)
	}
}

const flightClubFixture = `
<html><body>
<div class="fc_dmnbook-availability">
  <span id="fc_dmnbook-availability__name">Shoreditch, London</span>
  <div class="fc_dmnbook-availability-tablecell">
    <div class="fc_dmnbook-availibility__time">6:00 PM</div>
    <div class="fc_dmnbook-time_wrapper">90   min
      £12pp</div>
  </div>
</div>
<div class="fc_dmnbook-availability">
  <span id="fc_dmnbook-availability__name">Manchester</span>
  <div class="fc_dmnbook-availability-tablecell">
    <div class="fc_dmnbook-availibility__time">5:00 PM</div>
  </div>
</div>
</body></html>`

func TestParseFlightClubSections(t *testing.T) {
	slots, err := parseFlightClubSections(flightClubFixture, "2025-12-20", "https://flightclubdarts.com/book")
	if err != nil {
		t.Fatalf("parseFlightClubSections: %v", err)
	}
	// Sections outside the London site map are dropped.
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(slots))
	}
	s := slots[0]
	if s.VenueName != "Flight Club Darts (Shoreditch)" {
		t.Errorf("venue = %q", s.VenueName)
	}
	if s.Time != "6:00 PM" {
		t.Errorf("time = %q", s.Time)
	}
	if s.Price != "90 min £12pp" {
		t.Errorf("price = %q (whitespace not collapsed)", s.Price)
	}
}

const hijingoFixture = `
<html><body>
<ul class="slot-search__list">
  <li class="slot-search__item--date" data-date="2025-12-19"></li>
  <li>
    <div class="date-card"></div>
    <div class="item-dates">5:00 PM</div>
  </li>
  <li class="slot-search__item--date" data-date="2025-12-20"></li>
  <li>
    <div class="date-card"></div>
    <div class="item-dates">6:30 PM</div>
    <div class="js-price-string-price">£25</div>
    <div class="p--xsmall weight-bold">Classic Show</div>
  </li>
  <li>
    <div class="date-card date-card--sold-out"></div>
    <div class="item-dates">7:00 PM</div>
  </li>
  <li>
    <div class="date-card"><span class="date-card__badge low-stock">Low availability</span></div>
    <div class="item-dates">8:30 PM</div>
  </li>
  <li class="slot-search__item--date" data-date="2025-12-21"></li>
  <li>
    <div class="date-card"></div>
    <div class="item-dates">9:00 PM</div>
  </li>
</ul>
</body></html>`

func TestParseHijingoSlots(t *testing.T) {
	slots, err := parseHijingoSlots(hijingoFixture, "2025-12-20", "https://www.hijingo.com/book")
	if err != nil {
		t.Fatalf("parseHijingoSlots: %v", err)
	}
	// Only the two sellable items between the target header and the next
	// one survive.
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if slots[0].Time != "6:30 PM" || slots[0].Price != "£25" || slots[0].Status != "Available" {
		t.Errorf("slot[0] = %+v", slots[0])
	}
	if slots[0].Extra["event"] != "Classic Show" {
		t.Errorf("event = %v", slots[0].Extra["event"])
	}
	if slots[1].Time != "8:30 PM" || slots[1].Status != "Low availability" {
		t.Errorf("slot[1] = %+v", slots[1])
	}
	if slots[1].Price != "Price not available" || slots[1].Extra["event"] != "Standard" {
		t.Errorf("slot[1] defaults = %+v", slots[1])
	}
}

const luckyStrikeFixture = `
<html><body>
<button class="TimeSlotSelection_timeSlot__hxKpB">
  <span>7:15 PM</span><span>$45 per lane</span>
</button>
<button class="TimeSlotSelection_timeSlot__hxKpB">
  <span>8:00 PM</span>
</button>
</body></html>`

func TestParseLuckyStrikeSlots(t *testing.T) {
	slots, err := parseLuckyStrikeSlots(luckyStrikeFixture, "Lucky Strike (Chelsea Piers)", "2025-12-20", "https://example.test/book")
	if err != nil {
		t.Fatalf("parseLuckyStrikeSlots: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if slots[0].Time != "7:15 PM" || slots[0].Price != "$45 per lane" {
		t.Errorf("slot[0] = %+v", slots[0])
	}
	if slots[1].Price != "None" {
		t.Errorf("missing price span should read None, got %q", slots[1].Price)
	}
}

const electricShuffleFixture = `
<html><body>
<form class="es_booking__availability__form">
  <div class="es_booking__availability-header es_font-body--semi-bold">London Bridge</div>
  <div class="es_booking__availability__table-cell__wrapper">
    <div class="es_booking__availability__table-cell" name="18:00"></div>
    <div class="es_booking__time_wrapper">
      <input class="es_booking__availability__time-slot" id="a"/>
      <label for="a">
        <span class="es_booking__availability__duration">90 mins</span>
        <span class="es_booking__availability__price-per-person">£14.50</span>
      </label>
      <input class="es_booking__availability__time-slot" id="b" disabled/>
      <label for="b">
        <span class="es_booking__availability__duration">120 mins</span>
      </label>
    </div>
  </div>
</form>
</body></html>`

func TestParseElectricShuffleForms(t *testing.T) {
	slots, err := parseElectricShuffleForms(electricShuffleFixture, "2025-12-20", "https://example.test/book")
	if err != nil {
		t.Fatalf("parseElectricShuffleForms: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(slots))
	}
	s := slots[0]
	if s.Time != "18:00" {
		t.Errorf("time = %q", s.Time)
	}
	if s.Price != "90 min £14.50, unavailable" {
		t.Errorf("details = %q", s.Price)
	}
	if s.Extra["site"] != "London Bridge" {
		t.Errorf("site = %v", s.Extra["site"])
	}
}

const tsquaredFixture = `
<html><body>
<div data-test="searched-day-slots">
  <button data-test="slot-button" aria-label="7:00 PM - Dining Room">7:00 PM</button>
  <button data-test="slot-button" aria-label="7:30 PM - Bar">7:30 PM</button>
</div>
</body></html>`

func TestParseTSquaredSlots(t *testing.T) {
	slots, err := parseTSquaredSlots(tsquaredFixture, "2025-12-20")
	if err != nil {
		t.Fatalf("parseTSquaredSlots: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if slots[0].Time != "7:00 PM" || slots[0].Price != "7:00 PM - Dining Room" {
		t.Errorf("slot[0] = %+v", slots[0])
	}
}

const swingersCalendarFixture = `
<html><body>
<ul>
  <li class="slot-calendar__dates-item" data-available="true" data-date="2025-12-20"><a href="/book/2025-12-20"></a></li>
  <li class="slot-calendar__dates-item" data-available="true" data-date="2025-12-21"><a href="/book/2025-12-21"></a></li>
  <li class="slot-calendar__dates-item" data-available="false" data-date="2025-12-22"><a href="/book/2025-12-22"></a></li>
</ul>
</body></html>`

const easybowlFixture = `
<html><body>
<div class="prodBox prodGroup">
  <div class="prodHeadline">Bowling</div>
</div>
<div class="prodBox">
  <div class="prodHeadline">Open Play</div>
  <table class="tableEventDetails">
    <tr><td></td><td>Lane 1</td><td>7:00 PM</td><td>8:00 PM</td></tr>
    <tr><td></td><td>Lane 2</td><td>8:00 PM</td><td>9:00 PM</td></tr>
  </table>
  <table class="tablePriceBox">
    <tr><td>Per person</td><td></td><td>$30.00</td></tr>
  </table>
</div>
<div class="prodBox">
  <div class="prodHeadline"></div>
</div>
</body></html>`

func TestParseEasybowlProducts(t *testing.T) {
	slots := parseEasybowlProducts(easybowlFixture, "2025-12-20")
	// Group boxes are containers, not products.
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if slots[0].Status != "Open Play" {
		t.Errorf("status = %q", slots[0].Status)
	}
	if slots[0].Time != "Lane 1: 7:00 PM - 8:00 PM | Lane 2: 8:00 PM - 9:00 PM" {
		t.Errorf("time = %q", slots[0].Time)
	}
	if slots[0].Price != "Per person: $30.00" {
		t.Errorf("price = %q", slots[0].Price)
	}
	if slots[1].Status != "Unknown" || slots[1].Time != "None" || slots[1].Price != "None" {
		t.Errorf("slot[1] defaults = %+v", slots[1])
	}
}

func TestSwingersAvailableDates(t *testing.T) {
	all, err := swingersAvailableDates(swingersCalendarFixture, "")
	if err != nil {
		t.Fatalf("swingersAvailableDates: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d dates, want 2 (unavailable excluded)", len(all))
	}

	one, err := swingersAvailableDates(swingersCalendarFixture, "2025-12-21")
	if err != nil {
		t.Fatalf("swingersAvailableDates: %v", err)
	}
	if len(one) != 1 || one[0].date != "2025-12-21" || one[0].href != "/book/2025-12-21" {
		t.Fatalf("filtered dates = %+v", one)
	}
}
