package venue

import (
	"slotscout/internal/venue/adapters"
)

// City is the closed set of markets the scraper covers.
type City string

const (
	CityNYC    City = "NYC"
	CityLondon City = "London"
)

// Kind distinguishes adapters that drive a headless browser from those
// that hit a venue's own JSON endpoint.
type Kind string

const (
	KindBrowser Kind = "browser"
	KindAPI     Kind = "api"
)

// OptionSpec enumerates the accepted values for one per-venue option.
// Normalize, when set, is applied to both the candidate and the allowed
// values before comparison.
type OptionSpec struct {
	Name      string
	Values    []string
	Normalize func(string) string
}

// Descriptor is the static metadata for one venue key. The table is
// process-init constant; nothing mutates it after NewRegistry.
type Descriptor struct {
	Key               string
	DisplayName       string
	City              City
	Kind              Kind
	RequiresDate      bool
	DefaultBookingURL string
	Options           []OptionSpec
	Scrape            adapters.Func
}

func lawnClubOptions() []OptionSpec {
	return []OptionSpec{
		{Name: "selected_time", Values: adapters.LawnClubTimeGrid(), Normalize: adapters.NormalizeLawnClubTime},
		{Name: "selected_duration", Values: adapters.LawnClubDurations, Normalize: adapters.NormalizeLawnClubDuration},
	}
}

func descriptors() []Descriptor {
	return []Descriptor{
		// NYC
		{
			Key: "swingers_nyc", DisplayName: "Swingers (NYC)", City: CityNYC, Kind: KindBrowser,
			DefaultBookingURL: "https://www.swingers.club/us/locations/nyc/book-now",
			Scrape:            adapters.Swingers("nyc"),
		},
		{
			Key: "electric_shuffle_nyc", DisplayName: "Electric Shuffle (NYC)", City: CityNYC, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.sevenrooms.com/explore/electricshufflenyc/reservations/create/search",
			Scrape:            adapters.SevenRooms("electricshufflenyc", "Electric Shuffle (NYC)"),
		},
		{
			Key: "lawn_club_nyc_indoor_gaming", DisplayName: "Lawn Club NYC (indoor_gaming)", City: CityNYC, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.sevenrooms.com/landing/lawnclubnyc",
			Options:           lawnClubOptions(),
			Scrape:            adapters.LawnClub("indoor_gaming"),
		},
		{
			Key: "lawn_club_nyc_curling_lawns", DisplayName: "Lawn Club NYC (curling_lawns)", City: CityNYC, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.sevenrooms.com/landing/lawnclubnyc",
			Options:           lawnClubOptions(),
			Scrape:            adapters.LawnClub("curling_lawns"),
		},
		{
			Key: "lawn_club_nyc_croquet_lawns", DisplayName: "Lawn Club NYC (croquet_lawns)", City: CityNYC, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.sevenrooms.com/landing/lawnclubnyc",
			Options:           lawnClubOptions(),
			Scrape:            adapters.LawnClub("croquet_lawns"),
		},
		{
			Key: "spin_nyc", DisplayName: "SPIN (NYC - Flatiron)", City: CityNYC, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.sevenrooms.com/reservations/spinyc",
			Options: []OptionSpec{
				{Name: "selected_time", Values: adapters.LawnClubTimeGrid(), Normalize: adapters.NormalizeLawnClubTime},
			},
			Scrape: adapters.Spin("flatiron"),
		},
		{
			Key: "spin_nyc_midtown", DisplayName: "SPIN (NYC - Midtown)", City: CityNYC, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.sevenrooms.com/reservations/spinmidtown",
			Options: []OptionSpec{
				{Name: "selected_time", Values: adapters.LawnClubTimeGrid(), Normalize: adapters.NormalizeLawnClubTime},
			},
			Scrape: adapters.Spin("midtown"),
		},
		{
			Key: "five_iron_golf_nyc_fidi", DisplayName: "Five Iron Golf (Financial District)", City: CityNYC, Kind: KindAPI,
			RequiresDate:      true,
			DefaultBookingURL: "https://booking.fiveirongolf.com/",
			Scrape:            adapters.FiveIronGolf("fidi"),
		},
		{
			Key: "five_iron_golf_nyc_flatiron", DisplayName: "Five Iron Golf (Flatiron)", City: CityNYC, Kind: KindAPI,
			RequiresDate:      true,
			DefaultBookingURL: "https://booking.fiveirongolf.com/",
			Scrape:            adapters.FiveIronGolf("flatiron"),
		},
		{
			Key: "five_iron_golf_nyc_grand_central", DisplayName: "Five Iron Golf (Midtown East)", City: CityNYC, Kind: KindAPI,
			RequiresDate:      true,
			DefaultBookingURL: "https://booking.fiveirongolf.com/",
			Scrape:            adapters.FiveIronGolf("grand_central"),
		},
		{
			Key: "five_iron_golf_nyc_herald_square", DisplayName: "Five Iron Golf (Herald Square)", City: CityNYC, Kind: KindAPI,
			RequiresDate:      true,
			DefaultBookingURL: "https://booking.fiveirongolf.com/",
			Scrape:            adapters.FiveIronGolf("herald_square"),
		},
		{
			Key: "five_iron_golf_nyc_long_island_city", DisplayName: "Five Iron Golf (Long Island City)", City: CityNYC, Kind: KindAPI,
			RequiresDate:      true,
			DefaultBookingURL: "https://booking.fiveirongolf.com/",
			Scrape:            adapters.FiveIronGolf("long_island_city"),
		},
		{
			Key: "five_iron_golf_nyc_upper_east_side", DisplayName: "Five Iron Golf (Upper East Side)", City: CityNYC, Kind: KindAPI,
			RequiresDate:      true,
			DefaultBookingURL: "https://booking.fiveirongolf.com/",
			Scrape:            adapters.FiveIronGolf("upper_east_side"),
		},
		{
			Key: "five_iron_golf_nyc_rockefeller_center", DisplayName: "Five Iron Golf (Rockefeller Center)", City: CityNYC, Kind: KindAPI,
			RequiresDate:      true,
			DefaultBookingURL: "https://booking.fiveirongolf.com/",
			Scrape:            adapters.FiveIronGolf("rockefeller_center"),
		},
		{
			Key: "lucky_strike_nyc", DisplayName: "Lucky Strike (Chelsea Piers)", City: CityNYC, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.luckystrikeent.com/location/lucky-strike-chelsea-piers/booking/lane-reservation",
			Scrape:            adapters.LuckyStrike("chelsea_piers"),
		},
		{
			Key: "lucky_strike_nyc_times_square", DisplayName: "Lucky Strike (Times Square)", City: CityNYC, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.luckystrikeent.com/location/lucky-strike-times-square/booking/lane-reservation",
			Scrape:            adapters.LuckyStrike("times_square"),
		},
		{
			Key: "easybowl_nyc", DisplayName: "Frames Bowling Lounge (Midtown)", City: CityNYC, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.easybowl.com/bc/LET/booking",
			Scrape:            adapters.Easybowl(),
		},
		{
			Key: "tsquaredsocial_nyc", DisplayName: "T-Squared Social", City: CityNYC, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.opentable.com/booking/restref/availability?lang=en-US&restRef=1331374&otSource=Restaurant%20website",
			Scrape:            adapters.TSquaredSocial(),
		},
		{
			Key: "daysmart_chelsea", DisplayName: "Chelsea Piers Golf", City: CityNYC, Kind: KindAPI,
			RequiresDate:      true,
			DefaultBookingURL: "https://apps.daysmartrecreation.com/dash/x/#/online/chelsea/",
			Scrape:            adapters.DaySmartChelsea(),
		},
		{
			Key: "puttery_nyc", DisplayName: "Puttery (NYC)", City: CityNYC, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.exploretock.com/puttery-new-york/",
			Scrape:            adapters.Puttery(),
		},
		{
			Key: "kick_axe_brooklyn", DisplayName: "Kick Axe (Brooklyn)", City: CityNYC, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.sevenrooms.com/explore/kickaxebrooklyn/reservations/create/search",
			Scrape:            adapters.SevenRooms("kickaxebrooklyn", "Kick Axe (Brooklyn)"),
		},

		// London
		{
			Key: "swingers_london", DisplayName: "Swingers (London)", City: CityLondon, Kind: KindBrowser,
			DefaultBookingURL: "https://www.swingers.club/uk/book-now",
			Scrape:            adapters.Swingers("london"),
		},
		{
			Key: "electric_shuffle_london", DisplayName: "Electric Shuffle (London)", City: CityLondon, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://electricshuffle.com/uk/london/book/shuffleboard",
			Scrape:            adapters.ElectricShuffleLondon(),
		},
		{
			Key: "fair_game_canary_wharf", DisplayName: "Fair Game (Canary Wharf)", City: CityLondon, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.sevenrooms.com/explore/fairgame/reservations/create/search",
			Scrape:            adapters.SevenRooms("fairgame", "Fair Game (Canary Wharf)"),
		},
		{
			Key: "fair_game_city", DisplayName: "Fair Game (City)", City: CityLondon, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.sevenrooms.com/explore/fairgamecity/reservations/create/search",
			Scrape:            adapters.SevenRooms("fairgamecity", "Fair Game (City)"),
		},
		{
			Key: "clays_bar", DisplayName: "Clays Bar", City: CityLondon, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://clays.bar/",
			Options: []OptionSpec{
				{Name: "location", Values: []string{"Canary Wharf", "The City", "Birmingham", "Soho"}},
			},
			Scrape: adapters.ClaysBar(),
		},
		{
			Key: "puttshack", DisplayName: "Puttshack", City: CityLondon, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.puttshack.com/book-golf",
			Options: []OptionSpec{
				{Name: "location", Values: []string{"Bank", "Lakeside", "White City", "Watford"}},
			},
			Scrape: adapters.Puttshack(),
		},
		{
			Key: "flight_club_darts", DisplayName: "Flight Club Darts", City: CityLondon, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://flightclubdarts.com/book",
			Scrape:            adapters.FlightClubDarts(),
		},
		{
			Key: "f1_arcade", DisplayName: "F1 Arcade", City: CityLondon, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://f1arcade.com/uk/london",
			Options: []OptionSpec{
				{Name: "experience", Values: []string{"Team Racing", "Christmas Racing", "Head to Head"}},
			},
			Scrape: adapters.F1Arcade(),
		},
		{
			Key: "topgolf_chigwell", DisplayName: "Topgolf Chigwell", City: CityLondon, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.sevenrooms.com/explore/topgolfchigwell/reservations/create/search",
			Scrape:            adapters.SevenRooms("topgolfchigwell", "Topgolf Chigwell"),
		},
		{
			Key: "hijingo", DisplayName: "Hijingo", City: CityLondon, Kind: KindBrowser,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.hijingo.com/book",
			Scrape:            adapters.Hijingo(),
		},
		{
			Key: "pingpong", DisplayName: "Bounce", City: CityLondon, Kind: KindAPI,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.bouncepingpong.com/",
			Scrape:            adapters.Bounce(),
		},
		{
			Key: "allstarlanes_stratford", DisplayName: "All Star Lanes (Stratford)", City: CityLondon, Kind: KindAPI,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.allstarlanes.co.uk/book",
			Scrape:            adapters.AllStarLanes("stratford"),
		},
		{
			Key: "allstarlanes_holborn", DisplayName: "All Star Lanes (Holborn)", City: CityLondon, Kind: KindAPI,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.allstarlanes.co.uk/book",
			Scrape:            adapters.AllStarLanes("holborn"),
		},
		{
			Key: "allstarlanes_white_city", DisplayName: "All Star Lanes (White City)", City: CityLondon, Kind: KindAPI,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.allstarlanes.co.uk/book",
			Scrape:            adapters.AllStarLanes("white_city"),
		},
		{
			Key: "allstarlanes_brick_lane", DisplayName: "All Star Lanes (Brick Lane)", City: CityLondon, Kind: KindAPI,
			RequiresDate:      true,
			DefaultBookingURL: "https://www.allstarlanes.co.uk/book",
			Scrape:            adapters.AllStarLanes("brick_lane"),
		},
	}
}
