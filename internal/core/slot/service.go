package slot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"slotscout/internal/logger"
	"slotscout/internal/platform/postgres"
)

// Record is one stored availability observation. The identity key is
// (venue_name, date, time, guests); everything else is mutable on
// re-observation.
type Record struct {
	ID              int64          `json:"id"`
	VenueName       string         `json:"venue_name"`
	City            string         `json:"city"`
	Date            string         `json:"date"`
	Time            string         `json:"time"`
	Price           string         `json:"price"`
	Status          string         `json:"status"`
	Guests          int            `json:"guests"`
	BookingURL      string         `json:"booking_url"`
	VenueData       map[string]any `json:"venue_specific_data,omitempty"`
	FirstObservedAt time.Time      `json:"first_observed_at"`
	LastUpdatedAt   time.Time      `json:"last_updated_at"`
}

// Filters is the query vocabulary shared by Query and Purge.
type Filters struct {
	City      string
	VenueName string
	DateFrom  string
	DateTo    string
	Guests    int
	Status    string
	Search    string
}

type Service struct {
	db  *postgres.Service
	log *logger.Logger
}

func NewService(db *postgres.Service) *Service {
	return &Service{db: db, log: logger.New("SlotService")}
}

// NormalizeCity folds the accepted city aliases onto the stored values.
// Unknown inputs pass through unchanged so the filter simply matches
// nothing.
func NormalizeCity(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "nyc", "ny", "new york":
		return "NYC"
	case "london":
		return "London"
	}
	return strings.TrimSpace(raw)
}

// Upsert writes one observation. An existing row keeps its
// first_observed_at and its booking_url when the new one is empty;
// venue_specific_data merges key-wise with new values winning.
func (s *Service) Upsert(ctx context.Context, r Record) error {
	extra, err := json.Marshal(r.VenueData)
	if err != nil {
		return fmt.Errorf("encode venue data: %w", err)
	}
	if r.VenueData == nil {
		extra = []byte("{}")
	}

	_, err = s.db.Pool().Exec(ctx, `
		INSERT INTO availability_slots
			(venue_name, city, date, time, price, status, guests, booking_url, venue_specific_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
		ON CONFLICT ON CONSTRAINT uq_venue_date_time_guests DO UPDATE SET
			price = EXCLUDED.price,
			status = EXCLUDED.status,
			city = EXCLUDED.city,
			booking_url = COALESCE(EXCLUDED.booking_url, availability_slots.booking_url),
			venue_specific_data = availability_slots.venue_specific_data || EXCLUDED.venue_specific_data,
			last_updated_at = now()`,
		r.VenueName, r.City, r.Date, r.Time, r.Price, r.Status, r.Guests, r.BookingURL, extra,
	)
	if err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}
	return nil
}

func buildFilterClause(f Filters) (string, []any) {
	var clauses []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.City != "" {
		clauses = append(clauses, "city = "+arg(NormalizeCity(f.City)))
	}
	if f.VenueName != "" {
		clauses = append(clauses, "venue_name = "+arg(f.VenueName))
	}
	if f.DateFrom != "" {
		clauses = append(clauses, "date >= "+arg(f.DateFrom))
	}
	if f.DateTo != "" {
		clauses = append(clauses, "date <= "+arg(f.DateTo))
	}
	if f.Guests > 0 {
		clauses = append(clauses, "guests = "+arg(f.Guests))
	}
	if f.Status != "" {
		clauses = append(clauses, "status ILIKE "+arg("%"+f.Status+"%"))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		clauses = append(clauses, fmt.Sprintf("(venue_name ILIKE %s OR time ILIKE %s OR price ILIKE %s)", p, p, p))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Query returns matching slots ordered date DESC, time ASC, venue ASC.
func (s *Service) Query(ctx context.Context, f Filters) ([]Record, error) {
	where, args := buildFilterClause(f)
	rows, err := s.db.Pool().Query(ctx, `
		SELECT id, venue_name, city, to_char(date, 'YYYY-MM-DD'), time,
			COALESCE(price, ''), COALESCE(status, ''), guests,
			COALESCE(booking_url, ''), venue_specific_data,
			first_observed_at, last_updated_at
		FROM availability_slots`+where+`
		ORDER BY date DESC, time ASC, venue_name ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var extra []byte
		if err := rows.Scan(&r.ID, &r.VenueName, &r.City, &r.Date, &r.Time,
			&r.Price, &r.Status, &r.Guests, &r.BookingURL, &extra,
			&r.FirstObservedAt, &r.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		// Unparseable blobs degrade to nil rather than failing the read.
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &r.VenueData); err != nil {
				r.VenueData = nil
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Purge deletes matching rows and reports how many went away.
func (s *Service) Purge(ctx context.Context, f Filters) (int64, error) {
	where, args := buildFilterClause(f)
	tag, err := s.db.Pool().Exec(ctx, "DELETE FROM availability_slots"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("purge slots: %w", err)
	}
	n := tag.RowsAffected()
	s.log.LogInfof("purged %d slots", n)
	return n, nil
}

// Count reports the total number of stored slots.
func (s *Service) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.Pool().QueryRow(ctx, "SELECT count(*) FROM availability_slots").Scan(&n); err != nil {
		return 0, fmt.Errorf("count slots: %w", err)
	}
	return n, nil
}
