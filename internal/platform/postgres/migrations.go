package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS availability_slots (
	id BIGSERIAL PRIMARY KEY,
	venue_name TEXT NOT NULL,
	city TEXT NOT NULL,
	date DATE NOT NULL,
	time TEXT NOT NULL,
	price TEXT,
	status TEXT,
	guests INT NOT NULL,
	booking_url TEXT,
	venue_specific_data JSONB NOT NULL DEFAULT '{}'::jsonb,
	first_observed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT uq_venue_date_time_guests UNIQUE (venue_name, date, time, guests)
);

CREATE INDEX IF NOT EXISTS idx_slots_venue ON availability_slots(venue_name);
CREATE INDEX IF NOT EXISTS idx_slots_date ON availability_slots(date);
CREATE INDEX IF NOT EXISTS idx_slots_city ON availability_slots(city);
CREATE INDEX IF NOT EXISTS idx_slots_status ON availability_slots(status);
CREATE INDEX IF NOT EXISTS idx_slots_venue_city_date ON availability_slots(venue_name, city, date);

CREATE TABLE IF NOT EXISTS scraping_tasks (
	id BIGSERIAL PRIMARY KEY,
	task_id TEXT UNIQUE NOT NULL,
	venue_key TEXT NOT NULL,
	guests INT NOT NULL,
	target_date TEXT,
	status TEXT NOT NULL DEFAULT 'PENDING',
	progress TEXT NOT NULL DEFAULT '',
	current_venue TEXT,
	total_slots_found INT NOT NULL DEFAULT 0,
	error TEXT,
	duration_seconds DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON scraping_tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_venue_key ON scraping_tasks(venue_key);
CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON scraping_tasks(created_at);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
