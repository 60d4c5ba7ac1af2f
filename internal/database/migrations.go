package database

import (
	"fmt"
)

// Migration is a named schema change applied exactly once, in order.
type Migration struct {
	Name string
	SQL  string
}

// Migrations is the ordered list of schema changes. Append only; never
// edit an entry that has shipped.
var Migrations = []Migration{
	{
		Name: "001_create_users",
		SQL: `
			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY,
				username VARCHAR(150) NOT NULL UNIQUE,
				email VARCHAR(254) NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
	{
		Name: "002_create_user_profiles",
		SQL: `
			CREATE TABLE IF NOT EXISTS user_profiles (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
				phone_number VARCHAR(20) NOT NULL DEFAULT '',
				is_verified BOOLEAN NOT NULL DEFAULT FALSE,
				otp VARCHAR(6) NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
	{
		Name: "003_create_areas",
		SQL: `
			CREATE TABLE IF NOT EXISTS areas (
				id UUID PRIMARY KEY,
				name VARCHAR(100) NOT NULL UNIQUE,
				safety_score INTEGER NOT NULL DEFAULT 5,
				description TEXT NOT NULL DEFAULT ''
			);

			CREATE TABLE IF NOT EXISTS rent_history (
				id UUID PRIMARY KEY,
				area_id UUID NOT NULL REFERENCES areas(id) ON DELETE CASCADE,
				year INTEGER NOT NULL,
				average_rent INTEGER NOT NULL,
				UNIQUE (area_id, year)
			);
		`,
	},
	{
		Name: "004_create_listings",
		SQL: `
			CREATE TABLE IF NOT EXISTS listings (
				id UUID PRIMARY KEY,
				title VARCHAR(200) NOT NULL,
				description TEXT NOT NULL,
				area_id UUID REFERENCES areas(id) ON DELETE SET NULL,
				address VARCHAR(300) NOT NULL,
				latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
				longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
				price INTEGER NOT NULL,
				area_size INTEGER NOT NULL,
				rooms INTEGER NOT NULL,
				available_from DATE NOT NULL,
				owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				is_verified BOOLEAN NOT NULL DEFAULT FALSE,
				has_virtual_tour BOOLEAN NOT NULL DEFAULT FALSE,
				short_term BOOLEAN NOT NULL DEFAULT FALSE,
				furnished BOOLEAN NOT NULL DEFAULT FALSE,
				family_friendly BOOLEAN NOT NULL DEFAULT FALSE,
				female_only BOOLEAN NOT NULL DEFAULT FALSE,
				single_allowed BOOLEAN NOT NULL DEFAULT FALSE,
				virtual_tour_video VARCHAR(500),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_listings_owner ON listings(owner_id);
			CREATE INDEX IF NOT EXISTS idx_listings_area ON listings(area_id);
		`,
	},
	{
		Name: "005_create_listing_images",
		SQL: `
			CREATE TABLE IF NOT EXISTS listing_images (
				id UUID PRIMARY KEY,
				listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
				image_path VARCHAR(500) NOT NULL,
				is_360 BOOLEAN NOT NULL DEFAULT FALSE,
				is_cover BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_listing_images_listing
				ON listing_images(listing_id);

			-- at most one cover per listing, enforced at the schema level
			CREATE UNIQUE INDEX IF NOT EXISTS uq_listing_images_cover
				ON listing_images(listing_id) WHERE is_cover;
		`,
	},
	{
		Name: "006_create_appointments",
		SQL: `
			CREATE TABLE IF NOT EXISTS appointments (
				id UUID PRIMARY KEY,
				listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				date DATE NOT NULL,
				time VARCHAR(5) NOT NULL,
				status VARCHAR(20) NOT NULL DEFAULT 'pending',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_appointments_user ON appointments(user_id);
			CREATE INDEX IF NOT EXISTS idx_appointments_listing ON appointments(listing_id);
		`,
	},
	{
		Name: "007_create_rent_agreements",
		SQL: `
			CREATE TABLE IF NOT EXISTS rent_agreements (
				id UUID PRIMARY KEY,
				listing_id UUID NOT NULL UNIQUE REFERENCES listings(id) ON DELETE CASCADE,
				tenant_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				rent_amount DOUBLE PRECISION NOT NULL,
				duration_months INTEGER NOT NULL,
				tenant_signature VARCHAR(150) NOT NULL,
				owner_signature VARCHAR(150),
				signed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
	{
		Name: "008_create_rent_payments",
		SQL: `
			CREATE TABLE IF NOT EXISTS rent_payments (
				id UUID PRIMARY KEY,
				listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
				tenant_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				amount DOUBLE PRECISION NOT NULL,
				month DATE NOT NULL,
				status VARCHAR(20) NOT NULL DEFAULT 'paid',
				payment_method VARCHAR(50),
				transaction_id VARCHAR(100),
				paid_on TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_rent_payments_tenant ON rent_payments(tenant_id);
		`,
	},
	{
		Name: "009_create_reviews",
		SQL: `
			CREATE TABLE IF NOT EXISTS reviews (
				id UUID PRIMARY KEY,
				listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
				comment TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_reviews_listing ON reviews(listing_id);
		`,
	},
	{
		Name: "010_create_login_events",
		SQL: `
			CREATE TABLE IF NOT EXISTS login_events (
				id UUID PRIMARY KEY,
				user_id UUID REFERENCES users(id) ON DELETE SET NULL,
				username VARCHAR(150) NOT NULL,
				success BOOLEAN NOT NULL,
				ip_address VARCHAR(45) NOT NULL DEFAULT '',
				device VARCHAR(200) NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
}

// Migrate applies all pending migrations in order, recording each applied
// name in schema_migrations
func Migrate(db DB) error {
	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range Migrations {
		if applied[m.Name] {
			continue
		}
		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.Name, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations (name) VALUES ($1)`, m.Name); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.Name, err)
		}
	}

	return nil
}

// Pending returns the names of migrations that have not been applied yet
func Pending(db DB) ([]string, error) {
	applied, err := appliedMigrations(db)
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, m := range Migrations {
		if !applied[m.Name] {
			pending = append(pending, m.Name)
		}
	}
	return pending, nil
}

func appliedMigrations(db DB) (map[string]bool, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name VARCHAR(100) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var names []string
	err = db.Select(&names, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}

	applied := make(map[string]bool, len(names))
	for _, n := range names {
		applied[n] = true
	}
	return applied, nil
}
