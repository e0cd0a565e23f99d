package config

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SetupDatabase initializes the database connection pool
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Every resale transaction holds one pooled connection until commit or rollback
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := CreateTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// CreateTables creates the necessary tables in the database
func CreateTables(db *sqlx.DB) error {
	// Create users table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			user_id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'user',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL,
			last_login TIMESTAMP NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create user_tickets table (owned tickets)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS user_tickets (
			user_ticket_id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			match_title VARCHAR(255) NOT NULL,
			match_date VARCHAR(64) NOT NULL DEFAULT '',
			stadium VARCHAR(255) NOT NULL DEFAULT '',
			category VARCHAR(100) NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			price NUMERIC(10,2) NOT NULL,
			total NUMERIC(10,2) NOT NULL,
			purchase_date TIMESTAMP NOT NULL,
			listed_for_resale BOOLEAN NOT NULL DEFAULT FALSE
		)
	`)
	if err != nil {
		return err
	}

	// Create resale_tickets table (resale listings)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS resale_tickets (
			resale_id SERIAL PRIMARY KEY,
			user_ticket_id INTEGER NOT NULL REFERENCES user_tickets(user_ticket_id) ON DELETE CASCADE,
			seller_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			resale_price NUMERIC(10,2) NOT NULL CHECK (resale_price > 0),
			notes TEXT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'available'
				CHECK (status IN ('available', 'sold', 'cancelled')),
			listed_date TIMESTAMP NOT NULL,
			buyer_id INTEGER NULL REFERENCES users(user_id),
			sold_date TIMESTAMP NULL,
			cancelled_date TIMESTAMP NULL,
			CHECK (status <> 'sold' OR (buyer_id IS NOT NULL AND sold_date IS NOT NULL)),
			CHECK (status <> 'cancelled' OR cancelled_date IS NOT NULL)
		)
	`)
	if err != nil {
		return err
	}

	// At most one available listing per owned ticket
	_, err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_resale_tickets_one_available
		ON resale_tickets(user_ticket_id) WHERE status = 'available'
	`)
	if err != nil {
		return err
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_user_tickets_user_id ON user_tickets(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_resale_tickets_status_listed ON resale_tickets(status, listed_date DESC)",
	}

	for _, idx := range indexes {
		_, err = db.Exec(idx)
		if err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
			// Don't return error here, indexes are not critical
		}
	}

	return nil
}
