package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Trade table
		CREATE TABLE trade (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			symbol VARCHAR(20) NOT NULL,
			trade_type VARCHAR(5) NOT NULL,
			entry_date DATE NOT NULL,
			entry_price FLOAT NOT NULL,
			quantity FLOAT NOT NULL,
			current_price FLOAT,
			setup_stop_loss FLOAT,
			current_stop_loss FLOAT,
			target FLOAT,
			target_rpt FLOAT NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			status VARCHAR(7) NOT NULL,
			remaining_quantity FLOAT NOT NULL,
			booked_profit FLOAT NOT NULL DEFAULT 0,
			total_pnl FLOAT NOT NULL DEFAULT 0,
			pending_allotment_backfill BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Exit table
		CREATE TABLE trade_exit (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			trade_id VARCHAR(36) NOT NULL,
			exit_date DATE NOT NULL,
			exit_price FLOAT NOT NULL,
			quantity FLOAT NOT NULL,
			pnl FLOAT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(trade_id) REFERENCES trade(id) ON DELETE CASCADE
		);

		CREATE INDEX idx_trade_exit_trade_id ON trade_exit(trade_id);
		CREATE INDEX idx_trade_symbol ON trade(symbol);

		-- Broker session (single row)
		CREATE TABLE kite_session (
			id INTEGER NOT NULL PRIMARY KEY CHECK (id = 1),
			access_token_enc TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := db.Exec(schema)
	return err
}
