package service

import (
	"database/sql"

	"github.com/tradelog/trading-journal-backend/internal/database"
	"github.com/tradelog/trading-journal-backend/internal/version"
)

// SystemService answers the health and version endpoints.
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService over the journal database.
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth reports whether the database connection is alive.
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the build version string.
func (s *SystemService) CheckVersion() string {
	return version.Version
}
