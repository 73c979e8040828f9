package interfaces

import "digit-observer/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveTicksBulk inserts a batch of raw ticks.
	SaveTicksBulk(ticks []models.MTick) error

	// -----------------------------------------------------------------------------

	// SaveDigitStats persists calculated per-window digit statistics.
	SaveDigitStats(stats []models.MDigitStats) error

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
