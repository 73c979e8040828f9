package storage

import (
	"database/sql"
	"fmt"
	"time"

	"digit-observer/src/logger"
	"digit-observer/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.recreateTables()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) recreateTables() error {
	// Drop ticks
	if _, err := d.DB.Exec("DROP TABLE IF EXISTS ticks"); err != nil {
		return fmt.Errorf("failed to drop ticks: %w", err)
	}

	// Create ticks
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	query := `
		CREATE TABLE ticks (
			symbol TEXT,
			epoch INTEGER,
			price REAL,
			digit INTEGER,
			pip_size INTEGER,
			PRIMARY KEY (symbol, epoch)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create ticks: %w", err)
	}

	for _, w := range d.Config.WindowsAgg {
		statsTable := fmt.Sprintf("digit_stats_%d", w)
		if _, err := d.DB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", statsTable)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", statsTable, err)
		}

		query = fmt.Sprintf(`
			CREATE TABLE %s (
				symbol TEXT,
				window_name TEXT,
				start_epoch INTEGER,
				end_epoch INTEGER,
				total_digits INTEGER,
				d0 INTEGER, d1 INTEGER, d2 INTEGER, d3 INTEGER, d4 INTEGER,
				d5 INTEGER, d6 INTEGER, d7 INTEGER, d8 INTEGER, d9 INTEGER,
				pattern_match_ratio REAL,
				pattern_samples INTEGER,
				correlation_score REAL,
				mean_digit REAL,
				std_digit REAL,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (symbol, window_name)
			);
		`, statsTable)
		if _, err := d.DB.Exec(query); err != nil {
			return fmt.Errorf("failed to create %s: %w", statsTable, err)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveTicksBulk(ticks []models.MTick) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// History batches overlap between refreshes; duplicate epochs are expected
	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO ticks (symbol, epoch, price, digit, pip_size)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range ticks {
		_, err := stmt.Exec(t.Symbol, t.Epoch, t.Price, t.Digit, t.PipSize)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveDigitStats(stats []models.MDigitStats) error {
	if len(stats) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Group by window
	byWindow := make(map[string][]models.MDigitStats)
	for _, s := range stats {
		byWindow[s.WindowName] = append(byWindow[s.WindowName], s)
	}

	for w, list := range byWindow {
		tableName := fmt.Sprintf("digit_stats_%s", w)

		query := fmt.Sprintf(`
			INSERT INTO %s (symbol, window_name, start_epoch, end_epoch, total_digits,
				d0, d1, d2, d3, d4, d5, d6, d7, d8, d9,
				pattern_match_ratio, pattern_samples, correlation_score, mean_digit, std_digit, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (symbol, window_name) DO UPDATE SET
				start_epoch = excluded.start_epoch,
				end_epoch = excluded.end_epoch,
				total_digits = excluded.total_digits,
				d0 = excluded.d0, d1 = excluded.d1, d2 = excluded.d2, d3 = excluded.d3, d4 = excluded.d4,
				d5 = excluded.d5, d6 = excluded.d6, d7 = excluded.d7, d8 = excluded.d8, d9 = excluded.d9,
				pattern_match_ratio = excluded.pattern_match_ratio,
				pattern_samples = excluded.pattern_samples,
				correlation_score = excluded.correlation_score,
				mean_digit = excluded.mean_digit,
				std_digit = excluded.std_digit,
				updated_at = excluded.updated_at
		`, tableName)

		stmt, err := tx.Prepare(query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, s := range list {
			f := s.Frequency
			_, err = stmt.Exec(s.Symbol, s.WindowName, s.StartEpoch, s.EndEpoch, s.TotalDigits,
				f[0], f[1], f[2], f[3], f[4], f[5], f[6], f[7], f[8], f[9],
				s.PatternMatchRatio, s.PatternSamples, s.CorrelationScore, s.MeanDigit, s.StdDigit, time.Now().UTC())
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.Feed.DataRetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Info("Cleaning up data older than %d days (epoch < %d)...", retentionDays, cutoff)

	// Epoch 0 marks ticks whose reply carried no timestamps; never age those out
	if _, err := d.DB.Exec("DELETE FROM ticks WHERE epoch < ? AND epoch > 0", cutoff); err != nil {
		d.Logger.Error("Cleanup ticks error: %v", err)
	}

	for _, w := range d.Config.WindowsAgg {
		tableName := fmt.Sprintf("digit_stats_%d", w)
		if _, err := d.DB.Exec(fmt.Sprintf("DELETE FROM %s WHERE end_epoch < ?", tableName), cutoff); err != nil {
			d.Logger.Error("Cleanup %s error: %v", tableName, err)
		}
	}

	d.Logger.Info("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
