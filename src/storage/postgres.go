package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"digit-observer/src/logger"
	"digit-observer/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	// Schema name derives from the executable name so several deployments can
	// share one database
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.recreateTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) recreateTables() error {
	query := fmt.Sprintf(`DROP TABLE IF EXISTS "%s"."ticks";`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to drop ticks: %w", err)
	}

	// Create ticks
	query = fmt.Sprintf(`
		CREATE TABLE "%s"."ticks" (
			symbol TEXT,
			epoch BIGINT,
			price DOUBLE PRECISION,
			digit INTEGER,
			pip_size INTEGER,
			PRIMARY KEY (symbol, epoch)
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create ticks: %w", err)
	}

	// Dynamic tables for each window
	for _, w := range d.Config.WindowsAgg {
		statsTable := fmt.Sprintf(`"%s"."digit_stats_%d"`, d.Schema, w)
		if _, err := d.DB.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, statsTable)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", statsTable, err)
		}

		query = fmt.Sprintf(`
			CREATE TABLE %s (
				symbol TEXT,
				window_name TEXT,
				start_epoch BIGINT,
				end_epoch BIGINT,
				total_digits INTEGER,
				d0 INTEGER, d1 INTEGER, d2 INTEGER, d3 INTEGER, d4 INTEGER,
				d5 INTEGER, d6 INTEGER, d7 INTEGER, d8 INTEGER, d9 INTEGER,
				pattern_match_ratio DOUBLE PRECISION,
				pattern_samples INTEGER,
				correlation_score DOUBLE PRECISION,
				mean_digit DOUBLE PRECISION,
				std_digit DOUBLE PRECISION,
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

func (d *PostgresDB) SaveTicksBulk(ticks []models.MTick) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// History batches overlap between refreshes; duplicate epochs are expected
	query := fmt.Sprintf(`
		INSERT INTO "%s"."ticks" (symbol, epoch, price, digit, pip_size)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol, epoch) DO NOTHING
	`, d.Schema)
	stmt, err := tx.Prepare(query)
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

func (d *PostgresDB) SaveDigitStats(stats []models.MDigitStats) error {
	if len(stats) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Group stats by window name
	statsByWindow := make(map[string][]models.MDigitStats)
	for _, stat := range stats {
		statsByWindow[stat.WindowName] = append(statsByWindow[stat.WindowName], stat)
	}

	for w, list := range statsByWindow {
		tableName := fmt.Sprintf(`"%s"."digit_stats_%s"`, d.Schema, w)

		query := fmt.Sprintf(`
			INSERT INTO %s (symbol, window_name, start_epoch, end_epoch, total_digits,
				d0, d1, d2, d3, d4, d5, d6, d7, d8, d9,
				pattern_match_ratio, pattern_samples, correlation_score, mean_digit, std_digit, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
			ON CONFLICT (symbol, window_name) DO UPDATE SET
				start_epoch = EXCLUDED.start_epoch,
				end_epoch = EXCLUDED.end_epoch,
				total_digits = EXCLUDED.total_digits,
				d0 = EXCLUDED.d0, d1 = EXCLUDED.d1, d2 = EXCLUDED.d2, d3 = EXCLUDED.d3, d4 = EXCLUDED.d4,
				d5 = EXCLUDED.d5, d6 = EXCLUDED.d6, d7 = EXCLUDED.d7, d8 = EXCLUDED.d8, d9 = EXCLUDED.d9,
				pattern_match_ratio = EXCLUDED.pattern_match_ratio,
				pattern_samples = EXCLUDED.pattern_samples,
				correlation_score = EXCLUDED.correlation_score,
				mean_digit = EXCLUDED.mean_digit,
				std_digit = EXCLUDED.std_digit,
				updated_at = EXCLUDED.updated_at
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

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.Feed.DataRetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Info("Cleaning up data older than %d days (epoch < %d)...", retentionDays, cutoff)

	// Epoch 0 marks ticks whose reply carried no timestamps; never age those out
	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM "%s"."ticks" WHERE epoch < $1 AND epoch > 0`, d.Schema), cutoff); err != nil {
		d.Logger.Error("Cleanup ticks error: %v", err)
	}

	for _, w := range d.Config.WindowsAgg {
		tableName := fmt.Sprintf(`"%s"."digit_stats_%d"`, d.Schema, w)
		if _, err := d.DB.Exec(fmt.Sprintf("DELETE FROM %s WHERE end_epoch < $1", tableName), cutoff); err != nil {
			d.Logger.Error("Cleanup %s error: %v", tableName, err)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
