package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/critmon/pulsecheck/internal/models"
)

const monitorColumns = `id, device_id, timeout_seconds, alert_email, created_at, last_heartbeat, expires_at, is_active, is_paused`

// PostgresStore implements MonitorStore on top of a Postgres database.
type PostgresStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewPostgresStore connects to the database at connStr and verifies the
// connection with a ping.
func NewPostgresStore(connStr string, logger zerolog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{db: db, logger: logger}, nil
}

// ApplySchema executes the given DDL, typically the contents of schema.sql.
func (s *PostgresStore) ApplySchema(schema string) error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.logger.Info().Msg("Database schema verified")
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Create(ctx context.Context, m *models.Monitor) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monitors (`+monitorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.DeviceID, m.Timeout, m.AlertEmail, m.CreatedAt, m.LastHeartbeat, m.ExpiresAt, m.IsActive, m.IsPaused)
	if err != nil {
		return fmt.Errorf("failed to insert monitor: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*models.Monitor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+monitorColumns+` FROM monitors WHERE id = $1`, id)
	m, err := scanMonitor(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch monitor %s: %w", id, err)
	}
	return m, nil
}

func (s *PostgresStore) FindByDeviceID(ctx context.Context, deviceID string) ([]models.Monitor, error) {
	return s.queryMonitors(ctx, `SELECT `+monitorColumns+` FROM monitors WHERE device_id = $1 ORDER BY created_at`, deviceID)
}

func (s *PostgresStore) FindActive(ctx context.Context) ([]models.Monitor, error) {
	return s.queryMonitors(ctx, `SELECT `+monitorColumns+` FROM monitors WHERE is_active = TRUE ORDER BY created_at`)
}

func (s *PostgresStore) FindExpired(ctx context.Context, now time.Time) ([]models.Monitor, error) {
	return s.queryMonitors(ctx, `
		SELECT `+monitorColumns+` FROM monitors
		WHERE is_active = TRUE AND is_paused = FALSE AND expires_at IS NOT NULL AND expires_at < $1
		ORDER BY expires_at`, now)
}

func (s *PostgresStore) Update(ctx context.Context, m *models.Monitor) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE monitors
		SET last_heartbeat = $1, expires_at = $2, is_active = $3, is_paused = $4
		WHERE id = $5`,
		m.LastHeartbeat, m.ExpiresAt, m.IsActive, m.IsPaused, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update monitor %s: %w", m.ID, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM monitors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete monitor %s: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Monitor, error) {
	return s.queryMonitors(ctx, `SELECT `+monitorColumns+` FROM monitors ORDER BY created_at`)
}

func (s *PostgresStore) queryMonitors(ctx context.Context, query string, args ...any) ([]models.Monitor, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monitors: %w", err)
	}
	defer rows.Close()

	monitors := []models.Monitor{}
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan monitor row: %w", err)
		}
		monitors = append(monitors, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read monitor rows: %w", err)
	}
	return monitors, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMonitor(row rowScanner) (*models.Monitor, error) {
	var m models.Monitor
	var expiresAt sql.NullTime
	err := row.Scan(&m.ID, &m.DeviceID, &m.Timeout, &m.AlertEmail,
		&m.CreatedAt, &m.LastHeartbeat, &expiresAt, &m.IsActive, &m.IsPaused)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		m.ExpiresAt = expiresAt.Time
	}
	return &m, nil
}
