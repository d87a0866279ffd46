package connection

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// FindDue returns enabled connections whose next sync is unset or in
	// the past.
	FindDue(ctx context.Context, now time.Time) ([]Connection, error)
	Store(ctx context.Context, conn Connection) (Connection, error)
	// RecordSync updates the sync bookkeeping after a completed sync.
	RecordSync(ctx context.Context, id uuid.UUID, syncedAt time.Time, nextSyncAt *time.Time) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r RepositoryImpl) FindDue(ctx context.Context, now time.Time) ([]Connection, error) {
	query := `SELECT id, user_id, provider, access_token, enabled, last_synced_at, next_sync_at
			FROM calendar_connection
			WHERE enabled = TRUE AND (next_sync_at IS NULL OR next_sync_at <= $1)
			ORDER BY next_sync_at NULLS FIRST`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		err := fmt.Errorf("could not query due connections: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	connections := make([]Connection, 0)
	for rows.Next() {
		var c Connection
		var lastSyncedAt, nextSyncAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.UserID, &c.Provider, &c.AccessToken, &c.Enabled, &lastSyncedAt, &nextSyncAt); err != nil {
			err := fmt.Errorf("could not scan connection row: %w", err)
			log.Error(err)
			return nil, err
		}
		if lastSyncedAt.Valid {
			c.LastSyncedAt = &lastSyncedAt.Time
		}
		if nextSyncAt.Valid {
			c.NextSyncAt = &nextSyncAt.Time
		}
		connections = append(connections, c)
	}
	return connections, rows.Err()
}

func (r RepositoryImpl) Store(ctx context.Context, conn Connection) (Connection, error) {
	query := `INSERT INTO calendar_connection (id, user_id, provider, access_token, enabled) VALUES ($1, $2, $3, $4, $5)`

	if conn.ID == uuid.Nil {
		conn.ID = uuid.New()
	}

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return Connection{}, err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, conn.ID, conn.UserID, conn.Provider, conn.AccessToken, conn.Enabled)
	if err != nil {
		err := fmt.Errorf("could not store connection: %w", err)
		log.Error(err)
		return Connection{}, err
	}
	return conn, nil
}

func (r RepositoryImpl) RecordSync(ctx context.Context, id uuid.UUID, syncedAt time.Time, nextSyncAt *time.Time) error {
	query := `UPDATE calendar_connection SET last_synced_at = $1, next_sync_at = $2 WHERE id = $3`

	var nextSyncParam interface{}
	if nextSyncAt != nil {
		nextSyncParam = *nextSyncAt
	}

	_, err := r.db.ExecContext(ctx, query, syncedAt, nextSyncParam, id)
	if err != nil {
		err := fmt.Errorf("could not record sync for connection %s: %w", id, err)
		log.Error(err)
		return err
	}
	return nil
}
