package alarm

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	FindByUser(ctx context.Context, userId uuid.UUID) ([]Alarm, error)
	Store(ctx context.Context, alarm Alarm) (Alarm, error)
	Update(ctx context.Context, alarm Alarm) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r RepositoryImpl) FindByUser(ctx context.Context, userId uuid.UUID) ([]Alarm, error) {
	query := `SELECT id, user_id, name, trigger_time, enabled FROM alarm WHERE user_id = $1 ORDER BY trigger_time`

	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query alarms for user %s: %w", userId, err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	alarms := make([]Alarm, 0)
	for rows.Next() {
		var a Alarm
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.TriggerTime, &a.Enabled); err != nil {
			err := fmt.Errorf("could not scan alarm row: %w", err)
			log.Error(err)
			return nil, err
		}
		alarms = append(alarms, a)
	}
	return alarms, rows.Err()
}

func (r RepositoryImpl) Store(ctx context.Context, alarm Alarm) (Alarm, error) {
	query := `INSERT INTO alarm (id, user_id, name, trigger_time, enabled) VALUES ($1, $2, $3, $4, $5)`

	if alarm.ID == uuid.Nil {
		alarm.ID = uuid.New()
	}

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return Alarm{}, err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, alarm.ID, alarm.UserID, alarm.Name, alarm.TriggerTime, alarm.Enabled)
	if err != nil {
		err := fmt.Errorf("could not store alarm: %w", err)
		log.Error(err)
		return Alarm{}, err
	}
	return alarm, nil
}

func (r RepositoryImpl) Update(ctx context.Context, alarm Alarm) error {
	query := `UPDATE alarm SET name = $1, trigger_time = $2, enabled = $3 WHERE id = $4 AND user_id = $5`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, alarm.Name, alarm.TriggerTime, alarm.Enabled, alarm.ID, alarm.UserID)
	if err != nil {
		err := fmt.Errorf("could not update alarm %s: %w", alarm.ID, err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("alarm %s not found", alarm.ID)
	}
	return nil
}
