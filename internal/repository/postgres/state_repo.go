package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/hostwatch/internal/domain/watchdog"
)

type StateRepoImpl struct {
	db *DB
}

func NewStateRepo(db *DB) *StateRepoImpl { return &StateRepoImpl{db: db} }

const (
	qStateGet = `
SELECT consecutive_failures, last_alert_time, last_check_time, last_status
FROM watchdog_state
WHERE target = $1;
`

	qStateUpsert = `
INSERT INTO watchdog_state (target, consecutive_failures, last_alert_time, last_check_time, last_status, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (target) DO UPDATE SET
    consecutive_failures = EXCLUDED.consecutive_failures,
    last_alert_time      = EXCLUDED.last_alert_time,
    last_check_time      = EXCLUDED.last_check_time,
    last_status          = EXCLUDED.last_status,
    updated_at           = NOW();
`
)

// Get returns ErrNotFound when the target has never been checked.
func (r *StateRepoImpl) Get(ctx context.Context, target string) (watchdog.State, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var (
		st        watchdog.State
		alertAt   *time.Time
		checkedAt *time.Time
		status    *string
	)
	err := r.db.Pool.QueryRow(ctx, qStateGet, target).Scan(&st.ConsecutiveFailures, &alertAt, &checkedAt, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return watchdog.State{}, ErrNotFound
		}
		return watchdog.State{}, fmt.Errorf("get state: %w", err)
	}
	st.LastAlertTime = alertAt
	st.LastCheckTime = checkedAt
	if status != nil {
		s := watchdog.Status(*status)
		st.LastStatus = &s
	}
	return st, nil
}

func (r *StateRepoImpl) Upsert(ctx context.Context, target string, st watchdog.State) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var status *string
	if st.LastStatus != nil {
		s := string(*st.LastStatus)
		status = &s
	}
	if _, err := r.db.Pool.Exec(ctx, qStateUpsert,
		target,
		st.ConsecutiveFailures,
		st.LastAlertTime,
		st.LastCheckTime,
		status,
	); err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}
