package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cjliu20152/qiskit/pkg/provider"
)

// Schedule states persisted on a job row. A "scheduled" row is owned by
// the scheduler heap until it fires or is cancelled.
const (
	ScheduleStateNone      = ""
	ScheduleStateScheduled = "scheduled"
	ScheduleStateCancelled = "cancelled"
	ScheduleStateMissed    = "missed"
)

// JobRecord is one persisted job. Qobj holds the assembled program as
// JSON; Result holds the marshalled result list once the job finishes.
type JobRecord struct {
	Id            string
	Backend       string
	Name          string
	Status        provider.JobStatus
	Priority      int
	Shots         int
	MeasLevel     int
	Qobj          []byte
	Result        []byte
	Error         string
	SubmittedAt   time.Time
	StartedAt     time.Time
	FinishedAt    time.Time
	ScheduledAt   time.Time
	CronExpr      string
	ScheduleState string
}

// Filter narrows ListJobs results. Zero values match everything.
type Filter struct {
	Backend string
	Status  provider.JobStatus
	Limit   int
}

const jobColumns = `id, backend, name, status, priority, shots, meas_level,
	qobj, result, error, submitted_at, started_at, finished_at,
	scheduled_at, cron_expr, schedule_state`

// PutJob inserts or replaces a job row.
func (s *Store) PutJob(rec *JobRecord) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Id, rec.Backend, rec.Name, string(rec.Status), rec.Priority,
		rec.Shots, rec.MeasLevel, rec.Qobj, rec.Result, rec.Error,
		rec.SubmittedAt, nullTime(rec.StartedAt), nullTime(rec.FinishedAt),
		nullTime(rec.ScheduledAt), rec.CronExpr, rec.ScheduleState,
	)
	if err != nil {
		return fmt.Errorf("failed to store job %s: %w", rec.Id, err)
	}
	return nil
}

// GetJob fetches one job row by id.
func (s *Store) GetJob(id string) (*JobRecord, error) {
	row := s.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	rec, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	return rec, nil
}

// ListJobs returns jobs matching the filter, newest first.
func (s *Store) ListJobs(f Filter) ([]*JobRecord, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	args := []any{}
	if f.Backend != "" {
		query += ` AND backend = ?`
		args = append(args, f.Backend)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY submitted_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var recs []*JobRecord
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// DeleteJob removes one job row.
func (s *Store) DeleteJob(id string) error {
	res, err := s.db.Exec(`DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// FlushTerminal deletes every finished job and returns how many rows
// went away. Recurring rows stay so their cadence survives a flush.
func (s *Store) FlushTerminal() (int, error) {
	res, err := s.db.Exec(`
		DELETE FROM jobs
		WHERE status IN (?, ?, ?) AND schedule_state != ?`,
		string(provider.StatusDone), string(provider.StatusError),
		string(provider.StatusCancelled), ScheduleStateScheduled,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to flush jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// InterruptedJobs returns jobs that were queued or running when the
// daemon last stopped. The engine re-queues them at startup.
func (s *Store) InterruptedJobs() ([]*JobRecord, error) {
	rows, err := s.db.Query(`
		SELECT `+jobColumns+` FROM jobs
		WHERE status IN (?, ?, ?, ?)
		ORDER BY submitted_at ASC`,
		string(provider.StatusInitializing), string(provider.StatusQueued),
		string(provider.StatusValidating), string(provider.StatusRunning),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query interrupted jobs: %w", err)
	}
	defer rows.Close()

	var recs []*JobRecord
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// ScheduledJobs returns rows still owned by the scheduler.
func (s *Store) ScheduledJobs() ([]*JobRecord, error) {
	rows, err := s.db.Query(`
		SELECT `+jobColumns+` FROM jobs
		WHERE schedule_state = ?
		ORDER BY scheduled_at ASC`, ScheduleStateScheduled)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled jobs: %w", err)
	}
	defer rows.Close()

	var recs []*JobRecord
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CountActive counts non-terminal jobs on a backend, the daemon's
// pending_jobs figure.
func (s *Store) CountActive(backend string) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM jobs
		WHERE backend = ? AND status NOT IN (?, ?, ?)`,
		backend, string(provider.StatusDone), string(provider.StatusError),
		string(provider.StatusCancelled),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count active jobs: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*JobRecord, error) {
	var (
		rec       JobRecord
		status    string
		result    []byte
		startedAt sql.NullTime
		finished  sql.NullTime
		scheduled sql.NullTime
	)
	err := row.Scan(
		&rec.Id, &rec.Backend, &rec.Name, &status, &rec.Priority,
		&rec.Shots, &rec.MeasLevel, &rec.Qobj, &result, &rec.Error,
		&rec.SubmittedAt, &startedAt, &finished, &scheduled,
		&rec.CronExpr, &rec.ScheduleState,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = provider.JobStatus(status)
	rec.Result = result
	if startedAt.Valid {
		rec.StartedAt = startedAt.Time
	}
	if finished.Valid {
		rec.FinishedAt = finished.Time
	}
	if scheduled.Valid {
		rec.ScheduledAt = scheduled.Time
	}
	return &rec, nil
}

// nullTime maps the zero time to NULL so unset stages stay NULL in the
// table instead of year-one timestamps.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
