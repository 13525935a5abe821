// Package store persists runs, optimisation trials and run output in SQLite.
package store

import (
	"database/sql"
	"time"

	"github.com/lox/greenhouse/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const runColumns = `id, kind, crop, source, profile, records, unstable, cycles, biomass, yield, score, started_at, finished_at, error_message`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.Run, error) {
	var r models.Run
	var kind string
	var crop, source, profile sql.NullString
	if err := row.Scan(&r.ID, &kind, &crop, &source, &profile, &r.Records, &r.Unstable, &r.Cycles, &r.Biomass, &r.Yield, &r.Score, &r.StartedAt, &r.FinishedAt, &r.Error); err != nil {
		return nil, err
	}
	r.Kind = models.RunKind(kind)
	r.Crop = crop.String
	r.Source = source.String
	r.Profile = profile.String
	return &r, nil
}

// StartRun records the start of a run and fills in its ID.
func (s *Store) StartRun(run *models.Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	result, err := s.db.Exec(`
		INSERT INTO runs (kind, crop, source, profile, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, string(run.Kind), run.Crop, run.Source, run.Profile, run.StartedAt)
	if err != nil {
		return err
	}
	run.ID, err = result.LastInsertId()
	return err
}

// CompleteRun stores the outcome of a run.
func (s *Store) CompleteRun(run *models.Run) error {
	if run == nil {
		return nil
	}
	if !run.FinishedAt.Valid {
		run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}
	_, err := s.db.Exec(`
		UPDATE runs SET
			records = ?,
			unstable = ?,
			cycles = ?,
			biomass = ?,
			yield = ?,
			score = ?,
			finished_at = ?,
			error_message = ?
		WHERE id = ?
	`, run.Records, run.Unstable, run.Cycles, run.Biomass, run.Yield, run.Score, run.FinishedAt, run.Error, run.ID)
	return err
}

// FailRun completes a run with an error message.
func (s *Store) FailRun(run *models.Run, cause error) error {
	if run == nil {
		return nil
	}
	run.Error = sql.NullString{String: cause.Error(), Valid: true}
	return s.CompleteRun(run)
}

// GetRun returns the run with the given ID, or nil if there is none.
func (s *Store) GetRun(id int64) (*models.Run, error) {
	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// ListRuns returns the most recent runs first. An empty kind lists all.
func (s *Store) ListRuns(kind models.RunKind, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT `+runColumns+`
		FROM runs
		WHERE ? = '' OR kind = ?
		ORDER BY id DESC
		LIMIT ?
	`, string(kind), string(kind), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}
