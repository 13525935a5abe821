package store

import (
	"database/sql"

	"github.com/lox/greenhouse/internal/models"
)

func (s *Store) InsertTrial(t models.Trial) error {
	_, err := s.db.Exec(`
		INSERT INTO trials (run_id, number, params, value, unstable)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, number) DO NOTHING
	`, t.RunID, t.Number, t.Params, t.Value, t.Unstable)
	return err
}

// GetTrials returns a run's trials in evaluation order.
func (s *Store) GetTrials(runID int64) ([]models.Trial, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, number, params, value, unstable, created_at
		FROM trials
		WHERE run_id = ?
		ORDER BY number ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trials []models.Trial
	for rows.Next() {
		var t models.Trial
		if err := rows.Scan(&t.ID, &t.RunID, &t.Number, &t.Params, &t.Value, &t.Unstable, &t.CreatedAt); err != nil {
			return nil, err
		}
		trials = append(trials, t)
	}
	return trials, rows.Err()
}

// BestTrial returns the lowest valued stable trial of a run, or nil.
func (s *Store) BestTrial(runID int64) (*models.Trial, error) {
	var t models.Trial
	err := s.db.QueryRow(`
		SELECT id, run_id, number, params, value, unstable, created_at
		FROM trials
		WHERE run_id = ? AND unstable = FALSE
		ORDER BY value ASC, number ASC
		LIMIT 1
	`, runID).Scan(&t.ID, &t.RunID, &t.Number, &t.Params, &t.Value, &t.Unstable, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
