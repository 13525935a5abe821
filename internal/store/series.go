package store

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
)

// StoreSeries stores a run's output compressed. Returns the series ID, or
// 0 if identical output was already stored for the run.
func (s *Store) StoreSeries(runID int64, format string, payload []byte) (int64, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return 0, fmt.Errorf("compress series: %w", err)
	}
	if err := gz.Close(); err != nil {
		return 0, fmt.Errorf("close gzip: %w", err)
	}

	hash := sha256.Sum256(payload)

	result, err := s.db.Exec(`
		INSERT INTO run_series (run_id, format, payload_compressed, payload_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, payload_hash) DO NOTHING
	`, runID, format, buf.Bytes(), hex.EncodeToString(hash[:]))
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil || n == 0 {
		return 0, err
	}
	return result.LastInsertId()
}

// GetSeries returns the most recent output stored for a run, decompressed.
// A run with no stored output returns nil.
func (s *Store) GetSeries(runID int64) ([]byte, string, error) {
	var compressed []byte
	var format string
	err := s.db.QueryRow(`
		SELECT payload_compressed, format
		FROM run_series
		WHERE run_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, runID).Scan(&compressed, &format)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, "", fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()
	payload, err := io.ReadAll(gz)
	if err != nil {
		return nil, "", fmt.Errorf("decompress series: %w", err)
	}
	return payload, format, nil
}
