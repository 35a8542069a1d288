package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LevelResult is one finished game.
type LevelResult struct {
	ID        string
	Level     int
	Moves     int
	Duration  time.Duration
	Principal string
	CreatedAt time.Time
}

// SaveResult records a finished game. ID and CreatedAt are filled in when
// empty. Returns the stored result.
func (s *Store) SaveResult(ctx context.Context, r LevelResult) (LevelResult, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC().Truncate(time.Second)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO level_results (id, level, moves, duration_ms, principal, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Level, r.Moves, r.Duration.Milliseconds(), r.Principal, r.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return LevelResult{}, fmt.Errorf("storage: cannot save result: %w", err)
	}
	return r, nil
}

// TopResults retrieves the best results for a level: fewest moves first,
// then fastest.
func (s *Store) TopResults(ctx context.Context, level, limit int) ([]LevelResult, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, level, moves, duration_ms, principal, created_at
		 FROM level_results
		 WHERE level = ?
		 ORDER BY moves ASC, duration_ms ASC, created_at ASC
		 LIMIT ?`,
		level, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	defer rows.Close()

	var results []LevelResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// BestResults returns the best result of every level that has one, in
// level order.
func (s *Store) BestResults(ctx context.Context) ([]LevelResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, level, moves, duration_ms, principal, created_at
		 FROM (
			SELECT *, ROW_NUMBER() OVER (
				PARTITION BY level ORDER BY moves ASC, duration_ms ASC, created_at ASC
			) AS rn
			FROM level_results
		 )
		 WHERE rn = 1
		 ORDER BY level ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query best results: %w", err)
	}
	defer rows.Close()

	var results []LevelResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// ResultCount returns the number of recorded games for a level.
func (s *Store) ResultCount(ctx context.Context, level int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM level_results WHERE level = ?", level,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count results: %w", err)
	}
	return n, nil
}

// ClearResults deletes all results for a level.
func (s *Store) ClearResults(ctx context.Context, level int) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM level_results WHERE level = ?", level)
	if err != nil {
		return fmt.Errorf("storage: cannot clear results: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (LevelResult, error) {
	var (
		r          LevelResult
		durationMs int64
		createdAt  any
	)
	if err := row.Scan(&r.ID, &r.Level, &r.Moves, &durationMs, &r.Principal, &createdAt); err != nil {
		return LevelResult{}, fmt.Errorf("storage: cannot scan row: %w", err)
	}
	r.Duration = time.Duration(durationMs) * time.Millisecond
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}
