package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DefaultMaxPreferenceSize caps a single preference value.
const DefaultMaxPreferenceSize = 2 << 20

// ErrValueTooLarge is returned when a preference exceeds the size limit.
var ErrValueTooLarge = errors.New("storage: value too large")

// SetMaxPreferenceSize changes the preference size limit. n <= 0 restores
// the default.
func (s *Store) SetMaxPreferenceSize(n int) {
	if n <= 0 {
		n = DefaultMaxPreferenceSize
	}
	s.maxPrefSize = n
}

// Get returns a preference value. ok is false when the key is not set.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx,
		"SELECT value FROM preferences WHERE key = ?", key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: cannot read preference %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores a preference value, replacing any previous one.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if len(value) > s.maxPrefSize {
		return fmt.Errorf("%w: %q is %d bytes, limit %d", ErrValueTooLarge, key, len(value), s.maxPrefSize)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write preference %q: %w", key, err)
	}
	return nil
}

// Delete removes a preference. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM preferences WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("storage: cannot delete preference %q: %w", key, err)
	}
	return nil
}
