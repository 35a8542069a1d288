package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/vovakirdan/memory-match/internal/progress"
)

// Ledger errors.
var (
	ErrInvalidLevel   = errors.New("storage: level out of range")
	ErrBadgeNotEarned = errors.New("storage: badge not earned")
)

// Ledger is a local stand-in for the remote progress ledger, backed by the
// store's ledger tables.
type Ledger struct {
	store *Store
}

var (
	_ progress.Actor  = (*Ledger)(nil)
	_ progress.Minter = (*Ledger)(nil)
)

// Ledger returns the local ledger view of the store.
func (s *Store) Ledger() *Ledger {
	return &Ledger{store: s}
}

// CompleteLevel records the level as completed. Recording a level twice is
// not an error.
func (l *Ledger) CompleteLevel(ctx context.Context, user progress.Principal, level int) (bool, error) {
	if level < 1 || level > progress.BadgeLevels {
		return false, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}

	_, err := l.store.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO ledger_completions (principal, level) VALUES (?, ?)",
		string(user), level,
	)
	if err != nil {
		return false, fmt.Errorf("storage: cannot record completion: %w", err)
	}
	return true, nil
}

// CompletedLevelsCount returns the number of distinct completed levels.
func (l *Ledger) CompletedLevelsCount(ctx context.Context, user progress.Principal) (int, error) {
	var n int
	err := l.store.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT level) FROM ledger_completions WHERE principal = ?",
		string(user),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count completions: %w", err)
	}
	return n, nil
}

// IsLevelCompleted reports whether the level was recorded for the player.
func (l *Ledger) IsLevelCompleted(ctx context.Context, user progress.Principal, level int) (bool, error) {
	var n int
	err := l.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ledger_completions WHERE principal = ? AND level = ?",
		string(user), level,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage: cannot query completion: %w", err)
	}
	return n > 0, nil
}

// IsBadgeMinted reports whether the player holds the badge.
func (l *Ledger) IsBadgeMinted(ctx context.Context, user progress.Principal) (bool, error) {
	var n int
	err := l.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ledger_badges WHERE principal = ?",
		string(user),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage: cannot query badge: %w", err)
	}
	return n > 0, nil
}

// MintBadge issues the badge once every level is completed. It returns
// false when the badge was already minted.
func (l *Ledger) MintBadge(ctx context.Context, user progress.Principal) (bool, error) {
	count, err := l.CompletedLevelsCount(ctx, user)
	if err != nil {
		return false, err
	}
	if count < progress.BadgeLevels {
		return false, fmt.Errorf("%w: %d of %d levels", ErrBadgeNotEarned, count, progress.BadgeLevels)
	}

	res, err := l.store.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO ledger_badges (principal) VALUES (?)",
		string(user),
	)
	if err != nil {
		return false, fmt.Errorf("storage: cannot mint badge: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	return n > 0, nil
}
