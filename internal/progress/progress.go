// Package progress talks to the external ledger that records completed
// levels and issues the completion badge. The Client in this package adds
// per-player caching, in-flight deduplication and invalidation on writes.
package progress

import (
	"context"
	"errors"
	"fmt"
)

// BadgeLevels is the number of completed levels required to mint the badge.
const BadgeLevels = 10

// Principal identifies a player to the ledger. The zero value is anonymous.
type Principal string

// Anonymous is the unauthenticated principal.
const Anonymous Principal = ""

// Authenticated reports whether the principal identifies a player.
func (p Principal) Authenticated() bool {
	return p != Anonymous
}

// Actor is the remote ledger contract.
type Actor interface {
	CompleteLevel(ctx context.Context, user Principal, level int) (bool, error)
	CompletedLevelsCount(ctx context.Context, user Principal) (int, error)
	IsBadgeMinted(ctx context.Context, user Principal) (bool, error)
	IsLevelCompleted(ctx context.Context, user Principal, level int) (bool, error)
}

// Minter is implemented by actors that can issue the badge directly.
type Minter interface {
	MintBadge(ctx context.Context, user Principal) (bool, error)
}

var (
	// ErrNotAuthenticated is returned for writes by the anonymous principal.
	ErrNotAuthenticated = errors.New("progress: not authenticated")

	// ErrMintUnsupported is returned when the actor has no mint operation.
	ErrMintUnsupported = errors.New("progress: badge minting not supported")

	// ErrNotEligible is returned when minting is requested before the
	// player can mint.
	ErrNotEligible = errors.New("progress: badge not available")
)

// RemoteCallError wraps a failed actor call.
type RemoteCallError struct {
	Op  string
	Err error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("progress: %s: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// Status is the derived progress view shown to a player.
type Status struct {
	Authenticated  bool
	CompletedCount int
	BadgeMinted    bool
	CanMint        bool
}

// CanMint reports whether a player with the given progress may mint.
func CanMint(authenticated bool, completed int, minted bool) bool {
	return authenticated && completed >= BadgeLevels && !minted
}
