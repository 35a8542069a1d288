package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := store.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	v, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || v != "v" {
		t.Errorf("Get() = %q, %v, %v; want v, true, nil", v, ok, err)
	}
}

func TestSaveResultFillsIDAndTime(t *testing.T) {
	store := openTestStore(t)

	r, err := store.SaveResult(context.Background(), LevelResult{Level: 1, Moves: 6, Duration: 12 * time.Second})
	if err != nil {
		t.Fatalf("SaveResult() failed: %v", err)
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", r.ID, err)
	}
	if r.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestTopResultsOrdering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	inputs := []LevelResult{
		{Level: 2, Moves: 9, Duration: 40 * time.Second, Principal: "a"},
		{Level: 2, Moves: 7, Duration: 55 * time.Second, Principal: "b"},
		{Level: 2, Moves: 7, Duration: 31 * time.Second, Principal: "c"},
		{Level: 2, Moves: 12, Duration: 20 * time.Second, Principal: "d"},
		{Level: 3, Moves: 1, Duration: time.Second, Principal: "other level"},
	}
	for _, r := range inputs {
		if _, err := store.SaveResult(ctx, r); err != nil {
			t.Fatalf("SaveResult() failed: %v", err)
		}
	}

	results, err := store.TopResults(ctx, 2, 3)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results with limit, got %d", len(results))
	}

	want := []string{"c", "b", "a"}
	for i, r := range results {
		if r.Principal != want[i] {
			t.Errorf("results[%d].Principal = %q, want %q", i, r.Principal, want[i])
		}
	}
	if results[0].Duration != 31*time.Second {
		t.Errorf("Duration = %v, want 31s", results[0].Duration)
	}

	n, err := store.ResultCount(ctx, 2)
	if err != nil || n != 4 {
		t.Errorf("ResultCount(2) = %d, %v; want 4", n, err)
	}
}

func TestBestResults(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, r := range []LevelResult{
		{Level: 3, Moves: 10, Duration: time.Minute},
		{Level: 1, Moves: 5, Duration: 20 * time.Second},
		{Level: 1, Moves: 4, Duration: 30 * time.Second},
		{Level: 3, Moves: 10, Duration: 50 * time.Second},
	} {
		if _, err := store.SaveResult(ctx, r); err != nil {
			t.Fatalf("SaveResult() failed: %v", err)
		}
	}

	best, err := store.BestResults(ctx)
	if err != nil {
		t.Fatalf("BestResults() failed: %v", err)
	}
	if len(best) != 2 {
		t.Fatalf("Expected 2 levels, got %d", len(best))
	}
	if best[0].Level != 1 || best[0].Moves != 4 {
		t.Errorf("best[0] = %+v, want level 1 with 4 moves", best[0])
	}
	if best[1].Level != 3 || best[1].Duration != 50*time.Second {
		t.Errorf("best[1] = %+v, want level 3 in 50s", best[1])
	}
}

func TestClearResults(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.SaveResult(ctx, LevelResult{Level: 1, Moves: 4})
	store.SaveResult(ctx, LevelResult{Level: 2, Moves: 6})

	if err := store.ClearResults(ctx, 1); err != nil {
		t.Fatalf("ClearResults() failed: %v", err)
	}

	if n, _ := store.ResultCount(ctx, 1); n != 0 {
		t.Errorf("level 1 still has %d results", n)
	}
	if n, _ := store.ResultCount(ctx, 2); n != 1 {
		t.Errorf("level 2 has %d results, want 1", n)
	}
}

func TestPreferences(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Errorf("Get(missing) ok=%v err=%v; want false, nil", ok, err)
	}

	if err := store.Set(ctx, "card-back", "data:image/png;base64,AAA"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := store.Set(ctx, "card-back", "data:image/png;base64,BBB"); err != nil {
		t.Fatalf("Set() overwrite failed: %v", err)
	}

	v, ok, err := store.Get(ctx, "card-back")
	if err != nil || !ok || v != "data:image/png;base64,BBB" {
		t.Errorf("Get() = %q, %v, %v", v, ok, err)
	}

	if err := store.Delete(ctx, "card-back"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "card-back"); ok {
		t.Error("value still present after Delete")
	}
	if err := store.Delete(ctx, "card-back"); err != nil {
		t.Errorf("Delete() of missing key failed: %v", err)
	}
}

func TestPreferenceSizeLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	store.SetMaxPreferenceSize(16)

	if err := store.Set(ctx, "k", "small"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	err := store.Set(ctx, "k", strings.Repeat("x", 17))
	if !errors.Is(err, ErrValueTooLarge) {
		t.Fatalf("Set() oversize err = %v, want ErrValueTooLarge", err)
	}

	v, _, _ := store.Get(ctx, "k")
	if v != "small" {
		t.Errorf("rejected write changed value to %q", v)
	}
}

func TestLedgerCompletions(t *testing.T) {
	ledger := openTestStore(t).Ledger()
	ctx := context.Background()

	for _, level := range []int{1, 2, 2, 5} {
		if ok, err := ledger.CompleteLevel(ctx, "alice", level); err != nil || !ok {
			t.Fatalf("CompleteLevel(%d) = %v, %v", level, ok, err)
		}
	}

	n, err := ledger.CompletedLevelsCount(ctx, "alice")
	if err != nil || n != 3 {
		t.Errorf("CompletedLevelsCount() = %d, %v; want 3", n, err)
	}
	if n, _ := ledger.CompletedLevelsCount(ctx, "bob"); n != 0 {
		t.Errorf("bob has %d completions", n)
	}

	tests := []struct {
		level int
		want  bool
	}{
		{1, true}, {2, true}, {3, false}, {5, true},
	}
	for _, tt := range tests {
		got, err := ledger.IsLevelCompleted(ctx, "alice", tt.level)
		if err != nil || got != tt.want {
			t.Errorf("IsLevelCompleted(%d) = %v, %v; want %v", tt.level, got, err, tt.want)
		}
	}

	if _, err := ledger.CompleteLevel(ctx, "alice", 11); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("CompleteLevel(11) err = %v, want ErrInvalidLevel", err)
	}
}

func TestLedgerMintBadge(t *testing.T) {
	ledger := openTestStore(t).Ledger()
	ctx := context.Background()

	if _, err := ledger.MintBadge(ctx, "alice"); !errors.Is(err, ErrBadgeNotEarned) {
		t.Fatalf("MintBadge() before completion err = %v, want ErrBadgeNotEarned", err)
	}

	for level := 1; level <= 10; level++ {
		ledger.CompleteLevel(ctx, "alice", level)
	}

	ok, err := ledger.MintBadge(ctx, "alice")
	if err != nil || !ok {
		t.Fatalf("MintBadge() = %v, %v; want true, nil", ok, err)
	}
	if minted, _ := ledger.IsBadgeMinted(ctx, "alice"); !minted {
		t.Error("IsBadgeMinted() = false after mint")
	}

	ok, err = ledger.MintBadge(ctx, "alice")
	if err != nil || ok {
		t.Errorf("second MintBadge() = %v, %v; want false, nil", ok, err)
	}
}
