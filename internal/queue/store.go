package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tokenark/internal/config"
	"tokenark/internal/nft"
)

// ErrNotFound indicates the requested ledger item does not exist.
var ErrNotFound = errors.New("ledger item not found")

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.OutputDir, "ledger.db"))
}

// OpenPath opens the ledger database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Enqueue inserts a pending ledger item for a discovered asset.
func (s *Store) Enqueue(ctx context.Context, runID, chainName string, asset nft.DiscoveredAsset, wallet string) (*Item, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, errors.New("run id required")
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO backup_items (
            run_id, chain_id, chain_name, wallet_address,
            contract_address, token_id, name, status,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		asset.Ref.ChainID,
		chainName,
		wallet,
		asset.Ref.ContractAddress,
		asset.Ref.TokenID,
		asset.DisplayName(),
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert ledger item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("ledger item id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Transition moves an item to a new status.
func (s *Store) Transition(ctx context.Context, id int64, status Status) error {
	if !ValidStatus(string(status)) {
		return fmt.Errorf("invalid status %q", status)
	}
	return s.update(ctx, id,
		"UPDATE backup_items SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().UTC().Format(time.RFC3339Nano), id)
}

// MarkFailed moves an item to failed with an error message.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	return s.update(ctx, id,
		"UPDATE backup_items SET status = ?, error_message = ?, updated_at = ? WHERE id = ?",
		StatusFailed, strings.TrimSpace(message), time.Now().UTC().Format(time.RFC3339Nano), id)
}

// GetByID fetches one ledger item.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

// ListByRun returns every item of one run in insertion order.
func (s *Store) ListByRun(ctx context.Context, runID string) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("list ledger items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// ListRecent returns the most recent items across runs, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]*Item, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// CountByStatus tallies a run's items per status.
func (s *Store) CountByStatus(ctx context.Context, runID string) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(1) FROM backup_items WHERE run_id = ? GROUP BY status", runID)
	if err != nil {
		return nil, fmt.Errorf("count ledger items: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// ResetStuck fails every non-terminal item, used when a new run finds
// leftovers from a crashed one.
func (s *Store) ResetStuck(ctx context.Context, reason string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE backup_items SET status = ?, error_message = ?, updated_at = ? WHERE status IN (?, ?, ?)",
		StatusFailed, strings.TrimSpace(reason), time.Now().UTC().Format(time.RFC3339Nano),
		StatusPending, StatusClassifying, StatusDownloading)
	if err != nil {
		return 0, fmt.Errorf("reset stuck items: %w", err)
	}
	return res.RowsAffected()
}

const selectColumns = `SELECT id, run_id, chain_id, chain_name, wallet_address,
    contract_address, token_id, name, status, error_message, created_at, updated_at
    FROM backup_items`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var createdAt, updatedAt string
	err := row.Scan(
		&item.ID, &item.RunID, &item.ChainID, &item.ChainName, &item.WalletAddress,
		&item.ContractAddress, &item.TokenID, &item.Name, &item.Status,
		&item.ErrorMessage, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	item.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &item, nil
}

func collectItems(rows *sql.Rows) ([]*Item, error) {
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) update(ctx context.Context, id int64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update ledger item %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ledger item %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
