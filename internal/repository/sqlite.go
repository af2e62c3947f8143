package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"address-api/internal/models"

	_ "modernc.org/sqlite" // SQLite driver
)

const sqliteBatchSize = 500

const (
	sqliteCreateTableSQL = `
	CREATE TABLE IF NOT EXISTS address (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT,
		latitude REAL,
		longitude REAL,
		is_deleted BOOLEAN NOT NULL DEFAULT 0
	);
	`

	sqliteFetchAllSQL = `
		SELECT id, name, latitude, longitude, is_deleted
		FROM address
		WHERE is_deleted = 0
		ORDER BY id
	`

	sqliteFetchByIDSQL = `
		SELECT id, name, latitude, longitude, is_deleted
		FROM address
		WHERE id = ?
	`

	sqliteInsertOneSQL = `INSERT INTO address (name, latitude, longitude, is_deleted) VALUES (?, ?, ?, ?)`

	sqliteUpdateByIDSQL = `
		UPDATE address
		SET
			name = COALESCE(?, name),
			latitude = COALESCE(?, latitude),
			longitude = COALESCE(?, longitude),
			is_deleted = COALESCE(?, is_deleted)
		WHERE id = ?
	`

	sqliteSoftDeleteByIDSQL = `UPDATE address SET is_deleted = 1 WHERE id = ?`

	sqliteHardDeleteAllSQL = `DELETE FROM address`
)

// SQLiteRepository implements address storage on a SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the SQLite database at dsn. Use ":memory:" for a
// throwaway database.
func NewSQLiteRepository(ctx context.Context, dsn string) (*SQLiteRepository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("repository: sqlite dsn cannot be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("repository: open sqlite: %w", err)
	}

	// SQLite only supports a single writer; an in-memory database also lives
	// and dies with its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repository: ping sqlite: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Migrate creates the address table if it does not exist yet.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteCreateTableSQL); err != nil {
		return &StorageError{Op: "create address table", Err: err}
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() {
	r.db.Close()
}

// FetchAll returns every address that has not been soft deleted, ordered by id.
func (r *SQLiteRepository) FetchAll(ctx context.Context) ([]models.Address, error) {
	rows, err := r.db.QueryContext(ctx, sqliteFetchAllSQL)
	if err != nil {
		return nil, &StorageError{Op: "query addresses", Err: err}
	}
	defer rows.Close()

	addresses := []models.Address{}
	for rows.Next() {
		var addr models.Address
		if err := rows.Scan(&addr.ID, &addr.Name, &addr.Latitude, &addr.Longitude, &addr.IsDeleted); err != nil {
			return nil, &StorageError{Op: "scan address", Err: err}
		}
		addresses = append(addresses, addr)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate address rows", Err: err}
	}

	return addresses, nil
}

// FetchByID returns the address with the given id, including soft deleted
// ones. It returns ErrNotFound when no row matches.
func (r *SQLiteRepository) FetchByID(ctx context.Context, id int64) (*models.Address, error) {
	var addr models.Address
	err := r.db.QueryRowContext(ctx, sqliteFetchByIDSQL, id).
		Scan(&addr.ID, &addr.Name, &addr.Latitude, &addr.Longitude, &addr.IsDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "fetch address", Err: err}
	}

	return &addr, nil
}

func (r *SQLiteRepository) InsertOne(ctx context.Context, addr models.NewAddress) (int64, error) {
	res, err := r.db.ExecContext(ctx, sqliteInsertOneSQL, addr.Name, addr.Latitude, addr.Longitude, addr.IsDeleted)
	if err != nil {
		return 0, &StorageError{Op: "insert address", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &StorageError{Op: "read inserted address id", Err: err}
	}
	return id, nil
}

// InsertMany stores all addresses in one transaction, using multi-row
// inserts of at most sqliteBatchSize rows each.
func (r *SQLiteRepository) InsertMany(ctx context.Context, addrs []models.NewAddress) error {
	if len(addrs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "begin bulk insert", Err: err}
	}
	defer tx.Rollback() //nolint:errcheck

	for start := 0; start < len(addrs); start += sqliteBatchSize {
		end := min(start+sqliteBatchSize, len(addrs))
		query, args := buildBulkInsert(addrs[start:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return &StorageError{Op: "bulk insert addresses", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "commit bulk insert", Err: err}
	}
	return nil
}

func (r *SQLiteRepository) UpdateByID(ctx context.Context, id int64, patch models.AddressPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	_, err := r.db.ExecContext(ctx, sqliteUpdateByIDSQL,
		nullable(patch.Name), nullable(patch.Latitude), nullable(patch.Longitude), nullable(patch.IsDeleted), id)
	if err != nil {
		return &StorageError{Op: "update address", Err: err}
	}
	return nil
}

func (r *SQLiteRepository) SoftDeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, sqliteSoftDeleteByIDSQL, id); err != nil {
		return &StorageError{Op: "soft delete address", Err: err}
	}
	return nil
}

func (r *SQLiteRepository) HardDeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteHardDeleteAllSQL); err != nil {
		return &StorageError{Op: "delete all addresses", Err: err}
	}
	return nil
}

func buildBulkInsert(addrs []models.NewAddress) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO address (name, latitude, longitude, is_deleted) VALUES ")

	args := make([]any, 0, len(addrs)*len(addressColumns))
	for i, a := range addrs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?)")
		args = append(args, a.Name, a.Latitude, a.Longitude, a.IsDeleted)
	}

	return sb.String(), args
}

// nullable turns an unset patch field into a SQL NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
