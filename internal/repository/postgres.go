package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"address-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createTableSQL = `
	CREATE TABLE IF NOT EXISTS address (
		id BIGSERIAL PRIMARY KEY,
		name TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE
	);
	`

	fetchAllSQL = `
		SELECT id, name, latitude, longitude, is_deleted
		FROM address
		WHERE is_deleted = FALSE
		ORDER BY id
	`

	fetchByIDSQL = `
		SELECT id, name, latitude, longitude, is_deleted
		FROM address
		WHERE id = $1
	`

	insertOneSQL = `
		INSERT INTO address (name, latitude, longitude, is_deleted)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	updateByIDSQL = `
		UPDATE address
		SET
			name = COALESCE($1, name),
			latitude = COALESCE($2, latitude),
			longitude = COALESCE($3, longitude),
			is_deleted = COALESCE($4, is_deleted)
		WHERE id = $5
	`

	softDeleteByIDSQL = `UPDATE address SET is_deleted = TRUE WHERE id = $1`

	hardDeleteAllSQL = `DELETE FROM address`
)

var addressColumns = []string{"name", "latitude", "longitude", "is_deleted"}

// NewDatabase opens a pgx connection pool and verifies it with a ping.
func NewDatabase(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("repository: parse dsn: %w", err)
	}

	poolCfg.MaxConns = 20
	poolCfg.MaxConnIdleTime = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("repository: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repository: ping: %w", err)
	}

	return pool, nil
}

// Migrate creates the address table if it does not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createTableSQL); err != nil {
		return &StorageError{Op: "create address table", Err: err}
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Close releases the underlying pool.
func (r *Repository) Close() {
	r.db.Close()
}

// FetchAll returns every address that has not been soft deleted, ordered by id.
func (r *Repository) FetchAll(ctx context.Context) ([]models.Address, error) {
	rows, err := r.db.Query(ctx, fetchAllSQL)
	if err != nil {
		return nil, &StorageError{Op: "query addresses", Err: err}
	}
	defer rows.Close()

	addresses := []models.Address{}
	for rows.Next() {
		var addr models.Address
		err := rows.Scan(
			&addr.ID,
			&addr.Name,
			&addr.Latitude,
			&addr.Longitude,
			&addr.IsDeleted,
		)
		if err != nil {
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
func (r *Repository) FetchByID(ctx context.Context, id int64) (*models.Address, error) {
	var addr models.Address
	err := r.db.QueryRow(ctx, fetchByIDSQL, id).Scan(
		&addr.ID,
		&addr.Name,
		&addr.Latitude,
		&addr.Longitude,
		&addr.IsDeleted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "fetch address", Err: err}
	}

	return &addr, nil
}

// InsertOne stores a new address and returns the id assigned by the database.
func (r *Repository) InsertOne(ctx context.Context, addr models.NewAddress) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, insertOneSQL, addr.Name, addr.Latitude, addr.Longitude, addr.IsDeleted).Scan(&id)
	if err != nil {
		return 0, &StorageError{Op: "insert address", Err: err}
	}
	return id, nil
}

// InsertMany stores all addresses with a single COPY.
func (r *Repository) InsertMany(ctx context.Context, addrs []models.NewAddress) error {
	if len(addrs) == 0 {
		return nil
	}

	_, err := r.db.CopyFrom(
		ctx,
		pgx.Identifier{"address"},
		addressColumns,
		pgx.CopyFromSlice(len(addrs), func(i int) ([]any, error) {
			a := addrs[i]
			return []any{a.Name, a.Latitude, a.Longitude, a.IsDeleted}, nil
		}),
	)
	if err != nil {
		return &StorageError{Op: "bulk insert addresses", Err: err}
	}
	return nil
}

// UpdateByID writes the fields set in patch. Updating an unknown id is a no-op.
func (r *Repository) UpdateByID(ctx context.Context, id int64, patch models.AddressPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	_, err := r.db.Exec(ctx, updateByIDSQL, patch.Name, patch.Latitude, patch.Longitude, patch.IsDeleted, id)
	if err != nil {
		return &StorageError{Op: "update address", Err: err}
	}
	return nil
}

// SoftDeleteByID flags the address as deleted. Unknown ids are ignored.
func (r *Repository) SoftDeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, softDeleteByIDSQL, id); err != nil {
		return &StorageError{Op: "soft delete address", Err: err}
	}
	return nil
}

// HardDeleteAll removes every address row, soft deleted or not.
func (r *Repository) HardDeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, hardDeleteAllSQL); err != nil {
		return &StorageError{Op: "delete all addresses", Err: err}
	}
	return nil
}
