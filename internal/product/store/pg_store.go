package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/giftcatalog/internal/product/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createProduct = `INSERT INTO product (name, price, image_url) VALUES ($1, $2, $3)
RETURNING id, name, price, image_url`
	findAllProducts = `SELECT id, name, price, image_url FROM product ORDER BY id`
	findProductByID = `SELECT id, name, price, image_url FROM product WHERE id = $1`
	lockProductByID = `SELECT id FROM product WHERE id = $1 FOR UPDATE`
	lockProductName = `SELECT pg_advisory_xact_lock(hashtext($1))`
	updateProduct   = `UPDATE product SET name = $2, price = $3, image_url = $4 WHERE id = $1
RETURNING id, name, price, image_url`
	deleteAllProducts   = `DELETE FROM product`
	deleteProductByID   = `DELETE FROM product WHERE id = $1`
	deleteProductsByIDs = `WITH removed AS (DELETE FROM product WHERE id = ANY($1) RETURNING id)
SELECT id FROM removed ORDER BY id`
	existsByName        = `SELECT EXISTS (SELECT 1 FROM product WHERE name = $1)`
	existsSameName      = `SELECT EXISTS (SELECT 1 FROM product WHERE name = $1 AND id <> $2)`
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ ProductStore = (*PgStore)(nil)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
	}
}

// Create inserts a product and returns it with the generated ID.
// Returns ErrInsertFailed if the insert produced no row.
func (p *PgStore) Create(ctx context.Context, name string, price int64, imageURL string) (*Product, error) {
	product, err := scanProduct(p.db.QueryRow(ctx, createProduct, name, price, imageURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrInsertFailed
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// FindAll retrieves all products ordered by ID.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx, findAllProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Product])
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	product, err := scanProduct(p.db.QueryRow(ctx, findProductByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// Update locks the row and the target name, checks for a duplicate and writes the new values in one transaction.
// Returns ErrProductNotFound if no product exists with the given ID and ErrDuplicateName if another product holds the name.
func (p *PgStore) Update(ctx context.Context, id int64, name string, price int64, imageURL string) (*Product, error) {
	var updated *Product

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		var lockedID int64
		if err := tx.QueryRow(ctx, lockProductByID, id).Scan(&lockedID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return perrors.ErrProductNotFound
			}
			return fmt.Errorf("failed to lock product: %w", err)
		}
		if _, err := tx.Exec(ctx, lockProductName, name); err != nil {
			return fmt.Errorf("failed to lock product name: %w", err)
		}
		taken, err := queryExists(ctx, tx, existsSameName, name, id)
		if err != nil {
			return err
		}
		if taken {
			return perrors.ErrDuplicateName
		}
		updated, err = scanProduct(tx.QueryRow(ctx, updateProduct, id, name, price, imageURL))
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})

	if txErr != nil {
		return nil, txErr
	}
	return updated, nil
}

// DeleteAll removes every product.
func (p *PgStore) DeleteAll(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, deleteAllProducts); err != nil {
		return fmt.Errorf("failed to delete all products: %w", err)
	}
	return nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id int64) error {
	tag, err := p.db.Exec(ctx, deleteProductByID, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// DeleteByIDs removes the products with the given IDs; absent IDs are ignored.
func (p *PgStore) DeleteByIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	rows, err := p.db.Query(ctx, deleteProductsByIDs, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to delete products by IDs: %w", err)
	}
	removed, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect removed product IDs: %w", err)
	}
	return removed, nil
}

// ExistsByName reports whether any product has exactly the given name.
func (p *PgStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	return queryExists(ctx, p.db, existsByName, name)
}

// ExistsSameName reports whether a product other than excludeID has exactly the given name.
func (p *PgStore) ExistsSameName(ctx context.Context, excludeID int64, name string) (bool, error) {
	return queryExists(ctx, p.db, existsSameName, name, excludeID)
}

// Ping checks the database connection.
func (p *PgStore) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("failed to rollback transaction: %w", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func queryExists(ctx context.Context, q dbtx, sql string, args ...any) (bool, error) {
	var exists bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check product name: %w", err)
	}
	return exists, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var product Product
	if err := row.Scan(&product.ID, &product.Name, &product.Price, &product.ImageURL); err != nil {
		return nil, err
	}
	return &product, nil
}
