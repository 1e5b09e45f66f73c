package store

import (
	"context"
	"database/sql"

	"github.com/Tantanok221/douren/internal/model"
)

// CreateProductParams holds the fields for a new product row.
type CreateProductParams struct {
	ArtistID  int64
	Thumbnail string
	Preview   sql.NullString
	Title     sql.NullString
	Tag       sql.NullString
}

const createProduct = `
INSERT INTO Product (Artist_ID, Thumbnail, Preview, Title, Tag)
VALUES (?, ?, ?, ?, ?)
RETURNING ID, Artist_ID, Thumbnail, Preview, Title, Tag
`

// CreateProduct inserts a product for an artist.
func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (model.Product, error) {
	var p model.Product
	err := q.db.QueryRowContext(ctx, createProduct,
		arg.ArtistID, arg.Thumbnail, arg.Preview, arg.Title, arg.Tag).
		Scan(&p.ID, &p.ArtistID, &p.Thumbnail, &p.Preview, &p.Title, &p.Tag)
	return p, err
}

const listProductsByArtist = `
SELECT ID, Artist_ID, Thumbnail, Preview, Title, Tag FROM Product WHERE Artist_ID = ? ORDER BY ID
`

// ListProductsByArtist returns an artist's products.
func (q *Queries) ListProductsByArtist(ctx context.Context, artistID int64) ([]model.Product, error) {
	rows, err := q.db.QueryContext(ctx, listProductsByArtist, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.ArtistID, &p.Thumbnail, &p.Preview,
			&p.Title, &p.Tag); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const deleteProduct = `
DELETE FROM Product WHERE ID = ? AND Artist_ID = ?
`

// DeleteProduct removes a product belonging to an artist. Returns the number
// of rows removed so callers can distinguish a missing product.
func (q *Queries) DeleteProduct(ctx context.Context, id, artistID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteProduct, id, artistID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
