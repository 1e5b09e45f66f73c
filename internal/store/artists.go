package store

import (
	"context"
	"database/sql"

	"github.com/Tantanok221/douren/internal/model"
	"github.com/Tantanok221/douren/internal/query"
)

const getArtistByID = `
SELECT UUID, Author, Introduce, Photo, Owner_ID, Tags, Slug, Created_At, Updated_At
FROM Author_Main WHERE UUID = ?
`

// GetArtistByID fetches a single artist row.
func (q *Queries) GetArtistByID(ctx context.Context, id int64) (model.Artist, error) {
	row := q.db.QueryRowContext(ctx, getArtistByID, id)
	return scanArtist(row)
}

const getArtistByOwner = `
SELECT UUID, Author, Introduce, Photo, Owner_ID, Tags, Slug, Created_At, Updated_At
FROM Author_Main WHERE Owner_ID = ?
`

// GetArtistByOwner fetches the artist owned by a user.
func (q *Queries) GetArtistByOwner(ctx context.Context, userID string) (model.Artist, error) {
	row := q.db.QueryRowContext(ctx, getArtistByOwner, userID)
	return scanArtist(row)
}

const getArtistOwner = `
SELECT Owner_ID FROM Author_Main WHERE UUID = ?
`

// GetArtistOwner fetches only the owning-user id of an artist. The returned
// NullString is invalid for legacy artists with no owner.
func (q *Queries) GetArtistOwner(ctx context.Context, id int64) (sql.NullString, error) {
	var owner sql.NullString
	err := q.db.QueryRowContext(ctx, getArtistOwner, id).Scan(&owner)
	return owner, err
}

// CreateArtistParams holds the fields for a new artist row.
type CreateArtistParams struct {
	Author    string
	Introduce string
	Photo     sql.NullString
	OwnerID   sql.NullString
	Tags      string
	Slug      string
}

const createArtist = `
INSERT INTO Author_Main (Author, Introduce, Photo, Owner_ID, Tags, Slug)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING UUID, Author, Introduce, Photo, Owner_ID, Tags, Slug, Created_At, Updated_At
`

// CreateArtist inserts an artist and returns the stored row.
func (q *Queries) CreateArtist(ctx context.Context, arg CreateArtistParams) (model.Artist, error) {
	row := q.db.QueryRowContext(ctx, createArtist,
		arg.Author, arg.Introduce, arg.Photo, arg.OwnerID, arg.Tags, arg.Slug)
	return scanArtist(row)
}

// UpdateArtistParams holds the mutable fields of an artist row.
type UpdateArtistParams struct {
	ID        int64
	Author    string
	Introduce string
	Photo     sql.NullString
	Tags      string
	Slug      string
}

const updateArtist = `
UPDATE Author_Main
SET Author = ?, Introduce = ?, Photo = ?, Tags = ?, Slug = ?, Updated_At = CURRENT_TIMESTAMP
WHERE UUID = ?
RETURNING UUID, Author, Introduce, Photo, Owner_ID, Tags, Slug, Created_At, Updated_At
`

// UpdateArtist updates an artist and returns the stored row.
func (q *Queries) UpdateArtist(ctx context.Context, arg UpdateArtistParams) (model.Artist, error) {
	row := q.db.QueryRowContext(ctx, updateArtist,
		arg.Author, arg.Introduce, arg.Photo, arg.Tags, arg.Slug, arg.ID)
	return scanArtist(row)
}

const deleteArtist = `
DELETE FROM Author_Main WHERE UUID = ?
`

// DeleteArtist removes an artist row. Junction and booth rows cascade.
func (q *Queries) DeleteArtist(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteArtist, id)
	return err
}

// ArtistBuilder returns a query builder preloaded with the artist table and
// its column list, for the directory listing endpoint to compose on.
func ArtistBuilder() query.Builder {
	return query.From("Author_Main",
		"Author_Main.UUID", "Author_Main.Author", "Author_Main.Introduce",
		"Author_Main.Photo", "Author_Main.Owner_ID", "Author_Main.Tags",
		"Author_Main.Slug", "Author_Main.Created_At", "Author_Main.Updated_At")
}

// QueryArtists executes a composed directory query and scans artist rows.
func (q *Queries) QueryArtists(ctx context.Context, qry query.Query) ([]model.Artist, error) {
	rows, err := q.db.QueryContext(ctx, qry.SQL, qry.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artists []model.Artist
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

// CountArtists executes a composed COUNT(*) query.
func (q *Queries) CountArtists(ctx context.Context, qry query.Query) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, qry.SQL, qry.Args...).Scan(&count)
	return count, err
}

// rowScanner abstracts *sql.Row and *sql.Rows for the shared scan helper.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtist(row rowScanner) (model.Artist, error) {
	var a model.Artist
	err := row.Scan(&a.ID, &a.Name, &a.Introduce, &a.PhotoURL, &a.OwnerUserID,
		&a.Tags, &a.Slug, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
