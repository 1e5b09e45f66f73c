package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Tantanok221/douren/internal/model"
)

const listTags = `
SELECT Tag, Count, Tag_Index FROM Tag ORDER BY Tag_Index
`

// ListTags returns all tags in display-rank order.
func (q *Queries) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := q.db.QueryContext(ctx, listTags)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.Name, &t.Count, &t.Index); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

const deleteArtistTags = `
DELETE FROM Author_Tag WHERE Author_ID = ?
`

const insertArtistTag = `
INSERT INTO Author_Tag (Author_ID, Tag_Name) VALUES (?, ?)
ON CONFLICT (Author_ID, Tag_Name) DO NOTHING
`

// ReplaceArtistTags rewrites the junction rows for an artist.
func (q *Queries) ReplaceArtistTags(ctx context.Context, artistID int64, tagNames []string) error {
	if _, err := q.db.ExecContext(ctx, deleteArtistTags, artistID); err != nil {
		return fmt.Errorf("clearing artist tags: %w", err)
	}
	for _, name := range tagNames {
		if _, err := q.db.ExecContext(ctx, insertArtistTag, artistID, name); err != nil {
			return fmt.Errorf("inserting artist tag %q: %w", name, err)
		}
	}
	return nil
}

// RecomputeTagCounts rebuilds tag usage counts from the junction table,
// prunes zero-count tags, and reassigns display ranks ordered by count
// descending with alphabetical tie-break.
func (q *Queries) RecomputeTagCounts(ctx context.Context) error {
	stmts := []string{
		`INSERT INTO Tag (Tag, Count, Tag_Index)
		 SELECT Tag_Name, 0, 0 FROM Author_Tag
		 WHERE Tag_Name NOT IN (SELECT Tag FROM Tag)
		 GROUP BY Tag_Name`,
		`UPDATE Tag SET Count = (
		   SELECT COUNT(*) FROM Author_Tag WHERE Author_Tag.Tag_Name = Tag.Tag
		 )`,
		`DELETE FROM Tag WHERE Count = 0`,
		`UPDATE Tag SET Tag_Index = (
		   SELECT COUNT(*) FROM Tag AS other
		   WHERE other.Count > Tag.Count
		      OR (other.Count = Tag.Count AND other.Tag < Tag.Tag)
		 )`,
	}
	for _, stmt := range stmts {
		if _, err := q.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("recomputing tag counts: %w", err)
		}
	}
	return nil
}

const getTag = `
SELECT Tag, Count, Tag_Index FROM Tag WHERE Tag = ?
`

// GetTag fetches a single tag by name.
func (q *Queries) GetTag(ctx context.Context, name string) (model.Tag, error) {
	var t model.Tag
	err := q.db.QueryRowContext(ctx, getTag, name).Scan(&t.Name, &t.Count, &t.Index)
	return t, err
}

const countTags = `
SELECT COUNT(*) FROM Tag
`

// CountTags returns the number of live tags.
func (q *Queries) CountTags(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countTags).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return count, err
}
