package store

import (
	"context"
	"database/sql"

	"github.com/Tantanok221/douren/internal/model"
)

const listEvents = `
SELECT ID, Name FROM Event ORDER BY ID DESC
`

// ListEvents returns all events, newest first.
func (q *Queries) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, listEvents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

const getEventByName = `
SELECT ID, Name FROM Event WHERE Name = ?
`

// GetEventByName fetches an event by its unique name.
func (q *Queries) GetEventByName(ctx context.Context, name string) (model.Event, error) {
	var e model.Event
	err := q.db.QueryRowContext(ctx, getEventByName, name).Scan(&e.ID, &e.Name)
	return e, err
}

const createEvent = `
INSERT INTO Event (Name) VALUES (?) RETURNING ID, Name
`

// CreateEvent inserts a new event.
func (q *Queries) CreateEvent(ctx context.Context, name string) (model.Event, error) {
	var e model.Event
	err := q.db.QueryRowContext(ctx, createEvent, name).Scan(&e.ID, &e.Name)
	return e, err
}

// UpsertBoothParams holds an artist's booth assignment for an event.
type UpsertBoothParams struct {
	EventID       int64
	ArtistID      int64
	LocationDay01 sql.NullString
	LocationDay02 sql.NullString
	LocationDay03 sql.NullString
	DM            sql.NullString
}

const upsertBooth = `
INSERT INTO Event_Artist (Event_ID, Artist_ID, Location_Day01, Location_Day02, Location_Day03, DM)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (Event_ID, Artist_ID) DO UPDATE SET
	Location_Day01 = excluded.Location_Day01,
	Location_Day02 = excluded.Location_Day02,
	Location_Day03 = excluded.Location_Day03,
	DM = excluded.DM
`

// UpsertBooth creates or replaces an artist's booth for an event.
func (q *Queries) UpsertBooth(ctx context.Context, arg UpsertBoothParams) error {
	_, err := q.db.ExecContext(ctx, upsertBooth,
		arg.EventID, arg.ArtistID, arg.LocationDay01, arg.LocationDay02,
		arg.LocationDay03, arg.DM)
	return err
}

const listBoothsByEvent = `
SELECT Event_ID, Artist_ID, Location_Day01, Location_Day02, Location_Day03, DM
FROM Event_Artist WHERE Event_ID = ?
`

// ListBoothsByEvent returns all booth rows for an event.
func (q *Queries) ListBoothsByEvent(ctx context.Context, eventID int64) ([]model.Booth, error) {
	rows, err := q.db.QueryContext(ctx, listBoothsByEvent, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var booths []model.Booth
	for rows.Next() {
		var b model.Booth
		if err := rows.Scan(&b.EventID, &b.ArtistID, &b.LocationDay01,
			&b.LocationDay02, &b.LocationDay03, &b.DM); err != nil {
			return nil, err
		}
		booths = append(booths, b)
	}
	return booths, rows.Err()
}

const listOwners = `
SELECT ID, Name, Title, Description, Twitter_Link, Github_Link FROM Owner ORDER BY ID
`

// ListOwners returns the static site-owner profiles.
func (q *Queries) ListOwners(ctx context.Context) ([]model.Owner, error) {
	rows, err := q.db.QueryContext(ctx, listOwners)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []model.Owner
	for rows.Next() {
		var o model.Owner
		if err := rows.Scan(&o.ID, &o.Name, &o.Title, &o.Description,
			&o.Twitter, &o.GitHub); err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}
