package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Location mirrors the 'attendance_locations' table. Locations are static
// reference data: the service only reads them, writes happen through the
// seeding CLI. Coordinates are stored as strings, matching the upstream
// schema; the backend never does arithmetic on them.
type Location struct {
	ID          string
	Name        string
	ShortName   string
	Latitude    string
	Longitude   string
	Description sql.NullString
}

type LocationRepo struct{ DB *sql.DB }

func NewLocationRepo(db *sql.DB) *LocationRepo { return &LocationRepo{DB: db} }

// List returns every permitted location ordered by id for deterministic
// output.
func (r *LocationRepo) List(ctx context.Context) ([]Location, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,short_name,latitude,longitude,description FROM attendance_locations ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.ShortName, &l.Latitude, &l.Longitude, &l.Description); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetByID fetches a location by its key, returning ErrLocationNotFound
// when absent. The attendance service calls this before accepting any
// check-in or check-out referencing the location.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (Location, error) {
	var l Location
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,short_name,latitude,longitude,description FROM attendance_locations WHERE id=? LIMIT 1",
		id).Scan(&l.ID, &l.Name, &l.ShortName, &l.Latitude, &l.Longitude, &l.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return Location{}, ErrLocationNotFound
	}
	return l, err
}

// Upsert inserts or replaces a location. Only the seeding CLI uses this.
func (r *LocationRepo) Upsert(ctx context.Context, l Location) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO attendance_locations (id,name,short_name,latitude,longitude,description)
		 VALUES (?,?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE name=VALUES(name), short_name=VALUES(short_name),
		   latitude=VALUES(latitude), longitude=VALUES(longitude), description=VALUES(description)`,
		l.ID, l.Name, l.ShortName, l.Latitude, l.Longitude, l.Description)
	return err
}
