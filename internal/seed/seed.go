// Package seed populates the database with initial principals, locations
// and sample attendance records. The functions are plain calls over the
// repositories so any entrypoint (currently cmd/seed) can drive them.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/attendance-tracker/internal/repository"
)

// Repos bundles the repositories seeding writes through.
type Repos struct {
	Users       *repository.UserRepo
	Locations   *repository.LocationRepo
	Attendances *repository.AttendanceRepo
}

// All seeds every table. Seeding is idempotent: existing usernames and
// attendance days are skipped, locations are upserted.
func All(ctx context.Context, r Repos, bcryptCost int, zone *time.Location) error {
	if err := Admins(ctx, r, bcryptCost); err != nil {
		return fmt.Errorf("seed admins: %w", err)
	}
	if err := Users(ctx, r, bcryptCost); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := Locations(ctx, r); err != nil {
		return fmt.Errorf("seed locations: %w", err)
	}
	if err := Attendances(ctx, r, zone); err != nil {
		return fmt.Errorf("seed attendances: %w", err)
	}
	return nil
}

// Admins creates the initial administrator account.
func Admins(ctx context.Context, r Repos, bcryptCost int) error {
	_, err := r.Users.Create(ctx, "admin", "admin123", "Administrator", repository.RoleAdmin, "", bcryptCost)
	if errors.Is(err, repository.ErrUsernameExists) {
		return nil
	}
	return err
}

// Users creates the sample teaching staff.
func Users(ctx context.Context, r Repos, bcryptCost int) error {
	sample := []struct {
		username, password, fullName, division string
	}{
		{"john.doe", "password123", "John Doe", "Mathematics"},
		{"jane.smith", "password123", "Jane Smith", "Science"},
		{"bob.wilson", "password123", "Bob Wilson", "English"},
	}
	for _, u := range sample {
		_, err := r.Users.Create(ctx, u.username, u.password, u.fullName, repository.RoleUser, u.division, bcryptCost)
		if err != nil && !errors.Is(err, repository.ErrUsernameExists) {
			return err
		}
	}
	return nil
}

// Locations upserts the permitted attendance sites.
func Locations(ctx context.Context, r Repos) error {
	sample := []repository.Location{
		{
			ID:          "LOC001",
			Name:        "Main Building",
			ShortName:   "MAIN",
			Latitude:    "-7.123456",
			Longitude:   "110.123456",
			Description: sql.NullString{String: "Main school building entrance", Valid: true},
		},
		{
			ID:          "LOC002",
			Name:        "Science Building",
			ShortName:   "SCI",
			Latitude:    "-7.123457",
			Longitude:   "110.123457",
			Description: sql.NullString{String: "Science department building entrance", Valid: true},
		},
	}
	for _, l := range sample {
		if err := r.Locations.Upsert(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

// Attendances writes completed sample records for john.doe covering the
// last five days: check-in 07:30, check-out 16:00 local time. Days that
// already have a record are left alone.
func Attendances(ctx context.Context, r Repos, zone *time.Location) error {
	user, err := r.Users.GetByUsername(ctx, "john.doe")
	if err != nil {
		if errors.Is(err, repository.ErrPrincipalNotFound) {
			return nil
		}
		return err
	}
	loc, err := r.Locations.GetByID(ctx, "LOC001")
	if err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return nil
		}
		return err
	}

	now := time.Now().In(zone)
	for i := 0; i < 5; i++ {
		day := now.AddDate(0, 0, -i)
		date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, zone)
		rec := repository.Attendance{
			UserID:            user.ID,
			AttendanceDate:    date,
			CheckIn:           time.Date(day.Year(), day.Month(), day.Day(), 7, 30, 0, 0, zone),
			CheckInLocationID: loc.ID,
			Status:            repository.StatusPresent,
			Notes:             sql.NullString{String: "Regular attendance", Valid: true},
		}
		err := r.Attendances.Create(ctx, &rec)
		if errors.Is(err, repository.ErrAlreadyCheckedIn) {
			continue
		}
		if err != nil {
			return err
		}
		out := time.Date(day.Year(), day.Month(), day.Day(), 16, 0, 0, 0, zone)
		if err := r.Attendances.SetCheckOut(ctx, rec.ID, out, loc.ID); err != nil {
			return err
		}
	}
	return nil
}
