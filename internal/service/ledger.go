// Package service contains the attendance ledger and its supporting
// pieces. The ledger owns the rules: one record per user per calendar
// day, location binding, status derivation against the configured
// cutoff. Persistence and uniqueness are delegated to small store
// interfaces so the rules can be exercised without a database.
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/attendance-tracker/internal/queue"
	"github.com/iliyamo/attendance-tracker/internal/repository"
)

// LocationStore resolves a location id to its record. Satisfied by
// repository.LocationRepo.
type LocationStore interface {
	GetByID(ctx context.Context, id string) (repository.Location, error)
}

// AttendanceStore persists attendance records. Create must be atomic with
// respect to the (user_id, attendance_date) uniqueness key and return
// repository.ErrAlreadyCheckedIn on a duplicate; SetCheckOut must only
// close a still-open record and return repository.ErrAlreadyCheckedOut
// otherwise. Satisfied by repository.AttendanceRepo.
type AttendanceStore interface {
	Create(ctx context.Context, a *repository.Attendance) error
	GetByUserAndDate(ctx context.Context, userID uint64, date time.Time) (repository.Attendance, error)
	SetCheckOut(ctx context.Context, recordID uint64, at time.Time, locationID string) error
}

// Ledger applies the attendance rules on top of the stores. Zone is the
// deployment's fixed timezone; attendance_date and the lateness cutoff are
// both computed in it. Publish, when set, receives an event after each
// successful persistence; publish failures are logged and never fail the
// request.
type Ledger struct {
	Locations    LocationStore
	Records      AttendanceStore
	Zone         *time.Location
	CutoffHour   int
	CutoffMinute int
	Publish      func(ctx context.Context, ev queue.AttendanceEvent) error
}

// NewLedger constructs a Ledger. Locations and Records must be non-nil.
func NewLedger(locations LocationStore, records AttendanceStore, zone *time.Location, cutoffHour, cutoffMinute int) *Ledger {
	if locations == nil || records == nil {
		panic("nil store passed to NewLedger")
	}
	return &Ledger{
		Locations:    locations,
		Records:      records,
		Zone:         zone,
		CutoffHour:   cutoffHour,
		CutoffMinute: cutoffMinute,
	}
}

// day truncates a timestamp to its calendar day in the ledger zone.
func (l *Ledger) day(at time.Time) time.Time {
	local := at.In(l.Zone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, l.Zone)
}

// status derives present/late from the check-in time. At or before the
// cutoff counts as present.
func (l *Ledger) status(at time.Time) string {
	local := at.In(l.Zone)
	cutoff := time.Date(local.Year(), local.Month(), local.Day(), l.CutoffHour, l.CutoffMinute, 0, 0, l.Zone)
	if local.After(cutoff) {
		return repository.StatusLate
	}
	return repository.StatusPresent
}

// CheckIn creates the day's attendance record for a user. It fails with
// repository.ErrLocationNotFound when the location id is unknown and
// repository.ErrAlreadyCheckedIn when a record already exists for the
// day. Concurrent check-ins for the same user and day are serialized by
// the store's uniqueness key, so exactly one caller wins.
func (l *Ledger) CheckIn(ctx context.Context, user repository.User, locationID string, at time.Time) (repository.Attendance, error) {
	loc, err := l.Locations.GetByID(ctx, locationID)
	if err != nil {
		return repository.Attendance{}, err
	}
	rec := repository.Attendance{
		UserID:            user.ID,
		AttendanceDate:    l.day(at),
		CheckIn:           at.UTC(),
		CheckInLocationID: loc.ID,
		Status:            l.status(at),
	}
	if err := l.Records.Create(ctx, &rec); err != nil {
		return repository.Attendance{}, err
	}
	l.publish(ctx, user, queue.ActionCheckIn, loc, rec, at)
	return rec, nil
}

// CheckOut closes the day's open record. Ordering of the failures
// matters: a missing record means the user never checked in today
// (ErrNoOpenCheckIn), a closed record is immutable (ErrAlreadyCheckedOut),
// and only then is the location resolved. The store's conditional update
// re-checks the open state, so a racing second check-out still loses.
func (l *Ledger) CheckOut(ctx context.Context, user repository.User, locationID string, at time.Time) (repository.Attendance, error) {
	rec, err := l.Records.GetByUserAndDate(ctx, user.ID, l.day(at))
	if err != nil {
		if errors.Is(err, repository.ErrAttendanceNotFound) {
			return repository.Attendance{}, repository.ErrNoOpenCheckIn
		}
		return repository.Attendance{}, err
	}
	if rec.CheckOut.Valid {
		return repository.Attendance{}, repository.ErrAlreadyCheckedOut
	}
	loc, err := l.Locations.GetByID(ctx, locationID)
	if err != nil {
		return repository.Attendance{}, err
	}
	if err := l.Records.SetCheckOut(ctx, rec.ID, at, loc.ID); err != nil {
		return repository.Attendance{}, err
	}
	rec.CheckOut.Valid = true
	rec.CheckOut.Time = at.UTC()
	rec.CheckOutLocationID.Valid = true
	rec.CheckOutLocationID.String = loc.ID
	l.publish(ctx, user, queue.ActionCheckOut, loc, rec, at)
	return rec, nil
}

// Today returns the user's record for the current day, or ok=false when
// none exists yet.
func (l *Ledger) Today(ctx context.Context, user repository.User, now time.Time) (repository.Attendance, bool, error) {
	rec, err := l.Records.GetByUserAndDate(ctx, user.ID, l.day(now))
	if err != nil {
		if errors.Is(err, repository.ErrAttendanceNotFound) {
			return repository.Attendance{}, false, nil
		}
		return repository.Attendance{}, false, err
	}
	return rec, true, nil
}

func (l *Ledger) publish(ctx context.Context, user repository.User, action string, loc repository.Location, rec repository.Attendance, at time.Time) {
	if l.Publish == nil {
		return
	}
	ev := queue.AttendanceEvent{
		Username:       user.Username,
		FullName:       user.FullName,
		Action:         action,
		LocationID:     loc.ID,
		LocationName:   loc.Name,
		Status:         rec.Status,
		AttendanceDate: rec.AttendanceDate.Format("2006-01-02"),
		OccurredAt:     at.UTC().Format(time.RFC3339),
	}
	if err := l.Publish(ctx, ev); err != nil {
		log.Printf("ledger: publish %s event failed: %v", action, err)
	}
}
