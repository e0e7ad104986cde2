package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Attendance status values. A record is created as present or late
// depending on the check-in time; absent is only ever written by
// administrative backfill.
const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
)

// Attendance mirrors the 'attendances' table. A row is the append-only
// audit record for one principal on one calendar day: created at first
// check-in, mutated exactly once to set the check-out pair, never deleted.
type Attendance struct {
	ID                 uint64
	UserID             uint64
	AttendanceDate     time.Time // DATE column; only Y/M/D are meaningful
	CheckIn            time.Time
	CheckInLocationID  string
	CheckOut           sql.NullTime
	CheckOutLocationID sql.NullString
	Status             string
	Notes              sql.NullString
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AttendanceRepo provides data access to the attendances table. The table
// carries a unique key on (user_id, attendance_date); Create relies on it
// for the one-record-per-day invariant instead of any check-then-insert
// logic in Go.
type AttendanceRepo struct{ DB *sql.DB }

func NewAttendanceRepo(db *sql.DB) *AttendanceRepo { return &AttendanceRepo{DB: db} }

const attendanceCols = "id,user_id,attendance_date,check_in,check_in_location_id,check_out,check_out_location_id,status,notes,created_at,updated_at"

func scanAttendance(row *sql.Row) (Attendance, error) {
	var a Attendance
	err := row.Scan(&a.ID, &a.UserID, &a.AttendanceDate, &a.CheckIn, &a.CheckInLocationID,
		&a.CheckOut, &a.CheckOutLocationID, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts a new attendance record and populates its generated ID.
// A duplicate-key violation on (user_id, attendance_date) is surfaced as
// ErrAlreadyCheckedIn; when two check-ins race, the database serializes
// them and exactly one caller sees the error.
func (r *AttendanceRepo) Create(ctx context.Context, a *Attendance) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO attendances (user_id, attendance_date, check_in, check_in_location_id, status, notes)
		 VALUES (?,?,?,?,?,?)`,
		a.UserID, a.AttendanceDate.Format("2006-01-02"), a.CheckIn.UTC(), a.CheckInLocationID, a.Status, a.Notes)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrAlreadyCheckedIn
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByUserAndDate fetches the record for a (user, calendar day) pair,
// returning ErrAttendanceNotFound when none exists.
func (r *AttendanceRepo) GetByUserAndDate(ctx context.Context, userID uint64, date time.Time) (Attendance, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+attendanceCols+" FROM attendances WHERE user_id=? AND attendance_date=? LIMIT 1",
		userID, date.Format("2006-01-02"))
	a, err := scanAttendance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Attendance{}, ErrAttendanceNotFound
	}
	return a, err
}

// SetCheckOut records the check-out pair on an open record. The WHERE
// clause only matches rows whose check_out is still NULL, so a second
// check-out can never overwrite the first even under concurrent calls;
// zero affected rows means the record was already closed.
func (r *AttendanceRepo) SetCheckOut(ctx context.Context, recordID uint64, at time.Time, locationID string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE attendances SET check_out=?, check_out_location_id=? WHERE id=? AND check_out IS NULL",
		at.UTC(), locationID, recordID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyCheckedOut
	}
	return nil
}

// ListByUser returns a user's records, newest first, bounded by limit.
// Used by the seeding CLI and kept small on purpose: the API itself only
// ever asks for today's record.
func (r *AttendanceRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]Attendance, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+attendanceCols+" FROM attendances WHERE user_id=? ORDER BY attendance_date DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attendance
	for rows.Next() {
		var a Attendance
		if err := rows.Scan(&a.ID, &a.UserID, &a.AttendanceDate, &a.CheckIn, &a.CheckInLocationID,
			&a.CheckOut, &a.CheckOutLocationID, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
