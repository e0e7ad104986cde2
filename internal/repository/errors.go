// Package repository defines error values that are reused across multiple
// repositories. These sentinel values let higher layers such as handlers
// distinguish between failure scenarios without inspecting driver errors.
// For example, ErrAlreadyCheckedIn surfaces a uniqueness-constraint
// violation on (user_id, attendance_date) as a domain conflict rather than
// a raw MySQL error.
package repository

import "errors"

// ErrPrincipalNotFound is returned when no user or admin exists for the
// requested username or id. Handlers translate this into HTTP 404.
var ErrPrincipalNotFound = errors.New("principal not found")

// ErrUsernameExists is returned when creating a principal whose username
// is already taken. Handlers translate this into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrLocationNotFound is returned when a referenced attendance location
// does not exist. Handlers translate this into HTTP 404.
var ErrLocationNotFound = errors.New("location not found")

// ErrAlreadyCheckedIn is returned when a check-in is attempted for a
// (user, date) pair that already has a record. Handlers translate this
// into HTTP 409.
var ErrAlreadyCheckedIn = errors.New("already checked in")

// ErrAlreadyCheckedOut is returned when a check-out is attempted on a
// record whose check_out is already set. Completed records are immutable.
// Handlers translate this into HTTP 409.
var ErrAlreadyCheckedOut = errors.New("already checked out")

// ErrNoOpenCheckIn is returned when a check-out is attempted before any
// check-in exists for the day. Handlers translate this into HTTP 409.
var ErrNoOpenCheckIn = errors.New("no open check-in for today")

// ErrAttendanceNotFound is returned by lookups when no record exists for
// the requested (user, date) pair.
var ErrAttendanceNotFound = errors.New("attendance record not found")
