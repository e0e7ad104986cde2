// Package queue defines the message payloads exchanged over the broker
// and the background consumer that turns them into an audit log.
package queue

// Attendance event actions.
const (
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
)

// AttendanceEvent is published after an attendance record is created or
// closed. It carries enough information for downstream consumers to log
// or notify without querying the primary database.
type AttendanceEvent struct {
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	Action         string `json:"action"` // check_in | check_out
	LocationID     string `json:"location_id"`
	LocationName   string `json:"location_name"`
	Status         string `json:"status"`
	AttendanceDate string `json:"attendance_date"` // YYYY-MM-DD in the deployment zone
	OccurredAt     string `json:"occurred_at"`     // RFC3339 UTC
}
