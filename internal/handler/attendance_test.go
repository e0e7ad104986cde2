package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/attendance-tracker/internal/repository"
	"github.com/iliyamo/attendance-tracker/internal/service"
)

// In-memory stores mirroring the repository contracts, so the handlers
// can be driven end to end without a database.

type memLocations map[string]repository.Location

func (m memLocations) GetByID(_ context.Context, id string) (repository.Location, error) {
	l, ok := m[id]
	if !ok {
		return repository.Location{}, repository.ErrLocationNotFound
	}
	return l, nil
}

type memRecords struct {
	mu     sync.Mutex
	byDay  map[string]uint64
	byID   map[uint64]repository.Attendance
	nextID uint64
}

func newMemRecords() *memRecords {
	return &memRecords{byDay: map[string]uint64{}, byID: map[uint64]repository.Attendance{}}
}

func (m *memRecords) key(userID uint64, date time.Time) string {
	return fmt.Sprintf("%d|%s", userID, date.Format("2006-01-02"))
}

func (m *memRecords) Create(_ context.Context, a *repository.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.key(a.UserID, a.AttendanceDate)
	if _, exists := m.byDay[k]; exists {
		return repository.ErrAlreadyCheckedIn
	}
	m.nextID++
	a.ID = m.nextID
	m.byDay[k] = a.ID
	m.byID[a.ID] = *a
	return nil
}

func (m *memRecords) GetByUserAndDate(_ context.Context, userID uint64, date time.Time) (repository.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byDay[m.key(userID, date)]
	if !ok {
		return repository.Attendance{}, repository.ErrAttendanceNotFound
	}
	return m.byID[id], nil
}

func (m *memRecords) SetCheckOut(_ context.Context, recordID uint64, at time.Time, locationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[recordID]
	if !ok || rec.CheckOut.Valid {
		return repository.ErrAlreadyCheckedOut
	}
	rec.CheckOut.Valid = true
	rec.CheckOut.Time = at.UTC()
	rec.CheckOutLocationID.Valid = true
	rec.CheckOutLocationID.String = locationID
	m.byID[recordID] = rec
	return nil
}

func newAttendanceHandler(t *testing.T) *AttendanceHandler {
	t.Helper()
	ledger := service.NewLedger(
		memLocations{"1": {ID: "1", Name: "Main Building", ShortName: "MAIN"}},
		newMemRecords(),
		time.FixedZone("WIB", 7*3600),
		7, 30,
	)
	return NewAttendanceHandler(seedUsers(t), ledger)
}

func attendanceCtx(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		r, rec := postJSON(path, body)
		c := e.NewContext(r, rec)
		c.Set("username", "mrfu")
		return c, rec
	}
	req = httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "mrfu")
	return c, rec
}

func TestCheckInEndpoint(t *testing.T) {
	h := newAttendanceHandler(t)
	e := echo.New()

	// Missing location_id is a validation failure.
	c, rec := attendanceCtx(e, http.MethodPost, "/api/check_in", `{}`)
	if err := h.CheckIn(c); err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", rec.Code)
	}

	// Unknown location maps to 404.
	c, rec = attendanceCtx(e, http.MethodPost, "/api/check_in", `{"location_id":"nope"}`)
	if err := h.CheckIn(c); err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown location status = %d, want 404", rec.Code)
	}

	// First check-in succeeds and returns the record.
	c, rec = attendanceCtx(e, http.MethodPost, "/api/check_in", `{"location_id":"1"}`)
	if err := h.CheckIn(c); err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("check-in status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var resp attendanceResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.CheckInLocationID != "1" {
		t.Errorf("check_in_location_id = %q, want 1", resp.CheckInLocationID)
	}
	if resp.Status != repository.StatusPresent && resp.Status != repository.StatusLate {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.CheckOut != nil {
		t.Error("fresh record has check_out set")
	}

	// Second check-in the same day conflicts.
	c, rec = attendanceCtx(e, http.MethodPost, "/api/check_in", `{"location_id":"1"}`)
	if err := h.CheckIn(c); err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("repeat check-in status = %d, want 409", rec.Code)
	}
}

func TestCheckOutEndpoint(t *testing.T) {
	h := newAttendanceHandler(t)
	e := echo.New()

	// Check-out before check-in conflicts.
	c, rec := attendanceCtx(e, http.MethodPost, "/api/check_out", `{"location_id":"1"}`)
	if err := h.CheckOut(c); err != nil {
		t.Fatalf("CheckOut() error = %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("early check-out status = %d, want 409", rec.Code)
	}

	c, rec = attendanceCtx(e, http.MethodPost, "/api/check_in", `{"location_id":"1"}`)
	if err := h.CheckIn(c); err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("check-in status = %d", rec.Code)
	}

	c, rec = attendanceCtx(e, http.MethodPost, "/api/check_out", `{"location_id":"1"}`)
	if err := h.CheckOut(c); err != nil {
		t.Fatalf("CheckOut() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("check-out status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var resp attendanceResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.CheckOut == nil || resp.CheckOutLocationID == nil || *resp.CheckOutLocationID != "1" {
		t.Errorf("check_out not recorded: %+v", resp)
	}

	// A second check-out is rejected.
	c, rec = attendanceCtx(e, http.MethodPost, "/api/check_out", `{"location_id":"1"}`)
	if err := h.CheckOut(c); err != nil {
		t.Fatalf("CheckOut() error = %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("repeat check-out status = %d, want 409", rec.Code)
	}
}

func TestTodayEndpoint(t *testing.T) {
	h := newAttendanceHandler(t)
	e := echo.New()

	c, rec := attendanceCtx(e, http.MethodGet, "/api/attendance/today", "")
	if err := h.Today(c); err != nil {
		t.Fatalf("Today() error = %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("empty day status = %d, want 204", rec.Code)
	}

	c, rec = attendanceCtx(e, http.MethodPost, "/api/check_in", `{"location_id":"1"}`)
	if err := h.CheckIn(c); err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("check-in status = %d", rec.Code)
	}

	c, rec = attendanceCtx(e, http.MethodGet, "/api/attendance/today", "")
	if err := h.Today(c); err != nil {
		t.Fatalf("Today() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("today status = %d, want 200", rec.Code)
	}
	var resp attendanceResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.CheckInLocationID != "1" {
		t.Errorf("today record = %+v", resp)
	}
}
