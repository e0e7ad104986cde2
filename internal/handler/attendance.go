package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/attendance-tracker/internal/repository"
	"github.com/iliyamo/attendance-tracker/internal/service"
)

// AttendanceHandler exposes check-in, check-out and the today lookup. All
// methods assume TokenGuard has already run; the authenticated username is
// read from the context and resolved to a principal before touching the
// ledger, so a deleted user can never create records.
type AttendanceHandler struct {
	Users  PrincipalStore
	Ledger *service.Ledger
}

func NewAttendanceHandler(users PrincipalStore, ledger *service.Ledger) *AttendanceHandler {
	if users == nil || ledger == nil {
		panic("nil dependency passed to NewAttendanceHandler")
	}
	return &AttendanceHandler{Users: users, Ledger: ledger}
}

type attendanceReq struct {
	LocationID string `json:"location_id"`
}

// attendanceResp is the wire shape of an attendance record. Dates are
// rendered in the deployment zone, timestamps in UTC RFC3339.
type attendanceResp struct {
	ID                 uint64     `json:"id"`
	AttendanceDate     string     `json:"attendance_date"`
	CheckIn            time.Time  `json:"check_in"`
	CheckInLocationID  string     `json:"check_in_location_id"`
	CheckOut           *time.Time `json:"check_out,omitempty"`
	CheckOutLocationID *string    `json:"check_out_location_id,omitempty"`
	Status             string     `json:"status"`
	Notes              *string    `json:"notes,omitempty"`
}

func newAttendanceResp(a repository.Attendance) attendanceResp {
	resp := attendanceResp{
		ID:                a.ID,
		AttendanceDate:    a.AttendanceDate.Format("2006-01-02"),
		CheckIn:           a.CheckIn.UTC(),
		CheckInLocationID: a.CheckInLocationID,
		Status:            a.Status,
	}
	if a.CheckOut.Valid {
		t := a.CheckOut.Time.UTC()
		resp.CheckOut = &t
	}
	if a.CheckOutLocationID.Valid {
		s := a.CheckOutLocationID.String
		resp.CheckOutLocationID = &s
	}
	if a.Notes.Valid {
		s := a.Notes.String
		resp.Notes = &s
	}
	return resp
}

// principal resolves the authenticated username from the context into a
// full user row.
func (h *AttendanceHandler) principal(c echo.Context, ctx context.Context) (repository.User, error) {
	username, _ := c.Get("username").(string)
	return h.Users.GetByUsername(ctx, username)
}

// CheckIn handles POST /api/check_in. Exactly one check-in per user per
// calendar day is accepted; the second attempt gets a 409.
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	var req attendanceReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.LocationID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "location_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.principal(c, ctx)
	if err != nil {
		if errors.Is(err, repository.ErrPrincipalNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	rec, err := h.Ledger.CheckIn(ctx, user, strings.TrimSpace(req.LocationID), time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLocationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Location not found"})
		case errors.Is(err, repository.ErrAlreadyCheckedIn):
			return c.JSON(http.StatusConflict, echo.Map{"message": "Already checked in today"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "check-in failed"})
		}
	}
	return c.JSON(http.StatusOK, newAttendanceResp(rec))
}

// CheckOut handles POST /api/check_out. It closes today's open record;
// checking out without a check-in or on an already-closed record is a 409.
func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	var req attendanceReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.LocationID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "location_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.principal(c, ctx)
	if err != nil {
		if errors.Is(err, repository.ErrPrincipalNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	rec, err := h.Ledger.CheckOut(ctx, user, strings.TrimSpace(req.LocationID), time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLocationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Location not found"})
		case errors.Is(err, repository.ErrNoOpenCheckIn):
			return c.JSON(http.StatusConflict, echo.Map{"message": "No check-in for today"})
		case errors.Is(err, repository.ErrAlreadyCheckedOut):
			return c.JSON(http.StatusConflict, echo.Map{"message": "Already checked out today"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "check-out failed"})
		}
	}
	return c.JSON(http.StatusOK, newAttendanceResp(rec))
}

// Today handles GET /api/attendance/today, the dashboard's lookup of the
// current day's record. No record yet is a 204, not an error.
func (h *AttendanceHandler) Today(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.principal(c, ctx)
	if err != nil {
		if errors.Is(err, repository.ErrPrincipalNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	rec, ok, err := h.Ledger.Today(ctx, user, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, newAttendanceResp(rec))
}
