package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/attendance-tracker/internal/repository"
)

// LocationLister is the read-only slice of the location repository the
// handler needs. Satisfied by repository.LocationRepo.
type LocationLister interface {
	List(ctx context.Context) ([]repository.Location, error)
}

// LocationHandler serves the permitted attendance sites.
type LocationHandler struct {
	Locations LocationLister
}

func NewLocationHandler(locations LocationLister) *LocationHandler {
	return &LocationHandler{Locations: locations}
}

type locationResp struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// List handles GET /api/get_permitted_locations. The response is a plain
// array ordered by location id.
func (h *LocationHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	locs, err := h.Locations.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	out := make([]locationResp, 0, len(locs))
	for _, l := range locs {
		out = append(out, locationResp{
			ID:        l.ID,
			Name:      l.Name,
			ShortName: l.ShortName,
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
		})
	}
	return c.JSON(http.StatusOK, out)
}
