package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"desk-reservation-backend/internal/model"
	"desk-reservation-backend/internal/parse"
)

type reservationSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// GetDesks lists the configured desks.
func (h *Handler) GetDesks(c *gin.Context) {
	desks := h.engine.Desks()
	if desks == nil {
		desks = []model.Desk{}
	}
	c.JSON(http.StatusOK, desks)
}

// GetDeskReservations lists the reserved intervals of a desk.
func (h *Handler) GetDeskReservations(c *gin.Context) {
	deskID, err := parse.ID(c.Param("desk_id"))
	if err != nil {
		notFound(c)
		return
	}

	reservations, err := h.engine.DeskReservations(c.Request.Context(), deskID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	slots := make([]reservationSlot, 0, len(reservations))
	for _, r := range reservations {
		slots = append(slots, reservationSlot{
			StartTime: r.StartTime.Format(parse.FormLayout),
			EndTime:   r.EndTime.Format(parse.FormLayout),
		})
	}
	c.JSON(http.StatusOK, slots)
}

// GetMonthlyOccupancy maps every day of a month to its occupancy status.
func (h *Handler) GetMonthlyOccupancy(c *gin.Context) {
	deskID, err := parse.ID(c.Param("desk_id"))
	if err != nil {
		notFound(c)
		return
	}
	year, month, err := parse.YearMonth(c.Param("year"), c.Param("month"))
	if err != nil || year < 1 || year > 9999 {
		notFound(c)
		return
	}

	days, err := h.engine.MonthlyOccupancy(c.Request.Context(), deskID, year, month)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

func notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Message: "Not found.", Code: "not_found"})
}
