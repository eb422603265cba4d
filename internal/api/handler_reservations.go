package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"desk-reservation-backend/internal/parse"
	"desk-reservation-backend/internal/schedule"
)

type reserveDeskForm struct {
	DeskID        string `form:"desk_id" binding:"required"`
	StartDatetime string `form:"start_datetime" binding:"required,datetime_minute"`
	EndDatetime   string `form:"end_datetime" binding:"required,datetime_minute"`
}

type unreserveDeskForm struct {
	DeskID        string `form:"desk_id" binding:"required"`
	ReservationID string `form:"reservation_id"`
}

type reservationResponse struct {
	Message       string `json:"message"`
	QRCode        string `json:"qr_code"`
	ReservationID int64  `json:"reservation_id"`
}

type reservationInfoView struct {
	Message string
	QRCode  string
}

type userReservationView struct {
	ReservationID int64
	DeskID        int64
	DeskName      string
	StartTime     string
	EndTime       string
}

// ReserveDesk books a desk for the logged-in user and renders the confirmation.
func (h *Handler) ReserveDesk(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var form reserveDeskForm
	if err := c.ShouldBind(&form); err != nil {
		h.respondError(c, fmt.Errorf("invalid reservation form: %w", err))
		return
	}
	req, err := form.toRequest()
	if err != nil {
		h.respondError(c, err)
		return
	}
	req.User = *user

	booking, err := h.engine.Book(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.onChange()

	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(http.StatusOK, reservationResponse{
			Message:       booking.Confirmation.Message,
			QRCode:        booking.Confirmation.QRCode,
			ReservationID: booking.Reservation.ID,
		})
		return
	}
	c.HTML(http.StatusOK, "reservation_info.html", reservationInfoView{
		Message: booking.Confirmation.Message,
		QRCode:  booking.Confirmation.QRCode,
	})
}

func (f reserveDeskForm) toRequest() (schedule.BookingRequest, error) {
	deskID, err := parse.ID(f.DeskID)
	if err != nil {
		return schedule.BookingRequest{}, fmt.Errorf("invalid desk_id: %w", err)
	}
	start, err := parse.DateTime(f.StartDatetime)
	if err != nil {
		return schedule.BookingRequest{}, fmt.Errorf("invalid start_datetime: %w", err)
	}
	end, err := parse.DateTime(f.EndDatetime)
	if err != nil {
		return schedule.BookingRequest{}, fmt.Errorf("invalid end_datetime: %w", err)
	}
	return schedule.BookingRequest{DeskID: deskID, Start: start, End: end}, nil
}

// ReservationInfo renders the confirmation page without a booking.
// Confirmations are rendered by ReserveDesk directly.
func (h *Handler) ReservationInfo(c *gin.Context) {
	c.HTML(http.StatusOK, "reservation_info.html", reservationInfoView{
		Message: "No reservation info available.",
	})
}

// UserReservations lists the logged-in user's reservations.
func (h *Handler) UserReservations(c *gin.Context) {
	user, err := h.currentUser(c)
	if errors.Is(err, ErrNotLoggedIn) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	reservations, err := h.engine.UserReservations(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	rows := make([]userReservationView, 0, len(reservations))
	for _, r := range reservations {
		rows = append(rows, userReservationView{
			ReservationID: r.ReservationID,
			DeskID:        r.DeskID,
			DeskName:      r.DeskName,
			StartTime:     r.StartTime.Format(parse.ListLayout),
			EndTime:       r.EndTime.Format(parse.ListLayout),
		})
	}
	c.HTML(http.StatusOK, "user_reservations.html", gin.H{
		"Email":        user.Email,
		"Reservations": rows,
	})
}

// UnreserveDesk cancels one of the logged-in user's reservations on a desk.
func (h *Handler) UnreserveDesk(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var form unreserveDeskForm
	if err := c.ShouldBind(&form); err != nil {
		h.respondError(c, fmt.Errorf("invalid cancellation form: %w", err))
		return
	}
	deskID, err := parse.ID(form.DeskID)
	if err != nil {
		h.respondError(c, fmt.Errorf("invalid desk_id: %w", err))
		return
	}
	var reservationID int64
	if strings.TrimSpace(form.ReservationID) != "" {
		if reservationID, err = parse.ID(form.ReservationID); err != nil {
			h.respondError(c, fmt.Errorf("invalid reservation_id: %w", err))
			return
		}
	}

	_, err = h.engine.Cancel(c.Request.Context(), schedule.CancelRequest{
		DeskID:        deskID,
		UserID:        user.ID,
		ReservationID: reservationID,
	})
	if errors.Is(err, schedule.ErrReservationNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{
			Message: fmt.Sprintf("No reservation found for desk %d by this user.", deskID),
			Code:    "reservation_not_found",
		})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.onChange()

	c.Redirect(http.StatusFound, "/user_reservations")
}
