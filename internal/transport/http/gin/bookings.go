package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/railgo/internal/service"
)

// @Summary  List bookings, newest first
// @Success  200  {array}  domain.Booking
// @Router   /bookings [get]
func handleListBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Booking.List(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, list, "no-cache")
	}
}

// @Summary  Get booking
// @Param    id  path  string  true  "Booking ID"
// @Success  200  {object}  domain.Booking
// @Failure  404  {object}  ErrorResponse
// @Router   /bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svcs.Booking.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, b, "no-cache")
	}
}

// @Summary  Preview the refund for cancelling now
// @Param    id  path  string  true  "Booking ID"
// @Success  200  {object}  RefundResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /bookings/{id}/refund [get]
func handlePreviewRefund(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		res, err := svcs.Booking.PreviewRefund(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, RefundResponse{BookingID: id, Refund: res})
	}
}

// @Summary  Cancel booking
// @Param    id  path  string  true  "Booking ID"
// @Success  200  {object}  RefundResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /bookings/{id}/cancel [post]
func handleCancelBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		res, err := svcs.Booking.CancelBooking(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, RefundResponse{BookingID: id, Refund: res})
	}
}
