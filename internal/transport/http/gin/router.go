package httpgin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/kirinyoku/railgo/internal/service"
	"github.com/kirinyoku/railgo/internal/service/auth"
	"github.com/kirinyoku/railgo/internal/service/booking"
	"github.com/kirinyoku/railgo/internal/service/prefs"
	"github.com/kirinyoku/railgo/internal/validate"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Options struct {
	// Idempotency makes checkout replay-safe; nil disables Idempotency-Key handling.
	Idempotency Idempotency
	// CheckoutLimiter throttles checkout per client IP; nil disables it.
	CheckoutLimiter Limiter
	Clock           func() time.Time
}

func NewRouter(
	svcs *service.Services,
	opts Options,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	useJSONFieldNames()

	r := gin.New()

	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(logger), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/stations", handleListStations(svcs))
	r.GET("/trains", handleSearchTrains(svcs, opts.Clock))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", handleRegister(svcs))
		authGroup.POST("/login", handleLogin(svcs))
		authGroup.POST("/logout", handleLogout(svcs))
		authGroup.GET("/me", handleMe(svcs))
	}

	checkout := []gin.HandlerFunc{handleCheckout(svcs, opts.Idempotency, opts.Clock)}
	if opts.CheckoutLimiter != nil {
		checkout = append([]gin.HandlerFunc{RateLimit(opts.CheckoutLimiter, logger)}, checkout...)
	}

	drafts := r.Group("/drafts")
	{
		drafts.POST("", handleCreateDraft(svcs))
		drafts.GET("/:id", handleGetDraft(svcs))
		drafts.DELETE("/:id", handleResetDraft(svcs))
		drafts.PUT("/:id/search", handleDraftSearch(svcs, opts.Clock))
		drafts.PUT("/:id/train", handleSelectTrain(svcs))
		drafts.POST("/:id/seats", handleSelectSeat(svcs))
		drafts.DELETE("/:id/seats/:seat_id", handleRemoveSeat(svcs))
		drafts.GET("/:id/passengers/prefill", handlePrefillPassengers(svcs))
		drafts.PUT("/:id/passengers", handleSetPassengers(svcs))
		drafts.POST("/:id/checkout", checkout...)
	}

	bookings := r.Group("/bookings")
	{
		bookings.GET("", handleListBookings(svcs))
		bookings.GET("/:id", handleGetBooking(svcs))
		bookings.GET("/:id/refund", handlePreviewRefund(svcs))
		bookings.POST("/:id/cancel", handleCancelBooking(svcs))
	}

	r.GET("/preferences", handleGetPreferences(svcs))
	r.PUT("/preferences", handleUpdatePreferences(svcs))

	return r
}

// @Summary  List stations
// @Success  200  {array}  domain.Station
// @Router   /stations [get]
func handleListStations(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Search.Stations(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, list, "public, max-age=3600")
	}
}

// @Summary  Search trains
// @Param    origin       query  string  true   "Origin station code"
// @Param    destination  query  string  true   "Destination station code"
// @Param    date         query  string  true   "Travel date (YYYY-MM-DD)"
// @Param    passengers   query  int     false  "Passenger count, default 1"
// @Success  200  {array}   domain.Train
// @Failure  422  {object}  ValidationErrorResponse
// @Router   /trains [get]
func handleSearchTrains(svcs *service.Services, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q SearchRequest
		errs, err := bind(c, binding.Query, &q)
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		p := q.params()
		if !errs.Valid() {
			respondErr(c, merge(errs, validate.SearchParams(p, now())).Err())
			return
		}

		trains, err := svcs.Search.Trains(c.Request.Context(), p)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, trains)
	}
}

// --- Helpers ---

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// errMapping is checked in order; msg overrides the sentinel text when set.
var errMapping = []struct {
	err    error
	status int
	msg    string
}{
	{auth.ErrEmailTaken, http.StatusConflict, "Email already registered"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{auth.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{prefs.ErrNoClient, http.StatusUnauthorized, ""},

	{booking.ErrDraftNotFound, http.StatusNotFound, ""},
	{booking.ErrBookingNotFound, http.StatusNotFound, ""},
	{booking.ErrTrainNotFound, http.StatusNotFound, ""},
	{booking.ErrSeatNotFound, http.StatusNotFound, ""},
	{booking.ErrInvalidBookingState, http.StatusConflict, ""},
	{booking.ErrNoSearch, http.StatusConflict, ""},
	{booking.ErrNoTrain, http.StatusConflict, ""},
	{booking.ErrSeatLimit, http.StatusConflict, ""},
	{booking.ErrSeatSelected, http.StatusConflict, ""},
	{booking.ErrSeatUnavailable, http.StatusConflict, ""},
	{booking.ErrPassengerCount, http.StatusConflict, ""},
	{booking.ErrPNRExhausted, http.StatusServiceUnavailable, "try again"},

	{context.Canceled, http.StatusRequestTimeout, "request cancelled"},
	{context.DeadlineExceeded, http.StatusRequestTimeout, "request cancelled"},
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var fe *validate.FieldError
	if errors.As(err, &fe) {
		c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{Errors: fe.Fields})
		return
	}

	var rl auth.RateLimitedError
	if errors.As(err, &rl) {
		c.Header("Retry-After", retryAfterSeconds(rl.RetryAfter))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
		return
	}

	for _, m := range errMapping {
		if errors.Is(err, m.err) {
			msg := m.msg
			if msg == "" {
				msg = m.err.Error()
			}
			c.JSON(m.status, ErrorResponse{Error: msg})
			return
		}
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
