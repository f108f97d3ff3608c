package httpgin

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/kirinyoku/railgo/internal/domain"
	redisx "github.com/kirinyoku/railgo/internal/redis"
	redisrepo "github.com/kirinyoku/railgo/internal/repository/redis"
	"github.com/kirinyoku/railgo/internal/service"
	"github.com/kirinyoku/railgo/internal/service/booking"
	"github.com/kirinyoku/railgo/internal/validate"
)

// withDraft runs fn on the draft named by the :id param and answers with its view.
func withDraft(c *gin.Context, svcs *service.Services, fn func(d *booking.Draft) error) {
	var view booking.View
	err := svcs.Drafts.With(c.Param("id"), func(d *booking.Draft) error {
		if err := fn(d); err != nil {
			return err
		}
		view = d.View()
		return nil
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary  Start a booking draft
// @Success  201  {object}  CreateDraftResponse
// @Router   /drafts [post]
func handleCreateDraft(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusCreated, CreateDraftResponse{ID: svcs.Drafts.Create()})
	}
}

// @Summary  Get draft
// @Param    id  path  string  true  "Draft ID"
// @Success  200  {object}  booking.View
// @Failure  404  {object}  ErrorResponse
// @Router   /drafts/{id} [get]
func handleGetDraft(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		withDraft(c, svcs, func(*booking.Draft) error { return nil })
	}
}

// @Summary  Reset draft
// @Param    id  path  string  true  "Draft ID"
// @Success  200  {object}  booking.View
// @Router   /drafts/{id} [delete]
func handleResetDraft(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		withDraft(c, svcs, func(d *booking.Draft) error {
			d.Reset()
			return nil
		})
	}
}

// @Summary  Search trains for a draft
// @Param    id   path  string         true  "Draft ID"
// @Param    req  body  SearchRequest  true  "search form"
// @Success  200  {object}  SearchResponse
// @Failure  422  {object}  ValidationErrorResponse
// @Router   /drafts/{id}/search [put]
func handleDraftSearch(svcs *service.Services, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body SearchRequest
		errs, err := bind(c, binding.JSON, &body)
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		req := body.params()
		if !errs.Valid() {
			respondErr(c, merge(errs, validate.SearchParams(req, now())).Err())
			return
		}

		trains, err := svcs.Search.Trains(c.Request.Context(), req)
		if err != nil {
			respondErr(c, err)
			return
		}

		var view booking.View
		err = svcs.Drafts.With(c.Param("id"), func(d *booking.Draft) error {
			d.SetSearchParams(req)
			d.SetResults(trains)
			view = d.View()
			return nil
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, SearchResponse{Draft: view, Trains: trains})
	}
}

// @Summary  Select train
// @Param    id   path  string              true  "Draft ID"
// @Param    req  body  SelectTrainRequest  true  "payload"
// @Success  200  {object}  booking.View
// @Failure  404  {object}  ErrorResponse  "train not in results"
// @Failure  409  {object}  ErrorResponse  "no search yet"
// @Router   /drafts/{id}/train [put]
func handleSelectTrain(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SelectTrainRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		withDraft(c, svcs, func(d *booking.Draft) error {
			return booking.SelectTrain(d, req.TrainID)
		})
	}
}

// @Summary  Select seat
// @Param    id   path  string             true  "Draft ID"
// @Param    req  body  SelectSeatRequest  true  "payload"
// @Success  201  {object}  SelectSeatResponse
// @Failure  409  {object}  ErrorResponse  "unavailable / duplicate / over capacity"
// @Router   /drafts/{id}/seats [post]
func handleSelectSeat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SelectSeatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		var resp SelectSeatResponse
		err := svcs.Drafts.With(c.Param("id"), func(d *booking.Draft) error {
			seat, err := booking.SelectSeat(d, req.CoachID, req.SeatID)
			if err != nil {
				return err
			}
			resp = SelectSeatResponse{Seat: seat, Draft: d.View()}
			return nil
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Remove seat
// @Param    id       path  string  true  "Draft ID"
// @Param    seat_id  path  string  true  "Seat ID"
// @Success  200  {object}  booking.View
// @Router   /drafts/{id}/seats/{seat_id} [delete]
func handleRemoveSeat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		withDraft(c, svcs, func(d *booking.Draft) error {
			d.RemoveSeat(c.Param("seat_id"))
			return nil
		})
	}
}

// @Summary  Passenger forms prefilled for the signed-in user
// @Param    id  path  string  true  "Draft ID"
// @Success  200  {array}  domain.Passenger
// @Router   /drafts/{id}/passengers/prefill [get]
func handlePrefillPassengers(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user *domain.User
		if u, err := svcs.Auth.Current(c.Request.Context(), bearerToken(c)); err == nil {
			user = &u
		}

		var list []domain.Passenger
		err := svcs.Drafts.With(c.Param("id"), func(d *booking.Draft) error {
			if existing := d.Passengers(); len(existing) == d.MaxSeats() && len(existing) > 0 {
				list = existing
				return nil
			}
			list = booking.PrefillPassengers(user, d.MaxSeats())
			return nil
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, list)
	}
}

// @Summary  Store passengers
// @Param    id   path  string             true  "Draft ID"
// @Param    req  body  PassengersRequest  true  "one entry per searched passenger"
// @Success  200  {object}  booking.View
// @Failure  409  {object}  ErrorResponse  "count mismatch / nothing selected"
// @Failure  422  {object}  ValidationErrorResponse
// @Router   /drafts/{id}/passengers [put]
func handleSetPassengers(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PassengersRequest
		errs, err := bind(c, binding.JSON, &req)
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		list := req.list()
		if err := merge(errs, validate.Passengers(list)).Err(); err != nil {
			respondErr(c, err)
			return
		}

		withDraft(c, svcs, func(d *booking.Draft) error {
			return booking.AssignPassengers(d, list)
		})
	}
}

// @Summary  Pay and confirm the booking (idempotent)
// @Param    id   path  string           true  "Draft ID"
// @Param    req  body  CheckoutRequest  true  "card details"
// @Param    Idempotency-Key  header  string  false  "replay-safe retries"
// @Success  201  {object}  domain.Booking
// @Failure  409  {object}  ErrorResponse  "draft incomplete / idempotency key in progress"
// @Failure  422  {object}  ValidationErrorResponse
// @Failure  429  {object}  ErrorResponse  "rate limited"
// @Router   /drafts/{id}/checkout [post]
func handleCheckout(svcs *service.Services, idem Idempotency, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		draftID := c.Param("id")

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if err := validate.Payment(req.Payment, now()).Err(); err != nil {
			respondErr(c, err)
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var storageKey string
		if idem != nil && idemKey != "" {
			storageKey = redisx.KeyIdempotency("checkout", draftID, idemKey)

			if replay(c, idem, storageKey, idemKey) {
				return
			}

			locked, err := idem.AcquireLock(ctx, storageKey, idempotencyLockTTL)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if replay(c, idem, storageKey, idemKey) {
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		var b domain.Booking
		err := svcs.Drafts.With(draftID, func(d *booking.Draft) error {
			p, ok := d.SearchParams()
			if !ok {
				return booking.ErrInvalidBookingState
			}
			if err := booking.ReadyForCheckout(d); err != nil {
				return err
			}

			var err error
			b, err = svcs.Booking.CompleteBooking(ctx, d, p.Date)
			return err
		})
		if err != nil {
			if storageKey != "" {
				_ = idem.Release(ctx, storageKey)
			}
			respondErr(c, err)
			return
		}

		body, err := json.Marshal(b)
		if err != nil {
			respondErr(c, err)
			return
		}

		if storageKey != "" {
			_ = idem.SaveResult(ctx, storageKey, redisrepo.StoredResponse{Status: http.StatusCreated, Body: body})
			c.Header("Idempotency-Key", idemKey)
		}

		c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
	}
}
