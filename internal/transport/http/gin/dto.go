package httpgin

import (
	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/kirinyoku/railgo/internal/refund"
	"github.com/kirinyoku/railgo/internal/service/booking"
	"github.com/kirinyoku/railgo/internal/validate"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Errors validate.Errors `json:"errors"`
}

type CreateDraftResponse struct {
	ID string `json:"id"`
}

type SearchResponse struct {
	Draft  booking.View   `json:"draft"`
	Trains []domain.Train `json:"trains"`
}

type SelectTrainRequest struct {
	TrainID string `json:"trainId" binding:"required"`
}

type SelectSeatRequest struct {
	CoachID string `json:"coachId" binding:"required"`
	SeatID  string `json:"seatId" binding:"required"`
}

type SelectSeatResponse struct {
	Seat  domain.SelectedSeat `json:"seat"`
	Draft booking.View        `json:"draft"`
}

// SearchRequest is the search form, read from the JSON body or the query.
type SearchRequest struct {
	Origin      string `json:"origin" form:"origin"`
	Destination string `json:"destination" form:"destination"`
	Date        string `json:"date" form:"date"`
	Passengers  int    `json:"passengers" form:"passengers,default=1" binding:"min=1,max=6"`
}

func (r SearchRequest) params() domain.SearchParams {
	return domain.SearchParams{
		Origin:      r.Origin,
		Destination: r.Destination,
		Date:        r.Date,
		Passengers:  r.Passengers,
	}
}

type PassengerRequest struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Age       int    `json:"age" binding:"min=1,max=120"`
}

type PassengersRequest struct {
	Passengers []PassengerRequest `json:"passengers" binding:"required,max=6,dive"`
}

func (r PassengersRequest) list() []domain.Passenger {
	out := make([]domain.Passenger, len(r.Passengers))
	for i, p := range r.Passengers {
		out[i] = domain.Passenger(p)
	}
	return out
}

type CheckoutRequest struct {
	Payment domain.Payment `json:"payment"`
}

type RefundResponse struct {
	BookingID string        `json:"bookingId"`
	Refund    refund.Result `json:"refund"`
}
