package booking

import (
	"fmt"
	"strconv"

	"github.com/kirinyoku/railgo/internal/domain"
)

// SelectTrain picks a train from the draft's last search results.
func SelectTrain(d *Draft, trainID string) error {
	if _, ok := d.SearchParams(); !ok {
		return ErrNoSearch
	}

	for _, t := range d.Results() {
		if t.ID == trainID {
			d.SetSelectedTrain(t)
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrTrainNotFound, trainID)
}

// SelectSeat adds a seat of the selected train at that coach's class price.
// It refuses unavailable seats, seats already chosen, and seats beyond the
// number of passengers searched for.
func SelectSeat(d *Draft, coachID, seatID string) (domain.SelectedSeat, error) {
	train := d.selectedTrain
	if train == nil {
		return domain.SelectedSeat{}, ErrNoTrain
	}

	coach, ok := train.Coach(coachID)
	if !ok {
		return domain.SelectedSeat{}, SeatError{CoachID: coachID, SeatID: seatID, Err: ErrSeatNotFound}
	}
	seat, ok := coach.Seat(seatID)
	if !ok {
		return domain.SelectedSeat{}, SeatError{CoachID: coachID, SeatID: seatID, Err: ErrSeatNotFound}
	}

	switch {
	case !seat.IsAvailable:
		return domain.SelectedSeat{}, SeatError{CoachID: coachID, SeatID: seatID, Err: ErrSeatUnavailable}
	case d.IsSeatSelected(seatID):
		return domain.SelectedSeat{}, SeatError{CoachID: coachID, SeatID: seatID, Err: ErrSeatSelected}
	case len(d.selectedSeats) >= d.MaxSeats():
		return domain.SelectedSeat{}, ErrSeatLimit
	}

	selected := domain.SelectedSeat{
		CoachID:     coach.ID,
		CoachNumber: coach.Number,
		SeatID:      seat.ID,
		SeatNumber:  seat.Number,
		Class:       coach.Class,
		Price:       train.Pricing[coach.Class],
	}
	d.AddSeat(selected)

	return selected, nil
}

// AssignPassengers stores the list if it has one entry per searched passenger.
func AssignPassengers(d *Draft, list []domain.Passenger) error {
	if d.selectedTrain == nil || len(d.selectedSeats) == 0 {
		return ErrInvalidBookingState
	}
	if len(list) != d.MaxSeats() {
		return fmt.Errorf("%w: got %d, want %d", ErrPassengerCount, len(list), d.MaxSeats())
	}

	d.SetPassengers(list)

	return nil
}

// ReadyForCheckout reports whether a draft may be paid for: not already
// completed, one seat and one passenger per searched passenger.
// CompleteBooking does not check this itself.
func ReadyForCheckout(d *Draft) error {
	if d.currentBooking != nil || d.selectedTrain == nil {
		return ErrInvalidBookingState
	}

	want := d.MaxSeats()
	if len(d.selectedSeats) != want {
		return fmt.Errorf("%w: %d seats selected, want %d", ErrPassengerCount, len(d.selectedSeats), want)
	}
	if len(d.passengers) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrPassengerCount, len(d.passengers), want)
	}

	return nil
}

// PrefillAge is the age filled in for the signed-in user.
const PrefillAge = 30

// PrefillPassengers returns n passenger slots. With a user, the first slot is
// filled from the user's profile; the others are blank.
func PrefillPassengers(user *domain.User, n int) []domain.Passenger {
	out := make([]domain.Passenger, n)
	for i := range out {
		out[i].ID = "passenger-" + strconv.Itoa(i)
	}

	if user != nil && n > 0 {
		out[0].FirstName = user.FirstName
		out[0].LastName = user.LastName
		out[0].Email = user.Email
		out[0].Phone = user.Phone
		out[0].Age = PrefillAge
	}

	return out
}
