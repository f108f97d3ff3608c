package booking

import (
	"testing"

	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTrain has one economy coach with three seats, the last one taken.
func testTrain() domain.Train {
	return domain.Train{
		ID:            "train-1",
		Number:        "905",
		Name:          "Express",
		Type:          domain.TrainExpress,
		DepartureTime: "07:00",
		ArrivalTime:   "09:30",
		Duration:      "2h 30m",
		Pricing: map[domain.SeatClass]int64{
			domain.ClassFirst:    320,
			domain.ClassBusiness: 200,
			domain.ClassEconomy:  150,
		},
		Coaches: []domain.Coach{{
			ID:     "coach-4",
			Number: "B1",
			Class:  domain.ClassEconomy,
			Seats: []domain.Seat{
				{ID: "coach-4-seat-1", Number: "1A", Position: domain.PositionWindow, IsAvailable: true},
				{ID: "coach-4-seat-2", Number: "1B", Position: domain.PositionAisle, IsAvailable: true},
				{ID: "coach-4-seat-3", Number: "1C", Position: domain.PositionMiddle, IsAvailable: false},
			},
		}},
	}
}

func readyDraft(passengers int) *Draft {
	d := NewDraft("d1")
	d.SetSearchParams(domain.SearchParams{Origin: "CAI", Destination: "ALX", Date: "2025-03-10", Passengers: passengers})
	d.SetResults([]domain.Train{testTrain()})
	return d
}

func TestSelectTrain(t *testing.T) {
	d := NewDraft("d1")
	assert.ErrorIs(t, SelectTrain(d, "train-1"), ErrNoSearch)

	d = readyDraft(1)
	assert.ErrorIs(t, SelectTrain(d, "train-99"), ErrTrainNotFound)

	require.NoError(t, SelectTrain(d, "train-1"))
	tr, ok := d.SelectedTrain()
	require.True(t, ok)
	assert.Equal(t, "905", tr.Number)
}

func TestSelectSeat(t *testing.T) {
	d := readyDraft(2)

	_, err := SelectSeat(d, "coach-4", "coach-4-seat-1")
	assert.ErrorIs(t, err, ErrNoTrain)

	require.NoError(t, SelectTrain(d, "train-1"))

	got, err := SelectSeat(d, "coach-4", "coach-4-seat-1")
	require.NoError(t, err)
	assert.Equal(t, int64(150), got.Price)
	assert.Equal(t, "B1", got.CoachNumber)
	assert.Equal(t, domain.ClassEconomy, got.Class)

	_, err = SelectSeat(d, "coach-4", "coach-4-seat-1")
	assert.ErrorIs(t, err, ErrSeatSelected)

	_, err = SelectSeat(d, "coach-4", "coach-4-seat-3")
	assert.ErrorIs(t, err, ErrSeatUnavailable)
	var se SeatError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "coach-4-seat-3", se.SeatID)

	_, err = SelectSeat(d, "coach-9", "coach-4-seat-2")
	assert.ErrorIs(t, err, ErrSeatNotFound)

	_, err = SelectSeat(d, "coach-4", "coach-4-seat-2")
	require.NoError(t, err)
	assert.Equal(t, int64(300), d.TotalAmount())

	d.RemoveSeat("coach-4-seat-2")
	d.SetResults([]domain.Train{testTrain()})
	d.SetSearchParams(domain.SearchParams{Passengers: 1})
	_, err = SelectSeat(d, "coach-4", "coach-4-seat-2")
	assert.ErrorIs(t, err, ErrSeatLimit)
}

func TestAssignPassengers(t *testing.T) {
	d := readyDraft(2)
	assert.ErrorIs(t, AssignPassengers(d, nil), ErrInvalidBookingState)

	require.NoError(t, SelectTrain(d, "train-1"))
	_, err := SelectSeat(d, "coach-4", "coach-4-seat-1")
	require.NoError(t, err)

	err = AssignPassengers(d, []domain.Passenger{{ID: "passenger-0"}})
	assert.ErrorIs(t, err, ErrPassengerCount)

	require.NoError(t, AssignPassengers(d, PrefillPassengers(nil, 2)))
	assert.Len(t, d.Passengers(), 2)
}

func TestPrefillPassengers(t *testing.T) {
	user := &domain.User{ID: "user-1", Email: "demo@egypt-railways.com", FirstName: "Ahmed", LastName: "Mohamed", Phone: "01012345678"}

	got := PrefillPassengers(user, 3)
	require.Len(t, got, 3)
	assert.Equal(t, domain.Passenger{
		ID:        "passenger-0",
		FirstName: "Ahmed",
		LastName:  "Mohamed",
		Email:     "demo@egypt-railways.com",
		Phone:     "01012345678",
		Age:       PrefillAge,
	}, got[0])
	assert.Equal(t, domain.Passenger{ID: "passenger-2"}, got[2])

	anon := PrefillPassengers(nil, 2)
	assert.Equal(t, domain.Passenger{ID: "passenger-0"}, anon[0])

	assert.Empty(t, PrefillPassengers(user, 0))
}

func TestReadyForCheckout(t *testing.T) {
	d := readyDraft(2)
	assert.ErrorIs(t, ReadyForCheckout(d), ErrInvalidBookingState)

	require.NoError(t, SelectTrain(d, "train-1"))
	_, err := SelectSeat(d, "coach-4", "coach-4-seat-1")
	require.NoError(t, err)

	// one seat short, no passengers
	assert.ErrorIs(t, ReadyForCheckout(d), ErrPassengerCount)

	// passengers alone do not make up for the missing seat
	require.NoError(t, AssignPassengers(d, PrefillPassengers(nil, 2)))
	assert.ErrorIs(t, ReadyForCheckout(d), ErrPassengerCount)

	_, err = SelectSeat(d, "coach-4", "coach-4-seat-2")
	require.NoError(t, err)
	assert.NoError(t, ReadyForCheckout(d))

	d.currentBooking = &domain.Booking{ID: "booking-1"}
	assert.ErrorIs(t, ReadyForCheckout(d), ErrInvalidBookingState)
}
