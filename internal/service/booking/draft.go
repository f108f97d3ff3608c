package booking

import (
	"github.com/kirinyoku/railgo/internal/domain"
)

// Step is the stage a draft has reached on the way to a booking.
type Step string

const (
	StepEmpty          Step = "empty"
	StepSearchSet      Step = "search_set"
	StepTrainSelected  Step = "train_selected"
	StepSeatsSelecting Step = "seats_selecting"
	StepPassengersSet  Step = "passengers_set"
	StepCompleted      Step = "completed"
)

// Draft accumulates one user's choices until CompleteBooking turns them into
// a booking. It is not safe for concurrent use; Sessions serializes access.
//
// The draft itself only records what it is told: seat availability, duplicates
// and the passenger limit are checked by SelectSeat, not by AddSeat.
type Draft struct {
	id             string
	searchParams   *domain.SearchParams
	results        []domain.Train
	selectedTrain  *domain.Train
	selectedSeats  []domain.SelectedSeat
	passengers     []domain.Passenger
	currentBooking *domain.Booking
}

func NewDraft(id string) *Draft {
	return &Draft{id: id}
}

func (d *Draft) ID() string { return d.id }

// SetSearchParams records the search. Earlier selections are kept.
func (d *Draft) SetSearchParams(p domain.SearchParams) {
	d.searchParams = &p
}

// SetResults remembers the trains returned for the current search.
func (d *Draft) SetResults(trains []domain.Train) {
	d.results = trains
}

// SetSelectedTrain replaces the train and drops every selected seat.
func (d *Draft) SetSelectedTrain(t domain.Train) {
	cp := t.Clone()
	d.selectedTrain = &cp
	d.selectedSeats = nil
}

// AddSeat appends seat as given.
func (d *Draft) AddSeat(seat domain.SelectedSeat) {
	d.selectedSeats = append(d.selectedSeats, seat)
}

// RemoveSeat drops the first selected seat with the id; unknown ids are ignored.
func (d *Draft) RemoveSeat(seatID string) {
	for i, s := range d.selectedSeats {
		if s.SeatID == seatID {
			d.selectedSeats = append(d.selectedSeats[:i:i], d.selectedSeats[i+1:]...)
			return
		}
	}
}

func (d *Draft) ClearSeats() {
	d.selectedSeats = nil
}

// SetPassengers replaces the passenger list wholesale.
func (d *Draft) SetPassengers(list []domain.Passenger) {
	d.passengers = append([]domain.Passenger(nil), list...)
}

func (d *Draft) TotalAmount() int64 {
	return domain.SeatsTotal(d.selectedSeats)
}

// Reset returns the draft to its initial empty state.
func (d *Draft) Reset() {
	*d = Draft{id: d.id}
}

func (d *Draft) SearchParams() (domain.SearchParams, bool) {
	if d.searchParams == nil {
		return domain.SearchParams{}, false
	}
	return *d.searchParams, true
}

func (d *Draft) Results() []domain.Train {
	return d.results
}

func (d *Draft) SelectedTrain() (domain.Train, bool) {
	if d.selectedTrain == nil {
		return domain.Train{}, false
	}
	return d.selectedTrain.Clone(), true
}

func (d *Draft) SelectedSeats() []domain.SelectedSeat {
	return append([]domain.SelectedSeat(nil), d.selectedSeats...)
}

func (d *Draft) Passengers() []domain.Passenger {
	return append([]domain.Passenger(nil), d.passengers...)
}

func (d *Draft) CurrentBooking() (domain.Booking, bool) {
	if d.currentBooking == nil {
		return domain.Booking{}, false
	}
	return *d.currentBooking, true
}

func (d *Draft) IsSeatSelected(seatID string) bool {
	for _, s := range d.selectedSeats {
		if s.SeatID == seatID {
			return true
		}
	}
	return false
}

// MaxSeats is the passenger count of the search, or 0 before a search.
func (d *Draft) MaxSeats() int {
	if d.searchParams == nil {
		return 0
	}
	return d.searchParams.Passengers
}

func (d *Draft) Step() Step {
	switch {
	case d.currentBooking != nil:
		return StepCompleted
	case d.selectedTrain != nil && len(d.passengers) > 0 && len(d.selectedSeats) > 0:
		return StepPassengersSet
	case d.selectedTrain != nil && len(d.selectedSeats) > 0:
		return StepSeatsSelecting
	case d.selectedTrain != nil:
		return StepTrainSelected
	case d.searchParams != nil:
		return StepSearchSet
	default:
		return StepEmpty
	}
}

// View is a read-only copy of a draft for callers outside the lock.
type View struct {
	ID             string                `json:"id"`
	Step           Step                  `json:"step"`
	SearchParams   *domain.SearchParams  `json:"searchParams"`
	SelectedTrain  *domain.Train         `json:"selectedTrain"`
	SelectedSeats  []domain.SelectedSeat `json:"selectedSeats"`
	Passengers     []domain.Passenger    `json:"passengers"`
	TotalAmount    int64                 `json:"totalAmount"`
	MaxSeats       int                   `json:"maxSeats"`
	CurrentBooking *domain.Booking       `json:"currentBooking"`
}

func (d *Draft) View() View {
	v := View{
		ID:            d.id,
		Step:          d.Step(),
		SelectedSeats: d.SelectedSeats(),
		Passengers:    d.Passengers(),
		TotalAmount:   d.TotalAmount(),
		MaxSeats:      d.MaxSeats(),
	}

	if p, ok := d.SearchParams(); ok {
		v.SearchParams = &p
	}
	if t, ok := d.SelectedTrain(); ok {
		v.SelectedTrain = &t
	}
	if b, ok := d.CurrentBooking(); ok {
		v.CurrentBooking = &b
	}
	if v.SelectedSeats == nil {
		v.SelectedSeats = []domain.SelectedSeat{}
	}
	if v.Passengers == nil {
		v.Passengers = []domain.Passenger{}
	}

	return v
}
