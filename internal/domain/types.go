package domain

import (
	"time"
)

type TrainType string

const (
	TrainHighSpeed TrainType = "high-speed"
	TrainExpress   TrainType = "express"
	TrainRegional  TrainType = "regional"
)

type SeatClass string

const (
	ClassFirst    SeatClass = "first"
	ClassBusiness SeatClass = "business"
	ClassEconomy  SeatClass = "economy"
)

// SeatClasses lists the classes in display order.
var SeatClasses = []SeatClass{ClassFirst, ClassBusiness, ClassEconomy}

type SeatPosition string

const (
	PositionWindow SeatPosition = "window"
	PositionAisle  SeatPosition = "aisle"
	PositionMiddle SeatPosition = "middle"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

type RefundStatus string

const (
	RefundPending    RefundStatus = "pending"
	RefundProcessing RefundStatus = "processing"
	RefundCompleted  RefundStatus = "completed"
	RefundFailed     RefundStatus = "failed"
)

type Station struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
}

type Seat struct {
	ID          string       `json:"id"`
	Number      string       `json:"number"`
	Position    SeatPosition `json:"position"`
	IsAvailable bool         `json:"isAvailable"`
}

type Coach struct {
	ID     string    `json:"id"`
	Number string    `json:"number"`
	Class  SeatClass `json:"class"`
	Seats  []Seat    `json:"seats"`
}

type Train struct {
	ID            string              `json:"id"`
	Number        string              `json:"number"`
	Name          string              `json:"name"`
	Type          TrainType           `json:"type"`
	Origin        Station             `json:"origin"`
	Destination   Station             `json:"destination"`
	DepartureTime string              `json:"departureTime"`
	ArrivalTime   string              `json:"arrivalTime"`
	Duration      string              `json:"duration"`
	Pricing       map[SeatClass]int64 `json:"pricing"`
	Coaches       []Coach             `json:"coaches"`
}

// Clone returns a deep copy, so a booking keeps its own snapshot of the train.
func (t Train) Clone() Train {
	cp := t

	if t.Pricing != nil {
		cp.Pricing = make(map[SeatClass]int64, len(t.Pricing))
		for k, v := range t.Pricing {
			cp.Pricing[k] = v
		}
	}

	if t.Coaches != nil {
		cp.Coaches = make([]Coach, len(t.Coaches))
		for i, c := range t.Coaches {
			cp.Coaches[i] = c
			cp.Coaches[i].Seats = append([]Seat(nil), c.Seats...)
		}
	}

	return cp
}

// Coach returns the coach with the given id.
func (t *Train) Coach(id string) (*Coach, bool) {
	for i := range t.Coaches {
		if t.Coaches[i].ID == id {
			return &t.Coaches[i], true
		}
	}
	return nil, false
}

// Seat returns the seat with the given id inside the coach.
func (c *Coach) Seat(id string) (*Seat, bool) {
	for i := range c.Seats {
		if c.Seats[i].ID == id {
			return &c.Seats[i], true
		}
	}
	return nil, false
}

// SelectedSeat is a chosen seat with its price locked in at selection time.
type SelectedSeat struct {
	CoachID     string    `json:"coachId"`
	CoachNumber string    `json:"coachNumber"`
	SeatID      string    `json:"seatId"`
	SeatNumber  string    `json:"seatNumber"`
	Class       SeatClass `json:"class"`
	Price       int64     `json:"price"`
}

type Passenger struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Age       int    `json:"age"`
}

type SearchParams struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
	Passengers  int    `json:"passengers"`
}

type Refund struct {
	Amount        int64        `json:"amount"`
	Percentage    int          `json:"percentage"`
	Status        RefundStatus `json:"status"`
	Reason        string       `json:"reason"`
	RequestedAt   time.Time    `json:"requestedAt"`
	EstimatedDays int          `json:"estimatedDays"`
}

type Booking struct {
	ID          string         `json:"id"`
	PNR         string         `json:"pnr"`
	Train       Train          `json:"train"`
	Passengers  []Passenger    `json:"passengers"`
	Seats       []SelectedSeat `json:"seats"`
	TravelDate  string         `json:"travelDate"`
	TotalAmount int64          `json:"totalAmount"`
	Status      BookingStatus  `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	Refund      *Refund        `json:"refund,omitempty"`
}

// SeatsTotal sums the locked-in seat prices.
func SeatsTotal(seats []SelectedSeat) int64 {
	var sum int64
	for _, s := range seats {
		sum += s.Price
	}
	return sum
}

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

type Preferences struct {
	Theme    Theme    `json:"theme"`
	Language Language `json:"language"`
}

// DefaultPreferences mirrors a fresh browser profile.
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeLight, Language: LanguageEnglish}
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Phone           string `json:"phone"`
}

// Payment carries card details for the simulated checkout. It is never persisted.
type Payment struct {
	CardNumber string `json:"cardNumber"`
	CardHolder string `json:"cardHolder"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
}
