// Package validate checks user-entered forms. Every function returns a map of
// field name to message; an empty map means the input is valid.
package validate

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/kirinyoku/railgo/internal/schedule"
)

const (
	MinPasswordLength = 6
	MaxPassengers     = 6
	BookingWindowDays = 90
	dateLayout        = "2006-01-02"
)

type Errors map[string]string

func (e Errors) Valid() bool { return len(e) == 0 }

// Err returns nil for a valid form and a *FieldError otherwise.
func (e Errors) Err() error {
	if e.Valid() {
		return nil
	}
	return &FieldError{Fields: e}
}

// FieldError carries per-field messages out of a service call.
type FieldError struct {
	Fields Errors
}

func (e *FieldError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return "invalid fields: " + strings.Join(keys, ", ")
}

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigit = regexp.MustCompile(`\D`)
	expiryRe = regexp.MustCompile(`^(\d{2})/(\d{2})$`)
)

func required(s string) bool { return strings.TrimSpace(s) != "" }

func digits(s string) string { return nonDigit.ReplaceAllString(s, "") }

func IsEmail(s string) bool { return emailRe.MatchString(s) }

// IsPhone accepts Egyptian mobile numbers: 11 digits starting with 01.
func IsPhone(s string) bool {
	d := digits(s)
	return len(d) == 11 && strings.HasPrefix(d, "01")
}

func IsAge(age int) bool { return age >= 1 && age <= 120 }

// IsCardNumber runs the Luhn checksum over 13 to 19 digits.
func IsCardNumber(s string) bool {
	d := digits(s)
	if len(d) < 13 || len(d) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(d) - 1; i >= 0; i-- {
		n := int(d[i] - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}

	return sum%10 == 0
}

func IsCVV(s string) bool {
	n := len(digits(s))
	return n >= 3 && n <= 4
}

// IsExpiry accepts MM/YY cards that are still valid during now's month.
func IsExpiry(s string, now time.Time) bool {
	m := expiryRe.FindStringSubmatch(s)
	if m == nil {
		return false
	}

	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return false
	}

	// first instant after the expiry month
	end := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())

	return end.After(now)
}

func checkEmail(errs Errors, email string) {
	switch {
	case !required(email):
		errs["email"] = "Email is required"
	case !IsEmail(email):
		errs["email"] = "Invalid email format"
	}
}

func checkPhone(errs Errors, phone string) {
	switch {
	case !required(phone):
		errs["phone"] = "Phone number is required"
	case !IsPhone(phone):
		errs["phone"] = "Invalid Egyptian phone number (11 digits starting with 01)"
	}
}

func checkPassword(errs Errors, password string) {
	switch {
	case !required(password):
		errs["password"] = "Password is required"
	case utf8.RuneCountInString(password) < MinPasswordLength:
		errs["password"] = "Password must be at least 6 characters"
	}
}

func checkNames(errs Errors, first, last string) {
	if !required(first) {
		errs["firstName"] = "First name is required"
	}
	if !required(last) {
		errs["lastName"] = "Last name is required"
	}
}

func Passenger(p domain.Passenger) Errors {
	errs := Errors{}

	checkNames(errs, p.FirstName, p.LastName)
	checkEmail(errs, p.Email)
	checkPhone(errs, p.Phone)

	if !IsAge(p.Age) {
		errs["age"] = "Age must be between 1 and 120"
	}

	return errs
}

// Passengers validates each passenger and prefixes keys with its index, e.g. "passengers[1].email".
func Passengers(list []domain.Passenger) Errors {
	errs := Errors{}
	for i, p := range list {
		for field, msg := range Passenger(p) {
			errs["passengers["+strconv.Itoa(i)+"]."+field] = msg
		}
	}
	return errs
}

func Payment(p domain.Payment, now time.Time) Errors {
	errs := Errors{}

	switch {
	case !required(p.CardNumber):
		errs["cardNumber"] = "Card number is required"
	case !IsCardNumber(p.CardNumber):
		errs["cardNumber"] = "Invalid card number"
	}

	if !required(p.CardHolder) {
		errs["cardHolder"] = "Card holder name is required"
	}

	switch {
	case !required(p.ExpiryDate):
		errs["expiryDate"] = "Expiry date is required"
	case !IsExpiry(p.ExpiryDate, now):
		errs["expiryDate"] = "Invalid or expired date (MM/YY)"
	}

	switch {
	case !required(p.CVV):
		errs["cvv"] = "CVV is required"
	case !IsCVV(p.CVV):
		errs["cvv"] = "Invalid CVV"
	}

	return errs
}

func Login(c domain.Credentials) Errors {
	errs := Errors{}
	checkEmail(errs, c.Email)
	checkPassword(errs, c.Password)
	return errs
}

func Registration(r domain.Registration) Errors {
	errs := Errors{}

	checkNames(errs, r.FirstName, r.LastName)
	checkEmail(errs, r.Email)
	checkPhone(errs, r.Phone)
	checkPassword(errs, r.Password)

	if r.Password != r.ConfirmPassword {
		errs["confirmPassword"] = "Passwords do not match"
	}

	return errs
}

// SearchParams checks a search form against the station catalogue and the
// booking window of today through today+90 days in now's location.
func SearchParams(p domain.SearchParams, now time.Time) Errors {
	errs := Errors{}

	if _, ok := schedule.StationByCode(p.Origin); !ok {
		errs["origin"] = "Please select a valid origin station"
	}
	if _, ok := schedule.StationByCode(p.Destination); !ok {
		errs["destination"] = "Please select a valid destination station"
	} else if p.Origin == p.Destination {
		errs["destination"] = "Origin and destination must be different"
	}

	if !required(p.Date) {
		errs["date"] = "Travel date is required"
	} else if d, err := time.ParseInLocation(dateLayout, p.Date, now.Location()); err != nil {
		errs["date"] = "Invalid travel date"
	} else {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if d.Before(today) || d.After(today.AddDate(0, 0, BookingWindowDays)) {
			errs["date"] = "Travel date must be within the next 90 days"
		}
	}

	if p.Passengers < 1 || p.Passengers > MaxPassengers {
		errs["passengers"] = "Passengers must be between 1 and 6"
	}

	return errs
}
