// Package ident generates booking identifiers and passenger name records.
package ident

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PNRPrefix   = "EGR-"
	pnrLength   = 6
	pnrAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var pnrRe = regexp.MustCompile(`^EGR-[A-Z0-9]{6}$`)

// BookingID returns "booking-<unix millis>-<8 hex>". The random suffix keeps
// ids distinct when two bookings are made in the same millisecond.
func BookingID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "booking-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}

// PNR returns a fresh record locator such as "EGR-7KQ2ZD".
func PNR() string {
	var b strings.Builder
	b.Grow(len(PNRPrefix) + pnrLength)
	b.WriteString(PNRPrefix)

	for range pnrLength {
		b.WriteByte(pnrAlphabet[rand.IntN(len(pnrAlphabet))])
	}

	return b.String()
}

func IsPNR(s string) bool {
	return pnrRe.MatchString(s)
}
