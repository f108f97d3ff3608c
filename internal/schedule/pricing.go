package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultDurationMinutes is used when a duration string cannot be parsed.
const DefaultDurationMinutes = 180

var basePricing = map[domain.TrainType]map[domain.SeatClass]int64{
	domain.TrainHighSpeed: {domain.ClassFirst: 450, domain.ClassBusiness: 280, domain.ClassEconomy: 150},
	domain.TrainExpress:   {domain.ClassFirst: 320, domain.ClassBusiness: 200, domain.ClassEconomy: 100},
	domain.TrainRegional:  {domain.ClassFirst: 180, domain.ClassBusiness: 120, domain.ClassEconomy: 60},
}

var durationRe = regexp.MustCompile(`(\d+)h\s*(\d+)?m?`)

// ParseDuration converts "2h 30m" into minutes.
func ParseDuration(s string) int {
	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		return DefaultDurationMinutes
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])

	return hours*60 + minutes
}

// Pricing scales the base fares of a train type by max(1, minutes/180).
func Pricing(t domain.TrainType, durationMinutes int) map[domain.SeatClass]int64 {
	base := basePricing[t]
	out := make(map[domain.SeatClass]int64, len(base))

	for class, fare := range base {
		out[class] = scaleFare(fare, durationMinutes)
	}

	return out
}

func scaleFare(fare int64, minutes int) int64 {
	if minutes <= DefaultDurationMinutes {
		return fare
	}

	return decimal.NewFromInt(fare).
		Mul(decimal.NewFromInt(int64(minutes))).
		DivRound(decimal.NewFromInt(DefaultDurationMinutes), 0).
		IntPart()
}

// AddDuration returns departure plus the duration as wall-clock "HH:MM", wrapping past midnight.
func AddDuration(departure, duration string) string {
	var h, m int
	if parts := strings.SplitN(departure, ":", 2); len(parts) == 2 {
		h, _ = strconv.Atoi(parts[0])
		m, _ = strconv.Atoi(parts[1])
	}

	total := h*60 + m + ParseDuration(duration)

	return fmt.Sprintf("%02d:%02d", (total/60)%24, total%60)
}
