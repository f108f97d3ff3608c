package schedule

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kirinyoku/railgo/internal/domain"
)

// AvailabilityRatio is the chance that a generated seat is bookable.
const AvailabilityRatio = 0.7

// trainSeq numbers trains across every generator in the process.
var trainSeq atomic.Int64

// Rand is the subset of *rand.Rand the generator needs.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type coachTemplate struct {
	number string
	class  domain.SeatClass
}

var coachTemplates = map[domain.TrainType][]coachTemplate{
	domain.TrainHighSpeed: {
		{"VIP1", domain.ClassFirst},
		{"A1", domain.ClassBusiness},
		{"A2", domain.ClassBusiness},
		{"B1", domain.ClassEconomy},
		{"B2", domain.ClassEconomy},
	},
	domain.TrainExpress: {
		{"A1", domain.ClassBusiness},
		{"B1", domain.ClassEconomy},
		{"B2", domain.ClassEconomy},
		{"B3", domain.ClassEconomy},
	},
	domain.TrainRegional: {
		{"C1", domain.ClassEconomy},
		{"C2", domain.ClassEconomy},
		{"C3", domain.ClassEconomy},
	},
}

// Layout returns seats per row and row count for a class.
func Layout(class domain.SeatClass) (perRow, rows int) {
	switch class {
	case domain.ClassFirst:
		return 4, 8
	case domain.ClassBusiness:
		return 4, 10
	default:
		return 5, 12
	}
}

func seatPosition(perRow, col int) domain.SeatPosition {
	if perRow == 4 {
		if col == 1 || col == 4 {
			return domain.PositionWindow
		}
		return domain.PositionAisle
	}

	switch col {
	case 1, perRow:
		return domain.PositionWindow
	case 3:
		return domain.PositionMiddle
	default:
		return domain.PositionAisle
	}
}

// Generator produces mock trains for a station pair. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd Rand
}

// NewGenerator returns a generator; a nil rnd means a time-seeded PCG source.
func NewGenerator(rnd Rand) *Generator {
	if rnd == nil {
		seed := uint64(time.Now().UnixNano())
		rnd = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Generator{rnd: rnd}
}

// Search returns freshly generated trains between two station codes, sorted by
// departure time. Unknown codes or stations without a route yield an empty slice.
// The date is accepted for parity with real timetables and does not affect output.
func (g *Generator) Search(origin, destination, _ string) []domain.Train {
	from, ok := StationByCode(origin)
	if !ok {
		return []domain.Train{}
	}
	to, ok := StationByCode(destination)
	if !ok {
		return []domain.Train{}
	}

	r, ok := findRoute(origin, destination)
	if !ok {
		return []domain.Train{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	trains := make([]domain.Train, 0, 16)
	for _, svc := range r.services {
		minutes := ParseDuration(svc.duration)
		for _, dep := range svc.departures {
			trains = append(trains, domain.Train{
				ID:            "train-" + strconv.FormatInt(trainSeq.Add(1), 10),
				Number:        strconv.Itoa(g.rnd.IntN(900) + 100),
				Name:          svc.name,
				Type:          svc.trainType,
				Origin:        from,
				Destination:   to,
				DepartureTime: dep,
				ArrivalTime:   AddDuration(dep, svc.duration),
				Duration:      svc.duration,
				Pricing:       Pricing(svc.trainType, minutes),
				Coaches:       g.coaches(svc.trainType),
			})
		}
	}

	slices.SortStableFunc(trains, func(a, b domain.Train) int {
		return strings.Compare(a.DepartureTime, b.DepartureTime)
	})

	return trains
}

func (g *Generator) coaches(t domain.TrainType) []domain.Coach {
	tpl := coachTemplates[t]
	out := make([]domain.Coach, 0, len(tpl))

	for i, ct := range tpl {
		id := fmt.Sprintf("coach-%d", i+1)
		out = append(out, domain.Coach{
			ID:     id,
			Number: ct.number,
			Class:  ct.class,
			Seats:  g.seats(id, ct.class),
		})
	}

	return out
}

func (g *Generator) seats(coachID string, class domain.SeatClass) []domain.Seat {
	perRow, rows := Layout(class)
	out := make([]domain.Seat, 0, perRow*rows)

	for row := 1; row <= rows; row++ {
		for col := 1; col <= perRow; col++ {
			n := (row-1)*perRow + col
			out = append(out, domain.Seat{
				ID:          fmt.Sprintf("%s-seat-%d", coachID, n),
				Number:      fmt.Sprintf("%d%c", row, 'A'+col-1),
				Position:    seatPosition(perRow, col),
				IsAvailable: g.rnd.Float64() > 1-AvailabilityRatio,
			})
		}
	}

	return out
}
