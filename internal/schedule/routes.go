package schedule

import "github.com/kirinyoku/railgo/internal/domain"

type service struct {
	trainType  domain.TrainType
	name       string
	departures []string
	duration   string
}

type route struct {
	origin      string
	destination string
	services    []service
}

var routes = []route{
	{
		origin: "CAI", destination: "ALX",
		services: []service{
			{domain.TrainHighSpeed, "تالجو الإسباني", []string{"07:00", "08:00", "10:00", "14:00", "16:00", "19:00"}, "2h 30m"},
			{domain.TrainExpress, "القطار الفرنساوي", []string{"06:00", "09:00", "11:00", "13:00", "15:00", "17:00", "20:00"}, "2h 45m"},
			{domain.TrainRegional, "قطار الضواحي", []string{"05:30", "07:30", "12:00", "18:00"}, "3h 30m"},
		},
	},
	{
		origin: "CAI", destination: "LXR",
		services: []service{
			{domain.TrainHighSpeed, "قطار النوم الفاخر", []string{"20:00", "22:00"}, "9h 30m"},
			{domain.TrainExpress, "الصعيد إكسبريس", []string{"07:30", "08:30", "22:30"}, "10h 00m"},
		},
	},
	{
		origin: "CAI", destination: "ASW",
		services: []service{
			{domain.TrainHighSpeed, "قطار النوم الفاخر", []string{"19:00", "21:00"}, "13h 00m"},
			{domain.TrainExpress, "قطار أسوان", []string{"07:00", "18:00"}, "14h 00m"},
		},
	},
	{
		origin: "LXR", destination: "ASW",
		services: []service{
			{domain.TrainExpress, "قطار الصعيد", []string{"06:00", "09:00", "14:00", "17:00"}, "3h 00m"},
			{domain.TrainRegional, "قطار محلي", []string{"08:00", "12:00", "16:00"}, "3h 30m"},
		},
	},
	{
		origin: "CAI", destination: "AST",
		services: []service{
			{domain.TrainExpress, "قطار أسيوط", []string{"06:00", "08:00", "14:00", "20:00"}, "5h 30m"},
			{domain.TrainRegional, "قطار محلي", []string{"07:00", "11:00", "16:00"}, "6h 30m"},
		},
	},
	{
		origin: "CAI", destination: "PSD",
		services: []service{
			{domain.TrainExpress, "قطار القناة", []string{"07:00", "10:00", "14:00", "18:00"}, "3h 30m"},
			{domain.TrainRegional, "قطار محلي", []string{"06:00", "09:00", "15:00"}, "4h 00m"},
		},
	},
	{
		origin: "CAI", destination: "SUZ",
		services: []service{
			{domain.TrainExpress, "قطار السويس", []string{"06:30", "09:30", "13:30", "17:30"}, "2h 30m"},
			{domain.TrainRegional, "قطار محلي", []string{"08:00", "12:00", "16:00"}, "3h 00m"},
		},
	},
	{
		origin: "ALX", destination: "TNT",
		services: []service{
			{domain.TrainExpress, "قطار الدلتا", []string{"07:00", "10:00", "14:00", "17:00", "20:00"}, "1h 30m"},
			{domain.TrainRegional, "قطار محلي", []string{"06:00", "08:00", "12:00", "16:00", "19:00"}, "2h 00m"},
		},
	},
	{
		origin: "CAI", destination: "TNT",
		services: []service{
			{domain.TrainExpress, "قطار الدلتا", []string{"06:30", "08:30", "11:30", "14:30", "17:30", "20:30"}, "1h 30m"},
			{domain.TrainRegional, "قطار محلي", []string{"05:30", "09:30", "13:30", "18:30"}, "2h 00m"},
		},
	},
	{
		origin: "CAI", destination: "MNF",
		services: []service{
			{domain.TrainExpress, "قطار المنيا", []string{"06:00", "10:00", "14:00", "18:00"}, "4h 00m"},
			{domain.TrainRegional, "قطار محلي", []string{"07:30", "12:30", "16:30"}, "5h 00m"},
		},
	},
}

// findRoute looks up the schedule for origin→destination, falling back to
// the reverse direction.
func findRoute(origin, destination string) (route, bool) {
	for _, r := range routes {
		if r.origin == origin && r.destination == destination {
			return r, true
		}
	}
	for _, r := range routes {
		if r.origin == destination && r.destination == origin {
			return r, true
		}
	}
	return route{}, false
}
