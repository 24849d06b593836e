package journey

import (
	"math"

	"go.lepak.sg/metro-planner/data"
)

const (
	minutesPerStop     = 1.5
	interchangeMinutes = 3
)

// TravelTime estimates the trip duration in whole minutes: 1.5 minutes per
// stop rounded half up, plus 3 minutes for changing lines.
func TravelTime(stops int, hasInterchange bool) int {
	t := int(math.Floor(float64(stops)*minutesPerStop + 0.5))
	if hasInterchange {
		t += interchangeMinutes
	}
	return t
}

// Quote is a resolved trip with its price and duration. Fare is data.NoFare
// when the trip is unreachable or no fare rule covers it.
type Quote struct {
	Result
	Fare    int
	Minutes int
}

// Priced reports whether a ticket can be sold for the quote.
func (q Quote) Priced() bool {
	return q.Reachable() && q.Fare != data.NoFare
}

// Plan resolves the trip from start to end over dir and prices it with fares.
func Plan(dir *data.Directory, fares data.FareTable, start, end data.Station) Quote {
	res := Resolve(dir.Stations(), dir.Interchanges(), start, end)
	if !res.Reachable() {
		return Quote{Result: res, Fare: data.NoFare}
	}

	return Quote{
		Result:  res,
		Fare:    fares.Fare(res.Stops),
		Minutes: TravelTime(res.Stops, res.HasInterchange()),
	}
}

// Resolver plans trips over one directory snapshot.
type Resolver struct {
	dir   *data.Directory
	fares data.FareTable
}

func NewResolver(dir *data.Directory, fares data.FareTable) *Resolver {
	return &Resolver{dir: dir, fares: fares}
}

func (r *Resolver) Resolve(start, end data.Station) Result {
	return Resolve(r.dir.Stations(), r.dir.Interchanges(), start, end)
}

// PlanNames looks up the two station names and plans the trip between them.
func (r *Resolver) PlanNames(from, to string) (Quote, error) {
	start, end, err := r.dir.Pair(from, to)
	if err != nil {
		return Quote{}, err
	}
	return Plan(r.dir, r.fares, start, end), nil
}
