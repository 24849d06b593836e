package data

import (
	"fmt"
	"sort"
)

// NoFare is returned by FareTable.Fare when no rule covers the stop count.
// Callers must refuse to issue a ticket for it.
const NoFare = -1

type FareRule struct {
	MinStops int `json:"minStops" yaml:"minStops" validate:"gte=0"`
	MaxStops int `json:"maxStops" yaml:"maxStops" validate:"gtefield=MinStops"`
	Fare     int `json:"fare" yaml:"fare" validate:"gte=0"`
}

func (r FareRule) Contains(stops int) bool {
	return stops >= r.MinStops && stops <= r.MaxStops
}

// FareTable is consulted in declared order and the first matching rule wins,
// so overlapping rules resolve to whichever was declared earlier.
type FareTable []FareRule

func (t FareTable) Fare(stops int) int {
	for _, r := range t {
		if r.Contains(stops) {
			return r.Fare
		}
	}
	return NoFare
}

// MaxStops is the largest stop count covered by any rule, or -1 for an empty table.
func (t FareTable) MaxStops() int {
	hi := -1
	for _, r := range t {
		if r.MaxStops > hi {
			hi = r.MaxStops
		}
	}
	return hi
}

// ValidateFares checks that the rules, taken in ascending order of MinStops,
// start at zero and cover a contiguous range without overlapping.
func ValidateFares(rules []FareRule) error {
	if len(rules) == 0 {
		return nil
	}

	sorted := make([]FareRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinStops < sorted[j].MinStops
	})

	if sorted[0].MinStops != 0 {
		return ValidationError(fmt.Sprintf("fare rules must start at 0 stops, first starts at %d", sorted[0].MinStops))
	}

	for i, r := range sorted {
		if r.MaxStops < r.MinStops {
			return ValidationError(fmt.Sprintf("fare rule [%d, %d] is empty", r.MinStops, r.MaxStops))
		}
		if r.Fare < 0 {
			return ValidationError(fmt.Sprintf("fare rule [%d, %d] has negative fare", r.MinStops, r.MaxStops))
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		switch {
		case r.MinStops <= prev.MaxStops:
			return ValidationError(fmt.Sprintf("fare rules [%d, %d] and [%d, %d] overlap",
				prev.MinStops, prev.MaxStops, r.MinStops, r.MaxStops))
		case r.MinStops > prev.MaxStops+1:
			return ValidationError(fmt.Sprintf("no fare rule covers %d to %d stops", prev.MaxStops+1, r.MinStops-1))
		}
	}

	return nil
}
