package plant

import (
	"fmt"
	"math"
	"sort"
)

// Range is a closed optimal interval for one controlled variable.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

func (r Range) Width() float64 {
	return r.High - r.Low
}

func (r Range) Mid() float64 {
	return (r.Low + r.High) / 2
}

// Contains reports whether v lies inside the optimal interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// Distance returns how far v is outside the interval, normalized by the
// interval width. Zero inside the interval.
func (r Range) Distance(v float64) float64 {
	switch {
	case v < r.Low:
		return (r.Low - v) / r.Width()
	case v > r.High:
		return (v - r.High) / r.Width()
	}
	return 0
}

// Optimality scores v against the interval with an inverse quadratic
// falloff: 1.0 inside, decaying toward zero with the squared normalized
// distance outside.
func (r Range) Optimality(v float64) float64 {
	d := r.Distance(v)
	return 1.0 / (1.0 + d*d)
}

// OptimalityBelowFree is the asymmetric variant used for radiation: any
// value at or below the upper bound scores 1.0, values above decay.
func (r Range) OptimalityBelowFree(v float64) float64 {
	if v <= r.High {
		return 1.0
	}
	d := (v - r.High) / r.Width()
	return 1.0 / (1.0 + d*d)
}

// SpeciesProfile holds the optimal growing ranges of one species.
type SpeciesProfile struct {
	Name       string `json:"name"`
	Temp       Range  `json:"temperature"`
	Light      Range  `json:"light"`
	Water      Range  `json:"water"`
	Radiation  Range  `json:"radiation"`
	Nitrogen   Range  `json:"nitrogen"`
	Phosphorus Range  `json:"phosphorus"`
	Potassium  Range  `json:"potassium"`
}

// Validate rejects profiles that would poison the optimality computation.
// A zero-width or inverted range divides by zero downstream, so it is a
// configuration error caught before training starts.
func (p SpeciesProfile) Validate() error {
	ranges := map[string]Range{
		"temperature": p.Temp,
		"light":       p.Light,
		"water":       p.Water,
		"radiation":   p.Radiation,
		"nitrogen":    p.Nitrogen,
		"phosphorus":  p.Phosphorus,
		"potassium":   p.Potassium,
	}
	for name, r := range ranges {
		if math.IsNaN(r.Low) || math.IsNaN(r.High) || math.IsInf(r.Low, 0) || math.IsInf(r.High, 0) {
			return fmt.Errorf("species %q: %s range is not finite", p.Name, name)
		}
		if r.Width() <= 0 {
			return fmt.Errorf("species %q: %s range [%g,%g] has non-positive width", p.Name, name, r.Low, r.High)
		}
	}
	return nil
}

// DefaultSpecies is used when a requested species has no profile.
const DefaultSpecies = "Dwarf Wheat"

var speciesProfiles = map[string]SpeciesProfile{
	"Dwarf Wheat": {
		Name:       "Dwarf Wheat",
		Temp:       Range{18, 25},
		Light:      Range{800, 1200},
		Water:      Range{60, 80},
		Radiation:  Range{0, 10},
		Nitrogen:   Range{60, 90},
		Phosphorus: Range{50, 80},
		Potassium:  Range{60, 90},
	},
	"Cherry Tomato": {
		Name:       "Cherry Tomato",
		Temp:       Range{20, 27},
		Light:      Range{1000, 1600},
		Water:      Range{65, 85},
		Radiation:  Range{0, 8},
		Nitrogen:   Range{50, 85},
		Phosphorus: Range{55, 85},
		Potassium:  Range{65, 95},
	},
	"Lettuce": {
		Name:       "Lettuce",
		Temp:       Range{15, 22},
		Light:      Range{500, 900},
		Water:      Range{70, 90},
		Radiation:  Range{0, 6},
		Nitrogen:   Range{55, 85},
		Phosphorus: Range{45, 75},
		Potassium:  Range{50, 80},
	},
	"Space Potato": {
		Name:       "Space Potato",
		Temp:       Range{16, 24},
		Light:      Range{700, 1300},
		Water:      Range{55, 80},
		Radiation:  Range{0, 12},
		Nitrogen:   Range{60, 95},
		Phosphorus: Range{55, 90},
		Potassium:  Range{70, 100},
	},
}

// LookupSpecies returns the profile for the named species, falling back to
// the default profile when the species is unknown.
func LookupSpecies(name string) SpeciesProfile {
	if p, ok := speciesProfiles[name]; ok {
		return p
	}
	return speciesProfiles[DefaultSpecies]
}

// SpeciesNames lists the species with a dedicated profile.
func SpeciesNames() []string {
	names := make([]string, 0, len(speciesProfiles))
	for name := range speciesProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
