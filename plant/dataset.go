package plant

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/exp/rand"
)

// Dataset is a set of reference growth records loaded from a CSV file.
// Records are used to seed episode resets with realistic starting states.
type Dataset struct {
	Records []*EnvironmentState
}

// LoadDataset reads a CSV file with a header row. Column names match the
// JSON tags of EnvironmentState plus a "species" column. Rows with
// unparseable numbers are skipped rather than failing the load.
func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ReadDataset(f)
}

// ReadDataset parses CSV records from r.
func ReadDataset(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}

	ds := &Dataset{Records: make([]*EnvironmentState, 0)}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}
		rec, ok := parseRecord(cols, row)
		if !ok {
			continue
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func parseRecord(cols map[string]int, row []string) (*EnvironmentState, bool) {
	field := func(name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}
	num := func(name string, dst *float64) bool {
		s, ok := field(name)
		if !ok {
			return true // missing column keeps the default value
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return false
		}
		*dst = v
		return true
	}

	species, _ := field("species")
	rec := DefaultState(species)
	ok := num("temperature", &rec.Temperature) &&
		num("light_intensity", &rec.Light) &&
		num("water_content", &rec.Water) &&
		num("radiation_level", &rec.Radiation) &&
		num("co2_level", &rec.CO2) &&
		num("o2_level", &rec.O2) &&
		num("humidity", &rec.Humidity) &&
		num("nitrogen_level", &rec.Nitrogen) &&
		num("phosphorus_level", &rec.Phosphorus) &&
		num("potassium_level", &rec.Potassium) &&
		num("height", &rec.Height) &&
		num("health_score", &rec.Health)
	if !ok {
		return nil, false
	}
	if s, found := field("growth_stage"); found {
		rec.Stage = ParseGrowthStage(s)
	}
	if s, found := field("fruit_count"); found {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			rec.Fruits = v
		}
	}
	rec.Clamp()
	return rec, true
}

// FilterSpecies returns the records matching the given species label.
// Zero matches is not an error; the caller falls back to defaults.
func (d *Dataset) FilterSpecies(species string) []*EnvironmentState {
	out := make([]*EnvironmentState, 0)
	for _, rec := range d.Records {
		if rec.Species == species {
			out = append(out, rec)
		}
	}
	return out
}

// Sample picks a random record for the species, or nil when none match.
func (d *Dataset) Sample(species string, rng *rand.Rand) *EnvironmentState {
	matching := d.FilterSpecies(species)
	if len(matching) == 0 {
		return nil
	}
	return matching[rng.Intn(len(matching))].Copy()
}
