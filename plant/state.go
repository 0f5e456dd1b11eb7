package plant

import "fmt"

// GrowthStage of the plant within an episode. Stages only ever advance.
type GrowthStage int

const (
	StageSeedling GrowthStage = iota
	StageVegetative
	StageFlowering
	StageFruiting
)

func (g GrowthStage) String() string {
	switch g {
	case StageSeedling:
		return "seedling"
	case StageVegetative:
		return "vegetative"
	case StageFlowering:
		return "flowering"
	case StageFruiting:
		return "fruiting"
	}
	return fmt.Sprintf("stage(%d)", int(g))
}

// ParseGrowthStage maps a dataset label to a stage, defaulting to seedling.
func ParseGrowthStage(s string) GrowthStage {
	switch s {
	case "vegetative":
		return StageVegetative
	case "flowering":
		return StageFlowering
	case "fruiting":
		return StageFruiting
	}
	return StageSeedling
}

// Physical bounds of the environment variables. Every update clamps to these.
const (
	MinTemperature = 10.0
	MaxTemperature = 40.0
	MinLight       = 200.0
	MaxLight       = 2000.0
	MinWater       = 10.0
	MaxWater       = 100.0
	MinRadiation   = 0.0
	MaxRadiation   = 100.0
	MinCO2         = 300.0
	MaxCO2         = 2000.0
	MinO2          = 15.0
	MaxO2          = 25.0
	MinHumidity    = 30.0
	MaxHumidity    = 90.0
	MinNutrient    = 0.0
	MaxNutrient    = 100.0
	MinHeight      = 0.0
	MaxHeight      = 200.0
)

// EnvironmentState is the full mutable record of one simulated plant.
// All continuous fields stay inside their physical bounds, the growth stage
// never regresses and the fruit count never decreases within an episode.
type EnvironmentState struct {
	Species string `json:"species"`

	Temperature float64 `json:"temperature"`
	Light       float64 `json:"light_intensity"`
	Water       float64 `json:"water_content"`
	Radiation   float64 `json:"radiation_level"`
	CO2         float64 `json:"co2_level"`
	O2          float64 `json:"o2_level"`
	Humidity    float64 `json:"humidity"`
	Nitrogen    float64 `json:"nitrogen_level"`
	Phosphorus  float64 `json:"phosphorus_level"`
	Potassium   float64 `json:"potassium_level"`

	Height float64     `json:"height"`
	Fruits int         `json:"fruit_count"`
	Stage  GrowthStage `json:"growth_stage"`
	Health float64     `json:"health_score"`

	Step int `json:"step"`
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp forces every bounded field back inside its declared range.
func (s *EnvironmentState) Clamp() {
	s.Temperature = clamp(s.Temperature, MinTemperature, MaxTemperature)
	s.Light = clamp(s.Light, MinLight, MaxLight)
	s.Water = clamp(s.Water, MinWater, MaxWater)
	s.Radiation = clamp(s.Radiation, MinRadiation, MaxRadiation)
	s.CO2 = clamp(s.CO2, MinCO2, MaxCO2)
	s.O2 = clamp(s.O2, MinO2, MaxO2)
	s.Humidity = clamp(s.Humidity, MinHumidity, MaxHumidity)
	s.Nitrogen = clamp(s.Nitrogen, MinNutrient, MaxNutrient)
	s.Phosphorus = clamp(s.Phosphorus, MinNutrient, MaxNutrient)
	s.Potassium = clamp(s.Potassium, MinNutrient, MaxNutrient)
	s.Height = clamp(s.Height, MinHeight, MaxHeight)
	s.Health = clamp(s.Health, 0, 1)
	if s.Fruits < 0 {
		s.Fruits = 0
	}
}

// Copy returns an independent snapshot of the state.
func (s *EnvironmentState) Copy() *EnvironmentState {
	c := *s
	return &c
}

// ObservationSize is the length of the vector produced by Observation.
const ObservationSize = 14

// Observation flattens the state into a normalized feature vector for the
// policy and value networks. Each bounded field is scaled to [0,1].
func (s *EnvironmentState) Observation() []float64 {
	norm := func(v, lo, hi float64) float64 {
		return (v - lo) / (hi - lo)
	}
	fruits := float64(s.Fruits) / 20.0
	if fruits > 1 {
		fruits = 1
	}
	return []float64{
		norm(s.Temperature, MinTemperature, MaxTemperature),
		norm(s.Light, MinLight, MaxLight),
		norm(s.Water, MinWater, MaxWater),
		norm(s.Radiation, MinRadiation, MaxRadiation),
		norm(s.CO2, MinCO2, MaxCO2),
		norm(s.O2, MinO2, MaxO2),
		norm(s.Humidity, MinHumidity, MaxHumidity),
		norm(s.Nitrogen, MinNutrient, MaxNutrient),
		norm(s.Phosphorus, MinNutrient, MaxNutrient),
		norm(s.Potassium, MinNutrient, MaxNutrient),
		norm(s.Height, MinHeight, MaxHeight),
		fruits,
		s.Health,
		float64(s.Stage) / 3.0,
	}
}

// DefaultState is the reset state used when no reference sample is available.
func DefaultState(species string) *EnvironmentState {
	return &EnvironmentState{
		Species:     species,
		Temperature: 22,
		Light:       1000,
		Water:       70,
		Radiation:   5,
		CO2:         800,
		O2:          21,
		Humidity:    60,
		Nitrogen:    80,
		Phosphorus:  75,
		Potassium:   85,
		Height:      0,
		Fruits:      0,
		Stage:       StageSeedling,
		Health:      0.9,
	}
}
