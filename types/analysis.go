package types

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Generic dataset produced by analyzing a stream of episode reports.
type DataSet interface{}

// Analyzer compresses a stream of episode reports into a DataSet.
type Analyzer interface {
	Analyze(run int, name string, report EpisodeReport)
	DataSet() DataSet
	Reset()
}

// Comparator differentiates between datasets with associated names.
type Comparator func(run int, names []string, ds []DataSet)

func NoopComparator() Comparator {
	return func(int, []string, []DataSet) {}
}

// RewardCurve is the per-episode reward trace of one experiment.
type RewardCurve struct {
	Rewards  []float64
	Trailing []float64
}

type rewardAnalyzer struct {
	curve RewardCurve
}

// NewRewardAnalyzer collects per-episode total and trailing-average reward.
func NewRewardAnalyzer() Analyzer {
	return &rewardAnalyzer{}
}

func (a *rewardAnalyzer) Analyze(run int, name string, report EpisodeReport) {
	a.curve.Rewards = append(a.curve.Rewards, report.TotalReward)
	a.curve.Trailing = append(a.curve.Trailing, report.AvgReward)
}

func (a *rewardAnalyzer) DataSet() DataSet {
	return a.curve
}

func (a *rewardAnalyzer) Reset() {
	a.curve = RewardCurve{}
}

type healthAnalyzer struct {
	health []float64
}

// NewHealthAnalyzer collects the final health score of each episode.
func NewHealthAnalyzer() Analyzer {
	return &healthAnalyzer{}
}

func (a *healthAnalyzer) Analyze(run int, name string, report EpisodeReport) {
	a.health = append(a.health, report.FinalState.Health)
}

func (a *healthAnalyzer) DataSet() DataSet {
	return a.health
}

func (a *healthAnalyzer) Reset() {
	a.health = nil
}

func linePlot(p *plot.Plot, i int, name string, values []float64) {
	points := make(plotter.XYs, len(values))
	for j, v := range values {
		points[j] = plotter.XY{X: float64(j), Y: v}
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return
	}
	line.Color = plotutil.Color(i)
	p.Add(line)
	p.Legend.Add(name, line)
}

// RewardPlotter renders the trailing-average reward of each experiment as
// a line chart under plotPath.
func RewardPlotter(plotPath string) Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return func(run int, names []string, ds []DataSet) {
		p := plot.New()
		p.Title.Text = "Training reward"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = "Trailing average reward"
		for i := 0; i < len(names); i++ {
			curve := ds[i].(RewardCurve)
			linePlot(p, i, names[i], curve.Trailing)
			if len(curve.Rewards) > 0 {
				fmt.Printf("Final avg reward: %.2f for experiment: %s\n", curve.Trailing[len(curve.Trailing)-1], names[i])
			}
		}
		p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_reward.png"))
	}
}

// HealthPlotter renders the final health score of each episode.
func HealthPlotter(plotPath string) Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return func(run int, names []string, ds []DataSet) {
		p := plot.New()
		p.Title.Text = "Final health"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = "Health score"
		p.Y.Min = 0
		p.Y.Max = 1
		for i := 0; i < len(names); i++ {
			linePlot(p, i, names[i], ds[i].([]float64))
		}
		p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_health.png"))
	}
}
