package types

import (
	"context"
	"fmt"
)

// Experiment names one training setup. Make builds a fresh trainer so
// repeated runs start from newly initialized parameters.
type Experiment struct {
	Name string
	Make func() (*Trainer, error)
}

// Comparison trains several experiments side by side, feeds their episode
// reports through analyzers and hands the resulting datasets to
// comparators, typically plotters.
type Comparison struct {
	Experiments []*Experiment
	analyzers   map[string]Analyzer
	comparators map[string]Comparator
	runs        int
}

func NewComparison(runs int) *Comparison {
	if runs <= 0 {
		runs = 1
	}
	return &Comparison{
		Experiments: make([]*Experiment, 0),
		analyzers:   make(map[string]Analyzer),
		comparators: make(map[string]Comparator),
		runs:        runs,
	}
}

// AddAnalysis registers an analyzer with the comparator consuming its
// datasets.
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// Run executes every experiment for every run and invokes the comparators
// once per run.
func (c *Comparison) Run(ctx context.Context) error {
	for run := 0; run < c.runs; run++ {
		fmt.Printf("Run %d\n", run+1)

		datasets := make(map[string][]DataSet)
		for name := range c.analyzers {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}
		names := make([]string, len(c.Experiments))

		for i, e := range c.Experiments {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			trainer, err := e.Make()
			if err != nil {
				return fmt.Errorf("experiment %s: %w", e.Name, err)
			}
			expName := e.Name
			currentRun := run
			trainer.AddReporter(ReporterFunc(func(r EpisodeReport) {
				for _, a := range c.analyzers {
					a.Analyze(currentRun, expName, r)
				}
			}))
			if err := trainer.Run(ctx); err != nil {
				return fmt.Errorf("experiment %s: %w", e.Name, err)
			}

			for name, a := range c.analyzers {
				datasets[name][i] = a.DataSet()
				a.Reset()
			}
			names[i] = e.Name
		}

		for name, comp := range c.comparators {
			comp(run, names, datasets[name])
		}
	}
	return nil
}
