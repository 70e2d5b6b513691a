package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/throng/config"
	"github.com/pthm-cable/throng/scenario"
	"github.com/pthm-cable/throng/sim"
	"github.com/pthm-cable/throng/telemetry"
)

// Congestion contributes to fitness at this weight; travel time
// dominates, congestion breaks ties between similar configs.
const congestionWeight = 2.0

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config
	scn        scenario.Scenario

	mu           sync.Mutex
	lastArrivals int
	lastTravel   float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, scn scenario.Scenario) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		scn:        scn,
	}
}

// LastArrivals returns the mean arrival count from the most recent
// evaluation, for progress reporting.
func (fe *FitnessEvaluator) LastArrivals() int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastArrivals
}

// LastTravel returns the mean travel time from the most recent
// evaluation, in simulation seconds.
func (fe *FitnessEvaluator) LastTravel() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastTravel
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness  float64
	arrivals int
	travel   float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalTravel float64
	var totalArrivals int
	for _, r := range results {
		totalFitness += r.fitness
		totalTravel += r.travel
		totalArrivals += r.arrivals
	}

	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastArrivals = totalArrivals / len(fe.seeds)
	fe.lastTravel = totalTravel / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run and scores it.
// Fitness is mean travel time plus a congestion penalty; a run where
// nobody arrives scores the full run duration, the worst possible
// travel time.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) seedResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	var congestionSum float64
	var congestionWindows int

	s, err := sim.New(sim.Options{
		Config:   cfg,
		Scenario: fe.scn,
		Seed:     seed,
		StatsCallback: func(stats telemetry.WindowStats) {
			congestionSum += stats.MeanCongestion
			congestionWindows++
		},
	})
	if err != nil {
		// Out-of-range parameters fail validation inside the field;
		// score them as worst-case so the search moves away.
		return seedResult{fitness: math.Inf(1)}
	}
	defer s.Close()

	s.UpdateHeadless(fe.maxTicks)

	runSec := float64(fe.maxTicks) * cfg.Physics.DT
	travel := runSec
	if s.TotalArrivals() > 0 {
		travel = s.MeanTravelSec()
	}

	var meanCongestion float64
	if congestionWindows > 0 {
		meanCongestion = congestionSum / float64(congestionWindows)
	}

	return seedResult{
		fitness:  travel + congestionWeight*meanCongestion,
		arrivals: s.TotalArrivals(),
		travel:   travel,
	}
}

// copyConfig creates a copy of the base config for one run.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
