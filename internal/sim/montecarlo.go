package sim

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/mdgachasim/mdgachasim/internal/catalog"
	"github.com/mdgachasim/mdgachasim/internal/gacha"
)

// Stats summarizes a sampled cost distribution.
type Stats struct {
	Mean   float64
	Var    float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	// Samples holds the raw per-run gem costs for histograms/exports.
	Samples []int `json:"-"`
}

// PopulationConfig controls a batch of independent simulation runs.
type PopulationConfig struct {
	// Trials is the population size.
	Trials int
	// Workers caps parallelism; <= 0 uses GOMAXPROCS.
	Workers int
	// Seed makes the whole batch reproducible; 0 selects crypto
	// randomness. Each trial derives its own source from the seed, so
	// results do not depend on scheduling.
	Seed uint64
}

// Population runs Trials independent simulations of the same goal list and
// returns the cost distribution stats. Every run owns private mutable
// state and reads the shared catalog without locks; cancellation is
// cooperative between samples.
func Population(ctx context.Context, cat *catalog.Catalog, goals []catalog.Card, opts Options, cfg PopulationConfig) (Stats, error) {
	if cfg.Trials <= 0 {
		return Stats{}, nil
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cfg.Trials {
		workers = cfg.Trials
	}

	samples := make([]int, cfg.Trials)
	trials := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range trials {
				runOpts := opts
				if cfg.Seed != 0 {
					runOpts.Rand = gacha.NewSeededSource(cfg.Seed + uint64(i)*0x9e3779b97f4a7c15)
				}
				samples[i] = Simulate(cat, goals, runOpts).Cost
			}
		}()
	}

	var err error
feed:
	for i := 0; i < cfg.Trials; i++ {
		select {
		case trials <- i:
		case <-ctx.Done():
			err = ctx.Err()
			samples = samples[:i]
			break feed
		}
	}
	close(trials)
	wg.Wait()
	if err != nil {
		return Stats{}, err
	}
	return calcStats(samples), nil
}

// calcStats computes mean, population variance and interpolated
// percentiles over integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if p <= 0 || n == 1 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}
