package sim

import (
	"context"
	"math"
	"testing"

	"github.com/mdgachasim/mdgachasim/internal/catalog"
)

func TestCalcStats(t *testing.T) {
	s := calcStats([]int{1000, 2000, 3000, 4000})
	if s.Mean != 2500 {
		t.Fatalf("mean = %f", s.Mean)
	}
	if s.Var != 1250000 {
		t.Fatalf("var = %f", s.Var)
	}
	if math.Abs(s.StdDev-math.Sqrt(1250000)) > 1e-9 {
		t.Fatalf("stddev = %f", s.StdDev)
	}
	if s.P50 != 2500 {
		t.Fatalf("p50 = %f", s.P50)
	}
	if math.Abs(s.P90-3700) > 1e-9 {
		t.Fatalf("p90 = %f", s.P90)
	}
}

func TestCalcStatsDegenerate(t *testing.T) {
	if s := calcStats(nil); s.Mean != 0 || s.Samples != nil {
		t.Fatalf("empty stats = %+v", s)
	}
	s := calcStats([]int{750})
	if s.Mean != 750 || s.StdDev != 0 || s.P50 != 750 || s.P99 != 750 {
		t.Fatalf("single-sample stats = %+v", s)
	}
}

func TestPopulationEmptyGoals(t *testing.T) {
	cat := testCatalog(t)

	stats, err := Population(context.Background(), cat, nil, Options{},
		PopulationConfig{Trials: 16, Workers: 4, Seed: 1})
	if err != nil {
		t.Fatalf("population: %v", err)
	}
	if len(stats.Samples) != 16 {
		t.Fatalf("samples = %d, want 16", len(stats.Samples))
	}
	// an empty goal list always costs exactly one pull
	if stats.Mean != PullCost || stats.StdDev != 0 {
		t.Fatalf("mean = %f, stddev = %f", stats.Mean, stats.StdDev)
	}
}

func TestPopulationReproducible(t *testing.T) {
	cat := testCatalog(t)
	goals := []catalog.Card{
		card(t, cat, "Raigeki"),
		card(t, cat, "Tri-Brigade Nervall"),
	}

	cfg := PopulationConfig{Trials: 20, Workers: 3, Seed: 99}
	a, err := Population(context.Background(), cat, goals, Options{}, cfg)
	if err != nil {
		t.Fatalf("population: %v", err)
	}
	b, err := Population(context.Background(), cat, goals, Options{}, cfg)
	if err != nil {
		t.Fatalf("population: %v", err)
	}
	if len(a.Samples) != len(b.Samples) {
		t.Fatalf("sample counts differ: %d vs %d", len(a.Samples), len(b.Samples))
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("trial %d diverged: %d vs %d", i, a.Samples[i], b.Samples[i])
		}
	}
}

func TestPopulationZeroTrials(t *testing.T) {
	cat := testCatalog(t)
	stats, err := Population(context.Background(), cat, nil, Options{}, PopulationConfig{})
	if err != nil || stats.Mean != 0 {
		t.Fatalf("stats = %+v, err = %v", stats, err)
	}
}

func TestPopulationCancellation(t *testing.T) {
	cat := testCatalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Population(ctx, cat, nil, Options{},
		PopulationConfig{Trials: 1000, Workers: 2, Seed: 1})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}
