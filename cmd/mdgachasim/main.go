// Command mdgachasim samples the gem-cost distribution of a decklist by
// running a population of independent acquisition simulations.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/mdgachasim/mdgachasim/internal/catalog"
	"github.com/mdgachasim/mdgachasim/internal/config"
	"github.com/mdgachasim/mdgachasim/internal/decklist"
	"github.com/mdgachasim/mdgachasim/internal/pricing"
	"github.com/mdgachasim/mdgachasim/internal/sim"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a TOML config file")
		file       = flag.String("f", "", "path to a decklist file; stdin if unset")
		population = flag.Int("p", 0, "simulation population size (overrides config)")
		coreOnly   = flag.String("c", "both", `staple handling: "no" keeps all cards, "ignore" drops staples, "both" compares`)
		info       = flag.Bool("i", false, "print decklist information on startup")
		verbose    = flag.Bool("v", false, "log every step of each simulation run")
		fuzzyMatch = flag.Bool("fuzzy-match", false, "allow fuzzy card name matching")
		printStats = flag.Bool("print-stats", false, "print per-series distribution stats")
		showHist   = flag.Bool("s", false, "render a cumulative cost histogram")
		planTopup  = flag.Bool("plan-topup", false, "print the cheapest real-money top-up covering the mean cost")
		workers    = flag.Int("workers", 0, "worker count for population sampling (0 = all cores)")
		seed       = flag.Uint64("seed", 0, "seed for reproducible sampling (0 = random)")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fatal(err)
		}
	}
	if *population > 0 {
		cfg.Simulation.Population = *population
	}
	if *workers > 0 {
		cfg.Simulation.Workers = *workers
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if cfg.Simulation.Population <= 0 {
		fatal(fmt.Errorf("invalid population size %d", cfg.Simulation.Population))
	}
	switch *coreOnly {
	case "no", "ignore", "both":
	default:
		fatal(fmt.Errorf("invalid -c value %q", *coreOnly))
	}

	cat, err := catalog.LoadFile(cfg.Catalog)
	if err != nil {
		fatal(err)
	}

	text, err := readDecklist(*file)
	if err != nil {
		fatal(err)
	}
	res, err := decklist.Parse(cat, text, !*fuzzyMatch)
	if err != nil {
		fatal(err)
	}
	if *fuzzyMatch {
		for from, to := range res.Translations {
			fmt.Fprintf(os.Stderr, "Found %q -> %q\n", from, to)
		}
	}
	if len(res.Goals) == 0 {
		fatal(fmt.Errorf("no goals defined"))
	}
	if *info {
		fmt.Println(sim.GoalInfo(cat, res.Goals))
	}

	type series struct {
		name     string
		coreOnly bool
	}
	var runs []series
	switch *coreOnly {
	case "no":
		runs = []series{{"all cards", false}}
	case "ignore":
		runs = []series{{"core only", true}}
	case "both":
		runs = []series{{"with staples", false}, {"core only", true}}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var meanCost float64
	for i, s := range runs {
		opts := sim.Options{CoreOnly: s.coreOnly}
		if *verbose {
			opts.Log = slog.New(slog.NewTextHandler(os.Stderr, nil)).With("series", s.name)
		}
		stats, err := sim.Population(ctx, cat, res.Goals, opts, sim.PopulationConfig{
			Trials:  cfg.Simulation.Population,
			Workers: cfg.Simulation.Workers,
			Seed:    cfg.Simulation.Seed,
		})
		if err != nil {
			fatal(err)
		}
		if i == 0 {
			meanCost = stats.Mean
		}
		if *printStats {
			fmt.Printf("[%s] The average cost is %.0fk±%.0fk gems (p50 %.0fk, p90 %.0fk).\n",
				s.name, stats.Mean/1000, stats.StdDev/1000, stats.P50/1000, stats.P90/1000)
		}
		if *showHist {
			fmt.Printf("\nCost distribution (%s):\n%s\n", s.name, histogram(stats.Samples))
		}
	}

	if *planTopup {
		if len(cfg.Shop.SKUs) == 0 {
			fatal(fmt.Errorf("no shop SKUs configured"))
		}
		first := pricing.FirstTime{}
		for _, s := range cfg.Shop.SKUs {
			first[s.ID] = s.FirstTimeDouble
		}
		printPlan(pricing.MinCostForGems(cfg.Shop, int(meanCost), first))
	}
}

func readDecklist(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// histogram renders a cumulative density bar chart of the sampled costs,
// bucketed per thousand gems.
func histogram(samples []int) string {
	if len(samples) == 0 {
		return "(no samples)"
	}
	cp := append([]int(nil), samples...)
	sort.Ints(cp)
	maxK := cp[len(cp)-1] / 1000

	const width = 50
	var b strings.Builder
	idx := 0
	for k := 0; k <= maxK; k++ {
		for idx < len(cp) && cp[idx] <= (k+1)*1000-1 {
			idx++
		}
		frac := float64(idx) / float64(len(cp))
		bar := strings.Repeat("#", int(frac*width))
		fmt.Fprintf(&b, "%4dk |%-*s| %5.1f%%\n", k, width, bar, frac*100)
	}
	return b.String()
}

func printPlan(plan pricing.Plan) {
	fmt.Println("\nCheapest top-up covering the mean cost:")
	for _, p := range plan.Purchases {
		fmt.Printf(" - %dx %s (%d gems each) %d.%02d %s\n",
			p.Qty, p.Name, p.UnitGems, p.Subtotal/100, p.Subtotal%100, plan.Currency)
	}
	fmt.Printf("Total: %d gems for %d.%02d %s (incl. %d.%02d tax)\n",
		plan.TotalGems, plan.TotalCents/100, plan.TotalCents%100, plan.Currency,
		plan.TaxCents/100, plan.TaxCents%100)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
