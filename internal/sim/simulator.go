// Package sim implements the goal-acquisition simulator: the loop that
// decides what to buy or open each step, applies stochastic pack draws,
// tracks the craft/dismantle material economy and terminates once the goal
// multiset is satisfied or provably craftable.
package sim

import (
	"log/slog"

	"github.com/mdgachasim/mdgachasim/internal/catalog"
	"github.com/mdgachasim/mdgachasim/internal/gacha"
)

// Simulate samples the gem-cost distribution of the goal decklist exactly
// once. Goals must be catalog-resident cards; the catalog itself is only
// read. The run is fully sequential and owns all of its mutable state, so
// any number of calls may share one catalog concurrently.
func Simulate(cat *catalog.Catalog, goals []catalog.Card, opts Options) Result {
	policy := gacha.DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	engine, err := gacha.New(cat, policy, opts.Rand)
	if err != nil {
		// an invalid override policy is a programming error at the call
		// boundary, not a sample
		panic(err)
	}

	r := &run{
		cat:       cat,
		engine:    engine,
		log:       opts.Log,
		goals:     append([]catalog.Card(nil), goals...),
		subGoals:  append([]catalog.Card(nil), opts.SubGoals...),
		materials: opts.Materials,
		unlocked:  make(map[*catalog.Pack]bool, len(opts.Unlocked)),
		perSource: make(map[*catalog.Pack][]catalog.Card),
		pity:      make(map[*catalog.Pack]int),
		weight:    opts.RarityWeight,
	}
	for _, p := range opts.Unlocked {
		r.unlocked[p] = true
	}

	r.removeGifts(opts.Gifts)
	if opts.CoreOnly {
		r.removeStaples(opts.Staples)
	}
	r.indexSources()
	r.planBundles(opts.Bundles)

	return r.loop(opts.NoCrafting)
}

// run is the mutable per-invocation state, discarded when Simulate returns.
type run struct {
	cat    *catalog.Catalog
	engine *gacha.Engine
	log    *slog.Logger

	goals     []catalog.Card
	subGoals  []catalog.Card
	materials catalog.Materials
	unlocked  map[*catalog.Pack]bool

	// perSource partitions the remaining goals by eligible source pack;
	// sourceOrder preserves discovery order so valuation ties break
	// deterministically.
	perSource   map[*catalog.Pack][]catalog.Card
	sourceOrder []*catalog.Pack

	pity    map[*catalog.Pack]int
	mustBuy []*catalog.Bundle
	cost    int
	weight  map[catalog.Rarity]float64
}

// removeGifts drops goal copies the player receives for free. A nil gifts
// list means the catalog gift counts apply; otherwise the supplied list is
// the complete override.
func (r *run) removeGifts(gifts []catalog.Card) {
	seen := make(map[string]bool)
	ordered := make([]catalog.Card, 0, len(r.goals))
	for _, g := range r.goals {
		if !seen[g.Name] {
			seen[g.Name] = true
			ordered = append(ordered, g)
		}
	}
	for _, g := range ordered {
		gifted := g.Gift
		if gifts != nil {
			gifted = countByName(gifts, g.Name)
		}
		n := min(countByName(r.goals, g.Name), gifted)
		if n == 0 {
			continue
		}
		r.goals = removeCopies(r.goals, g.Name, n)
		if r.log != nil {
			r.log.Info("removed gifted goal", "card", g.Name, "copies", n)
		}
	}
}

// removeStaples drops every staple goal entirely. A nil override set means
// the catalog staple flags apply.
func (r *run) removeStaples(staples map[string]bool) {
	kept := r.goals[:0]
	for _, g := range r.goals {
		staple := g.Staple
		if staples != nil {
			staple = staples[g.Name]
		}
		if staple {
			if r.log != nil {
				r.log.Info("removed staple goal", "card", g.Name)
			}
			continue
		}
		kept = append(kept, g)
	}
	r.goals = kept
}

// indexSources partitions the goals by eligible source pack. Secret packs
// are always eligible because the run can unlock them by crafting; normal
// packs count only when already unlocked. Legacy cards without sources
// simply never appear here.
func (r *run) indexSources() {
	for _, g := range r.goals {
		for _, src := range r.cat.Sources(g) {
			if src.Normal && !r.unlocked[src] {
				continue
			}
			if _, ok := r.perSource[src]; !ok {
				r.sourceOrder = append(r.sourceOrder, src)
			}
			r.perSource[src] = append(r.perSource[src], g)
		}
	}
	if r.log != nil {
		for _, src := range r.sourceOrder {
			r.log.Info("goal source", "pack", src.Name, "goals", len(r.perSource[src]))
		}
	}
}

// planBundles collects the bundles featuring at least one remaining goal,
// in discovery order, deduplicated.
func (r *run) planBundles(bundles []*catalog.Bundle) {
	planned := make(map[*catalog.Bundle]bool)
	for _, g := range r.goals {
		for _, b := range bundles {
			if planned[b] || countByName(b.FeaturedCards, g.Name) == 0 {
				continue
			}
			planned[b] = true
			r.mustBuy = append(r.mustBuy, b)
			if r.log != nil {
				r.log.Info("planning bundle purchase", "bundle", b.Name, "for", g.Name)
			}
		}
	}
}

// loop is the bounded main acquisition loop.
func (r *run) loop(noCrafting bool) Result {
	iterations := 0
	done := false

	for range MaxIterations {
		iterations++
		var source *catalog.Pack

		switch {
		case len(r.mustBuy) > 0:
			// Always exhaust the planned bundles first.
			b := r.mustBuy[len(r.mustBuy)-1]
			r.mustBuy = r.mustBuy[:len(r.mustBuy)-1]
			if !r.featuredStillWanted(b) {
				if r.log != nil {
					r.log.Info("skipping bundle, featured cards already obtained", "bundle", b.Name)
				}
				continue
			}
			r.buyBundle(b)
			source = b.FeaturedPack

		case len(r.sourceOrder) == 0:
			// No eligible pack holds a remaining goal; the master pack is
			// the only way left to make progress.
			source = r.cat.MasterPack()
			r.cost += PullCost
			if r.log != nil {
				r.log.Info("pulling", "pack", source.Name, "gems", PullCost)
			}

		default:
			source = r.bestSource()
			if !source.Normal && !r.unlocked[source] {
				r.craftToUnlock(source)
				// unlocking consumes the iteration; no draw
				continue
			}
			r.cost += PullCost
			if r.log != nil {
				r.log.Info("pulling", "pack", source.Name, "gems", PullCost)
			}
		}

		res := r.engine.DrawTen(source, r.pity[source])
		r.pity[source] = res.Pity
		if r.log != nil {
			r.log.Info("draw complete", "pack", source.Name, "pity", res.Pity)
		}
		r.bookkeepDraw(res)

		if r.craftableNow() {
			if noCrafting && len(r.goals) > 0 {
				continue
			}
			done = true
			break
		}
	}

	outcome := OutcomeIterationCapped
	if done {
		if len(r.goals) == 0 {
			outcome = OutcomeObtained
		} else {
			outcome = OutcomeCraftable
			if r.log != nil {
				r.log.Info("crafting all unobtained goals", "remaining", len(r.goals))
			}
		}
	}
	if r.log != nil {
		r.log.Info("run finished", "gems", r.cost, "outcome", outcome.String())
	}
	return Result{
		Cost:       r.cost,
		Materials:  r.materials,
		Unobtained: r.goals,
		Outcome:    outcome,
		Iterations: iterations,
	}
}

// featuredStillWanted reports whether any of the bundle's featured cards
// remains a goal or sub-goal.
func (r *run) featuredStillWanted(b *catalog.Bundle) bool {
	for _, f := range b.FeaturedCards {
		if countByName(r.goals, f.Name) > 0 || countByName(r.subGoals, f.Name) > 0 {
			return true
		}
	}
	return false
}

// buyBundle charges the bundle and claims its featured cards: main goals
// first, then sub-goals, else a dismantle credit for the duplicate.
func (r *run) buyBundle(b *catalog.Bundle) {
	for _, f := range b.FeaturedCards {
		if r.removeGoal(f) || r.removeSubGoal(f) {
			continue
		}
		r.materials[f.Rarity] += BundleDismantleValue
	}
	r.cost += b.Cost
	if r.log != nil {
		r.log.Info("purchased bundle", "bundle", b.Name, "gems", b.Cost)
	}
}

// expectedReturn scores a pack by the summed pull probability of its
// still-relevant goal cards, weighted per rarity.
func (r *run) expectedReturn(src *catalog.Pack) float64 {
	var sum float64
	for _, c := range r.perSource[src] {
		w := 1.0
		if r.weight != nil {
			if v, ok := r.weight[c.Rarity]; ok {
				w = v
			}
		}
		sum += rarityProb[c.Rarity] * w / float64(src.Total(c.Rarity))
	}
	return sum
}

// bestSource picks the eligible pack with the highest expected return,
// first discovered wins ties.
func (r *run) bestSource() *catalog.Pack {
	best := r.sourceOrder[0]
	bestScore := r.expectedReturn(best)
	for _, src := range r.sourceOrder[1:] {
		if score := r.expectedReturn(src); score > bestScore {
			best, bestScore = src, score
		}
	}
	if r.log != nil {
		r.log.Info("selected pack", "pack", best.Name, "score", bestScore)
	}
	return best
}

// craftToUnlock unlocks a secret pack by crafting. Needed Supers from the
// pack take priority over Ultras; if the pack holds neither, an arbitrary
// Super is crafted and immediately forgotten at the reduced cost.
func (r *run) craftToUnlock(src *catalog.Pack) {
	defer func() { r.unlocked[src] = true }()

	for _, rarity := range []catalog.Rarity{catalog.Super, catalog.Ultra} {
		for _, c := range r.perSource[src] {
			if c.Rarity != rarity {
				continue
			}
			r.removeGoal(c)
			r.materials[rarity] -= CraftCost
			if r.log != nil {
				r.log.Info("crafted goal to unlock pack",
					"card", c.Name, "rarity", rarity.String(), "pack", src.Name,
					"materials", r.materials[rarity])
			}
			return
		}
	}
	r.materials[catalog.Super] -= GenericUnlockCraftCost
	if r.log != nil {
		r.log.Info("crafted generic super to unlock pack",
			"pack", src.Name, "materials", r.materials[catalog.Super])
	}
}

// bookkeepDraw applies one draw result: high-rarity cards unlock their
// secret packs, every card claims a goal or sub-goal or dismantles, and
// unimplemented-card materials join the ledger.
func (r *run) bookkeepDraw(res gacha.Result) {
	for _, d := range res.Cards {
		if d.Card.Rarity >= catalog.Super {
			for _, p := range r.cat.Sources(d.Card) {
				if !r.unlocked[p] && r.log != nil {
					r.log.Info("unlocked pack", "pack", p.Name, "card", d.Card.Name)
				}
				r.unlocked[p] = true
			}
		}
		if r.removeGoal(d.Card) || r.removeSubGoal(d.Card) {
			continue
		}
		r.materials[d.Card.Rarity] += d.Dismantle
	}
	r.materials.Add(res.BaseMaterials)
}

// craftableNow projects the ledger with every remaining goal crafted at
// CraftCost and reports whether no rarity goes negative.
func (r *run) craftableNow() bool {
	projected := r.materials
	for _, g := range r.goals {
		projected[g.Rarity] -= CraftCost
	}
	return projected.NonNegative()
}

// removeGoal removes one copy of the card from the main goals and from
// every per-source partition list, dropping sources that run empty.
func (r *run) removeGoal(c catalog.Card) bool {
	var ok bool
	r.goals, ok = removeCopy(r.goals, c.Name)
	if !ok {
		return false
	}
	if r.log != nil {
		r.log.Info("obtained main goal", "card", c.Name)
	}
	cleanup := false
	for src, cards := range r.perSource {
		if trimmed, removed := removeCopy(cards, c.Name); removed {
			r.perSource[src] = trimmed
			if len(trimmed) == 0 {
				cleanup = true
			}
		}
	}
	if cleanup {
		order := r.sourceOrder[:0]
		for _, src := range r.sourceOrder {
			if len(r.perSource[src]) == 0 {
				delete(r.perSource, src)
				continue
			}
			order = append(order, src)
		}
		r.sourceOrder = order
	}
	return true
}

// removeSubGoal removes one copy of the card from the sub-goals.
func (r *run) removeSubGoal(c catalog.Card) bool {
	var ok bool
	r.subGoals, ok = removeCopy(r.subGoals, c.Name)
	if ok && r.log != nil {
		r.log.Info("obtained sub goal", "card", c.Name)
	}
	return ok
}

func countByName(cards []catalog.Card, name string) int {
	n := 0
	for _, c := range cards {
		if c.Name == name {
			n++
		}
	}
	return n
}

// removeCopy removes the first card with the given name, preserving order.
func removeCopy(cards []catalog.Card, name string) ([]catalog.Card, bool) {
	for i, c := range cards {
		if c.Name == name {
			return append(cards[:i:i], cards[i+1:]...), true
		}
	}
	return cards, false
}

// removeCopies removes up to n cards with the given name.
func removeCopies(cards []catalog.Card, name string, n int) []catalog.Card {
	out := cards[:0]
	for _, c := range cards {
		if n > 0 && c.Name == name {
			n--
			continue
		}
		out = append(out, c)
	}
	return out
}
