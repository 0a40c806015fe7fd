package sim

import (
	"log/slog"

	"github.com/mdgachasim/mdgachasim/internal/catalog"
	"github.com/mdgachasim/mdgachasim/internal/gacha"
)

// Outcome tags how a simulation run ended.
type Outcome int

const (
	// OutcomeObtained: every goal was obtained directly through draws,
	// bundles or unlock crafts.
	OutcomeObtained Outcome = iota
	// OutcomeCraftable: goals remain but the final ledger covers crafting
	// all of them.
	OutcomeCraftable
	// OutcomeIterationCapped: the iteration bound was reached first. The
	// sample is still valid, just not fully optimized.
	OutcomeIterationCapped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeObtained:
		return "obtained"
	case OutcomeCraftable:
		return "craftable"
	case OutcomeIterationCapped:
		return "iteration-capped"
	}
	return "unknown"
}

// Options are the optional inputs of one simulation run. The zero value is
// valid. Nil slices and maps mean "no override supplied": gift counts then
// come from the cards themselves and staple flags from the catalog.
type Options struct {
	// SubGoals are obtained opportunistically and never dismantled, but no
	// draws are spent on them deliberately.
	SubGoals []catalog.Card
	// Materials is the starting ledger.
	Materials catalog.Materials
	// Unlocked lists packs already unlocked at run start.
	Unlocked []*catalog.Pack
	// Bundles are the candidate one-time offers.
	Bundles []*catalog.Bundle
	// CoreOnly removes staple goals before simulating.
	CoreOnly bool
	// RarityWeight scales the expected-return valuation per rarity;
	// missing rarities weigh 1.
	RarityWeight map[catalog.Rarity]float64
	// Gifts overrides the per-card gift counts when non-nil.
	Gifts []catalog.Card
	// Staples overrides the catalog staple flags when non-nil, keyed by
	// card name.
	Staples map[string]bool
	// Log receives a structured event per simulation step; nil disables.
	Log *slog.Logger
	// NoCrafting keeps the loop going instead of finishing early once the
	// remaining goals become craftable. Testing only.
	NoCrafting bool
	// Policy overrides the draw engine probability model.
	Policy *gacha.Policy
	// Rand overrides the randomness source, e.g. for reproducible runs.
	Rand gacha.Source
}

// Result is the outcome of one simulation run.
type Result struct {
	// Cost is the total gems spent.
	Cost int
	// Materials is the final ledger, including any surplus.
	Materials catalog.Materials
	// Unobtained lists the goals never directly obtained; the caller is
	// expected to craft them at CraftCost each, which the reported ledger
	// covers unless the run was iteration-capped.
	Unobtained []catalog.Card
	// Outcome tags how the run ended.
	Outcome Outcome
	// Iterations is the number of main-loop iterations executed.
	Iterations int
}
