// Package gacha implements the stochastic pack draw engine: ten-card
// draws with rate-up slots for secret packs, a pity curve on high
// rarities, and dismantle-value rolls for every tracked card.
package gacha

import (
	"errors"

	"github.com/mdgachasim/mdgachasim/internal/catalog"
)

// CardsPerDraw is the fixed number of items produced by one draw.
const CardsPerDraw = 10

var ErrPolicy = errors.New("invalid draw policy")

// Drawn is one tracked card pulled from a pack together with the material
// value it dismantles for if the caller does not keep it.
type Drawn struct {
	Card      catalog.Card
	Dismantle int
}

// Result is the outcome of a single ten-draw.
type Result struct {
	// Cards holds the tracked cards, at most CardsPerDraw of them.
	Cards []Drawn
	// Pity is the updated pity counter to carry into the next draw from
	// the same pack.
	Pity int
	// BaseMaterials accumulates the dismantle value of draws that landed
	// on cards absent from the catalog.
	BaseMaterials catalog.Materials
}

// Engine draws cards from packs against a fixed catalog. The engine is
// stateless between calls; the caller owns the per-pack pity counters.
type Engine struct {
	cat    *catalog.Catalog
	policy Policy
	rng    Source
}

// New creates a draw engine. A nil rng selects the crypto default.
func New(cat *catalog.Catalog, policy Policy, rng Source) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = DefaultSource()
	}
	return &Engine{cat: cat, policy: policy, rng: rng}, nil
}

// DrawTen simulates one ten-item draw from the pack.
//
// Normal packs fill every slot from their own pool. Secret packs guarantee
// their last GuaranteedSlots slots from their own pool and fill the rest
// from the master pool, modeling the general slots of a rate-up pack.
// Within a pool the card index ranges over the assumed rarity total, so
// each distinct card lands with probability odds(rarity)/Total(rarity).
// Indices past the known card list are cards absent from the catalog;
// those contribute their dismantle value to BaseMaterials instead of
// appearing in Cards and do not move the pity counter.
func (e *Engine) DrawTen(pack *catalog.Pack, pity int) Result {
	res := Result{
		Cards: make([]Drawn, 0, CardsPerDraw),
		Pity:  pity,
	}
	for slot := 0; slot < CardsPerDraw; slot++ {
		pool := e.cat.MasterPack()
		if pack.Normal || slot >= CardsPerDraw-e.policy.GuaranteedSlots {
			pool = pack
		}
		rarity := e.rollRarity(res.Pity)

		known := pool.CardsOf(rarity)
		idx := intn(e.rng, pool.Total(rarity))
		if idx >= len(known) {
			res.BaseMaterials[rarity] += e.policy.foil(e.rng)
			continue
		}
		card := known[idx]
		res.Cards = append(res.Cards, Drawn{Card: card, Dismantle: e.policy.foil(e.rng)})
		res.Pity = advancePity(res.Pity, card.Rarity)
	}
	return res
}

// rollRarity picks a slot rarity under the pity-escalated high chance.
func (e *Engine) rollRarity(pity int) catalog.Rarity {
	high := e.policy.Pity.forced(pity)
	if !high {
		p := e.policy.Pity.highProb(pity, e.policy.highBase())
		high = e.rng.Float64() < p
	}
	if high {
		return e.policy.splitHigh(e.rng)
	}
	return e.policy.splitLow(e.rng)
}

// advancePity resets the counter on a Super-or-better card and otherwise
// counts the sub-Super card.
func advancePity(pity int, r catalog.Rarity) int {
	if r >= catalog.Super {
		return 0
	}
	return pity + 1
}
