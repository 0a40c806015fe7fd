package gacha

import "github.com/mdgachasim/mdgachasim/internal/catalog"

// FoilOdds describes one dismantle-value tier and its probability. Higher
// quality pulls (glossy, royal) dismantle for more materials.
type FoilOdds struct {
	Value int
	Prob  float64
}

// Policy is the tunable probability model behind DrawTen. Any internally
// consistent policy satisfies the engine contract; this one is shaped after
// the published base rates with a ramping pity curve on Super-or-better.
type Policy struct {
	// Odds holds the per-slot base rarity probabilities. The Super and
	// Ultra entries together define the base high-rarity chance that the
	// pity curve escalates; Common and Rare split the remainder.
	Odds [catalog.NumRarities]float64
	// Pity escalates the high-rarity chance per sub-Super card drawn.
	Pity PityCurve
	// Foils is the dismantle-value distribution; probabilities should sum
	// to 1 and entries are tried in order.
	Foils []FoilOdds
	// GuaranteedSlots is the number of slots per ten-draw that a secret
	// pack guarantees to come from its own card list.
	GuaranteedSlots int
}

// DefaultPolicy matches the valuation heuristic used by the simulator:
// Ultra 2.5% and Super 7.5% per slot, with a linear pity ramp beginning
// after two empty ten-draws and a hard guarantee within three.
func DefaultPolicy() Policy {
	return Policy{
		Odds: [catalog.NumRarities]float64{
			catalog.Common: 0.45,
			catalog.Rare:   0.45,
			catalog.Super:  0.075,
			catalog.Ultra:  0.025,
		},
		Pity: PityCurve{
			Threshold: 30,
			StartAt:   20,
			Target:    0.5,
			Easing:    EaseLinear,
		},
		Foils: []FoilOdds{
			{Value: 10, Prob: 0.92},
			{Value: 15, Prob: 0.06},
			{Value: 30, Prob: 0.02},
		},
		GuaranteedSlots: 4,
	}
}

// Validate checks the policy for internal consistency.
func (p Policy) Validate() error {
	if err := p.Pity.validate(); err != nil {
		return err
	}
	var sum float64
	for _, o := range p.Odds {
		if o < 0 {
			return ErrPolicy
		}
		sum += o
	}
	if sum <= 0 {
		return ErrPolicy
	}
	if p.GuaranteedSlots < 0 || p.GuaranteedSlots > CardsPerDraw {
		return ErrPolicy
	}
	if len(p.Foils) == 0 {
		return ErrPolicy
	}
	for _, f := range p.Foils {
		if f.Value < 0 || f.Prob < 0 {
			return ErrPolicy
		}
	}
	return nil
}

// highBase returns the base probability of a Super-or-better slot.
func (p Policy) highBase() float64 {
	return p.Odds[catalog.Super] + p.Odds[catalog.Ultra]
}

// splitHigh picks Super or Ultra according to their relative odds.
func (p Policy) splitHigh(rng Source) catalog.Rarity {
	s, u := p.Odds[catalog.Super], p.Odds[catalog.Ultra]
	if s+u <= 0 {
		return catalog.Super
	}
	if rng.Float64()*(s+u) < u {
		return catalog.Ultra
	}
	return catalog.Super
}

// splitLow picks Rare or Common according to their relative odds.
func (p Policy) splitLow(rng Source) catalog.Rarity {
	c, r := p.Odds[catalog.Common], p.Odds[catalog.Rare]
	if c+r <= 0 {
		return catalog.Common
	}
	if rng.Float64()*(c+r) < r {
		return catalog.Rare
	}
	return catalog.Common
}

// foil rolls a dismantle value from the foil distribution.
func (p Policy) foil(rng Source) int {
	roll := rng.Float64()
	for _, f := range p.Foils {
		if roll < f.Prob {
			return f.Value
		}
		roll -= f.Prob
	}
	return p.Foils[len(p.Foils)-1].Value
}
