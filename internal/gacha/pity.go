package gacha

import "errors"

// Easing selects how the Super-or-better probability ramps toward the
// hard pity threshold.
type Easing string

const (
	EaseLinear     Easing = "linear"
	EaseOutQuad    Easing = "easeOutQuad"
	EaseInOutCubic Easing = "easeInOutCubic"
)

var ErrPityCurve = errors.New("invalid pity curve")

// PityCurve escalates the chance of a Super-or-Ultra card as the pity
// counter grows. The counter counts sub-Super cards drawn since the last
// high-rarity card; once it would reach Threshold the next card is forced
// high, so a high-rarity card is guaranteed within a bounded number of
// consecutive draws from the same pack.
type PityCurve struct {
	// Threshold is the hard pity bound in accumulated sub-Super cards.
	Threshold int
	// StartAt is the counter value at which the ramp begins.
	StartAt int
	// Target is the probability reached at (Threshold - 1), in (0,1).
	Target float64
	// Easing shapes the ramp; empty means linear.
	Easing Easing
}

func (c *PityCurve) validate() error {
	if c.Threshold <= 1 {
		return ErrPityCurve
	}
	if c.Target <= 0 || c.Target >= 1 {
		return ErrPityCurve
	}
	if c.StartAt < 0 || c.StartAt >= c.Threshold-1 {
		return ErrPityCurve
	}
	return nil
}

// forced reports whether the counter has reached the hard guarantee.
func (c *PityCurve) forced(count int) bool {
	return count+1 >= c.Threshold
}

// highProb returns the effective Super-or-better probability at the given
// counter, ramping from base toward Target between StartAt and the hard
// threshold.
func (c *PityCurve) highProb(count int, base float64) float64 {
	if c.forced(count) {
		return 1
	}
	if count < c.StartAt {
		return base
	}
	end := c.Threshold - 1
	length := float64(end - c.StartAt)
	if length <= 0 {
		return base
	}
	t := float64(count-c.StartAt) / length
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	switch c.Easing {
	case EaseOutQuad:
		t = 1 - (1-t)*(1-t)
	case EaseInOutCubic:
		if t < 0.5 {
			t = 4 * t * t * t
		} else {
			t = 1 - (-2*t+2)*(-2*t+2)*(-2*t+2)/2
		}
	default:
		// linear
	}
	p := base + (c.Target-base)*t
	if p < 0 {
		p = 0
	}
	// keep < 1 so only the hard threshold guarantees
	if p > 0.999999999999 {
		p = 0.999999999999
	}
	return p
}
