package sim

import "github.com/mdgachasim/mdgachasim/internal/catalog"

// Fixed gem and material costs of the in-game economy.
const (
	// PullCost is the gem price of one ten-draw from any pack.
	PullCost = 1000
	// CraftCost is the material price of crafting one specific card, paid
	// in the card's own rarity.
	CraftCost = 30
	// GenericUnlockCraftCost is the material price of crafting an
	// arbitrary Super purely to unlock a secret pack. It is cheaper than
	// CraftCost because the crafted card is immediately dismantled.
	GenericUnlockCraftCost = 20
	// BundleDismantleValue is the material credit for a bundle-featured
	// card the player already owns.
	BundleDismantleValue = 10
	// MaxIterations bounds the main loop so every run terminates even
	// under a pathological probability model.
	MaxIterations = 50
)

// rarityProb holds the base single-card pull probabilities used to score
// a pack's expected return. High rarities dominate despite their far
// smaller pool fractions; Rares and Commons are not worth going into a
// pack for, but removing them entirely would leave low-rarity-only
// decklists without a heuristic.
var rarityProb = [catalog.NumRarities]float64{
	catalog.Ultra:  0.025,
	catalog.Super:  0.075,
	catalog.Rare:   0.35 / 100,
	catalog.Common: 0.55 / 1000,
}
