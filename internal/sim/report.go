package sim

import (
	"fmt"
	"strings"

	"github.com/mdgachasim/mdgachasim/internal/catalog"
)

// GoalInfo renders a human-readable summary of a decklist: rarity counts,
// the packs its cards come from, the master-pack-only remainder and the
// staple share.
func GoalInfo(cat *catalog.Catalog, goals []catalog.Card) string {
	var b strings.Builder

	b.WriteString("Number per rarity:\n")
	var perRarity [catalog.NumRarities]int
	for _, g := range goals {
		perRarity[g.Rarity]++
	}
	for _, r := range catalog.Rarities {
		fmt.Fprintf(&b, "%d %s(s)\n", perRarity[r], r.Name())
	}
	fmt.Fprintf(&b, "%d total\n", len(goals))

	// every (goal, source) pairing, duplicates meaningful
	packGoals := make(map[string]int)
	var packOrder []string
	sourced := make(map[string]bool)
	for _, g := range goals {
		for _, src := range cat.Sources(g) {
			if packGoals[src.Name] == 0 {
				packOrder = append(packOrder, src.Name)
			}
			packGoals[src.Name]++
			sourced[g.Name] = true
		}
	}
	b.WriteString("\nPacks used:\n")
	for _, name := range packOrder {
		fmt.Fprintf(&b, " - %s (%d card(s))\n", name, packGoals[name])
	}

	var masterOnly [catalog.NumRarities]int
	masterOnlyTotal := 0
	for _, g := range goals {
		if !sourced[g.Name] {
			masterOnly[g.Rarity]++
			masterOnlyTotal++
		}
	}
	fmt.Fprintf(&b, "\n%d Master Pack only card(s): %d (N), %d (R), %d (SR), %d (UR)",
		masterOnlyTotal,
		masterOnly[catalog.Common], masterOnly[catalog.Rare],
		masterOnly[catalog.Super], masterOnly[catalog.Ultra])

	var staples [catalog.NumRarities]int
	staplesTotal := 0
	for _, g := range goals {
		if g.Staple {
			staples[g.Rarity]++
			staplesTotal++
		}
	}
	fmt.Fprintf(&b, "\n%d staples: %d (N), %d (R), %d (SR), %d (UR)",
		staplesTotal,
		staples[catalog.Common], staples[catalog.Rare],
		staples[catalog.Super], staples[catalog.Ultra])

	return b.String()
}
