// Package catalog holds the immutable card/pack/bundle registry the
// simulator reads. A Catalog is built once from a database file and is
// never mutated afterwards; every simulation run shares the same value.
package catalog

import "fmt"

// Rarity is the closed set of card rarities, ordered by scarcity.
type Rarity int

const (
	Common Rarity = iota
	Rare
	Super
	Ultra

	NumRarities = 4
)

// Rarities lists all rarities in ascending scarcity order.
var Rarities = [NumRarities]Rarity{Common, Rare, Super, Ultra}

// String returns the in-game short code ("n", "r", "sr", "ur").
func (r Rarity) String() string {
	switch r {
	case Common:
		return "n"
	case Rare:
		return "r"
	case Super:
		return "sr"
	case Ultra:
		return "ur"
	}
	return fmt.Sprintf("Rarity(%d)", int(r))
}

// Name returns the long rarity name.
func (r Rarity) Name() string {
	switch r {
	case Common:
		return "Common"
	case Rare:
		return "Rare"
	case Super:
		return "Super"
	case Ultra:
		return "Ultra"
	}
	return r.String()
}

// ParseRarity maps a database short code to a Rarity.
func ParseRarity(code string) (Rarity, error) {
	switch code {
	case "n":
		return Common, nil
	case "r":
		return Rare, nil
	case "sr":
		return Super, nil
	case "ur":
		return Ultra, nil
	}
	return 0, fmt.Errorf("unknown rarity code %q", code)
}

// Materials is a fixed-size ledger of craft materials indexed by Rarity.
// The zero value is a fully initialized empty ledger. Balances may go
// negative transiently while a run accounts for unlock crafts.
type Materials [NumRarities]int

// Add merges another ledger into this one.
func (m *Materials) Add(o Materials) {
	for i := range m {
		m[i] += o[i]
	}
}

// NonNegative reports whether every rarity balance is >= 0.
func (m Materials) NonNegative() bool {
	for _, v := range m {
		if v < 0 {
			return false
		}
	}
	return true
}

// Card is an immutable card definition. Cards are value types: two cards
// with the same name are the same entity.
type Card struct {
	Name   string
	Rarity Rarity
	// Staple marks commonly-needed low-value cards that core-only cost
	// analysis excludes.
	Staple bool
	// Gift is the number of copies the player receives for free.
	Gift int
}

// Pack is a purchasable or openable card source.
type Pack struct {
	// Name of the pack, unique across the catalog.
	Name string
	// Normal is true for packs that are always purchasable for gems.
	// Secret packs (Normal == false) must first be unlocked by crafting.
	Normal bool

	cards    []Card
	member   map[string]bool
	byRarity [NumRarities][]Card
	totals   [NumRarities]int
}

// assumedMinTotal is the pool size assumed for a rarity the catalog has no
// count for at all, so incomplete data never divides by zero.
const assumedMinTotal = 4

func newPack(name string, normal bool, cards []Card) *Pack {
	p := &Pack{
		Name:   name,
		Normal: normal,
		cards:  cards,
		member: make(map[string]bool, len(cards)),
	}
	for _, c := range cards {
		p.member[c.Name] = true
		p.byRarity[c.Rarity] = append(p.byRarity[c.Rarity], c)
		p.totals[c.Rarity]++
	}
	return p
}

// Cards returns the pack's full card list.
func (p *Pack) Cards() []Card { return p.cards }

// Contains reports whether the pack can yield the given card.
func (p *Pack) Contains(c Card) bool { return p.member[c.Name] }

// CardsOf returns the known cards of one rarity in this pack.
func (p *Pack) CardsOf(r Rarity) []Card { return p.byRarity[r] }

// Total returns the number of distinct cards of the rarity assumed to
// exist in the pack's pool. Forced database counts override the known card
// count; a rarity the pack has no count for at all falls back to
// assumedMinTotal.
func (p *Pack) Total(r Rarity) int {
	if p.totals[r] <= 0 {
		return assumedMinTotal
	}
	return p.totals[r]
}

// Bundle is a one-time purchasable offer granting its featured cards and a
// ten-draw from the featured pack.
type Bundle struct {
	Name          string
	Cost          int
	FeaturedPack  *Pack
	FeaturedCards []Card
}

// Catalog is the read-only registry of all cards, packs and bundles.
type Catalog struct {
	cards      map[string]Card
	cardOrder  []Card
	packs      map[string]*Pack
	packOrder  []*Pack
	masterPack *Pack
	sources    map[string][]*Pack
	bundles    []*Bundle
}

// Card resolves a card by name.
func (c *Catalog) Card(name string) (Card, bool) {
	card, ok := c.cards[name]
	return card, ok
}

// Cards returns every card in the catalog in database order.
func (c *Catalog) Cards() []Card { return c.cardOrder }

// Pack resolves a pack by name. The master pack is not included.
func (c *Catalog) Pack(name string) (*Pack, bool) {
	p, ok := c.packs[name]
	return p, ok
}

// Packs enumerates all packs excluding the master pack.
func (c *Catalog) Packs() []*Pack { return c.packOrder }

// MasterPack returns the universal fallback pack.
func (c *Catalog) MasterPack() *Pack { return c.masterPack }

// Sources returns the packs that legitimately offer the card, excluding
// the master pack. Legacy cards with no source return an empty slice.
func (c *Catalog) Sources(card Card) []*Pack { return c.sources[card.Name] }

// Bundles enumerates all known bundles in database order.
func (c *Catalog) Bundles() []*Bundle { return c.bundles }
