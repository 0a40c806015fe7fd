package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MasterPackName is the reserved name of the universal fallback pack.
const MasterPackName = "Master Pack"

// rawDatabase mirrors the YAML database schema.
type rawDatabase struct {
	// One-time purchasable bundles.
	Bundles []rawBundle `yaml:"bundles"`
	// Card name -> gifted quantity.
	Gifts map[string]int `yaml:"gifts"`
	// Pack name -> names of all cards contained in the pack.
	Packs map[string][]string `yaml:"packs"`
	// Card name -> rarity short code ("n", "r", "sr", "ur").
	Rarities map[string]string `yaml:"rarities"`
	// Names of staple cards.
	Staples []string `yaml:"staples"`
	// Names of selection packs, which are always purchasable. Every other
	// pack is a secret pack that must be unlocked first.
	SelectionPacks []string `yaml:"selection_packs"`
	// Names of the cards contained in the master pack.
	MasterPack []string `yaml:"master_pack"`
	// Pack name -> rarity code -> forced total count, for packs whose full
	// pool size is not reflected by the known card list.
	ForceSetTotals map[string]map[string]int `yaml:"force_set_totals"`
}

type rawBundle struct {
	Title string   `yaml:"title"`
	Pack  string   `yaml:"pack"`
	Cards []string `yaml:"cards"`
	Price int      `yaml:"price"`
}

// LoadFile reads and validates a YAML database file. Loading is
// all-or-nothing: any inconsistency returns an error and no catalog.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read database: %w", err)
	}
	return Load(b)
}

// Load builds a Catalog from raw YAML database bytes.
func Load(data []byte) (*Catalog, error) {
	var raw rawDatabase
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode database: %w", err)
	}
	return build(raw)
}

func build(raw rawDatabase) (*Catalog, error) {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	staples := make(map[string]bool, len(raw.Staples))
	for _, name := range raw.Staples {
		staples[name] = true
	}
	selection := make(map[string]bool, len(raw.SelectionPacks))
	for _, name := range raw.SelectionPacks {
		selection[name] = true
	}

	cat := &Catalog{
		cards:   make(map[string]Card, len(raw.Rarities)),
		packs:   make(map[string]*Pack, len(raw.Packs)),
		sources: make(map[string][]*Pack),
	}

	// Decode order of a YAML mapping is not stable, so card order follows
	// the sorted name list to keep catalogs deterministic.
	for _, name := range sortedKeys(raw.Rarities) {
		rarity, err := ParseRarity(raw.Rarities[name])
		if err != nil {
			fail("card %q: %v", name, err)
			continue
		}
		card := Card{
			Name:   name,
			Rarity: rarity,
			Staple: staples[name],
			Gift:   raw.Gifts[name],
		}
		cat.cards[name] = card
		cat.cardOrder = append(cat.cardOrder, card)
	}

	for name, gift := range raw.Gifts {
		if _, ok := cat.cards[name]; !ok {
			fail("gift references unknown card %q", name)
		}
		if gift < 0 {
			fail("gift count for %q must be >= 0", name)
		}
	}
	for name := range staples {
		if _, ok := cat.cards[name]; !ok {
			fail("staple references unknown card %q", name)
		}
	}

	resolve := func(ctx string, names []string) []Card {
		cards := make([]Card, 0, len(names))
		for _, n := range names {
			card, ok := cat.cards[n]
			if !ok {
				fail("%s references unknown card %q", ctx, n)
				continue
			}
			cards = append(cards, card)
		}
		return cards
	}

	cat.masterPack = newPack(MasterPackName, true, resolve("master pack", raw.MasterPack))

	for _, name := range sortedKeys(raw.Packs) {
		if name == MasterPackName {
			fail("pack name %q is reserved", MasterPackName)
			continue
		}
		pack := newPack(name, selection[name], resolve("pack "+name, raw.Packs[name]))
		cat.packs[name] = pack
		cat.packOrder = append(cat.packOrder, pack)
	}
	for name := range selection {
		if _, ok := cat.packs[name]; !ok {
			fail("selection pack %q is not a known pack", name)
		}
	}

	for packName, forced := range raw.ForceSetTotals {
		pack, ok := cat.packs[packName]
		if !ok {
			if packName != MasterPackName {
				fail("force_set_totals references unknown pack %q", packName)
				continue
			}
			pack = cat.masterPack
		}
		for code, count := range forced {
			rarity, err := ParseRarity(code)
			if err != nil {
				fail("force_set_totals for %q: %v", packName, err)
				continue
			}
			if count < 0 {
				fail("force_set_totals for %q: %s count must be >= 0", packName, code)
				continue
			}
			pack.totals[rarity] = count
		}
	}

	// Card -> source packs, master pack excluded.
	for _, pack := range cat.packOrder {
		for _, card := range pack.Cards() {
			cat.sources[card.Name] = append(cat.sources[card.Name], pack)
		}
	}

	for _, b := range raw.Bundles {
		if b.Price < 0 {
			fail("bundle %q: price must be >= 0", b.Title)
		}
		featured, ok := cat.packs[b.Pack]
		if !ok {
			if b.Pack == MasterPackName {
				featured = cat.masterPack
			} else {
				fail("bundle %q references unknown pack %q", b.Title, b.Pack)
				continue
			}
		}
		cat.bundles = append(cat.bundles, &Bundle{
			Name:          b.Title,
			Cost:          b.Price,
			FeaturedPack:  featured,
			FeaturedCards: resolve("bundle "+b.Title, b.Cards),
		})
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("database validation failed: %s", strings.Join(errs, "; "))
	}
	return cat, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
