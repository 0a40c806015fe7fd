// Package decklist parses free-text decklists and resolves card names
// against the catalog, with optional fuzzy matching. Ambiguity is a hard
// input error, never a silent guess.
package decklist

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mdgachasim/mdgachasim/internal/catalog"
)

// Resolution is a validated decklist plus the fuzzy translations that were
// applied to produce it.
type Resolution struct {
	Goals []catalog.Card
	// Translations maps each fuzzily-matched input name to the resolved
	// card name, for surfacing to the user.
	Translations map[string]string
}

// SplitNames extracts the raw card entries from decklist text. Entries are
// separated by newlines or semicolons; each is an optional leading count
// in 1..3 followed by the card name.
func SplitNames(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, ";") {
			for _, part := range strings.Split(line, ";") {
				if part = strings.TrimSpace(part); part != "" {
					names = append(names, part)
				}
			}
			continue
		}
		names = append(names, line)
	}
	return names
}

// Resolve turns raw entries into catalog cards. Exact (case-insensitive)
// matches win; otherwise the closest fuzzy match is used unless fullMatch
// is set. Zero or multiple equally-close candidates are errors.
func Resolve(cat *catalog.Catalog, names []string, fullMatch bool) (Resolution, error) {
	res := Resolution{Translations: make(map[string]string)}

	cards := cat.Cards()
	lower := make([]string, len(cards))
	byLower := make(map[string]catalog.Card, len(cards))
	for i, c := range cards {
		lower[i] = strings.ToLower(c.Name)
		byLower[lower[i]] = c
	}

	for _, entry := range names {
		if entry == "" {
			continue
		}
		count := 1
		if c := entry[0]; c >= '1' && c <= '3' {
			count = int(c - '0')
			entry = strings.TrimSpace(entry[1:])
		}
		key := strings.ToLower(entry)
		if card, ok := byLower[key]; ok {
			for i := 0; i < count; i++ {
				res.Goals = append(res.Goals, card)
			}
			continue
		}

		matches := fuzzy.Find(key, lower)
		if len(matches) == 0 {
			return Resolution{}, fmt.Errorf("unable to find card %q", entry)
		}
		best := closeMatches(matches)
		if len(best) > 1 {
			var candidates []string
			for _, m := range best {
				candidates = append(candidates, " - "+byLower[m.Str].Name)
			}
			return Resolution{}, fmt.Errorf("multiple close matches for %q:\n%s",
				entry, strings.Join(candidates, "\n"))
		}
		card := byLower[best[0].Str]
		if fullMatch {
			return Resolution{}, fmt.Errorf("unable to fully match %q (best match: %q)", entry, card.Name)
		}
		res.Translations[entry] = card.Name
		for i := 0; i < count; i++ {
			res.Goals = append(res.Goals, card)
		}
	}
	return res, nil
}

// Parse is the convenience combination of SplitNames and Resolve.
func Parse(cat *catalog.Catalog, text string, fullMatch bool) (Resolution, error) {
	return Resolve(cat, SplitNames(text), fullMatch)
}

// ambiguityMargin is the score distance within which two fuzzy matches
// count as equally close. Candidates sharing the same matched prefix score
// within bonus-level distance of each other, while a clearly better match
// outscores the runner-up by far more.
const ambiguityMargin = 15

// closeMatches keeps every candidate scoring within ambiguityMargin of the
// best one. Matches arrive sorted by descending score.
func closeMatches(matches fuzzy.Matches) fuzzy.Matches {
	top := matches[0].Score
	out := fuzzy.Matches{matches[0]}
	for _, m := range matches[1:] {
		if top-m.Score > ambiguityMargin {
			break
		}
		out = append(out, m)
	}
	return out
}
