package decklist

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mdgachasim/mdgachasim/internal/catalog"
)

const testDB = `
rarities:
  "Ash Blossom & Joyous Spring": ur
  "Link Spider": n
  "Raigeki": ur
  "Twin Burst": r
  "Twin Bows": r
packs:
  Deceitful Wings of Darkness: ["Ash Blossom & Joyous Spring"]
master_pack:
  - "Ash Blossom & Joyous Spring"
  - "Link Spider"
  - "Raigeki"
  - "Twin Burst"
  - "Twin Bows"
`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load([]byte(testDB))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return cat
}

func TestSplitNames(t *testing.T) {
	got := SplitNames("Raigeki\n  Link Spider ;Twin Burst\n\n;\n3 Raigeki")
	want := []string{"Raigeki", "Link Spider", "Twin Burst", "3 Raigeki"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitNames = %v, want %v", got, want)
	}
}

func TestResolveExact(t *testing.T) {
	cat := testCatalog(t)

	res, err := Resolve(cat, []string{"raigeki", "2 link spider"}, true)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Goals) != 3 {
		t.Fatalf("goals = %d, want 3", len(res.Goals))
	}
	if res.Goals[0].Name != "Raigeki" {
		t.Fatalf("goal 0 = %q", res.Goals[0].Name)
	}
	if res.Goals[1].Name != "Link Spider" || res.Goals[2].Name != "Link Spider" {
		t.Fatalf("goals = %v", res.Goals)
	}
	if len(res.Translations) != 0 {
		t.Fatalf("exact matches must not record translations: %v", res.Translations)
	}
}

func TestResolveFuzzy(t *testing.T) {
	cat := testCatalog(t)

	res, err := Resolve(cat, []string{"ash blossom"}, false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Goals) != 1 || res.Goals[0].Name != "Ash Blossom & Joyous Spring" {
		t.Fatalf("goals = %v", res.Goals)
	}
	if res.Translations["ash blossom"] != "Ash Blossom & Joyous Spring" {
		t.Fatalf("translations = %v", res.Translations)
	}
}

func TestResolveFullMatchRejectsFuzzy(t *testing.T) {
	cat := testCatalog(t)

	_, err := Resolve(cat, []string{"ash blossom"}, true)
	if err == nil {
		t.Fatal("expected full-match error")
	}
	if !strings.Contains(err.Error(), "Ash Blossom & Joyous Spring") {
		t.Fatalf("error should name the best match: %v", err)
	}
}

func TestResolveAmbiguous(t *testing.T) {
	cat := testCatalog(t)

	_, err := Resolve(cat, []string{"twin"}, false)
	if err == nil {
		t.Fatal("expected ambiguity error")
	}
	if !strings.Contains(err.Error(), "Twin Burst") || !strings.Contains(err.Error(), "Twin Bows") {
		t.Fatalf("error should list candidates: %v", err)
	}
}

func TestResolveUnknown(t *testing.T) {
	cat := testCatalog(t)

	if _, err := Resolve(cat, []string{"qqqq"}, false); err == nil {
		t.Fatal("expected unknown-card error")
	}
}

func TestParse(t *testing.T) {
	cat := testCatalog(t)

	res, err := Parse(cat, "3 Raigeki; Twin Burst", true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Goals) != 4 {
		t.Fatalf("goals = %d, want 4", len(res.Goals))
	}
}
