// Command server exposes the simulator over HTTP/JSON: decklists in, cost
// distribution stats out. Sampled distributions are cached per decklist.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/mdgachasim/mdgachasim/internal/catalog"
	"github.com/mdgachasim/mdgachasim/internal/config"
	"github.com/mdgachasim/mdgachasim/internal/decklist"
	"github.com/mdgachasim/mdgachasim/internal/sim"
)

type server struct {
	cfg   *config.Config
	cat   *catalog.Catalog
	cache *lru.Cache
}

type simulateReq struct {
	Decklist   string `json:"decklist"`
	Population int    `json:"population,omitempty"`
	CoreOnly   bool   `json:"core_only,omitempty"`
	Fuzzy      bool   `json:"fuzzy,omitempty"`
	Seed       uint64 `json:"seed,omitempty"`
}

type simulateResp struct {
	Mean         float64           `json:"mean"`
	StdDev       float64           `json:"std_dev"`
	P50          float64           `json:"p50"`
	P90          float64           `json:"p90"`
	P99          float64           `json:"p99"`
	Population   int               `json:"population"`
	Translations map[string]string `json:"translations,omitempty"`
	Cached       bool              `json:"cached"`
}

type errResp struct {
	Err string `json:"err"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errResp{Err: "POST only"})
		return
	}
	var req simulateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Err: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Decklist) == "" {
		writeJSON(w, http.StatusBadRequest, errResp{Err: "missing decklist"})
		return
	}
	population := req.Population
	if population <= 0 {
		population = s.cfg.Simulation.Population
	}

	res, err := decklist.Parse(s.cat, req.Decklist, !req.Fuzzy)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errResp{Err: err.Error()})
		return
	}
	if len(res.Goals) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errResp{Err: "no goals defined"})
		return
	}

	key := cacheKey(res.Goals, population, req.CoreOnly, req.Seed)
	if cached, ok := s.cache.Get(key); ok {
		resp := cached.(simulateResp)
		resp.Cached = true
		resp.Translations = res.Translations
		writeJSON(w, http.StatusOK, resp)
		return
	}

	stats, err := sim.Population(r.Context(), s.cat, res.Goals, sim.Options{CoreOnly: req.CoreOnly},
		sim.PopulationConfig{
			Trials:  population,
			Workers: s.cfg.Simulation.Workers,
			Seed:    req.Seed,
		})
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errResp{Err: err.Error()})
		return
	}

	resp := simulateResp{
		Mean:       stats.Mean,
		StdDev:     stats.StdDev,
		P50:        stats.P50,
		P90:        stats.P90,
		P99:        stats.P99,
		Population: population,
	}
	s.cache.Add(key, resp)
	resp.Translations = res.Translations
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errResp{Err: "POST only"})
		return
	}
	var req simulateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Err: "invalid request body"})
		return
	}
	res, err := decklist.Parse(s.cat, req.Decklist, !req.Fuzzy)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errResp{Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"info":         sim.GoalInfo(s.cat, res.Goals),
		"translations": res.Translations,
	})
}

// cacheKey normalizes a goal list into a stable cache key. Goal order does
// not change a distribution, but duplicates do, so the key keeps counts.
func cacheKey(goals []catalog.Card, population int, coreOnly bool, seed uint64) string {
	counts := make(map[string]int, len(goals))
	names := make([]string, 0, len(goals))
	for _, g := range goals {
		if counts[g.Name] == 0 {
			names = append(names, g.Name)
		}
		counts[g.Name]++
	}
	sort.Strings(names)
	var b strings.Builder
	for _, n := range names {
		fmt.Fprintf(&b, "%dx%s;", counts[n], n)
	}
	fmt.Fprintf(&b, "|p=%d|core=%t|seed=%d", population, coreOnly, seed)
	return b.String()
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	log := cfg.Logger()

	cat, err := catalog.LoadFile(cfg.Catalog)
	if err != nil {
		log.Error("catalog load failed", "err", err)
		os.Exit(1)
	}
	cache, err := lru.New(cfg.Server.CacheSize)
	if err != nil {
		log.Error("cache init failed", "err", err)
		os.Exit(1)
	}

	s := &server{cfg: cfg, cat: cat, cache: cache}
	mux := http.NewServeMux()
	mux.HandleFunc("/simulate", s.handleSimulate)
	mux.HandleFunc("/info", s.handleInfo)

	log.Info("listening", "addr", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, mux); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
