// Package pricing plans real-money gem top-ups: given the gem cost a
// simulation estimated, it finds the cheapest combination of store SKUs
// that covers it.
package pricing

import "math"

// SKU is one purchasable gem offer in the store.
type SKU struct {
	ID        string `toml:"id"`
	Name      string `toml:"name"`
	Gems      int    `toml:"gems"`
	BonusGems int    `toml:"bonus_gems"`
	// FirstTimeDouble doubles the base Gems (not BonusGems) on the first
	// purchase of this SKU.
	FirstTimeDouble bool `toml:"first_time_double"`
	PriceCents      int  `toml:"price_cents"`
}

// Shop is a regional SKU catalog. When prices are pre-tax, TaxRate is
// applied on the subtotal; tax-inclusive shops set TaxRate to 0.
type Shop struct {
	Currency string  `toml:"currency"`
	TaxRate  float64 `toml:"tax_rate"`
	SKUs     []SKU   `toml:"skus"`
}

// FirstTime marks SKUs whose first-purchase double is still available.
type FirstTime map[string]bool

// Purchase is one line item of a plan.
type Purchase struct {
	SKUID     string
	Name      string
	Qty       int
	UnitPrice int
	UnitGems  int
	Subtotal  int
}

// Plan is a purchase plan covering a gem target.
type Plan struct {
	Purchases  []Purchase
	SubCents   int
	TaxCents   int
	TotalCents int
	TotalGems  int
	Currency   string
}

type variant struct {
	id    string
	name  string
	gems  int
	price int
}

func expand(shop Shop, first FirstTime) []variant {
	var vs []variant
	for _, s := range shop.SKUs {
		if s.FirstTimeDouble && first != nil && first[s.ID] {
			vs = append(vs, variant{
				id:    s.ID + "#x2",
				name:  s.Name + " (x2)",
				gems:  s.Gems*2 + s.BonusGems,
				price: s.PriceCents,
			})
		}
		vs = append(vs, variant{
			id:    s.ID,
			name:  s.Name,
			gems:  s.Gems + s.BonusGems,
			price: s.PriceCents,
		})
	}
	return vs
}

// MinCostForGems finds the minimum-cost combination yielding at least
// targetGems, allowing unbounded quantities per SKU and one use of each
// first-time double variant.
func MinCostForGems(shop Shop, targetGems int, first FirstTime) Plan {
	if targetGems <= 0 || len(shop.SKUs) == 0 {
		return Plan{Currency: shop.Currency}
	}
	vs := expand(shop, first)

	maxGems := 0
	for _, v := range vs {
		if v.gems > maxGems {
			maxGems = v.gems
		}
	}
	if maxGems == 0 {
		return Plan{Currency: shop.Currency}
	}
	// allow slight overshoot past the target at minimal cost
	limit := targetGems + maxGems

	const inf = int(^uint(0) >> 1)
	dp := make([]int, limit+1)
	choice := make([]int, limit+1)
	prev := make([]int, limit+1)
	for g := range dp {
		dp[g], choice[g], prev[g] = inf, -1, -1
	}
	dp[0] = 0

	for g := 0; g <= limit; g++ {
		if dp[g] == inf {
			continue
		}
		for i, v := range vs {
			ng := g + v.gems
			if ng > limit {
				ng = limit
			}
			if cost := dp[g] + v.price; cost < dp[ng] {
				dp[ng], choice[ng], prev[ng] = cost, i, g
			}
		}
	}

	bestG, bestCost := targetGems, dp[targetGems]
	for g := targetGems; g <= limit; g++ {
		if dp[g] < bestCost {
			bestG, bestCost = g, dp[g]
		}
	}

	counts := make(map[variant]int)
	for g := bestG; g > 0 && choice[g] != -1; g = prev[g] {
		counts[vs[choice[g]]]++
	}
	return buildPlan(shop, vs, counts)
}

// MaxGemsForBudget computes the most gems purchasable within budgetCents
// using an unbounded knapsack over the SKU variants.
func MaxGemsForBudget(shop Shop, budgetCents int, first FirstTime) Plan {
	if budgetCents <= 0 || len(shop.SKUs) == 0 {
		return Plan{Currency: shop.Currency}
	}
	vs := expand(shop, first)

	// approximate pre-tax spend when prices are pre-tax
	budget := budgetCents
	if shop.TaxRate > 0 {
		budget = int(math.Floor(float64(budgetCents) / (1 + shop.TaxRate)))
	}

	dp := make([]int, budget+1)
	choice := make([]int, budget+1)
	for c := range choice {
		choice[c] = -1
	}
	for c := 0; c <= budget; c++ {
		for i, v := range vs {
			if nc := c + v.price; nc <= budget {
				if val := dp[c] + v.gems; val > dp[nc] {
					dp[nc], choice[nc] = val, i
				}
			}
		}
	}
	bestC := 0
	for c := 0; c <= budget; c++ {
		if dp[c] > dp[bestC] {
			bestC = c
		}
	}

	counts := make(map[variant]int)
	for c := bestC; c > 0 && choice[c] != -1; c -= vs[choice[c]].price {
		counts[vs[choice[c]]]++
	}
	return buildPlan(shop, vs, counts)
}

func buildPlan(shop Shop, vs []variant, counts map[variant]int) Plan {
	plan := Plan{Currency: shop.Currency}
	// keep line items in variant order for deterministic output
	for _, v := range vs {
		qty, ok := counts[v]
		if !ok {
			continue
		}
		sub := v.price * qty
		plan.Purchases = append(plan.Purchases, Purchase{
			SKUID:     v.id,
			Name:      v.name,
			Qty:       qty,
			UnitPrice: v.price,
			UnitGems:  v.gems,
			Subtotal:  sub,
		})
		plan.SubCents += sub
		plan.TotalGems += v.gems * qty
	}
	plan.TaxCents, plan.TotalCents = applyTax(plan.SubCents, shop.TaxRate)
	return plan
}

func applyTax(sub int, rate float64) (tax, total int) {
	if rate <= 0 {
		return 0, sub
	}
	t := int(math.Round(float64(sub) * rate))
	return t, sub + t
}
