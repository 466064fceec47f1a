package loyalty

import "math"

// LineItem is a purchased order line as supplied by the order collaborator.
type LineItem struct {
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Category string  `json:"category"`
}

// ComputePoints converts purchased line items into loyalty points.
//
// Each line contributes round(price * quantity * multiplier * 10), rounded
// half-up per line rather than on the grand total, so per-line attribution
// in reward history sums to the same figure. The multiplier is looked up by
// normalized category and defaults to 1.0. Lines with non-positive price or
// quantity are skipped, never rejected: point computation must not abort an
// order flow.
func ComputePoints(items []LineItem, multipliers map[string]float64) int {
	total := 0
	for _, item := range items {
		if item.Price <= 0 || item.Quantity <= 0 {
			continue
		}
		multiplier, ok := multipliers[NormalizeCategory(item.Category)]
		if !ok {
			multiplier = 1.0
		}
		total += int(math.Round(item.Price * float64(item.Quantity) * multiplier * 10))
	}
	return total
}
