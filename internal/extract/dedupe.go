package extract

import (
	"fmt"

	"github.com/mmtuentertainment/PayPlan-sub009/internal/models"
)

// dedupeItems removes items identical on provider, installment number,
// due date, and amount, keeping the first seen per key. Amount is part of
// the key on purpose: two separate purchases from the same provider with
// the same installment index and due date but different amounts must both
// survive.
func dedupeItems(items []models.Item) ([]models.Item, int) {
	seen := make(map[string]bool, len(items))
	kept := make([]models.Item, 0, len(items))
	removed := 0
	for _, item := range items {
		key := fmt.Sprintf("%s|%d|%s|%.2f", item.Provider, item.InstallmentNo, item.DueDate, item.Amount)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		kept = append(kept, item)
	}
	return kept, removed
}
