package payments

import (
	"github.com/copafacil/copa-manager/models"
)

// Plan is one sellable subscription window. The catalog is static; prices
// are in cents (BRL).
type Plan struct {
	ID         models.PlanType `json:"id"`
	Name       string          `json:"name"`
	Months     int             `json:"months"`
	PriceCents int64           `json:"price_cents"`
}

var catalog = []Plan{
	{ID: models.PlanTwoMonths, Name: "Plano 2 meses", Months: 2, PriceCents: 9900},
	{ID: models.PlanThreeMonth, Name: "Plano 3 meses", Months: 3, PriceCents: 12900},
	{ID: models.PlanSixMonths, Name: "Plano 6 meses", Months: 6, PriceCents: 19900},
	{ID: models.PlanOneYear, Name: "Plano 1 ano", Months: 12, PriceCents: 29900},
}

// Plans returns the full catalog in display order.
func Plans() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// PlanByID resolves a plan from its wire identifier.
func PlanByID(id string) (Plan, bool) {
	for _, p := range catalog {
		if string(p.ID) == id {
			return p, true
		}
	}
	return Plan{}, false
}

// ApplyDiscount reduces a price by a whole-percent discount, never below
// zero.
func ApplyDiscount(priceCents int64, discountPercent int) int64 {
	if discountPercent <= 0 {
		return priceCents
	}
	if discountPercent >= 100 {
		return 0
	}
	return priceCents - priceCents*int64(discountPercent)/100
}
