package payments

import (
	"testing"

	"github.com/copafacil/copa-manager/models"
	"github.com/stretchr/testify/assert"
)

func TestPlanByID(t *testing.T) {
	plan, ok := PlanByID("6_months")
	assert.True(t, ok)
	assert.Equal(t, models.PlanSixMonths, plan.ID)
	assert.Equal(t, 6, plan.Months)
	assert.Equal(t, int64(19900), plan.PriceCents)

	_, ok = PlanByID("lifetime")
	assert.False(t, ok)

	// The trial plan is not sellable and never appears in the catalog.
	_, ok = PlanByID("trial")
	assert.False(t, ok)
}

func TestPlansReturnsCopy(t *testing.T) {
	plans := Plans()
	assert.Len(t, plans, 4)

	plans[0].PriceCents = 1
	again := Plans()
	assert.Equal(t, int64(9900), again[0].PriceCents, "callers must not mutate the catalog")
}

func TestApplyDiscount(t *testing.T) {
	assert.Equal(t, int64(9900), ApplyDiscount(9900, 0))
	assert.Equal(t, int64(9900), ApplyDiscount(9900, -10))
	assert.Equal(t, int64(8910), ApplyDiscount(9900, 10))
	assert.Equal(t, int64(4950), ApplyDiscount(9900, 50))
	assert.Equal(t, int64(0), ApplyDiscount(9900, 100))
	assert.Equal(t, int64(0), ApplyDiscount(9900, 150))
}
