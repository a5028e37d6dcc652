package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	e := NewEngine(DefaultRules())
	e.Now = func() time.Time { return fixedNow }
	return e
}

func TestCalculateEmptyCart(t *testing.T) {
	active := promo("a", PromotionActive, RewardFixedAmount, 10)
	active.Code = "SAVE"
	summary := newTestEngine().Calculate(nil, []Promotion{active, promo("p", PromotionPassive, RewardCharges, 10)}, "SAVE")

	require.Empty(t, summary.Items)
	require.NotNil(t, summary.Items)
	require.Empty(t, summary.Charges)
	require.False(t, summary.AllowOrder)
	require.True(t, summary.DeliveryFee.IsZero())
	require.True(t, summary.Total.IsZero())
	require.True(t, summary.SubTotal.IsZero())
	requireAmount(t, 200, summary.TotalWeight)
}

func TestCalculateTotalsAndWeight(t *testing.T) {
	sale := item("shirt", "clothes", 100, 150, 2)
	sale.OnSale = true
	sale.SalePrice = money(80)
	notSet := item("hat", "clothes", 40, 50, 3)
	notSet.OnSale = true
	flagOff := item("mug", "kitchen", 30, 100, 1)
	flagOff.SalePrice = money(10)

	summary := newTestEngine().Calculate([]CartItem{sale, notSet, flagOff}, nil, "")

	// 80*2 + 40*3 + 30*1
	requireAmount(t, 310, summary.SubTotal)
	// 200 + 150*2 + 50*3 + 100*1
	requireAmount(t, 750, summary.TotalWeight)
	requireAmount(t, 160, summary.DeliveryFee)
	requireAmount(t, 470, summary.Total)
	require.True(t, summary.AllowOrder)
	require.Empty(t, summary.Messages)
	require.Len(t, summary.Charges, 1)
	require.Equal(t, DeliveryFeeCode, summary.Charges[0].Code)
	require.Len(t, summary.Items, 3)
}

func TestCalculateDeliveryTierBoundary(t *testing.T) {
	e := newTestEngine()

	summary := e.Calculate([]CartItem{item("a", "c", 10, 800, 1)}, nil, "")
	requireAmount(t, 1000, summary.TotalWeight)
	requireAmount(t, 160, summary.DeliveryFee)

	summary = e.Calculate([]CartItem{item("a", "c", 10, 801, 1)}, nil, "")
	requireAmount(t, 190, summary.DeliveryFee)
}

func TestCalculateOverweightBlocksOrder(t *testing.T) {
	passive := promo("free", PromotionPassive, RewardFreeShipping, 0)
	summary := newTestEngine().Calculate([]CartItem{item("a", "c", 500, 1000, 2)}, []Promotion{passive}, "")

	requireAmount(t, 2200, summary.TotalWeight)
	require.False(t, summary.AllowOrder)
	require.Equal(t, []string{"weight not within range"}, summary.Messages)
	// priced anyway, with the fallback fee waived by the promotion
	require.Len(t, summary.Charges, 2)
	requireAmount(t, 220, summary.Charges[0].Value)
	requireAmount(t, 1000, summary.Total)
}

func TestCalculateMinPurchasesBlocksOrder(t *testing.T) {
	rules := DefaultRules()
	rules.MinPurchases = NewMoney(1000)
	summary := Compute(rules, fixedNow, []CartItem{item("a", "c", 500, 100, 1)}, nil, "")
	require.False(t, summary.AllowOrder)
	require.Empty(t, summary.Messages)
}

func TestCalculatePercentage(t *testing.T) {
	summary := newTestEngine().Calculate(
		[]CartItem{item("a", "c", 500, 100, 1)},
		[]Promotion{promo("pct", PromotionPassive, RewardPercentage, 10)},
		"",
	)
	require.Len(t, summary.Charges, 2)
	charge := summary.Charges[1]
	require.Equal(t, "pct", charge.PromotionID)
	require.Equal(t, RewardPercentage, charge.RewardType)
	require.Equal(t, PromotionPassive, charge.Type)
	require.True(t, charge.Deduct)
	requireAmount(t, 50, charge.Value)
	requireAmount(t, 10, *charge.DiscountValue)
	requireAmount(t, 500, summary.SubTotal)
	requireAmount(t, 610, summary.Total)
}

func TestCalculateFreeShipping(t *testing.T) {
	summary := newTestEngine().Calculate(
		[]CartItem{item("a", "c", 500, 1000, 1)},
		[]Promotion{promo("ship", PromotionPassive, RewardFreeShipping, 0)},
		"",
	)
	require.True(t, summary.DeliveryFee.IsZero())
	requireAmount(t, 190, summary.Charges[1].Value)
	requireAmount(t, 500, summary.Total)
}

func TestCalculateFixedAmountClampsAtZero(t *testing.T) {
	summary := newTestEngine().Calculate(
		[]CartItem{item("a", "c", 100, 100, 1)},
		[]Promotion{promo("fixed", PromotionPassive, RewardFixedAmount, 300)},
		"",
	)
	requireAmount(t, 300, summary.Charges[1].Value)
	requireAmount(t, 160, summary.Total)
	requireAmount(t, 100, summary.SubTotal)
}

func TestCalculateChargesAddsSurcharge(t *testing.T) {
	summary := newTestEngine().Calculate(
		[]CartItem{item("a", "c", 100, 100, 1)},
		[]Promotion{promo("wrap", PromotionPassive, RewardCharges, 30)},
		"",
	)
	charge := summary.Charges[1]
	require.False(t, charge.Deduct)
	requireAmount(t, 30, charge.Value)
	requireAmount(t, 290, summary.Total)
}

func TestCalculateFoldsInOrder(t *testing.T) {
	active := promo("code", PromotionActive, RewardFixedAmount, 100)
	active.Code = "SAVE100"
	promotions := []Promotion{
		active,
		promo("pct", PromotionPassive, RewardPercentage, 50),
		promo("ship", PromotionPassive, RewardFreeShipping, 0),
	}
	summary := newTestEngine().Calculate([]CartItem{item("a", "c", 1000, 100, 1)}, promotions, "SAVE100")

	require.Len(t, summary.Charges, 4)
	require.Equal(t, "pct", summary.Charges[1].PromotionID)
	require.Equal(t, "ship", summary.Charges[2].PromotionID)
	require.Equal(t, "code", summary.Charges[3].PromotionID)
	requireAmount(t, 500, summary.Charges[1].Value)
	// (1000 - 50%) - 100, shipping waived
	requireAmount(t, 400, summary.Total)
}

func TestCalculateActiveCodeOutsideWindow(t *testing.T) {
	active := promo("code", PromotionActive, RewardFixedAmount, 100)
	active.Code = "SAVE100"
	active.StartDate = fixedNow.Add(time.Hour)
	active.EndDate = fixedNow.Add(2 * time.Hour)

	summary := newTestEngine().Calculate([]CartItem{item("a", "c", 1000, 100, 1)}, []Promotion{active}, "SAVE100")
	require.Len(t, summary.Charges, 1)
	requireAmount(t, 1160, summary.Total)
}

func TestCalculateSkipsUnknownRewardType(t *testing.T) {
	summary := newTestEngine().Calculate(
		[]CartItem{item("a", "c", 100, 100, 1)},
		[]Promotion{promo("odd", PromotionPassive, RewardType("points"), 30)},
		"",
	)
	require.Len(t, summary.Charges, 1)
	requireAmount(t, 260, summary.Total)
}

func TestCalculateUsesInjectedTiers(t *testing.T) {
	rules := DefaultRules()
	rules.Location = "warehouse-a"
	rules.Delivery.Tiers = []Tier{{Min: NewGrams(0), Max: NewGrams(5000), Value: NewMoney(42)}}
	summary := Compute(rules, fixedNow, []CartItem{item("a", "c", 100, 100, 1)}, nil, "")
	requireAmount(t, 42, summary.DeliveryFee)
	require.Equal(t, "warehouse-a", summary.Location)
}

func TestCalculateDoesNotMutateInputs(t *testing.T) {
	items := []CartItem{item("a", "c", 100, 100, 1)}
	promotions := []Promotion{promo("pct", PromotionPassive, RewardPercentage, 10)}
	summary := newTestEngine().Calculate(items, promotions, "")

	summary.Items[0].Qty = 99
	require.Equal(t, 1, items[0].Qty)
	requireAmount(t, 10, promotions[0].DiscountValue)
}
