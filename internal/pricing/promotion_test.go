package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGroupPromotions(t *testing.T) {
	unpublished := promo("unpublished", PromotionPassive, RewardFixedAmount, 10)
	unpublished.Published = false
	expired := promo("expired", PromotionPassive, RewardFixedAmount, 10)
	expired.EndDate = fixedNow.Add(-time.Minute)
	upcoming := promo("upcoming", PromotionActive, RewardFixedAmount, 10)
	upcoming.StartDate = fixedNow.Add(time.Minute)
	unknown := promo("unknown", PromotionType("bundle"), RewardFixedAmount, 10)
	edge := promo("edge", PromotionPassive, RewardFixedAmount, 10)
	edge.StartDate = fixedNow
	edge.EndDate = fixedNow

	groups := GroupPromotions([]Promotion{
		promo("a1", PromotionActive, RewardPercentage, 10),
		promo("p1", PromotionPassive, RewardFreeShipping, 0),
		unpublished, expired, upcoming, unknown, edge,
	}, fixedNow)

	require.Len(t, groups.Active, 1)
	require.Equal(t, "a1", groups.Active[0].ID)
	require.Len(t, groups.Passive, 2)
	require.Equal(t, "p1", groups.Passive[0].ID)
	require.Equal(t, "edge", groups.Passive[1].ID)
}

func TestCheckPromotionConditionsFilters(t *testing.T) {
	items := []CartItem{
		item("shirt", "clothes", 100, 300, 2),
		item("mug", "kitchen", 50, 400, 1),
		{Price: NewMoney(1000), Qty: 1},
	}

	t.Run("unrestricted counts every item", func(t *testing.T) {
		p := promo("p", PromotionPassive, RewardFixedAmount, 5)
		p.MinPurchases = money(1250)
		_, ok := CheckPromotionConditions(items, p)
		require.True(t, ok)
	})

	t.Run("product filter", func(t *testing.T) {
		p := promo("p", PromotionPassive, RewardFixedAmount, 5)
		p.Products = []string{"shirt"}
		qty := 2
		p.MinQuantity = &qty
		_, ok := CheckPromotionConditions(items, p)
		require.True(t, ok)

		qty = 3
		_, ok = CheckPromotionConditions(items, p)
		require.False(t, ok)
	})

	t.Run("category filter", func(t *testing.T) {
		p := promo("p", PromotionPassive, RewardFixedAmount, 5)
		p.Categories = []string{"kitchen"}
		p.MinPurchases = money(51)
		_, ok := CheckPromotionConditions(items, p)
		require.False(t, ok)

		p.MinPurchases = money(50)
		_, ok = CheckPromotionConditions(items, p)
		require.True(t, ok)
	})

	t.Run("both filters must pass", func(t *testing.T) {
		p := promo("p", PromotionPassive, RewardFixedAmount, 5)
		p.Products = []string{"shirt"}
		p.Categories = []string{"kitchen"}
		qty := 1
		p.MinQuantity = &qty
		_, ok := CheckPromotionConditions(items, p)
		require.False(t, ok)
	})

	t.Run("weight minimum", func(t *testing.T) {
		p := promo("p", PromotionPassive, RewardFixedAmount, 5)
		w := NewGrams(1000)
		p.MinWeight = &w
		_, ok := CheckPromotionConditions(items, p)
		require.True(t, ok)

		w = NewGrams(1001)
		_, ok = CheckPromotionConditions(items, p)
		require.False(t, ok)
	})
}

func TestCheckPromotionConditionsUsesSalePrice(t *testing.T) {
	onSale := item("shirt", "clothes", 100, 0, 2)
	onSale.OnSale = true
	onSale.SalePrice = money(60)

	p := promo("p", PromotionPassive, RewardFixedAmount, 5)
	p.MinPurchases = money(121)
	_, ok := CheckPromotionConditions([]CartItem{onSale}, p)
	require.False(t, ok)

	p.MinPurchases = money(120)
	got, ok := CheckPromotionConditions([]CartItem{onSale}, p)
	require.True(t, ok)
	require.Equal(t, p.ID, got.ID)
}

func TestCheckPassivePromotionsStack(t *testing.T) {
	items := []CartItem{item("shirt", "clothes", 100, 300, 1)}
	high := promo("high", PromotionPassive, RewardFixedAmount, 5)
	high.MinPurchases = money(1000)

	got := CheckPassivePromotions(items, []Promotion{
		promo("one", PromotionPassive, RewardFixedAmount, 5),
		high,
		promo("two", PromotionPassive, RewardPercentage, 10),
	})
	require.Len(t, got, 2)
	require.Equal(t, "one", got[0].ID)
	require.Equal(t, "two", got[1].ID)
}

func TestCheckActivePromotions(t *testing.T) {
	items := []CartItem{item("shirt", "clothes", 100, 300, 1)}

	withCode := func(id, code string) Promotion {
		p := promo(id, PromotionActive, RewardFixedAmount, 10)
		p.Code = code
		return p
	}

	t.Run("empty code", func(t *testing.T) {
		require.Empty(t, CheckActivePromotions(items, []Promotion{withCode("a", "SAVE")}, "", fixedNow))
	})

	t.Run("promotions without code never match", func(t *testing.T) {
		require.Empty(t, CheckActivePromotions(items, []Promotion{withCode("a", "")}, "SAVE", fixedNow))
	})

	t.Run("first match wins", func(t *testing.T) {
		got := CheckActivePromotions(items, []Promotion{withCode("a", "OTHER"), withCode("b", "SAVE"), withCode("c", "SAVE")}, "SAVE", fixedNow)
		require.Len(t, got, 1)
		require.Equal(t, "b", got[0].ID)
	})

	t.Run("code is case sensitive", func(t *testing.T) {
		require.Empty(t, CheckActivePromotions(items, []Promotion{withCode("a", "SAVE")}, "save", fixedNow))
	})

	t.Run("outside window", func(t *testing.T) {
		p := withCode("a", "SAVE")
		p.EndDate = fixedNow.Add(-time.Second)
		require.Empty(t, CheckActivePromotions(items, []Promotion{p}, "SAVE", fixedNow))
	})

	t.Run("window bounds are inclusive", func(t *testing.T) {
		p := withCode("a", "SAVE")
		p.StartDate = fixedNow
		p.EndDate = fixedNow
		require.Len(t, CheckActivePromotions(items, []Promotion{p}, "SAVE", fixedNow), 1)
	})

	t.Run("ineligible cart", func(t *testing.T) {
		p := withCode("a", "SAVE")
		p.MinPurchases = money(500)
		require.Empty(t, CheckActivePromotions(items, []Promotion{p, withCode("b", "SAVE")}, "SAVE", fixedNow))
	})
}

func TestSelectPromotionsOrdersPassiveFirst(t *testing.T) {
	items := []CartItem{item("shirt", "clothes", 100, 300, 1)}
	active := promo("active", PromotionActive, RewardFixedAmount, 10)
	active.Code = "SAVE"

	got := SelectPromotions(items, []Promotion{active, promo("passive", PromotionPassive, RewardPercentage, 10)}, "SAVE", fixedNow)
	require.Len(t, got, 2)
	require.Equal(t, "passive", got[0].ID)
	require.Equal(t, "active", got[1].ID)
}
