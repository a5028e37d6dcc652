package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func money(v int64) *Money {
	m := NewMoney(v)
	return &m
}

func requireAmount(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, got.Equal(decimal.NewFromInt(want)), "expected %d, got %s", want, got)
}

func item(id, category string, price, weight int64, qty int) CartItem {
	return CartItem{
		Product: &ProductRef{ID: id, CategoryID: category},
		Price:   NewMoney(price),
		Qty:     qty,
		Weight:  NewGrams(weight),
	}
}

func promo(id string, typ PromotionType, reward RewardType, discount int64) Promotion {
	return Promotion{
		ID:            id,
		Name:          "promo " + id,
		Type:          typ,
		RewardType:    reward,
		DiscountValue: NewMoney(discount),
		StartDate:     fixedNow.Add(-24 * time.Hour),
		EndDate:       fixedNow.Add(24 * time.Hour),
		Published:     true,
	}
}
