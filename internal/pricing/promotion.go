package pricing

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Groups buckets valid promotions by type.
type Groups struct {
	Active  []Promotion `json:"active"`
	Passive []Promotion `json:"passive"`
}

// ValidAt reports whether p is published and running at now. Expiry is
// checked before the start date.
func (p Promotion) ValidAt(now time.Time) bool {
	if !p.Published {
		return false
	}
	if now.After(p.EndDate) {
		return false
	}
	return !now.Before(p.StartDate)
}

// WithinWindow reports whether now lies in [StartDate, EndDate].
func (p Promotion) WithinWindow(now time.Time) bool {
	return !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// GroupPromotions keeps the promotions valid at now and splits them into
// active and passive buckets. Promotions of any other type are dropped.
func GroupPromotions(promotions []Promotion, now time.Time) Groups {
	var g Groups
	for _, p := range promotions {
		if !p.ValidAt(now) {
			continue
		}
		switch p.Type {
		case PromotionActive:
			g.Active = append(g.Active, p)
		case PromotionPassive:
			g.Passive = append(g.Passive, p)
		}
	}
	return g
}

// passesFilters reports whether item counts towards promotion p. An item
// without a product or category reference fails any filter that restricts
// on it.
func passesFilters(item CartItem, p Promotion) bool {
	if len(p.Products) > 0 {
		id := item.productID()
		if id == "" || !slices.Contains(p.Products, id) {
			return false
		}
	}
	if len(p.Categories) > 0 {
		id := item.categoryID()
		if id == "" || !slices.Contains(p.Categories, id) {
			return false
		}
	}
	return true
}

// CheckPromotionConditions aggregates the items matching p's filters and
// reports whether every configured minimum is met. The promotion is
// returned unchanged.
func CheckPromotionConditions(items []CartItem, p Promotion) (Promotion, bool) {
	var (
		purchases = decimal.Zero
		weight    = decimal.Zero
		quantity  int
	)
	for _, it := range items {
		if !passesFilters(it, p) {
			continue
		}
		purchases = purchases.Add(it.LineTotal())
		quantity += it.Qty
		if !it.Weight.IsZero() {
			weight = weight.Add(it.LineWeight())
		}
	}

	if p.MinPurchases != nil && !p.MinPurchases.IsZero() && purchases.LessThan(*p.MinPurchases) {
		return p, false
	}
	if p.MinQuantity != nil && *p.MinQuantity != 0 && quantity < *p.MinQuantity {
		return p, false
	}
	if p.MinWeight != nil && !p.MinWeight.IsZero() && weight.LessThan(*p.MinWeight) {
		return p, false
	}
	return p, true
}

// CheckPassivePromotions returns every passive promotion the cart qualifies
// for. Passive promotions stack.
func CheckPassivePromotions(items []CartItem, passive []Promotion) []Promotion {
	var out []Promotion
	for _, p := range passive {
		if eligible, ok := CheckPromotionConditions(items, p); ok {
			out = append(out, eligible)
		}
	}
	return out
}

// CheckActivePromotions returns at most one active promotion: the first
// whose code equals code and whose window contains now, provided the cart
// qualifies for it.
func CheckActivePromotions(items []CartItem, active []Promotion, code string, now time.Time) []Promotion {
	if code == "" {
		return nil
	}
	for _, p := range active {
		if p.Code == "" || p.Code != code || !p.WithinWindow(now) {
			continue
		}
		if eligible, ok := CheckPromotionConditions(items, p); ok {
			return []Promotion{eligible}
		}
		return nil
	}
	return nil
}

// SelectPromotions returns the promotions to apply to items at now:
// qualifying passive promotions first, then the active promotion matching
// code, if any.
func SelectPromotions(items []CartItem, promotions []Promotion, code string, now time.Time) []Promotion {
	groups := GroupPromotions(promotions, now)
	selected := CheckPassivePromotions(items, groups.Passive)
	return append(selected, CheckActivePromotions(items, groups.Active, code, now)...)
}
