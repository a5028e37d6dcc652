package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Engine prices carts against a fixed rule set. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	Rules Rules
	Now   func() time.Time
}

// NewEngine returns an engine using rules and the wall clock.
func NewEngine(rules Rules) *Engine {
	return &Engine{Rules: rules}
}

func (e *Engine) now() time.Time {
	if e != nil && e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Calculate prices items with the promotions that apply at the engine's
// current time.
func (e *Engine) Calculate(items []CartItem, promotions []Promotion, promoCode string) Summary {
	return Compute(e.Rules, e.now(), items, promotions, promoCode)
}

// Group returns the promotions valid at the engine's current time, split
// by type.
func (e *Engine) Group(promotions []Promotion) Groups {
	return GroupPromotions(promotions, e.now())
}

// Compute calculates the cart summary for items at instant now.
func Compute(rules Rules, now time.Time, items []CartItem, promotions []Promotion, promoCode string) Summary {
	summary := Summary{
		Location:    rules.Location,
		Items:       append([]CartItem{}, items...),
		DeliveryFee: decimal.Zero,
		Charges:     []Charge{},
		Total:       decimal.Zero,
		SubTotal:    decimal.Zero,
		TotalWeight: rules.BaseWeight,
	}
	if len(items) == 0 {
		return summary
	}

	totalWeight := rules.BaseWeight
	subTotal := decimal.Zero
	for _, it := range items {
		subTotal = subTotal.Add(it.LineTotal())
		totalWeight = totalWeight.Add(it.LineWeight())
	}

	// Ineligible carts are still priced; the failure is only reported.
	for _, cond := range rules.PlaceOrderConditions {
		if res, ok := CheckCondition(totalWeight, cond); ok && !res.Success {
			summary.Messages = append(summary.Messages, res.Message)
		}
	}

	deliveryFee, deliveryCharge := ResolveDeliveryFee(totalWeight, rules.Delivery)
	summary.Charges = append(summary.Charges, deliveryCharge)

	t := running{subtotal: subTotal, delivery: deliveryFee}
	for _, p := range SelectPromotions(items, promotions, promoCode, now) {
		var (
			charge Charge
			ok     bool
		)
		t, charge, ok = applyPromotion(p, t, deliveryFee)
		if ok {
			summary.Charges = append(summary.Charges, charge)
		}
	}

	summary.DeliveryFee = t.delivery
	summary.SubTotal = subTotal
	summary.Total = t.subtotal.Add(t.delivery)
	summary.TotalWeight = totalWeight
	summary.AllowOrder = !totalWeight.LessThan(rules.MinWeight) &&
		!totalWeight.GreaterThan(rules.MaxWeight) &&
		!subTotal.LessThan(rules.MinPurchases)
	return summary
}

// running carries the subtotal and delivery fee while promotions are folded in.
type running struct {
	subtotal Money
	delivery Money
}

// applyPromotion folds p into t. baseDelivery is the fee resolved before any
// promotion ran. Promotions with an unknown reward type leave t untouched
// and produce no charge.
func applyPromotion(p Promotion, t running, baseDelivery Money) (running, Charge, bool) {
	discount := p.DiscountValue
	value := discount
	switch p.RewardType {
	case RewardPercentage:
		value = t.subtotal.Mul(discount).Div(hundred)
		t.subtotal = clampZero(t.subtotal.Sub(value))
	case RewardFixedAmount:
		t.subtotal = clampZero(t.subtotal.Sub(discount))
	case RewardFreeShipping:
		value = baseDelivery
		t.delivery = decimal.Zero
	case RewardCharges:
		t.subtotal = clampZero(t.subtotal.Add(discount))
	default:
		return t, Charge{}, false
	}
	return t, Charge{
		PromotionID:   p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Type:          p.Type,
		RewardType:    p.RewardType,
		DiscountValue: &discount,
		Value:         value,
		Deduct:        p.RewardType.Deducts(),
	}, true
}
