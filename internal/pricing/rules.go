package pricing

// DeliveryMode selects how the delivery fee is resolved.
type DeliveryMode string

const (
	// DeliveryStatic charges a fixed fee regardless of weight.
	DeliveryStatic DeliveryMode = "static"
	// DeliveryDynamic charges by weight tier.
	DeliveryDynamic DeliveryMode = "dynamic"
)

// Tier maps the weight range (Min, Max] to a delivery fee.
type Tier struct {
	Min   Grams `json:"min"`
	Max   Grams `json:"max"`
	Value Money `json:"value"`
}

// Contains reports whether w falls inside the tier. Min is exclusive, Max inclusive.
func (t Tier) Contains(w Grams) bool {
	return w.GreaterThan(t.Min) && w.LessThanOrEqual(t.Max)
}

// DeliveryRules configures the delivery fee resolver.
type DeliveryRules struct {
	Mode DeliveryMode
	// FixedFee is charged in static mode.
	FixedFee Money
	// DefaultFee is charged in dynamic mode when no tier matches.
	DefaultFee Money
	// Tiers are evaluated in order; the last matching tier wins.
	Tiers []Tier
}

// Rules holds the store-wide pricing configuration. A Rules value is
// treated as read-only once handed to an Engine.
type Rules struct {
	Location     string
	BaseWeight   Grams
	MinWeight    Grams
	MaxWeight    Grams
	MinPurchases Money
	Delivery     DeliveryRules
	// PlaceOrderConditions are evaluated against the cart's total weight.
	PlaceOrderConditions []RangeCondition
}

// DefaultRules returns the storefront's standard rule set.
func DefaultRules() Rules {
	minWeight := NewGrams(0)
	maxWeight := NewGrams(2000)
	return Rules{
		BaseWeight:   NewGrams(200),
		MinWeight:    minWeight,
		MaxWeight:    maxWeight,
		MinPurchases: NewMoney(0),
		Delivery: DeliveryRules{
			Mode:       DeliveryDynamic,
			FixedFee:   NewMoney(0),
			DefaultFee: NewMoney(220),
			Tiers:      DefaultTiers(),
		},
		PlaceOrderConditions: []RangeCondition{WeightCondition(minWeight, maxWeight)},
	}
}

// DefaultTiers returns the built-in weight tiers in ascending order.
func DefaultTiers() []Tier {
	return []Tier{
		{Min: NewGrams(0), Max: NewGrams(1000), Value: NewMoney(160)},
		{Min: NewGrams(1000), Max: NewGrams(1500), Value: NewMoney(190)},
		{Min: NewGrams(1500), Max: NewGrams(2000), Value: NewMoney(220)},
	}
}

// WeightCondition builds the place-order range condition on total weight.
func WeightCondition(min, max Grams) RangeCondition {
	return RangeCondition{
		Type:     ConditionRange,
		Property: "weight",
		Min:      &min,
		Max:      &max,
	}
}
