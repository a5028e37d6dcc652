package pricing

const (
	// DeliveryFeeCode identifies the delivery fee charge line.
	DeliveryFeeCode = "deliveryFee"
	// DeliveryFeeName is the display label of the delivery fee charge line.
	DeliveryFeeName = "邮费"
)

// ResolveDeliveryFee returns the delivery fee for totalWeight together with
// the charge line describing it. Unknown modes behave like static.
func ResolveDeliveryFee(totalWeight Grams, rules DeliveryRules) (Money, Charge) {
	fee := rules.FixedFee
	if rules.Mode == DeliveryDynamic {
		fee = matchTier(totalWeight, rules.Tiers, rules.DefaultFee)
	}
	return fee, Charge{Code: DeliveryFeeCode, Name: DeliveryFeeName, Value: fee}
}

func matchTier(w Grams, tiers []Tier, fallback Money) Money {
	var (
		matched Money
		found   bool
	)
	for _, t := range tiers {
		if t.Contains(w) {
			matched = t.Value
			found = true
		}
	}
	if !found {
		return fallback
	}
	return matched
}
