package pricing

import "github.com/shopspring/decimal"

// ConditionRange is the only condition type the checker understands.
const ConditionRange = "range"

// RangeCondition bounds a numeric property. Min is exclusive and Max
// inclusive; a nil bound is not enforced.
type RangeCondition struct {
	Type     string           `json:"type"`
	Property string           `json:"property"`
	Min      *decimal.Decimal `json:"min,omitempty"`
	Max      *decimal.Decimal `json:"max,omitempty"`
}

// ConditionResult is the outcome of checking a RangeCondition.
type ConditionResult struct {
	Condition RangeCondition
	Success   bool
	Message   string
}

// CheckCondition evaluates total against c. The boolean is false when the
// condition type is not supported and nothing was checked.
func CheckCondition(total decimal.Decimal, c RangeCondition) (ConditionResult, bool) {
	if c.Type != ConditionRange {
		return ConditionResult{}, false
	}
	passedMin := c.Min == nil
	passedMax := c.Max == nil
	if c.Min != nil && c.Max != nil && c.Min.GreaterThan(*c.Max) {
		// a range whose bounds cross can never be satisfied
		passedMin, passedMax = false, false
	} else {
		if c.Min != nil && total.GreaterThan(*c.Min) {
			passedMin = true
		}
		if c.Max != nil && total.LessThanOrEqual(*c.Max) {
			passedMax = true
		}
	}
	res := ConditionResult{Condition: c, Success: passedMin && passedMax}
	if !res.Success {
		res.Message = c.Property + " not within range"
	}
	return res, true
}
