package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromotionType tells whether a promotion needs a code to apply.
type PromotionType string

const (
	// PromotionActive promotions apply only when the buyer enters their code.
	PromotionActive PromotionType = "active"
	// PromotionPassive promotions apply automatically once their conditions are met.
	PromotionPassive PromotionType = "passive"
)

// Valid reports whether t is a known promotion type.
func (t PromotionType) Valid() bool {
	return t == PromotionActive || t == PromotionPassive
}

// RewardType selects how a promotion adjusts the cart.
type RewardType string

const (
	RewardPercentage   RewardType = "percentage"
	RewardFixedAmount  RewardType = "fixedAmount"
	RewardFreeShipping RewardType = "freeShipping"
	// RewardCharges adds DiscountValue to the subtotal as a surcharge.
	RewardCharges RewardType = "charges"
)

// Valid reports whether r is a known reward type.
func (r RewardType) Valid() bool {
	switch r {
	case RewardPercentage, RewardFixedAmount, RewardFreeShipping, RewardCharges:
		return true
	default:
		return false
	}
}

// Deducts reports whether a charge of this reward type lowers the amount due.
func (r RewardType) Deducts() bool {
	switch r {
	case RewardPercentage, RewardFixedAmount, RewardFreeShipping:
		return true
	default:
		return false
	}
}

// ProductRef identifies the catalog product behind a cart line.
type ProductRef struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId,omitempty"`
	Name       string `json:"name,omitempty"`
}

// CartItem is a single cart line as supplied by the storefront.
type CartItem struct {
	Product   *ProductRef `json:"product,omitempty"`
	Price     Money       `json:"price"`
	OnSale    bool        `json:"onSale,omitempty"`
	SalePrice *Money      `json:"salePrice,omitempty"`
	Qty       int         `json:"qty"`
	Weight    Grams       `json:"weight"`
}

// UnitPrice returns the sale price when the item is on sale and one is set.
func (it CartItem) UnitPrice() Money {
	if it.OnSale && it.SalePrice != nil {
		return *it.SalePrice
	}
	return it.Price
}

// LineTotal is the effective unit price multiplied by quantity.
func (it CartItem) LineTotal() Money {
	return it.UnitPrice().Mul(decimal.NewFromInt(int64(it.Qty)))
}

// LineWeight is the item weight multiplied by quantity.
func (it CartItem) LineWeight() Grams {
	return it.Weight.Mul(decimal.NewFromInt(int64(it.Qty)))
}

func (it CartItem) productID() string {
	if it.Product == nil {
		return ""
	}
	return it.Product.ID
}

func (it CartItem) categoryID() string {
	if it.Product == nil {
		return ""
	}
	return it.Product.CategoryID
}

// Promotion describes a store promotion and its eligibility filters.
// Nil or zero minimums are not enforced.
type Promotion struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	Type          PromotionType `json:"type"`
	RewardType    RewardType    `json:"rewardType"`
	DiscountValue Money         `json:"discountValue"`
	StartDate     time.Time     `json:"startDate"`
	EndDate       time.Time     `json:"endDate"`
	Published     bool          `json:"published"`
	Code          string        `json:"code,omitempty"`
	Products      []string      `json:"products,omitempty"`
	Categories    []string      `json:"categories,omitempty"`
	MinPurchases  *Money        `json:"minPurchases,omitempty"`
	MinQuantity   *int          `json:"minQuantity,omitempty"`
	MinWeight     *Grams        `json:"minWeight,omitempty"`
}

// Charge is a derived summary line: the delivery fee or a promotion adjustment.
type Charge struct {
	Code          string        `json:"code,omitempty"`
	Name          string        `json:"name"`
	Value         Money         `json:"value"`
	PromotionID   string        `json:"promotionId,omitempty"`
	Description   string        `json:"description,omitempty"`
	Type          PromotionType `json:"type,omitempty"`
	RewardType    RewardType    `json:"rewardType,omitempty"`
	DiscountValue *Money        `json:"discountValue,omitempty"`
	Deduct        bool          `json:"deduct"`
}

// Summary is the priced view of a cart.
type Summary struct {
	Location    string     `json:"location,omitempty"`
	Items       []CartItem `json:"items"`
	DeliveryFee Money      `json:"deliveryFee"`
	Charges     []Charge   `json:"charges"`
	Total       Money      `json:"total"`
	SubTotal    Money      `json:"subTotal"`
	AllowOrder  bool       `json:"allowOrder"`
	TotalWeight Grams      `json:"totalWeight"`
	Messages    []string   `json:"messages,omitempty"`
}
