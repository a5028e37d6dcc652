// Package quote serves cart pricing over HTTP.
package quote

import (
	"context"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/toko-pricing/internal/common"
	"github.com/noah-isme/toko-pricing/internal/obs"
	"github.com/noah-isme/toko-pricing/internal/pricing"
)

// QuoteIDHeader carries the identifier assigned to each quote.
const QuoteIDHeader = "X-Quote-ID"

// PromotionLister supplies the promotion catalog.
type PromotionLister interface {
	List(ctx context.Context) ([]pricing.Promotion, error)
}

// Handler exposes cart quoting and the public promotion listing.
type Handler struct {
	Catalog  PromotionLister
	Engine   *pricing.Engine
	Validate *validator.Validate
	Logger   zerolog.Logger
	Metrics  *obs.PricingMetrics
}

type productPayload struct {
	ID         string `json:"id" validate:"required"`
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
}

type itemPayload struct {
	Product   *productPayload `json:"product"`
	Price     pricing.Money   `json:"price" validate:"gte=0"`
	OnSale    bool            `json:"onSale"`
	SalePrice *pricing.Money  `json:"salePrice" validate:"omitempty,gte=0"`
	Qty       int             `json:"qty" validate:"min=1"`
	Weight    pricing.Grams   `json:"weight" validate:"gte=0"`
}

type quoteRequest struct {
	Items     []itemPayload `json:"items" validate:"max=500,dive"`
	PromoCode string        `json:"promoCode" validate:"max=64"`
}

func (p itemPayload) toCartItem() pricing.CartItem {
	item := pricing.CartItem{
		Price:     p.Price,
		OnSale:    p.OnSale,
		SalePrice: p.SalePrice,
		Qty:       p.Qty,
		Weight:    p.Weight,
	}
	if p.Product != nil {
		item.Product = &pricing.ProductRef{ID: p.Product.ID, CategoryID: p.Product.CategoryID, Name: p.Product.Name}
	}
	return item
}

// Quote prices the posted cart.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.Engine == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "pricing engine not configured", nil)
		return
	}
	var req quoteRequest
	if err := common.DecodeAndValidate(r, h.Validate, &req); err != nil {
		h.Metrics.ObserveQuote(obs.QuoteInvalid, time.Since(start))
		common.WriteError(w, err)
		return
	}

	quoteID := uuid.NewString()
	ctx, span := otel.Tracer("quote").Start(r.Context(), "quote.calculate")
	defer span.End()
	logger := h.Logger.With().Str("quote_id", quoteID).Logger()

	items := make([]pricing.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, it.toCartItem())
	}

	var promotions []pricing.Promotion
	if h.Catalog != nil {
		loaded, err := h.Catalog.List(ctx)
		if err != nil {
			// Quotes stay available without promotions.
			logger.Warn().Err(err).Msg("load promotions")
		} else {
			promotions = loaded
		}
	}

	summary := h.Engine.Calculate(items, promotions, req.PromoCode)

	applied := 0
	for _, c := range summary.Charges {
		if c.PromotionID == "" {
			continue
		}
		applied++
		h.Metrics.PromotionApplied(string(c.RewardType))
	}
	span.SetAttributes(
		attribute.String("quote.id", quoteID),
		attribute.Int("quote.items", len(items)),
		attribute.Int("quote.promotions_applied", applied),
		attribute.Bool("quote.allow_order", summary.AllowOrder),
	)

	outcome := obs.QuoteBlocked
	switch {
	case len(items) == 0:
		outcome = obs.QuoteEmpty
	case summary.AllowOrder:
		outcome = obs.QuoteAllowed
	}
	h.Metrics.ObserveQuote(outcome, time.Since(start))
	logger.Debug().
		Int("items", len(items)).
		Int("promotions_applied", applied).
		Str("total", summary.Total.String()).
		Bool("allow_order", summary.AllowOrder).
		Msg("cart quoted")

	w.Header().Set(QuoteIDHeader, quoteID)
	common.Data(w, http.StatusOK, summary)
}

// promotionView is the public shape of a promotion. Codes are never exposed.
type promotionView struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Description   string                `json:"description,omitempty"`
	Type          pricing.PromotionType `json:"type"`
	RewardType    pricing.RewardType    `json:"rewardType"`
	DiscountValue pricing.Money         `json:"discountValue"`
	StartDate     time.Time             `json:"startDate"`
	EndDate       time.Time             `json:"endDate"`
	Products      []string              `json:"products,omitempty"`
	Categories    []string              `json:"categories,omitempty"`
	MinPurchases  *pricing.Money        `json:"minPurchases,omitempty"`
	MinQuantity   *int                  `json:"minQuantity,omitempty"`
	MinWeight     *pricing.Grams        `json:"minWeight,omitempty"`
}

type promotionsResponse struct {
	Active  []promotionView `json:"active"`
	Passive []promotionView `json:"passive"`
}

func toViews(promotions []pricing.Promotion) []promotionView {
	out := make([]promotionView, 0, len(promotions))
	for _, p := range promotions {
		out = append(out, promotionView{
			ID:            p.ID,
			Name:          p.Name,
			Description:   p.Description,
			Type:          p.Type,
			RewardType:    p.RewardType,
			DiscountValue: p.DiscountValue,
			StartDate:     p.StartDate,
			EndDate:       p.EndDate,
			Products:      p.Products,
			Categories:    p.Categories,
			MinPurchases:  p.MinPurchases,
			MinQuantity:   p.MinQuantity,
			MinWeight:     p.MinWeight,
		})
	}
	return out
}

// Promotions lists the currently valid promotions grouped by type.
func (h *Handler) Promotions(w http.ResponseWriter, r *http.Request) {
	if h.Catalog == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "promotion catalog not configured", nil)
		return
	}
	promotions, err := h.Catalog.List(r.Context())
	if err != nil {
		h.Logger.Error().Err(err).Msg("list promotions")
		common.JSONError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "promotions are temporarily unavailable", nil)
		return
	}
	groups := h.Engine.Group(promotions)
	common.Data(w, http.StatusOK, promotionsResponse{
		Active:  toViews(groups.Active),
		Passive: toViews(groups.Passive),
	})
}
