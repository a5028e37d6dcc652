package promotion

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pricing/internal/pricing"
)

// DBTX is the subset of pgxpool.Pool used by Store.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store reads promotions from Postgres.
type Store struct {
	DB DBTX
}

// Rows are ordered so that "first matching code" is stable across loads.
const listPublishedPromotions = `
SELECT id::text, name, description, type, reward_type, discount_value::text,
       start_date, end_date, published, code, products, categories,
       min_purchases::text, min_quantity, min_weight::text
FROM promotions
WHERE published AND end_date >= $1
ORDER BY created_at, id`

// promotionRow mirrors one row of listPublishedPromotions.
type promotionRow struct {
	ID            string
	Name          string
	Description   string
	Type          string
	RewardType    string
	DiscountValue string
	StartDate     time.Time
	EndDate       time.Time
	Published     bool
	Code          *string
	Products      []string
	Categories    []string
	MinPurchases  *string
	MinQuantity   *int32
	MinWeight     *string
}

// ListPromotions returns published promotions that have not ended at since.
func (s *Store) ListPromotions(ctx context.Context, since time.Time) ([]pricing.Promotion, error) {
	if s == nil || s.DB == nil {
		return nil, fmt.Errorf("promotion store not configured")
	}
	rows, err := s.DB.Query(ctx, listPublishedPromotions, since)
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[promotionRow])
	if err != nil {
		return nil, fmt.Errorf("scan promotions: %w", err)
	}
	out := make([]pricing.Promotion, 0, len(records))
	for _, rec := range records {
		p, err := rec.toPromotion()
		if err != nil {
			return nil, fmt.Errorf("promotion %s: %w", rec.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r promotionRow) toPromotion() (pricing.Promotion, error) {
	discount, err := decimal.NewFromString(r.DiscountValue)
	if err != nil {
		return pricing.Promotion{}, fmt.Errorf("discount_value: %w", err)
	}
	p := pricing.Promotion{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Type:          pricing.PromotionType(r.Type),
		RewardType:    pricing.RewardType(r.RewardType),
		DiscountValue: discount,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Published:     r.Published,
		Products:      r.Products,
		Categories:    r.Categories,
	}
	if r.Code != nil {
		p.Code = *r.Code
	}
	if p.MinPurchases, err = optionalDecimal(r.MinPurchases); err != nil {
		return pricing.Promotion{}, fmt.Errorf("min_purchases: %w", err)
	}
	if p.MinWeight, err = optionalDecimal(r.MinWeight); err != nil {
		return pricing.Promotion{}, fmt.Errorf("min_weight: %w", err)
	}
	if r.MinQuantity != nil {
		qty := int(*r.MinQuantity)
		p.MinQuantity = &qty
	}
	return p, nil
}

func optionalDecimal(v *string) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
