// Command seeder inserts a sample promotion catalog for local development.
package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-pricing/internal/app"
)

type seedPromotion struct {
	Name          string
	Description   string
	Type          string
	RewardType    string
	DiscountValue string
	Code          *string
	Categories    []string
	MinPurchases  *string
	MinQuantity   *int32
	MinWeight     *string
}

func ptr[T any](v T) *T { return &v }

var samples = []seedPromotion{
	{
		Name:          "满300减10%",
		Description:   "Ten percent off orders from 300",
		Type:          "passive",
		RewardType:    "percentage",
		DiscountValue: "10",
		MinPurchases:  ptr("300"),
	},
	{
		Name:          "Tea bundle",
		Description:   "Fifteen off when buying three tea items",
		Type:          "passive",
		RewardType:    "fixedAmount",
		DiscountValue: "15",
		Categories:    []string{"tea"},
		MinQuantity:   ptr(int32(3)),
	},
	{
		Name:          "Free shipping",
		Description:   "Free delivery with code FREESHIP for parcels from 500g",
		Type:          "active",
		RewardType:    "freeShipping",
		DiscountValue: "0",
		Code:          ptr("FREESHIP"),
		MinWeight:     ptr("500"),
	},
	{
		Name:          "Gift wrap",
		Description:   "Gift wrapping surcharge",
		Type:          "active",
		RewardType:    "charges",
		DiscountValue: "20",
		Code:          ptr("GIFTWRAP"),
	},
}

const insertPromotion = `
INSERT INTO promotions (id, name, description, type, reward_type, discount_value,
                        start_date, end_date, published, code, categories,
                        min_purchases, min_quantity, min_weight)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, TRUE, $9, $10,
        $11::numeric, $12, $13::numeric)`

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("no .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := app.NewPool(ctx, dbURL, "toko-pricing-seeder")
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := seedPromotions(ctx, pool, time.Now().UTC()); err != nil {
		logger.Fatal().Err(err).Msg("seed promotions")
	}
	logger.Info().Int("promotions", len(samples)).Msg("seeding completed")
}

func seedPromotions(ctx context.Context, pool *pgxpool.Pool, now time.Time) error {
	start := now.Truncate(24 * time.Hour)
	end := start.AddDate(0, 3, 0)

	batch := &pgx.Batch{}
	for _, s := range samples {
		categories := s.Categories
		if categories == nil {
			categories = []string{}
		}
		batch.Queue(insertPromotion,
			uuid.NewString(), s.Name, s.Description, s.Type, s.RewardType, s.DiscountValue,
			start, end, s.Code, categories,
			s.MinPurchases, s.MinQuantity, s.MinWeight,
		)
	}

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM promotions WHERE name = ANY($1)", names()); err != nil {
			return err
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func names() []string {
	out := make([]string, 0, len(samples))
	for _, s := range samples {
		out = append(out, s.Name)
	}
	return out
}
