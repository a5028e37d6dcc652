// Command quote prices a cart from a JSON file without a database.
//
//	quote -in cart.json [-code SUMMER] [-at 2024-06-01T12:00:00Z]
//
// The input holds {"items": [...], "promotions": [...], "promoCode": "..."}.
// Pricing rules come from the same environment variables as the API.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pricing/internal/config"
	"github.com/noah-isme/toko-pricing/internal/pricing"
)

type input struct {
	Items      []pricing.CartItem  `json:"items"`
	Promotions []pricing.Promotion `json:"promotions"`
	PromoCode  string              `json:"promoCode"`
}

func main() {
	var (
		inPath = flag.String("in", "-", "cart file, - for stdin")
		code   = flag.String("code", "", "promo code, overrides the file's promoCode")
		at     = flag.String("at", "", "evaluation time in RFC3339, defaults to now")
		indent = flag.Bool("pretty", true, "indent the output")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadOffline()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	now := time.Now()
	if *at != "" {
		now, err = time.Parse(time.RFC3339, *at)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse -at")
		}
	}

	in, err := readInput(*inPath)
	if err != nil {
		logger.Fatal().Err(err).Str("in", *inPath).Msg("read cart")
	}
	if *code != "" {
		in.PromoCode = *code
	}

	engine := pricing.NewEngine(cfg.PricingRules())
	engine.Now = func() time.Time { return now }
	summary := engine.Calculate(in.Items, in.Promotions, in.PromoCode)

	enc := json.NewEncoder(os.Stdout)
	if *indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(summary); err != nil {
		logger.Fatal().Err(err).Msg("write summary")
	}
	if !summary.AllowOrder {
		logger.Warn().Strs("messages", summary.Messages).Msg("order not allowed")
	}
}

func readInput(path string) (input, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return input{}, err
		}
		defer f.Close()
		r = f
	}
	var in input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return input{}, fmt.Errorf("decode: %w", err)
	}
	return in, nil
}
