package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Quote outcomes recorded by PricingMetrics.ObserveQuote.
const (
	QuoteAllowed = "allowed"
	QuoteBlocked = "blocked"
	QuoteEmpty   = "empty"
	QuoteInvalid = "invalid"
)

// PricingMetrics tracks cart quotes and promotion catalog behaviour.
// A nil *PricingMetrics records nothing.
type PricingMetrics struct {
	Quotes            *prometheus.CounterVec
	QuoteDuration     prometheus.Histogram
	PromotionsApplied *prometheus.CounterVec
	CatalogLookups    *prometheus.CounterVec
}

// NewPricingMetrics registers and returns the pricing collectors.
func NewPricingMetrics(namespace string, reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PricingMetrics{
		Quotes: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_quotes_total",
			Help:      "Count of cart quotes by outcome.",
		}, []string{"result"})),
		QuoteDuration: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cart_quote_duration_ms",
			Help:      "Time spent pricing a cart, including promotion loading, in milliseconds.",
			Buckets:   []float64{1, 2.5, 5, 10, 25, 50, 100, 250},
		})),
		PromotionsApplied: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotions_applied_total",
			Help:      "Count of promotions applied to quotes by reward type.",
		}, []string{"reward_type"})),
		CatalogLookups: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotion_catalog_lookups_total",
			Help:      "Promotion catalog loads by source.",
		}, []string{"source"})),
	}
}

// ObserveQuote records a finished quote.
func (m *PricingMetrics) ObserveQuote(result string, took time.Duration) {
	if m == nil {
		return
	}
	m.Quotes.WithLabelValues(result).Inc()
	m.QuoteDuration.Observe(DurationMillis(took))
}

// PromotionApplied counts one applied promotion.
func (m *PricingMetrics) PromotionApplied(rewardType string) {
	if m == nil {
		return
	}
	m.PromotionsApplied.WithLabelValues(rewardType).Inc()
}

// CatalogLookup counts a promotion catalog load served from source
// ("cache", "store" or "error").
func (m *PricingMetrics) CatalogLookup(source string) {
	if m == nil {
		return
	}
	m.CatalogLookups.WithLabelValues(source).Inc()
}
