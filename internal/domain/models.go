// Package domain holds the value types shared by the rebalancer modules.
package domain

import "strings"

// AssetClass identifies one of the fixed top-level allocation buckets
type AssetClass string

const (
	AssetClassEquity             AssetClass = "equity"
	AssetClassRealEstateFund     AssetClass = "realEstateFund"
	AssetClassExchangeTradedFund AssetClass = "exchangeTradedFund"
	AssetClassFixedIncome        AssetClass = "fixedIncome"
)

// AssetClasses lists every asset class in display and iteration order
var AssetClasses = []AssetClass{
	AssetClassEquity,
	AssetClassRealEstateFund,
	AssetClassExchangeTradedFund,
	AssetClassFixedIncome,
}

var assetClassLabels = map[AssetClass]string{
	AssetClassEquity:             "Equities",
	AssetClassRealEstateFund:     "Real Estate Funds",
	AssetClassExchangeTradedFund: "ETFs",
	AssetClassFixedIncome:        "Fixed Income",
}

// Valid reports whether c is one of the known asset classes
func (c AssetClass) Valid() bool {
	_, ok := assetClassLabels[c]
	return ok
}

// Label returns the human-readable class name
func (c AssetClass) Label() string {
	if label, ok := assetClassLabels[c]; ok {
		return label
	}
	return string(c)
}

// ParseAssetClass matches a class name case-insensitively
func ParseAssetClass(s string) (AssetClass, bool) {
	s = strings.TrimSpace(s)
	for _, c := range AssetClasses {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// CapBucket is the market-capitalisation tier of an equity
type CapBucket string

const (
	CapLarge CapBucket = "LargeCap"
	CapMid   CapBucket = "MidCap"
	CapSmall CapBucket = "SmallCap"
	CapMicro CapBucket = "MicroCap"
)

// CapBuckets lists the tiers from largest to smallest
var CapBuckets = []CapBucket{CapLarge, CapMid, CapSmall, CapMicro}

// Valid reports whether b is one of the known cap buckets
func (b CapBucket) Valid() bool {
	for _, c := range CapBuckets {
		if c == b {
			return true
		}
	}
	return false
}

// ParseCapBucket matches a bucket name case-insensitively
func ParseCapBucket(s string) (CapBucket, bool) {
	s = strings.TrimSpace(s)
	for _, b := range CapBuckets {
		if strings.EqualFold(string(b), s) {
			return b, true
		}
	}
	return "", false
}

// Position is a holding as recorded by the portfolio module
type Position struct {
	CurrentPrice *float64   `json:"current_price,omitempty"`
	Symbol       string     `json:"symbol"`
	AssetClass   AssetClass `json:"asset_class"`
	CapBucket    CapBucket  `json:"cap_bucket,omitempty"`
	Sector       string     `json:"sector,omitempty"`
	Quantity     float64    `json:"quantity"`
	AverageCost  float64    `json:"average_cost"`
}

// Price returns the current price, falling back to the average cost
func (p Position) Price() float64 {
	if p.CurrentPrice != nil {
		return *p.CurrentPrice
	}
	return p.AverageCost
}

// Value returns quantity times price
func (p Position) Value() float64 {
	return p.Quantity * p.Price()
}

// FixedIncomeItem is a fixed-income application tracked by its applied principal
type FixedIncomeItem struct {
	ID           string  `json:"id"`
	Counterparty string  `json:"counterparty"`
	IndexType    string  `json:"index_type"`
	Principal    float64 `json:"principal"`
	Rate         float64 `json:"rate"`
}

// Label returns the display name of the item
func (f FixedIncomeItem) Label() string {
	if f.Counterparty != "" {
		return f.Counterparty
	}
	return f.ID
}

// NormalizeSymbol upper-cases and trims a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Float64 returns a pointer to v
func Float64(v float64) *float64 {
	return &v
}
