package testing

import (
	"github.com/aristath/rebalancer/internal/domain"
)

// NewPositionFixtures returns a small multi-class portfolio worth 6000 at current prices
func NewPositionFixtures() []domain.Position {
	return []domain.Position{
		{
			Symbol:      "ITUB4",
			AssetClass:  domain.AssetClassEquity,
			CapBucket:   domain.CapLarge,
			Sector:      "Banking",
			Quantity:    100,
			AverageCost: 30,
		},
		{
			Symbol:      "HGLG11",
			AssetClass:  domain.AssetClassRealEstateFund,
			Sector:      "Brick",
			Quantity:    20,
			AverageCost: 150,
		},
	}
}

// NewFixedIncomeFixtures returns fixed-income items worth 2000
func NewFixedIncomeFixtures() []domain.FixedIncomeItem {
	return []domain.FixedIncomeItem{
		{ID: "CDB-1", Counterparty: "Banco X", IndexType: "CDI", Principal: 1500, Rate: 110},
		{ID: "LCI-2", Principal: 500},
	}
}
