package allocation

import "github.com/aristath/rebalancer/internal/domain"

// samplePortfolio is worth 10000:
//
//	ITUB4  equity LargeCap Banking      3000
//	WEGE3  equity MidCap Industrials    1000 (no market price)
//	HGLG11 realEstateFund Brick         1500
//	MXRF11 realEstateFund Paper          500
//	BOVA11 exchangeTradedFund           1000
//	CDB-1  fixedIncome                  3000
func samplePortfolio() ([]domain.Position, []domain.FixedIncomeItem, float64) {
	positions := []domain.Position{
		{Symbol: "ITUB4", AssetClass: domain.AssetClassEquity, CapBucket: domain.CapLarge, Sector: "Banking", Quantity: 100, AverageCost: 25, CurrentPrice: domain.Float64(30)},
		{Symbol: "WEGE3", AssetClass: domain.AssetClassEquity, CapBucket: domain.CapMid, Sector: "Industrials", Quantity: 10, AverageCost: 100},
		{Symbol: "HGLG11", AssetClass: domain.AssetClassRealEstateFund, Sector: "Brick", Quantity: 10, AverageCost: 140, CurrentPrice: domain.Float64(150)},
		{Symbol: "MXRF11", AssetClass: domain.AssetClassRealEstateFund, Sector: "Paper", Quantity: 50, AverageCost: 9, CurrentPrice: domain.Float64(10)},
		{Symbol: "BOVA11", AssetClass: domain.AssetClassExchangeTradedFund, Quantity: 10, AverageCost: 90, CurrentPrice: domain.Float64(100)},
	}
	fixedIncome := []domain.FixedIncomeItem{
		{ID: "CDB-1", Counterparty: "Banco X", Principal: 3000, Rate: 12.5, IndexType: "CDI"},
	}
	return positions, fixedIncome, 10000
}

// sampleState targets 50/20/10/20 with BBAS3 planned but not held
func sampleState() TargetState {
	state := NewTargetState()
	state.Classes = weights("equity", 50, "realEstateFund", 20, "exchangeTradedFund", 10, "fixedIncome", 20)
	state.Caps = weights("LargeCap", 80, "MidCap", 20)
	state.Sectors["equity:LargeCap"] = weights("Banking", 100)
	state.Sectors["equity:MidCap"] = weights("Industrials", 100)
	state.Sectors["realEstateFund"] = weights("Brick", 50, "Paper", 50)
	state.Tickers["equity:LargeCap:Banking"] = weights("ITUB4", 50, "BBAS3", 50)
	state.Tickers["equity:MidCap:Industrials"] = weights("WEGE3", 100)
	state.Tickers["realEstateFund:Brick"] = weights("HGLG11", 100)
	state.Tickers["realEstateFund:Paper"] = weights("MXRF11", 100)
	state.Tickers["exchangeTradedFund:_flat"] = weights("BOVA11", 100)
	state.Tickers["fixedIncome:_flat"] = weights("CDB-1", 100)
	return state
}

func findNode(nodes []Node, key string) (Node, bool) {
	for _, n := range nodes {
		if n.Key == key {
			return n, true
		}
		if found, ok := findNode(n.Children, key); ok {
			return found, true
		}
	}
	return Node{}, false
}
