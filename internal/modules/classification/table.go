package classification

import (
	"strings"

	"github.com/aristath/rebalancer/internal/domain"
)

// Unclassified is the sector assigned when nothing better is known
const Unclassified = "unclassified"

// Rebalancing sectors for real-estate funds
const (
	SectorBrick  = "Brick"
	SectorPaper  = "Paper"
	SectorHybrid = "Hybrid"
)

// Entry is what the classifier knows about a symbol
type Entry struct {
	AssetClass domain.AssetClass `json:"asset_class"`
	Sector     string            `json:"sector"`
}

// staticTable maps normalized symbols to their class and detailed sector.
// Real-estate fund sectors are the detailed sub-sectors; RebalancingSector collapses them.
var staticTable = map[string]Entry{
	// Equities
	"ITUB4":  {domain.AssetClassEquity, "Banking"},
	"BBDC4":  {domain.AssetClassEquity, "Banking"},
	"BBAS3":  {domain.AssetClassEquity, "Banking"},
	"SANB11": {domain.AssetClassEquity, "Banking"},
	"BBSE3":  {domain.AssetClassEquity, "Insurance"},
	"PSSA3":  {domain.AssetClassEquity, "Insurance"},
	"PETR4":  {domain.AssetClassEquity, "Oil & Gas"},
	"PRIO3":  {domain.AssetClassEquity, "Oil & Gas"},
	"VALE3":  {domain.AssetClassEquity, "Mining"},
	"GGBR4":  {domain.AssetClassEquity, "Steel"},
	"WEGE3":  {domain.AssetClassEquity, "Industrials"},
	"EMBR3":  {domain.AssetClassEquity, "Industrials"},
	"TAEE11": {domain.AssetClassEquity, "Utilities"},
	"EGIE3":  {domain.AssetClassEquity, "Utilities"},
	"SAPR11": {domain.AssetClassEquity, "Utilities"},
	"CPLE6":  {domain.AssetClassEquity, "Utilities"},
	"ABEV3":  {domain.AssetClassEquity, "Consumer Staples"},
	"MGLU3":  {domain.AssetClassEquity, "Retail"},
	"LREN3":  {domain.AssetClassEquity, "Retail"},
	"RADL3":  {domain.AssetClassEquity, "Healthcare"},
	"HAPV3":  {domain.AssetClassEquity, "Healthcare"},
	"VIVT3":  {domain.AssetClassEquity, "Telecom"},
	"TOTS3":  {domain.AssetClassEquity, "Technology"},
	"SUZB3":  {domain.AssetClassEquity, "Pulp & Paper"},
	"KLBN11": {domain.AssetClassEquity, "Pulp & Paper"},

	// Real-estate funds
	"HGLG11": {domain.AssetClassRealEstateFund, "Logistics"},
	"BTLG11": {domain.AssetClassRealEstateFund, "Logistics"},
	"XPLG11": {domain.AssetClassRealEstateFund, "Logistics"},
	"XPML11": {domain.AssetClassRealEstateFund, "Shopping Malls"},
	"VISC11": {domain.AssetClassRealEstateFund, "Shopping Malls"},
	"HSML11": {domain.AssetClassRealEstateFund, "Shopping Malls"},
	"HGRE11": {domain.AssetClassRealEstateFund, "Corporate Offices"},
	"PVBI11": {domain.AssetClassRealEstateFund, "Corporate Offices"},
	"HGRU11": {domain.AssetClassRealEstateFund, "Retail"},
	"TRXF11": {domain.AssetClassRealEstateFund, "Retail"},
	"HCTR11": {domain.AssetClassRealEstateFund, "Receivables"},
	"KNCR11": {domain.AssetClassRealEstateFund, "Receivables"},
	"KNIP11": {domain.AssetClassRealEstateFund, "Receivables"},
	"MXRF11": {domain.AssetClassRealEstateFund, "Receivables"},
	"CPTS11": {domain.AssetClassRealEstateFund, "Receivables"},
	"IRDM11": {domain.AssetClassRealEstateFund, "Receivables"},
	"BCFF11": {domain.AssetClassRealEstateFund, "Fund of Funds"},
	"KNRI11": {domain.AssetClassRealEstateFund, "Hybrid"},
	"ALZR11": {domain.AssetClassRealEstateFund, "Hybrid"},

	// ETFs
	"BOVA11": {domain.AssetClassExchangeTradedFund, "Index"},
	"SMAL11": {domain.AssetClassExchangeTradedFund, "Index"},
	"IVVB11": {domain.AssetClassExchangeTradedFund, "International"},
	"HASH11": {domain.AssetClassExchangeTradedFund, "Crypto"},
	"GOLD11": {domain.AssetClassExchangeTradedFund, "Commodities"},
}

// realEstateRebalancingSectors collapses detailed fund sub-sectors into the three rebalancing buckets.
// Keys are lower-case.
var realEstateRebalancingSectors = map[string]string{
	"logistics":         SectorBrick,
	"shopping malls":    SectorBrick,
	"corporate offices": SectorBrick,
	"offices":           SectorBrick,
	"retail":            SectorBrick,
	"industrial":        SectorBrick,
	"hospitals":         SectorBrick,
	"education":         SectorBrick,
	"agribusiness":      SectorBrick,
	"brick":             SectorBrick,
	"receivables":       SectorPaper,
	"cri":               SectorPaper,
	"mortgage paper":    SectorPaper,
	"paper":             SectorPaper,
	"hybrid":            SectorHybrid,
	"fund of funds":     SectorHybrid,
	"development":       SectorHybrid,
}

// RebalancingSector maps a detailed sector onto the scheme used for rebalancing
// the given class. Only real-estate funds are remapped; unknown fund sectors
// fall back to Hybrid.
func RebalancingSector(class domain.AssetClass, sector string) string {
	sector = strings.TrimSpace(sector)
	if sector == "" {
		return Unclassified
	}
	if class != domain.AssetClassRealEstateFund || sector == Unclassified {
		return sector
	}
	if mapped, ok := realEstateRebalancingSectors[strings.ToLower(sector)]; ok {
		return mapped
	}
	return SectorHybrid
}

// RealEstateSectors lists the rebalancing buckets for real-estate funds in display order
func RealEstateSectors() []string {
	return []string{SectorBrick, SectorPaper, SectorHybrid}
}
