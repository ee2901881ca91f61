package allocation

import (
	"github.com/aristath/rebalancer/internal/domain"
	"github.com/aristath/rebalancer/internal/modules/classification"
)

// DefaultCap is the tier used for equities held without a recorded cap bucket
const DefaultCap = domain.CapLarge

// holding is one instrument row of a class, held or only targeted
type holding struct {
	price      *float64
	symbol     string
	label      string
	cap        domain.CapBucket
	sector     string
	quantity   float64
	value      float64
	targetOnly bool
}

type group struct {
	key   string
	items []holding
}

// classShape is the hierarchy used by one asset class. The tree builder, the
// profile applier and auto-initialisation all go through it.
type classShape interface {
	// sectorParent returns the path whose sector weights cover h; false for classes without a sector tier
	sectorParent(class domain.AssetClass, h holding) (Path, bool)
	// leafParent returns the path whose instrument weights cover h
	leafParent(class domain.AssetClass, h holding) Path
	// children builds the nodes below the class root
	children(b *treeBuilder, class domain.AssetClass, classAbs float64, hs []holding) []Node
}

func shapeOf(class domain.AssetClass) classShape {
	switch class {
	case domain.AssetClassEquity:
		return capThenSectorShape{}
	case domain.AssetClassRealEstateFund:
		return sectorOnlyShape{}
	default:
		return flatShape{}
	}
}

// flatShape: class -> instrument
type flatShape struct{}

func (flatShape) sectorParent(domain.AssetClass, holding) (Path, bool) {
	return Path{}, false
}

func (flatShape) leafParent(class domain.AssetClass, _ holding) Path {
	return FlatPath(class)
}

func (flatShape) children(b *treeBuilder, class domain.AssetClass, classAbs float64, hs []holding) []Node {
	return b.leafNodes(FlatPath(class), classAbs, hs)
}

// sectorOnlyShape: class -> sector -> instrument
type sectorOnlyShape struct{}

func (sectorOnlyShape) sectorParent(class domain.AssetClass, _ holding) (Path, bool) {
	return ClassPath(class), true
}

func (sectorOnlyShape) leafParent(class domain.AssetClass, h holding) Path {
	return SectorPath(ClassPath(class), h.sector)
}

func (sectorOnlyShape) children(b *treeBuilder, class domain.AssetClass, classAbs float64, hs []holding) []Node {
	return b.sectorNodes(ClassPath(class), classAbs, hs)
}

// capThenSectorShape: class -> cap tier -> sector -> instrument
type capThenSectorShape struct{}

func (capThenSectorShape) sectorParent(_ domain.AssetClass, h holding) (Path, bool) {
	return CapPath(h.cap), true
}

func (capThenSectorShape) leafParent(_ domain.AssetClass, h holding) Path {
	return SectorPath(CapPath(h.cap), h.sector)
}

func (capThenSectorShape) children(b *treeBuilder, class domain.AssetClass, classAbs float64, hs []holding) []Node {
	byCap := make(map[domain.CapBucket][]holding)
	for _, h := range hs {
		byCap[h.cap] = append(byCap[h.cap], h)
	}

	var nodes []Node
	for _, bucket := range domain.CapBuckets {
		items := byCap[bucket]
		if len(items) == 0 {
			continue
		}
		p := CapPath(bucket)
		n := b.node(p.Key(), ClassPath(class).Key(), string(bucket), LevelCap, class,
			sumValues(items), b.state.Caps.Value(string(bucket)), classAbs)
		n.Children = b.sectorNodes(p, n.TargetPctAbsolute, items)
		nodes = append(nodes, n)
	}
	return nodes
}

// collectHoldings gathers the held instruments of class plus the instruments that
// only appear in the instrument targets.
func collectHoldings(class domain.AssetClass, positions []domain.Position, fixedIncome []domain.FixedIncomeItem, state TargetState) []holding {
	var hs []holding
	held := make(map[string]bool)

	for _, pos := range positions {
		if pos.AssetClass != class {
			continue
		}
		symbol := domain.NormalizeSymbol(pos.Symbol)
		hs = append(hs, normalizeHolding(class, holding{
			symbol:   symbol,
			label:    symbol,
			cap:      pos.CapBucket,
			sector:   pos.Sector,
			quantity: pos.Quantity,
			price:    pos.CurrentPrice,
			value:    pos.Value(),
		}))
		held[symbol] = true
	}

	if class == domain.AssetClassFixedIncome {
		for _, item := range fixedIncome {
			hs = append(hs, holding{
				symbol:   item.ID,
				label:    item.Label(),
				quantity: 1,
				value:    item.Principal,
			})
			held[item.ID] = true
		}
	}

	for _, key := range sortedKeys(state.Tickers) {
		parent, err := ParsePath(key)
		if err != nil || parent.Class != class || !parent.IsLeafParent() {
			continue
		}
		for _, symbol := range state.Tickers[key].Keys() {
			if held[symbol] {
				continue
			}
			held[symbol] = true
			hs = append(hs, holding{
				symbol:     symbol,
				label:      symbol,
				cap:        parent.Cap,
				sector:     parent.Sector,
				targetOnly: true,
			})
		}
	}
	return hs
}

func normalizeHolding(class domain.AssetClass, h holding) holding {
	switch class {
	case domain.AssetClassEquity:
		if !h.cap.Valid() {
			h.cap = DefaultCap
		}
		if h.sector == "" {
			h.sector = classification.Unclassified
		}
	case domain.AssetClassRealEstateFund:
		h.cap = ""
		if h.sector == "" {
			h.sector = classification.Unclassified
		}
	default:
		h.cap = ""
		h.sector = ""
	}
	return h
}

// groupBy partitions holdings by key, keeping first-appearance order
func groupBy(hs []holding, key func(holding) string) []group {
	var groups []group
	index := make(map[string]int)
	for _, h := range hs {
		k := key(h)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{key: k})
		}
		groups[i].items = append(groups[i].items, h)
	}
	return groups
}

func sumValues(hs []holding) float64 {
	var total float64
	for _, h := range hs {
		total += h.value
	}
	return total
}
