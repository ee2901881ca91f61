package allocation

import (
	"math"
	"sort"

	"github.com/aristath/rebalancer/internal/domain"
)

// ActionThreshold is the absolute adjustment, in currency units, below which an
// instrument is considered on target
const ActionThreshold = 50.0

// Level is the tier of a node in the target tree
type Level string

const (
	LevelClass  Level = "class"
	LevelCap    Level = "cap"
	LevelSector Level = "sector"
	LevelTicker Level = "ticker"
)

// ActionKind is the suggested handling of an instrument
type ActionKind string

const (
	ActionOK         ActionKind = "ok"
	ActionBuy        ActionKind = "buy"
	ActionOverweight ActionKind = "overweight"
)

// Action is the human-readable step derived from an instrument's adjustment
type Action struct {
	Kind   ActionKind `json:"kind"`
	Lots   int64      `json:"lots,omitempty"`
	Amount float64    `json:"amount"`
}

var classColors = map[domain.AssetClass]string{
	domain.AssetClassEquity:             "#2563eb",
	domain.AssetClassRealEstateFund:     "#16a34a",
	domain.AssetClassExchangeTradedFund: "#9333ea",
	domain.AssetClassFixedIncome:        "#ea580c",
}

// Node is one entry of the target tree. Percentages are of the whole portfolio
// except TargetPctRelative, which is of the parent.
type Node struct {
	Price             *float64          `json:"price,omitempty"`
	Action            *Action           `json:"action,omitempty"`
	Key               string            `json:"key"`
	ParentKey         string            `json:"parent_key,omitempty"`
	Label             string            `json:"label"`
	Level             Level             `json:"level"`
	Class             domain.AssetClass `json:"asset_class"`
	Color             string            `json:"color"`
	Symbol            string            `json:"symbol,omitempty"`
	Children          []Node            `json:"children,omitempty"`
	Quantity          float64           `json:"quantity,omitempty"`
	ActualValue       float64           `json:"actual_value"`
	ActualPct         float64           `json:"actual_pct"`
	TargetPctRelative float64           `json:"target_pct_relative"`
	TargetPctAbsolute float64           `json:"target_pct_absolute"`
	Drift             float64           `json:"drift"`
	Adjustment        float64           `json:"adjustment"`
	TargetOnly        bool              `json:"target_only,omitempty"`
}

// Tree is the evaluated target hierarchy of a portfolio
type Tree struct {
	Nodes    []Node    `json:"nodes"`
	Warnings []Warning `json:"warnings"`
	Total    float64   `json:"total"`
	Accuracy float64   `json:"accuracy"`
}

// Leaves returns every instrument node in tree order
func (t Tree) Leaves() []Node {
	var out []Node
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			if n.Level == LevelTicker {
				out = append(out, n)
				continue
			}
			walk(n.Children)
		}
	}
	walk(t.Nodes)
	return out
}

// Class returns the root node of class
func (t Tree) Class(class domain.AssetClass) (Node, bool) {
	for _, n := range t.Nodes {
		if n.Class == class && n.Level == LevelClass {
			return n, true
		}
	}
	return Node{}, false
}

// BuildTree evaluates state against the holdings. The result always has one root
// per asset class, in enumeration order. A zero total yields zero actual
// percentages instead of dividing by zero.
func BuildTree(positions []domain.Position, fixedIncome []domain.FixedIncomeItem, total float64, state TargetState) Tree {
	b := &treeBuilder{total: total, state: state}

	nodes := make([]Node, 0, len(domain.AssetClasses))
	for _, class := range domain.AssetClasses {
		hs := collectHoldings(class, positions, fixedIncome, state)
		root := b.node(ClassPath(class).Key(), "", class.Label(), LevelClass, class,
			sumValues(hs), state.Classes.Value(string(class)), 100)
		root.Children = shapeOf(class).children(b, class, root.TargetPctAbsolute, hs)
		nodes = append(nodes, root)
	}

	return Tree{
		Total:    total,
		Nodes:    nodes,
		Accuracy: Accuracy(nodes),
		Warnings: Validate(state),
	}
}

type treeBuilder struct {
	state TargetState
	total float64
}

func (b *treeBuilder) node(key, parentKey, label string, level Level, class domain.AssetClass, value, relative, parentAbs float64) Node {
	absolute := parentAbs * relative / 100
	var actualPct, targetValue float64
	if b.total > 0 {
		actualPct = value / b.total * 100
		targetValue = b.total * absolute / 100
	}
	return Node{
		Key:               key,
		ParentKey:         parentKey,
		Label:             label,
		Level:             level,
		Class:             class,
		Color:             classColors[class],
		ActualValue:       value,
		ActualPct:         actualPct,
		TargetPctRelative: relative,
		TargetPctAbsolute: absolute,
		Drift:             actualPct - absolute,
		Adjustment:        targetValue - value,
	}
}

func (b *treeBuilder) sectorNodes(parent Path, parentAbs float64, hs []holding) []Node {
	weights := b.state.SectorWeights(parent)
	groups := groupBy(hs, func(h holding) string { return h.sector })

	nodes := make([]Node, 0, len(groups))
	for _, g := range groups {
		p := SectorPath(parent, g.key)
		n := b.node(p.Key(), parent.Key(), g.key, LevelSector, parent.Class,
			sumValues(g.items), weights.Value(g.key), parentAbs)
		n.Children = b.leafNodes(p, n.TargetPctAbsolute, g.items)
		nodes = append(nodes, n)
	}
	sortNodes(nodes)
	return nodes
}

func (b *treeBuilder) leafNodes(parent Path, parentAbs float64, hs []holding) []Node {
	weights := b.state.TickerWeights(parent)
	parentKey := parent.Key()

	nodes := make([]Node, 0, len(hs))
	for _, h := range hs {
		n := b.node(parentKey+string(keySeparator)+escapeSegment(h.symbol), parentKey, h.label, LevelTicker,
			parent.Class, h.value, weights.Value(h.symbol), parentAbs)
		n.Symbol = h.symbol
		n.Quantity = h.quantity
		n.Price = h.price
		n.TargetOnly = h.targetOnly
		action := instrumentAction(n.Adjustment, h.price)
		n.Action = &action
		nodes = append(nodes, n)
	}
	sortNodes(nodes)
	return nodes
}

// instrumentAction turns an adjustment into ok, buy or overweight
func instrumentAction(adjustment float64, price *float64) Action {
	switch {
	case math.Abs(adjustment) <= ActionThreshold:
		return Action{Kind: ActionOK}
	case adjustment < 0:
		return Action{Kind: ActionOverweight, Amount: -adjustment}
	}
	a := Action{Kind: ActionBuy, Amount: adjustment}
	if price != nil && *price > 0 {
		a.Lots = int64(math.Floor(adjustment / *price))
	}
	return a
}

// sortNodes orders siblings by held value, then target, then label
func sortNodes(nodes []Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.ActualValue != b.ActualValue {
			return a.ActualValue > b.ActualValue
		}
		if a.TargetPctAbsolute != b.TargetPctAbsolute {
			return a.TargetPctAbsolute > b.TargetPctAbsolute
		}
		return a.Label < b.Label
	})
}
