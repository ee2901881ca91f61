package allocation

import (
	"sort"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/shopspring/decimal"
)

// MaterialityFloor is the smallest amount suggested for an instrument without a price
const MaterialityFloor = 1.0

// PlannedPurchase is one line of a contribution plan
type PlannedPurchase struct {
	Price     *float64          `json:"price,omitempty"`
	Key       string            `json:"key"`
	Symbol    string            `json:"symbol,omitempty"`
	Label     string            `json:"label"`
	Class     domain.AssetClass `json:"asset_class"`
	Deficit   float64           `json:"deficit"`
	Amount    float64           `json:"amount"`
	Lots      int64             `json:"lots,omitempty"`
	Synthetic bool              `json:"synthetic,omitempty"`
}

// Suggestion is the plan for investing a contribution
type Suggestion struct {
	Items          []PlannedPurchase `json:"items"`
	Contribution   float64           `json:"contribution"`
	TotalAllocated float64           `json:"total_allocated"`
	Leftover       float64           `json:"leftover"`
}

type candidate struct {
	PlannedPurchase
	deficit decimal.Decimal
}

// Suggest splits amount across the instruments that are below target once the
// contribution is added to the portfolio.
//
// Every leaf whose target value under the new total exceeds its current value gets
// its deficit, or a proportional share when the deficits add up to more than
// amount. Priced leaves are rounded down to whole lots and dropped at zero lots;
// unpriced leaves keep the fractional amount unless it is below MaterialityFloor.
// A class that is underweight while none of its leaves is gets a synthetic leaf.
func Suggest(amount float64, tree Tree) Suggestion {
	contribution := decimal.NewFromFloat(amount)
	result := Suggestion{
		Items:        []PlannedPurchase{},
		Contribution: amount,
		Leftover:     amount,
	}
	if amount <= 0 {
		return result
	}

	candidates := deficits(amount, tree)
	if len(candidates) == 0 {
		return result
	}

	totalDeficit := decimal.Zero
	for _, c := range candidates {
		totalDeficit = totalDeficit.Add(c.deficit)
	}
	ration := totalDeficit.GreaterThan(contribution)

	allocated := decimal.Zero
	for _, c := range candidates {
		share := c.deficit
		if ration {
			share = c.deficit.Mul(contribution).Div(totalDeficit)
		}
		share = share.Round(8)

		item := c.PlannedPurchase
		if item.Price != nil && *item.Price > 0 {
			price := decimal.NewFromFloat(*item.Price)
			lots := share.Div(price).Floor()
			if !lots.IsPositive() {
				continue
			}
			spent := lots.Mul(price)
			item.Lots = lots.IntPart()
			item.Amount = spent.InexactFloat64()
			allocated = allocated.Add(spent)
		} else {
			if share.LessThan(decimal.NewFromFloat(MaterialityFloor)) {
				continue
			}
			item.Amount = share.InexactFloat64()
			allocated = allocated.Add(share)
		}
		result.Items = append(result.Items, item)
	}

	leftover := contribution.Sub(allocated)
	if leftover.IsNegative() {
		leftover = decimal.Zero
		allocated = contribution
	}
	result.TotalAllocated = allocated.InexactFloat64()
	result.Leftover = leftover.InexactFloat64()

	sort.SliceStable(result.Items, func(i, j int) bool {
		if result.Items[i].Amount != result.Items[j].Amount {
			return result.Items[i].Amount > result.Items[j].Amount
		}
		return result.Items[i].Key < result.Items[j].Key
	})
	return result
}

// deficits collects the underweight leaves under the post-contribution total
func deficits(amount float64, tree Tree) []candidate {
	postTotal := tree.Total + amount

	var out []candidate
	for _, root := range tree.Nodes {
		found := false
		for _, leaf := range leavesOf(root) {
			gap := leaf.TargetPctAbsolute/100*postTotal - leaf.ActualValue
			if gap <= 0 {
				continue
			}
			found = true
			out = append(out, candidate{
				PlannedPurchase: PlannedPurchase{
					Key:     leaf.Key,
					Symbol:  leaf.Symbol,
					Label:   leaf.Label,
					Class:   leaf.Class,
					Price:   leaf.Price,
					Deficit: gap,
				},
				deficit: decimal.NewFromFloat(gap),
			})
		}
		if found {
			continue
		}

		gap := root.TargetPctAbsolute/100*postTotal - root.ActualValue
		if gap <= 0 {
			continue
		}
		out = append(out, candidate{
			PlannedPurchase: PlannedPurchase{
				Key:       root.Key,
				Label:     "Allocate into " + root.Label,
				Class:     root.Class,
				Deficit:   gap,
				Synthetic: true,
			},
			deficit: decimal.NewFromFloat(gap),
		})
	}
	return out
}

func leavesOf(n Node) []Node {
	return Tree{Nodes: []Node{n}}.Leaves()
}
