package report

import (
	"github.com/cofrinho/cofrinho/pkg/investment"
	"github.com/cofrinho/cofrinho/pkg/item"
	"github.com/cofrinho/cofrinho/pkg/shopping"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TypeTotal is the summed amount of all investments of one type.
type TypeTotal struct {
	Type   investment.Type
	Amount decimal.Decimal
}

// TotalValue is the sum of price × quantity over all items.
func TotalValue(items []item.Item) decimal.Decimal {
	total := decimal.Zero
	for _, i := range items {
		total = total.Add(i.TotalPrice())
	}
	return total
}

func TotalSaved(items []item.Item) decimal.Decimal {
	total := decimal.Zero
	for _, i := range items {
		total = total.Add(i.AmountSaved)
	}
	return total
}

// GlobalProgress is TotalSaved / TotalValue * 100, or 0 when nothing has a price.
func GlobalProgress(items []item.Item) decimal.Decimal {
	value := TotalValue(items)
	if !value.IsPositive() {
		return decimal.Zero
	}
	return TotalSaved(items).Div(value).Mul(hundred)
}

// InvestmentsByType groups amounts by type in order of first occurrence.
func InvestmentsByType(investments []investment.Investment) []TypeTotal {
	var totals []TypeTotal
	index := make(map[investment.Type]int)
	for _, inv := range investments {
		i, ok := index[inv.Type]
		if !ok {
			index[inv.Type] = len(totals)
			totals = append(totals, TypeTotal{Type: inv.Type, Amount: inv.Amount})
			continue
		}
		totals[i].Amount = totals[i].Amount.Add(inv.Amount)
	}
	return totals
}

func InvestmentsTotal(investments []investment.Investment) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range investments {
		total = total.Add(inv.Amount)
	}
	return total
}

func ShoppingTotal(list []shopping.ShoppingItem) decimal.Decimal {
	total := decimal.Zero
	for _, s := range list {
		total = total.Add(s.Total())
	}
	return total
}

// ShoppingPurchasedTotal is ShoppingTotal restricted to purchased entries.
func ShoppingPurchasedTotal(list []shopping.ShoppingItem) decimal.Decimal {
	total := decimal.Zero
	for _, s := range list {
		if s.IsPurchased {
			total = total.Add(s.Total())
		}
	}
	return total
}
