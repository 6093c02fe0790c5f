package investment

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ReferenceFund is a real estate fund used to illustrate quota purchases.
type ReferenceFund struct {
	Ticker          string
	QuotaPrice      decimal.Decimal
	MonthlyDividend decimal.Decimal
	AnnualYield     decimal.Decimal
}

var ReferenceFunds = []ReferenceFund{
	{
		Ticker:          "CTPS11",
		QuotaPrice:      decimal.RequireFromString("95.50"),
		MonthlyDividend: decimal.RequireFromString("0.95"),
		AnnualYield:     decimal.RequireFromString("11.9"),
	},
	{
		Ticker:          "MXRF11",
		QuotaPrice:      decimal.RequireFromString("9.80"),
		MonthlyDividend: decimal.RequireFromString("0.08"),
		AnnualYield:     decimal.RequireFromString("9.8"),
	},
}

type QuotaSimulation struct {
	Fund            ReferenceFund
	Quotas          int64
	Invested        decimal.Decimal
	MonthlyDividend decimal.Decimal
}

// Projection is the yearly yield of amount at rate percent.
func Projection(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// SimulateQuotas shows how many whole quotas of each reference fund the budget buys
// and the monthly dividend they would pay.
func SimulateQuotas(budget decimal.Decimal) []QuotaSimulation {
	result := make([]QuotaSimulation, 0, len(ReferenceFunds))
	for _, fund := range ReferenceFunds {
		quotas := decimal.Zero
		if budget.IsPositive() {
			quotas = budget.Div(fund.QuotaPrice).Floor()
		}
		result = append(result, QuotaSimulation{
			Fund:            fund,
			Quotas:          quotas.IntPart(),
			Invested:        quotas.Mul(fund.QuotaPrice),
			MonthlyDividend: quotas.Mul(fund.MonthlyDividend),
		})
	}
	return result
}
