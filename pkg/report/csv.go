package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/cofrinho/cofrinho/internal/utils"
	"github.com/shopspring/decimal"
)

// CsvSummaryRenderer writes a Summary as section,metric,value rows.
type CsvSummaryRenderer struct {
	currency string
}

func NewCsvSummaryRenderer(currency string) (*CsvSummaryRenderer, error) {
	if money.GetCurrency(currency) == nil {
		return nil, fmt.Errorf("unknown currency %q", currency)
	}
	return &CsvSummaryRenderer{currency: currency}, nil
}

func (r *CsvSummaryRenderer) Render(w io.Writer, summary Summary) error {
	rows := [][]string{
		{"section", "metric", "value"},
		{"summary", "generated_at", summary.GeneratedAt.UTC().Format(time.RFC3339)},
		{"items", "count", strconv.Itoa(summary.ItemCount)},
		{"items", "completed", strconv.Itoa(summary.ItemsCompleted)},
		{"items", "total_value", r.Money(summary.TotalValue)},
		{"items", "total_saved", r.Money(summary.TotalSaved)},
		{"items", "remaining", r.Money(summary.TotalRemaining)},
		{"items", "progress", percent(summary.GlobalProgress)},
		{"shopping", "count", strconv.Itoa(summary.ShoppingCount)},
		{"shopping", "total", r.Money(summary.ShoppingTotal)},
		{"shopping", "purchased", r.Money(summary.ShoppingPurchasedTotal)},
		{"shopping", "pending", r.Money(summary.ShoppingPending())},
	}
	for _, t := range summary.InvestmentsByType {
		rows = append(rows, []string{"investments", string(t.Type), r.Money(t.Amount)})
	}
	rows = append(rows,
		[]string{"investments", "total", r.Money(summary.InvestmentsTotal)},
		[]string{"investments", "cdi_rate", percent(summary.Settings.CdiRate)},
		[]string{"investments", "selic_rate", percent(summary.Settings.SelicRate)},
		[]string{"investments", "yearly_projection", r.Money(summary.YearlyProjection)},
	)

	writer := csv.NewWriter(w)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write summary csv: %w", err)
	}
	return nil
}

// Money formats amount in the renderer's currency.
func (r *CsvSummaryRenderer) Money(amount decimal.Decimal) string {
	return utils.FormatMoney(amount, r.currency)
}

func percent(value decimal.Decimal) string {
	return value.StringFixed(2) + "%"
}
