package investment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TreasuryDirect Type = "treasury_direct"
	RealEstateFund Type = "real_estate_fund"
	FixedIncome    Type = "fixed_income"
)

func (t Type) Valid() bool {
	switch t {
	case TreasuryDirect, RealEstateFund, FixedIncome:
		return true
	}
	return false
}

type Investment struct {
	Id        uuid.UUID
	Name      string
	Type      Type
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i Investment) Identity() uuid.UUID {
	return i.Id
}

// FinancialSettings holds the reference rates (percent per year) used for projections.
type FinancialSettings struct {
	CdiRate   decimal.Decimal
	SelicRate decimal.Decimal
}

var defaultRate = decimal.RequireFromString("10.75")

func DefaultSettings() FinancialSettings {
	return FinancialSettings{CdiRate: defaultRate, SelicRate: defaultRate}
}
