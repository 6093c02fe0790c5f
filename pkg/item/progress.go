package item

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// TotalPrice is the savings target: unit price times quantity. It is always derived, never stored.
func (i Item) TotalPrice() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ProgressPercentage is saved / target * 100. It may exceed 100 and is 0 for a zero target.
func (i Item) ProgressPercentage() decimal.Decimal {
	target := i.TotalPrice()
	if !target.IsPositive() {
		return decimal.Zero
	}
	return i.AmountSaved.Div(target).Mul(hundred)
}

// DisplayPercentage is ProgressPercentage capped at 100.
func (i Item) DisplayPercentage() decimal.Decimal {
	return decimal.Min(i.ProgressPercentage(), hundred)
}

// Remaining is what is still missing to reach the target, never negative.
func (i Item) Remaining() decimal.Decimal {
	return decimal.Max(i.RawRemaining(), decimal.Zero)
}

// RawRemaining is target minus saved; negative when the goal was overshot.
func (i Item) RawRemaining() decimal.Decimal {
	return i.TotalPrice().Sub(i.AmountSaved)
}

func (i Item) GoalReached() bool {
	target := i.TotalPrice()
	return target.IsPositive() && i.AmountSaved.GreaterThanOrEqual(target)
}
