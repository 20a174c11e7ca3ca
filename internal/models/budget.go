package models

import "math"

// Budget is the farm budget spreadsheet attached to a submission.
type Budget struct {
	FarmType      string     `json:"farm_type"`
	BudgetPeriod  string     `json:"budget_period"`
	IncomeItems   []LineItem `json:"income_items"`
	ExpenseItems  []LineItem `json:"expense_items"`
	TotalIncome   float64    `json:"total_income"`
	TotalExpenses float64    `json:"total_expenses"`
	NetResult     float64    `json:"net_result"`
}

// LineItem is a single budget row. Amount is always quantity*price; it is
// recomputed on every read and write, never trusted from input.
type LineItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Amount   float64 `json:"amount"`
}

// Valid reports whether the row counts toward the submit precondition: a
// named item with quantity and price both greater than zero.
func (i LineItem) Valid() bool {
	return i.Name != "" && i.Quantity > 0 && i.Price > 0
}

// Recompute normalizes the row and derives its amount. Negative quantity or
// price is clamped to zero so the amount invariant always holds.
func (i *LineItem) Recompute() {
	if i.Quantity < 0 {
		i.Quantity = 0
	}
	if i.Price < 0 {
		i.Price = 0
	}
	i.Amount = i.Quantity * i.Price
}

// SumAmounts recomputes every row and returns the full-precision total.
func SumAmounts(items []LineItem) float64 {
	var total float64
	for idx := range items {
		items[idx].Recompute()
		total += items[idx].Amount
	}
	return total
}

// Recompute rederives all row amounts, the income and expense totals and the
// net result from the raw rows.
func (b *Budget) Recompute() {
	b.TotalIncome = SumAmounts(b.IncomeItems)
	b.TotalExpenses = SumAmounts(b.ExpenseItems)
	b.NetResult = b.TotalIncome - b.TotalExpenses
}

// HasValidIncome reports whether at least one income row passes validation.
func (b Budget) HasValidIncome() bool {
	for _, item := range b.IncomeItems {
		if item.Valid() {
			return true
		}
	}
	return false
}

// HasValidExpense reports whether at least one expense row passes validation.
func (b Budget) HasValidExpense() bool {
	for _, item := range b.ExpenseItems {
		if item.Valid() {
			return true
		}
	}
	return false
}

// NormalizeLegacy backfills rows written by old clients: a missing quantity
// defaults to 1 and a missing price falls back to the stored amount. The
// defaulting happens once on load so the rest of the system can assume a
// fully populated budget. Fresh entries never take these defaults.
func (b *Budget) NormalizeLegacy() {
	normalizeLegacyItems(b.IncomeItems)
	normalizeLegacyItems(b.ExpenseItems)
	b.Recompute()
}

func normalizeLegacyItems(items []LineItem) {
	for idx := range items {
		item := &items[idx]
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		if item.Price == 0 && item.Amount != 0 {
			item.Price = item.Amount
		}
	}
}

// Round2 rounds a monetary value to two decimal places for display. Stored
// totals keep full precision.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
