package core

// Balances are derived from the money and expense rows, never stored.
type Balances struct {
	Cash      Money
	Bank      Money
	MyTabung  Money
	Spendable Money
	Total     Money
}

// Of returns the balance backing an expense source.
func (b Balances) Of(src ExpenseSource) Money {
	if src == SourceCash {
		return b.Cash
	}
	return b.Bank
}

// CategoryStatus is a category with its spend against budget for the current period.
type CategoryStatus struct {
	Category
	Spent    Money
	Percent  float64 // 0 when the budget is 0
	Reserved bool
}

// DaySummary totals the money recorded and spent on a single day.
type DaySummary struct {
	Day   Date
	Spent Money
	Added Money
}
