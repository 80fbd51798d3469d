package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildledger/buildledger-backend/internal/transactions"
)

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func row(amount float64, date, typ, category string) transactions.Transaction {
	t := transactions.Transaction{
		Amount:          numPtr(amount),
		Date:            strPtr(date),
		TransactionType: strPtr(typ),
	}
	if category != "" {
		t.Categories = strPtr(category)
	}
	return t
}

func TestParseTransactionsSkipsMalformedRows(t *testing.T) {
	rows := []transactions.Transaction{
		row(100, "2024-01-10", transactions.TypeRevenue, ""),
		{Date: strPtr("2024-01-11"), TransactionType: strPtr(transactions.TypeExpense)}, // no amount
		{Amount: numPtr(50), TransactionType: strPtr(transactions.TypeExpense)},         // no date
		{Amount: numPtr(50), Date: strPtr("2024-01-12")},                                // no type
		row(25, "not-a-date", transactions.TypeExpense, ""),
	}

	res := ParseTransactions(rows)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, 4, res.Skipped)
	assert.Equal(t, "2024-01", res.Entries[0].Period)
	assert.Equal(t, 100.0, res.Entries[0].Amount)
}

func TestParseTransactionsAcceptsTimestampDates(t *testing.T) {
	rows := []transactions.Transaction{
		row(10, "2024-03-05T14:30:00Z", transactions.TypeRevenue, ""),
		row(20, "2024/03/06", transactions.TypeExpense, ""),
	}

	res := ParseTransactions(rows)

	require.Len(t, res.Entries, 2)
	assert.Zero(t, res.Skipped)
	assert.Equal(t, "2024-03", res.Entries[0].Period)
	assert.Equal(t, "2024-03", res.Entries[1].Period)
}

func TestMonthlySeriesRunningBalance(t *testing.T) {
	rows := []transactions.Transaction{
		row(1000, "2024-01-05", transactions.TypeRevenue, ""),
		row(200, "2024-01-20", transactions.TypeExpense, "Materials"),
		row(500, "2024-02-03", transactions.TypeRevenue, ""),
		row(700, "2024-02-15", transactions.TypeExpense, "Labor"),
	}

	parsed := ParseTransactions(rows)
	points, unknown := MonthlySeries(parsed.Entries)

	require.Len(t, points, 2)
	assert.Zero(t, unknown)

	assert.Equal(t, "2024-01", points[0].Period)
	assert.Equal(t, 1000.0, points[0].Income)
	assert.Equal(t, 200.0, points[0].Expenses)
	assert.Equal(t, 800.0, points[0].Balance)

	assert.Equal(t, "2024-02", points[1].Period)
	assert.Equal(t, 500.0, points[1].Income)
	assert.Equal(t, 700.0, points[1].Expenses)
	assert.Equal(t, 600.0, points[1].Balance)
}

func TestMonthlySeriesKeepsFirstSeenOrder(t *testing.T) {
	rows := []transactions.Transaction{
		row(100, "2024-03-01", transactions.TypeRevenue, ""),
		row(100, "2024-01-01", transactions.TypeRevenue, ""),
		row(100, "2024-03-15", transactions.TypeExpense, ""),
	}

	parsed := ParseTransactions(rows)
	points, _ := MonthlySeries(parsed.Entries)

	require.Len(t, points, 2)
	assert.Equal(t, "2024-03", points[0].Period)
	assert.Equal(t, "2024-01", points[1].Period)
	assert.Equal(t, 100.0, points[0].Expenses)
}

func TestMonthlySeriesUnknownTypeCountedInNeitherSum(t *testing.T) {
	rows := []transactions.Transaction{
		row(100, "2024-01-05", transactions.TypeRevenue, ""),
		row(40, "2024-01-07", "Transfer", ""),
	}

	parsed := ParseTransactions(rows)
	points, unknown := MonthlySeries(parsed.Entries)

	require.Len(t, points, 1)
	assert.Equal(t, 1, unknown)
	assert.Equal(t, 100.0, points[0].Income)
	assert.Zero(t, points[0].Expenses)
}

func TestMonthlySeriesFinalBalanceEqualsNetTotal(t *testing.T) {
	rows := []transactions.Transaction{
		row(300, "2024-01-01", transactions.TypeRevenue, ""),
		row(120, "2024-02-01", transactions.TypeExpense, ""),
		row(80, "2024-03-01", transactions.TypeExpense, ""),
		row(50, "2024-03-09", transactions.TypeRevenue, ""),
	}

	parsed := ParseTransactions(rows)
	points, _ := MonthlySeries(parsed.Entries)
	require.NotEmpty(t, points)

	income, expenses := 0.0, 0.0
	for _, p := range points {
		income += p.Income
		expenses += p.Expenses
	}
	assert.InDelta(t, income-expenses, points[len(points)-1].Balance, 1e-9)
}

func TestMonthlySeriesIdempotent(t *testing.T) {
	rows := []transactions.Transaction{
		row(10, "2024-01-01", transactions.TypeRevenue, ""),
		row(5, "2024-02-01", transactions.TypeExpense, "Fuel"),
	}

	first, _ := MonthlySeries(ParseTransactions(rows).Entries)
	second, _ := MonthlySeries(ParseTransactions(rows).Entries)

	assert.Equal(t, first, second)
}

func TestExpensesByCategory(t *testing.T) {
	rows := []transactions.Transaction{
		row(100, "2024-01-01", transactions.TypeExpense, "Materials"),
		row(50, "2024-01-02", transactions.TypeExpense, "  Materials  "),
		row(30, "2024-01-03", transactions.TypeExpense, ""),
		row(20, "2024-01-04", transactions.TypeExpense, "   "),
		row(999, "2024-01-05", transactions.TypeRevenue, "Materials"),
	}

	totals := ExpensesByCategory(ParseTransactions(rows).Entries)

	require.Len(t, totals, 2)
	assert.Equal(t, "Materials", totals[0].Category)
	assert.Equal(t, 150.0, totals[0].Total)
	assert.Equal(t, "Other", totals[1].Category)
	assert.Equal(t, 50.0, totals[1].Total)
}

func TestEmptyLedger(t *testing.T) {
	parsed := ParseTransactions(nil)
	points, unknown := MonthlySeries(parsed.Entries)

	assert.Empty(t, points)
	assert.Zero(t, unknown)
	assert.Empty(t, ExpensesByCategory(parsed.Entries))
}
