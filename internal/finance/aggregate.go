// Package finance reduces a project's transaction ledger into the series the
// dashboard charts render: a monthly cash-flow series with running balance and
// an expense-by-category breakdown. Everything here is a pure function of the
// fetched rows, safe to recompute on every open of the dashboard.
package finance

import (
	"strings"
	"time"

	"github.com/buildledger/buildledger-backend/internal/transactions"
)

// Entry is a ledger row that survived the validating parse: numeric amount,
// parseable date, present type string.
type Entry struct {
	Period   string // "YYYY-MM"
	Amount   float64
	Type     string
	Category string
}

// MonthlyPoint is one bucket of the cash-flow series.
type MonthlyPoint struct {
	Period   string  `json:"period"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

// CategoryTotal is one slice of the expense breakdown.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// ParseResult carries the valid entries plus counts of what was filtered so
// callers can surface a warning without failing the aggregation.
type ParseResult struct {
	Entries []Entry
	Skipped int // rows missing amount, date or type, or with an unparseable date
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// ParseTransactions validates raw ledger rows at the store boundary. A row
// with a missing amount, missing or unparseable date, or missing type is
// skipped and counted; it never aborts aggregation.
func ParseTransactions(rows []transactions.Transaction) ParseResult {
	res := ParseResult{Entries: make([]Entry, 0, len(rows))}

	for _, t := range rows {
		if t.Amount == nil || t.Date == nil || t.TransactionType == nil {
			res.Skipped++
			continue
		}

		period, ok := parsePeriod(*t.Date)
		if !ok {
			res.Skipped++
			continue
		}

		category := ""
		if t.Categories != nil {
			category = *t.Categories
		}

		res.Entries = append(res.Entries, Entry{
			Period:   period,
			Amount:   *t.Amount,
			Type:     *t.TransactionType,
			Category: category,
		})
	}

	return res
}

func parsePeriod(date string) (string, bool) {
	s := strings.TrimSpace(date)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.Format("2006-01"), true
		}
	}
	return "", false
}

// MonthlySeries buckets entries by month and folds a running balance across
// the buckets, starting at 0. Buckets appear in the order first observed in
// the ledger, not date order; the charts render them as-is. Entries whose
// type is neither Revenue nor Expense are counted in neither sum; the caller
// receives how many so it can warn.
func MonthlySeries(entries []Entry) ([]MonthlyPoint, int) {
	index := make(map[string]int)
	points := make([]MonthlyPoint, 0, 12)
	unknown := 0

	for _, e := range entries {
		i, ok := index[e.Period]
		if !ok {
			i = len(points)
			index[e.Period] = i
			points = append(points, MonthlyPoint{Period: e.Period})
		}

		switch e.Type {
		case transactions.TypeRevenue:
			points[i].Income += e.Amount
		case transactions.TypeExpense:
			points[i].Expenses += e.Amount
		default:
			unknown++
		}
	}

	balance := 0.0
	for i := range points {
		balance += points[i].Income - points[i].Expenses
		points[i].Balance = balance
	}

	return points, unknown
}

// ExpensesByCategory sums Expense entries by trimmed category, defaulting a
// missing or blank category to "Other". Categories appear in first-seen order.
func ExpensesByCategory(entries []Entry) []CategoryTotal {
	index := make(map[string]int)
	totals := make([]CategoryTotal, 0, 8)

	for _, e := range entries {
		if e.Type != transactions.TypeExpense {
			continue
		}

		category := strings.TrimSpace(e.Category)
		if category == "" {
			category = "Other"
		}

		i, ok := index[category]
		if !ok {
			i = len(totals)
			index[category] = i
			totals = append(totals, CategoryTotal{Category: category})
		}
		totals[i].Total += e.Amount
	}

	return totals
}
