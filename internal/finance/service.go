package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/buildledger/buildledger-backend/internal/budgets"
	"github.com/buildledger/buildledger-backend/internal/log"
	"github.com/buildledger/buildledger-backend/internal/transactions"
)

// Dashboard is the full financial payload for one project.
type Dashboard struct {
	ProjectID         string           `json:"project_id"`
	Budget            *budgets.Budget  `json:"budget"`
	BudgetDetails     []budgets.Detail `json:"budget_details"`
	Monthly           []MonthlyPoint   `json:"monthly"`
	ExpenseCategories []CategoryTotal  `json:"expense_categories"`
	TotalIncome       float64          `json:"total_income"`
	TotalExpenses     float64          `json:"total_expenses"`
	Balance           float64          `json:"balance"`
	SkippedRows       int              `json:"skipped_rows,omitempty"`
}

// Service assembles dashboards from the budget and transaction stores.
type Service struct {
	budgets      *budgets.Repo
	transactions *transactions.Repo
	logger       *log.Logger
}

func NewService(b *budgets.Repo, t *transactions.Repo, logger *log.Logger) *Service {
	return &Service{budgets: b, transactions: t, logger: logger.WithComponent("finance")}
}

// Dashboard fetches the project's ledger and reduces it. A project without a
// budget yet still gets its transaction series; malformed ledger rows are
// skipped with a warning, never an error.
func (s *Service) Dashboard(ctx context.Context, projectID string) (*Dashboard, error) {
	d := &Dashboard{ProjectID: projectID}

	budget, err := s.budgets.GetByProject(ctx, projectID)
	switch {
	case err == nil:
		d.Budget = budget
		details, err := s.budgets.DetailsByBudget(ctx, budget.BudgetID)
		if err != nil {
			return nil, fmt.Errorf("fetching budget details: %w", err)
		}
		d.BudgetDetails = details
	case errors.Is(err, budgets.ErrNotFound):
		// no budget yet, series still renders
	default:
		return nil, fmt.Errorf("fetching budget: %w", err)
	}

	rows, err := s.transactions.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}

	parsed := ParseTransactions(rows)
	d.SkippedRows = parsed.Skipped
	if parsed.Skipped > 0 {
		s.logger.Warn("skipped malformed transactions",
			"project_id", projectID, "skipped", parsed.Skipped)
	}

	monthly, unknown := MonthlySeries(parsed.Entries)
	if unknown > 0 {
		s.logger.Warn("transactions with unrecognized type excluded from series",
			"project_id", projectID, "count", unknown)
	}
	d.Monthly = monthly
	d.ExpenseCategories = ExpensesByCategory(parsed.Entries)

	for _, p := range monthly {
		d.TotalIncome += p.Income
		d.TotalExpenses += p.Expenses
	}
	d.Balance = d.TotalIncome - d.TotalExpenses

	return d, nil
}
