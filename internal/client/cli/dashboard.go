package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/iudanet/budgetkeeper/internal/models"
	pkgapi "github.com/iudanet/budgetkeeper/pkg/api"
)

func (c *Cli) runDashboard(ctx context.Context, args []string) error {
	fs := c.newFlagSet("dashboard")
	year := fs.Int("year", 0, "year (default: current)")
	month := fs.Int("month", 0, "month 1-12 (default: current)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var dash *pkgapi.Dashboard
	err := c.auth.Authorized(ctx, func(token string) error {
		var err error
		dash, err = c.budget.Dashboard(ctx, token, *year, *month)
		return err
	})
	if err != nil {
		return err
	}

	c.io.Printf("=== %04d-%02d ===\n", dash.Year, dash.Month)
	c.io.Printf("Income:  %s\n", models.FormatAmount(dash.Income))
	c.io.Printf("Expense: %s\n", models.FormatAmount(dash.Expense))
	c.io.Printf("Balance: %s\n", models.FormatAmount(dash.Balance))

	if len(dash.ByCategory) > 0 {
		c.io.Println()
		c.io.Println("Expenses by category:")
		w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
		for _, cat := range dash.ByCategory {
			_, _ = fmt.Fprintf(w, "  %s\t%s\n", cat.Name, models.FormatAmount(cat.Amount))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(dash.Budgets) > 0 {
		c.io.Println()
		c.io.Println("Budgets:")
		for _, b := range dash.Budgets {
			mark := "✓"
			if b.Remaining < 0 {
				mark = "⚠️ "
			}
			c.io.Printf("  %s %s of %s spent, %s left\n", mark,
				models.FormatAmount(b.Spent), models.FormatAmount(b.Budget.LimitAmount), models.FormatAmount(b.Remaining))
		}
	}

	if len(dash.Goals) > 0 {
		c.io.Println()
		c.io.Println("Goals:")
		for _, g := range dash.Goals {
			c.io.Printf("  %s: %s / %s (%.0f%%)\n", g.Name,
				models.FormatAmount(g.CurrentAmount), models.FormatAmount(g.TargetAmount), g.Progress)
		}
	}

	return nil
}

func (c *Cli) runReport(ctx context.Context, args []string) error {
	fs := c.newFlagSet("report")
	months := fs.Int("months", 12, "number of months including current")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var report *pkgapi.MonthlyReport
	err := c.auth.Authorized(ctx, func(token string) error {
		var err error
		report, err = c.budget.MonthlyReport(ctx, token, *months)
		return err
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(w, "MONTH\tINCOME\tEXPENSE\tBALANCE\t")
	for _, m := range report.Months {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", m.Month,
			models.FormatAmount(m.Income), models.FormatAmount(m.Expense), models.FormatAmount(m.Balance))
	}
	return w.Flush()
}
