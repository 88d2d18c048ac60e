package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/iudanet/budgetkeeper/internal/client/api"
	"github.com/iudanet/budgetkeeper/internal/models"
	pkgapi "github.com/iudanet/budgetkeeper/pkg/api"
)

// parseDay разбирает дату YYYY-MM-DD в UTC; пустая строка - nil
func parseDay(flagName, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, fmt.Errorf("-%s: expected YYYY-MM-DD, got %q", flagName, v)
	}
	return &t, nil
}

func optionalID(v int64) *int64 {
	if v <= 0 {
		return nil
	}
	return &v
}

func (c *Cli) runTxAdd(ctx context.Context, args []string) error {
	fs := c.newFlagSet("tx-add")
	txType := fs.String("type", pkgapi.TypeExpense, "income or expense")
	amount := fs.String("amount", "", "amount, e.g. 12.50")
	category := fs.Int64("category", 0, "category ID")
	desc := fs.String("desc", "", "description")
	date := fs.String("date", "", "date YYYY-MM-DD (default: now)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *amount == "" {
		return fmt.Errorf("-amount is required")
	}
	minor, err := models.ParseAmount(*amount)
	if err != nil {
		return err
	}
	if _, err := models.ParseTransactionType(*txType); err != nil {
		return err
	}
	occurred, err := parseDay("date", *date)
	if err != nil {
		return err
	}

	req := pkgapi.TransactionRequest{
		Type:        *txType,
		Amount:      minor,
		Description: *desc,
		CategoryID:  optionalID(*category),
		OccurredAt:  occurred,
	}

	var tx *pkgapi.Transaction
	err = c.auth.Authorized(ctx, func(token string) error {
		var err error
		tx, err = c.budget.CreateTransaction(ctx, token, req)
		return err
	})
	if err != nil {
		return err
	}

	c.io.Printf("✓ Transaction #%d saved: %s %s on %s\n",
		tx.ID, tx.Type, models.FormatAmount(tx.Amount), tx.OccurredAt.Format(time.DateOnly))

	return nil
}

func (c *Cli) runTxList(ctx context.Context, args []string) error {
	fs := c.newFlagSet("tx-list")
	from := fs.String("from", "", "from date YYYY-MM-DD (inclusive)")
	to := fs.String("to", "", "to date YYYY-MM-DD (exclusive)")
	txType := fs.String("type", "", "income or expense")
	category := fs.Int64("category", 0, "category ID")
	limit := fs.Int("limit", 50, "page size (max 200)")
	offset := fs.Int("offset", 0, "page offset")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q := api.TransactionQuery{
		Type:       *txType,
		CategoryID: optionalID(*category),
		Limit:      *limit,
		Offset:     *offset,
	}
	var err error
	if q.From, err = parseDay("from", *from); err != nil {
		return err
	}
	if q.To, err = parseDay("to", *to); err != nil {
		return err
	}

	var list *pkgapi.TransactionList
	err = c.auth.Authorized(ctx, func(token string) error {
		var err error
		list, err = c.budget.ListTransactions(ctx, token, q)
		return err
	})
	if err != nil {
		return err
	}

	if len(list.Items) == 0 {
		c.io.Println("No transactions found.")
		return nil
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, tx := range list.Items {
		categoryID := "-"
		if tx.CategoryID != nil {
			categoryID = fmt.Sprint(*tx.CategoryID)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			tx.ID, tx.OccurredAt.Format(time.DateOnly), tx.Type, models.FormatAmount(tx.Amount), categoryID, tx.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	c.io.Printf("\nShowing %d-%d of %d\n", list.Offset+1, list.Offset+len(list.Items), list.Total)
	return nil
}

func (c *Cli) runCategories(ctx context.Context, _ []string) error {
	var categories []pkgapi.Category
	err := c.auth.Authorized(ctx, func(token string) error {
		var err error
		categories, err = c.budget.Categories(ctx, token)
		return err
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tKIND\tSCOPE")
	for _, cat := range categories {
		scope := "personal"
		if cat.System {
			scope = "system"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", cat.ID, cat.Name, cat.Kind, scope)
	}
	return w.Flush()
}
