package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"

	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/reports"
	rules "github.com/iudanet/budgetkeeper/internal/validation"
)

// MaxReportMonths предельная глубина отчета по месяцам
const MaxReportMonths = 24

// BudgetProgress бюджет и фактические расходы по нему
type BudgetProgress struct {
	Budget *models.MonthlyBudget
	Spent  int64
}

// Dashboard сводка за месяц
type Dashboard struct {
	ByCategory []models.CategoryTotal
	Budgets    []BudgetProgress
	Goals      []*models.Goal
	Year       int
	Month      int
	Income     int64
	Expense    int64
	Balance    int64
}

// ExportResult выгруженный отчет
type ExportResult struct {
	Key  string
	URL  string
	Rows int
}

// resolvePeriod подставляет текущий месяц вместо нулевых значений и проверяет период
func (s *BudgetService) resolvePeriod(year, month int) (int, int, error) {
	now := s.now().UTC()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}

	err := validation.Errors{
		"year":  validation.Validate(year, rules.YearRule),
		"month": validation.Validate(month, rules.MonthRule),
	}.Filter()
	if err != nil {
		return 0, 0, ValidationError(err)
	}

	return year, month, nil
}

// Dashboard доходы, расходы, баланс, расходы по категориям, бюджеты и цели за месяц
func (s *BudgetService) Dashboard(ctx context.Context, userID int64, year, month int) (*Dashboard, error) {
	year, month, err := s.resolvePeriod(year, month)
	if err != nil {
		return nil, err
	}
	from, to := models.MonthRange(year, month)

	income, expense, err := s.store.SumByType(ctx, userID, from, to)
	if err != nil {
		return nil, InternalError("failed to sum transactions", err)
	}

	byCategory, err := s.store.ExpensesByCategory(ctx, userID, from, to)
	if err != nil {
		return nil, InternalError("failed to group expenses", err)
	}

	budgets, err := s.store.ListBudgets(ctx, userID, year, month)
	if err != nil {
		return nil, InternalError("failed to list budgets", err)
	}

	progress := make([]BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		spent, err := s.store.SpentInPeriod(ctx, userID, b.CategoryID, from, to)
		if err != nil {
			return nil, InternalError("failed to compute budget progress", err)
		}
		progress = append(progress, BudgetProgress{Budget: b, Spent: spent})
	}

	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, InternalError("failed to list goals", err)
	}

	return &Dashboard{
		Year:       year,
		Month:      month,
		Income:     income,
		Expense:    expense,
		Balance:    income - expense,
		ByCategory: byCategory,
		Budgets:    progress,
		Goals:      goals,
	}, nil
}

// MonthlyReport доходы и расходы за последние months месяцев включая текущий.
// Месяцы без транзакций присутствуют с нулями.
func (s *BudgetService) MonthlyReport(ctx context.Context, userID int64, months int) ([]models.MonthTotal, error) {
	if months < 1 || months > MaxReportMonths {
		return nil, ValidationError(fmt.Errorf("months: must be between 1 and %d", MaxReportMonths))
	}

	now := s.now().UTC()
	_, to := models.MonthRange(now.Year(), int(now.Month()))
	from := to.AddDate(0, -months, 0)

	totals, err := s.store.MonthlyTotals(ctx, userID, from, to)
	if err != nil {
		return nil, InternalError("failed to aggregate monthly totals", err)
	}

	byMonth := make(map[string]models.MonthTotal, len(totals))
	for _, t := range totals {
		byMonth[t.Month] = t
	}

	report := make([]models.MonthTotal, 0, months)
	for m := from; m.Before(to); m = m.AddDate(0, 1, 0) {
		key := m.Format("2006-01")
		total, ok := byMonth[key]
		if !ok {
			total = models.MonthTotal{Month: key}
		}
		report = append(report, total)
	}

	return report, nil
}

// ExportMonth выгружает транзакции месяца в CSV и возвращает ссылку на скачивание
func (s *BudgetService) ExportMonth(ctx context.Context, userID int64, year, month int) (*ExportResult, error) {
	if s.uploader == nil {
		return nil, ErrExportNotConfigured
	}

	year, month, err := s.resolvePeriod(year, month)
	if err != nil {
		return nil, err
	}
	from, to := models.MonthRange(year, month)

	txs, err := s.allTransactions(ctx, models.TransactionFilter{UserID: userID, From: &from, To: &to})
	if err != nil {
		return nil, InternalError("failed to load transactions", err)
	}

	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, InternalError("failed to list categories", err)
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	var buf bytes.Buffer
	if err := reports.WriteTransactionsCSV(&buf, txs, names); err != nil {
		return nil, InternalError("failed to render report", err)
	}

	key := fmt.Sprintf("reports/%d/%04d-%02d-%s.csv", userID, year, month, uuid.NewString())
	url, err := s.uploader.Upload(ctx, key, reports.CSVContentType, buf.Bytes())
	if err != nil {
		return nil, InternalError("failed to upload report", err)
	}

	s.logger.InfoContext(ctx, "report exported",
		slog.Int64("user_id", userID),
		slog.String("key", key),
		slog.Int("rows", len(txs)))

	return &ExportResult{Key: key, URL: url, Rows: len(txs)}, nil
}

// allTransactions читает все страницы выборки
func (s *BudgetService) allTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	filter.Limit = MaxPageSize
	filter.Offset = 0

	var all []*models.Transaction
	for {
		page, total, err := s.store.ListTransactions(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		if len(page) == 0 || int64(len(all)) >= total {
			return all, nil
		}
		filter.Offset += len(page)
	}
}
