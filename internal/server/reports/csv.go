// Package reports строит выгрузки транзакций и сохраняет их в объектное хранилище.
package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/iudanet/budgetkeeper/internal/models"
)

// CSVContentType MIME тип выгрузки
const CSVContentType = "text/csv; charset=utf-8"

var csvHeader = []string{"id", "occurred_at", "type", "category", "amount", "description"}

// WriteTransactionsCSV пишет транзакции в CSV. categories сопоставляет ID категории
// с ее именем; транзакции без категории получают пустую ячейку.
func WriteTransactionsCSV(w io.Writer, txs []*models.Transaction, categories map[int64]string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, tx := range txs {
		category := ""
		if tx.CategoryID != nil {
			category = categories[*tx.CategoryID]
		}

		record := []string{
			strconv.FormatInt(tx.ID, 10),
			tx.OccurredAt.UTC().Format(time.RFC3339),
			string(tx.Type),
			category,
			models.FormatAmount(tx.Amount),
			tx.Description,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
