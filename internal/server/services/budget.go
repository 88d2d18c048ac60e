package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iudanet/budgetkeeper/internal/server/storage"
)

// ErrExportNotConfigured выгрузка отчетов выключена (нет настроек объектного хранилища)
var ErrExportNotConfigured = errors.New("report export is not configured")

// BudgetStore хранилище всех бюджетных сущностей
type BudgetStore interface {
	storage.CategoryStorage
	storage.TransactionStorage
	storage.GoalStorage
	storage.BudgetStorage
	storage.ReportStorage
}

// ReportUploader сохраняет готовый отчет и возвращает ссылку на скачивание
type ReportUploader interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// BudgetService категории, транзакции, цели, месячные бюджеты и отчеты пользователя
type BudgetService struct {
	logger   *slog.Logger
	store    BudgetStore
	uploader ReportUploader
	now      func() time.Time
}

// NewBudgetService создает BudgetService. uploader может быть nil.
func NewBudgetService(logger *slog.Logger, store BudgetStore, uploader ReportUploader) *BudgetService {
	return &BudgetService{
		logger:   logger,
		store:    store,
		uploader: uploader,
		now:      time.Now,
	}
}

// timestamp текущее время с точностью, которую сохраняют оба диалекта
func (s *BudgetService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
