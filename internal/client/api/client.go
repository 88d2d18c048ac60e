package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/budgetkeeper/pkg/api"
)

// Error ответ сервера с кодом не 2xx
type Error struct {
	Code    string // категория ошибки из api.ErrorResponse
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Code)
	}
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// IsUnauthorized сервер отклонил токен (истек, отозван или отсутствует)
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Authorization не переносится Go при редиректе на другой хост
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// BaseURL адрес сервера
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Activate активирует аккаунт по токену из письма
func (c *Client) Activate(ctx context.Context, activationToken string) (*api.MessageResponse, error) {
	var resp api.MessageResponse
	path := "/api/v1/auth/activate?" + url.Values{"token": {activationToken}}.Encode()
	if err := c.doRequest(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, fmt.Errorf("activate request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	var resp api.LoginResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Logout отзывает токен на сервере
func (c *Client) Logout(ctx context.Context, token string) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", token, nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Me профиль текущего пользователя
func (c *Client) Me(ctx context.Context, token string) (*api.User, error) {
	var resp api.User
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/me", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	return &resp, nil
}

// Categories системные и собственные категории пользователя
func (c *Client) Categories(ctx context.Context, token string) ([]api.Category, error) {
	var resp []api.Category
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/categories", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("categories request failed: %w", err)
	}
	return resp, nil
}

// CreateTransaction создает транзакцию
func (c *Client) CreateTransaction(ctx context.Context, token string, req api.TransactionRequest) (*api.Transaction, error) {
	var resp api.Transaction
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/transactions", token, req, &resp); err != nil {
		return nil, fmt.Errorf("create transaction request failed: %w", err)
	}
	return &resp, nil
}

// TransactionQuery фильтр списка транзакций; нулевые поля не передаются
type TransactionQuery struct {
	From       *time.Time
	To         *time.Time
	CategoryID *int64
	Type       string
	Limit      int
	Offset     int
}

func (q TransactionQuery) values() url.Values {
	v := url.Values{}
	if q.From != nil {
		v.Set("from", q.From.Format(time.RFC3339))
	}
	if q.To != nil {
		v.Set("to", q.To.Format(time.RFC3339))
	}
	if q.CategoryID != nil {
		v.Set("category_id", strconv.FormatInt(*q.CategoryID, 10))
	}
	if q.Type != "" {
		v.Set("type", q.Type)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// ListTransactions страница транзакций
func (c *Client) ListTransactions(ctx context.Context, token string, q TransactionQuery) (*api.TransactionList, error) {
	var resp api.TransactionList
	if err := c.doRequest(ctx, http.MethodGet, withQuery("/api/v1/transactions", q.values()), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list transactions request failed: %w", err)
	}
	return &resp, nil
}

// Dashboard сводка за месяц; нулевые year/month - текущий месяц
func (c *Client) Dashboard(ctx context.Context, token string, year, month int) (*api.Dashboard, error) {
	v := url.Values{}
	if year != 0 {
		v.Set("year", strconv.Itoa(year))
	}
	if month != 0 {
		v.Set("month", strconv.Itoa(month))
	}

	var resp api.Dashboard
	if err := c.doRequest(ctx, http.MethodGet, withQuery("/api/v1/dashboard", v), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("dashboard request failed: %w", err)
	}
	return &resp, nil
}

// MonthlyReport динамика за последние months месяцев (Pro и Admin)
func (c *Client) MonthlyReport(ctx context.Context, token string, months int) (*api.MonthlyReport, error) {
	v := url.Values{}
	if months > 0 {
		v.Set("months", strconv.Itoa(months))
	}

	var resp api.MonthlyReport
	if err := c.doRequest(ctx, http.MethodGet, withQuery("/api/v1/reports/monthly", v), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("monthly report request failed: %w", err)
	}
	return &resp, nil
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			apiErr.Code = errResp.Error
			apiErr.Message = errResp.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
