// Package auth управляет сессией терминального клиента: регистрация,
// вход с сохранением токена в локальное хранилище и выход.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/budgetkeeper/internal/client/api"
	"github.com/iudanet/budgetkeeper/internal/client/storage"
	"github.com/iudanet/budgetkeeper/internal/validation"
	pkgapi "github.com/iudanet/budgetkeeper/pkg/api"
)

var (
	// ErrNotAuthenticated локальной сессии нет
	ErrNotAuthenticated = errors.New("not authenticated, please run 'budgetkeeper login' first")

	// ErrSessionExpired токен истек или отозван сервером
	ErrSessionExpired = errors.New("session expired, please run 'budgetkeeper login' again")
)

// APIClient запросы к серверу, нужные для управления сессией
type APIClient interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error)
	Activate(ctx context.Context, activationToken string) (*pkgapi.MessageResponse, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*pkgapi.User, error)
	BaseURL() string
}

// Service предоставляет функции авторизации
type Service struct {
	api    APIClient
	store  storage.SessionStore
	logger *slog.Logger
	now    func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(client APIClient, store storage.SessionStore, logger *slog.Logger) *Service {
	return &Service{
		api:    client,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Register проверяет форму локально и регистрирует пользователя.
// Аккаунт становится доступен после активации по ссылке из письма.
func (s *Service) Register(ctx context.Context, form validation.Registration) (*pkgapi.RegisterResponse, error) {
	form.Email = validation.NormalizeEmail(form.Email)
	if err := form.Validate(); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", err)
	}

	resp, err := s.api.Register(ctx, pkgapi.RegisterRequest{
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return resp, nil
}

// Activate активирует аккаунт токеном из письма
func (s *Service) Activate(ctx context.Context, activationToken string) error {
	if activationToken == "" {
		return fmt.Errorf("activation token is required")
	}

	if _, err := s.api.Activate(ctx, activationToken); err != nil {
		return fmt.Errorf("activation failed: %w", err)
	}

	return nil
}

// Login выполняет вход и сохраняет сессию, заменяя предыдущую
func (s *Service) Login(ctx context.Context, email, password string) (*storage.Session, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	resp, err := s.api.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	session := &storage.Session{
		Server:    s.api.BaseURL(),
		Email:     resp.User.Email,
		Role:      resp.User.Role,
		Token:     resp.Token,
		UserID:    resp.User.ID,
		ExpiresAt: resp.ExpiresAt,
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Debug("session saved", slog.String("email", session.Email))

	return session, nil
}

// Logout отзывает токен на сервере и удаляет локальную сессию.
// Локальная сессия удаляется, даже если сервер недоступен.
func (s *Service) Logout(ctx context.Context) error {
	session, err := s.store.GetSession(ctx)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return ErrNotAuthenticated
	}
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	if !session.Expired(s.now()) {
		if err := s.api.Logout(ctx, session.Token); err != nil {
			s.logger.Warn("failed to logout on server", slog.Any("error", err))
		}
	}

	if err := s.store.DeleteSession(ctx); err != nil {
		return fmt.Errorf("failed to delete local session: %w", err)
	}

	return nil
}

// Session текущая действующая сессия
func (s *Service) Session(ctx context.Context) (*storage.Session, error) {
	session, err := s.store.GetSession(ctx)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if session.Expired(s.now()) {
		return session, ErrSessionExpired
	}

	return session, nil
}

// Token токен действующей сессии для запросов к API
func (s *Service) Token(ctx context.Context) (string, error) {
	session, err := s.Session(ctx)
	if err != nil {
		return "", err
	}
	return session.Token, nil
}

// Whoami запрашивает профиль у сервера.
// Если сервер отклонил токен, локальная сессия удаляется.
func (s *Service) Whoami(ctx context.Context) (*pkgapi.User, error) {
	var user *pkgapi.User
	err := s.Authorized(ctx, func(token string) error {
		var err error
		user, err = s.api.Me(ctx, token)
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// checkUnauthorized заменяет 401 от сервера на ErrSessionExpired и удаляет сессию
func (s *Service) checkUnauthorized(ctx context.Context, err error) error {
	if !api.IsUnauthorized(err) {
		return err
	}

	if delErr := s.store.DeleteSession(ctx); delErr != nil {
		s.logger.Warn("failed to delete rejected session", slog.Any("error", delErr))
	}
	return ErrSessionExpired
}

// Authorized выполняет запрос с токеном текущей сессии
func (s *Service) Authorized(ctx context.Context, call func(token string) error) error {
	token, err := s.Token(ctx)
	if err != nil {
		return err
	}

	if err := call(token); err != nil {
		return s.checkUnauthorized(ctx, err)
	}
	return nil
}
