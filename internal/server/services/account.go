package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/iudanet/budgetkeeper/internal/crypto"
	"github.com/iudanet/budgetkeeper/internal/models"
	"github.com/iudanet/budgetkeeper/internal/server/notify"
	"github.com/iudanet/budgetkeeper/internal/server/storage"
	"github.com/iudanet/budgetkeeper/internal/validation"
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgNotActivated       = "Account is not activated."
)

// TokenIssuer выпускает bearer токены
type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
}

// PasswordHasher хеширует и проверяет пароли
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// LoginResult результат успешного входа
type LoginResult struct {
	ExpiresAt time.Time
	User      *models.User
	Token     string
}

// AccountService регистрация, вход, выход, активация и администрирование пользователей
type AccountService struct {
	logger        *slog.Logger
	users         storage.UserStorage
	revoked       storage.RevokedTokenStorage
	issuer        TokenIssuer
	hasher        PasswordHasher
	notifier      notify.Sender
	now           func() time.Time
	activationURL string
	decoyOnce     sync.Once
	decoyHash     string
}

// NewAccountService создает AccountService.
// activationURL - адрес, к которому добавляется ?token=<activation token> в письме.
func NewAccountService(
	logger *slog.Logger,
	users storage.UserStorage,
	revoked storage.RevokedTokenStorage,
	issuer TokenIssuer,
	hasher PasswordHasher,
	notifier notify.Sender,
	activationURL string,
) *AccountService {
	return &AccountService{
		logger:        logger,
		users:         users,
		revoked:       revoked,
		issuer:        issuer,
		hasher:        hasher,
		notifier:      notifier,
		activationURL: activationURL,
		now:           time.Now,
	}
}

// Register создает неактивную учетную запись с ролью User и отправляет письмо активации
func (s *AccountService) Register(ctx context.Context, req validation.Registration) (*models.User, error) {
	req.Email = validation.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, ValidationError(err)
	}

	email := req.Email

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.WarnContext(ctx, "registration rejected: email taken")
		return nil, ConflictError("User with this email already exists.", storage.ErrUserAlreadyExists)
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, InternalError("failed to check email", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, InternalError("failed to hash password", err)
	}

	activationToken, err := crypto.RandomToken(32)
	if err != nil {
		return nil, InternalError("failed to generate activation token", err)
	}

	now := s.now().UTC()
	user := &models.User{
		Email:           email,
		PasswordHash:    hash,
		Role:            models.RoleUser,
		IsActive:        false,
		ActivationToken: &activationToken,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		// гонка двух регистраций разрешается уникальным индексом
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, ConflictError("User with this email already exists.", err)
		}
		return nil, InternalError("failed to create user", err)
	}

	if err := s.notifier.Send(ctx, s.activationMessage(user.Email, activationToken)); err != nil {
		s.logger.ErrorContext(ctx, "failed to send activation mail",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err))

		if delErr := s.users.DeleteUser(ctx, user.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to roll back registration",
				slog.Int64("user_id", user.ID),
				slog.Any("error", delErr))
		}
		return nil, InternalError("failed to send activation mail", err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.Int64("user_id", user.ID))

	return user, nil
}

func (s *AccountService) activationMessage(email, token string) notify.Message {
	link := s.activationURL + "?token=" + url.QueryEscape(token)
	return notify.Message{
		To:      email,
		Subject: "Activate your budgetkeeper account",
		Body:    fmt.Sprintf("Welcome!\n\nOpen the link below to activate your account:\n%s\n", link),
	}
}

// Login проверяет учетные данные и выпускает токен.
// Неизвестный email и неверный пароль неразличимы для клиента.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ValidationError(errors.New("email and password are required"))
	}

	user, err := s.users.GetUserByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// та же стоимость bcrypt, что и для существующего email
			_ = s.hasher.Verify(password, s.decoy())
			s.logger.WarnContext(ctx, "login failed: user not found")
			return nil, UnauthorizedError(msgInvalidCredentials)
		}
		return nil, InternalError("failed to get user", err)
	}

	if err := s.hasher.Verify(password, user.PasswordHash); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			s.logger.WarnContext(ctx, "login failed: invalid password", slog.Int64("user_id", user.ID))
			return nil, UnauthorizedError(msgInvalidCredentials)
		}
		return nil, InternalError("failed to verify password", err)
	}

	if !user.IsActive {
		s.logger.WarnContext(ctx, "login failed: account not activated", slog.Int64("user_id", user.ID))
		return nil, UnauthorizedError(msgNotActivated)
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, InternalError("failed to update last login", err)
	}
	user.LastLogin = &now

	token, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return nil, InternalError("failed to issue token", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("role", user.Role.String()))

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// decoy хеш случайного пароля для проверки при неизвестном email
func (s *AccountService) decoy() string {
	s.decoyOnce.Do(func() {
		secret, err := crypto.RandomToken(16)
		if err != nil {
			secret = "decoy-password"
		}
		hash, err := s.hasher.Hash(secret)
		if err != nil {
			s.logger.Error("failed to prepare decoy hash", slog.Any("error", err))
			return
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}

// Logout отзывает токен до истечения его срока действия
func (s *AccountService) Logout(ctx context.Context, rawToken string, expiresAt time.Time) error {
	if rawToken == "" {
		return UnauthorizedError("missing token")
	}

	if err := s.revoked.RevokeToken(ctx, rawToken, expiresAt); err != nil {
		return InternalError("failed to revoke token", err)
	}

	return nil
}

// Activate активирует учетную запись по токену из письма
func (s *AccountService) Activate(ctx context.Context, activationToken string) error {
	if activationToken == "" {
		return ValidationError(errors.New("activation token is required"))
	}

	user, err := s.users.GetUserByActivationToken(ctx, activationToken)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return NotFoundError("Activation token not found.", err)
		}
		return InternalError("failed to find activation token", err)
	}

	if err := s.users.ActivateUser(ctx, user.ID); err != nil {
		return InternalError("failed to activate user", err)
	}

	s.logger.InfoContext(ctx, "user activated", slog.Int64("user_id", user.ID))

	return nil
}

// Profile возвращает учетную запись вызывающего
func (s *AccountService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	return s.getUser(ctx, userID)
}

// ListUsers список пользователей для администратора
func (s *AccountService) ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, error) {
	users, err := s.users.ListUsers(ctx, filter)
	if err != nil {
		return nil, InternalError("failed to list users", err)
	}
	return users, nil
}

// UpdateUser меняет роль и/или признак активности.
// Новая роль начинает действовать со следующего входа пользователя.
func (s *AccountService) UpdateUser(ctx context.Context, id int64, role *models.Role, isActive *bool) (*models.User, error) {
	if role != nil && !role.Valid() {
		return nil, ValidationError(fmt.Errorf("unknown role %q", string(*role)))
	}
	if role == nil && isActive == nil {
		return nil, ValidationError(errors.New("nothing to update"))
	}

	if err := s.users.UpdateRoleAndStatus(ctx, id, role, isActive); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, NotFoundError("User not found.", err)
		}
		return nil, InternalError("failed to update user", err)
	}

	s.logger.InfoContext(ctx, "user updated by admin", slog.Int64("user_id", id))

	return s.getUser(ctx, id)
}

// DeleteUser удаляет пользователя вместе с его записями. Удалить себя нельзя.
func (s *AccountService) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ForbiddenError("Administrators cannot delete their own account.")
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		switch {
		case errors.Is(err, storage.ErrUserNotFound):
			return NotFoundError("User not found.", err)
		case errors.Is(err, storage.ErrInUse):
			return ConflictError("User still owns categories.", err)
		}
		return InternalError("failed to delete user", err)
	}

	s.logger.InfoContext(ctx, "user deleted by admin",
		slog.Int64("user_id", id),
		slog.Int64("actor_id", actorID))

	return nil
}

func (s *AccountService) getUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, NotFoundError("User not found.", err)
		}
		return nil, InternalError("failed to get user", err)
	}
	return user, nil
}
