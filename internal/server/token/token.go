package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iudanet/budgetkeeper/internal/models"
)

// ErrInvalidToken токен не прошел проверку подписи, срока, issuer или audience
var ErrInvalidToken = errors.New("invalid token")

// Config параметры выпуска токенов
type Config struct {
	Issuer        string
	Audience      string
	Secret        []byte
	ExpiryMinutes int
}

// Claims набор claims bearer токена.
// sub содержит email, UserId - числовой идентификатор строкой.
type Claims struct {
	UserID string      `json:"UserId"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// ID возвращает идентификатор пользователя из UserId
func (c *Claims) ID() (int64, error) {
	id, err := strconv.ParseInt(c.UserID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed UserId claim", ErrInvalidToken)
	}
	return id, nil
}

// Option настраивает Issuer
type Option func(*Issuer)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// Issuer выпускает и проверяет HS256 токены
type Issuer struct {
	now    func() time.Time
	parser *jwt.Parser
	cfg    Config
}

// NewIssuer создает Issuer с переданной конфигурацией
func NewIssuer(cfg Config, opts ...Option) *Issuer {
	i := &Issuer{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}

	i.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return i.now() }),
	)

	return i
}

// TTL время жизни выпускаемых токенов
func (i *Issuer) TTL() time.Duration {
	return time.Duration(i.cfg.ExpiryMinutes) * time.Minute
}

// Issue выпускает токен для пользователя.
// Возвращает строку токена и момент его истечения.
func (i *Issuer) Issue(user *models.User) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, fmt.Errorf("user is required")
	}

	now := i.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(i.TTL())

	claims := Claims{
		UserID: strconv.FormatInt(user.ID, 10),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate проверяет подпись, алгоритм, issuer, audience и срок действия.
// Реестр отозванных токенов здесь не проверяется.
func (i *Issuer) Validate(raw string) (*Claims, error) {
	claims := &Claims{}

	tok, err := i.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return i.cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}

	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	return claims, nil
}
