package auth

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/budgetkeeper/internal/client/api"
	"github.com/iudanet/budgetkeeper/internal/client/storage"
	"github.com/iudanet/budgetkeeper/internal/validation"
	pkgapi "github.com/iudanet/budgetkeeper/pkg/api"
)

const password = "Str0ng!Pass"

// memoryStore implements storage.SessionStore for testing
type memoryStore struct {
	session *storage.Session
	getErr  error
	saveErr error
}

func (m *memoryStore) SaveSession(_ context.Context, s *storage.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *s
	m.session = &cp
	return nil
}

func (m *memoryStore) GetSession(context.Context) (*storage.Session, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.session == nil {
		return nil, storage.ErrSessionNotFound
	}
	cp := *m.session
	return &cp, nil
}

func (m *memoryStore) DeleteSession(context.Context) error {
	m.session = nil
	return nil
}

// fakeAPI implements APIClient for testing
type fakeAPI struct {
	registered  []pkgapi.RegisterRequest
	logouts     []string
	login       *pkgapi.LoginResponse
	me          *pkgapi.User
	loginErr    error
	logoutErr   error
	meErr       error
	activateErr error
}

func (f *fakeAPI) Register(_ context.Context, req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error) {
	f.registered = append(f.registered, req)
	return &pkgapi.RegisterResponse{ID: 1, Email: req.Email}, nil
}

func (f *fakeAPI) Activate(context.Context, string) (*pkgapi.MessageResponse, error) {
	if f.activateErr != nil {
		return nil, f.activateErr
	}
	return &pkgapi.MessageResponse{Message: "Account activated."}, nil
}

func (f *fakeAPI) Login(context.Context, pkgapi.LoginRequest) (*pkgapi.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.login, nil
}

func (f *fakeAPI) Logout(_ context.Context, token string) error {
	f.logouts = append(f.logouts, token)
	return f.logoutErr
}

func (f *fakeAPI) Me(context.Context, string) (*pkgapi.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.me, nil
}

func (f *fakeAPI) BaseURL() string { return "http://budget.test" }

func newTestService(fake *fakeAPI, store *memoryStore) (*Service, *bytes.Buffer) {
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewService(fake, store, logger), logs
}

func TestService_Register(t *testing.T) {
	fake := &fakeAPI{}
	svc, _ := newTestService(fake, &memoryStore{})

	_, err := svc.Register(context.Background(), validation.Registration{
		Email: " Alice@Example.com", Password: password, ConfirmPassword: password,
	})
	require.NoError(t, err)
	require.Len(t, fake.registered, 1)
	assert.Equal(t, "alice@example.com", fake.registered[0].Email)
}

func TestService_RegisterInvalid(t *testing.T) {
	tests := []struct {
		name string
		form validation.Registration
	}{
		{name: "bad email", form: validation.Registration{Email: "nope", Password: password, ConfirmPassword: password}},
		{name: "weak password", form: validation.Registration{Email: "a@example.com", Password: "weak", ConfirmPassword: "weak"}},
		{name: "mismatch", form: validation.Registration{Email: "a@example.com", Password: password, ConfirmPassword: "Other!Pass1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAPI{}
			svc, _ := newTestService(fake, &memoryStore{})

			_, err := svc.Register(context.Background(), tt.form)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid registration")
			assert.Empty(t, fake.registered, "server must not be called")
		})
	}
}

func TestService_Activate(t *testing.T) {
	fake := &fakeAPI{}
	svc, _ := newTestService(fake, &memoryStore{})

	require.NoError(t, svc.Activate(context.Background(), "tok"))
	require.Error(t, svc.Activate(context.Background(), ""))

	fake.activateErr = &api.Error{Status: http.StatusNotFound, Code: "not_found"}
	err := svc.Activate(context.Background(), "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "activation failed")
}

func TestService_Login(t *testing.T) {
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	fake := &fakeAPI{login: &pkgapi.LoginResponse{
		Token:     "jwt",
		ExpiresAt: expires,
		User:      pkgapi.User{ID: 5, Email: "bob@example.com", Role: "Pro"},
	}}
	store := &memoryStore{}
	svc, _ := newTestService(fake, store)

	session, err := svc.Login(context.Background(), "BOB@example.com", password)
	require.NoError(t, err)
	assert.Equal(t, "jwt", session.Token)

	require.NotNil(t, store.session)
	assert.Equal(t, "http://budget.test", store.session.Server)
	assert.Equal(t, int64(5), store.session.UserID)
	assert.Equal(t, "Pro", store.session.Role)
	assert.True(t, expires.Equal(store.session.ExpiresAt))

	current, err := svc.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", current.Email)
}

func TestService_LoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		loginErr error
		saveErr  error
		wantErr  string
	}{
		{name: "invalid email", email: "bob", password: password, wantErr: "invalid email"},
		{name: "empty password", email: "bob@example.com", wantErr: "password is required"},
		{
			name: "rejected", email: "bob@example.com", password: password,
			loginErr: &api.Error{Status: http.StatusUnauthorized, Message: "Invalid email or password."},
			wantErr:  "Invalid email or password.",
		},
		{name: "save failure", email: "bob@example.com", password: password, saveErr: errors.New("disk full"), wantErr: "failed to save session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAPI{
				loginErr: tt.loginErr,
				login:    &pkgapi.LoginResponse{Token: "jwt", ExpiresAt: time.Now().Add(time.Hour)},
			}
			store := &memoryStore{saveErr: tt.saveErr}
			svc, _ := newTestService(fake, store)

			_, err := svc.Login(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Nil(t, store.session)
		})
	}
}

func TestService_Logout(t *testing.T) {
	t.Run("not authenticated", func(t *testing.T) {
		svc, _ := newTestService(&fakeAPI{}, &memoryStore{})
		assert.ErrorIs(t, svc.Logout(context.Background()), ErrNotAuthenticated)
	})

	t.Run("revokes on server", func(t *testing.T) {
		fake := &fakeAPI{}
		store := &memoryStore{session: &storage.Session{Token: "jwt", ExpiresAt: time.Now().Add(time.Hour)}}
		svc, _ := newTestService(fake, store)

		require.NoError(t, svc.Logout(context.Background()))
		assert.Equal(t, []string{"jwt"}, fake.logouts)
		assert.Nil(t, store.session)
	})

	t.Run("server unavailable", func(t *testing.T) {
		fake := &fakeAPI{logoutErr: errors.New("connection refused")}
		store := &memoryStore{session: &storage.Session{Token: "jwt", ExpiresAt: time.Now().Add(time.Hour)}}
		svc, logs := newTestService(fake, store)

		require.NoError(t, svc.Logout(context.Background()))
		assert.Nil(t, store.session)
		assert.Contains(t, logs.String(), "failed to logout on server")
	})

	t.Run("expired token is not sent", func(t *testing.T) {
		fake := &fakeAPI{}
		store := &memoryStore{session: &storage.Session{Token: "old", ExpiresAt: time.Now().Add(-time.Hour)}}
		svc, _ := newTestService(fake, store)

		require.NoError(t, svc.Logout(context.Background()))
		assert.Empty(t, fake.logouts)
		assert.Nil(t, store.session)
	})
}

func TestService_Session(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		store   *memoryStore
		wantErr error
	}{
		{name: "missing", store: &memoryStore{}, wantErr: ErrNotAuthenticated},
		{name: "expired", store: &memoryStore{session: &storage.Session{ExpiresAt: now.Add(-time.Minute)}}, wantErr: ErrSessionExpired},
		{name: "valid", store: &memoryStore{session: &storage.Session{Token: "jwt", ExpiresAt: now.Add(time.Minute)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(&fakeAPI{}, tt.store)
			svc.now = func() time.Time { return now }

			token, err := svc.Token(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "jwt", token)
		})
	}

	t.Run("store failure", func(t *testing.T) {
		svc, _ := newTestService(&fakeAPI{}, &memoryStore{getErr: storage.ErrStorageClosed})
		_, err := svc.Session(context.Background())
		assert.ErrorIs(t, err, storage.ErrStorageClosed)
	})
}

func TestService_Whoami(t *testing.T) {
	valid := func() *memoryStore {
		return &memoryStore{session: &storage.Session{Token: "jwt", ExpiresAt: time.Now().Add(time.Hour)}}
	}

	t.Run("ok", func(t *testing.T) {
		svc, _ := newTestService(&fakeAPI{me: &pkgapi.User{ID: 1, Email: "a@example.com"}}, valid())

		user, err := svc.Whoami(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", user.Email)
	})

	t.Run("revoked token drops session", func(t *testing.T) {
		store := valid()
		svc, _ := newTestService(&fakeAPI{meErr: &api.Error{Status: http.StatusUnauthorized, Message: "token revoked"}}, store)

		_, err := svc.Whoami(context.Background())
		assert.ErrorIs(t, err, ErrSessionExpired)
		assert.Nil(t, store.session)
	})

	t.Run("other errors keep session", func(t *testing.T) {
		store := valid()
		svc, _ := newTestService(&fakeAPI{meErr: &api.Error{Status: http.StatusInternalServerError}}, store)

		_, err := svc.Whoami(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSessionExpired)
		assert.NotNil(t, store.session)
	})
}
