package user

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/furnishop/furniture-backend/internal/infrastructure/database/memory"
	"github.com/furnishop/furniture-backend/internal/pkg/auth"
	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/furnishop/furniture-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type revocations struct {
	mu  sync.Mutex
	ids map[string]time.Duration
}

func (r *revocations) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[id] = ttl
	return nil
}

func (r *revocations) IsRevoked(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[id]
	return ok, nil
}

type fixture struct {
	store   *memory.Store
	creds   *CredentialStore
	revoked *revocations
	users   *Service
	admin   *AdminService
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Credential{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	cfg := &config.Config{
		App: config.AppConfig{Name: "furniture-backend"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-that-is-at-least-32-characters",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
	store := memory.NewStore()
	creds := NewCredentialStore(setupDB(t))
	revoked := &revocations{ids: map[string]time.Duration{}}
	log := logger.Discard()
	return &fixture{
		store:   store,
		creds:   creds,
		revoked: revoked,
		users:   NewService(store, creds, revoked, log, cfg),
		admin:   NewAdminService(store, creds, log),
	}
}

func (f *fixture) register(t *testing.T, name, email string) *AuthResponse {
	t.Helper()
	resp, err := f.users.Register(context.Background(), &RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "Walnut2024",
		Address:  "1 Main St",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister_CreatesProfileRoleAndCredential(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp := f.register(t, "Ada", "Ada@Example.com")
	require.NotNil(t, resp.User)
	assert.Equal(t, auth.RoleUser, resp.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "ada@example.com", resp.User.Email)

	doc, err := f.store.Get(ctx, Collection, resp.User.ID)
	require.NoError(t, err)
	assert.NotContains(t, doc.Fields, "password")
	assert.Equal(t, "Ada", doc.Fields["name"])

	role, err := f.users.LookupRole(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, role)

	cred, err := f.creds.FindByEmail("ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, cred.UserID)
}

func TestRegister_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "Ada", "ada@example.com")

	_, err := f.users.Register(ctx, &RegisterRequest{Name: "Other", Email: "ada@example.com", Password: "Walnut2024"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = f.users.Register(ctx, &RegisterRequest{Name: "Weak", Email: "weak@example.com", Password: "short"})
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reg := f.register(t, "Ada", "ada@example.com")

	resp, err := f.users.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "Walnut2024"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)
	assert.Equal(t, auth.RoleUser, resp.Role)

	_, err = f.users.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.users.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "Walnut2024"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_MissingRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reg := f.register(t, "Ada", "ada@example.com")

	roles, err := f.store.Query(ctx, RoleCollection, docstore.Where("userId", reg.User.ID))
	require.NoError(t, err)
	for _, r := range roles {
		require.NoError(t, f.store.Delete(ctx, RoleCollection, r.ID))
	}

	_, err = f.users.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "Walnut2024"})
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reg := f.register(t, "Ada", "ada@example.com")

	refreshed, err := f.users.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, reg.RefreshToken, refreshed.RefreshToken)

	_, err = f.users.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)

	_, err = f.users.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, err := auth.NewJWTManager(f.users.config).ValidateAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	require.NoError(t, f.users.Logout(ctx, access, refreshed.RefreshToken))

	revoked, err := f.revoked.IsRevoked(ctx, access.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = f.users.Refresh(ctx, refreshed.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reg := f.register(t, "Ada", "ada@example.com")

	phone := "555-0100"
	p, err := f.users.UpdateProfile(ctx, reg.User.ID, &ProfileUpdate{PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, p.PhoneNumber)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, "1 Main St", p.Address)

	_, err = f.users.UpdateProfile(ctx, reg.User.ID, &ProfileUpdate{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)

	_, err = f.users.UpdateProfile(ctx, "missing", &ProfileUpdate{PhoneNumber: &phone})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePasswordAndEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reg := f.register(t, "Ada", "ada@example.com")
	f.register(t, "Bob", "bob@example.com")

	err := f.users.ChangePassword(ctx, reg.User.ID, &ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "Cherry2025"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)

	require.NoError(t, f.users.ChangePassword(ctx, reg.User.ID, &ChangePasswordRequest{CurrentPassword: "Walnut2024", NewPassword: "Cherry2025"}))
	_, err = f.users.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "Cherry2025"})
	require.NoError(t, err)

	err = f.users.ChangeEmail(ctx, reg.User.ID, &ChangeEmailRequest{Password: "Cherry2025", NewEmail: "bob@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	require.NoError(t, f.users.ChangeEmail(ctx, reg.User.ID, &ChangeEmailRequest{Password: "Cherry2025", NewEmail: "ada@furnishop.test"}))
	_, err = f.users.Login(ctx, &LoginRequest{Email: "ada@furnishop.test", Password: "Cherry2025"})
	assert.NoError(t, err)
}

func TestAdmin_ListSetRoleDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ada := f.register(t, "Ada", "ada@example.com")
	bob := f.register(t, "Bob", "bob@example.com")
	require.NoError(t, f.store.Update(ctx, Collection, bob.User.ID, docstore.Fields{"image": "bob.png"}))
	require.NoError(t, f.store.Set(ctx, "orders", "o1", docstore.Fields{"userId": ada.User.ID}))

	users, err := f.admin.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, DefaultAvatar, users[0].Image)
	assert.Equal(t, int64(1), users[0].OrderCount)
	assert.Equal(t, "bob.png", users[1].Image)
	assert.Equal(t, auth.RoleUser, users[1].Role)

	require.NoError(t, f.admin.SetRole(ctx, bob.User.ID, auth.RoleAdmin))
	role, err := f.users.LookupRole(ctx, bob.User.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, role)

	assert.ErrorIs(t, f.admin.SetRole(ctx, bob.User.ID, "owner"), ErrInvalidRole)
	assert.ErrorIs(t, f.admin.SetRole(ctx, "missing", auth.RoleAdmin), ErrUserNotFound)

	require.NoError(t, f.admin.Delete(ctx, ada.User.ID))
	_, err = f.users.GetProfile(ctx, ada.User.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = f.creds.FindByID(ada.User.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = f.users.LookupRole(ctx, ada.User.ID)
	assert.ErrorIs(t, err, ErrRoleNotFound)

	assert.ErrorIs(t, f.admin.Delete(ctx, ada.User.ID), ErrUserNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	id, err := f.users.EnsureAdmin(ctx, "Root", "root@furnishop.test", "Walnut2024")
	require.NoError(t, err)
	role, err := f.users.LookupRole(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, role)

	again, err := f.users.EnsureAdmin(ctx, "Root", "ROOT@furnishop.test", "ignored")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	roles, err := f.store.Query(ctx, RoleCollection, docstore.Where("userId", id))
	require.NoError(t, err)
	assert.Len(t, roles, 1)

	_, err = f.users.Login(ctx, &LoginRequest{Email: "root@furnishop.test", Password: "Walnut2024"})
	assert.NoError(t, err)
}
