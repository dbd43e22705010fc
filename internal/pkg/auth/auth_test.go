package auth

import (
	"testing"
	"time"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "furniture-backend"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-that-is-at-least-32-characters",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
}

func TestJWTManager_AccessToken(t *testing.T) {
	jm := NewJWTManager(testConfig())

	token, err := jm.GenerateAccessToken("u1", "ada@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := jm.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "furniture-backend", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Greater(t, claims.RemainingTTL(), 14*time.Minute)

	_, err = jm.ValidateRefreshToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RefreshTokenHasNoRole(t *testing.T) {
	jm := NewJWTManager(testConfig())

	token, err := jm.GenerateRefreshToken("u1", "ada@example.com")
	require.NoError(t, err)

	claims, err := jm.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Empty(t, claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestJWTManager_RejectsForeignSignature(t *testing.T) {
	token, err := NewJWTManager(testConfig()).GenerateAccessToken("u1", "a@b.c", RoleUser)
	require.NoError(t, err)

	other := testConfig()
	other.JWT.Secret = "another-secret-that-is-also-32-characters"
	_, err = NewJWTManager(other).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.AccessTokenExpiry = -time.Minute

	jm := NewJWTManager(cfg)
	token, err := jm.GenerateAccessToken("u1", "a@b.c", RoleUser)
	require.NoError(t, err)

	_, err = jm.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc"))
	assert.Empty(t, ExtractTokenFromHeader(""))
}

func TestPasswordManager(t *testing.T) {
	pm := NewPasswordManager(testConfig())

	hash, err := pm.HashPassword("Sofa2024")
	require.NoError(t, err)
	assert.NoError(t, pm.VerifyPassword("Sofa2024", hash))
	assert.Error(t, pm.VerifyPassword("sofa2024", hash))

	for _, weak := range []string{"Short1", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
		_, err := pm.HashPassword(weak)
		assert.ErrorIs(t, err, ErrWeakPassword, weak)
	}
}
