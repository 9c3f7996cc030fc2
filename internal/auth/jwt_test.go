package auth

import (
	"os"
	"testing"

	"dts_backend/internal/config"
	"dts_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	config.AppConfig = cfg
	os.Exit(m.Run())
}

func TestGenerateAndParseToken(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken("user-1", models.UserRoleInstructor)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.UserRoleInstructor, claims.Role)
}

func TestParseToken_Garbage(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_WrongSignature(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken("user-1", models.UserRoleLearner)
	require.NoError(t, err)

	// Порча подписи делает токен невалидным
	tampered := token[:len(token)-2] + "xx"
	_, err = ParseToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
