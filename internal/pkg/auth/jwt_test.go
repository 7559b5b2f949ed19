/*
 * @author: sun977
 * @date: 2025.09.06
 * @description: JWT工具测试
 */
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestGenerateAndValidateAccessToken(t *testing.T) {
	manager := NewJWTManager(testSecret, "meghamaster-test", time.Hour)

	token, err := manager.GenerateAccessToken(42, "forecaster")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "forecaster", claims.Username)
	assert.Equal(t, "meghamaster-test", claims.Issuer)
}

func TestValidateAccessTokenWrongSecret(t *testing.T) {
	manager := NewJWTManager(testSecret, "meghamaster-test", time.Hour)
	other := NewJWTManager("another-secret-another-secret-32", "meghamaster-test", time.Hour)

	token, err := manager.GenerateAccessToken(1, "forecaster")
	require.NoError(t, err)

	claims, err := other.ValidateAccessToken(token)
	assert.Nil(t, claims)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessTokenExpired(t *testing.T) {
	manager := NewJWTManager(testSecret, "meghamaster-test", -time.Minute)

	token, err := manager.GenerateAccessToken(1, "forecaster")
	require.NoError(t, err)

	claims, err := manager.ValidateAccessToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessTokenGarbage(t *testing.T) {
	manager := NewJWTManager(testSecret, "meghamaster-test", time.Hour)

	claims, err := manager.ValidateAccessToken("not.a.token")
	assert.Nil(t, claims)
	assert.Error(t, err)
}
