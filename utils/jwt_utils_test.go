package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"cipherstudio/models"
)

const testSecret = "test-secret-key"

func testUser() *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		GoogleID: "google-123",
		Email:    "dev@example.com",
		Name:     "Dev User",
		Role:     "user",
	}
}

func TestGenerateAndVerifyJWTToken(t *testing.T) {
	user := testUser()

	token, err := GenerateJWTToken(user, testSecret, 24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyJWTToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.GoogleID, claims.GoogleID)
	assert.Equal(t, user.Role, claims.Role)
}

func TestVerifyJWTTokenWrongSecret(t *testing.T) {
	token, err := GenerateJWTToken(testUser(), testSecret, 24)
	require.NoError(t, err)

	_, err = VerifyJWTToken(token, "wrong-secret")
	assert.Error(t, err)
}

func TestVerifyJWTTokenGarbage(t *testing.T) {
	_, err := VerifyJWTToken("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestGetUserIDFromToken(t *testing.T) {
	user := testUser()
	token, err := GenerateJWTToken(user, testSecret, 24)
	require.NoError(t, err)

	userID, err := GetUserIDFromToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRefreshJWTTokenNotNearExpiry(t *testing.T) {
	token, err := GenerateJWTToken(testUser(), testSecret, 24)
	require.NoError(t, err)

	_, err = RefreshJWTToken(token, testSecret, 24)
	assert.Error(t, err, "a token 24h from expiry must not be refreshable")
}
