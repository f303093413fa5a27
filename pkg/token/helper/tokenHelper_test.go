package helper

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAccessToken(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "failed to generate private key")
	name := "Amelia"
	user := &model.Profile{ID: uuid.New(), DisplayName: &name, IsAdmin: true}

	t.Run("Valid", func(t *testing.T) {
		token, err := GenerateAccessToken(user, privateKey, 12)
		require.NoError(t, err)

		got, err := ValidateAccessToken(token, &privateKey.PublicKey)

		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "Amelia", got.Name())
		assert.True(t, got.IsAdmin)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := GenerateAccessToken(user, privateKey, -int(time.Hour.Seconds()))
		require.NoError(t, err)

		_, err = ValidateAccessToken(token, &privateKey.PublicKey)

		assert.Error(t, err)
	})

	t.Run("SignedWithAnotherKey", func(t *testing.T) {
		otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		token, err := GenerateAccessToken(user, otherKey, 12)
		require.NoError(t, err)

		_, err = ValidateAccessToken(token, &privateKey.PublicKey)

		assert.Error(t, err)
	})
}
