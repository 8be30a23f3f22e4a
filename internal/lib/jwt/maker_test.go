package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakerImpl_GenerateAndParse(t *testing.T) {
	const userID = "3f2504e0-aaaa-41d3-9a0c-0305e82c3301"

	t.Run("сгенерированный токен парсится и содержит user_id", func(t *testing.T) {
		maker := NewJWTMaker("secret", time.Hour)

		token, err := maker.GenerateToken(userID)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := maker.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
	})

	t.Run("токен с другим секретом отклоняется", func(t *testing.T) {
		maker := NewJWTMaker("secret", time.Hour)
		other := NewJWTMaker("another-secret", time.Hour)

		token, err := maker.GenerateToken(userID)
		require.NoError(t, err)

		_, err = other.ParseToken(token)
		require.Error(t, err)
	})

	t.Run("просроченный токен отклоняется", func(t *testing.T) {
		maker := NewJWTMaker("secret", -time.Minute)

		token, err := maker.GenerateToken(userID)
		require.NoError(t, err)

		_, err = maker.ParseToken(token)
		require.Error(t, err)
	})

	t.Run("мусор вместо токена", func(t *testing.T) {
		maker := NewJWTMaker("secret", time.Hour)

		_, err := maker.ParseToken("not-a-jwt")
		require.Error(t, err)
	})
}
