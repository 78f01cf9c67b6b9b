package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domo-app/domo-server/internal/apperr"
	"github.com/domo-app/domo-server/internal/util"
)

const testSecret = "test-secret"

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with a hashed password", func(t *testing.T) {
		users := newFakeUserStore()
		svc := NewAuthService(users, testSecret)

		id, err := svc.Register(ctx, RegisterInput{
			LoginID:  "tester",
			Password: "secret-password",
			Name:     "Tester",
			Email:    "tester@example.com",
		})
		require.NoError(t, err)

		stored := users.users[id]
		require.NotNil(t, stored)
		assert.NotEqual(t, "secret-password", stored.PasswordHash)
		assert.True(t, util.CheckPassword("secret-password", stored.PasswordHash))
	})

	t.Run("rejects a duplicate login id", func(t *testing.T) {
		users := newFakeUserStore()
		svc := NewAuthService(users, testSecret)

		_, err := svc.Register(ctx, RegisterInput{LoginID: "dup", Password: "pw", Email: "a@example.com"})
		require.NoError(t, err)

		_, err = svc.Register(ctx, RegisterInput{LoginID: "dup", Password: "pw", Email: "b@example.com"})
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		users := newFakeUserStore()
		svc := NewAuthService(users, testSecret)

		_, err := svc.Register(ctx, RegisterInput{LoginID: "a", Password: "pw", Email: "dup@example.com"})
		require.NoError(t, err)

		_, err = svc.Register(ctx, RegisterInput{LoginID: "b", Password: "pw", Email: "dup@example.com"})
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	svc := NewAuthService(users, testSecret)

	id, err := svc.Register(ctx, RegisterInput{
		LoginID:  "tester",
		Password: "secret-password",
		Email:    "tester@example.com",
	})
	require.NoError(t, err)

	t.Run("issues a parsable token", func(t *testing.T) {
		token, err := svc.Login(ctx, "tester", "secret-password")
		require.NoError(t, err)

		parsedID, err := util.ParseJWT(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, id, parsedID)
	})

	t.Run("wrong password is indistinguishable from unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, "tester", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, "nobody", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	svc := NewAuthService(users, testSecret)

	id, err := svc.Register(ctx, RegisterInput{
		LoginID:  "tester",
		Password: "old-password",
		Email:    "tester@example.com",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, id, "wrong", "new-password")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	require.NoError(t, svc.ChangePassword(ctx, id, "old-password", "new-password"))

	_, err = svc.Login(ctx, "tester", "new-password")
	assert.NoError(t, err)
	_, err = svc.Login(ctx, "tester", "old-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
