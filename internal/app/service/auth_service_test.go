package service

import (
	"context"
	"testing"

	"quickhacker/internal/common"
	"quickhacker/internal/common/security"
	"quickhacker/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "longenough", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleParticipant, resp.User.Role)
	assert.Equal(t, model.ProviderLocal, resp.User.AuthProvider)
	require.NotNil(t, resp.User.Password)
	assert.NotEqual(t, "longenough", *resp.User.Password)

	claims := security.VerifyToken(resp.Token)
	require.NotNil(t, claims)
	assert.Equal(t, resp.User.ID, claims.ID)
	assert.Equal(t, "Ada", claims.Name)

	byEmail, err := env.auth.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, byEmail.User.ID)

	byUsername, err := env.auth.Login(ctx, LoginRequest{Email: "ada", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, byUsername.User.ID)
}

func TestAuthService_RegisterRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.auth.Register(ctx, RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "longenough"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  RegisterRequest
		msg  string
	}{
		{"missing fields", RegisterRequest{Username: "x"}, "Username, email and password are required"},
		{"bad email", RegisterRequest{Username: "x", Email: "nope", Password: "longenough"}, "Invalid email address"},
		{"short password", RegisterRequest{Username: "x", Email: "x@example.com", Password: "short"}, "Password must be at least 8 characters"},
		{"email taken", RegisterRequest{Username: "other", Email: "ada@example.com", Password: "longenough"}, "Email already in use"},
		{"username taken", RegisterRequest{Username: "ada", Email: "new@example.com", Password: "longenough"}, "Username already taken"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Equal(t, tt.msg, common.PublicMessage(err))
		})
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	participant := env.user(t, model.RoleParticipant)
	admin := env.user(t, model.RoleAdmin)

	_, err := env.auth.Login(ctx, LoginRequest{Email: participant.Email, Password: "wrong-password"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, "Invalid email or password", common.PublicMessage(err))

	_, err = env.auth.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "password123"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = env.auth.Login(ctx, LoginRequest{Email: participant.Email, Password: "password123", UserType: "admin"})
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "Not authorized as admin", common.PublicMessage(err))

	resp, err := env.auth.Login(ctx, LoginRequest{Email: admin.Email, Password: "password123", UserType: "admin"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, resp.User.ID)
}

func TestAuthService_OAuthOnlyAccountCannotUsePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := createAccount(ctx, env.store.Users(), nil, newAccount{
		Username: "octo", Email: "octo@example.com", Provider: model.ProviderGitHub, ProviderID: strPtr("42"),
	})
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "octo@example.com", Password: ""})
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = env.auth.Login(ctx, LoginRequest{Email: "octo@example.com", Password: "anything"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
