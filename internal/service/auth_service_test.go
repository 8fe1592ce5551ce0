package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopmall-api/internal/model"
	"shopmall-api/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type authFixture struct {
	store  *fakeStore
	users  UserService
	auth   AuthService
	tokens *jwt.Manager
	google *fakeVerifier
}

func newAuthFixture() *authFixture {
	store := newFakeStore()
	tokens := jwt.NewManager("test-secret", time.Hour, "shopmall-api")
	google := &fakeVerifier{}
	return &authFixture{
		store:  store,
		users:  NewUserService(store.userRepo(), zap.NewNop()),
		auth:   NewAuthService(store.userRepo(), tokens, google, zap.NewNop()),
		tokens: tokens,
		google: google,
	}
}

func TestRegisterThenLogin(t *testing.T) {
	f := newAuthFixture()

	user, err := f.users.Register(&RegisterRequest{Email: "Kim@Example.com", Name: "Kim", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "kim@example.com", user.Email)
	assert.Equal(t, model.RoleCustomer, user.Role)
	assert.NotEqual(t, "secret1", user.Password)

	resp, err := f.auth.Login(&LoginRequest{Email: "KIM@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)

	claims, err := f.auth.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "kim@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	_, err := f.users.Register(&RegisterRequest{Email: "a@example.com", Name: "A", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.users.Register(&RegisterRequest{Email: "A@EXAMPLE.COM", Name: "B", Password: "secret2"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"malformed email", RegisterRequest{Email: "not-an-email", Name: "A", Password: "secret1"}},
		{"short password", RegisterRequest{Email: "a@example.com", Name: "A", Password: "12345"}},
		{"blank name", RegisterRequest{Email: "a@example.com", Name: "  ", Password: "secret1"}},
		{"unknown role", RegisterRequest{Email: "a@example.com", Name: "A", Password: "secret1", Role: "root"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			_, err := f.users.Register(&tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	f := newAuthFixture()
	_, err := f.users.Register(&RegisterRequest{Email: "a@example.com", Name: "A", Password: "secret1"})
	require.NoError(t, err)

	kakao := model.ProviderKakao
	socialID := "k-1"
	require.NoError(t, f.store.userRepo().Create(&model.User{
		Email: "social@example.com", Name: "S", Role: model.RoleCustomer,
		SocialProvider: &kakao, SocialID: &socialID,
	}))

	for _, req := range []LoginRequest{
		{Email: "a@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "secret1"},
		{Email: "social@example.com", Password: "anything"},
	} {
		_, err := f.auth.Login(&req)
		assert.ErrorIs(t, err, ErrInvalidCredentials, req.Email)
	}

	_, err = f.auth.Login(&LoginRequest{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSocialLoginTrustedProvider(t *testing.T) {
	f := newAuthFixture()
	req := &SocialLoginRequest{Provider: "kakao", SocialID: "k-42", Email: "Lee@Example.com", Name: "Lee"}

	first, created, err := f.auth.SocialLogin(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "lee@example.com", first.User.Email)
	assert.NotEmpty(t, first.Token)

	second, created, err := f.auth.SocialLogin(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestSocialLoginConflicts(t *testing.T) {
	f := newAuthFixture()
	_, err := f.users.Register(&RegisterRequest{Email: "pw@example.com", Name: "P", Password: "secret1"})
	require.NoError(t, err)
	_, _, err = f.auth.SocialLogin(context.Background(), &SocialLoginRequest{
		Provider: "facebook", SocialID: "fb-1", Email: "fb@example.com", Name: "F",
	})
	require.NoError(t, err)

	_, _, err = f.auth.SocialLogin(context.Background(), &SocialLoginRequest{
		Provider: "kakao", SocialID: "k-1", Email: "pw@example.com", Name: "P",
	})
	assert.ErrorIs(t, err, ErrAccountConflict, "password account owns the email")

	_, _, err = f.auth.SocialLogin(context.Background(), &SocialLoginRequest{
		Provider: "kakao", SocialID: "k-2", Email: "fb@example.com", Name: "F",
	})
	assert.ErrorIs(t, err, ErrAccountConflict, "another provider owns the email")
	assert.Contains(t, err.Error(), "facebook")
}

func TestSocialLoginValidation(t *testing.T) {
	f := newAuthFixture()

	_, _, err := f.auth.SocialLogin(context.Background(), &SocialLoginRequest{Provider: "twitter", SocialID: "1", Email: "a@example.com", Name: "A"})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = f.auth.SocialLogin(context.Background(), &SocialLoginRequest{Provider: "kakao", Email: "a@example.com", Name: "A"})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = f.auth.SocialLogin(context.Background(), &SocialLoginRequest{Provider: "google"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSocialLoginGoogleUsesVerifiedClaims(t *testing.T) {
	f := newAuthFixture()
	f.google.identity = &SocialIdentity{ID: "g-sub", Email: "verified@example.com", Name: "Verified", Picture: "https://img/p.png"}

	resp, created, err := f.auth.SocialLogin(context.Background(), &SocialLoginRequest{
		Provider: "google",
		IDToken:  "header.payload.sig",
		// Client-supplied fields are ignored for google
		SocialID: "spoofed",
		Email:    "attacker@example.com",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "verified@example.com", resp.User.Email)
	assert.Equal(t, "https://img/p.png", resp.User.ProfileImage)

	_, err = f.store.userRepo().FindBySocialIdentity(model.ProviderGoogle, "g-sub")
	assert.NoError(t, err)
}

func TestSocialLoginGoogleVerificationFailure(t *testing.T) {
	f := newAuthFixture()
	f.google.err = errors.New("token expired")

	_, _, err := f.auth.SocialLogin(context.Background(), &SocialLoginRequest{Provider: "google", IDToken: "bad"})
	assert.ErrorIs(t, err, ErrUpstreamVerification)

	f.google.err = ErrProviderNotConfigured
	_, _, err = f.auth.SocialLogin(context.Background(), &SocialLoginRequest{Provider: "google", IDToken: "bad"})
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestGoogleVerifierRequiresClientID(t *testing.T) {
	_, err := NewGoogleVerifier("").Verify(context.Background(), "token")
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestVerifyAndCurrentUser(t *testing.T) {
	f := newAuthFixture()

	_, err := f.auth.Verify("")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.auth.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	ghost := uuid.New()
	token, err := f.tokens.GenerateToken(ghost, "ghost@example.com", "customer")
	require.NoError(t, err)
	claims, err := f.auth.Verify(token)
	require.NoError(t, err)

	_, err = f.auth.CurrentUser(claims.UserID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserUpdateAndDelete(t *testing.T) {
	f := newAuthFixture()
	user, err := f.users.Register(&RegisterRequest{Email: "a@example.com", Name: "A", Password: "secret1"})
	require.NoError(t, err)

	updated, err := f.users.UpdateUser(user.ID, &UpdateUserRequest{
		Name:     ptr("Alice"),
		Password: ptr("newsecret"),
		Role:     ptr(model.RoleAdmin),
		Address:  ptr("Seoul"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, model.RoleAdmin, updated.Role)
	assert.Equal(t, "Seoul", updated.Address)

	_, err = f.auth.Login(&LoginRequest{Email: "a@example.com", Password: "newsecret"})
	assert.NoError(t, err)

	_, err = f.users.UpdateUser(user.ID, &UpdateUserRequest{Password: ptr("123")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.users.UpdateUser(user.ID, &UpdateUserRequest{Role: ptr(model.Role("root"))})
	assert.ErrorIs(t, err, ErrValidation)

	all, err := f.users.GetAllUsers()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, f.users.DeleteUser(user.ID))
	assert.ErrorIs(t, f.users.DeleteUser(user.ID), ErrUserNotFound)
	_, err = f.users.GetUserByID(user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
