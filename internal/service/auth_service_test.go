package service

import (
	"context"
	"errors"
	"stibap_portal/internal/gateway"
	"stibap_portal/internal/model"
	"stibap_portal/internal/repository"
	"stibap_portal/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(rpc *fakeRPC) (*AuthService, repository.KVRepository) {
	repo := repository.NewMemoryKVRepository()
	return NewAuthService(rpc, NewSessionStore(repo)), repo
}

func TestSignUpRejectsPasswordMismatchLocally(t *testing.T) {
	rpc := newFakeRPC()
	auth, _ := newTestAuth(rpc)

	_, err := auth.SignUp(context.Background(), SignUpInput{
		Email:           "ada@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret2",
	})
	require.Error(t, err)
	assert.Equal(t, gateway.KindValidation, gateway.KindOf(err))
	assert.Contains(t, err.Error(), util.ErrPasswordMismatch.Error())
	assert.Equal(t, 0, rpc.count("register"))
}

func TestSignUpDoesNotAuthenticate(t *testing.T) {
	rpc := newFakeRPC()
	auth, _ := newTestAuth(rpc)

	resp, err := auth.SignUp(context.Background(), SignUpInput{
		Email:           "ada@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FullName:        "Ada",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Nil(t, auth.CurrentUser())
	assert.Equal(t, "", auth.Sessions.Token())
}

func TestSignInStoresSession(t *testing.T) {
	rpc := newFakeRPC()
	rpc.login = &model.AuthResponse{Success: true, SessionToken: "tok", User: &model.User{ID: "u1", Email: "ada@example.com"}}
	auth, repo := newTestAuth(rpc)

	user, err := auth.SignIn(context.Background(), SignInInput{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "tok", auth.Sessions.Token())

	stored, ok, err := repo.Get(context.Background(), util.KeySessionToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok", stored)
}

func TestSignInFailureLeavesStateUntouched(t *testing.T) {
	rpc := newFakeRPC()
	rpc.loginErr = &gateway.Error{Kind: gateway.KindApplication, Message: "Invalid credentials"}
	auth, _ := newTestAuth(rpc)

	_, err := auth.SignIn(context.Background(), SignInInput{Email: "ada@example.com", Password: "bad"})
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.Nil(t, auth.CurrentUser())
	assert.Equal(t, "", auth.Sessions.Token())
}

func TestVerifySessionFailureClearsSession(t *testing.T) {
	ctx := context.Background()
	rpc := newFakeRPC()
	rpc.verifyErr = &gateway.Error{Kind: gateway.KindTransport, Message: gateway.MsgNetworkError}
	auth, repo := newTestAuth(rpc)
	require.NoError(t, auth.Sessions.Set(ctx, model.Session{Token: "tok", User: &model.User{ID: "u1"}}))

	assert.True(t, auth.Loading())
	user, err := auth.VerifySession(ctx)
	require.Error(t, err)
	assert.Nil(t, user)
	assert.Nil(t, auth.CurrentUser())
	assert.False(t, auth.Loading())

	_, ok, err := repo.Get(ctx, util.KeySessionToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySessionRefreshesUser(t *testing.T) {
	ctx := context.Background()
	rpc := newFakeRPC()
	rpc.verify = &model.AuthResponse{Success: true, User: &model.User{ID: "u1", FullName: "Fresh"}}
	auth, _ := newTestAuth(rpc)
	require.NoError(t, auth.Sessions.Set(ctx, model.Session{Token: "tok", User: &model.User{ID: "u1", FullName: "Stale"}}))

	for i := 0; i < 2; i++ {
		user, err := auth.VerifySession(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Fresh", user.FullName)
	}
	assert.Equal(t, "Fresh", auth.Sessions.User().FullName)
	assert.Equal(t, "tok", auth.Sessions.Token())
	assert.Equal(t, 2, rpc.count("verify"))
}

func TestVerifySessionWithoutTokenSkipsRPC(t *testing.T) {
	rpc := newFakeRPC()
	auth, _ := newTestAuth(rpc)

	user, err := auth.VerifySession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.False(t, auth.Loading())
	assert.Equal(t, 0, rpc.count("verify"))
}

func TestSignOutClearsEvenWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	rpc := newFakeRPC()
	rpc.logoutErr = errors.New("boom")
	rpc.login = &model.AuthResponse{Success: true, SessionToken: "tok", User: &model.User{ID: "u1"}}
	auth, _ := newTestAuth(rpc)

	_, err := auth.SignIn(ctx, SignInInput{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, auth.SignOut(ctx))
	assert.Equal(t, 1, rpc.count("logout"))
	assert.Nil(t, auth.CurrentUser())
	assert.Equal(t, "", auth.Sessions.Token())
}

func TestUpdatePasswordRequiresSession(t *testing.T) {
	rpc := newFakeRPC()
	auth, _ := newTestAuth(rpc)

	err := auth.UpdatePassword(context.Background(), PasswordChangeInput{
		OldPassword:     "old123",
		NewPassword:     "new1234",
		ConfirmPassword: "new1234",
	})
	assert.True(t, errors.Is(err, gateway.ErrUnauthenticated))
	assert.Equal(t, 0, rpc.count("change"))
}

func TestUpdatePasswordKeepsToken(t *testing.T) {
	ctx := context.Background()
	rpc := newFakeRPC()
	auth, _ := newTestAuth(rpc)
	require.NoError(t, auth.Sessions.Set(ctx, model.Session{Token: "tok"}))

	err := auth.UpdatePassword(ctx, PasswordChangeInput{OldPassword: "old123", NewPassword: "short", ConfirmPassword: "short"})
	assert.Equal(t, gateway.KindValidation, gateway.KindOf(err))

	require.NoError(t, auth.UpdatePassword(ctx, PasswordChangeInput{
		OldPassword:     "old123",
		NewPassword:     "new1234",
		ConfirmPassword: "new1234",
	}))
	assert.Equal(t, 1, rpc.count("change"))
	assert.Equal(t, "tok", auth.Sessions.Token())
}

func TestCurrentUserFollowsSessionExpiry(t *testing.T) {
	ctx := context.Background()
	expires := time.Now().Add(time.Minute)
	rpc := newFakeRPC()
	rpc.login = &model.AuthResponse{Success: true, SessionToken: "tok", User: &model.User{ID: "u1"}, ExpiresAt: &expires}
	auth, repo := newTestAuth(rpc)

	_, err := auth.SignIn(ctx, SignInInput{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, auth.CurrentUser())

	auth.Sessions.now = func() time.Time { return expires.Add(time.Second) }
	assert.Nil(t, auth.CurrentUser())

	_, ok, err := repo.Get(ctx, util.KeySessionToken)
	require.NoError(t, err)
	assert.False(t, ok)

	// 会话恢复后不会复活旧的缓存用户
	auth.Sessions.now = time.Now
	require.NoError(t, auth.Sessions.Set(ctx, model.Session{Token: "other"}))
	assert.Nil(t, auth.CurrentUser())
}

func TestSignInPersistFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	rpc := newFakeRPC()
	rpc.login = &model.AuthResponse{Success: true, SessionToken: "tok", User: &model.User{ID: "u1"}}
	repo := &failingKV{KVRepository: repository.NewMemoryKVRepository(), failKey: util.KeyUserData, err: errors.New("disk full")}
	auth := NewAuthService(rpc, NewSessionStore(repo))

	_, err := auth.SignIn(ctx, SignInInput{Email: "ada@example.com", Password: "secret1"})
	require.EqualError(t, err, "disk full")
	assert.Nil(t, auth.CurrentUser())

	_, ok, err := repo.Get(ctx, util.KeySessionToken)
	require.NoError(t, err)
	assert.False(t, ok)
}
