package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"stibap_portal/internal/model"
	"stibap_portal/internal/repository"
	"stibap_portal/internal/service"
	"stibap_portal/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubState struct {
	loading bool
	user    *model.User
}

func (s stubState) Loading() bool { return s.loading }

func (s stubState) CurrentUser() *model.User { return s.user }

type stubLookup struct {
	prefs *model.Preferences
	err   error
	calls int
}

func (s *stubLookup) Preferences(ctx context.Context, user *model.User) (*model.Preferences, error) {
	s.calls++
	return s.prefs, s.err
}

func TestAuthDecision(t *testing.T) {
	user := &model.User{ID: "u1"}
	assert.Equal(t, Decision{Kind: Pending}, AuthDecision(true, user))
	assert.Equal(t, Decision{Kind: Redirect, Location: util.LoginPath}, AuthDecision(false, nil))
	assert.Equal(t, Decision{Kind: Allow}, AuthDecision(false, user))
}

func TestOnboardingDecisionFailsClosed(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: "u1"}
	toOnboarding := Decision{Kind: Redirect, Location: util.OnboardingPath}

	assert.Equal(t, toOnboarding, OnboardingDecision(ctx, false, user, &stubLookup{}))
	assert.Equal(t, toOnboarding, OnboardingDecision(ctx, false, user, &stubLookup{prefs: &model.Preferences{}}))
	assert.Equal(t, toOnboarding, OnboardingDecision(ctx, false, user, &stubLookup{err: errors.New("down")}))
	assert.Equal(t, Decision{Kind: Allow}, OnboardingDecision(ctx, false, user,
		&stubLookup{prefs: &model.Preferences{OnboardingCompleted: true}}))

	lookup := &stubLookup{}
	assert.Equal(t, util.LoginPath, OnboardingDecision(ctx, false, nil, lookup).Location)
	assert.Equal(t, 0, lookup.calls)
}

func newGuardedRouter(guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentUser(c).ID})
	})
	return r
}

func serve(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestAuthGuardResponses(t *testing.T) {
	w := serve(newGuardedRouter(AuthGuard(stubState{loading: true})))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"loading":true}`, w.Body.String())

	w = serve(newGuardedRouter(AuthGuard(stubState{})))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, util.LoginPath, w.Header().Get("Location"))

	w = serve(newGuardedRouter(AuthGuard(stubState{user: &model.User{ID: "u1"}})))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"u1"}`, w.Body.String())
}

func TestOnboardingGuardRedirects(t *testing.T) {
	state := stubState{user: &model.User{ID: "u1"}}
	w := serve(newGuardedRouter(OnboardingGuard(state, &stubLookup{err: errors.New("down")})))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, util.OnboardingPath, w.Header().Get("Location"))
}

func TestAdminGuard(t *testing.T) {
	w := serve(newGuardedRouter(AdminGuard(stubState{user: &model.User{ID: "u1", Role: model.RoleUser}})))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(newGuardedRouter(AdminGuard(stubState{user: &model.User{ID: "root", Role: model.RoleSuperAdmin}})))
	assert.Equal(t, http.StatusOK, w.Code)
}

type expiringRPC struct {
	user      *model.User
	expiresAt time.Time
}

func (r expiringRPC) RegisterUser(ctx context.Context, email, password, fullName string) (*model.AuthResponse, error) {
	return &model.AuthResponse{Success: true}, nil
}

func (r expiringRPC) LoginUser(ctx context.Context, email, password, ipAddress, userAgent string) (*model.AuthResponse, error) {
	exp := r.expiresAt
	return &model.AuthResponse{Success: true, SessionToken: "tok", User: r.user, ExpiresAt: &exp}, nil
}

func (r expiringRPC) VerifySession(ctx context.Context, token string) (*model.AuthResponse, error) {
	return &model.AuthResponse{Success: true, User: r.user}, nil
}

func (r expiringRPC) LogoutUser(ctx context.Context, token string) (*model.AuthResponse, error) {
	return &model.AuthResponse{Success: true}, nil
}

func (r expiringRPC) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) (*model.AuthResponse, error) {
	return &model.AuthResponse{Success: true}, nil
}

func TestGuardsRedirectOnceSessionExpires(t *testing.T) {
	ctx := context.Background()
	rpc := expiringRPC{
		user:      &model.User{ID: "root", Role: model.RoleAdmin},
		expiresAt: time.Now().Add(time.Second),
	}
	auth := service.NewAuthService(rpc, service.NewSessionStore(repository.NewMemoryKVRepository()))
	_, err := auth.SignIn(ctx, service.SignInInput{Email: "root@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = auth.VerifySession(ctx)
	require.NoError(t, err)

	authRouter := newGuardedRouter(AuthGuard(auth))
	adminRouter := newGuardedRouter(AdminGuard(auth))
	assert.Equal(t, http.StatusOK, serve(authRouter).Code)

	assert.Eventually(t, func() bool {
		return serve(authRouter).Code == http.StatusFound
	}, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, util.LoginPath, serve(authRouter).Header().Get("Location"))
	assert.Equal(t, http.StatusFound, serve(adminRouter).Code)
	assert.Nil(t, auth.CurrentUser())
}
