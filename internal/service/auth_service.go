package service

import (
	"context"
	"stibap_portal/internal/gateway"
	"stibap_portal/internal/model"
	"stibap_portal/internal/util"
	"stibap_portal/pkg/logger"
	"sync"

	"go.uber.org/zap"
)

// AuthRPC 外部认证函数，由 gateway.AuthRPC 实现
type AuthRPC interface {
	RegisterUser(ctx context.Context, email, password, fullName string) (*model.AuthResponse, error)
	LoginUser(ctx context.Context, email, password, ipAddress, userAgent string) (*model.AuthResponse, error)
	VerifySession(ctx context.Context, token string) (*model.AuthResponse, error)
	LogoutUser(ctx context.Context, token string) (*model.AuthResponse, error)
	ChangePassword(ctx context.Context, token, oldPassword, newPassword string) (*model.AuthResponse, error)
}

type SignUpInput struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
	FullName        string `json:"full_name"`
}

type SignInInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type PasswordChangeInput struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=NewPassword"`
}

type AuthService struct {
	RPC      AuthRPC
	Sessions *SessionStore

	mu      sync.RWMutex
	user    *model.User
	loading bool
}

func NewAuthService(rpc AuthRPC, sessions *SessionStore) *AuthService {
	return &AuthService{
		RPC:      rpc,
		Sessions: sessions,
		loading:  true,
	}
}

// Loading 仅在首次会话校验完成前为 true
func (s *AuthService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// CurrentUser 会话槽为空或已过期时同步清除缓存的用户
func (s *AuthService) CurrentUser() *model.User {
	if s.Sessions.Token() == "" {
		s.setUser(nil)
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *AuthService) setUser(user *model.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// SignUp 只注册，不建立会话
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*model.AuthResponse, error) {
	if err := util.ValidateStruct(in); err != nil {
		return nil, gateway.ValidationError(err.Error())
	}
	return s.RPC.RegisterUser(ctx, in.Email, in.Password, in.FullName)
}

// SignIn 失败时不改变任何状态
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (*model.User, error) {
	if err := util.ValidateStruct(in); err != nil {
		return nil, gateway.ValidationError(err.Error())
	}

	resp, err := s.RPC.LoginUser(ctx, in.Email, in.Password, in.IPAddress, in.UserAgent)
	if err != nil {
		return nil, err
	}
	if resp.SessionToken == "" {
		return nil, &gateway.Error{Kind: gateway.KindApplication, Message: "login response carried no session token"}
	}

	session := model.Session{Token: resp.SessionToken, User: resp.User}
	if resp.ExpiresAt != nil {
		session.ExpiresAt = *resp.ExpiresAt
	}
	if err := s.Sessions.Set(ctx, session); err != nil {
		return nil, err
	}
	s.setUser(resp.User)

	// 服务端给出的过期时间已过
	if s.Sessions.Token() == "" {
		s.setUser(nil)
		return nil, gateway.NotAuthenticated()
	}
	logger.L().Info("User signed in", zap.String("email", in.Email))
	return s.CurrentUser(), nil
}

// SignOut 远端登出失败也会清除本地会话
func (s *AuthService) SignOut(ctx context.Context) error {
	if token := s.Sessions.Token(); token != "" {
		if _, err := s.RPC.LogoutUser(ctx, token); err != nil {
			logger.L().Warn("Remote logout failed, clearing local session anyway", zap.Error(err))
		}
	}
	s.setUser(nil)
	return s.Sessions.Clear(ctx)
}

// VerifySession 可重复调用；任何失败都清除会话
func (s *AuthService) VerifySession(ctx context.Context) (*model.User, error) {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	token := s.Sessions.Token()
	if token == "" {
		s.setUser(nil)
		return nil, nil
	}

	resp, err := s.RPC.VerifySession(ctx, token)
	if err != nil {
		logger.L().Info("Session verification failed, signing out locally", zap.Error(err))
		s.setUser(nil)
		if clearErr := s.Sessions.Clear(ctx); clearErr != nil {
			logger.L().Warn("Failed to clear session", zap.Error(clearErr))
		}
		return nil, err
	}

	user := resp.User
	if user == nil {
		user = s.Sessions.User()
	} else if err := s.Sessions.UpdateUser(ctx, user); err != nil {
		logger.L().Warn("Failed to refresh cached user", zap.Error(err))
	}
	s.setUser(user)
	return s.CurrentUser(), nil
}

func (s *AuthService) RefreshSession(ctx context.Context) (*model.User, error) {
	return s.VerifySession(ctx)
}

// UpdatePassword 不轮换令牌
func (s *AuthService) UpdatePassword(ctx context.Context, in PasswordChangeInput) error {
	token := s.Sessions.Token()
	if token == "" {
		return gateway.NotAuthenticated()
	}
	if err := util.ValidateStruct(in); err != nil {
		return gateway.ValidationError(err.Error())
	}
	_, err := s.RPC.ChangePassword(ctx, token, in.OldPassword, in.NewPassword)
	return err
}
