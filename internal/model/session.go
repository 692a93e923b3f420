package model

import "time"

type Session struct {
	Token     string    `json:"token"`
	User      *User     `json:"user"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired 没有过期时间的会话视为长期有效，由服务端校验兜底
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.Token == "" {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// AuthResponse 认证RPC的统一返回体
type AuthResponse struct {
	Success      bool       `json:"success"`
	SessionToken string     `json:"session_token,omitempty"`
	User         *User      `json:"user,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Error        string     `json:"error,omitempty"`
	Message      string     `json:"message,omitempty"`
}
