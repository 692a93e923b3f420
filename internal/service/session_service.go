package service

import (
	"context"
	"encoding/json"
	"stibap_portal/internal/model"
	"stibap_portal/internal/repository"
	"stibap_portal/internal/util"
	"stibap_portal/pkg/logger"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionStore 单槽会话，内存副本与KV存储同步写入
type SessionStore struct {
	Repo repository.KVRepository

	mu      sync.RWMutex
	session *model.Session
	now     func() time.Time
}

func NewSessionStore(repo repository.KVRepository) *SessionStore {
	return &SessionStore{Repo: repo, now: time.Now}
}

// Load 进程启动时恢复上次的会话
func (s *SessionStore) Load(ctx context.Context) error {
	token, ok, err := s.Repo.Get(ctx, util.KeySessionToken)
	if err != nil {
		return err
	}
	if !ok || token == "" {
		s.mu.Lock()
		s.session = nil
		s.mu.Unlock()
		return nil
	}

	session := &model.Session{Token: token}
	if raw, ok, err := s.Repo.Get(ctx, util.KeyUserData); err == nil && ok && raw != "" {
		var user model.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			logger.L().Warn("Discarding corrupt cached user", zap.Error(err))
		} else {
			session.User = &user
		}
	}
	if raw, ok, err := s.Repo.Get(ctx, util.KeySessionExpiry); err == nil && ok && raw != "" {
		if exp, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			session.ExpiresAt = exp
		}
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	return nil
}

// Set 覆盖当前会话；未提供过期时间时尝试读取JWT的exp
func (s *SessionStore) Set(ctx context.Context, session model.Session) error {
	if session.Token == "" {
		return util.ErrNoSession
	}
	if session.ExpiresAt.IsZero() {
		if exp, ok := util.TokenExpiry(session.Token); ok {
			session.ExpiresAt = exp
		}
	}

	values := map[string]string{util.KeySessionToken: session.Token}
	if session.User != nil {
		data, err := json.Marshal(session.User)
		if err != nil {
			return err
		}
		values[util.KeyUserData] = string(data)
	}
	if !session.ExpiresAt.IsZero() {
		values[util.KeySessionExpiry] = session.ExpiresAt.UTC().Format(time.RFC3339Nano)
	}
	if err := s.persist(ctx, values); err != nil {
		return err
	}

	s.mu.Lock()
	s.session = &session
	s.mu.Unlock()
	return nil
}

// persist 令牌最后写入；任一步失败都恢复写入前的三个键
func (s *SessionStore) persist(ctx context.Context, values map[string]string) error {
	keys := []string{util.KeyUserData, util.KeySessionExpiry, util.KeySessionToken}

	type previous struct {
		value string
		ok    bool
	}
	prev := make(map[string]previous, len(keys))
	for _, key := range keys {
		value, ok, err := s.Repo.Get(ctx, key)
		if err != nil {
			return err
		}
		prev[key] = previous{value: value, ok: ok}
	}

	var touched []string
	for _, key := range keys {
		touched = append(touched, key)
		var err error
		if value, ok := values[key]; ok {
			err = s.Repo.Set(ctx, key, value)
		} else {
			err = s.Repo.Delete(ctx, key)
		}
		if err == nil {
			continue
		}

		for _, k := range touched {
			var restoreErr error
			if p := prev[k]; p.ok {
				restoreErr = s.Repo.Set(ctx, k, p.value)
			} else {
				restoreErr = s.Repo.Delete(ctx, k)
			}
			if restoreErr != nil {
				logger.L().Warn("Failed to restore session key", zap.String("key", k), zap.Error(restoreErr))
			}
		}
		return err
	}
	return nil
}

// UpdateUser 刷新缓存的用户信息，令牌不变
func (s *SessionStore) UpdateUser(ctx context.Context, user *model.User) error {
	current := s.Current()
	if current == nil {
		return util.ErrNoSession
	}
	current.User = user
	return s.Set(ctx, *current)
}

func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	var firstErr error
	for _, key := range []string{util.KeySessionToken, util.KeyUserData, util.KeySessionExpiry} {
		if err := s.Repo.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Current 返回会话副本；不存在或已过期时为 nil
func (s *SessionStore) Current() *model.Session {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()
	if session == nil || session.Expired(s.now()) {
		return nil
	}
	cp := *session
	if session.User != nil {
		u := *session.User
		cp.User = &u
	}
	return &cp
}

// Token 供网关附加 Bearer 头；过期会话在此处被清除
func (s *SessionStore) Token() string {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()
	if session == nil {
		return ""
	}
	if session.Expired(s.now()) {
		logger.L().Info("Session expired, clearing local slot")
		if err := s.Clear(context.Background()); err != nil {
			logger.L().Warn("Failed to clear expired session", zap.Error(err))
		}
		return ""
	}
	return session.Token
}

func (s *SessionStore) User() *model.User {
	if session := s.Current(); session != nil {
		return session.User
	}
	return nil
}
