package middleware

import (
	"context"
	"net/http"
	"stibap_portal/internal/model"
	"stibap_portal/internal/util"
	"stibap_portal/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ContextUserKey = "user"

// SessionState 由 service.AuthService 实现
type SessionState interface {
	Loading() bool
	CurrentUser() *model.User
}

// PreferencesLookup 由 service.OnboardingService 实现
type PreferencesLookup interface {
	Preferences(ctx context.Context, user *model.User) (*model.Preferences, error)
}

type DecisionKind int

const (
	Allow DecisionKind = iota
	Pending
	Redirect
)

type Decision struct {
	Kind     DecisionKind
	Location string
}

// AuthDecision 纯函数，可在每次导航时重复求值
func AuthDecision(loading bool, user *model.User) Decision {
	if loading {
		return Decision{Kind: Pending}
	}
	if user == nil {
		return Decision{Kind: Redirect, Location: util.LoginPath}
	}
	return Decision{Kind: Allow}
}

// OnboardingDecision 查询失败按未完成处理
func OnboardingDecision(ctx context.Context, loading bool, user *model.User, lookup PreferencesLookup) Decision {
	if d := AuthDecision(loading, user); d.Kind != Allow {
		return d
	}
	prefs, err := lookup.Preferences(ctx, user)
	if err != nil {
		logger.L().Warn("Preferences lookup failed, redirecting to onboarding",
			zap.String("user_id", user.ID), zap.Error(err))
		return Decision{Kind: Redirect, Location: util.OnboardingPath}
	}
	if prefs == nil || !prefs.OnboardingCompleted {
		return Decision{Kind: Redirect, Location: util.OnboardingPath}
	}
	return Decision{Kind: Allow}
}

func apply(c *gin.Context, d Decision, user *model.User) bool {
	switch d.Kind {
	case Pending:
		c.AbortWithStatusJSON(http.StatusAccepted, gin.H{"loading": true})
		return false
	case Redirect:
		util.Redirect(c, d.Location)
		return false
	}
	c.Set(ContextUserKey, user)
	return true
}

func AuthGuard(state SessionState) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := state.CurrentUser()
		if !apply(c, AuthDecision(state.Loading(), user), user) {
			return
		}
		c.Next()
	}
}

func OnboardingGuard(state SessionState, lookup PreferencesLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := state.CurrentUser()
		d := OnboardingDecision(c.Request.Context(), state.Loading(), user, lookup)
		if !apply(c, d, user) {
			return
		}
		c.Next()
	}
}

// AdminGuard 需要 admin 或 superadmin
func AdminGuard(state SessionState) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := state.CurrentUser()
		if !apply(c, AuthDecision(state.Loading(), user), user) {
			return
		}
		if !user.IsAdmin() {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser 读取守卫写入上下文的用户
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
