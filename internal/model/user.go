package model

import (
	"time"
)

type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "superadmin"
)

// User 服务端用户记录在客户端的快照
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      UserRole   `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	Bio       string     `json:"bio,omitempty"`
	AvatarURL string     `json:"avatar_url,omitempty"`
}

// IsAdmin admin 与 superadmin 都可以进入管理后台
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// AdminUserUpdate 管理员修改用户时的部分更新
type AdminUserUpdate struct {
	FullName *string   `json:"full_name,omitempty"`
	Role     *UserRole `json:"role,omitempty" validate:"omitempty,oneof=user admin superadmin"`
	IsActive *bool     `json:"is_active,omitempty"`
}
