package service

import (
	"context"
	"errors"
	"stibap_portal/internal/gateway"
	"stibap_portal/internal/model"
	"stibap_portal/internal/repository"
	"stibap_portal/internal/util"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdmin(t *testing.T, role model.UserRole) (*AdminService, *fakeBackend) {
	t.Helper()
	rpc := newFakeRPC()
	rpc.login = &model.AuthResponse{Success: true, SessionToken: "tok", User: &model.User{ID: "admin", Role: role}}
	auth := NewAuthService(rpc, NewSessionStore(repository.NewMemoryKVRepository()))
	if role != "" {
		_, err := auth.SignIn(context.Background(), SignInInput{Email: "root@example.com", Password: "secret1"})
		require.NoError(t, err)
	}
	backend := newFakeBackend()
	return NewAdminService(backend, auth), backend
}

func TestAdminRequiresSession(t *testing.T) {
	svc, backend := newTestAdmin(t, "")
	_, err := svc.Users(context.Background())
	assert.True(t, errors.Is(err, gateway.ErrUnauthenticated))
	assert.Equal(t, 0, backend.count("AdminUsers"))
}

func TestAdminForbiddenForRegularUser(t *testing.T) {
	svc, backend := newTestAdmin(t, model.RoleUser)
	_, err := svc.Users(context.Background())
	assert.ErrorIs(t, err, util.ErrForbidden)
	assert.ErrorIs(t, svc.ReloadCourses(context.Background()), util.ErrForbidden)
	assert.Equal(t, 0, backend.count("AdminUsers"))
	assert.Equal(t, 0, backend.count("ReloadCourses"))
}

func TestAdminOperations(t *testing.T) {
	ctx := context.Background()
	svc, backend := newTestAdmin(t, model.RoleAdmin)
	backend.users = []model.User{{ID: "u1"}}

	users, err := svc.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	title := "Intro"
	course, err := svc.CreateCourse(ctx, model.CourseInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Intro", course.Title)

	_, err = svc.CreateCourse(ctx, model.CourseInput{})
	assert.Equal(t, gateway.KindValidation, gateway.KindOf(err))

	require.NoError(t, svc.DeleteCourse(ctx, "c1"))
	require.NoError(t, svc.ReloadCourses(ctx))

	_, err = svc.ImportBundle(ctx, "course.tar", strings.NewReader("x"), "")
	assert.Equal(t, gateway.KindValidation, gateway.KindOf(err))
	res, err := svc.ImportBundle(ctx, "course.ZIP", strings.NewReader("x"), "")
	require.NoError(t, err)
	assert.Equal(t, "slug", res.Slug)
}

func TestAdminCannotGrantSuperadmin(t *testing.T) {
	ctx := context.Background()
	svc, backend := newTestAdmin(t, model.RoleAdmin)
	role := model.RoleSuperAdmin

	err := svc.UpdateUser(ctx, "u1", model.AdminUserUpdate{Role: &role})
	assert.ErrorIs(t, err, util.ErrForbidden)
	assert.Equal(t, 0, backend.count("AdminUpdateUser"))

	super, backend2 := newTestAdmin(t, model.RoleSuperAdmin)
	require.NoError(t, super.UpdateUser(ctx, "u1", model.AdminUserUpdate{Role: &role}))
	assert.Equal(t, 1, backend2.count("AdminUpdateUser"))
}
