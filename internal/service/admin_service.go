package service

import (
	"context"
	"io"
	"path/filepath"
	"stibap_portal/internal/gateway"
	"stibap_portal/internal/model"
	"stibap_portal/internal/util"
	"stibap_portal/pkg/logger"
	"strings"

	"go.uber.org/zap"
)

type AdminGateway interface {
	AdminUsers(ctx context.Context) ([]model.User, error)
	AdminUpdateUser(ctx context.Context, userID string, update model.AdminUserUpdate) error
	AdminCourses(ctx context.Context) ([]model.Course, error)
	AdminCreateCourse(ctx context.Context, input model.CourseInput) (*model.Course, error)
	AdminUpdateCourse(ctx context.Context, courseID string, input model.CourseInput) (*model.Course, error)
	AdminDeleteCourse(ctx context.Context, courseID string) error
	ImportCourseBundle(ctx context.Context, filename string, r io.Reader, courseID string) (*model.ImportResult, error)
	ReloadCourses(ctx context.Context) error
}

// AdminService 角色在本地先行检查，无权限时不发请求
type AdminService struct {
	Gateway AdminGateway
	Auth    *AuthService
}

func NewAdminService(gw AdminGateway, auth *AuthService) *AdminService {
	return &AdminService{Gateway: gw, Auth: auth}
}

func (s *AdminService) authorize() (*model.User, error) {
	user := s.Auth.CurrentUser()
	if user == nil {
		return nil, gateway.NotAuthenticated()
	}
	if !user.IsAdmin() {
		return nil, util.ErrForbidden
	}
	return user, nil
}

func (s *AdminService) Users(ctx context.Context) ([]model.User, error) {
	if _, err := s.authorize(); err != nil {
		return nil, err
	}
	return s.Gateway.AdminUsers(ctx)
}

func (s *AdminService) UpdateUser(ctx context.Context, userID string, update model.AdminUserUpdate) error {
	admin, err := s.authorize()
	if err != nil {
		return err
	}
	if err := util.ValidateStruct(update); err != nil {
		return gateway.ValidationError(err.Error())
	}
	// 普通管理员不能授予超级管理员
	if update.Role != nil && *update.Role == model.RoleSuperAdmin && admin.Role != model.RoleSuperAdmin {
		return util.ErrForbidden
	}
	if err := s.Gateway.AdminUpdateUser(ctx, userID, update); err != nil {
		return err
	}
	logger.L().Info("Admin updated user", zap.String("admin_id", admin.ID), zap.String("user_id", userID))
	return nil
}

func (s *AdminService) Courses(ctx context.Context) ([]model.Course, error) {
	if _, err := s.authorize(); err != nil {
		return nil, err
	}
	return s.Gateway.AdminCourses(ctx)
}

func (s *AdminService) CreateCourse(ctx context.Context, input model.CourseInput) (*model.Course, error) {
	if _, err := s.authorize(); err != nil {
		return nil, err
	}
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, gateway.ValidationError("title is required")
	}
	if err := util.ValidateStruct(input); err != nil {
		return nil, gateway.ValidationError(err.Error())
	}
	return s.Gateway.AdminCreateCourse(ctx, input)
}

func (s *AdminService) UpdateCourse(ctx context.Context, courseID string, input model.CourseInput) (*model.Course, error) {
	if _, err := s.authorize(); err != nil {
		return nil, err
	}
	if err := util.ValidateStruct(input); err != nil {
		return nil, gateway.ValidationError(err.Error())
	}
	return s.Gateway.AdminUpdateCourse(ctx, courseID, input)
}

func (s *AdminService) DeleteCourse(ctx context.Context, courseID string) error {
	admin, err := s.authorize()
	if err != nil {
		return err
	}
	if err := s.Gateway.AdminDeleteCourse(ctx, courseID); err != nil {
		return err
	}
	logger.L().Info("Admin deleted course", zap.String("admin_id", admin.ID), zap.String("course_id", courseID))
	return nil
}

// ImportBundle 只接受 zip 课程包
func (s *AdminService) ImportBundle(ctx context.Context, filename string, r io.Reader, courseID string) (*model.ImportResult, error) {
	if _, err := s.authorize(); err != nil {
		return nil, err
	}
	if !strings.EqualFold(filepath.Ext(filename), ".zip") {
		return nil, gateway.ValidationError("course bundle must be a .zip file")
	}
	return s.Gateway.ImportCourseBundle(ctx, filename, r, courseID)
}

func (s *AdminService) ReloadCourses(ctx context.Context) error {
	if _, err := s.authorize(); err != nil {
		return err
	}
	return s.Gateway.ReloadCourses(ctx)
}
