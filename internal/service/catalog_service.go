package service

import (
	"context"
	"sort"
	"stibap_portal/internal/model"
)

type CatalogGateway interface {
	Categories(ctx context.Context) ([]model.Category, error)
	MainCategories(ctx context.Context) ([]model.Category, error)
	Subcategories(ctx context.Context, categoryID string) ([]model.Category, error)
	Difficulties(ctx context.Context) ([]model.Difficulty, error)
	Courses(ctx context.Context, categoryID string) ([]model.Course, error)
	Course(ctx context.Context, courseID string) (*model.Course, error)
	SimilarCourses(ctx context.Context, courseID string, topK int) ([]model.ScoredCourse, error)
}

type CatalogService struct {
	Gateway CatalogGateway
}

func NewCatalogService(gw CatalogGateway) *CatalogService {
	return &CatalogService{Gateway: gw}
}

// Categories mainOnly 时只返回顶级分类
func (s *CatalogService) Categories(ctx context.Context, mainOnly bool) ([]model.Category, error) {
	if mainOnly {
		return s.Gateway.MainCategories(ctx)
	}
	return s.Gateway.Categories(ctx)
}

func (s *CatalogService) Subcategories(ctx context.Context, categoryID string) ([]model.Category, error) {
	return s.Gateway.Subcategories(ctx, categoryID)
}

// Difficulties 按等级升序
func (s *CatalogService) Difficulties(ctx context.Context) ([]model.Difficulty, error) {
	list, err := s.Gateway.Difficulties(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Level < list[j].Level })
	return list, nil
}

func (s *CatalogService) Courses(ctx context.Context, categoryID string) ([]model.Course, error) {
	return s.Gateway.Courses(ctx, categoryID)
}

type CourseDetail struct {
	Course  *model.Course        `json:"course"`
	Similar []model.ScoredCourse `json:"similar,omitempty"`
}

// Course 相似课程取不到时只返回课程本身
func (s *CatalogService) Course(ctx context.Context, courseID string, similarTopK int) (*CourseDetail, error) {
	course, err := s.Gateway.Course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	detail := &CourseDetail{Course: course}
	if similarTopK > 0 {
		if similar, err := s.Gateway.SimilarCourses(ctx, courseID, similarTopK); err == nil {
			detail.Similar = similar
		}
	}
	return detail, nil
}
