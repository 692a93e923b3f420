package service

import (
	"context"
	"stibap_portal/internal/gateway"
	"stibap_portal/internal/model"
	"stibap_portal/internal/util"
)

type ProgressGateway interface {
	UserProgress(ctx context.Context, userID string) ([]model.UserCourseProgress, error)
	UpdateCourseProgress(ctx context.Context, userID string, update model.ProgressUpdate) error
}

type ProgressService struct {
	Gateway ProgressGateway
}

func NewProgressService(gw ProgressGateway) *ProgressService {
	return &ProgressService{Gateway: gw}
}

func (s *ProgressService) List(ctx context.Context, user *model.User) ([]model.UserCourseProgress, error) {
	if user == nil {
		return nil, gateway.NotAuthenticated()
	}
	list, err := s.Gateway.UserProgress(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].ProgressPercentage = model.ClampPercentage(list[i].ProgressPercentage)
	}
	return list, nil
}

func (s *ProgressService) Update(ctx context.Context, user *model.User, update model.ProgressUpdate) error {
	if user == nil {
		return gateway.NotAuthenticated()
	}
	if err := util.ValidateStruct(update); err != nil {
		return gateway.ValidationError(err.Error())
	}
	return s.Gateway.UpdateCourseProgress(ctx, user.ID, update)
}
