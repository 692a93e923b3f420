package service

import (
	"context"
	"stibap_portal/internal/gateway"
	"stibap_portal/internal/model"
	"stibap_portal/internal/util"
	"stibap_portal/pkg/logger"

	"go.uber.org/zap"
)

type OnboardingGateway interface {
	Preferences(ctx context.Context, userID string) (*model.Preferences, error)
	CreatePreferences(ctx context.Context, userID string, prefs model.Preferences) (*model.Preferences, error)
	UpdatePreferences(ctx context.Context, userID string, update model.PreferencesUpdate) (*model.Preferences, error)
	CompleteOnboarding(ctx context.Context, userID string, prefs model.Preferences) (*model.OnboardingResult, error)
}

type OnboardingService struct {
	Gateway OnboardingGateway
}

func NewOnboardingService(gw OnboardingGateway) *OnboardingService {
	return &OnboardingService{Gateway: gw}
}

// Preferences 尚未填写时返回 nil, nil
func (s *OnboardingService) Preferences(ctx context.Context, user *model.User) (*model.Preferences, error) {
	if user == nil {
		return nil, gateway.NotAuthenticated()
	}
	return s.Gateway.Preferences(ctx, user.ID)
}

type OnboardingStatus struct {
	Completed   bool               `json:"completed"`
	Preferences *model.Preferences `json:"preferences,omitempty"`
}

func (s *OnboardingService) Status(ctx context.Context, user *model.User) (*OnboardingStatus, error) {
	prefs, err := s.Preferences(ctx, user)
	if err != nil {
		return nil, err
	}
	return &OnboardingStatus{
		Completed:   prefs != nil && prefs.OnboardingCompleted,
		Preferences: prefs,
	}, nil
}

func (s *OnboardingService) CreatePreferences(ctx context.Context, user *model.User, prefs model.Preferences) (*model.Preferences, error) {
	if user == nil {
		return nil, gateway.NotAuthenticated()
	}
	if err := util.ValidateStruct(prefs); err != nil {
		return nil, gateway.ValidationError(err.Error())
	}
	prefs.UserID = user.ID
	return s.Gateway.CreatePreferences(ctx, user.ID, prefs)
}

func (s *OnboardingService) UpdatePreferences(ctx context.Context, user *model.User, update model.PreferencesUpdate) (*model.Preferences, error) {
	if user == nil {
		return nil, gateway.NotAuthenticated()
	}
	if update.LearningGoals != nil && *update.LearningGoals == "" {
		return nil, gateway.ValidationError("learning_goals is required")
	}
	return s.Gateway.UpdatePreferences(ctx, user.ID, update)
}

// Complete 服务端保存偏好并返回初始推荐
func (s *OnboardingService) Complete(ctx context.Context, user *model.User, prefs model.Preferences) (*model.OnboardingResult, error) {
	if user == nil {
		return nil, gateway.NotAuthenticated()
	}
	if err := util.ValidateStruct(prefs); err != nil {
		return nil, gateway.ValidationError(err.Error())
	}
	prefs.UserID = user.ID

	result, err := s.Gateway.CompleteOnboarding(ctx, user.ID, prefs)
	if err != nil {
		return nil, err
	}

	logger.L().Info("Onboarding completed",
		zap.String("user_id", user.ID),
		zap.Int("recommendations", len(result.Recommendations)),
	)
	return result, nil
}
