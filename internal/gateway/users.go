package gateway

import (
	"context"
	"net/http"
	"net/url"
	"stibap_portal/internal/model"
	"strconv"
)

func userPath(userID, suffix string) string {
	return "/api/users/" + pathEscape(userID) + suffix
}

// Preferences 用户尚未填写偏好时返回 nil
func (c *Client) Preferences(ctx context.Context, userID string) (*model.Preferences, error) {
	env, err := c.Request(ctx, userPath(userID, "/preferences"), RequestOptions{
		Endpoint: "/api/users/{id}/preferences",
	})
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Preferences](env)
}

func (c *Client) CreatePreferences(ctx context.Context, userID string, prefs model.Preferences) (*model.Preferences, error) {
	env, err := c.Request(ctx, userPath(userID, "/preferences"), RequestOptions{
		Method:   http.MethodPost,
		Body:     prefs,
		Auth:     true,
		Endpoint: "/api/users/{id}/preferences",
	})
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Preferences](env)
}

func (c *Client) UpdatePreferences(ctx context.Context, userID string, update model.PreferencesUpdate) (*model.Preferences, error) {
	env, err := c.Request(ctx, userPath(userID, "/preferences"), RequestOptions{
		Method:   http.MethodPut,
		Body:     update,
		Auth:     true,
		Endpoint: "/api/users/{id}/preferences",
	})
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Preferences](env)
}

type onboardingRequest struct {
	UserID      string            `json:"user_id"`
	Preferences model.Preferences `json:"preferences"`
}

// CompleteOnboarding 提交偏好并标记引导完成，返回首批推荐
func (c *Client) CompleteOnboarding(ctx context.Context, userID string, prefs model.Preferences) (*model.OnboardingResult, error) {
	env, err := c.Request(ctx, userPath(userID, "/complete-onboarding"), RequestOptions{
		Method:   http.MethodPost,
		Body:     onboardingRequest{UserID: userID, Preferences: prefs},
		Auth:     true,
		Endpoint: "/api/users/{id}/complete-onboarding",
	})
	if err != nil {
		return nil, err
	}
	result, err := decodeRaw[model.OnboardingResult](env)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) UserProgress(ctx context.Context, userID string) ([]model.UserCourseProgress, error) {
	env, err := c.Request(ctx, userPath(userID, "/progress"), RequestOptions{
		Auth:     true,
		Endpoint: "/api/users/{id}/progress",
	})
	if err != nil {
		return nil, err
	}
	return decodeData[[]model.UserCourseProgress](env)
}

func (c *Client) UpdateCourseProgress(ctx context.Context, userID string, update model.ProgressUpdate) error {
	_, err := c.Request(ctx, userPath(userID, "/progress"), RequestOptions{
		Method:   http.MethodPost,
		Body:     update,
		Auth:     true,
		Endpoint: "/api/users/{id}/progress",
	})
	return err
}

// UserRecommendations 服务端基于偏好生成的推荐
func (c *Client) UserRecommendations(ctx context.Context, userID string, topK int) ([]model.ScoredCourse, error) {
	opts := RequestOptions{Endpoint: "/api/users/{id}/recommendations"}
	if topK > 0 {
		opts.Query = url.Values{"top_k": {strconv.Itoa(topK)}}
	}
	env, err := c.Request(ctx, userPath(userID, "/recommendations"), opts)
	if err != nil {
		return nil, err
	}
	return decodeData[[]model.ScoredCourse](env)
}
