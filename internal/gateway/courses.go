package gateway

import (
	"context"
	"net/http"
	"net/url"
	"stibap_portal/internal/model"
	"strconv"
)

type HealthStatus struct {
	Status string `json:"status"`
}

func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	env, err := c.Request(ctx, "/health", RequestOptions{Endpoint: "/health"})
	if err != nil {
		return HealthStatus{}, err
	}
	return decodeRaw[HealthStatus](env)
}

func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	env, err := c.Request(ctx, "/api/categories", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeData[[]model.Category](env)
}

func (c *Client) MainCategories(ctx context.Context) ([]model.Category, error) {
	env, err := c.Request(ctx, "/api/categories/main", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeData[[]model.Category](env)
}

func (c *Client) Subcategories(ctx context.Context, categoryID string) ([]model.Category, error) {
	env, err := c.Request(ctx, "/api/categories/"+pathEscape(categoryID)+"/subcategories", RequestOptions{
		Endpoint: "/api/categories/{id}/subcategories",
	})
	if err != nil {
		return nil, err
	}
	return decodeData[[]model.Category](env)
}

func (c *Client) Difficulties(ctx context.Context) ([]model.Difficulty, error) {
	env, err := c.Request(ctx, "/api/difficulties", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeData[[]model.Difficulty](env)
}

// Courses categoryID 为空时返回全部课程
func (c *Client) Courses(ctx context.Context, categoryID string) ([]model.Course, error) {
	opts := RequestOptions{Endpoint: "/api/courses"}
	if categoryID != "" {
		opts.Query = url.Values{"category_id": {categoryID}}
	}
	env, err := c.Request(ctx, "/api/courses", opts)
	if err != nil {
		return nil, err
	}
	return decodeData[[]model.Course](env)
}

func (c *Client) Course(ctx context.Context, courseID string) (*model.Course, error) {
	env, err := c.Request(ctx, "/api/courses/"+pathEscape(courseID), RequestOptions{
		Endpoint: "/api/courses/{id}",
	})
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Course](env)
}

func (c *Client) SimilarCourses(ctx context.Context, courseID string, topK int) ([]model.ScoredCourse, error) {
	opts := RequestOptions{Endpoint: "/api/courses/{id}/similar"}
	if topK > 0 {
		opts.Query = url.Values{"top_k": {strconv.Itoa(topK)}}
	}
	env, err := c.Request(ctx, "/api/courses/"+pathEscape(courseID)+"/similar", opts)
	if err != nil {
		return nil, err
	}
	return decodeData[[]model.ScoredCourse](env)
}

func (c *Client) CourseOutline(ctx context.Context, courseID string) (*model.Outline, error) {
	env, err := c.Request(ctx, "/api/courses/"+pathEscape(courseID)+"/outline", RequestOptions{
		Endpoint: "/api/courses/{id}/outline",
	})
	if err != nil {
		return nil, err
	}
	outline, err := decodeData[*model.Outline](env)
	if err != nil {
		return nil, err
	}
	if outline == nil {
		outline = &model.Outline{}
	}
	outline.Sort()
	return outline, nil
}

func (c *Client) CourseProgress(ctx context.Context, courseID string) (*model.CourseProgress, error) {
	env, err := c.Request(ctx, "/api/courses/"+pathEscape(courseID)+"/progress", RequestOptions{
		Auth:     true,
		Endpoint: "/api/courses/{id}/progress",
	})
	if err != nil {
		return nil, err
	}
	progress, err := decodeData[*model.CourseProgress](env)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = &model.CourseProgress{}
	}
	return progress, nil
}

// CompleteUnit 服务端幂等，但调用方仍应避免对已完成单元重复提交
func (c *Client) CompleteUnit(ctx context.Context, courseID, unitID string) error {
	_, err := c.Request(ctx, "/api/courses/"+pathEscape(courseID)+"/units/"+pathEscape(unitID)+"/complete", RequestOptions{
		Method:   http.MethodPost,
		Auth:     true,
		Endpoint: "/api/courses/{id}/units/{unit_id}/complete",
	})
	return err
}

// PromptRecommendations 基于文本描述的语义推荐
func (c *Client) PromptRecommendations(ctx context.Context, req model.RecommendationRequest) (*model.RecommendationResponse, error) {
	env, err := c.Request(ctx, "/api/recommendations", RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	resp, err := decodeRaw[model.RecommendationResponse](env)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
