package gateway

import (
	"context"
	"net/http"
	"net/url"
	"stibap_portal/internal/model"
	"strconv"
)

func (c *Client) QuizQuestions(ctx context.Context, subject string, count int) ([]model.QuizQuestion, error) {
	q := url.Values{}
	if subject != "" {
		q.Set("subject", subject)
	}
	if count > 0 {
		q.Set("count", strconv.Itoa(count))
	}
	env, err := c.Request(ctx, "/api/qcm/questions", RequestOptions{Query: q})
	if err != nil {
		return nil, err
	}
	return decodeData[[]model.QuizQuestion](env)
}

// SubmitQuiz answers 以题目ID为键、选项下标为值
func (c *Client) SubmitQuiz(ctx context.Context, answers map[string]int) (*model.QuizResult, error) {
	env, err := c.Request(ctx, "/api/qcm/submit", RequestOptions{
		Method: http.MethodPost,
		Body:   answers,
	})
	if err != nil {
		return nil, err
	}
	result, err := decodeData[*model.QuizResult](env)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, applicationError("/api/qcm/submit", env.Status, "empty quiz result")
	}
	return result, nil
}

func (c *Client) PredictPerformance(ctx context.Context, profile model.StudentProfile) (*model.Prediction, error) {
	env, err := c.Request(ctx, "/api/performance/predict", RequestOptions{
		Method: http.MethodPost,
		Body:   profile,
	})
	if err != nil {
		return nil, err
	}
	pred, err := decodeRaw[model.Prediction](env)
	if err != nil {
		return nil, err
	}
	if pred.Error != "" {
		return nil, applicationError("/api/performance/predict", env.Status, pred.Error)
	}
	return &pred, nil
}
