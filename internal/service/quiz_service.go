package service

import (
	"context"
	"fmt"
	"stibap_portal/internal/gateway"
	"stibap_portal/internal/model"
	"stibap_portal/internal/util"
	"stibap_portal/pkg/logger"
	"strconv"

	"go.uber.org/zap"
)

type QuizGateway interface {
	QuizQuestions(ctx context.Context, subject string, count int) ([]model.QuizQuestion, error)
	SubmitQuiz(ctx context.Context, answers map[string]int) (*model.QuizResult, error)
	PromptRecommendations(ctx context.Context, req model.RecommendationRequest) (*model.RecommendationResponse, error)
	PredictPerformance(ctx context.Context, profile model.StudentProfile) (*model.Prediction, error)
}

type QuizSubmission struct {
	Subject string `json:"subject"`
	// QuestionIDs 本次作答的题目，用于检查是否全部作答
	QuestionIDs []int          `json:"question_ids"`
	Answers     map[string]int `json:"answers"`
}

type QuizOutcome struct {
	Result              model.QuizResult  `json:"result"`
	Attempt             model.QuizAttempt `json:"attempt"`
	Recommendations     []model.Course    `json:"recommendations"`
	RecommendationError string            `json:"recommendation_error,omitempty"`
}

type QuizService struct {
	Gateway QuizGateway
	Store   *LocalStoreService
	TopK    int
}

func NewQuizService(gw QuizGateway, store *LocalStoreService, topK int) *QuizService {
	if topK <= 0 {
		topK = util.RecommendationListCap
	}
	return &QuizService{Gateway: gw, Store: store, TopK: topK}
}

func (s *QuizService) Questions(ctx context.Context, subject string, count int) ([]model.QuizQuestion, error) {
	if count <= 0 {
		count = util.DefaultQuizCount
	}
	return s.Gateway.QuizQuestions(ctx, subject, count)
}

func checkAnswered(sub QuizSubmission) error {
	if len(sub.Answers) == 0 {
		return gateway.ValidationError(util.ErrUnansweredQuestions.Error())
	}
	for _, id := range sub.QuestionIDs {
		if _, ok := sub.Answers[strconv.Itoa(id)]; !ok {
			return gateway.ValidationError(util.ErrUnansweredQuestions.Error())
		}
	}
	return nil
}

// Submit 提交答案并记录成绩；推荐失败不影响提交结果
func (s *QuizService) Submit(ctx context.Context, user *model.User, sub QuizSubmission) (*QuizOutcome, error) {
	if err := checkAnswered(sub); err != nil {
		return nil, err
	}
	subject := sub.Subject
	if subject == "" {
		subject = util.DefaultQuizSubject
	}

	result, err := s.Gateway.SubmitQuiz(ctx, sub.Answers)
	if err != nil {
		return nil, err
	}

	outcome := &QuizOutcome{Result: *result, Recommendations: []model.Course{}}
	attempt, err := s.Store.StoreQuizResult(ctx, *result, subject)
	if err != nil {
		logger.L().Warn("Failed to store quiz result", zap.String("subject", subject), zap.Error(err))
	}
	outcome.Attempt = attempt

	if user == nil {
		return outcome, nil
	}

	courses, err := s.recommend(ctx, user, subject, result.Grade20)
	if err != nil {
		logger.L().Warn("Quiz recommendations unavailable", zap.String("user_id", user.ID), zap.Error(err))
		outcome.RecommendationError = gateway.AsError(err).Message
		return outcome, nil
	}
	outcome.Recommendations = courses
	return outcome, nil
}

func quizPrompt(subject string, grade float64) string {
	level := "strengthen the fundamentals"
	switch {
	case grade >= 15:
		level = "go further with advanced material"
	case grade >= 10:
		level = "consolidate what I already know"
	}
	return fmt.Sprintf("I scored %.1f/20 on a %s diagnostic quiz and want courses in %s to %s.", grade, subject, subject, level)
}

func (s *QuizService) recommend(ctx context.Context, user *model.User, subject string, grade float64) ([]model.Course, error) {
	req := model.RecommendationRequest{
		Prompt: quizPrompt(subject, grade),
		UserID: user.ID,
		TopK:   s.TopK,
	}
	if err := util.ValidateStruct(req); err != nil {
		return nil, gateway.ValidationError(err.Error())
	}

	resp, err := s.Gateway.PromptRecommendations(ctx, req)
	if err != nil {
		return nil, err
	}
	courses := make([]model.Course, 0, len(resp.Recommendations))
	for _, r := range resp.Recommendations {
		courses = append(courses, r.ToCourse())
	}
	if err := s.Store.UpdateQuizRecommendations(ctx, courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Predict 以最近一次测验成绩作为 qcm_score
func (s *QuizService) Predict(ctx context.Context, profile model.StudentProfile) (*model.Prediction, error) {
	latest, ok := s.Store.LatestQuiz(ctx)
	if !ok {
		return nil, gateway.ValidationError(util.ErrNoQuizResult.Error())
	}
	grade, ok := latest.Grade()
	if !ok {
		return nil, gateway.ValidationError(util.ErrNoQuizResult.Error())
	}
	profile.QcmScore = grade
	if profile.Subject == "" {
		profile.Subject = latest.Subject
	}
	if err := util.ValidateStruct(profile); err != nil {
		return nil, gateway.ValidationError(err.Error())
	}
	return s.Gateway.PredictPerformance(ctx, profile)
}
