package service

import (
	"context"
	"math"
	"stibap_portal/internal/model"
	"stibap_portal/internal/util"
	"stibap_portal/pkg/logger"
	"sync"

	"go.uber.org/zap"
)

// RecommendationGateway 仪表盘依赖的后端读取
type RecommendationGateway interface {
	UserRecommendations(ctx context.Context, userID string, topK int) ([]model.ScoredCourse, error)
	UserProgress(ctx context.Context, userID string) ([]model.UserCourseProgress, error)
}

type DashboardMetrics struct {
	AverageQuizScore  *float64 `json:"average_quiz_score"`
	LatestQuizSubject string   `json:"latest_quiz_subject,omitempty"`
	InProgressCourses int      `json:"in_progress_courses"`
	StudyHours        float64  `json:"study_hours"`
}

type Dashboard struct {
	User            *model.User                `json:"user"`
	Recommendations []model.Recommendation     `json:"recommendations"`
	Progress        []model.UserCourseProgress `json:"progress"`
	Metrics         DashboardMetrics           `json:"metrics"`
	// Warnings 非致命的加载失败，仪表盘仍然返回
	Warnings []string `json:"warnings,omitempty"`
}

type RecommendationService struct {
	Store   *LocalStoreService
	Gateway RecommendationGateway
	TopK    int

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

func NewRecommendationService(store *LocalStoreService, gw RecommendationGateway, topK int) *RecommendationService {
	if topK <= 0 {
		topK = util.RecommendationListCap
	}
	return &RecommendationService{
		Store:   store,
		Gateway: gw,
		TopK:    topK,
	}
}

// Subscribe 本地列表任一变更都会通知
func (s *RecommendationService) Subscribe(fn func(StoreEvent)) func() {
	return s.Store.Subscribe(fn)
}

// Merge 测验推荐优先，其次浏览记录，按课程ID去重；本地为空时才使用AI推荐
func Merge(quiz, interactions []model.Course, ai []model.ScoredCourse) []model.Recommendation {
	seen := make(map[string]struct{}, len(quiz)+len(interactions))
	out := make([]model.Recommendation, 0, len(quiz)+len(interactions))

	push := func(rec model.Recommendation) {
		if rec.Course.ID == "" {
			return
		}
		if _, ok := seen[rec.Course.ID]; ok {
			return
		}
		seen[rec.Course.ID] = struct{}{}
		out = append(out, rec)
	}
	for _, c := range quiz {
		push(model.Recommendation{Course: c, Source: model.SourceQuiz})
	}
	for _, c := range interactions {
		push(model.Recommendation{Course: c, Source: model.SourceCourseInteraction})
	}

	if len(out) > 0 {
		return out
	}

	for _, sc := range ai {
		push(model.Recommendation{
			Course:          sc.Course,
			ConfidenceScore: sc.ConfidenceScore,
			Source:          model.SourceAI,
		})
	}
	return out
}

// AverageQuizScore 0-20 分制；分母为全部记录数，没有记录时返回 false
func AverageQuizScore(history []model.QuizAttempt) (float64, bool) {
	if len(history) == 0 {
		return 0, false
	}
	var sum float64
	for _, a := range history {
		if g, ok := a.Grade(); ok {
			sum += g
		}
	}
	return sum / float64(len(history)), true
}

func LatestQuizSubject(history []model.QuizAttempt) string {
	if len(history) == 0 {
		return ""
	}
	return history[0].Subject
}

func InProgressCount(progress []model.UserCourseProgress) int {
	n := 0
	for _, p := range progress {
		switch p.Status {
		case model.StatusInProgress:
			n++
		case "":
			if p.ProgressPercentage > 0 && p.ProgressPercentage < 100 {
				n++
			}
		}
	}
	return n
}

// StudyHours 按完成比例折算课程时长，保留一位小数
func StudyHours(progress []model.UserCourseProgress) float64 {
	var minutes float64
	for _, p := range progress {
		if p.Course == nil {
			continue
		}
		minutes += float64(p.Course.DurationMinutes) * model.ClampPercentage(p.ProgressPercentage) / 100
	}
	return roundOne(minutes / 60)
}

func roundOne(v float64) float64 {
	return math.Round(v*10) / 10
}

// begin 开启新一代请求并取消上一代
func (s *RecommendationService) begin(ctx context.Context) (context.Context, uint64, context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.generation++
	s.cancel = cancel
	return ctx, s.generation, cancel
}

func (s *RecommendationService) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

// Dashboard 被更新的调用取代时返回 ErrStaleResult
func (s *RecommendationService) Dashboard(ctx context.Context, user *model.User) (*Dashboard, error) {
	if user == nil {
		return nil, util.ErrNoSession
	}
	ctx, gen, cancel := s.begin(ctx)
	defer cancel()

	quiz := s.Store.QuizRecommendations(ctx)
	interactions := s.Store.CourseInteractions(ctx)
	history := s.Store.QuizHistory(ctx)

	dash := &Dashboard{User: user}

	var ai []model.ScoredCourse
	if len(quiz) == 0 && len(interactions) == 0 {
		recs, err := s.Gateway.UserRecommendations(ctx, user.ID, s.TopK)
		if err != nil {
			logger.L().Warn("Failed to load AI recommendations", zap.String("user_id", user.ID), zap.Error(err))
			dash.Warnings = append(dash.Warnings, err.Error())
		} else {
			ai = recs
		}
	}
	dash.Recommendations = Merge(quiz, interactions, ai)

	progress, err := s.Gateway.UserProgress(ctx, user.ID)
	if err != nil {
		logger.L().Warn("Failed to load course progress", zap.String("user_id", user.ID), zap.Error(err))
		dash.Warnings = append(dash.Warnings, err.Error())
		progress = nil
	}
	if progress == nil {
		progress = []model.UserCourseProgress{}
	}
	for i := range progress {
		progress[i].ProgressPercentage = model.ClampPercentage(progress[i].ProgressPercentage)
	}
	dash.Progress = progress

	if avg, ok := AverageQuizScore(history); ok {
		dash.Metrics.AverageQuizScore = &avg
	}
	dash.Metrics.LatestQuizSubject = LatestQuizSubject(history)
	dash.Metrics.InProgressCourses = InProgressCount(progress)
	dash.Metrics.StudyHours = StudyHours(progress)

	if !s.current(gen) {
		return nil, util.ErrStaleResult
	}
	return dash, nil
}
