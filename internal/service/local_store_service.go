package service

import (
	"context"
	"encoding/json"
	"stibap_portal/internal/model"
	"stibap_portal/internal/repository"
	"stibap_portal/internal/util"
	"stibap_portal/pkg/logger"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LocalStoreService 测验历史、测验推荐、课程浏览记录三个有界列表
type LocalStoreService struct {
	Repo     repository.KVRepository
	Notifier *Notifier

	// 串行化读-合并-写，避免并发请求丢失更新
	mu  sync.Mutex
	now func() time.Time
}

func NewLocalStoreService(repo repository.KVRepository, notifier *Notifier) *LocalStoreService {
	if notifier == nil {
		notifier = NewNotifier()
	}
	return &LocalStoreService{
		Repo:     repo,
		Notifier: notifier,
		now:      time.Now,
	}
}

func (s *LocalStoreService) Subscribe(fn func(StoreEvent)) func() {
	return s.Notifier.Subscribe(fn)
}

func (s *LocalStoreService) QuizHistory(ctx context.Context) []model.QuizAttempt {
	list, err := readList[model.QuizAttempt](ctx, s.Repo, util.KeyQuizHistory)
	if err != nil {
		logger.L().Warn("Failed to read quiz history", zap.Error(err))
		return []model.QuizAttempt{}
	}
	return list
}

func (s *LocalStoreService) QuizRecommendations(ctx context.Context) []model.Course {
	list, err := readList[model.Course](ctx, s.Repo, util.KeyQuizRecommendations)
	if err != nil {
		logger.L().Warn("Failed to read quiz recommendations", zap.Error(err))
		return []model.Course{}
	}
	return dedupCourses(list)
}

func (s *LocalStoreService) CourseInteractions(ctx context.Context) []model.Course {
	list, err := readList[model.Course](ctx, s.Repo, util.KeyCourseInteractions)
	if err != nil {
		logger.L().Warn("Failed to read course interactions", zap.Error(err))
		return []model.Course{}
	}
	return dedupCourses(list)
}

// LatestQuiz 最近一次测验，没有记录时返回 false
func (s *LocalStoreService) LatestQuiz(ctx context.Context) (model.QuizAttempt, bool) {
	history := s.QuizHistory(ctx)
	if len(history) == 0 {
		return model.QuizAttempt{}, false
	}
	return history[0], true
}

// StoreQuizResult 以毫秒时间戳为身份，最新在前，最多保留20条
func (s *LocalStoreService) StoreQuizResult(ctx context.Context, result model.QuizResult, subject string) (model.QuizAttempt, error) {
	score, total, grade := result.Score, result.Total, result.Grade20
	attempt := model.QuizAttempt{
		Score:     &score,
		Total:     &total,
		Grade20:   &grade,
		Subject:   subject,
		Timestamp: s.now().UnixMilli(),
	}
	return attempt, s.StoreQuizAttempt(ctx, attempt)
}

func (s *LocalStoreService) StoreQuizAttempt(ctx context.Context, attempt model.QuizAttempt) error {
	if attempt.Subject == "" {
		attempt.Subject = util.DefaultQuizSubject
	}
	if attempt.Timestamp == 0 {
		attempt.Timestamp = s.now().UnixMilli()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := readList[model.QuizAttempt](ctx, s.Repo, util.KeyQuizHistory)
	if err != nil {
		return err
	}
	merged := make([]model.QuizAttempt, 0, len(history)+1)
	merged = append(merged, attempt)
	for _, a := range history {
		if a.Timestamp != attempt.Timestamp {
			merged = append(merged, a)
		}
	}
	if len(merged) > util.QuizHistoryCap {
		merged = merged[:util.QuizHistoryCap]
	}

	if err := writeList(ctx, s.Repo, util.KeyQuizHistory, merged); err != nil {
		return err
	}
	s.Notifier.Publish(TopicQuizHistory)
	return nil
}

// UpdateQuizRecommendations 新推荐排在前面；归一化后为空则不写入也不通知
func (s *LocalStoreService) UpdateQuizRecommendations(ctx context.Context, courses []model.Course) error {
	incoming := dedupCourses(courses)
	if len(incoming) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := readList[model.Course](ctx, s.Repo, util.KeyQuizRecommendations)
	if err != nil {
		return err
	}
	merged := dedupCourses(append(incoming, stored...))
	if len(merged) > util.RecommendationListCap {
		merged = merged[:util.RecommendationListCap]
	}

	if err := writeList(ctx, s.Repo, util.KeyQuizRecommendations, merged); err != nil {
		return err
	}
	s.Notifier.Publish(TopicQuizRecommendations)
	return nil
}

// RecordCourseInteraction 打开课程时调用，课程移到最前，超出上限淘汰最旧的
func (s *LocalStoreService) RecordCourseInteraction(ctx context.Context, course model.Course) error {
	if course.ID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := readList[model.Course](ctx, s.Repo, util.KeyCourseInteractions)
	if err != nil {
		return err
	}
	merged := make([]model.Course, 0, len(stored)+1)
	merged = append(merged, course)
	for _, c := range stored {
		if c.ID != course.ID {
			merged = append(merged, c)
		}
	}
	if len(merged) > util.RecommendationListCap {
		merged = merged[:util.RecommendationListCap]
	}

	if err := writeList(ctx, s.Repo, util.KeyCourseInteractions, merged); err != nil {
		return err
	}
	s.Notifier.Publish(TopicCourseInteractions)
	return nil
}

// dedupCourses 丢弃无ID条目，同ID保留首次出现
func dedupCourses(courses []model.Course) []model.Course {
	seen := make(map[string]struct{}, len(courses))
	out := make([]model.Course, 0, len(courses))
	for _, c := range courses {
		if c.ID == "" {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// readList 存储读取失败返回错误；内容损坏视为空列表
func readList[T any](ctx context.Context, repo repository.KVRepository, key string) ([]T, error) {
	raw, ok, err := repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []T{}, nil
	}
	var list []T
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		logger.L().Warn("Discarding corrupt local list", zap.String("key", key), zap.Error(err))
		return []T{}, nil
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

func writeList[T any](ctx context.Context, repo repository.KVRepository, key string, list []T) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return repo.Set(ctx, key, string(data))
}
