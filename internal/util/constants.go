package util

// 本地持久化键，沿用前端 localStorage 的命名以便迁移旧数据
const (
	KeyQuizHistory         = "stibap.quiz_history"
	KeyQuizRecommendations = "stibap.quiz_recommendations"
	KeyCourseInteractions  = "stibap.course_interactions"
	KeySessionToken        = "stibap_session_token"
	KeyUserData            = "stibap_user_data"
	KeySessionExpiry       = "stibap_session_expires_at"
)

const (
	QuizHistoryCap        = 20
	RecommendationListCap = 8
	DefaultQuizSubject    = "General"
	DefaultQuizCount      = 5
)

const (
	LoginPath      = "/login"
	OnboardingPath = "/onboarding"
)

// RequestIDHeader 客户端传入的请求ID，原样回写到响应体
const RequestIDHeader = "X-Request-ID"
