package model

type RecommendationSource string

const (
	SourceAI                RecommendationSource = "ai"
	SourceQuiz              RecommendationSource = "quiz"
	SourceCourseInteraction RecommendationSource = "course-interaction"
	SourceAssigned          RecommendationSource = "assigned"
)

// Recommendation 同一课程只保留首次出现的来源
type Recommendation struct {
	Course          Course               `json:"course"`
	ConfidenceScore float64              `json:"confidence_score"`
	Source          RecommendationSource `json:"source"`
}

// ScoredCourse 推荐接口返回的原始条目
type ScoredCourse struct {
	Course          Course  `json:"course"`
	ConfidenceScore float64 `json:"confidence_score"`
}

type RecommendationRequest struct {
	Prompt           string   `json:"prompt" validate:"min=10,max=1000"`
	UserID           string   `json:"user_id" validate:"required"`
	TopK             int      `json:"top_k,omitempty" validate:"omitempty,min=1,max=50"`
	MinScore         *float64 `json:"min_score,omitempty"`
	DifficultyFilter string   `json:"difficulty_filter,omitempty"`
	CategoryFilter   []string `json:"category_filter,omitempty"`
}

// PromptRecommendation POST /api/recommendations 的扁平结构
type PromptRecommendation struct {
	CourseID         string      `json:"course_id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Category         *Category   `json:"category,omitempty"`
	Difficulty       *Difficulty `json:"difficulty,omitempty"`
	DurationMinutes  int         `json:"duration_minutes,omitempty"`
	ConfidenceScore  float64     `json:"confidence_score"`
	Relevance        string      `json:"relevance,omitempty"`
	Keywords         []string    `json:"keywords,omitempty"`
	LearningOutcomes []string    `json:"learning_outcomes,omitempty"`
}

func (p PromptRecommendation) ToCourse() Course {
	return Course{
		ID:               p.CourseID,
		Title:            p.Title,
		Description:      p.Description,
		Category:         p.Category,
		Difficulty:       p.Difficulty,
		DurationMinutes:  p.DurationMinutes,
		Keywords:         p.Keywords,
		LearningOutcomes: p.LearningOutcomes,
	}
}

type RecommendationResponse struct {
	Recommendations []PromptRecommendation `json:"recommendations"`
	TotalFound      int                    `json:"total_found"`
	Cached          bool                   `json:"cached"`
}
