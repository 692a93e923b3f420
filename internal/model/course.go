package model

import "time"

type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

type Difficulty struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type Asset struct {
	Type string `json:"type,omitempty"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
}

// Course 客户端只读；管理端提交整体或部分更新
type Course struct {
	ID               string      `json:"id"`
	Slug             string      `json:"slug,omitempty"`
	Title            string      `json:"title"`
	Description      string      `json:"description,omitempty"`
	Category         *Category   `json:"category,omitempty"`
	Difficulty       *Difficulty `json:"difficulty,omitempty"`
	DurationMinutes  int         `json:"duration_minutes,omitempty"`
	Keywords         []string    `json:"keywords,omitempty"`
	LearningOutcomes []string    `json:"learning_outcomes,omitempty"`
	Assets           []Asset     `json:"assets,omitempty"`
	CreatedAt        *time.Time  `json:"created_at,omitempty"`
	UpdatedAt        *time.Time  `json:"updated_at,omitempty"`
}

// CourseInput 管理端创建/更新课程，nil 字段不提交
type CourseInput struct {
	Title            *string  `json:"title,omitempty" validate:"omitempty,min=1"`
	Description      *string  `json:"description,omitempty"`
	CategoryID       *string  `json:"category_id,omitempty"`
	DifficultyID     *string  `json:"difficulty_id,omitempty"`
	DurationMinutes  *int     `json:"duration_minutes,omitempty" validate:"omitempty,min=0"`
	Keywords         []string `json:"keywords,omitempty"`
	LearningOutcomes []string `json:"learning_outcomes,omitempty"`
}

// ImportResult 课程包导入结果
type ImportResult struct {
	CourseID string `json:"course_id"`
	Slug     string `json:"slug"`
}
