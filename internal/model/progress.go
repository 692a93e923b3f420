package model

import (
	"math"
	"time"
)

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

// CourseProgress 服务端在每次单元完成后重新计算，客户端只读
type CourseProgress struct {
	Percentage       float64        `json:"percentage"`
	CompletedUnitIDs []string       `json:"completed_unit_ids"`
	TotalUnits       int            `json:"total_units"`
	Status           ProgressStatus `json:"status"`
}

// UserCourseProgress /api/users/{id}/progress 中的一行
type UserCourseProgress struct {
	CourseID           string         `json:"course_id"`
	Status             ProgressStatus `json:"status"`
	ProgressPercentage float64        `json:"progress_percentage"`
	StartedAt          *time.Time     `json:"started_at,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	Course             *Course        `json:"course,omitempty"`
}

type ProgressUpdate struct {
	CourseID           string         `json:"course_id" validate:"required"`
	Status             ProgressStatus `json:"status" validate:"required,oneof=not_started in_progress completed"`
	ProgressPercentage int            `json:"progress_percentage" validate:"min=0,max=100"`
}

// ClampPercentage 展示前统一截断到 [0,100]
func ClampPercentage(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
