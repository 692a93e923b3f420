package model

type QuizQuestion struct {
	ID       int      `json:"id"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Category string   `json:"category,omitempty"`
}

type QuizAnswerDetail struct {
	QuestionID    string `json:"question_id"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
}

// QuizResult /api/qcm/submit 的返回
type QuizResult struct {
	Score   int                `json:"score"`
	Total   int                `json:"total"`
	Grade20 float64            `json:"grade_20"`
	Details []QuizAnswerDetail `json:"details,omitempty"`
}

// QuizAttempt 本地持久化的测验记录，字段可缺省
type QuizAttempt struct {
	Score     *int     `json:"score,omitempty"`
	Total     *int     `json:"total,omitempty"`
	Grade20   *float64 `json:"grade_20,omitempty"`
	Subject   string   `json:"subject"`
	Timestamp int64    `json:"timestamp"`
}

// Grade 归一到 0-20；没有可用成绩返回 false
func (a QuizAttempt) Grade() (float64, bool) {
	if a.Grade20 != nil {
		return *a.Grade20, true
	}
	if a.Score != nil && a.Total != nil && *a.Total > 0 {
		return float64(*a.Score) / float64(*a.Total) * 20, true
	}
	return 0, false
}

// StudentProfile 成绩预测的输入
type StudentProfile struct {
	QcmScore   float64 `json:"qcm_score"`
	Subject    string  `json:"subject" validate:"required"`
	StudyTime  int     `json:"studytime" validate:"min=1,max=4"`
	Failures   int     `json:"failures" validate:"min=0"`
	Absences   int     `json:"absences" validate:"min=0"`
	SchoolSup  bool    `json:"schoolsup"`
	FamSup     bool    `json:"famsup"`
	Activities bool    `json:"activities"`
	Internet   bool    `json:"internet"`
}

type Prediction struct {
	Status           string  `json:"status"`
	Probability      float64 `json:"probability"`
	Message          string  `json:"message"`
	DetailedFeedback string  `json:"detailed_feedback"`
	Error            string  `json:"error,omitempty"`
}
