package model

type Preferences struct {
	UserID                  string   `json:"user_id,omitempty"`
	LearningGoals           string   `json:"learning_goals" validate:"required"`
	PreferredDifficultyID   string   `json:"preferred_difficulty_id,omitempty"`
	PreferredCategories     []string `json:"preferred_categories,omitempty"`
	TimeAvailabilityMinutes int      `json:"time_availability_minutes,omitempty" validate:"min=0"`
	OnboardingCompleted     bool     `json:"onboarding_completed"`
}

type PreferencesUpdate struct {
	LearningGoals           *string  `json:"learning_goals,omitempty"`
	PreferredDifficultyID   *string  `json:"preferred_difficulty_id,omitempty"`
	PreferredCategories     []string `json:"preferred_categories,omitempty"`
	TimeAvailabilityMinutes *int     `json:"time_availability_minutes,omitempty"`
	OnboardingCompleted     *bool    `json:"onboarding_completed,omitempty"`
}

type OnboardingResult struct {
	Message         string         `json:"message,omitempty"`
	Recommendations []ScoredCourse `json:"recommendations,omitempty"`
}
