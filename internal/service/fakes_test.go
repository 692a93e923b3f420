package service

import (
	"context"
	"io"
	"stibap_portal/internal/model"
	"stibap_portal/internal/repository"
	"sync"
)

// fakeBackend 记录调用次数的后端替身
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	course      *model.Course
	outlines    map[string]*model.Outline
	outlineErr  error
	progress    *model.CourseProgress
	progressErr error
	completeErr error

	// gates 按课程阻塞 CourseOutline，entered 通知已进入
	gates   map[string]chan struct{}
	entered chan string

	aiRecs          []model.ScoredCourse
	aiErr           error
	userProgress    []model.UserCourseProgress
	userProgressErr error

	quizResult  *model.QuizResult
	quizErr     error
	lastAnswers map[string]int
	promptResp  *model.RecommendationResponse
	promptErr   error
	lastPrompt  model.RecommendationRequest
	prediction  *model.Prediction
	lastProfile model.StudentProfile

	prefs    *model.Preferences
	prefsErr error

	users []model.User
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls:    make(map[string]int),
		outlines: make(map[string]*model.Outline),
		gates:    make(map[string]chan struct{}),
	}
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) Course(ctx context.Context, courseID string) (*model.Course, error) {
	f.hit("Course")
	if f.course != nil {
		c := *f.course
		return &c, nil
	}
	return &model.Course{ID: courseID, Title: "Course " + courseID}, nil
}

func (f *fakeBackend) CourseOutline(ctx context.Context, courseID string) (*model.Outline, error) {
	f.hit("CourseOutline")
	f.mu.Lock()
	gate := f.gates[courseID]
	f.mu.Unlock()
	if gate != nil {
		if f.entered != nil {
			f.entered <- courseID
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.outlineErr != nil {
		return nil, f.outlineErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.outlines[courseID]
	if !ok {
		return &model.Outline{}, nil
	}
	cp := *o
	cp.Modules = append([]model.Module(nil), o.Modules...)
	return &cp, nil
}

func (f *fakeBackend) CourseProgress(ctx context.Context, courseID string) (*model.CourseProgress, error) {
	f.hit("CourseProgress")
	if f.progressErr != nil {
		return nil, f.progressErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.progress == nil {
		return &model.CourseProgress{}, nil
	}
	cp := *f.progress
	cp.CompletedUnitIDs = append([]string(nil), f.progress.CompletedUnitIDs...)
	return &cp, nil
}

func (f *fakeBackend) CompleteUnit(ctx context.Context, courseID, unitID string) error {
	f.hit("CompleteUnit")
	if f.completeErr != nil {
		return f.completeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.progress == nil {
		f.progress = &model.CourseProgress{}
	}
	f.progress.CompletedUnitIDs = append(f.progress.CompletedUnitIDs, unitID)
	if f.progress.TotalUnits > 0 {
		f.progress.Percentage = float64(len(f.progress.CompletedUnitIDs)) / float64(f.progress.TotalUnits) * 100
	}
	return nil
}

func (f *fakeBackend) UserRecommendations(ctx context.Context, userID string, topK int) ([]model.ScoredCourse, error) {
	f.hit("UserRecommendations")
	return f.aiRecs, f.aiErr
}

func (f *fakeBackend) UserProgress(ctx context.Context, userID string) ([]model.UserCourseProgress, error) {
	f.hit("UserProgress")
	if f.userProgressErr != nil {
		return nil, f.userProgressErr
	}
	return append([]model.UserCourseProgress(nil), f.userProgress...), nil
}

func (f *fakeBackend) UpdateCourseProgress(ctx context.Context, userID string, update model.ProgressUpdate) error {
	f.hit("UpdateCourseProgress")
	return nil
}

func (f *fakeBackend) QuizQuestions(ctx context.Context, subject string, count int) ([]model.QuizQuestion, error) {
	f.hit("QuizQuestions")
	qs := make([]model.QuizQuestion, 0, count)
	for i := 1; i <= count; i++ {
		qs = append(qs, model.QuizQuestion{ID: i, Text: "Q", Options: []string{"a", "b"}, Category: subject})
	}
	return qs, nil
}

func (f *fakeBackend) SubmitQuiz(ctx context.Context, answers map[string]int) (*model.QuizResult, error) {
	f.hit("SubmitQuiz")
	f.lastAnswers = answers
	if f.quizErr != nil {
		return nil, f.quizErr
	}
	r := *f.quizResult
	return &r, nil
}

func (f *fakeBackend) PromptRecommendations(ctx context.Context, req model.RecommendationRequest) (*model.RecommendationResponse, error) {
	f.hit("PromptRecommendations")
	f.lastPrompt = req
	if f.promptErr != nil {
		return nil, f.promptErr
	}
	return f.promptResp, nil
}

func (f *fakeBackend) PredictPerformance(ctx context.Context, profile model.StudentProfile) (*model.Prediction, error) {
	f.hit("PredictPerformance")
	f.lastProfile = profile
	return f.prediction, nil
}

func (f *fakeBackend) Preferences(ctx context.Context, userID string) (*model.Preferences, error) {
	f.hit("Preferences")
	return f.prefs, f.prefsErr
}

func (f *fakeBackend) CreatePreferences(ctx context.Context, userID string, prefs model.Preferences) (*model.Preferences, error) {
	f.hit("CreatePreferences")
	return &prefs, nil
}

func (f *fakeBackend) UpdatePreferences(ctx context.Context, userID string, update model.PreferencesUpdate) (*model.Preferences, error) {
	f.hit("UpdatePreferences")
	return f.prefs, nil
}

func (f *fakeBackend) CompleteOnboarding(ctx context.Context, userID string, prefs model.Preferences) (*model.OnboardingResult, error) {
	f.hit("CompleteOnboarding")
	return &model.OnboardingResult{Message: "ok"}, nil
}

func (f *fakeBackend) AdminUsers(ctx context.Context) ([]model.User, error) {
	f.hit("AdminUsers")
	return f.users, nil
}

func (f *fakeBackend) AdminUpdateUser(ctx context.Context, userID string, update model.AdminUserUpdate) error {
	f.hit("AdminUpdateUser")
	return nil
}

func (f *fakeBackend) AdminCourses(ctx context.Context) ([]model.Course, error) {
	f.hit("AdminCourses")
	return nil, nil
}

func (f *fakeBackend) AdminCreateCourse(ctx context.Context, input model.CourseInput) (*model.Course, error) {
	f.hit("AdminCreateCourse")
	return &model.Course{ID: "new", Title: *input.Title}, nil
}

func (f *fakeBackend) AdminUpdateCourse(ctx context.Context, courseID string, input model.CourseInput) (*model.Course, error) {
	f.hit("AdminUpdateCourse")
	return &model.Course{ID: courseID}, nil
}

func (f *fakeBackend) AdminDeleteCourse(ctx context.Context, courseID string) error {
	f.hit("AdminDeleteCourse")
	return nil
}

func (f *fakeBackend) ImportCourseBundle(ctx context.Context, filename string, r io.Reader, courseID string) (*model.ImportResult, error) {
	f.hit("ImportCourseBundle")
	return &model.ImportResult{CourseID: "c1", Slug: "slug"}, nil
}

func (f *fakeBackend) ReloadCourses(ctx context.Context) error {
	f.hit("ReloadCourses")
	return nil
}

// fakeRPC 认证函数替身
type fakeRPC struct {
	mu        sync.Mutex
	calls     map[string]int
	login     *model.AuthResponse
	loginErr  error
	verify    *model.AuthResponse
	verifyErr error
	logoutErr error
	changeErr error
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{calls: make(map[string]int)}
}

func (f *fakeRPC) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeRPC) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeRPC) RegisterUser(ctx context.Context, email, password, fullName string) (*model.AuthResponse, error) {
	f.hit("register")
	return &model.AuthResponse{Success: true, Message: "registered"}, nil
}

func (f *fakeRPC) LoginUser(ctx context.Context, email, password, ipAddress, userAgent string) (*model.AuthResponse, error) {
	f.hit("login")
	return f.login, f.loginErr
}

func (f *fakeRPC) VerifySession(ctx context.Context, token string) (*model.AuthResponse, error) {
	f.hit("verify")
	return f.verify, f.verifyErr
}

func (f *fakeRPC) LogoutUser(ctx context.Context, token string) (*model.AuthResponse, error) {
	f.hit("logout")
	if f.logoutErr != nil {
		return nil, f.logoutErr
	}
	return &model.AuthResponse{Success: true}, nil
}

func (f *fakeRPC) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) (*model.AuthResponse, error) {
	f.hit("change")
	if f.changeErr != nil {
		return nil, f.changeErr
	}
	return &model.AuthResponse{Success: true}, nil
}

func newTestStore() (*LocalStoreService, repository.KVRepository) {
	repo := repository.NewMemoryKVRepository()
	return NewLocalStoreService(repo, NewNotifier()), repo
}

func courses(ids ...string) []model.Course {
	out := make([]model.Course, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Course{ID: id, Title: "Course " + id})
	}
	return out
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
