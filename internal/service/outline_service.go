package service

import (
	"context"
	"errors"
	"stibap_portal/internal/gateway"
	"stibap_portal/internal/model"
	"stibap_portal/internal/util"
	"stibap_portal/pkg/logger"
	"sync"

	"go.uber.org/zap"
)

type OutlineGateway interface {
	Course(ctx context.Context, courseID string) (*model.Course, error)
	CourseOutline(ctx context.Context, courseID string) (*model.Outline, error)
	CourseProgress(ctx context.Context, courseID string) (*model.CourseProgress, error)
	CompleteUnit(ctx context.Context, courseID, unitID string) error
}

type PlayerState string

const (
	PlayerIdle    PlayerState = "idle"
	PlayerLoading PlayerState = "loading"
	PlayerError   PlayerState = "error"
	PlayerReady   PlayerState = "ready"
)

type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

type UnitView struct {
	model.Unit
	Completed bool `json:"completed"`
}

type ModuleView struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	OrderIndex     int        `json:"order_index"`
	Expanded       bool       `json:"expanded"`
	CompletedUnits int        `json:"completed_units"`
	Units          []UnitView `json:"units"`
}

// PlayerView 播放器状态快照，调用方可随意持有
type PlayerView struct {
	State          PlayerState   `json:"state"`
	Error          string        `json:"error,omitempty"`
	CourseID       string        `json:"course_id,omitempty"`
	Course         *model.Course `json:"course,omitempty"`
	Modules        []ModuleView  `json:"modules"`
	ActiveModuleID string        `json:"active_module_id,omitempty"`
	ActiveUnitID   string        `json:"active_unit_id,omitempty"`
	ActiveUnit     *UnitView     `json:"active_unit,omitempty"`
	Percentage     float64       `json:"percentage"`
	CompletedUnits int           `json:"completed_units"`
	TotalUnits     int           `json:"total_units"`
	CanPrev        bool          `json:"can_prev"`
	CanNext        bool          `json:"can_next"`
	CanComplete    bool          `json:"can_complete"`
}

// OutlineService 课程大纲导航：Loading -> Error | Ready
type OutlineService struct {
	Gateway OutlineGateway
	Store   *LocalStoreService

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc

	state        PlayerState
	errMsg       string
	courseID     string
	course       *model.Course
	modules      []model.Module
	progress     model.CourseProgress
	expanded     map[string]bool
	activeModule string
	activeUnit   string
}

func NewOutlineService(gw OutlineGateway, store *LocalStoreService) *OutlineService {
	return &OutlineService{
		Gateway:  gw,
		Store:    store,
		state:    PlayerIdle,
		expanded: make(map[string]bool),
	}
}

// Open 加载课程；较晚发起的 Open 会使本次结果作废
func (s *OutlineService) Open(ctx context.Context, courseID string) (*PlayerView, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.generation++
	gen := s.generation
	s.reset(courseID)
	s.state = PlayerLoading
	s.mu.Unlock()
	defer cancel()

	outline, err := s.Gateway.CourseOutline(ctx, courseID)
	if err != nil {
		return s.fail(gen, err)
	}

	progress, err := s.Gateway.CourseProgress(ctx, courseID)
	if err != nil {
		if !errors.Is(err, gateway.ErrUnauthenticated) {
			return s.fail(gen, err)
		}
		progress = nil
	}
	if progress == nil {
		progress = &model.CourseProgress{}
	}
	if outline == nil {
		outline = &model.Outline{}
	}

	course := outline.Course
	if course == nil {
		if c, err := s.Gateway.Course(ctx, courseID); err == nil && c != nil {
			course = c
		} else if err != nil {
			logger.L().Debug("Course details unavailable for outline", zap.String("course_id", courseID), zap.Error(err))
		}
	}

	outline.Sort()

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return nil, util.ErrStaleResult
	}
	s.course = course
	s.modules = outline.Modules
	s.progress = *progress
	s.expanded = make(map[string]bool, len(outline.Modules))
	if len(s.modules) > 0 {
		first := s.modules[0]
		s.expanded[first.ID] = true
		if len(first.Units) > 0 {
			s.activeModule = first.ID
			s.activeUnit = first.Units[0].ID
		}
	}
	s.state = PlayerReady
	view := s.viewLocked()
	s.mu.Unlock()

	if s.Store != nil {
		record := model.Course{ID: courseID}
		if course != nil {
			record = *course
			if record.ID == "" {
				record.ID = courseID
			}
		}
		if err := s.Store.RecordCourseInteraction(ctx, record); err != nil {
			logger.L().Warn("Failed to record course interaction", zap.String("course_id", courseID), zap.Error(err))
		}
	}
	return view, nil
}

// Retry 以当前课程重新加载
func (s *OutlineService) Retry(ctx context.Context) (*PlayerView, error) {
	s.mu.Lock()
	courseID := s.courseID
	s.mu.Unlock()
	if courseID == "" {
		return nil, util.ErrOutlineNotReady
	}
	return s.Open(ctx, courseID)
}

func (s *OutlineService) reset(courseID string) {
	s.courseID = courseID
	s.errMsg = ""
	s.course = nil
	s.modules = nil
	s.progress = model.CourseProgress{}
	s.expanded = make(map[string]bool)
	s.activeModule = ""
	s.activeUnit = ""
}

func (s *OutlineService) fail(gen uint64, err error) (*PlayerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return nil, util.ErrStaleResult
	}
	courseID := s.courseID
	s.reset(courseID)
	s.state = PlayerError
	s.errMsg = gateway.AsError(err).Message
	logger.L().Warn("Failed to load course outline", zap.String("course_id", courseID), zap.Error(err))
	return s.viewLocked(), err
}

func (s *OutlineService) View() *PlayerView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// IsUnitCompleted 完成状态只从 completed_unit_ids 推导
func (s *OutlineService) IsUnitCompleted(unitID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return isCompleted(s.progress, unitID)
}

func isCompleted(p model.CourseProgress, unitID string) bool {
	for _, id := range p.CompletedUnitIDs {
		if id == unitID {
			return true
		}
	}
	return false
}

// SelectUnit moduleID 为空时按单元查找所属模块
func (s *OutlineService) SelectUnit(moduleID, unitID string) (*PlayerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != PlayerReady {
		return nil, util.ErrOutlineNotReady
	}
	for _, m := range s.modules {
		if moduleID != "" && m.ID != moduleID {
			continue
		}
		for _, u := range m.Units {
			if u.ID == unitID {
				s.activeModule = m.ID
				s.activeUnit = u.ID
				return s.viewLocked(), nil
			}
		}
	}
	return nil, util.ErrUnitNotFound
}

func (s *OutlineService) ToggleModule(moduleID string) (*PlayerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != PlayerReady {
		return nil, util.ErrOutlineNotReady
	}
	for _, m := range s.modules {
		if m.ID == moduleID {
			s.expanded[moduleID] = !s.expanded[moduleID]
			return s.viewLocked(), nil
		}
	}
	return nil, util.ErrModuleNotFound
}

// CompleteUnit 标记当前单元完成后以服务端进度为准重新加载
func (s *OutlineService) CompleteUnit(ctx context.Context) (*PlayerView, error) {
	s.mu.Lock()
	if s.state != PlayerReady {
		s.mu.Unlock()
		return nil, util.ErrOutlineNotReady
	}
	if s.activeUnit == "" {
		s.mu.Unlock()
		return nil, util.ErrNoActiveUnit
	}
	if isCompleted(s.progress, s.activeUnit) {
		s.mu.Unlock()
		return nil, util.ErrUnitAlreadyCompleted
	}
	courseID, unitID, gen := s.courseID, s.activeUnit, s.generation
	s.mu.Unlock()

	if err := s.Gateway.CompleteUnit(ctx, courseID, unitID); err != nil {
		return nil, err
	}

	progress, err := s.Gateway.CourseProgress(ctx, courseID)
	if err != nil {
		logger.L().Warn("Failed to reload progress after completion", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	if progress == nil {
		progress = &model.CourseProgress{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return nil, util.ErrStaleResult
	}
	s.progress = *progress
	return s.viewLocked(), nil
}

type unitRef struct {
	moduleID string
	unitID   string
}

func (s *OutlineService) flatten() []unitRef {
	var refs []unitRef
	for _, m := range s.modules {
		for _, u := range m.Units {
			refs = append(refs, unitRef{moduleID: m.ID, unitID: u.ID})
		}
	}
	return refs
}

func (s *OutlineService) position(refs []unitRef) int {
	for i, r := range refs {
		if r.unitID == s.activeUnit && r.moduleID == s.activeModule {
			return i
		}
	}
	return -1
}

// GoToAdjacent 在首尾处不移动，也不回绕
func (s *OutlineService) GoToAdjacent(dir Direction) (*PlayerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != PlayerReady {
		return nil, util.ErrOutlineNotReady
	}
	refs := s.flatten()
	idx := s.position(refs)
	if idx < 0 {
		return nil, util.ErrNoActiveUnit
	}

	next := idx
	switch dir {
	case DirectionNext:
		next = idx + 1
	case DirectionPrev:
		next = idx - 1
	default:
		return nil, gateway.ValidationError("direction must be next or prev")
	}
	if next >= 0 && next < len(refs) {
		s.activeModule = refs[next].moduleID
		s.activeUnit = refs[next].unitID
	}
	return s.viewLocked(), nil
}

func (s *OutlineService) viewLocked() *PlayerView {
	view := &PlayerView{
		State:          s.state,
		Error:          s.errMsg,
		CourseID:       s.courseID,
		Modules:        make([]ModuleView, 0, len(s.modules)),
		ActiveModuleID: s.activeModule,
		ActiveUnitID:   s.activeUnit,
		Percentage:     model.ClampPercentage(s.progress.Percentage),
		TotalUnits:     s.progress.TotalUnits,
	}
	if s.course != nil {
		c := *s.course
		view.Course = &c
	}

	total := 0
	for _, m := range s.modules {
		mv := ModuleView{
			ID:         m.ID,
			Title:      m.Title,
			OrderIndex: m.OrderIndex,
			Expanded:   s.expanded[m.ID],
			Units:      make([]UnitView, 0, len(m.Units)),
		}
		for _, u := range m.Units {
			uv := UnitView{Unit: u, Completed: isCompleted(s.progress, u.ID)}
			if uv.Completed {
				mv.CompletedUnits++
				view.CompletedUnits++
			}
			if m.ID == s.activeModule && u.ID == s.activeUnit {
				active := uv
				view.ActiveUnit = &active
			}
			mv.Units = append(mv.Units, uv)
		}
		total += len(m.Units)
		view.Modules = append(view.Modules, mv)
	}
	if view.TotalUnits == 0 {
		view.TotalUnits = total
	}

	if s.state == PlayerReady && view.ActiveUnit != nil {
		refs := s.flatten()
		idx := s.position(refs)
		view.CanPrev = idx > 0
		view.CanNext = idx >= 0 && idx < len(refs)-1
		view.CanComplete = !view.ActiveUnit.Completed
	}
	return view
}
