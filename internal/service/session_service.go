package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gradguide/backend/config"
	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/model"
	"gradguide/backend/internal/repository"
	"gradguide/backend/pkg/timeutil"
)

// ── 会话模块业务错误 ──

var (
	ErrSessionNotFound     = errors.New("指导会话不存在")
	ErrSessionTooShort     = errors.New("会话时长低于最短要求")
	ErrOutsideAvailability = errors.New("所选时段不在导师开放窗口内")
	ErrSessionNotEditable  = errors.New("仅待处理状态的申请可编辑")
	ErrNotSessionStudent   = errors.New("只有课题学生可执行此操作")
	ErrNotSessionAdvisor   = errors.New("只有课题导师可执行此操作")
	ErrParticipantInvalid  = errors.New("团体指导参与人无效")
	ErrDateOutsidePeriod   = errors.New("会话日期不在学业周期范围内")
	ErrDateInPast          = errors.New("会话日期不能早于今天")
	ErrNoteNotFound        = errors.New("指导记录不存在")
)

// ConflictError 预约时段冲突错误，携带冲突明细
type ConflictError struct {
	Conflicts []dto.ConflictInfo
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("时段冲突：共 %d 处", len(e.Conflicts))
}

// InvalidTransitionError 非法状态转移错误
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("非法状态转移: %s → %s", e.From, e.To)
}

// SessionService 指导会话业务接口
//
// 状态机见 model.GuidanceSession。所有状态翻转走版本条件写，
// 同一 (导师, 日期) 的预约型操作串行化，避免并发写入重叠会话。
type SessionService interface {
	// Request 学生发起预约申请 → PENDING
	Request(ctx context.Context, req *dto.RequestSessionRequest, studentID string) (*dto.SessionResponse, error)
	// Offer 导师发起邀约 → OFFERED
	Offer(ctx context.Context, req *dto.OfferSessionRequest, advisorID string) (*dto.SessionResponse, error)
	// DirectSchedule 导师直接排定 → APPROVED
	DirectSchedule(ctx context.Context, req *dto.DirectScheduleRequest, advisorID string) (*dto.SessionResponse, error)
	// Update 学生编辑 PENDING 申请
	Update(ctx context.Context, sessionID string, req *dto.UpdateSessionRequest, studentID string) (*dto.SessionResponse, error)
	// Approve 导师批准 PENDING → APPROVED
	Approve(ctx context.Context, sessionID string, req *dto.ApproveSessionRequest, advisorID string) (*dto.SessionResponse, error)
	// Reject 导师驳回 PENDING → REJECTED
	Reject(ctx context.Context, sessionID string, req *dto.RejectSessionRequest, advisorID string) (*dto.SessionResponse, error)
	// Accept 学生接受邀约 OFFERED → APPROVED
	Accept(ctx context.Context, sessionID, studentID string) (*dto.SessionResponse, error)
	// Decline 学生婉拒邀约 OFFERED → DECLINED
	Decline(ctx context.Context, sessionID string, req *dto.DeclineSessionRequest, studentID string) (*dto.SessionResponse, error)
	// Cancel 学生取消 PENDING/APPROVED → CANCELLED
	Cancel(ctx context.Context, sessionID string, req *dto.CancelSessionRequest, studentID string) (*dto.SessionResponse, error)
	// Complete 导师完成 APPROVED → COMPLETED，同一事务写入指导记录
	Complete(ctx context.Context, sessionID string, req *dto.CompleteSessionRequest, advisorID string) (*dto.SessionResponse, error)
	GetByID(ctx context.Context, sessionID, callerID, callerRole string) (*dto.SessionResponse, error)
	ListByProject(ctx context.Context, projectID string, req *dto.SessionListRequest, callerID, callerRole string) ([]dto.SessionResponse, int64, error)
	// ListAdvisorCalendar 导师名下全部课题在日期范围内的会话日程
	ListAdvisorCalendar(ctx context.Context, advisorID string, req *dto.AdvisorCalendarRequest) ([]dto.SessionResponse, error)
	ListChangeLogs(ctx context.Context, sessionID, callerID, callerRole string) ([]dto.SessionChangeLogResponse, error)
	GetNote(ctx context.Context, sessionID, callerID, callerRole string) (*dto.GuidanceNoteResponse, error)
}

type sessionService struct {
	cfg      *config.Config
	repo     *repository.Repository
	conflict ConflictChecker
	notify   NotificationService
	logger   *zap.Logger
	bookMu   keyedMutex
	now      func() time.Time // 测试中可固定
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(
	cfg *config.Config,
	repo *repository.Repository,
	conflict ConflictChecker,
	notify NotificationService,
	logger *zap.Logger,
) SessionService {
	return &sessionService{
		cfg:      cfg,
		repo:     repo,
		conflict: conflict,
		notify:   notify,
		logger:   logger,
		now:      time.Now,
	}
}

// keyedMutex 以 key 为粒度的互斥锁，预约时按 (导师, 日期) 串行化
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func bookingKey(advisorID string, date time.Time) string {
	return advisorID + ":" + date.Format("2006-01-02")
}

// ════════════════════════════════════════════════════════════
// Request — 学生发起预约申请
// ════════════════════════════════════════════════════════════

func (s *sessionService) Request(ctx context.Context, req *dto.RequestSessionRequest, studentID string) (*dto.SessionResponse, error) {
	project, err := s.getActiveProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.StudentID != studentID {
		return nil, ErrNotSessionStudent
	}
	if !project.HasSupervisor(req.AdvisorID) {
		return nil, ErrNotSessionAdvisor
	}

	date, err := s.parseSessionDate(project, req.ScheduledDate)
	if err != nil {
		return nil, err
	}
	if err := s.validateDuration(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	participants, err := s.resolveParticipants(ctx, req.SessionType, req.ParticipantIDs, studentID)
	if err != nil {
		return nil, err
	}

	unlock := s.bookMu.lock(bookingKey(req.AdvisorID, date))
	defer unlock()

	if err := s.checkBookable(ctx, req.AdvisorID, studentID, date, req.StartTime, req.EndTime, ""); err != nil {
		return nil, err
	}

	session := &model.GuidanceSession{
		ProjectID:     project.ProjectID,
		ScheduledDate: date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Location:      model.DefaultLocation,
		SessionType:   sessionTypeOrDefault(req.SessionType),
		Status:        model.SessionStatusPending,
		CreatedByRole: model.RoleStudent,
		Notes:         req.Notes,
	}
	session.CreatedBy = &studentID
	session.UpdatedBy = &studentID

	if err := s.repo.GuidanceSession.Create(ctx, session, participants); err != nil {
		s.logger.Error("创建预约申请失败", zap.Error(err))
		return nil, err
	}

	s.notify.NotifySessionEvent(ctx, req.AdvisorID, model.NotifySessionRequested,
		"新的指导预约申请",
		fmt.Sprintf("学生提交了 %s %s-%s 的指导预约", req.ScheduledDate, req.StartTime, req.EndTime),
		session.SessionID)

	return s.load(ctx, session.SessionID)
}

// ════════════════════════════════════════════════════════════
// Offer — 导师发起邀约
// ════════════════════════════════════════════════════════════

func (s *sessionService) Offer(ctx context.Context, req *dto.OfferSessionRequest, advisorID string) (*dto.SessionResponse, error) {
	project, err := s.getActiveProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.HasSupervisor(advisorID) {
		return nil, ErrNotSessionAdvisor
	}

	date, err := s.parseSessionDate(project, req.ScheduledDate)
	if err != nil {
		return nil, err
	}
	if err := s.validateDuration(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	unlock := s.bookMu.lock(bookingKey(advisorID, date))
	defer unlock()

	// 邀约同样检查双方冲突：学生有课时发出的邀约注定被婉拒
	if err := s.checkConflicts(ctx, advisorID, project.StudentID, date, req.StartTime, req.EndTime, ""); err != nil {
		return nil, err
	}

	session := &model.GuidanceSession{
		ProjectID:     project.ProjectID,
		ScheduledDate: date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Location:      locationOrDefault(req.Location),
		SessionType:   sessionTypeOrDefault(req.SessionType),
		Status:        model.SessionStatusOffered,
		CreatedByRole: model.RoleAdvisor,
		Notes:         req.Notes,
	}
	session.CreatedBy = &advisorID
	session.UpdatedBy = &advisorID

	if err := s.repo.GuidanceSession.Create(ctx, session, nil); err != nil {
		s.logger.Error("创建邀约失败", zap.Error(err))
		return nil, err
	}

	s.notify.NotifySessionEvent(ctx, project.StudentID, model.NotifySessionOffered,
		"导师发来指导邀约",
		fmt.Sprintf("导师邀请你参加 %s %s-%s 的指导", req.ScheduledDate, req.StartTime, req.EndTime),
		session.SessionID)

	return s.load(ctx, session.SessionID)
}

// ════════════════════════════════════════════════════════════
// DirectSchedule — 导师直接排定
// ════════════════════════════════════════════════════════════

func (s *sessionService) DirectSchedule(ctx context.Context, req *dto.DirectScheduleRequest, advisorID string) (*dto.SessionResponse, error) {
	project, err := s.getActiveProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.HasSupervisor(advisorID) {
		return nil, ErrNotSessionAdvisor
	}

	date, err := s.parseSessionDate(project, req.ScheduledDate)
	if err != nil {
		return nil, err
	}
	if err := s.validateDuration(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	participants, err := s.resolveParticipants(ctx, req.SessionType, req.ParticipantIDs, project.StudentID)
	if err != nil {
		return nil, err
	}

	unlock := s.bookMu.lock(bookingKey(advisorID, date))
	defer unlock()

	// 直接排定跳过窗口校验（导师可自行决定时段），但双方冲突仍然硬检查
	var conflicts []dto.ConflictInfo
	advConflicts, err := s.conflict.CheckAdvisor(ctx, advisorID, date, req.StartTime, req.EndTime, s.blockingStatuses(), "")
	if err != nil {
		return nil, err
	}
	conflicts = append(conflicts, advConflicts...)
	stuConflicts, err := s.conflict.CheckStudent(ctx, project.StudentID, date, req.StartTime, req.EndTime, s.blockingStatuses(), "")
	if err != nil {
		return nil, err
	}
	conflicts = append(conflicts, stuConflicts...)
	if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	session := &model.GuidanceSession{
		ProjectID:     project.ProjectID,
		ScheduledDate: date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Location:      locationOrDefault(req.Location),
		SessionType:   sessionTypeOrDefault(req.SessionType),
		Status:        model.SessionStatusApproved,
		CreatedByRole: model.RoleAdvisor,
		Notes:         req.Notes,
	}
	session.CreatedBy = &advisorID
	session.UpdatedBy = &advisorID

	if err := s.repo.GuidanceSession.Create(ctx, session, participants); err != nil {
		s.logger.Error("直接排定失败", zap.Error(err))
		return nil, err
	}

	s.notify.NotifySessionEvent(ctx, project.StudentID, model.NotifySessionApproved,
		"导师已排定指导",
		fmt.Sprintf("导师排定了 %s %s-%s 的指导", req.ScheduledDate, req.StartTime, req.EndTime),
		session.SessionID)

	return s.load(ctx, session.SessionID)
}

// ════════════════════════════════════════════════════════════
// Update — 学生编辑 PENDING 申请
// ════════════════════════════════════════════════════════════

func (s *sessionService) Update(ctx context.Context, sessionID string, req *dto.UpdateSessionRequest, studentID string) (*dto.SessionResponse, error) {
	session, project, err := s.getSessionWithProject(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if project.StudentID != studentID {
		return nil, ErrNotSessionStudent
	}
	if session.Status != model.SessionStatusPending {
		return nil, ErrSessionNotEditable
	}

	date := session.ScheduledDate
	if req.ScheduledDate != nil {
		date, err = s.parseSessionDate(project, *req.ScheduledDate)
		if err != nil {
			return nil, err
		}
	}
	start, end := session.StartTime, session.EndTime
	if req.StartTime != nil {
		start = *req.StartTime
	}
	if req.EndTime != nil {
		end = *req.EndTime
	}
	if err := s.validateDuration(start, end); err != nil {
		return nil, err
	}

	advisorID := firstSupervisorID(project)
	unlock := s.bookMu.lock(bookingKey(advisorID, date))
	defer unlock()

	if err := s.checkBookable(ctx, advisorID, studentID, date, start, end, sessionID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"scheduled_date": date,
		"start_time":     start,
		"end_time":       end,
		"updated_by":     studentID,
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if err := s.repo.GuidanceSession.Update(ctx, session, fields); err != nil {
		s.logger.Error("编辑预约申请失败", zap.String("id", sessionID), zap.Error(err))
		return nil, err
	}

	s.notify.NotifySessionEvent(ctx, advisorID, model.NotifySessionUpdated,
		"预约申请已更新",
		fmt.Sprintf("学生调整了预约至 %s %s-%s", date.Format(dateLayout), start, end),
		sessionID)

	return s.load(ctx, sessionID)
}

// ════════════════════════════════════════════════════════════
// Approve / Reject — 导师处理申请
// ════════════════════════════════════════════════════════════

func (s *sessionService) Approve(ctx context.Context, sessionID string, req *dto.ApproveSessionRequest, advisorID string) (*dto.SessionResponse, error) {
	session, project, err := s.getSessionWithProject(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !project.HasSupervisor(advisorID) {
		return nil, ErrNotSessionAdvisor
	}
	if session.Status != model.SessionStatusPending {
		return nil, &InvalidTransitionError{From: session.Status, To: model.SessionStatusApproved}
	}

	unlock := s.bookMu.lock(bookingKey(advisorID, session.ScheduledDate))
	defer unlock()

	// 批准时重新检查冲突：期间可能已有其他会话获批
	if err := s.checkBookable(ctx, advisorID, project.StudentID, session.ScheduledDate, session.StartTime, session.EndTime, sessionID); err != nil {
		return nil, err
	}

	// 地点随状态翻转同一条件写落库，翻转失败时不留下半截修改
	var extra map[string]interface{}
	if req.Location != nil && *req.Location != "" {
		extra = map[string]interface{}{"location": *req.Location}
	}
	if err := s.transition(ctx, session, model.SessionStatusPending, model.SessionStatusApproved, advisorID, model.RoleAdvisor, nil, extra); err != nil {
		return nil, err
	}

	s.notify.NotifySessionEvent(ctx, project.StudentID, model.NotifySessionApproved,
		"预约已批准",
		fmt.Sprintf("导师批准了 %s %s-%s 的指导预约", session.ScheduledDate.Format(dateLayout), session.StartTime, session.EndTime),
		sessionID)

	return s.load(ctx, sessionID)
}

func (s *sessionService) Reject(ctx context.Context, sessionID string, req *dto.RejectSessionRequest, advisorID string) (*dto.SessionResponse, error) {
	session, project, err := s.getSessionWithProject(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !project.HasSupervisor(advisorID) {
		return nil, ErrNotSessionAdvisor
	}
	if session.Status != model.SessionStatusPending {
		return nil, &InvalidTransitionError{From: session.Status, To: model.SessionStatusRejected}
	}

	if err := s.transition(ctx, session, model.SessionStatusPending, model.SessionStatusRejected, advisorID, model.RoleAdvisor, &req.Reason, nil); err != nil {
		return nil, err
	}

	s.notify.NotifySessionEvent(ctx, project.StudentID, model.NotifySessionRejected,
		"预约被驳回",
		fmt.Sprintf("导师驳回了预约：%s", req.Reason),
		sessionID)

	return s.load(ctx, sessionID)
}

// ════════════════════════════════════════════════════════════
// Accept / Decline — 学生处理邀约
// ════════════════════════════════════════════════════════════

func (s *sessionService) Accept(ctx context.Context, sessionID, studentID string) (*dto.SessionResponse, error) {
	session, project, err := s.getSessionWithProject(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if project.StudentID != studentID {
		return nil, ErrNotSessionStudent
	}
	if session.Status != model.SessionStatusOffered {
		return nil, &InvalidTransitionError{From: session.Status, To: model.SessionStatusApproved}
	}

	advisorID := firstSupervisorID(project)
	unlock := s.bookMu.lock(bookingKey(advisorID, session.ScheduledDate))
	defer unlock()

	// 接受时双方冲突重查：邀约挂起期间时段可能已被占用
	if err := s.checkConflicts(ctx, advisorID, studentID, session.ScheduledDate, session.StartTime, session.EndTime, sessionID); err != nil {
		return nil, err
	}

	if err := s.transition(ctx, session, model.SessionStatusOffered, model.SessionStatusApproved, studentID, model.RoleStudent, nil, nil); err != nil {
		return nil, err
	}

	s.notify.NotifySessionEvent(ctx, advisorID, model.NotifySessionApproved,
		"邀约已被接受",
		fmt.Sprintf("学生接受了 %s %s-%s 的指导邀约", session.ScheduledDate.Format(dateLayout), session.StartTime, session.EndTime),
		sessionID)

	return s.load(ctx, sessionID)
}

func (s *sessionService) Decline(ctx context.Context, sessionID string, req *dto.DeclineSessionRequest, studentID string) (*dto.SessionResponse, error) {
	session, project, err := s.getSessionWithProject(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if project.StudentID != studentID {
		return nil, ErrNotSessionStudent
	}
	if session.Status != model.SessionStatusOffered {
		return nil, &InvalidTransitionError{From: session.Status, To: model.SessionStatusDeclined}
	}

	if err := s.transition(ctx, session, model.SessionStatusOffered, model.SessionStatusDeclined, studentID, model.RoleStudent, req.Reason, nil); err != nil {
		return nil, err
	}

	s.notify.NotifySessionEvent(ctx, firstSupervisorID(project), model.NotifySessionDeclined,
		"邀约被婉拒", "学生婉拒了指导邀约", sessionID)

	return s.load(ctx, sessionID)
}

// ════════════════════════════════════════════════════════════
// Cancel — 学生取消
// ════════════════════════════════════════════════════════════

func (s *sessionService) Cancel(ctx context.Context, sessionID string, req *dto.CancelSessionRequest, studentID string) (*dto.SessionResponse, error) {
	session, project, err := s.getSessionWithProject(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if project.StudentID != studentID {
		return nil, ErrNotSessionStudent
	}
	if session.Status != model.SessionStatusPending && session.Status != model.SessionStatusApproved {
		return nil, &InvalidTransitionError{From: session.Status, To: model.SessionStatusCancelled}
	}

	if err := s.transition(ctx, session, session.Status, model.SessionStatusCancelled, studentID, model.RoleStudent, req.Reason, nil); err != nil {
		return nil, err
	}

	s.notify.NotifySessionEvent(ctx, firstSupervisorID(project), model.NotifySessionCancelled,
		"指导已取消",
		fmt.Sprintf("学生取消了 %s %s-%s 的指导", session.ScheduledDate.Format(dateLayout), session.StartTime, session.EndTime),
		sessionID)

	return s.load(ctx, sessionID)
}

// ════════════════════════════════════════════════════════════
// Complete — 导师完成会话并写指导记录
// ════════════════════════════════════════════════════════════

func (s *sessionService) Complete(ctx context.Context, sessionID string, req *dto.CompleteSessionRequest, advisorID string) (*dto.SessionResponse, error) {
	session, project, err := s.getSessionWithProject(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !project.HasSupervisor(advisorID) {
		return nil, ErrNotSessionAdvisor
	}
	if session.Status != model.SessionStatusApproved {
		return nil, &InvalidTransitionError{From: session.Status, To: model.SessionStatusCompleted}
	}

	note := &model.GuidanceNote{
		SessionID:     sessionID,
		AdvisorID:     advisorID,
		Content:       req.Content,
		FollowUpTasks: req.FollowUpTasks,
	}
	note.CreatedBy = &advisorID
	note.UpdatedBy = &advisorID

	changeLog := &model.SessionChangeLog{
		SessionID:  sessionID,
		FromStatus: model.SessionStatusApproved,
		ToStatus:   model.SessionStatusCompleted,
		ActorID:    advisorID,
		ActorRole:  model.RoleAdvisor,
	}

	// 状态翻转 + 指导记录 + 变更日志在同一事务内落库
	if err := s.repo.GuidanceSession.CompleteWithNote(ctx, session, note, changeLog); err != nil {
		s.logger.Error("完成会话失败", zap.String("id", sessionID), zap.Error(err))
		return nil, err
	}

	s.notify.NotifySessionEvent(ctx, project.StudentID, model.NotifySessionCompleted,
		"指导已完成", "导师完成了本次指导并提交了指导记录", sessionID)

	return s.load(ctx, sessionID)
}

// ════════════════════════════════════════════════════════════
// 查询
// ════════════════════════════════════════════════════════════

func (s *sessionService) GetByID(ctx context.Context, sessionID, callerID, callerRole string) (*dto.SessionResponse, error) {
	session, project, err := s.getSessionWithProject(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(project, session, callerID, callerRole); err != nil {
		return nil, err
	}
	resp := toSessionResponse(session)
	return &resp, nil
}

func (s *sessionService) ListByProject(ctx context.Context, projectID string, req *dto.SessionListRequest, callerID, callerRole string) ([]dto.SessionResponse, int64, error) {
	project, err := s.repo.ThesisProject.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrProjectNotFound
		}
		s.logger.Error("查询课题失败", zap.Error(err))
		return nil, 0, err
	}
	if callerRole != model.RoleAdmin && project.StudentID != callerID && !project.HasSupervisor(callerID) {
		return nil, 0, ErrNotProjectMember
	}

	var statuses []string
	if req.Status != "" {
		statuses = []string{req.Status}
	}
	sessions, total, err := s.repo.GuidanceSession.ListByProject(ctx, projectID, statuses, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询会话列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, toSessionResponse(&sessions[i]))
	}
	return result, total, nil
}

func (s *sessionService) ListAdvisorCalendar(ctx context.Context, advisorID string, req *dto.AdvisorCalendarRequest) ([]dto.SessionResponse, error) {
	from, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, timeutil.ErrBadTimeFormat
	}
	to, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, timeutil.ErrBadTimeFormat
	}
	if to.Before(from) {
		return nil, ErrBadTimeRange
	}

	// 日程只含占用时段的会话与已完成的历史
	statuses := []string{
		model.SessionStatusPending,
		model.SessionStatusOffered,
		model.SessionStatusApproved,
		model.SessionStatusCompleted,
	}
	sessions, err := s.repo.GuidanceSession.ListByAdvisorAndRange(ctx, advisorID, from, to, statuses)
	if err != nil {
		s.logger.Error("查询导师日程失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, toSessionResponse(&sessions[i]))
	}
	return result, nil
}

func (s *sessionService) ListChangeLogs(ctx context.Context, sessionID, callerID, callerRole string) ([]dto.SessionChangeLogResponse, error) {
	session, project, err := s.getSessionWithProject(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(project, session, callerID, callerRole); err != nil {
		return nil, err
	}

	logs, err := s.repo.SessionChangeLog.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询变更日志失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SessionChangeLogResponse, 0, len(logs))
	for _, l := range logs {
		result = append(result, dto.SessionChangeLogResponse{
			ID:         l.ChangeLogID,
			SessionID:  l.SessionID,
			FromStatus: l.FromStatus,
			ToStatus:   l.ToStatus,
			ActorID:    l.ActorID,
			ActorRole:  l.ActorRole,
			Reason:     l.Reason,
			CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

func (s *sessionService) GetNote(ctx context.Context, sessionID, callerID, callerRole string) (*dto.GuidanceNoteResponse, error) {
	session, project, err := s.getSessionWithProject(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(project, session, callerID, callerRole); err != nil {
		return nil, err
	}

	note, err := s.repo.GuidanceNote.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		s.logger.Error("查询指导记录失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.GuidanceNoteResponse{
		ID:            note.NoteID,
		SessionID:     note.SessionID,
		Content:       note.Content,
		FollowUpTasks: note.FollowUpTasks,
		CreatedAt:     note.CreatedAt.Format(time.RFC3339),
	}
	if note.Advisor != nil {
		resp.Advisor = &dto.UserBrief{
			ID:    note.Advisor.UserID,
			Name:  note.Advisor.Name,
			Email: note.Advisor.Email,
			Role:  note.Advisor.Role,
		}
	}
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// 内部辅助方法
// ════════════════════════════════════════════════════════════

// transition 执行状态翻转并追加变更日志；extra 与翻转同一条件写落库
func (s *sessionService) transition(ctx context.Context, session *model.GuidanceSession, from, to, actorID, actorRole string, reason *string, extra map[string]interface{}) error {
	if err := s.repo.GuidanceSession.TransitionStatus(ctx, session, from, to, actorID, extra); err != nil {
		s.logger.Error("状态翻转失败",
			zap.String("session_id", session.SessionID),
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err))
		return err
	}

	changeLog := &model.SessionChangeLog{
		SessionID:  session.SessionID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		ActorRole:  actorRole,
		Reason:     reason,
	}
	if err := s.repo.SessionChangeLog.Create(ctx, changeLog); err != nil {
		// 日志写入失败不回滚已完成的状态翻转
		s.logger.Warn("写入变更日志失败", zap.String("session_id", session.SessionID), zap.Error(err))
	}
	return nil
}

// checkBookable 预约前置检查：先查双方冲突明细，再校验时段落在导师开放窗口内。
// 冲突优先返回，调用方能拿到具体冲突来源而不是笼统的窗口外错误
func (s *sessionService) checkBookable(ctx context.Context, advisorID, studentID string, date time.Time, start, end string, excludeSessionID string) error {
	if err := s.checkConflicts(ctx, advisorID, studentID, date, start, end, excludeSessionID); err != nil {
		return err
	}

	inWindow, err := s.withinAvailability(ctx, advisorID, date, start, end)
	if err != nil {
		return err
	}
	if !inWindow {
		return ErrOutsideAvailability
	}
	return nil
}

// checkConflicts 汇总导师与学生双方的冲突明细，非空即返回 ConflictError
func (s *sessionService) checkConflicts(ctx context.Context, advisorID, studentID string, date time.Time, start, end string, excludeSessionID string) error {
	var conflicts []dto.ConflictInfo
	advConflicts, err := s.conflict.CheckAdvisor(ctx, advisorID, date, start, end, s.blockingStatuses(), excludeSessionID)
	if err != nil {
		s.logger.Error("冲突检测失败", zap.Error(err))
		return err
	}
	conflicts = append(conflicts, advConflicts...)
	stuConflicts, err := s.conflict.CheckStudent(ctx, studentID, date, start, end, s.blockingStatuses(), excludeSessionID)
	if err != nil {
		s.logger.Error("冲突检测失败", zap.Error(err))
		return err
	}
	conflicts = append(conflicts, stuConflicts...)

	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

// withinAvailability 判断 [start, end) 是否完整落在某个当日生效的开放窗口内
func (s *sessionService) withinAvailability(ctx context.Context, advisorID string, date time.Time, start, end string) (bool, error) {
	windows, err := s.repo.AvailabilityWindow.ListActiveByAdvisor(ctx, advisorID)
	if err != nil {
		s.logger.Error("查询开放窗口失败", zap.Error(err))
		return false, err
	}
	dow := timeutil.DayOfWeek(date)
	for i := range windows {
		w := &windows[i]
		if !w.CoversDate(date, dow) {
			continue
		}
		if w.StartTime <= start && end <= w.EndTime {
			return true, nil
		}
	}
	return false, nil
}

func (s *sessionService) blockingStatuses() []string {
	statuses := []string{model.SessionStatusPending, model.SessionStatusApproved}
	if s.cfg.Guidance.OfferedBlocksBooking {
		statuses = append(statuses, model.SessionStatusOffered)
	}
	return statuses
}

func (s *sessionService) validateDuration(start, end string) error {
	if err := validateTimeRange(start, end); err != nil {
		return err
	}
	minutes, err := timeutil.Duration(start, end)
	if err != nil {
		return err
	}
	if minutes < s.cfg.Guidance.MinSessionMinutes {
		return ErrSessionTooShort
	}
	return nil
}

// parseSessionDate 解析日期并校验落在课题所属周期内
func (s *sessionService) parseSessionDate(project *model.ThesisProject, raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, timeutil.ErrBadTimeFormat
	}
	if date.Before(timeutil.DateOnly(s.now())) {
		return time.Time{}, ErrDateInPast
	}
	if project.Period != nil {
		if date.Before(timeutil.DateOnly(project.Period.StartDate)) || date.After(timeutil.DateOnly(project.Period.EndDate)) {
			return time.Time{}, ErrDateOutsidePeriod
		}
	}
	return date, nil
}

// resolveParticipants 校验团体指导附加参与人
func (s *sessionService) resolveParticipants(ctx context.Context, sessionType string, participantIDs []string, primaryStudentID string) ([]model.SessionParticipant, error) {
	if len(participantIDs) == 0 {
		return nil, nil
	}
	if sessionTypeOrDefault(sessionType) != model.SessionTypeGroup {
		return nil, ErrParticipantInvalid
	}

	seen := map[string]bool{primaryStudentID: true}
	participants := make([]model.SessionParticipant, 0, len(participantIDs))
	for _, id := range participantIDs {
		if seen[id] {
			return nil, ErrParticipantInvalid
		}
		seen[id] = true

		user, err := s.repo.User.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParticipantInvalid
			}
			return nil, err
		}
		if user.Role != model.RoleStudent {
			return nil, ErrParticipantInvalid
		}
		participants = append(participants, model.SessionParticipant{StudentID: id})
	}
	return participants, nil
}

func (s *sessionService) getActiveProject(ctx context.Context, projectID string) (*model.ThesisProject, error) {
	project, err := s.repo.ThesisProject.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询课题失败", zap.Error(err))
		return nil, err
	}
	if project.Status != model.ProjectStatusActive {
		return nil, ErrProjectNotActive
	}
	return project, nil
}

func (s *sessionService) getSessionWithProject(ctx context.Context, sessionID string) (*model.GuidanceSession, *model.ThesisProject, error) {
	session, err := s.repo.GuidanceSession.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		s.logger.Error("查询会话失败", zap.Error(err))
		return nil, nil, err
	}
	if session.Project == nil {
		return nil, nil, ErrProjectNotFound
	}
	return session, session.Project, nil
}

func (s *sessionService) authorize(project *model.ThesisProject, session *model.GuidanceSession, callerID, callerRole string) error {
	if callerRole == model.RoleAdmin || project.StudentID == callerID || project.HasSupervisor(callerID) {
		return nil
	}
	for _, p := range session.Participants {
		if p.StudentID == callerID {
			return nil
		}
	}
	return ErrNotProjectMember
}

func firstSupervisorID(project *model.ThesisProject) string {
	for _, sup := range project.Supervisors {
		if sup.SupervisorOrder == 1 {
			return sup.AdvisorID
		}
	}
	if len(project.Supervisors) > 0 {
		return project.Supervisors[0].AdvisorID
	}
	return ""
}

func sessionTypeOrDefault(t string) string {
	if t == "" {
		return model.SessionTypeIndividual
	}
	return t
}

func locationOrDefault(location *string) string {
	if location != nil && *location != "" {
		return *location
	}
	return model.DefaultLocation
}

func toSessionResponse(session *model.GuidanceSession) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:            session.SessionID,
		ProjectID:     session.ProjectID,
		ScheduledDate: session.ScheduledDate.Format(dateLayout),
		StartTime:     session.StartTime,
		EndTime:       session.EndTime,
		Location:      session.Location,
		SessionType:   session.SessionType,
		Status:        session.Status,
		CreatedByRole: session.CreatedByRole,
		Notes:         session.Notes,
		Version:       session.Version,
		CreatedAt:     session.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     session.UpdatedAt.Format(time.RFC3339),
	}
	if session.Project != nil {
		project := toProjectResponse(session.Project)
		resp.Project = &project
	}
	for _, p := range session.Participants {
		if p.Student != nil {
			resp.Participants = append(resp.Participants, dto.UserBrief{
				ID:    p.Student.UserID,
				Name:  p.Student.Name,
				Email: p.Student.Email,
				NIM:   p.Student.NIM,
				Role:  p.Student.Role,
			})
		}
	}
	return resp
}

func (s *sessionService) load(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.repo.GuidanceSession.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resp := toSessionResponse(session)
	return &resp, nil
}
