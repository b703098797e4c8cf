package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"gradguide/backend/internal/model"
	pkgerrors "gradguide/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, role, departmentID string, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		if departmentID != "" && u.DepartmentID != departmentID {
			continue
		}
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) BatchCreate(ctx context.Context, users []model.User) error {
	for i := range users {
		u := users[i]
		if err := m.Create(ctx, &u); err != nil {
			return err
		}
	}
	return nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	depts   map[string]*model.Department
	members map[string]int64
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{depts: make(map[string]*model.Department), members: make(map[string]int64)}
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		dept.DepartmentID = "dept-" + dept.Name
	}
	m.depts[dept.DepartmentID] = dept
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.depts[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.depts {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.depts {
		result = append(result, *d)
	}
	return result, nil
}

func (m *mockDeptRepo) Update(_ context.Context, dept *model.Department) error {
	m.depts[dept.DepartmentID] = dept
	return nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.depts, id)
	return nil
}

func (m *mockDeptRepo) CountMembers(_ context.Context, id string) (int64, error) {
	return m.members[id], nil
}

// ── Mock InviteCodeRepository ──

type mockInviteCodeRepo struct {
	codes map[string]*model.InviteCode
}

func newMockInviteCodeRepo() *mockInviteCodeRepo {
	return &mockInviteCodeRepo{codes: make(map[string]*model.InviteCode)}
}

func (m *mockInviteCodeRepo) Create(_ context.Context, code *model.InviteCode) error {
	if code.InviteCodeID == "" {
		code.InviteCodeID = "invite-" + code.Code
	}
	m.codes[code.InviteCodeID] = code
	return nil
}

func (m *mockInviteCodeRepo) GetByCode(_ context.Context, code string) (*model.InviteCode, error) {
	for _, c := range m.codes {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInviteCodeRepo) MarkUsed(_ context.Context, inviteCodeID, usedBy string, usedAt time.Time) error {
	c, ok := m.codes[inviteCodeID]
	if !ok || c.UsedAt != nil {
		return pkgerrors.ErrStaleState
	}
	c.UsedAt = &usedAt
	c.UsedBy = &usedBy
	return nil
}

// ── Mock AcademicPeriodRepository ──

type mockPeriodRepo struct {
	periods map[string]*model.AcademicPeriod
}

func newMockPeriodRepo() *mockPeriodRepo {
	return &mockPeriodRepo{periods: make(map[string]*model.AcademicPeriod)}
}

func (m *mockPeriodRepo) Create(_ context.Context, period *model.AcademicPeriod) error {
	if period.PeriodID == "" {
		period.PeriodID = "period-" + period.Name
	}
	m.periods[period.PeriodID] = period
	return nil
}

func (m *mockPeriodRepo) GetByID(_ context.Context, id string) (*model.AcademicPeriod, error) {
	if p, ok := m.periods[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) GetActive(_ context.Context) (*model.AcademicPeriod, error) {
	for _, p := range m.periods {
		if p.IsActive {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) List(_ context.Context) ([]model.AcademicPeriod, error) {
	var result []model.AcademicPeriod
	for _, p := range m.periods {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockPeriodRepo) Update(_ context.Context, period *model.AcademicPeriod) error {
	m.periods[period.PeriodID] = period
	return nil
}

func (m *mockPeriodRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.periods, id)
	return nil
}

func (m *mockPeriodRepo) ClearActive(_ context.Context) error {
	for _, p := range m.periods {
		p.IsActive = false
	}
	return nil
}

// ── Mock ThesisProjectRepository ──

type mockProjectRepo struct {
	projects map[string]*model.ThesisProject
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[string]*model.ThesisProject)}
}

func (m *mockProjectRepo) Create(_ context.Context, project *model.ThesisProject, supervisors []model.ProjectSupervisor) error {
	if project.ProjectID == "" {
		project.ProjectID = fmt.Sprintf("project-%d", len(m.projects)+1)
	}
	for i := range supervisors {
		supervisors[i].ProjectID = project.ProjectID
	}
	project.Supervisors = supervisors
	m.projects[project.ProjectID] = project
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*model.ThesisProject, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) GetActiveByStudent(_ context.Context, studentID string) (*model.ThesisProject, error) {
	for _, p := range m.projects {
		if p.StudentID == studentID && p.Status == model.ProjectStatusActive {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) ListByAdvisor(_ context.Context, advisorID string, offset, limit int) ([]model.ThesisProject, int64, error) {
	var result []model.ThesisProject
	for _, p := range m.projects {
		if p.HasSupervisor(advisorID) {
			result = append(result, *p)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockProjectRepo) ListActiveByPeriod(_ context.Context, periodID string) ([]model.ThesisProject, error) {
	var result []model.ThesisProject
	for _, p := range m.projects {
		if p.PeriodID == periodID && p.Status == model.ProjectStatusActive {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProjectRepo) UpdateStatus(_ context.Context, project *model.ThesisProject) error {
	stored, ok := m.projects[project.ProjectID]
	if !ok || stored.Version != project.Version {
		return pkgerrors.ErrStaleState
	}
	stored.Status = project.Status
	stored.Version++
	project.Version = stored.Version
	return nil
}

// ── Mock GuidanceSessionRepository ──

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.GuidanceSession
	notes    *mockNoteRepo
	logs     *mockChangeLogRepo
	projects *mockProjectRepo
	seq      int
	// afterGet 在 GetByID 取出副本后调用，可改写存储态模拟并发写
	afterGet func(stored *model.GuidanceSession)
}

func newMockSessionRepo(notes *mockNoteRepo, logs *mockChangeLogRepo, projects *mockProjectRepo) *mockSessionRepo {
	return &mockSessionRepo{
		sessions: make(map[string]*model.GuidanceSession),
		notes:    notes,
		logs:     logs,
		projects: projects,
	}
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.GuidanceSession, participants []model.SessionParticipant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session.SessionID == "" {
		m.seq++
		session.SessionID = fmt.Sprintf("session-%d", m.seq)
	}
	if session.Version == 0 {
		session.Version = 1
	}
	for i := range participants {
		participants[i].SessionID = session.SessionID
	}
	session.Participants = participants
	if session.Project == nil {
		if p, ok := m.projects.projects[session.ProjectID]; ok {
			session.Project = p
		}
	}
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.GuidanceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		if s.Project == nil {
			if p, ok := m.projects.projects[s.ProjectID]; ok {
				s.Project = p
			}
		}
		// 与真实查询一致返回副本，存储态后续变化不影响已取出的对象
		cp := *s
		if m.afterGet != nil {
			m.afterGet(s)
		}
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) Update(_ context.Context, session *model.GuidanceSession, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[session.SessionID]
	if !ok || stored.Version != session.Version {
		return pkgerrors.ErrStaleState
	}
	if v, ok := fields["scheduled_date"]; ok {
		stored.ScheduledDate = v.(time.Time)
	}
	if v, ok := fields["start_time"]; ok {
		stored.StartTime = v.(string)
	}
	if v, ok := fields["end_time"]; ok {
		stored.EndTime = v.(string)
	}
	if v, ok := fields["location"]; ok {
		stored.Location = v.(string)
	}
	if v, ok := fields["notes"]; ok {
		notes := v.(string)
		stored.Notes = &notes
	}
	stored.Version++
	session.Version = stored.Version
	return nil
}

func (m *mockSessionRepo) TransitionStatus(_ context.Context, session *model.GuidanceSession, from, to string, _ string, extra map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.transitionLocked(session, from, to); err != nil {
		return err
	}
	if v, ok := extra["location"]; ok {
		m.sessions[session.SessionID].Location = v.(string)
	}
	return nil
}

func (m *mockSessionRepo) transitionLocked(session *model.GuidanceSession, from, to string) error {
	stored, ok := m.sessions[session.SessionID]
	if !ok || stored.Status != from || stored.Version != session.Version {
		return pkgerrors.ErrStaleState
	}
	stored.Status = to
	stored.Version++
	session.Status = to
	session.Version = stored.Version
	return nil
}

func (m *mockSessionRepo) CompleteWithNote(_ context.Context, session *model.GuidanceSession, note *model.GuidanceNote, log *model.SessionChangeLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.transitionLocked(session, model.SessionStatusApproved, model.SessionStatusCompleted); err != nil {
		return err
	}
	m.notes.insert(note)
	m.logs.insert(log)
	return nil
}

func (m *mockSessionRepo) ListByAdvisorAndDate(_ context.Context, advisorID string, date time.Time, statuses []string) ([]model.GuidanceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.GuidanceSession
	for _, s := range m.sessions {
		project, ok := m.projects.projects[s.ProjectID]
		if !ok || !project.HasSupervisor(advisorID) {
			continue
		}
		if !sameDay(s.ScheduledDate, date) || !containsStatus(statuses, s.Status) {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSessionRepo) ListByStudentAndDate(_ context.Context, studentID string, date time.Time, statuses []string) ([]model.GuidanceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.GuidanceSession
	for _, s := range m.sessions {
		if !sameDay(s.ScheduledDate, date) || !containsStatus(statuses, s.Status) {
			continue
		}
		owned := false
		if project, ok := m.projects.projects[s.ProjectID]; ok && project.StudentID == studentID {
			owned = true
		}
		for _, p := range s.Participants {
			if p.StudentID == studentID {
				owned = true
			}
		}
		if owned {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSessionRepo) ListByProject(_ context.Context, projectID string, statuses []string, offset, limit int) ([]model.GuidanceSession, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.GuidanceSession
	for _, s := range m.sessions {
		if s.ProjectID != projectID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, s.Status) {
			continue
		}
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}

func (m *mockSessionRepo) ListCompletedByProject(_ context.Context, projectID string) ([]model.GuidanceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.GuidanceSession
	for _, s := range m.sessions {
		if s.ProjectID == projectID && s.Status == model.SessionStatusCompleted {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSessionRepo) ListByAdvisorAndRange(_ context.Context, advisorID string, from, to time.Time, statuses []string) ([]model.GuidanceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.GuidanceSession
	for _, s := range m.sessions {
		project, ok := m.projects.projects[s.ProjectID]
		if !ok || !project.HasSupervisor(advisorID) {
			continue
		}
		if s.ScheduledDate.Before(from) || s.ScheduledDate.After(to) {
			continue
		}
		if !containsStatus(statuses, s.Status) {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

// ── Mock GuidanceNoteRepository ──

type mockNoteRepo struct {
	mu    sync.Mutex
	notes map[string]*model.GuidanceNote
	seq   int
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: make(map[string]*model.GuidanceNote)}
}

func (m *mockNoteRepo) insert(note *model.GuidanceNote) {
	if note.NoteID == "" {
		m.seq++
		note.NoteID = fmt.Sprintf("note-%d", m.seq)
	}
	m.notes[note.NoteID] = note
}

func (m *mockNoteRepo) Create(_ context.Context, note *model.GuidanceNote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(note)
	return nil
}

func (m *mockNoteRepo) GetBySessionID(_ context.Context, sessionID string) (*model.GuidanceNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notes {
		if n.SessionID == sessionID {
			return n, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNoteRepo) ListByProject(_ context.Context, projectID string) ([]model.GuidanceNote, error) {
	var result []model.GuidanceNote
	for _, n := range m.notes {
		result = append(result, *n)
	}
	return result, nil
}

// ── Mock SessionChangeLogRepository ──

type mockChangeLogRepo struct {
	mu   sync.Mutex
	logs []model.SessionChangeLog
}

func newMockChangeLogRepo() *mockChangeLogRepo {
	return &mockChangeLogRepo{}
}

func (m *mockChangeLogRepo) insert(log *model.SessionChangeLog) {
	if log.ChangeLogID == "" {
		log.ChangeLogID = fmt.Sprintf("log-%d", len(m.logs)+1)
	}
	log.CreatedAt = time.Now()
	m.logs = append(m.logs, *log)
}

func (m *mockChangeLogRepo) Create(_ context.Context, log *model.SessionChangeLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(log)
	return nil
}

func (m *mockChangeLogRepo) ListBySession(_ context.Context, sessionID string) ([]model.SessionChangeLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.SessionChangeLog
	for _, l := range m.logs {
		if l.SessionID == sessionID {
			result = append(result, l)
		}
	}
	return result, nil
}

// ── Mock ClassScheduleRepository ──

type mockClassScheduleRepo struct {
	schedules map[string]*model.ClassSchedule
	seq       int
}

func newMockClassScheduleRepo() *mockClassScheduleRepo {
	return &mockClassScheduleRepo{schedules: make(map[string]*model.ClassSchedule)}
}

func (m *mockClassScheduleRepo) Create(_ context.Context, schedule *model.ClassSchedule) error {
	if schedule.ClassScheduleID == "" {
		m.seq++
		schedule.ClassScheduleID = fmt.Sprintf("cs-%d", m.seq)
	}
	if schedule.Version == 0 {
		schedule.Version = 1
	}
	m.schedules[schedule.ClassScheduleID] = schedule
	return nil
}

func (m *mockClassScheduleRepo) BatchCreate(ctx context.Context, schedules []model.ClassSchedule) error {
	for i := range schedules {
		s := schedules[i]
		if err := m.Create(ctx, &s); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockClassScheduleRepo) GetByID(_ context.Context, id string) (*model.ClassSchedule, error) {
	if s, ok := m.schedules[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassScheduleRepo) ListByUser(_ context.Context, userID string) ([]model.ClassSchedule, error) {
	var result []model.ClassSchedule
	for _, s := range m.schedules {
		if s.UserID == userID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockClassScheduleRepo) Update(_ context.Context, schedule *model.ClassSchedule, fields map[string]interface{}) error {
	stored, ok := m.schedules[schedule.ClassScheduleID]
	if !ok || stored.Version != schedule.Version {
		return pkgerrors.ErrStaleState
	}
	if v, ok := fields["course_name"]; ok {
		stored.CourseName = v.(string)
	}
	if v, ok := fields["day_of_week"]; ok {
		stored.DayOfWeek = v.(int)
	}
	if v, ok := fields["start_time"]; ok {
		stored.StartTime = v.(string)
	}
	if v, ok := fields["end_time"]; ok {
		stored.EndTime = v.(string)
	}
	stored.Version++
	return nil
}

func (m *mockClassScheduleRepo) Delete(_ context.Context, id, _ string) error {
	delete(m.schedules, id)
	return nil
}

func (m *mockClassScheduleRepo) DeleteBySource(_ context.Context, userID, source, _ string) error {
	for id, s := range m.schedules {
		if s.UserID == userID && s.Source == source {
			delete(m.schedules, id)
		}
	}
	return nil
}

// ── Mock AvailabilityWindowRepository ──

type mockWindowRepo struct {
	windows map[string]*model.AvailabilityWindow
	seq     int
}

func newMockWindowRepo() *mockWindowRepo {
	return &mockWindowRepo{windows: make(map[string]*model.AvailabilityWindow)}
}

func (m *mockWindowRepo) Create(_ context.Context, window *model.AvailabilityWindow) error {
	if window.WindowID == "" {
		m.seq++
		window.WindowID = fmt.Sprintf("win-%d", m.seq)
	}
	if window.Version == 0 {
		window.Version = 1
	}
	m.windows[window.WindowID] = window
	return nil
}

func (m *mockWindowRepo) GetByID(_ context.Context, id string) (*model.AvailabilityWindow, error) {
	if w, ok := m.windows[id]; ok {
		return w, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWindowRepo) ListActiveByAdvisor(_ context.Context, advisorID string) ([]model.AvailabilityWindow, error) {
	var result []model.AvailabilityWindow
	for _, w := range m.windows {
		if w.AdvisorID == advisorID && w.IsActive {
			result = append(result, *w)
		}
	}
	return result, nil
}

func (m *mockWindowRepo) ListByAdvisor(_ context.Context, advisorID string) ([]model.AvailabilityWindow, error) {
	var result []model.AvailabilityWindow
	for _, w := range m.windows {
		if w.AdvisorID == advisorID {
			result = append(result, *w)
		}
	}
	return result, nil
}

func (m *mockWindowRepo) Update(_ context.Context, window *model.AvailabilityWindow, fields map[string]interface{}) error {
	stored, ok := m.windows[window.WindowID]
	if !ok || stored.Version != window.Version {
		return pkgerrors.ErrStaleState
	}
	if v, ok := fields["start_time"]; ok {
		stored.StartTime = v.(string)
	}
	if v, ok := fields["end_time"]; ok {
		stored.EndTime = v.(string)
	}
	if v, ok := fields["is_active"]; ok {
		stored.IsActive = v.(bool)
	}
	stored.Version++
	return nil
}

func (m *mockWindowRepo) Delete(_ context.Context, id, _ string) error {
	delete(m.windows, id)
	return nil
}

// ── Mock UnavailabilityBlockRepository ──

type mockBlockRepo struct {
	blocks map[string]*model.UnavailabilityBlock
	seq    int
}

func newMockBlockRepo() *mockBlockRepo {
	return &mockBlockRepo{blocks: make(map[string]*model.UnavailabilityBlock)}
}

func (m *mockBlockRepo) Create(_ context.Context, block *model.UnavailabilityBlock) error {
	if block.BlockID == "" {
		m.seq++
		block.BlockID = fmt.Sprintf("block-%d", m.seq)
	}
	if block.Version == 0 {
		block.Version = 1
	}
	m.blocks[block.BlockID] = block
	return nil
}

func (m *mockBlockRepo) GetByID(_ context.Context, id string) (*model.UnavailabilityBlock, error) {
	if b, ok := m.blocks[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBlockRepo) ListByAdvisor(_ context.Context, advisorID string) ([]model.UnavailabilityBlock, error) {
	var result []model.UnavailabilityBlock
	for _, b := range m.blocks {
		if b.AdvisorID == advisorID {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockBlockRepo) Update(_ context.Context, block *model.UnavailabilityBlock, fields map[string]interface{}) error {
	stored, ok := m.blocks[block.BlockID]
	if !ok || stored.Version != block.Version {
		return pkgerrors.ErrStaleState
	}
	if v, ok := fields["start_time"]; ok {
		stored.StartTime = v.(string)
	}
	if v, ok := fields["end_time"]; ok {
		stored.EndTime = v.(string)
	}
	stored.Version++
	return nil
}

func (m *mockBlockRepo) Delete(_ context.Context, id, _ string) error {
	delete(m.blocks, id)
	return nil
}

// ── Mock RequirementPolicyRepository ──

type mockPolicyRepo struct {
	policies map[string]*model.RequirementPolicy
}

func newMockPolicyRepo() *mockPolicyRepo {
	return &mockPolicyRepo{policies: make(map[string]*model.RequirementPolicy)}
}

func (m *mockPolicyRepo) GetByThesisType(_ context.Context, thesisType string) (*model.RequirementPolicy, error) {
	if p, ok := m.policies[thesisType]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPolicyRepo) List(_ context.Context) ([]model.RequirementPolicy, error) {
	var result []model.RequirementPolicy
	for _, p := range m.policies {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockPolicyRepo) Update(_ context.Context, policy *model.RequirementPolicy) error {
	m.policies[policy.ThesisType] = policy
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications []*model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if notification.NotificationID == "" {
		notification.NotificationID = fmt.Sprintf("notif-%d", len(m.notifications)+1)
	}
	m.notifications = append(m.notifications, notification)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, *n)
	}
	return result, int64(len(result)), nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.NotificationID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

// ── 共用辅助 ──

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func containsStatus(statuses []string, status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
