package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gradguide/backend/config"
	"gradguide/backend/internal/dto"
	"gradguide/backend/internal/model"
	"gradguide/backend/internal/repository"
	"gradguide/backend/pkg/timeutil"
)

// ── 可用性模块业务错误 ──

var (
	ErrWindowNotFound    = errors.New("开放窗口不存在")
	ErrBlockNotFound     = errors.New("不可用时段不存在")
	ErrNotOwner          = errors.New("只能操作自己的数据")
	ErrBadTimeRange      = errors.New("时间区间不合法：开始时间必须早于结束时间")
	ErrRepeatFieldsBad   = errors.New("weekly 须指定 day_of_week，once 须指定 specific_date")
	ErrWindowOverlapping = errors.New("与已有窗口时间重叠")
)

// AvailabilityService 导师可用性业务接口
//
// 可用时段解析规则：
//  1. 取当日生效且激活的开放窗口为基础区间
//  2. 依次减去：不可用时段、导师授课、处于 PENDING/APPROVED/OFFERED 的指导会话
//  3. 丢弃短于 min_session_minutes 的碎片区间
type AvailabilityService interface {
	CreateWindow(ctx context.Context, advisorID string, req *dto.CreateWindowRequest) (*dto.WindowResponse, error)
	UpdateWindow(ctx context.Context, windowID, advisorID string, req *dto.UpdateWindowRequest) (*dto.WindowResponse, error)
	DeleteWindow(ctx context.Context, windowID, advisorID string) error
	ListWindows(ctx context.Context, advisorID string) ([]dto.WindowResponse, error)
	CreateBlock(ctx context.Context, advisorID string, req *dto.CreateBlockRequest) (*dto.BlockResponse, error)
	DeleteBlock(ctx context.Context, blockID, advisorID string) error
	ListBlocks(ctx context.Context, advisorID string) ([]dto.BlockResponse, error)
	// Resolve 解析某导师某日的可预约空闲区间
	Resolve(ctx context.Context, advisorID string, date time.Time) (*dto.AvailabilityResponse, error)
}

type availabilityService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAvailabilityService 创建 AvailabilityService 实例
func NewAvailabilityService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) AvailabilityService {
	return &availabilityService{cfg: cfg, repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// 窗口管理
// ════════════════════════════════════════════════════════════

func (s *availabilityService) CreateWindow(ctx context.Context, advisorID string, req *dto.CreateWindowRequest) (*dto.WindowResponse, error) {
	if err := validateTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if err := validateRepeatFields(req.RepeatType, req.DayOfWeek, req.SpecificDate); err != nil {
		return nil, err
	}

	window := &model.AvailabilityWindow{
		AdvisorID:  advisorID,
		RepeatType: req.RepeatType,
		DayOfWeek:  req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		IsActive:   true,
	}
	if req.SpecificDate != nil {
		d, _ := time.Parse(dateLayout, *req.SpecificDate)
		window.SpecificDate = &d
	}
	window.CreatedBy = &advisorID
	window.UpdatedBy = &advisorID

	// 同导师同重复模式下的窗口不允许重叠
	existing, err := s.repo.AvailabilityWindow.ListActiveByAdvisor(ctx, advisorID)
	if err != nil {
		s.logger.Error("查询已有窗口失败", zap.Error(err))
		return nil, err
	}
	for i := range existing {
		if windowsMayOverlap(&existing[i], window) {
			overlap, err := timeutil.OverlapsHHMM(existing[i].StartTime, existing[i].EndTime, window.StartTime, window.EndTime)
			if err != nil {
				return nil, err
			}
			if overlap {
				return nil, ErrWindowOverlapping
			}
		}
	}

	if err := s.repo.AvailabilityWindow.Create(ctx, window); err != nil {
		s.logger.Error("创建开放窗口失败", zap.Error(err))
		return nil, err
	}

	resp := toWindowResponse(window)
	return &resp, nil
}

func (s *availabilityService) UpdateWindow(ctx context.Context, windowID, advisorID string, req *dto.UpdateWindowRequest) (*dto.WindowResponse, error) {
	window, err := s.repo.AvailabilityWindow.GetByID(ctx, windowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWindowNotFound
		}
		s.logger.Error("查询开放窗口失败", zap.Error(err))
		return nil, err
	}
	if window.AdvisorID != advisorID {
		return nil, ErrNotOwner
	}

	fields := map[string]interface{}{"updated_by": advisorID}
	start, end := window.StartTime, window.EndTime
	if req.StartTime != nil {
		start = *req.StartTime
		fields["start_time"] = start
	}
	if req.EndTime != nil {
		end = *req.EndTime
		fields["end_time"] = end
	}
	if err := validateTimeRange(start, end); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if err := s.repo.AvailabilityWindow.Update(ctx, window, fields); err != nil {
		s.logger.Error("更新开放窗口失败", zap.String("id", windowID), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.AvailabilityWindow.GetByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	resp := toWindowResponse(updated)
	return &resp, nil
}

func (s *availabilityService) DeleteWindow(ctx context.Context, windowID, advisorID string) error {
	window, err := s.repo.AvailabilityWindow.GetByID(ctx, windowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWindowNotFound
		}
		return err
	}
	if window.AdvisorID != advisorID {
		return ErrNotOwner
	}
	return s.repo.AvailabilityWindow.Delete(ctx, windowID, advisorID)
}

func (s *availabilityService) ListWindows(ctx context.Context, advisorID string) ([]dto.WindowResponse, error) {
	windows, err := s.repo.AvailabilityWindow.ListByAdvisor(ctx, advisorID)
	if err != nil {
		s.logger.Error("查询开放窗口列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.WindowResponse, 0, len(windows))
	for i := range windows {
		result = append(result, toWindowResponse(&windows[i]))
	}
	return result, nil
}

// ════════════════════════════════════════════════════════════
// 不可用时段管理
// ════════════════════════════════════════════════════════════

func (s *availabilityService) CreateBlock(ctx context.Context, advisorID string, req *dto.CreateBlockRequest) (*dto.BlockResponse, error) {
	if err := validateTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if err := validateRepeatFields(req.RepeatType, req.DayOfWeek, req.SpecificDate); err != nil {
		return nil, err
	}

	block := &model.UnavailabilityBlock{
		AdvisorID:  advisorID,
		RepeatType: req.RepeatType,
		DayOfWeek:  req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Reason:     req.Reason,
	}
	if req.SpecificDate != nil {
		d, _ := time.Parse(dateLayout, *req.SpecificDate)
		block.SpecificDate = &d
	}
	block.CreatedBy = &advisorID
	block.UpdatedBy = &advisorID

	if err := s.repo.UnavailabilityBlock.Create(ctx, block); err != nil {
		s.logger.Error("创建不可用时段失败", zap.Error(err))
		return nil, err
	}

	resp := toBlockResponse(block)
	return &resp, nil
}

func (s *availabilityService) DeleteBlock(ctx context.Context, blockID, advisorID string) error {
	block, err := s.repo.UnavailabilityBlock.GetByID(ctx, blockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBlockNotFound
		}
		return err
	}
	if block.AdvisorID != advisorID {
		return ErrNotOwner
	}
	return s.repo.UnavailabilityBlock.Delete(ctx, blockID, advisorID)
}

func (s *availabilityService) ListBlocks(ctx context.Context, advisorID string) ([]dto.BlockResponse, error) {
	blocks, err := s.repo.UnavailabilityBlock.ListByAdvisor(ctx, advisorID)
	if err != nil {
		s.logger.Error("查询不可用时段列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.BlockResponse, 0, len(blocks))
	for i := range blocks {
		result = append(result, toBlockResponse(&blocks[i]))
	}
	return result, nil
}

// ════════════════════════════════════════════════════════════
// Resolve — 可用时段解析
// ════════════════════════════════════════════════════════════

// interval 分钟制半开区间 [start, end)
type interval struct {
	start int
	end   int
}

func (s *availabilityService) Resolve(ctx context.Context, advisorID string, date time.Time) (*dto.AvailabilityResponse, error) {
	dow := timeutil.DayOfWeek(date)

	// 1. 基础区间：当日生效且激活的窗口
	windows, err := s.repo.AvailabilityWindow.ListActiveByAdvisor(ctx, advisorID)
	if err != nil {
		s.logger.Error("查询开放窗口失败", zap.Error(err))
		return nil, err
	}
	var base []interval
	for i := range windows {
		if !windows[i].CoversDate(date, dow) {
			continue
		}
		iv, err := toInterval(windows[i].StartTime, windows[i].EndTime)
		if err != nil {
			continue
		}
		base = append(base, iv)
	}
	base = normalizeIntervals(base)

	resp := &dto.AvailabilityResponse{
		AdvisorID: advisorID,
		Date:      date.Format(dateLayout),
		DayOfWeek: dow,
		Slots:     []dto.FreeSlot{},
	}
	if len(base) == 0 {
		return resp, nil
	}

	// 2. 收集占用区间
	var busy []interval

	blocks, err := s.repo.UnavailabilityBlock.ListByAdvisor(ctx, advisorID)
	if err != nil {
		s.logger.Error("查询不可用时段失败", zap.Error(err))
		return nil, err
	}
	for i := range blocks {
		if !blocks[i].CoversDate(date, dow) {
			continue
		}
		if iv, err := toInterval(blocks[i].StartTime, blocks[i].EndTime); err == nil {
			busy = append(busy, iv)
		}
	}

	teaching, err := s.repo.ClassSchedule.ListByUser(ctx, advisorID)
	if err != nil {
		s.logger.Error("查询授课安排失败", zap.Error(err))
		return nil, err
	}
	for i := range teaching {
		if !teaching[i].CoversDate(date, dow) {
			continue
		}
		if iv, err := toInterval(teaching[i].StartTime, teaching[i].EndTime); err == nil {
			busy = append(busy, iv)
		}
	}

	statuses := []string{model.SessionStatusPending, model.SessionStatusApproved, model.SessionStatusOffered}
	sessions, err := s.repo.GuidanceSession.ListByAdvisorAndDate(ctx, advisorID, timeutil.DateOnly(date), statuses)
	if err != nil {
		s.logger.Error("查询指导会话失败", zap.Error(err))
		return nil, err
	}
	for i := range sessions {
		if iv, err := toInterval(sessions[i].StartTime, sessions[i].EndTime); err == nil {
			busy = append(busy, iv)
		}
	}

	// 3. 区间减法 + 碎片过滤
	free := subtractIntervals(base, busy)
	minLen := s.cfg.Guidance.MinSessionMinutes
	for _, iv := range free {
		if iv.end-iv.start < minLen {
			continue
		}
		resp.Slots = append(resp.Slots, dto.FreeSlot{
			StartTime: minutesToHHMM(iv.start),
			EndTime:   minutesToHHMM(iv.end),
		})
	}
	return resp, nil
}

// ── 区间运算 ──

// normalizeIntervals 排序并合并重叠/相邻区间
func normalizeIntervals(ivs []interval) []interval {
	if len(ivs) == 0 {
		return ivs
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].start < ivs[j].start })
	merged := []interval{ivs[0]}
	for _, iv := range ivs[1:] {
		last := &merged[len(merged)-1]
		if iv.start <= last.end {
			if iv.end > last.end {
				last.end = iv.end
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// subtractIntervals 从 base 中减去 busy，busy 无需预先归并
func subtractIntervals(base, busy []interval) []interval {
	busy = normalizeIntervals(busy)
	var result []interval
	for _, b := range base {
		cur := b
		for _, u := range busy {
			if u.end <= cur.start || u.start >= cur.end {
				continue
			}
			if u.start > cur.start {
				result = append(result, interval{start: cur.start, end: u.start})
			}
			if u.end >= cur.end {
				cur.start = cur.end
				break
			}
			cur.start = u.end
		}
		if cur.start < cur.end {
			result = append(result, cur)
		}
	}
	return result
}

func toInterval(start, end string) (interval, error) {
	a, err := timeutil.ToMinutes(start)
	if err != nil {
		return interval{}, err
	}
	b, err := timeutil.ToMinutes(end)
	if err != nil {
		return interval{}, err
	}
	return interval{start: a, end: b}, nil
}

func minutesToHHMM(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ── 校验与转换 ──

func validateTimeRange(start, end string) error {
	if !timeutil.IsValid(start) || !timeutil.IsValid(end) {
		return timeutil.ErrBadTimeFormat
	}
	if start >= end {
		return ErrBadTimeRange
	}
	return nil
}

func validateRepeatFields(repeatType string, dayOfWeek *int, specificDate *string) error {
	switch repeatType {
	case model.RepeatWeekly:
		if dayOfWeek == nil {
			return ErrRepeatFieldsBad
		}
	case model.RepeatOnce:
		if specificDate == nil {
			return ErrRepeatFieldsBad
		}
	default:
		return ErrRepeatFieldsBad
	}
	return nil
}

// windowsMayOverlap 判断两窗口是否可能作用于同一天
func windowsMayOverlap(a, b *model.AvailabilityWindow) bool {
	if a.RepeatType == model.RepeatWeekly && b.RepeatType == model.RepeatWeekly {
		return a.DayOfWeek != nil && b.DayOfWeek != nil && *a.DayOfWeek == *b.DayOfWeek
	}
	if a.RepeatType == model.RepeatOnce && b.RepeatType == model.RepeatOnce {
		return a.SpecificDate != nil && b.SpecificDate != nil && timeutil.SameDate(*a.SpecificDate, *b.SpecificDate)
	}
	// weekly vs once: once 日期落在 weekly 的星期上
	weekly, once := a, b
	if a.RepeatType == model.RepeatOnce {
		weekly, once = b, a
	}
	return weekly.DayOfWeek != nil && once.SpecificDate != nil &&
		*weekly.DayOfWeek == timeutil.DayOfWeek(*once.SpecificDate)
}

func toWindowResponse(window *model.AvailabilityWindow) dto.WindowResponse {
	resp := dto.WindowResponse{
		ID:         window.WindowID,
		AdvisorID:  window.AdvisorID,
		RepeatType: window.RepeatType,
		DayOfWeek:  window.DayOfWeek,
		StartTime:  window.StartTime,
		EndTime:    window.EndTime,
		IsActive:   window.IsActive,
		CreatedAt:  window.CreatedAt.Format(time.RFC3339),
	}
	if window.SpecificDate != nil {
		d := window.SpecificDate.Format(dateLayout)
		resp.SpecificDate = &d
	}
	return resp
}

func toBlockResponse(block *model.UnavailabilityBlock) dto.BlockResponse {
	resp := dto.BlockResponse{
		ID:         block.BlockID,
		AdvisorID:  block.AdvisorID,
		RepeatType: block.RepeatType,
		DayOfWeek:  block.DayOfWeek,
		StartTime:  block.StartTime,
		EndTime:    block.EndTime,
		Reason:     block.Reason,
		CreatedAt:  block.CreatedAt.Format(time.RFC3339),
	}
	if block.SpecificDate != nil {
		d := block.SpecificDate.Format(dateLayout)
		resp.SpecificDate = &d
	}
	return resp
}
