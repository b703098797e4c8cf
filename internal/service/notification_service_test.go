package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"gradguide/backend/internal/dto"
)

func setupNotificationTest() (NotificationService, *testSessionRepos) {
	repos := newTestSessionRepos()
	svc := NewNotificationService(repos.toRepository(), zap.NewNop())
	return svc, repos
}

func TestNotificationLifecycle(t *testing.T) {
	svc, _ := setupNotificationTest()
	ctx := context.Background()

	svc.NotifySessionEvent(ctx, "student-1", "SESSION_APPROVED", "预约已批准", "导师已批准你的预约", "session-1")
	svc.NotifySessionEvent(ctx, "student-1", "SESSION_REJECTED", "预约被驳回", "时间冲突", "session-2")
	svc.NotifySessionEvent(ctx, "advisor-1", "SESSION_REQUESTED", "新预约申请", "张三发起了预约", "session-3")

	list, total, err := svc.List(ctx, "student-1", &dto.NotificationListRequest{})
	if err != nil {
		t.Fatalf("查询通知列表失败: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("student-1 应有 2 条通知，实际 total=%d", total)
	}
	if list[0].RelatedID == nil || list[0].IsRead {
		t.Error("新通知应未读且携带关联会话 ID")
	}

	count, err := svc.CountUnread(ctx, "student-1")
	if err != nil {
		t.Fatalf("查询未读数失败: %v", err)
	}
	if count != 2 {
		t.Errorf("未读数应为 2，实际=%d", count)
	}

	// 标记单条已读
	if err := svc.MarkRead(ctx, list[0].ID, "student-1"); err != nil {
		t.Fatalf("标记已读失败: %v", err)
	}
	if count, _ = svc.CountUnread(ctx, "student-1"); count != 1 {
		t.Errorf("标记后未读数应为 1，实际=%d", count)
	}

	// 只看未读
	unread, total, err := svc.List(ctx, "student-1", &dto.NotificationListRequest{UnreadOnly: true})
	if err != nil {
		t.Fatalf("查询未读列表失败: %v", err)
	}
	if total != 1 || len(unread) != 1 {
		t.Errorf("未读过滤应剩 1 条，实际 total=%d", total)
	}

	// 全部已读
	if err := svc.MarkAllRead(ctx, "student-1"); err != nil {
		t.Fatalf("全部标记已读失败: %v", err)
	}
	if count, _ = svc.CountUnread(ctx, "student-1"); count != 0 {
		t.Errorf("全部已读后未读数应为 0，实际=%d", count)
	}
}

func TestNotificationMarkReadScope(t *testing.T) {
	svc, _ := setupNotificationTest()
	ctx := context.Background()

	svc.NotifySessionEvent(ctx, "student-1", "SESSION_OFFERED", "导师邀约", "王老师向你发起邀约", "session-1")
	list, _, err := svc.List(ctx, "student-1", &dto.NotificationListRequest{})
	if err != nil || len(list) != 1 {
		t.Fatalf("准备数据失败: %v", err)
	}

	// 他人不能标记别人的通知
	if err := svc.MarkRead(ctx, list[0].ID, "student-2"); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("越权标记应返回 ErrNotificationNotFound，实际=%v", err)
	}

	if err := svc.MarkRead(ctx, "ghost", "student-1"); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("标记不存在通知应返回 ErrNotificationNotFound，实际=%v", err)
	}
}
