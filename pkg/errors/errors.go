package errors

import "errors"

// ErrStaleState 并发修改冲突：写入时发现状态已被其他操作改变（条件更新未命中）
// 调用方应重新拉取最新记录后重试，或提示"该记录已被他人处理"
var ErrStaleState = errors.New("记录状态已被其他操作修改，请刷新后重试")
