/*
 * @author: sun977
 * @date: 2025.09.04
 * @description: 业务错误类型
 * @func:
 * 1.ValidationError 参数校验失败,同步拒绝,存储不变
 * 2.TransientStoreError 底层存储暂不可用,调用方可重试
 */
package weather

import (
	"errors"
	"fmt"
)

// ValidationError 参数校验错误
// 在引入非法值的调用处同步拒绝，存储保持不变
type ValidationError struct {
	Field   string // 出错字段
	Message string // 错误描述
}

// Error 实现error接口
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError 创建参数校验错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError 判断是否为参数校验错误
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransientStoreError 存储暂时不可用错误
// 对请求响应调用方表现为可重试失败;对调度器表现为跳过本周期
type TransientStoreError struct {
	Op  string // 失败的操作
	Err error  // 底层错误
}

// Error 实现error接口
func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

// Unwrap 返回底层错误
func (e *TransientStoreError) Unwrap() error {
	return e.Err
}

// NewTransientStoreError 创建存储暂时不可用错误
func NewTransientStoreError(op string, err error) *TransientStoreError {
	return &TransientStoreError{Op: op, Err: err}
}

// IsTransientStoreError 判断是否为存储暂时不可用错误
func IsTransientStoreError(err error) bool {
	var te *TransientStoreError
	return errors.As(err, &te)
}
