package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("handover record not found")
	// ErrActionNotPermitted 当前状态或操作人不允许该操作
	ErrActionNotPermitted = errors.New("action not permitted")
	// ErrConcurrentModification 条件写入失败,记录已被其他请求修改
	ErrConcurrentModification = errors.New("concurrent modification")
	// ErrValidation 输入不合法
	ErrValidation = errors.New("validation error")
	// ErrStorageUnavailable 存储层故障
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// DeniedError 校验器拒绝的操作
type DeniedError struct {
	Action Action
	Status StatusCode
	Reason DenyReason
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s not permitted in status %s: %s", e.Action, e.Status, e.Reason)
}

func (e *DeniedError) Unwrap() error {
	return ErrActionNotPermitted
}

// ValidationError 字段校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// StorageError 包装存储层错误
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}
