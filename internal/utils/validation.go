package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// CustomerIDLength 客户编号固定长度（char(7)）
const CustomerIDLength = 7

var (
	customerIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	workerIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_.@-]+$`)
)

// ValidateCustomerID 验证客户编号
func ValidateCustomerID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if utf8.RuneCountInString(id) != CustomerIDLength {
		return ErrCustomerIDLength
	}
	if !customerIDPattern.MatchString(id) {
		return ErrInvalidIDFormat
	}
	return nil
}

// ValidateWorkerID 验证员工编号
func ValidateWorkerID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if len(id) > 16 {
		return ErrIDTooLong
	}
	if !workerIDPattern.MatchString(id) {
		return ErrInvalidIDFormat
	}
	return nil
}

// ValidateCompanyName 验证公司名称
func ValidateCompanyName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(trimmed) > 255 {
		return ErrNameTooLong
	}
	if containsDangerousChars(trimmed) {
		return ErrDangerousChars
	}
	return nil
}

// TrimAndLimit 去除首尾空白并检查长度,maxLen <= 0 表示不限制
func TrimAndLimit(s string, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(s)
	if maxLen > 0 && utf8.RuneCountInString(trimmed) > maxLen {
		return "", ErrStringTooLong
	}
	return trimmed, nil
}

// containsDangerousChars 检查常见的 XSS 与 SQL 注入片段
func containsDangerousChars(s string) bool {
	dangerousPatterns := []string{
		"<script",
		"</script>",
		"javascript:",
		"onerror=",
		"onload=",
		"';",
		"drop table",
		"delete from",
		"insert into",
		"union select",
		"<iframe",
	}

	lower := strings.ToLower(s)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// 错误定义
var (
	ErrEmptyName        = &ValidationError{Code: "EMPTY_NAME", Message: "name cannot be empty"}
	ErrNameTooLong      = &ValidationError{Code: "NAME_TOO_LONG", Message: "name exceeds maximum length"}
	ErrDangerousChars   = &ValidationError{Code: "DANGEROUS_CHARS", Message: "name contains dangerous characters"}
	ErrEmptyID          = &ValidationError{Code: "EMPTY_ID", Message: "id cannot be empty"}
	ErrInvalidIDFormat  = &ValidationError{Code: "INVALID_ID_FORMAT", Message: "id contains invalid characters"}
	ErrIDTooLong        = &ValidationError{Code: "ID_TOO_LONG", Message: "id exceeds maximum length"}
	ErrCustomerIDLength = &ValidationError{Code: "INVALID_CUSTOMER_ID", Message: "customer id must be exactly 7 characters"}
	ErrStringTooLong    = &ValidationError{Code: "STRING_TOO_LONG", Message: "string exceeds maximum length"}
)

// ValidationError 验证错误
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
