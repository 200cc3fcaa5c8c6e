package utils

import (
	"errors"
	"regexp"
	"strings"
)

// LikeEscape LIKE 模式使用的转义字符
// 使用 '!' 而不是反斜杠,在 PostgreSQL、MySQL 与 SQLite 中行为一致
const LikeEscape = "!"

var sortFieldPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateSortField 验证排序列名,只允许小写字母、数字和下划线
func ValidateSortField(field string) error {
	if field == "" {
		return errors.New("sort field cannot be empty")
	}
	if !sortFieldPattern.MatchString(field) {
		return errors.New("invalid sort field format")
	}
	return nil
}

// ContainsPattern 构造不区分大小写的子串匹配模式,转义 LIKE 通配符
func ContainsPattern(keyword string) string {
	r := strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")
	return "%" + r.Replace(strings.ToLower(keyword)) + "%"
}
