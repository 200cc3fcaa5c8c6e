package utils_test

import (
	"strings"
	"testing"

	"github.com/miqbaljintern/Intern-Iwasaki/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateCustomerID 测试客户编号校验
func TestValidateCustomerID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr error
	}{
		{"C000001", nil},
		{"", utils.ErrEmptyID},
		{"C0001", utils.ErrCustomerIDLength},
		{"C00000001", utils.ErrCustomerIDLength},
		{"C00'--1", utils.ErrInvalidIDFormat},
	}
	for _, tt := range tests {
		err := utils.ValidateCustomerID(tt.id)
		if tt.wantErr == nil {
			assert.NoError(t, err, tt.id)
		} else {
			assert.Equal(t, tt.wantErr, err, tt.id)
		}
	}
}

// TestValidateWorkerID 测试员工编号校验
func TestValidateWorkerID(t *testing.T) {
	assert.NoError(t, utils.ValidateWorkerID("W001"))
	assert.NoError(t, utils.ValidateWorkerID("sato.h@corp"))
	assert.Equal(t, utils.ErrEmptyID, utils.ValidateWorkerID(""))
	assert.Equal(t, utils.ErrIDTooLong, utils.ValidateWorkerID(strings.Repeat("W", 17)))
	assert.Equal(t, utils.ErrInvalidIDFormat, utils.ValidateWorkerID("W001 OR 1=1"))
}

// TestValidateCompanyName 测试公司名称 XSS 与 SQL 注入防护
func TestValidateCompanyName(t *testing.T) {
	assert.NoError(t, utils.ValidateCompanyName("株式会社サンプル"))
	assert.Equal(t, utils.ErrEmptyName, utils.ValidateCompanyName("   "))
	assert.Equal(t, utils.ErrNameTooLong, utils.ValidateCompanyName(strings.Repeat("a", 256)))
	assert.Equal(t, utils.ErrDangerousChars, utils.ValidateCompanyName(`<script>alert('XSS')</script>`))
	assert.Equal(t, utils.ErrDangerousChars, utils.ValidateCompanyName("x'; DROP TABLE t_handover"))
}

// TestTrimAndLimit 测试去除空白与长度限制
func TestTrimAndLimit(t *testing.T) {
	s, err := utils.TrimAndLimit("  ok  ", 5)
	require.NoError(t, err)
	assert.Equal(t, "ok", s)

	_, err = utils.TrimAndLimit("toolong", 3)
	assert.Equal(t, utils.ErrStringTooLong, err)

	s, err = utils.TrimAndLimit(strings.Repeat("あ", 10), 0)
	require.NoError(t, err)
	assert.Len(t, []rune(s), 10)
}

// TestContainsPattern 测试 LIKE 通配符转义
func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%acme%", utils.ContainsPattern("ACME"))
	assert.Equal(t, "%100!%%", utils.ContainsPattern("100%"))
	assert.Equal(t, "%a!_b%", utils.ContainsPattern("a_b"))
	assert.Equal(t, "%!!x%", utils.ContainsPattern("!x"))
}

// TestValidateSortField 测试排序列名校验
func TestValidateSortField(t *testing.T) {
	assert.NoError(t, utils.ValidateSortField("dt_submitted"))
	assert.Error(t, utils.ValidateSortField(""))
	assert.Error(t, utils.ValidateSortField("s_name; DROP TABLE"))
	assert.Error(t, utils.ValidateSortField("S_NAME"))
}
