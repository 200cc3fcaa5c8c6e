package api

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// I18nManager 国际化管理器
type I18nManager struct {
	messages map[string]map[string]string // lang -> key -> message
}

var defaultI18nManager *I18nManager

func init() {
	defaultI18nManager = NewI18nManager()
	defaultI18nManager.LoadMessages("en", map[string]string{
		"error.not_found":               "Handover record not found",
		"error.action_not_permitted":    "Action not permitted",
		"error.concurrent_modification": "The record was modified by another request, reload and retry",
		"error.validation":              "Invalid input",
		"error.storage_unavailable":     "Storage is temporarily unavailable",
		"error.bad_request":             "Bad request",
		"error.too_many_requests":       "Too many requests",
		"error.internal_error":          "Internal server error",
		"success.created":               "Created successfully",
		"success.updated":               "Updated successfully",
	})
	defaultI18nManager.LoadMessages("ja", map[string]string{
		"error.not_found":               "引継ぎデータが見つかりません",
		"error.action_not_permitted":    "この操作は許可されていません",
		"error.concurrent_modification": "他の操作によって更新されました。再読み込みしてください",
		"error.validation":              "入力内容に誤りがあります",
		"error.storage_unavailable":     "データベースに接続できません",
		"error.bad_request":             "リクエストが不正です",
		"error.too_many_requests":       "リクエストが多すぎます",
		"error.internal_error":          "サーバー内部エラー",
		"success.created":               "登録しました",
		"success.updated":               "更新しました",
	})
	defaultI18nManager.LoadMessages("zh", map[string]string{
		"error.not_found":               "交接记录不存在",
		"error.action_not_permitted":    "不允许该操作",
		"error.concurrent_modification": "记录已被其他请求修改,请刷新后重试",
		"error.validation":              "输入不合法",
		"error.storage_unavailable":     "存储暂不可用",
		"error.bad_request":             "请求错误",
		"error.too_many_requests":       "请求过于频繁",
		"error.internal_error":          "服务器内部错误",
		"success.created":               "创建成功",
		"success.updated":               "更新成功",
	})
}

// NewI18nManager 创建国际化管理器
func NewI18nManager() *I18nManager {
	return &I18nManager{
		messages: make(map[string]map[string]string),
	}
}

// LoadMessages 加载语言消息
func (m *I18nManager) LoadMessages(lang string, messages map[string]string) {
	m.messages[lang] = messages
}

// Translate 翻译消息
func (m *I18nManager) Translate(lang, key string) string {
	if messages, ok := m.messages[lang]; ok {
		if message, ok := messages[key]; ok {
			return message
		}
	}
	// 如果找不到翻译，尝试使用英文
	if lang != "en" {
		if messages, ok := m.messages["en"]; ok {
			if message, ok := messages[key]; ok {
				return message
			}
		}
	}
	// 如果还是找不到，返回 key
	return key
}

// I18nMiddleware 国际化中间件
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := "en" // 默认语言

		// 方式 1: 从查询参数获取语言
		if queryLang := c.Query("lang"); queryLang != "" {
			lang = normalizeLanguage(queryLang)
		} else if headerLang := c.GetHeader("Accept-Language"); headerLang != "" {
			// 方式 2: 从 Accept-Language 头获取语言
			lang = parseAcceptLanguage(headerLang)
		}

		// 将语言信息存储到上下文
		c.Set("language", lang)

		c.Next()
	}
}

// GetLanguage 从上下文获取语言
func GetLanguage(c *gin.Context) string {
	if lang, exists := c.Get("language"); exists {
		if l, ok := lang.(string); ok {
			return l
		}
	}
	return "en" // 默认语言
}

// T 翻译消息（使用默认管理器）
func T(c *gin.Context, key string) string {
	lang := GetLanguage(c)
	return defaultI18nManager.Translate(lang, key)
}

// normalizeLanguage 规范化语言代码
func normalizeLanguage(lang string) string {
	lang = strings.ToLower(lang)
	for _, supported := range []string{"ja", "zh", "en"} {
		if strings.HasPrefix(lang, supported) {
			return supported
		}
	}
	return lang
}

// parseAcceptLanguage 解析 Accept-Language 头
func parseAcceptLanguage(header string) string {
	// 解析 Accept-Language: zh-CN,zh;q=0.9,en;q=0.8
	parts := strings.Split(header, ",")
	if len(parts) > 0 {
		// 取第一个语言代码
		lang := strings.TrimSpace(parts[0])
		// 移除质量值（如果有）
		if idx := strings.Index(lang, ";"); idx != -1 {
			lang = lang[:idx]
		}
		return normalizeLanguage(lang)
	}
	return "en"
}

