package code

import (
	"strings"
)

// lang type, used to store English and Chinese text
// lang 类型，用来存储英文和中文文本
type lang struct {
	en string // English // 英文
	zh string // Chinese // 中文
}

const FALLBACK_LNG = "en"

// GetMessage returns the message for the language, falling back to English
// GetMessage 根据传入的语言返回相应的消息，缺失时回退到英文
func (l lang) GetMessage(language string) string {
	switch NormalizeLang(language) {
	case "zh":
		if l.zh != "" {
			return l.zh
		}
	}
	return l.en
}

// GetSupportedLanguages returns all languages messages are written in
// GetSupportedLanguages 返回支持的所有语言
func GetSupportedLanguages() []string {
	return []string{"en", "zh"}
}

// NormalizeLang maps tags such as "zh-CN", "zh_Hans" or "EN-us" onto a supported language
// NormalizeLang 将 "zh-CN"、"zh_Hans" 等语言标签归一为支持的语言
func NormalizeLang(language string) string {
	language = strings.ToLower(strings.ReplaceAll(language, "_", "-"))
	if i := strings.IndexByte(language, '-'); i > 0 {
		language = language[:i]
	}
	for _, l := range GetSupportedLanguages() {
		if l == language {
			return l
		}
	}
	return FALLBACK_LNG
}
