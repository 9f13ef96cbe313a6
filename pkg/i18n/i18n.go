// Package i18n holds the message catalogs of the link editor and resolves keys per request
// Package i18n 管理链接编辑器的多语言消息目录，并按请求解析消息键
package i18n

import (
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/pkg/errors"
)

// Func resolves a message key; unknown keys resolve to themselves
// Func 解析消息键，未知的键原样返回
type Func func(key string, params ...string) string

// Catalog maps locale -> key -> text
// Catalog 语言 -> 键 -> 文本
type Catalog map[string]map[string]string

// NewUniversalTranslator creates the translator with en (fallback) and zh and loads the catalogs
// NewUniversalTranslator 创建 en（回退语言）与 zh 翻译器并加载消息目录
func NewUniversalTranslator(catalogs ...Catalog) (*ut.UniversalTranslator, error) {
	uni := ut.New(en.New(), en.New(), zh.New())
	for _, catalog := range catalogs {
		for locale, messages := range catalog {
			trans, found := uni.GetTranslator(locale)
			if !found {
				return nil, errors.Errorf("i18n: locale %q is not supported", locale)
			}
			for key, text := range messages {
				if err := trans.Add(key, text, true); err != nil {
					return nil, errors.Wrapf(err, "i18n: add %q for %s", key, locale)
				}
			}
		}
	}
	return uni, nil
}

// For binds a Func to a translator
// For 将 Func 绑定到指定翻译器
func For(trans ut.Translator) Func {
	return func(key string, params ...string) string {
		if trans == nil {
			return key
		}
		s, err := trans.T(key, params...)
		if err != nil || s == "" {
			return key
		}
		return s
	}
}

// Identity returns keys unchanged, for callers without a request language
// Identity 原样返回键，用于没有请求语言的调用方
func Identity(key string, params ...string) string {
	return key
}
